package loto6

import (
	"errors"
	"fmt"
)

// FailureKind classifies why a cycle could not go on, the updater decides
// between retrying and stopping from the kind alone.
type FailureKind int

const (
	FailureNone FailureKind = iota
	// FailureTransient is a connection, timeout or status failure while
	// fetching, it is the only kind that is retried.
	FailureTransient
	// FailureCorrupt is a body that could not be decoded or that holds no usable rows.
	FailureCorrupt
	// FailureMalformedRow is a row with an unparsable id, date or number,
	// the whole batch is rejected.
	FailureMalformedRow
	// FailureLocalState is a local dataset whose latest line cannot be read.
	FailureLocalState
	// FailureWrite is a failure to replace the local dataset.
	FailureWrite
	// FailureCanceled is a cycle stopped by its context, usually a shutdown signal.
	FailureCanceled
)

func (k FailureKind) String() string {
	switch k {
	case FailureNone:
		return "none"
	case FailureTransient:
		return "transient"
	case FailureCorrupt:
		return "corrupt"
	case FailureMalformedRow:
		return "malformed_row"
	case FailureLocalState:
		return "local_state"
	case FailureWrite:
		return "write"
	case FailureCanceled:
		return "canceled"
	}
	return fmt.Sprintf("unknown(%d)", int(k))
}

// Retryable reports whether another attempt may fix the failure.
func (k FailureKind) Retryable() bool {
	return k == FailureTransient
}

type Error struct {
	Kind FailureKind
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("loto6: %s: %s", e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(kind FailureKind, err error) *Error {
	return &Error{Kind: kind, Err: err}
}

// KindOf returns the FailureKind carried by err, FailureNone if err is nil
// and FailureTransient if err does not carry one.
func KindOf(err error) FailureKind {
	if err == nil {
		return FailureNone
	}
	var target *Error
	if errors.As(err, &target) {
		return target.Kind
	}
	return FailureTransient
}
