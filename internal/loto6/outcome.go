package loto6

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"loto6-backend/internal/components/telemetry"
)

const report_signal_set = "file_signal.set"

// State is a state of the update cycle.
type State int

const (
	StateAttempting State = iota
	StateSuccessNew
	StateSuccessNoNewRetrying
	StateSuccessNoNewExhausted
	StateTerminalFailure
)

func (s State) String() string {
	switch s {
	case StateAttempting:
		return "attempting"
	case StateSuccessNew:
		return "success_new"
	case StateSuccessNoNewRetrying:
		return "success_no_new_retrying"
	case StateSuccessNoNewExhausted:
		return "success_no_new_exhausted"
	case StateTerminalFailure:
		return "terminal_failure"
	}
	return fmt.Sprintf("unknown(%d)", int(s))
}

// Terminal reports whether no further attempt can follow the state.
func (s State) Terminal() bool {
	return s == StateSuccessNew ||
		s == StateSuccessNoNewExhausted ||
		s == StateTerminalFailure
}

// Outcome is the result of one update cycle.
type Outcome struct {
	State State
	// Stored is the latest draw id of the local dataset before the cycle.
	Stored int
	// LatestDraw is the highest fetched draw id, only set on StateSuccessNew.
	LatestDraw int
	// Attempts is the number of fetches that were made.
	Attempts int
	// Written is the number of records written to the dataset.
	Written int
	// Err is set on StateTerminalFailure, it is always an *Error.
	Err error
}

func (o Outcome) Updated() bool {
	return o.State == StateSuccessNew
}

// Kind returns the failure kind of the cycle, FailureNone unless it failed.
func (o Outcome) Kind() FailureKind {
	return KindOf(o.Err)
}

// ExitCode is non-zero only when the cycle failed.
func (o Outcome) ExitCode() int {
	if o.State == StateTerminalFailure {
		return 1
	}
	return 0
}

// Signal receives the key-value pairs that tell the surrounding automation
// whether the dataset changed.
type Signal interface {
	Set(key, value string) error
}

const (
	SignalUpdated    = "updated"
	SignalLatestDraw = "latest_draw"
)

// EmitOutcome sends `updated` and, when the dataset changed, `latest_draw`.
func EmitOutcome(signal Signal, o Outcome) error {
	err := signal.Set(SignalUpdated, strconv.FormatBool(o.Updated()))
	if err != nil {
		return err
	}
	if !o.Updated() {
		return nil
	}
	return signal.Set(SignalLatestDraw, strconv.Itoa(o.LatestDraw))
}

// FileSignal appends `key=value` lines to the file at Path, the format read
// back by GitHub Actions from $GITHUB_OUTPUT. Every pair is reported to Tel,
// an empty Path only reports.
type FileSignal struct {
	Path string
	// Tel defaults to telemetry.SlogAPI.
	Tel telemetry.API
}

func (s FileSignal) Set(key, value string) error {
	var tel telemetry.API = telemetry.SlogAPI{}
	if s.Tel != nil {
		tel = s.Tel
	}
	tel.ReportDebug("output", key, value)

	if s.Path == "" {
		return nil
	}

	file, err := os.OpenFile(s.Path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		tel.ReportWarning(report_signal_set, err, s.Path)
		return err
	}
	_, err = fmt.Fprintf(file, "%s=%s\n", key, value)
	err = errors.Join(err, file.Close())
	if err != nil {
		tel.ReportWarning(report_signal_set, err, s.Path)
	}
	return err
}
