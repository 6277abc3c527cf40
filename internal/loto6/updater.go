package loto6

import (
	"context"
	"errors"
	"fmt"
	"time"

	"loto6-backend/internal/components/assert"
	"loto6-backend/internal/components/chrono"
	"loto6-backend/internal/components/telemetry"
	"loto6-backend/lib/scrapers/kyo"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
)

const (
	report_updater_run     = "updater.run"
	report_updater_attempt = "updater.attempt"
	report_updater_mirror  = "updater.mirror"
)

const (
	DefaultDataset       = "LOTO6_ALL.csv"
	DefaultMaxAttempts   = 3
	DefaultRetryInterval = 30 * time.Minute
)

var tracer = otel.Tracer("loto6.internal.loto6")
var meter = otel.Meter("loto6.internal.loto6")
var attemptCounter, _ = meter.Int64Counter(
	"loto6.update.attempts",
	metric.WithDescription("Fetches of the draw feed."),
)
var latestDrawGauge, _ = meter.Int64Gauge(
	"loto6.latest_draw",
	metric.WithDescription("Latest draw id held by the local dataset."),
)

// Feed is where the raw draw history comes from.
type Feed interface {
	// Fetch returns the raw feed body, every error is treated as transient.
	Fetch(ctx context.Context) ([]byte, error)
}

// Mirror receives the full history after the dataset was replaced.
type Mirror interface {
	Mirror(ctx context.Context, records []DrawRecord) error
}

type Options struct {
	// Dataset is the path of the local dataset, defaults to DefaultDataset.
	Dataset string
	// MaxAttempts bounds the number of fetches, defaults to DefaultMaxAttempts.
	MaxAttempts int
	// RetryInterval is the fixed wait between attempts, defaults to DefaultRetryInterval.
	RetryInterval time.Duration

	Feed  Feed
	Clock chrono.API
	// Mirror is optional, a failing mirror does not change the outcome.
	Mirror Mirror
}

// DefaultOptions returns the options the updater has always run with,
// Feed and Clock still have to be provided.
func DefaultOptions() Options {
	return Options{
		Dataset:       DefaultDataset,
		MaxAttempts:   DefaultMaxAttempts,
		RetryInterval: DefaultRetryInterval,
	}
}

// Updater runs update cycles: fetch the feed, normalize it and replace the
// local dataset only when the feed holds a draw newer than the dataset.
type Updater struct {
	dataset       string
	maxAttempts   int
	retryInterval time.Duration
	feed          Feed
	clock         chrono.API
	mirror        Mirror
	tel           telemetry.API
}

func NewUpdater(opts Options, tel telemetry.API) Updater {
	assert.NotNil(opts.Feed)
	assert.NotNil(opts.Clock)
	assert.NotNil(tel)

	defaults := DefaultOptions()
	if opts.Dataset == "" {
		opts.Dataset = defaults.Dataset
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = defaults.MaxAttempts
	}
	if opts.RetryInterval < 0 {
		opts.RetryInterval = defaults.RetryInterval
	}
	assert.NotEmptyStr(opts.Dataset)
	assert.Positive(opts.MaxAttempts, "max attempts")

	return Updater{
		dataset:       opts.Dataset,
		maxAttempts:   opts.MaxAttempts,
		retryInterval: opts.RetryInterval,
		feed:          opts.Feed,
		clock:         opts.Clock,
		mirror:        opts.Mirror,
		tel:           telemetry.NewScopedAPI("updater", tel),
	}
}

// Run executes one update cycle until it reaches a terminal state.
//
// Transport failures and "nothing newer than the dataset" both consume an
// attempt and wait RetryInterval before the next one. A body that cannot be
// decoded, holds no usable rows or holds a malformed row stops the cycle
// immediately, so does an unreadable dataset. The wait between attempts
// ends early when ctx is done.
func (u Updater) Run(ctx context.Context) Outcome {
	ctx, span := tracer.Start(ctx, "updater.run")
	defer span.End()

	out := Outcome{State: StateAttempting}
	defer func() {
		span.SetAttributes(
			attribute.String("state", out.State.String()),
			attribute.Int("attempts", out.Attempts),
			attribute.Int("stored", out.Stored),
		)
		if out.Err != nil {
			span.RecordError(out.Err)
			span.SetStatus(codes.Error, out.Kind().String())
		}
	}()

	stored, err := LatestDrawID(u.dataset)
	if err != nil {
		out = u.fail(out, err)
		return out
	}
	out.Stored = stored
	u.tel.ReportDebug("stored latest draw", u.dataset, stored)

	for attempt := 1; ; attempt++ {
		out.Attempts = attempt
		attemptCounter.Add(ctx, 1)
		u.tel.ReportDebug("attempt", attempt, u.maxAttempts)

		records, err := u.attempt(ctx)
		if err != nil {
			if !KindOf(err).Retryable() || attempt >= u.maxAttempts {
				out = u.fail(out, err)
				return out
			}

			u.tel.ReportWarning(report_updater_attempt, err, attempt, u.maxAttempts)
			err = u.wait(ctx)
			if err != nil {
				out = u.fail(out, err)
				return out
			}
			continue
		}

		fetched := MaxDrawID(records)
		u.tel.ReportDebug("fetched latest draw", fetched, len(records))

		if fetched > stored {
			written, err := WriteDataset(u.dataset, records)
			if err != nil {
				out = u.fail(out, err)
				return out
			}

			out.State = StateSuccessNew
			out.LatestDraw = fetched
			out.Written = written
			latestDrawGauge.Record(ctx, int64(fetched))
			u.tel.ReportCount("latest_draw", int64(fetched))

			u.mirrorRecords(ctx, records)
			return out
		}

		if attempt >= u.maxAttempts {
			out.State = StateSuccessNoNewExhausted
			latestDrawGauge.Record(ctx, int64(stored))
			return out
		}

		out.State = StateSuccessNoNewRetrying
		u.tel.ReportDebug("no new draw yet", stored, fetched)
		err = u.wait(ctx)
		if err != nil {
			out = u.fail(out, err)
			return out
		}
	}
}

// attempt fetches, decodes and normalizes the feed once.
func (u Updater) attempt(ctx context.Context) ([]DrawRecord, error) {
	body, err := u.feed.Fetch(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return nil, newError(FailureCanceled, errors.Join(ctx.Err(), err))
		}
		return nil, newError(FailureTransient, err)
	}

	rows, err := kyo.Decode(body)
	if err != nil {
		return nil, newError(FailureCorrupt, err)
	}
	records, err := Normalize(rows)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, newError(FailureCorrupt, fmt.Errorf("feed has no usable rows (%d decoded)", len(rows)))
	}
	return records, nil
}

func (u Updater) wait(ctx context.Context) error {
	u.tel.ReportDebug("waiting before next attempt", u.retryInterval.String())
	err := u.clock.Sleep(ctx, u.retryInterval)
	if err != nil {
		return newError(FailureCanceled, err)
	}
	return nil
}

func (u Updater) mirrorRecords(ctx context.Context, records []DrawRecord) {
	if u.mirror == nil {
		return
	}
	err := u.mirror.Mirror(ctx, records)
	if err != nil {
		u.tel.ReportWarning(report_updater_mirror, err)
	}
}

func (u Updater) fail(out Outcome, err error) Outcome {
	var typed *Error
	if !errors.As(err, &typed) {
		err = newError(FailureTransient, err)
	}

	out.State = StateTerminalFailure
	out.LatestDraw = 0
	out.Written = 0
	out.Err = err
	u.tel.ReportBroken(report_updater_run, err, out.Attempts)
	return out
}
