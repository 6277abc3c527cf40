package commands

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"time"

	"loto6-backend/internal/components/chrono"
	comptelemetry "loto6-backend/internal/components/telemetry"
	"loto6-backend/internal/drawstore"
	"loto6-backend/internal/loto6"
	"loto6-backend/lib/restyutil"
	"loto6-backend/lib/scrapers/kyo"
	"loto6-backend/lib/serviceutil"
	"loto6-backend/lib/telemetry"

	"github.com/spf13/cobra"
)

const report_update_open_mirror = "update.open_mirror"

var updateDb *string

func init() {
	updateDb = updateCmd.Flags().String("db", "", "Mirror the history to this sqlite database after an update.")
	rootCmd.AddCommand(updateCmd)
}

var updateCmd = &cobra.Command{
	Use:   "update [dataset]",
	Short: "Fetches the feed and replaces the dataset when a newer draw was published.",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		tel := comptelemetry.SlogAPI{}
		signal := loto6.FileSignal{Path: signalPath(), Tel: tel}

		cfg, err := readConfig(*configPath)
		if err != nil {
			os.Exit(emitFailure(signal, "failed to read config", err))
		}
		cfg.Dataset = cfg.datasetArg(args)
		if *updateDb != "" {
			cfg.Database = *updateDb
		}

		code := runUpdate(cmd.Context(), cfg, signal, tel)
		if code != 0 {
			os.Exit(code)
		}
	},
}

func setupTelemetry(ctx context.Context) func() {
	otel, err := telemetry.SetupFromEnv(ctx, "loto6")
	if errors.Is(err, os.ErrNotExist) {
		slog.Debug("no telemetry.json5 found, telemetry is disabled")
		return func() {}
	}
	if err != nil {
		slog.Warn("failed to setup telemetry", "err", err)
		return func() {}
	}

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		err := otel.Shutdown(ctx)
		if err != nil {
			slog.Warn("failed to shutdown telemetry", "err", err)
		}
	}
}

func restyOutput() restyutil.InstrumentOutput {
	if !*verbose {
		return nil
	}
	out, err := restyutil.NewFilesystemOutput(".dev/resty/kyo")
	if err != nil {
		slog.Warn("failed to create resty output directory", "err", err)
		return nil
	}
	return out
}

func signalPath() string {
	if *outputPath != "" {
		return *outputPath
	}
	return os.Getenv("GITHUB_OUTPUT")
}

// emitFailure reports a failure that happened before an update cycle could
// start, the automation still reads `updated=false` from signal.
func emitFailure(signal loto6.Signal, msg string, err error) int {
	slog.Error(msg, "err", err)
	out := loto6.Outcome{
		State: loto6.StateTerminalFailure,
		Err:   &loto6.Error{Kind: loto6.FailureLocalState, Err: err},
	}
	if err := loto6.EmitOutcome(signal, out); err != nil {
		slog.Error("failed to write outputs", "err", err)
	}
	return out.ExitCode()
}

// runUpdate runs one update cycle and emits its outcome to signal, it
// returns the process exit code.
func runUpdate(parent context.Context, cfg Config, signal loto6.Signal, tel comptelemetry.API) int {
	ctx, stop := serviceutil.SignalContext(parent)
	defer stop()

	shutdown := setupTelemetry(ctx)
	defer shutdown()
	telemetry.InstrumentPerfStats(ctx, 15*time.Second)

	client := kyo.NewClient(kyo.ClientOptions{
		Url:       cfg.SourceUrl,
		UserAgent: cfg.UserAgent,
		Timeout:   cfg.Timeout(),
		Output:    restyOutput(),
	}, tel)

	opts := loto6.Options{
		Dataset:       cfg.Dataset,
		MaxAttempts:   cfg.MaxAttempts,
		RetryInterval: cfg.RetryInterval(),
		Feed:          client,
		Clock:         chrono.NewStandardImpl(),
	}
	if cfg.Database != "" {
		store, database, err := drawstore.Open(ctx, cfg.Database)
		if err != nil {
			// the dataset is the source of truth, a cycle runs without the mirror
			tel.ReportWarning(report_update_open_mirror, err, cfg.Database)
		} else {
			defer database.Close()
			opts.Mirror = store
		}
	}

	slog.Info(
		"updating dataset",
		"dataset", cfg.Dataset,
		"source", cfg.SourceUrl,
		"max_attempts", cfg.MaxAttempts,
		"retry_interval", cfg.RetryInterval().String(),
	)
	out := loto6.NewUpdater(opts, tel).Run(ctx)
	logOutcome(out)

	err := loto6.EmitOutcome(signal, out)
	if err != nil {
		slog.Error("failed to write outputs", "err", err)
		return 1
	}
	return out.ExitCode()
}

func logOutcome(out loto6.Outcome) {
	switch out.State {
	case loto6.StateSuccessNew:
		slog.Info(
			"dataset updated",
			"stored", out.Stored,
			"latest_draw", out.LatestDraw,
			"written", out.Written,
			"attempts", out.Attempts,
		)
	case loto6.StateSuccessNoNewExhausted:
		slog.Info("no new draw published", "stored", out.Stored, "attempts", out.Attempts)
	default:
		slog.Error(
			"update failed",
			"kind", out.Kind().String(),
			"attempts", out.Attempts,
			"err", out.Err,
		)
	}
}
