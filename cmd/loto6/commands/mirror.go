package commands

import (
	"log/slog"

	"loto6-backend/internal/drawstore"
	"loto6-backend/internal/loto6"
	"loto6-backend/lib/serviceutil"

	"github.com/spf13/cobra"
)

var mirrorDb *string

func init() {
	mirrorDb = mirrorCmd.Flags().String("db", "", "The sqlite database to mirror to, defaults to the config's database.")
	rootCmd.AddCommand(mirrorCmd)
}

var mirrorCmd = &cobra.Command{
	Use:   "mirror [dataset] --db <path/to/loto6.db>",
	Short: "Copies every draw of the dataset into a sqlite database.",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := readConfig(*configPath)
		if err != nil {
			serviceutil.Fatal("failed to read config", err)
		}
		if *mirrorDb != "" {
			cfg.Database = *mirrorDb
		}
		if cfg.Database == "" {
			cmd.PrintErrln("no database given, pass --db or set \"database\" in the config")
			cmd.Usage()
			return
		}
		dataset := cfg.datasetArg(args)

		records, err := loto6.ReadDataset(dataset)
		if err != nil {
			serviceutil.Fatal("failed to read dataset", err)
		}

		ctx := cmd.Context()
		store, database, err := drawstore.Open(ctx, cfg.Database)
		if err != nil {
			serviceutil.Fatal("failed to open draw database", err)
		}
		defer database.Close()

		err = store.Mirror(ctx, records)
		if err != nil {
			serviceutil.Fatal("failed to mirror draws", err)
		}

		count, err := store.Count(ctx)
		if err != nil {
			serviceutil.Fatal("failed to count draws", err)
		}
		latest, _, err := store.Latest(ctx)
		if err != nil {
			serviceutil.Fatal("failed to read latest draw", err)
		}
		slog.Info(
			"mirrored dataset",
			"dataset", dataset,
			"database", cfg.Database,
			"mirrored", len(records),
			"stored", count,
			"latest_draw", latest.DrawID,
		)
	},
}
