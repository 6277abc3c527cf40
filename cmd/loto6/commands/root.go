package commands

import (
	"context"
	"fmt"
	"os"

	"loto6-backend/lib/telemetry"

	"github.com/spf13/cobra"
)

var (
	verbose    *bool
	configPath *string
	outputPath *string
)

var rootCmd = &cobra.Command{
	Use:   "loto6",
	Short: "loto6 keeps the local LOTO6 draw history in sync with the published feed.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		telemetry.InitSlog(*verbose)
	},
}

func init() {
	verbose = rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging and request dumps.")
	configPath = rootCmd.PersistentFlags().String("config", "config.json5", "The config file to read, a missing file means defaults.")
	outputPath = rootCmd.PersistentFlags().String("output", "", "The file key=value outputs are appended to, defaults to $GITHUB_OUTPUT.")
}

func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
