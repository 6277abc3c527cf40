package commands

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"loto6-backend/internal/components/chrono"
	"loto6-backend/internal/loto6"
	"loto6-backend/lib/serviceutil"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var predictOut *string

func init() {
	predictOut = predictCmd.Flags().String("out", "prediction.json", "The file the scores are written to.")
	rootCmd.AddCommand(predictCmd)
}

var predictCmd = &cobra.Command{
	Use:   "predict [dataset]",
	Short: "Scores every number against the dataset and writes a recommendation.",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := readConfig(*configPath)
		if err != nil {
			serviceutil.Fatal("failed to read config", err)
		}
		records, err := loto6.ReadDataset(cfg.datasetArg(args))
		if err != nil {
			serviceutil.Fatal("failed to read dataset", err)
		}
		if len(records) == 0 {
			serviceutil.Fatal("no draws to score", fmt.Errorf("dataset %s is empty", cfg.datasetArg(args)))
		}

		prediction := loto6.Predict(records)
		err = loto6.WritePrediction(*predictOut, loto6.NewPredictionDocument(prediction, chrono.NewStandardImpl()))
		if err != nil {
			serviceutil.Fatal("failed to write prediction", err)
		}
		slog.Info(
			"wrote prediction",
			"path", *predictOut,
			"draws", prediction.TotalDraws,
			"latest_draw", prediction.Latest.DrawID,
			"numbers", prediction.Recommended,
		)
		renderPrediction(os.Stdout, prediction)
	},
}

func renderPrediction(w io.Writer, p loto6.Prediction) {
	t := newTable(w, fmt.Sprintf("Recommendation after draw %d", p.Latest.DrawID))
	t.AppendHeader(table.Row{"Number", "Total", "Reason"})
	for _, n := range p.Recommended {
		s, _ := p.Score(n)
		t.AppendRow(table.Row{n, fmt.Sprintf("%.3f", s.Total), s.Reason()})
	}
	t.Render()
}
