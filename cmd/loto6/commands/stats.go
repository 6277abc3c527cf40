package commands

import (
	"fmt"
	"io"
	"os"

	"loto6-backend/internal/loto6"
	"loto6-backend/lib/serviceutil"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(statsCmd)
}

var statsCmd = &cobra.Command{
	Use:   "stats [dataset]",
	Short: "Prints pattern statistics of the draws in the dataset.",
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
		renderStatistics(os.Stdout, loto6.Analyze(records))
	},
}

func newTable(w io.Writer, title string) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleRounded)
	t.SetTitle(title)
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, Align: text.AlignRight},
		{Number: 3, Align: text.AlignRight},
	})
	return t
}

func appendPatterns(t table.Writer, patterns []loto6.PatternCount, maxIndex int) {
	t.AppendHeader(table.Row{"Pattern", "Draws", "%"})
	for i, p := range patterns {
		label := p.Label
		if i == maxIndex && p.Count > 0 {
			label += " *"
		}
		t.AppendRow(table.Row{label, p.Count, fmt.Sprintf("%.1f", p.Percentage)})
	}
}

func renderStatistics(w io.Writer, stats loto6.Statistics) {
	fmt.Fprintf(w, "%d draws\n", stats.Draws)

	distributions := []struct {
		title string
		dist  loto6.Distribution
	}{
		{title: "Even / odd", dist: stats.EvenOdd},
		{title: fmt.Sprintf("Low (1-%d) / high", loto6.LowNumberMax), dist: stats.HighLow},
		{title: "Consecutive pairs", dist: stats.Consecutive},
	}
	for _, d := range distributions {
		t := newTable(w, d.title)
		appendPatterns(t, d.dist.Patterns, d.dist.MaxIndex)
		t.Render()
	}

	t := newTable(w, "Sum of numbers")
	t.AppendHeader(table.Row{"Range", "Draws", "%"})
	for _, r := range stats.Sums.Ranges {
		t.AppendRow(table.Row{r.Label, r.Count, fmt.Sprintf("%.1f", r.Percentage)})
	}
	t.AppendFooter(table.Row{
		"",
		fmt.Sprintf("min %d / max %d", stats.Sums.Min, stats.Sums.Max),
		fmt.Sprintf("avg %.1f / median %.1f", stats.Sums.Average, stats.Sums.Median),
	})
	t.Render()
}
