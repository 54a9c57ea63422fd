package main

import (
	"fmt"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/dltrack/dltrack/internal/history"
	"github.com/dltrack/dltrack/internal/report"
)

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Print a terminal chart of recent daily downloads",
	Args:  cobra.NoArgs,
	RunE:  showHistory,
}

var (
	showDays        int
	showHistoryFile string
)

func init() {
	showCmd.Flags().IntVar(&showDays, "days", 30, "Number of trailing days to plot")
	showCmd.Flags().StringVar(&showHistoryFile, "history-file", "data/downloads.json", "Path of the JSON history file")
}

func showHistory(cmd *cobra.Command, args []string) error {
	if showDays < 1 {
		return fmt.Errorf("--days must be at least 1")
	}

	store, err := history.Load(showHistoryFile)
	if err != nil {
		return fmt.Errorf("loading history: %w", err)
	}

	points := report.TrailingDaily(store, time.Now(), showDays)

	values := make([]float64, len(points))
	for i, p := range points {
		values[i] = float64(p.Value)
	}

	caption := fmt.Sprintf("Daily downloads, %s to %s", points[0].Label, points[len(points)-1].Label)
	fmt.Println(asciigraph.Plot(values,
		asciigraph.Height(12),
		asciigraph.Caption(caption),
	))

	return nil
}
