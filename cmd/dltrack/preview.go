package main

import (
	"net/http"

	"github.com/spf13/cobra"
)

var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Serve the rendered report locally for preview",
	Args:  cobra.NoArgs,
	RunE:  previewReport,
}

var (
	previewAddr string
	previewDir  string
)

func init() {
	previewCmd.Flags().StringVar(&previewAddr, "addr", "localhost:8080", "Address to listen on")
	previewCmd.Flags().StringVar(&previewDir, "dir", "docs", "Directory holding the rendered report")
}

func previewReport(cmd *cobra.Command, args []string) error {
	mux := http.NewServeMux()
	mux.Handle("GET /", http.FileServer(http.Dir(previewDir)))

	log.Infof("Previewing %s on http://%s", previewDir, previewAddr)
	return http.ListenAndServe(previewAddr, mux)
}
