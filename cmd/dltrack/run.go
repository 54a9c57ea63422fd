package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/dltrack/dltrack/internal/config"
	"github.com/dltrack/dltrack/internal/fetch"
	"github.com/dltrack/dltrack/internal/job"
	"github.com/dltrack/dltrack/internal/metrics"
	"github.com/dltrack/dltrack/internal/report"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the fetch/merge/render pipeline once",
	Args:  cobra.NoArgs,
	RunE:  runJob,
}

var fetchEnabled bool

func init() {
	runCmd.Flags().BoolVar(
		&fetchEnabled,
		"fetch",
		false,
		"Fetch the latest counts from the registry API before rendering",
	)

	runCmd.Flags().String(
		"api-url",
		"https://galaxy.ansible.com",
		"Base URL of the registry download-stats API",
	)
	cobra.CheckErr(viper.BindPFlag("api_base_url", runCmd.Flags().Lookup("api-url")))

	runCmd.Flags().String(
		"package",
		"",
		"Name of the package whose downloads are tracked",
	)
	cobra.CheckErr(viper.BindPFlag("package", runCmd.Flags().Lookup("package")))

	runCmd.Flags().String(
		"history-file",
		"data/downloads.json",
		"Path of the JSON history file",
	)
	cobra.CheckErr(viper.BindPFlag("history_file", runCmd.Flags().Lookup("history-file")))

	runCmd.Flags().String(
		"output-dir",
		"docs",
		"Directory the HTML report and charts are written to",
	)
	cobra.CheckErr(viper.BindPFlag("output_dir", runCmd.Flags().Lookup("output-dir")))

	runCmd.Flags().String(
		"site-url",
		"",
		"Project link embedded in the report",
	)
	cobra.CheckErr(viper.BindPFlag("site_url", runCmd.Flags().Lookup("site-url")))

	runCmd.Flags().String(
		"metrics-file",
		"",
		"Prometheus textfile to write after the run",
	)
	cobra.CheckErr(viper.BindPFlag("metrics_file", runCmd.Flags().Lookup("metrics-file")))

	runCmd.Flags().Int(
		"fetch-timeout",
		30,
		"Timeout in seconds for the stats API request",
	)
	cobra.CheckErr(viper.BindPFlag("fetch_timeout", runCmd.Flags().Lookup("fetch-timeout")))
}

func runJob(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if err := metrics.Init(); err != nil {
		return fmt.Errorf("initializing metrics: %w", err)
	}

	fetcher := fetch.New(
		cfg.APIBaseURL,
		fetch.WithTimeout(time.Duration(cfg.FetchTimeout)*time.Second),
	)

	renderer, err := report.New(cfg.Package, report.WithSiteURL(cfg.SiteURL))
	if err != nil {
		return fmt.Errorf("creating renderer: %w", err)
	}

	return job.New(cfg, fetcher, renderer).Run(cmd.Context(), fetchEnabled)
}
