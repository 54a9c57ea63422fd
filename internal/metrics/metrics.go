package metrics

import (
	"fmt"

	logging "github.com/ipfs/go-log/v2"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

var log = logging.Logger("metrics")

var (
	// FetchesTotal counts successful stats API fetches
	FetchesTotal metric.Int64Counter

	// FetchFailures counts failed stats API fetches
	FetchFailures metric.Int64Counter

	// RecordsUpserted counts records merged into the history
	RecordsUpserted metric.Int64Counter

	// ReportsRendered counts rendered reports
	ReportsRendered metric.Int64Counter
)

var registry *prometheus.Registry

// Init initializes the OpenTelemetry metrics with a Prometheus exporter
// backed by a dedicated registry.
func Init() error {
	registry = prometheus.NewRegistry()

	exporter, err := otelprom.New(otelprom.WithRegisterer(registry))
	if err != nil {
		return fmt.Errorf("failed to create prometheus exporter: %w", err)
	}

	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(exporter))
	otel.SetMeterProvider(provider)

	meter := provider.Meter("github.com/dltrack/dltrack")

	FetchesTotal, err = meter.Int64Counter(
		"dltrack_fetches_total",
		metric.WithDescription("Total number of successful stats API fetches"),
	)
	if err != nil {
		return fmt.Errorf("failed to create FetchesTotal counter: %w", err)
	}

	FetchFailures, err = meter.Int64Counter(
		"dltrack_fetch_failures_total",
		metric.WithDescription("Total number of failed stats API fetches"),
	)
	if err != nil {
		return fmt.Errorf("failed to create FetchFailures counter: %w", err)
	}

	RecordsUpserted, err = meter.Int64Counter(
		"dltrack_records_upserted_total",
		metric.WithDescription("Total number of count records merged into the history"),
	)
	if err != nil {
		return fmt.Errorf("failed to create RecordsUpserted counter: %w", err)
	}

	ReportsRendered, err = meter.Int64Counter(
		"dltrack_reports_rendered_total",
		metric.WithDescription("Total number of rendered reports"),
	)
	if err != nil {
		return fmt.Errorf("failed to create ReportsRendered counter: %w", err)
	}

	log.Debug("OpenTelemetry metrics initialized with Prometheus exporter")
	return nil
}

// WriteTextfile flushes the collected metrics to path in the Prometheus text
// format. A one-shot job has nothing to scrape, so the metrics are handed to
// a textfile collector instead.
func WriteTextfile(path string) error {
	if registry == nil {
		return fmt.Errorf("metrics not initialized")
	}

	if err := prometheus.WriteToTextfile(path, registry); err != nil {
		return fmt.Errorf("writing metrics textfile %s: %w", path, err)
	}

	log.Debugf("Metrics written to %s", path)
	return nil
}
