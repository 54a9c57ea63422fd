package report

import (
	"bytes"
	_ "embed"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"strconv"
	"time"

	logging "github.com/ipfs/go-log/v2"

	"github.com/dltrack/dltrack/internal/history"
)

var log = logging.Logger("report")

//go:embed templates/report.html.tmpl
var reportTemplateHTML string

//go:embed static/css/report.css
var reportCSS string

const (
	dailyChartFile   = "daily.svg"
	monthlyChartFile = "monthly.svg"
	reportFile       = "index.html"
)

type reportData struct {
	Package        string
	SiteURL        string
	Description    string
	DailyChart     string
	MonthlyChart   string
	TotalDownloads int64
	PeakDaily      int64
	LatestMonthly  int64
	DataPoints     int
	GeneratedAt    string
	CSS            template.CSS
}

// formatCount renders n with thousands separators, e.g. 1234567 -> "1,234,567".
func formatCount(n int64) string {
	s := strconv.FormatInt(n, 10)
	if len(s) <= 3 {
		return s
	}
	var out []byte
	lead := len(s) % 3
	if lead > 0 {
		out = append(out, s[:lead]...)
	}
	for i := lead; i < len(s); i += 3 {
		if len(out) > 0 {
			out = append(out, ',')
		}
		out = append(out, s[i:i+3]...)
	}
	return string(out)
}

type config struct {
	siteURL string
	now     func() time.Time
}

type Option func(*config)

// WithSiteURL sets the project link embedded in the report.
func WithSiteURL(u string) Option {
	return func(c *config) {
		c.siteURL = u
	}
}

// WithClock overrides the clock used for series windows and the generation
// timestamp.
func WithClock(now func() time.Time) Option {
	return func(c *config) {
		c.now = now
	}
}

// Renderer writes the static report for a package.
type Renderer struct {
	pkg     string
	siteURL string
	tmpl    *template.Template
	now     func() time.Time
}

func New(pkg string, opts ...Option) (*Renderer, error) {
	cfg := &config{now: time.Now}
	for _, opt := range opts {
		opt(cfg)
	}

	tmpl, err := template.New("report").Funcs(template.FuncMap{
		"formatCount": formatCount,
	}).Parse(reportTemplateHTML)
	if err != nil {
		return nil, fmt.Errorf("parsing report template: %w", err)
	}

	return &Renderer{
		pkg:     pkg,
		siteURL: cfg.siteURL,
		tmpl:    tmpl,
		now:     cfg.now,
	}, nil
}

// Render writes the HTML report and its charts into outDir. An empty store
// yields a valid placeholder report with all-zero charts.
func (r *Renderer) Render(store *history.Store, outDir string) error {
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	now := r.now()
	daily := DailySeries(store, now)
	monthly := MonthlySeries(store, now)

	dailyTitle := fmt.Sprintf("Daily downloads, last %d days", dailyWindow)
	if err := writeChart(filepath.Join(outDir, dailyChartFile), dailyTitle, daily); err != nil {
		return err
	}

	monthlyTitle := fmt.Sprintf("Monthly downloads, last %d months", monthlyWindow)
	if err := writeChart(filepath.Join(outDir, monthlyChartFile), monthlyTitle, monthly); err != nil {
		return err
	}

	data := reportData{
		Package:      r.pkg,
		SiteURL:      r.siteURL,
		Description:  fmt.Sprintf("Download counts for %s", r.pkg),
		DailyChart:   dailyChartFile,
		MonthlyChart: monthlyChartFile,
		DataPoints:   store.Len(),
		GeneratedAt:  now.UTC().Format("2006-01-02 15:04 MST"),
		CSS:          template.CSS(reportCSS),
	}
	for _, rec := range store.Records() {
		data.TotalDownloads += rec.DailyCount
		if rec.DailyCount > data.PeakDaily {
			data.PeakDaily = rec.DailyCount
		}
	}
	if latest, ok := store.Latest(); ok {
		data.LatestMonthly = latest.MonthlyCount
	}

	var buf bytes.Buffer
	if err := r.tmpl.Execute(&buf, data); err != nil {
		return fmt.Errorf("executing report template: %w", err)
	}

	path := filepath.Join(outDir, reportFile)
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("writing report %s: %w", path, err)
	}

	log.Infof("Report written to %s", path)

	return nil
}

func writeChart(path, title string, points []Point) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating chart %s: %w", path, err)
	}

	if err := renderBarChart(f, title, points); err != nil {
		f.Close()
		return err
	}

	return f.Close()
}
