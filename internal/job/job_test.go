package job

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dltrack/dltrack/internal/config"
	"github.com/dltrack/dltrack/internal/history"
	"github.com/dltrack/dltrack/internal/metrics"
)

type fakeFetcher struct {
	rec    history.CountRecord
	err    error
	called bool
}

func (f *fakeFetcher) Fetch(ctx context.Context, pkg string) (history.CountRecord, error) {
	f.called = true
	return f.rec, f.err
}

type fakeRenderer struct {
	rendered *history.Store
	outDir   string
	err      error
}

func (r *fakeRenderer) Render(store *history.Store, outDir string) error {
	r.rendered = store
	r.outDir = outDir
	return r.err
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	return &config.Config{
		APIBaseURL:  "https://registry.example.com",
		Package:     "acme.hello",
		HistoryFile: filepath.Join(dir, "downloads.json"),
		OutputDir:   filepath.Join(dir, "docs"),
	}
}

func TestMain(m *testing.M) {
	if err := metrics.Init(); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

func TestRunFetchesAndSaves(t *testing.T) {
	cfg := testConfig(t)

	fetcher := &fakeFetcher{
		rec: history.CountRecord{Date: history.NewDate(2024, time.June, 15), DailyCount: 12, MonthlyCount: 340},
	}
	renderer := &fakeRenderer{}

	require.NoError(t, New(cfg, fetcher, renderer).Run(context.Background(), true))

	saved, err := history.Load(cfg.HistoryFile)
	require.NoError(t, err)
	require.Equal(t, 1, saved.Len())
	assert.Equal(t, int64(12), saved.Records()[0].DailyCount)

	require.NotNil(t, renderer.rendered)
	assert.Equal(t, 1, renderer.rendered.Len())
	assert.Equal(t, cfg.OutputDir, renderer.outDir)
}

func TestRunRenderOnlySkipsFetch(t *testing.T) {
	cfg := testConfig(t)

	store := &history.Store{}
	store.Upsert(history.CountRecord{Date: history.NewDate(2024, time.June, 14), DailyCount: 7, MonthlyCount: 328})
	store.Upsert(history.CountRecord{Date: history.NewDate(2024, time.June, 15), DailyCount: 12, MonthlyCount: 340})
	require.NoError(t, store.Save(cfg.HistoryFile))

	fetcher := &fakeFetcher{}
	renderer := &fakeRenderer{}

	require.NoError(t, New(cfg, fetcher, renderer).Run(context.Background(), false))

	assert.False(t, fetcher.called)
	require.NotNil(t, renderer.rendered)
	assert.Equal(t, 2, renderer.rendered.Len())
}

func TestRunFetchErrorLeavesHistoryUntouched(t *testing.T) {
	cfg := testConfig(t)

	store := &history.Store{}
	store.Upsert(history.CountRecord{Date: history.NewDate(2024, time.June, 14), DailyCount: 7, MonthlyCount: 328})
	require.NoError(t, store.Save(cfg.HistoryFile))

	before, err := os.ReadFile(cfg.HistoryFile)
	require.NoError(t, err)

	fetcher := &fakeFetcher{err: errors.New("boom")}
	renderer := &fakeRenderer{}

	err = New(cfg, fetcher, renderer).Run(context.Background(), true)
	require.Error(t, err)
	assert.Nil(t, renderer.rendered)

	after, readErr := os.ReadFile(cfg.HistoryFile)
	require.NoError(t, readErr)
	assert.Equal(t, before, after)
}

func TestRunCorruptHistoryAborts(t *testing.T) {
	cfg := testConfig(t)
	require.NoError(t, os.WriteFile(cfg.HistoryFile, []byte("{not json"), 0644))

	fetcher := &fakeFetcher{}
	renderer := &fakeRenderer{}

	err := New(cfg, fetcher, renderer).Run(context.Background(), true)
	assert.True(t, errors.Is(err, history.ErrCorrupt), "expected ErrCorrupt, got %v", err)
	assert.False(t, fetcher.called)
}

func TestRunRenderErrorFails(t *testing.T) {
	cfg := testConfig(t)

	err := New(cfg, &fakeFetcher{}, &fakeRenderer{err: errors.New("template blew up")}).Run(context.Background(), false)
	assert.ErrorContains(t, err, "rendering report")
}

func TestRunWritesMetricsTextfile(t *testing.T) {
	cfg := testConfig(t)
	cfg.MetricsFile = filepath.Join(t.TempDir(), "dltrack.prom")

	require.NoError(t, New(cfg, &fakeFetcher{}, &fakeRenderer{}).Run(context.Background(), false))

	data, err := os.ReadFile(cfg.MetricsFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), "dltrack_reports_rendered_total")
}
