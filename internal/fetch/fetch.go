package fetch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/go-playground/validator/v10"
	logging "github.com/ipfs/go-log/v2"

	"github.com/dltrack/dltrack/internal/history"
)

var log = logging.Logger("fetch")

var (
	// ErrStatus reports a non-success status from the stats API.
	ErrStatus = errors.New("unexpected status from stats API")

	// ErrBadResponse reports a response body that does not match the expected
	// schema.
	ErrBadResponse = errors.New("malformed stats API response")
)

// downloadsResponse mirrors the registry's download-stats payload.
type downloadsResponse struct {
	Name      string `json:"name"`
	Downloads struct {
		Daily   int64 `json:"daily" validate:"gte=0"`
		Monthly int64 `json:"monthly" validate:"gte=0"`
	} `json:"downloads"`
}

type config struct {
	timeout time.Duration
	now     func() time.Time
}

type Option func(*config)

// WithTimeout overrides the HTTP timeout of the client.
func WithTimeout(d time.Duration) Option {
	return func(c *config) {
		c.timeout = d
	}
}

// WithClock overrides the clock used to stamp fetched records.
func WithClock(now func() time.Time) Option {
	return func(c *config) {
		c.now = now
	}
}

// Client fetches download counts from a registry stats API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	validate   *validator.Validate
	now        func() time.Time
}

func New(baseURL string, opts ...Option) *Client {
	cfg := &config{
		timeout: 30 * time.Second,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: cfg.timeout},
		validate:   validator.New(),
		now:        cfg.now,
	}
}

// Fetch requests the current daily and monthly download counts for pkg and
// returns them as a record stamped with today's date.
func (c *Client) Fetch(ctx context.Context, pkg string) (history.CountRecord, error) {
	endpoint, err := url.JoinPath(c.baseURL, "api", "v1", "packages", pkg, "downloads")
	if err != nil {
		return history.CountRecord{}, fmt.Errorf("building stats URL: %w", err)
	}

	log.Debugf("Fetching download counts from %s", endpoint)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return history.CountRecord{}, fmt.Errorf("creating stats request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return history.CountRecord{}, fmt.Errorf("requesting download counts: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return history.CountRecord{}, fmt.Errorf("reading stats response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return history.CountRecord{}, fmt.Errorf("%w: %d", ErrStatus, resp.StatusCode)
	}

	var dr downloadsResponse
	if err := json.Unmarshal(body, &dr); err != nil {
		return history.CountRecord{}, fmt.Errorf("%w: %v", ErrBadResponse, err)
	}
	if err := c.validate.Struct(&dr); err != nil {
		return history.CountRecord{}, fmt.Errorf("%w: %v", ErrBadResponse, err)
	}

	rec := history.CountRecord{
		Date:         history.DateOf(c.now()),
		DailyCount:   dr.Downloads.Daily,
		MonthlyCount: dr.Downloads.Monthly,
	}

	log.Infof("Fetched counts for %s: %d today, %d this month", pkg, rec.DailyCount, rec.MonthlyCount)

	return rec, nil
}
