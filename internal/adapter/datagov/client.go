// Package datagov fetches daily mandi price records from data.gov.in catalog
// resources. Fetching is best-effort: a failed page ends that fetch attempt
// and whatever was already accumulated is returned.
package datagov

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/khetsetu/agri-market-service/internal/config"
	"github.com/khetsetu/agri-market-service/internal/domain"
	"github.com/khetsetu/agri-market-service/internal/observability"
)

const arrivalDateLayout = "2006-01-02"

// Client pages through data.gov.in resources for one arrival date at a time.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	pageSize   int
	maxRecords int
	pageDelay  time.Duration
	clock      clockwork.Clock
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates a data.gov.in client from service configuration.
func NewClient(cfg *config.Config, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		apiKey:     cfg.DataGovAPIKey,
		baseURL:    cfg.DataGovBaseURL,
		httpClient: &http.Client{Timeout: cfg.FetchTimeout},
		pageSize:   cfg.FetchPageSize,
		maxRecords: cfg.FetchMaxRecords,
		pageDelay:  cfg.FetchPageDelay,
		clock:      clockwork.NewRealClock(),
		metrics:    metrics,
		logger:     logger,
	}
}

// SetClock swaps the pacing clock. Tests use a fake so page delays don't
// slow the suite down.
func (c *Client) SetClock(clk clockwork.Clock) {
	c.clock = clk
}

// FetchDay retrieves all records a resource holds for one arrival date,
// paging with increasing offsets until a short page, the record cap, or an
// error. The returned slice is always usable; a non-nil error only reports
// that the fetch ended early and may be incomplete.
func (c *Client) FetchDay(ctx context.Context, resource string, date time.Time) ([]domain.RawRecord, error) {
	var all []domain.RawRecord
	dateStr := date.Format(arrivalDateLayout)

	for offset := 0; offset < c.maxRecords; offset += c.pageSize {
		page, err := c.fetchPage(ctx, resource, dateStr, offset, c.pageSize)
		if err != nil {
			c.metrics.FetchErrors.WithLabelValues(resource).Inc()
			return all, fmt.Errorf("fetch %s at offset %d: %w", dateStr, offset, err)
		}

		all = append(all, page...)
		c.metrics.RecordsFetched.WithLabelValues(resource).Add(float64(len(page)))
		c.logger.Debug("fetched page", "resource", resource, "date", dateStr, "offset", offset, "records", len(page))

		if len(page) < c.pageSize {
			break
		}
		if !c.pause(ctx) {
			return all, ctx.Err()
		}
	}
	return all, nil
}

func (c *Client) fetchPage(ctx context.Context, resource, dateStr string, offset, limit int) ([]domain.RawRecord, error) {
	params := url.Values{
		"api-key": {c.apiKey},
		"format":  {"json"},
		"limit":   {strconv.Itoa(limit)},
		"offset":  {strconv.Itoa(offset)},
	}
	if dateStr != "" {
		params.Set("filters[arrival_date]", dateStr)
	}
	fullURL := fmt.Sprintf("%s/%s?%s", c.baseURL, url.PathEscape(resource), params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	start := c.clock.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("page request: %w", err)
	}
	defer resp.Body.Close()
	c.metrics.FetchPageDuration.Observe(c.clock.Since(start).Seconds())

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("data.gov.in API error: status %d: %s", resp.StatusCode, body)
	}

	var page pageResponse
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return page.Records, nil
}

// pause observes the inter-page pacing delay. Returns false when the context
// is cancelled first.
func (c *Client) pause(ctx context.Context) bool {
	if c.pageDelay <= 0 {
		return true
	}
	select {
	case <-ctx.Done():
		return false
	case <-c.clock.After(c.pageDelay):
		return true
	}
}

// data.gov.in response envelope.

type pageResponse struct {
	Records []domain.RawRecord `json:"records"`
}
