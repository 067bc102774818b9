// Package query serves filtered views of the current day's market snapshot
// with summary statistics.
package query

import (
	"errors"
	"math"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/khetsetu/agri-market-service/internal/domain"
	"github.com/khetsetu/agri-market-service/internal/observability"
	"github.com/khetsetu/agri-market-service/internal/snapshot"
)

// Error kinds surfaced to the API layer. Messages are part of the HTTP
// contract and must stay stable.
var (
	ErrNotReady = errors.New("Market data not ready")
	ErrNoMatch  = errors.New("No data found")
)

// SnapshotReader is the slice of the snapshot store the engine needs.
type SnapshotReader interface {
	Read(date time.Time) ([]domain.MarketRecord, error)
}

// Filters are optional case-insensitive substring filters, combined with AND.
// Empty strings match everything. State and district filters accept
// URL-friendly slugs: "-" is treated as a space.
type Filters struct {
	Crop     string
	State    string
	District string
	Market   string
}

// Result is a filtered record set plus its aggregates.
type Result struct {
	TotalRecords int
	AveragePrice float64
	TotalVolume  float64
	Markets      []domain.MarketRecord
	LastUpdated  time.Time
}

// Engine answers filter+aggregate queries over the current day's snapshot.
type Engine struct {
	store   SnapshotReader
	clock   clockwork.Clock
	metrics *observability.Metrics
}

// NewEngine creates a query engine reading from store.
func NewEngine(store SnapshotReader, clock clockwork.Clock, metrics *observability.Metrics) *Engine {
	return &Engine{store: store, clock: clock, metrics: metrics}
}

// Query loads today's snapshot, applies the filters, and computes aggregates.
// Returns ErrNotReady when no snapshot exists for today and ErrNoMatch when
// the filters exclude every record.
func (e *Engine) Query(f Filters) (Result, error) {
	now := e.clock.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	records, err := e.store.Read(today)
	if err != nil {
		if errors.Is(err, snapshot.ErrNotFound) {
			e.metrics.QueryRequests.WithLabelValues("not_ready").Inc()
			return Result{}, ErrNotReady
		}
		e.metrics.QueryRequests.WithLabelValues("error").Inc()
		return Result{}, err
	}

	var matches []domain.MarketRecord
	for _, rec := range records {
		if f.matches(rec) {
			matches = append(matches, rec)
		}
	}

	if len(matches) == 0 {
		e.metrics.QueryRequests.WithLabelValues("no_match").Inc()
		return Result{}, ErrNoMatch
	}

	var priceSum, volumeSum float64
	for _, rec := range matches {
		priceSum += rec.Price
		volumeSum += rec.Quantity
	}

	e.metrics.QueryRequests.WithLabelValues("ok").Inc()
	return Result{
		TotalRecords: len(matches),
		AveragePrice: round2(priceSum / float64(len(matches))),
		TotalVolume:  round2(volumeSum),
		Markets:      matches,
		LastUpdated:  now,
	}, nil
}

// matches applies every supplied filter as an independent substring
// predicate; order is irrelevant.
func (f Filters) matches(rec domain.MarketRecord) bool {
	return containsFold(rec.Commodity, f.Crop) &&
		containsFold(rec.State, slugToSpaces(f.State)) &&
		containsFold(rec.District, slugToSpaces(f.District)) &&
		containsFold(rec.Market, f.Market)
}

func containsFold(field, filter string) bool {
	if filter == "" {
		return true
	}
	return strings.Contains(strings.ToLower(field), strings.ToLower(filter))
}

func slugToSpaces(s string) string {
	return strings.ReplaceAll(s, "-", " ")
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
