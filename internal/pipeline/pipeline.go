// Package pipeline orchestrates the daily ingest: retention cleanup, then a
// fetch-normalize-persist pass over the trailing window of days across every
// configured source.
package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/khetsetu/agri-market-service/internal/domain"
	"github.com/khetsetu/agri-market-service/internal/observability"
)

// Fetcher retrieves the raw records one resource holds for one arrival date.
// The returned slice is usable even when err is non-nil (partial fetch).
type Fetcher interface {
	FetchDay(ctx context.Context, resource string, date time.Time) ([]domain.RawRecord, error)
}

// SnapshotStore is the persistence surface the pipeline writes through.
type SnapshotStore interface {
	Read(date time.Time) ([]domain.MarketRecord, error)
	Write(date time.Time, records []domain.MarketRecord) error
	DeleteOlderThan(cutoff time.Time) (int, error)
}

// Publisher forwards a day's normalized records to an external sink.
// Optional; a nil Publisher disables publishing.
type Publisher interface {
	PublishDay(ctx context.Context, date time.Time, records []domain.MarketRecord) error
}

// Pipeline runs the ingestion pass. Every error is contained at its origin:
// a failed (resource, day) fetch or a failed snapshot write never aborts
// sibling work, and Run never reports failure to its caller.
type Pipeline struct {
	fetcher   Fetcher
	store     SnapshotStore
	publisher Publisher
	resources []string

	windowDays    int
	retentionDays int

	clock   clockwork.Clock
	logger  *slog.Logger
	metrics *observability.Metrics
	ready   atomic.Bool
}

// New creates a Pipeline over the given sources. windowDays and retentionDays
// are both typically 7: the window [today-6, today] is refreshed and anything
// older than today-7d is retired.
func New(f Fetcher, s SnapshotStore, pub Publisher, resources []string, retentionDays int, clock clockwork.Clock, logger *slog.Logger, metrics *observability.Metrics) *Pipeline {
	return &Pipeline{
		fetcher:       f,
		store:         s,
		publisher:     pub,
		resources:     resources,
		windowDays:    retentionDays,
		retentionDays: retentionDays,
		clock:         clock,
		logger:        logger,
		metrics:       metrics,
	}
}

// CheckReadiness returns nil once at least one ingestion run has completed.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("no ingestion run has completed yet")
	}
	return nil
}

// MarkReady declares the service ready without a run, used at startup when
// a current snapshot already exists on disk.
func (p *Pipeline) MarkReady() {
	p.ready.Store(true)
}

// RunIfMissing runs one ingestion pass when today's snapshot is absent or
// unreadable, otherwise marks the service ready immediately. Today is the
// local calendar date, the same convention Run and the query path use.
func (p *Pipeline) RunIfMissing(ctx context.Context) {
	today := truncateToDay(p.clock.Now())
	if _, err := p.store.Read(today); err != nil {
		p.logger.Info("no snapshot for today, starting initial ingestion run",
			"date", today.Format("2006-01-02"))
		p.Run(ctx)
		return
	}
	p.MarkReady()
}

// Run executes one full ingestion pass. Retention cleanup goes first so stale
// snapshots are removed even if the rest of the run fails.
func (p *Pipeline) Run(ctx context.Context) {
	start := p.clock.Now()
	today := truncateToDay(start)

	p.logger.Info("ingestion run started", "window_days", p.windowDays, "sources", len(p.resources))
	p.metrics.PipelineRunning.Set(1)
	defer p.metrics.PipelineRunning.Set(0)

	p.runRetention(today)

	for i := 0; i < p.windowDays; i++ {
		if ctx.Err() != nil {
			p.logger.Info("ingestion run interrupted", "reason", ctx.Err())
			return
		}
		p.ingestDay(ctx, today.AddDate(0, 0, -i))
	}

	p.metrics.PipelineRuns.Inc()
	p.metrics.PipelineRunDuration.Observe(p.clock.Since(start).Seconds())
	p.ready.Store(true)
	p.logger.Info("ingestion run finished", "duration", p.clock.Since(start))
}

func (p *Pipeline) runRetention(today time.Time) {
	cutoff := today.AddDate(0, 0, -p.retentionDays)
	deleted, err := p.store.DeleteOlderThan(cutoff)
	if err != nil {
		p.logger.Error("retention cleanup failed", "error", err)
		return
	}
	p.metrics.SnapshotsDeleted.Add(float64(deleted))
	if deleted > 0 {
		p.logger.Info("retention cleanup removed snapshots", "count", deleted, "cutoff", cutoff.Format("2006-01-02"))
	}
}

// ingestDay fetches one day from every source, merges, normalizes, and writes
// that day's snapshot. Sources are fetched concurrently into per-source slots;
// one source failing yields whatever the others produced.
func (p *Pipeline) ingestDay(ctx context.Context, date time.Time) {
	perSource := make([][]domain.RawRecord, len(p.resources))

	var wg sync.WaitGroup
	for i, resource := range p.resources {
		wg.Add(1)
		go func() {
			defer wg.Done()
			records, err := p.fetcher.FetchDay(ctx, resource, date)
			if err != nil {
				p.logger.Warn("fetch ended early",
					"resource", resource,
					"date", date.Format("2006-01-02"),
					"records_kept", len(records),
					"error", err,
				)
			}
			perSource[i] = records
		}()
	}
	wg.Wait()

	var raw []domain.RawRecord
	for _, records := range perSource {
		raw = append(raw, records...)
	}

	normalized := make([]domain.MarketRecord, 0, len(raw))
	rejected := 0
	for _, r := range raw {
		rec, ok := domain.NormalizeRecord(r)
		if !ok {
			rejected++
			continue
		}
		normalized = append(normalized, rec)
	}
	p.metrics.RecordsNormalized.Add(float64(len(normalized)))
	p.metrics.NormalizationRejections.Add(float64(rejected))

	if err := p.store.Write(date, normalized); err != nil {
		p.metrics.SnapshotWriteErrors.Inc()
		p.logger.Error("snapshot write failed, day lost",
			"date", date.Format("2006-01-02"), "records", len(normalized), "error", err)
		return
	}
	p.metrics.SnapshotsWritten.Inc()
	p.logger.Info("snapshot written",
		"date", date.Format("2006-01-02"), "records", len(normalized), "rejected", rejected)

	if p.publisher != nil && len(normalized) > 0 {
		if err := p.publisher.PublishDay(ctx, date, normalized); err != nil {
			p.logger.Warn("publish failed", "date", date.Format("2006-01-02"), "error", err)
		}
	}
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
