package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"
)

// Scheduler triggers one ingestion run per day at a fixed hour, replacing the
// external cron the service historically relied on.
type Scheduler struct {
	pipeline *Pipeline
	hour     int
	clock    clockwork.Clock
	logger   *slog.Logger
}

// NewScheduler creates a daily trigger firing at hour (0-23) local to UTC.
func NewScheduler(p *Pipeline, hour int, clock clockwork.Clock, logger *slog.Logger) *Scheduler {
	return &Scheduler{pipeline: p, hour: hour, clock: clock, logger: logger}
}

// Run blocks until ctx is cancelled, invoking the pipeline at each daily
// trigger time.
func (s *Scheduler) Run(ctx context.Context) {
	for {
		now := s.clock.Now()
		next := nextRunAt(now, s.hour)
		s.logger.Info("next ingestion run scheduled", "at", next.Format(time.RFC3339))

		select {
		case <-ctx.Done():
			s.logger.Info("scheduler stopping", "reason", ctx.Err())
			return
		case <-s.clock.After(next.Sub(now)):
		}

		s.pipeline.Run(ctx)
	}
}

// nextRunAt returns the next occurrence of hour strictly after now.
func nextRunAt(now time.Time, hour int) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, 0, 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}
