// Package snapshot persists one JSON file of normalized market records per
// calendar date. Files are immutable once written: a re-run replaces the whole
// file via rename, so concurrent readers never observe a partial snapshot.
package snapshot

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/khetsetu/agri-market-service/internal/domain"
)

// ErrNotFound reports that no snapshot exists for the requested date. It is
// distinct from an empty snapshot, which is a valid present-but-empty result.
var ErrNotFound = errors.New("snapshot not found")

const (
	filePrefix = "market_data_"
	fileSuffix = ".json"
	dateLayout = "2006_01_02"
)

// Store owns the on-disk snapshot naming convention and retention policy.
type Store struct {
	dir    string
	logger *slog.Logger
}

// NewStore creates a Store rooted at dir. The directory is created on the
// first write.
func NewStore(dir string, logger *slog.Logger) *Store {
	return &Store{dir: dir, logger: logger}
}

// fileNameForDate and dateFromFileName are the only two places that convert
// between dates and snapshot identifiers.

func fileNameForDate(date time.Time) string {
	return filePrefix + date.Format(dateLayout) + fileSuffix
}

func dateFromFileName(name string) (time.Time, bool) {
	if len(name) != len(filePrefix)+len(dateLayout)+len(fileSuffix) {
		return time.Time{}, false
	}
	if name[:len(filePrefix)] != filePrefix || name[len(name)-len(fileSuffix):] != fileSuffix {
		return time.Time{}, false
	}
	t, err := time.Parse(dateLayout, name[len(filePrefix):len(name)-len(fileSuffix)])
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// Write serializes records as the snapshot for date, replacing any prior
// content. The write goes to a temp file in the same directory and is
// renamed into place so readers see either the old or the new snapshot.
func (s *Store) Write(date time.Time, records []domain.MarketRecord) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	if records == nil {
		records = []domain.MarketRecord{}
	}
	data, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("serialize snapshot: %w", err)
	}

	target := filepath.Join(s.dir, fileNameForDate(date))
	tmp, err := os.CreateTemp(s.dir, filePrefix+"*.tmp")
	if err != nil {
		return fmt.Errorf("create temp snapshot: %w", err)
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close snapshot: %w", err)
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replace snapshot: %w", err)
	}
	return nil
}

// Read loads the snapshot for date. Returns ErrNotFound when no snapshot
// exists for that date.
func (s *Store) Read(date time.Time) ([]domain.MarketRecord, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, fileNameForDate(date)))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	var records []domain.MarketRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return records, nil
}

// ListDates enumerates all dates with a persisted snapshot, sorted ascending.
// Files that do not match the naming convention are skipped.
func (s *Store) ListDates() ([]time.Time, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("list snapshots: %w", err)
	}

	var dates []time.Time
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if d, ok := dateFromFileName(e.Name()); ok {
			dates = append(dates, d)
		}
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	return dates, nil
}

// DeleteOlderThan removes every snapshot dated strictly before cutoff.
// Individual deletion failures are logged and skipped. Returns the number of
// snapshots removed.
func (s *Store) DeleteOlderThan(cutoff time.Time) (int, error) {
	dates, err := s.ListDates()
	if err != nil {
		return 0, err
	}

	deleted := 0
	for _, d := range dates {
		if !d.Before(cutoff) {
			continue
		}
		path := filepath.Join(s.dir, fileNameForDate(d))
		if err := os.Remove(path); err != nil {
			s.logger.Warn("delete old snapshot failed", "file", path, "error", err)
			continue
		}
		s.logger.Info("deleted old snapshot", "file", path)
		deleted++
	}
	return deleted, nil
}
