package snapshot

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khetsetu/agri-market-service/internal/domain"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(t.TempDir(), slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func wheatRecord(price float64) domain.MarketRecord {
	return domain.MarketRecord{
		State:     "Punjab",
		District:  "Ludhiana",
		Market:    "Khanna",
		Commodity: "Wheat",
		Variety:   "Dara",
		Price:     price,
		MinPrice:  price * 0.9,
		MaxPrice:  price * 1.1,
		Quantity:  50,
		Unit:      "Quintal",
		Date:      day(2026, 8, 27),
	}
}

func TestWriteAndRead(t *testing.T) {
	s := testStore(t)
	date := day(2026, 8, 27)

	require.NoError(t, s.Write(date, []domain.MarketRecord{wheatRecord(2000)}))

	got, err := s.Read(date)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, wheatRecord(2000), got[0])
}

func TestWriteReplacesExistingSnapshot(t *testing.T) {
	s := testStore(t)
	date := day(2026, 8, 27)

	require.NoError(t, s.Write(date, []domain.MarketRecord{wheatRecord(2000), wheatRecord(2100)}))
	require.NoError(t, s.Write(date, []domain.MarketRecord{wheatRecord(2200)}))

	got, err := s.Read(date)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 2200.0, got[0].Price)
}

func TestReadMissingSnapshot(t *testing.T) {
	s := testStore(t)

	_, err := s.Read(day(2026, 8, 27))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestEmptySnapshotIsPresent(t *testing.T) {
	s := testStore(t)
	date := day(2026, 8, 27)

	require.NoError(t, s.Write(date, nil))

	got, err := s.Read(date)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestListDatesSkipsForeignFiles(t *testing.T) {
	dir := t.TempDir()
	s := NewStore(dir, slog.New(slog.NewTextHandler(io.Discard, nil)))

	require.NoError(t, s.Write(day(2026, 8, 25), nil))
	require.NoError(t, s.Write(day(2026, 8, 27), nil))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "market_data_baddate.json"), []byte("[]"), 0o644))

	dates, err := s.ListDates()
	require.NoError(t, err)
	assert.Equal(t, []time.Time{day(2026, 8, 25), day(2026, 8, 27)}, dates)
}

func TestListDatesMissingDir(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "nope"), slog.New(slog.NewTextHandler(io.Discard, nil)))

	dates, err := s.ListDates()
	require.NoError(t, err)
	assert.Empty(t, dates)
}

func TestDeleteOlderThan(t *testing.T) {
	s := testStore(t)
	for d := 20; d <= 29; d++ {
		require.NoError(t, s.Write(day(2026, 8, d), nil))
	}

	deleted, err := s.DeleteOlderThan(day(2026, 8, 23))
	require.NoError(t, err)
	assert.Equal(t, 3, deleted)

	dates, err := s.ListDates()
	require.NoError(t, err)
	require.Len(t, dates, 7)
	// Cutoff date itself survives; only strictly-older snapshots go.
	assert.Equal(t, day(2026, 8, 23), dates[0])
}

func TestDateFileNameRoundTrip(t *testing.T) {
	d := day(2026, 1, 5)
	name := fileNameForDate(d)
	assert.Equal(t, "market_data_2026_01_05.json", name)

	got, ok := dateFromFileName(name)
	require.True(t, ok)
	assert.Equal(t, d, got)

	_, ok = dateFromFileName("market_data_2026_13_40.json")
	assert.False(t, ok)
	_, ok = dateFromFileName("weather_2026_01_05.json")
	assert.False(t, ok)
}
