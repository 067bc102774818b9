package query_test

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khetsetu/agri-market-service/internal/domain"
	"github.com/khetsetu/agri-market-service/internal/observability"
	"github.com/khetsetu/agri-market-service/internal/query"
	"github.com/khetsetu/agri-market-service/internal/snapshot"
)

var testNow = time.Date(2026, 8, 29, 14, 0, 0, 0, time.UTC)

type mockStore struct {
	records map[time.Time][]domain.MarketRecord
}

func (m *mockStore) Read(date time.Time) ([]domain.MarketRecord, error) {
	recs, ok := m.records[date]
	if !ok {
		return nil, snapshot.ErrNotFound
	}
	return recs, nil
}

func rec(commodity, state, district, market string, price, quantity float64) domain.MarketRecord {
	return domain.MarketRecord{
		State:     state,
		District:  district,
		Market:    market,
		Commodity: commodity,
		Variety:   "Common",
		Price:     price,
		MinPrice:  price * 0.9,
		MaxPrice:  price * 1.1,
		Quantity:  quantity,
		Unit:      "Quintal",
		Date:      testNow.Truncate(24 * time.Hour),
	}
}

func newEngine(records []domain.MarketRecord) *query.Engine {
	today := time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC)
	store := &mockStore{records: map[time.Time][]domain.MarketRecord{}}
	if records != nil {
		store.records[today] = records
	}
	return query.NewEngine(store, clockwork.NewFakeClockAt(testNow), observability.NewMetricsForTesting())
}

func TestQuery_FilterAndAggregates(t *testing.T) {
	e := newEngine([]domain.MarketRecord{
		rec("Wheat", "Punjab", "Ludhiana", "Khanna", 2000, 50),
		rec("Rice", "Punjab", "Amritsar", "Rayya", 3000, 20),
	})

	res, err := e.Query(query.Filters{Crop: "wheat"})
	require.NoError(t, err)

	assert.Equal(t, 1, res.TotalRecords)
	assert.Equal(t, 2000.0, res.AveragePrice)
	assert.Equal(t, 50.0, res.TotalVolume)
	require.Len(t, res.Markets, 1)
	assert.Equal(t, "Wheat", res.Markets[0].Commodity)
	assert.Equal(t, testNow, res.LastUpdated)
}

func TestQuery_EmptyFiltersMatchAll(t *testing.T) {
	e := newEngine([]domain.MarketRecord{
		rec("Wheat", "Punjab", "Ludhiana", "Khanna", 2000, 50),
		rec("Rice", "Punjab", "Amritsar", "Rayya", 3000, 20),
	})

	res, err := e.Query(query.Filters{})
	require.NoError(t, err)

	assert.Equal(t, 2, res.TotalRecords)
	assert.Equal(t, 2500.0, res.AveragePrice)
	assert.Equal(t, 70.0, res.TotalVolume)
}

func TestQuery_NoSnapshotForToday(t *testing.T) {
	e := newEngine(nil)

	_, err := e.Query(query.Filters{Crop: "wheat"})
	assert.ErrorIs(t, err, query.ErrNotReady)
}

func TestQuery_NoMatch(t *testing.T) {
	e := newEngine([]domain.MarketRecord{
		rec("Wheat", "Punjab", "Ludhiana", "Khanna", 2000, 50),
	})

	_, err := e.Query(query.Filters{Crop: "maize"})
	assert.ErrorIs(t, err, query.ErrNoMatch)
}

func TestQuery_SlugFiltersForStateAndDistrict(t *testing.T) {
	e := newEngine([]domain.MarketRecord{
		rec("Onion", "Madhya Pradesh", "East Nimar", "Khandwa", 1400, 100),
		rec("Onion", "Maharashtra", "Nashik", "Lasalgaon", 1450, 820),
	})

	res, err := e.Query(query.Filters{State: "madhya-pradesh", District: "east-nimar"})
	require.NoError(t, err)

	assert.Equal(t, 1, res.TotalRecords)
	assert.Equal(t, "Madhya Pradesh", res.Markets[0].State)
}

func TestQuery_FiltersAreCommutative(t *testing.T) {
	records := []domain.MarketRecord{
		rec("Wheat", "Punjab", "Ludhiana", "Khanna", 2000, 50),
		rec("Wheat", "Punjab", "Amritsar", "Rayya", 2100, 30),
		rec("Rice", "Haryana", "Karnal", "Karnal", 3000, 20),
	}
	e := newEngine(records)

	full := query.Filters{Crop: "wheat", State: "punjab", District: "ludhiana", Market: "khanna"}
	res, err := e.Query(full)
	require.NoError(t, err)
	require.Equal(t, 1, res.TotalRecords)

	// Applying subsets in any combination narrows to the same final set.
	partial, err := e.Query(query.Filters{District: "ludhiana", Crop: "wheat"})
	require.NoError(t, err)
	assert.Equal(t, res.Markets, partial.Markets)
}

func TestQuery_ZeroQuantityIsValidSum(t *testing.T) {
	e := newEngine([]domain.MarketRecord{
		rec("Wheat", "Punjab", "Ludhiana", "Khanna", 2000, 0),
		rec("Wheat", "Punjab", "Amritsar", "Rayya", 2100, 0),
	})

	res, err := e.Query(query.Filters{Crop: "wheat"})
	require.NoError(t, err)

	assert.Equal(t, 0.0, res.TotalVolume)
	assert.Equal(t, 2050.0, res.AveragePrice)
}

func TestQuery_AggregatesRoundedToTwoDecimals(t *testing.T) {
	e := newEngine([]domain.MarketRecord{
		rec("Wheat", "Punjab", "Ludhiana", "Khanna", 1000, 10.333),
		rec("Wheat", "Punjab", "Amritsar", "Rayya", 1001, 10.333),
		rec("Wheat", "Punjab", "Moga", "Moga", 1001, 10.333),
	})

	res, err := e.Query(query.Filters{Crop: "wheat"})
	require.NoError(t, err)

	assert.Equal(t, 1000.67, res.AveragePrice)
	assert.Equal(t, 31.0, res.TotalVolume)
}
