package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// arrivalDateLayout is the date format used by all known catalog resources.
const arrivalDateLayout = "2006-01-02"

// Candidate key lists per canonical field, in priority order. First present
// non-empty value wins. See the package doc for the upstream schema survey.
var (
	priceKeys     = []string{"modal_price", "price", "rate", "wholesale_price", "max_price"}
	quantityKeys  = []string{"arrivals", "quantity", "volume", "arrival_quantity"}
	stateKeys     = []string{"state", "state_name"}
	districtKeys  = []string{"district", "district_name"}
	marketKeys    = []string{"market", "market_name"}
	commodityKeys = []string{"commodity", "commodity_name", "crop_name"}
	varietyKeys   = []string{"variety", "variety_name"}
	dateKeys      = []string{"arrival_date", "date"}
)

// NormalizeRecord maps one raw upstream record to the canonical shape.
// It returns false when the record has no usable price: no candidate field
// present, coercion failure, or a non-positive value. Everything else is
// lenient: missing fields get typed defaults and a bad date falls back to
// the current processing date. Pure apart from the clock read.
func NormalizeRecord(raw RawRecord) (MarketRecord, bool) {
	price, ok := resolveFloat(raw, priceKeys)
	if !ok || price <= 0 {
		return MarketRecord{}, false
	}

	quantity, ok := resolveFloat(raw, quantityKeys)
	if !ok {
		quantity = 0
	}

	rec := MarketRecord{
		State:     resolveString(raw, stateKeys, "Unknown"),
		District:  resolveString(raw, districtKeys, "Unknown"),
		Market:    resolveString(raw, marketKeys, "Unknown"),
		Commodity: resolveString(raw, commodityKeys, "Unknown"),
		Variety:   resolveString(raw, varietyKeys, "Common"),
		Price:     price,
		MinPrice:  resolveBoundPrice(raw, "min_price", price*0.9),
		MaxPrice:  resolveBoundPrice(raw, "max_price", price*1.1),
		Quantity:  quantity,
		Unit:      resolveString(raw, []string{"unit"}, "Quintal"),
		Date:      resolveDate(raw),
	}
	return rec, true
}

// resolveFloat coerces the first present non-empty candidate field to a
// float. Once a candidate is chosen a coercion failure is final; later
// candidates are alternate names for the same field, not backup values.
func resolveFloat(raw RawRecord, keys []string) (float64, bool) {
	for _, key := range keys {
		s, ok := fieldString(raw, key)
		if !ok {
			continue
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		return v, true
	}
	return 0, false
}

// resolveString returns the first present non-empty candidate, or the default.
func resolveString(raw RawRecord, keys []string, def string) string {
	for _, key := range keys {
		if s, ok := fieldString(raw, key); ok {
			return s
		}
	}
	return def
}

// resolveBoundPrice reads an explicit min/max price, falling back to the
// derived bound when the field is absent or unparseable.
func resolveBoundPrice(raw RawRecord, key string, def float64) float64 {
	s, ok := fieldString(raw, key)
	if !ok {
		return def
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v <= 0 {
		return def
	}
	return v
}

// resolveDate parses the arrival date, substituting the processing date on
// failure. Dropping the record for a bad date would lose a usable price, so
// leniency is deliberate here.
func resolveDate(raw RawRecord) time.Time {
	for _, key := range dateKeys {
		s, ok := fieldString(raw, key)
		if !ok {
			continue
		}
		if t, err := time.Parse(arrivalDateLayout, s); err == nil {
			return t
		}
	}
	return clock.Now()
}

// fieldString stringifies a raw scalar value. Upstream resources emit the
// same field as a string in one response and a JSON number in the next.
func fieldString(raw RawRecord, key string) (string, bool) {
	v, ok := raw[key]
	if !ok || v == nil {
		return "", false
	}

	var s string
	switch val := v.(type) {
	case string:
		s = strings.TrimSpace(val)
	case float64:
		s = strconv.FormatFloat(val, 'f', -1, 64)
	case int:
		s = strconv.Itoa(val)
	case bool:
		return "", false
	default:
		s = strings.TrimSpace(fmt.Sprint(val))
	}

	if s == "" {
		return "", false
	}
	return s, true
}
