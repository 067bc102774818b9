package datagov

import (
	"context"
	"sort"
	"time"
)

// boundariesResource is the catalog resource listing administrative
// state/district pairs. Its row count is far below the market-fetch page
// size, so the lookup uses its own fixed limit.
const (
	boundariesResource = "administrative-boundaries"
	boundariesLimit    = 5000
)

// FetchDistrictIndex builds the state -> districts reference mapping, tried
// once at startup. Any failure or empty result falls back to the static
// table; the index is read-only afterwards and serves UI enumeration only.
func (c *Client) FetchDistrictIndex(ctx context.Context, timeout time.Duration) map[string][]string {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	records, err := c.fetchPage(ctx, boundariesResource, "", 0, boundariesLimit)
	if err != nil {
		c.logger.Warn("district lookup failed, using static fallback", "error", err)
		return staticDistrictIndex()
	}

	index := make(map[string][]string)
	seen := make(map[string]map[string]bool)
	for _, rec := range records {
		state, okS := firstField(rec, "state_name", "state")
		district, okD := firstField(rec, "district_name", "district")
		if !okS || !okD {
			continue
		}
		if seen[state] == nil {
			seen[state] = make(map[string]bool)
		}
		if seen[state][district] {
			continue
		}
		seen[state][district] = true
		index[state] = append(index[state], district)
	}

	if len(index) == 0 {
		c.logger.Warn("district lookup returned no usable records, using static fallback")
		return staticDistrictIndex()
	}
	for state := range index {
		sort.Strings(index[state])
	}
	return index
}

func firstField(rec map[string]any, keys ...string) (string, bool) {
	for _, key := range keys {
		if s, ok := rec[key].(string); ok && s != "" {
			return s, true
		}
	}
	return "", false
}

// staticDistrictIndex is the fallback reference table used when the
// boundaries resource is unreachable. It covers the major agricultural
// states; completeness matters less than having something to enumerate.
func staticDistrictIndex() map[string][]string {
	return map[string][]string{
		"Andhra Pradesh": {"Anantapur", "Chittoor", "East Godavari", "Guntur", "Krishna", "Kurnool", "Prakasam", "Srikakulam", "Visakhapatnam", "Vizianagaram", "West Godavari", "YSR Kadapa"},
		"Bihar":          {"Araria", "Begusarai", "Bhagalpur", "Darbhanga", "Gaya", "Muzaffarpur", "Nalanda", "Patna", "Purnia", "Samastipur", "Saran", "Vaishali"},
		"Gujarat":        {"Ahmedabad", "Amreli", "Anand", "Banaskantha", "Bharuch", "Bhavnagar", "Jamnagar", "Junagadh", "Kutch", "Mehsana", "Rajkot", "Surat", "Vadodara"},
		"Haryana":        {"Ambala", "Bhiwani", "Faridabad", "Fatehabad", "Gurugram", "Hisar", "Jind", "Kaithal", "Karnal", "Kurukshetra", "Panipat", "Rohtak", "Sirsa", "Sonipat"},
		"Karnataka":      {"Bagalkot", "Ballari", "Belagavi", "Bengaluru Rural", "Bidar", "Davanagere", "Dharwad", "Hassan", "Kalaburagi", "Mandya", "Mysuru", "Raichur", "Shivamogga", "Tumakuru"},
		"Madhya Pradesh": {"Bhopal", "Chhindwara", "Dewas", "Gwalior", "Hoshangabad", "Indore", "Jabalpur", "Mandsaur", "Ratlam", "Rewa", "Sagar", "Satna", "Sehore", "Ujjain", "Vidisha"},
		"Maharashtra":    {"Ahmednagar", "Akola", "Amravati", "Aurangabad", "Jalgaon", "Kolhapur", "Latur", "Nagpur", "Nashik", "Pune", "Sangli", "Satara", "Solapur", "Yavatmal"},
		"Punjab":         {"Amritsar", "Barnala", "Bathinda", "Faridkot", "Fatehgarh Sahib", "Ferozepur", "Gurdaspur", "Hoshiarpur", "Jalandhar", "Kapurthala", "Ludhiana", "Moga", "Patiala", "Sangrur"},
		"Rajasthan":      {"Ajmer", "Alwar", "Barmer", "Bharatpur", "Bikaner", "Churu", "Ganganagar", "Hanumangarh", "Jaipur", "Jodhpur", "Kota", "Nagaur", "Sikar", "Udaipur"},
		"Tamil Nadu":     {"Coimbatore", "Cuddalore", "Dindigul", "Erode", "Madurai", "Salem", "Thanjavur", "Tiruchirappalli", "Tirunelveli", "Vellore", "Viluppuram", "Virudhunagar"},
		"Uttar Pradesh":  {"Agra", "Aligarh", "Bareilly", "Gorakhpur", "Jhansi", "Kanpur Nagar", "Lucknow", "Mathura", "Meerut", "Moradabad", "Muzaffarnagar", "Saharanpur", "Varanasi"},
		"West Bengal":    {"Bankura", "Birbhum", "Cooch Behar", "Hooghly", "Howrah", "Jalpaiguri", "Malda", "Murshidabad", "Nadia", "North 24 Parganas", "Purulia", "South 24 Parganas"},
	}
}
