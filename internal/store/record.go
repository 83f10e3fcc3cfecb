// Package store holds the electric-vehicle record table and its loaders.
// The table is populated once at startup and is read-only afterwards.
package store

import (
	"sort"
	"strings"
)

// Record is one EV model's specification row.
type Record struct {
	Brand          string  `json:"brand"`
	Model          string  `json:"model"`
	PriceUSD       float64 `json:"price_usd"`
	RangeKM        float64 `json:"range_km"`
	Accel0To100    float64 `json:"accel_0_100_s"`
	TopSpeedKMH    float64 `json:"top_speed_kmh"`
	BatteryKWH     float64 `json:"battery_kwh"`
	EfficiencyWhKM float64 `json:"efficiency_wh_per_km"`
	Seats          int     `json:"seats"`
	TowingKG       float64 `json:"towing_capacity_kg"`

	// modelKey is the normalized model name used for substring matching.
	modelKey string
}

// HasPrice reports whether the record carries a usable price. A zero
// price means the value was missing in the source data.
func (r Record) HasPrice() bool {
	return r.PriceUSD > 0
}

// ModelKey returns the lowercase, separator-stripped model name.
func (r Record) ModelKey() string {
	return r.modelKey
}

// NormalizeKey lowercases a model fragment and strips spaces and hyphens,
// so that "Model 3", "model-3" and "model3" all compare equal.
func NormalizeKey(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, "-", "")
	return s
}

// Table is an immutable collection of records with a canonical brand set.
type Table struct {
	records []Record
	brands  []string
}

// NewTable normalizes the given records (uppercased brand, trimmed model,
// derived model key) and builds the sorted unique brand list. The input
// slice is not retained.
func NewTable(records []Record) *Table {
	out := make([]Record, 0, len(records))
	seen := make(map[string]struct{})
	var brands []string

	for _, r := range records {
		r.Brand = strings.ToUpper(strings.TrimSpace(r.Brand))
		r.Model = strings.TrimSpace(r.Model)
		r.modelKey = NormalizeKey(r.Model)
		if r.Brand == "" || r.Model == "" {
			continue
		}
		out = append(out, r)
		if _, ok := seen[r.Brand]; !ok {
			seen[r.Brand] = struct{}{}
			brands = append(brands, r.Brand)
		}
	}
	sort.Strings(brands)

	return &Table{records: out, brands: brands}
}

// Len returns the number of records in the table.
func (t *Table) Len() int {
	return len(t.records)
}

// Empty reports whether the table holds no records.
func (t *Table) Empty() bool {
	return t == nil || len(t.records) == 0
}

// Records returns the table's records. The slice is shared; callers must
// treat it as read-only.
func (t *Table) Records() []Record {
	return t.records
}

// Brands returns the sorted set of canonical (uppercase) brand names.
func (t *Table) Brands() []string {
	return t.brands
}

// ByBrand returns every record whose canonical brand equals the given
// name (case-insensitive).
func (t *Table) ByBrand(brand string) []Record {
	brand = strings.ToUpper(strings.TrimSpace(brand))
	var out []Record
	for _, r := range t.records {
		if r.Brand == brand {
			out = append(out, r)
		}
	}
	return out
}

// FindModel returns the first record (table order) whose model key
// contains the normalized fragment.
func (t *Table) FindModel(fragment string) (Record, bool) {
	key := NormalizeKey(fragment)
	if key == "" {
		return Record{}, false
	}
	for _, r := range t.records {
		if strings.Contains(r.modelKey, key) {
			return r, true
		}
	}
	return Record{}, false
}

// FilterCriteria narrows the table for the filtering view. Zero values
// mean "no constraint".
type FilterCriteria struct {
	Brand    string
	MinRange float64
	MaxPrice float64
	MaxAccel float64
	Seats    int
}

// Filter returns all records satisfying the criteria. Records without a
// price are excluded only when a price ceiling is set.
func (t *Table) Filter(c FilterCriteria) []Record {
	brand := strings.ToUpper(strings.TrimSpace(c.Brand))
	out := make([]Record, 0)
	for _, r := range t.records {
		if brand != "" && r.Brand != brand {
			continue
		}
		if c.MinRange > 0 && r.RangeKM < c.MinRange {
			continue
		}
		if c.MaxPrice > 0 && (!r.HasPrice() || r.PriceUSD > c.MaxPrice) {
			continue
		}
		if c.MaxAccel > 0 && r.Accel0To100 > c.MaxAccel {
			continue
		}
		if c.Seats > 0 && r.Seats < c.Seats {
			continue
		}
		out = append(out, r)
	}
	return out
}
