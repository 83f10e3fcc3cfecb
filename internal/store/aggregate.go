package store

// Aggregation helpers over record subsets. Extrema over an empty subset
// report ok=false; callers decide how to phrase that.

// MaxBy returns the record with the largest value under val.
func MaxBy(records []Record, val func(Record) float64) (Record, bool) {
	if len(records) == 0 {
		return Record{}, false
	}
	best := records[0]
	for _, r := range records[1:] {
		if val(r) > val(best) {
			best = r
		}
	}
	return best, true
}

// MinBy returns the record with the smallest value under val.
func MinBy(records []Record, val func(Record) float64) (Record, bool) {
	if len(records) == 0 {
		return Record{}, false
	}
	best := records[0]
	for _, r := range records[1:] {
		if val(r) < val(best) {
			best = r
		}
	}
	return best, true
}

// MeanBy returns the arithmetic mean of val over the records.
func MeanBy(records []Record, val func(Record) float64) (float64, bool) {
	if len(records) == 0 {
		return 0, false
	}
	var sum float64
	for _, r := range records {
		sum += val(r)
	}
	return sum / float64(len(records)), true
}

// WithValidPrice filters out records whose price is missing. Price
// extrema and means must operate on this subset, never the raw one.
func WithValidPrice(records []Record) []Record {
	out := make([]Record, 0, len(records))
	for _, r := range records {
		if r.HasPrice() {
			out = append(out, r)
		}
	}
	return out
}

// Column accessors shared by the answer generators and the stats view.

func Price(r Record) float64      { return r.PriceUSD }
func Range(r Record) float64      { return r.RangeKM }
func Accel(r Record) float64      { return r.Accel0To100 }
func TopSpeed(r Record) float64   { return r.TopSpeedKMH }
func Battery(r Record) float64    { return r.BatteryKWH }
func Efficiency(r Record) float64 { return r.EfficiencyWhKM }
func Towing(r Record) float64     { return r.TowingKG }

// Summary holds the dataset-wide aggregate view served by the stats
// endpoint and the statistical-summary intent.
type Summary struct {
	Count       int     `json:"count"`
	Brands      int     `json:"brands"`
	MeanPrice   float64 `json:"mean_price_usd"`
	MinPrice    float64 `json:"min_price_usd"`
	MaxPrice    float64 `json:"max_price_usd"`
	MeanRange   float64 `json:"mean_range_km"`
	MinRange    float64 `json:"min_range_km"`
	MaxRange    float64 `json:"max_range_km"`
	MeanBattery float64 `json:"mean_battery_kwh"`
}

// Summarize computes the dataset-wide summary. Price figures cover only
// records with a valid price; they stay zero when none exists.
func (t *Table) Summarize() Summary {
	s := Summary{Count: t.Len(), Brands: len(t.brands)}
	if t.Empty() {
		return s
	}

	priced := WithValidPrice(t.records)
	if len(priced) > 0 {
		s.MeanPrice, _ = MeanBy(priced, Price)
		min, _ := MinBy(priced, Price)
		max, _ := MaxBy(priced, Price)
		s.MinPrice = min.PriceUSD
		s.MaxPrice = max.PriceUSD
	}

	s.MeanRange, _ = MeanBy(t.records, Range)
	minR, _ := MinBy(t.records, Range)
	maxR, _ := MaxBy(t.records, Range)
	s.MinRange = minR.RangeKM
	s.MaxRange = maxR.RangeKM
	s.MeanBattery, _ = MeanBy(t.records, Battery)

	return s
}
