package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMaxBy(t *testing.T) {
	records := testRecords()

	rec, ok := MaxBy(records, Range)
	require.True(t, ok)
	assert.Equal(t, "Model S", rec.Model)

	_, ok = MaxBy(nil, Range)
	assert.False(t, ok)
}

func TestMinBy(t *testing.T) {
	records := testRecords()

	rec, ok := MinBy(records, Accel)
	require.True(t, ok)
	assert.Equal(t, "Model S", rec.Model)

	_, ok = MinBy([]Record{}, Accel)
	assert.False(t, ok)
}

func TestMinByPriceRequiresValidPriceFilter(t *testing.T) {
	records := testRecords()

	// The Leaf carries a zero price; a raw MinBy would pick it.
	rec, ok := MinBy(records, Price)
	require.True(t, ok)
	assert.Equal(t, "Leaf", rec.Model)

	rec, ok = MinBy(WithValidPrice(records), Price)
	require.True(t, ok)
	assert.Equal(t, "Model 3", rec.Model)
}

func TestMeanBy(t *testing.T) {
	records := []Record{
		{Brand: "A", Model: "x", PriceUSD: 10000},
		{Brand: "A", Model: "y", PriceUSD: 30000},
	}

	mean, ok := MeanBy(records, Price)
	require.True(t, ok)
	assert.InDelta(t, 20000, mean, 0.001)

	_, ok = MeanBy(nil, Price)
	assert.False(t, ok)
}

func TestWithValidPrice(t *testing.T) {
	filtered := WithValidPrice(testRecords())
	assert.Len(t, filtered, 3)
	for _, r := range filtered {
		assert.Greater(t, r.PriceUSD, 0.0)
	}
}

func TestSummarize(t *testing.T) {
	table := NewTable(testRecords())
	summary := table.Summarize()

	assert.Equal(t, 4, summary.Count)
	assert.Equal(t, 3, summary.Brands)
	// Price stats exclude the unpriced Leaf.
	assert.InDelta(t, 46000, summary.MinPrice, 0.001)
	assert.InDelta(t, 89990, summary.MaxPrice, 0.001)
	assert.InDelta(t, (46000.0+89990+52000)/3, summary.MeanPrice, 0.001)
	// Range stats cover every record.
	assert.InDelta(t, 270, summary.MinRange, 0.001)
	assert.InDelta(t, 634, summary.MaxRange, 0.001)
}

func TestSummarizeEmptyTable(t *testing.T) {
	summary := NewTable(nil).Summarize()
	assert.Equal(t, 0, summary.Count)
	assert.Equal(t, 0.0, summary.MeanPrice)
}

func TestColumnAccessors(t *testing.T) {
	r := Record{PriceUSD: 1, RangeKM: 2, Accel0To100: 3, TopSpeedKMH: 4, BatteryKWH: 5, EfficiencyWhKM: 6, TowingKG: 7}

	assert.Equal(t, 1.0, Price(r))
	assert.Equal(t, 2.0, Range(r))
	assert.Equal(t, 3.0, Accel(r))
	assert.Equal(t, 4.0, TopSpeed(r))
	assert.Equal(t, 5.0, Battery(r))
	assert.Equal(t, 6.0, Efficiency(r))
	assert.Equal(t, 7.0, Towing(r))
}
