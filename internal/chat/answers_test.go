package chat

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evdataworks/ev-chatbot/internal/store"
)

// fixedGenerator pins the phrase picker to seed 1 so pool-backed answers
// are reproducible.
func fixedGenerator(table *store.Table) *Generator {
	return NewGenerator(table, NewPicker(rand.New(rand.NewSource(1))))
}

func TestCount(t *testing.T) {
	g := fixedGenerator(testTable())
	assert.Equal(t, "There are 4 car models in the dataset.", g.Count())
}

func TestListBrands(t *testing.T) {
	g := fixedGenerator(testTable())
	assert.Equal(t, "Available brands: BMW, NISSAN, TESLA", g.ListBrands())
}

func TestLongestRangeDataset(t *testing.T) {
	g := fixedGenerator(testTable())

	reply := g.LongestRange("")
	assert.Contains(t, reply, "TESLA")
	assert.Contains(t, reply, "Model S")
	assert.Contains(t, reply, "600")
}

func TestLongestRangeBrandScoped(t *testing.T) {
	g := fixedGenerator(testTable())

	// Scoped to BMW, the answer must not be the dataset-wide winner.
	reply := g.LongestRange("BMW")
	assert.Equal(t, "The BMW with the longest range is the i4, with 480 km.", reply)
}

func TestCheapestExcludesZeroPrice(t *testing.T) {
	g := fixedGenerator(testTable())

	// The Leaf has no recorded price; it must never win the cheapest slot.
	reply := g.Cheapest("")
	assert.Contains(t, reply, "Model 3")
	assert.NotContains(t, reply, "Leaf")
	assert.Contains(t, reply, "40,000")
}

func TestCheapestBrandWithNoValidPrice(t *testing.T) {
	g := fixedGenerator(testTable())

	reply := g.Cheapest("NISSAN")
	assert.Equal(t, "Sorry, none of the NISSAN models have a valid price on file.", reply)
}

func TestFastest(t *testing.T) {
	g := fixedGenerator(testTable())

	reply := g.Fastest("")
	assert.Contains(t, reply, "Model S")
	assert.Contains(t, reply, "3.2")
}

func TestTowing(t *testing.T) {
	g := fixedGenerator(testTable())

	reply := g.Towing("")
	// Model S and i4 tie at 1600 kg; the first record scanned wins and the
	// reported figure is what matters.
	assert.Contains(t, reply, "1600")
}

func TestEmptyScopeReply(t *testing.T) {
	table := store.NewTable([]store.Record{
		{Brand: "Tesla", Model: "Model 3", PriceUSD: 40000, RangeKM: 450, Accel0To100: 6.1},
	})
	g := fixedGenerator(table)

	// scope() only returns empty subsets for brands unknown to the table,
	// which the classifier never produces, but the generator still answers.
	reply := g.LongestRange("BMW")
	assert.Equal(t, "Sorry, I have no data for BMW models.", reply)
}

func TestBrandSummary(t *testing.T) {
	g := fixedGenerator(testTable())

	reply := g.BrandSummary("TESLA")
	assert.Equal(t, "I found 2 models for TESLA. The average US value is $65,000.00.", reply)
}

func TestBrandSummaryNoValidPrices(t *testing.T) {
	g := fixedGenerator(testTable())

	reply := g.BrandSummary("NISSAN")
	assert.Equal(t, "I found 1 models for NISSAN, but none of them have a valid price on file.", reply)
}

func TestBrandHighlights(t *testing.T) {
	g := fixedGenerator(testTable())

	reply := g.BrandHighlights("TESLA")
	assert.Contains(t, reply, "Highlights for TESLA")
	assert.Contains(t, reply, "Model S")
	assert.Contains(t, reply, "600")
	assert.Contains(t, reply, "Model 3")
	assert.Contains(t, reply, "40,000")
	assert.Contains(t, reply, "3.2")
}

func TestRecordSummary(t *testing.T) {
	g := fixedGenerator(testTable())
	c := testClassifier()

	cls := c.Classify("tell me about the i4")
	require.True(t, cls.RecordOK)

	reply := g.RecordSummary(cls)
	assert.Contains(t, reply, "BMW i4")
	assert.Contains(t, reply, "$55,000")
	assert.Contains(t, reply, "480 km")
	assert.Contains(t, reply, "5.7")
	assert.Contains(t, reply, "5 seats")
}

func TestRecordSummaryUnknownPrice(t *testing.T) {
	g := fixedGenerator(testTable())
	c := testClassifier()

	cls := c.Classify("tell me about the leaf")
	require.True(t, cls.RecordOK)

	reply := g.RecordSummary(cls)
	assert.Contains(t, reply, "price unknown")
	assert.NotContains(t, reply, "$0")
}

func TestRecordSummaryNoMatch(t *testing.T) {
	g := fixedGenerator(testTable())

	reply := g.RecordSummary(Classification{Fragment: "flyingcar"})
	assert.Equal(t, "Sorry, I have no information on 'FLYINGCAR'.", reply)
}

func TestCompareBrands(t *testing.T) {
	g := fixedGenerator(testTable())

	reply := g.CompareBrands("TESLA", "BMW")
	assert.Contains(t, reply, "Comparing TESLA and BMW")
	assert.Contains(t, reply, "TESLA: 2 models")
	assert.Contains(t, reply, "BMW: 1 models")
	assert.Contains(t, reply, "best range 600 km (Model S)")
	assert.Contains(t, reply, "cheapest $40,000 (Model 3)")
}

func TestCompareBrandsIsSymmetricInFacts(t *testing.T) {
	g := fixedGenerator(testTable())

	ab := g.CompareBrands("TESLA", "BMW")
	ba := g.CompareBrands("BMW", "TESLA")

	// Both orderings carry the same per-brand lines, just swapped.
	for _, fact := range []string{"TESLA: 2 models", "BMW: 1 models", "best range 600 km (Model S)", "best range 480 km (i4)"} {
		assert.Contains(t, ab, fact)
		assert.Contains(t, ba, fact)
	}
}

func TestCompareModels(t *testing.T) {
	g := fixedGenerator(testTable())
	c := testClassifier()

	cls := c.Classify("compare model 3 vs i4")
	require.True(t, cls.RecordOK)

	reply := g.CompareModels(cls)
	assert.Contains(t, reply, "Comparing the TESLA Model 3 and the BMW i4")
	assert.Contains(t, reply, "TESLA Model 3:")
	assert.Contains(t, reply, "BMW i4:")
}

func TestCompareModelsNoMatch(t *testing.T) {
	g := fixedGenerator(testTable())

	reply := g.CompareModels(Classification{Fragment: "hovercraft"})
	assert.Equal(t, "Sorry, I have no information on 'HOVERCRAFT'.", reply)
}

func TestStats(t *testing.T) {
	g := fixedGenerator(testTable())

	reply := g.Stats()
	assert.Contains(t, reply, "4 car models across 3 brands")
	// Price stats exclude the unpriced Leaf.
	assert.Contains(t, reply, "$40,000 to $90,000")
	assert.Contains(t, reply, "270 km to 600 km")
}

func TestConversationalAnswersDrawFromPools(t *testing.T) {
	g := fixedGenerator(testTable())

	assert.Contains(t, greetingPhrases, g.Greeting())
	assert.Contains(t, helpPhrases, g.Help())
	assert.Contains(t, thanksPhrases, g.Thanks())
	assert.Contains(t, fallbackPhrases, g.Fallback())
}

func TestPickerIsDeterministicWithSeed(t *testing.T) {
	a := NewPicker(rand.New(rand.NewSource(7)))
	b := NewPicker(rand.New(rand.NewSource(7)))

	for i := 0; i < 20; i++ {
		assert.Equal(t, a.Pick(greetingPhrases), b.Pick(greetingPhrases))
	}
}

func TestFormatMoney(t *testing.T) {
	tests := []struct {
		v        float64
		decimals int
		want     string
	}{
		{0, 0, "0"},
		{999, 0, "999"},
		{1000, 0, "1,000"},
		{46000, 0, "46,000"},
		{1234567, 0, "1,234,567"},
		{65000, 2, "65,000.00"},
		{-46000, 0, "-46,000"},
		{999.5, 0, "1,000"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, formatMoney(tt.v, tt.decimals), "formatMoney(%v, %d)", tt.v, tt.decimals)
	}
}

func TestFormatNumber(t *testing.T) {
	assert.Equal(t, "450", formatNumber(450))
	assert.Equal(t, "6.1", formatNumber(6.1))
	assert.Equal(t, "3.2", formatNumber(3.2))
}
