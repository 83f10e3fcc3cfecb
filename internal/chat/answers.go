package chat

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/evdataworks/ev-chatbot/internal/store"
)

// DataUnavailableReply is returned for every query when the record store
// is empty or failed to load.
const DataUnavailableReply = "Sorry, I can't access the car data at the moment."

// Generator renders the textual answer for each intent. All methods are
// pure given the immutable table; only phrase choice is randomized.
type Generator struct {
	table   *store.Table
	phrases *Picker
}

// NewGenerator creates a generator over the given table and phrase picker.
func NewGenerator(table *store.Table, phrases *Picker) *Generator {
	return &Generator{table: table, phrases: phrases}
}

func (g *Generator) Greeting() string { return g.phrases.Pick(greetingPhrases) }
func (g *Generator) Help() string     { return g.phrases.Pick(helpPhrases) }
func (g *Generator) Thanks() string   { return g.phrases.Pick(thanksPhrases) }
func (g *Generator) Fallback() string { return g.phrases.Pick(fallbackPhrases) }

// ListBrands enumerates every known brand in sorted order.
func (g *Generator) ListBrands() string {
	return fmt.Sprintf("Available brands: %s", strings.Join(g.table.Brands(), ", "))
}

// Count reports the dataset cardinality.
func (g *Generator) Count() string {
	return fmt.Sprintf("There are %d car models in the dataset.", g.table.Len())
}

// Stats reports the dataset-wide statistical summary.
func (g *Generator) Stats() string {
	s := g.table.Summarize()

	var sb strings.Builder
	fmt.Fprintf(&sb, "The dataset has %d car models across %d brands. ", s.Count, s.Brands)
	fmt.Fprintf(&sb, "Prices run from $%s to $%s (average $%s). ",
		formatMoney(s.MinPrice, 0), formatMoney(s.MaxPrice, 0), formatMoney(s.MeanPrice, 2))
	fmt.Fprintf(&sb, "Range runs from %s km to %s km (average %.1f km), and the average battery is %.1f kWh.",
		formatNumber(s.MinRange), formatNumber(s.MaxRange), s.MeanRange, s.MeanBattery)
	return sb.String()
}

// CompareBrands renders per-brand aggregate stats side by side.
func (g *Generator) CompareBrands(brandA, brandB string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Comparing %s and %s:\n", brandA, brandB)
	sb.WriteString(g.brandStatsLine(brandA))
	sb.WriteString("\n")
	sb.WriteString(g.brandStatsLine(brandB))
	return sb.String()
}

func (g *Generator) brandStatsLine(brand string) string {
	records := g.table.ByBrand(brand)

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s: %d models", brand, len(records))

	if mean, ok := store.MeanBy(store.WithValidPrice(records), store.Price); ok {
		fmt.Fprintf(&sb, ", average price $%s", formatMoney(mean, 2))
	}
	if best, ok := store.MaxBy(records, store.Range); ok {
		fmt.Fprintf(&sb, ", best range %s km (%s)", formatNumber(best.RangeKM), best.Model)
	}
	if cheapest, ok := store.MinBy(store.WithValidPrice(records), store.Price); ok {
		fmt.Fprintf(&sb, ", cheapest $%s (%s)", formatMoney(cheapest.PriceUSD, 0), cheapest.Model)
	}
	if quickest, ok := store.MinBy(records, store.Accel); ok {
		fmt.Fprintf(&sb, ", best 0-100 %ss (%s)", formatNumber(quickest.Accel0To100), quickest.Model)
	}
	return sb.String()
}

// CompareModels renders both resolved records' full field sets side by
// side, or names the fragment that failed to resolve.
func (g *Generator) CompareModels(cls Classification) string {
	if !cls.RecordOK {
		return noMatchReply(cls.Fragment)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Comparing the %s %s and the %s %s:\n",
		cls.Record.Brand, cls.Record.Model, cls.RecordB.Brand, cls.RecordB.Model)
	sb.WriteString(recordFields(cls.Record))
	sb.WriteString("\n")
	sb.WriteString(recordFields(cls.RecordB))
	return sb.String()
}

// RecordSummary renders one record's full field set, or names the
// fragment that failed to resolve.
func (g *Generator) RecordSummary(cls Classification) string {
	if !cls.RecordOK {
		return noMatchReply(cls.Fragment)
	}
	return recordFields(cls.Record)
}

// LongestRange names the record with the maximum range within the scope.
func (g *Generator) LongestRange(brand string) string {
	records, scoped := g.scope(brand)

	car, ok := store.MaxBy(records, store.Range)
	if !ok {
		return emptyScopeReply(brand)
	}

	if scoped {
		return fmt.Sprintf("The %s with the longest range is the %s, with %s km.",
			brand, car.Model, formatNumber(car.RangeKM))
	}
	return fmt.Sprintf(g.phrases.Pick(longestRangePhrases), car.Brand, car.Model, formatNumber(car.RangeKM))
}

// Cheapest names the record with the minimum valid price within the
// scope. Zero-priced records are treated as missing and excluded.
func (g *Generator) Cheapest(brand string) string {
	records, scoped := g.scope(brand)

	car, ok := store.MinBy(store.WithValidPrice(records), store.Price)
	if !ok {
		if scoped {
			return fmt.Sprintf("Sorry, none of the %s models have a valid price on file.", brand)
		}
		return "Sorry, no cars with a valid price were found."
	}

	if scoped {
		return fmt.Sprintf("The cheapest %s is the %s, valued at $%s.",
			brand, car.Model, formatMoney(car.PriceUSD, 0))
	}
	return fmt.Sprintf(g.phrases.Pick(cheapestPhrases), car.Brand, car.Model, formatMoney(car.PriceUSD, 0))
}

// Fastest names the record with the minimum 0-100 time within the scope.
func (g *Generator) Fastest(brand string) string {
	records, scoped := g.scope(brand)

	car, ok := store.MinBy(records, store.Accel)
	if !ok {
		return emptyScopeReply(brand)
	}

	if scoped {
		return fmt.Sprintf("The quickest %s (0-100 km/h) is the %s at %s seconds.",
			brand, car.Model, formatNumber(car.Accel0To100))
	}
	return fmt.Sprintf(g.phrases.Pick(fastestPhrases), car.Brand, car.Model, formatNumber(car.Accel0To100))
}

// Towing names the record with the maximum towing capacity within the scope.
func (g *Generator) Towing(brand string) string {
	records, scoped := g.scope(brand)

	car, ok := store.MaxBy(records, store.Towing)
	if !ok {
		return emptyScopeReply(brand)
	}

	if scoped {
		return fmt.Sprintf("The %s with the most towing capacity is the %s, at %s kg.",
			brand, car.Model, formatNumber(car.TowingKG))
	}
	return fmt.Sprintf(g.phrases.Pick(towingPhrases), car.Brand, car.Model, formatNumber(car.TowingKG))
}

// BrandHighlights answers a brand-scoped superlative with no metric
// keyword by reporting the brand's standout figures.
func (g *Generator) BrandHighlights(brand string) string {
	records := g.table.ByBrand(brand)
	if len(records) == 0 {
		return noMatchReply(brand)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Highlights for %s:", brand)
	if best, ok := store.MaxBy(records, store.Range); ok {
		fmt.Fprintf(&sb, " best range is the %s at %s km.", best.Model, formatNumber(best.RangeKM))
	}
	if cheapest, ok := store.MinBy(store.WithValidPrice(records), store.Price); ok {
		fmt.Fprintf(&sb, " The cheapest is the %s at $%s.", cheapest.Model, formatMoney(cheapest.PriceUSD, 0))
	}
	if quickest, ok := store.MinBy(records, store.Accel); ok {
		fmt.Fprintf(&sb, " The quickest does 0-100 in %s seconds (%s).", formatNumber(quickest.Accel0To100), quickest.Model)
	}
	return sb.String()
}

// BrandSummary reports the model count and mean price for a brand.
func (g *Generator) BrandSummary(brand string) string {
	records := g.table.ByBrand(brand)
	if len(records) == 0 {
		return noMatchReply(brand)
	}

	mean, ok := store.MeanBy(store.WithValidPrice(records), store.Price)
	if !ok {
		return fmt.Sprintf("I found %d models for %s, but none of them have a valid price on file.", len(records), brand)
	}
	return fmt.Sprintf("I found %d models for %s. The average US value is $%s.", len(records), brand, formatMoney(mean, 2))
}

// scope returns the record subset for an extremum: the resolved brand's
// records when one was mentioned, otherwise the whole dataset.
func (g *Generator) scope(brand string) ([]store.Record, bool) {
	if brand != "" {
		return g.table.ByBrand(brand), true
	}
	return g.table.Records(), false
}

func noMatchReply(fragment string) string {
	return fmt.Sprintf("Sorry, I have no information on '%s'.", strings.ToUpper(fragment))
}

func emptyScopeReply(brand string) string {
	if brand != "" {
		return fmt.Sprintf("Sorry, I have no data for %s models.", brand)
	}
	return DataUnavailableReply
}

// recordFields renders a record's full field set on one line.
func recordFields(r store.Record) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s %s:", r.Brand, r.Model)
	if r.HasPrice() {
		fmt.Fprintf(&sb, " price $%s,", formatMoney(r.PriceUSD, 0))
	} else {
		sb.WriteString(" price unknown,")
	}
	fmt.Fprintf(&sb, " range %s km, 0-100 in %ss, top speed %s km/h, battery %s kWh, efficiency %s Wh/km, %d seats",
		formatNumber(r.RangeKM), formatNumber(r.Accel0To100), formatNumber(r.TopSpeedKMH),
		formatNumber(r.BatteryKWH), formatNumber(r.EfficiencyWhKM), r.Seats)
	if r.TowingKG > 0 {
		fmt.Fprintf(&sb, ", towing %s kg", formatNumber(r.TowingKG))
	}
	return sb.String()
}

// formatNumber renders a float with no trailing zeros.
func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// formatMoney renders a dollar amount with thousands separators and the
// given number of decimals.
func formatMoney(v float64, decimals int) string {
	s := strconv.FormatFloat(v, 'f', decimals, 64)

	intPart := s
	fracPart := ""
	if i := strings.Index(s, "."); i >= 0 {
		intPart, fracPart = s[:i], s[i:]
	}

	neg := strings.HasPrefix(intPart, "-")
	if neg {
		intPart = intPart[1:]
	}

	var sb strings.Builder
	for i, digit := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			sb.WriteByte(',')
		}
		sb.WriteRune(digit)
	}

	out := sb.String() + fracPart
	if neg {
		out = "-" + out
	}
	return out
}
