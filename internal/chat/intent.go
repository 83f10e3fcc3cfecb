package chat

import (
	"strings"

	"github.com/evdataworks/ev-chatbot/internal/store"
)

// Intent identifies which answer generator handles a query.
type Intent string

const (
	IntentGreeting        Intent = "greeting"
	IntentHelp            Intent = "help"
	IntentThanks          Intent = "thanks"
	IntentListBrands      Intent = "list_brands"
	IntentCount           Intent = "count"
	IntentStats           Intent = "stats"
	IntentCompareBrands   Intent = "compare_brands"
	IntentCompareModels   Intent = "compare_models"
	IntentRecordSummary   Intent = "record_summary"
	IntentLongestRange    Intent = "longest_range"
	IntentCheapest        Intent = "cheapest"
	IntentFastest         Intent = "fastest"
	IntentTowing          Intent = "towing"
	IntentBrandHighlights Intent = "brand_highlights"
	IntentBrandSummary    Intent = "brand_summary"
	IntentFallback        Intent = "fallback"
	IntentDataUnavailable Intent = "data_unavailable"
)

// Classification is the result of running a query through the intent
// cascade: the winning intent plus whatever entities its generator needs.
type Classification struct {
	Intent Intent

	// Brand is the first resolved brand, when the query mentions one.
	Brand string

	// Brands holds both sides of a brand comparison.
	Brands [2]string

	// Record holds the resolved model for a single-record summary, or the
	// left side of a model comparison. RecordB is the right side.
	Record   store.Record
	RecordB  store.Record
	RecordOK bool

	// Fragment names the piece of the query that failed to resolve, for
	// NoMatch answers.
	Fragment string
}

var (
	greetingWords = []string{"hi", "hello", "hey", "hiya", "good morning", "good afternoon", "good evening"}

	superlativeWords = []string{"longest", "shortest", "most", "highest", "lowest", "best", "worst", "fastest", "quickest", "slowest", "cheapest", "greatest", "top", "max", "min"}

	summaryLeads = []string{"tell me about ", "info on ", "information on ", "details on ", "details of ", "details about ", "describe ", "summary of "}
)

// Classifier walks a fixed, ordered list of predicates over the lowered
// query. The first predicate to match wins; order is part of the contract
// (comparisons before generic superlatives, superlatives before the
// brand-only fallback).
type Classifier struct {
	resolver *Resolver
}

// NewClassifier creates a classifier over the given resolver.
func NewClassifier(resolver *Resolver) *Classifier {
	return &Classifier{resolver: resolver}
}

type rule struct {
	intent Intent
	match  func(c *Classifier, q string, cls *Classification) bool
}

// classifierRules is the cascade in evaluation order; the first matching
// rule wins, so order is part of the contract. Comparisons sit above the
// generic superlatives, and the brand-only summary comes last.
var classifierRules = []rule{
	{IntentGreeting, (*Classifier).isGreeting},
	{IntentHelp, (*Classifier).isHelp},
	{IntentThanks, (*Classifier).isThanks},
	{IntentListBrands, (*Classifier).isListBrands},
	{IntentCount, (*Classifier).isCount},
	{IntentStats, (*Classifier).isStats},
	{IntentCompareBrands, (*Classifier).isBrandComparison},
	{IntentCompareModels, (*Classifier).isModelComparison},
	{IntentRecordSummary, (*Classifier).isRecordSummary},
	{IntentLongestRange, (*Classifier).isLongestRange},
	{IntentCheapest, (*Classifier).isCheapest},
	{IntentFastest, (*Classifier).isFastest},
	{IntentTowing, (*Classifier).isTowing},
	{IntentBrandHighlights, (*Classifier).isBrandHighlights},
	{IntentBrandSummary, (*Classifier).isBrandSummary},
}

// Classify maps a raw query to an intent and its resolved entities.
// Classification is deterministic given the query and the dataset.
func (c *Classifier) Classify(raw string) Classification {
	q := strings.ToLower(strings.TrimSpace(raw))
	cls := Classification{}

	// The brand resolution result is shared by several rules.
	if brand, ok := c.resolver.ResolveBrand(q); ok {
		cls.Brand = brand
	}

	for _, r := range classifierRules {
		if r.match(c, q, &cls) {
			cls.Intent = r.intent
			return cls
		}
	}

	cls.Intent = IntentFallback
	return cls
}

func (c *Classifier) isGreeting(q string, cls *Classification) bool {
	for _, w := range greetingWords {
		if q == w || strings.HasPrefix(q, w+" ") || strings.HasPrefix(q, w+",") || strings.HasPrefix(q, w+"!") {
			return true
		}
	}
	return false
}

func (c *Classifier) isHelp(q string, cls *Classification) bool {
	return strings.Contains(q, "help") ||
		strings.Contains(q, "what can you do") ||
		strings.Contains(q, "who are you") ||
		strings.Contains(q, "what are you")
}

func (c *Classifier) isThanks(q string, cls *Classification) bool {
	return strings.Contains(q, "thank") ||
		strings.Contains(q, "bye") ||
		strings.Contains(q, "see you") ||
		strings.Contains(q, "cheers")
}

func (c *Classifier) isListBrands(q string, cls *Classification) bool {
	brandToken := strings.Contains(q, "brand") || strings.Contains(q, "make") || strings.Contains(q, "manufacturer")
	listToken := strings.Contains(q, "list") || strings.Contains(q, "available") ||
		strings.Contains(q, "what") || strings.Contains(q, "which") || strings.Contains(q, "all")
	return brandToken && listToken
}

func (c *Classifier) isCount(q string, cls *Classification) bool {
	return strings.Contains(q, "how many") && (strings.Contains(q, "car") || strings.Contains(q, "model"))
}

func (c *Classifier) isStats(q string, cls *Classification) bool {
	datasetToken := strings.Contains(q, "dataset") || strings.Contains(q, "overall") ||
		strings.Contains(q, "all cars") || strings.Contains(q, "database")
	statsToken := strings.Contains(q, "summary") || strings.Contains(q, "statistic") ||
		strings.Contains(q, "stats") || strings.Contains(q, "overview")
	return datasetToken && statsToken
}

// comparisonSides splits "compare A vs B" into its two fragments. Returns
// false when the query is not shaped like a comparison.
func comparisonSides(q string) (string, string, bool) {
	if !strings.Contains(q, "compare") {
		return "", "", false
	}

	sep := ""
	switch {
	case strings.Contains(q, " vs "):
		sep = " vs "
	case strings.Contains(q, " vs. "):
		sep = " vs. "
	case strings.Contains(q, " versus "):
		sep = " versus "
	default:
		return "", "", false
	}

	body := q
	if i := strings.Index(body, "compare"); i >= 0 {
		body = body[i+len("compare"):]
	}

	parts := strings.SplitN(body, sep, 2)
	if len(parts) != 2 {
		return "", "", false
	}

	left := strings.TrimSpace(parts[0])
	right := strings.TrimSpace(parts[1])
	if left == "" || right == "" {
		return "", "", false
	}
	return left, right, true
}

func (c *Classifier) isBrandComparison(q string, cls *Classification) bool {
	left, right, ok := comparisonSides(q)
	if !ok {
		return false
	}

	brandA, okA := c.resolver.ResolveBrand(left)
	brandB, okB := c.resolver.ResolveBrand(right)
	if !okA || !okB || brandA == brandB {
		return false
	}

	cls.Brands = [2]string{brandA, brandB}
	return true
}

func (c *Classifier) isModelComparison(q string, cls *Classification) bool {
	left, right, ok := comparisonSides(q)
	if !ok {
		return false
	}

	recA, okA := c.resolver.ResolveModel(left)
	recB, okB := c.resolver.ResolveModel(right)
	if !okA {
		cls.Fragment = left
		return true
	}
	if !okB {
		cls.Fragment = right
		return true
	}

	cls.Record = recA
	cls.RecordB = recB
	cls.RecordOK = true
	return true
}

func (c *Classifier) isRecordSummary(q string, cls *Classification) bool {
	for _, lead := range summaryLeads {
		i := strings.Index(q, lead)
		if i < 0 {
			continue
		}

		fragment := StripArticle(q[i+len(lead):])
		if fragment == "" {
			continue
		}

		if rec, ok := c.resolver.ResolveModel(fragment); ok {
			cls.Record = rec
			cls.RecordOK = true
			return true
		}

		// The query is clearly asking about something, but neither a model
		// nor a brand matches. Surface the unmatched fragment instead of
		// dropping to the generic fallback.
		if cls.Brand == "" {
			cls.Fragment = fragment
			return true
		}
	}
	return false
}

func hasSuperlative(q string) bool {
	for _, w := range superlativeWords {
		if strings.Contains(q, w) {
			return true
		}
	}
	return false
}

func (c *Classifier) isLongestRange(q string, cls *Classification) bool {
	return hasSuperlative(q) && strings.Contains(q, "range")
}

func (c *Classifier) isCheapest(q string, cls *Classification) bool {
	return strings.Contains(q, "cheapest") || strings.Contains(q, "lowest price") ||
		strings.Contains(q, "least expensive") || (hasSuperlative(q) && strings.Contains(q, "price"))
}

func (c *Classifier) isFastest(q string, cls *Classification) bool {
	return strings.Contains(q, "fastest") || strings.Contains(q, "quickest") || strings.Contains(q, "0-100")
}

func (c *Classifier) isTowing(q string, cls *Classification) bool {
	return strings.Contains(q, "towing") && hasSuperlative(q)
}

func (c *Classifier) isBrandHighlights(q string, cls *Classification) bool {
	return cls.Brand != "" && hasSuperlative(q)
}

func (c *Classifier) isBrandSummary(q string, cls *Classification) bool {
	return cls.Brand != ""
}
