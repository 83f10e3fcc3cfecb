package chat

import (
	"context"
	"math/rand"
	"time"

	"github.com/evdataworks/ev-chatbot/internal/observability"
	"github.com/evdataworks/ev-chatbot/internal/store"
)

// Engine answers natural-language questions about the car dataset. It
// never fails: every query, including unintelligible ones and queries
// against an empty dataset, produces a human-readable reply.
type Engine struct {
	table      *store.Table
	classifier *Classifier
	generator  *Generator
	logger     *observability.Logger
}

// NewEngine creates an engine over an immutable table. The random source
// drives phrase selection only; pass nil for a non-deterministic one.
func NewEngine(table *store.Table, rng *rand.Rand) *Engine {
	resolver := NewResolver(table)
	picker := NewPicker(rng)

	return &Engine{
		table:      table,
		classifier: NewClassifier(resolver),
		generator:  NewGenerator(table, picker),
		logger:     observability.NewLogger("chat-engine"),
	}
}

// Answer resolves a query to a reply and the intent that produced it.
func (e *Engine) Answer(ctx context.Context, query string) (string, Intent) {
	start := time.Now()

	if e.table.Empty() {
		e.logger.Warn(ctx, "Query against empty dataset", map[string]interface{}{
			"query": query,
		})
		return DataUnavailableReply, IntentDataUnavailable
	}

	cls := e.classifier.Classify(query)
	reply := e.dispatch(cls)

	e.logger.Debug(ctx, "Query answered", map[string]interface{}{
		"query":       query,
		"intent":      string(cls.Intent),
		"duration_ms": time.Since(start).Milliseconds(),
	})

	return reply, cls.Intent
}

func (e *Engine) dispatch(cls Classification) string {
	switch cls.Intent {
	case IntentGreeting:
		return e.generator.Greeting()
	case IntentHelp:
		return e.generator.Help()
	case IntentThanks:
		return e.generator.Thanks()
	case IntentListBrands:
		return e.generator.ListBrands()
	case IntentCount:
		return e.generator.Count()
	case IntentStats:
		return e.generator.Stats()
	case IntentCompareBrands:
		return e.generator.CompareBrands(cls.Brands[0], cls.Brands[1])
	case IntentCompareModels:
		return e.generator.CompareModels(cls)
	case IntentRecordSummary:
		return e.generator.RecordSummary(cls)
	case IntentLongestRange:
		return e.generator.LongestRange(cls.Brand)
	case IntentCheapest:
		return e.generator.Cheapest(cls.Brand)
	case IntentFastest:
		return e.generator.Fastest(cls.Brand)
	case IntentTowing:
		return e.generator.Towing(cls.Brand)
	case IntentBrandHighlights:
		return e.generator.BrandHighlights(cls.Brand)
	case IntentBrandSummary:
		return e.generator.BrandSummary(cls.Brand)
	default:
		return e.generator.Fallback()
	}
}
