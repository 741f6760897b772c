package enricher

import (
	"context"
	"log"
	"math"

	"github.com/ridwanfathin/receipt-normalizer-service/internal/domain"
)

// Intelligence is the pluggable capability that categorizes receipt
// items. The delegated implementation calls an external model; Rules
// is the deterministic equivalent. Both populate the same schema so
// downstream stages are policy-agnostic.
type Intelligence interface {
	CategorizeItems(ctx context.Context, names []string) ([]domain.ItemEnrichment, error)
}

// ItemChunkSize bounds how many items are sent to the delegated
// intelligence per call, respecting external payload limits
const ItemChunkSize = 10

// DefaultOCRConfidence stands in for the OCR confidence in the quality
// blend when the parser produced none
const DefaultOCRConfidence = 0.85

// Insight thresholds. Named so the derivation rules read as policy,
// not magic numbers.
const (
	GroceryTotalThreshold = 50.0
	ItemsPerPerson        = 15
	BudgetThreshold       = 25.0
	ModerateThreshold     = 100.0
)

// Shopping and budget category labels
const (
	ShoppingGrocery     = "grocery"
	ShoppingConvenience = "convenience"

	BudgetLow      = "budget"
	BudgetModerate = "moderate"
	BudgetPremium  = "premium"
)

// completenessChecks is the fixed number of signals scored by
// DataCompleteness
const completenessChecks = 6

// Enricher elevates a ParsedReceipt into an EnrichedReceipt. The
// intelligence strategy is chosen once at construction; a failing or
// unconfigured delegate silently falls back to the rule path for the
// affected chunk and never propagates the failure.
type Enricher struct {
	intel Intelligence
	rules *Rules
}

// New creates an enricher backed by the given intelligence. Passing
// nil selects the rule-based path outright.
func New(intel Intelligence) *Enricher {
	rules := NewRules()
	if intel == nil {
		intel = rules
	}
	return &Enricher{intel: intel, rules: rules}
}

// Enrich produces the enriched receipt. It never fails: every error
// on the delegated path downgrades to deterministic rules.
func (e *Enricher) Enrich(ctx context.Context, parsed *domain.ParsedReceipt) *domain.EnrichedReceipt {
	enriched := &domain.EnrichedReceipt{Parsed: parsed}

	normalized, chain, storeType, priceRange := e.rules.NormalizeStore(parsed.Merchant)
	enriched.NormalizedStoreName = normalized
	enriched.Chain = chain
	enriched.StoreType = storeType
	enriched.PriceRange = priceRange

	enriched.Items = e.enrichItems(ctx, parsed.Items)
	enriched.Insights = deriveInsights(parsed)

	completeness := dataCompleteness(parsed, enriched)
	ocr := parsed.Confidence
	if ocr == 0 {
		ocr = DefaultOCRConfidence
	}
	enriched.Quality = domain.QualityMetrics{
		DataCompleteness:  completeness,
		OverallConfidence: BlendConfidence(completeness, ocr),
	}

	return enriched
}

// enrichItems sends bounded chunks to the intelligence and merges the
// results back by position. A failed chunk alone falls back to rules;
// chunks that already succeeded keep their enriched values.
func (e *Enricher) enrichItems(ctx context.Context, items []domain.LineItem) []domain.EnrichedItem {
	enriched := make([]domain.EnrichedItem, len(items))
	for i, item := range items {
		enriched[i].LineItem = item
	}

	for start := 0; start < len(items); start += ItemChunkSize {
		end := start + ItemChunkSize
		if end > len(items) {
			end = len(items)
		}

		names := make([]string, 0, end-start)
		for _, item := range items[start:end] {
			names = append(names, item.Name)
		}

		results, err := e.intel.CategorizeItems(ctx, names)
		if err != nil || len(results) != len(names) {
			if err != nil {
				log.Printf("item enrichment unavailable, falling back to rules: %v", err)
			}
			results, _ = e.rules.CategorizeItems(ctx, names)
		}

		for i, result := range results {
			enriched[start+i].ItemEnrichment = result
		}
	}

	return enriched
}

// deriveInsights applies the deterministic threshold rules over the
// receipt totals and item count
func deriveInsights(parsed *domain.ParsedReceipt) domain.ReceiptInsights {
	var total float64
	if parsed.Total != nil {
		total = *parsed.Total
	}

	insights := domain.ReceiptInsights{
		ShoppingCategory: ShoppingConvenience,
		EstimatedPeople:  1,
	}
	if total > GroceryTotalThreshold {
		insights.ShoppingCategory = ShoppingGrocery
	}

	if people := len(parsed.Items) / ItemsPerPerson; people > 1 {
		insights.EstimatedPeople = people
	}

	switch {
	case total < BudgetThreshold:
		insights.BudgetCategory = BudgetLow
	case total < ModerateThreshold:
		insights.BudgetCategory = BudgetModerate
	default:
		insights.BudgetCategory = BudgetPremium
	}

	return insights
}

// dataCompleteness counts the true checks among the six completeness
// signals and reports them as an integer percentage
func dataCompleteness(parsed *domain.ParsedReceipt, enriched *domain.EnrichedReceipt) int {
	checks := []bool{
		parsed.Merchant != "",
		enriched.NormalizedStoreName != "",
		parsed.Date != "",
		parsed.Total != nil && *parsed.Total > 0,
		len(parsed.Items) > 0,
		enriched.StoreType != "",
	}

	count := 0
	for _, ok := range checks {
		if ok {
			count++
		}
	}
	return int(math.Round(float64(count) / completenessChecks * 100))
}

// BlendConfidence reproduces the exact two-stage confidence blend the
// downstream threshold logic depends on:
// round((min(95, completeness+10) + ocr*100) / 2)
func BlendConfidence(completeness int, ocrConfidence float64) int {
	boosted := math.Min(95, float64(completeness)+10)
	return int(math.Round((boosted + ocrConfidence*100) / 2))
}
