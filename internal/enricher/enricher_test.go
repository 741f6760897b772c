package enricher

import (
	"context"
	"fmt"
	"testing"

	"github.com/ridwanfathin/receipt-normalizer-service/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubIntelligence returns a fixed category for every item and can be
// told to fail after a number of calls
type stubIntelligence struct {
	category  string
	calls     int
	failAfter int
}

func (s *stubIntelligence) CategorizeItems(_ context.Context, names []string) ([]domain.ItemEnrichment, error) {
	s.calls++
	if s.failAfter > 0 && s.calls > s.failAfter {
		return nil, fmt.Errorf("capability unavailable")
	}
	enrichments := make([]domain.ItemEnrichment, len(names))
	for i := range names {
		enrichments[i] = domain.ItemEnrichment{
			Category:          s.category,
			NutritionCategory: NutritionUnhealthy,
		}
	}
	return enrichments, nil
}

func parsedWithItems(names ...string) *domain.ParsedReceipt {
	total := 96.49
	items := make([]domain.LineItem, len(names))
	for i, name := range names {
		items[i] = domain.LineItem{Name: name, Quantity: 1, LineTotal: 1, Confidence: 0.9}
	}
	return &domain.ParsedReceipt{
		Success:    true,
		Merchant:   "Trader Joe's",
		Date:       "2024-03-09",
		Total:      &total,
		Items:      items,
		Confidence: 0.9,
	}
}

func TestRulesCategorizeFirstMatchWins(t *testing.T) {
	rules := NewRules()

	tests := []struct {
		name      string
		category  string
		nutrition string
	}{
		{"OL VE OIL", "pantry", NutritionNeutral},
		{"COCONUT MILK", "dairy", NutritionHealthy},
		{"ORGANIC BANANAS", "produce", NutritionHealthy},
		{"CHICKEN BREAST", "meat", NutritionNeutral},
		{"SOURDOUGH BREAD", "bakery", NutritionNeutral},
		{"SPARKLING WATER", "beverages", NutritionNeutral},
		{"FROZEN PEAS", "frozen", NutritionNeutral},
		{"POTATO CHIPS", "produce", NutritionHealthy}, // "potato" outranks "chip" by rule order
		{"GIFT CARD", CategoryOther, NutritionNeutral},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results, err := rules.CategorizeItems(context.Background(), []string{tt.name})
			require.NoError(t, err)
			require.Len(t, results, 1)
			assert.Equal(t, tt.category, results[0].Category)
			assert.Equal(t, tt.nutrition, results[0].NutritionCategory)
		})
	}
}

func TestRulesDietaryTags(t *testing.T) {
	rules := NewRules()

	results, err := rules.CategorizeItems(context.Background(), []string{"ORGANIC GLUTEN FREE BREAD"})
	require.NoError(t, err)
	assert.Contains(t, results[0].DietaryTags, "organic")
	assert.Contains(t, results[0].DietaryTags, "gluten-free")
}

func TestNormalizeStore(t *testing.T) {
	rules := NewRules()

	normalized, chain, storeType, priceRange := rules.NormalizeStore("TRADER JOE'S #519")
	assert.Equal(t, "Trader Joe's", normalized)
	assert.Equal(t, "Trader Joe's", chain)
	assert.Equal(t, storeTypeGrocery, storeType)
	assert.Equal(t, priceRangeModerate, priceRange)

	// Unmatched names pass through unchanged with the generic type
	normalized, chain, storeType, _ = rules.NormalizeStore("Bob's Corner Market")
	assert.Equal(t, "Bob's Corner Market", normalized)
	assert.Empty(t, chain)
	assert.Equal(t, defaultStoreType, storeType)
}

func TestDeriveInsights(t *testing.T) {
	small := 10.0
	large := 150.0

	insights := deriveInsights(&domain.ParsedReceipt{Total: &small})
	assert.Equal(t, ShoppingConvenience, insights.ShoppingCategory)
	assert.Equal(t, BudgetLow, insights.BudgetCategory)
	assert.Equal(t, 1, insights.EstimatedPeople)

	items := make([]domain.LineItem, 32)
	insights = deriveInsights(&domain.ParsedReceipt{Total: &large, Items: items})
	assert.Equal(t, ShoppingGrocery, insights.ShoppingCategory)
	assert.Equal(t, BudgetPremium, insights.BudgetCategory)
	assert.Equal(t, 2, insights.EstimatedPeople)
}

func TestBlendConfidence(t *testing.T) {
	// round((min(95, 83+10) + 0.9*100) / 2) = round((93+90)/2) = 92
	assert.Equal(t, 92, BlendConfidence(83, 0.9))
	// The boost caps at 95
	assert.Equal(t, 98, BlendConfidence(100, 1.0))
	assert.Equal(t, 48, BlendConfidence(0, 0.85))
}

func TestEnrichWithRulesOnly(t *testing.T) {
	e := New(nil)

	enriched := e.Enrich(context.Background(), parsedWithItems("OL VE OIL", "COCONUT MILK"))

	assert.Equal(t, "Trader Joe's", enriched.NormalizedStoreName)
	require.Len(t, enriched.Items, 2)
	assert.Equal(t, "pantry", enriched.Items[0].Category)
	assert.Equal(t, "dairy", enriched.Items[1].Category)

	// All six completeness checks pass
	assert.Equal(t, 100, enriched.Quality.DataCompleteness)
	assert.Equal(t, BlendConfidence(100, 0.9), enriched.Quality.OverallConfidence)
}

func TestEnrichFailedChunkFallsBackOthersKeepTheirValues(t *testing.T) {
	// First chunk succeeds via the delegate, second chunk fails and
	// must fall back to rules without disturbing the first
	intel := &stubIntelligence{category: "snacks", failAfter: 1}
	e := New(intel)

	names := make([]string, ItemChunkSize+2)
	for i := range names {
		names[i] = "COCONUT MILK"
	}
	enriched := e.Enrich(context.Background(), parsedWithItems(names...))

	require.Len(t, enriched.Items, ItemChunkSize+2)
	for i := 0; i < ItemChunkSize; i++ {
		assert.Equal(t, "snacks", enriched.Items[i].Category, "item %d should keep the delegated value", i)
	}
	for i := ItemChunkSize; i < len(enriched.Items); i++ {
		assert.Equal(t, "dairy", enriched.Items[i].Category, "item %d should fall back to rules", i)
	}
	assert.Equal(t, 2, intel.calls)
}

func TestEnrichDelegateIsAuthoritativeOnNutrition(t *testing.T) {
	intel := &stubIntelligence{category: "snacks"}
	e := New(intel)

	enriched := e.Enrich(context.Background(), parsedWithItems("COCONUT MILK"))

	require.Len(t, enriched.Items, 1)
	assert.Equal(t, NutritionUnhealthy, enriched.Items[0].NutritionCategory)
}

func TestDataCompletenessPartial(t *testing.T) {
	e := New(nil)

	// Merchant, normalized name, date, items and store type present;
	// total missing: 5 of 6 checks
	parsed := parsedWithItems("MILK")
	parsed.Total = nil
	enriched := e.Enrich(context.Background(), parsed)

	assert.Equal(t, 83, enriched.Quality.DataCompleteness)
	assert.Equal(t, 92, enriched.Quality.OverallConfidence)
}
