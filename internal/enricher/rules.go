package enricher

import (
	"context"
	"strings"

	"github.com/ridwanfathin/receipt-normalizer-service/internal/domain"
)

// Store types and price ranges used by the chain table
const (
	defaultStoreType = "retail"

	storeTypeSupermarket = "supermarket"
	storeTypeGrocery     = "grocery"
	storeTypeWarehouse   = "warehouse"
	storeTypeConvenience = "convenience"
	storeTypePharmacy    = "pharmacy"

	priceRangeBudget   = "budget"
	priceRangeModerate = "moderate"
	priceRangePremium  = "premium"
)

// Nutrition categories. The rule path only ever derives healthy or
// neutral; the delegated intelligence may also report unhealthy and is
// authoritative when present.
const (
	NutritionHealthy   = "healthy"
	NutritionNeutral   = "neutral"
	NutritionUnhealthy = "unhealthy"
)

// CategoryOther is assigned when no keyword rule matches an item name
const CategoryOther = "other"

// chainEntry maps a store-name substring to a known chain profile
type chainEntry struct {
	match      string
	chain      string
	storeType  string
	priceRange string
}

// categoryRule maps item-name keywords to a category. Rules are
// evaluated in order and the first match wins; the order is a
// behavioral contract, not a style choice.
type categoryRule struct {
	category string
	keywords []string
}

// dietaryRule tags items whose name carries a dietary marker
type dietaryRule struct {
	match string
	tag   string
}

func defaultChainTable() []chainEntry {
	return []chainEntry{
		{"walmart", "Walmart", storeTypeSupermarket, priceRangeBudget},
		{"wal-mart", "Walmart", storeTypeSupermarket, priceRangeBudget},
		{"target", "Target", storeTypeSupermarket, priceRangeModerate},
		{"kroger", "Kroger", storeTypeSupermarket, priceRangeModerate},
		{"safeway", "Safeway", storeTypeSupermarket, priceRangeModerate},
		{"whole foods", "Whole Foods Market", storeTypeGrocery, priceRangePremium},
		{"trader joe", "Trader Joe's", storeTypeGrocery, priceRangeModerate},
		{"costco", "Costco", storeTypeWarehouse, priceRangeModerate},
		{"sam's club", "Sam's Club", storeTypeWarehouse, priceRangeModerate},
		{"aldi", "Aldi", storeTypeSupermarket, priceRangeBudget},
		{"publix", "Publix", storeTypeSupermarket, priceRangeModerate},
		{"7-eleven", "7-Eleven", storeTypeConvenience, priceRangeModerate},
		{"wawa", "Wawa", storeTypeConvenience, priceRangeModerate},
		{"walgreens", "Walgreens", storeTypePharmacy, priceRangeModerate},
		{"cvs", "CVS", storeTypePharmacy, priceRangeModerate},
	}
}

func defaultCategoryRules() []categoryRule {
	return []categoryRule{
		{"produce", []string{"apple", "banana", "orange", "lemon", "lettuce", "spinach", "tomato", "onion", "potato", "carrot", "pepper", "broccoli", "avocado", "grape", "berry", "berries", "fruit", "vegetable", "salad"}},
		{"dairy", []string{"milk", "cheese", "yogurt", "butter", "cream", "egg"}},
		{"meat", []string{"chicken", "beef", "pork", "turkey", "ham", "bacon", "sausage", "steak", "fish", "salmon", "tuna", "shrimp"}},
		{"bakery", []string{"bread", "bagel", "muffin", "croissant", "roll", "bun", "cake", "donut", "tortilla"}},
		{"beverages", []string{"water", "juice", "soda", "cola", "coffee", "tea", "beer", "wine", "drink"}},
		{"pantry", []string{"oil", "rice", "pasta", "flour", "sugar", "salt", "sauce", "cereal", "bean", "soup", "spice", "vinegar", "honey", "peanut butter"}},
		{"frozen", []string{"frozen", "ice cream", "pizza", "popsicle"}},
		{"snacks", []string{"chip", "cookie", "candy", "chocolate", "cracker", "popcorn", "pretzel", "snack", "granola"}},
	}
}

func defaultDietaryRules() []dietaryRule {
	return []dietaryRule{
		{"organic", "organic"},
		{"gluten free", "gluten-free"},
		{"gluten-free", "gluten-free"},
		{"vegan", "vegan"},
		{"sugar free", "sugar-free"},
		{"sugar-free", "sugar-free"},
		{"low fat", "low-fat"},
	}
}

// healthyCategories drive the rule path's nutrition classification
var healthyCategories = map[string]bool{
	"produce": true,
	"dairy":   true,
}

// Rules is the deterministic intelligence implementation. It is also
// the fallback when the delegated capability fails or is unconfigured.
type Rules struct {
	chains        []chainEntry
	categoryRules []categoryRule
	dietaryRules  []dietaryRule
}

// NewRules builds the rule-based intelligence with the static tables
func NewRules() *Rules {
	return &Rules{
		chains:        defaultChainTable(),
		categoryRules: defaultCategoryRules(),
		dietaryRules:  defaultDietaryRules(),
	}
}

// CategorizeItems implements Intelligence. It never fails.
func (r *Rules) CategorizeItems(_ context.Context, names []string) ([]domain.ItemEnrichment, error) {
	enrichments := make([]domain.ItemEnrichment, len(names))
	for i, name := range names {
		enrichments[i] = r.categorize(name)
	}
	return enrichments, nil
}

// categorize scans the lower-cased item name against the ordered
// keyword rules; the first match wins
func (r *Rules) categorize(name string) domain.ItemEnrichment {
	lower := strings.ToLower(name)

	enrichment := domain.ItemEnrichment{
		Category:          CategoryOther,
		NutritionCategory: NutritionNeutral,
	}

	for _, rule := range r.categoryRules {
		for _, keyword := range rule.keywords {
			if strings.Contains(lower, keyword) {
				enrichment.Category = rule.category
				enrichment.Subcategory = keyword
				if healthyCategories[rule.category] {
					enrichment.NutritionCategory = NutritionHealthy
				}
				return r.applyDietaryTags(lower, enrichment)
			}
		}
	}

	return r.applyDietaryTags(lower, enrichment)
}

func (r *Rules) applyDietaryTags(lower string, enrichment domain.ItemEnrichment) domain.ItemEnrichment {
	for _, rule := range r.dietaryRules {
		if strings.Contains(lower, rule.match) {
			enrichment.DietaryTags = append(enrichment.DietaryTags, rule.tag)
		}
	}
	return enrichment
}

// NormalizeStore resolves a raw store name against the chain table.
// The function is total: every input produces a non-empty normalized
// name, with unmatched names passing through unchanged.
func (r *Rules) NormalizeStore(name string) (normalized, chain, storeType, priceRange string) {
	trimmed := strings.TrimSpace(name)
	lower := strings.ToLower(trimmed)
	for _, entry := range r.chains {
		if strings.Contains(lower, entry.match) {
			return entry.chain, entry.chain, entry.storeType, entry.priceRange
		}
	}
	return trimmed, "", defaultStoreType, ""
}
