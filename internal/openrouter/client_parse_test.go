package openrouter

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chatResponse(t *testing.T, content string) []byte {
	t.Helper()
	body, err := json.Marshal(map[string]interface{}{
		"choices": []map[string]interface{}{
			{"message": map[string]string{"content": content}},
		},
	})
	require.NoError(t, err)
	return body
}

func TestParseCategorizeResponseDirectJSON(t *testing.T) {
	c := NewClient(&Config{APIKey: "test"})

	content := `[{"category": "dairy", "subcategory": "milk", "dietary_tags": ["vegetarian"], "nutrition_category": "healthy"}]`
	enrichments, err := c.parseCategorizeResponse(chatResponse(t, content), 1)
	require.NoError(t, err)
	require.Len(t, enrichments, 1)
	assert.Equal(t, "dairy", enrichments[0].Category)
	assert.Equal(t, "milk", enrichments[0].Subcategory)
	assert.Equal(t, []string{"vegetarian"}, enrichments[0].DietaryTags)
	assert.Equal(t, "healthy", enrichments[0].NutritionCategory)
}

func TestParseCategorizeResponseFencedJSON(t *testing.T) {
	c := NewClient(&Config{APIKey: "test"})

	content := "Here are the categorized items:\n```json\n[{\"category\": \"produce\"}, {\"category\": \"snacks\"}]\n```\nLet me know if you need anything else."
	enrichments, err := c.parseCategorizeResponse(chatResponse(t, content), 2)
	require.NoError(t, err)
	require.Len(t, enrichments, 2)
	assert.Equal(t, "produce", enrichments[0].Category)
	assert.Equal(t, "snacks", enrichments[1].Category)
}

func TestParseCategorizeResponseLengthMismatch(t *testing.T) {
	c := NewClient(&Config{APIKey: "test"})

	content := `[{"category": "dairy"}]`
	_, err := c.parseCategorizeResponse(chatResponse(t, content), 3)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected 3 enrichments")
}

func TestParseCategorizeResponseNoChoices(t *testing.T) {
	c := NewClient(&Config{APIKey: "test"})

	_, err := c.parseCategorizeResponse([]byte(`{"choices": []}`), 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no choices")
}

func TestParseCategorizeResponseNoArrayInContent(t *testing.T) {
	c := NewClient(&Config{APIKey: "test"})

	_, err := c.parseCategorizeResponse(chatResponse(t, "I could not categorize these items."), 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no JSON array found")
}

func TestSanitizeEnrichmentBoundsVocabulary(t *testing.T) {
	got := sanitizeEnrichment(itemEnrichmentDTO{
		Category:          " Charcuterie ",
		Subcategory:       " cured meats ",
		DietaryTags:       []string{" Gluten-Free ", ""},
		NutritionCategory: "superfood",
	})
	assert.Equal(t, "other", got.Category)
	assert.Equal(t, "cured meats", got.Subcategory)
	assert.Equal(t, []string{"gluten-free"}, got.DietaryTags)
	assert.Equal(t, "neutral", got.NutritionCategory)

	got = sanitizeEnrichment(itemEnrichmentDTO{Category: "DAIRY", NutritionCategory: "Healthy"})
	assert.Equal(t, "dairy", got.Category)
	assert.Equal(t, "healthy", got.NutritionCategory)
	assert.Nil(t, got.DietaryTags)
}
