package openrouter

import (
	"encoding/json"
	"fmt"
	"log"
	"regexp"
	"strings"

	"github.com/ridwanfathin/receipt-normalizer-service/internal/domain"
)

// knownCategories is the closed vocabulary the model is asked to use
var knownCategories = map[string]bool{
	"produce":   true,
	"dairy":     true,
	"meat":      true,
	"bakery":    true,
	"beverages": true,
	"pantry":    true,
	"frozen":    true,
	"snacks":    true,
	"other":     true,
}

// knownNutritionCategories bounds the nutrition values the model may
// report
var knownNutritionCategories = map[string]bool{
	"healthy":   true,
	"neutral":   true,
	"unhealthy": true,
}

// itemEnrichmentDTO mirrors the JSON objects requested in the prompt
type itemEnrichmentDTO struct {
	Category          string   `json:"category"`
	Subcategory       string   `json:"subcategory"`
	DietaryTags       []string `json:"dietary_tags"`
	NutritionCategory string   `json:"nutrition_category"`
}

// parseCategorizeResponse parses the JSON response from the OpenRouter
// API and validates it against the expected item count
func (c *Client) parseCategorizeResponse(respBody []byte, expected int) ([]domain.ItemEnrichment, error) {
	type Choice struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	}

	type Response struct {
		Choices []Choice `json:"choices"`
	}

	var response Response
	if err := json.Unmarshal(respBody, &response); err != nil {
		return nil, &OpenRouterError{
			Op:  "parse_response_json",
			Err: fmt.Errorf("failed to unmarshal response: %w", err),
		}
	}

	if len(response.Choices) == 0 {
		return nil, &OpenRouterError{
			Op:  "check_response_choices",
			Err: fmt.Errorf("no choices in response"),
		}
	}

	content := response.Choices[0].Message.Content

	// First, try to parse the content as JSON directly
	var dtos []itemEnrichmentDTO
	if err := json.Unmarshal([]byte(content), &dtos); err != nil {
		// If direct parsing fails, try to extract the JSON array from
		// surrounding text
		log.Printf("Failed to parse response as JSON directly: %v", err)
		dtos, err = extractEnrichmentsWithRegex(content)
		if err != nil {
			return nil, err
		}
	}

	if len(dtos) != expected {
		return nil, &OpenRouterError{
			Op:  "validate_response_length",
			Err: fmt.Errorf("expected %d enrichments, got %d", expected, len(dtos)),
		}
	}

	enrichments := make([]domain.ItemEnrichment, len(dtos))
	for i, dto := range dtos {
		enrichments[i] = sanitizeEnrichment(dto)
	}
	return enrichments, nil
}

// extractEnrichmentsWithRegex strips code fences and pulls the first
// JSON array out of free-form model output
func extractEnrichmentsWithRegex(content string) ([]itemEnrichmentDTO, error) {
	content = regexp.MustCompile("```json\\s*").ReplaceAllString(content, "")
	content = regexp.MustCompile("```\\s*").ReplaceAllString(content, "")

	arrayRegex := regexp.MustCompile(`\[[\s\S]*\]`)
	arrayMatch := arrayRegex.FindString(content)
	if arrayMatch == "" {
		return nil, &OpenRouterError{
			Op:  "extract_json_with_regex",
			Err: fmt.Errorf("no JSON array found in model response"),
		}
	}

	var dtos []itemEnrichmentDTO
	if err := json.Unmarshal([]byte(arrayMatch), &dtos); err != nil {
		return nil, &OpenRouterError{
			Op:  "extract_json_with_regex",
			Err: fmt.Errorf("failed to parse extracted JSON: %w", err),
		}
	}
	return dtos, nil
}

// sanitizeEnrichment lower-cases and bounds the model output so
// downstream stages only ever see known vocabulary
func sanitizeEnrichment(dto itemEnrichmentDTO) domain.ItemEnrichment {
	category := strings.ToLower(strings.TrimSpace(dto.Category))
	if !knownCategories[category] {
		category = "other"
	}

	nutrition := strings.ToLower(strings.TrimSpace(dto.NutritionCategory))
	if !knownNutritionCategories[nutrition] {
		nutrition = "neutral"
	}

	tags := make([]string, 0, len(dto.DietaryTags))
	for _, tag := range dto.DietaryTags {
		if cleaned := strings.ToLower(strings.TrimSpace(tag)); cleaned != "" {
			tags = append(tags, cleaned)
		}
	}
	if len(tags) == 0 {
		tags = nil
	}

	return domain.ItemEnrichment{
		Category:          category,
		Subcategory:       strings.TrimSpace(dto.Subcategory),
		DietaryTags:       tags,
		NutritionCategory: nutrition,
	}
}
