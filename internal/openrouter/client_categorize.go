package openrouter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/ridwanfathin/receipt-normalizer-service/internal/domain"
)

const categorizeSystemPrompt = `You are a grocery receipt categorization assistant. For each item name you receive, determine:
- category: one of produce, dairy, meat, bakery, beverages, pantry, frozen, snacks, other
- subcategory: a short free-form refinement (e.g. "citrus", "hard cheese"), or "" if unknown
- dietary_tags: a list of tags such as "organic", "gluten-free", "vegan", or [] if none apply
- nutrition_category: one of healthy, neutral, unhealthy

Format your response as a valid JSON array with one object per input item, in the same order:
[
  {
    "category": "...",
    "subcategory": "...",
    "dietary_tags": ["..."],
    "nutrition_category": "..."
  }
]

Do not include any other text in your response, only provide the JSON.`

// CategorizeItems asks the model to categorize a batch of item names.
// The result slice matches the input order and length; any shape
// mismatch is reported as an error so the caller can fall back.
func (c *Client) CategorizeItems(ctx context.Context, names []string) ([]domain.ItemEnrichment, error) {
	if c.apiKey == "" {
		return nil, &OpenRouterError{
			Op:  "validate_configuration",
			Err: fmt.Errorf("OpenRouter API key is not configured. Please set OPENROUTER_API_KEY environment variable"),
		}
	}
	if len(names) == 0 {
		return []domain.ItemEnrichment{}, nil
	}

	// Build the numbered item list for the user message
	var itemList strings.Builder
	for i, name := range names {
		fmt.Fprintf(&itemList, "%d. %s\n", i+1, name)
	}

	type Message struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	}

	requestPayload := map[string]interface{}{
		"model": c.modelID,
		"messages": []Message{
			{
				Role:    "system",
				Content: categorizeSystemPrompt,
			},
			{
				Role:    "user",
				Content: "Categorize these receipt items:\n" + itemList.String(),
			},
		},
	}

	requestData, err := json.Marshal(requestPayload)
	if err != nil {
		return nil, &OpenRouterError{
			Op:  "marshal_request",
			Err: fmt.Errorf("failed to marshal request payload: %w", err),
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewBuffer(requestData))
	if err != nil {
		return nil, &OpenRouterError{
			Op:  "create_categorize_request",
			Err: fmt.Errorf("failed to create request: %w", err),
		}
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &OpenRouterError{
			Op:  "send_categorize_request",
			Err: fmt.Errorf("failed to send request: %w", err),
		}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &OpenRouterError{
			Op:  "read_response",
			Err: fmt.Errorf("failed to read response body: %w", err),
		}
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &OpenRouterError{
			Op:  "check_api_response",
			Err: fmt.Errorf("API error: %s - %s", resp.Status, string(respBody)),
		}
	}

	return c.parseCategorizeResponse(respBody, len(names))
}
