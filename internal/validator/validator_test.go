package validator

import (
	"testing"

	"github.com/ridwanfathin/receipt-normalizer-service/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateSingleItemIsEnough(t *testing.T) {
	receipt := &domain.ParsedReceipt{
		Success: true,
		Items: []domain.LineItem{
			{Name: "Milk", Quantity: 1, LineTotal: 3},
		},
		Confidence: 0.9,
	}

	result := Validate(receipt)

	assert.True(t, result.IsValid)
	assert.Empty(t, result.Errors)
	assert.Contains(t, result.Warnings, WarnMissingTotal)
	assert.Contains(t, result.Warnings, WarnMissingMerchant)
	assert.NotContains(t, result.Warnings, WarnMissingItems)
}

func TestValidateRejectsOnlyWhenEverythingIsEmpty(t *testing.T) {
	receipt := &domain.ParsedReceipt{Success: true, Confidence: 0.9}

	result := Validate(receipt)

	assert.False(t, result.IsValid)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, ErrNoUsefulData, result.Errors[0])
}

func TestValidateAnySingleSignalPasses(t *testing.T) {
	total := 12.34
	cases := map[string]*domain.ParsedReceipt{
		"total only":    {Success: true, Total: &total, Confidence: 0.9},
		"merchant only": {Success: true, Merchant: "Safeway", Confidence: 0.9},
		"raw text only": {Success: true, RawTextSummary: "TOTAL 12.34", Confidence: 0.9},
	}

	for name, receipt := range cases {
		t.Run(name, func(t *testing.T) {
			result := Validate(receipt)
			assert.True(t, result.IsValid)
			assert.Empty(t, result.Errors)
		})
	}
}

func TestValidateLowConfidenceIsAWarningNeverAnError(t *testing.T) {
	receipt := &domain.ParsedReceipt{
		Success:    true,
		Merchant:   "Kroger",
		Confidence: 0.3,
	}

	result := Validate(receipt)

	assert.True(t, result.IsValid)
	assert.Empty(t, result.Errors)
	assert.Contains(t, result.Warnings, WarnLowConfidence)
}

func TestValidateZeroTotalCountsAsMissing(t *testing.T) {
	zero := 0.0
	receipt := &domain.ParsedReceipt{
		Success:    true,
		Merchant:   "Aldi",
		Total:      &zero,
		Confidence: 0.9,
	}

	result := Validate(receipt)

	assert.True(t, result.IsValid)
	assert.Contains(t, result.Warnings, WarnMissingTotal)
}
