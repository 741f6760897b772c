package validator

import (
	"github.com/ridwanfathin/receipt-normalizer-service/internal/domain"
)

// LowConfidenceThreshold is the aggregate confidence below which a
// warning is attached. Low confidence never invalidates a receipt.
const LowConfidenceThreshold = 0.5

// ErrNoUsefulData is the canonical error reported when every key
// signal on the receipt is empty at once
const ErrNoUsefulData = "receipt contains no useful data"

// Warning messages for individually missing fields
const (
	WarnMissingTotal    = "total amount is missing"
	WarnMissingMerchant = "merchant name is missing"
	WarnMissingItems    = "no line items extracted"
	WarnLowConfidence   = "extraction confidence is low"
)

// Validate applies the lenient acceptance policy: a receipt is invalid
// only when total, merchant, raw text and items are all empty at the
// same time. Any single non-empty signal is enough to pass; false
// rejection of partially usable data is worse than accepting sparse
// data.
func Validate(receipt *domain.ParsedReceipt) domain.ValidationResult {
	result := domain.ValidationResult{
		Errors:   []string{},
		Warnings: []string{},
	}

	hasTotal := receipt.Total != nil && *receipt.Total != 0
	hasMerchant := receipt.Merchant != ""
	hasRawText := receipt.RawTextSummary != ""
	hasItems := len(receipt.Items) > 0

	// Low confidence is always a warning, never an error
	if receipt.Confidence < LowConfidenceThreshold {
		result.Warnings = append(result.Warnings, WarnLowConfidence)
	}

	if !hasTotal && !hasMerchant && !hasRawText && !hasItems {
		result.IsValid = false
		result.Errors = append(result.Errors, ErrNoUsefulData)
		return result
	}

	result.IsValid = true
	if !hasTotal {
		result.Warnings = append(result.Warnings, WarnMissingTotal)
	}
	if !hasMerchant {
		result.Warnings = append(result.Warnings, WarnMissingMerchant)
	}
	if !hasItems {
		result.Warnings = append(result.Warnings, WarnMissingItems)
	}

	return result
}
