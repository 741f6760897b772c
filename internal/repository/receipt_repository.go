package repository

import (
	"context"
	"errors"

	"github.com/ridwanfathin/receipt-normalizer-service/internal/domain"
)

// ErrReceiptNotFound is returned when a receipt id does not exist
var ErrReceiptNotFound = errors.New("receipt not found")

// ReceiptSummary is the listing projection over stored receipts
type ReceiptSummary struct {
	ID        string  `json:"id"`
	BrandName string  `json:"brand_name"`
	Date      string  `json:"date"`
	Total     float64 `json:"total"`
	CreatedAt string  `json:"created_at"`
}

// StoredReceipt pairs a stored enriched receipt with its mapped record
type StoredReceipt struct {
	ID       string                  `json:"id"`
	Enriched *domain.EnrichedReceipt `json:"enriched"`
	Mapped   *domain.MappedRecord    `json:"mapped"`
}

// ReceiptRepository is the persistence collaborator for the pipeline.
// The pipeline itself performs no I/O; callers decide whether and
// where results are stored.
type ReceiptRepository interface {
	// StoreResult persists the enriched receipt together with its
	// mapped record and returns the new receipt id
	StoreResult(ctx context.Context, enriched *domain.EnrichedReceipt, mapped *domain.MappedRecord) (string, error)

	// GetReceiptByID retrieves a stored result by id
	GetReceiptByID(ctx context.Context, receiptID string) (*StoredReceipt, error)

	// ListReceipts returns summaries of stored receipts, newest first
	ListReceipts(ctx context.Context, limit, offset int) ([]ReceiptSummary, error)
}
