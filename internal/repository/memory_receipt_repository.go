package repository

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/ridwanfathin/receipt-normalizer-service/internal/domain"
)

// MemoryReceiptRepository is an in-memory ReceiptRepository used when
// no database is configured and in tests
type MemoryReceiptRepository struct {
	mu      sync.RWMutex
	order   []string
	results map[string]*StoredReceipt
	created map[string]time.Time
}

// NewMemoryReceiptRepository creates an empty in-memory repository
func NewMemoryReceiptRepository() *MemoryReceiptRepository {
	return &MemoryReceiptRepository{
		results: make(map[string]*StoredReceipt),
		created: make(map[string]time.Time),
	}
}

// StoreResult keeps the result in memory and returns a generated id
func (r *MemoryReceiptRepository) StoreResult(_ context.Context, enriched *domain.EnrichedReceipt, mapped *domain.MappedRecord) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	receiptID := uuid.New().String()
	r.results[receiptID] = &StoredReceipt{
		ID:       receiptID,
		Enriched: enriched,
		Mapped:   mapped,
	}
	r.created[receiptID] = time.Now()
	r.order = append(r.order, receiptID)
	return receiptID, nil
}

// GetReceiptByID retrieves a stored result by id
func (r *MemoryReceiptRepository) GetReceiptByID(_ context.Context, receiptID string) (*StoredReceipt, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stored, ok := r.results[receiptID]
	if !ok {
		return nil, ErrReceiptNotFound
	}
	return stored, nil
}

// ListReceipts returns summaries, newest first
func (r *MemoryReceiptRepository) ListReceipts(_ context.Context, limit, offset int) ([]ReceiptSummary, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	summaries := make([]ReceiptSummary, 0)
	for i := len(r.order) - 1; i >= 0; i-- {
		stored := r.results[r.order[i]]
		var total float64
		if stored.Mapped != nil {
			total = stored.Mapped.TotalPriceField
		}
		summary := ReceiptSummary{
			ID:        stored.ID,
			CreatedAt: r.created[stored.ID].Format(time.RFC3339),
			Total:     total,
		}
		if stored.Mapped != nil {
			summary.BrandName = stored.Mapped.BrandName
			summary.Date = stored.Mapped.DateField
		}
		summaries = append(summaries, summary)
	}

	if offset >= len(summaries) {
		return []ReceiptSummary{}, nil
	}
	summaries = summaries[offset:]
	if limit > 0 && limit < len(summaries) {
		summaries = summaries[:limit]
	}
	return summaries, nil
}
