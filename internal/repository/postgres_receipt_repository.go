package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ridwanfathin/receipt-normalizer-service/internal/domain"
)

// PostgresReceiptRepository implements ReceiptRepository using
// PostgreSQL. Enriched receipts and mapped records are stored as jsonb
// next to a few queryable columns.
type PostgresReceiptRepository struct {
	db *pgxpool.Pool
}

// NewPostgresReceiptRepository creates a new PostgreSQL receipt
// repository
func NewPostgresReceiptRepository(db *pgxpool.Pool) *PostgresReceiptRepository {
	return &PostgresReceiptRepository{
		db: db,
	}
}

// StoreResult saves the enriched receipt and its mapped record in one
// transaction
func (r *PostgresReceiptRepository) StoreResult(ctx context.Context, enriched *domain.EnrichedReceipt, mapped *domain.MappedRecord) (string, error) {
	enrichedJSON, err := json.Marshal(enriched)
	if err != nil {
		return "", fmt.Errorf("failed to marshal enriched receipt: %w", err)
	}
	mappedJSON, err := json.Marshal(mapped)
	if err != nil {
		return "", fmt.Errorf("failed to marshal mapped record: %w", err)
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) // Rollback if not committed

	receiptID := uuid.New().String()

	var total float64
	if enriched.Parsed != nil && enriched.Parsed.Total != nil {
		total = *enriched.Parsed.Total
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO receipts (id, brand_name, date, total, confidence, enriched, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, receiptID, mapped.BrandName, mapped.DateField, total, mapped.ConfidenceScore, enrichedJSON, time.Now())
	if err != nil {
		return "", fmt.Errorf("failed to insert receipt: %w", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO mapped_records (id, receipt_id, brand_name, zipcode, date_field, time_field,
			tax_field_1, tax_field_2, total_price_field, confidence_score, record)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`, uuid.New().String(), receiptID, mapped.BrandName, mapped.Zipcode, mapped.DateField, mapped.TimeField,
		mapped.TaxField1, mapped.TaxField2, mapped.TotalPriceField, mapped.ConfidenceScore, mappedJSON)
	if err != nil {
		return "", fmt.Errorf("failed to insert mapped record: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return "", fmt.Errorf("failed to commit transaction: %w", err)
	}

	return receiptID, nil
}

// GetReceiptByID retrieves a stored result by its id
func (r *PostgresReceiptRepository) GetReceiptByID(ctx context.Context, receiptID string) (*StoredReceipt, error) {
	var enrichedJSON, mappedJSON []byte
	err := r.db.QueryRow(ctx, `
		SELECT r.enriched, m.record
		FROM receipts r
		JOIN mapped_records m ON m.receipt_id = r.id
		WHERE r.id = $1
	`, receiptID).Scan(&enrichedJSON, &mappedJSON)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrReceiptNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query receipt: %w", err)
	}

	stored := &StoredReceipt{ID: receiptID}
	if err := json.Unmarshal(enrichedJSON, &stored.Enriched); err != nil {
		return nil, fmt.Errorf("failed to unmarshal enriched receipt: %w", err)
	}
	if err := json.Unmarshal(mappedJSON, &stored.Mapped); err != nil {
		return nil, fmt.Errorf("failed to unmarshal mapped record: %w", err)
	}
	return stored, nil
}

// ListReceipts returns stored receipt summaries, newest first
func (r *PostgresReceiptRepository) ListReceipts(ctx context.Context, limit, offset int) ([]ReceiptSummary, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, brand_name, date, total, created_at
		FROM receipts
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query receipts: %w", err)
	}
	defer rows.Close()

	summaries := make([]ReceiptSummary, 0)
	for rows.Next() {
		var summary ReceiptSummary
		var createdAt time.Time
		if err := rows.Scan(&summary.ID, &summary.BrandName, &summary.Date, &summary.Total, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan receipt row: %w", err)
		}
		summary.CreatedAt = createdAt.Format(time.RFC3339)
		summaries = append(summaries, summary)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read receipt rows: %w", err)
	}

	return summaries, nil
}
