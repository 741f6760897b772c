package service

import (
	"context"
	"fmt"

	"github.com/ridwanfathin/receipt-normalizer-service/internal/domain"
	"github.com/ridwanfathin/receipt-normalizer-service/internal/enricher"
	"github.com/ridwanfathin/receipt-normalizer-service/internal/mapper"
	"github.com/ridwanfathin/receipt-normalizer-service/internal/parser"
	"github.com/ridwanfathin/receipt-normalizer-service/internal/repository"
	"github.com/ridwanfathin/receipt-normalizer-service/internal/validator"
)

// PipelineError represents an error in the receipt pipeline service
type PipelineError struct {
	Op  string
	Err error
}

func (e *PipelineError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return e.Op
}

// Unwrap returns the underlying error
func (e *PipelineError) Unwrap() error {
	return e.Err
}

// ErrMissingInputData is the pipeline's only hard input failure: the
// provider payload carried no top-level result object
var ErrMissingInputData = fmt.Errorf("provider payload has no result object")

// ProcessingResult carries the output of every pipeline stage that
// ran. Enriched and Mapped are nil when validation rejected the
// receipt; ReceiptID is set when the result was persisted.
type ProcessingResult struct {
	ReceiptID  string                  `json:"receipt_id,omitempty"`
	Parsed     *domain.ParsedReceipt   `json:"parsed"`
	Validation domain.ValidationResult `json:"validation"`
	Enriched   *domain.EnrichedReceipt `json:"enriched,omitempty"`
	Mapped     *domain.MappedRecord    `json:"mapped,omitempty"`
}

// PipelineService defines the receipt normalization business logic
type PipelineService interface {
	// ProcessPayload runs the full pipeline over one raw provider
	// payload
	ProcessPayload(ctx context.Context, raw []byte) (*ProcessingResult, error)

	// GetReceiptByID retrieves a stored processing result
	GetReceiptByID(ctx context.Context, receiptID string) (*repository.StoredReceipt, error)

	// ListReceipts returns stored receipt summaries
	ListReceipts(ctx context.Context, limit, offset int) ([]repository.ReceiptSummary, error)
}

// PipelineServiceImpl implements PipelineService by chaining the four
// pure pipeline stages and handing results to the persistence
// collaborator
type PipelineServiceImpl struct {
	parser     *parser.Parser
	enricher   *enricher.Enricher
	mapper     *mapper.Mapper
	repository repository.ReceiptRepository
	workerPool chan struct{}
}

// NewPipelineService creates a new pipeline service. The repository
// may be nil; results are then returned but not persisted.
func NewPipelineService(enr *enricher.Enricher, repo repository.ReceiptRepository, maxWorkers int) *PipelineServiceImpl {
	if maxWorkers <= 0 {
		maxWorkers = 5 // Default to 5 workers
	}

	return &PipelineServiceImpl{
		parser:     parser.New(),
		enricher:   enr,
		mapper:     mapper.New(),
		repository: repo,
		workerPool: make(chan struct{}, maxWorkers),
	}
}

// ProcessPayload runs parse, validate, enrich and map over one raw
// provider payload. Invalid receipts are returned with their verdict
// and skip enrichment, mapping and persistence; the verdict is data
// for the caller, not an error.
func (s *PipelineServiceImpl) ProcessPayload(ctx context.Context, raw []byte) (*ProcessingResult, error) {
	// Acquire worker from pool
	select {
	case s.workerPool <- struct{}{}:
		defer func() {
			<-s.workerPool
		}()
	case <-ctx.Done():
		return nil, &PipelineError{
			Op:  "acquire_worker",
			Err: ctx.Err(),
		}
	}

	parsed := s.parser.Parse(raw)
	if !parsed.Success {
		return nil, &PipelineError{
			Op:  "parse_payload",
			Err: ErrMissingInputData,
		}
	}

	result := &ProcessingResult{
		Parsed:     parsed,
		Validation: validator.Validate(parsed),
	}
	if !result.Validation.IsValid {
		return result, nil
	}

	result.Enriched = s.enricher.Enrich(ctx, parsed)
	result.Mapped = s.mapper.MapEnriched(result.Enriched)

	if s.repository != nil {
		receiptID, err := s.repository.StoreResult(ctx, result.Enriched, result.Mapped)
		if err != nil {
			return nil, &PipelineError{
				Op:  "store_result",
				Err: err,
			}
		}
		result.ReceiptID = receiptID
	}

	return result, nil
}

// GetReceiptByID retrieves a stored processing result
func (s *PipelineServiceImpl) GetReceiptByID(ctx context.Context, receiptID string) (*repository.StoredReceipt, error) {
	if s.repository == nil {
		return nil, &PipelineError{Op: "get_receipt", Err: repository.ErrReceiptNotFound}
	}
	stored, err := s.repository.GetReceiptByID(ctx, receiptID)
	if err != nil {
		return nil, &PipelineError{
			Op:  "get_receipt",
			Err: err,
		}
	}
	return stored, nil
}

// ListReceipts returns stored receipt summaries
func (s *PipelineServiceImpl) ListReceipts(ctx context.Context, limit, offset int) ([]repository.ReceiptSummary, error) {
	if s.repository == nil {
		return []repository.ReceiptSummary{}, nil
	}
	summaries, err := s.repository.ListReceipts(ctx, limit, offset)
	if err != nil {
		return nil, &PipelineError{
			Op:  "list_receipts",
			Err: err,
		}
	}
	return summaries, nil
}
