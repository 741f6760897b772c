package handler

import (
	"errors"
	"io"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/ridwanfathin/receipt-normalizer-service/internal/repository"
	"github.com/ridwanfathin/receipt-normalizer-service/internal/service"
)

// maxPayloadBytes bounds how much of the provider payload is read
const maxPayloadBytes = 4 << 20

// ReceiptHandler handles HTTP requests for receipt processing
type ReceiptHandler struct {
	pipelineService service.PipelineService
}

// NewReceiptHandler creates a new receipt handler
func NewReceiptHandler(pipelineService service.PipelineService) *ReceiptHandler {
	return &ReceiptHandler{
		pipelineService: pipelineService,
	}
}

// ProcessReceipt handles the POST /receipts/process endpoint
// @Summary Process a raw OCR provider payload
// @Description Run the normalization pipeline over raw provider JSON and return the parsed, validated, enriched and mapped record
// @Tags receipts
// @Accept json,mpfd
// @Produce json
// @Success 200 {object} service.ProcessingResult "Pipeline result"
// @Failure 400 {object} model.ErrorResponse "Bad request"
// @Failure 422 {object} model.ErrorResponse "Payload has no result object"
// @Failure 500 {object} model.ErrorResponse "Internal server error"
// @Router /v1/receipts/process [post]
func (h *ReceiptHandler) ProcessReceipt(c *gin.Context) {
	raw, err := h.readPayload(c)
	if err != nil {
		logError(c, "failed_to_read_payload", err, map[string]interface{}{
			"error_type": "payload_read_error",
		})
		respondInternalServerError(c, ErrPayloadProcessing)
		return
	}
	if len(raw) == 0 {
		respondBadRequest(c, ErrInvalidInput, newErrorDetail("body", "Provider payload is required"))
		return
	}

	result, err := h.pipelineService.ProcessPayload(c.Request.Context(), raw)
	if err != nil {
		logError(c, "failed_to_process_payload", err, map[string]interface{}{
			"error_type":   "pipeline_error",
			"payload_size": len(raw),
		})

		if errors.Is(err, service.ErrMissingInputData) {
			respondUnprocessableEntity(c, ErrDataExtraction)
			return
		}
		respondInternalServerError(c, ErrPayloadProcessing)
		return
	}

	respondOK(c, result)
}

// readPayload reads the provider JSON either from a multipart payload
// file or directly from the request body
func (h *ReceiptHandler) readPayload(c *gin.Context) ([]byte, error) {
	if strings.HasPrefix(c.ContentType(), "multipart/form-data") {
		fileHeader, err := c.FormFile("payload")
		if err != nil {
			return nil, err
		}
		file, err := fileHeader.Open()
		if err != nil {
			return nil, err
		}
		defer file.Close()
		return io.ReadAll(io.LimitReader(file, maxPayloadBytes))
	}
	return io.ReadAll(io.LimitReader(c.Request.Body, maxPayloadBytes))
}

// GetReceipt handles the GET /receipts/:id endpoint
// @Summary Get a processed receipt
// @Description Retrieve a stored processing result by receipt id
// @Tags receipts
// @Produce json
// @Param id path string true "Receipt ID"
// @Success 200 {object} repository.StoredReceipt "Stored receipt"
// @Failure 400 {object} model.ErrorResponse "Invalid ID"
// @Failure 404 {object} model.ErrorResponse "Not found"
// @Failure 500 {object} model.ErrorResponse "Internal server error"
// @Router /v1/receipts/{id} [get]
func (h *ReceiptHandler) GetReceipt(c *gin.Context) {
	receiptID, err := getPathParam(c, "id")
	if err != nil {
		respondBadRequest(c, ErrInvalidID)
		return
	}

	stored, err := h.pipelineService.GetReceiptByID(c.Request.Context(), receiptID)
	if err != nil {
		if errors.Is(err, repository.ErrReceiptNotFound) {
			respondNotFound(c, ErrResourceNotFound)
			return
		}
		logError(c, "failed_to_get_receipt", err, map[string]interface{}{
			"receipt_id": receiptID,
		})
		respondInternalServerError(c, ErrInternalServer)
		return
	}

	respondOK(c, stored)
}

// ListReceipts handles the GET /receipts endpoint
// @Summary List processed receipts
// @Description Return stored receipt summaries, newest first
// @Tags receipts
// @Produce json
// @Param limit query int false "Page size" default(20)
// @Param offset query int false "Offset" default(0)
// @Success 200 {array} repository.ReceiptSummary "Receipt summaries"
// @Failure 400 {object} model.ErrorResponse "Invalid query parameters"
// @Failure 500 {object} model.ErrorResponse "Internal server error"
// @Router /v1/receipts [get]
func (h *ReceiptHandler) ListReceipts(c *gin.Context) {
	limit, err := getQueryInt(c, "limit", 20)
	if err != nil {
		respondBadRequest(c, ErrInvalidQueryParams)
		return
	}
	offset, err := getQueryInt(c, "offset", 0)
	if err != nil {
		respondBadRequest(c, ErrInvalidQueryParams)
		return
	}
	if err := validatePagination(limit, offset); err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	summaries, err := h.pipelineService.ListReceipts(c.Request.Context(), limit, offset)
	if err != nil {
		logError(c, "failed_to_list_receipts", err, nil)
		respondInternalServerError(c, ErrInternalServer)
		return
	}

	respondOK(c, summaries)
}
