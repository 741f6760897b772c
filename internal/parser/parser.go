package parser

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ridwanfathin/receipt-normalizer-service/internal/domain"
	"github.com/ridwanfathin/receipt-normalizer-service/internal/model"
)

// DefaultAggregateConfidence is assumed when the provider supplies no
// field-level confidence scores at all.
const DefaultAggregateConfidence = 0.9

// dateLayouts are tried in order when normalizing provider dates
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"01/02/2006 15:04",
	"01/02/2006",
}

// Parser turns raw OCR-provider JSON into a canonical ParsedReceipt.
// It holds no mutable state; identical input yields identical output.
type Parser struct {
	defaultConfidence float64
}

// New creates a parser with the default aggregate confidence
func New() *Parser {
	return &Parser{defaultConfidence: DefaultAggregateConfidence}
}

// Parse extracts a ParsedReceipt from the raw provider payload.
// Malformed-but-present data degrades to null fields; the only failure
// the parser signals is an absent top-level result object, reported as
// Success=false rather than an error.
func (p *Parser) Parse(raw []byte) *domain.ParsedReceipt {
	var resp model.ProviderResponse
	if err := json.Unmarshal(raw, &resp); err != nil || resp.Result == nil {
		return &domain.ParsedReceipt{Success: false}
	}
	return p.parseResult(resp.Result)
}

func (p *Parser) parseResult(result *model.ProviderResult) *domain.ParsedReceipt {
	receipt := &domain.ParsedReceipt{
		Success:       true,
		Merchant:      strings.TrimSpace(result.Establishment),
		Address:       strings.TrimSpace(result.Address),
		Phone:         strings.TrimSpace(result.PhoneNumber),
		Currency:      result.Currency,
		PaymentMethod: result.PaymentMethod,
	}

	if result.AddressNorm != nil {
		receipt.City = strings.TrimSpace(result.AddressNorm.City)
		receipt.State = strings.TrimSpace(result.AddressNorm.State)
		receipt.Zipcode = strings.TrimSpace(result.AddressNorm.Postcode)
	}

	receipt.Date, receipt.Time = normalizeDate(result.DateISO, result.Date)

	receipt.Total = ParseAmount(result.Total)
	receipt.Tax = ParseAmount(result.Tax)
	receipt.Subtotal = ParseAmount(result.SubTotal)
	receipt.Taxes = collectTaxes(result, receipt.Tax)

	receipt.Items = parseItems(result.LineItems, p.defaultConfidence)
	receipt.Confidence = aggregateConfidence(result, p.defaultConfidence)
	receipt.RawTextSummary = summarize(receipt)

	return receipt
}

// normalizeDate turns either a single ISO datetime or separate
// date/time strings into a (date, time) pair. Unparseable values fall
// back to string splitting instead of erroring out.
func normalizeDate(dateISO, date string) (string, string) {
	value := strings.TrimSpace(dateISO)
	if value == "" {
		value = strings.TrimSpace(date)
	}
	if value == "" {
		return "", ""
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			datePart := t.Format("2006-01-02")
			timePart := ""
			if t.Hour() != 0 || t.Minute() != 0 || t.Second() != 0 {
				timePart = t.Format("15:04:05")
			}
			return datePart, timePart
		}
	}

	// Unknown format: split on the usual datetime separators and keep
	// whatever pieces are there
	if idx := strings.IndexAny(value, "T "); idx > 0 && idx < len(value)-1 {
		return strings.TrimSpace(value[:idx]), strings.TrimSpace(value[idx+1:])
	}
	return value, ""
}

// ParseAmount attempts a decimal parse of a loosely typed provider
// amount. Currency symbols and whitespace are stripped; any
// non-numeric input yields nil, never an error.
func ParseAmount(value interface{}) *float64 {
	switch v := value.(type) {
	case nil:
		return nil
	case float64:
		return &v
	case int:
		f := float64(v)
		return &f
	case json.Number:
		if f, err := v.Float64(); err == nil {
			return &f
		}
		return nil
	case string:
		return parseAmountString(v)
	default:
		return nil
	}
}

func parseAmountString(s string) *float64 {
	cleaned := strings.TrimSpace(s)
	cleaned = strings.Map(func(r rune) rune {
		switch r {
		case '$', '€', '£', '¥', ',', ' ', '\t':
			return -1
		}
		return r
	}, cleaned)

	if cleaned == "" {
		return nil
	}
	f, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return nil
	}
	return &f
}

// parseItems keeps only entries that carry both a cleaned description
// and a numeric line total. Quantity defaults to 1; the unit price is
// taken as-is from the source, never back-computed.
func parseItems(lineItems []model.ProviderLineItem, defaultConfidence float64) []domain.LineItem {
	items := make([]domain.LineItem, 0, len(lineItems))
	for _, li := range lineItems {
		name := strings.TrimSpace(li.DescClean)
		if name == "" {
			name = strings.TrimSpace(li.Desc)
		}
		total := ParseAmount(li.LineTotal)
		if name == "" || total == nil {
			continue
		}

		qty := 1.0
		if li.Qty != nil && *li.Qty > 0 {
			qty = *li.Qty
		}

		confidence := defaultConfidence
		if li.Confidence != nil {
			confidence = clamp01(*li.Confidence)
		}

		items = append(items, domain.LineItem{
			Name:       name,
			Quantity:   qty,
			UnitPrice:  ParseAmount(li.Price),
			LineTotal:  *total,
			Confidence: confidence,
		})
	}
	return items
}

// aggregateConfidence is the arithmetic mean of whatever field-level
// confidences the provider supplied
func aggregateConfidence(result *model.ProviderResult, defaultConfidence float64) float64 {
	var sum float64
	var count int
	for _, c := range []*float64{result.EstablishmentConfidence, result.TotalConfidence, result.DateConfidence} {
		if c != nil {
			sum += clamp01(*c)
			count++
		}
	}
	if count == 0 {
		return defaultConfidence
	}
	return sum / float64(count)
}

// collectTaxes builds the ordered tax list: an explicit taxes array in
// customFields when present, otherwise the single tax amount
func collectTaxes(result *model.ProviderResult, tax *float64) []float64 {
	if result.CustomFields != nil {
		if raw, ok := result.CustomFields["taxes"].([]interface{}); ok {
			taxes := make([]float64, 0, len(raw))
			for _, entry := range raw {
				if amount := ParseAmount(entry); amount != nil {
					taxes = append(taxes, *amount)
				}
			}
			if len(taxes) > 0 {
				return taxes
			}
		}
	}
	if tax != nil {
		return []float64{*tax}
	}
	return nil
}

// summarize renders a human-readable fallback view of the parsed
// fields. It is display-only and never treated as a source of truth.
func summarize(receipt *domain.ParsedReceipt) string {
	var b strings.Builder
	if receipt.Merchant != "" {
		b.WriteString(receipt.Merchant + "\n")
	}
	if receipt.Address != "" {
		b.WriteString(receipt.Address + "\n")
	}
	if receipt.Date != "" {
		b.WriteString(receipt.Date)
		if receipt.Time != "" {
			b.WriteString(" " + receipt.Time)
		}
		b.WriteString("\n")
	}
	for _, item := range receipt.Items {
		fmt.Fprintf(&b, "%s x%g %.2f\n", item.Name, item.Quantity, item.LineTotal)
	}
	if receipt.Tax != nil {
		fmt.Fprintf(&b, "TAX %.2f\n", *receipt.Tax)
	}
	if receipt.Total != nil {
		fmt.Fprintf(&b, "TOTAL %.2f\n", *receipt.Total)
	}
	return strings.TrimRight(b.String(), "\n")
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
