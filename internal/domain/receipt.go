package domain

// LineItem represents a single purchased entry extracted from a receipt
type LineItem struct {
	Name       string   `json:"name"`
	Quantity   float64  `json:"quantity"`
	UnitPrice  *float64 `json:"unit_price"`
	LineTotal  float64  `json:"line_total"`
	Confidence float64  `json:"confidence"`
}

// ParsedReceipt is the canonical output of the response parser.
// Money fields are pointers: nil means the provider did not supply a
// usable number, never NaN or zero-by-accident.
type ParsedReceipt struct {
	Success        bool       `json:"success"`
	Merchant       string     `json:"merchant"`
	Address        string     `json:"address"`
	Phone          string     `json:"phone"`
	City           string     `json:"city,omitempty"`
	State          string     `json:"state,omitempty"`
	Zipcode        string     `json:"zipcode,omitempty"`
	Date           string     `json:"date"`
	Time           string     `json:"time"`
	Total          *float64   `json:"total"`
	Tax            *float64   `json:"tax"`
	Subtotal       *float64   `json:"subtotal"`
	Taxes          []float64  `json:"taxes,omitempty"`
	Currency       string     `json:"currency,omitempty"`
	PaymentMethod  string     `json:"payment_method,omitempty"`
	Items          []LineItem `json:"items"`
	Confidence     float64    `json:"confidence"`
	RawTextSummary string     `json:"raw_text_summary"`
}

// ValidationResult is the validator's verdict over a parsed receipt.
// Errors and warnings are data for the caller, not exceptions.
type ValidationResult struct {
	IsValid  bool     `json:"is_valid"`
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

// ItemEnrichment carries the per-item output of the enrichment stage
type ItemEnrichment struct {
	Category          string   `json:"category"`
	Subcategory       string   `json:"subcategory,omitempty"`
	DietaryTags       []string `json:"dietary_tags,omitempty"`
	NutritionCategory string   `json:"nutrition_category"`
}

// EnrichedItem pairs a parsed line item with its enrichment
type EnrichedItem struct {
	LineItem
	ItemEnrichment
}

// ReceiptInsights holds shopping insights derived from the receipt
type ReceiptInsights struct {
	ShoppingCategory string `json:"shopping_category"`
	EstimatedPeople  int    `json:"estimated_people"`
	BudgetCategory   string `json:"budget_category"`
}

// QualityMetrics scores how complete and trustworthy the extraction
// is. Both values are integer percentages.
type QualityMetrics struct {
	DataCompleteness  int `json:"data_completeness"`
	OverallConfidence int `json:"overall_confidence"`
}

// EnrichedReceipt is the enricher's output: the parsed receipt plus
// store normalization, per-item categorization and derived insights
type EnrichedReceipt struct {
	Parsed              *ParsedReceipt  `json:"parsed"`
	NormalizedStoreName string          `json:"normalized_store_name"`
	Chain               string          `json:"chain,omitempty"`
	StoreType           string          `json:"store_type"`
	PriceRange          string          `json:"price_range,omitempty"`
	Items               []EnrichedItem  `json:"items"`
	Insights            ReceiptInsights `json:"insights"`
	Quality             QualityMetrics  `json:"quality_metrics"`
}

// MappedItem is one line of the fixed downstream schema
type MappedItem struct {
	ItemName     string   `json:"item_name"`
	ItemTypeCode string   `json:"item_type_code"`
	ItemPrice    float64  `json:"item_price"`
	Quantity     float64  `json:"quantity"`
	UnitPrice    *float64 `json:"unit_price"`
	Category     string   `json:"category"`
}

// MappedRecord is the terminal flat record handed to the downstream
// consumer. The schema is fixed; field names match its column names.
type MappedRecord struct {
	BrandName       string       `json:"brand_name"`
	StreetNumber    *string      `json:"street_number"`
	StreetName      *string      `json:"street_name"`
	City            *string      `json:"city"`
	State           *string      `json:"state"`
	Zipcode         *string      `json:"zipcode"`
	DateField       string       `json:"date_field"`
	TimeField       string       `json:"time_field"`
	TaxField1       float64      `json:"tax_field_1"`
	TaxField2       float64      `json:"tax_field_2"`
	TotalPriceField float64      `json:"total_price_field"`
	ConfidenceScore float64      `json:"confidence_score"`
	Items           []MappedItem `json:"items"`
}
