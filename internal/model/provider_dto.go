package model

// ProviderResponse mirrors the top-level JSON returned by the OCR
// provider. The shape is only loosely guaranteed; everything inside
// result is optional and amounts may arrive as numbers or strings.
type ProviderResponse struct {
	Result *ProviderResult `json:"result"`
}

// ProviderResult is the provider's recognition result object.
// A nil Result is the only hard failure case for the parser.
type ProviderResult struct {
	Establishment           string                 `json:"establishment"`
	Address                 string                 `json:"address"`
	PhoneNumber             string                 `json:"phoneNumber"`
	Date                    string                 `json:"date"`
	DateISO                 string                 `json:"dateISO"`
	Total                   interface{}            `json:"total"`
	Tax                     interface{}            `json:"tax"`
	SubTotal                interface{}            `json:"subTotal"`
	Currency                string                 `json:"currency"`
	PaymentMethod           string                 `json:"paymentMethod"`
	LineItems               []ProviderLineItem     `json:"lineItems"`
	EstablishmentConfidence *float64               `json:"establishmentConfidence"`
	TotalConfidence         *float64               `json:"totalConfidence"`
	DateConfidence          *float64               `json:"dateConfidence"`
	AddressNorm             *ProviderAddress       `json:"addressNorm"`
	CustomFields            map[string]interface{} `json:"customFields"`
}

// ProviderLineItem is one recognized line on the receipt
type ProviderLineItem struct {
	Desc       string      `json:"desc"`
	DescClean  string      `json:"descClean"`
	Qty        *float64    `json:"qty"`
	Price      interface{} `json:"price"`
	LineTotal  interface{} `json:"lineTotal"`
	Unit       string      `json:"unit"`
	Confidence *float64    `json:"confidence"`
}

// ProviderAddress is the provider's structured address breakdown
type ProviderAddress struct {
	City     string `json:"city"`
	State    string `json:"state"`
	Postcode string `json:"postcode"`
}
