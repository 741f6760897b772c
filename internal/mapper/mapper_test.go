package mapper

import (
	"strconv"
	"testing"

	"github.com/ridwanfathin/receipt-normalizer-service/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var validTypeCodes = map[string]bool{
	TypeCodeProduce: true,
	TypeCodeDairy:   true,
	TypeCodeBakery:  true,
	TypeCodeMeat:    true,
	TypeCodePantry:  true,
	TypeCodeFee:     true,
	TypeCodeMisc:    true,
}

func TestNormalizeBrandNameAliases(t *testing.T) {
	m := New()

	tests := map[string]string{
		"Trader Joe's Portland": "Trader Joes",
		"WAL-MART SUPERCENTER":  "Walmart",
		"wal mart #1234":        "Walmart",
		"McDonald's":            "McDonalds",
		"7-ELEVEN 32184":        "7-Eleven",
		`"Corner" Market`:       "Corner Market",
		"  Joe's Diner  ":       "Joes Diner",
	}

	for input, want := range tests {
		assert.Equal(t, want, m.NormalizeBrandName(input), "input %q", input)
	}
}

func TestNormalizeBrandNameIsIdempotent(t *testing.T) {
	m := New()

	inputs := []string{
		"Trader Joe's Portland",
		"WAL-MART SUPERCENTER",
		"McDonald's",
		`"Quoted" Name`,
		"Plain Unknown Store",
		"",
	}
	for _, input := range inputs {
		once := m.NormalizeBrandName(input)
		twice := m.NormalizeBrandName(once)
		assert.Equal(t, once, twice, "normalization of %q must be idempotent", input)
	}
}

func TestAssignTypeCodeIsTotal(t *testing.T) {
	m := New()

	names := []string{
		"OL VE OIL", "COCONUT MILK", "WHOLE WHEAT BREAD", "GROUND BEEF",
		"BANANAS", "BOTTLE DEPOSIT FEE", "GIFT CARD", "", "12345", "???",
	}
	for i := 0; i < 50; i++ {
		names = append(names, "RANDOM ITEM "+strconv.Itoa(i))
	}

	for _, name := range names {
		code := m.AssignTypeCode(name)
		assert.True(t, validTypeCodes[code], "name %q produced out-of-set code %q", name, code)
	}

	assert.Equal(t, TypeCodePantry, m.AssignTypeCode("OL VE OIL"))
	assert.Equal(t, TypeCodeDairy, m.AssignTypeCode("COCONUT MILK"))
	assert.Equal(t, TypeCodeFee, m.AssignTypeCode("BAG FEE"))
	assert.Equal(t, TypeCodeMisc, m.AssignTypeCode("GIFT CARD"))
}

func TestDecomposeAddressHeuristics(t *testing.T) {
	m := New()

	parsed := &domain.ParsedReceipt{
		Address: "Trader Joe'S Portland (519), Marginal Way, Portland, ME 04101",
	}
	streetNumber, _, _, _, zip := m.decomposeAddress(parsed)

	require.NotNil(t, zip)
	assert.Equal(t, "04101", *zip)

	require.NotNil(t, streetNumber)
	_, err := strconv.Atoi(*streetNumber)
	assert.NoError(t, err, "street number %q should be numeric", *streetNumber)
}

func TestDecomposeAddressPrefersStructuredBreakdown(t *testing.T) {
	m := New()

	parsed := &domain.ParsedReceipt{
		Address: "101 Main St, Springfield, IL 62704",
		City:    "Springfield",
		State:   "IL",
		Zipcode: "62704",
	}
	streetNumber, streetName, city, state, zip := m.decomposeAddress(parsed)

	require.NotNil(t, city)
	assert.Equal(t, "Springfield", *city)
	require.NotNil(t, state)
	assert.Equal(t, "IL", *state)
	require.NotNil(t, zip)
	assert.Equal(t, "62704", *zip)
	require.NotNil(t, streetNumber)
	assert.Equal(t, "101", *streetNumber)
	require.NotNil(t, streetName)
	assert.Equal(t, "Main St", *streetName)
}

func TestDecomposeAddressDegradesToNil(t *testing.T) {
	m := New()

	streetNumber, streetName, city, state, zip := m.decomposeAddress(&domain.ParsedReceipt{Address: "no numbers here"})
	assert.Nil(t, streetNumber)
	assert.Nil(t, streetName)
	assert.Nil(t, city)
	assert.Nil(t, state)
	assert.Nil(t, zip)
}

func TestTaxDecompositionTwoSlotCap(t *testing.T) {
	m := New()
	total := 50.0

	record := m.MapParsed(&domain.ParsedReceipt{
		Total: &total,
		Taxes: []float64{0.22, 0.22, 0.05},
	})

	assert.InDelta(t, 0.22, record.TaxField1, 1e-9)
	assert.InDelta(t, 0.22, record.TaxField2, 1e-9)
	// The third value is dropped: the downstream schema has exactly
	// two tax slots
}

func TestTaxDecompositionFromTaxTaggedItems(t *testing.T) {
	m := New()

	record := m.MapParsed(&domain.ParsedReceipt{
		Items: []domain.LineItem{
			{Name: "MILK", LineTotal: 3.00},
			{Name: "STATE TAX", LineTotal: 0.30},
			{Name: "CITY TAX", LineTotal: 0.12},
		},
	})

	assert.InDelta(t, 0.30, record.TaxField1, 1e-9)
	assert.InDelta(t, 0.12, record.TaxField2, 1e-9)
}

func TestTaxSlotsDefaultToZero(t *testing.T) {
	m := New()

	record := m.MapParsed(&domain.ParsedReceipt{})
	assert.Zero(t, record.TaxField1)
	assert.Zero(t, record.TaxField2)
}

func TestConfidenceScoreDefault(t *testing.T) {
	m := New()

	record := m.MapParsed(&domain.ParsedReceipt{})
	assert.InDelta(t, DefaultConfidenceScore, record.ConfidenceScore, 1e-9)
}

func TestConfidenceScoreMean(t *testing.T) {
	m := New()

	record := m.MapParsed(&domain.ParsedReceipt{
		Confidence: 0.9,
		Items: []domain.LineItem{
			{Name: "A", LineTotal: 1, Confidence: 0.8},
			{Name: "B", LineTotal: 1, Confidence: 0.7},
		},
	})
	assert.InDelta(t, 0.8, record.ConfidenceScore, 1e-9)
}

func TestMapEnriched(t *testing.T) {
	m := New()
	total := 96.49
	tax := 0.62
	oilPrice := 9.99

	enriched := &domain.EnrichedReceipt{
		Parsed: &domain.ParsedReceipt{
			Success:    true,
			Merchant:   "Trader Joe's",
			Address:    "Trader Joe'S Portland (519), Marginal Way, Portland, ME 04101",
			Date:       "2024-03-09",
			Time:       "13:21:00",
			Total:      &total,
			Tax:        &tax,
			Taxes:      []float64{0.62},
			Confidence: 0.9,
			Items: []domain.LineItem{
				{Name: "OL VE OIL", Quantity: 1, UnitPrice: &oilPrice, LineTotal: 9.99, Confidence: 0.92},
				{Name: "COCONUT MILK", Quantity: 1, LineTotal: 1.89, Confidence: 0.88},
			},
		},
		Items: []domain.EnrichedItem{
			{LineItem: domain.LineItem{Name: "OL VE OIL", Quantity: 1, UnitPrice: &oilPrice, LineTotal: 9.99, Confidence: 0.92}, ItemEnrichment: domain.ItemEnrichment{Category: "pantry"}},
			{LineItem: domain.LineItem{Name: "COCONUT MILK", Quantity: 1, LineTotal: 1.89, Confidence: 0.88}, ItemEnrichment: domain.ItemEnrichment{Category: "dairy"}},
		},
	}

	record := m.MapEnriched(enriched)

	assert.Equal(t, "Trader Joes", record.BrandName)
	assert.Equal(t, "2024-03-09", record.DateField)
	assert.InDelta(t, 96.49, record.TotalPriceField, 1e-9)
	assert.InDelta(t, 0.62, record.TaxField1, 1e-9)
	assert.Zero(t, record.TaxField2)

	require.NotNil(t, record.Zipcode)
	assert.Equal(t, "04101", *record.Zipcode)

	require.Len(t, record.Items, 2)
	assert.Equal(t, TypeCodePantry, record.Items[0].ItemTypeCode)
	assert.Equal(t, "pantry", record.Items[0].Category)
	assert.Equal(t, TypeCodeDairy, record.Items[1].ItemTypeCode)
	assert.Equal(t, "dairy", record.Items[1].Category)
}
