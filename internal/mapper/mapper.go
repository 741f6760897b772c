package mapper

import (
	"regexp"
	"strings"

	"github.com/ridwanfathin/receipt-normalizer-service/internal/domain"
)

// DefaultConfidenceScore is assumed when no per-field confidences are
// available at all. Kept independent from the parser's and enricher's
// defaults.
const DefaultConfidenceScore = 0.8

// taxSlots is the fixed number of tax columns in the downstream
// schema. A third or later tax value is silently dropped; this is a
// known, reproducible limitation of the consumer, not a bug to fix
// here.
const taxSlots = 2

// Item type codes: the closed vocabulary of the downstream schema,
// coarser than the enricher's category scheme
const (
	TypeCodeProduce = "PROD"
	TypeCodeDairy   = "DAIRY"
	TypeCodeBakery  = "BAKERY"
	TypeCodeMeat    = "MEAT"
	TypeCodePantry  = "PANTRY"
	TypeCodeFee     = "FEE"
	TypeCodeMisc    = "MISC"
)

// brandAlias collapses known spelling variants to one canonical form
type brandAlias struct {
	match     string
	canonical string
}

// typeCodeRule maps item-name keywords to a type code. Evaluated in
// order, first match wins.
type typeCodeRule struct {
	code     string
	keywords []string
}

func defaultBrandAliases() []brandAlias {
	return []brandAlias{
		{"trader joe", "Trader Joes"},
		{"wal-mart", "Walmart"},
		{"wal mart", "Walmart"},
		{"walmart", "Walmart"},
		{"whole foods", "Whole Foods"},
		{"sam's club", "Sams Club"},
		{"sams club", "Sams Club"},
		{"mcdonald", "McDonalds"},
		{"7-eleven", "7-Eleven"},
		{"7 eleven", "7-Eleven"},
		{"walgreen", "Walgreens"},
		{"cvs", "CVS"},
		{"costco", "Costco"},
		{"safeway", "Safeway"},
		{"kroger", "Kroger"},
	}
}

func defaultTypeCodeRules() []typeCodeRule {
	return []typeCodeRule{
		{TypeCodeProduce, []string{"apple", "banana", "orange", "lettuce", "spinach", "tomato", "onion", "potato", "carrot", "fruit", "vegetable", "salad", "produce"}},
		{TypeCodeDairy, []string{"milk", "cheese", "yogurt", "butter", "cream", "egg"}},
		{TypeCodeBakery, []string{"bread", "bagel", "muffin", "croissant", "cake", "donut", "tortilla"}},
		{TypeCodeMeat, []string{"chicken", "beef", "pork", "turkey", "ham", "bacon", "sausage", "fish", "salmon", "tuna"}},
		{TypeCodePantry, []string{"oil", "rice", "pasta", "flour", "sugar", "sauce", "cereal", "bean", "soup", "spice"}},
		{TypeCodeFee, []string{"tax", "fee", "deposit", "surcharge", "tip", "bag charge"}},
	}
}

var (
	// streetNumberRegex finds the first standalone number token
	streetNumberRegex = regexp.MustCompile(`\b(\d+)\b`)
	// zipRegex scans for a 5-digit zip with an optional +4 suffix
	zipRegex = regexp.MustCompile(`\b(\d{5})(?:-\d{4})?\b`)
	// parentheticalRegex strips store-identifier annotations like
	// "(519)" from street-name candidates
	parentheticalRegex = regexp.MustCompile(`\([^)]*\)`)
	// quoteChars are removed from unmatched brand names
	quoteChars = strings.NewReplacer(`"`, "", "'", "", "`", "")
)

// Mapper deterministically transforms enriched-or-raw receipt data
// into the fixed MappedRecord schema. All tables are fixed at
// construction; the mapper holds no mutable state.
type Mapper struct {
	brandAliases  []brandAlias
	typeCodeRules []typeCodeRule
}

// New creates a mapper with the default alias and type-code tables
func New() *Mapper {
	return &Mapper{
		brandAliases:  defaultBrandAliases(),
		typeCodeRules: defaultTypeCodeRules(),
	}
}

// MapEnriched maps an enriched receipt into the downstream schema
func (m *Mapper) MapEnriched(enriched *domain.EnrichedReceipt) *domain.MappedRecord {
	record := m.mapParsedFields(enriched.Parsed)

	record.Items = make([]domain.MappedItem, 0, len(enriched.Items))
	for _, item := range enriched.Items {
		record.Items = append(record.Items, domain.MappedItem{
			ItemName:     item.Name,
			ItemTypeCode: m.AssignTypeCode(item.Name),
			ItemPrice:    item.LineTotal,
			Quantity:     item.Quantity,
			UnitPrice:    item.UnitPrice,
			Category:     item.Category,
		})
	}
	return record
}

// MapParsed maps a raw parsed receipt when no enrichment ran. Items
// carry type codes but no category.
func (m *Mapper) MapParsed(parsed *domain.ParsedReceipt) *domain.MappedRecord {
	record := m.mapParsedFields(parsed)

	record.Items = make([]domain.MappedItem, 0, len(parsed.Items))
	for _, item := range parsed.Items {
		record.Items = append(record.Items, domain.MappedItem{
			ItemName:     item.Name,
			ItemTypeCode: m.AssignTypeCode(item.Name),
			ItemPrice:    item.LineTotal,
			Quantity:     item.Quantity,
			UnitPrice:    item.UnitPrice,
		})
	}
	return record
}

func (m *Mapper) mapParsedFields(parsed *domain.ParsedReceipt) *domain.MappedRecord {
	record := &domain.MappedRecord{
		BrandName: m.NormalizeBrandName(parsed.Merchant),
		DateField: parsed.Date,
		TimeField: parsed.Time,
	}

	record.StreetNumber, record.StreetName, record.City, record.State, record.Zipcode = m.decomposeAddress(parsed)
	record.TaxField1, record.TaxField2 = decomposeTaxes(parsed)

	if parsed.Total != nil {
		record.TotalPriceField = *parsed.Total
	}
	record.ConfidenceScore = aggregateConfidence(parsed)

	return record
}

// NormalizeBrandName collapses known spelling variants via
// case-insensitive substring match. Unmatched names pass through with
// quote characters stripped and trimmed. The function is idempotent.
func (m *Mapper) NormalizeBrandName(name string) string {
	lower := strings.ToLower(name)
	for _, alias := range m.brandAliases {
		if strings.Contains(lower, alias.match) {
			return alias.canonical
		}
	}
	return strings.TrimSpace(quoteChars.Replace(name))
}

// AssignTypeCode maps an item name into the fixed type-code set.
// Total: every name yields a code, defaulting to MISC.
func (m *Mapper) AssignTypeCode(name string) string {
	lower := strings.ToLower(name)
	for _, rule := range m.typeCodeRules {
		for _, keyword := range rule.keywords {
			if strings.Contains(lower, keyword) {
				return rule.code
			}
		}
	}
	return TypeCodeMisc
}

// decomposeAddress prefers the provider's structured breakdown and
// falls back to regex heuristics over the raw address string.
// Heuristics degrade to nil on unparseable input, never error.
func (m *Mapper) decomposeAddress(parsed *domain.ParsedReceipt) (streetNumber, streetName, city, state, zip *string) {
	city = optional(parsed.City)
	state = optional(parsed.State)
	zip = optional(parsed.Zipcode)

	addr := parsed.Address
	if addr == "" {
		return streetNumber, streetName, city, state, zip
	}

	if zip == nil {
		if match := zipRegex.FindStringSubmatch(addr); match != nil {
			zip = &match[1]
		}
	}

	loc := streetNumberRegex.FindStringIndex(addr)
	if loc == nil {
		return streetNumber, streetName, city, state, zip
	}
	number := addr[loc[0]:loc[1]]
	streetNumber = &number

	// Street name: text between the number and the first comma, with
	// trailing parenthetical annotations stripped
	rest := addr[loc[1]:]
	if comma := strings.Index(rest, ","); comma >= 0 {
		rest = rest[:comma]
	}
	rest = parentheticalRegex.ReplaceAllString(rest, "")
	rest = strings.Trim(rest, " ,()")
	if rest != "" {
		streetName = &rest
	}

	return streetNumber, streetName, city, state, zip
}

// decomposeTaxes fills the two fixed tax slots from the source tax
// list, or from tax-tagged line items when no list is present. Missing
// slots default to 0.
func decomposeTaxes(parsed *domain.ParsedReceipt) (float64, float64) {
	taxes := parsed.Taxes
	if len(taxes) == 0 {
		for _, item := range parsed.Items {
			if strings.Contains(strings.ToLower(item.Name), "tax") {
				taxes = append(taxes, item.LineTotal)
			}
		}
	}

	slots := [taxSlots]float64{}
	for i := 0; i < len(taxes) && i < taxSlots; i++ {
		slots[i] = taxes[i]
	}
	return slots[0], slots[1]
}

// aggregateConfidence is the arithmetic mean of the available
// confidences, with the mapper's own default when none are present
func aggregateConfidence(parsed *domain.ParsedReceipt) float64 {
	var sum float64
	var count int
	if parsed.Confidence > 0 {
		sum += parsed.Confidence
		count++
	}
	for _, item := range parsed.Items {
		if item.Confidence > 0 {
			sum += item.Confidence
			count++
		}
	}
	if count == 0 {
		return DefaultConfidenceScore
	}
	return sum / float64(count)
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
