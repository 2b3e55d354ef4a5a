package catalog

import (
	"regexp"
	"strings"
)

type Field string

func (f Field) String() string {
	return string(f)
}

const (
	FieldName          Field = "name"
	FieldNameLocalized Field = "name_localized"
	FieldBarcode       Field = "barcode"
	FieldUnit          Field = "unit"
	FieldStock         Field = "stock"
	FieldCategory      Field = "category"
	FieldDescription   Field = "description"
	FieldParchonPrice  Field = "parchon_price"
	FieldGattaPrice    Field = "gatta_price"
	FieldWholesale     Field = "wholesale_price"
	FieldMinPrice      Field = "min_price"
	FieldMaxPrice      Field = "max_price"
)

// headerPredicate decides whether a sheet header carries a logical field.
type headerPredicate func(header string) bool

func matches(pattern string) headerPredicate {
	re := regexp.MustCompile(`(?i)` + pattern)
	return re.MatchString
}

func containsButNot(word, excluded string) headerPredicate {
	return func(header string) bool {
		h := strings.ToLower(header)
		return strings.Contains(h, word) && (excluded == "" || !strings.Contains(h, excluded))
	}
}

// columnRule describes how one logical field is located. Inference
// predicates pick a single column for the whole sheet (first predicate
// to match any header wins); literals are per-row fallbacks.
type columnRule struct {
	Field    Field
	Infer    []headerPredicate
	Literals []string
}

func priceLiterals(tier string) []string {
	lower := strings.ToLower(tier)
	return []string{
		tier + " Price",
		lower + " price",
		tier + "Price",
		lower + "price",
	}
}

var columnRules = []columnRule{
	{
		Field: FieldName,
		Infer: []headerPredicate{
			matches(`name.*english|english.*name`),
			containsButNot("name", "urdu"),
			matches(`^name$`),
		},
		Literals: []string{
			"Name (English)", "name (english)", "Name(English)", "name(english)",
			"Name", "name",
			"Product", "product",
			"Product Name", "product name",
			"Item", "item",
		},
	},
	{
		Field: FieldNameLocalized,
		Infer: []headerPredicate{
			matches(`name.*urdu|urdu.*name`),
			containsButNot("urdu", ""),
		},
		Literals: []string{
			"Name (Urdu)", "name (urdu)", "Name(Urdu)", "name(urdu)",
			"Urdu Name", "urdu name",
		},
	},
	{
		Field:    FieldBarcode,
		Literals: []string{"Barcode", "barcode", "SKU", "sku", "Product Code", "product code"},
	},
	{
		Field:    FieldUnit,
		Literals: []string{"Unit", "unit", "Unit Type", "unit type", "Type", "type"},
	},
	{
		Field:    FieldStock,
		Literals: []string{"Stock", "stock", "Quantity", "quantity", "In Stock", "in stock"},
	},
	{
		Field:    FieldCategory,
		Literals: []string{"Category", "category", "Product Category", "product category"},
	},
	{
		Field:    FieldDescription,
		Literals: []string{"Description", "description"},
	},
	{Field: FieldParchonPrice, Literals: priceLiterals("Parchon")},
	{Field: FieldGattaPrice, Literals: priceLiterals("Gatta")},
	{Field: FieldWholesale, Literals: priceLiterals("Wholesale")},
	{Field: FieldMinPrice, Literals: priceLiterals("Min")},
	{Field: FieldMaxPrice, Literals: priceLiterals("Max")},
}

// inferColumns runs each rule's predicates rule-major over the header list.
func inferColumns(headers []string) map[Field]string {
	resolved := make(map[Field]string)
	for _, rule := range columnRules {
	predicates:
		for _, pred := range rule.Infer {
			for _, header := range headers {
				if pred(header) {
					resolved[rule.Field] = header
					break predicates
				}
			}
		}
	}
	return resolved
}

func ruleFor(field Field) columnRule {
	for _, rule := range columnRules {
		if rule.Field == field {
			return rule
		}
	}
	return columnRule{Field: field}
}
