// Package catalog turns raw spreadsheet rows into validated products and
// holds the currently loaded catalog.
package catalog

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"sheetpos/pos/internal/domain"
	"sheetpos/pos/internal/sheet"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cast"
)

const DefaultCategory = "General"

var leadingNumber = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)`)

// Result is one successful import.
type Result struct {
	Products []domain.Product `json:"products"`
	Headers  []string         `json:"headers"`
	RowCount int              `json:"row_count"`
	Rejected int              `json:"rejected"`
	Columns  map[Field]string `json:"columns"`
	Prices   PriceSummary     `json:"prices"`
}

type Normalizer struct {
	currency string
}

func NewNormalizer(currency string) *Normalizer {
	return &Normalizer{currency: currency}
}

// Normalize validates rows and builds products in sheet order. Product IDs
// are 1-based row positions and are never reused for rejected rows.
func (n *Normalizer) Normalize(rows []sheet.Row) (*Result, error) {
	if len(rows) == 0 {
		return nil, domain.NewError(domain.KindEmptyCatalog, "Excel file is empty or contains no data rows")
	}

	headers := rows[0].Headers()
	columns := inferColumns(headers)
	log.Debugf("Resolved columns: %v", columns)

	result := &Result{
		Products: make([]domain.Product, 0, len(rows)),
		Headers:  headers,
		RowCount: len(rows),
		Columns:  columns,
	}

	for i, row := range rows {
		product := n.buildProduct(i+1, row, columns)
		if !product.IsValid() {
			log.Debugf("Filtered out row %d (name=%q, price=%.2f)", i+1, product.Name, product.DefaultPrice)
			result.Rejected++
			continue
		}
		result.Products = append(result.Products, product)
	}

	if len(result.Products) == 0 {
		return nil, &domain.Error{
			Kind: domain.KindNoValidProducts,
			Message: "No valid products found. Found " + strconv.Itoa(len(rows)) +
				" rows but none had valid Name and Price. Available columns: " + strings.Join(headers, ", "),
			Headers:  headers,
			RowCount: len(rows),
		}
	}

	result.Prices = summarizePrices(result.Products)
	return result, nil
}

func (n *Normalizer) buildProduct(id int, row sheet.Row, columns map[Field]string) domain.Product {
	name := strings.TrimSpace(textField(row, FieldName, columns, domain.UnknownName))
	nameLocalized := strings.TrimSpace(textField(row, FieldNameLocalized, columns, ""))

	unitLabel := strings.TrimSpace(textField(row, FieldUnit, columns, domain.DefaultUnitLabel))
	if unitLabel == "" {
		unitLabel = domain.DefaultUnitLabel
	}

	prices := []domain.TierPrice{
		{Tier: domain.TierParchon, Price: priceField(row, FieldParchonPrice)},
		{Tier: domain.TierGatta, Price: priceField(row, FieldGattaPrice)},
		{Tier: domain.TierWholesale, Price: priceField(row, FieldWholesale)},
	}

	description := strings.TrimSpace(textField(row, FieldDescription, columns, ""))
	if description == "" {
		description = domain.BuildDescription(nameLocalized, prices, n.currency)
	}

	category := strings.TrimSpace(textField(row, FieldCategory, columns, DefaultCategory))
	if category == "" {
		category = DefaultCategory
	}

	return domain.Product{
		ID:            id,
		Name:          name,
		NameLocalized: nameLocalized,
		Category:      category,
		Barcode:       strings.TrimSpace(textField(row, FieldBarcode, columns, "")),
		Description:   description,
		UnitLabel:     unitLabel,
		Unit:          domain.ClassifyUnit(unitLabel),
		Prices:        prices,
		DefaultPrice:  domain.SuggestedPrice(prices),
		MinPrice:      priceField(row, FieldMinPrice),
		MaxPrice:      priceField(row, FieldMaxPrice),
		Stock:         stockField(row),
	}
}

// textField prefers the inferred column, then the first non-blank literal column.
func textField(row sheet.Row, field Field, columns map[Field]string, fallback string) string {
	if column, ok := columns[field]; ok {
		if v, _ := row.Get(column); strings.TrimSpace(v) != "" {
			return v
		}
	}
	for _, header := range ruleFor(field).Literals {
		if v, ok := row.Get(header); ok && strings.TrimSpace(v) != "" {
			return v
		}
	}
	return fallback
}

// priceField takes the first literal column holding a non-zero number.
func priceField(row sheet.Row, field Field) float64 {
	for _, header := range ruleFor(field).Literals {
		v, ok := row.Get(header)
		if !ok {
			continue
		}
		if price, ok := ParseNumber(v); ok && price != 0 {
			return math.Max(price, 0)
		}
	}
	return 0
}

// stockField reads the first non-blank stock column; absent or unparsable
// stock means unlimited.
func stockField(row sheet.Row) int {
	for _, header := range ruleFor(FieldStock).Literals {
		v, ok := row.Get(header)
		if !ok || strings.TrimSpace(v) == "" {
			continue
		}
		stock, ok := ParseNumber(v)
		if !ok {
			return domain.UnlimitedStock
		}
		if stock < 0 {
			return 0
		}
		if stock >= math.MaxInt32 {
			return domain.UnlimitedStock
		}
		return int(stock)
	}
	return domain.UnlimitedStock
}

// ParseNumber accepts plain numbers and values with a trailing suffix such as "120 Rs".
func ParseNumber(raw string) (float64, bool) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return 0, false
	}
	if v, err := cast.ToFloat64E(trimmed); err == nil && !math.IsNaN(v) && !math.IsInf(v, 0) {
		return v, true
	}
	token := leadingNumber.FindString(trimmed)
	if token == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(token, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
