package domain

import "math"

// PriceEpsilon is the tolerance below which two unit prices are treated as equal.
const PriceEpsilon = 0.01

func SamePrice(a, b float64) bool {
	return math.Abs(a-b) < PriceEpsilon
}

type CartLine struct {
	ProductID     int       `json:"product_id"`
	Name          string    `json:"name"`
	NameLocalized string    `json:"name_localized,omitempty"`
	UnitLabel     string    `json:"unit_label"`
	Unit          UnitClass `json:"unit"`
	Quantity      float64   `json:"quantity"`
	UnitPrice     float64   `json:"unit_price"`
	DefaultPrice  float64   `json:"default_price"`
	CustomPrice   bool      `json:"custom_price"`
}

func (l CartLine) LineTotal() float64 {
	return l.UnitPrice * l.Quantity
}

type Totals struct {
	Subtotal float64 `json:"subtotal"`
	TaxRate  float64 `json:"tax_rate"`
	Tax      float64 `json:"tax"`
	Total    float64 `json:"total"`
}

// PriceSelection is what an operator chooses from before a product enters the cart.
type PriceSelection struct {
	Product   Product     `json:"product"`
	Options   []TierPrice `json:"options"`
	Suggested float64     `json:"suggested"`
}
