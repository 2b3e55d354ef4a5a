package domain

import (
	"fmt"
	"strings"
)

// UnlimitedStock marks a product whose sheet carried no stock column.
const UnlimitedStock = 999

// UnknownName is the placeholder assigned when no name column yields a value.
const UnknownName = "Unknown"

type PriceTier string

func (t PriceTier) String() string {
	return string(t)
}

const (
	TierParchon   PriceTier = "parchon"   // retail, small quantities
	TierGatta     PriceTier = "gatta"     // bulk
	TierWholesale PriceTier = "wholesale" // wholesale
)

// PriceTiers is the priority order used to pick a default price.
var PriceTiers = []PriceTier{
	TierParchon,
	TierGatta,
	TierWholesale,
}

func (t PriceTier) GetTierName() string {
	switch t {
	case TierParchon:
		return "Parchon Price"
	case TierGatta:
		return "Gatta Price"
	case TierWholesale:
		return "Wholesale Price"
	default:
		return "Price"
	}
}

type TierPrice struct {
	Tier  PriceTier `json:"tier"`
	Price float64   `json:"price"`
}

type Product struct {
	ID            int         `json:"id"`
	Name          string      `json:"name"`
	NameLocalized string      `json:"name_localized,omitempty"`
	Category      string      `json:"category"`
	Barcode       string      `json:"barcode,omitempty"`
	Description   string      `json:"description,omitempty"`
	UnitLabel     string      `json:"unit_label"`
	Unit          UnitClass   `json:"unit"`
	Prices        []TierPrice `json:"prices"`
	DefaultPrice  float64     `json:"default_price"`
	MinPrice      float64     `json:"min_price,omitempty"`
	MaxPrice      float64     `json:"max_price,omitempty"`
	Stock         int         `json:"stock"`
}

// Price returns the price of the given tier, 0 when the tier is absent.
func (p *Product) Price(tier PriceTier) float64 {
	for _, tp := range p.Prices {
		if tp.Tier == tier {
			return tp.Price
		}
	}
	return 0
}

// AvailablePrices lists the tiers with a positive price in priority order.
func (p *Product) AvailablePrices() []TierPrice {
	out := make([]TierPrice, 0, len(p.Prices))
	for _, tier := range PriceTiers {
		if price := p.Price(tier); price > 0 {
			out = append(out, TierPrice{Tier: tier, Price: price})
		}
	}
	return out
}

// SuggestedPrice is the first positive tier price in priority order.
func SuggestedPrice(prices []TierPrice) float64 {
	for _, tier := range PriceTiers {
		for _, tp := range prices {
			if tp.Tier == tier && tp.Price > 0 {
				return tp.Price
			}
		}
	}
	return 0
}

func (p *Product) IsValid() bool {
	name := strings.TrimSpace(p.Name)
	return name != "" && name != UnknownName && p.DefaultPrice > 0
}

// StockLimited reports whether the stock value constrains cart quantities.
func (p *Product) StockLimited() bool {
	return p.Stock > 0 && p.Stock != UnlimitedStock
}

func (p *Product) OutOfStock() bool {
	return p.Stock == 0
}

// BuildDescription summarizes localized name and tier prices for display.
func BuildDescription(nameLocalized string, prices []TierPrice, currency string) string {
	parts := make([]string, 0, len(prices))
	for _, tp := range prices {
		if tp.Price <= 0 {
			continue
		}
		label := strings.TrimSuffix(tp.Tier.GetTierName(), " Price")
		parts = append(parts, fmt.Sprintf("%s: %s%.2f", label, currency, tp.Price))
	}

	var description string
	if nameLocalized != "" {
		description = "Urdu: " + nameLocalized
	}
	if len(parts) > 0 {
		if description != "" {
			description += " | "
		}
		description += strings.Join(parts, ", ")
	}
	return description
}
