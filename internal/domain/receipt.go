package domain

import "time"

type ReceiptLine struct {
	Name      string  `json:"name" csv:"item"`
	Quantity  string  `json:"quantity" csv:"quantity"`
	UnitPrice float64 `json:"unit_price" csv:"unit_price"`
	LineTotal float64 `json:"line_total" csv:"line_total"`
	Custom    bool    `json:"custom_price" csv:"custom_price"`
}

type ReceiptLabels struct {
	Title    string `json:"title"`
	Date     string `json:"date"`
	Item     string `json:"item"`
	Quantity string `json:"quantity"`
	Price    string `json:"price"`
	Total    string `json:"total"`
	Subtotal string `json:"subtotal"`
	Tax      string `json:"tax"`
	ThankYou string `json:"thank_you"`
}

type Receipt struct {
	ID        string        `json:"id"`
	IssuedAt  time.Time     `json:"issued_at"`
	Language  string        `json:"language"`
	Direction string        `json:"direction"`
	Labels    ReceiptLabels `json:"labels"`
	Currency  string        `json:"currency"`
	Lines     []ReceiptLine `json:"lines"`
	Subtotal  float64       `json:"subtotal"`
	Tax       float64       `json:"tax"`
	Total     float64       `json:"total"`
}
