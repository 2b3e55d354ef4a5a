package receipt

import (
	"bytes"
	"fmt"
	"html/template"

	"sheetpos/pos/internal/domain"

	"github.com/gocarina/gocsv"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const receiptHTMLTemplate = `<!doctype html>
<html lang="{{.Receipt.Language}}" dir="{{.Receipt.Direction}}">
<head>
  <meta charset="utf-8" />
  <title>{{.Receipt.Labels.Title}}</title>
  <style>
    body { font-family: {{.Font}}; padding: 20px; direction: {{.Receipt.Direction}}; }
    h1, h2 { text-align: center; margin: 4px 0; }
    table { width: 100%; border-collapse: collapse; margin: 20px 0; }
    th, td { padding: 8px; text-align: {{.Align}}; border-bottom: 1px solid #ddd; }
    th { background-color: #f2f2f2; }
    .total { font-weight: bold; font-size: 1.2em; }
    .opposite { text-align: {{.Opposite}}; }
    .custom { font-style: italic; }
    .thanks { text-align: center; margin-top: 30px; }
  </style>
</head>
<body>
  {{if .ShopName}}<h2 class="shop">{{.ShopName}}</h2>{{end}}
  <h1>{{.Receipt.Labels.Title}}</h1>
  <p><strong>{{.Receipt.Labels.Date}}:</strong> <span class="date">{{formatDate .Receipt}}</span></p>
  <p class="receipt-id">#{{.Receipt.ID}}</p>
  <table>
    <thead>
      <tr>
        <th>{{.Receipt.Labels.Item}}</th>
        <th>{{.Receipt.Labels.Quantity}}</th>
        <th>{{.Receipt.Labels.Price}}</th>
        <th>{{.Receipt.Labels.Total}}</th>
      </tr>
    </thead>
    <tbody>
      {{range .Receipt.Lines}}
      <tr class="line">
        <td class="name">{{.Name}}</td>
        <td class="quantity">{{.Quantity}}</td>
        <td class="price{{if .Custom}} custom{{end}}">{{formatMoney $.Receipt .UnitPrice}}</td>
        <td class="line-total">{{formatMoney $.Receipt .LineTotal}}</td>
      </tr>
      {{end}}
    </tbody>
    <tfoot>
      {{if gt .Receipt.Tax 0.0}}
      <tr>
        <td colspan="3" class="opposite">{{.Receipt.Labels.Subtotal}}:</td>
        <td class="subtotal">{{formatMoney .Receipt .Receipt.Subtotal}}</td>
      </tr>
      <tr>
        <td colspan="3" class="opposite">{{.Receipt.Labels.Tax}}:</td>
        <td class="tax">{{formatMoney .Receipt .Receipt.Tax}}</td>
      </tr>
      {{end}}
      <tr class="total">
        <td colspan="3" class="opposite">{{.Receipt.Labels.Total}}:</td>
        <td class="grand-total">{{formatMoney .Receipt .Receipt.Total}}</td>
      </tr>
    </tfoot>
  </table>
  <p class="thanks">{{.Receipt.Labels.ThankYou}}</p>
</body>
</html>
`

const (
	fontLTR = `Arial, sans-serif`
	fontRTL = `Arial, "Noto Nastaliq Urdu", "Al Qalam Taj Nastaliq", sans-serif`
)

type renderInput struct {
	Receipt  *domain.Receipt
	ShopName string
	Font     template.CSS
	Align    template.CSS
	Opposite template.CSS
}

type HTMLRenderer struct {
	tpl      *template.Template
	shopName string
}

func NewHTMLRenderer(shopName string) *HTMLRenderer {
	funcs := template.FuncMap{
		"formatMoney": formatMoney,
		"formatDate":  formatDate,
	}
	return &HTMLRenderer{
		tpl:      template.Must(template.New("receipt").Funcs(funcs).Parse(receiptHTMLTemplate)),
		shopName: shopName,
	}
}

func (r *HTMLRenderer) RenderHTML(receipt *domain.Receipt) ([]byte, error) {
	input := renderInput{
		Receipt:  receipt,
		ShopName: r.shopName,
		Font:     fontLTR,
		Align:    "left",
		Opposite: "right",
	}
	if receipt.Direction == DirectionRTL {
		input.Font = fontRTL
		input.Align = "right"
		input.Opposite = "left"
	}

	var buf bytes.Buffer
	if err := r.tpl.Execute(&buf, input); err != nil {
		return nil, fmt.Errorf("failed to render receipt %s: %w", receipt.ID, err)
	}
	return buf.Bytes(), nil
}

// RenderCSV exports the receipt lines, one row per cart line.
func RenderCSV(receipt *domain.Receipt) ([]byte, error) {
	data, err := gocsv.MarshalBytes(&receipt.Lines)
	if err != nil {
		return nil, fmt.Errorf("failed to export receipt %s: %w", receipt.ID, err)
	}
	return data, nil
}

func formatMoney(receipt *domain.Receipt, amount float64) string {
	p := message.NewPrinter(language.Make(receipt.Language))
	return p.Sprintf("%s%.2f", receipt.Currency, amount)
}

func formatDate(receipt *domain.Receipt) string {
	return receipt.IssuedAt.Format("2006-01-02 15:04")
}
