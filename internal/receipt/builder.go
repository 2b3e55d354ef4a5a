// Package receipt turns a finished cart into a printable, bilingual receipt.
package receipt

import (
	"fmt"
	"time"

	"sheetpos/pos/internal/domain"
	"sheetpos/pos/internal/quantity"

	"github.com/bwmarrin/snowflake"
	log "github.com/sirupsen/logrus"
)

type Builder struct {
	node            *snowflake.Node
	currency        string
	defaultLanguage string
	now             func() time.Time
}

func NewBuilder(nodeID int64, currency, defaultLanguage string) (*Builder, error) {
	node, err := snowflake.NewNode(nodeID)
	if err != nil {
		return nil, fmt.Errorf("failed to create receipt id generator: %w", err)
	}

	return &Builder{
		node:            node,
		currency:        currency,
		defaultLanguage: ResolveLanguage(defaultLanguage, LanguageEnglish),
		now:             time.Now,
	}, nil
}

// Build renders lines in the requested language. Localized product names are
// used for right-to-left receipts when the catalog carries one.
func (b *Builder) Build(lines []domain.CartLine, totals domain.Totals, lang string) (*domain.Receipt, error) {
	if len(lines) == 0 {
		return nil, domain.NewError(domain.KindEmptyCart, "Cart is empty")
	}

	resolved := ResolveLanguage(lang, b.defaultLanguage)
	direction := Direction(resolved)

	out := make([]domain.ReceiptLine, 0, len(lines))
	for _, line := range lines {
		name := line.Name
		if direction == DirectionRTL && line.NameLocalized != "" {
			name = line.NameLocalized
		}

		out = append(out, domain.ReceiptLine{
			Name:      name,
			Quantity:  quantity.Format(line.Quantity, line.UnitLabel),
			UnitPrice: line.UnitPrice,
			LineTotal: line.LineTotal(),
			Custom:    line.CustomPrice,
		})
	}

	receipt := &domain.Receipt{
		ID:        b.node.Generate().String(),
		IssuedAt:  b.now(),
		Language:  resolved,
		Direction: direction,
		Labels:    translations[resolved],
		Currency:  b.currency,
		Lines:     out,
		Subtotal:  totals.Subtotal,
		Tax:       totals.Tax,
		Total:     totals.Total,
	}

	log.Debugf("🧾 Built receipt %s (%s, %d lines, total %.2f)", receipt.ID, resolved, len(out), receipt.Total)
	return receipt, nil
}
