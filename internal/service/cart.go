package service

import (
	"strings"

	"sheetpos/pos/internal/domain"
	"sheetpos/pos/internal/quantity"

	log "github.com/sirupsen/logrus"
)

func (s *Service) Cart() *CartView {
	lines, totals := s.cart.View()
	return cartView(lines, totals)
}

func cartView(lines []domain.CartLine, totals domain.Totals) *CartView {
	view := &CartView{
		Lines:  make([]CartLineView, 0, len(lines)),
		Totals: totals,
	}
	for i, line := range lines {
		view.Lines = append(view.Lines, CartLineView{
			CartLine:          line,
			Index:             i,
			QuantityFormatted: quantity.Format(line.Quantity, line.UnitLabel),
			Step:              quantity.Step(line.UnitLabel),
			Total:             line.LineTotal(),
		})
	}
	return view
}

func (s *Service) SelectProduct(productID int) (domain.PriceSelection, error) {
	selection, err := s.cart.Select(productID)
	s.metrics.CartOperation("select", err)
	return selection, err
}

// AddToCart adds one unit of a product at an explicit price or at one of its
// tier prices. One of the two must be given.
func (s *Service) AddToCart(productID int, price *float64, tier string) (domain.CartLine, error) {
	var line domain.CartLine
	var err error

	switch {
	case price != nil:
		line, err = s.cart.AddWithPrice(productID, *price)
	case strings.TrimSpace(tier) != "":
		line, err = s.cart.AddWithTier(productID, domain.PriceTier(strings.ToLower(strings.TrimSpace(tier))))
	default:
		err = domain.NewError(domain.KindInvalidPrice, "Choose a price or a price tier")
	}

	s.metrics.CartOperation("add", err)
	if err == nil {
		log.Debugf("🛒 Added %s at %.2f", line.Name, line.UnitPrice)
	}
	return line, err
}

func (s *Service) StepQuantity(index, direction int) (*CartView, error) {
	err := s.cart.Step(index, direction)
	s.metrics.CartOperation("step", err)
	if err != nil {
		return nil, err
	}
	return s.Cart(), nil
}

func (s *Service) SetQuantity(index int, raw string) (domain.CartLine, error) {
	line, err := s.cart.SetQuantity(index, raw)
	s.metrics.CartOperation("set_quantity", err)
	return line, err
}

func (s *Service) EditPrice(index int, price float64) (domain.CartLine, error) {
	line, err := s.cart.EditPrice(index, price)
	s.metrics.CartOperation("edit_price", err)
	return line, err
}

func (s *Service) RemoveLine(index int) error {
	err := s.cart.Remove(index)
	s.metrics.CartOperation("remove", err)
	return err
}

func (s *Service) ClearCart() {
	s.cart.Clear()
	s.metrics.CartOperation("clear", nil)
}

func (s *Service) PreviewReceipt(lang string) (*domain.Receipt, error) {
	r, err := s.cart.BuildReceipt(lang)
	s.metrics.CartOperation("receipt", err)
	return r, err
}

func (s *Service) Checkout(lang string) (*domain.Receipt, error) {
	r, err := s.cart.Checkout(lang)
	s.metrics.CartOperation("checkout", err)
	if err != nil {
		return nil, err
	}

	s.metrics.Checkout(r.Total)
	log.Infof("💰 Checkout %s completed: %d lines, total %s%.2f", r.ID, len(r.Lines), r.Currency, r.Total)
	return r, nil
}

func (s *Service) RenderReceiptHTML(r *domain.Receipt) ([]byte, error) {
	return s.renderer.RenderHTML(r)
}
