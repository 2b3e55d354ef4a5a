// Package cart holds the operator's in-progress sale. Every operation is
// all-or-nothing: a failed call leaves the lines untouched.
package cart

import (
	"sync"

	"sheetpos/pos/internal/domain"
	"sheetpos/pos/internal/quantity"
)

// ProductLookup resolves product IDs against the loaded catalog.
type ProductLookup interface {
	Product(id int) (domain.Product, bool)
}

// ReceiptBuilder renders the structured receipt for a set of lines.
type ReceiptBuilder interface {
	Build(lines []domain.CartLine, totals domain.Totals, language string) (*domain.Receipt, error)
}

type Cart struct {
	mu       sync.Mutex
	products ProductLookup
	receipts ReceiptBuilder
	taxRate  float64
	lines    []domain.CartLine
}

func New(products ProductLookup, receipts ReceiptBuilder, taxRate float64) *Cart {
	return &Cart{
		products: products,
		receipts: receipts,
		taxRate:  taxRate,
	}
}

// Select is the entry point for adding a product: it never creates a line,
// it returns the prices the operator must choose from.
func (c *Cart) Select(productID int) (domain.PriceSelection, error) {
	product, err := c.sellable(productID)
	if err != nil {
		return domain.PriceSelection{}, err
	}

	options := product.AvailablePrices()
	return domain.PriceSelection{
		Product:   product,
		Options:   options,
		Suggested: domain.SuggestedPrice(options),
	}, nil
}

// AddWithPrice adds one unit at the chosen price, merging into an existing
// line of the same product whose price matches within a cent.
func (c *Cart) AddWithPrice(productID int, price float64) (domain.CartLine, error) {
	if price < 0 {
		return domain.CartLine{}, domain.NewError(domain.KindInvalidPrice, "Price must be 0 or more, got %.2f", price)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	product, err := c.sellable(productID)
	if err != nil {
		return domain.CartLine{}, err
	}

	for i := range c.lines {
		line := &c.lines[i]
		if line.ProductID != productID || !domain.SamePrice(line.UnitPrice, price) {
			continue
		}
		next := quantity.Round(line.Quantity + 1)
		if product.StockLimited() && next > float64(product.Stock) {
			return domain.CartLine{}, insufficientStock(product)
		}
		line.Quantity = next
		return *line, nil
	}

	line := domain.CartLine{
		ProductID:     product.ID,
		Name:          product.Name,
		NameLocalized: product.NameLocalized,
		UnitLabel:     product.UnitLabel,
		Unit:          product.Unit,
		Quantity:      1,
		UnitPrice:     price,
		DefaultPrice:  product.DefaultPrice,
		CustomPrice:   !domain.SamePrice(price, product.DefaultPrice),
	}
	c.lines = append(c.lines, line)
	return line, nil
}

// AddWithTier adds one unit at one of the product's listed tier prices.
func (c *Cart) AddWithTier(productID int, tier domain.PriceTier) (domain.CartLine, error) {
	product, ok := c.products.Product(productID)
	if !ok {
		return domain.CartLine{}, productNotFound(productID)
	}
	price := product.Price(tier)
	if price <= 0 {
		return domain.CartLine{}, domain.NewError(domain.KindInvalidPrice, "%s has no %s", product.Name, tier.GetTierName())
	}
	return c.AddWithPrice(productID, price)
}

// Step moves a line's quantity one step up (direction > 0) or down. A line
// that reaches zero is removed.
func (c *Cart) Step(index int, direction int) error {
	if direction == 0 {
		return domain.NewError(domain.KindInvalidQuantity, "Step direction must be positive or negative")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	line, err := c.line(index)
	if err != nil {
		return err
	}

	step := quantity.Step(line.UnitLabel)
	if direction < 0 {
		step = -step
	}

	next := quantity.Round(line.Quantity + step)
	if next <= 0 {
		c.removeAt(index)
		return nil
	}

	if step > 0 {
		product, ok := c.products.Product(line.ProductID)
		if !ok {
			return productNotFound(line.ProductID)
		}
		if product.StockLimited() && next > float64(product.Stock) {
			return insufficientStock(product)
		}
	}

	line.Quantity = next
	return nil
}

// SetQuantity replaces a line's quantity with operator text such as "500 gm".
func (c *Cart) SetQuantity(index int, raw string) (domain.CartLine, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	line, err := c.line(index)
	if err != nil {
		return domain.CartLine{}, err
	}

	parsed := quantity.Parse(raw, line.UnitLabel)
	if parsed <= 0 {
		return domain.CartLine{}, domain.NewError(domain.KindInvalidQuantity, "Quantity must be greater than 0")
	}

	product, ok := c.products.Product(line.ProductID)
	if !ok {
		return domain.CartLine{}, productNotFound(line.ProductID)
	}
	if product.StockLimited() && parsed > float64(product.Stock) {
		return domain.CartLine{}, insufficientStock(product)
	}

	line.Quantity = parsed
	return *line, nil
}

// EditPrice overrides a line's unit price. Lines are not merged afterwards.
func (c *Cart) EditPrice(index int, price float64) (domain.CartLine, error) {
	if price < 0 {
		return domain.CartLine{}, domain.NewError(domain.KindInvalidPrice, "Price must be 0 or more, got %.2f", price)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	line, err := c.line(index)
	if err != nil {
		return domain.CartLine{}, err
	}

	line.UnitPrice = price
	line.CustomPrice = !domain.SamePrice(price, line.DefaultPrice)
	return *line, nil
}

func (c *Cart) Remove(index int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, err := c.line(index); err != nil {
		return err
	}
	c.removeAt(index)
	return nil
}

func (c *Cart) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lines = nil
}

func (c *Cart) Lines() []domain.CartLine {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshot()
}

func (c *Cart) Totals() domain.Totals {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.totals()
}

// View returns lines and totals from the same instant.
func (c *Cart) View() ([]domain.CartLine, domain.Totals) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshot(), c.totals()
}

// BuildReceipt renders the current cart without clearing it.
func (c *Cart) BuildReceipt(language string) (*domain.Receipt, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.buildReceipt(language)
}

// Checkout renders the receipt and empties the cart.
func (c *Cart) Checkout(language string) (*domain.Receipt, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	receipt, err := c.buildReceipt(language)
	if err != nil {
		return nil, err
	}
	c.lines = nil
	return receipt, nil
}

func (c *Cart) buildReceipt(language string) (*domain.Receipt, error) {
	if len(c.lines) == 0 {
		return nil, domain.NewError(domain.KindEmptyCart, "Cart is empty")
	}
	return c.receipts.Build(c.snapshot(), c.totals(), language)
}

func (c *Cart) totals() domain.Totals {
	var subtotal float64
	for _, line := range c.lines {
		subtotal += line.LineTotal()
	}
	tax := subtotal * c.taxRate
	return domain.Totals{
		Subtotal: subtotal,
		TaxRate:  c.taxRate,
		Tax:      tax,
		Total:    subtotal + tax,
	}
}

func (c *Cart) snapshot() []domain.CartLine {
	out := make([]domain.CartLine, len(c.lines))
	copy(out, c.lines)
	return out
}

func (c *Cart) line(index int) (*domain.CartLine, error) {
	if index < 0 || index >= len(c.lines) {
		return nil, domain.NewError(domain.KindLineNotFound, "No cart line at position %d", index)
	}
	return &c.lines[index], nil
}

func (c *Cart) removeAt(index int) {
	c.lines = append(c.lines[:index], c.lines[index+1:]...)
}

// sellable resolves a product that can currently be added.
func (c *Cart) sellable(productID int) (domain.Product, error) {
	product, ok := c.products.Product(productID)
	if !ok {
		return domain.Product{}, productNotFound(productID)
	}
	if product.OutOfStock() {
		return domain.Product{}, domain.NewError(domain.KindOutOfStock, "%s is out of stock", product.Name)
	}
	return product, nil
}

func productNotFound(id int) error {
	return domain.NewError(domain.KindProductNotFound, "Product %d not found in the current catalog", id)
}

func insufficientStock(product domain.Product) error {
	return domain.NewError(domain.KindInsufficientStock, "Not enough stock available for %s (%d in stock)", product.Name, product.Stock)
}
