package cart

import (
	"errors"
	"testing"

	"sheetpos/pos/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type productMap map[int]domain.Product

func (m productMap) Product(id int) (domain.Product, bool) {
	p, ok := m[id]
	return p, ok
}

type stubReceipts struct {
	calls int
}

func (s *stubReceipts) Build(lines []domain.CartLine, totals domain.Totals, language string) (*domain.Receipt, error) {
	s.calls++
	out := &domain.Receipt{Language: language, Subtotal: totals.Subtotal, Tax: totals.Tax, Total: totals.Total}
	for _, line := range lines {
		out.Lines = append(out.Lines, domain.ReceiptLine{Name: line.Name, UnitPrice: line.UnitPrice, LineTotal: line.LineTotal()})
	}
	return out, nil
}

func testProducts() productMap {
	return productMap{
		1: {
			ID: 1, Name: "Rice", UnitLabel: "Kg", Unit: domain.UnitWeight,
			Prices: []domain.TierPrice{
				{Tier: domain.TierParchon, Price: 200},
				{Tier: domain.TierGatta, Price: 190},
				{Tier: domain.TierWholesale, Price: 180},
			},
			DefaultPrice: 200, Stock: domain.UnlimitedStock,
		},
		2: {
			ID: 2, Name: "Soap", UnitLabel: "Pack", Unit: domain.UnitCount,
			Prices:       []domain.TierPrice{{Tier: domain.TierParchon, Price: 50}},
			DefaultPrice: 50, Stock: 2,
		},
		3: {
			ID: 3, Name: "Sugar", UnitLabel: "Kg", Unit: domain.UnitWeight,
			Prices:       []domain.TierPrice{{Tier: domain.TierGatta, Price: 150}},
			DefaultPrice: 150, Stock: 0,
		},
		4: {
			ID: 4, Name: "Milk", UnitLabel: "Liter", Unit: domain.UnitVolume,
			Prices:       []domain.TierPrice{{Tier: domain.TierParchon, Price: 220}},
			DefaultPrice: 220, Stock: domain.UnlimitedStock,
		},
	}
}

func newTestCart(taxRate float64) (*Cart, *stubReceipts) {
	receipts := &stubReceipts{}
	return New(testProducts(), receipts, taxRate), receipts
}

func TestSelectListsPositiveTiers(t *testing.T) {
	c, _ := newTestCart(0)

	sel, err := c.Select(1)
	require.NoError(t, err)
	assert.Len(t, sel.Options, 3)
	assert.Equal(t, 200.0, sel.Suggested)
	assert.Empty(t, c.Lines())

	sel, err = c.Select(2)
	require.NoError(t, err)
	assert.Equal(t, []domain.TierPrice{{Tier: domain.TierParchon, Price: 50}}, sel.Options)
}

func TestSelectRejectsOutOfStockAndUnknown(t *testing.T) {
	c, _ := newTestCart(0)

	_, err := c.Select(3)
	assert.True(t, errors.Is(err, domain.ErrOutOfStock))

	_, err = c.Select(42)
	assert.True(t, errors.Is(err, domain.ErrProductNotFound))
}

func TestAddMergesSamePrice(t *testing.T) {
	c, _ := newTestCart(0)

	_, err := c.AddWithPrice(1, 200)
	require.NoError(t, err)
	line, err := c.AddWithPrice(1, 200.004)
	require.NoError(t, err)

	assert.Equal(t, 2.0, line.Quantity)
	assert.Len(t, c.Lines(), 1)
	assert.False(t, line.CustomPrice)
}

func TestAddSeparatesDifferentPrices(t *testing.T) {
	c, _ := newTestCart(0)

	_, err := c.AddWithTier(1, domain.TierParchon)
	require.NoError(t, err)
	line, err := c.AddWithTier(1, domain.TierWholesale)
	require.NoError(t, err)

	lines := c.Lines()
	require.Len(t, lines, 2)
	assert.Equal(t, 200.0, lines[0].UnitPrice)
	assert.Equal(t, 180.0, lines[1].UnitPrice)
	assert.True(t, line.CustomPrice)
}

func TestAddMissingTier(t *testing.T) {
	c, _ := newTestCart(0)

	_, err := c.AddWithTier(2, domain.TierWholesale)
	assert.True(t, errors.Is(err, domain.ErrInvalidPrice))
	assert.Empty(t, c.Lines())
}

func TestAddRespectsStock(t *testing.T) {
	c, _ := newTestCart(0)

	_, err := c.AddWithPrice(2, 50)
	require.NoError(t, err)
	_, err = c.AddWithPrice(2, 50)
	require.NoError(t, err)
	_, err = c.AddWithPrice(2, 50)
	assert.True(t, errors.Is(err, domain.ErrInsufficientStock))

	lines := c.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, 2.0, lines[0].Quantity)
}

func TestAddNegativePrice(t *testing.T) {
	c, _ := newTestCart(0)

	_, err := c.AddWithPrice(1, -1)
	assert.True(t, errors.Is(err, domain.ErrInvalidPrice))
}

func TestStepContinuousAndDiscrete(t *testing.T) {
	c, _ := newTestCart(0)

	_, err := c.AddWithPrice(1, 200)
	require.NoError(t, err)
	_, err = c.AddWithPrice(2, 50)
	require.NoError(t, err)

	require.NoError(t, c.Step(0, 1))
	require.NoError(t, c.Step(1, 1))

	lines := c.Lines()
	assert.Equal(t, 1.1, lines[0].Quantity)
	assert.Equal(t, 2.0, lines[1].Quantity)

	err = c.Step(1, 1)
	assert.True(t, errors.Is(err, domain.ErrInsufficientStock))
	assert.Equal(t, 2.0, c.Lines()[1].Quantity)
}

func TestStepDownRemovesLine(t *testing.T) {
	c, _ := newTestCart(0)

	_, err := c.AddWithPrice(2, 50)
	require.NoError(t, err)

	require.NoError(t, c.Step(0, -1))
	assert.Empty(t, c.Lines())
}

func TestStepDownAccumulatesWithoutDrift(t *testing.T) {
	c, _ := newTestCart(0)

	_, err := c.AddWithPrice(4, 220)
	require.NoError(t, err)

	for i := 0; i < 9; i++ {
		require.NoError(t, c.Step(0, -1))
	}
	lines := c.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, 0.1, lines[0].Quantity)

	require.NoError(t, c.Step(0, -1))
	assert.Empty(t, c.Lines())
}

func TestStepInvalid(t *testing.T) {
	c, _ := newTestCart(0)

	assert.True(t, errors.Is(c.Step(0, 1), domain.ErrLineNotFound))

	_, err := c.AddWithPrice(1, 200)
	require.NoError(t, err)
	assert.True(t, errors.Is(c.Step(0, 0), domain.ErrInvalidQuantity))
}

func TestSetQuantity(t *testing.T) {
	c, _ := newTestCart(0)

	_, err := c.AddWithPrice(1, 200)
	require.NoError(t, err)

	line, err := c.SetQuantity(0, "500 gm")
	require.NoError(t, err)
	assert.Equal(t, 0.5, line.Quantity)

	line, err = c.SetQuantity(0, "2.5")
	require.NoError(t, err)
	assert.Equal(t, 2.5, line.Quantity)

	_, err = c.SetQuantity(0, "abc")
	assert.True(t, errors.Is(err, domain.ErrInvalidQuantity))
	assert.Equal(t, 2.5, c.Lines()[0].Quantity)

	_, err = c.SetQuantity(3, "1")
	assert.True(t, errors.Is(err, domain.ErrLineNotFound))
}

func TestSetQuantityRespectsStock(t *testing.T) {
	c, _ := newTestCart(0)

	_, err := c.AddWithPrice(2, 50)
	require.NoError(t, err)

	_, err = c.SetQuantity(0, "5")
	assert.True(t, errors.Is(err, domain.ErrInsufficientStock))

	line, err := c.SetQuantity(0, "2 pcs")
	require.NoError(t, err)
	assert.Equal(t, 2.0, line.Quantity)
}

func TestEditPrice(t *testing.T) {
	c, _ := newTestCart(0)

	_, err := c.AddWithPrice(1, 200)
	require.NoError(t, err)

	line, err := c.EditPrice(0, 210)
	require.NoError(t, err)
	assert.Equal(t, 210.0, line.UnitPrice)
	assert.True(t, line.CustomPrice)

	line, err = c.EditPrice(0, 200)
	require.NoError(t, err)
	assert.False(t, line.CustomPrice)

	_, err = c.EditPrice(0, -5)
	assert.True(t, errors.Is(err, domain.ErrInvalidPrice))
}

func TestEditPriceDoesNotMerge(t *testing.T) {
	c, _ := newTestCart(0)

	_, err := c.AddWithPrice(1, 200)
	require.NoError(t, err)
	_, err = c.AddWithPrice(1, 180)
	require.NoError(t, err)

	_, err = c.EditPrice(1, 200)
	require.NoError(t, err)
	assert.Len(t, c.Lines(), 2)
}

func TestRemoveAndClear(t *testing.T) {
	c, _ := newTestCart(0)

	_, err := c.AddWithPrice(1, 200)
	require.NoError(t, err)
	_, err = c.AddWithPrice(4, 220)
	require.NoError(t, err)

	require.NoError(t, c.Remove(0))
	lines := c.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, "Milk", lines[0].Name)

	assert.True(t, errors.Is(c.Remove(5), domain.ErrLineNotFound))

	c.Clear()
	assert.Empty(t, c.Lines())
}

func TestTotalsWithTax(t *testing.T) {
	c, _ := newTestCart(0.1)

	_, err := c.AddWithPrice(1, 200)
	require.NoError(t, err)
	_, err = c.SetQuantity(0, "1.5")
	require.NoError(t, err)
	_, err = c.AddWithPrice(4, 220)
	require.NoError(t, err)

	totals := c.Totals()
	assert.InDelta(t, 520.0, totals.Subtotal, 1e-9)
	assert.InDelta(t, 52.0, totals.Tax, 1e-9)
	assert.InDelta(t, 572.0, totals.Total, 1e-9)
}

func TestCheckoutClearsCart(t *testing.T) {
	c, receipts := newTestCart(0)

	_, err := c.BuildReceipt("en")
	assert.True(t, errors.Is(err, domain.ErrEmptyCart))
	assert.Equal(t, 0, receipts.calls)

	_, err = c.AddWithPrice(1, 200)
	require.NoError(t, err)

	preview, err := c.BuildReceipt("ur")
	require.NoError(t, err)
	assert.Equal(t, "ur", preview.Language)
	assert.Len(t, c.Lines(), 1)

	receipt, err := c.Checkout("en")
	require.NoError(t, err)
	assert.Equal(t, 200.0, receipt.Total)
	assert.Empty(t, c.Lines())

	_, err = c.Checkout("en")
	assert.True(t, errors.Is(err, domain.ErrEmptyCart))
}
