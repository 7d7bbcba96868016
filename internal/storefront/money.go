package storefront

import (
	"fmt"

	"github.com/shopspring/decimal"
)

const priceScale = 2

// maxOrderTotal is the largest value orders.total_amount NUMERIC(16,2) holds.
var maxOrderTotal = decimal.RequireFromString("99999999999999.99")

// maxPrice matches products.price NUMERIC(14,2).
var maxPrice = decimal.RequireFromString("999999999999.99")

func normalizePrice(s string) (string, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return "", fmt.Errorf("%w %q: %v", ErrInvalidPrice, s, err)
	}
	if d.IsNegative() {
		return "", fmt.Errorf("%w %q: negative", ErrInvalidPrice, s)
	}
	if d.Round(priceScale).GreaterThan(maxPrice) {
		return "", fmt.Errorf("%w %q: too large", ErrInvalidPrice, s)
	}
	return d.StringFixed(priceScale), nil
}

type pricedLine struct {
	ProductID string
	Quantity  int
	UnitPrice decimal.Decimal
}

// priceCheckout resolves every line against lookup and sums unit price times
// quantity. It fails before any side effect if a product is missing.
func priceCheckout(lines []CheckoutLine, lookup func(id string) (Product, bool, error)) ([]pricedLine, decimal.Decimal, error) {
	if len(lines) == 0 {
		return nil, decimal.Zero, ErrEmptyCheckout
	}

	out := make([]pricedLine, 0, len(lines))
	total := decimal.Zero

	for _, l := range lines {
		p, ok, err := lookup(l.ProductID)
		if err != nil {
			return nil, decimal.Zero, err
		}
		if !ok {
			return nil, decimal.Zero, fmt.Errorf("%w: %s", ErrUnknownProduct, l.ProductID)
		}

		unit, err := decimal.NewFromString(p.Price)
		if err != nil {
			return nil, decimal.Zero, fmt.Errorf("product %s: %w", p.ID, ErrInvalidPrice)
		}

		if l.Quantity < 1 || l.Quantity > MaxQuantity {
			return nil, decimal.Zero, fmt.Errorf("%w: %d", ErrQuantityOutOfRange, l.Quantity)
		}

		out = append(out, pricedLine{ProductID: l.ProductID, Quantity: l.Quantity, UnitPrice: unit})
		total = total.Add(unit.Mul(decimal.NewFromInt(int64(l.Quantity))))
		if total.GreaterThan(maxOrderTotal) {
			return nil, decimal.Zero, fmt.Errorf("%w: exceeds %s", ErrTotalOverflow, maxOrderTotal.StringFixed(priceScale))
		}
	}

	return out, total, nil
}

func formatMoney(d decimal.Decimal) string {
	return d.StringFixed(priceScale)
}
