// Package order implements order pricing, creation, querying and status
// transitions for the school store.
package order

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/plsp-store/backend/internal/catalog"
)

var (
	ErrEmptyCart            = errors.New("order items are required")
	ErrInvalidPaymentMethod = errors.New("invalid payment method")
	ErrInvalidQuantity      = errors.New("quantity must be a positive integer")
	ErrUnknownProduct       = errors.New("one or more products not found")
)

// CartEntry is one requested line of a new order.
type CartEntry struct {
	ProductID string  `json:"productId"`
	VariantID *string `json:"variantId"`
	Quantity  int     `json:"quantity"`
}

// PriceCart resolves the authoritative unit price for every cart entry from
// the given catalog products and returns the priced items together with the
// order total. Validation happens here, before anything is persisted:
// the cart must be non-empty, every quantity positive, and every product id
// must resolve. A variant id that does not belong to the named product is
// treated as absent and the base price applies.
//
// All arithmetic is exact decimal; the caller persists the results as-is.
func PriceCart(entries []CartEntry, products []catalog.Product) ([]Item, decimal.Decimal, error) {
	if len(entries) == 0 {
		return nil, decimal.Zero, ErrEmptyCart
	}

	byID := make(map[string]*catalog.Product, len(products))
	for i := range products {
		byID[products[i].ID] = &products[i]
	}

	items := make([]Item, 0, len(entries))
	total := decimal.Zero

	for _, e := range entries {
		if e.Quantity <= 0 {
			return nil, decimal.Zero, fmt.Errorf("%w: product %s", ErrInvalidQuantity, e.ProductID)
		}
		p, ok := byID[e.ProductID]
		if !ok {
			return nil, decimal.Zero, ErrUnknownProduct
		}

		var variant *catalog.Variant
		if e.VariantID != nil {
			for i := range p.Variants {
				if p.Variants[i].ID == *e.VariantID {
					variant = &p.Variants[i]
					break
				}
			}
		}

		unitPrice := variant.EffectivePrice(p.BasePrice)
		lineTotal := unitPrice.Mul(decimal.NewFromInt(int64(e.Quantity)))
		total = total.Add(lineTotal)

		item := Item{
			ProductID:   p.ID,
			ProductName: p.Name,
			Quantity:    e.Quantity,
			UnitPrice:   unitPrice,
			LineTotal:   lineTotal,
		}
		if variant != nil {
			item.VariantID = &variant.ID
			item.VariantName = &variant.Name
		}
		items = append(items, item)
	}

	return items, total, nil
}
