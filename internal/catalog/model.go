// Package catalog holds the product catalog read by the order workflow:
// categories, products and their variants. Rows are soft-deleted via the
// is_active flag so historical orders keep valid references.
package catalog

import (
	"time"

	"github.com/shopspring/decimal"
)

type Category struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	IsActive    bool      `json:"isActive"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type Product struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	BasePrice   decimal.Decimal `json:"basePrice"`
	IsActive    bool            `json:"isActive"`
	CategoryID  string          `json:"categoryId"`
	Category    *Category       `json:"category,omitempty"`
	Variants    []Variant       `json:"variants"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// Variant is a purchasable variation of a product (size, color). A nil
// Price means the parent product's base price applies. Stock is
// informational only; order creation does not decrement it.
type Variant struct {
	ID        string           `json:"id"`
	ProductID string           `json:"productId"`
	Name      string           `json:"name"`
	SKU       string           `json:"sku"`
	Price     *decimal.Decimal `json:"price"`
	Stock     int              `json:"stock"`
	CreatedAt time.Time        `json:"createdAt"`
	UpdatedAt time.Time        `json:"updatedAt"`
}

// EffectivePrice resolves the unit price for this variant, falling back to
// the parent product's base price when no override is set.
func (v *Variant) EffectivePrice(base decimal.Decimal) decimal.Decimal {
	if v != nil && v.Price != nil {
		return *v.Price
	}
	return base
}
