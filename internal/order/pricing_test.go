package order

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plsp-store/backend/internal/catalog"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func strPtr(s string) *string { return &s }

func testProducts() []catalog.Product {
	return []catalog.Product{
		{
			ID:        "prod-a",
			Name:      "PLSP Hoodie",
			BasePrice: dec("100.00"),
			Variants: []catalog.Variant{
				{ID: "var-a1", ProductID: "prod-a", Name: "Large", SKU: "HOOD-L", Price: decPtr("120.00")},
				{ID: "var-a2", ProductID: "prod-a", Name: "Small", SKU: "HOOD-S", Price: nil},
			},
		},
		{
			ID:        "prod-b",
			Name:      "Notebook",
			BasePrice: dec("60.00"),
			Variants: []catalog.Variant{
				{ID: "var-b1", ProductID: "prod-b", Name: "Ruled", SKU: "NB-R", Price: decPtr("50.00")},
			},
		},
	}
}

func TestPriceCartTotals(t *testing.T) {
	// cart = 2 x prod-a at base 100.00 + 1 x prod-b variant at 50.00 => 250.00
	items, total, err := PriceCart([]CartEntry{
		{ProductID: "prod-a", Quantity: 2},
		{ProductID: "prod-b", VariantID: strPtr("var-b1"), Quantity: 1},
	}, testProducts())
	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.True(t, items[0].UnitPrice.Equal(dec("100.00")), "unit price %s", items[0].UnitPrice)
	assert.True(t, items[0].LineTotal.Equal(dec("200.00")), "line total %s", items[0].LineTotal)
	assert.True(t, items[1].UnitPrice.Equal(dec("50.00")), "unit price %s", items[1].UnitPrice)
	assert.True(t, total.Equal(dec("250.00")), "total %s", total)

	// total must always equal the sum of line totals
	sum := decimal.Zero
	for _, it := range items {
		sum = sum.Add(it.LineTotal)
	}
	assert.True(t, total.Equal(sum))
}

func TestPriceCartVariantOverride(t *testing.T) {
	items, total, err := PriceCart([]CartEntry{
		{ProductID: "prod-a", VariantID: strPtr("var-a1"), Quantity: 3},
	}, testProducts())
	require.NoError(t, err)
	require.Len(t, items, 1)

	assert.True(t, items[0].UnitPrice.Equal(dec("120.00")))
	assert.True(t, total.Equal(dec("360.00")))
	require.NotNil(t, items[0].VariantID)
	assert.Equal(t, "var-a1", *items[0].VariantID)
	require.NotNil(t, items[0].VariantName)
	assert.Equal(t, "Large", *items[0].VariantName)
}

func TestPriceCartNullVariantPriceFallsBack(t *testing.T) {
	// var-a2 exists but has no override price: base price applies, the
	// variant reference is still recorded.
	items, _, err := PriceCart([]CartEntry{
		{ProductID: "prod-a", VariantID: strPtr("var-a2"), Quantity: 1},
	}, testProducts())
	require.NoError(t, err)

	assert.True(t, items[0].UnitPrice.Equal(dec("100.00")))
	require.NotNil(t, items[0].VariantID)
	assert.Equal(t, "var-a2", *items[0].VariantID)
}

func TestPriceCartForeignVariantTreatedAsAbsent(t *testing.T) {
	// var-b1 belongs to prod-b, not prod-a: not an error, base price applies
	// and no variant is recorded on the item.
	items, total, err := PriceCart([]CartEntry{
		{ProductID: "prod-a", VariantID: strPtr("var-b1"), Quantity: 2},
	}, testProducts())
	require.NoError(t, err)

	assert.True(t, items[0].UnitPrice.Equal(dec("100.00")))
	assert.True(t, total.Equal(dec("200.00")))
	assert.Nil(t, items[0].VariantID)
}

func TestPriceCartValidation(t *testing.T) {
	tests := []struct {
		name    string
		entries []CartEntry
		wantErr error
	}{
		{"empty cart", nil, ErrEmptyCart},
		{"zero quantity", []CartEntry{{ProductID: "prod-a", Quantity: 0}}, ErrInvalidQuantity},
		{"negative quantity", []CartEntry{{ProductID: "prod-a", Quantity: -1}}, ErrInvalidQuantity},
		{"unknown product", []CartEntry{{ProductID: "prod-x", Quantity: 1}}, ErrUnknownProduct},
		{
			"one unknown product fails the whole cart",
			[]CartEntry{{ProductID: "prod-a", Quantity: 1}, {ProductID: "prod-x", Quantity: 1}},
			ErrUnknownProduct,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := PriceCart(tt.entries, testProducts())
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestPriceCartCentPrecision(t *testing.T) {
	// 0.10 * 3 must be exactly 0.30, not a float approximation.
	products := []catalog.Product{{ID: "p", Name: "Ballpen", BasePrice: dec("0.10")}}
	_, total, err := PriceCart([]CartEntry{{ProductID: "p", Quantity: 3}}, products)
	require.NoError(t, err)
	assert.Equal(t, "0.30", total.StringFixed(2))
}

func TestInitialPaymentStatus(t *testing.T) {
	assert.Equal(t, "PENDING", InitialPaymentStatus(PaymentOnline))
	assert.Equal(t, "UNPAID", InitialPaymentStatus(PaymentCashOnPickup))
}

func TestStatusValid(t *testing.T) {
	for _, s := range []Status{StatusPendingPayment, StatusPaid, StatusProcessing,
		StatusReadyForPickup, StatusCompleted, StatusCancelled} {
		assert.True(t, s.Valid(), "status %s", s)
	}
	assert.False(t, Status("SHIPPED").Valid())
	assert.False(t, Status("").Valid())
}
