package order

import (
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPendingPayment Status = "PENDING_PAYMENT"
	StatusPaid           Status = "PAID"
	StatusProcessing     Status = "PROCESSING"
	StatusReadyForPickup Status = "READY_FOR_PICKUP"
	StatusCompleted      Status = "COMPLETED"
	StatusCancelled      Status = "CANCELLED"
)

func (s Status) String() string { return string(s) }

func (s Status) Valid() bool {
	switch s {
	case StatusPendingPayment, StatusPaid, StatusProcessing,
		StatusReadyForPickup, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

type PaymentMethod string

const (
	PaymentOnline       PaymentMethod = "ONLINE"
	PaymentCashOnPickup PaymentMethod = "CASH_ON_PICKUP"
)

func (m PaymentMethod) Valid() bool {
	return m == PaymentOnline || m == PaymentCashOnPickup
}

// InitialPaymentStatus is determined solely by the payment method, never by
// caller input.
func InitialPaymentStatus(m PaymentMethod) string {
	if m == PaymentOnline {
		return "PENDING"
	}
	return "UNPAID"
}

// Item carries the unit price snapshot taken at order-creation time. It is
// never recomputed from the catalog afterwards.
type Item struct {
	ID          string          `json:"id"`
	OrderID     string          `json:"orderId"`
	ProductID   string          `json:"productId"`
	VariantID   *string         `json:"variantId"`
	ProductName string          `json:"productName,omitempty"`
	VariantName *string         `json:"variantName,omitempty"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	LineTotal   decimal.Decimal `json:"lineTotal"`
}

// Payment is the optional captured-payment record attached to an order.
// Order creation always leaves it null; capture is a separate flow.
type Payment struct {
	ID        string          `json:"id"`
	OrderID   string          `json:"orderId"`
	Provider  string          `json:"provider"`
	Status    string          `json:"status"`
	Amount    decimal.Decimal `json:"amount"`
	CreatedAt time.Time       `json:"createdAt"`
}

type Order struct {
	ID             string          `json:"id"`
	UserID         string          `json:"userId"`
	Status         Status          `json:"status"`
	PaymentMethod  PaymentMethod   `json:"paymentMethod"`
	PaymentStatus  string          `json:"paymentStatus"`
	TotalAmount    decimal.Decimal `json:"totalAmount"`
	PickupLocation *string         `json:"pickupLocation"`
	PickupSchedule *time.Time      `json:"pickupSchedule"`
	CustomerName   string          `json:"customerName,omitempty"`
	CustomerEmail  string          `json:"customerEmail,omitempty"`
	Items          []Item          `json:"items"`
	Payment        *Payment        `json:"payment"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
}
