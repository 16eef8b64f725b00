package models

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string
type PaymentStatus string

const (
	// Order statuses
	OrderStatusReceived   OrderStatus = "received"   // Order placed, not yet picked up by the workshop
	OrderStatusProcessing OrderStatus = "processing" // Being produced / embroidered
	OrderStatusShipped    OrderStatus = "shipped"    // Handed to the carrier
	OrderStatusDelivered  OrderStatus = "delivered"  // Customer received the parcel
	OrderStatusCancelled  OrderStatus = "cancelled"  // Cancelled before shipping

	// Payment statuses
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusFailed   PaymentStatus = "failed"
	PaymentStatusRefunded PaymentStatus = "refunded"
)

var ErrInvalidTransition = errors.New("invalid status transition")

var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusReceived:   {OrderStatusProcessing, OrderStatusCancelled},
	OrderStatusProcessing: {OrderStatusShipped, OrderStatusCancelled},
	OrderStatusShipped:    {OrderStatusDelivered},
}

var paymentTransitions = map[PaymentStatus][]PaymentStatus{
	PaymentStatusPending: {PaymentStatusPaid, PaymentStatusFailed},
	PaymentStatusFailed:  {PaymentStatusPaid},
	PaymentStatusPaid:    {PaymentStatusRefunded},
}

// ParseOrderStatus maps user input to a known OrderStatus.
func ParseOrderStatus(s string) (OrderStatus, error) {
	switch st := OrderStatus(strings.ToLower(strings.TrimSpace(s))); st {
	case OrderStatusReceived, OrderStatusProcessing, OrderStatusShipped,
		OrderStatusDelivered, OrderStatusCancelled:
		return st, nil
	}
	return "", fmt.Errorf("invalid order status %q", s)
}

// ParsePaymentStatus maps user input to a known PaymentStatus.
func ParsePaymentStatus(s string) (PaymentStatus, error) {
	switch st := PaymentStatus(strings.ToLower(strings.TrimSpace(s))); st {
	case PaymentStatusPending, PaymentStatusPaid, PaymentStatusFailed, PaymentStatusRefunded:
		return st, nil
	}
	return "", fmt.Errorf("invalid payment status %q", s)
}

func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

func (s PaymentStatus) CanTransitionTo(next PaymentStatus) bool {
	for _, allowed := range paymentTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// ShippingAddress is a snapshot of where the order goes. It is copied into
// the order row and never follows later address book edits.
type ShippingAddress struct {
	FullName   string `json:"fullName" binding:"required"`
	Phone      string `json:"phone" binding:"required"`
	Email      string `json:"email" binding:"required,email"`
	Line1      string `json:"line1" binding:"required"`
	Line2      string `json:"line2"`
	District   string `json:"district"`
	City       string `json:"city" binding:"required"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country" binding:"required"`
}

type Order struct {
	ID              uint            `gorm:"primaryKey" json:"id"`
	OrderRef        string          `gorm:"uniqueIndex;size:64;not null" json:"orderRef"`
	UserID          *string         `gorm:"index" json:"userId"` // nil for guest checkout
	Items           []OrderItem     `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
	TotalPrice      decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"totalPrice"`
	Currency        string          `gorm:"size:3;not null" json:"currency"`
	Status          OrderStatus     `gorm:"type:VARCHAR(20);default:'received'" json:"status"`
	PaymentStatus   PaymentStatus   `gorm:"type:VARCHAR(20);default:'pending'" json:"paymentStatus"`
	PaymentMethod   string          `json:"paymentMethod"` // "card", "bank_transfer"
	PaymentRef      string          `gorm:"index" json:"paymentRef"`
	ShippingAddress ShippingAddress `gorm:"embedded;embeddedPrefix:ship_" json:"shippingAddress"`
	Language        string          `gorm:"size:2;not null" json:"language"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

type OrderItem struct {
	ID                  uint            `gorm:"primaryKey" json:"id"`
	OrderID             uint            `gorm:"index" json:"orderId"`
	ProductID           uint            `json:"productId"` // 0 on the shipping line
	ProductName         string          `json:"productName"`
	UnitPrice           decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"unitPrice"`
	Quantity            int             `json:"quantity"`
	Size                string          `json:"size"`
	Color               string          `json:"color"`
	Embroidery          bool            `json:"embroidery"`
	EmbroiderySurcharge decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"embroiderySurcharge"`
	EmbroideryAsset     string          `json:"embroideryAsset,omitempty"`
	IsShippingLine      bool            `json:"isShippingLine"`
}

// LineTotal is (unit price + embroidery surcharge) * quantity.
func (i OrderItem) LineTotal() decimal.Decimal {
	return i.UnitPrice.Add(i.EmbroiderySurcharge).Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// ItemsSum adds up every line, shipping included.
func (o *Order) ItemsSum() decimal.Decimal {
	sum := decimal.Zero
	for _, item := range o.Items {
		sum = sum.Add(item.LineTotal())
	}
	return sum
}

// ShippingLine returns the synthetic shipping item, if present.
func (o *Order) ShippingLine() *OrderItem {
	for i := range o.Items {
		if o.Items[i].IsShippingLine {
			return &o.Items[i]
		}
	}
	return nil
}

// VerifyTotal enforces that the stored total is exactly the sum of the
// order's items and that exactly one shipping line is present.
func (o *Order) VerifyTotal() error {
	shippingLines := 0
	for _, item := range o.Items {
		if item.IsShippingLine {
			shippingLines++
		}
	}
	if shippingLines != 1 {
		return fmt.Errorf("order %s: expected one shipping line, found %d", o.OrderRef, shippingLines)
	}
	if sum := o.ItemsSum(); !sum.Equal(o.TotalPrice) {
		return fmt.Errorf("order %s: total %s does not match items sum %s", o.OrderRef, o.TotalPrice, sum)
	}
	return nil
}
