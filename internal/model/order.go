package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Order is a committed checkout. Rows are append-only.
type Order struct {
	ID            int64           `json:"id"`
	CustomerName  string          `json:"customerName"`
	Address       string          `json:"address"`
	PaymentMethod string          `json:"paymentMethod"`
	ShippingFee   decimal.Decimal `json:"shippingFee"`
	Total         decimal.Decimal `json:"total"`
	CreatedAt     time.Time       `json:"createdAt"`
	Description   string          `json:"description"`
	Items         []OrderItem     `json:"items,omitempty"`
}

// OrderItem represents a line item in an order.
// ProductName is a copy taken at submission time, not a catalogue reference.
type OrderItem struct {
	OrderID     int64           `json:"-"`
	LineNo      int             `json:"-"`
	ProductName string          `json:"productName"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	Subtotal    decimal.Decimal `json:"subtotal"`
	PackagingID *int64          `json:"packagingId,omitempty"`
}

// Describe renders "{quantity}x {productName}" for each item, comma separated,
// in line order.
func Describe(items []OrderItem) string {
	parts := make([]string, len(items))
	for i, item := range items {
		parts[i] = fmt.Sprintf("%dx %s", item.Quantity, item.ProductName)
	}
	return strings.Join(parts, ", ")
}

// MaxAmount is the exclusive upper bound of a stored money amount: ten integer
// digits at two decimal places.
var MaxAmount = decimal.New(1, 10)

// AmountInRange reports whether amount fits a stored money column once rounded to cents.
func AmountInRange(amount decimal.Decimal) bool {
	return amount.Round(2).LessThan(MaxAmount)
}

// SumSubtotals adds up the subtotals of items.
func SumSubtotals(items []OrderItem) decimal.Decimal {
	sum := decimal.Zero
	for _, item := range items {
		sum = sum.Add(item.Subtotal)
	}
	return sum
}

// OrderRequest represents the request payload for submitting an order.
type OrderRequest struct {
	Customer CustomerRequest   `json:"customer"`
	Cart     []CartLineRequest `json:"cart"`
}

// CustomerRequest carries the customer and delivery fields of a submission.
type CustomerRequest struct {
	Name          string          `json:"name"`
	Address       string          `json:"address"`
	PaymentMethod string          `json:"paymentMethod"`
	ShippingFee   json.RawMessage `json:"shippingFee,omitempty"`
}

// ShippingFeeOrZero parses the shipping fee leniently. Absent, null, malformed
// or negative values yield zero. Both JSON numbers and numeric strings are accepted.
func (c CustomerRequest) ShippingFeeOrZero() decimal.Decimal {
	raw := bytes.TrimSpace(c.ShippingFee)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return decimal.Zero
	}

	text := string(raw)
	if raw[0] == '"' {
		if err := json.Unmarshal(raw, &text); err != nil {
			return decimal.Zero
		}
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return decimal.Zero
	}

	fee, err := decimal.NewFromString(text)
	if err != nil || fee.IsNegative() {
		return decimal.Zero
	}
	return fee
}

// CartLineRequest represents a single line of a submitted cart.
// UnitPrice and Subtotal are taken as submitted; the catalogue is not consulted.
type CartLineRequest struct {
	ProductName string           `json:"productName"`
	Quantity    int              `json:"quantity"`
	UnitPrice   decimal.Decimal  `json:"unitPrice"`
	Subtotal    *decimal.Decimal `json:"subtotal,omitempty"`
	PackagingID *int64           `json:"packagingId,omitempty"`
}

// OrderConfirmation is returned after a successful submission.
type OrderConfirmation struct {
	OrderID  int64           `json:"orderId"`
	Total    decimal.Decimal `json:"total"`
	Warnings []string        `json:"warnings"`
}

// OrderCreatedEvent is published after an order commits.
type OrderCreatedEvent struct {
	Event         string          `json:"event"`
	OrderID       int64           `json:"order_id"`
	PaymentMethod string          `json:"payment_method"`
	ShippingFee   decimal.Decimal `json:"shipping_fee"`
	Total         decimal.Decimal `json:"total"`
	CreatedAt     time.Time       `json:"created_at"`
}
