package model

import "github.com/shopspring/decimal"

// Summary is the dashboard report over a date range.
type Summary struct {
	TotalRevenue               decimal.Decimal            `json:"totalRevenue"`
	OutstandingTotal           decimal.Decimal            `json:"outstandingTotal"`
	ShippingAboveThreshold     decimal.Decimal            `json:"shippingAboveThreshold"`
	CountAboveThreshold        int64                      `json:"countAboveThreshold"`
	ShippingAtOrBelowThreshold decimal.Decimal            `json:"shippingAtOrBelowThreshold"`
	CountAtOrBelowThreshold    int64                      `json:"countAtOrBelowThreshold"`
	RevenueByPaymentMethod     map[string]decimal.Decimal `json:"revenueByPaymentMethod"`
	Debtors                    []Debtor                   `json:"debtors"`
}

// Debtor is an order paid with the owed payment method.
type Debtor struct {
	OrderID      int64           `json:"orderId"`
	CustomerName string          `json:"customerName"`
	Amount       decimal.Decimal `json:"amount"`
}

// OrderFilter selects orders for aggregation. Nil fields do not filter.
type OrderFilter struct {
	Range             DateRange
	PaymentMethod     *string
	ShippingAbove     *decimal.Decimal
	ShippingAtOrBelow *decimal.Decimal
}

// Aggregate holds sums over the orders matching an OrderFilter.
type Aggregate struct {
	Total    decimal.Decimal
	Shipping decimal.Decimal
	Count    int64
}
