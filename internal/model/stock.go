package model

import "math"

// StockEntry is a countable packaging resource.
type StockEntry struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
}

// RestockRequest represents the payload for an additive restock.
type RestockRequest struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
}

// AdjustStockRequest represents the payload for an absolute correction.
type AdjustStockRequest struct {
	EntryID  int64 `json:"entryId"`
	Quantity int   `json:"quantity"`
}

// StockLevel is returned by restock and adjust.
type StockLevel struct {
	EntryID     int64 `json:"entryId"`
	NewQuantity int   `json:"newQuantity"`
}

// ConsumeOutcome tags the result of a stock consumption.
type ConsumeOutcome int

const (
	// ConsumeApplied means the entry existed and its quantity was decremented.
	ConsumeApplied ConsumeOutcome = iota + 1
	// ConsumeSkipped means the referenced entry does not exist; nothing changed.
	ConsumeSkipped
)

func (o ConsumeOutcome) String() string {
	switch o {
	case ConsumeApplied:
		return "applied"
	case ConsumeSkipped:
		return "skipped"
	default:
		return "unknown"
	}
}

// Consumption describes one consume call against the stock ledger.
type Consumption struct {
	Outcome   ConsumeOutcome
	EntryID   int64
	Name      string
	Requested int
	Previous  int
	Remaining int
	Clamped   bool
	Warning   string
	Reason    string
}

// HasWarning reports whether the consumption produced a low-stock warning.
func (c Consumption) HasWarning() bool {
	return c.Warning != ""
}

// MaxQuantity is the largest unit count a line item or stock entry can hold.
const MaxQuantity = math.MaxInt32
