package service

import (
	"context"

	"delicioso/internal/model"

	"github.com/jackc/pgx/v5"
)

// OrderService defines operations on the order ledger.
type OrderService interface {
	// Submit validates a cart, then atomically records the order, its line
	// items and every packaging consumption the cart references.
	Submit(ctx context.Context, req *model.OrderRequest) (*model.OrderConfirmation, error)

	// List returns the orders placed in rng, most recent first.
	List(ctx context.Context, rng model.DateRange) ([]model.Order, error)

	// GetByID retrieves an order with its line items.
	GetByID(ctx context.Context, id int64) (*model.Order, error)
}

// StockService defines operations on the packaging stock ledger.
type StockService interface {
	// Restock adds quantity units to the entry called name, creating it if absent.
	Restock(ctx context.Context, name string, quantity int) (*model.StockLevel, error)

	// Adjust overwrites the quantity of an existing entry.
	Adjust(ctx context.Context, entryID int64, quantity int) (*model.StockLevel, error)

	// List returns every stock entry.
	List(ctx context.Context) ([]model.StockEntry, error)

	// Consume decrements an entry within tx, clamping at zero.
	Consume(ctx context.Context, tx pgx.Tx, entryID int64, quantity int) (model.Consumption, error)

	// ConsumeLines consumes the packaging referenced by items within tx, in line
	// order. Referenced entries are locked in ascending id order first.
	ConsumeLines(ctx context.Context, tx pgx.Tx, items []model.OrderItem) ([]model.Consumption, error)
}

// DashboardService defines the read-only aggregations over the order ledger.
type DashboardService interface {
	// Summarize computes revenue, receivables and shipping buckets for rng
	// from one consistent snapshot.
	Summarize(ctx context.Context, rng model.DateRange) (*model.Summary, error)
}

// AdminService defines administrative operations.
type AdminService interface {
	// ResetAll empties the order and stock ledgers.
	ResetAll(ctx context.Context) error
}
