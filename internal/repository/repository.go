package repository

import (
	"context"

	"delicioso/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// OrderRepository defines the data access operations of the order ledger.
// Orders and line items are append-only.
type OrderRepository interface {
	// BeginTx starts a new read-write database transaction.
	BeginTx(ctx context.Context) (pgx.Tx, error)

	// BeginSnapshot starts a read-only repeatable-read transaction so that several
	// reads observe one consistent state of the ledger.
	BeginSnapshot(ctx context.Context) (pgx.Tx, error)

	// Append inserts an order and its line items within the provided transaction.
	// It sets order.ID and order.CreatedAt from the stored row.
	Append(ctx context.Context, tx pgx.Tx, order *model.Order, items []model.OrderItem) error

	// List returns the orders in range, most recent first, with their line items
	// and descriptions.
	List(ctx context.Context, tx pgx.Tx, rng model.DateRange) ([]model.Order, error)

	// GetByID retrieves an order by its ID along with its items.
	// It returns nil without error when the order does not exist.
	GetByID(ctx context.Context, id int64) (*model.Order, error)

	// SumBy aggregates total, shipping fee and count over the orders matching filter.
	SumBy(ctx context.Context, tx pgx.Tx, filter model.OrderFilter) (model.Aggregate, error)

	// RevenueByPaymentMethod sums order totals per payment method in range.
	RevenueByPaymentMethod(ctx context.Context, tx pgx.Tx, rng model.DateRange) (map[string]decimal.Decimal, error)

	// Debtors lists orders paid with paymentMethod in range, most recent first.
	Debtors(ctx context.Context, tx pgx.Tx, rng model.DateRange, paymentMethod string) ([]model.Debtor, error)
}

// StockRepository defines the data access operations of the packaging stock ledger.
type StockRepository interface {
	// Restock adds delta units to the entry called name, creating it if absent.
	Restock(ctx context.Context, name string, delta int) (*model.StockEntry, error)

	// LockByID reads an entry and locks its row until tx ends.
	// It returns nil without error when the entry does not exist.
	LockByID(ctx context.Context, tx pgx.Tx, id int64) (*model.StockEntry, error)

	// SetQuantity overwrites the quantity of a locked entry within tx.
	SetQuantity(ctx context.Context, tx pgx.Tx, id int64, quantity int) error

	// Adjust overwrites the quantity of an entry outside any order transaction.
	// It returns nil without error when the entry does not exist.
	Adjust(ctx context.Context, id int64, quantity int) (*model.StockEntry, error)

	// List returns every entry ordered by name.
	List(ctx context.Context) ([]model.StockEntry, error)
}

// AdminRepository defines administrative operations over all ledgers.
type AdminRepository interface {
	// ResetAll removes every order, line item and stock entry in one statement.
	ResetAll(ctx context.Context) error
}
