package repository

import (
	"context"
	"errors"
	"fmt"

	"delicioso/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// ErrQuantityOverflow is returned when a restock would push an entry past the
// INTEGER range of the quantity column.
var ErrQuantityOverflow = errors.New("stock quantity out of range")

// stockRepository implements the StockRepository interface using PostgreSQL.
type stockRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewStockRepository creates a new PostgreSQL-backed packaging stock repository.
func NewStockRepository(pool *pgxpool.Pool, logger zerolog.Logger) StockRepository {
	return &stockRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "stock").Logger(),
	}
}

// Restock adds delta units to the entry called name, creating it if absent.
// The upsert runs as one statement, so concurrent restocks of the same name add up.
// A sum above the INTEGER range leaves the entry unchanged and returns ErrQuantityOverflow.
func (r *stockRepository) Restock(ctx context.Context, name string, delta int) (*model.StockEntry, error) {
	query := `
		INSERT INTO packaging_stock (name, quantity)
		VALUES ($1, $2)
		ON CONFLICT (name) DO UPDATE
		SET quantity = packaging_stock.quantity + EXCLUDED.quantity,
		    updated_at = date_trunc('second', now())
		WHERE packaging_stock.quantity::bigint + EXCLUDED.quantity <= 2147483647
		RETURNING id, name, quantity
	`

	var e model.StockEntry
	err := r.pool.QueryRow(ctx, query, name, delta).Scan(&e.ID, &e.Name, &e.Quantity)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Warn().Str("name", name).Int("delta", delta).Msg("restock exceeds stock quantity range")
			return nil, ErrQuantityOverflow
		}
		r.logger.Error().Err(err).Str("name", name).Int("delta", delta).Msg("failed to restock")
		return nil, fmt.Errorf("failed to restock %q: %w", name, err)
	}

	r.logger.Debug().
		Int64("entry_id", e.ID).
		Str("name", e.Name).
		Int("quantity", e.Quantity).
		Msg("stock entry restocked")

	return &e, nil
}

// LockByID reads an entry with SELECT ... FOR UPDATE inside tx.
func (r *stockRepository) LockByID(ctx context.Context, tx pgx.Tx, id int64) (*model.StockEntry, error) {
	query := `
		SELECT id, name, quantity
		FROM packaging_stock
		WHERE id = $1
		FOR UPDATE
	`

	var e model.StockEntry
	err := tx.QueryRow(ctx, query, id).Scan(&e.ID, &e.Name, &e.Quantity)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Int64("entry_id", id).Msg("stock entry not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Int64("entry_id", id).Msg("failed to lock stock entry")
		return nil, fmt.Errorf("failed to lock stock entry: %w", err)
	}

	return &e, nil
}

// SetQuantity overwrites the quantity of a locked entry within tx.
func (r *stockRepository) SetQuantity(ctx context.Context, tx pgx.Tx, id int64, quantity int) error {
	query := `
		UPDATE packaging_stock
		SET quantity = $2, updated_at = date_trunc('second', now())
		WHERE id = $1
	`

	tag, err := tx.Exec(ctx, query, id, quantity)
	if err != nil {
		r.logger.Error().Err(err).Int64("entry_id", id).Int("quantity", quantity).Msg("failed to update stock quantity")
		return fmt.Errorf("failed to update stock quantity: %w", err)
	}

	if tag.RowsAffected() != 1 {
		return fmt.Errorf("failed to update stock quantity: entry %d vanished", id)
	}

	return nil
}

// Adjust overwrites the quantity of an entry.
func (r *stockRepository) Adjust(ctx context.Context, id int64, quantity int) (*model.StockEntry, error) {
	query := `
		UPDATE packaging_stock
		SET quantity = $2, updated_at = date_trunc('second', now())
		WHERE id = $1
		RETURNING id, name, quantity
	`

	var e model.StockEntry
	err := r.pool.QueryRow(ctx, query, id, quantity).Scan(&e.ID, &e.Name, &e.Quantity)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Int64("entry_id", id).Msg("stock entry not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Int64("entry_id", id).Msg("failed to adjust stock entry")
		return nil, fmt.Errorf("failed to adjust stock entry: %w", err)
	}

	return &e, nil
}

// List returns every entry ordered by name.
func (r *stockRepository) List(ctx context.Context) ([]model.StockEntry, error) {
	query := `
		SELECT id, name, quantity
		FROM packaging_stock
		ORDER BY name COLLATE "C"
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query stock entries")
		return nil, fmt.Errorf("failed to query stock entries: %w", err)
	}
	defer rows.Close()

	entries := []model.StockEntry{}
	for rows.Next() {
		var e model.StockEntry
		if err := rows.Scan(&e.ID, &e.Name, &e.Quantity); err != nil {
			r.logger.Error().Err(err).Msg("failed to scan stock entry row")
			return nil, fmt.Errorf("failed to scan stock entry: %w", err)
		}
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating stock entry rows")
		return nil, fmt.Errorf("error iterating stock entries: %w", err)
	}

	return entries, nil
}
