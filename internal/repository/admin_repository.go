package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

type adminRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewAdminRepository creates a new PostgreSQL-backed admin repository.
func NewAdminRepository(pool *pgxpool.Pool, logger zerolog.Logger) AdminRepository {
	return &adminRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "admin").Logger(),
	}
}

// ResetAll truncates the three ledgers together. Identity sequences are kept,
// so order ids stay unique across resets.
func (r *adminRepository) ResetAll(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, `TRUNCATE order_line_items, orders, packaging_stock`); err != nil {
		r.logger.Error().Err(err).Msg("failed to reset ledgers")
		return fmt.Errorf("failed to reset ledgers: %w", err)
	}

	r.logger.Warn().Msg("all ledgers reset")
	return nil
}
