package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

var snapshotTxOptions = pgx.TxOptions{
	IsoLevel:   pgx.RepeatableRead,
	AccessMode: pgx.ReadOnly,
}

// beginTx starts a transaction on pool with opts, logging failures.
func beginTx(ctx context.Context, pool *pgxpool.Pool, opts pgx.TxOptions, logger zerolog.Logger) (pgx.Tx, error) {
	tx, err := pool.BeginTx(ctx, opts)
	if err != nil {
		logger.Error().Err(err).Str("access_mode", string(opts.AccessMode)).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return tx, nil
}

// rangePredicate filters created_at by $1 (inclusive start) and $2 (exclusive end).
// A NULL bound leaves that side open.
const rangePredicate = `($1::timestamptz IS NULL OR created_at >= $1) AND ($2::timestamptz IS NULL OR created_at < $2)`
