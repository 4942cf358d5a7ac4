package repository

import (
	"context"
	"errors"
	"fmt"

	"delicioso/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// orderRepository implements the OrderRepository interface using PostgreSQL.
type orderRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewOrderRepository creates a new PostgreSQL-backed order repository.
func NewOrderRepository(pool *pgxpool.Pool, logger zerolog.Logger) OrderRepository {
	return &orderRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "order").Logger(),
	}
}

// BeginTx starts a new database transaction.
func (r *orderRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	return beginTx(ctx, r.pool, pgx.TxOptions{}, r.logger)
}

// BeginSnapshot starts a read-only repeatable-read transaction.
func (r *orderRepository) BeginSnapshot(ctx context.Context) (pgx.Tx, error) {
	return beginTx(ctx, r.pool, snapshotTxOptions, r.logger)
}

// Append inserts an order and its line items within the provided transaction.
func (r *orderRepository) Append(ctx context.Context, tx pgx.Tx, order *model.Order, items []model.OrderItem) error {
	if len(items) == 0 {
		return fmt.Errorf("order must have at least one line item")
	}

	query := `
		INSERT INTO orders (customer_name, address, payment_method, shipping_fee, total)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`

	err := tx.QueryRow(ctx, query,
		order.CustomerName,
		order.Address,
		order.PaymentMethod,
		order.ShippingFee,
		order.Total,
	).Scan(&order.ID, &order.CreatedAt)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("customer", order.CustomerName).
			Msg("failed to create order")
		return fmt.Errorf("failed to create order: %w", err)
	}

	itemQuery := `
		INSERT INTO order_line_items (order_id, line_no, product_name, quantity, unit_price, subtotal, packaging_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	batch := &pgx.Batch{}
	for i := range items {
		items[i].OrderID = order.ID
		items[i].LineNo = i + 1
		item := items[i]
		batch.Queue(itemQuery,
			item.OrderID,
			item.LineNo,
			item.ProductName,
			item.Quantity,
			item.UnitPrice,
			item.Subtotal,
			item.PackagingID,
		)
	}

	results := tx.SendBatch(ctx, batch)
	for i := range items {
		if _, err := results.Exec(); err != nil {
			results.Close()
			r.logger.Error().
				Err(err).
				Int64("order_id", order.ID).
				Int("line_no", items[i].LineNo).
				Msg("failed to create order line item")
			return fmt.Errorf("failed to create order line item: %w", err)
		}
	}
	if err := results.Close(); err != nil {
		return fmt.Errorf("failed to create order line items: %w", err)
	}

	order.Items = items
	order.Description = model.Describe(items)

	r.logger.Debug().
		Int64("order_id", order.ID).
		Int("item_count", len(items)).
		Msg("order appended")

	return nil
}

// List returns the orders in range, most recent first.
func (r *orderRepository) List(ctx context.Context, tx pgx.Tx, rng model.DateRange) ([]model.Order, error) {
	query := `
		SELECT id, customer_name, address, payment_method, shipping_fee, total, created_at
		FROM orders
		WHERE ` + rangePredicate + `
		ORDER BY id DESC
	`

	rows, err := tx.Query(ctx, query, rng.Start(), rng.End())
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query orders")
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}

	orders, err := pgx.CollectRows(rows, scanOrder)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to scan order rows")
		return nil, fmt.Errorf("failed to scan orders: %w", err)
	}

	if len(orders) == 0 {
		return []model.Order{}, nil
	}

	ids := make([]int64, len(orders))
	for i, o := range orders {
		ids[i] = o.ID
	}

	itemsByOrder, err := r.itemsFor(ctx, tx, ids)
	if err != nil {
		return nil, err
	}

	for i := range orders {
		orders[i].Items = itemsByOrder[orders[i].ID]
		orders[i].Description = model.Describe(orders[i].Items)
	}

	return orders, nil
}

// GetByID retrieves an order by its ID along with its items.
func (r *orderRepository) GetByID(ctx context.Context, id int64) (*model.Order, error) {
	query := `
		SELECT id, customer_name, address, payment_method, shipping_fee, total, created_at
		FROM orders
		WHERE id = $1
	`

	rows, err := r.pool.Query(ctx, query, id)
	if err != nil {
		r.logger.Error().Err(err).Int64("order_id", id).Msg("failed to query order")
		return nil, fmt.Errorf("failed to query order: %w", err)
	}

	order, err := pgx.CollectExactlyOneRow(rows, scanOrder)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Int64("order_id", id).Msg("order not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Int64("order_id", id).Msg("failed to scan order")
		return nil, fmt.Errorf("failed to query order: %w", err)
	}

	itemsByOrder, err := r.itemsFor(ctx, r.pool, []int64{id})
	if err != nil {
		return nil, err
	}

	order.Items = itemsByOrder[id]
	order.Description = model.Describe(order.Items)

	return &order, nil
}

// SumBy aggregates total, shipping fee and count over the orders matching filter.
func (r *orderRepository) SumBy(ctx context.Context, tx pgx.Tx, filter model.OrderFilter) (model.Aggregate, error) {
	query := `
		SELECT COALESCE(SUM(total), 0), COALESCE(SUM(shipping_fee), 0), COUNT(*)
		FROM orders
		WHERE ` + rangePredicate + `
		  AND ($3::text IS NULL OR payment_method = $3)
		  AND ($4::numeric IS NULL OR shipping_fee > $4)
		  AND ($5::numeric IS NULL OR shipping_fee <= $5)
	`

	var agg model.Aggregate
	err := tx.QueryRow(ctx, query,
		filter.Range.Start(),
		filter.Range.End(),
		filter.PaymentMethod,
		filter.ShippingAbove,
		filter.ShippingAtOrBelow,
	).Scan(&agg.Total, &agg.Shipping, &agg.Count)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to aggregate orders")
		return model.Aggregate{}, fmt.Errorf("failed to aggregate orders: %w", err)
	}

	return agg, nil
}

// RevenueByPaymentMethod sums order totals per payment method in range.
func (r *orderRepository) RevenueByPaymentMethod(ctx context.Context, tx pgx.Tx, rng model.DateRange) (map[string]decimal.Decimal, error) {
	query := `
		SELECT payment_method, COALESCE(SUM(total), 0)
		FROM orders
		WHERE ` + rangePredicate + `
		GROUP BY payment_method
	`

	rows, err := tx.Query(ctx, query, rng.Start(), rng.End())
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query revenue by payment method")
		return nil, fmt.Errorf("failed to query revenue by payment method: %w", err)
	}
	defer rows.Close()

	revenue := make(map[string]decimal.Decimal)
	for rows.Next() {
		var method string
		var sum decimal.Decimal
		if err := rows.Scan(&method, &sum); err != nil {
			r.logger.Error().Err(err).Msg("failed to scan revenue row")
			return nil, fmt.Errorf("failed to scan revenue: %w", err)
		}
		revenue[method] = sum
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating revenue rows")
		return nil, fmt.Errorf("error iterating revenue: %w", err)
	}

	return revenue, nil
}

// Debtors lists orders paid with paymentMethod in range, most recent first.
func (r *orderRepository) Debtors(ctx context.Context, tx pgx.Tx, rng model.DateRange, paymentMethod string) ([]model.Debtor, error) {
	query := `
		SELECT id, customer_name, total
		FROM orders
		WHERE ` + rangePredicate + `
		  AND payment_method = $3
		ORDER BY id DESC
	`

	rows, err := tx.Query(ctx, query, rng.Start(), rng.End(), paymentMethod)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query debtors")
		return nil, fmt.Errorf("failed to query debtors: %w", err)
	}

	debtors, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.Debtor, error) {
		var d model.Debtor
		err := row.Scan(&d.OrderID, &d.CustomerName, &d.Amount)
		return d, err
	})
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to scan debtor rows")
		return nil, fmt.Errorf("failed to scan debtors: %w", err)
	}

	return debtors, nil
}

// queryer is the read surface shared by *pgxpool.Pool and pgx.Tx.
type queryer interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// itemsFor loads the line items of ids grouped by order, in line order.
func (r *orderRepository) itemsFor(ctx context.Context, q queryer, ids []int64) (map[int64][]model.OrderItem, error) {
	query := `
		SELECT order_id, line_no, product_name, quantity, unit_price, subtotal, packaging_id
		FROM order_line_items
		WHERE order_id = ANY($1)
		ORDER BY order_id, line_no
	`

	rows, err := q.Query(ctx, query, ids)
	if err != nil {
		r.logger.Error().Err(err).Int("order_count", len(ids)).Msg("failed to query order line items")
		return nil, fmt.Errorf("failed to query order line items: %w", err)
	}
	defer rows.Close()

	byOrder := make(map[int64][]model.OrderItem, len(ids))
	for rows.Next() {
		var item model.OrderItem
		err := rows.Scan(
			&item.OrderID,
			&item.LineNo,
			&item.ProductName,
			&item.Quantity,
			&item.UnitPrice,
			&item.Subtotal,
			&item.PackagingID,
		)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan order line item row")
			return nil, fmt.Errorf("failed to scan order line item: %w", err)
		}
		byOrder[item.OrderID] = append(byOrder[item.OrderID], item)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating order line item rows")
		return nil, fmt.Errorf("error iterating order line items: %w", err)
	}

	return byOrder, nil
}

func scanOrder(row pgx.CollectableRow) (model.Order, error) {
	var o model.Order
	err := row.Scan(
		&o.ID,
		&o.CustomerName,
		&o.Address,
		&o.PaymentMethod,
		&o.ShippingFee,
		&o.Total,
		&o.CreatedAt,
	)
	return o, err
}
