package service

import (
	"context"
	"fmt"
	"strings"

	"delicioso/internal/config"
	"delicioso/internal/events"
	"delicioso/internal/model"
	"delicioso/internal/repository"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
)

// orderService implements OrderService.
type orderService struct {
	orderRepo repository.OrderRepository
	stock     StockService
	publisher events.Publisher
	strict    bool
	logger    zerolog.Logger
}

// NewOrderService creates a new order service.
func NewOrderService(
	orderRepo repository.OrderRepository,
	stock StockService,
	publisher events.Publisher,
	ledger config.LedgerConfig,
	logger zerolog.Logger,
) OrderService {
	if publisher == nil {
		publisher = events.NewNopPublisher()
	}
	return &orderService{
		orderRepo: orderRepo,
		stock:     stock,
		publisher: publisher,
		strict:    ledger.StrictSubtotals,
		logger:    logger.With().Str("service", "order").Logger(),
	}
}

// Submit validates a cart, then atomically records the order, its line items
// and every packaging consumption. Nothing is written when validation fails.
func (s *orderService) Submit(ctx context.Context, req *model.OrderRequest) (_ *model.OrderConfirmation, err error) {
	ctx, span := tracer.Start(ctx, "OrderService.Submit")
	defer func() { finishSpan(span, err) }()

	order, items, err := s.buildOrder(req)
	if err != nil {
		return nil, err
	}

	span.SetAttributes(
		attribute.Int("order.line_count", len(items)),
		attribute.String("order.payment_method", order.PaymentMethod),
	)

	tx, err := s.orderRepo.BeginTx(ctx)
	if err != nil {
		return nil, model.NewPersistenceError("failed to submit order", err)
	}

	committed := false
	defer func() {
		if !committed {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	if err = s.orderRepo.Append(ctx, tx, order, items); err != nil {
		s.logger.Error().Err(err).Str("customer", order.CustomerName).Msg("failed to append order")
		return nil, model.NewPersistenceError("failed to submit order", err)
	}

	consumptions, err := s.stock.ConsumeLines(ctx, tx, order.Items)
	if err != nil {
		s.logger.Error().Err(err).Int64("order_id", order.ID).Msg("failed to consume packaging")
		return nil, model.NewPersistenceError("failed to submit order", err)
	}

	if err = tx.Commit(ctx); err != nil {
		s.logger.Error().Err(err).Int64("order_id", order.ID).Msg("failed to commit transaction")
		return nil, model.NewPersistenceError("failed to submit order", err)
	}
	committed = true

	warnings := []string{}
	for _, c := range consumptions {
		if c.HasWarning() {
			warnings = append(warnings, c.Warning)
		}
	}

	span.SetAttributes(attribute.Int64("order.id", order.ID))

	s.logger.Info().
		Int64("order_id", order.ID).
		Int("item_count", len(items)).
		Str("total", order.Total.StringFixed(2)).
		Int("warning_count", len(warnings)).
		Msg("order submitted successfully")

	s.publishCreated(ctx, order)

	return &model.OrderConfirmation{
		OrderID:  order.ID,
		Total:    order.Total,
		Warnings: warnings,
	}, nil
}

// publishCreated announces a committed order. Failures are logged only; the
// order is already durable.
func (s *orderService) publishCreated(ctx context.Context, order *model.Order) {
	evt := model.OrderCreatedEvent{
		Event:         events.EventOrderCreated,
		OrderID:       order.ID,
		PaymentMethod: order.PaymentMethod,
		ShippingFee:   order.ShippingFee,
		Total:         order.Total,
		CreatedAt:     order.CreatedAt,
	}
	if err := s.publisher.PublishOrderCreated(ctx, evt); err != nil {
		s.logger.Warn().Err(err).Int64("order_id", order.ID).Msg("order event not published")
	}
}

// List returns the orders placed in rng, most recent first.
func (s *orderService) List(ctx context.Context, rng model.DateRange) (_ []model.Order, err error) {
	ctx, span := tracer.Start(ctx, "OrderService.List")
	defer func() { finishSpan(span, err) }()

	tx, err := s.orderRepo.BeginSnapshot(ctx)
	if err != nil {
		return nil, model.NewPersistenceError("failed to list orders", err)
	}
	defer tx.Rollback(ctx)

	orders, err := s.orderRepo.List(ctx, tx, rng)
	if err != nil {
		return nil, model.NewPersistenceError("failed to list orders", err)
	}
	if orders == nil {
		orders = []model.Order{}
	}

	s.logger.Debug().Int("count", len(orders)).Msg("orders listed")
	return orders, nil
}

// GetByID retrieves an order with its line items.
func (s *orderService) GetByID(ctx context.Context, id int64) (_ *model.Order, err error) {
	ctx, span := tracer.Start(ctx, "OrderService.GetByID")
	span.SetAttributes(attribute.Int64("order.id", id))
	defer func() { finishSpan(span, err) }()

	if id <= 0 {
		return nil, model.NewValidationError(model.ErrCodeInvalidID, "Order id must be a positive integer")
	}

	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, model.NewPersistenceError("failed to get order", err)
	}
	if order == nil {
		s.logger.Debug().Int64("order_id", id).Msg("order not found")
		return nil, model.ErrOrderNotFound
	}

	return order, nil
}

// buildOrder validates req and derives the order header and line items.
// Amounts are rounded to cents before summing, so total equals the stored
// subtotals plus the stored shipping fee exactly.
func (s *orderService) buildOrder(req *model.OrderRequest) (*model.Order, []model.OrderItem, error) {
	if req == nil {
		return nil, nil, model.NewValidationError(model.ErrCodeInvalidJSON, "Order request is required")
	}

	customer := req.Customer
	name := strings.TrimSpace(customer.Name)
	address := strings.TrimSpace(customer.Address)
	method := strings.TrimSpace(customer.PaymentMethod)

	switch {
	case name == "":
		return nil, nil, model.NewValidationError(model.ErrCodeMissingField, "Customer name is required")
	case address == "":
		return nil, nil, model.NewValidationError(model.ErrCodeMissingField, "Customer address is required")
	case method == "":
		return nil, nil, model.NewValidationError(model.ErrCodeMissingField, "Payment method is required")
	}

	if len(req.Cart) == 0 {
		return nil, nil, model.ErrEmptyCart
	}

	items := make([]model.OrderItem, len(req.Cart))
	for i, line := range req.Cart {
		item, err := s.buildItem(i, line)
		if err != nil {
			return nil, nil, err
		}
		items[i] = item
	}

	shipping := customer.ShippingFeeOrZero().Round(2)
	total := model.SumSubtotals(items).Add(shipping)
	if !model.AmountInRange(shipping) || !model.AmountInRange(total) {
		s.logger.Warn().
			Str("shipping", shipping.String()).
			Str("total", total.String()).
			Msg("order amount out of range")
		return nil, nil, model.ErrAmountOutOfRange
	}

	return &model.Order{
		CustomerName:  name,
		Address:       address,
		PaymentMethod: method,
		ShippingFee:   shipping,
		Total:         total,
	}, items, nil
}

func (s *orderService) buildItem(i int, line model.CartLineRequest) (model.OrderItem, error) {
	product := strings.TrimSpace(line.ProductName)
	if product == "" {
		return model.OrderItem{}, model.NewValidationError(model.ErrCodeMissingField,
			fmt.Sprintf("Cart line %d: product name is required", i+1))
	}

	if line.Quantity <= 0 {
		s.logger.Warn().
			Int("line", i+1).
			Str("product", product).
			Int("quantity", line.Quantity).
			Msg("invalid quantity")
		return model.OrderItem{}, model.ErrInvalidQuantity
	}
	if line.Quantity > model.MaxQuantity {
		return model.OrderItem{}, model.ErrQuantityOutOfRange
	}

	if line.UnitPrice.IsNegative() || (line.Subtotal != nil && line.Subtotal.IsNegative()) {
		return model.OrderItem{}, model.ErrInvalidPrice
	}

	expected := line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity)))
	subtotal := expected
	if line.Subtotal != nil {
		if s.strict && !line.Subtotal.Equal(expected) {
			return model.OrderItem{}, model.NewValidationError(model.ErrCodeSubtotalMismatch,
				fmt.Sprintf("Cart line %d: subtotal %s does not match %d x %s",
					i+1, line.Subtotal.String(), line.Quantity, line.UnitPrice.String()))
		}
		subtotal = *line.Subtotal
	}

	if !model.AmountInRange(line.UnitPrice) || !model.AmountInRange(subtotal) {
		return model.OrderItem{}, model.ErrAmountOutOfRange
	}

	var packagingID *int64
	if line.PackagingID != nil && *line.PackagingID > 0 {
		id := *line.PackagingID
		packagingID = &id
	}

	return model.OrderItem{
		ProductName: product,
		Quantity:    line.Quantity,
		UnitPrice:   line.UnitPrice.Round(2),
		Subtotal:    subtotal.Round(2),
		PackagingID: packagingID,
	}, nil
}
