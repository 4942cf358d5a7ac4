package service

import (
	"context"

	"delicioso/internal/config"
	"delicioso/internal/model"
	"delicioso/internal/repository"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// dashboardService implements DashboardService.
type dashboardService struct {
	orderRepo         repository.OrderRepository
	owedMethod        string
	shippingThreshold decimal.Decimal
	logger            zerolog.Logger
}

// NewDashboardService creates a dashboard service using the owed payment
// method and shipping threshold from ledger.
func NewDashboardService(orderRepo repository.OrderRepository, ledger config.LedgerConfig, logger zerolog.Logger) DashboardService {
	return &dashboardService{
		orderRepo:         orderRepo,
		owedMethod:        ledger.OwedPaymentMethod,
		shippingThreshold: ledger.ShippingThreshold,
		logger:            logger.With().Str("service", "dashboard").Logger(),
	}
}

// Summarize computes the dashboard figures for rng inside one read-only
// snapshot, so every figure reflects the same set of orders.
func (s *dashboardService) Summarize(ctx context.Context, rng model.DateRange) (_ *model.Summary, err error) {
	ctx, span := tracer.Start(ctx, "DashboardService.Summarize")
	defer func() { finishSpan(span, err) }()

	tx, err := s.orderRepo.BeginSnapshot(ctx)
	if err != nil {
		return nil, model.NewPersistenceError("failed to summarize orders", err)
	}
	defer tx.Rollback(ctx)

	threshold := s.shippingThreshold
	owed := s.owedMethod

	all, err := s.orderRepo.SumBy(ctx, tx, model.OrderFilter{Range: rng})
	if err != nil {
		return nil, model.NewPersistenceError("failed to summarize orders", err)
	}

	outstanding, err := s.orderRepo.SumBy(ctx, tx, model.OrderFilter{Range: rng, PaymentMethod: &owed})
	if err != nil {
		return nil, model.NewPersistenceError("failed to summarize orders", err)
	}

	above, err := s.orderRepo.SumBy(ctx, tx, model.OrderFilter{Range: rng, ShippingAbove: &threshold})
	if err != nil {
		return nil, model.NewPersistenceError("failed to summarize orders", err)
	}

	atOrBelow, err := s.orderRepo.SumBy(ctx, tx, model.OrderFilter{Range: rng, ShippingAtOrBelow: &threshold})
	if err != nil {
		return nil, model.NewPersistenceError("failed to summarize orders", err)
	}

	byMethod, err := s.orderRepo.RevenueByPaymentMethod(ctx, tx, rng)
	if err != nil {
		return nil, model.NewPersistenceError("failed to summarize orders", err)
	}
	if byMethod == nil {
		byMethod = map[string]decimal.Decimal{}
	}

	debtors, err := s.orderRepo.Debtors(ctx, tx, rng, owed)
	if err != nil {
		return nil, model.NewPersistenceError("failed to summarize orders", err)
	}
	if debtors == nil {
		debtors = []model.Debtor{}
	}

	s.logger.Debug().
		Int64("order_count", all.Count).
		Str("revenue", all.Total.StringFixed(2)).
		Int("debtor_count", len(debtors)).
		Msg("dashboard summarized")

	return &model.Summary{
		TotalRevenue:               all.Total,
		OutstandingTotal:           outstanding.Total,
		ShippingAboveThreshold:     above.Shipping,
		CountAboveThreshold:        above.Count,
		ShippingAtOrBelowThreshold: atOrBelow.Shipping,
		CountAtOrBelowThreshold:    atOrBelow.Count,
		RevenueByPaymentMethod:     byMethod,
		Debtors:                    debtors,
	}, nil
}
