package handler

import (
	"context"

	"delicioso/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/mock"
)

// MockOrderService is a mock implementation of OrderService.
type MockOrderService struct {
	mock.Mock
}

func (m *MockOrderService) Submit(ctx context.Context, req *model.OrderRequest) (*model.OrderConfirmation, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.OrderConfirmation), args.Error(1)
}

func (m *MockOrderService) List(ctx context.Context, rng model.DateRange) ([]model.Order, error) {
	args := m.Called(ctx, rng)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Order), args.Error(1)
}

func (m *MockOrderService) GetByID(ctx context.Context, id int64) (*model.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

// MockStockService is a mock implementation of StockService.
type MockStockService struct {
	mock.Mock
}

func (m *MockStockService) Restock(ctx context.Context, name string, quantity int) (*model.StockLevel, error) {
	args := m.Called(ctx, name, quantity)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.StockLevel), args.Error(1)
}

func (m *MockStockService) Adjust(ctx context.Context, entryID int64, quantity int) (*model.StockLevel, error) {
	args := m.Called(ctx, entryID, quantity)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.StockLevel), args.Error(1)
}

func (m *MockStockService) List(ctx context.Context) ([]model.StockEntry, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.StockEntry), args.Error(1)
}

func (m *MockStockService) Consume(ctx context.Context, tx pgx.Tx, entryID int64, quantity int) (model.Consumption, error) {
	args := m.Called(ctx, tx, entryID, quantity)
	return args.Get(0).(model.Consumption), args.Error(1)
}

func (m *MockStockService) ConsumeLines(ctx context.Context, tx pgx.Tx, items []model.OrderItem) ([]model.Consumption, error) {
	args := m.Called(ctx, tx, items)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Consumption), args.Error(1)
}

// MockDashboardService is a mock implementation of DashboardService.
type MockDashboardService struct {
	mock.Mock
}

func (m *MockDashboardService) Summarize(ctx context.Context, rng model.DateRange) (*model.Summary, error) {
	args := m.Called(ctx, rng)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Summary), args.Error(1)
}

// MockAdminService is a mock implementation of AdminService.
type MockAdminService struct {
	mock.Mock
}

func (m *MockAdminService) ResetAll(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
