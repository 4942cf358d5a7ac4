package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"delicioso/internal/config"
	"delicioso/internal/model"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type orderServiceFixture struct {
	orderRepo *MockOrderRepository
	stock     *MockStockService
	publisher *MockPublisher
	tx        *MockTx
	service   OrderService
}

func newOrderServiceFixture(strict bool) *orderServiceFixture {
	f := &orderServiceFixture{
		orderRepo: new(MockOrderRepository),
		stock:     new(MockStockService),
		publisher: new(MockPublisher),
		tx:        new(MockTx),
	}
	f.service = NewOrderService(f.orderRepo, f.stock, f.publisher,
		config.LedgerConfig{StrictSubtotals: strict}, zerolog.Nop())
	return f
}

// expectAppend mimics the repository by assigning the id, timestamp and items.
func (f *orderServiceFixture) expectAppend(id int64) *mock.Call {
	return f.orderRepo.On("Append", mock.Anything, f.tx, mock.AnythingOfType("*model.Order"), mock.AnythingOfType("[]model.OrderItem")).
		Run(func(args mock.Arguments) {
			order := args.Get(2).(*model.Order)
			items := args.Get(3).([]model.OrderItem)
			order.ID = id
			order.CreatedAt = time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC)
			order.Items = items
			order.Description = model.Describe(items)
		}).
		Return(nil)
}

func validRequest() *model.OrderRequest {
	return &model.OrderRequest{
		Customer: model.CustomerRequest{
			Name:          "Ana",
			Address:       "Rua das Flores 10",
			PaymentMethod: "Cash",
			ShippingFee:   json.RawMessage(`3.0`),
		},
		Cart: []model.CartLineRequest{
			{ProductName: "Box", Quantity: 2, UnitPrice: dec("5.0"), Subtotal: ptr(dec("10.0")), PackagingID: ptr(int64(7))},
		},
	}
}

func TestOrderService_Submit_Success(t *testing.T) {
	ctx := context.Background()
	f := newOrderServiceFixture(false)

	var appended *model.Order
	f.orderRepo.On("BeginTx", mock.Anything).Return(f.tx, nil)
	f.expectAppend(42).Run(func(args mock.Arguments) {
		appended = args.Get(2).(*model.Order)
		items := args.Get(3).([]model.OrderItem)
		appended.ID = 42
		appended.Items = items
	})
	f.stock.On("ConsumeLines", mock.Anything, f.tx, mock.AnythingOfType("[]model.OrderItem")).
		Return([]model.Consumption{{Outcome: model.ConsumeApplied, EntryID: 7, Name: "Box", Requested: 2, Previous: 10, Remaining: 8}}, nil)
	f.tx.On("Commit", mock.Anything).Return(nil)
	f.publisher.On("PublishOrderCreated", mock.Anything, mock.MatchedBy(func(evt model.OrderCreatedEvent) bool {
		return evt.OrderID == 42 && evt.Event == "created" && evt.Total.Equal(dec("13"))
	})).Return(nil)

	resp, err := f.service.Submit(ctx, validRequest())

	require.NoError(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, int64(42), resp.OrderID)
	assert.True(t, resp.Total.Equal(dec("13.0")), "total %s", resp.Total)
	assert.NotNil(t, resp.Warnings)
	assert.Empty(t, resp.Warnings)

	require.NotNil(t, appended)
	assert.True(t, appended.ShippingFee.Equal(dec("3")))
	assert.Equal(t, "Ana", appended.CustomerName)
	require.Len(t, appended.Items, 1)
	assert.True(t, appended.Items[0].Subtotal.Equal(dec("10")))
	assert.Equal(t, int64(7), *appended.Items[0].PackagingID)

	f.orderRepo.AssertExpectations(t)
	f.stock.AssertExpectations(t)
	f.tx.AssertExpectations(t)
	f.publisher.AssertExpectations(t)
	assert.False(t, f.tx.rolledBack)
}

func TestOrderService_Submit_CollectsWarningsInLineOrder(t *testing.T) {
	ctx := context.Background()
	f := newOrderServiceFixture(false)

	req := validRequest()
	req.Cart = append(req.Cart, model.CartLineRequest{ProductName: "Bag", Quantity: 1, UnitPrice: dec("1"), PackagingID: ptr(int64(3))})

	f.orderRepo.On("BeginTx", mock.Anything).Return(f.tx, nil)
	f.expectAppend(5)
	f.stock.On("ConsumeLines", mock.Anything, f.tx, mock.Anything).Return([]model.Consumption{
		{Outcome: model.ConsumeApplied, EntryID: 7, Warning: "Insufficient stock of Box: 0 remaining (requested 2, had 1)", Clamped: true},
		{Outcome: model.ConsumeApplied, EntryID: 3, Warning: "Low stock of Bag: 1 remaining"},
	}, nil)
	f.tx.On("Commit", mock.Anything).Return(nil)
	f.publisher.On("PublishOrderCreated", mock.Anything, mock.Anything).Return(nil)

	resp, err := f.service.Submit(ctx, req)

	require.NoError(t, err)
	assert.Equal(t, []string{
		"Insufficient stock of Box: 0 remaining (requested 2, had 1)",
		"Low stock of Bag: 1 remaining",
	}, resp.Warnings)
	assert.True(t, resp.Total.Equal(dec("14")))
}

func TestOrderService_Submit_SkippedPackagingIsSilent(t *testing.T) {
	ctx := context.Background()
	f := newOrderServiceFixture(false)

	f.orderRepo.On("BeginTx", mock.Anything).Return(f.tx, nil)
	f.expectAppend(1)
	f.stock.On("ConsumeLines", mock.Anything, f.tx, mock.Anything).
		Return([]model.Consumption{{Outcome: model.ConsumeSkipped, EntryID: 7, Reason: "packaging entry 7 not found"}}, nil)
	f.tx.On("Commit", mock.Anything).Return(nil)
	f.publisher.On("PublishOrderCreated", mock.Anything, mock.Anything).Return(nil)

	resp, err := f.service.Submit(ctx, validRequest())

	require.NoError(t, err)
	assert.Empty(t, resp.Warnings)
}

func TestOrderService_Submit_DerivesMissingSubtotalAndLenientShipping(t *testing.T) {
	ctx := context.Background()
	f := newOrderServiceFixture(false)

	req := &model.OrderRequest{
		Customer: model.CustomerRequest{Name: "Ana", Address: "Rua 1", PaymentMethod: "Pix", ShippingFee: json.RawMessage(`"abc"`)},
		Cart: []model.CartLineRequest{
			{ProductName: "Soda", Quantity: 3, UnitPrice: dec("2.50")},
			{ProductName: "Gum", Quantity: 1, UnitPrice: dec("0.99"), PackagingID: ptr(int64(0))},
		},
	}

	var items []model.OrderItem
	f.orderRepo.On("BeginTx", mock.Anything).Return(f.tx, nil)
	f.expectAppend(9).Run(func(args mock.Arguments) {
		order := args.Get(2).(*model.Order)
		items = args.Get(3).([]model.OrderItem)
		order.ID = 9
		order.Items = items
	})
	f.stock.On("ConsumeLines", mock.Anything, f.tx, mock.Anything).Return(nil, nil)
	f.tx.On("Commit", mock.Anything).Return(nil)
	f.publisher.On("PublishOrderCreated", mock.Anything, mock.Anything).Return(nil)

	resp, err := f.service.Submit(ctx, req)

	require.NoError(t, err)
	assert.True(t, resp.Total.Equal(dec("8.49")), "total %s", resp.Total)
	require.Len(t, items, 2)
	assert.True(t, items[0].Subtotal.Equal(dec("7.50")))
	assert.Nil(t, items[1].PackagingID)
}

func TestOrderService_Submit_TrustsSubtotalByDefault(t *testing.T) {
	ctx := context.Background()
	f := newOrderServiceFixture(false)

	req := validRequest()
	req.Cart[0].Subtotal = ptr(dec("9.00"))

	f.orderRepo.On("BeginTx", mock.Anything).Return(f.tx, nil)
	f.expectAppend(3)
	f.stock.On("ConsumeLines", mock.Anything, f.tx, mock.Anything).Return([]model.Consumption{}, nil)
	f.tx.On("Commit", mock.Anything).Return(nil)
	f.publisher.On("PublishOrderCreated", mock.Anything, mock.Anything).Return(nil)

	resp, err := f.service.Submit(ctx, req)

	require.NoError(t, err)
	assert.True(t, resp.Total.Equal(dec("12")))
}

func TestOrderService_Submit_ValidationErrors(t *testing.T) {
	tests := []struct {
		name     string
		strict   bool
		mutate   func(r *model.OrderRequest)
		nilReq   bool
		expected error
		code     string
	}{
		{
			name:   "Nil request",
			nilReq: true,
			code:   model.ErrCodeInvalidJSON,
		},
		{
			name:     "Empty cart",
			mutate:   func(r *model.OrderRequest) { r.Cart = nil },
			expected: model.ErrEmptyCart,
			code:     model.ErrCodeEmptyCart,
		},
		{
			name:   "Missing customer name",
			mutate: func(r *model.OrderRequest) { r.Customer.Name = "   " },
			code:   model.ErrCodeMissingField,
		},
		{
			name:   "Missing address",
			mutate: func(r *model.OrderRequest) { r.Customer.Address = "" },
			code:   model.ErrCodeMissingField,
		},
		{
			name:   "Missing payment method",
			mutate: func(r *model.OrderRequest) { r.Customer.PaymentMethod = "" },
			code:   model.ErrCodeMissingField,
		},
		{
			name:   "Missing product name",
			mutate: func(r *model.OrderRequest) { r.Cart[0].ProductName = "" },
			code:   model.ErrCodeMissingField,
		},
		{
			name:     "Zero quantity",
			mutate:   func(r *model.OrderRequest) { r.Cart[0].Quantity = 0 },
			expected: model.ErrInvalidQuantity,
			code:     model.ErrCodeInvalidQuantity,
		},
		{
			name:     "Negative unit price",
			mutate:   func(r *model.OrderRequest) { r.Cart[0].UnitPrice = dec("-1") },
			expected: model.ErrInvalidPrice,
			code:     model.ErrCodeInvalidPrice,
		},
		{
			name:     "Negative subtotal",
			mutate:   func(r *model.OrderRequest) { r.Cart[0].Subtotal = ptr(dec("-10")) },
			expected: model.ErrInvalidPrice,
			code:     model.ErrCodeInvalidPrice,
		},
		{
			name:     "Quantity above INTEGER range",
			mutate:   func(r *model.OrderRequest) { r.Cart[0].Quantity = model.MaxQuantity + 1 },
			expected: model.ErrQuantityOutOfRange,
			code:     model.ErrCodeQuantityOutOfRange,
		},
		{
			name:     "Unit price above stored range",
			mutate:   func(r *model.OrderRequest) { r.Cart[0].UnitPrice = dec("1e10"); r.Cart[0].Subtotal = nil },
			expected: model.ErrAmountOutOfRange,
			code:     model.ErrCodeAmountOutOfRange,
		},
		{
			name:     "Unit price rounding up to the stored limit",
			mutate:   func(r *model.OrderRequest) { r.Cart[0].Quantity = 1; r.Cart[0].UnitPrice = dec("9999999999.995"); r.Cart[0].Subtotal = nil },
			expected: model.ErrAmountOutOfRange,
			code:     model.ErrCodeAmountOutOfRange,
		},
		{
			name:     "Submitted subtotal above stored range",
			mutate:   func(r *model.OrderRequest) { r.Cart[0].Subtotal = ptr(dec("1e20")) },
			expected: model.ErrAmountOutOfRange,
			code:     model.ErrCodeAmountOutOfRange,
		},
		{
			name: "Derived subtotal above stored range",
			mutate: func(r *model.OrderRequest) {
				r.Cart[0].Quantity = 1000000000
				r.Cart[0].UnitPrice = dec("100")
				r.Cart[0].Subtotal = nil
			},
			expected: model.ErrAmountOutOfRange,
			code:     model.ErrCodeAmountOutOfRange,
		},
		{
			name:     "Shipping fee above stored range",
			mutate:   func(r *model.OrderRequest) { r.Customer.ShippingFee = json.RawMessage(`"1e20"`) },
			expected: model.ErrAmountOutOfRange,
			code:     model.ErrCodeAmountOutOfRange,
		},
		{
			name: "Total above stored range",
			mutate: func(r *model.OrderRequest) {
				r.Cart = []model.CartLineRequest{
					{ProductName: "Cake", Quantity: 1, UnitPrice: dec("6000000000")},
					{ProductName: "Pie", Quantity: 1, UnitPrice: dec("6000000000")},
				}
			},
			expected: model.ErrAmountOutOfRange,
			code:     model.ErrCodeAmountOutOfRange,
		},
		{
			name:   "Strict subtotal mismatch",
			strict: true,
			mutate: func(r *model.OrderRequest) { r.Cart[0].Subtotal = ptr(dec("9.99")) },
			code:   model.ErrCodeSubtotalMismatch,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newOrderServiceFixture(tt.strict)

			req := validRequest()
			if tt.nilReq {
				req = nil
			} else {
				tt.mutate(req)
			}

			resp, err := f.service.Submit(context.Background(), req)

			require.Error(t, err)
			assert.Nil(t, resp)
			assert.True(t, model.IsValidation(err))
			if tt.expected != nil {
				assert.ErrorIs(t, err, tt.expected)
			}

			var de *model.DomainError
			require.ErrorAs(t, err, &de)
			assert.Equal(t, tt.code, de.Code)

			// Nothing is written when validation fails.
			f.orderRepo.AssertNotCalled(t, "BeginTx", mock.Anything)
			f.stock.AssertNotCalled(t, "ConsumeLines", mock.Anything, mock.Anything, mock.Anything)
			f.publisher.AssertNotCalled(t, "PublishOrderCreated", mock.Anything, mock.Anything)
		})
	}
}

func TestOrderService_Submit_StrictAcceptsMatchingSubtotal(t *testing.T) {
	f := newOrderServiceFixture(true)

	f.orderRepo.On("BeginTx", mock.Anything).Return(f.tx, nil)
	f.expectAppend(1)
	f.stock.On("ConsumeLines", mock.Anything, f.tx, mock.Anything).Return([]model.Consumption{}, nil)
	f.tx.On("Commit", mock.Anything).Return(nil)
	f.publisher.On("PublishOrderCreated", mock.Anything, mock.Anything).Return(nil)

	_, err := f.service.Submit(context.Background(), validRequest())
	require.NoError(t, err)
}

func TestOrderService_Submit_AcceptsLargestStoredAmount(t *testing.T) {
	f := newOrderServiceFixture(false)

	f.orderRepo.On("BeginTx", mock.Anything).Return(f.tx, nil)
	f.expectAppend(1)
	f.stock.On("ConsumeLines", mock.Anything, f.tx, mock.Anything).Return(nil, nil)
	f.tx.On("Commit", mock.Anything).Return(nil)
	f.publisher.On("PublishOrderCreated", mock.Anything, mock.Anything).Return(nil)

	req := validRequest()
	req.Customer.ShippingFee = nil
	req.Cart = []model.CartLineRequest{
		{ProductName: "Wedding cake", Quantity: 1, UnitPrice: dec("9999999999.99")},
	}

	confirmation, err := f.service.Submit(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, confirmation.Total.Equal(dec("9999999999.99")))
}

func TestOrderService_Submit_PersistenceFailures(t *testing.T) {
	dbErr := errors.New("connection reset")

	tests := []struct {
		name       string
		setup      func(f *orderServiceFixture)
		rollback   bool
		beginFails bool
	}{
		{
			name: "Begin transaction fails",
			setup: func(f *orderServiceFixture) {
				f.orderRepo.On("BeginTx", mock.Anything).Return(nil, dbErr)
			},
			beginFails: true,
		},
		{
			name: "Append fails",
			setup: func(f *orderServiceFixture) {
				f.orderRepo.On("BeginTx", mock.Anything).Return(f.tx, nil)
				f.orderRepo.On("Append", mock.Anything, f.tx, mock.Anything, mock.Anything).Return(dbErr)
				f.tx.On("Rollback", mock.Anything).Return(nil)
			},
			rollback: true,
		},
		{
			name: "Consumption fails",
			setup: func(f *orderServiceFixture) {
				f.orderRepo.On("BeginTx", mock.Anything).Return(f.tx, nil)
				f.expectAppend(1)
				f.stock.On("ConsumeLines", mock.Anything, f.tx, mock.Anything).Return(nil, dbErr)
				f.tx.On("Rollback", mock.Anything).Return(nil)
			},
			rollback: true,
		},
		{
			name: "Commit fails",
			setup: func(f *orderServiceFixture) {
				f.orderRepo.On("BeginTx", mock.Anything).Return(f.tx, nil)
				f.expectAppend(1)
				f.stock.On("ConsumeLines", mock.Anything, f.tx, mock.Anything).Return([]model.Consumption{}, nil)
				f.tx.On("Commit", mock.Anything).Return(dbErr)
				f.tx.On("Rollback", mock.Anything).Return(nil)
			},
			rollback: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newOrderServiceFixture(false)
			tt.setup(f)

			resp, err := f.service.Submit(context.Background(), validRequest())

			require.Error(t, err)
			assert.Nil(t, resp)
			assert.True(t, model.IsPersistence(err))
			assert.ErrorIs(t, err, dbErr)
			assert.Equal(t, tt.rollback, f.tx.rolledBack)
			f.publisher.AssertNotCalled(t, "PublishOrderCreated", mock.Anything, mock.Anything)
		})
	}
}

func TestOrderService_Submit_PublishFailureDoesNotFailOrder(t *testing.T) {
	f := newOrderServiceFixture(false)

	f.orderRepo.On("BeginTx", mock.Anything).Return(f.tx, nil)
	f.expectAppend(11)
	f.stock.On("ConsumeLines", mock.Anything, f.tx, mock.Anything).Return([]model.Consumption{}, nil)
	f.tx.On("Commit", mock.Anything).Return(nil)
	f.publisher.On("PublishOrderCreated", mock.Anything, mock.Anything).Return(errors.New("broker down"))

	resp, err := f.service.Submit(context.Background(), validRequest())

	require.NoError(t, err)
	assert.Equal(t, int64(11), resp.OrderID)
}

func TestOrderService_List(t *testing.T) {
	f := newOrderServiceFixture(false)
	rng := model.DateRange{From: ptr(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))}

	orders := []model.Order{{ID: 2}, {ID: 1}}
	f.orderRepo.On("BeginSnapshot", mock.Anything).Return(f.tx, nil)
	f.orderRepo.On("List", mock.Anything, f.tx, rng).Return(orders, nil)
	f.tx.On("Rollback", mock.Anything).Return(nil)

	result, err := f.service.List(context.Background(), rng)

	require.NoError(t, err)
	assert.Equal(t, orders, result)
	f.orderRepo.AssertExpectations(t)
	f.tx.AssertExpectations(t)
}

func TestOrderService_List_EmptyIsNotNil(t *testing.T) {
	f := newOrderServiceFixture(false)

	f.orderRepo.On("BeginSnapshot", mock.Anything).Return(f.tx, nil)
	f.orderRepo.On("List", mock.Anything, f.tx, model.DateRange{}).Return(nil, nil)
	f.tx.On("Rollback", mock.Anything).Return(nil)

	result, err := f.service.List(context.Background(), model.DateRange{})

	require.NoError(t, err)
	assert.NotNil(t, result)
	assert.Empty(t, result)
}

func TestOrderService_List_RepositoryError(t *testing.T) {
	f := newOrderServiceFixture(false)

	f.orderRepo.On("BeginSnapshot", mock.Anything).Return(nil, errors.New("pool closed"))

	_, err := f.service.List(context.Background(), model.DateRange{})

	require.Error(t, err)
	assert.True(t, model.IsPersistence(err))
}

func TestOrderService_GetByID(t *testing.T) {
	tests := []struct {
		name      string
		id        int64
		setup     func(m *MockOrderRepository)
		checkErr  func(t *testing.T, err error)
		expectNil bool
	}{
		{
			name: "Found",
			id:   1,
			setup: func(m *MockOrderRepository) {
				m.On("GetByID", mock.Anything, int64(1)).Return(&model.Order{ID: 1, CustomerName: "Ana"}, nil)
			},
		},
		{
			name: "Not found",
			id:   2,
			setup: func(m *MockOrderRepository) {
				m.On("GetByID", mock.Anything, int64(2)).Return(nil, nil)
			},
			checkErr:  func(t *testing.T, err error) { assert.ErrorIs(t, err, model.ErrOrderNotFound) },
			expectNil: true,
		},
		{
			name:      "Invalid id",
			id:        0,
			setup:     func(m *MockOrderRepository) {},
			checkErr:  func(t *testing.T, err error) { assert.True(t, model.IsValidation(err)) },
			expectNil: true,
		},
		{
			name: "Repository error",
			id:   3,
			setup: func(m *MockOrderRepository) {
				m.On("GetByID", mock.Anything, int64(3)).Return(nil, errors.New("timeout"))
			},
			checkErr:  func(t *testing.T, err error) { assert.True(t, model.IsPersistence(err)) },
			expectNil: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newOrderServiceFixture(false)
			tt.setup(f.orderRepo)

			order, err := f.service.GetByID(context.Background(), tt.id)

			if tt.checkErr != nil {
				require.Error(t, err)
				tt.checkErr(t, err)
			} else {
				require.NoError(t, err)
			}
			if tt.expectNil {
				assert.Nil(t, order)
			} else {
				require.NotNil(t, order)
				assert.Equal(t, tt.id, order.ID)
			}
		})
	}
}
