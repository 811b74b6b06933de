package application

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deviceorder/fulfillment-service/internal/domain"
	apperrors "github.com/deviceorder/fulfillment-service/pkg/errors"
	"github.com/deviceorder/fulfillment-service/pkg/logging"
)

type fakeWarehouseRepo struct {
	saveFn           func(context.Context, *domain.Warehouse) error
	listAllFn        func(context.Context) ([]*domain.Warehouse, error)
	findByIDFn       func(context.Context, string) (*domain.Warehouse, error)
	findByNameFn     func(context.Context, string) (*domain.Warehouse, error)
	decrementStockFn func(context.Context, string, int64) error
	setStockFn       func(context.Context, string, int64) error
}

func (f *fakeWarehouseRepo) Save(ctx context.Context, warehouse *domain.Warehouse) error {
	if f.saveFn != nil {
		return f.saveFn(ctx, warehouse)
	}
	return nil
}

func (f *fakeWarehouseRepo) ListAll(ctx context.Context) ([]*domain.Warehouse, error) {
	if f.listAllFn != nil {
		return f.listAllFn(ctx)
	}
	return nil, nil
}

func (f *fakeWarehouseRepo) FindByID(ctx context.Context, warehouseID string) (*domain.Warehouse, error) {
	if f.findByIDFn != nil {
		return f.findByIDFn(ctx, warehouseID)
	}
	return nil, nil
}

func (f *fakeWarehouseRepo) FindByName(ctx context.Context, name string) (*domain.Warehouse, error) {
	if f.findByNameFn != nil {
		return f.findByNameFn(ctx, name)
	}
	return nil, nil
}

func (f *fakeWarehouseRepo) DecrementStock(ctx context.Context, warehouseID string, quantity int64) error {
	if f.decrementStockFn != nil {
		return f.decrementStockFn(ctx, warehouseID, quantity)
	}
	return nil
}

func (f *fakeWarehouseRepo) SetStock(ctx context.Context, warehouseID string, stock int64) error {
	if f.setStockFn != nil {
		return f.setStockFn(ctx, warehouseID, stock)
	}
	return nil
}

type fakeOrderRepo struct {
	saveFn     func(context.Context, *domain.Order) error
	findByIDFn func(context.Context, string) (*domain.Order, error)
}

func (f *fakeOrderRepo) Save(ctx context.Context, order *domain.Order) error {
	if f.saveFn != nil {
		return f.saveFn(ctx, order)
	}
	return nil
}

func (f *fakeOrderRepo) FindByID(ctx context.Context, orderID string) (*domain.Order, error) {
	if f.findByIDFn != nil {
		return f.findByIDFn(ctx, orderID)
	}
	return nil, nil
}

type fakeTxRunner struct {
	runFn func(context.Context, func(ctx context.Context) error) error
}

func (f *fakeTxRunner) Run(ctx context.Context, fn func(ctx context.Context) error) error {
	if f.runFn != nil {
		return f.runFn(ctx, fn)
	}
	return fn(ctx)
}

type fakePricingProvider struct {
	config domain.PricingConfig
}

func (f *fakePricingProvider) Current() domain.PricingConfig {
	return f.config
}

type fakeEventPublisher struct {
	publishFn func(context.Context, *domain.OrderCreatedEvent) error
	published []*domain.OrderCreatedEvent
}

func (f *fakeEventPublisher) PublishOrderCreated(ctx context.Context, event *domain.OrderCreatedEvent) error {
	f.published = append(f.published, event)
	if f.publishFn != nil {
		return f.publishFn(ctx, event)
	}
	return nil
}

func testLogger() *logging.Logger {
	cfg := logging.DefaultConfig("fulfillment-test")
	cfg.Output = io.Discard
	return logging.New(cfg)
}

func testPricingConfig() domain.PricingConfig {
	return domain.PricingConfig{
		UnitPrice:            150,
		DeviceWeightKg:       0.365,
		ShippingRatePerKgKm:  0.01,
		ShippingCostCapRatio: 0.15,
		DiscountTiers: []domain.DiscountTier{
			{MinQuantity: 25, Rate: 0.05},
			{MinQuantity: 50, Rate: 0.10},
			{MinQuantity: 100, Rate: 0.15},
			{MinQuantity: 250, Rate: 0.20},
		},
	}
}

func testWarehouse(id, name string, lat, lon float64, stock int64) *domain.Warehouse {
	return &domain.Warehouse{
		WarehouseID: id,
		Name:        name,
		Latitude:    lat,
		Longitude:   lon,
		Stock:       stock,
	}
}

func newTestOrderService(warehouseRepo *fakeWarehouseRepo, orderRepo *fakeOrderRepo, publisher EventPublisher) *OrderService {
	return NewOrderService(
		warehouseRepo,
		orderRepo,
		&fakeTxRunner{},
		&fakePricingProvider{config: testPricingConfig()},
		publisher,
		testLogger(),
	)
}

func TestVerifyOrderSuccess(t *testing.T) {
	warehouseRepo := &fakeWarehouseRepo{
		listAllFn: func(context.Context) ([]*domain.Warehouse, error) {
			return []*domain.Warehouse{
				testWarehouse("WH-11111111", "Berlin", 52.52, 13.405, 500),
			}, nil
		},
	}
	service := newTestOrderService(warehouseRepo, &fakeOrderRepo{}, nil)

	result := service.VerifyOrder(context.Background(), VerifyOrderCommand{
		Quantity:             100,
		DestinationLatitude:  52.52,
		DestinationLongitude: 13.405,
	})

	require.True(t, result.IsValid)
	assert.Empty(t, result.Reason)
	assert.Equal(t, 12750.0, result.TotalPrice)
	assert.Equal(t, 2250.0, result.Discount)
	assert.Equal(t, 0.0, result.ShippingCost)
}

func TestVerifyOrderInvalidQuantity(t *testing.T) {
	service := newTestOrderService(&fakeWarehouseRepo{}, &fakeOrderRepo{}, nil)

	result := service.VerifyOrder(context.Background(), VerifyOrderCommand{
		Quantity:             0,
		DestinationLatitude:  52.52,
		DestinationLongitude: 13.405,
	})

	require.False(t, result.IsValid)
	assert.Equal(t, "quantity must be a positive integer", result.Reason)
	assert.Zero(t, result.TotalPrice)
}

func TestVerifyOrderNoWarehouses(t *testing.T) {
	service := newTestOrderService(&fakeWarehouseRepo{}, &fakeOrderRepo{}, nil)

	result := service.VerifyOrder(context.Background(), VerifyOrderCommand{
		Quantity:             10,
		DestinationLatitude:  52.52,
		DestinationLongitude: 13.405,
	})

	require.False(t, result.IsValid)
	assert.Equal(t, "no warehouses available", result.Reason)
}

func TestVerifyOrderInsufficientStock(t *testing.T) {
	warehouseRepo := &fakeWarehouseRepo{
		listAllFn: func(context.Context) ([]*domain.Warehouse, error) {
			return []*domain.Warehouse{
				testWarehouse("WH-11111111", "Berlin", 52.52, 13.405, 5),
				testWarehouse("WH-22222222", "Munich", 48.137, 11.575, 3),
			}, nil
		},
	}
	service := newTestOrderService(warehouseRepo, &fakeOrderRepo{}, nil)

	result := service.VerifyOrder(context.Background(), VerifyOrderCommand{
		Quantity:             10,
		DestinationLatitude:  52.52,
		DestinationLongitude: 13.405,
	})

	require.False(t, result.IsValid)
	assert.Equal(t, "not enough stock in all warehouses", result.Reason)
}

func TestVerifyOrderShippingCapExceeded(t *testing.T) {
	// A single device shipped a quarter of the way around the planet costs
	// far more than 15% of its price.
	warehouseRepo := &fakeWarehouseRepo{
		listAllFn: func(context.Context) ([]*domain.Warehouse, error) {
			return []*domain.Warehouse{
				testWarehouse("WH-11111111", "Remote", 0, 90, 500),
			}, nil
		},
	}
	service := newTestOrderService(warehouseRepo, &fakeOrderRepo{}, nil)

	result := service.VerifyOrder(context.Background(), VerifyOrderCommand{
		Quantity:             1,
		DestinationLatitude:  0,
		DestinationLongitude: 0,
	})

	require.False(t, result.IsValid)
	assert.Equal(t, "shipping cost exceeds 15% of order amount", result.Reason)
}

func TestVerifyOrderRepoErrorYieldsUnknownReason(t *testing.T) {
	warehouseRepo := &fakeWarehouseRepo{
		listAllFn: func(context.Context) ([]*domain.Warehouse, error) {
			return nil, errors.New("connection reset")
		},
	}
	service := newTestOrderService(warehouseRepo, &fakeOrderRepo{}, nil)

	result := service.VerifyOrder(context.Background(), VerifyOrderCommand{
		Quantity:             10,
		DestinationLatitude:  52.52,
		DestinationLongitude: 13.405,
	})

	require.False(t, result.IsValid)
	assert.Equal(t, "unknown error", result.Reason)
}

func TestSubmitOrderSuccess(t *testing.T) {
	decrements := map[string]int64{}
	warehouseRepo := &fakeWarehouseRepo{
		listAllFn: func(context.Context) ([]*domain.Warehouse, error) {
			return []*domain.Warehouse{
				testWarehouse("WH-11111111", "Berlin", 52.52, 13.405, 30),
				testWarehouse("WH-22222222", "Leipzig", 51.34, 12.37, 100),
			}, nil
		},
		decrementStockFn: func(_ context.Context, warehouseID string, quantity int64) error {
			decrements[warehouseID] += quantity
			return nil
		},
	}
	var saved *domain.Order
	orderRepo := &fakeOrderRepo{
		saveFn: func(_ context.Context, order *domain.Order) error {
			saved = order
			return nil
		},
	}
	publisher := &fakeEventPublisher{}
	service := newTestOrderService(warehouseRepo, orderRepo, publisher)

	dto, err := service.SubmitOrder(context.Background(), SubmitOrderCommand{
		Quantity:             50,
		DestinationLatitude:  52.52,
		DestinationLongitude: 13.405,
	})
	require.NoError(t, err)
	require.NotNil(t, dto)
	require.NotNil(t, saved)

	// 50 units at 150 each with the 10% tier
	assert.Equal(t, 6750.0, saved.TotalPrice)
	assert.Equal(t, 750.0, saved.Discount)
	assert.Equal(t, saved.OrderID, dto.OrderID)

	// Nearest warehouse drains first, the remainder spills to the next
	require.Len(t, saved.Allocations, 2)
	assert.Equal(t, "WH-11111111", saved.Allocations[0].WarehouseID)
	assert.Equal(t, int64(30), saved.Allocations[0].Quantity)
	assert.Equal(t, "WH-22222222", saved.Allocations[1].WarehouseID)
	assert.Equal(t, int64(20), saved.Allocations[1].Quantity)

	assert.Equal(t, int64(30), decrements["WH-11111111"])
	assert.Equal(t, int64(20), decrements["WH-22222222"])

	require.Len(t, publisher.published, 1)
	assert.Equal(t, saved.OrderID, publisher.published[0].OrderID)
}

func TestSubmitOrderInvalidInput(t *testing.T) {
	txRan := false
	service := NewOrderService(
		&fakeWarehouseRepo{},
		&fakeOrderRepo{},
		&fakeTxRunner{runFn: func(ctx context.Context, fn func(ctx context.Context) error) error {
			txRan = true
			return fn(ctx)
		}},
		&fakePricingProvider{config: testPricingConfig()},
		nil,
		testLogger(),
	)

	_, err := service.SubmitOrder(context.Background(), SubmitOrderCommand{
		Quantity:             -1,
		DestinationLatitude:  52.52,
		DestinationLongitude: 13.405,
	})

	require.Error(t, err)
	bizErr, ok := domain.AsBusinessError(err)
	require.True(t, ok)
	assert.Equal(t, domain.RejectionInvalidInput, bizErr.Kind)
	assert.False(t, bizErr.Retryable)
	assert.False(t, txRan)
}

func TestSubmitOrderStockRace(t *testing.T) {
	warehouseRepo := &fakeWarehouseRepo{
		listAllFn: func(context.Context) ([]*domain.Warehouse, error) {
			return []*domain.Warehouse{
				testWarehouse("WH-11111111", "Berlin", 52.52, 13.405, 100),
			}, nil
		},
		decrementStockFn: func(context.Context, string, int64) error {
			return domain.ErrStockConflict
		},
	}
	orderSaved := false
	orderRepo := &fakeOrderRepo{
		saveFn: func(context.Context, *domain.Order) error {
			orderSaved = true
			return nil
		},
	}
	service := newTestOrderService(warehouseRepo, orderRepo, nil)

	_, err := service.SubmitOrder(context.Background(), SubmitOrderCommand{
		Quantity:             10,
		DestinationLatitude:  52.52,
		DestinationLongitude: 13.405,
	})

	require.Error(t, err)
	bizErr, ok := domain.AsBusinessError(err)
	require.True(t, ok)
	assert.Equal(t, domain.RejectionStockRace, bizErr.Kind)
	assert.True(t, bizErr.Retryable)
	assert.False(t, orderSaved)
}

func TestSubmitOrderStockDrainedInsideTransaction(t *testing.T) {
	// The snapshot seen at verification time has enough stock; the
	// re-read inside the transaction does not.
	calls := 0
	warehouseRepo := &fakeWarehouseRepo{
		listAllFn: func(context.Context) ([]*domain.Warehouse, error) {
			calls++
			stock := int64(100)
			if calls > 1 {
				stock = 2
			}
			return []*domain.Warehouse{
				testWarehouse("WH-11111111", "Berlin", 52.52, 13.405, stock),
			}, nil
		},
	}
	service := newTestOrderService(warehouseRepo, &fakeOrderRepo{}, nil)

	_, err := service.SubmitOrder(context.Background(), SubmitOrderCommand{
		Quantity:             10,
		DestinationLatitude:  52.52,
		DestinationLongitude: 13.405,
	})

	require.Error(t, err)
	bizErr, ok := domain.AsBusinessError(err)
	require.True(t, ok)
	assert.Equal(t, domain.RejectionInsufficientStock, bizErr.Kind)
}

func TestSubmitOrderPublishFailureDoesNotFailSubmission(t *testing.T) {
	warehouseRepo := &fakeWarehouseRepo{
		listAllFn: func(context.Context) ([]*domain.Warehouse, error) {
			return []*domain.Warehouse{
				testWarehouse("WH-11111111", "Berlin", 52.52, 13.405, 100),
			}, nil
		},
	}
	publisher := &fakeEventPublisher{
		publishFn: func(context.Context, *domain.OrderCreatedEvent) error {
			return errors.New("broker unavailable")
		},
	}
	service := newTestOrderService(warehouseRepo, &fakeOrderRepo{}, publisher)

	dto, err := service.SubmitOrder(context.Background(), SubmitOrderCommand{
		Quantity:             10,
		DestinationLatitude:  52.52,
		DestinationLongitude: 13.405,
	})

	require.NoError(t, err)
	require.NotNil(t, dto)
	assert.Len(t, publisher.published, 1)
}

func TestSubmitOrderWithoutPublisher(t *testing.T) {
	warehouseRepo := &fakeWarehouseRepo{
		listAllFn: func(context.Context) ([]*domain.Warehouse, error) {
			return []*domain.Warehouse{
				testWarehouse("WH-11111111", "Berlin", 52.52, 13.405, 100),
			}, nil
		},
	}
	service := newTestOrderService(warehouseRepo, &fakeOrderRepo{}, nil)

	dto, err := service.SubmitOrder(context.Background(), SubmitOrderCommand{
		Quantity:             10,
		DestinationLatitude:  52.52,
		DestinationLongitude: 13.405,
	})

	require.NoError(t, err)
	assert.NotNil(t, dto)
}

func TestSubmitOrderSaveErrorAbortsTransaction(t *testing.T) {
	warehouseRepo := &fakeWarehouseRepo{
		listAllFn: func(context.Context) ([]*domain.Warehouse, error) {
			return []*domain.Warehouse{
				testWarehouse("WH-11111111", "Berlin", 52.52, 13.405, 100),
			}, nil
		},
	}
	orderRepo := &fakeOrderRepo{
		saveFn: func(context.Context, *domain.Order) error {
			return errors.New("write failed")
		},
	}
	publisher := &fakeEventPublisher{}
	service := newTestOrderService(warehouseRepo, orderRepo, publisher)

	_, err := service.SubmitOrder(context.Background(), SubmitOrderCommand{
		Quantity:             10,
		DestinationLatitude:  52.52,
		DestinationLongitude: 13.405,
	})

	require.Error(t, err)
	_, ok := domain.AsBusinessError(err)
	assert.False(t, ok)
	assert.Empty(t, publisher.published)
}

func TestGetOrderSuccess(t *testing.T) {
	order := domain.NewOrder(domain.OrderInput{
		Quantity:      10,
		DestLatitude:  52.52,
		DestLongitude: 13.405,
	}, 1500, 0, 12.5, []domain.Allocation{
		{WarehouseID: "WH-11111111", WarehouseName: "Berlin", Quantity: 10},
	})

	orderRepo := &fakeOrderRepo{
		findByIDFn: func(_ context.Context, orderID string) (*domain.Order, error) {
			if orderID == order.OrderID {
				return order, nil
			}
			return nil, nil
		},
	}
	service := newTestOrderService(&fakeWarehouseRepo{}, orderRepo, nil)

	dto, err := service.GetOrder(context.Background(), order.OrderID)
	require.NoError(t, err)
	assert.Equal(t, order.OrderID, dto.OrderID)
	assert.Equal(t, 1500.0, dto.TotalPrice)
	require.Len(t, dto.Allocations, 1)
	assert.Equal(t, "Berlin", dto.Allocations[0].WarehouseName)
}

func TestGetOrderNotFound(t *testing.T) {
	service := newTestOrderService(&fakeWarehouseRepo{}, &fakeOrderRepo{}, nil)

	_, err := service.GetOrder(context.Background(), "ORD-missing1")

	require.Error(t, err)
	var appErr *apperrors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, apperrors.CodeNotFound, appErr.Code)
}
