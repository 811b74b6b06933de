package application

import (
	"context"
	"errors"
	"fmt"

	"github.com/deviceorder/fulfillment-service/internal/domain"
	apperrors "github.com/deviceorder/fulfillment-service/pkg/errors"
	"github.com/deviceorder/fulfillment-service/pkg/logging"
)

// PricingProvider exposes the pricing configuration currently in effect.
// Implementations may reload the config at runtime; Current must return a
// consistent snapshot.
type PricingProvider interface {
	Current() domain.PricingConfig
}

// EventPublisher emits domain events after a successful commit
type EventPublisher interface {
	PublishOrderCreated(ctx context.Context, event *domain.OrderCreatedEvent) error
}

// OrderService handles order verification and submission use cases
type OrderService struct {
	warehouseRepo domain.WarehouseRepository
	orderRepo     domain.OrderRepository
	txRunner      domain.TransactionRunner
	pricing       PricingProvider
	publisher     EventPublisher
	logger        *logging.Logger
}

// NewOrderService creates a new order service. The publisher may be nil when
// event publishing is disabled.
func NewOrderService(
	warehouseRepo domain.WarehouseRepository,
	orderRepo domain.OrderRepository,
	txRunner domain.TransactionRunner,
	pricing PricingProvider,
	publisher EventPublisher,
	logger *logging.Logger,
) *OrderService {
	return &OrderService{
		warehouseRepo: warehouseRepo,
		orderRepo:     orderRepo,
		txRunner:      txRunner,
		pricing:       pricing,
		publisher:     publisher,
		logger:        logger,
	}
}

// VerifyOrder quotes an order without mutating any state. Business
// rejections and infrastructure failures both surface as an invalid
// verification result, never as an error.
func (s *OrderService) VerifyOrder(ctx context.Context, cmd VerifyOrderCommand) *VerificationDTO {
	cfg := s.pricing.Current()
	input := domain.OrderInput{
		Quantity:      cmd.Quantity,
		DestLatitude:  cmd.DestinationLatitude,
		DestLongitude: cmd.DestinationLongitude,
	}

	warehouses, err := s.warehouseRepo.ListAll(ctx)
	if err != nil {
		s.logger.WithError(err).Error("Failed to load warehouses for verification")
		return ToVerificationDTO(domain.VerificationResult{
			IsValid: false,
			Kind:    domain.RejectionUnknown,
			Reason:  domain.ReasonUnknownError,
		})
	}

	result := domain.VerifyOrder(input, warehouses, cfg)
	return ToVerificationDTO(result)
}

// SubmitOrder verifies the order, then atomically decrements warehouse
// stock and persists the order. Prices are fixed at verification time;
// the allocation is recomputed against the stock seen inside the
// transaction so concurrent submissions cannot oversell.
func (s *OrderService) SubmitOrder(ctx context.Context, cmd SubmitOrderCommand) (*OrderDTO, error) {
	cfg := s.pricing.Current()
	input := domain.OrderInput{
		Quantity:      cmd.Quantity,
		DestLatitude:  cmd.DestinationLatitude,
		DestLongitude: cmd.DestinationLongitude,
	}

	warehouses, err := s.warehouseRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load warehouses: %w", err)
	}

	verification := domain.VerifyOrder(input, warehouses, cfg)
	if !verification.IsValid {
		return nil, domain.NewBusinessError(verification.Kind, verification.Reason)
	}

	var order *domain.Order
	err = s.txRunner.Run(ctx, func(txCtx context.Context) error {
		fresh, err := s.warehouseRepo.ListAll(txCtx)
		if err != nil {
			return fmt.Errorf("failed to load warehouses: %w", err)
		}

		plan := domain.AllocateOrder(input.Quantity, input.DestLatitude, input.DestLongitude,
			fresh, cfg.DeviceWeightKg, cfg.ShippingRatePerKgKm)
		if !plan.StockSufficient {
			return domain.NewBusinessError(domain.RejectionInsufficientStock, domain.ReasonInsufficientStock)
		}

		for _, alloc := range plan.Allocations {
			if err := s.warehouseRepo.DecrementStock(txCtx, alloc.WarehouseID, alloc.Quantity); err != nil {
				if errors.Is(err, domain.ErrStockConflict) {
					return domain.NewBusinessError(domain.RejectionStockRace,
						"warehouse stock changed during submission")
				}
				return fmt.Errorf("failed to decrement stock for warehouse %s: %w", alloc.WarehouseID, err)
			}
		}

		order = domain.NewOrder(input, verification.TotalPrice, verification.Discount,
			verification.ShippingCost, plan.Allocations)

		if err := s.orderRepo.Save(txCtx, order); err != nil {
			return fmt.Errorf("failed to save order: %w", err)
		}
		return nil
	})
	if err != nil {
		if bizErr, ok := domain.AsBusinessError(err); ok {
			s.logger.WithFields(map[string]any{
				"kind":   string(bizErr.Kind),
				"reason": bizErr.Reason,
			}).Info("Order submission rejected")
		} else {
			s.logger.WithError(err).Error("Order submission failed")
		}
		return nil, err
	}

	s.publishOrderCreated(ctx, order)

	s.logger.WithFields(map[string]any{
		"order_id":    order.OrderID,
		"quantity":    order.Quantity,
		"total_price": order.TotalPrice,
		"warehouses":  len(order.Allocations),
	}).Info("Order submitted")

	return ToOrderDTO(order), nil
}

// GetOrder fetches a persisted order by its business identifier
func (s *OrderService) GetOrder(ctx context.Context, orderID string) (*OrderDTO, error) {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to find order: %w", err)
	}
	if order == nil {
		return nil, apperrors.ErrNotFoundWithID("Order", orderID)
	}
	return ToOrderDTO(order), nil
}

// publishOrderCreated is best-effort: the order is already committed, so a
// publish failure is logged and swallowed.
func (s *OrderService) publishOrderCreated(ctx context.Context, order *domain.Order) {
	if s.publisher == nil {
		return
	}
	event := domain.NewOrderCreatedEvent(order)
	if err := s.publisher.PublishOrderCreated(ctx, event); err != nil {
		s.logger.WithError(err).WithFields(map[string]any{
			"order_id": order.OrderID,
		}).Warn("Failed to publish order created event")
	}
}
