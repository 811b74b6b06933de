package application

import (
	"context"
	"fmt"

	"github.com/deviceorder/fulfillment-service/internal/domain"
	apperrors "github.com/deviceorder/fulfillment-service/pkg/errors"
	"github.com/deviceorder/fulfillment-service/pkg/logging"
)

// WarehouseService handles warehouse registration and stock management
type WarehouseService struct {
	warehouseRepo domain.WarehouseRepository
	logger        *logging.Logger
}

// NewWarehouseService creates a new warehouse service
func NewWarehouseService(warehouseRepo domain.WarehouseRepository, logger *logging.Logger) *WarehouseService {
	return &WarehouseService{
		warehouseRepo: warehouseRepo,
		logger:        logger,
	}
}

// CreateWarehouse registers a new warehouse with a unique name
func (s *WarehouseService) CreateWarehouse(ctx context.Context, cmd CreateWarehouseCommand) (*WarehouseDTO, error) {
	existing, err := s.warehouseRepo.FindByName(ctx, cmd.Name)
	if err != nil {
		return nil, fmt.Errorf("failed to check warehouse name: %w", err)
	}
	if existing != nil {
		return nil, apperrors.ErrConflict(fmt.Sprintf("warehouse with name '%s' already exists", cmd.Name))
	}

	warehouse, err := domain.NewWarehouse(cmd.Name, cmd.Latitude, cmd.Longitude, cmd.Stock)
	if err != nil {
		return nil, apperrors.ErrValidation(err.Error())
	}

	if err := s.warehouseRepo.Save(ctx, warehouse); err != nil {
		return nil, fmt.Errorf("failed to save warehouse: %w", err)
	}

	s.logger.WithFields(map[string]any{
		"warehouse_id": warehouse.WarehouseID,
		"name":         warehouse.Name,
		"stock":        warehouse.Stock,
	}).Info("Warehouse created")

	return ToWarehouseDTO(warehouse), nil
}

// ListWarehouses returns all warehouses in creation order
func (s *WarehouseService) ListWarehouses(ctx context.Context) ([]WarehouseDTO, error) {
	warehouses, err := s.warehouseRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list warehouses: %w", err)
	}
	return ToWarehouseDTOs(warehouses), nil
}

// SetStock replaces the stock level of an existing warehouse
func (s *WarehouseService) SetStock(ctx context.Context, warehouseID string, cmd SetStockCommand) (*WarehouseDTO, error) {
	if err := domain.ValidateStock(cmd.Stock); err != nil {
		return nil, apperrors.ErrValidation(err.Error())
	}

	warehouse, err := s.warehouseRepo.FindByID(ctx, warehouseID)
	if err != nil {
		return nil, fmt.Errorf("failed to find warehouse: %w", err)
	}
	if warehouse == nil {
		return nil, apperrors.ErrNotFoundWithID("Warehouse", warehouseID)
	}

	if err := s.warehouseRepo.SetStock(ctx, warehouseID, cmd.Stock); err != nil {
		return nil, fmt.Errorf("failed to update stock: %w", err)
	}

	warehouse.Stock = cmd.Stock
	s.logger.WithFields(map[string]any{
		"warehouse_id": warehouseID,
		"stock":        cmd.Stock,
	}).Info("Warehouse stock updated")

	return ToWarehouseDTO(warehouse), nil
}
