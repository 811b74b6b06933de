package application

import "github.com/deviceorder/fulfillment-service/internal/domain"

// ToVerificationDTO converts a domain verification result to a DTO
func ToVerificationDTO(result domain.VerificationResult) *VerificationDTO {
	return &VerificationDTO{
		IsValid:      result.IsValid,
		Reason:       result.Reason,
		TotalPrice:   result.TotalPrice,
		Discount:     result.Discount,
		ShippingCost: result.ShippingCost,
	}
}

// ToOrderDTO converts a domain order to a DTO
func ToOrderDTO(order *domain.Order) *OrderDTO {
	allocations := make([]AllocationDTO, len(order.Allocations))
	for i, a := range order.Allocations {
		allocations[i] = AllocationDTO{
			WarehouseID:   a.WarehouseID,
			WarehouseName: a.WarehouseName,
			Quantity:      a.Quantity,
		}
	}

	return &OrderDTO{
		OrderID:              order.OrderID,
		Quantity:             order.Quantity,
		DestinationLatitude:  order.DestLatitude,
		DestinationLongitude: order.DestLongitude,
		TotalPrice:           order.TotalPrice,
		Discount:             order.Discount,
		ShippingCost:         order.ShippingCost,
		Allocations:          allocations,
		CreatedAt:            order.CreatedAt,
	}
}

// ToWarehouseDTO converts a domain warehouse to a DTO
func ToWarehouseDTO(warehouse *domain.Warehouse) *WarehouseDTO {
	return &WarehouseDTO{
		WarehouseID: warehouse.WarehouseID,
		Name:        warehouse.Name,
		Latitude:    warehouse.Latitude,
		Longitude:   warehouse.Longitude,
		Stock:       warehouse.Stock,
		CreatedAt:   warehouse.CreatedAt,
		UpdatedAt:   warehouse.UpdatedAt,
	}
}

// ToWarehouseDTOs converts a warehouse snapshot to DTOs
func ToWarehouseDTOs(warehouses []*domain.Warehouse) []WarehouseDTO {
	dtos := make([]WarehouseDTO, len(warehouses))
	for i, w := range warehouses {
		dtos[i] = *ToWarehouseDTO(w)
	}
	return dtos
}
