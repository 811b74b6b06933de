package application

import "time"

// VerificationDTO is the API representation of a quote
type VerificationDTO struct {
	IsValid      bool    `json:"isValid"`
	Reason       string  `json:"reason,omitempty"`
	TotalPrice   float64 `json:"totalPrice"`
	Discount     float64 `json:"discount"`
	ShippingCost float64 `json:"shippingCost"`
}

// AllocationDTO is one warehouse leg of a fulfilled order
type AllocationDTO struct {
	WarehouseID   string `json:"warehouseId"`
	WarehouseName string `json:"warehouseName"`
	Quantity      int64  `json:"quantity"`
}

// OrderDTO is the API representation of a persisted order
type OrderDTO struct {
	OrderID              string          `json:"orderId"`
	Quantity             int64           `json:"quantity"`
	DestinationLatitude  float64         `json:"destinationLatitude"`
	DestinationLongitude float64         `json:"destinationLongitude"`
	TotalPrice           float64         `json:"totalPrice"`
	Discount             float64         `json:"discount"`
	ShippingCost         float64         `json:"shippingCost"`
	Allocations          []AllocationDTO `json:"allocations"`
	CreatedAt            time.Time       `json:"createdAt"`
}

// WarehouseDTO is the API representation of a warehouse
type WarehouseDTO struct {
	WarehouseID string    `json:"warehouseId"`
	Name        string    `json:"name"`
	Latitude    float64   `json:"latitude"`
	Longitude   float64   `json:"longitude"`
	Stock       int64     `json:"stock"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
