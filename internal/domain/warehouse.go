package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Errors for the warehouse aggregate
var (
	ErrEmptyWarehouseName = errors.New("warehouse name is required")
	ErrInvalidLatitude    = errors.New("latitude must be between -90 and 90")
	ErrInvalidLongitude   = errors.New("longitude must be between -180 and 180")
	ErrNegativeStock      = errors.New("stock must not be negative")
	ErrStockCapExceeded   = fmt.Errorf("stock must not exceed %d units", MaxWarehouseStock)
)

// MaxWarehouseStock caps the stock a single warehouse may hold.
const MaxWarehouseStock = 1_000_000

// Warehouse represents a stocked fulfillment location
type Warehouse struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	WarehouseID string             `bson:"warehouseId" json:"warehouseId"`
	Name        string             `bson:"name" json:"name"`
	Latitude    float64            `bson:"latitude" json:"latitude"`
	Longitude   float64            `bson:"longitude" json:"longitude"`
	Stock       int64              `bson:"stock" json:"stock"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// NewWarehouse creates a new warehouse after validating its fields
func NewWarehouse(name string, latitude, longitude float64, stock int64) (*Warehouse, error) {
	if name == "" {
		return nil, ErrEmptyWarehouseName
	}
	if err := ValidateCoordinates(latitude, longitude); err != nil {
		return nil, err
	}
	if err := ValidateStock(stock); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	return &Warehouse{
		ID:          primitive.NewObjectID(),
		WarehouseID: fmt.Sprintf("WH-%s", uuid.New().String()[:8]),
		Name:        name,
		Latitude:    latitude,
		Longitude:   longitude,
		Stock:       stock,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// ValidateCoordinates checks that a coordinate pair is within range
func ValidateCoordinates(latitude, longitude float64) error {
	if latitude < -90 || latitude > 90 {
		return ErrInvalidLatitude
	}
	if longitude < -180 || longitude > 180 {
		return ErrInvalidLongitude
	}
	return nil
}

// ValidateStock checks that a stock level is within the allowed bounds
func ValidateStock(stock int64) error {
	if stock < 0 {
		return ErrNegativeStock
	}
	if stock > MaxWarehouseStock {
		return ErrStockCapExceeded
	}
	return nil
}

// TotalStock sums the stock across a warehouse snapshot
func TotalStock(warehouses []*Warehouse) int64 {
	var total int64
	for _, w := range warehouses {
		total += w.Stock
	}
	return total
}
