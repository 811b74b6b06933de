package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Errors for order input validation
var (
	ErrNonPositiveQuantity = errors.New("quantity must be a positive integer")
	ErrQuantityTooLarge    = fmt.Errorf("quantity must not exceed %d", MaxOrderQuantity)
)

// MaxOrderQuantity bounds a single bulk order.
const MaxOrderQuantity = 10_000

// OrderInput is the immutable request to price or place an order
type OrderInput struct {
	Quantity      int64   `json:"quantity"`
	DestLatitude  float64 `json:"destinationLatitude"`
	DestLongitude float64 `json:"destinationLongitude"`
}

// Validate checks the structural invariants of the input. It returns the
// first violated constraint so callers can surface a field-level reason.
func (in OrderInput) Validate() error {
	if in.Quantity <= 0 {
		return ErrNonPositiveQuantity
	}
	if in.Quantity > MaxOrderQuantity {
		return ErrQuantityTooLarge
	}
	return ValidateCoordinates(in.DestLatitude, in.DestLongitude)
}

// Allocation assigns part of an order's quantity to one warehouse
type Allocation struct {
	WarehouseID   string `bson:"warehouseId" json:"warehouseId"`
	WarehouseName string `bson:"warehouseName" json:"warehouseName"`
	Quantity      int64  `bson:"quantity" json:"quantity"`
}

// Order is a fulfilled bulk order with its realized allocation
type Order struct {
	ID      primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OrderID string             `bson:"orderId" json:"orderId"`

	Quantity      int64   `bson:"quantity" json:"quantity"`
	DestLatitude  float64 `bson:"destinationLatitude" json:"destinationLatitude"`
	DestLongitude float64 `bson:"destinationLongitude" json:"destinationLongitude"`

	TotalPrice   float64 `bson:"totalPrice" json:"totalPrice"`
	Discount     float64 `bson:"discount" json:"discount"`
	ShippingCost float64 `bson:"shippingCost" json:"shippingCost"`

	Allocations []Allocation `bson:"allocations" json:"allocations"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
}

// NewOrder creates an order from its input, the verification-time prices
// and the commit-time allocation. Pricing and allocation are decoupled on
// purpose: the price is fixed when the order was quoted, the physical
// split is fixed when stock is actually reserved.
func NewOrder(input OrderInput, totalPrice, discount, shippingCost float64, allocations []Allocation) *Order {
	return &Order{
		ID:            primitive.NewObjectID(),
		OrderID:       fmt.Sprintf("ORD-%s", uuid.New().String()[:8]),
		Quantity:      input.Quantity,
		DestLatitude:  input.DestLatitude,
		DestLongitude: input.DestLongitude,
		TotalPrice:    totalPrice,
		Discount:      discount,
		ShippingCost:  shippingCost,
		Allocations:   allocations,
		CreatedAt:     time.Now().UTC(),
	}
}
