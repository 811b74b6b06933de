package domain

import "time"

// DomainEvent is implemented by all domain events
type DomainEvent interface {
	EventType() string
	OccurredAt() time.Time
}

// OrderCreatedEvent is emitted after an order commits
type OrderCreatedEvent struct {
	OrderID      string       `json:"orderId"`
	Quantity     int64        `json:"quantity"`
	TotalPrice   float64      `json:"totalPrice"`
	Discount     float64      `json:"discount"`
	ShippingCost float64      `json:"shippingCost"`
	Allocations  []Allocation `json:"allocations"`
	Timestamp    time.Time    `json:"timestamp"`
}

// NewOrderCreatedEvent creates an event from a persisted order
func NewOrderCreatedEvent(order *Order) *OrderCreatedEvent {
	return &OrderCreatedEvent{
		OrderID:      order.OrderID,
		Quantity:     order.Quantity,
		TotalPrice:   order.TotalPrice,
		Discount:     order.Discount,
		ShippingCost: order.ShippingCost,
		Allocations:  order.Allocations,
		Timestamp:    time.Now().UTC(),
	}
}

// EventType returns the event type identifier
func (e *OrderCreatedEvent) EventType() string {
	return "fulfillment.order.created"
}

// OccurredAt returns when the event occurred
func (e *OrderCreatedEvent) OccurredAt() time.Time {
	return e.Timestamp
}
