package domain

import (
	"fmt"
	"math"
)

// RejectionKind classifies why an order cannot be fulfilled
type RejectionKind string

const (
	RejectionNone              RejectionKind = ""
	RejectionInvalidInput      RejectionKind = "invalid_input"
	RejectionNoWarehouses      RejectionKind = "no_warehouses"
	RejectionInsufficientStock RejectionKind = "insufficient_stock"
	RejectionShippingCap       RejectionKind = "shipping_cap_exceeded"
	RejectionStockRace         RejectionKind = "stock_race"
	RejectionUnknown           RejectionKind = "unknown"
)

// Rejection reason strings surfaced to callers
const (
	ReasonNoWarehouses      = "no warehouses available"
	ReasonInsufficientStock = "not enough stock in all warehouses"
	ReasonUnknownError      = "unknown error"
)

// VerificationResult is the priced, validity-checked quote for an order.
// When the order is rejected all monetary fields are zero and Reason
// carries a human-readable explanation.
type VerificationResult struct {
	IsValid      bool          `json:"isValid"`
	Reason       string        `json:"reason,omitempty"`
	Kind         RejectionKind `json:"-"`
	TotalPrice   float64       `json:"totalPrice"`
	Discount     float64       `json:"discount"`
	ShippingCost float64       `json:"shippingCost"`
}

func rejected(kind RejectionKind, reason string) VerificationResult {
	return VerificationResult{IsValid: false, Kind: kind, Reason: reason}
}

// VerifyOrder produces a quote for an order against a warehouse snapshot
// without mutating anything. The checks short-circuit on first failure:
// structural input validation, empty snapshot, aggregate stock, then the
// shipping-cost cap against the discounted total.
//
// The cap check only runs when the total price is positive; a zero-price
// order accepts any shipping cost.
func VerifyOrder(input OrderInput, warehouses []*Warehouse, config PricingConfig) VerificationResult {
	if err := input.Validate(); err != nil {
		return rejected(RejectionInvalidInput, err.Error())
	}

	if len(warehouses) == 0 {
		return rejected(RejectionNoWarehouses, ReasonNoWarehouses)
	}

	plan := AllocateOrder(input.Quantity, input.DestLatitude, input.DestLongitude,
		warehouses, config.DeviceWeightKg, config.ShippingRatePerKgKm)
	if !plan.StockSufficient {
		return rejected(RejectionInsufficientStock, ReasonInsufficientStock)
	}

	quote := NewPricingPolicy(config).Price(input.Quantity)
	shippingCost := roundToCents(plan.TotalShippingCost)

	if quote.TotalPrice > 0 && shippingCost > config.ShippingCostCapRatio*quote.TotalPrice {
		reason := fmt.Sprintf("shipping cost exceeds %.0f%% of order amount",
			config.ShippingCostCapRatio*100)
		return rejected(RejectionShippingCap, reason)
	}

	return VerificationResult{
		IsValid:      true,
		TotalPrice:   quote.TotalPrice,
		Discount:     quote.Discount,
		ShippingCost: shippingCost,
	}
}

func roundToCents(v float64) float64 {
	return math.Round(v*100) / 100
}
