package domain

import "errors"

// Errors for pricing configuration
var (
	ErrInvalidUnitPrice    = errors.New("unit price must be positive")
	ErrInvalidDeviceWeight = errors.New("device weight must be positive")
	ErrInvalidShippingRate = errors.New("shipping rate must be positive")
	ErrInvalidShippingCap  = errors.New("shipping cost cap must be in (0, 1]")
	ErrInvalidDiscountTier = errors.New("discount tiers must have positive thresholds and rates in [0, 1)")
)

// DiscountTier grants a discount rate to orders meeting a minimum quantity
type DiscountTier struct {
	MinQuantity int64   `bson:"minQuantity" json:"minQuantity" yaml:"minQuantity"`
	Rate        float64 `bson:"rate" json:"rate" yaml:"rate"`
}

// PricingConfig holds the device price, shipping parameters and discount
// tiers used to quote an order. It is treated as an immutable value:
// callers receive a fresh copy per quote and never mutate it.
type PricingConfig struct {
	UnitPrice            float64        `yaml:"unitPrice"`
	DeviceWeightKg       float64        `yaml:"deviceWeightKg"`
	ShippingRatePerKgKm  float64        `yaml:"shippingRatePerKgKm"`
	ShippingCostCapRatio float64        `yaml:"shippingCostCapRatio"`
	DiscountTiers        []DiscountTier `yaml:"discountTiers"`
}

// Validate checks the configuration invariants
func (c PricingConfig) Validate() error {
	if c.UnitPrice <= 0 {
		return ErrInvalidUnitPrice
	}
	if c.DeviceWeightKg <= 0 {
		return ErrInvalidDeviceWeight
	}
	if c.ShippingRatePerKgKm <= 0 {
		return ErrInvalidShippingRate
	}
	if c.ShippingCostCapRatio <= 0 || c.ShippingCostCapRatio > 1 {
		return ErrInvalidShippingCap
	}
	for _, tier := range c.DiscountTiers {
		if tier.MinQuantity <= 0 || tier.Rate < 0 || tier.Rate >= 1 {
			return ErrInvalidDiscountTier
		}
	}
	return nil
}

// Quote is the priced outcome for an order quantity
type Quote struct {
	TotalPrice float64
	Discount   float64
}

// PricingPolicy resolves volume discounts and prices order quantities
// against a pricing configuration.
type PricingPolicy struct {
	config PricingConfig
}

// NewPricingPolicy creates a pricing policy for a configuration snapshot
func NewPricingPolicy(config PricingConfig) *PricingPolicy {
	return &PricingPolicy{config: config}
}

// DiscountRate returns the best discount rate among all tiers whose
// minimum quantity the order meets. Tiers need not be sorted; every
// qualifying tier is considered and the maximum rate wins.
func (p *PricingPolicy) DiscountRate(quantity int64) float64 {
	var best float64
	for _, tier := range p.config.DiscountTiers {
		if quantity >= tier.MinQuantity && tier.Rate > best {
			best = tier.Rate
		}
	}
	return best
}

// Price computes the discount and discounted total for a quantity
func (p *PricingPolicy) Price(quantity int64) Quote {
	rate := p.DiscountRate(quantity)
	gross := float64(quantity) * p.config.UnitPrice
	discount := gross * rate

	return Quote{
		TotalPrice: gross - discount,
		Discount:   discount,
	}
}
