package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func standardTiers() []DiscountTier {
	return []DiscountTier{
		{MinQuantity: 25, Rate: 0.05},
		{MinQuantity: 50, Rate: 0.10},
		{MinQuantity: 100, Rate: 0.15},
		{MinQuantity: 250, Rate: 0.20},
	}
}

func TestDiscountRateSelectsMaxQualifyingTier(t *testing.T) {
	policy := NewPricingPolicy(PricingConfig{
		UnitPrice:     150,
		DiscountTiers: standardTiers(),
	})

	assert.Equal(t, 0.0, policy.DiscountRate(1))
	assert.Equal(t, 0.0, policy.DiscountRate(24))
	assert.Equal(t, 0.05, policy.DiscountRate(25))
	assert.Equal(t, 0.05, policy.DiscountRate(49))
	assert.Equal(t, 0.10, policy.DiscountRate(50))
	assert.Equal(t, 0.15, policy.DiscountRate(100))
	assert.Equal(t, 0.20, policy.DiscountRate(250))
	assert.Equal(t, 0.20, policy.DiscountRate(10000))
}

func TestDiscountRateIgnoresTierOrder(t *testing.T) {
	// Same tiers shuffled; the best qualifying rate must still win.
	policy := NewPricingPolicy(PricingConfig{
		UnitPrice: 150,
		DiscountTiers: []DiscountTier{
			{MinQuantity: 250, Rate: 0.20},
			{MinQuantity: 25, Rate: 0.05},
			{MinQuantity: 100, Rate: 0.15},
			{MinQuantity: 50, Rate: 0.10},
		},
	})

	assert.Equal(t, 0.20, policy.DiscountRate(300))
	assert.Equal(t, 0.10, policy.DiscountRate(75))
}

func TestDiscountRateMonotonicallyNonDecreasing(t *testing.T) {
	policy := NewPricingPolicy(PricingConfig{
		UnitPrice:     150,
		DiscountTiers: standardTiers(),
	})

	prev := 0.0
	for q := int64(1); q <= 500; q++ {
		rate := policy.DiscountRate(q)
		assert.GreaterOrEqual(t, rate, prev, "rate dropped at quantity %d", q)
		prev = rate
	}
}

func TestPriceAppliesVolumeDiscount(t *testing.T) {
	policy := NewPricingPolicy(PricingConfig{
		UnitPrice:     150,
		DiscountTiers: standardTiers(),
	})

	// 300 units at 150 gross 45000, 20% tier discounts 9000
	quote := policy.Price(300)
	assert.Equal(t, 9000.0, quote.Discount)
	assert.Equal(t, 36000.0, quote.TotalPrice)
}

func TestPriceEqualsGrossMinusDiscount(t *testing.T) {
	policy := NewPricingPolicy(PricingConfig{
		UnitPrice:     150,
		DiscountTiers: standardTiers(),
	})

	for _, q := range []int64{1, 24, 25, 49, 50, 99, 100, 249, 250, 300, 10000} {
		quote := policy.Price(q)
		gross := float64(q) * 150
		assert.Equal(t, gross-quote.Discount, quote.TotalPrice, "quantity %d", q)
		assert.Equal(t, gross*policy.DiscountRate(q), quote.Discount, "quantity %d", q)
	}
}

func TestPriceBelowFirstTier(t *testing.T) {
	policy := NewPricingPolicy(PricingConfig{
		UnitPrice:     150,
		DiscountTiers: standardTiers(),
	})

	quote := policy.Price(2)
	assert.Equal(t, 0.0, quote.Discount)
	assert.Equal(t, 300.0, quote.TotalPrice)
}

func TestPricingConfigValidate(t *testing.T) {
	valid := PricingConfig{
		UnitPrice:            150,
		DeviceWeightKg:       0.2,
		ShippingRatePerKgKm:  0.01,
		ShippingCostCapRatio: 0.15,
		DiscountTiers:        standardTiers(),
	}
	require.NoError(t, valid.Validate())

	cases := []struct {
		name   string
		mutate func(*PricingConfig)
		want   error
	}{
		{"zero unit price", func(c *PricingConfig) { c.UnitPrice = 0 }, ErrInvalidUnitPrice},
		{"negative weight", func(c *PricingConfig) { c.DeviceWeightKg = -1 }, ErrInvalidDeviceWeight},
		{"zero shipping rate", func(c *PricingConfig) { c.ShippingRatePerKgKm = 0 }, ErrInvalidShippingRate},
		{"cap above one", func(c *PricingConfig) { c.ShippingCostCapRatio = 1.5 }, ErrInvalidShippingCap},
		{"zero cap", func(c *PricingConfig) { c.ShippingCostCapRatio = 0 }, ErrInvalidShippingCap},
		{"bad tier", func(c *PricingConfig) { c.DiscountTiers = []DiscountTier{{MinQuantity: 0, Rate: 0.5}} }, ErrInvalidDiscountTier},
		{"tier rate at one", func(c *PricingConfig) { c.DiscountTiers = []DiscountTier{{MinQuantity: 10, Rate: 1}} }, ErrInvalidDiscountTier},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := valid
			cfg.DiscountTiers = standardTiers()
			tc.mutate(&cfg)
			assert.ErrorIs(t, cfg.Validate(), tc.want)
		})
	}
}
