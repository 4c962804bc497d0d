package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/javajoker/storefront-api/internal/config"
	"github.com/javajoker/storefront-api/internal/models"
)

func defaultPricing() Pricing {
	return NewPricing(config.PricingConfig{TaxRate: 0.10, FreeShippingThreshold: 100, FlatShippingCost: 10})
}

func TestQuoteChargesShippingAtOrBelowThreshold(t *testing.T) {
	quote := defaultPricing().Quote([]PriceLine{{Price: 10, Quantity: 2}, {Price: 5, Quantity: 1}})

	assert.Equal(t, 25.0, quote.Subtotal)
	assert.Equal(t, 2.5, quote.Tax)
	assert.Equal(t, 10.0, quote.Shipping)
	assert.Equal(t, 37.5, quote.Total)

	atThreshold := defaultPricing().Quote([]PriceLine{{Price: 100, Quantity: 1}})
	assert.Equal(t, 10.0, atThreshold.Shipping)
	assert.Equal(t, 120.0, atThreshold.Total)
}

func TestQuoteFreeShippingAboveThreshold(t *testing.T) {
	quote := defaultPricing().Quote([]PriceLine{{Price: 150, Quantity: 1}})

	assert.Equal(t, 150.0, quote.Subtotal)
	assert.Equal(t, 15.0, quote.Tax)
	assert.Equal(t, 0.0, quote.Shipping)
	assert.Equal(t, 165.0, quote.Total)
}

func TestQuoteAvoidsFloatDrift(t *testing.T) {
	quote := defaultPricing().Quote([]PriceLine{{Price: 0.1, Quantity: 3}, {Price: 0.2, Quantity: 1}})

	assert.Equal(t, 0.5, quote.Subtotal)
	assert.Equal(t, 0.05, quote.Tax)
	assert.Equal(t, 10.55, quote.Total)
}

func TestRecalculateCart(t *testing.T) {
	cart := &models.Cart{Items: []models.CartItem{
		{Quantity: 2, Price: 19.99},
		{Quantity: 1, Price: 5.01},
	}}

	RecalculateCart(cart)
	assert.Equal(t, 3, cart.TotalItems)
	assert.Equal(t, 44.99, cart.TotalPrice)

	cart.Items = nil
	RecalculateCart(cart)
	assert.Equal(t, 0, cart.TotalItems)
	assert.Equal(t, 0.0, cart.TotalPrice)
}

func TestToCents(t *testing.T) {
	assert.Equal(t, int64(3750), toCents(37.5))
	assert.Equal(t, int64(1999), toCents(19.99))
}
