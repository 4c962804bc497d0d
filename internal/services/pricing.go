// internal/services/pricing.go
package services

import (
	"github.com/shopspring/decimal"

	"github.com/javajoker/storefront-api/internal/config"
	"github.com/javajoker/storefront-api/internal/models"
)

// Pricing computes order totals in decimal arithmetic and rounds to cents.
type Pricing struct {
	taxRate               decimal.Decimal
	freeShippingThreshold decimal.Decimal
	flatShippingCost      decimal.Decimal
}

type Quote struct {
	Subtotal float64
	Tax      float64
	Shipping float64
	Total    float64
}

type PriceLine struct {
	Price    float64
	Quantity int
}

func NewPricing(cfg config.PricingConfig) Pricing {
	return Pricing{
		taxRate:               decimal.NewFromFloat(cfg.TaxRate),
		freeShippingThreshold: decimal.NewFromFloat(cfg.FreeShippingThreshold),
		flatShippingCost:      decimal.NewFromFloat(cfg.FlatShippingCost),
	}
}

// Quote prices the lines: tax on the subtotal, shipping free strictly above the threshold.
func (p Pricing) Quote(lines []PriceLine) Quote {
	subtotal := sumLines(lines)
	tax := subtotal.Mul(p.taxRate).Round(2)

	shipping := p.flatShippingCost
	if subtotal.GreaterThan(p.freeShippingThreshold) {
		shipping = decimal.Zero
	}

	total := subtotal.Add(tax).Add(shipping)

	return Quote{
		Subtotal: subtotal.InexactFloat64(),
		Tax:      tax.InexactFloat64(),
		Shipping: shipping.InexactFloat64(),
		Total:    total.Round(2).InexactFloat64(),
	}
}

func sumLines(lines []PriceLine) decimal.Decimal {
	subtotal := decimal.Zero
	for _, line := range lines {
		subtotal = subtotal.Add(decimal.NewFromFloat(line.Price).Mul(decimal.NewFromInt(int64(line.Quantity))))
	}
	return subtotal.Round(2)
}

// RecalculateCart recomputes the cart totals from its items.
func RecalculateCart(cart *models.Cart) {
	totalItems := 0
	lines := make([]PriceLine, 0, len(cart.Items))
	for _, item := range cart.Items {
		totalItems += item.Quantity
		lines = append(lines, PriceLine{Price: item.Price, Quantity: item.Quantity})
	}
	cart.TotalItems = totalItems
	cart.TotalPrice = sumLines(lines).InexactFloat64()
}

// toCents converts a currency amount to the smallest unit for the payment gateway.
func toCents(amount float64) int64 {
	return decimal.NewFromFloat(amount).Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}
