// Package pricing holds the money math for carts.
package pricing

import (
	"github.com/milletmart/milletmart-backend/pkg/config"
	"github.com/milletmart/milletmart-backend/pkg/db/models"
	"github.com/shopspring/decimal"
)

// Rules carries the parsed shipping and tax knobs applied to a cart.
type Rules struct {
	FreeShippingThreshold decimal.Decimal
	ShippingFee           decimal.Decimal
	TaxRate               decimal.Decimal
}

// RulesFromConfig builds pricing rules from the loaded configuration.
func RulesFromConfig(cfg config.PricingConfig) Rules {
	return Rules{
		FreeShippingThreshold: cfg.Threshold(),
		ShippingFee:           cfg.Fee(),
		TaxRate:               cfg.Rate(),
	}
}

// Line is one cart row reduced to what the summary needs.
type Line struct {
	UnitPrice decimal.Decimal
	Quantity  int
}

// Summary is the priced cart breakdown returned to clients.
type Summary struct {
	Subtotal decimal.Decimal
	Shipping decimal.Decimal
	Tax      decimal.Decimal
	Total    decimal.Decimal
}

// ResolveUnitPrice returns the price charged for one unit of the product.
// A selected weight that has an entry in the product's weight price map
// wins over the base price; anything else falls back to the base price.
func ResolveUnitPrice(product *models.Product, selectedWeight string) decimal.Decimal {
	if product == nil {
		return decimal.Zero
	}
	if selectedWeight != "" {
		if price, ok := product.WeightPrices.Resolve(selectedWeight); ok {
			return price
		}
	}
	return product.Price
}

// Summarize totals the lines under the given rules. An empty cart yields an
// all-zero summary with no shipping fee. Tax is rounded to two places.
func Summarize(lines []Line, rules Rules) Summary {
	subtotal := decimal.Zero
	for _, line := range lines {
		if line.Quantity <= 0 {
			continue
		}
		subtotal = subtotal.Add(line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}

	shipping := decimal.Zero
	if subtotal.IsPositive() && subtotal.LessThan(rules.FreeShippingThreshold) {
		shipping = rules.ShippingFee
	}

	tax := subtotal.Mul(rules.TaxRate).Round(2)

	return Summary{
		Subtotal: subtotal,
		Shipping: shipping,
		Tax:      tax,
		Total:    subtotal.Add(shipping).Add(tax),
	}
}
