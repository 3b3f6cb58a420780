// Package pricing computes line prices and order totals. The cart preview and
// checkout both go through Totals so the numbers always agree.
package pricing

import (
	"techshop/domain"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// UnitPrice is the current selling price of a product or one of its variants.
func UnitPrice(product domain.Product, variant *domain.ProductVariant) decimal.Decimal {
	if variant != nil {
		return variant.UnitPrice(product)
	}
	return product.DiscountedPrice()
}

func LineTotal(unit decimal.Decimal, quantity int) decimal.Decimal {
	return unit.Mul(decimal.NewFromInt(int64(quantity))).Round(2)
}

// Totals applies tax and shipping from the site configuration to a subtotal.
// Shipping is charged only on non-empty orders below the free threshold.
func Totals(subtotal decimal.Decimal, cfg domain.SiteConfiguration) domain.Totals {
	subtotal = subtotal.Round(2)

	tax := decimal.Zero
	if cfg.TaxEnabled {
		tax = subtotal.Mul(cfg.TaxRate).Div(hundred).Round(2)
	}

	shipping := decimal.Zero
	if subtotal.IsPositive() && subtotal.LessThan(cfg.FreeShippingThreshold) {
		shipping = cfg.DefaultShippingCost.Round(2)
	}

	return domain.Totals{
		Subtotal:     subtotal,
		TaxAmount:    tax,
		ShippingCost: shipping,
		TotalAmount:  subtotal.Add(tax).Add(shipping),
		Currency:     cfg.Currency,
	}
}
