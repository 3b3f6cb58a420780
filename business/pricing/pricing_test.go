//go:build !integration

package pricing

import (
	"testing"

	"techshop/domain"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestTotalsBelowFreeShipping(t *testing.T) {
	cfg := domain.DefaultSiteConfiguration()

	got := Totals(decimal.RequireFromString("40.00"), cfg)

	assert.Equal(t, "40.00", got.Subtotal.StringFixed(2))
	assert.Equal(t, "3.20", got.TaxAmount.StringFixed(2))
	assert.Equal(t, "5.99", got.ShippingCost.StringFixed(2))
	assert.Equal(t, "49.19", got.TotalAmount.StringFixed(2))
	assert.Equal(t, "USD", got.Currency)
}

func TestTotalsFreeShippingAtThreshold(t *testing.T) {
	cfg := domain.DefaultSiteConfiguration()

	got := Totals(decimal.NewFromInt(50), cfg)

	assert.True(t, got.ShippingCost.IsZero())
	assert.Equal(t, "54.00", got.TotalAmount.StringFixed(2))
}

func TestTotalsTaxDisabled(t *testing.T) {
	cfg := domain.DefaultSiteConfiguration()
	cfg.TaxEnabled = false

	got := Totals(decimal.NewFromInt(100), cfg)

	assert.True(t, got.TaxAmount.IsZero())
	assert.Equal(t, "100.00", got.TotalAmount.StringFixed(2))
}

func TestTotalsEmpty(t *testing.T) {
	got := Totals(decimal.Zero, domain.DefaultSiteConfiguration())
	assert.True(t, got.TotalAmount.IsZero())
}

func TestUnitPrice(t *testing.T) {
	p := domain.Product{Price: decimal.NewFromInt(100), DiscountPercentage: decimal.NewFromInt(25)}
	v := &domain.ProductVariant{PriceAdjustment: decimal.NewFromInt(5)}

	assert.Equal(t, "75.00", UnitPrice(p, nil).StringFixed(2))
	assert.Equal(t, "80.00", UnitPrice(p, v).StringFixed(2))
	assert.Equal(t, "240.00", LineTotal(UnitPrice(p, v), 3).StringFixed(2))
}
