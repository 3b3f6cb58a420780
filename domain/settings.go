package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// SiteConfiguration is a single-row table. Rows are never created implicitly;
// readers fall back to DefaultSiteConfiguration.
type SiteConfiguration struct {
	ID                      uint            `gorm:"primaryKey" json:"id"`
	SiteName                string          `gorm:"column:site_name;type:varchar(200);not null" json:"site_name"`
	Currency                string          `gorm:"column:currency;type:varchar(10);not null" json:"currency"`
	CurrencySymbol          string          `gorm:"column:currency_symbol;type:varchar(10);not null" json:"currency_symbol"`
	TaxEnabled              bool            `gorm:"column:tax_enabled;not null" json:"tax_enabled"`
	TaxRate                 decimal.Decimal `gorm:"column:tax_rate;type:decimal(5,2);not null" json:"tax_rate"`
	FreeShippingThreshold   decimal.Decimal `gorm:"column:free_shipping_threshold;type:decimal(12,2);not null" json:"free_shipping_threshold"`
	DefaultShippingCost     decimal.Decimal `gorm:"column:default_shipping_cost;type:decimal(12,2);not null" json:"default_shipping_cost"`
	LowStockThreshold       int             `gorm:"column:low_stock_threshold;not null" json:"low_stock_threshold"`
	NotifyNewOrder          bool            `gorm:"column:notify_new_order;not null" json:"notify_new_order"`
	NotifyLowStock          bool            `gorm:"column:notify_low_stock;not null" json:"notify_low_stock"`
	NotifyOrderStatusChange bool            `gorm:"column:notify_order_status_change;not null" json:"notify_order_status_change"`
	AdminEmail              string          `gorm:"column:admin_email;type:varchar(200)" json:"admin_email"`
	UpdatedAt               time.Time       `gorm:"column:updated_at" json:"updated_at"`
}

func (SiteConfiguration) TableName() string {
	return "site_configurations"
}

func DefaultSiteConfiguration() SiteConfiguration {
	return SiteConfiguration{
		SiteName:                "TechShop",
		Currency:                "USD",
		CurrencySymbol:          "$",
		TaxEnabled:              true,
		TaxRate:                 decimal.NewFromInt(8),
		FreeShippingThreshold:   decimal.NewFromInt(50),
		DefaultShippingCost:     decimal.RequireFromString("5.99"),
		LowStockThreshold:       10,
		NotifyNewOrder:          true,
		NotifyLowStock:          true,
		NotifyOrderStatusChange: true,
	}
}
