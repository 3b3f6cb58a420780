package domain

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// CREATE TABLE public.products (
//     id                   BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
//     sku                  VARCHAR(50) UNIQUE NOT NULL,
//     name                 TEXT NOT NULL,
//     category_id          BIGINT,
//     price                NUMERIC(12,2) NOT NULL,
//     discount_percentage  NUMERIC(5,2) DEFAULT 0,
//     stock_quantity       INT NOT NULL DEFAULT 0 CHECK (stock_quantity >= 0),
//     reorder_level        INT NOT NULL DEFAULT 10,
//     is_available_online  BOOLEAN NOT NULL,
//     created_at           TIMESTAMPTZ DEFAULT NOW()
// );

type Product struct {
	ID                 uint64           `gorm:"primaryKey;autoIncrement" json:"id"`
	SKU                string           `gorm:"column:sku;type:varchar(50);uniqueIndex;not null" json:"sku"`
	Name               string           `gorm:"column:name;type:text;not null" json:"name"`
	Description        string           `gorm:"column:description;type:text" json:"description"`
	CategoryID         *uint64          `gorm:"column:category_id;index" json:"category_id"`
	Price              decimal.Decimal  `gorm:"column:price;type:decimal(12,2);not null" json:"price"`
	DiscountPercentage decimal.Decimal  `gorm:"column:discount_percentage;type:decimal(5,2);not null" json:"discount_percentage"`
	DiscountLabel      string           `gorm:"column:discount_label;type:text" json:"discount_label,omitempty"`
	StockQuantity      int              `gorm:"column:stock_quantity;not null;check:stock_quantity >= 0" json:"stock_quantity"`
	ReorderLevel       int              `gorm:"column:reorder_level;not null" json:"reorder_level"`
	IsAvailableOnline  bool             `gorm:"column:is_available_online;not null" json:"is_available_online"`
	Variants           []ProductVariant `gorm:"foreignKey:ProductID" json:"variants,omitempty"`
	CreatedAt          time.Time        `gorm:"column:created_at" json:"created_at"`
	UpdatedAt          time.Time        `gorm:"column:updated_at" json:"updated_at"`
}

func (Product) TableName() string {
	return "products"
}

var hundred = decimal.NewFromInt(100)

// HasOffer reports whether a discount is active on the product.
func (p Product) HasOffer() bool {
	return p.DiscountPercentage.IsPositive()
}

// DiscountedPrice is the selling price after the percentage discount, rounded to cents.
func (p Product) DiscountedPrice() decimal.Decimal {
	if !p.HasOffer() {
		return p.Price.Round(2)
	}

	discount := p.Price.Mul(p.DiscountPercentage).Div(hundred)
	return p.Price.Sub(discount).Round(2)
}

type StockStatus string

const (
	StockStatusInStock    StockStatus = "in_stock"
	StockStatusLowStock   StockStatus = "low_stock"
	StockStatusOutOfStock StockStatus = "out_of_stock"
)

// StockStatusFor classifies a stock level against a low-stock threshold.
func StockStatusFor(qty, threshold int) StockStatus {
	switch {
	case qty <= 0:
		return StockStatusOutOfStock
	case qty <= threshold:
		return StockStatusLowStock
	default:
		return StockStatusInStock
	}
}

// CREATE TABLE public.product_variants (
//     id                BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
//     product_id        BIGINT NOT NULL REFERENCES products(id),
//     attributes        JSONB,
//     sku_suffix        TEXT,
//     price_adjustment  NUMERIC(12,2) DEFAULT 0,
//     stock_quantity    INT NOT NULL DEFAULT 0 CHECK (stock_quantity >= 0),
//     is_active         BOOLEAN NOT NULL
// );

type ProductVariant struct {
	ID              uint64            `gorm:"primaryKey;autoIncrement" json:"id"`
	ProductID       uint64            `gorm:"column:product_id;not null;index" json:"product_id"`
	Attributes      datatypes.JSONMap `gorm:"column:attributes" json:"attributes"`
	SKUSuffix       string            `gorm:"column:sku_suffix;type:varchar(20)" json:"sku_suffix"`
	PriceAdjustment decimal.Decimal   `gorm:"column:price_adjustment;type:decimal(12,2);not null" json:"price_adjustment"`
	StockQuantity   int               `gorm:"column:stock_quantity;not null;check:stock_quantity >= 0" json:"stock_quantity"`
	IsActive        bool              `gorm:"column:is_active;not null" json:"is_active"`
	CreatedAt       time.Time         `gorm:"column:created_at" json:"created_at"`
	UpdatedAt       time.Time         `gorm:"column:updated_at" json:"updated_at"`
}

func (ProductVariant) TableName() string {
	return "product_variants"
}

// SKU returns the full variant sku: the product sku plus the suffix, if any.
func (v ProductVariant) SKU(product Product) string {
	if v.SKUSuffix == "" {
		return product.SKU
	}
	return product.SKU + "-" + v.SKUSuffix
}

// UnitPrice is the discounted product price plus the variant adjustment.
func (v ProductVariant) UnitPrice(product Product) decimal.Decimal {
	return product.DiscountedPrice().Add(v.PriceAdjustment).Round(2)
}

// Describe renders the attributes as "color: Red, size: M" with keys sorted.
func (v ProductVariant) Describe() string {
	if len(v.Attributes) == 0 {
		return ""
	}

	keys := make([]string, 0, len(v.Attributes))
	for k := range v.Attributes {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %v", k, v.Attributes[k]))
	}
	return strings.Join(parts, ", ")
}

type ProductFilter struct {
	CategoryID *uint64
	Search     string
	OnlineOnly bool
}
