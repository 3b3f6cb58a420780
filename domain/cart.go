package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Cart belongs either to a signed-in user or to a guest session key.
type Cart struct {
	ID         uint64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID     *uint      `gorm:"column:user_id;uniqueIndex" json:"user_id,omitempty"`
	SessionKey *string    `gorm:"column:session_key;type:varchar(64);uniqueIndex" json:"-"`
	Items      []CartItem `gorm:"foreignKey:CartID" json:"items"`
	CreatedAt  time.Time  `gorm:"column:created_at" json:"created_at"`
	UpdatedAt  time.Time  `gorm:"column:updated_at" json:"updated_at"`
}

func (Cart) TableName() string {
	return "carts"
}

type CartItem struct {
	ID        uint64          `gorm:"primaryKey;autoIncrement" json:"id"`
	CartID    uint64          `gorm:"column:cart_id;not null;index:idx_cart_line" json:"cart_id"`
	ProductID uint64          `gorm:"column:product_id;not null;index:idx_cart_line" json:"product_id"`
	VariantID *uint64         `gorm:"column:variant_id;index:idx_cart_line" json:"variant_id,omitempty"`
	Quantity  int             `gorm:"column:quantity;not null;check:quantity > 0" json:"quantity"`
	Product   Product         `gorm:"foreignKey:ProductID" json:"-"`
	Variant   *ProductVariant `gorm:"foreignKey:VariantID" json:"-"`
	AddedAt   time.Time       `gorm:"column:added_at;autoCreateTime" json:"added_at"`
}

func (CartItem) TableName() string {
	return "cart_items"
}

// CartOwner identifies whose cart is addressed. UserID wins over SessionKey.
type CartOwner struct {
	UserID     uint
	SessionKey string
}

func (o CartOwner) IsZero() bool {
	return o.UserID == 0 && o.SessionKey == ""
}

// CartLine is a cart item priced against the live catalog.
type CartLine struct {
	ItemID         uint64          `json:"item_id"`
	ProductID      uint64          `json:"product_id"`
	VariantID      *uint64         `json:"variant_id,omitempty"`
	SKU            string          `json:"sku"`
	Name           string          `json:"name"`
	VariantInfo    string          `json:"variant_info,omitempty"`
	Quantity       int             `json:"quantity"`
	UnitPrice      decimal.Decimal `json:"unit_price"`
	LineTotal      decimal.Decimal `json:"line_total"`
	AvailableStock int             `json:"available_stock"`
	StockStatus    StockStatus     `json:"stock_status"`
}

type CartView struct {
	CartID     uint64     `json:"cart_id"`
	Lines      []CartLine `json:"lines"`
	TotalItems int        `json:"total_items"`
	Totals     Totals     `json:"totals"`
}
