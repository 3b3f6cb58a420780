package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusConfirmed  OrderStatus = "confirmed"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

var orderStatusRank = map[OrderStatus]int{
	OrderStatusPending:    0,
	OrderStatusConfirmed:  1,
	OrderStatusProcessing: 2,
	OrderStatusShipped:    3,
	OrderStatusDelivered:  4,
}

func (s OrderStatus) Valid() bool {
	if s == OrderStatusCancelled {
		return true
	}
	_, ok := orderStatusRank[s]
	return ok
}

// CanTransitionTo allows only forward moves. Cancellation is allowed until the
// order leaves the warehouse.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	if s == OrderStatusCancelled || !next.Valid() {
		return false
	}

	if next == OrderStatusCancelled {
		return s == OrderStatusPending || s == OrderStatusConfirmed || s == OrderStatusProcessing
	}

	return orderStatusRank[next] > orderStatusRank[s]
}

// RevenueStatuses are the statuses counted as sold.
var RevenueStatuses = []OrderStatus{
	OrderStatusConfirmed,
	OrderStatusProcessing,
	OrderStatusShipped,
	OrderStatusDelivered,
}

type WebOrder struct {
	ID              uint64              `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderNumber     string              `gorm:"column:order_number;type:varchar(20);uniqueIndex;not null" json:"order_number"`
	UserID          uint                `gorm:"column:user_id;not null;index" json:"user_id"`
	Status          OrderStatus         `gorm:"column:status;type:varchar(20);not null;index" json:"status"`
	Subtotal        decimal.Decimal     `gorm:"column:subtotal;type:decimal(12,2);not null" json:"subtotal"`
	TaxAmount       decimal.Decimal     `gorm:"column:tax_amount;type:decimal(12,2);not null" json:"tax_amount"`
	ShippingCost    decimal.Decimal     `gorm:"column:shipping_cost;type:decimal(12,2);not null" json:"shipping_cost"`
	TotalAmount     decimal.Decimal     `gorm:"column:total_amount;type:decimal(12,2);not null" json:"total_amount"`
	Currency        string              `gorm:"column:currency;type:varchar(10)" json:"currency"`
	ShippingAddress string              `gorm:"column:shipping_address;type:text;not null" json:"shipping_address"`
	ShippingCity    string              `gorm:"column:shipping_city;type:varchar(100);not null" json:"shipping_city"`
	ShippingState   string              `gorm:"column:shipping_state;type:varchar(100);not null" json:"shipping_state"`
	ShippingZip     string              `gorm:"column:shipping_zip;type:varchar(20);not null" json:"shipping_zip"`
	ClientIP        string              `gorm:"column:client_ip;type:varchar(64);index" json:"-"`
	Notes           string              `gorm:"column:notes;type:text" json:"notes,omitempty"`
	TrackingNumber  string              `gorm:"column:tracking_number;type:varchar(100)" json:"tracking_number,omitempty"`
	Items           []OrderItem         `gorm:"foreignKey:OrderID" json:"items,omitempty"`
	Payment         *PaymentTransaction `gorm:"foreignKey:OrderID" json:"payment,omitempty"`
	Review          *OrderReview        `gorm:"foreignKey:OrderID" json:"review,omitempty"`
	CreatedAt       time.Time           `gorm:"column:created_at;index" json:"created_at"`
	UpdatedAt       time.Time           `gorm:"column:updated_at" json:"updated_at"`
	ShippedAt       *time.Time          `gorm:"column:shipped_at" json:"shipped_at,omitempty"`
	DeliveredAt     *time.Time          `gorm:"column:delivered_at" json:"delivered_at,omitempty"`
}

func (WebOrder) TableName() string {
	return "web_orders"
}

// UnderReview reports whether a fraud review is still open on the order.
func (o WebOrder) UnderReview() bool {
	return o.Review != nil && o.Review.Status == ReviewStatusOpen
}

type OrderItem struct {
	ID          uint64          `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID     uint64          `gorm:"column:order_id;not null;index" json:"order_id"`
	ProductID   uint64          `gorm:"column:product_id;not null;index" json:"product_id"`
	VariantID   *uint64         `gorm:"column:variant_id" json:"variant_id,omitempty"`
	SKU         string          `gorm:"column:sku;type:varchar(80);not null" json:"sku"`
	ProductName string          `gorm:"column:product_name;type:text;not null" json:"product_name"`
	VariantInfo string          `gorm:"column:variant_info;type:text" json:"variant_info,omitempty"`
	Quantity    int             `gorm:"column:quantity;not null;check:quantity > 0" json:"quantity"`
	UnitPrice   decimal.Decimal `gorm:"column:unit_price;type:decimal(12,2);not null" json:"unit_price"`
	Subtotal    decimal.Decimal `gorm:"column:subtotal;type:decimal(12,2);not null" json:"subtotal"`
}

func (OrderItem) TableName() string {
	return "order_items"
}

// SumSubtotals adds up item subtotals. Checkout uses it as the order subtotal.
func SumSubtotals(items []OrderItem) decimal.Decimal {
	sum := decimal.Zero
	for _, it := range items {
		sum = sum.Add(it.Subtotal)
	}
	return sum
}

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusFailed    PaymentStatus = "failed"
	PaymentStatusRefunded  PaymentStatus = "refunded"
)

const (
	PaymentMethodCard   = "card"
	PaymentMethodXendit = "xendit"
)

type PaymentTransaction struct {
	ID            uint64          `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID       uint64          `gorm:"column:order_id;not null;uniqueIndex" json:"order_id"`
	TransactionID string          `gorm:"column:transaction_id;type:varchar(100);uniqueIndex;not null" json:"transaction_id"`
	PaymentMethod string          `gorm:"column:payment_method;type:varchar(50);not null" json:"payment_method"`
	Amount        decimal.Decimal `gorm:"column:amount;type:decimal(12,2);not null" json:"amount"`
	Status        PaymentStatus   `gorm:"column:status;type:varchar(20);not null" json:"status"`
	PaymentLink   string          `gorm:"column:payment_link;type:text" json:"payment_link,omitempty"`
	ProcessedAt   *time.Time      `gorm:"column:processed_at" json:"processed_at,omitempty"`
	CreatedAt     time.Time       `gorm:"column:created_at" json:"created_at"`
}

func (PaymentTransaction) TableName() string {
	return "payment_transactions"
}

type ReviewStatus string

const (
	ReviewStatusOpen     ReviewStatus = "open"
	ReviewStatusApproved ReviewStatus = "approved"
	ReviewStatusRejected ReviewStatus = "rejected"
)

// OrderReview is the manual review queue entry for a fraud-flagged order.
type OrderReview struct {
	ID         uint64       `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID    uint64       `gorm:"column:order_id;not null;uniqueIndex" json:"order_id"`
	RiskLevel  RiskLevel    `gorm:"column:risk_level;type:varchar(10);not null" json:"risk_level"`
	RiskScore  int          `gorm:"column:risk_score;not null" json:"risk_score"`
	Reasons    string       `gorm:"column:reasons;type:text" json:"reasons"`
	Status     ReviewStatus `gorm:"column:status;type:varchar(20);not null;index" json:"status"`
	ReviewedBy *uint        `gorm:"column:reviewed_by" json:"reviewed_by,omitempty"`
	ReviewNote string       `gorm:"column:review_note;type:text" json:"review_note,omitempty"`
	ReviewedAt *time.Time   `gorm:"column:reviewed_at" json:"reviewed_at,omitempty"`
	CreatedAt  time.Time    `gorm:"column:created_at" json:"created_at"`
}

func (OrderReview) TableName() string {
	return "order_reviews"
}

type OrderFilter struct {
	Status OrderStatus
	UserID uint
	Limit  int
}

// Totals is the money breakdown shared by the cart preview and checkout.
type Totals struct {
	Subtotal     decimal.Decimal `json:"subtotal"`
	TaxAmount    decimal.Decimal `json:"tax_amount"`
	ShippingCost decimal.Decimal `json:"shipping_cost"`
	TotalAmount  decimal.Decimal `json:"total_amount"`
	Currency     string          `json:"currency"`
}

// OrderTracking is the public view of an order reached through a tracking code.
type OrderTracking struct {
	OrderNumber    string      `json:"order_number"`
	Status         OrderStatus `json:"status"`
	TrackingNumber string      `json:"tracking_number,omitempty"`
	CreatedAt      time.Time   `json:"created_at"`
	ShippedAt      *time.Time  `json:"shipped_at,omitempty"`
	DeliveredAt    *time.Time  `json:"delivered_at,omitempty"`
}

func (o WebOrder) Tracking() OrderTracking {
	return OrderTracking{
		OrderNumber:    o.OrderNumber,
		Status:         o.Status,
		TrackingNumber: o.TrackingNumber,
		CreatedAt:      o.CreatedAt,
		ShippedAt:      o.ShippedAt,
		DeliveredAt:    o.DeliveredAt,
	}
}
