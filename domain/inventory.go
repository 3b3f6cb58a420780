package domain

import "time"

type MovementType string

const (
	MovementSold     MovementType = "sold"
	MovementReturned MovementType = "returned"
	MovementAdjusted MovementType = "adjusted"
	MovementReceived MovementType = "received"
)

// InventoryMovement is an append-only stock ledger row. Quantity is signed:
// positive for additions, negative for deductions.
type InventoryMovement struct {
	ID              uint64       `gorm:"primaryKey;autoIncrement" json:"id"`
	ProductID       uint64       `gorm:"column:product_id;not null;index" json:"product_id"`
	VariantID       *uint64      `gorm:"column:variant_id" json:"variant_id,omitempty"`
	MovementType    MovementType `gorm:"column:movement_type;type:varchar(20);not null" json:"movement_type"`
	Quantity        int          `gorm:"column:quantity;not null" json:"quantity"`
	ReferenceNumber string       `gorm:"column:reference_number;type:varchar(100)" json:"reference_number"`
	Notes           string       `gorm:"column:notes;type:text" json:"notes,omitempty"`
	PerformedBy     *uint        `gorm:"column:performed_by" json:"performed_by,omitempty"`
	CreatedAt       time.Time    `gorm:"column:created_at;index" json:"created_at"`
}

func (InventoryMovement) TableName() string {
	return "inventory_movements"
}

// StockLine is a single stock deduction requested by checkout.
type StockLine struct {
	ProductID uint64
	VariantID *uint64
	SKU       string
	Quantity  int
}

// StockAdjustment is a staff-initiated stock correction.
type StockAdjustment struct {
	ProductID   uint64
	VariantID   *uint64
	Delta       int
	Reason      string
	PerformedBy uint
}
