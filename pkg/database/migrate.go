package database

import (
	"fmt"

	"techshop/domain"

	"gorm.io/gorm"
)

// Models is every table the service owns, in dependency order.
func Models() []any {
	return []any{
		&domain.User{},
		&domain.Category{},
		&domain.Product{},
		&domain.ProductVariant{},
		&domain.Cart{},
		&domain.CartItem{},
		&domain.WebOrder{},
		&domain.OrderItem{},
		&domain.PaymentTransaction{},
		&domain.OrderReview{},
		&domain.InventoryMovement{},
		&domain.StaffProfile{},
		&domain.ActivityLog{},
		&domain.SiteConfiguration{},
	}
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("failed to migrate: %w", err)
	}
	return nil
}
