package postgres

import (
	"context"
	"errors"
	"fmt"

	"techshop/domain"

	"gorm.io/gorm"
)

type CartRepository struct {
	DB *gorm.DB
}

func NewCartRepository(db *gorm.DB) *CartRepository {
	return &CartRepository{
		DB: db,
	}
}

func ownerScope(owner domain.CartOwner) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if owner.UserID != 0 {
			return db.Where("user_id = ?", owner.UserID)
		}
		return db.Where("session_key = ? AND user_id IS NULL", owner.SessionKey)
	}
}

func (r *CartRepository) Find(ctx context.Context, owner domain.CartOwner) (domain.Cart, error) {
	if err := ctx.Err(); err != nil {
		return domain.Cart{}, fmt.Errorf("context error: %w", err)
	}

	if owner.IsZero() {
		return domain.Cart{}, domain.ErrNotFound
	}

	var cart domain.Cart
	err := r.DB.WithContext(ctx).
		Scopes(ownerScope(owner)).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("added_at ASC, id ASC") }).
		Preload("Items.Product").
		Preload("Items.Variant").
		First(&cart).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Cart{}, domain.ErrNotFound
		}
		return domain.Cart{}, fmt.Errorf("failed to find cart: %w", err)
	}

	return cart, nil
}

func (r *CartRepository) GetOrCreate(ctx context.Context, owner domain.CartOwner) (domain.Cart, error) {
	cart, err := r.Find(ctx, owner)
	if err == nil || !errors.Is(err, domain.ErrNotFound) {
		return cart, err
	}

	cart = domain.Cart{}
	if owner.UserID != 0 {
		id := owner.UserID
		cart.UserID = &id
	} else {
		key := owner.SessionKey
		cart.SessionKey = &key
	}

	if err := r.DB.WithContext(ctx).Create(&cart).Error; err != nil {
		return domain.Cart{}, fmt.Errorf("failed to create cart: %w", err)
	}

	cart.Items = []domain.CartItem{}
	return cart, nil
}

func (r *CartRepository) FindLine(ctx context.Context, cartID, productID uint64, variantID *uint64) (domain.CartItem, error) {
	if err := ctx.Err(); err != nil {
		return domain.CartItem{}, fmt.Errorf("context error: %w", err)
	}

	q := r.DB.WithContext(ctx).Where("cart_id = ? AND product_id = ?", cartID, productID)
	if variantID != nil {
		q = q.Where("variant_id = ?", *variantID)
	} else {
		q = q.Where("variant_id IS NULL")
	}

	var item domain.CartItem
	if err := q.First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.CartItem{}, domain.ErrNotFound
		}
		return domain.CartItem{}, fmt.Errorf("failed to find cart line: %w", err)
	}

	return item, nil
}

func (r *CartRepository) FindItem(ctx context.Context, cartID, itemID uint64) (domain.CartItem, error) {
	if err := ctx.Err(); err != nil {
		return domain.CartItem{}, fmt.Errorf("context error: %w", err)
	}

	var item domain.CartItem
	if err := r.DB.WithContext(ctx).Where("cart_id = ? AND id = ?", cartID, itemID).First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.CartItem{}, domain.ErrCartItemNotFound
		}
		return domain.CartItem{}, fmt.Errorf("failed to find cart item: %w", err)
	}

	return item, nil
}

func (r *CartRepository) SaveItem(ctx context.Context, item *domain.CartItem) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	db := r.DB.WithContext(ctx).Omit("Product", "Variant")

	if item.ID == 0 {
		if err := db.Create(item).Error; err != nil {
			return fmt.Errorf("failed to create cart item: %w", err)
		}
		return nil
	}

	if err := db.Model(&domain.CartItem{}).Where("id = ?", item.ID).Update("quantity", item.Quantity).Error; err != nil {
		return fmt.Errorf("failed to update cart item: %w", err)
	}

	return nil
}

func (r *CartRepository) DeleteItem(ctx context.Context, cartID, itemID uint64) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	result := r.DB.WithContext(ctx).Where("cart_id = ? AND id = ?", cartID, itemID).Delete(&domain.CartItem{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete cart item: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.ErrCartItemNotFound
	}

	return nil
}

func (r *CartRepository) ClearItems(ctx context.Context, cartID uint64) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	if err := r.DB.WithContext(ctx).Where("cart_id = ?", cartID).Delete(&domain.CartItem{}).Error; err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}

	return nil
}

func (r *CartRepository) DeleteCart(ctx context.Context, cartID uint64) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("cart_id = ?", cartID).Delete(&domain.CartItem{}).Error; err != nil {
			return fmt.Errorf("failed to delete cart items: %w", err)
		}
		if err := tx.Delete(&domain.Cart{}, cartID).Error; err != nil {
			return fmt.Errorf("failed to delete cart: %w", err)
		}
		return nil
	})
}
