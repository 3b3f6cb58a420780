package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"techshop/domain"

	"gorm.io/gorm"
)

type ProductRepository struct {
	DB *gorm.DB
}

func NewProductRepository(db *gorm.DB) *ProductRepository {
	return &ProductRepository{
		DB: db,
	}
}

func (r *ProductRepository) Create(ctx context.Context, product *domain.Product) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	if err := r.DB.WithContext(ctx).Create(product).Error; err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}

	return nil
}

func (r *ProductRepository) FindByID(ctx context.Context, id uint64) (domain.Product, error) {
	if err := ctx.Err(); err != nil {
		return domain.Product{}, fmt.Errorf("context error: %w", err)
	}

	var product domain.Product

	err := r.DB.WithContext(ctx).Preload("Variants").First(&product, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Product{}, domain.ErrProductNotFound
		}
		return domain.Product{}, fmt.Errorf("failed to find product: %w", err)
	}

	return product, nil
}

func (r *ProductRepository) FindBySKU(ctx context.Context, sku string) (domain.Product, error) {
	if err := ctx.Err(); err != nil {
		return domain.Product{}, fmt.Errorf("context error: %w", err)
	}

	var product domain.Product

	err := r.DB.WithContext(ctx).Preload("Variants").Where("sku = ?", sku).First(&product).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Product{}, domain.ErrProductNotFound
		}
		return domain.Product{}, fmt.Errorf("failed to find product: %w", err)
	}

	return product, nil
}

func (r *ProductRepository) FindAll(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	q := r.DB.WithContext(ctx).Model(&domain.Product{})

	if filter.CategoryID != nil {
		q = q.Where("category_id = ?", *filter.CategoryID)
	}

	if filter.OnlineOnly {
		q = q.Where("is_available_online = ?", true)
	}

	if s := strings.TrimSpace(filter.Search); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		q = q.Where("LOWER(name) LIKE ? OR LOWER(sku) LIKE ? OR LOWER(description) LIKE ?", like, like, like)
	}

	var products []domain.Product
	err := q.Order("name ASC").Find(&products).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find Products: %w", err)
	}

	return products, nil
}

func (r *ProductRepository) Update(ctx context.Context, product *domain.Product) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	updateData := map[string]interface{}{
		"sku":                 product.SKU,
		"name":                product.Name,
		"description":         product.Description,
		"category_id":         product.CategoryID,
		"price":               product.Price,
		"discount_percentage": product.DiscountPercentage,
		"discount_label":      product.DiscountLabel,
		"reorder_level":       product.ReorderLevel,
		"is_available_online": product.IsAvailableOnline,
	}

	result := r.DB.WithContext(ctx).Model(&domain.Product{}).Where("id = ?", product.ID).Updates(updateData)
	if result.Error != nil {
		return fmt.Errorf("failed to update product: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.ErrProductNotFound
	}

	return nil
}

func (r *ProductRepository) Delete(ctx context.Context, id uint64) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("product_id = ?", id).Delete(&domain.CartItem{}).Error; err != nil {
			return fmt.Errorf("failed to delete cart lines: %w", err)
		}

		if err := tx.Where("product_id = ?", id).Delete(&domain.ProductVariant{}).Error; err != nil {
			return fmt.Errorf("failed to delete variants: %w", err)
		}

		result := tx.Delete(&domain.Product{}, id)
		if result.Error != nil {
			return fmt.Errorf("failed to delete product: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return domain.ErrProductNotFound
		}

		return nil
	})
}

func (r *ProductRepository) CreateVariant(ctx context.Context, variant *domain.ProductVariant) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	if err := r.DB.WithContext(ctx).Create(variant).Error; err != nil {
		return fmt.Errorf("failed to create variant: %w", err)
	}

	return nil
}

func (r *ProductRepository) FindVariant(ctx context.Context, id uint64) (domain.ProductVariant, error) {
	if err := ctx.Err(); err != nil {
		return domain.ProductVariant{}, fmt.Errorf("context error: %w", err)
	}

	var variant domain.ProductVariant

	err := r.DB.WithContext(ctx).First(&variant, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ProductVariant{}, domain.ErrVariantNotFound
		}
		return domain.ProductVariant{}, fmt.Errorf("failed to find variant: %w", err)
	}

	return variant, nil
}

func (r *ProductRepository) FindVariants(ctx context.Context, productID uint64) ([]domain.ProductVariant, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	var variants []domain.ProductVariant
	if err := r.DB.WithContext(ctx).Where("product_id = ?", productID).Order("id ASC").Find(&variants).Error; err != nil {
		return nil, fmt.Errorf("failed to find variants: %w", err)
	}

	return variants, nil
}

func (r *ProductRepository) UpdateVariant(ctx context.Context, variant *domain.ProductVariant) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	result := r.DB.WithContext(ctx).Model(&domain.ProductVariant{}).Where("id = ?", variant.ID).Updates(map[string]interface{}{
		"attributes":       variant.Attributes,
		"sku_suffix":       variant.SKUSuffix,
		"price_adjustment": variant.PriceAdjustment,
		"is_active":        variant.IsActive,
	})
	if result.Error != nil {
		return fmt.Errorf("failed to update variant: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.ErrVariantNotFound
	}

	return nil
}

// AdjustStock applies delta to the product, and to the variant when given,
// refusing any result below zero. The movement is written in the same tx.
func (r *ProductRepository) AdjustStock(ctx context.Context, adj domain.StockAdjustment) (domain.InventoryMovement, error) {
	if err := ctx.Err(); err != nil {
		return domain.InventoryMovement{}, fmt.Errorf("context error: %w", err)
	}

	var movement domain.InventoryMovement

	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if adj.VariantID != nil {
			if err := applyStockDelta(tx, &domain.ProductVariant{}, *adj.VariantID, adj.Delta); err != nil {
				if errors.Is(err, domain.ErrNotFound) {
					return domain.ErrVariantNotFound
				}
				return err
			}
		}

		if err := applyStockDelta(tx, &domain.Product{}, adj.ProductID, adj.Delta); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return domain.ErrProductNotFound
			}
			return err
		}

		movementType := domain.MovementAdjusted
		if adj.Delta > 0 && strings.EqualFold(adj.Reason, string(domain.MovementReceived)) {
			movementType = domain.MovementReceived
		}

		movement = domain.InventoryMovement{
			ProductID:       adj.ProductID,
			VariantID:       adj.VariantID,
			MovementType:    movementType,
			Quantity:        adj.Delta,
			ReferenceNumber: "ADJ",
			Notes:           adj.Reason,
		}
		if adj.PerformedBy != 0 {
			by := adj.PerformedBy
			movement.PerformedBy = &by
		}

		if err := tx.Create(&movement).Error; err != nil {
			return fmt.Errorf("failed to create movement: %w", err)
		}

		return nil
	})
	if err != nil {
		return domain.InventoryMovement{}, err
	}

	return movement, nil
}

// applyStockDelta is a guarded in-place update. Zero rows means the row is
// missing or the delta would take stock negative; the two are told apart by
// a follow-up read.
func applyStockDelta(tx *gorm.DB, model interface{}, id uint64, delta int) error {
	result := tx.Model(model).
		Where("id = ? AND stock_quantity + ? >= 0", id, delta).
		Update("stock_quantity", gorm.Expr("stock_quantity + ?", delta))
	if result.Error != nil {
		return fmt.Errorf("failed to update stock: %w", result.Error)
	}

	if result.RowsAffected == 1 {
		return nil
	}

	var count int64
	if err := tx.Model(model).Where("id = ?", id).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to read stock: %w", err)
	}
	if count == 0 {
		return domain.ErrNotFound
	}

	return domain.ErrNegativeStock
}

func (r *ProductRepository) FindMovements(ctx context.Context, productID uint64, limit int) ([]domain.InventoryMovement, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	q := r.DB.WithContext(ctx).Order("created_at DESC, id DESC").Limit(limit)
	if productID != 0 {
		q = q.Where("product_id = ?", productID)
	}

	var movements []domain.InventoryMovement
	if err := q.Find(&movements).Error; err != nil {
		return nil, fmt.Errorf("failed to find movements: %w", err)
	}

	return movements, nil
}
