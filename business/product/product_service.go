package product

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"techshop/domain"
	"techshop/pkg/logger"

	"github.com/shopspring/decimal"
)

// ProductRepository contract interface
type ProductRepository interface {
	Create(ctx context.Context, product *domain.Product) error
	FindByID(ctx context.Context, id uint64) (domain.Product, error)
	FindBySKU(ctx context.Context, sku string) (domain.Product, error)
	FindAll(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error)
	Update(ctx context.Context, product *domain.Product) error
	Delete(ctx context.Context, id uint64) error

	CreateVariant(ctx context.Context, variant *domain.ProductVariant) error
	FindVariant(ctx context.Context, id uint64) (domain.ProductVariant, error)
	FindVariants(ctx context.Context, productID uint64) ([]domain.ProductVariant, error)
	UpdateVariant(ctx context.Context, variant *domain.ProductVariant) error

	AdjustStock(ctx context.Context, adj domain.StockAdjustment) (domain.InventoryMovement, error)
	FindMovements(ctx context.Context, productID uint64, limit int) ([]domain.InventoryMovement, error)
}

// ActivityRecorder appends to the staff activity log.
type ActivityRecorder interface {
	Record(ctx context.Context, entry domain.ActivityLog) error
}

type productService struct {
	productRepo ProductRepository
	activity    ActivityRecorder
}

func NewProductService(productRepo ProductRepository, activity ActivityRecorder) *productService {
	return &productService{
		productRepo: productRepo,
		activity:    activity,
	}
}

var hundred = decimal.NewFromInt(100)

func validateProduct(product *domain.Product) error {
	product.SKU = strings.TrimSpace(product.SKU)
	product.Name = strings.TrimSpace(product.Name)

	if product.SKU == "" {
		return domain.Invalid("sku is required")
	}

	if product.Name == "" {
		return domain.Invalid("product name is required")
	}

	if !product.Price.IsPositive() {
		return domain.Invalid("price must be greater than 0")
	}

	if product.StockQuantity < 0 {
		return domain.Invalid("stock quantity cannot be negative")
	}

	if product.DiscountPercentage.IsNegative() || product.DiscountPercentage.GreaterThan(hundred) {
		return domain.Invalid("discount must be between 0 and 100")
	}

	if product.ReorderLevel < 0 {
		return domain.Invalid("reorder level cannot be negative")
	}

	return nil
}

func (s *productService) record(ctx context.Context, entry domain.ActivityLog) {
	if s.activity == nil {
		return
	}
	if err := s.activity.Record(ctx, entry); err != nil {
		logger.Warn("failed to record activity", err)
	}
}

func (s *productService) GetAllProducts(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error) {
	if err := ctx.Err(); err != nil {
		logger.Error("context error when get all product")
		return nil, fmt.Errorf("context error: %w", err)
	}

	products, err := s.productRepo.FindAll(ctx, filter)
	if err != nil {
		logger.Error("Failed to find all product", err)
		return nil, err
	}

	return products, nil
}

func (s *productService) GetProductByID(ctx context.Context, id uint64) (*domain.Product, error) {
	if id == 0 {
		logger.Error("invalid product id")
		return nil, domain.ErrProductNotFound
	}

	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		logger.Error("failed to find product by id", err)
		return nil, err
	}

	return &product, nil
}

func (s *productService) GetProductBySKU(ctx context.Context, sku string) (*domain.Product, error) {
	product, err := s.productRepo.FindBySKU(ctx, strings.TrimSpace(sku))
	if err != nil {
		logger.Error("failed to find product by sku", err)
		return nil, err
	}

	return &product, nil
}

func (s *productService) CreateProduct(ctx context.Context, actor domain.Actor, product *domain.Product) (*domain.Product, error) {
	if err := ctx.Err(); err != nil {
		logger.Error("context error when create product")
		return nil, fmt.Errorf("context error: %w", err)
	}

	if err := validateProduct(product); err != nil {
		logger.Error("Invalid product data", err)
		return nil, err
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		logger.Error("failed to create new product", err)
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	s.record(ctx, actor.Log(domain.ActionCreate, "Product", strconv.FormatUint(product.ID, 10),
		"Created product "+product.SKU, map[string]any{"price": product.Price.String(), "stock": product.StockQuantity}))

	logger.Info("product created successfully", "sku", product.SKU)

	return product, nil
}

// UpdateProduct replaces the editable fields. Stock is not editable here;
// it moves only through AdjustStock so every change lands in the ledger.
func (s *productService) UpdateProduct(ctx context.Context, actor domain.Actor, product *domain.Product) (*domain.Product, error) {
	if product.ID == 0 {
		logger.Error("Invalid product data: ID is required")
		return nil, domain.Invalid("product ID is required")
	}

	existing, err := s.productRepo.FindByID(ctx, product.ID)
	if err != nil {
		logger.Error("product not found", err)
		return nil, err
	}
	product.StockQuantity = existing.StockQuantity

	if err := validateProduct(product); err != nil {
		logger.Error("Invalid product data", err)
		return nil, err
	}

	if err := s.productRepo.Update(ctx, product); err != nil {
		logger.Error("failed to update product", err)
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	updated, err := s.productRepo.FindByID(ctx, product.ID)
	if err != nil {
		logger.Error("failed to fetch updated product", err)
		return nil, fmt.Errorf("failed to fetch updated product: %w", err)
	}

	changes := map[string]any{}
	if !existing.Price.Equal(updated.Price) {
		changes["price"] = map[string]string{"old": existing.Price.String(), "new": updated.Price.String()}
	}
	if !existing.DiscountPercentage.Equal(updated.DiscountPercentage) {
		changes["discount_percentage"] = map[string]string{"old": existing.DiscountPercentage.String(), "new": updated.DiscountPercentage.String()}
	}
	if existing.IsAvailableOnline != updated.IsAvailableOnline {
		changes["is_available_online"] = updated.IsAvailableOnline
	}
	s.record(ctx, actor.Log(domain.ActionUpdate, "Product", strconv.FormatUint(updated.ID, 10), "Updated product "+updated.SKU, changes))

	return &updated, nil
}

func (s *productService) DeleteProduct(ctx context.Context, actor domain.Actor, id uint64) error {
	if id == 0 {
		logger.Error("Invalid product id when deleting product")
		return domain.ErrProductNotFound
	}

	existing, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		logger.Error("product not found", err)
		return err
	}

	if err := s.productRepo.Delete(ctx, id); err != nil {
		logger.Error("failed to delete product", err)
		return fmt.Errorf("failed to delete product: %w", err)
	}

	s.record(ctx, actor.Log(domain.ActionDelete, "Product", strconv.FormatUint(id, 10), "Deleted product "+existing.SKU, nil))

	return nil
}

func (s *productService) AddVariant(ctx context.Context, actor domain.Actor, variant *domain.ProductVariant) (*domain.ProductVariant, error) {
	if _, err := s.productRepo.FindByID(ctx, variant.ProductID); err != nil {
		logger.Error("variant parent not found", err)
		return nil, err
	}

	if variant.StockQuantity < 0 {
		return nil, domain.Invalid("stock quantity cannot be negative")
	}

	if err := s.productRepo.CreateVariant(ctx, variant); err != nil {
		logger.Error("failed to create variant", err)
		return nil, fmt.Errorf("failed to create variant: %w", err)
	}

	s.record(ctx, actor.Log(domain.ActionCreate, "ProductVariant", strconv.FormatUint(variant.ID, 10),
		"Added variant "+variant.Describe(), nil))

	return variant, nil
}

func (s *productService) ListVariants(ctx context.Context, productID uint64) ([]domain.ProductVariant, error) {
	if _, err := s.productRepo.FindByID(ctx, productID); err != nil {
		return nil, err
	}

	variants, err := s.productRepo.FindVariants(ctx, productID)
	if err != nil {
		logger.Error("failed to list variants", err)
		return nil, err
	}

	return variants, nil
}

// UpdateVariant edits attributes, price adjustment and activity. The owning
// product cannot change.
func (s *productService) UpdateVariant(ctx context.Context, actor domain.Actor, productID uint64, variant *domain.ProductVariant) (*domain.ProductVariant, error) {
	existing, err := s.productRepo.FindVariant(ctx, variant.ID)
	if err != nil {
		return nil, err
	}

	if existing.ProductID != productID {
		return nil, domain.ErrInvalidVariant
	}

	variant.ProductID = existing.ProductID
	variant.StockQuantity = existing.StockQuantity

	if err := s.productRepo.UpdateVariant(ctx, variant); err != nil {
		logger.Error("failed to update variant", err)
		return nil, fmt.Errorf("failed to update variant: %w", err)
	}

	s.record(ctx, actor.Log(domain.ActionUpdate, "ProductVariant", strconv.FormatUint(variant.ID, 10),
		"Updated variant "+variant.Describe(), map[string]any{"is_active": variant.IsActive}))

	return variant, nil
}

// AdjustStock applies a signed correction and writes an adjusted movement.
func (s *productService) AdjustStock(ctx context.Context, actor domain.Actor, adj domain.StockAdjustment) (domain.InventoryMovement, error) {
	if adj.Delta == 0 {
		return domain.InventoryMovement{}, domain.ErrInvalidQuantity
	}

	if strings.TrimSpace(adj.Reason) == "" {
		return domain.InventoryMovement{}, domain.Invalid("reason is required")
	}

	if adj.VariantID != nil {
		v, err := s.productRepo.FindVariant(ctx, *adj.VariantID)
		if err != nil {
			return domain.InventoryMovement{}, err
		}
		if v.ProductID != adj.ProductID {
			return domain.InventoryMovement{}, domain.ErrInvalidVariant
		}
	}

	adj.PerformedBy = actor.UserID

	movement, err := s.productRepo.AdjustStock(ctx, adj)
	if err != nil {
		logger.Error("failed to adjust stock", err)
		return domain.InventoryMovement{}, err
	}

	s.record(ctx, actor.Log(domain.ActionUpdate, "Product", strconv.FormatUint(adj.ProductID, 10),
		fmt.Sprintf("Adjusted stock by %+d: %s", adj.Delta, adj.Reason), map[string]any{"delta": adj.Delta}))

	logger.Info("stock adjusted", "product_id", adj.ProductID, "delta", adj.Delta)

	return movement, nil
}

func (s *productService) ListMovements(ctx context.Context, productID uint64, limit int) ([]domain.InventoryMovement, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	return s.productRepo.FindMovements(ctx, productID, limit)
}
