package postgres

import (
	"context"
	"fmt"
	"time"

	"techshop/domain"

	"gorm.io/gorm"
)

// DashboardRepository runs the aggregate queries behind the admin dashboards.
type DashboardRepository struct {
	DB *gorm.DB
}

func NewDashboardRepository(db *gorm.DB) *DashboardRepository {
	return &DashboardRepository{
		DB: db,
	}
}

func (r *DashboardRepository) Revenue(ctx context.Context, since time.Time) (domain.RevenueWindow, error) {
	if err := ctx.Err(); err != nil {
		return domain.RevenueWindow{}, fmt.Errorf("context error: %w", err)
	}

	var window domain.RevenueWindow
	err := r.DB.WithContext(ctx).Model(&domain.WebOrder{}).
		Select("COALESCE(SUM(total_amount), 0) AS revenue, COUNT(*) AS order_count").
		Where("status IN ? AND created_at >= ?", domain.RevenueStatuses, since).
		Scan(&window).Error
	if err != nil {
		return domain.RevenueWindow{}, fmt.Errorf("failed to sum revenue: %w", err)
	}

	return window, nil
}

func (r *DashboardRepository) OrdersByStatus(ctx context.Context) ([]domain.StatusCount, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	var counts []domain.StatusCount
	err := r.DB.WithContext(ctx).Model(&domain.WebOrder{}).
		Select("status, COUNT(*) AS count, COALESCE(SUM(total_amount), 0) AS total").
		Group("status").
		Order("status").
		Scan(&counts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count orders by status: %w", err)
	}

	return counts, nil
}

func (r *DashboardRepository) count(ctx context.Context, model interface{}, query string, args ...interface{}) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, fmt.Errorf("context error: %w", err)
	}

	q := r.DB.WithContext(ctx).Model(model)
	if query != "" {
		q = q.Where(query, args...)
	}

	var n int64
	if err := q.Count(&n).Error; err != nil {
		return 0, fmt.Errorf("failed to count: %w", err)
	}

	return n, nil
}

func (r *DashboardRepository) CountProducts(ctx context.Context) (int64, error) {
	return r.count(ctx, &domain.Product{}, "")
}

func (r *DashboardRepository) CountCustomers(ctx context.Context) (int64, error) {
	return r.count(ctx, &domain.User{}, "role = ?", domain.UserRoleCustomer)
}

func (r *DashboardRepository) CountOpenReviews(ctx context.Context) (int64, error) {
	return r.count(ctx, &domain.OrderReview{}, "status = ?", domain.ReviewStatusOpen)
}

func (r *DashboardRepository) CountOrdersWithStatus(ctx context.Context, status domain.OrderStatus) (int64, error) {
	return r.count(ctx, &domain.WebOrder{}, "status = ?", status)
}

// CountStock counts products per stock bucket for the given low-stock threshold.
func (r *DashboardRepository) CountStock(ctx context.Context, threshold int) (inStock, lowStock, outOfStock int64, err error) {
	if outOfStock, err = r.count(ctx, &domain.Product{}, "stock_quantity <= 0"); err != nil {
		return 0, 0, 0, err
	}
	if lowStock, err = r.count(ctx, &domain.Product{}, "stock_quantity > 0 AND stock_quantity <= ?", threshold); err != nil {
		return 0, 0, 0, err
	}
	if inStock, err = r.count(ctx, &domain.Product{}, "stock_quantity > ?", threshold); err != nil {
		return 0, 0, 0, err
	}

	return inStock, lowStock, outOfStock, nil
}

// StockItems lists products whose stock falls in [min, max], lowest first.
func (r *DashboardRepository) StockItems(ctx context.Context, min, max, threshold, limit int) ([]domain.StockItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	var products []domain.Product
	err := r.DB.WithContext(ctx).
		Where("stock_quantity >= ? AND stock_quantity <= ?", min, max).
		Order("stock_quantity ASC, id ASC").
		Limit(limit).
		Find(&products).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list stock: %w", err)
	}

	items := make([]domain.StockItem, 0, len(products))
	for _, p := range products {
		items = append(items, domain.StockItem{
			ProductID:     p.ID,
			SKU:           p.SKU,
			Name:          p.Name,
			StockQuantity: p.StockQuantity,
			ReorderLevel:  p.ReorderLevel,
			Status:        domain.StockStatusFor(p.StockQuantity, threshold),
		})
	}

	return items, nil
}

func (r *DashboardRepository) RecentMovements(ctx context.Context, limit int) ([]domain.InventoryMovement, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	var movements []domain.InventoryMovement
	err := r.DB.WithContext(ctx).Order("created_at DESC, id DESC").Limit(limit).Find(&movements).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list movements: %w", err)
	}

	return movements, nil
}

func (r *DashboardRepository) OrdersWithStatus(ctx context.Context, status domain.OrderStatus, limit int) ([]domain.WebOrder, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	var orders []domain.WebOrder
	err := r.DB.WithContext(ctx).
		Where("status = ?", status).
		Order("created_at ASC, id ASC").
		Limit(limit).
		Find(&orders).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}

	return orders, nil
}

// TopProducts ranks products by units sold on revenue-counting orders.
func (r *DashboardRepository) TopProducts(ctx context.Context, limit int) ([]domain.ProductSales, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	var sales []domain.ProductSales
	err := r.DB.WithContext(ctx).Table("order_items AS oi").
		Select("oi.product_id, MIN(oi.sku) AS sku, MIN(oi.product_name) AS product_name, SUM(oi.quantity) AS quantity, COALESCE(SUM(oi.subtotal), 0) AS revenue").
		Joins("JOIN web_orders o ON o.id = oi.order_id").
		Where("o.status IN ?", domain.RevenueStatuses).
		Group("oi.product_id").
		Order("quantity DESC, oi.product_id ASC").
		Limit(limit).
		Scan(&sales).Error
	if err != nil {
		return nil, fmt.Errorf("failed to rank products: %w", err)
	}

	return sales, nil
}
