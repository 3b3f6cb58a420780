//go:build !integration

package dashboard

import (
	"context"
	"errors"
	"testing"
	"time"

	"techshop/domain"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRepo struct {
	revenue   map[time.Time]domain.RevenueWindow
	thresh    int
	failStock bool
}

func (f *fakeRepo) Revenue(ctx context.Context, since time.Time) (domain.RevenueWindow, error) {
	return f.revenue[since], nil
}

func (f *fakeRepo) OrdersByStatus(ctx context.Context) ([]domain.StatusCount, error) {
	return []domain.StatusCount{{Status: domain.OrderStatusConfirmed, Count: 2}}, nil
}

func (f *fakeRepo) CountProducts(ctx context.Context) (int64, error)    { return 12, nil }
func (f *fakeRepo) CountCustomers(ctx context.Context) (int64, error)   { return 5, nil }
func (f *fakeRepo) CountOpenReviews(ctx context.Context) (int64, error) { return 1, nil }

func (f *fakeRepo) CountOrdersWithStatus(ctx context.Context, status domain.OrderStatus) (int64, error) {
	if status == domain.OrderStatusPending {
		return 3, nil
	}
	return 0, nil
}

func (f *fakeRepo) CountStock(ctx context.Context, threshold int) (int64, int64, int64, error) {
	if f.failStock {
		return 0, 0, 0, errors.New("db down")
	}
	f.thresh = threshold
	return 7, 4, 1, nil
}

func (f *fakeRepo) StockItems(ctx context.Context, min, max, threshold, limit int) ([]domain.StockItem, error) {
	return []domain.StockItem{{SKU: "X", StockQuantity: min, Status: domain.StockStatusFor(min, threshold)}}, nil
}

func (f *fakeRepo) RecentMovements(ctx context.Context, limit int) ([]domain.InventoryMovement, error) {
	return []domain.InventoryMovement{{MovementType: domain.MovementSold, Quantity: -1}}, nil
}

func (f *fakeRepo) OrdersWithStatus(ctx context.Context, status domain.OrderStatus, limit int) ([]domain.WebOrder, error) {
	return []domain.WebOrder{{Status: status}}, nil
}

func (f *fakeRepo) TopProducts(ctx context.Context, limit int) ([]domain.ProductSales, error) {
	return []domain.ProductSales{{SKU: "LAP", Quantity: 9}}, nil
}

type settings struct{}

func (settings) Current(ctx context.Context) (domain.SiteConfiguration, error) {
	return domain.DefaultSiteConfiguration(), nil
}

func TestDirectorAverageOrderValue(t *testing.T) {
	now := time.Date(2026, 3, 15, 14, 0, 0, 0, time.UTC)
	repo := &fakeRepo{revenue: map[time.Time]domain.RevenueWindow{
		time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC): {Revenue: decimal.NewFromInt(100), OrderCount: 1},
		time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC):  {Revenue: decimal.NewFromInt(1000), OrderCount: 3},
	}}
	svc := NewDashboardService(repo, settings{})
	svc.now = func() time.Time { return now }

	got, err := svc.Director(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "100.00", got.Today.Revenue.StringFixed(2))
	assert.Equal(t, "333.33", got.AverageOrderValue.StringFixed(2))
	assert.Equal(t, int64(4), got.LowStockCount)
	assert.Equal(t, 10, repo.thresh)
}

func TestMainDashboard(t *testing.T) {
	svc := NewDashboardService(&fakeRepo{}, settings{})

	got, err := svc.Main(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(12), got.ProductCount)
	assert.Equal(t, int64(5), got.CustomerCount)
	assert.Equal(t, int64(1), got.OpenReviewCount)
	assert.Len(t, got.OrdersByStatus, 1)
}

func TestWarehouse(t *testing.T) {
	svc := NewDashboardService(&fakeRepo{}, settings{})

	got, err := svc.Warehouse(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(7), got.InStockCount)
	assert.Equal(t, int64(1), got.OutOfStockCount)
	require.Len(t, got.OutOfStock, 1)
	assert.Equal(t, domain.StockStatusOutOfStock, got.OutOfStock[0].Status)
	assert.Equal(t, domain.StockStatusLowStock, got.LowStock[0].Status)
	assert.Len(t, got.RecentMovements, 1)

	_, err = NewDashboardService(&fakeRepo{failStock: true}, settings{}).Warehouse(context.Background())
	assert.Error(t, err)
}

func TestFulfillmentQueues(t *testing.T) {
	svc := NewDashboardService(&fakeRepo{}, settings{})

	got, err := svc.Fulfillment(context.Background())
	require.NoError(t, err)
	require.Len(t, got.Queues, 3)
	assert.Equal(t, domain.OrderStatusPending, got.Queues[0].Status)
	assert.Equal(t, int64(3), got.Queues[0].Count)
	assert.Equal(t, domain.OrderStatusProcessing, got.Queues[2].Status)
}

func TestReports(t *testing.T) {
	svc := NewDashboardService(&fakeRepo{}, settings{})

	got, err := svc.Reports(context.Background())
	require.NoError(t, err)
	assert.Len(t, got.TopProducts, 1)
	assert.Len(t, got.SalesByStatus, 1)
}
