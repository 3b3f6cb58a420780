package dashboard

import (
	"context"
	"time"

	"techshop/domain"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

type DashboardRepository interface {
	Revenue(ctx context.Context, since time.Time) (domain.RevenueWindow, error)
	OrdersByStatus(ctx context.Context) ([]domain.StatusCount, error)
	CountProducts(ctx context.Context) (int64, error)
	CountCustomers(ctx context.Context) (int64, error)
	CountOpenReviews(ctx context.Context) (int64, error)
	CountOrdersWithStatus(ctx context.Context, status domain.OrderStatus) (int64, error)
	CountStock(ctx context.Context, threshold int) (inStock, lowStock, outOfStock int64, err error)
	StockItems(ctx context.Context, min, max, threshold, limit int) ([]domain.StockItem, error)
	RecentMovements(ctx context.Context, limit int) ([]domain.InventoryMovement, error)
	OrdersWithStatus(ctx context.Context, status domain.OrderStatus, limit int) ([]domain.WebOrder, error)
	TopProducts(ctx context.Context, limit int) ([]domain.ProductSales, error)
}

type SettingsProvider interface {
	Current(ctx context.Context) (domain.SiteConfiguration, error)
}

const (
	listLimit      = 20
	queueLimit     = 50
	topProductsMax = 10
)

var fulfillmentStatuses = []domain.OrderStatus{
	domain.OrderStatusPending,
	domain.OrderStatusConfirmed,
	domain.OrderStatusProcessing,
}

type DashboardService struct {
	repo     DashboardRepository
	settings SettingsProvider
	now      func() time.Time
}

func NewDashboardService(repo DashboardRepository, settings SettingsProvider) *DashboardService {
	return &DashboardService{
		repo:     repo,
		settings: settings,
		now:      time.Now,
	}
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// Main runs its queries concurrently; the first failure cancels the rest.
func (s *DashboardService) Main(ctx context.Context) (domain.MainDashboard, error) {
	var out domain.MainDashboard
	today := startOfDay(s.now())

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		out.RevenueToday, err = s.repo.Revenue(gctx, today)
		return err
	})
	g.Go(func() (err error) {
		out.Revenue7Days, err = s.repo.Revenue(gctx, today.AddDate(0, 0, -6))
		return err
	})
	g.Go(func() (err error) {
		out.Revenue30Days, err = s.repo.Revenue(gctx, today.AddDate(0, 0, -29))
		return err
	})
	g.Go(func() (err error) {
		out.OrdersByStatus, err = s.repo.OrdersByStatus(gctx)
		return err
	})
	g.Go(func() (err error) {
		out.ProductCount, err = s.repo.CountProducts(gctx)
		return err
	})
	g.Go(func() (err error) {
		out.CustomerCount, err = s.repo.CountCustomers(gctx)
		return err
	})
	g.Go(func() (err error) {
		out.OpenReviewCount, err = s.repo.CountOpenReviews(gctx)
		return err
	})

	if err := g.Wait(); err != nil {
		return domain.MainDashboard{}, err
	}

	return out, nil
}

func (s *DashboardService) Director(ctx context.Context) (domain.DirectorDashboard, error) {
	now := s.now()
	today := startOfDay(now)
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	cfg, err := s.settings.Current(ctx)
	if err != nil {
		return domain.DirectorDashboard{}, err
	}

	var out domain.DirectorDashboard
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		out.Today, err = s.repo.Revenue(gctx, today)
		return err
	})
	g.Go(func() (err error) {
		out.MonthToDate, err = s.repo.Revenue(gctx, monthStart)
		return err
	})
	g.Go(func() (err error) {
		_, out.LowStockCount, _, err = s.repo.CountStock(gctx, cfg.LowStockThreshold)
		return err
	})

	if err := g.Wait(); err != nil {
		return domain.DirectorDashboard{}, err
	}

	out.AverageOrderValue = decimal.Zero
	if out.MonthToDate.OrderCount > 0 {
		out.AverageOrderValue = out.MonthToDate.Revenue.
			Div(decimal.NewFromInt(out.MonthToDate.OrderCount)).
			Round(2)
	}

	return out, nil
}

func (s *DashboardService) Warehouse(ctx context.Context) (domain.WarehouseDashboard, error) {
	cfg, err := s.settings.Current(ctx)
	if err != nil {
		return domain.WarehouseDashboard{}, err
	}
	threshold := cfg.LowStockThreshold

	var out domain.WarehouseDashboard
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		out.InStockCount, out.LowStockCount, out.OutOfStockCount, err = s.repo.CountStock(gctx, threshold)
		return err
	})
	g.Go(func() (err error) {
		out.LowStock, err = s.repo.StockItems(gctx, 1, threshold, threshold, listLimit)
		return err
	})
	g.Go(func() (err error) {
		out.OutOfStock, err = s.repo.StockItems(gctx, 0, 0, threshold, listLimit)
		return err
	})
	g.Go(func() (err error) {
		out.RecentMovements, err = s.repo.RecentMovements(gctx, listLimit)
		return err
	})

	if err := g.Wait(); err != nil {
		return domain.WarehouseDashboard{}, err
	}

	return out, nil
}

func (s *DashboardService) Fulfillment(ctx context.Context) (domain.FulfillmentDashboard, error) {
	queues := make([]domain.FulfillmentQueue, len(fulfillmentStatuses))

	g, gctx := errgroup.WithContext(ctx)
	for i, status := range fulfillmentStatuses {
		g.Go(func() error {
			count, err := s.repo.CountOrdersWithStatus(gctx, status)
			if err != nil {
				return err
			}
			orders, err := s.repo.OrdersWithStatus(gctx, status, queueLimit)
			if err != nil {
				return err
			}
			queues[i] = domain.FulfillmentQueue{Status: status, Count: count, Orders: orders}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return domain.FulfillmentDashboard{}, err
	}

	return domain.FulfillmentDashboard{Queues: queues}, nil
}

func (s *DashboardService) Reports(ctx context.Context) (domain.ReportsDashboard, error) {
	var out domain.ReportsDashboard
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		out.SalesByStatus, err = s.repo.OrdersByStatus(gctx)
		return err
	})
	g.Go(func() (err error) {
		out.TopProducts, err = s.repo.TopProducts(gctx, topProductsMax)
		return err
	})

	if err := g.Wait(); err != nil {
		return domain.ReportsDashboard{}, err
	}

	return out, nil
}
