//go:build !integration

package postgres

import (
	"context"
	"testing"
	"time"

	"techshop/domain"
	"techshop/pkg/database"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.Migrate(db))

	return db
}

func seedProduct(t *testing.T, db *gorm.DB, sku string, stock int) domain.Product {
	t.Helper()

	p := domain.Product{
		SKU:               sku,
		Name:              "Product " + sku,
		Price:             decimal.RequireFromString("25.00"),
		StockQuantity:     stock,
		ReorderLevel:      5,
		IsAvailableOnline: true,
	}
	require.NoError(t, db.Create(&p).Error)
	return p
}

func seedCart(t *testing.T, db *gorm.DB, userID uint, items ...domain.CartItem) domain.Cart {
	t.Helper()

	cart := domain.Cart{UserID: &userID}
	require.NoError(t, db.Create(&cart).Error)
	for i := range items {
		items[i].CartID = cart.ID
		require.NoError(t, db.Create(&items[i]).Error)
	}
	return cart
}

func orderFor(userID uint, number string, status domain.OrderStatus, lines []domain.StockLine) *domain.WebOrder {
	items := make([]domain.OrderItem, 0, len(lines))
	for _, l := range lines {
		unit := decimal.RequireFromString("25.00")
		items = append(items, domain.OrderItem{
			ProductID:   l.ProductID,
			VariantID:   l.VariantID,
			SKU:         l.SKU,
			ProductName: "Product " + l.SKU,
			Quantity:    l.Quantity,
			UnitPrice:   unit,
			Subtotal:    unit.Mul(decimal.NewFromInt(int64(l.Quantity))),
		})
	}

	subtotal := domain.SumSubtotals(items)

	return &domain.WebOrder{
		OrderNumber:     number,
		UserID:          userID,
		Status:          status,
		Subtotal:        subtotal,
		TaxAmount:       decimal.Zero,
		ShippingCost:    decimal.Zero,
		TotalAmount:     subtotal,
		Currency:        "USD",
		ShippingAddress: "1 Main St",
		ShippingCity:    "Springfield",
		ShippingState:   "IL",
		ShippingZip:     "62701",
		ClientIP:        "10.0.0.1",
		Items:           items,
	}
}

func payment(method string, status domain.PaymentStatus, txn string) *domain.PaymentTransaction {
	return &domain.PaymentTransaction{
		TransactionID: txn,
		PaymentMethod: method,
		Amount:        decimal.RequireFromString("50.00"),
		Status:        status,
	}
}

func stockOf(t *testing.T, db *gorm.DB, model interface{}, id uint64) int {
	t.Helper()

	var qty int
	require.NoError(t, db.Model(model).Where("id = ?", id).Select("stock_quantity").Scan(&qty).Error)
	return qty
}

func TestPlaceOrderDeductsStock(t *testing.T) {
	db := newTestDB(t)
	repo := NewOrdersRepository(db)
	ctx := context.Background()

	laptop := seedProduct(t, db, "LAP", 5)
	shirt := seedProduct(t, db, "TSH", 10)
	variant := domain.ProductVariant{ProductID: shirt.ID, SKUSuffix: "RED", StockQuantity: 3, IsActive: true}
	require.NoError(t, db.Create(&variant).Error)

	cart := seedCart(t, db, 7,
		domain.CartItem{ProductID: laptop.ID, Quantity: 2},
		domain.CartItem{ProductID: shirt.ID, VariantID: &variant.ID, Quantity: 1},
	)

	lines := []domain.StockLine{
		{ProductID: laptop.ID, SKU: "LAP", Quantity: 2},
		{ProductID: shirt.ID, VariantID: &variant.ID, SKU: "TSH-RED", Quantity: 1},
	}
	place := &domain.PlaceOrder{
		Order:   orderFor(7, "ORD-AAAA0001", domain.OrderStatusConfirmed, lines),
		Lines:   lines,
		Payment: payment(domain.PaymentMethodCard, domain.PaymentStatusCompleted, "TXN-1"),
		CartID:  cart.ID,
	}

	require.NoError(t, repo.PlaceOrder(ctx, place))
	require.NotZero(t, place.Order.ID)

	assert.Equal(t, 3, stockOf(t, db, &domain.Product{}, laptop.ID))
	assert.Equal(t, 9, stockOf(t, db, &domain.Product{}, shirt.ID))
	assert.Equal(t, 2, stockOf(t, db, &domain.ProductVariant{}, variant.ID))

	var movements []domain.InventoryMovement
	require.NoError(t, db.Where("reference_number = ?", "ORD-AAAA0001").Find(&movements).Error)
	require.Len(t, movements, 2)
	for _, m := range movements {
		assert.Equal(t, domain.MovementSold, m.MovementType)
		assert.Negative(t, m.Quantity)
	}

	var items int64
	require.NoError(t, db.Model(&domain.CartItem{}).Where("cart_id = ?", cart.ID).Count(&items).Error)
	assert.Zero(t, items)

	got, err := repo.FindByNumber(ctx, "ORD-AAAA0001")
	require.NoError(t, err)
	assert.Len(t, got.Items, 2)
	require.NotNil(t, got.Payment)
	assert.Equal(t, "TXN-1", got.Payment.TransactionID)
	assert.True(t, got.Subtotal.Equal(domain.SumSubtotals(got.Items)))
}

func TestPlaceOrderRollsBackOnShortage(t *testing.T) {
	db := newTestDB(t)
	repo := NewOrdersRepository(db)

	laptop := seedProduct(t, db, "LAP", 5)
	mouse := seedProduct(t, db, "MOU", 1)
	cart := seedCart(t, db, 7,
		domain.CartItem{ProductID: laptop.ID, Quantity: 2},
		domain.CartItem{ProductID: mouse.ID, Quantity: 3},
	)

	lines := []domain.StockLine{
		{ProductID: laptop.ID, SKU: "LAP", Quantity: 2},
		{ProductID: mouse.ID, SKU: "MOU", Quantity: 3},
	}
	err := repo.PlaceOrder(context.Background(), &domain.PlaceOrder{
		Order:   orderFor(7, "ORD-AAAA0002", domain.OrderStatusConfirmed, lines),
		Lines:   lines,
		Payment: payment(domain.PaymentMethodCard, domain.PaymentStatusCompleted, "TXN-2"),
		CartID:  cart.ID,
	})

	var stockErr *domain.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, "MOU", stockErr.SKU)
	assert.Equal(t, 3, stockErr.Requested)
	assert.Equal(t, 1, stockErr.Available)

	assert.Equal(t, 5, stockOf(t, db, &domain.Product{}, laptop.ID))
	assert.Equal(t, 1, stockOf(t, db, &domain.Product{}, mouse.ID))

	var orders, items int64
	require.NoError(t, db.Model(&domain.WebOrder{}).Count(&orders).Error)
	require.NoError(t, db.Model(&domain.CartItem{}).Count(&items).Error)
	assert.Zero(t, orders)
	assert.Equal(t, int64(2), items)
}

func placeSimple(t *testing.T, db *gorm.DB, number string, status domain.OrderStatus, pay *domain.PaymentTransaction, review *domain.OrderReview) (domain.Product, *domain.WebOrder) {
	t.Helper()

	product := seedProduct(t, db, "SKU-"+number, 10)
	lines := []domain.StockLine{{ProductID: product.ID, SKU: product.SKU, Quantity: 4}}
	order := orderFor(7, number, status, lines)

	require.NoError(t, NewOrdersRepository(db).PlaceOrder(context.Background(), &domain.PlaceOrder{
		Order:   order,
		Lines:   lines,
		Payment: pay,
		Review:  review,
	}))

	return product, order
}

func TestTransitionCancelRestocks(t *testing.T) {
	db := newTestDB(t)
	repo := NewOrdersRepository(db)
	ctx := context.Background()

	product, order := placeSimple(t, db, "ORD-CANCEL01", domain.OrderStatusConfirmed,
		payment(domain.PaymentMethodCard, domain.PaymentStatusCompleted, "TXN-3"), nil)
	require.Equal(t, 6, stockOf(t, db, &domain.Product{}, product.ID))

	updated, err := repo.Transition(ctx, order.ID, domain.OrderStatusCancelled, 1, time.Now())
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusCancelled, updated.Status)
	assert.Equal(t, domain.PaymentStatusRefunded, updated.Payment.Status)
	assert.Equal(t, 10, stockOf(t, db, &domain.Product{}, product.ID))

	var returned int64
	require.NoError(t, db.Model(&domain.InventoryMovement{}).
		Where("movement_type = ? AND reference_number = ?", domain.MovementReturned, order.OrderNumber).
		Count(&returned).Error)
	assert.Equal(t, int64(1), returned)

	_, err = repo.Transition(ctx, order.ID, domain.OrderStatusShipped, 1, time.Now())
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	assert.Equal(t, 10, stockOf(t, db, &domain.Product{}, product.ID))
}

func TestTransitionForwardOnly(t *testing.T) {
	db := newTestDB(t)
	repo := NewOrdersRepository(db)
	ctx := context.Background()

	_, order := placeSimple(t, db, "ORD-SHIP0001", domain.OrderStatusConfirmed,
		payment(domain.PaymentMethodCard, domain.PaymentStatusCompleted, "TXN-4"), nil)

	shipped, err := repo.Transition(ctx, order.ID, domain.OrderStatusShipped, 1, time.Now())
	require.NoError(t, err)
	assert.NotNil(t, shipped.ShippedAt)

	_, err = repo.Transition(ctx, order.ID, domain.OrderStatusProcessing, 1, time.Now())
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	_, err = repo.Transition(ctx, order.ID, domain.OrderStatusCancelled, 1, time.Now())
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	delivered, err := repo.Transition(ctx, order.ID, domain.OrderStatusDelivered, 1, time.Now())
	require.NoError(t, err)
	assert.NotNil(t, delivered.DeliveredAt)

	_, err = repo.Transition(ctx, 9999, domain.OrderStatusShipped, 1, time.Now())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestResolveReview(t *testing.T) {
	db := newTestDB(t)
	repo := NewOrdersRepository(db)
	ctx := context.Background()

	review := &domain.OrderReview{RiskLevel: domain.RiskMedium, RiskScore: 60, Reasons: "High value order", Status: domain.ReviewStatusOpen}
	_, order := placeSimple(t, db, "ORD-REVIEW01", domain.OrderStatusPending,
		payment(domain.PaymentMethodCard, domain.PaymentStatusCompleted, "TXN-5"), review)

	open, err := repo.FindReviews(ctx, domain.ReviewStatusOpen)
	require.NoError(t, err)
	require.Len(t, open, 1)

	resolved, err := repo.ResolveReview(ctx, open[0].ID, domain.ReviewStatusApproved, 1, "checked with customer", time.Now())
	require.NoError(t, err)
	assert.Equal(t, domain.ReviewStatusApproved, resolved.Status)

	got, err := repo.FindByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusConfirmed, got.Status)

	_, err = repo.ResolveReview(ctx, open[0].ID, domain.ReviewStatusRejected, 1, "", time.Now())
	assert.ErrorIs(t, err, domain.ErrReviewClosed)
}

func TestResolveReviewApproveWaitsForPayment(t *testing.T) {
	db := newTestDB(t)
	repo := NewOrdersRepository(db)
	payments := NewPaymentsRepository(db)
	ctx := context.Background()

	review := &domain.OrderReview{RiskLevel: domain.RiskLow, RiskScore: 25, Reasons: "High value order", Status: domain.ReviewStatusOpen}
	_, order := placeSimple(t, db, "ORD-REVIEW03", domain.OrderStatusPending,
		payment(domain.PaymentMethodXendit, domain.PaymentStatusPending, "TXN-9"), review)

	_, err := repo.ResolveReview(ctx, review.ID, domain.ReviewStatusApproved, 1, "", time.Now())
	require.NoError(t, err)

	got, err := repo.FindByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusPending, got.Status)
	assert.False(t, got.UnderReview())

	paid, err := payments.MarkPaid(ctx, order.OrderNumber, time.Now())
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusConfirmed, paid.Status)
}

func TestResolveReviewRejectCancels(t *testing.T) {
	db := newTestDB(t)
	repo := NewOrdersRepository(db)
	ctx := context.Background()

	review := &domain.OrderReview{RiskLevel: domain.RiskHigh, RiskScore: 90, Status: domain.ReviewStatusOpen}
	product, order := placeSimple(t, db, "ORD-REVIEW02", domain.OrderStatusPending,
		payment(domain.PaymentMethodCard, domain.PaymentStatusCompleted, "TXN-6"), review)

	_, err := repo.ResolveReview(ctx, review.ID, domain.ReviewStatusRejected, 1, "stolen card", time.Now())
	require.NoError(t, err)

	got, err := repo.FindByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusCancelled, got.Status)
	assert.Equal(t, 10, stockOf(t, db, &domain.Product{}, product.ID))
}

func TestMarkPaid(t *testing.T) {
	db := newTestDB(t)
	payments := NewPaymentsRepository(db)
	ctx := context.Background()

	_, order := placeSimple(t, db, "ORD-XENDIT01", domain.OrderStatusPending,
		payment(domain.PaymentMethodXendit, domain.PaymentStatusPending, "TXN-7"), nil)

	paid, err := payments.MarkPaid(ctx, order.OrderNumber, time.Now())
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusConfirmed, paid.Status)

	pay, err := payments.FindByOrderID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusCompleted, pay.Status)
	assert.NotNil(t, pay.ProcessedAt)

	again, err := payments.MarkPaid(ctx, order.OrderNumber, time.Now())
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusConfirmed, again.Status)

	_, err = payments.MarkPaid(ctx, "ORD-MISSING", time.Now())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestMarkFailedCancels(t *testing.T) {
	db := newTestDB(t)
	payments := NewPaymentsRepository(db)

	product, order := placeSimple(t, db, "ORD-XENDIT02", domain.OrderStatusPending,
		payment(domain.PaymentMethodXendit, domain.PaymentStatusPending, "TXN-8"), nil)

	got, err := payments.MarkFailed(context.Background(), order.OrderNumber, time.Now())
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusCancelled, got.Status)
	assert.Equal(t, domain.PaymentStatusFailed, got.Payment.Status)
	assert.Equal(t, 10, stockOf(t, db, &domain.Product{}, product.ID))
}

func TestFraudCounts(t *testing.T) {
	db := newTestDB(t)
	repo := NewOrdersRepository(db)
	ctx := context.Background()

	placeSimple(t, db, "ORD-COUNT001", domain.OrderStatusConfirmed, nil, nil)
	placeSimple(t, db, "ORD-COUNT002", domain.OrderStatusConfirmed, nil, nil)

	total, err := repo.CountOrders(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)

	recent, err := repo.CountOrdersSince(ctx, 7, time.Now().Add(-time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(2), recent)

	fromIP, err := repo.CountOrdersFromIPSince(ctx, "10.0.0.1", time.Now().Add(-time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(2), fromIP)

	other, err := repo.CountOrders(ctx, 8)
	require.NoError(t, err)
	assert.Zero(t, other)
}

func TestAdjustStock(t *testing.T) {
	db := newTestDB(t)
	repo := NewProductRepository(db)
	ctx := context.Background()

	product := seedProduct(t, db, "ADJ", 3)

	movement, err := repo.AdjustStock(ctx, domain.StockAdjustment{ProductID: product.ID, Delta: 7, Reason: "received", PerformedBy: 1})
	require.NoError(t, err)
	assert.Equal(t, domain.MovementReceived, movement.MovementType)
	assert.Equal(t, 10, stockOf(t, db, &domain.Product{}, product.ID))

	_, err = repo.AdjustStock(ctx, domain.StockAdjustment{ProductID: product.ID, Delta: -11, Reason: "damaged"})
	assert.ErrorIs(t, err, domain.ErrNegativeStock)
	assert.Equal(t, 10, stockOf(t, db, &domain.Product{}, product.ID))

	_, err = repo.AdjustStock(ctx, domain.StockAdjustment{ProductID: 9999, Delta: 1})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDashboardAggregates(t *testing.T) {
	db := newTestDB(t)
	dash := NewDashboardRepository(db)
	ctx := context.Background()

	seedProduct(t, db, "OUT", 0)
	seedProduct(t, db, "LOW", 3)
	placeSimple(t, db, "ORD-DASH0001", domain.OrderStatusConfirmed, nil, nil)

	inStock, lowStock, outOfStock, err := dash.CountStock(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(0), inStock)
	assert.Equal(t, int64(2), lowStock)
	assert.Equal(t, int64(1), outOfStock)

	low, err := dash.StockItems(ctx, 1, 10, 10, 20)
	require.NoError(t, err)
	require.Len(t, low, 2)
	assert.Equal(t, "LOW", low[0].SKU)
	assert.Equal(t, domain.StockStatusLowStock, low[0].Status)

	byStatus, err := dash.OrdersByStatus(ctx)
	require.NoError(t, err)
	require.Len(t, byStatus, 1)
	assert.Equal(t, domain.OrderStatusConfirmed, byStatus[0].Status)
	assert.Equal(t, int64(1), byStatus[0].Count)

	top, err := dash.TopProducts(ctx, 5)
	require.NoError(t, err)
	require.Len(t, top, 1)
	assert.Equal(t, int64(4), top[0].Quantity)
	assert.Equal(t, "100.00", top[0].Revenue.StringFixed(2))
}
