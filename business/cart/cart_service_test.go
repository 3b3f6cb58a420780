//go:build !integration

package cart

import (
	"context"
	"errors"
	"testing"

	"techshop/domain"
	psqlRepo "techshop/internal/repository/postgres"
	"techshop/pkg/database"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type defaultSettings struct{}

func (defaultSettings) Current(context.Context) (domain.SiteConfiguration, error) {
	return domain.DefaultSiteConfiguration(), nil
}

func setup(t *testing.T) (*cartService, *gorm.DB) {
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

	svc := NewCartService(psqlRepo.NewCartRepository(db), psqlRepo.NewProductRepository(db), defaultSettings{})
	return svc, db
}

func product(t *testing.T, db *gorm.DB, sku string, stock int, online bool) domain.Product {
	t.Helper()

	p := domain.Product{
		SKU:               sku,
		Name:              "Product " + sku,
		Price:             decimal.RequireFromString("25.00"),
		StockQuantity:     stock,
		ReorderLevel:      5,
		IsAvailableOnline: online,
	}
	require.NoError(t, db.Create(&p).Error)
	return p
}

func TestAddItemAccumulatesUpToStock(t *testing.T) {
	svc, db := setup(t)
	ctx := context.Background()
	p := product(t, db, "LAP-1", 5, true)
	guest := domain.CartOwner{SessionKey: "guest-1"}

	view, err := svc.AddItem(ctx, guest, p.ID, nil, 2)
	require.NoError(t, err)
	require.Len(t, view.Lines, 1)
	assert.Equal(t, 2, view.TotalItems)
	assert.True(t, view.Totals.Subtotal.Equal(decimal.RequireFromString("50.00")))

	view, err = svc.AddItem(ctx, guest, p.ID, nil, 3)
	require.NoError(t, err)
	require.Len(t, view.Lines, 1)
	assert.Equal(t, 5, view.Lines[0].Quantity)

	_, err = svc.AddItem(ctx, guest, p.ID, nil, 1)
	var stockErr *domain.InsufficientStockError
	require.True(t, errors.As(err, &stockErr))
	assert.Equal(t, "LAP-1", stockErr.SKU)
	assert.Equal(t, 6, stockErr.Requested)
	assert.Equal(t, 5, stockErr.Available)
}

func TestAddItemRejectsBadInput(t *testing.T) {
	svc, db := setup(t)
	ctx := context.Background()
	online := product(t, db, "PHN-1", 5, true)
	offline := product(t, db, "PHN-2", 5, false)
	other := product(t, db, "PHN-3", 5, true)
	variant := domain.ProductVariant{ProductID: other.ID, SKUSuffix: "BLK", StockQuantity: 3, IsActive: true}
	require.NoError(t, db.Create(&variant).Error)
	user := domain.CartOwner{UserID: 9}

	_, err := svc.AddItem(ctx, domain.CartOwner{}, online.ID, nil, 1)
	var validationErr *domain.ValidationError
	assert.True(t, errors.As(err, &validationErr))

	_, err = svc.AddItem(ctx, user, online.ID, nil, 0)
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)

	_, err = svc.AddItem(ctx, user, offline.ID, nil, 1)
	assert.ErrorIs(t, err, domain.ErrProductUnavailable)

	_, err = svc.AddItem(ctx, user, online.ID, &variant.ID, 1)
	assert.ErrorIs(t, err, domain.ErrInvalidVariant)

	_, err = svc.AddItem(ctx, user, 999, nil, 1)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUpdateItemToZeroRemovesLine(t *testing.T) {
	svc, db := setup(t)
	ctx := context.Background()
	p := product(t, db, "ACC-1", 10, true)
	user := domain.CartOwner{UserID: 3}

	view, err := svc.AddItem(ctx, user, p.ID, nil, 2)
	require.NoError(t, err)
	itemID := view.Lines[0].ItemID

	_, err = svc.UpdateItem(ctx, user, itemID, 11)
	var stockErr *domain.InsufficientStockError
	assert.True(t, errors.As(err, &stockErr))

	view, err = svc.UpdateItem(ctx, user, itemID, 4)
	require.NoError(t, err)
	assert.Equal(t, 4, view.Lines[0].Quantity)

	view, err = svc.UpdateItem(ctx, user, itemID, 0)
	require.NoError(t, err)
	assert.Empty(t, view.Lines)
	assert.True(t, view.Totals.ShippingCost.IsZero())
}

func TestGetCartWithoutCart(t *testing.T) {
	svc, _ := setup(t)

	view, err := svc.GetCart(context.Background(), domain.CartOwner{UserID: 42})
	require.NoError(t, err)
	assert.Empty(t, view.Lines)
	assert.True(t, view.Totals.TotalAmount.IsZero())
}

func TestMergeGuestCartCapsAtStock(t *testing.T) {
	svc, db := setup(t)
	ctx := context.Background()
	a := product(t, db, "LAP-A", 5, true)
	b := product(t, db, "LAP-B", 5, true)
	guest := domain.CartOwner{SessionKey: "guest-merge"}
	user := domain.CartOwner{UserID: 7}

	_, err := svc.AddItem(ctx, guest, a.ID, nil, 3)
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, guest, b.ID, nil, 1)
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, user, a.ID, nil, 4)
	require.NoError(t, err)

	view, err := svc.MergeGuestCart(ctx, guest.SessionKey, user.UserID)
	require.NoError(t, err)
	require.Len(t, view.Lines, 2)

	quantities := map[uint64]int{}
	for _, l := range view.Lines {
		quantities[l.ProductID] = l.Quantity
	}
	assert.Equal(t, 5, quantities[a.ID])
	assert.Equal(t, 1, quantities[b.ID])

	guestView, err := svc.GetCart(ctx, guest)
	require.NoError(t, err)
	assert.Empty(t, guestView.Lines)
}

func TestMergeGuestCartDropsSoldOutLine(t *testing.T) {
	svc, db := setup(t)
	ctx := context.Background()
	a := product(t, db, "PHN-A", 5, true)
	guest := domain.CartOwner{SessionKey: "guest-sold-out"}
	user := domain.CartOwner{UserID: 9}

	_, err := svc.AddItem(ctx, user, a.ID, nil, 4)
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, guest, a.ID, nil, 1)
	require.NoError(t, err)

	require.NoError(t, db.Model(&domain.Product{}).Where("id = ?", a.ID).Update("stock_quantity", 0).Error)

	view, err := svc.MergeGuestCart(ctx, guest.SessionKey, user.UserID)
	require.NoError(t, err)
	assert.Empty(t, view.Lines)
}
