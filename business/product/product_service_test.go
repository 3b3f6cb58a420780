//go:build !integration

package product

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

type recorder struct {
	entries []domain.ActivityLog
}

func (r *recorder) Record(_ context.Context, entry domain.ActivityLog) error {
	r.entries = append(r.entries, entry)
	return nil
}

func setup(t *testing.T) (*productService, *recorder) {
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

	rec := &recorder{}
	return NewProductService(psqlRepo.NewProductRepository(db), rec), rec
}

var staffActor = domain.Actor{UserID: 4, IP: "127.0.0.1"}

func newProduct(sku string) *domain.Product {
	return &domain.Product{
		SKU:               sku,
		Name:              "Monitor " + sku,
		Price:             decimal.RequireFromString("199.00"),
		StockQuantity:     10,
		ReorderLevel:      3,
		IsAvailableOnline: true,
	}
}

func isValidation(err error) bool {
	var v *domain.ValidationError
	return errors.As(err, &v)
}

func TestCreateProductValidation(t *testing.T) {
	svc, _ := setup(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		mutate func(p *domain.Product)
	}{
		{"blank sku", func(p *domain.Product) { p.SKU = "  " }},
		{"blank name", func(p *domain.Product) { p.Name = "" }},
		{"zero price", func(p *domain.Product) { p.Price = decimal.Zero }},
		{"negative stock", func(p *domain.Product) { p.StockQuantity = -1 }},
		{"discount over 100", func(p *domain.Product) { p.DiscountPercentage = decimal.NewFromInt(120) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newProduct("MON-1")
			tt.mutate(p)
			_, err := svc.CreateProduct(ctx, staffActor, p)
			assert.True(t, isValidation(err), "got %v", err)
		})
	}
}

func TestCreateAndUpdateProduct(t *testing.T) {
	svc, rec := setup(t)
	ctx := context.Background()

	created, err := svc.CreateProduct(ctx, staffActor, newProduct(" MON-27 "))
	require.NoError(t, err)
	assert.Equal(t, "MON-27", created.SKU)
	require.Len(t, rec.entries, 1)
	assert.Equal(t, domain.ActionCreate, rec.entries[0].Action)

	edit := *created
	edit.Price = decimal.RequireFromString("179.00")
	edit.StockQuantity = 999

	updated, err := svc.UpdateProduct(ctx, staffActor, &edit)
	require.NoError(t, err)
	assert.True(t, updated.Price.Equal(decimal.RequireFromString("179.00")))
	assert.Equal(t, 10, updated.StockQuantity)

	require.Len(t, rec.entries, 2)
	assert.Contains(t, rec.entries[1].Changes, "price")

	bySKU, err := svc.GetProductBySKU(ctx, "MON-27")
	require.NoError(t, err)
	assert.Equal(t, created.ID, bySKU.ID)

	_, err = svc.UpdateProduct(ctx, staffActor, &domain.Product{})
	assert.True(t, isValidation(err))
}

func TestAdjustStock(t *testing.T) {
	svc, _ := setup(t)
	ctx := context.Background()

	p, err := svc.CreateProduct(ctx, staffActor, newProduct("MON-32"))
	require.NoError(t, err)

	_, err = svc.AdjustStock(ctx, staffActor, domain.StockAdjustment{ProductID: p.ID, Delta: 0, Reason: "count"})
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)

	_, err = svc.AdjustStock(ctx, staffActor, domain.StockAdjustment{ProductID: p.ID, Delta: 2})
	assert.True(t, isValidation(err))

	_, err = svc.AdjustStock(ctx, staffActor, domain.StockAdjustment{ProductID: p.ID, Delta: -11, Reason: "damaged"})
	assert.ErrorIs(t, err, domain.ErrNegativeStock)

	movement, err := svc.AdjustStock(ctx, staffActor, domain.StockAdjustment{ProductID: p.ID, Delta: 5, Reason: "received"})
	require.NoError(t, err)
	assert.Equal(t, domain.MovementReceived, movement.MovementType)
	require.NotNil(t, movement.PerformedBy)
	assert.Equal(t, staffActor.UserID, *movement.PerformedBy)

	reloaded, err := svc.GetProductByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 15, reloaded.StockQuantity)

	movements, err := svc.ListMovements(ctx, p.ID, 0)
	require.NoError(t, err)
	assert.Len(t, movements, 1)
}

func TestVariantsBelongToTheirProduct(t *testing.T) {
	svc, _ := setup(t)
	ctx := context.Background()

	a, err := svc.CreateProduct(ctx, staffActor, newProduct("MON-A"))
	require.NoError(t, err)
	b, err := svc.CreateProduct(ctx, staffActor, newProduct("MON-B"))
	require.NoError(t, err)

	v, err := svc.AddVariant(ctx, staffActor, &domain.ProductVariant{
		ProductID:       a.ID,
		SKUSuffix:       "4K",
		Attributes:      map[string]interface{}{"resolution": "4K"},
		PriceAdjustment: decimal.RequireFromString("50.00"),
		StockQuantity:   2,
		IsActive:        true,
	})
	require.NoError(t, err)

	_, err = svc.AddVariant(ctx, staffActor, &domain.ProductVariant{ProductID: a.ID, StockQuantity: -1})
	assert.True(t, isValidation(err))

	_, err = svc.UpdateVariant(ctx, staffActor, b.ID, &domain.ProductVariant{ID: v.ID, IsActive: false})
	assert.ErrorIs(t, err, domain.ErrInvalidVariant)

	_, err = svc.AdjustStock(ctx, staffActor, domain.StockAdjustment{ProductID: b.ID, VariantID: &v.ID, Delta: 1, Reason: "count"})
	assert.ErrorIs(t, err, domain.ErrInvalidVariant)

	variants, err := svc.ListVariants(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, variants, 1)
	assert.Equal(t, "4K", variants[0].SKUSuffix)
}
