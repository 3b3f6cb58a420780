//go:build !integration

package settings

import (
	"context"
	"errors"
	"testing"

	"techshop/domain"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryRepo struct {
	saved *domain.SiteConfiguration
}

func (m *memoryRepo) Get(context.Context) (domain.SiteConfiguration, error) {
	if m.saved == nil {
		return domain.SiteConfiguration{}, domain.ErrNotFound
	}
	return *m.saved, nil
}

func (m *memoryRepo) Save(_ context.Context, cfg *domain.SiteConfiguration) error {
	c := *cfg
	m.saved = &c
	return nil
}

type recorder struct {
	entries []domain.ActivityLog
}

func (r *recorder) Record(_ context.Context, entry domain.ActivityLog) error {
	r.entries = append(r.entries, entry)
	return nil
}

func TestCurrentFallsBackToDefaults(t *testing.T) {
	svc := NewSettingsService(&memoryRepo{}, nil)

	cfg, err := svc.Current(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultSiteConfiguration(), cfg)
}

func TestUpdate(t *testing.T) {
	repo := &memoryRepo{}
	rec := &recorder{}
	svc := NewSettingsService(repo, rec)
	ctx := context.Background()
	actor := domain.Actor{UserID: 1}

	bad := []func(c *domain.SiteConfiguration){
		func(c *domain.SiteConfiguration) { c.Currency = " " },
		func(c *domain.SiteConfiguration) { c.TaxRate = decimal.NewFromInt(101) },
		func(c *domain.SiteConfiguration) { c.DefaultShippingCost = decimal.NewFromInt(-1) },
		func(c *domain.SiteConfiguration) { c.LowStockThreshold = -5 },
	}
	for _, mutate := range bad {
		cfg := domain.DefaultSiteConfiguration()
		mutate(&cfg)
		_, err := svc.Update(ctx, actor, cfg)
		var validationErr *domain.ValidationError
		assert.True(t, errors.As(err, &validationErr))
	}
	assert.Nil(t, repo.saved)

	cfg := domain.DefaultSiteConfiguration()
	cfg.Currency = "idr"
	cfg.TaxRate = decimal.NewFromInt(11)

	saved, err := svc.Update(ctx, actor, cfg)
	require.NoError(t, err)
	assert.Equal(t, "IDR", saved.Currency)

	current, err := svc.Current(ctx)
	require.NoError(t, err)
	assert.True(t, current.TaxRate.Equal(decimal.NewFromInt(11)))
	require.Len(t, rec.entries, 1)
	assert.Equal(t, "11", rec.entries[0].Changes["tax_rate"])
}
