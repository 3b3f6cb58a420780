package settings

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"techshop/domain"
	"techshop/pkg/logger"

	"github.com/shopspring/decimal"
)

type SettingsRepository interface {
	Get(ctx context.Context) (domain.SiteConfiguration, error)
	Save(ctx context.Context, cfg *domain.SiteConfiguration) error
}

type ActivityRecorder interface {
	Record(ctx context.Context, entry domain.ActivityLog) error
}

type settingsService struct {
	repo     SettingsRepository
	activity ActivityRecorder
}

func NewSettingsService(repo SettingsRepository, activity ActivityRecorder) *settingsService {
	return &settingsService{
		repo:     repo,
		activity: activity,
	}
}

// Current returns the stored configuration, or the defaults when none is saved.
func (s *settingsService) Current(ctx context.Context) (domain.SiteConfiguration, error) {
	cfg, err := s.repo.Get(ctx)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.DefaultSiteConfiguration(), nil
	}
	if err != nil {
		logger.Error("failed to load site configuration", err)
		return domain.SiteConfiguration{}, err
	}

	return cfg, nil
}

func (s *settingsService) Update(ctx context.Context, actor domain.Actor, cfg domain.SiteConfiguration) (domain.SiteConfiguration, error) {
	cfg.Currency = strings.ToUpper(strings.TrimSpace(cfg.Currency))
	if cfg.Currency == "" {
		return domain.SiteConfiguration{}, domain.Invalid("currency is required")
	}

	if cfg.TaxRate.IsNegative() || cfg.TaxRate.GreaterThan(decimal.NewFromInt(100)) {
		return domain.SiteConfiguration{}, domain.Invalid("tax rate must be between 0 and 100")
	}

	if cfg.FreeShippingThreshold.IsNegative() || cfg.DefaultShippingCost.IsNegative() {
		return domain.SiteConfiguration{}, domain.Invalid("shipping amounts cannot be negative")
	}

	if cfg.LowStockThreshold < 0 {
		return domain.SiteConfiguration{}, domain.Invalid("low stock threshold cannot be negative")
	}

	if err := s.repo.Save(ctx, &cfg); err != nil {
		logger.Error("failed to save site configuration", err)
		return domain.SiteConfiguration{}, fmt.Errorf("failed to save settings: %w", err)
	}

	if s.activity != nil {
		entry := actor.Log(domain.ActionUpdate, "SiteConfiguration", "1", "Updated site configuration", map[string]any{
			"tax_enabled":             cfg.TaxEnabled,
			"tax_rate":                cfg.TaxRate.String(),
			"free_shipping_threshold": cfg.FreeShippingThreshold.String(),
			"default_shipping_cost":   cfg.DefaultShippingCost.String(),
		})
		if err := s.activity.Record(ctx, entry); err != nil {
			logger.Warn("failed to record activity", err)
		}
	}

	return cfg, nil
}
