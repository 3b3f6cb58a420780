package postgres

import (
	"context"
	"errors"
	"fmt"

	"techshop/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const siteConfigurationID = 1

type SettingsRepository struct {
	DB *gorm.DB
}

func NewSettingsRepository(db *gorm.DB) *SettingsRepository {
	return &SettingsRepository{
		DB: db,
	}
}

func (r *SettingsRepository) Get(ctx context.Context) (domain.SiteConfiguration, error) {
	if err := ctx.Err(); err != nil {
		return domain.SiteConfiguration{}, fmt.Errorf("context error: %w", err)
	}

	var cfg domain.SiteConfiguration
	if err := r.DB.WithContext(ctx).First(&cfg, siteConfigurationID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.SiteConfiguration{}, domain.ErrNotFound
		}
		return domain.SiteConfiguration{}, fmt.Errorf("failed to load settings: %w", err)
	}

	return cfg, nil
}

func (r *SettingsRepository) Save(ctx context.Context, cfg *domain.SiteConfiguration) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	cfg.ID = siteConfigurationID

	err := r.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).Create(cfg).Error
	if err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}

	return nil
}
