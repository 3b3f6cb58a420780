package postgres

import (
	"context"
	"errors"
	"fmt"

	"techshop/domain"

	"gorm.io/gorm"
)

type StaffRepository struct {
	DB *gorm.DB
}

func NewStaffRepository(db *gorm.DB) *StaffRepository {
	return &StaffRepository{
		DB: db,
	}
}

func (r *StaffRepository) Create(ctx context.Context, profile *domain.StaffProfile) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	if err := r.DB.WithContext(ctx).Omit("User").Create(profile).Error; err != nil {
		return fmt.Errorf("failed to create staff profile: %w", err)
	}

	return nil
}

func (r *StaffRepository) FindByID(ctx context.Context, id uint) (domain.StaffProfile, error) {
	return r.findOne(ctx, "id = ?", id)
}

func (r *StaffRepository) FindByUserID(ctx context.Context, userID uint) (domain.StaffProfile, error) {
	return r.findOne(ctx, "user_id = ?", userID)
}

func (r *StaffRepository) findOne(ctx context.Context, query string, arg interface{}) (domain.StaffProfile, error) {
	if err := ctx.Err(); err != nil {
		return domain.StaffProfile{}, fmt.Errorf("context error: %w", err)
	}

	var profile domain.StaffProfile
	if err := r.DB.WithContext(ctx).Preload("User").Where(query, arg).First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.StaffProfile{}, domain.ErrStaffNotFound
		}
		return domain.StaffProfile{}, fmt.Errorf("failed to find staff profile: %w", err)
	}

	return profile, nil
}

func (r *StaffRepository) FindAll(ctx context.Context) ([]domain.StaffProfile, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	var profiles []domain.StaffProfile
	if err := r.DB.WithContext(ctx).Preload("User").Order("id ASC").Find(&profiles).Error; err != nil {
		return nil, fmt.Errorf("failed to find staff: %w", err)
	}

	return profiles, nil
}

// Save writes every column, including false permission flags.
func (r *StaffRepository) Save(ctx context.Context, profile *domain.StaffProfile) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	if err := r.DB.WithContext(ctx).Omit("User").Save(profile).Error; err != nil {
		return fmt.Errorf("failed to save staff profile: %w", err)
	}

	return nil
}
