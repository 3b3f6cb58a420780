package category

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"techshop/domain"
	"techshop/pkg/logger"
)

// CategoryRepository contract interface
type CategoryRepository interface {
	Create(ctx context.Context, category *domain.Category) error
	FindByID(ctx context.Context, id uint64) (domain.Category, error)
	FindAll(ctx context.Context) ([]domain.Category, error)
	Update(ctx context.Context, category *domain.Category) error
	Delete(ctx context.Context, id uint64) error
}

type ActivityRecorder interface {
	Record(ctx context.Context, entry domain.ActivityLog) error
}

type categoryService struct {
	categoryRepo CategoryRepository
	activity     ActivityRecorder
}

func NewCategoryService(categoryRepo CategoryRepository, activity ActivityRecorder) *categoryService {
	return &categoryService{
		categoryRepo: categoryRepo,
		activity:     activity,
	}
}

func (s *categoryService) record(ctx context.Context, entry domain.ActivityLog) {
	if s.activity == nil {
		return
	}
	if err := s.activity.Record(ctx, entry); err != nil {
		logger.Warn("failed to record activity", err)
	}
}

func (s *categoryService) GetAllCategories(ctx context.Context) ([]domain.Category, error) {
	if err := ctx.Err(); err != nil {
		logger.Error("context error when get all categories")
		return nil, fmt.Errorf("context error: %w", err)
	}

	categories, err := s.categoryRepo.FindAll(ctx)
	if err != nil {
		logger.Error("Failed to find all categories", err)
		return nil, err
	}

	return categories, nil
}

func (s *categoryService) GetCategoryByID(ctx context.Context, id uint64) (domain.Category, error) {
	if id == 0 {
		logger.Error("Invalid category id")
		return domain.Category{}, domain.ErrCategoryNotFound
	}

	category, err := s.categoryRepo.FindByID(ctx, id)
	if err != nil {
		logger.Error("Failed to find category", err)
		return domain.Category{}, err
	}

	return category, nil
}

func (s *categoryService) CreateCategory(ctx context.Context, actor domain.Actor, category *domain.Category) (*domain.Category, error) {
	if err := ctx.Err(); err != nil {
		logger.Error("context error when create category")
		return nil, fmt.Errorf("context error: %w", err)
	}

	category.Name = strings.TrimSpace(category.Name)
	if category.Name == "" {
		logger.Error("Invalid category data: name is required")
		return nil, domain.Invalid("category name is required")
	}

	if err := s.categoryRepo.Create(ctx, category); err != nil {
		logger.Error("failed to create new category", err)
		return nil, fmt.Errorf("failed to create category: %w", err)
	}

	s.record(ctx, actor.Log(domain.ActionCreate, "Category", strconv.FormatUint(category.ID, 10), "Created category "+category.Name, nil))

	return category, nil
}

func (s *categoryService) UpdateCategory(ctx context.Context, actor domain.Actor, category *domain.Category) (*domain.Category, error) {
	category.Name = strings.TrimSpace(category.Name)
	if category.Name == "" {
		logger.Error("Invalid category data: name is required")
		return nil, domain.Invalid("category name is required")
	}

	if _, err := s.categoryRepo.FindByID(ctx, category.ID); err != nil {
		logger.Error("category not found", err)
		return nil, err
	}

	if err := s.categoryRepo.Update(ctx, category); err != nil {
		logger.Error("failed to update category", err)
		return nil, fmt.Errorf("failed to update category: %w", err)
	}

	updated, err := s.categoryRepo.FindByID(ctx, category.ID)
	if err != nil {
		return nil, err
	}

	s.record(ctx, actor.Log(domain.ActionUpdate, "Category", strconv.FormatUint(updated.ID, 10), "Updated category "+updated.Name, nil))

	return &updated, nil
}

func (s *categoryService) DeleteCategory(ctx context.Context, actor domain.Actor, id uint64) error {
	if id == 0 {
		return domain.ErrCategoryNotFound
	}

	if err := s.categoryRepo.Delete(ctx, id); err != nil {
		logger.Error("failed to delete category", err)
		return err
	}

	s.record(ctx, actor.Log(domain.ActionDelete, "Category", strconv.FormatUint(id, 10), "Deleted category", nil))

	return nil
}
