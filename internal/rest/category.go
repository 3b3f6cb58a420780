package rest

import (
	"context"
	"net/http"
	"time"

	"techshop/domain"
	"techshop/pkg/logger"

	"github.com/AMFarhan21/fres"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type CategoryService interface {
	GetAllCategories(ctx context.Context) ([]domain.Category, error)
	GetCategoryByID(ctx context.Context, id uint64) (domain.Category, error)
	CreateCategory(ctx context.Context, actor domain.Actor, category *domain.Category) (*domain.Category, error)
	UpdateCategory(ctx context.Context, actor domain.Actor, category *domain.Category) (*domain.Category, error)
	DeleteCategory(ctx context.Context, actor domain.Actor, id uint64) error
}

type CategoryHandler struct {
	categoryService CategoryService
	validator       *validator.Validate
	timeout         time.Duration
}

func NewCategoryHandler(categoryService CategoryService, timeout time.Duration) *CategoryHandler {
	return &CategoryHandler{
		categoryService: categoryService,
		validator:       validator.New(),
		timeout:         timeout,
	}
}

type CategoryRequest struct {
	Name        string `json:"name" validate:"required,max=200"`
	Description string `json:"description"`
}

func (h *CategoryHandler) GetAllCategories(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	categories, err := h.categoryService.GetAllCategories(ctx)
	if err != nil {
		return respondError(c, err, "Failed to find all categories")
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(categories))
}

func (h *CategoryHandler) GetCategoryByID(c echo.Context) error {
	categoryID, err := parseID(c, "id")
	if err != nil {
		logger.Error("Invalid category id", err)
		return badRequest(c, "invalid category id")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	category, err := h.categoryService.GetCategoryByID(ctx, categoryID)
	if err != nil {
		return respondError(c, err, "Failed to find category")
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(category))
}

func (h *CategoryHandler) CreateCategory(c echo.Context) error {
	var req CategoryRequest

	if err := bindRequest(c, h.validator, &req); err != nil {
		return badRequest(c, err.Error())
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	category, err := h.categoryService.CreateCategory(ctx, actor(c), &domain.Category{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		return respondError(c, err, "Failed to create category")
	}

	return c.JSON(http.StatusCreated, fres.Response.StatusCreated(category))
}

func (h *CategoryHandler) UpdateCategory(c echo.Context) error {
	categoryID, err := parseID(c, "id")
	if err != nil {
		logger.Error("Invalid category id", err)
		return badRequest(c, "invalid category id")
	}

	var req CategoryRequest
	if err := bindRequest(c, h.validator, &req); err != nil {
		return badRequest(c, err.Error())
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	category, err := h.categoryService.UpdateCategory(ctx, actor(c), &domain.Category{
		ID:          categoryID,
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		return respondError(c, err, "Failed to update category")
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(category))
}

func (h *CategoryHandler) DeleteCategory(c echo.Context) error {
	categoryID, err := parseID(c, "id")
	if err != nil {
		logger.Error("Invalid category id", err)
		return badRequest(c, "invalid category id")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	if err := h.categoryService.DeleteCategory(ctx, actor(c), categoryID); err != nil {
		return respondError(c, err, "Failed to delete category")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message":     "category successfully deleted",
		"category_id": categoryID,
	})
}
