package rest

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"techshop/business/staff"
	"techshop/domain"
	"techshop/internal/middleware"

	"github.com/AMFarhan21/fres"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

type StaffService interface {
	ListStaff(ctx context.Context) ([]domain.StaffProfile, error)
	CreateStaff(ctx context.Context, actor domain.Actor, in staff.CreateStaffInput) (domain.StaffProfile, error)
	UpdateRole(ctx context.Context, actor domain.Actor, staffID uint, role domain.Role) (domain.StaffProfile, error)
	SetPermissions(ctx context.Context, actor domain.Actor, staffID uint, perms domain.Permissions) (domain.StaffProfile, error)
	SetActive(ctx context.Context, actor domain.Actor, staffID uint, active bool) (domain.StaffProfile, error)
	SwitchRole(ctx context.Context, actor domain.Actor, role domain.Role) (domain.StaffProfile, error)
	SwitchBack(ctx context.Context, actor domain.Actor) (domain.StaffProfile, error)
	ListActivity(ctx context.Context, filter domain.ActivityFilter) ([]domain.ActivityLog, int64, error)
}

type SettingsService interface {
	Current(ctx context.Context) (domain.SiteConfiguration, error)
	Update(ctx context.Context, actor domain.Actor, cfg domain.SiteConfiguration) (domain.SiteConfiguration, error)
}

type StaffHandler struct {
	staffService    StaffService
	settingsService SettingsService
	validator       *validator.Validate
	timeout         time.Duration
}

func NewStaffHandler(staffService StaffService, settingsService SettingsService, timeout time.Duration) *StaffHandler {
	return &StaffHandler{
		staffService:    staffService,
		settingsService: settingsService,
		validator:       validator.New(),
		timeout:         timeout,
	}
}

type CreateStaffRequest struct {
	Email      string `json:"email" validate:"required,email"`
	Role       string `json:"role" validate:"required"`
	Department string `json:"department" validate:"max=100"`
	Phone      string `json:"phone" validate:"max=20"`
}

type RoleRequest struct {
	Role string `json:"role" validate:"required"`
}

type ActiveRequest struct {
	IsActive bool `json:"is_active"`
}

type SettingsRequest struct {
	SiteName                string          `json:"site_name" validate:"required,max=200"`
	Currency                string          `json:"currency" validate:"required,max=10"`
	CurrencySymbol          string          `json:"currency_symbol" validate:"required,max=10"`
	TaxEnabled              bool            `json:"tax_enabled"`
	TaxRate                 decimal.Decimal `json:"tax_rate"`
	FreeShippingThreshold   decimal.Decimal `json:"free_shipping_threshold"`
	DefaultShippingCost     decimal.Decimal `json:"default_shipping_cost"`
	LowStockThreshold       int             `json:"low_stock_threshold" validate:"gte=0"`
	NotifyNewOrder          bool            `json:"notify_new_order"`
	NotifyLowStock          bool            `json:"notify_low_stock"`
	NotifyOrderStatusChange bool            `json:"notify_order_status_change"`
	AdminEmail              string          `json:"admin_email" validate:"omitempty,email"`
}

func staffError(c echo.Context, err error, action string) error {
	switch {
	case errors.Is(err, staff.ErrAlreadyStaff):
		return c.JSON(http.StatusConflict, ResponseError{Message: err.Error()})
	case errors.Is(err, staff.ErrNotSwitched):
		return c.JSON(http.StatusConflict, ResponseError{Message: err.Error()})
	case errors.Is(err, staff.ErrSuperAdminReq):
		return c.JSON(http.StatusForbidden, ResponseError{Message: err.Error()})
	}
	return respondError(c, err, action)
}

func staffID(c echo.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	return uint(id), err
}

// Me returns the caller's staff profile and the dashboards it unlocks.
func (h *StaffHandler) Me(c echo.Context) error {
	profile, _ := middleware.Staff(c)

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message":    "successfully get staff profile",
		"staff":      profile,
		"dashboards": profile.VisibleDashboards(),
	})
}

func (h *StaffHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	profiles, err := h.staffService.ListStaff(ctx)
	if err != nil {
		return staffError(c, err, "Failed to list staff")
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(profiles))
}

func (h *StaffHandler) Create(c echo.Context) error {
	var req CreateStaffRequest
	if err := bindRequest(c, h.validator, &req); err != nil {
		return badRequest(c, err.Error())
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	profile, err := h.staffService.CreateStaff(ctx, actor(c), staff.CreateStaffInput{
		Email:      req.Email,
		Role:       domain.Role(req.Role),
		Department: req.Department,
		Phone:      req.Phone,
	})
	if err != nil {
		return staffError(c, err, "Failed to create staff")
	}

	return c.JSON(http.StatusCreated, fres.Response.StatusCreated(profile))
}

func (h *StaffHandler) UpdateRole(c echo.Context) error {
	id, err := staffID(c)
	if err != nil {
		return badRequest(c, "invalid staff id")
	}

	var req RoleRequest
	if err := bindRequest(c, h.validator, &req); err != nil {
		return badRequest(c, err.Error())
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	profile, err := h.staffService.UpdateRole(ctx, actor(c), id, domain.Role(req.Role))
	if err != nil {
		return staffError(c, err, "Failed to update staff role")
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(profile))
}

func (h *StaffHandler) SetPermissions(c echo.Context) error {
	id, err := staffID(c)
	if err != nil {
		return badRequest(c, "invalid staff id")
	}

	var perms domain.Permissions
	if err := c.Bind(&perms); err != nil {
		return badRequest(c, err.Error())
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	profile, err := h.staffService.SetPermissions(ctx, actor(c), id, perms)
	if err != nil {
		return staffError(c, err, "Failed to update staff permissions")
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(profile))
}

func (h *StaffHandler) SetActive(c echo.Context) error {
	id, err := staffID(c)
	if err != nil {
		return badRequest(c, "invalid staff id")
	}

	var req ActiveRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, err.Error())
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	profile, err := h.staffService.SetActive(ctx, actor(c), id, req.IsActive)
	if err != nil {
		return staffError(c, err, "Failed to update staff status")
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(profile))
}

func (h *StaffHandler) SwitchRole(c echo.Context) error {
	var req RoleRequest
	if err := bindRequest(c, h.validator, &req); err != nil {
		return badRequest(c, err.Error())
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	profile, err := h.staffService.SwitchRole(ctx, actor(c), domain.Role(req.Role))
	if err != nil {
		return staffError(c, err, "Failed to switch role")
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(profile))
}

func (h *StaffHandler) SwitchBack(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	profile, err := h.staffService.SwitchBack(ctx, actor(c))
	if err != nil {
		return staffError(c, err, "Failed to switch back")
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(profile))
}

func (h *StaffHandler) Activity(c echo.Context) error {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	filter := domain.ActivityFilter{Page: page, Limit: limit}

	if raw := c.QueryParam("user_id"); raw != "" {
		userID, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			return badRequest(c, "invalid user id")
		}
		filter.UserID = uint(userID)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	entries, total, err := h.staffService.ListActivity(ctx, filter)
	if err != nil {
		return respondError(c, err, "Failed to list activity")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message":  "successfully get activity log",
		"activity": entries,
		"total":    total,
		"page":     filter.Page,
	})
}

func (h *StaffHandler) GetSettings(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	cfg, err := h.settingsService.Current(ctx)
	if err != nil {
		return respondError(c, err, "Failed to load settings")
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(cfg))
}

func (h *StaffHandler) UpdateSettings(c echo.Context) error {
	var req SettingsRequest
	if err := bindRequest(c, h.validator, &req); err != nil {
		return badRequest(c, err.Error())
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	cfg, err := h.settingsService.Update(ctx, actor(c), domain.SiteConfiguration{
		SiteName:                req.SiteName,
		Currency:                req.Currency,
		CurrencySymbol:          req.CurrencySymbol,
		TaxEnabled:              req.TaxEnabled,
		TaxRate:                 req.TaxRate,
		FreeShippingThreshold:   req.FreeShippingThreshold,
		DefaultShippingCost:     req.DefaultShippingCost,
		LowStockThreshold:       req.LowStockThreshold,
		NotifyNewOrder:          req.NotifyNewOrder,
		NotifyLowStock:          req.NotifyLowStock,
		NotifyOrderStatusChange: req.NotifyOrderStatusChange,
		AdminEmail:              req.AdminEmail,
	})
	if err != nil {
		return respondError(c, err, "Failed to update settings")
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(cfg))
}
