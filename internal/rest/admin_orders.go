package rest

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"techshop/domain"

	"github.com/AMFarhan21/fres"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type AdminOrdersService interface {
	List(ctx context.Context, filter domain.OrderFilter) ([]domain.WebOrder, error)
	Get(ctx context.Context, id uint64) (domain.WebOrder, error)
	UpdateStatus(ctx context.Context, actor domain.Actor, id uint64, next domain.OrderStatus, trackingNumber string) (domain.WebOrder, error)
	ListReviews(ctx context.Context, status domain.ReviewStatus) ([]domain.OrderReview, error)
	ResolveReview(ctx context.Context, actor domain.Actor, reviewID uint64, approve bool, note string) (domain.OrderReview, error)
}

type AdminOrdersHandler struct {
	ordersService AdminOrdersService
	validator     *validator.Validate
	timeout       time.Duration
}

func NewAdminOrdersHandler(ordersService AdminOrdersService, timeout time.Duration) *AdminOrdersHandler {
	return &AdminOrdersHandler{
		ordersService: ordersService,
		validator:     validator.New(),
		timeout:       timeout,
	}
}

type UpdateOrderStatusRequest struct {
	Status         string `json:"status" validate:"required"`
	TrackingNumber string `json:"tracking_number" validate:"max=100"`
}

type ResolveReviewRequest struct {
	Decision string `json:"decision" validate:"required,oneof=approve reject"`
	Note     string `json:"note"`
}

func (h *AdminOrdersHandler) List(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	filter := domain.OrderFilter{
		Status: domain.OrderStatus(c.QueryParam("status")),
		Limit:  limit,
	}

	if raw := c.QueryParam("user_id"); raw != "" {
		userID, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return badRequest(c, "invalid user id")
		}
		filter.UserID = uint(userID)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	orders, err := h.ordersService.List(ctx, filter)
	if err != nil {
		return respondError(c, err, "Failed to list orders")
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(orders))
}

func (h *AdminOrdersHandler) Get(c echo.Context) error {
	orderID, err := parseID(c, "id")
	if err != nil {
		return badRequest(c, "invalid order id")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	order, err := h.ordersService.Get(ctx, orderID)
	if err != nil {
		return respondError(c, err, "Failed to get order")
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(order))
}

func (h *AdminOrdersHandler) UpdateStatus(c echo.Context) error {
	orderID, err := parseID(c, "id")
	if err != nil {
		return badRequest(c, "invalid order id")
	}

	var req UpdateOrderStatusRequest
	if err := bindRequest(c, h.validator, &req); err != nil {
		return badRequest(c, err.Error())
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	order, err := h.ordersService.UpdateStatus(ctx, actor(c), orderID, domain.OrderStatus(req.Status), req.TrackingNumber)
	if err != nil {
		return respondError(c, err, "Failed to update order status")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": "Order status updated",
		"order":   order,
	})
}

func (h *AdminOrdersHandler) ListReviews(c echo.Context) error {
	status := domain.ReviewStatus(c.QueryParam("status"))
	if status == "" {
		status = domain.ReviewStatusOpen
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	reviews, err := h.ordersService.ListReviews(ctx, status)
	if err != nil {
		return respondError(c, err, "Failed to list reviews")
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(reviews))
}

func (h *AdminOrdersHandler) ResolveReview(c echo.Context) error {
	reviewID, err := parseID(c, "id")
	if err != nil {
		return badRequest(c, "invalid review id")
	}

	var req ResolveReviewRequest
	if err := bindRequest(c, h.validator, &req); err != nil {
		return badRequest(c, err.Error())
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	review, err := h.ordersService.ResolveReview(ctx, actor(c), reviewID, req.Decision == "approve", req.Note)
	if err != nil {
		return respondError(c, err, "Failed to resolve review")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": "Review resolved",
		"review":  review,
	})
}
