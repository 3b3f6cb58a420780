package rest

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"techshop/domain"
	"techshop/internal/middleware"

	"github.com/AMFarhan21/fres"
	"github.com/labstack/echo/v4"
)

type (
	OrdersHandler struct {
		ordersService CustomerOrdersService
		timeout       time.Duration
	}

	CustomerOrdersService interface {
		History(ctx context.Context, userID uint) ([]domain.WebOrder, error)
		GetForCustomer(ctx context.Context, userID uint, id uint64) (domain.WebOrder, error)
		Invoice(ctx context.Context, userID uint, id uint64) ([]byte, domain.WebOrder, error)
		Track(ctx context.Context, code string) (domain.OrderTracking, error)
	}
)

func NewOrdersHandler(ordersService CustomerOrdersService, timeout time.Duration) *OrdersHandler {
	return &OrdersHandler{
		ordersService: ordersService,
		timeout:       timeout,
	}
}

func (h *OrdersHandler) GetAllOrders(c echo.Context) error {
	userID, _ := middleware.UserID(c)

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	orders, err := h.ordersService.History(ctx, userID)
	if err != nil {
		return respondError(c, err, "Failed to get all orders")
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(orders))
}

func (h *OrdersHandler) GetOrderByID(c echo.Context) error {
	orderID, err := parseID(c, "id")
	if err != nil {
		return badRequest(c, "invalid order id")
	}

	userID, _ := middleware.UserID(c)

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	order, err := h.ordersService.GetForCustomer(ctx, userID, orderID)
	if err != nil {
		return respondError(c, err, "Failed to get order by id")
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(order))
}

// Invoice streams the order's PDF invoice. ?print=1 asks the browser to
// open it instead of downloading.
func (h *OrdersHandler) Invoice(c echo.Context) error {
	orderID, err := parseID(c, "id")
	if err != nil {
		return badRequest(c, "invalid order id")
	}

	userID, _ := middleware.UserID(c)

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	pdf, order, err := h.ordersService.Invoice(ctx, userID, orderID)
	if err != nil {
		return respondError(c, err, "Failed to load invoice")
	}

	disposition := "attachment"
	if c.QueryParam("print") == "1" {
		disposition = "inline"
	}
	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf("%s; filename=%q", disposition, "invoice-"+order.OrderNumber+".pdf"))

	return c.Blob(http.StatusOK, "application/pdf", pdf)
}

// Track is public: the code itself is the credential.
func (h *OrdersHandler) Track(c echo.Context) error {
	code := c.QueryParam("code")
	if code == "" {
		return badRequest(c, "missing tracking code")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	tracking, err := h.ordersService.Track(ctx, code)
	if err != nil {
		return respondError(c, err, "Failed to track order")
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(tracking))
}
