package rest

import (
	"context"
	"net/http"
	"time"

	"techshop/domain"
	"techshop/internal/middleware"
	"techshop/pkg/logger"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type CheckoutService interface {
	Checkout(ctx context.Context, req domain.CheckoutRequest) (domain.CheckoutResult, error)
}

type CheckoutHandler struct {
	checkoutService CheckoutService
	validator       *validator.Validate
	timeout         time.Duration
}

func NewCheckoutHandler(checkoutService CheckoutService, timeout time.Duration) *CheckoutHandler {
	return &CheckoutHandler{
		checkoutService: checkoutService,
		validator:       validator.New(),
		timeout:         timeout,
	}
}

// CheckoutRequest leaves shipping completeness to the service so a missing
// field maps to INVALID_SHIPPING rather than a generic validation error.
type CheckoutRequest struct {
	ShippingAddress string `json:"shipping_address"`
	ShippingCity    string `json:"shipping_city"`
	ShippingState   string `json:"shipping_state"`
	ShippingZip     string `json:"shipping_zip"`
	PaymentMethod   string `json:"payment_method" validate:"omitempty,oneof=card xendit"`
}

func (h *CheckoutHandler) Checkout(c echo.Context) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ResponseError{Message: "unauthorized"})
	}

	var req CheckoutRequest
	if err := c.Bind(&req); err != nil {
		logger.Error("Invalid request body", err)
		return badRequest(c, err.Error())
	}

	if err := h.validator.Struct(&req); err != nil {
		return respondError(c, domain.ErrInvalidPayment, "Invalid payment method")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	result, err := h.checkoutService.Checkout(ctx, domain.CheckoutRequest{
		UserID: userID,
		Shipping: domain.ShippingDetails{
			Address: req.ShippingAddress,
			City:    req.ShippingCity,
			State:   req.ShippingState,
			Zip:     req.ShippingZip,
		},
		PaymentMethod: req.PaymentMethod,
		ClientIP:      c.RealIP(),
		UserAgent:     c.Request().UserAgent(),
	})
	if err != nil {
		return respondError(c, err, "Failed to checkout")
	}

	message := "Order placed successfully"
	if result.ReviewRequired {
		message = "Order received and is pending review"
	}

	return c.JSON(http.StatusCreated, map[string]interface{}{
		"message":         message,
		"order":           result.Order,
		"review_required": result.ReviewRequired,
		"payment_link":    result.PaymentLink,
	})
}
