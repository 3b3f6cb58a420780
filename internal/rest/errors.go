package rest

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"techshop/business/user"
	"techshop/domain"
	"techshop/internal/middleware"
	"techshop/pkg/logger"
	jsonres "techshop/pkg/response"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

// ResponseError represent the response error struct
type ResponseError struct {
	Message string `json:"message"`
}

type errorMapping struct {
	err    error
	status int
	code   string
}

var domainErrors = []errorMapping{
	{domain.ErrEmptyCart, http.StatusBadRequest, "EMPTY_CART"},
	{domain.ErrInvalidShipping, http.StatusBadRequest, "INVALID_SHIPPING"},
	{domain.ErrInvalidPayment, http.StatusBadRequest, "INVALID_PAYMENT"},
	{domain.ErrInvalidVariant, http.StatusBadRequest, "INVALID_VARIANT"},
	{domain.ErrProductUnavailable, http.StatusBadRequest, "PRODUCT_UNAVAILABLE"},
	{domain.ErrInvalidQuantity, http.StatusBadRequest, "INVALID_QUANTITY"},
	{domain.ErrInvalidStatus, http.StatusBadRequest, "INVALID_STATUS"},
	{domain.ErrInvalidRole, http.StatusBadRequest, "INVALID_ROLE"},
	{domain.ErrInvalidTransition, http.StatusConflict, "INVALID_TRANSITION"},
	{domain.ErrReviewPending, http.StatusConflict, "REVIEW_PENDING"},
	{domain.ErrReviewClosed, http.StatusConflict, "REVIEW_CLOSED"},
	{domain.ErrNegativeStock, http.StatusConflict, "NEGATIVE_STOCK"},
	{domain.ErrInvalidTrackingCode, http.StatusNotFound, "INVALID_TRACKING_CODE"},
	{domain.ErrForbidden, http.StatusForbidden, "FORBIDDEN"},
	{user.ErrEmailExists, http.StatusConflict, "EMAIL_EXISTS"},
	{user.ErrInvalidCredentials, http.StatusUnauthorized, "INVALID_CREDENTIALS"},
	{user.ErrNotVerified, http.StatusUnauthorized, "EMAIL_NOT_VERIFIED"},
	{user.ErrInvalidVerifyLink, http.StatusUnauthorized, "INVALID_VERIFICATION_LINK"},
	{domain.ErrNotFound, http.StatusNotFound, "NOT_FOUND"},
}

// respondError maps service errors onto status codes and machine codes.
// Unknown errors are logged and answered with a generic 500.
func respondError(c echo.Context, err error, action string) error {
	var stockErr *domain.InsufficientStockError
	if errors.As(err, &stockErr) {
		return c.JSON(http.StatusConflict, jsonres.Error("INSUFFICIENT_STOCK", stockErr.Error(), map[string]interface{}{
			"sku":       stockErr.SKU,
			"requested": stockErr.Requested,
			"available": stockErr.Available,
		}))
	}

	var validationErr *domain.ValidationError
	if errors.As(err, &validationErr) {
		return c.JSON(http.StatusBadRequest, jsonres.Error("VALIDATION_ERROR", validationErr.Message, nil))
	}

	for _, m := range domainErrors {
		if errors.Is(err, m.err) {
			return c.JSON(m.status, jsonres.Error(m.code, m.err.Error(), nil))
		}
	}

	if errors.Is(err, context.DeadlineExceeded) {
		logger.Warn(action, "error", err)
		return c.JSON(http.StatusGatewayTimeout, jsonres.Error("TIMEOUT", "Request timed out", nil))
	}

	logger.Error(action, err)
	return c.JSON(http.StatusInternalServerError, jsonres.Error("INTERNAL_ERROR", "Internal server error", nil))
}

func badRequest(c echo.Context, message string) error {
	return c.JSON(http.StatusBadRequest, ResponseError{Message: message})
}

// bindRequest decodes the body into req and runs its validate tags.
func bindRequest(c echo.Context, v *validator.Validate, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return err
	}
	return v.Struct(req)
}

func parseID(c echo.Context, name string) (uint64, error) {
	return strconv.ParseUint(c.Param(name), 10, 64)
}

// actor identifies the staff member behind a mutation for the activity log.
func actor(c echo.Context) domain.Actor {
	userID, _ := middleware.UserID(c)
	return domain.Actor{UserID: userID, IP: c.RealIP()}
}
