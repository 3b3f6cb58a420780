package rest

import (
	"context"
	"errors"
	"net/http"
	"time"

	"techshop/business/payments"
	"techshop/domain"
	"techshop/pkg/logger"

	"github.com/AMFarhan21/fres"
	"github.com/labstack/echo/v4"
)

// CallbackTokenHeader is the header Xendit signs invoice callbacks with.
const CallbackTokenHeader = "x-callback-token"

type (
	WebhookHandler struct {
		paymentService PaymentsService
		timeout        time.Duration
	}

	PaymentsService interface {
		HandleWebhook(ctx context.Context, token string, payload domain.XenditWebhook) (domain.WebOrder, error)
	}
)

func NewWebhookHandler(paymentService PaymentsService, timeout time.Duration) *WebhookHandler {
	return &WebhookHandler{
		paymentService: paymentService,
		timeout:        timeout,
	}
}

func (h *WebhookHandler) HandleWebhook(c echo.Context) error {
	var request domain.XenditWebhook

	if err := c.Bind(&request); err != nil {
		logger.Warn("Failed to bind webhook request", "error", err)
		return c.JSON(http.StatusBadRequest, fres.Response.StatusBadRequest("Invalid request"))
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	order, err := h.paymentService.HandleWebhook(ctx, c.Request().Header.Get(CallbackTokenHeader), request)
	if err != nil {
		if errors.Is(err, payments.ErrInvalidCallbackToken) {
			logger.Warn("Rejected webhook with invalid callback token", "external_id", request.ExternalID)
			return c.JSON(http.StatusUnauthorized, ResponseError{Message: err.Error()})
		}
		return respondError(c, err, "Failed to update payment status")
	}

	logger.Info("Received webhook from Xendit", "external_id", request.ExternalID, "status", request.Status, "order_status", order.Status)
	return c.JSON(http.StatusOK, fres.Response.StatusOK(http.StatusOK))
}
