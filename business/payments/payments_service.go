package payments

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"techshop/domain"
	"techshop/pkg/logger"
	"techshop/pkg/metrics"
)

var ErrInvalidCallbackToken = errors.New("invalid callback token")

type InvoiceGateway interface {
	CreateInvoice(ctx context.Context, invoice domain.XenditInvoiceRequest) (domain.XenditInvoiceResponse, error)
}

type PaymentsRepository interface {
	MarkPaid(ctx context.Context, orderNumber string, paidAt time.Time) (domain.WebOrder, error)
	MarkFailed(ctx context.Context, orderNumber string, at time.Time) (domain.WebOrder, error)
}

type PaymentsService struct {
	paymentRepo   PaymentsRepository
	gateway       InvoiceGateway
	callbackToken string
	now           func() time.Time
}

func NewPaymentsService(paymentRepo PaymentsRepository, gateway InvoiceGateway, callbackToken string) *PaymentsService {
	return &PaymentsService{
		paymentRepo:   paymentRepo,
		gateway:       gateway,
		callbackToken: callbackToken,
		now:           time.Now,
	}
}

// CreateInvoiceLink opens a hosted Xendit invoice for an order and returns
// the url the customer pays on.
func (s *PaymentsService) CreateInvoiceLink(ctx context.Context, order domain.WebOrder, customer domain.User) (string, error) {
	items := make([]domain.XenditItem, 0, len(order.Items))
	for _, it := range order.Items {
		name := it.ProductName
		if it.VariantInfo != "" {
			name = fmt.Sprintf("%s (%s)", name, it.VariantInfo)
		}
		items = append(items, domain.XenditItem{
			Name:     name,
			Quantity: it.Quantity,
			Price:    it.UnitPrice.InexactFloat64(),
		})
	}

	res, err := s.gateway.CreateInvoice(ctx, domain.XenditInvoiceRequest{
		ExternalID:      order.OrderNumber,
		Amount:          order.TotalAmount.InexactFloat64(),
		Description:     fmt.Sprintf("payment order %s", order.OrderNumber),
		InvoiceDuration: 3600,
		Customer: domain.XenditCustomer{
			GivenNames: customer.FullName,
			Email:      customer.Email,
		},
		Currency: order.Currency,
		Items:    items,
		Metadata: domain.XenditMetadata{OrderNumber: order.OrderNumber},
	})
	if err != nil {
		logger.Error("failed to create invoice", err)
		return "", err
	}

	return res.InvoiceURL, nil
}

// HandleWebhook applies an invoice callback. Unknown statuses are ignored so
// the gateway stops retrying.
func (s *PaymentsService) HandleWebhook(ctx context.Context, token string, payload domain.XenditWebhook) (domain.WebOrder, error) {
	if s.callbackToken == "" || subtle.ConstantTimeCompare([]byte(token), []byte(s.callbackToken)) != 1 {
		return domain.WebOrder{}, ErrInvalidCallbackToken
	}

	var (
		order domain.WebOrder
		err   error
	)

	switch payload.Status {
	case domain.XenditStatusPaid, domain.XenditStatusSettled:
		paidAt := payload.PaidAt
		if paidAt.IsZero() {
			paidAt = s.now()
		}
		order, err = s.paymentRepo.MarkPaid(ctx, payload.ExternalID, paidAt)
	case domain.XenditStatusExpired:
		order, err = s.paymentRepo.MarkFailed(ctx, payload.ExternalID, s.now())
	default:
		logger.Info("ignoring invoice callback", "order_number", payload.ExternalID, "status", payload.Status)
		return domain.WebOrder{}, nil
	}
	if err != nil {
		logger.Error("failed to apply invoice callback", err)
		return domain.WebOrder{}, err
	}

	metrics.OrderTransitions.WithLabelValues(string(order.Status)).Inc()
	logger.Info("invoice callback applied", "order_number", order.OrderNumber, "status", order.Status)

	return order, nil
}
