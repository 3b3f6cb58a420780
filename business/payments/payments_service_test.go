//go:build !integration

package payments

import (
	"context"
	"testing"
	"time"

	"techshop/domain"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGateway struct {
	got domain.XenditInvoiceRequest
}

func (f *fakeGateway) CreateInvoice(ctx context.Context, invoice domain.XenditInvoiceRequest) (domain.XenditInvoiceResponse, error) {
	f.got = invoice
	return domain.XenditInvoiceResponse{InvoiceURL: "https://pay.example/" + invoice.ExternalID}, nil
}

type fakeRepo struct {
	paid   []string
	failed []string
}

func (f *fakeRepo) MarkPaid(ctx context.Context, orderNumber string, paidAt time.Time) (domain.WebOrder, error) {
	f.paid = append(f.paid, orderNumber)
	return domain.WebOrder{OrderNumber: orderNumber, Status: domain.OrderStatusConfirmed}, nil
}

func (f *fakeRepo) MarkFailed(ctx context.Context, orderNumber string, at time.Time) (domain.WebOrder, error) {
	f.failed = append(f.failed, orderNumber)
	return domain.WebOrder{OrderNumber: orderNumber, Status: domain.OrderStatusCancelled}, nil
}

func TestCreateInvoiceLink(t *testing.T) {
	gw := &fakeGateway{}
	svc := NewPaymentsService(&fakeRepo{}, gw, "token")

	link, err := svc.CreateInvoiceLink(context.Background(), domain.WebOrder{
		OrderNumber: "ORD-1",
		TotalAmount: decimal.RequireFromString("86.40"),
		Currency:    "USD",
		Items: []domain.OrderItem{
			{ProductName: "Shirt", VariantInfo: "color: Red", Quantity: 2, UnitPrice: decimal.RequireFromString("40.00")},
		},
	}, domain.User{FullName: "Ada", Email: "ada@example.com"})

	require.NoError(t, err)
	assert.Equal(t, "https://pay.example/ORD-1", link)
	assert.Equal(t, 86.4, gw.got.Amount)
	assert.Equal(t, "ORD-1", gw.got.Metadata.OrderNumber)
	require.Len(t, gw.got.Items, 1)
	assert.Equal(t, "Shirt (color: Red)", gw.got.Items[0].Name)
}

func TestHandleWebhook(t *testing.T) {
	repo := &fakeRepo{}
	svc := NewPaymentsService(repo, &fakeGateway{}, "token")
	ctx := context.Background()

	_, err := svc.HandleWebhook(ctx, "wrong", domain.XenditWebhook{ExternalID: "ORD-1", Status: domain.XenditStatusPaid})
	assert.ErrorIs(t, err, ErrInvalidCallbackToken)

	order, err := svc.HandleWebhook(ctx, "token", domain.XenditWebhook{ExternalID: "ORD-1", Status: domain.XenditStatusPaid})
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusConfirmed, order.Status)

	_, err = svc.HandleWebhook(ctx, "token", domain.XenditWebhook{ExternalID: "ORD-2", Status: domain.XenditStatusExpired})
	require.NoError(t, err)

	_, err = svc.HandleWebhook(ctx, "token", domain.XenditWebhook{ExternalID: "ORD-3", Status: "PENDING"})
	require.NoError(t, err)

	assert.Equal(t, []string{"ORD-1"}, repo.paid)
	assert.Equal(t, []string{"ORD-2"}, repo.failed)
}

func TestHandleWebhookWithoutConfiguredToken(t *testing.T) {
	svc := NewPaymentsService(&fakeRepo{}, &fakeGateway{}, "")

	_, err := svc.HandleWebhook(context.Background(), "", domain.XenditWebhook{ExternalID: "ORD-1", Status: domain.XenditStatusPaid})
	assert.ErrorIs(t, err, ErrInvalidCallbackToken)
}
