//go:build !integration

package orders

import (
	"context"
	"fmt"
	"net/url"
	"sync"
	"testing"
	"time"

	"techshop/business/invoice"
	"techshop/domain"
	"techshop/pkg/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const trackingKey = "0123456789abcdef"

type fakeOrders struct {
	mu      sync.Mutex
	orders  map[uint64]domain.WebOrder
	reviews map[uint64]domain.OrderReview
}

func (f *fakeOrders) FindByID(ctx context.Context, id uint64) (domain.WebOrder, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.orders[id]
	if !ok {
		return domain.WebOrder{}, domain.ErrOrderNotFound
	}
	return o, nil
}

func (f *fakeOrders) FindAll(ctx context.Context, filter domain.OrderFilter) ([]domain.WebOrder, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []domain.WebOrder{}
	for _, o := range f.orders {
		if filter.UserID != 0 && o.UserID != filter.UserID {
			continue
		}
		if filter.Status != "" && o.Status != filter.Status {
			continue
		}
		out = append(out, o)
	}
	return out, nil
}

func (f *fakeOrders) Transition(ctx context.Context, id uint64, next domain.OrderStatus, performedBy uint, at time.Time) (domain.WebOrder, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o := f.orders[id]
	if !o.Status.CanTransitionTo(next) {
		return domain.WebOrder{}, domain.ErrInvalidTransition
	}
	o.Status = next
	if next == domain.OrderStatusShipped {
		o.ShippedAt = &at
	}
	f.orders[id] = o
	return o, nil
}

func (f *fakeOrders) SetTrackingNumber(ctx context.Context, id uint64, tracking string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	o := f.orders[id]
	o.TrackingNumber = tracking
	f.orders[id] = o
	return nil
}

func (f *fakeOrders) FindReviews(ctx context.Context, status domain.ReviewStatus) ([]domain.OrderReview, error) {
	out := []domain.OrderReview{}
	for _, r := range f.reviews {
		if status == "" || r.Status == status {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeOrders) ResolveReview(ctx context.Context, reviewID uint64, decision domain.ReviewStatus, reviewer uint, note string, at time.Time) (domain.OrderReview, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.reviews[reviewID]
	if !ok {
		return domain.OrderReview{}, domain.ErrReviewNotFound
	}
	if r.Status != domain.ReviewStatusOpen {
		return domain.OrderReview{}, domain.ErrReviewClosed
	}
	r.Status = decision
	r.ReviewedBy = &reviewer
	f.reviews[reviewID] = r

	o := f.orders[r.OrderID]
	if decision == domain.ReviewStatusApproved {
		o.Status = domain.OrderStatusConfirmed
	} else {
		o.Status = domain.OrderStatusCancelled
	}
	o.Review = &r
	f.orders[r.OrderID] = o
	return r, nil
}

type fakeUsers struct{}

func (fakeUsers) FindByID(ctx context.Context, id uint) (domain.User, error) {
	return domain.User{ID: id, FullName: "Ada", Email: "ada@example.com"}, nil
}

type fakeSettings struct{}

func (fakeSettings) Current(ctx context.Context) (domain.SiteConfiguration, error) {
	return domain.DefaultSiteConfiguration(), nil
}

type fakeNotifier struct {
	subjects []string
}

func (f *fakeNotifier) Send(_ context.Context, email domain.Email) error {
	f.subjects = append(f.subjects, email.Subject)
	return nil
}

type fakeActivity struct {
	entries []domain.ActivityLog
}

func (f *fakeActivity) Record(ctx context.Context, entry domain.ActivityLog) error {
	f.entries = append(f.entries, entry)
	return nil
}

type fakeInvoices struct{}

func (fakeInvoices) Load(ctx context.Context, order domain.WebOrder) ([]byte, error) {
	return []byte("%PDF-1.3"), nil
}

func newTestService() (*OrdersService, *fakeOrders, *fakeNotifier, *fakeActivity) {
	repo := &fakeOrders{
		orders: map[uint64]domain.WebOrder{
			1: {ID: 1, OrderNumber: "ORD-00000001", UserID: 7, Status: domain.OrderStatusConfirmed},
			2: {ID: 2, OrderNumber: "ORD-00000002", UserID: 8, Status: domain.OrderStatusPending},
		},
		reviews: map[uint64]domain.OrderReview{},
	}
	notifier := &fakeNotifier{}
	activity := &fakeActivity{}

	svc := NewOrdersService(Dependencies{
		Orders:      repo,
		Invoices:    fakeInvoices{},
		Users:       fakeUsers{},
		Settings:    fakeSettings{},
		Notifier:    notifier,
		Activity:    activity,
		TrackingKey: trackingKey,
	})

	return svc, repo, notifier, activity
}

func TestGetForCustomerOwnerOnly(t *testing.T) {
	svc, _, _, _ := newTestService()
	ctx := context.Background()

	order, err := svc.GetForCustomer(ctx, 7, 1)
	require.NoError(t, err)
	assert.Equal(t, "ORD-00000001", order.OrderNumber)

	_, err = svc.GetForCustomer(ctx, 8, 1)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, _, err = svc.Invoice(ctx, 8, 1)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	pdf, _, err := svc.Invoice(ctx, 7, 1)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.3", string(pdf))
}

func TestHistory(t *testing.T) {
	svc, _, _, _ := newTestService()

	orders, err := svc.History(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, uint(7), orders[0].UserID)
}

func TestUpdateStatus(t *testing.T) {
	svc, _, notifier, activity := newTestService()
	ctx := context.Background()
	actor := domain.Actor{UserID: 99, IP: "127.0.0.1"}

	order, err := svc.UpdateStatus(ctx, actor, 1, domain.OrderStatusShipped, "1Z999")
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusShipped, order.Status)
	assert.Equal(t, "1Z999", order.TrackingNumber)
	assert.NotNil(t, order.ShippedAt)
	assert.Len(t, notifier.subjects, 1)
	require.Len(t, activity.entries, 1)
	assert.Equal(t, uint(99), activity.entries[0].UserID)

	_, err = svc.UpdateStatus(ctx, actor, 1, domain.OrderStatusConfirmed, "")
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	_, err = svc.UpdateStatus(ctx, actor, 1, "lost", "")
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)
}

func TestUpdateStatusBlockedByOpenReview(t *testing.T) {
	svc, repo, _, _ := newTestService()
	ctx := context.Background()
	actor := domain.Actor{UserID: 99}

	review := domain.OrderReview{ID: 5, OrderID: 2, Status: domain.ReviewStatusOpen}
	repo.reviews[5] = review
	o := repo.orders[2]
	o.Review = &review
	repo.orders[2] = o

	_, err := svc.UpdateStatus(ctx, actor, 2, domain.OrderStatusProcessing, "")
	assert.ErrorIs(t, err, domain.ErrReviewPending)

	resolved, err := svc.ResolveReview(ctx, actor, 5, true, "ok")
	require.NoError(t, err)
	assert.Equal(t, domain.ReviewStatusApproved, resolved.Status)

	order, err := svc.UpdateStatus(ctx, actor, 2, domain.OrderStatusProcessing, "")
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusProcessing, order.Status)

	_, err = svc.ResolveReview(ctx, actor, 5, false, "")
	assert.ErrorIs(t, err, domain.ErrReviewClosed)
}

func TestTrack(t *testing.T) {
	svc, _, _, _ := newTestService()
	ctx := context.Background()

	code, err := utils.EncodeTrackingCode(1, time.Now().Add(time.Hour), trackingKey)
	require.NoError(t, err)

	tracking, err := svc.Track(ctx, code)
	require.NoError(t, err)
	assert.Equal(t, "ORD-00000001", tracking.OrderNumber)
	assert.Equal(t, domain.OrderStatusConfirmed, tracking.Status)

	expired, err := utils.EncodeTrackingCode(1, time.Now().Add(-time.Hour), trackingKey)
	require.NoError(t, err)
	_, err = svc.Track(ctx, expired)
	assert.ErrorIs(t, err, domain.ErrInvalidTrackingCode)

	missing, err := utils.EncodeTrackingCode(404, time.Now().Add(time.Hour), trackingKey)
	require.NoError(t, err)
	_, err = svc.Track(ctx, missing)
	assert.ErrorIs(t, err, domain.ErrInvalidTrackingCode)

	_, err = svc.Track(ctx, "not-a-code")
	assert.ErrorIs(t, err, domain.ErrInvalidTrackingCode)
}

func TestTrackInvoiceQRLink(t *testing.T) {
	svc, _, _, _ := newTestService()
	invoices := invoice.NewInvoiceService(t.TempDir(), "http://shop.test", trackingKey, nil)

	for _, id := range []uint64{1, 2} {
		link, err := invoices.TrackingURL(id)
		require.NoError(t, err)

		u, err := url.Parse(link)
		require.NoError(t, err)
		assert.Equal(t, "/api/v1/orders/track", u.Path)

		tracking, err := svc.Track(context.Background(), u.Query().Get("code"))
		require.NoError(t, err)
		assert.Equal(t, fmt.Sprintf("ORD-%08d", id), tracking.OrderNumber)
	}
}
