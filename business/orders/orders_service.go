package orders

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"techshop/domain"
	"techshop/pkg/logger"
	"techshop/pkg/metrics"
	"techshop/pkg/utils"
)

type OrdersRepository interface {
	FindByID(ctx context.Context, id uint64) (domain.WebOrder, error)
	FindAll(ctx context.Context, filter domain.OrderFilter) ([]domain.WebOrder, error)
	Transition(ctx context.Context, id uint64, next domain.OrderStatus, performedBy uint, at time.Time) (domain.WebOrder, error)
	SetTrackingNumber(ctx context.Context, id uint64, tracking string) error
	FindReviews(ctx context.Context, status domain.ReviewStatus) ([]domain.OrderReview, error)
	ResolveReview(ctx context.Context, reviewID uint64, decision domain.ReviewStatus, reviewer uint, note string, at time.Time) (domain.OrderReview, error)
}

type InvoiceStore interface {
	Load(ctx context.Context, order domain.WebOrder) ([]byte, error)
}

type UserReader interface {
	FindByID(ctx context.Context, id uint) (domain.User, error)
}

type SettingsProvider interface {
	Current(ctx context.Context) (domain.SiteConfiguration, error)
}

type Mailer interface {
	Send(ctx context.Context, email domain.Email) error
}

type ActivityRecorder interface {
	Record(ctx context.Context, entry domain.ActivityLog) error
}

type Dependencies struct {
	Orders      OrdersRepository
	Invoices    InvoiceStore
	Users       UserReader
	Settings    SettingsProvider
	Notifier    Mailer
	Activity    ActivityRecorder
	TrackingKey string
}

type OrdersService struct {
	deps Dependencies
	now  func() time.Time
}

func NewOrdersService(deps Dependencies) *OrdersService {
	return &OrdersService{
		deps: deps,
		now:  time.Now,
	}
}

const (
	SubjectOrderStatus   = "Your order %s is now %s"
	EmailBodyOrderStatus = `Hi %v,</br></br>Your order %v is now <b>%v</b>.%v`
)

// History lists a customer's orders, newest first.
func (s *OrdersService) History(ctx context.Context, userID uint) ([]domain.WebOrder, error) {
	orders, err := s.deps.Orders.FindAll(ctx, domain.OrderFilter{UserID: userID})
	if err != nil {
		logger.Error("failed to load order history", err)
		return nil, err
	}

	return orders, nil
}

// GetForCustomer returns an order only to the customer who placed it.
func (s *OrdersService) GetForCustomer(ctx context.Context, userID uint, id uint64) (domain.WebOrder, error) {
	order, err := s.deps.Orders.FindByID(ctx, id)
	if err != nil {
		return domain.WebOrder{}, err
	}

	if order.UserID != userID {
		return domain.WebOrder{}, domain.ErrOrderNotFound
	}

	return order, nil
}

func (s *OrdersService) Invoice(ctx context.Context, userID uint, id uint64) ([]byte, domain.WebOrder, error) {
	order, err := s.GetForCustomer(ctx, userID, id)
	if err != nil {
		return nil, domain.WebOrder{}, err
	}

	pdf, err := s.deps.Invoices.Load(ctx, order)
	if err != nil {
		logger.Error("failed to load invoice", err)
		return nil, domain.WebOrder{}, err
	}

	return pdf, order, nil
}

// Track resolves a public tracking code printed on the invoice.
func (s *OrdersService) Track(ctx context.Context, code string) (domain.OrderTracking, error) {
	id, err := utils.DecodeTrackingCode(code, s.deps.TrackingKey, s.now())
	if err != nil {
		return domain.OrderTracking{}, domain.ErrInvalidTrackingCode
	}

	order, err := s.deps.Orders.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.OrderTracking{}, domain.ErrInvalidTrackingCode
		}
		return domain.OrderTracking{}, err
	}

	return order.Tracking(), nil
}

func (s *OrdersService) List(ctx context.Context, filter domain.OrderFilter) ([]domain.WebOrder, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, domain.ErrInvalidStatus
	}

	return s.deps.Orders.FindAll(ctx, filter)
}

func (s *OrdersService) Get(ctx context.Context, id uint64) (domain.WebOrder, error) {
	return s.deps.Orders.FindByID(ctx, id)
}

// UpdateStatus moves an order forward, or cancels it with restock. Orders with
// an open fraud review can only be cancelled.
func (s *OrdersService) UpdateStatus(ctx context.Context, actor domain.Actor, id uint64, next domain.OrderStatus, trackingNumber string) (domain.WebOrder, error) {
	if !next.Valid() {
		return domain.WebOrder{}, domain.ErrInvalidStatus
	}

	current, err := s.deps.Orders.FindByID(ctx, id)
	if err != nil {
		return domain.WebOrder{}, err
	}

	if current.UnderReview() && next != domain.OrderStatusCancelled {
		return domain.WebOrder{}, domain.ErrReviewPending
	}

	if !current.Status.CanTransitionTo(next) {
		return domain.WebOrder{}, domain.ErrInvalidTransition
	}

	trackingNumber = strings.TrimSpace(trackingNumber)
	if trackingNumber != "" {
		if err := s.deps.Orders.SetTrackingNumber(ctx, id, trackingNumber); err != nil {
			return domain.WebOrder{}, err
		}
	}

	order, err := s.deps.Orders.Transition(ctx, id, next, actor.UserID, s.now())
	if err != nil {
		if !errors.Is(err, domain.ErrInvalidTransition) {
			logger.Error("failed to update order status", err)
		}
		return domain.WebOrder{}, err
	}

	metrics.OrderTransitions.WithLabelValues(string(next)).Inc()
	logger.Info("order status updated", "order_number", order.OrderNumber, "from", current.Status, "to", next, "by", actor.UserID)

	s.record(ctx, actor.Log(domain.ActionUpdate, "WebOrder", strconv.FormatUint(id, 10),
		fmt.Sprintf("Order %s: %s -> %s", order.OrderNumber, current.Status, next),
		map[string]any{"status": []string{string(current.Status), string(next)}}))

	s.notifyStatus(ctx, order)

	return order, nil
}

func (s *OrdersService) ListReviews(ctx context.Context, status domain.ReviewStatus) ([]domain.OrderReview, error) {
	return s.deps.Orders.FindReviews(ctx, status)
}

// ResolveReview approves or rejects a flagged order.
func (s *OrdersService) ResolveReview(ctx context.Context, actor domain.Actor, reviewID uint64, approve bool, note string) (domain.OrderReview, error) {
	decision := domain.ReviewStatusRejected
	if approve {
		decision = domain.ReviewStatusApproved
	}

	review, err := s.deps.Orders.ResolveReview(ctx, reviewID, decision, actor.UserID, strings.TrimSpace(note), s.now())
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) && !errors.Is(err, domain.ErrReviewClosed) {
			logger.Error("failed to resolve review", err)
		}
		return domain.OrderReview{}, err
	}

	logger.Info("fraud review resolved", "review_id", reviewID, "order_id", review.OrderID, "decision", decision, "by", actor.UserID)

	s.record(ctx, actor.Log(domain.ActionUpdate, "OrderReview", strconv.FormatUint(reviewID, 10),
		fmt.Sprintf("Review for order %d %s", review.OrderID, decision), nil))

	if order, err := s.deps.Orders.FindByID(ctx, review.OrderID); err == nil {
		metrics.OrderTransitions.WithLabelValues(string(order.Status)).Inc()
		s.notifyStatus(ctx, order)
	}

	return review, nil
}

func (s *OrdersService) record(ctx context.Context, entry domain.ActivityLog) {
	if s.deps.Activity == nil {
		return
	}
	if err := s.deps.Activity.Record(ctx, entry); err != nil {
		logger.Warn("failed to record activity", err)
	}
}

func (s *OrdersService) notifyStatus(ctx context.Context, order domain.WebOrder) {
	if s.deps.Notifier == nil || s.deps.Users == nil || s.deps.Settings == nil {
		return
	}

	cfg, err := s.deps.Settings.Current(ctx)
	if err != nil || !cfg.NotifyOrderStatusChange {
		return
	}

	customer, err := s.deps.Users.FindByID(ctx, order.UserID)
	if err != nil {
		logger.Warn("failed to load customer for status email", err)
		return
	}

	extra := ""
	if order.TrackingNumber != "" {
		extra = "</br>Tracking number: " + order.TrackingNumber
	}

	body := fmt.Sprintf(EmailBodyOrderStatus, customer.FullName, order.OrderNumber, order.Status, extra)
	err = s.deps.Notifier.Send(ctx, domain.Email{
		ToName:    customer.FullName,
		ToAddress: customer.Email,
		Subject:   fmt.Sprintf(SubjectOrderStatus, order.OrderNumber, order.Status),
		Text:      body,
	})
	if err != nil {
		logger.Warn("failed to send status email", err)
	}
}
