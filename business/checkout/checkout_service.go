package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"techshop/business/pricing"
	"techshop/domain"
	"techshop/pkg/logger"
	"techshop/pkg/metrics"
	"techshop/pkg/telemetry"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"
)

// CheckoutRepository commits a checkout atomically: stock deductions, the
// order with its items, payment, review and movements, and clearing the cart.
// Any *domain.InsufficientStockError aborts the whole transaction.
type CheckoutRepository interface {
	PlaceOrder(ctx context.Context, p *domain.PlaceOrder) error
	AttachPaymentLink(ctx context.Context, orderID uint64, link string) error
}

type CartReader interface {
	Find(ctx context.Context, owner domain.CartOwner) (domain.Cart, error)
}

type ProductReader interface {
	FindByID(ctx context.Context, id uint64) (domain.Product, error)
	FindVariant(ctx context.Context, id uint64) (domain.ProductVariant, error)
}

type SettingsProvider interface {
	Current(ctx context.Context) (domain.SiteConfiguration, error)
}

type UserReader interface {
	FindByID(ctx context.Context, id uint) (domain.User, error)
}

type PaymentLinker interface {
	CreateInvoiceLink(ctx context.Context, order domain.WebOrder, customer domain.User) (string, error)
}

type InvoiceGenerator interface {
	Generate(ctx context.Context, order domain.WebOrder) (string, error)
	Load(ctx context.Context, order domain.WebOrder) ([]byte, error)
}

type Mailer interface {
	Send(ctx context.Context, email domain.Email) error
}

type Dependencies struct {
	Orders   CheckoutRepository
	Carts    CartReader
	Products ProductReader
	Settings SettingsProvider
	Users    UserReader
	Fraud    *FraudDetector
	Payments PaymentLinker
	Invoices InvoiceGenerator
	Notifier Mailer
}

type checkoutService struct {
	deps              Dependencies
	sideEffectTimeout time.Duration
	now               func() time.Time
}

func NewCheckoutService(deps Dependencies, sideEffectTimeout time.Duration) *checkoutService {
	if sideEffectTimeout <= 0 {
		sideEffectTimeout = 10 * time.Second
	}

	return &checkoutService{
		deps:              deps,
		sideEffectTimeout: sideEffectTimeout,
		now:               time.Now,
	}
}

const (
	SubjectOrderConfirmation   = "Your TechShop order %s"
	EmailBodyOrderConfirmation = `Hi %v, thank you for your order.</br></br>Order number: %v</br>Total: %v %v</br>Status: %v`
)

func newOrderNumber() string {
	return "ORD-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}

func newTransactionID() string {
	return "TXN-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:12])
}

func validPaymentMethod(method string) bool {
	return method == domain.PaymentMethodCard || method == domain.PaymentMethodXendit
}

// Checkout converts the customer's cart into an order.
func (s *checkoutService) Checkout(ctx context.Context, req domain.CheckoutRequest) (result domain.CheckoutResult, err error) {
	ctx, span := telemetry.Tracer("techshop/checkout").Start(ctx, "checkout.Checkout")
	defer span.End()

	start := time.Now()
	defer func() {
		metrics.CheckoutLatency.Observe(time.Since(start).Seconds())
		metrics.CheckoutTotal.WithLabelValues(outcome(result, err)).Inc()
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
	}()

	if req.PaymentMethod == "" {
		req.PaymentMethod = domain.PaymentMethodCard
	}
	if !validPaymentMethod(req.PaymentMethod) {
		return domain.CheckoutResult{}, domain.ErrInvalidPayment
	}

	if !req.Shipping.Complete() {
		return domain.CheckoutResult{}, domain.ErrInvalidShipping
	}

	cart, err := s.deps.Carts.Find(ctx, domain.CartOwner{UserID: req.UserID})
	if errors.Is(err, domain.ErrNotFound) || (err == nil && len(cart.Items) == 0) {
		return domain.CheckoutResult{}, domain.ErrEmptyCart
	}
	if err != nil {
		logger.Error("failed to load cart for checkout", err)
		return domain.CheckoutResult{}, err
	}

	cfg, err := s.deps.Settings.Current(ctx)
	if err != nil {
		return domain.CheckoutResult{}, err
	}

	items, lines, err := s.priceLines(ctx, cart.Items)
	if err != nil {
		return domain.CheckoutResult{}, err
	}

	totals := pricing.Totals(domain.SumSubtotals(items), cfg)

	quantities := make([]int, len(lines))
	for i, l := range lines {
		quantities[i] = l.Quantity
	}

	assessment, err := s.deps.Fraud.Analyze(ctx, FraudInput{
		UserID:     req.UserID,
		ClientIP:   req.ClientIP,
		Total:      totals.TotalAmount,
		Quantities: quantities,
	})
	if err != nil {
		logger.Error("fraud analysis failed", err)
		return domain.CheckoutResult{}, err
	}

	span.SetAttributes(
		attribute.Int("checkout.lines", len(lines)),
		attribute.String("checkout.risk_level", string(assessment.Level)),
	)

	order := &domain.WebOrder{
		OrderNumber:     newOrderNumber(),
		UserID:          req.UserID,
		Status:          domain.OrderStatusConfirmed,
		Subtotal:        totals.Subtotal,
		TaxAmount:       totals.TaxAmount,
		ShippingCost:    totals.ShippingCost,
		TotalAmount:     totals.TotalAmount,
		Currency:        totals.Currency,
		ShippingAddress: strings.TrimSpace(req.Shipping.Address),
		ShippingCity:    strings.TrimSpace(req.Shipping.City),
		ShippingState:   strings.TrimSpace(req.Shipping.State),
		ShippingZip:     strings.TrimSpace(req.Shipping.Zip),
		ClientIP:        req.ClientIP,
		Items:           items,
	}

	payment := &domain.PaymentTransaction{
		PaymentMethod: req.PaymentMethod,
		Amount:        totals.TotalAmount,
		Status:        domain.PaymentStatusPending,
		TransactionID: newTransactionID(),
	}

	if req.PaymentMethod == domain.PaymentMethodCard {
		processed := s.now()
		payment.Status = domain.PaymentStatusCompleted
		payment.ProcessedAt = &processed
	} else {
		order.Status = domain.OrderStatusPending
	}

	var review *domain.OrderReview
	if assessment.Flagged {
		order.Status = domain.OrderStatusPending
		order.Notes = fmt.Sprintf("[FRAUD ALERT - %s] %s", assessment.Level, assessment.Reason())
		review = &domain.OrderReview{
			RiskLevel: assessment.Level,
			RiskScore: assessment.Score,
			Reasons:   assessment.Reason(),
			Status:    domain.ReviewStatusOpen,
		}
	}

	place := &domain.PlaceOrder{
		Order:   order,
		Lines:   lines,
		Payment: payment,
		Review:  review,
		CartID:  cart.ID,
	}

	if err := s.deps.Orders.PlaceOrder(ctx, place); err != nil {
		var stockErr *domain.InsufficientStockError
		if errors.As(err, &stockErr) {
			metrics.StockRejections.Inc()
			logger.Warn("checkout rejected", "sku", stockErr.SKU, "requested", stockErr.Requested, "available", stockErr.Available)
			return domain.CheckoutResult{}, err
		}
		logger.Error("failed to place order", err)
		return domain.CheckoutResult{}, fmt.Errorf("failed to place order: %w", err)
	}

	order.Payment = payment
	order.Review = review

	if assessment.Flagged {
		metrics.FraudFlags.WithLabelValues(string(assessment.Level)).Inc()
		logger.Warn("order flagged for review", "order_number", order.OrderNumber, "risk_level", assessment.Level, "score", assessment.Score)
	}

	logger.Info("order placed", "order_number", order.OrderNumber, "user_id", req.UserID, "total", order.TotalAmount.StringFixed(2))

	link := s.afterCommit(ctx, *order, cfg)

	return domain.CheckoutResult{
		Order:          *order,
		Assessment:     assessment,
		ReviewRequired: assessment.Flagged,
		PaymentLink:    link,
	}, nil
}

// priceLines prices every cart line against the current catalog.
func (s *checkoutService) priceLines(ctx context.Context, cartItems []domain.CartItem) ([]domain.OrderItem, []domain.StockLine, error) {
	items := make([]domain.OrderItem, 0, len(cartItems))
	lines := make([]domain.StockLine, 0, len(cartItems))

	for _, ci := range cartItems {
		if ci.Quantity <= 0 {
			return nil, nil, domain.ErrInvalidQuantity
		}

		product, err := s.deps.Products.FindByID(ctx, ci.ProductID)
		if err != nil {
			return nil, nil, err
		}

		if !product.IsAvailableOnline {
			return nil, nil, domain.ErrProductUnavailable
		}

		var variant *domain.ProductVariant
		if ci.VariantID != nil {
			v, err := s.deps.Products.FindVariant(ctx, *ci.VariantID)
			if err != nil {
				if errors.Is(err, domain.ErrNotFound) {
					return nil, nil, domain.ErrInvalidVariant
				}
				return nil, nil, err
			}
			if v.ProductID != product.ID || !v.IsActive {
				return nil, nil, domain.ErrInvalidVariant
			}
			variant = &v
		}

		sku := product.SKU
		info := ""
		if variant != nil {
			sku = variant.SKU(product)
			info = variant.Describe()
		}

		unit := pricing.UnitPrice(product, variant)

		items = append(items, domain.OrderItem{
			ProductID:   product.ID,
			VariantID:   ci.VariantID,
			SKU:         sku,
			ProductName: product.Name,
			VariantInfo: info,
			Quantity:    ci.Quantity,
			UnitPrice:   unit,
			Subtotal:    pricing.LineTotal(unit, ci.Quantity),
		})

		lines = append(lines, domain.StockLine{
			ProductID: product.ID,
			VariantID: ci.VariantID,
			SKU:       sku,
			Quantity:  ci.Quantity,
		})
	}

	return items, lines, nil
}

// afterCommit runs the side effects of a placed order. None of them can fail
// the checkout; failures are logged and counted.
func (s *checkoutService) afterCommit(ctx context.Context, order domain.WebOrder, cfg domain.SiteConfiguration) string {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.sideEffectTimeout)
	defer cancel()

	var (
		customer    domain.User
		customerErr error
	)
	if s.deps.Users != nil {
		customer, customerErr = s.deps.Users.FindByID(ctx, order.UserID)
		if customerErr != nil {
			logger.Warn("failed to load customer for notifications", customerErr)
		}
	}

	var link string
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := s.deps.Fraud.RecordAttempt(gctx, order.ClientIP, order.OrderNumber); err != nil {
			sideEffectFailed("velocity", err)
		}
		return nil
	})

	if order.Payment != nil && order.Payment.PaymentMethod == domain.PaymentMethodXendit && s.deps.Payments != nil && customerErr == nil {
		g.Go(func() error {
			l, err := s.deps.Payments.CreateInvoiceLink(gctx, order, customer)
			if err != nil {
				sideEffectFailed("payment_link", err)
				return nil
			}
			if err := s.deps.Orders.AttachPaymentLink(gctx, order.ID, l); err != nil {
				sideEffectFailed("payment_link", err)
			}
			link = l
			return nil
		})
	}

	notify := s.deps.Notifier != nil && cfg.NotifyNewOrder && customerErr == nil && customer.Email != ""
	if s.deps.Invoices != nil || notify {
		g.Go(func() error {
			pdf := s.invoicePDF(gctx, order)
			if !notify {
				return nil
			}

			email := domain.Email{
				ToName:    customer.FullName,
				ToAddress: customer.Email,
				Subject:   fmt.Sprintf(SubjectOrderConfirmation, order.OrderNumber),
				Text:      fmt.Sprintf(EmailBodyOrderConfirmation, customer.FullName, order.OrderNumber, order.TotalAmount.StringFixed(2), order.Currency, order.Status),
			}
			if pdf != nil {
				email.Attachments = []domain.Attachment{{
					Filename:    "invoice-" + order.OrderNumber + ".pdf",
					ContentType: "application/pdf",
					Content:     pdf,
				}}
			}
			if err := s.deps.Notifier.Send(gctx, email); err != nil {
				sideEffectFailed("email", err)
			}
			return nil
		})
	}

	_ = g.Wait()

	return link
}

// invoicePDF stores the order's invoice and returns its bytes, or nil when it
// could not be produced.
func (s *checkoutService) invoicePDF(ctx context.Context, order domain.WebOrder) []byte {
	if s.deps.Invoices == nil {
		return nil
	}
	if _, err := s.deps.Invoices.Generate(ctx, order); err != nil {
		sideEffectFailed("invoice", err)
		return nil
	}
	pdf, err := s.deps.Invoices.Load(ctx, order)
	if err != nil {
		sideEffectFailed("invoice", err)
		return nil
	}
	return pdf
}

func sideEffectFailed(effect string, err error) {
	metrics.SideEffectFailures.WithLabelValues(effect).Inc()
	logger.Warn("checkout side effect failed", "effect", effect, "error", err)
}

func outcome(result domain.CheckoutResult, err error) string {
	var stockErr *domain.InsufficientStockError
	switch {
	case err == nil && result.ReviewRequired:
		return metrics.OutcomeFlagged
	case err == nil:
		return metrics.OutcomePlaced
	case errors.As(err, &stockErr):
		return metrics.OutcomeInsufficientStock
	case errors.Is(err, domain.ErrEmptyCart),
		errors.Is(err, domain.ErrInvalidShipping),
		errors.Is(err, domain.ErrInvalidPayment),
		errors.Is(err, domain.ErrInvalidVariant),
		errors.Is(err, domain.ErrProductUnavailable),
		errors.Is(err, domain.ErrNotFound):
		return metrics.OutcomeInvalid
	default:
		return metrics.OutcomeError
	}
}
