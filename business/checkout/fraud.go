package checkout

import (
	"context"
	"fmt"
	"time"

	"techshop/domain"
	"techshop/pkg/logger"

	"github.com/shopspring/decimal"
)

// FraudStats answers order-history questions from the order store.
type FraudStats interface {
	CountOrders(ctx context.Context, userID uint) (int64, error)
	CountOrdersSince(ctx context.Context, userID uint, since time.Time) (int64, error)
	CountOrdersFromIPSince(ctx context.Context, ip string, since time.Time) (int64, error)
}

// VelocityTracker keeps a sliding window of order attempts per client IP.
type VelocityTracker interface {
	Count(ctx context.Context, ip string, window time.Duration, now time.Time) (int64, error)
	Record(ctx context.Context, ip, orderNumber string, window time.Duration, now time.Time) error
}

type FraudRules struct {
	HighValueAmount     decimal.Decimal
	CustomerOrderLimit  int
	CustomerOrderWindow time.Duration
	IPOrderLimit        int
	IPOrderWindow       time.Duration
	AbnormalQuantity    int
}

func DefaultFraudRules() FraudRules {
	return FraudRules{
		HighValueAmount:     decimal.NewFromInt(50000),
		CustomerOrderLimit:  3,
		CustomerOrderWindow: 24 * time.Hour,
		IPOrderLimit:        3,
		IPOrderWindow:       time.Hour,
		AbnormalQuantity:    20,
	}
}

const (
	scoreHighValue            = 25
	scoreCustomerVelocity     = 30
	scoreIPVelocity           = 30
	scoreAbnormalQuantity     = 20
	scoreNewCustomerHighValue = 35
)

type FraudInput struct {
	UserID     uint
	ClientIP   string
	Total      decimal.Decimal
	Quantities []int
}

type FraudDetector struct {
	rules    FraudRules
	stats    FraudStats
	velocity VelocityTracker
	now      func() time.Time
}

// NewFraudDetector builds a detector. velocity may be nil, in which case IP
// velocity is counted from stored orders.
func NewFraudDetector(rules FraudRules, stats FraudStats, velocity VelocityTracker) *FraudDetector {
	return &FraudDetector{
		rules:    rules,
		stats:    stats,
		velocity: velocity,
		now:      time.Now,
	}
}

// Analyze scores an order about to be placed. A flagged result means the
// order goes to manual review; nothing here rejects an order.
func (d *FraudDetector) Analyze(ctx context.Context, in FraudInput) (domain.FraudAssessment, error) {
	now := d.now()
	score := 0
	reasons := []string{}

	if in.Total.GreaterThanOrEqual(d.rules.HighValueAmount) {
		score += scoreHighValue
		reasons = append(reasons, fmt.Sprintf("High value order: %s", in.Total.StringFixed(2)))
	}

	recent, err := d.stats.CountOrdersSince(ctx, in.UserID, now.Add(-d.rules.CustomerOrderWindow))
	if err != nil {
		return domain.FraudAssessment{}, fmt.Errorf("failed to count recent orders: %w", err)
	}
	if d.rules.CustomerOrderLimit > 0 && recent >= int64(d.rules.CustomerOrderLimit) {
		score += scoreCustomerVelocity
		reasons = append(reasons, fmt.Sprintf("Multiple orders in %s: %d", d.rules.CustomerOrderWindow, recent))
	}

	if in.ClientIP != "" && d.rules.IPOrderLimit > 0 {
		fromIP, err := d.ipOrders(ctx, in.ClientIP, now)
		if err != nil {
			return domain.FraudAssessment{}, err
		}
		// the order being placed counts towards the window
		if fromIP+1 >= int64(d.rules.IPOrderLimit) {
			score += scoreIPVelocity
			reasons = append(reasons, fmt.Sprintf("Multiple orders from IP %s in %s: %d", in.ClientIP, d.rules.IPOrderWindow, fromIP+1))
		}
	}

	if d.rules.AbnormalQuantity > 0 {
		for _, q := range in.Quantities {
			if q >= d.rules.AbnormalQuantity {
				score += scoreAbnormalQuantity
				reasons = append(reasons, fmt.Sprintf("Abnormal quantity: %d units of one item", q))
				break
			}
		}
	}

	previous, err := d.stats.CountOrders(ctx, in.UserID)
	if err != nil {
		return domain.FraudAssessment{}, fmt.Errorf("failed to count orders: %w", err)
	}
	if previous == 0 && in.Total.GreaterThan(d.rules.HighValueAmount) {
		score += scoreNewCustomerHighValue
		reasons = append(reasons, "New customer with high-value first order")
	}

	level := domain.RiskLevelForScore(score)

	return domain.FraudAssessment{
		Flagged: level != domain.RiskNone,
		Level:   level,
		Score:   score,
		Reasons: reasons,
	}, nil
}

func (d *FraudDetector) ipOrders(ctx context.Context, ip string, now time.Time) (int64, error) {
	if d.velocity != nil {
		n, err := d.velocity.Count(ctx, ip, d.rules.IPOrderWindow, now)
		if err == nil {
			return n, nil
		}
		logger.Warn("velocity window unavailable, counting from orders", err)
	}

	n, err := d.stats.CountOrdersFromIPSince(ctx, ip, now.Add(-d.rules.IPOrderWindow))
	if err != nil {
		return 0, fmt.Errorf("failed to count orders from ip: %w", err)
	}

	return n, nil
}

// RecordAttempt adds a placed order to the IP window.
func (d *FraudDetector) RecordAttempt(ctx context.Context, ip, orderNumber string) error {
	if d.velocity == nil || ip == "" {
		return nil
	}

	return d.velocity.Record(ctx, ip, orderNumber, d.rules.IPOrderWindow, d.now())
}
