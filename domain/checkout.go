package domain

import "strings"

type RiskLevel string

const (
	RiskNone   RiskLevel = "NONE"
	RiskLow    RiskLevel = "LOW"
	RiskMedium RiskLevel = "MEDIUM"
	RiskHigh   RiskLevel = "HIGH"
)

// RiskLevelForScore maps an accumulated risk score onto a level.
func RiskLevelForScore(score int) RiskLevel {
	switch {
	case score >= 75:
		return RiskHigh
	case score >= 40:
		return RiskMedium
	case score >= 20:
		return RiskLow
	default:
		return RiskNone
	}
}

type FraudAssessment struct {
	Flagged bool      `json:"flagged"`
	Level   RiskLevel `json:"risk_level"`
	Score   int       `json:"risk_score"`
	Reasons []string  `json:"reasons"`
}

func (a FraudAssessment) Reason() string {
	if len(a.Reasons) == 0 {
		return "No suspicious patterns detected"
	}
	return strings.Join(a.Reasons, "; ")
}

type ShippingDetails struct {
	Address string `json:"shipping_address"`
	City    string `json:"shipping_city"`
	State   string `json:"shipping_state"`
	Zip     string `json:"shipping_zip"`
}

func (s ShippingDetails) Complete() bool {
	return strings.TrimSpace(s.Address) != "" &&
		strings.TrimSpace(s.City) != "" &&
		strings.TrimSpace(s.State) != "" &&
		strings.TrimSpace(s.Zip) != ""
}

type CheckoutRequest struct {
	UserID        uint
	Shipping      ShippingDetails
	PaymentMethod string
	ClientIP      string
	UserAgent     string
}

// PlaceOrder is everything the checkout transaction writes.
type PlaceOrder struct {
	Order   *WebOrder
	Lines   []StockLine
	Payment *PaymentTransaction
	Review  *OrderReview
	CartID  uint64
}

type CheckoutResult struct {
	Order          WebOrder        `json:"order"`
	Assessment     FraudAssessment `json:"fraud"`
	ReviewRequired bool            `json:"review_required"`
	PaymentLink    string          `json:"payment_link,omitempty"`
}
