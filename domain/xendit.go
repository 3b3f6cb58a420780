package domain

import "time"

type XenditInvoiceRequest struct {
	ExternalID         string         `json:"external_id"`
	Amount             float64        `json:"amount"`
	Description        string         `json:"description"`
	InvoiceDuration    int            `json:"invoice_duration"`
	Customer           XenditCustomer `json:"customer"`
	SuccessRedirectURL string         `json:"success_redirect_url"`
	FailureRedirectURL string         `json:"failure_redirect_url"`
	Currency           string         `json:"currency"`
	Items              []XenditItem   `json:"items"`
	Metadata           XenditMetadata `json:"metadata"`
}

type XenditInvoiceResponse struct {
	ID          string    `json:"id"`
	ExternalID  string    `json:"external_id"`
	Status      string    `json:"status"`
	Amount      float64   `json:"amount"`
	Description string    `json:"description"`
	ExpiryDate  time.Time `json:"expiry_date"`
	InvoiceURL  string    `json:"invoice_url"`
	Currency    string    `json:"currency"`
	Created     time.Time `json:"created"`
}

type XenditCustomer struct {
	GivenNames string `json:"given_names,omitempty"`
	Email      string `json:"email"`
}

type XenditItem struct {
	Name     string  `json:"name"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
	Category string  `json:"category,omitempty"`
}

type XenditMetadata struct {
	OrderNumber string `json:"order_number"`
}

// XenditWebhook is the invoice callback body. ExternalID carries the order number.
type XenditWebhook struct {
	ID             string    `json:"id"`
	ExternalID     string    `json:"external_id"`
	Status         string    `json:"status"`
	PaymentMethod  string    `json:"payment_method"`
	Amount         float64   `json:"amount"`
	PaidAmount     float64   `json:"paid_amount"`
	PaidAt         time.Time `json:"paid_at"`
	PayerEmail     string    `json:"payer_email"`
	Currency       string    `json:"currency"`
	PaymentChannel string    `json:"payment_channel"`
}

const (
	XenditStatusPaid    = "PAID"
	XenditStatusSettled = "SETTLED"
	XenditStatusExpired = "EXPIRED"
)
