package xendit

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"techshop/domain"
)

type XenditConfig struct {
	XenditApi          string
	XenditUrl          string
	SuccessRedirectUrl string
	FailureRedirectUrl string
}

type XenditRepository struct {
	xenditConfig XenditConfig
	client       *http.Client
}

func NewXenditRepository(cfg XenditConfig) *XenditRepository {
	return &XenditRepository{
		xenditConfig: cfg,
		client:       &http.Client{Timeout: 10 * time.Second},
	}
}

// CreateInvoice opens a hosted invoice and returns Xendit's view of it.
func (r *XenditRepository) CreateInvoice(ctx context.Context, invoice domain.XenditInvoiceRequest) (domain.XenditInvoiceResponse, error) {
	if invoice.SuccessRedirectURL == "" {
		invoice.SuccessRedirectURL = r.xenditConfig.SuccessRedirectUrl
	}
	if invoice.FailureRedirectURL == "" {
		invoice.FailureRedirectURL = r.xenditConfig.FailureRedirectUrl
	}

	payload, err := json.Marshal(invoice)
	if err != nil {
		return domain.XenditInvoiceResponse{}, fmt.Errorf("failed to marshal json payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.xenditConfig.XenditUrl, bytes.NewReader(payload))
	if err != nil {
		return domain.XenditInvoiceResponse{}, err
	}
	req.Header.Add("Content-Type", "application/json")
	req.SetBasicAuth(r.xenditConfig.XenditApi, "")

	res, err := r.client.Do(req)
	if err != nil {
		return domain.XenditInvoiceResponse{}, err
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return domain.XenditInvoiceResponse{}, err
	}

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return domain.XenditInvoiceResponse{}, fmt.Errorf("xendit returned %d: %s", res.StatusCode, string(body))
	}

	var xenditResponse domain.XenditInvoiceResponse
	if err := json.Unmarshal(body, &xenditResponse); err != nil {
		return domain.XenditInvoiceResponse{}, fmt.Errorf("failed to decode xendit response: %w", err)
	}

	if xenditResponse.InvoiceURL == "" {
		return domain.XenditInvoiceResponse{}, fmt.Errorf("xendit response has no invoice url")
	}

	return xenditResponse, nil
}
