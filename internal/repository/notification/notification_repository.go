package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"techshop/domain"
	"techshop/pkg/logger"

	"github.com/pobyzaarif/goshortcute"
)

type MailjetConfig struct {
	BaseURL     string
	APIKey      string
	APISecret   string
	SenderEmail string
	SenderName  string
	Timeout     time.Duration
}

// Mailer delivers transactional email through Mailjet's v3.1 send API.
type Mailer struct {
	cfg    MailjetConfig
	client *http.Client
}

func NewMailer(cfg MailjetConfig) *Mailer {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	return &Mailer{cfg: cfg, client: &http.Client{Timeout: cfg.Timeout}}
}

type mailjetAddress struct {
	Email string `json:"Email"`
	Name  string `json:"Name,omitempty"`
}

type mailjetAttachment struct {
	ContentType   string `json:"ContentType"`
	Filename      string `json:"Filename"`
	Base64Content string `json:"Base64Content"`
}

type mailjetMessage struct {
	From        mailjetAddress      `json:"From"`
	To          []mailjetAddress    `json:"To"`
	Subject     string              `json:"Subject"`
	TextPart    string              `json:"TextPart,omitempty"`
	HTMLPart    string              `json:"HTMLPart,omitempty"`
	Attachments []mailjetAttachment `json:"Attachments,omitempty"`
}

type sendRequest struct {
	Messages []mailjetMessage `json:"Messages"`
}

func (m *Mailer) message(email domain.Email) mailjetMessage {
	html := email.HTML
	if html == "" {
		html = email.Text
	}

	msg := mailjetMessage{
		From:     mailjetAddress{Email: m.cfg.SenderEmail, Name: m.cfg.SenderName},
		To:       []mailjetAddress{{Email: email.ToAddress, Name: email.ToName}},
		Subject:  email.Subject,
		TextPart: email.Text,
		HTMLPart: html,
	}
	for _, a := range email.Attachments {
		msg.Attachments = append(msg.Attachments, mailjetAttachment{
			ContentType:   a.ContentType,
			Filename:      a.Filename,
			Base64Content: goshortcute.StringtoBase64Encode(string(a.Content)),
		})
	}
	return msg
}

// Send delivers one email. Without a base url the message is only logged.
func (m *Mailer) Send(ctx context.Context, email domain.Email) error {
	if m.cfg.BaseURL == "" {
		logger.Info("mailjet not configured, email skipped", "to", email.ToAddress, "subject", email.Subject)
		return nil
	}
	if email.ToAddress == "" {
		return domain.Invalid("email recipient is required")
	}

	body, err := json.Marshal(sendRequest{Messages: []mailjetMessage{m.message(email)}})
	if err != nil {
		return fmt.Errorf("failed to encode mailjet request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.cfg.BaseURL+"/v3.1/send", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(m.cfg.APIKey, m.cfg.APISecret)

	res, err := m.client.Do(req)
	if err != nil {
		return fmt.Errorf("mailjet request failed: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode/100 == 2 {
		return nil
	}

	detail, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
	logger.Warn("mailjet rejected email", "status", res.StatusCode, "to", email.ToAddress, "response", string(detail))
	return fmt.Errorf("mailjet returned status %d", res.StatusCode)
}
