//go:build !integration

package notification

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"techshop/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSend(t *testing.T) {
	var got sendRequest
	var user, pass string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v3.1/send", r.URL.Path)
		user, pass, _ = r.BasicAuth()
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	mailer := NewMailer(MailjetConfig{
		BaseURL:     srv.URL,
		APIKey:      "key",
		APISecret:   "secret",
		SenderEmail: "shop@example.com",
		SenderName:  "TechShop",
	})

	err := mailer.Send(context.Background(), domain.Email{
		ToName:    "Ada",
		ToAddress: "ada@example.com",
		Subject:   "Your order",
		Text:      "Thanks",
		Attachments: []domain.Attachment{
			{Filename: "invoice-ORD-1.pdf", ContentType: "application/pdf", Content: []byte("%PDF-1.3")},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "key", user)
	assert.Equal(t, "secret", pass)
	require.Len(t, got.Messages, 1)
	msg := got.Messages[0]
	assert.Equal(t, "ada@example.com", msg.To[0].Email)
	assert.Equal(t, "shop@example.com", msg.From.Email)
	assert.Equal(t, "Thanks", msg.HTMLPart)
	require.Len(t, msg.Attachments, 1)
	assert.Equal(t, "invoice-ORD-1.pdf", msg.Attachments[0].Filename)
	assert.Equal(t, base64.StdEncoding.EncodeToString([]byte("%PDF-1.3")), msg.Attachments[0].Base64Content)
}

func TestSendRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"ErrorMessage":"invalid sender"}`))
	}))
	defer srv.Close()

	err := NewMailer(MailjetConfig{BaseURL: srv.URL}).Send(context.Background(), domain.Email{ToAddress: "ada@example.com"})

	assert.EqualError(t, err, "mailjet returned status 400")
}

func TestSendHonoursContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := NewMailer(MailjetConfig{BaseURL: srv.URL}).Send(ctx, domain.Email{ToAddress: "ada@example.com"})

	assert.ErrorIs(t, err, context.Canceled)
}

func TestSendNotConfigured(t *testing.T) {
	assert.NoError(t, NewMailer(MailjetConfig{}).Send(context.Background(), domain.Email{ToAddress: "ada@example.com"}))
}

func TestSendNeedsRecipient(t *testing.T) {
	err := NewMailer(MailjetConfig{BaseURL: "http://127.0.0.1:1"}).Send(context.Background(), domain.Email{})

	var verr *domain.ValidationError
	assert.ErrorAs(t, err, &verr)
}
