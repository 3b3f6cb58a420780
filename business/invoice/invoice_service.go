// Package invoice renders order invoices as PDF and keeps them on disk under
// <dir>/<order_id>.pdf. A missing file is rendered again on demand.
package invoice

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"techshop/domain"
	"techshop/pkg/logger"
	"techshop/pkg/utils"

	"github.com/go-pdf/fpdf"
	"github.com/shopspring/decimal"
	qrcode "github.com/skip2/go-qrcode"
)

const trackingTTL = 90 * 24 * time.Hour

type SettingsProvider interface {
	Current(ctx context.Context) (domain.SiteConfiguration, error)
}

type InvoiceService struct {
	dir         string
	baseURL     string
	trackingKey string
	settings    SettingsProvider
	now         func() time.Time
}

func NewInvoiceService(dir, baseURL, trackingKey string, settings SettingsProvider) *InvoiceService {
	return &InvoiceService{
		dir:         dir,
		baseURL:     baseURL,
		trackingKey: trackingKey,
		settings:    settings,
		now:         time.Now,
	}
}

func (s *InvoiceService) Path(orderID uint64) string {
	return filepath.Join(s.dir, strconv.FormatUint(orderID, 10)+".pdf")
}

// TrackingURL is the public tracking link printed as a QR code on the invoice.
func (s *InvoiceService) TrackingURL(orderID uint64) (string, error) {
	code, err := utils.EncodeTrackingCode(orderID, s.now().Add(trackingTTL), s.trackingKey)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("%s/api/v1/orders/track?code=%s", s.baseURL, url.QueryEscape(code)), nil
}

// Generate renders the invoice and writes it atomically, replacing any
// previous file.
func (s *InvoiceService) Generate(ctx context.Context, order domain.WebOrder) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("context error: %w", err)
	}

	cfg, err := s.settings.Current(ctx)
	if err != nil {
		return "", err
	}

	trackingURL, err := s.TrackingURL(order.ID)
	if err != nil {
		logger.Warn("invoice rendered without tracking code", "order_number", order.OrderNumber, "error", err)
		trackingURL = ""
	}

	pdf, err := Render(order, cfg, trackingURL)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create invoice dir: %w", err)
	}

	path := s.Path(order.ID)
	tmp, err := os.CreateTemp(s.dir, ".invoice-*")
	if err != nil {
		return "", fmt.Errorf("failed to create invoice file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(pdf); err != nil {
		tmp.Close()
		return "", fmt.Errorf("failed to write invoice: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("failed to write invoice: %w", err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", fmt.Errorf("failed to store invoice: %w", err)
	}

	return path, nil
}

// Load returns the stored invoice, rendering it first when it is missing.
func (s *InvoiceService) Load(ctx context.Context, order domain.WebOrder) ([]byte, error) {
	data, err := os.ReadFile(s.Path(order.ID))
	if err == nil {
		return data, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to read invoice: %w", err)
	}

	path, err := s.Generate(ctx, order)
	if err != nil {
		return nil, err
	}

	return os.ReadFile(path)
}

func money(symbol string, amount decimal.Decimal) string {
	return symbol + amount.StringFixed(2)
}

// Render lays out a one-page A4 invoice.
func Render(order domain.WebOrder, cfg domain.SiteConfiguration, trackingURL string) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Invoice "+order.OrderNumber, true)
	pdf.SetCreator(cfg.SiteName, true)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(120, 10, tr(cfg.SiteName), "", 0, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(70, 10, "INVOICE", "", 1, "R", false, 0, "")

	pdf.CellFormat(120, 6, "Order: "+order.OrderNumber, "", 0, "L", false, 0, "")
	pdf.CellFormat(70, 6, order.CreatedAt.Format("02 Jan 2006"), "", 1, "R", false, 0, "")
	pdf.CellFormat(190, 6, "Status: "+string(order.Status), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(190, 6, "Ship to", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	pdf.MultiCell(120, 5, tr(fmt.Sprintf("%s\n%s, %s %s", order.ShippingAddress, order.ShippingCity, order.ShippingState, order.ShippingZip)), "", "L", false)
	pdf.Ln(6)

	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(230, 230, 230)
	pdf.CellFormat(30, 7, "SKU", "1", 0, "L", true, 0, "")
	pdf.CellFormat(85, 7, "Item", "1", 0, "L", true, 0, "")
	pdf.CellFormat(15, 7, "Qty", "1", 0, "R", true, 0, "")
	pdf.CellFormat(30, 7, "Unit", "1", 0, "R", true, 0, "")
	pdf.CellFormat(30, 7, "Total", "1", 1, "R", true, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	for _, it := range order.Items {
		name := it.ProductName
		if it.VariantInfo != "" {
			name += " (" + it.VariantInfo + ")"
		}
		pdf.CellFormat(30, 7, tr(it.SKU), "1", 0, "L", false, 0, "")
		pdf.CellFormat(85, 7, tr(name), "1", 0, "L", false, 0, "")
		pdf.CellFormat(15, 7, strconv.Itoa(it.Quantity), "1", 0, "R", false, 0, "")
		pdf.CellFormat(30, 7, money(cfg.CurrencySymbol, it.UnitPrice), "1", 0, "R", false, 0, "")
		pdf.CellFormat(30, 7, money(cfg.CurrencySymbol, it.Subtotal), "1", 1, "R", false, 0, "")
	}
	pdf.Ln(2)

	totals := []struct {
		label  string
		amount decimal.Decimal
	}{
		{"Subtotal", order.Subtotal},
		{"Tax", order.TaxAmount},
		{"Shipping", order.ShippingCost},
		{"Total", order.TotalAmount},
	}
	for i, t := range totals {
		if i == len(totals)-1 {
			pdf.SetFont("Helvetica", "B", 11)
		}
		pdf.CellFormat(160, 6, t.label, "", 0, "R", false, 0, "")
		pdf.CellFormat(30, 6, money(cfg.CurrencySymbol, t.amount), "", 1, "R", false, 0, "")
	}

	if trackingURL != "" {
		png, err := qrcode.Encode(trackingURL, qrcode.Medium, 256)
		if err != nil {
			return nil, fmt.Errorf("failed to encode tracking qr code: %w", err)
		}

		opts := fpdf.ImageOptions{ImageType: "PNG"}
		pdf.RegisterImageOptionsReader("tracking", opts, bytes.NewReader(png))
		y := pdf.GetY() + 8
		pdf.ImageOptions("tracking", 10, y, 35, 35, false, opts, 0, trackingURL)
		pdf.SetY(y + 36)
		pdf.SetFont("Helvetica", "", 9)
		pdf.CellFormat(190, 5, "Scan to track your order", "", 1, "L", false, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render invoice: %w", err)
	}

	return buf.Bytes(), nil
}
