package services

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"image/png"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/skip2/go-qrcode"
	"github.com/trainerdesk/backend/internal/config"
	ierr "github.com/trainerdesk/backend/internal/errors"
)

// PaymentQR is a short-lived payment link for one invoice.
type PaymentQR struct {
	Token     string    `json:"token"`
	URL       string    `json:"url"`
	Image     string    `json:"image"` // base64 PNG
	ExpiresAt time.Time `json:"expiresAt"`
}

type PaymentQRService struct {
	redis    *redis.Client
	baseURL  string
	ttl      time.Duration
	newToken func() string
}

func NewPaymentQRService(rdb *redis.Client, cfg config.PaymentsConfig) *PaymentQRService {
	ttl := cfg.TokenTTL
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	return &PaymentQRService{
		redis:    rdb,
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		ttl:      ttl,
		newToken: generateNonce,
	}
}

func paymentKey(token string) string {
	return fmt.Sprintf("pay:%s", token)
}

// Generate stores a random token for the invoice and renders the payment
// URL as a QR code.
func (s *PaymentQRService) Generate(ctx context.Context, invoiceID string) (*PaymentQR, error) {
	if s.redis == nil {
		return nil, ierr.NewError("payment links need redis").
			WithHint("Payment links are unavailable").
			Mark(ierr.ErrTransientProvider)
	}

	token := s.newToken()
	if err := s.redis.Set(ctx, paymentKey(token), invoiceID, s.ttl).Err(); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Payment links are unavailable").
			Mark(ierr.ErrTransientProvider)
	}

	link := fmt.Sprintf("%s/%s", s.baseURL, token)
	qr, err := qrcode.New(link, qrcode.Medium)
	if err != nil {
		return nil, ierr.WithError(err).Mark(ierr.ErrSystem)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, qr.Image(256)); err != nil {
		return nil, ierr.WithError(err).Mark(ierr.ErrSystem)
	}

	return &PaymentQR{
		Token:     token,
		URL:       link,
		Image:     base64.StdEncoding.EncodeToString(buf.Bytes()),
		ExpiresAt: time.Now().Add(s.ttl),
	}, nil
}

// Resolve returns the invoice id behind a payment token. The token stays
// valid until it expires.
func (s *PaymentQRService) Resolve(ctx context.Context, token string) (string, error) {
	if s.redis == nil {
		return "", ierr.NewError("payment links need redis").
			WithHint("Payment links are unavailable").
			Mark(ierr.ErrTransientProvider)
	}

	invoiceID, err := s.redis.Get(ctx, paymentKey(token)).Result()
	if err == redis.Nil {
		return "", ierr.NewError("payment token not found").
			WithHint("Invalid or expired payment link").
			Mark(ierr.ErrNotFound)
	}
	if err != nil {
		return "", ierr.WithError(err).
			WithHint("Payment links are unavailable").
			Mark(ierr.ErrTransientProvider)
	}
	return invoiceID, nil
}

func generateNonce() string {
	b := make([]byte, 16)
	rand.Read(b)
	return base64.RawURLEncoding.EncodeToString(b)
}
