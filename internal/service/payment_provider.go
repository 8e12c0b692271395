package service

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"lms_backend/internal/config"
	"time"

	"github.com/go-resty/resty/v2"
)

type CheckoutRequest struct {
	Reference   string `json:"reference"`
	AmountCents int64  `json:"amount"`
	Currency    string `json:"currency"`
	Description string `json:"description"`
	CustomerRef string `json:"customer_reference"`
	SuccessURL  string `json:"success_url"`
	CancelURL   string `json:"cancel_url"`
}

type CheckoutSession struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// PaymentProvider 第三方支付渠道
type PaymentProvider interface {
	Name() string
	CreateCheckout(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error)
	VerifySignature(payload []byte, signature string) bool
}

// HTTPPaymentProvider 通过托管收银台 HTTP API 下单
type HTTPPaymentProvider struct {
	name          string
	client        *resty.Client
	webhookSecret string
}

func NewHTTPPaymentProvider(name string, cfg config.ProviderConfig) *HTTPPaymentProvider {
	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetAuthToken(cfg.APIKey).
		SetTimeout(10 * time.Second).
		SetRetryCount(2).
		SetHeader("Content-Type", "application/json")

	return &HTTPPaymentProvider{
		name:          name,
		client:        client,
		webhookSecret: cfg.WebhookSecret,
	}
}

func (p *HTTPPaymentProvider) Name() string {
	return p.name
}

func (p *HTTPPaymentProvider) CreateCheckout(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error) {
	var session CheckoutSession
	resp, err := p.client.R().
		SetContext(ctx).
		SetHeader("Idempotency-Key", req.Reference).
		SetBody(req).
		SetResult(&session).
		Post("/checkout/sessions")
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, fmt.Errorf("%s checkout failed: status %d: %s", p.name, resp.StatusCode(), resp.String())
	}
	if session.ID == "" || session.URL == "" {
		return nil, fmt.Errorf("%s checkout returned an incomplete session", p.name)
	}
	return &session, nil
}

// VerifySignature 校验 hex(HMAC-SHA256(secret, body))
func (p *HTTPPaymentProvider) VerifySignature(payload []byte, signature string) bool {
	if p.webhookSecret == "" || signature == "" {
		return false
	}
	expected, err := hex.DecodeString(signature)
	if err != nil {
		return false
	}
	mac := hmac.New(sha256.New, []byte(p.webhookSecret))
	mac.Write(payload)
	return hmac.Equal(mac.Sum(nil), expected)
}

// SignPayload 生成与 VerifySignature 对应的签名
func SignPayload(secret string, payload []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}
