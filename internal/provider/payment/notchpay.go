package payment

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/zero-filtre/zerofiltre-blog-backend-sub004/internal/config"
	"github.com/zero-filtre/zerofiltre-blog-backend-sub004/internal/model"
	"github.com/zero-filtre/zerofiltre-blog-backend-sub004/internal/provider"
)

// NotchPay initializes hosted payments and verifies x-notch-signature webhooks.
type NotchPay struct {
	cfg    config.NotchPayConfig
	client *http.Client
}

func NewNotchPay(cfg config.NotchPayConfig, httpClient *http.Client) *NotchPay {
	return &NotchPay{cfg: cfg, client: httpClient}
}

var _ provider.PaymentGateway = (*NotchPay)(nil)

func (n *NotchPay) Provider() model.PaymentProvider { return model.PaymentNotchPay }

type notchInitRequest struct {
	Amount      int64  `json:"amount"`
	Currency    string `json:"currency"`
	Email       string `json:"email,omitempty"`
	Reference   string `json:"reference"`
	Description string `json:"description,omitempty"`
	Callback    string `json:"callback,omitempty"`
}

type notchInitResponse struct {
	Status           string `json:"status"`
	Message          string `json:"message"`
	AuthorizationURL string `json:"authorization_url"`
	Transaction      struct {
		Reference string `json:"reference"`
	} `json:"transaction"`
}

func (n *NotchPay) Charge(ctx context.Context, req provider.ChargeRequest) (*provider.ChargeResult, error) {
	if n.cfg.PublicKey == "" {
		return nil, provider.ErrNotConfigured
	}
	currency := req.Currency
	if currency == "" {
		currency = n.cfg.Currency
	}
	body, err := json.Marshal(notchInitRequest{
		Amount:      req.Amount,
		Currency:    currency,
		Email:       req.Email,
		Reference:   req.Reference,
		Description: req.Description,
		Callback:    n.cfg.CallbackURL,
	})
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		strings.TrimRight(n.cfg.BaseURL, "/")+"/payments/initialize", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Authorization", n.cfg.PublicKey)
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	resp, err := n.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("notchpay initialize: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("notchpay read: %w", err)
	}
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("notchpay initialize: status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	var out notchInitResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("notchpay decode: %w", err)
	}
	if out.AuthorizationURL == "" {
		return nil, fmt.Errorf("notchpay initialize: no authorization url (%s)", out.Message)
	}
	return &provider.ChargeResult{
		ProviderPaymentID: out.Transaction.Reference,
		RedirectURL:       out.AuthorizationURL,
	}, nil
}

type notchEvent struct {
	Event string `json:"event"`
	Data  struct {
		Reference         string `json:"reference"`
		MerchantReference string `json:"merchant_reference"`
		TrxRef            string `json:"trxref"`
		Status            string `json:"status"`
	} `json:"data"`
}

// Sign returns the hex HMAC-SHA256 of payload under key, as sent in x-notch-signature.
func Sign(payload []byte, key string) string {
	mac := hmac.New(sha256.New, []byte(key))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

func (n *NotchPay) ParseWebhook(payload []byte, signature string) (*provider.WebhookEvent, error) {
	if n.cfg.HashKey == "" {
		return nil, provider.ErrNotConfigured
	}
	expected := Sign(payload, n.cfg.HashKey)
	if !hmac.Equal([]byte(expected), []byte(strings.ToLower(strings.TrimSpace(signature)))) {
		return nil, provider.ErrInvalidSignature
	}

	var ev notchEvent
	if err := json.Unmarshal(payload, &ev); err != nil {
		return nil, fmt.Errorf("decode notchpay event: %w", err)
	}

	out := &provider.WebhookEvent{
		Type:        provider.WebhookIgnored,
		Name:        ev.Event,
		Reference:   ev.Data.MerchantReference,
		ProviderRef: ev.Data.Reference,
	}
	if out.Reference == "" {
		out.Reference = ev.Data.TrxRef
	}
	switch ev.Event {
	case "payment.complete":
		out.Type = provider.WebhookSucceeded
	case "payment.failed", "payment.expired":
		out.Type = provider.WebhookFailed
	case "payment.canceled":
		out.Type = provider.WebhookCanceled
	}
	return out, nil
}
