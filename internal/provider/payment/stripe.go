// Package payment holds the payment gateway adapters.
package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"github.com/stripe/stripe-go/v76/webhook"

	"github.com/zero-filtre/zerofiltre-blog-backend-sub004/internal/config"
	"github.com/zero-filtre/zerofiltre-blog-backend-sub004/internal/model"
	"github.com/zero-filtre/zerofiltre-blog-backend-sub004/internal/provider"
)

const metadataReference = "reference"

// Stripe charges through payment intents; the client confirms them with the returned secret.
type Stripe struct {
	api           *client.API
	webhookSecret string
	currency      string
}

// NewStripe builds the gateway. baseURL overrides the API host and is empty in production.
func NewStripe(cfg config.StripeConfig, httpClient *http.Client, baseURL string) *Stripe {
	bc := &stripe.BackendConfig{
		HTTPClient:        httpClient,
		MaxNetworkRetries: stripe.Int64(2),
		LeveledLogger:     &stripe.LeveledLogger{Level: stripe.LevelError},
	}
	if baseURL != "" {
		bc.URL = stripe.String(baseURL)
		bc.MaxNetworkRetries = stripe.Int64(0)
	}
	backend := stripe.GetBackendWithConfig(stripe.APIBackend, bc)

	api := &client.API{}
	api.Init(cfg.SecretKey, &stripe.Backends{API: backend, Connect: backend, Uploads: backend})
	return &Stripe{api: api, webhookSecret: cfg.WebhookSecret, currency: cfg.Currency}
}

var _ provider.PaymentGateway = (*Stripe)(nil)

func (s *Stripe) Provider() model.PaymentProvider { return model.PaymentStripe }

func (s *Stripe) Charge(ctx context.Context, req provider.ChargeRequest) (*provider.ChargeResult, error) {
	currency := req.Currency
	if currency == "" {
		currency = s.currency
	}
	params := &stripe.PaymentIntentParams{
		Amount:      stripe.Int64(req.Amount),
		Currency:    stripe.String(strings.ToLower(currency)),
		Description: stripe.String(req.Description),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	if req.Email != "" {
		params.ReceiptEmail = stripe.String(req.Email)
	}
	params.Context = ctx
	params.SetIdempotencyKey(req.Reference)
	params.AddMetadata(metadataReference, req.Reference)
	params.AddMetadata("user_id", req.UserID)
	params.AddMetadata("course_id", req.CourseID)

	pi, err := s.api.PaymentIntents.New(params)
	if err != nil {
		return nil, fmt.Errorf("stripe payment intent: %w", err)
	}
	return &provider.ChargeResult{ProviderPaymentID: pi.ID, ClientSecret: pi.ClientSecret}, nil
}

// ParseWebhook verifies the Stripe-Signature header and maps payment intent events.
func (s *Stripe) ParseWebhook(payload []byte, signature string) (*provider.WebhookEvent, error) {
	if s.webhookSecret == "" {
		return nil, provider.ErrNotConfigured
	}
	event, err := webhook.ConstructEventWithOptions(payload, signature, s.webhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", provider.ErrInvalidSignature, err)
	}

	out := &provider.WebhookEvent{Type: provider.WebhookIgnored, Name: string(event.Type)}
	switch event.Type {
	case "payment_intent.succeeded":
		out.Type = provider.WebhookSucceeded
	case "payment_intent.payment_failed":
		out.Type = provider.WebhookFailed
	case "payment_intent.canceled":
		out.Type = provider.WebhookCanceled
	default:
		return out, nil
	}

	if event.Data == nil {
		return nil, errors.New("stripe event without data")
	}
	var pi stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
		return nil, fmt.Errorf("decode payment intent: %w", err)
	}
	out.ProviderRef = pi.ID
	out.Reference = pi.Metadata[metadataReference]
	return out, nil
}
