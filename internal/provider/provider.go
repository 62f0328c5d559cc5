// Package provider declares the ports the services use to reach external systems.
// Adapters live in subpackages, one per vendor.
package provider

import (
	"context"
	"errors"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/zero-filtre/zerofiltre-blog-backend-sub004/internal/model"
)

var (
	// ErrNotConfigured is returned by adapters whose credentials are missing.
	ErrNotConfigured = errors.New("provider not configured")
	// ErrInvalidSignature is returned when a webhook payload fails verification.
	ErrInvalidSignature = errors.New("invalid webhook signature")
	// ErrNotFound is returned when the remote resource does not exist.
	ErrNotFound = errors.New("remote resource not found")
)

// ChargeRequest describes a checkout a gateway must start.
type ChargeRequest struct {
	Reference   string
	Amount      int64
	Currency    string
	Description string
	Email       string
	UserID      string
	CourseID    string
}

// ChargeResult is what the client needs to finish paying.
type ChargeResult struct {
	ProviderPaymentID string `json:"provider_payment_id"`
	ClientSecret      string `json:"client_secret,omitempty"`
	RedirectURL       string `json:"redirect_url,omitempty"`
}

type WebhookEventType string

const (
	WebhookSucceeded WebhookEventType = "succeeded"
	WebhookFailed    WebhookEventType = "failed"
	WebhookCanceled  WebhookEventType = "canceled"
	WebhookIgnored   WebhookEventType = "ignored"
)

// WebhookEvent is a gateway notification normalized across providers.
// Reference is our payment reference when the gateway echoes it back.
type WebhookEvent struct {
	Type        WebhookEventType
	Name        string
	Reference   string
	ProviderRef string
}

// PaymentGateway starts charges and verifies the gateway's webhooks.
type PaymentGateway interface {
	Provider() model.PaymentProvider
	Charge(ctx context.Context, req ChargeRequest) (*ChargeResult, error)
	ParseWebhook(payload []byte, signature string) (*WebhookEvent, error)
}

// SocialProfile is the identity returned by an OAuth provider.
type SocialProfile struct {
	ID         string
	Email      string
	Name       string
	AvatarURL  string
	ProfileURL string
}

// SocialProvider exchanges an authorization code for the caller's profile.
type SocialProvider interface {
	Name() model.LoginProvider
	Profile(ctx context.Context, code string) (*SocialProfile, error)
}

// VideoUpload is a pending upload ticket.
type VideoUpload struct {
	URI        string `json:"uri"`
	VideoID    string `json:"video_id"`
	UploadLink string `json:"upload_link"`
}

// VideoProvider manages hosted course videos.
type VideoProvider interface {
	CreateUpload(ctx context.Context, name string, size int64) (*VideoUpload, error)
	Delete(ctx context.Context, videoID string) error
}

// ObjectStoreToken is a scoped token for the OVH object store.
type ObjectStoreToken struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

type TokenProvider interface {
	Token(ctx context.Context) (*ObjectStoreToken, error)
}

// TipGenerator writes the daily developer tip.
type TipGenerator interface {
	GenerateTip(ctx context.Context) (string, error)
}

// Mailer sends transactional email.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// CertificateData is what a completion certificate shows.
type CertificateData struct {
	FullName    string
	CourseTitle string
	CompletedAt time.Time
	Reference   string
}

// CertificateRenderer renders a completion certificate as a PDF.
type CertificateRenderer interface {
	Render(data CertificateData) ([]byte, error)
}

// NewHTTPClient returns a client whose transport records outbound spans.
func NewHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout:   timeout,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}
}
