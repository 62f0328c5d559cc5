package service

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/zero-filtre/zerofiltre-blog-backend-sub004/internal/config"
	"github.com/zero-filtre/zerofiltre-blog-backend-sub004/internal/model"
	"github.com/zero-filtre/zerofiltre-blog-backend-sub004/internal/provider"
	"github.com/zero-filtre/zerofiltre-blog-backend-sub004/internal/provider/payment"
	"github.com/zero-filtre/zerofiltre-blog-backend-sub004/internal/repository"
	repoMocks "github.com/zero-filtre/zerofiltre-blog-backend-sub004/internal/repository/mocks"
)

type gatewayMock struct {
	mock.Mock
	name model.PaymentProvider
}

func (g *gatewayMock) Provider() model.PaymentProvider { return g.name }

func (g *gatewayMock) Charge(ctx context.Context, req provider.ChargeRequest) (*provider.ChargeResult, error) {
	args := g.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*provider.ChargeResult), args.Error(1)
}

func (g *gatewayMock) ParseWebhook(payload []byte, signature string) (*provider.WebhookEvent, error) {
	args := g.Called(payload, signature)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*provider.WebhookEvent), args.Error(1)
}

type paymentMocks struct {
	payments  *repoMocks.MockPaymentRepository
	purchases *repoMocks.MockPurchaseRepository
	courses   *repoMocks.MockCourseRepository
	notifier  *notifierMock
	stripe    *gatewayMock
}

func newPaymentFixture(extra ...provider.PaymentGateway) (PaymentService, paymentMocks) {
	m := paymentMocks{
		payments:  new(repoMocks.MockPaymentRepository),
		purchases: new(repoMocks.MockPurchaseRepository),
		courses:   new(repoMocks.MockCourseRepository),
		notifier:  new(notifierMock),
		stripe:    &gatewayMock{name: model.PaymentStripe},
	}
	gws := append([]provider.PaymentGateway{m.stripe}, extra...)
	return NewPaymentService(m.payments, m.purchases, m.courses, gws, m.notifier, quietLogger()), m
}

func TestPaymentService_Checkout(t *testing.T) {
	ctx := context.Background()
	in := CheckoutInput{CourseID: "c-1", Provider: model.PaymentStripe}

	tests := []struct {
		name       string
		in         CheckoutInput
		setupMocks func(m paymentMocks)
		wantErr    error
	}{
		{
			name: "stripe intent",
			in:   in,
			setupMocks: func(m paymentMocks) {
				m.courses.On("FindByID", ctx, "c-1").Return(publishedCourse(4900), nil)
				m.purchases.On("Find", ctx, alice.UserID, "c-1").Return(nil, repository.ErrNotFound)
				m.payments.On("Create", ctx, mock.MatchedBy(func(p *model.Payment) bool {
					return p.Status == model.PaymentPending && p.Amount == 4900 && p.Reference != ""
				})).Return(nil)
				m.stripe.On("Charge", ctx, mock.MatchedBy(func(r provider.ChargeRequest) bool {
					return r.Amount == 4900 && r.Currency == "EUR" && r.UserID == alice.UserID && r.Email == alice.Email
				})).Return(&provider.ChargeResult{ProviderPaymentID: "pi_1", ClientSecret: "pi_1_secret"}, nil)
				m.payments.On("Update", ctx, mock.MatchedBy(func(p *model.Payment) bool {
					return p.ProviderPaymentID == "pi_1" && p.Status == model.PaymentPending
				})).Return(nil)
			},
		},
		{
			name: "provider failure marks payment failed",
			in:   in,
			setupMocks: func(m paymentMocks) {
				m.courses.On("FindByID", ctx, "c-1").Return(publishedCourse(4900), nil)
				m.purchases.On("Find", ctx, alice.UserID, "c-1").Return(nil, repository.ErrNotFound)
				m.payments.On("Create", ctx, mock.Anything).Return(nil)
				m.stripe.On("Charge", ctx, mock.Anything).Return(nil, errors.New("card_declined"))
				m.payments.On("Update", ctx, mock.MatchedBy(func(p *model.Payment) bool {
					return p.Status == model.PaymentFailed
				})).Return(nil)
			},
			wantErr: ErrPayment,
		},
		{
			name: "already purchased",
			in:   in,
			setupMocks: func(m paymentMocks) {
				m.courses.On("FindByID", ctx, "c-1").Return(publishedCourse(4900), nil)
				m.purchases.On("Find", ctx, alice.UserID, "c-1").Return(&model.Purchase{ID: "p-1"}, nil)
			},
			wantErr: ErrConflict,
		},
		{
			name: "free course",
			in:   in,
			setupMocks: func(m paymentMocks) {
				m.courses.On("FindByID", ctx, "c-1").Return(publishedCourse(0), nil)
			},
			wantErr: ErrInvalidInput,
		},
		{name: "gateway not configured", in: CheckoutInput{CourseID: "c-1", Provider: model.PaymentNotchPay}, wantErr: ErrPayment},
		{name: "unknown provider", in: CheckoutInput{CourseID: "c-1", Provider: "PAYPAL"}, wantErr: ErrInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, m := newPaymentFixture()
			if tt.setupMocks != nil {
				tt.setupMocks(m)
			}
			res, err := svc.Checkout(ctx, alice, tt.in)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, res)
			} else {
				require.NoError(t, err)
				assert.Equal(t, "pi_1_secret", res.ClientSecret)
				assert.Equal(t, model.PaymentPending, res.Status)
			}
			m.payments.AssertExpectations(t)
			m.stripe.AssertExpectations(t)
		})
	}
}

func TestPaymentService_HandleStripeWebhook(t *testing.T) {
	ctx := context.Background()
	payload := []byte(`{}`)

	pending := func() *model.Payment {
		return &model.Payment{ID: "pay-1", Reference: "ref-1", UserID: alice.UserID, CourseID: "c-1", Status: model.PaymentPending, Amount: 4900, Currency: "EUR"}
	}

	tests := []struct {
		name       string
		setupMocks func(m paymentMocks)
		wantErr    error
	}{
		{
			name: "succeeded completes and grants purchase",
			setupMocks: func(m paymentMocks) {
				m.stripe.On("ParseWebhook", payload, "sig").Return(&provider.WebhookEvent{Type: provider.WebhookSucceeded, Reference: "ref-1"}, nil)
				m.payments.On("FindByReference", ctx, "ref-1").Return(pending(), nil)
				m.payments.On("Update", ctx, mock.MatchedBy(func(p *model.Payment) bool { return p.Status == model.PaymentCompleted })).Return(nil)
				m.purchases.On("Create", ctx, mock.MatchedBy(func(p *model.Purchase) bool {
					return p.PaymentID != nil && *p.PaymentID == "pay-1" && p.UserID == alice.UserID
				})).Return(nil)
				m.courses.On("IncrementEnrolled", ctx, "c-1").Return(nil)
				m.notifier.On("Notify", ctx, mock.MatchedBy(func(in NotificationInput) bool {
					return in.UserID == alice.UserID && in.Type == model.NotifyPaymentCompleted
				})).Return()
			},
		},
		{
			name: "duplicate purchase tolerated",
			setupMocks: func(m paymentMocks) {
				m.stripe.On("ParseWebhook", payload, "sig").Return(&provider.WebhookEvent{Type: provider.WebhookSucceeded, Reference: "ref-1"}, nil)
				m.payments.On("FindByReference", ctx, "ref-1").Return(pending(), nil)
				m.payments.On("Update", ctx, mock.Anything).Return(nil)
				m.purchases.On("Create", ctx, mock.Anything).Return(repository.ErrDuplicate)
				m.notifier.On("Notify", ctx, mock.Anything).Return()
			},
		},
		{
			name: "completed payment is not downgraded",
			setupMocks: func(m paymentMocks) {
				done := pending()
				done.Status = model.PaymentCompleted
				m.stripe.On("ParseWebhook", payload, "sig").Return(&provider.WebhookEvent{Type: provider.WebhookFailed, Reference: "ref-1"}, nil)
				m.payments.On("FindByReference", ctx, "ref-1").Return(done, nil)
			},
		},
		{
			name: "already completed is a no-op",
			setupMocks: func(m paymentMocks) {
				done := pending()
				done.Status = model.PaymentCompleted
				m.stripe.On("ParseWebhook", payload, "sig").Return(&provider.WebhookEvent{Type: provider.WebhookSucceeded, Reference: "ref-1"}, nil)
				m.payments.On("FindByReference", ctx, "ref-1").Return(done, nil)
			},
		},
		{
			name: "canceled",
			setupMocks: func(m paymentMocks) {
				m.stripe.On("ParseWebhook", payload, "sig").Return(&provider.WebhookEvent{Type: provider.WebhookCanceled, ProviderRef: "pi_1"}, nil)
				m.payments.On("FindByProviderPaymentID", ctx, model.PaymentStripe, "pi_1").Return(pending(), nil)
				m.payments.On("Update", ctx, mock.MatchedBy(func(p *model.Payment) bool { return p.Status == model.PaymentCanceled })).Return(nil)
			},
		},
		{
			name: "ignored event",
			setupMocks: func(m paymentMocks) {
				m.stripe.On("ParseWebhook", payload, "sig").Return(&provider.WebhookEvent{Type: provider.WebhookIgnored, Name: "charge.refunded"}, nil)
			},
		},
		{
			name: "bad signature",
			setupMocks: func(m paymentMocks) {
				m.stripe.On("ParseWebhook", payload, "sig").Return(nil, provider.ErrInvalidSignature)
			},
			wantErr: ErrPayment,
		},
		{
			name: "unknown reference",
			setupMocks: func(m paymentMocks) {
				m.stripe.On("ParseWebhook", payload, "sig").Return(&provider.WebhookEvent{Type: provider.WebhookSucceeded, Reference: "nope"}, nil)
				m.payments.On("FindByReference", ctx, "nope").Return(nil, repository.ErrNotFound)
			},
			wantErr: ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, m := newPaymentFixture()
			tt.setupMocks(m)
			err := svc.HandleStripeWebhook(ctx, payload, "sig")
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			m.payments.AssertExpectations(t)
			m.purchases.AssertExpectations(t)
			m.notifier.AssertExpectations(t)
		})
	}
}

func TestPaymentService_HandleNotchPayWebhook(t *testing.T) {
	ctx := context.Background()
	notch := payment.NewNotchPay(config.NotchPayConfig{HashKey: "hash-key", PublicKey: "pk"}, http.DefaultClient)
	body := []byte(`{"event":"payment.complete","data":{"reference":"trx_1","merchant_reference":"missing","status":"complete"}}`)

	t.Run("falls back to transaction reference", func(t *testing.T) {
		svc, m := newPaymentFixture(notch)
		m.payments.On("FindByReference", ctx, "missing").Return(nil, repository.ErrNotFound)
		m.payments.On("FindByProviderPaymentID", ctx, model.PaymentNotchPay, "trx_1").
			Return(&model.Payment{ID: "pay-1", Reference: "ref-1", UserID: alice.UserID, CourseID: "c-1", Status: model.PaymentPending}, nil)
		m.payments.On("Update", ctx, mock.Anything).Return(nil)
		m.purchases.On("Create", ctx, mock.Anything).Return(nil)
		m.courses.On("IncrementEnrolled", ctx, "c-1").Return(nil)
		m.notifier.On("Notify", ctx, mock.Anything).Return()

		require.NoError(t, svc.HandleNotchPayWebhook(ctx, body, payment.Sign(body, "hash-key")))
		m.payments.AssertExpectations(t)
	})

	t.Run("tampered body", func(t *testing.T) {
		svc, _ := newPaymentFixture(notch)
		err := svc.HandleNotchPayWebhook(ctx, append(body, ' '), payment.Sign(body, "hash-key"))
		assert.ErrorIs(t, err, ErrPayment)
	})
}

func TestPaymentService_Get(t *testing.T) {
	ctx := context.Background()
	svc, m := newPaymentFixture()
	m.payments.On("FindByReference", ctx, "ref-1").Return(&model.Payment{Reference: "ref-1", UserID: alice.UserID}, nil)

	_, err := svc.Get(ctx, alice, "ref-1")
	assert.NoError(t, err)
	_, err = svc.Get(ctx, admin, "ref-1")
	assert.NoError(t, err)
	_, err = svc.Get(ctx, bob, "ref-1")
	assert.ErrorIs(t, err, ErrForbidden)
}
