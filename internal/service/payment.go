package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/zero-filtre/zerofiltre-blog-backend-sub004/internal/auth"
	"github.com/zero-filtre/zerofiltre-blog-backend-sub004/internal/model"
	"github.com/zero-filtre/zerofiltre-blog-backend-sub004/internal/provider"
	"github.com/zero-filtre/zerofiltre-blog-backend-sub004/internal/repository"
)

type CheckoutInput struct {
	CourseID string                `json:"course_id" validate:"required"`
	Provider model.PaymentProvider `json:"provider" validate:"required,oneof=STRIPE NOTCHPAY"`
}

// CheckoutResult tells the client how to finish paying: a Stripe client secret or a
// NotchPay redirect.
type CheckoutResult struct {
	Reference    string                `json:"reference"`
	Provider     model.PaymentProvider `json:"provider"`
	Amount       int64                 `json:"amount"`
	Currency     string                `json:"currency"`
	Status       model.PaymentStatus   `json:"status"`
	ClientSecret string                `json:"client_secret,omitempty"`
	RedirectURL  string                `json:"redirect_url,omitempty"`
}

type PaymentService interface {
	Checkout(ctx context.Context, actor auth.Principal, in CheckoutInput) (*CheckoutResult, error)
	HandleStripeWebhook(ctx context.Context, payload []byte, signature string) error
	HandleNotchPayWebhook(ctx context.Context, payload []byte, signature string) error
	// Complete is idempotent: an already completed payment is left as is.
	Complete(ctx context.Context, reference string) error
	Get(ctx context.Context, actor auth.Principal, reference string) (*model.Payment, error)
}

type paymentService struct {
	payments  repository.PaymentRepository
	purchases repository.PurchaseRepository
	courses   repository.CourseRepository
	gateways  map[model.PaymentProvider]provider.PaymentGateway
	notifier  NotificationService
	log       logrus.FieldLogger
}

func NewPaymentService(
	payments repository.PaymentRepository,
	purchases repository.PurchaseRepository,
	courses repository.CourseRepository,
	gateways []provider.PaymentGateway,
	notifier NotificationService,
	log logrus.FieldLogger,
) PaymentService {
	byName := make(map[model.PaymentProvider]provider.PaymentGateway, len(gateways))
	for _, g := range gateways {
		byName[g.Provider()] = g
	}
	return &paymentService{
		payments:  payments,
		purchases: purchases,
		courses:   courses,
		gateways:  byName,
		notifier:  notifier,
		log:       log.WithField("component", "payments"),
	}
}

func (s *paymentService) Checkout(ctx context.Context, actor auth.Principal, in CheckoutInput) (*CheckoutResult, error) {
	if !actor.Authenticated() {
		return nil, ErrUnauthorized
	}
	if err := validate(in); err != nil {
		return nil, err
	}
	gw, ok := s.gateways[in.Provider]
	if !ok {
		return nil, fmt.Errorf("%w: %s is not available", ErrPayment, in.Provider)
	}
	c, err := s.courses.FindByID(ctx, in.CourseID)
	if err != nil {
		return nil, repoErr(err, ErrNotFound)
	}
	if c.Status != model.StatusPublished {
		return nil, ErrNotFound
	}
	if c.IsFree() {
		return nil, invalidf("course %s is free, enroll instead", c.ID)
	}
	_, err = s.purchases.Find(ctx, actor.UserID, c.ID)
	if err == nil {
		return nil, fmt.Errorf("%w: course already purchased", ErrConflict)
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	now := time.Now().UTC()
	p := &model.Payment{
		ID:        uuid.NewString(),
		Reference: uuid.NewString(),
		Provider:  in.Provider,
		UserID:    actor.UserID,
		CourseID:  c.ID,
		Amount:    c.Price,
		Currency:  c.Currency,
		Status:    model.PaymentPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.payments.Create(ctx, p); err != nil {
		return nil, repoErr(err, ErrNotFound)
	}

	log := s.log.WithFields(logrus.Fields{"reference": p.Reference, "provider": p.Provider})
	res, err := gw.Charge(ctx, provider.ChargeRequest{
		Reference:   p.Reference,
		Amount:      p.Amount,
		Currency:    p.Currency,
		Description: c.Title,
		Email:       actor.Email,
		UserID:      actor.UserID,
		CourseID:    c.ID,
	})
	if err != nil {
		log.WithError(err).Warn("charge failed")
		p.Status = model.PaymentFailed
		p.UpdatedAt = time.Now().UTC()
		if uerr := s.payments.Update(ctx, p); uerr != nil {
			log.WithError(uerr).Error("payment not marked failed")
		}
		return nil, fmt.Errorf("%w: %v", ErrPayment, err)
	}
	p.ProviderPaymentID = res.ProviderPaymentID
	p.UpdatedAt = time.Now().UTC()
	if err := s.payments.Update(ctx, p); err != nil {
		return nil, err
	}
	log.Info("checkout started")
	return &CheckoutResult{
		Reference:    p.Reference,
		Provider:     p.Provider,
		Amount:       p.Amount,
		Currency:     p.Currency,
		Status:       p.Status,
		ClientSecret: res.ClientSecret,
		RedirectURL:  res.RedirectURL,
	}, nil
}

func (s *paymentService) HandleStripeWebhook(ctx context.Context, payload []byte, signature string) error {
	return s.handleWebhook(ctx, model.PaymentStripe, payload, signature)
}

func (s *paymentService) HandleNotchPayWebhook(ctx context.Context, payload []byte, signature string) error {
	return s.handleWebhook(ctx, model.PaymentNotchPay, payload, signature)
}

func (s *paymentService) handleWebhook(ctx context.Context, name model.PaymentProvider, payload []byte, signature string) error {
	gw, ok := s.gateways[name]
	if !ok {
		return fmt.Errorf("%w: %s is not available", ErrPayment, name)
	}
	ev, err := gw.ParseWebhook(payload, signature)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPayment, err)
	}
	log := s.log.WithFields(logrus.Fields{
		"provider":     name,
		"event":        ev.Name,
		"reference":    ev.Reference,
		"provider_ref": ev.ProviderRef,
	})
	if ev.Type == provider.WebhookIgnored {
		log.Debug("webhook ignored")
		return nil
	}
	p, err := s.locate(ctx, name, ev)
	if err != nil {
		log.WithError(err).Warn("webhook for unknown payment")
		return err
	}
	log.Info("webhook received")
	switch ev.Type {
	case provider.WebhookSucceeded:
		return s.complete(ctx, p)
	case provider.WebhookFailed:
		return s.settle(ctx, p, model.PaymentFailed)
	case provider.WebhookCanceled:
		return s.settle(ctx, p, model.PaymentCanceled)
	}
	return nil
}

// locate finds the payment by our reference, falling back to the gateway's own id.
func (s *paymentService) locate(ctx context.Context, name model.PaymentProvider, ev *provider.WebhookEvent) (*model.Payment, error) {
	if ev.Reference != "" {
		p, err := s.payments.FindByReference(ctx, ev.Reference)
		if err == nil {
			return p, nil
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
	}
	if ev.ProviderRef != "" {
		p, err := s.payments.FindByProviderPaymentID(ctx, name, ev.ProviderRef)
		return p, repoErr(err, ErrNotFound)
	}
	return nil, ErrNotFound
}

func (s *paymentService) Complete(ctx context.Context, reference string) error {
	if reference == "" {
		return ErrIDRequired
	}
	p, err := s.payments.FindByReference(ctx, reference)
	if err != nil {
		return repoErr(err, ErrNotFound)
	}
	return s.complete(ctx, p)
}

func (s *paymentService) complete(ctx context.Context, p *model.Payment) error {
	if p.Status == model.PaymentCompleted {
		return nil
	}
	p.Status = model.PaymentCompleted
	p.UpdatedAt = time.Now().UTC()
	if err := s.payments.Update(ctx, p); err != nil {
		return err
	}
	purchase := &model.Purchase{
		ID:        uuid.NewString(),
		UserID:    p.UserID,
		CourseID:  p.CourseID,
		PaymentID: &p.ID,
		CreatedAt: p.UpdatedAt,
	}
	err := s.purchases.Create(ctx, purchase)
	switch {
	case errors.Is(err, repository.ErrDuplicate):
		s.log.WithField("reference", p.Reference).Info("purchase already granted")
	case err != nil:
		return err
	default:
		if err := s.courses.IncrementEnrolled(ctx, p.CourseID); err != nil {
			s.log.WithField("course_id", p.CourseID).WithError(err).Warn("enrolment not counted")
		}
	}
	s.notifier.Notify(ctx, NotificationInput{
		UserID: p.UserID,
		Type:   model.NotifyPaymentCompleted,
		Title:  "Payment received",
		Body:   fmt.Sprintf("%d %s", p.Amount, p.Currency),
		Link:   "/courses/" + p.CourseID,
	})
	return nil
}

// settle moves a payment to a final failure state. Completed payments never go back.
func (s *paymentService) settle(ctx context.Context, p *model.Payment, status model.PaymentStatus) error {
	if p.Status == model.PaymentCompleted || p.Status == status {
		return nil
	}
	p.Status = status
	p.UpdatedAt = time.Now().UTC()
	return s.payments.Update(ctx, p)
}

func (s *paymentService) Get(ctx context.Context, actor auth.Principal, reference string) (*model.Payment, error) {
	if !actor.Authenticated() {
		return nil, ErrUnauthorized
	}
	if reference == "" {
		return nil, ErrIDRequired
	}
	p, err := s.payments.FindByReference(ctx, reference)
	if err != nil {
		return nil, repoErr(err, ErrNotFound)
	}
	if p.UserID != actor.UserID && !actor.IsAdmin() {
		return nil, ErrForbidden
	}
	return p, nil
}
