// Package worker runs the background tasks enqueued by the API: transactional email
// and the daily tip refresh.
package worker

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"

	"github.com/zero-filtre/zerofiltre-blog-backend-sub004/internal/provider"
	"github.com/zero-filtre/zerofiltre-blog-backend-sub004/internal/service"
	"github.com/zero-filtre/zerofiltre-blog-backend-sub004/internal/tasks"
)

// Handlers processes every task type. The same value backs the asynq server and the
// inline enqueuer used without Redis.
type Handlers struct {
	mailer  provider.Mailer
	tips    service.TipService
	baseURL string
	log     logrus.FieldLogger
}

func NewHandlers(mailer provider.Mailer, tips service.TipService, baseURL string, log logrus.FieldLogger) *Handlers {
	return &Handlers{
		mailer:  mailer,
		tips:    tips,
		baseURL: strings.TrimRight(baseURL, "/"),
		log:     log.WithField("component", "worker"),
	}
}

// Mux routes task types to their handlers.
func (h *Handlers) Mux() *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.HandleFunc(tasks.TypeVerificationEmail, h.HandleVerificationEmail)
	mux.HandleFunc(tasks.TypePasswordResetEmail, h.HandlePasswordResetEmail)
	mux.HandleFunc(tasks.TypeTipRefresh, h.HandleTipRefresh)
	return mux
}

func (h *Handlers) HandleVerificationEmail(ctx context.Context, t *asynq.Task) error {
	p, err := tasks.ParseEmailPayload(t)
	if err != nil {
		return err
	}
	body := fmt.Sprintf("Hello %s,\n\nPlease confirm your email address by opening the link below:\n%s\n\nThe zerofiltre team",
		p.FullName, h.link("/auth/verify", p.Token))
	return h.send(ctx, t.Type(), p, "Confirm your zerofiltre account", body)
}

func (h *Handlers) HandlePasswordResetEmail(ctx context.Context, t *asynq.Task) error {
	p, err := tasks.ParseEmailPayload(t)
	if err != nil {
		return err
	}
	body := fmt.Sprintf("Hello %s,\n\nA password reset was requested for your account. Choose a new password here:\n%s\n\nIgnore this message if you did not ask for it.",
		p.FullName, h.link("/auth/password/reset", p.Token))
	return h.send(ctx, t.Type(), p, "Reset your zerofiltre password", body)
}

func (h *Handlers) HandleTipRefresh(ctx context.Context, t *asynq.Task) error {
	tip, err := h.tips.Refresh(ctx)
	if err != nil {
		return fmt.Errorf("refresh tip: %w", err)
	}
	h.log.WithField("date", tip.Date).Info("daily tip refreshed")
	return nil
}

func (h *Handlers) link(path, token string) string {
	return h.baseURL + path + "?token=" + url.QueryEscape(token)
}

func (h *Handlers) send(ctx context.Context, typ string, p tasks.EmailPayload, subject, body string) error {
	if p.Email == "" {
		return fmt.Errorf("%s: empty recipient: %w", typ, asynq.SkipRetry)
	}
	if err := h.mailer.Send(ctx, p.Email, subject, body); err != nil {
		return err
	}
	h.log.WithFields(logrus.Fields{"task": typ, "user_id": p.UserID}).Info("email sent")
	return nil
}

// NewServer builds the asynq server with weighted critical/default/low queues.
func NewServer(redis asynq.RedisConnOpt, concurrency int, log logrus.FieldLogger) *asynq.Server {
	if concurrency <= 0 {
		concurrency = 10
	}
	return asynq.NewServer(redis, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			tasks.QueueCritical: 6,
			tasks.QueueDefault:  3,
			tasks.QueueLow:      1,
		},
		Logger:          log,
		ShutdownTimeout: 10 * time.Second,
		ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, t *asynq.Task, err error) {
			retried, _ := asynq.GetRetryCount(ctx)
			maxRetry, _ := asynq.GetMaxRetry(ctx)
			log.WithFields(logrus.Fields{
				"task":      t.Type(),
				"retried":   retried,
				"max_retry": maxRetry,
			}).WithError(err).Error("task failed")
		}),
	})
}

// NewScheduler registers the periodic tip refresh under cronSpec, evaluated in loc.
func NewScheduler(redis asynq.RedisConnOpt, cronSpec string, loc *time.Location, log logrus.FieldLogger) (*asynq.Scheduler, error) {
	s := asynq.NewScheduler(redis, &asynq.SchedulerOpts{
		Location: loc,
		Logger:   log,
		EnqueueErrorHandler: func(t *asynq.Task, _ []asynq.Option, err error) {
			log.WithField("task", t.Type()).WithError(err).Error("scheduled enqueue failed")
		},
	})
	if _, err := s.Register(cronSpec, tasks.NewTipRefreshTask()); err != nil {
		return nil, fmt.Errorf("register %s: %w", tasks.TypeTipRefresh, err)
	}
	return s, nil
}
