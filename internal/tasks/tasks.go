// Package tasks defines the background task types and how they are enqueued.
package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
)

const (
	TypeVerificationEmail  = "email:verification"
	TypePasswordResetEmail = "email:password_reset"
	TypeTipRefresh         = "tip:refresh"
)

const (
	QueueCritical = "critical"
	QueueDefault  = "default"
	QueueLow      = "low"
)

// EmailPayload carries what the worker needs to mail a tokenized link.
type EmailPayload struct {
	UserID   string `json:"user_id"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Token    string `json:"token"`
}

func NewVerificationEmailTask(p EmailPayload) (*asynq.Task, error) {
	return newEmailTask(TypeVerificationEmail, p)
}

func NewPasswordResetEmailTask(p EmailPayload) (*asynq.Task, error) {
	return newEmailTask(TypePasswordResetEmail, p)
}

func newEmailTask(typ string, p EmailPayload) (*asynq.Task, error) {
	b, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", typ, err)
	}
	return asynq.NewTask(typ, b, asynq.Queue(QueueCritical), asynq.MaxRetry(5), asynq.Timeout(30*time.Second)), nil
}

func NewTipRefreshTask() *asynq.Task {
	return asynq.NewTask(TypeTipRefresh, nil, asynq.Queue(QueueLow), asynq.MaxRetry(3), asynq.Timeout(time.Minute))
}

// ParseEmailPayload decodes an email task payload. Decoding errors are not retryable.
func ParseEmailPayload(t *asynq.Task) (EmailPayload, error) {
	var p EmailPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return p, fmt.Errorf("unmarshal %s payload: %v: %w", t.Type(), err, asynq.SkipRetry)
	}
	return p, nil
}

// Enqueuer hands tasks to the background worker.
type Enqueuer interface {
	Enqueue(ctx context.Context, t *asynq.Task) error
}

// AsynqEnqueuer submits tasks to Redis through an asynq client.
type AsynqEnqueuer struct {
	client *asynq.Client
}

func NewAsynqEnqueuer(client *asynq.Client) *AsynqEnqueuer {
	return &AsynqEnqueuer{client: client}
}

func (e *AsynqEnqueuer) Enqueue(ctx context.Context, t *asynq.Task) error {
	if _, err := e.client.EnqueueContext(ctx, t); err != nil {
		return fmt.Errorf("enqueue %s: %w", t.Type(), err)
	}
	return nil
}

// InlineEnqueuer runs tasks synchronously on the calling goroutine. It is used when
// no Redis is configured, so the same handlers serve both setups.
type InlineEnqueuer struct {
	handler asynq.Handler
}

func NewInlineEnqueuer(h asynq.Handler) *InlineEnqueuer {
	return &InlineEnqueuer{handler: h}
}

func (e *InlineEnqueuer) Enqueue(ctx context.Context, t *asynq.Task) error {
	if err := e.handler.ProcessTask(ctx, t); err != nil {
		return fmt.Errorf("run %s: %w", t.Type(), err)
	}
	return nil
}
