package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/zero-filtre/zerofiltre-blog-backend-sub004/internal/auth"
	"github.com/zero-filtre/zerofiltre-blog-backend-sub004/internal/model"
	"github.com/zero-filtre/zerofiltre-blog-backend-sub004/internal/repository"
)

// NotificationInput is one message for one user.
type NotificationInput struct {
	UserID string
	Type   model.NotificationType
	Title  string
	Body   string
	Link   string
}

// NotificationService stores in-app notifications and lets users read them.
type NotificationService interface {
	// Notify is best effort: failures are logged and never returned.
	Notify(ctx context.Context, in NotificationInput)
	List(ctx context.Context, actor auth.Principal, unreadOnly bool, limit, offset int) (*Page[model.Notification], error)
	MarkRead(ctx context.Context, actor auth.Principal, id string) error
	MarkAllRead(ctx context.Context, actor auth.Principal) error
	UnreadCount(ctx context.Context, actor auth.Principal) (int64, error)
}

type notificationService struct {
	repo repository.NotificationRepository
	log  logrus.FieldLogger
}

func NewNotificationService(repo repository.NotificationRepository, log logrus.FieldLogger) NotificationService {
	return &notificationService{repo: repo, log: log.WithField("component", "notifications")}
}

func (s *notificationService) Notify(ctx context.Context, in NotificationInput) {
	if in.UserID == "" {
		return
	}
	n := &model.Notification{
		ID:        uuid.NewString(),
		UserID:    in.UserID,
		Type:      in.Type,
		Title:     in.Title,
		Body:      in.Body,
		Link:      in.Link,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, n); err != nil {
		s.log.WithFields(logrus.Fields{
			"user_id": in.UserID,
			"type":    in.Type,
		}).WithError(err).Warn("notification not stored")
	}
}

func (s *notificationService) List(ctx context.Context, actor auth.Principal, unreadOnly bool, limit, offset int) (*Page[model.Notification], error) {
	if !actor.Authenticated() {
		return nil, ErrUnauthorized
	}
	pq := pageQuery(limit, offset)
	res, err := s.repo.ListByUser(ctx, actor.UserID, unreadOnly, pq)
	if err != nil {
		return nil, err
	}
	return toPage(res, pq), nil
}

func (s *notificationService) MarkRead(ctx context.Context, actor auth.Principal, id string) error {
	if !actor.Authenticated() {
		return ErrUnauthorized
	}
	if id == "" {
		return ErrIDRequired
	}
	return repoErr(s.repo.MarkRead(ctx, actor.UserID, id), ErrNotFound)
}

func (s *notificationService) MarkAllRead(ctx context.Context, actor auth.Principal) error {
	if !actor.Authenticated() {
		return ErrUnauthorized
	}
	return s.repo.MarkAllRead(ctx, actor.UserID)
}

func (s *notificationService) UnreadCount(ctx context.Context, actor auth.Principal) (int64, error) {
	if !actor.Authenticated() {
		return 0, ErrUnauthorized
	}
	return s.repo.CountUnread(ctx, actor.UserID)
}
