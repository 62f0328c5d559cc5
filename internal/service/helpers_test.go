package service

import (
	"context"
	"io"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/mock"

	"github.com/zero-filtre/zerofiltre-blog-backend-sub004/internal/auth"
	"github.com/zero-filtre/zerofiltre-blog-backend-sub004/internal/model"
)

var (
	anonymous = auth.Principal{}
	alice     = auth.Principal{UserID: "user-alice", Email: "alice@example.com", Role: model.RoleUser}
	bob       = auth.Principal{UserID: "user-bob", Email: "bob@example.com", Role: model.RoleUser}
	admin     = auth.Principal{UserID: "user-admin", Email: "admin@example.com", Role: model.RoleAdmin}
)

func quietLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// notifierMock records notifications sent by the service under test.
type notifierMock struct {
	mock.Mock
}

func (m *notifierMock) Notify(ctx context.Context, in NotificationInput) {
	m.Called(ctx, in)
}

func (m *notifierMock) List(ctx context.Context, actor auth.Principal, unreadOnly bool, limit, offset int) (*Page[model.Notification], error) {
	args := m.Called(ctx, actor, unreadOnly, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Page[model.Notification]), args.Error(1)
}

func (m *notifierMock) MarkRead(ctx context.Context, actor auth.Principal, id string) error {
	return m.Called(ctx, actor, id).Error(0)
}

func (m *notifierMock) MarkAllRead(ctx context.Context, actor auth.Principal) error {
	return m.Called(ctx, actor).Error(0)
}

func (m *notifierMock) UnreadCount(ctx context.Context, actor auth.Principal) (int64, error) {
	args := m.Called(ctx, actor)
	return args.Get(0).(int64), args.Error(1)
}

func strPtr(s string) *string { return &s }
