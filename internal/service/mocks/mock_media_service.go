package mocks

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"

	"github.com/zero-filtre/zerofiltre-blog-backend-sub004/internal/auth"
	"github.com/zero-filtre/zerofiltre-blog-backend-sub004/internal/model"
	"github.com/zero-filtre/zerofiltre-blog-backend-sub004/internal/service"
)

type MockMediaService struct {
	mock.Mock
}

var _ service.MediaService = (*MockMediaService)(nil)

func (m *MockMediaService) Upload(ctx context.Context, actor auth.Principal, r io.Reader, filename, contentType string, size int64) (*model.Media, error) {
	args := m.Called(ctx, actor, r, filename, contentType, size)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Media), args.Error(1)
}

func (m *MockMediaService) List(ctx context.Context, limit, offset int) (*service.Page[model.Media], error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Page[model.Media]), args.Error(1)
}

func (m *MockMediaService) Get(ctx context.Context, id string) (*model.Media, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Media), args.Error(1)
}

func (m *MockMediaService) Delete(ctx context.Context, actor auth.Principal, id string) error {
	return m.Called(ctx, actor, id).Error(0)
}
