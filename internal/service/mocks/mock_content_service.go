package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/zero-filtre/zerofiltre-blog-backend-sub004/internal/auth"
	"github.com/zero-filtre/zerofiltre-blog-backend-sub004/internal/model"
	"github.com/zero-filtre/zerofiltre-blog-backend-sub004/internal/service"
)

type MockArticleService struct {
	mock.Mock
}

var _ service.ArticleService = (*MockArticleService)(nil)

func (m *MockArticleService) Init(ctx context.Context, actor auth.Principal, title string) (*model.Article, error) {
	args := m.Called(ctx, actor, title)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Article), args.Error(1)
}

func (m *MockArticleService) Save(ctx context.Context, actor auth.Principal, id string, patch service.ArticlePatch) (*model.Article, error) {
	args := m.Called(ctx, actor, id, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Article), args.Error(1)
}

func (m *MockArticleService) Publish(ctx context.Context, actor auth.Principal, id string) (*model.Article, error) {
	args := m.Called(ctx, actor, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Article), args.Error(1)
}

func (m *MockArticleService) Get(ctx context.Context, actor auth.Principal, ref string) (*model.Article, error) {
	args := m.Called(ctx, actor, ref)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Article), args.Error(1)
}

func (m *MockArticleService) List(ctx context.Context, actor auth.Principal, q service.ContentQuery) (*service.Page[model.Article], error) {
	args := m.Called(ctx, actor, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Page[model.Article]), args.Error(1)
}

func (m *MockArticleService) Delete(ctx context.Context, actor auth.Principal, id string) error {
	return m.Called(ctx, actor, id).Error(0)
}

type MockCourseService struct {
	mock.Mock
}

var _ service.CourseService = (*MockCourseService)(nil)

func (m *MockCourseService) Init(ctx context.Context, actor auth.Principal, title string) (*model.Course, error) {
	args := m.Called(ctx, actor, title)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Course), args.Error(1)
}

func (m *MockCourseService) Save(ctx context.Context, actor auth.Principal, id string, patch service.CoursePatch) (*model.Course, error) {
	args := m.Called(ctx, actor, id, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Course), args.Error(1)
}

func (m *MockCourseService) Publish(ctx context.Context, actor auth.Principal, id string) (*model.Course, error) {
	args := m.Called(ctx, actor, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Course), args.Error(1)
}

func (m *MockCourseService) Get(ctx context.Context, actor auth.Principal, ref string) (*model.Course, error) {
	args := m.Called(ctx, actor, ref)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Course), args.Error(1)
}

func (m *MockCourseService) List(ctx context.Context, actor auth.Principal, q service.ContentQuery) (*service.Page[model.Course], error) {
	args := m.Called(ctx, actor, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Page[model.Course]), args.Error(1)
}

func (m *MockCourseService) Delete(ctx context.Context, actor auth.Principal, id string) error {
	return m.Called(ctx, actor, id).Error(0)
}

func (m *MockCourseService) Enroll(ctx context.Context, actor auth.Principal, courseID string) (*model.Purchase, error) {
	args := m.Called(ctx, actor, courseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Purchase), args.Error(1)
}

func (m *MockCourseService) Complete(ctx context.Context, actor auth.Principal, courseID string) (*model.Purchase, error) {
	args := m.Called(ctx, actor, courseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Purchase), args.Error(1)
}

func (m *MockCourseService) ListPurchases(ctx context.Context, actor auth.Principal) ([]model.Purchase, error) {
	args := m.Called(ctx, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Purchase), args.Error(1)
}
