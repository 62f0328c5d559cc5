package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/zero-filtre/zerofiltre-blog-backend-sub004/internal/model"
	"github.com/zero-filtre/zerofiltre-blog-backend-sub004/internal/repository"
)

type MockTagRepository struct {
	mock.Mock
}

func (m *MockTagRepository) Create(ctx context.Context, t *model.Tag) error {
	return m.Called(ctx, t).Error(0)
}

func (m *MockTagRepository) FindByID(ctx context.Context, id string) (*model.Tag, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Tag), args.Error(1)
}

func (m *MockTagRepository) FindByIDs(ctx context.Context, ids []string) ([]model.Tag, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Tag), args.Error(1)
}

func (m *MockTagRepository) List(ctx context.Context) ([]model.Tag, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Tag), args.Error(1)
}

func (m *MockTagRepository) Search(ctx context.Context, query string, limit int) ([]model.Tag, error) {
	args := m.Called(ctx, query, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Tag), args.Error(1)
}

type MockArticleRepository struct {
	mock.Mock
}

func (m *MockArticleRepository) Create(ctx context.Context, a *model.Article) error {
	return m.Called(ctx, a).Error(0)
}

func (m *MockArticleRepository) Update(ctx context.Context, a *model.Article) error {
	return m.Called(ctx, a).Error(0)
}

func (m *MockArticleRepository) FindByID(ctx context.Context, id string) (*model.Article, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Article), args.Error(1)
}

func (m *MockArticleRepository) FindBySlug(ctx context.Context, slug string) (*model.Article, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Article), args.Error(1)
}

func (m *MockArticleRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	args := m.Called(ctx, slug)
	return args.Bool(0), args.Error(1)
}

func (m *MockArticleRepository) List(ctx context.Context, f repository.ContentFilter, pq repository.PageQuery) (*repository.PageResult[model.Article], error) {
	args := m.Called(ctx, f, pq)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.PageResult[model.Article]), args.Error(1)
}

func (m *MockArticleRepository) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockArticleRepository) IncrementViews(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockArticleRepository) Search(ctx context.Context, query string, limit int) ([]model.Article, error) {
	args := m.Called(ctx, query, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Article), args.Error(1)
}

type MockCourseRepository struct {
	mock.Mock
}

func (m *MockCourseRepository) Create(ctx context.Context, c *model.Course) error {
	return m.Called(ctx, c).Error(0)
}

func (m *MockCourseRepository) Update(ctx context.Context, c *model.Course) error {
	return m.Called(ctx, c).Error(0)
}

func (m *MockCourseRepository) FindByID(ctx context.Context, id string) (*model.Course, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Course), args.Error(1)
}

func (m *MockCourseRepository) FindBySlug(ctx context.Context, slug string) (*model.Course, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Course), args.Error(1)
}

func (m *MockCourseRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	args := m.Called(ctx, slug)
	return args.Bool(0), args.Error(1)
}

func (m *MockCourseRepository) List(ctx context.Context, f repository.ContentFilter, pq repository.PageQuery) (*repository.PageResult[model.Course], error) {
	args := m.Called(ctx, f, pq)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.PageResult[model.Course]), args.Error(1)
}

func (m *MockCourseRepository) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockCourseRepository) IncrementEnrolled(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockCourseRepository) Search(ctx context.Context, query string, limit int) ([]model.Course, error) {
	args := m.Called(ctx, query, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Course), args.Error(1)
}

type MockReactionRepository struct {
	mock.Mock
}

func (m *MockReactionRepository) Create(ctx context.Context, r *model.Reaction) error {
	return m.Called(ctx, r).Error(0)
}

func (m *MockReactionRepository) Delete(ctx context.Context, target model.ReactionTarget, authorID string, action model.ReactionAction) error {
	return m.Called(ctx, target, authorID, action).Error(0)
}

func (m *MockReactionRepository) Find(ctx context.Context, target model.ReactionTarget, authorID string, action model.ReactionAction) (*model.Reaction, error) {
	args := m.Called(ctx, target, authorID, action)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Reaction), args.Error(1)
}

func (m *MockReactionRepository) ListByTarget(ctx context.Context, target model.ReactionTarget) ([]model.Reaction, error) {
	args := m.Called(ctx, target)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Reaction), args.Error(1)
}

func (m *MockReactionRepository) CountByTarget(ctx context.Context, target model.ReactionTarget) ([]repository.ReactionCount, error) {
	args := m.Called(ctx, target)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]repository.ReactionCount), args.Error(1)
}
