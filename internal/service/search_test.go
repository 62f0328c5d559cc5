package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zero-filtre/zerofiltre-blog-backend-sub004/internal/cache"
	"github.com/zero-filtre/zerofiltre-blog-backend-sub004/internal/model"
	repoMocks "github.com/zero-filtre/zerofiltre-blog-backend-sub004/internal/repository/mocks"
)

type brokenCache struct{}

func (brokenCache) Get(context.Context, string) ([]byte, error) {
	return nil, errors.New("connection refused")
}
func (brokenCache) Set(context.Context, string, []byte, time.Duration) error {
	return errors.New("connection refused")
}
func (brokenCache) Delete(context.Context, string) error { return nil }

type searchMocks struct {
	articles *repoMocks.MockArticleRepository
	courses  *repoMocks.MockCourseRepository
	tags     *repoMocks.MockTagRepository
}

func newSearchMocks() searchMocks {
	return searchMocks{
		articles: new(repoMocks.MockArticleRepository),
		courses:  new(repoMocks.MockCourseRepository),
		tags:     new(repoMocks.MockTagRepository),
	}
}

func (m searchMocks) expect(ctx context.Context, q string) {
	m.articles.On("Search", ctx, q, 10).Return([]model.Article{{ID: "a-1", Title: "Golang tips"}}, nil)
	m.courses.On("Search", ctx, q, 10).Return(nil, nil)
	m.tags.On("Search", ctx, q, 10).Return([]model.Tag{{ID: "t-1", Name: "golang"}}, nil)
}

func TestSearchService_Search(t *testing.T) {
	ctx := context.Background()

	t.Run("caches results in redis", func(t *testing.T) {
		mr := miniredis.RunT(t)
		client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
		m := newSearchMocks()
		m.expect(ctx, "golang")
		svc := NewSearchService(m.articles, m.courses, m.tags, cache.NewRedisCache(client, "zf:"), time.Minute, quietLogger())

		first, err := svc.Search(ctx, "  GoLang ")
		require.NoError(t, err)
		assert.Len(t, first.Articles, 1)
		assert.NotNil(t, first.Courses)
		assert.True(t, mr.Exists("zf:search:golang"))

		second, err := svc.Search(ctx, "golang")
		require.NoError(t, err)
		assert.Equal(t, first.Articles[0].Title, second.Articles[0].Title)
		m.articles.AssertNumberOfCalls(t, "Search", 1)

		mr.FastForward(2 * time.Minute)
		_, err = svc.Search(ctx, "golang")
		require.NoError(t, err)
		m.articles.AssertNumberOfCalls(t, "Search", 2)
	})

	t.Run("cache failures are bypassed", func(t *testing.T) {
		m := newSearchMocks()
		m.expect(ctx, "golang")
		svc := NewSearchService(m.articles, m.courses, m.tags, brokenCache{}, time.Minute, quietLogger())

		res, err := svc.Search(ctx, "golang")
		require.NoError(t, err)
		assert.Len(t, res.Tags, 1)
	})

	t.Run("short query", func(t *testing.T) {
		m := newSearchMocks()
		svc := NewSearchService(m.articles, m.courses, m.tags, cache.NewMemoryCache(), time.Minute, quietLogger())
		_, err := svc.Search(ctx, " go ")
		assert.ErrorIs(t, err, ErrInvalidInput)
	})
}
