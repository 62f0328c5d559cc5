package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/sirupsen/logrus"

	"github.com/zero-filtre/zerofiltre-blog-backend-sub004/internal/cache"
	"github.com/zero-filtre/zerofiltre-blog-backend-sub004/internal/model"
	"github.com/zero-filtre/zerofiltre-blog-backend-sub004/internal/repository"
)

const (
	minSearchLength = 3
	searchLimit     = 10
)

// SearchResult groups matches per kind of content.
type SearchResult struct {
	Query    string          `json:"query"`
	Articles []model.Article `json:"articles"`
	Courses  []model.Course  `json:"courses"`
	Tags     []model.Tag     `json:"tags"`
}

type SearchService interface {
	Search(ctx context.Context, query string) (*SearchResult, error)
}

type searchService struct {
	articles repository.ArticleRepository
	courses  repository.CourseRepository
	tags     repository.TagRepository
	cache    cache.Cache
	ttl      time.Duration
	log      logrus.FieldLogger
}

func NewSearchService(
	articles repository.ArticleRepository,
	courses repository.CourseRepository,
	tags repository.TagRepository,
	c cache.Cache,
	ttl time.Duration,
	log logrus.FieldLogger,
) SearchService {
	return &searchService{
		articles: articles,
		courses:  courses,
		tags:     tags,
		cache:    c,
		ttl:      ttl,
		log:      log.WithField("component", "search"),
	}
}

func (s *searchService) Search(ctx context.Context, query string) (*SearchResult, error) {
	q := strings.ToLower(strings.TrimSpace(query))
	if utf8.RuneCountInString(q) < minSearchLength {
		return nil, invalidf("query must be at least %d characters", minSearchLength)
	}
	key := "search:" + q
	if res, ok := s.fromCache(ctx, key); ok {
		return res, nil
	}

	articles, err := s.articles.Search(ctx, q, searchLimit)
	if err != nil {
		return nil, err
	}
	courses, err := s.courses.Search(ctx, q, searchLimit)
	if err != nil {
		return nil, err
	}
	tags, err := s.tags.Search(ctx, q, searchLimit)
	if err != nil {
		return nil, err
	}
	res := &SearchResult{Query: q, Articles: articles, Courses: courses, Tags: tags}
	if res.Articles == nil {
		res.Articles = []model.Article{}
	}
	if res.Courses == nil {
		res.Courses = []model.Course{}
	}
	if res.Tags == nil {
		res.Tags = []model.Tag{}
	}
	s.toCache(ctx, key, res)
	return res, nil
}

func (s *searchService) fromCache(ctx context.Context, key string) (*SearchResult, bool) {
	b, err := s.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, cache.ErrMiss) {
			s.log.WithField("key", key).WithError(err).Warn("search cache unavailable")
		}
		return nil, false
	}
	var res SearchResult
	if err := json.Unmarshal(b, &res); err != nil {
		s.log.WithField("key", key).WithError(err).Warn("corrupt search cache entry")
		return nil, false
	}
	return &res, true
}

func (s *searchService) toCache(ctx context.Context, key string, res *SearchResult) {
	b, err := json.Marshal(res)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, b, s.ttl); err != nil {
		s.log.WithField("key", key).WithError(err).Warn("search cache unavailable")
	}
}
