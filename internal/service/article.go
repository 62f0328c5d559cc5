package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/zero-filtre/zerofiltre-blog-backend-sub004/internal/auth"
	"github.com/zero-filtre/zerofiltre-blog-backend-sub004/internal/model"
	"github.com/zero-filtre/zerofiltre-blog-backend-sub004/internal/repository"
)

// ArticlePatch lists the editable fields of an article. Nil fields are left untouched.
type ArticlePatch struct {
	Title     *string   `json:"title" validate:"omitempty,min=1,max=255"`
	Summary   *string   `json:"summary" validate:"omitempty,max=1000"`
	Content   *string   `json:"content"`
	Thumbnail *string   `json:"thumbnail" validate:"omitempty,url"`
	TagIDs    *[]string `json:"tags"`
	Premium   *bool     `json:"premium"`
}

type ArticleService interface {
	// Init creates an empty draft owned by the caller.
	Init(ctx context.Context, actor auth.Principal, title string) (*model.Article, error)
	Save(ctx context.Context, actor auth.Principal, id string, patch ArticlePatch) (*model.Article, error)
	// Publish publishes directly for admins and submits for review otherwise.
	Publish(ctx context.Context, actor auth.Principal, id string) (*model.Article, error)
	// Get resolves ref as an id, then as a slug. Reading a published article counts a view.
	Get(ctx context.Context, actor auth.Principal, ref string) (*model.Article, error)
	List(ctx context.Context, actor auth.Principal, q ContentQuery) (*Page[model.Article], error)
	Delete(ctx context.Context, actor auth.Principal, id string) error
}

type articleService struct {
	articles repository.ArticleRepository
	tags     repository.TagRepository
	notifier NotificationService
	log      logrus.FieldLogger
}

func NewArticleService(articles repository.ArticleRepository, tags repository.TagRepository, notifier NotificationService, log logrus.FieldLogger) ArticleService {
	return &articleService{
		articles: articles,
		tags:     tags,
		notifier: notifier,
		log:      log.WithField("component", "articles"),
	}
}

func (s *articleService) Init(ctx context.Context, actor auth.Principal, title string) (*model.Article, error) {
	if !actor.Authenticated() {
		return nil, ErrUnauthorized
	}
	title = strings.TrimSpace(title)
	if title == "" || len(title) > 255 {
		return nil, invalidf("title must be between 1 and 255 characters")
	}
	sl, err := uniqueSlug(ctx, title, s.articles.SlugExists)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	a := &model.Article{
		ID:        uuid.NewString(),
		Title:     title,
		Slug:      sl,
		Status:    model.StatusDraft,
		AuthorID:  actor.UserID,
		Tags:      []model.Tag{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.articles.Create(ctx, a); err != nil {
		return nil, repoErr(err, ErrNotFound)
	}
	return a, nil
}

func (s *articleService) editable(ctx context.Context, actor auth.Principal, id string) (*model.Article, error) {
	if !actor.Authenticated() {
		return nil, ErrUnauthorized
	}
	if id == "" {
		return nil, ErrIDRequired
	}
	a, err := s.articles.FindByID(ctx, id)
	if err != nil {
		return nil, repoErr(err, ErrNotFound)
	}
	if !canEdit(actor, a.AuthorID) {
		return nil, ErrForbidden
	}
	return a, nil
}

func (s *articleService) Save(ctx context.Context, actor auth.Principal, id string, patch ArticlePatch) (*model.Article, error) {
	patch.Title = trimmed(patch.Title)
	if err := validate(patch); err != nil {
		return nil, err
	}
	a, err := s.editable(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if patch.Title != nil {
		if *patch.Title == "" {
			return nil, invalidf("title is required")
		}
		a.Title = *patch.Title
	}
	if patch.Summary != nil {
		a.Summary = *patch.Summary
	}
	if patch.Content != nil {
		a.Content = *patch.Content
	}
	if patch.Thumbnail != nil {
		a.ThumbnailURL = *patch.Thumbnail
	}
	if patch.Premium != nil {
		a.Premium = *patch.Premium
	}
	if patch.TagIDs != nil {
		tags, err := resolveTags(ctx, s.tags, *patch.TagIDs)
		if err != nil {
			return nil, err
		}
		a.Tags = tags
	}
	a.UpdatedAt = time.Now().UTC()
	if err := s.articles.Update(ctx, a); err != nil {
		return nil, repoErr(err, ErrNotFound)
	}
	return a, nil
}

func (s *articleService) Publish(ctx context.Context, actor auth.Principal, id string) (*model.Article, error) {
	a, err := s.editable(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if a.Status == model.StatusPublished {
		return a, nil
	}
	now := time.Now().UTC()
	if actor.IsAdmin() {
		a.Status = model.StatusPublished
		if a.PublishedAt == nil {
			a.PublishedAt = &now
		}
	} else {
		a.Status = model.StatusInReview
	}
	a.UpdatedAt = now
	if err := s.articles.Update(ctx, a); err != nil {
		return nil, repoErr(err, ErrNotFound)
	}
	if a.Status == model.StatusPublished {
		s.notifier.Notify(ctx, NotificationInput{
			UserID: a.AuthorID,
			Type:   model.NotifyArticlePublished,
			Title:  "Your article is published",
			Body:   a.Title,
			Link:   "/articles/" + a.Slug,
		})
	}
	return a, nil
}

func (s *articleService) Get(ctx context.Context, actor auth.Principal, ref string) (*model.Article, error) {
	if ref == "" {
		return nil, ErrIDRequired
	}
	a, err := s.articles.FindByID(ctx, ref)
	if errors.Is(err, repository.ErrNotFound) {
		a, err = s.articles.FindBySlug(ctx, ref)
	}
	if err != nil {
		return nil, repoErr(err, ErrNotFound)
	}
	if a.Status != model.StatusPublished {
		if !canEdit(actor, a.AuthorID) {
			return nil, ErrNotFound
		}
		return a, nil
	}
	if err := s.articles.IncrementViews(ctx, a.ID); err != nil {
		s.log.WithField("article_id", a.ID).WithError(err).Warn("view not counted")
	} else {
		a.ViewsCount++
	}
	return a, nil
}

func (s *articleService) List(ctx context.Context, actor auth.Principal, q ContentQuery) (*Page[model.Article], error) {
	f, err := contentFilter(actor, q)
	if err != nil {
		return nil, err
	}
	pq := pageQuery(q.Limit, q.Offset)
	res, err := s.articles.List(ctx, f, pq)
	if err != nil {
		return nil, err
	}
	return toPage(res, pq), nil
}

func (s *articleService) Delete(ctx context.Context, actor auth.Principal, id string) error {
	if _, err := s.editable(ctx, actor, id); err != nil {
		return err
	}
	return repoErr(s.articles.Delete(ctx, id), ErrNotFound)
}
