package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/zero-filtre/zerofiltre-blog-backend-sub004/internal/auth"
	"github.com/zero-filtre/zerofiltre-blog-backend-sub004/internal/model"
	"github.com/zero-filtre/zerofiltre-blog-backend-sub004/internal/repository"
)

// ReactionSummary lists the reactions on a target with per-action totals.
type ReactionSummary struct {
	Reactions []model.Reaction             `json:"reactions"`
	Counts    []repository.ReactionCount `json:"counts"`
}

type ReactionService interface {
	// Add is idempotent per (target, author, action).
	Add(ctx context.Context, actor auth.Principal, target model.ReactionTarget, action model.ReactionAction) (*model.Reaction, error)
	// Remove succeeds when the reaction is already gone.
	Remove(ctx context.Context, actor auth.Principal, target model.ReactionTarget, action model.ReactionAction) error
	List(ctx context.Context, target model.ReactionTarget) (*ReactionSummary, error)
}

type reactionService struct {
	reactions repository.ReactionRepository
	articles  repository.ArticleRepository
	courses   repository.CourseRepository
	notifier  NotificationService
}

func NewReactionService(reactions repository.ReactionRepository, articles repository.ArticleRepository, courses repository.CourseRepository, notifier NotificationService) ReactionService {
	return &reactionService{reactions: reactions, articles: articles, courses: courses, notifier: notifier}
}

type reactionTarget struct {
	authorID string
	title    string
	link     string
}

// published loads the target and requires it to be published.
func (s *reactionService) published(ctx context.Context, target model.ReactionTarget) (*reactionTarget, error) {
	if target.ID == "" {
		return nil, ErrIDRequired
	}
	switch target.Kind {
	case model.TargetArticle:
		a, err := s.articles.FindByID(ctx, target.ID)
		if err != nil {
			return nil, repoErr(err, ErrNotFound)
		}
		if a.Status != model.StatusPublished {
			return nil, ErrNotFound
		}
		return &reactionTarget{authorID: a.AuthorID, title: a.Title, link: "/articles/" + a.Slug}, nil
	case model.TargetCourse:
		c, err := s.courses.FindByID(ctx, target.ID)
		if err != nil {
			return nil, repoErr(err, ErrNotFound)
		}
		if c.Status != model.StatusPublished {
			return nil, ErrNotFound
		}
		return &reactionTarget{authorID: c.AuthorID, title: c.Title, link: "/courses/" + c.Slug}, nil
	}
	return nil, invalidf("unknown reaction target %q", target.Kind)
}

func (s *reactionService) Add(ctx context.Context, actor auth.Principal, target model.ReactionTarget, action model.ReactionAction) (*model.Reaction, error) {
	if !actor.Authenticated() {
		return nil, ErrUnauthorized
	}
	if !action.Valid() {
		return nil, invalidf("unknown reaction %q", action)
	}
	t, err := s.published(ctx, target)
	if err != nil {
		return nil, err
	}
	existing, err := s.reactions.Find(ctx, target, actor.UserID, action)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	r := &model.Reaction{
		ID:        uuid.NewString(),
		AuthorID:  actor.UserID,
		Action:    action,
		CreatedAt: time.Now().UTC(),
	}
	if target.Kind == model.TargetArticle {
		r.ArticleID = &target.ID
	} else {
		r.CourseID = &target.ID
	}
	if err := s.reactions.Create(ctx, r); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return s.reactions.Find(ctx, target, actor.UserID, action)
		}
		return nil, err
	}
	if t.authorID != actor.UserID {
		s.notifier.Notify(ctx, NotificationInput{
			UserID: t.authorID,
			Type:   model.NotifyReaction,
			Title:  "New reaction",
			Body:   fmt.Sprintf("%s on %q", action, t.title),
			Link:   t.link,
		})
	}
	return r, nil
}

func (s *reactionService) Remove(ctx context.Context, actor auth.Principal, target model.ReactionTarget, action model.ReactionAction) error {
	if !actor.Authenticated() {
		return ErrUnauthorized
	}
	if !action.Valid() {
		return invalidf("unknown reaction %q", action)
	}
	err := s.reactions.Delete(ctx, target, actor.UserID, action)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return err
	}
	return nil
}

func (s *reactionService) List(ctx context.Context, target model.ReactionTarget) (*ReactionSummary, error) {
	if _, err := s.published(ctx, target); err != nil {
		return nil, err
	}
	rs, err := s.reactions.ListByTarget(ctx, target)
	if err != nil {
		return nil, err
	}
	counts, err := s.reactions.CountByTarget(ctx, target)
	if err != nil {
		return nil, err
	}
	if rs == nil {
		rs = []model.Reaction{}
	}
	if counts == nil {
		counts = []repository.ReactionCount{}
	}
	return &ReactionSummary{Reactions: rs, Counts: counts}, nil
}
