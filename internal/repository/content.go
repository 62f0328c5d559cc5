package repository

import (
	"context"

	"github.com/zero-filtre/zerofiltre-blog-backend-sub004/internal/model"
)

// SortOrder selects list ordering for articles and courses.
type SortOrder string

const (
	SortRecent  SortOrder = "recent"
	SortPopular SortOrder = "popular"
)

// ContentFilter narrows article and course listings. Empty fields do not filter.
type ContentFilter struct {
	Status   model.Status
	TagID    string
	AuthorID string
	Sort     SortOrder
}

type TagRepository interface {
	Create(ctx context.Context, t *model.Tag) error
	FindByID(ctx context.Context, id string) (*model.Tag, error)
	FindByIDs(ctx context.Context, ids []string) ([]model.Tag, error)
	List(ctx context.Context) ([]model.Tag, error)
	Search(ctx context.Context, query string, limit int) ([]model.Tag, error)
}

type ArticleRepository interface {
	Create(ctx context.Context, a *model.Article) error
	// Update saves all columns and replaces the tag set.
	Update(ctx context.Context, a *model.Article) error
	FindByID(ctx context.Context, id string) (*model.Article, error)
	FindBySlug(ctx context.Context, slug string) (*model.Article, error)
	SlugExists(ctx context.Context, slug string) (bool, error)
	List(ctx context.Context, f ContentFilter, pq PageQuery) (*PageResult[model.Article], error)
	Delete(ctx context.Context, id string) error
	IncrementViews(ctx context.Context, id string) error
	// Search matches published articles on title and summary.
	Search(ctx context.Context, query string, limit int) ([]model.Article, error)
}

type CourseRepository interface {
	Create(ctx context.Context, c *model.Course) error
	Update(ctx context.Context, c *model.Course) error
	FindByID(ctx context.Context, id string) (*model.Course, error)
	FindBySlug(ctx context.Context, slug string) (*model.Course, error)
	SlugExists(ctx context.Context, slug string) (bool, error)
	List(ctx context.Context, f ContentFilter, pq PageQuery) (*PageResult[model.Course], error)
	Delete(ctx context.Context, id string) error
	IncrementEnrolled(ctx context.Context, id string) error
	Search(ctx context.Context, query string, limit int) ([]model.Course, error)
}

// ReactionCount is the number of reactions of one kind on a target.
type ReactionCount struct {
	Action model.ReactionAction `json:"action"`
	Count  int64                `json:"count"`
}

type ReactionRepository interface {
	Create(ctx context.Context, r *model.Reaction) error
	Delete(ctx context.Context, target model.ReactionTarget, authorID string, action model.ReactionAction) error
	Find(ctx context.Context, target model.ReactionTarget, authorID string, action model.ReactionAction) (*model.Reaction, error)
	ListByTarget(ctx context.Context, target model.ReactionTarget) ([]model.Reaction, error)
	CountByTarget(ctx context.Context, target model.ReactionTarget) ([]ReactionCount, error)
}
