package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/gosimple/slug"

	"github.com/zero-filtre/zerofiltre-blog-backend-sub004/internal/auth"
	"github.com/zero-filtre/zerofiltre-blog-backend-sub004/internal/model"
	"github.com/zero-filtre/zerofiltre-blog-backend-sub004/internal/repository"
)

const slugAttempts = 5

// ContentQuery filters article and course listings.
type ContentQuery struct {
	Status   model.Status
	TagID    string
	AuthorID string
	Sort     repository.SortOrder
	Limit    int
	Offset   int
}

// uniqueSlug derives a slug from title, appending a short random suffix while taken.
func uniqueSlug(ctx context.Context, title string, exists func(context.Context, string) (bool, error)) (string, error) {
	base := slug.Make(title)
	if base == "" {
		return "", invalidf("title must contain letters or digits")
	}
	candidate := base
	for i := 0; i < slugAttempts; i++ {
		taken, err := exists(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
		candidate = base + "-" + strings.SplitN(uuid.NewString(), "-", 2)[0]
	}
	return "", fmt.Errorf("%w: no free slug for %q", ErrConflict, base)
}

func canEdit(actor auth.Principal, authorID string) bool {
	return actor.Authenticated() && (actor.IsAdmin() || actor.UserID == authorID)
}

// contentFilter applies listing visibility: anonymous callers and plain users only see
// published content, except their own when filtering on themselves.
func contentFilter(actor auth.Principal, q ContentQuery) (repository.ContentFilter, error) {
	f := repository.ContentFilter{
		Status:   q.Status,
		TagID:    q.TagID,
		AuthorID: q.AuthorID,
		Sort:     q.Sort,
	}
	switch f.Sort {
	case "":
		f.Sort = repository.SortRecent
	case repository.SortRecent, repository.SortPopular:
	default:
		return f, invalidf("unknown sort %q", q.Sort)
	}
	if f.Status == "" {
		f.Status = model.StatusPublished
	}
	if !f.Status.Valid() {
		return f, invalidf("unknown status %q", q.Status)
	}
	if f.Status == model.StatusPublished || actor.IsAdmin() {
		return f, nil
	}
	if !actor.Authenticated() {
		return f, ErrUnauthorized
	}
	if f.AuthorID != actor.UserID {
		return f, ErrForbidden
	}
	return f, nil
}

func resolveTags(ctx context.Context, repo repository.TagRepository, ids []string) ([]model.Tag, error) {
	seen := make(map[string]struct{}, len(ids))
	uniq := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok || id == "" {
			continue
		}
		seen[id] = struct{}{}
		uniq = append(uniq, id)
	}
	tags, err := repo.FindByIDs(ctx, uniq)
	if err != nil {
		return nil, err
	}
	if len(tags) != len(uniq) {
		return nil, invalidf("unknown tag in %v", uniq)
	}
	return tags, nil
}

func trimmed(p *string) *string {
	if p == nil {
		return nil
	}
	s := strings.TrimSpace(*p)
	return &s
}
