package repository

import (
	"context"
	"time"

	"github.com/zero-filtre/zerofiltre-blog-backend-sub004/internal/model"
)

// UserRepository persists accounts.
type UserRepository interface {
	Create(ctx context.Context, u *model.User) error
	Update(ctx context.Context, u *model.User) error
	FindByID(ctx context.Context, id string) (*model.User, error)
	// FindByEmail matches case-insensitively.
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindBySocial(ctx context.Context, provider model.LoginProvider, socialID string) (*model.User, error)
	List(ctx context.Context, pq PageQuery) (*PageResult[model.User], error)
	Delete(ctx context.Context, id string) error
}

// VerificationTokenRepository persists single-use tokens.
type VerificationTokenRepository interface {
	Create(ctx context.Context, t *model.VerificationToken) error
	FindByToken(ctx context.Context, token string) (*model.VerificationToken, error)
	MarkUsed(ctx context.Context, id string, at time.Time) error
	DeleteByUser(ctx context.Context, userID string) error
}
