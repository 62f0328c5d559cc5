package postgres

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/zero-filtre/zerofiltre-blog-backend-sub004/internal/model"
	"github.com/zero-filtre/zerofiltre-blog-backend-sub004/internal/repository"
)

// UserPostgres is the gorm implementation of repository.UserRepository.
type UserPostgres struct {
	db *gorm.DB
}

func NewUserPostgres(db *gorm.DB) *UserPostgres {
	return &UserPostgres{db: db}
}

var _ repository.UserRepository = (*UserPostgres)(nil)

func (r *UserPostgres) Create(ctx context.Context, u *model.User) error {
	return mapErr(r.db.WithContext(ctx).Create(u).Error)
}

func (r *UserPostgres) Update(ctx context.Context, u *model.User) error {
	return mapErr(r.db.WithContext(ctx).Save(u).Error)
}

func (r *UserPostgres) FindByID(ctx context.Context, id string) (*model.User, error) {
	var u model.User
	if err := r.db.WithContext(ctx).First(&u, "id = ?", id).Error; err != nil {
		return nil, mapErr(err)
	}
	return &u, nil
}

func (r *UserPostgres) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	var u model.User
	err := r.db.WithContext(ctx).
		Where("LOWER(email) = ?", strings.ToLower(strings.TrimSpace(email))).
		First(&u).Error
	if err != nil {
		return nil, mapErr(err)
	}
	return &u, nil
}

func (r *UserPostgres) FindBySocial(ctx context.Context, provider model.LoginProvider, socialID string) (*model.User, error) {
	var u model.User
	err := r.db.WithContext(ctx).
		Where("login_provider = ? AND social_id = ?", provider, socialID).
		First(&u).Error
	if err != nil {
		return nil, mapErr(err)
	}
	return &u, nil
}

func (r *UserPostgres) List(ctx context.Context, pq repository.PageQuery) (*repository.PageResult[model.User], error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&model.User{}).Count(&total).Error; err != nil {
		return nil, err
	}
	items := make([]model.User, 0)
	err := r.db.WithContext(ctx).
		Order("created_at DESC, id DESC").
		Limit(pq.Limit).Offset(pq.Offset).
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return &repository.PageResult[model.User]{Items: items, Total: int(total)}, nil
}

func (r *UserPostgres) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&model.VerificationToken{}, "user_id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Delete(&model.Notification{}, "user_id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Delete(&model.CompanyUser{}, "user_id = ?", id).Error; err != nil {
			return err
		}
		return affected(tx.Delete(&model.User{}, "id = ?", id))
	})
}

// VerificationTokenPostgres is the gorm implementation of repository.VerificationTokenRepository.
type VerificationTokenPostgres struct {
	db *gorm.DB
}

func NewVerificationTokenPostgres(db *gorm.DB) *VerificationTokenPostgres {
	return &VerificationTokenPostgres{db: db}
}

var _ repository.VerificationTokenRepository = (*VerificationTokenPostgres)(nil)

func (r *VerificationTokenPostgres) Create(ctx context.Context, t *model.VerificationToken) error {
	return mapErr(r.db.WithContext(ctx).Create(t).Error)
}

func (r *VerificationTokenPostgres) FindByToken(ctx context.Context, token string) (*model.VerificationToken, error) {
	var t model.VerificationToken
	if err := r.db.WithContext(ctx).First(&t, "token = ?", token).Error; err != nil {
		return nil, mapErr(err)
	}
	return &t, nil
}

func (r *VerificationTokenPostgres) MarkUsed(ctx context.Context, id string, at time.Time) error {
	return affected(r.db.WithContext(ctx).
		Model(&model.VerificationToken{}).
		Where("id = ?", id).
		Update("used_at", at))
}

func (r *VerificationTokenPostgres) DeleteByUser(ctx context.Context, userID string) error {
	return r.db.WithContext(ctx).Delete(&model.VerificationToken{}, "user_id = ?", userID).Error
}
