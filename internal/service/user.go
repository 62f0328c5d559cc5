package service

import (
	"context"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/zero-filtre/zerofiltre-blog-backend-sub004/internal/auth"
	"github.com/zero-filtre/zerofiltre-blog-backend-sub004/internal/model"
	"github.com/zero-filtre/zerofiltre-blog-backend-sub004/internal/repository"
)

type ProfileUpdate struct {
	FullName       *string `json:"full_name" validate:"omitempty,max=100"`
	Bio            *string `json:"bio" validate:"omitempty,max=1000"`
	Language       *string `json:"language" validate:"omitempty,min=2,max=8"`
	ProfilePicture *string `json:"profile_picture" validate:"omitempty,url"`
}

type ChangePasswordInput struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password" validate:"required,min=8,max=72"`
}

// UserService covers profiles and user administration.
type UserService interface {
	GetMe(ctx context.Context, actor auth.Principal) (*model.User, error)
	// GetPublicProfile never exposes the email address.
	GetPublicProfile(ctx context.Context, id string) (*model.User, error)
	UpdateProfile(ctx context.Context, actor auth.Principal, in ProfileUpdate) (*model.User, error)
	// ChangePassword lets social-only accounts set a first password without the old one.
	ChangePassword(ctx context.Context, actor auth.Principal, in ChangePasswordInput) error
	DeleteAccount(ctx context.Context, actor auth.Principal) error

	List(ctx context.Context, actor auth.Principal, limit, offset int) (*Page[model.User], error)
	ChangeRole(ctx context.Context, actor auth.Principal, id string, role model.Role) (*model.User, error)
	// PromoteByEmail grants the admin role without an acting principal, for operators.
	PromoteByEmail(ctx context.Context, email string) (*model.User, error)
}

type userService struct {
	users  repository.UserRepository
	tokens repository.VerificationTokenRepository
	log    logrus.FieldLogger
}

func NewUserService(users repository.UserRepository, tokens repository.VerificationTokenRepository, log logrus.FieldLogger) UserService {
	return &userService{users: users, tokens: tokens, log: log.WithField("component", "users")}
}

func (s *userService) me(ctx context.Context, actor auth.Principal) (*model.User, error) {
	if !actor.Authenticated() {
		return nil, ErrUnauthorized
	}
	u, err := s.users.FindByID(ctx, actor.UserID)
	if err != nil {
		return nil, repoErr(err, ErrUserNotFound)
	}
	return u, nil
}

func (s *userService) GetMe(ctx context.Context, actor auth.Principal) (*model.User, error) {
	return s.me(ctx, actor)
}

func (s *userService) GetPublicProfile(ctx context.Context, id string) (*model.User, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	u, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, repoErr(err, ErrUserNotFound)
	}
	pub := u.Public()
	return &pub, nil
}

func (s *userService) UpdateProfile(ctx context.Context, actor auth.Principal, in ProfileUpdate) (*model.User, error) {
	in.FullName = trimmed(in.FullName)
	if err := validate(in); err != nil {
		return nil, err
	}
	u, err := s.me(ctx, actor)
	if err != nil {
		return nil, err
	}
	if in.FullName != nil {
		if *in.FullName == "" {
			return nil, invalidf("full name is required")
		}
		u.FullName = *in.FullName
	}
	if in.Bio != nil {
		u.Bio = *in.Bio
	}
	if in.Language != nil {
		u.Language = strings.ToLower(*in.Language)
	}
	if in.ProfilePicture != nil {
		u.ProfilePicture = *in.ProfilePicture
	}
	u.UpdatedAt = time.Now().UTC()
	if err := s.users.Update(ctx, u); err != nil {
		return nil, repoErr(err, ErrUserNotFound)
	}
	return u, nil
}

func (s *userService) ChangePassword(ctx context.Context, actor auth.Principal, in ChangePasswordInput) error {
	if err := validate(in); err != nil {
		return err
	}
	u, err := s.me(ctx, actor)
	if err != nil {
		return err
	}
	if u.PasswordHash != "" && !auth.PasswordMatches(u.PasswordHash, in.OldPassword) {
		return ErrInvalidCredentials
	}
	hash, err := auth.HashPassword(in.NewPassword)
	if err != nil {
		return invalidf("%v", err)
	}
	u.PasswordHash = hash
	u.UpdatedAt = time.Now().UTC()
	return s.users.Update(ctx, u)
}

func (s *userService) DeleteAccount(ctx context.Context, actor auth.Principal) error {
	if !actor.Authenticated() {
		return ErrUnauthorized
	}
	if err := s.tokens.DeleteByUser(ctx, actor.UserID); err != nil {
		return err
	}
	if err := s.users.Delete(ctx, actor.UserID); err != nil {
		return repoErr(err, ErrUserNotFound)
	}
	s.log.WithField("user_id", actor.UserID).Info("account deleted")
	return nil
}

func (s *userService) List(ctx context.Context, actor auth.Principal, limit, offset int) (*Page[model.User], error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	pq := pageQuery(limit, offset)
	res, err := s.users.List(ctx, pq)
	if err != nil {
		return nil, err
	}
	return toPage(res, pq), nil
}

func (s *userService) ChangeRole(ctx context.Context, actor auth.Principal, id string, role model.Role) (*model.User, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if role != model.RoleUser && role != model.RoleAdmin {
		return nil, invalidf("unknown role %q", role)
	}
	if id == actor.UserID && role != model.RoleAdmin {
		return nil, ErrForbidden
	}
	return s.setRole(ctx, id, "", role)
}

func (s *userService) PromoteByEmail(ctx context.Context, email string) (*model.User, error) {
	return s.setRole(ctx, "", normalizeEmail(email), model.RoleAdmin)
}

func (s *userService) setRole(ctx context.Context, id, email string, role model.Role) (*model.User, error) {
	var (
		u   *model.User
		err error
	)
	if id != "" {
		u, err = s.users.FindByID(ctx, id)
	} else {
		u, err = s.users.FindByEmail(ctx, email)
	}
	if err != nil {
		return nil, repoErr(err, ErrUserNotFound)
	}
	if u.Role == role {
		return u, nil
	}
	u.Role = role
	u.UpdatedAt = time.Now().UTC()
	if err := s.users.Update(ctx, u); err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{"user_id": u.ID, "role": role}).Info("role changed")
	return u, nil
}
