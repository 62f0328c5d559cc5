package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"

	"github.com/zero-filtre/zerofiltre-blog-backend-sub004/internal/auth"
	"github.com/zero-filtre/zerofiltre-blog-backend-sub004/internal/model"
	"github.com/zero-filtre/zerofiltre-blog-backend-sub004/internal/repository"
	"github.com/zero-filtre/zerofiltre-blog-backend-sub004/internal/tasks"
)

const tokenBytes = 32

type RegisterInput struct {
	FullName string `json:"full_name" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// TokenResult is returned by every successful login.
type TokenResult struct {
	AccessToken string      `json:"access_token"`
	TokenType   string      `json:"token_type"`
	ExpiresAt   time.Time   `json:"expires_at"`
	User        *model.User `json:"user"`
}

// AuthService covers password accounts: registration, verification, login and resets.
type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*model.User, error)
	VerifyAccount(ctx context.Context, token string) error
	ResendVerification(ctx context.Context, email string) error
	Login(ctx context.Context, email, password string) (*TokenResult, error)
	// ForgotPassword succeeds silently for unknown emails.
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, newPassword string) error
}

type authService struct {
	users    repository.UserRepository
	tokens   repository.VerificationTokenRepository
	issuer   *auth.TokenManager
	enqueuer tasks.Enqueuer
	tokenTTL time.Duration
	now      func() time.Time
	log      logrus.FieldLogger
}

func NewAuthService(
	users repository.UserRepository,
	tokens repository.VerificationTokenRepository,
	issuer *auth.TokenManager,
	enqueuer tasks.Enqueuer,
	tokenTTL time.Duration,
	log logrus.FieldLogger,
) AuthService {
	return &authService{
		users:    users,
		tokens:   tokens,
		issuer:   issuer,
		enqueuer: enqueuer,
		tokenTTL: tokenTTL,
		now:      time.Now,
		log:      log.WithField("component", "auth"),
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *authService) Register(ctx context.Context, in RegisterInput) (*model.User, error) {
	in.Email = normalizeEmail(in.Email)
	in.FullName = strings.TrimSpace(in.FullName)
	if err := validate(in); err != nil {
		return nil, err
	}
	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, invalidf("%v", err)
	}
	now := s.now().UTC()
	u := &model.User{
		ID:           uuid.NewString(),
		FullName:     in.FullName,
		Email:        in.Email,
		PasswordHash: hash,
		Role:         model.RoleUser,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, fmt.Errorf("%w: email already registered", ErrConflict)
		}
		return nil, err
	}
	if err := s.sendToken(ctx, u, model.PurposeAccountVerification); err != nil {
		s.log.WithField("user_id", u.ID).WithError(err).Warn("verification email not queued")
	}
	s.log.WithField("user_id", u.ID).Info("user registered")
	return u, nil
}

// sendToken stores a fresh single-use token and queues the email carrying it.
func (s *authService) sendToken(ctx context.Context, u *model.User, purpose model.TokenPurpose) error {
	raw, err := auth.RandomToken(tokenBytes)
	if err != nil {
		return err
	}
	now := s.now().UTC()
	vt := &model.VerificationToken{
		ID:        uuid.NewString(),
		UserID:    u.ID,
		Token:     raw,
		Purpose:   purpose,
		ExpiresAt: now.Add(s.tokenTTL),
		CreatedAt: now,
	}
	if err := s.tokens.Create(ctx, vt); err != nil {
		return err
	}
	payload := tasks.EmailPayload{UserID: u.ID, Email: u.Email, FullName: u.FullName, Token: raw}
	var task *asynq.Task
	if purpose == model.PurposePasswordReset {
		task, err = tasks.NewPasswordResetEmailTask(payload)
	} else {
		task, err = tasks.NewVerificationEmailTask(payload)
	}
	if err != nil {
		return err
	}
	return s.enqueuer.Enqueue(ctx, task)
}

// redeem returns the usable token for purpose and its user.
func (s *authService) redeem(ctx context.Context, raw string, purpose model.TokenPurpose) (*model.VerificationToken, *model.User, error) {
	if raw == "" {
		return nil, nil, invalidf("token is required")
	}
	vt, err := s.tokens.FindByToken(ctx, raw)
	if err != nil {
		return nil, nil, repoErr(err, ErrNotFound)
	}
	if vt.Purpose != purpose {
		return nil, nil, ErrNotFound
	}
	if !vt.Usable(s.now()) {
		return nil, nil, ErrTokenExpired
	}
	u, err := s.users.FindByID(ctx, vt.UserID)
	if err != nil {
		return nil, nil, repoErr(err, ErrUserNotFound)
	}
	return vt, u, nil
}

func (s *authService) VerifyAccount(ctx context.Context, token string) error {
	vt, u, err := s.redeem(ctx, token, model.PurposeAccountVerification)
	if err != nil {
		return err
	}
	if !u.Active {
		u.Active = true
		u.UpdatedAt = s.now().UTC()
		if err := s.users.Update(ctx, u); err != nil {
			return err
		}
	}
	return s.tokens.MarkUsed(ctx, vt.ID, s.now().UTC())
}

func (s *authService) ResendVerification(ctx context.Context, email string) error {
	u, err := s.users.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return repoErr(err, ErrUserNotFound)
	}
	if u.Active {
		return nil
	}
	return s.sendToken(ctx, u, model.PurposeAccountVerification)
}

func (s *authService) Login(ctx context.Context, email, password string) (*TokenResult, error) {
	u, err := s.users.FindByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !auth.PasswordMatches(u.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	if !u.Active {
		return nil, ErrInactiveAccount
	}
	return issueToken(s.issuer, u)
}

func issueToken(issuer *auth.TokenManager, u *model.User) (*TokenResult, error) {
	tok, exp, err := issuer.Issue(u)
	if err != nil {
		return nil, err
	}
	return &TokenResult{AccessToken: tok, TokenType: "Bearer", ExpiresAt: exp, User: u}, nil
}

func (s *authService) ForgotPassword(ctx context.Context, email string) error {
	u, err := s.users.FindByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, repository.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	return s.sendToken(ctx, u, model.PurposePasswordReset)
}

func (s *authService) ResetPassword(ctx context.Context, token, newPassword string) error {
	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return invalidf("%v", err)
	}
	vt, u, err := s.redeem(ctx, token, model.PurposePasswordReset)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	// The reset link proves ownership of the address.
	u.Active = true
	u.UpdatedAt = s.now().UTC()
	if err := s.users.Update(ctx, u); err != nil {
		return err
	}
	return s.tokens.MarkUsed(ctx, vt.ID, s.now().UTC())
}
