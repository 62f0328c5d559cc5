package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/zero-filtre/zerofiltre-blog-backend-sub004/internal/auth"
	"github.com/zero-filtre/zerofiltre-blog-backend-sub004/internal/model"
	"github.com/zero-filtre/zerofiltre-blog-backend-sub004/internal/repository"
	repoMocks "github.com/zero-filtre/zerofiltre-blog-backend-sub004/internal/repository/mocks"
	"github.com/zero-filtre/zerofiltre-blog-backend-sub004/internal/tasks"
)

const testSecret = "0123456789abcdef0123456789abcdef"

// taskRecorder runs enqueued tasks inline and keeps what it saw.
type taskRecorder struct {
	mu    sync.Mutex
	types []string
	last  tasks.EmailPayload
}

func (r *taskRecorder) ProcessTask(_ context.Context, t *asynq.Task) error {
	p, err := tasks.ParseEmailPayload(t)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.types = append(r.types, t.Type())
	r.last = p
	return nil
}

type authMocks struct {
	users  *repoMocks.MockUserRepository
	tokens *repoMocks.MockVerificationTokenRepository
	tasks  *taskRecorder
}

func newAuthFixture() (*authService, authMocks) {
	m := authMocks{
		users:  new(repoMocks.MockUserRepository),
		tokens: new(repoMocks.MockVerificationTokenRepository),
		tasks:  &taskRecorder{},
	}
	svc := NewAuthService(m.users, m.tokens, auth.NewTokenManager(testSecret, time.Hour),
		tasks.NewInlineEnqueuer(m.tasks), 24*time.Hour, quietLogger()).(*authService)
	return svc, m
}

func mustHash(t *testing.T, pw string) string {
	t.Helper()
	h, err := auth.HashPassword(pw)
	require.NoError(t, err)
	return h
}

func TestAuthService_Register(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name       string
		in         RegisterInput
		setupMocks func(m authMocks)
		wantErr    error
	}{
		{
			name: "new account",
			in:   RegisterInput{FullName: "Alice", Email: " Alice@Example.com ", Password: "s3cretpass"},
			setupMocks: func(m authMocks) {
				m.users.On("Create", ctx, mock.MatchedBy(func(u *model.User) bool {
					return u.Email == "alice@example.com" && !u.Active && u.Role == model.RoleUser &&
						auth.PasswordMatches(u.PasswordHash, "s3cretpass")
				})).Return(nil)
				m.tokens.On("Create", ctx, mock.MatchedBy(func(vt *model.VerificationToken) bool {
					return vt.Purpose == model.PurposeAccountVerification && len(vt.Token) == 64
				})).Return(nil)
			},
		},
		{
			name: "duplicate email",
			in:   RegisterInput{FullName: "Alice", Email: "alice@example.com", Password: "s3cretpass"},
			setupMocks: func(m authMocks) {
				m.users.On("Create", ctx, mock.Anything).Return(repository.ErrDuplicate)
			},
			wantErr: ErrConflict,
		},
		{name: "bad email", in: RegisterInput{FullName: "Alice", Email: "alice", Password: "s3cretpass"}, wantErr: ErrInvalidInput},
		{name: "short password", in: RegisterInput{FullName: "Alice", Email: "alice@example.com", Password: "short"}, wantErr: ErrInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, m := newAuthFixture()
			if tt.setupMocks != nil {
				tt.setupMocks(m)
			}
			u, err := svc.Register(ctx, tt.in)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "alice@example.com", u.Email)
			assert.Equal(t, []string{tasks.TypeVerificationEmail}, m.tasks.types)
			assert.Equal(t, u.ID, m.tasks.last.UserID)
			m.users.AssertExpectations(t)
			m.tokens.AssertExpectations(t)
		})
	}
}

func TestAuthService_VerifyAccount(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	token := func(purpose model.TokenPurpose, expires time.Time) *model.VerificationToken {
		return &model.VerificationToken{ID: "vt-1", UserID: alice.UserID, Token: "abc", Purpose: purpose, ExpiresAt: expires}
	}

	tests := []struct {
		name       string
		setupMocks func(m authMocks)
		wantErr    error
	}{
		{
			name: "activates",
			setupMocks: func(m authMocks) {
				m.tokens.On("FindByToken", ctx, "abc").Return(token(model.PurposeAccountVerification, now.Add(time.Hour)), nil)
				m.users.On("FindByID", ctx, alice.UserID).Return(&model.User{ID: alice.UserID}, nil)
				m.users.On("Update", ctx, mock.MatchedBy(func(u *model.User) bool { return u.Active })).Return(nil)
				m.tokens.On("MarkUsed", ctx, "vt-1", now).Return(nil)
			},
		},
		{
			name: "expired",
			setupMocks: func(m authMocks) {
				m.tokens.On("FindByToken", ctx, "abc").Return(token(model.PurposeAccountVerification, now.Add(-time.Second)), nil)
			},
			wantErr: ErrTokenExpired,
		},
		{
			name: "wrong purpose",
			setupMocks: func(m authMocks) {
				m.tokens.On("FindByToken", ctx, "abc").Return(token(model.PurposePasswordReset, now.Add(time.Hour)), nil)
			},
			wantErr: ErrNotFound,
		},
		{
			name: "unknown token",
			setupMocks: func(m authMocks) {
				m.tokens.On("FindByToken", ctx, "abc").Return(nil, repository.ErrNotFound)
			},
			wantErr: ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, m := newAuthFixture()
			svc.now = func() time.Time { return now }
			tt.setupMocks(m)
			err := svc.VerifyAccount(ctx, "abc")
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			m.users.AssertExpectations(t)
			m.tokens.AssertExpectations(t)
		})
	}
}

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()
	hash := mustHash(t, "s3cretpass")

	tests := []struct {
		name     string
		user     *model.User
		findErr  error
		password string
		wantErr  error
	}{
		{name: "ok", user: &model.User{ID: alice.UserID, Email: alice.Email, PasswordHash: hash, Active: true, Role: model.RoleUser}, password: "s3cretpass"},
		{name: "wrong password", user: &model.User{ID: alice.UserID, PasswordHash: hash, Active: true}, password: "nope-nope", wantErr: ErrInvalidCredentials},
		{name: "social only account", user: &model.User{ID: alice.UserID, Active: true}, password: "", wantErr: ErrInvalidCredentials},
		{name: "inactive", user: &model.User{ID: alice.UserID, PasswordHash: hash}, password: "s3cretpass", wantErr: ErrInactiveAccount},
		{name: "unknown email", findErr: repository.ErrNotFound, password: "s3cretpass", wantErr: ErrInvalidCredentials},
		{name: "store down", findErr: errors.New("db down"), password: "s3cretpass"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, m := newAuthFixture()
			if tt.user != nil {
				m.users.On("FindByEmail", ctx, "alice@example.com").Return(tt.user, nil)
			} else {
				m.users.On("FindByEmail", ctx, "alice@example.com").Return(nil, tt.findErr)
			}
			res, err := svc.Login(ctx, "ALICE@example.com", tt.password)
			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
			case tt.findErr != nil:
				assert.EqualError(t, err, "db down")
			default:
				require.NoError(t, err)
				assert.Equal(t, "Bearer", res.TokenType)
				p, err := auth.NewTokenManager(testSecret, time.Hour).Parse(res.AccessToken)
				require.NoError(t, err)
				assert.Equal(t, alice.UserID, p.UserID)
			}
		})
	}
}

func TestAuthService_ForgotAndResetPassword(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown email is silent", func(t *testing.T) {
		svc, m := newAuthFixture()
		m.users.On("FindByEmail", ctx, "ghost@example.com").Return(nil, repository.ErrNotFound)
		assert.NoError(t, svc.ForgotPassword(ctx, "ghost@example.com"))
		assert.Empty(t, m.tasks.types)
	})

	t.Run("queues reset email", func(t *testing.T) {
		svc, m := newAuthFixture()
		m.users.On("FindByEmail", ctx, "alice@example.com").Return(&model.User{ID: alice.UserID, Email: "alice@example.com"}, nil)
		m.tokens.On("Create", ctx, mock.MatchedBy(func(vt *model.VerificationToken) bool {
			return vt.Purpose == model.PurposePasswordReset
		})).Return(nil)

		require.NoError(t, svc.ForgotPassword(ctx, "alice@example.com"))
		assert.Equal(t, []string{tasks.TypePasswordResetEmail}, m.tasks.types)
		assert.NotEmpty(t, m.tasks.last.Token)
	})

	t.Run("reset sets new password", func(t *testing.T) {
		svc, m := newAuthFixture()
		m.tokens.On("FindByToken", ctx, "tok").Return(&model.VerificationToken{
			ID: "vt-1", UserID: alice.UserID, Purpose: model.PurposePasswordReset, ExpiresAt: time.Now().Add(time.Hour),
		}, nil)
		m.users.On("FindByID", ctx, alice.UserID).Return(&model.User{ID: alice.UserID}, nil)
		m.users.On("Update", ctx, mock.MatchedBy(func(u *model.User) bool {
			return u.Active && auth.PasswordMatches(u.PasswordHash, "brand-new-pass")
		})).Return(nil)
		m.tokens.On("MarkUsed", ctx, "vt-1", mock.AnythingOfType("time.Time")).Return(nil)

		require.NoError(t, svc.ResetPassword(ctx, "tok", "brand-new-pass"))
		m.users.AssertExpectations(t)
		m.tokens.AssertExpectations(t)
	})

	t.Run("reset rejects weak password", func(t *testing.T) {
		svc, _ := newAuthFixture()
		err := svc.ResetPassword(ctx, "tok", strings.Repeat("a", 3))
		assert.ErrorIs(t, err, ErrInvalidInput)
	})
}

func TestAuthService_ResendVerification(t *testing.T) {
	ctx := context.Background()
	svc, m := newAuthFixture()
	m.users.On("FindByEmail", ctx, "active@example.com").Return(&model.User{ID: "u-1", Active: true}, nil)
	m.users.On("FindByEmail", ctx, "ghost@example.com").Return(nil, repository.ErrNotFound)

	assert.NoError(t, svc.ResendVerification(ctx, "active@example.com"))
	assert.Empty(t, m.tasks.types)
	assert.ErrorIs(t, svc.ResendVerification(ctx, "ghost@example.com"), ErrUserNotFound)
}
