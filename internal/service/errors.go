// Package service holds the use cases. Handlers call services; services call
// repositories and providers.
package service

import (
	"errors"
	"fmt"

	"github.com/zero-filtre/zerofiltre-blog-backend-sub004/internal/repository"
	"github.com/zero-filtre/zerofiltre-blog-backend-sub004/internal/validation"
)

var (
	ErrIDRequired         = errors.New("id is required")
	ErrReaderNil          = errors.New("reader is nil")
	ErrNotFound           = errors.New("resource not found")
	ErrUserNotFound       = errors.New("user not found")
	ErrForbidden          = errors.New("forbidden action")
	ErrUnauthorized       = errors.New("authentication required")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrConflict           = errors.New("resource already exists")
	ErrInvalidInput       = errors.New("invalid input")
	ErrPayment            = errors.New("payment error")
	ErrPaymentRequired    = errors.New("payment required")
	ErrProvider           = errors.New("external provider unavailable")
	ErrNotCompleted       = errors.New("course not completed")
	ErrInactiveAccount    = errors.New("account is not activated")
	ErrTokenExpired       = errors.New("token expired or already used")
)

func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

// validate runs struct tag validation. The returned error wraps both ErrInvalidInput
// and the *validation.Error naming the fields.
func validate(v any) error {
	err := validation.Struct(v)
	if err == nil {
		return nil
	}
	var verr *validation.Error
	if errors.As(err, &verr) {
		return fmt.Errorf("%w: %w", ErrInvalidInput, verr)
	}
	return err
}

// repoErr translates repository sentinels into service sentinels. notFound is what a
// missing row means for the caller.
func repoErr(err error, notFound error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrNotFound):
		return notFound
	case errors.Is(err, repository.ErrDuplicate):
		return fmt.Errorf("%w: %v", ErrConflict, err)
	}
	return err
}
