package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/zero-filtre/zerofiltre-blog-backend-sub004/internal/auth"
	"github.com/zero-filtre/zerofiltre-blog-backend-sub004/internal/provider"
)

// tokenRenewMargin is how long before expiry a cached token is replaced.
const tokenRenewMargin = 5 * time.Minute

// OVHService hands out object store tokens to authenticated clients.
type OVHService interface {
	Token(ctx context.Context, actor auth.Principal) (*provider.ObjectStoreToken, error)
}

type ovhService struct {
	tokens provider.TokenProvider
	now    func() time.Time

	mu     sync.Mutex
	cached *provider.ObjectStoreToken
}

func NewOVHService(tokens provider.TokenProvider) OVHService {
	return &ovhService{tokens: tokens, now: time.Now}
}

func (s *ovhService) Token(ctx context.Context, actor auth.Principal) (*provider.ObjectStoreToken, error) {
	if !actor.Authenticated() {
		return nil, ErrUnauthorized
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cached != nil && s.now().Add(tokenRenewMargin).Before(s.cached.ExpiresAt) {
		t := *s.cached
		return &t, nil
	}
	t, err := s.tokens.Token(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProvider, err)
	}
	s.cached = t
	out := *t
	return &out, nil
}
