package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/zero-filtre/zerofiltre-blog-backend-sub004/internal/auth"
	"github.com/zero-filtre/zerofiltre-blog-backend-sub004/internal/model"
	"github.com/zero-filtre/zerofiltre-blog-backend-sub004/internal/provider"
	"github.com/zero-filtre/zerofiltre-blog-backend-sub004/internal/repository"
)

// SocialLoginService signs users in with an OAuth provider, linking the provider
// identity to an existing account with the same email or creating a new account.
type SocialLoginService interface {
	Login(ctx context.Context, name model.LoginProvider, code string) (*TokenResult, error)
}

type socialLoginService struct {
	users     repository.UserRepository
	providers map[model.LoginProvider]provider.SocialProvider
	issuer    *auth.TokenManager
	log       logrus.FieldLogger
}

func NewSocialLoginService(users repository.UserRepository, providers []provider.SocialProvider, issuer *auth.TokenManager, log logrus.FieldLogger) SocialLoginService {
	byName := make(map[model.LoginProvider]provider.SocialProvider, len(providers))
	for _, p := range providers {
		byName[p.Name()] = p
	}
	return &socialLoginService{
		users:     users,
		providers: byName,
		issuer:    issuer,
		log:       log.WithField("component", "social_login"),
	}
}

func (s *socialLoginService) Login(ctx context.Context, name model.LoginProvider, code string) (*TokenResult, error) {
	p, ok := s.providers[name]
	if !ok {
		return nil, invalidf("unsupported login provider %q", name)
	}
	if strings.TrimSpace(code) == "" {
		return nil, invalidf("authorization code is required")
	}
	profile, err := p.Profile(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProvider, err)
	}
	if profile.ID == "" {
		return nil, fmt.Errorf("%w: %s returned no user id", ErrProvider, name)
	}
	u, err := s.linkOrCreate(ctx, name, profile)
	if err != nil {
		return nil, err
	}
	return issueToken(s.issuer, u)
}

func (s *socialLoginService) linkOrCreate(ctx context.Context, name model.LoginProvider, profile *provider.SocialProfile) (*model.User, error) {
	log := s.log.WithFields(logrus.Fields{"provider": name, "social_id": profile.ID})
	email := normalizeEmail(profile.Email)

	u, err := s.existing(ctx, name, profile, email)
	if err != nil {
		return nil, err
	}
	if u != nil {
		return u, nil
	}

	now := time.Now().UTC()
	fullName := strings.TrimSpace(profile.Name)
	if fullName == "" {
		fullName = string(name) + " user " + profile.ID
	}
	socialID := profile.ID
	u = &model.User{
		ID:             uuid.NewString(),
		FullName:       fullName,
		Email:          email,
		Role:           model.RoleUser,
		Active:         true,
		LoginProvider:  name,
		SocialID:       &socialID,
		SocialLink:     profile.ProfileURL,
		ProfilePicture: profile.AvatarURL,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	err = s.users.Create(ctx, u)
	if err == nil {
		log.WithField("user_id", u.ID).Info("account created from social login")
		return u, nil
	}
	if !errors.Is(err, repository.ErrDuplicate) {
		return nil, err
	}

	// A concurrent login created the account, or the email was taken meanwhile.
	log.WithError(err).Info("duplicate on social account creation, retrying lookup")
	found, lookupErr := s.existing(ctx, name, profile, email)
	if lookupErr != nil {
		return nil, lookupErr
	}
	if found == nil {
		return nil, fmt.Errorf("%w: %v", ErrConflict, err)
	}
	return found, nil
}

// existing returns the account already bound to the provider identity, or the account
// with the same email after linking it. Nil when neither exists.
func (s *socialLoginService) existing(ctx context.Context, name model.LoginProvider, profile *provider.SocialProfile, email string) (*model.User, error) {
	u, err := s.users.FindBySocial(ctx, name, profile.ID)
	if err == nil {
		return u, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}
	if email == "" {
		return nil, nil
	}
	u, err = s.users.FindByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return s.link(ctx, u, name, profile)
}

func (s *socialLoginService) link(ctx context.Context, u *model.User, name model.LoginProvider, profile *provider.SocialProfile) (*model.User, error) {
	socialID := profile.ID
	u.LoginProvider = name
	u.SocialID = &socialID
	u.Active = true
	if profile.ProfileURL != "" {
		u.SocialLink = profile.ProfileURL
	}
	if u.ProfilePicture == "" {
		u.ProfilePicture = profile.AvatarURL
	}
	u.UpdatedAt = time.Now().UTC()
	err := s.users.Update(ctx, u)
	if errors.Is(err, repository.ErrDuplicate) {
		// The identity was bound to another account between our reads.
		bound, ferr := s.users.FindBySocial(ctx, name, profile.ID)
		if ferr != nil {
			return nil, repoErr(ferr, ErrUserNotFound)
		}
		return bound, nil
	}
	if err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{"provider": name, "user_id": u.ID}).Info("social identity linked")
	return u, nil
}
