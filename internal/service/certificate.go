package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/zero-filtre/zerofiltre-blog-backend-sub004/internal/auth"
	"github.com/zero-filtre/zerofiltre-blog-backend-sub004/internal/provider"
	"github.com/zero-filtre/zerofiltre-blog-backend-sub004/internal/repository"
	"github.com/zero-filtre/zerofiltre-blog-backend-sub004/internal/storage"
)

// Certificate is a rendered completion certificate.
type Certificate struct {
	Filename string
	Content  []byte
}

type CertificateService interface {
	// Get returns the caller's certificate for a completed course.
	Get(ctx context.Context, actor auth.Principal, courseID string) (*Certificate, error)
}

type certificateService struct {
	purchases repository.PurchaseRepository
	users     repository.UserRepository
	courses   repository.CourseRepository
	store     storage.Storage
	renderer  provider.CertificateRenderer
	log       logrus.FieldLogger

	mu    sync.RWMutex
	cache map[string][]byte
}

func NewCertificateService(
	purchases repository.PurchaseRepository,
	users repository.UserRepository,
	courses repository.CourseRepository,
	store storage.Storage,
	renderer provider.CertificateRenderer,
	log logrus.FieldLogger,
) CertificateService {
	return &certificateService{
		purchases: purchases,
		users:     users,
		courses:   courses,
		store:     store,
		renderer:  renderer,
		log:       log.WithField("component", "certificates"),
		cache:     make(map[string][]byte),
	}
}

func (s *certificateService) cached(key string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.cache[key]
	return b, ok
}

func (s *certificateService) remember(key string, b []byte) {
	s.mu.Lock()
	s.cache[key] = b
	s.mu.Unlock()
}

func (s *certificateService) Get(ctx context.Context, actor auth.Principal, courseID string) (*Certificate, error) {
	if !actor.Authenticated() {
		return nil, ErrUnauthorized
	}
	if courseID == "" {
		return nil, ErrIDRequired
	}
	p, err := s.purchases.Find(ctx, actor.UserID, courseID)
	if err != nil {
		return nil, repoErr(err, ErrNotFound)
	}
	if !p.Completed {
		return nil, ErrNotCompleted
	}

	key := storage.CertificateKey(courseID, actor.UserID)
	filename := fmt.Sprintf("certificate-%s.pdf", courseID)
	if b, ok := s.cached(key); ok {
		return &Certificate{Filename: filename, Content: b}, nil
	}

	b, err := s.load(ctx, key)
	if errors.Is(err, storage.ErrObjectNotFound) {
		b, err = s.render(ctx, key, actor.UserID, courseID, p.ID, p.CompletedAt)
	}
	if err != nil {
		return nil, err
	}
	s.remember(key, b)
	return &Certificate{Filename: filename, Content: b}, nil
}

func (s *certificateService) load(ctx context.Context, key string) ([]byte, error) {
	rc, _, err := s.store.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	b, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("read certificate: %w", err)
	}
	return b, nil
}

func (s *certificateService) render(ctx context.Context, key, userID, courseID, reference string, completedAt *time.Time) ([]byte, error) {
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, repoErr(err, ErrUserNotFound)
	}
	c, err := s.courses.FindByID(ctx, courseID)
	if err != nil {
		return nil, repoErr(err, ErrNotFound)
	}
	at := time.Now().UTC()
	if completedAt != nil {
		at = *completedAt
	}
	b, err := s.renderer.Render(provider.CertificateData{
		FullName:    u.FullName,
		CourseTitle: c.Title,
		CompletedAt: at,
		Reference:   reference,
	})
	if err != nil {
		return nil, fmt.Errorf("render certificate: %w", err)
	}
	_, err = s.store.Put(ctx, key, bytes.NewReader(b), storage.PutObjectOptions{
		Size:        int64(len(b)),
		ContentType: "application/pdf",
	})
	if err != nil {
		s.log.WithField("key", key).WithError(err).Warn("certificate not stored")
	}
	return b, nil
}
