package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/zero-filtre/zerofiltre-blog-backend-sub004/internal/auth"
	"github.com/zero-filtre/zerofiltre-blog-backend-sub004/internal/model"
	"github.com/zero-filtre/zerofiltre-blog-backend-sub004/internal/repository"
	"github.com/zero-filtre/zerofiltre-blog-backend-sub004/internal/storage"
)

const presignExpiry = 15 * time.Minute

var allowedMediaTypes = map[string]bool{
	"image/jpeg":      true,
	"image/png":       true,
	"image/gif":       true,
	"image/webp":      true,
	"image/svg+xml":   true,
	"application/pdf": true,
}

// MediaService defines the use cases for uploaded files (article images, thumbnails).
type MediaService interface {
	// Upload stores the content in object storage, saves metadata to DB, and rolls back storage if DB save fails.
	Upload(ctx context.Context, actor auth.Principal, r io.Reader, filename, contentType string, size int64) (*model.Media, error)

	// List returns media using limit/offset and a total count.
	List(ctx context.Context, limit, offset int) (*Page[model.Media], error)

	// Get returns a single media record with a presigned download URL.
	Get(ctx context.Context, id string) (*model.Media, error)

	// Delete removes a media file from both storage and repository. Owner or admin only.
	Delete(ctx context.Context, actor auth.Principal, id string) error
}

type mediaService struct {
	store    storage.Storage
	repo     repository.MediaRepository
	maxBytes int64
	log      logrus.FieldLogger
}

func NewMediaService(store storage.Storage, repo repository.MediaRepository, maxBytes int64, log logrus.FieldLogger) MediaService {
	return &mediaService{store: store, repo: repo, maxBytes: maxBytes, log: log.WithField("component", "media")}
}

func (s *mediaService) Upload(ctx context.Context, actor auth.Principal, r io.Reader, filename, contentType string, size int64) (*model.Media, error) {
	if !actor.Authenticated() {
		return nil, ErrUnauthorized
	}
	if r == nil {
		return nil, ErrReaderNil
	}
	if !allowedMediaTypes[contentType] {
		return nil, invalidf("content type %q is not allowed", contentType)
	}
	if size <= 0 || (s.maxBytes > 0 && size > s.maxBytes) {
		return nil, invalidf("file size must be between 1 and %d bytes", s.maxBytes)
	}

	id := uuid.NewString()
	key := storage.MediaKey(id, filename)
	objInfo, err := s.store.Put(ctx, key, r, storage.PutObjectOptions{
		Size:        size,
		ContentType: contentType,
		Metadata: map[string]string{
			"original-filename": filename,
			"owner-id":          actor.UserID,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("upload to storage: %w", err)
	}

	m := &model.Media{
		ID:          id,
		Filename:    filename,
		StoragePath: objInfo.Key,
		Size:        objInfo.Size,
		ContentType: contentType,
		OwnerID:     actor.UserID,
		CreatedAt:   time.Now().UTC(),
	}
	stored, err := s.repo.Create(ctx, m)
	if err != nil {
		if delErr := s.store.Delete(ctx, key); delErr != nil {
			return nil, fmt.Errorf("db save failed: %v; rollback delete failed: %v", err, delErr)
		}
		return nil, fmt.Errorf("db save failed: %w", err)
	}
	return stored, nil
}

func (s *mediaService) List(ctx context.Context, limit, offset int) (*Page[model.Media], error) {
	pq := pageQuery(limit, offset)
	res, err := s.repo.List(ctx, pq)
	if err != nil {
		return nil, err
	}
	return toPage(res, pq), nil
}

func (s *mediaService) Get(ctx context.Context, id string) (*model.Media, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	m, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, repoErr(err, ErrNotFound)
	}
	url, err := s.store.PresignGet(ctx, m.StoragePath, presignExpiry)
	if err != nil {
		s.log.WithField("media_id", id).WithError(err).Warn("presign failed")
	} else {
		m.URL = url
	}
	return m, nil
}

func (s *mediaService) Delete(ctx context.Context, actor auth.Principal, id string) error {
	if !actor.Authenticated() {
		return ErrUnauthorized
	}
	if id == "" {
		return ErrIDRequired
	}
	m, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return repoErr(err, ErrNotFound)
	}
	if !canEdit(actor, m.OwnerID) {
		return ErrForbidden
	}
	// Storage first: a failed delete keeps the row pointing at the object.
	if err := s.store.Delete(ctx, m.StoragePath); err != nil && !errors.Is(err, storage.ErrObjectNotFound) {
		return fmt.Errorf("delete storage: %w", err)
	}
	return s.repo.Delete(ctx, id)
}
