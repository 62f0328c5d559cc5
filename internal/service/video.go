package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/zero-filtre/zerofiltre-blog-backend-sub004/internal/auth"
	"github.com/zero-filtre/zerofiltre-blog-backend-sub004/internal/model"
	"github.com/zero-filtre/zerofiltre-blog-backend-sub004/internal/provider"
	"github.com/zero-filtre/zerofiltre-blog-backend-sub004/internal/repository"
)

type VideoUploadInput struct {
	Name string `json:"name" validate:"required,max=255"`
	Size int64  `json:"size" validate:"gt=0"`
}

// VideoService manages course videos hosted on Vimeo.
type VideoService interface {
	CreateUpload(ctx context.Context, actor auth.Principal, in VideoUploadInput) (*provider.VideoUpload, error)
	// Delete is reserved to the uploader and admins. Admins may also delete videos that
	// were not uploaded through the API.
	Delete(ctx context.Context, actor auth.Principal, videoID string) error
}

type videoService struct {
	videos provider.VideoProvider
	repo   repository.VideoRepository
	now    func() time.Time
	log    logrus.FieldLogger
}

func NewVideoService(videos provider.VideoProvider, repo repository.VideoRepository, log logrus.FieldLogger) VideoService {
	return &videoService{videos: videos, repo: repo, now: time.Now, log: log.WithField("component", "videos")}
}

func (s *videoService) CreateUpload(ctx context.Context, actor auth.Principal, in VideoUploadInput) (*provider.VideoUpload, error) {
	if !actor.Authenticated() {
		return nil, ErrUnauthorized
	}
	in.Name = strings.TrimSpace(in.Name)
	if err := validate(in); err != nil {
		return nil, err
	}
	up, err := s.videos.CreateUpload(ctx, in.Name, in.Size)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProvider, err)
	}
	v := &model.Video{ID: up.VideoID, Name: in.Name, OwnerID: actor.UserID, CreatedAt: s.now().UTC()}
	if err := s.repo.Create(ctx, v); err != nil {
		// Unrecorded uploads are rolled back.
		if delErr := s.videos.Delete(ctx, up.VideoID); delErr != nil {
			return nil, fmt.Errorf("save video: %v; rollback delete failed: %v", err, delErr)
		}
		return nil, fmt.Errorf("save video: %w", err)
	}
	s.log.WithFields(logrus.Fields{"video_id": up.VideoID, "user_id": actor.UserID}).Info("video upload created")
	return up, nil
}

func (s *videoService) Delete(ctx context.Context, actor auth.Principal, videoID string) error {
	if !actor.Authenticated() {
		return ErrUnauthorized
	}
	if videoID == "" {
		return ErrIDRequired
	}
	v, err := s.repo.FindByID(ctx, videoID)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		if !actor.IsAdmin() {
			return ErrNotFound
		}
	case err != nil:
		return err
	case !canEdit(actor, v.OwnerID):
		return ErrForbidden
	}

	err = s.videos.Delete(ctx, videoID)
	switch {
	case errors.Is(err, provider.ErrNotFound):
		if v == nil {
			return ErrNotFound
		}
	case err != nil:
		return fmt.Errorf("%w: %v", ErrProvider, err)
	}
	if v != nil {
		if err := s.repo.Delete(ctx, videoID); err != nil {
			return err
		}
	}
	s.log.WithFields(logrus.Fields{"video_id": videoID, "user_id": actor.UserID}).Info("video deleted")
	return nil
}
