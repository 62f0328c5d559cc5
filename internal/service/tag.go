package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/zero-filtre/zerofiltre-blog-backend-sub004/internal/auth"
	"github.com/zero-filtre/zerofiltre-blog-backend-sub004/internal/model"
	"github.com/zero-filtre/zerofiltre-blog-backend-sub004/internal/repository"
)

type TagInput struct {
	Name      string `json:"name" validate:"required,max=50"`
	ColorCode string `json:"color_code" validate:"omitempty,hexcolor"`
}

type TagService interface {
	List(ctx context.Context) ([]model.Tag, error)
	Get(ctx context.Context, id string) (*model.Tag, error)
	// Create is reserved to admins.
	Create(ctx context.Context, actor auth.Principal, in TagInput) (*model.Tag, error)
}

type tagService struct {
	repo repository.TagRepository
}

func NewTagService(repo repository.TagRepository) TagService {
	return &tagService{repo: repo}
}

func (s *tagService) List(ctx context.Context) ([]model.Tag, error) {
	tags, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	if tags == nil {
		tags = []model.Tag{}
	}
	return tags, nil
}

func (s *tagService) Get(ctx context.Context, id string) (*model.Tag, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	t, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, repoErr(err, ErrNotFound)
	}
	return t, nil
}

func (s *tagService) Create(ctx context.Context, actor auth.Principal, in TagInput) (*model.Tag, error) {
	if !actor.Authenticated() {
		return nil, ErrUnauthorized
	}
	if !actor.IsAdmin() {
		return nil, ErrForbidden
	}
	in.Name = strings.TrimSpace(in.Name)
	if err := validate(in); err != nil {
		return nil, err
	}
	t := &model.Tag{
		ID:        uuid.NewString(),
		Name:      in.Name,
		ColorCode: in.ColorCode,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, t); err != nil {
		return nil, repoErr(err, ErrNotFound)
	}
	return t, nil
}
