package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/zero-filtre/zerofiltre-blog-backend-sub004/internal/auth"
	"github.com/zero-filtre/zerofiltre-blog-backend-sub004/internal/model"
	"github.com/zero-filtre/zerofiltre-blog-backend-sub004/internal/repository"
)

type CoursePatch struct {
	Title     *string   `json:"title" validate:"omitempty,min=1,max=255"`
	Subtitle  *string   `json:"subtitle" validate:"omitempty,max=255"`
	Summary   *string   `json:"summary" validate:"omitempty,max=1000"`
	Thumbnail *string   `json:"thumbnail" validate:"omitempty,url"`
	Price     *int64    `json:"price" validate:"omitempty,gte=0"`
	Currency  *string   `json:"currency" validate:"omitempty,len=3"`
	TagIDs    *[]string `json:"tags"`
}

// MembershipChecker answers whether a user gets a course through their company.
type MembershipChecker interface {
	IsMemberOfCourseCompany(ctx context.Context, userID, courseID string) (bool, error)
}

type CourseService interface {
	Init(ctx context.Context, actor auth.Principal, title string) (*model.Course, error)
	Save(ctx context.Context, actor auth.Principal, id string, patch CoursePatch) (*model.Course, error)
	Publish(ctx context.Context, actor auth.Principal, id string) (*model.Course, error)
	Get(ctx context.Context, actor auth.Principal, ref string) (*model.Course, error)
	List(ctx context.Context, actor auth.Principal, q ContentQuery) (*Page[model.Course], error)
	Delete(ctx context.Context, actor auth.Principal, id string) error

	// Enroll grants free courses and company-provided courses. Paid courses otherwise
	// go through checkout.
	Enroll(ctx context.Context, actor auth.Principal, courseID string) (*model.Purchase, error)
	Complete(ctx context.Context, actor auth.Principal, courseID string) (*model.Purchase, error)
	ListPurchases(ctx context.Context, actor auth.Principal) ([]model.Purchase, error)
}

type courseService struct {
	courses   repository.CourseRepository
	tags      repository.TagRepository
	purchases repository.PurchaseRepository
	members   MembershipChecker
	notifier  NotificationService
	currency  string
	log       logrus.FieldLogger
}

func NewCourseService(
	courses repository.CourseRepository,
	tags repository.TagRepository,
	purchases repository.PurchaseRepository,
	members MembershipChecker,
	notifier NotificationService,
	currency string,
	log logrus.FieldLogger,
) CourseService {
	return &courseService{
		courses:   courses,
		tags:      tags,
		purchases: purchases,
		members:   members,
		notifier:  notifier,
		currency:  strings.ToUpper(currency),
		log:       log.WithField("component", "courses"),
	}
}

func (s *courseService) Init(ctx context.Context, actor auth.Principal, title string) (*model.Course, error) {
	if !actor.Authenticated() {
		return nil, ErrUnauthorized
	}
	title = strings.TrimSpace(title)
	if title == "" || len(title) > 255 {
		return nil, invalidf("title must be between 1 and 255 characters")
	}
	sl, err := uniqueSlug(ctx, title, s.courses.SlugExists)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	c := &model.Course{
		ID:        uuid.NewString(),
		Title:     title,
		Slug:      sl,
		Currency:  s.currency,
		Status:    model.StatusDraft,
		AuthorID:  actor.UserID,
		Tags:      []model.Tag{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.courses.Create(ctx, c); err != nil {
		return nil, repoErr(err, ErrNotFound)
	}
	return c, nil
}

func (s *courseService) editable(ctx context.Context, actor auth.Principal, id string) (*model.Course, error) {
	if !actor.Authenticated() {
		return nil, ErrUnauthorized
	}
	if id == "" {
		return nil, ErrIDRequired
	}
	c, err := s.courses.FindByID(ctx, id)
	if err != nil {
		return nil, repoErr(err, ErrNotFound)
	}
	if !canEdit(actor, c.AuthorID) {
		return nil, ErrForbidden
	}
	return c, nil
}

func (s *courseService) Save(ctx context.Context, actor auth.Principal, id string, patch CoursePatch) (*model.Course, error) {
	patch.Title = trimmed(patch.Title)
	if err := validate(patch); err != nil {
		return nil, err
	}
	c, err := s.editable(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if patch.Title != nil {
		if *patch.Title == "" {
			return nil, invalidf("title is required")
		}
		c.Title = *patch.Title
	}
	if patch.Subtitle != nil {
		c.Subtitle = *patch.Subtitle
	}
	if patch.Summary != nil {
		c.Summary = *patch.Summary
	}
	if patch.Thumbnail != nil {
		c.ThumbnailURL = *patch.Thumbnail
	}
	if patch.Price != nil {
		c.Price = *patch.Price
	}
	if patch.Currency != nil {
		c.Currency = strings.ToUpper(*patch.Currency)
	}
	if patch.TagIDs != nil {
		tags, err := resolveTags(ctx, s.tags, *patch.TagIDs)
		if err != nil {
			return nil, err
		}
		c.Tags = tags
	}
	c.UpdatedAt = time.Now().UTC()
	if err := s.courses.Update(ctx, c); err != nil {
		return nil, repoErr(err, ErrNotFound)
	}
	return c, nil
}

func (s *courseService) Publish(ctx context.Context, actor auth.Principal, id string) (*model.Course, error) {
	c, err := s.editable(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if c.Status == model.StatusPublished {
		return c, nil
	}
	now := time.Now().UTC()
	if actor.IsAdmin() {
		c.Status = model.StatusPublished
		if c.PublishedAt == nil {
			c.PublishedAt = &now
		}
	} else {
		c.Status = model.StatusInReview
	}
	c.UpdatedAt = now
	if err := s.courses.Update(ctx, c); err != nil {
		return nil, repoErr(err, ErrNotFound)
	}
	if c.Status == model.StatusPublished {
		s.notifier.Notify(ctx, NotificationInput{
			UserID: c.AuthorID,
			Type:   model.NotifyCoursePublished,
			Title:  "Your course is published",
			Body:   c.Title,
			Link:   "/courses/" + c.Slug,
		})
	}
	return c, nil
}

func (s *courseService) Get(ctx context.Context, actor auth.Principal, ref string) (*model.Course, error) {
	if ref == "" {
		return nil, ErrIDRequired
	}
	c, err := s.courses.FindByID(ctx, ref)
	if errors.Is(err, repository.ErrNotFound) {
		c, err = s.courses.FindBySlug(ctx, ref)
	}
	if err != nil {
		return nil, repoErr(err, ErrNotFound)
	}
	if c.Status != model.StatusPublished && !canEdit(actor, c.AuthorID) {
		return nil, ErrNotFound
	}
	return c, nil
}

func (s *courseService) List(ctx context.Context, actor auth.Principal, q ContentQuery) (*Page[model.Course], error) {
	f, err := contentFilter(actor, q)
	if err != nil {
		return nil, err
	}
	pq := pageQuery(q.Limit, q.Offset)
	res, err := s.courses.List(ctx, f, pq)
	if err != nil {
		return nil, err
	}
	return toPage(res, pq), nil
}

func (s *courseService) Delete(ctx context.Context, actor auth.Principal, id string) error {
	if _, err := s.editable(ctx, actor, id); err != nil {
		return err
	}
	return repoErr(s.courses.Delete(ctx, id), ErrNotFound)
}

func (s *courseService) Enroll(ctx context.Context, actor auth.Principal, courseID string) (*model.Purchase, error) {
	if !actor.Authenticated() {
		return nil, ErrUnauthorized
	}
	if courseID == "" {
		return nil, ErrIDRequired
	}
	c, err := s.courses.FindByID(ctx, courseID)
	if err != nil {
		return nil, repoErr(err, ErrNotFound)
	}
	if c.Status != model.StatusPublished {
		return nil, ErrNotFound
	}
	existing, err := s.purchases.Find(ctx, actor.UserID, courseID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}
	if !c.IsFree() {
		member, err := s.members.IsMemberOfCourseCompany(ctx, actor.UserID, courseID)
		if err != nil {
			return nil, err
		}
		if !member {
			return nil, ErrPaymentRequired
		}
	}
	p := &model.Purchase{
		ID:        uuid.NewString(),
		UserID:    actor.UserID,
		CourseID:  courseID,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.purchases.Create(ctx, p); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return s.purchases.Find(ctx, actor.UserID, courseID)
		}
		return nil, err
	}
	if err := s.courses.IncrementEnrolled(ctx, courseID); err != nil {
		s.log.WithField("course_id", courseID).WithError(err).Warn("enrolment not counted")
	}
	return p, nil
}

func (s *courseService) Complete(ctx context.Context, actor auth.Principal, courseID string) (*model.Purchase, error) {
	if !actor.Authenticated() {
		return nil, ErrUnauthorized
	}
	p, err := s.purchases.Find(ctx, actor.UserID, courseID)
	if err != nil {
		return nil, repoErr(err, ErrNotFound)
	}
	if p.Completed {
		return p, nil
	}
	now := time.Now().UTC()
	p.Completed = true
	p.CompletedAt = &now
	if err := s.purchases.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *courseService) ListPurchases(ctx context.Context, actor auth.Principal) ([]model.Purchase, error) {
	if !actor.Authenticated() {
		return nil, ErrUnauthorized
	}
	ps, err := s.purchases.ListByUser(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	if ps == nil {
		ps = []model.Purchase{}
	}
	return ps, nil
}
