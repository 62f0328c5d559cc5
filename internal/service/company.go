package service

import (
	"context"
	"errors"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/zero-filtre/zerofiltre-blog-backend-sub004/internal/auth"
	"github.com/zero-filtre/zerofiltre-blog-backend-sub004/internal/model"
	"github.com/zero-filtre/zerofiltre-blog-backend-sub004/internal/repository"
)

type CompanyInput struct {
	Name  string `json:"company_name" validate:"required,max=255"`
	Siren string `json:"siren" validate:"required,siren"`
}

// CompanyService manages companies, their members and the courses they provide.
// Platform admins may do everything; company members are limited by their role.
type CompanyService interface {
	Create(ctx context.Context, actor auth.Principal, in CompanyInput) (*model.Company, error)
	Get(ctx context.Context, actor auth.Principal, id string) (*model.Company, error)
	List(ctx context.Context, actor auth.Principal, limit, offset int) (*Page[model.Company], error)
	Delete(ctx context.Context, actor auth.Principal, id string) error

	AddUser(ctx context.Context, actor auth.Principal, companyID, userID string, role model.CompanyRole) (*model.CompanyUser, error)
	RemoveUser(ctx context.Context, actor auth.Principal, companyID, userID string) error
	ListUsers(ctx context.Context, actor auth.Principal, companyID string) ([]model.CompanyUser, error)

	LinkCourse(ctx context.Context, actor auth.Principal, companyID, courseID string) (*model.CompanyCourse, error)
	UnlinkCourse(ctx context.Context, actor auth.Principal, companyID, courseID string) error
	ListCourses(ctx context.Context, actor auth.Principal, companyID string) ([]model.CompanyCourse, error)

	MembershipChecker
}

type companyService struct {
	companies repository.CompanyRepository
	users     repository.UserRepository
	courses   repository.CourseRepository
	notifier  NotificationService
}

func NewCompanyService(companies repository.CompanyRepository, users repository.UserRepository, courses repository.CourseRepository, notifier NotificationService) CompanyService {
	return &companyService{companies: companies, users: users, courses: courses, notifier: notifier}
}

var (
	companyAdmins  = []model.CompanyRole{model.CompanyRoleAdmin}
	companyEditors = []model.CompanyRole{model.CompanyRoleAdmin, model.CompanyRoleEditor}
	companyMembers = []model.CompanyRole{model.CompanyRoleAdmin, model.CompanyRoleEditor, model.CompanyRoleViewer}
)

// authorize checks that the company exists and that actor may act on it with one of roles.
func (s *companyService) authorize(ctx context.Context, actor auth.Principal, companyID string, roles []model.CompanyRole) (*model.Company, error) {
	if !actor.Authenticated() {
		return nil, ErrUnauthorized
	}
	if companyID == "" {
		return nil, ErrIDRequired
	}
	c, err := s.companies.FindByID(ctx, companyID)
	if err != nil {
		return nil, repoErr(err, ErrNotFound)
	}
	if actor.IsAdmin() {
		return c, nil
	}
	cu, err := s.companies.FindUser(ctx, companyID, actor.UserID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrForbidden
	}
	if err != nil {
		return nil, err
	}
	if !slices.Contains(roles, cu.Role) {
		return nil, ErrForbidden
	}
	return c, nil
}

func requireAdmin(actor auth.Principal) error {
	if !actor.Authenticated() {
		return ErrUnauthorized
	}
	if !actor.IsAdmin() {
		return ErrForbidden
	}
	return nil
}

func (s *companyService) Create(ctx context.Context, actor auth.Principal, in CompanyInput) (*model.Company, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	in.Name = strings.TrimSpace(in.Name)
	in.Siren = strings.ReplaceAll(in.Siren, " ", "")
	if err := validate(in); err != nil {
		return nil, err
	}
	c := &model.Company{
		ID:          uuid.NewString(),
		CompanyName: in.Name,
		Siren:       in.Siren,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.companies.Create(ctx, c); err != nil {
		return nil, repoErr(err, ErrNotFound)
	}
	return c, nil
}

func (s *companyService) Get(ctx context.Context, actor auth.Principal, id string) (*model.Company, error) {
	return s.authorize(ctx, actor, id, companyMembers)
}

func (s *companyService) List(ctx context.Context, actor auth.Principal, limit, offset int) (*Page[model.Company], error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	pq := pageQuery(limit, offset)
	res, err := s.companies.List(ctx, pq)
	if err != nil {
		return nil, err
	}
	return toPage(res, pq), nil
}

func (s *companyService) Delete(ctx context.Context, actor auth.Principal, id string) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	return repoErr(s.companies.Delete(ctx, id), ErrNotFound)
}

func (s *companyService) AddUser(ctx context.Context, actor auth.Principal, companyID, userID string, role model.CompanyRole) (*model.CompanyUser, error) {
	if !role.Valid() {
		return nil, invalidf("unknown company role %q", role)
	}
	c, err := s.authorize(ctx, actor, companyID, companyAdmins)
	if err != nil {
		return nil, err
	}
	if _, err := s.users.FindByID(ctx, userID); err != nil {
		return nil, repoErr(err, ErrUserNotFound)
	}
	cu := &model.CompanyUser{
		CompanyID: companyID,
		UserID:    userID,
		Role:      role,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.companies.AddUser(ctx, cu); err != nil {
		return nil, repoErr(err, ErrNotFound)
	}
	s.notifier.Notify(ctx, NotificationInput{
		UserID: userID,
		Type:   model.NotifyCompanyMember,
		Title:  "You joined " + c.CompanyName,
		Body:   "Role: " + string(role),
		Link:   "/companies/" + companyID,
	})
	return cu, nil
}

func (s *companyService) RemoveUser(ctx context.Context, actor auth.Principal, companyID, userID string) error {
	if _, err := s.authorize(ctx, actor, companyID, companyAdmins); err != nil {
		return err
	}
	return repoErr(s.companies.RemoveUser(ctx, companyID, userID), ErrUserNotFound)
}

func (s *companyService) ListUsers(ctx context.Context, actor auth.Principal, companyID string) ([]model.CompanyUser, error) {
	if _, err := s.authorize(ctx, actor, companyID, companyAdmins); err != nil {
		return nil, err
	}
	users, err := s.companies.ListUsers(ctx, companyID)
	if err != nil {
		return nil, err
	}
	if users == nil {
		users = []model.CompanyUser{}
	}
	return users, nil
}

func (s *companyService) LinkCourse(ctx context.Context, actor auth.Principal, companyID, courseID string) (*model.CompanyCourse, error) {
	if _, err := s.authorize(ctx, actor, companyID, companyEditors); err != nil {
		return nil, err
	}
	if _, err := s.courses.FindByID(ctx, courseID); err != nil {
		return nil, repoErr(err, ErrNotFound)
	}
	cc := &model.CompanyCourse{
		CompanyID: companyID,
		CourseID:  courseID,
		Active:    true,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.companies.LinkCourse(ctx, cc); err != nil {
		return nil, repoErr(err, ErrNotFound)
	}
	return cc, nil
}

func (s *companyService) UnlinkCourse(ctx context.Context, actor auth.Principal, companyID, courseID string) error {
	if _, err := s.authorize(ctx, actor, companyID, companyEditors); err != nil {
		return err
	}
	return repoErr(s.companies.UnlinkCourse(ctx, companyID, courseID), ErrNotFound)
}

func (s *companyService) ListCourses(ctx context.Context, actor auth.Principal, companyID string) ([]model.CompanyCourse, error) {
	if _, err := s.authorize(ctx, actor, companyID, companyEditors); err != nil {
		return nil, err
	}
	courses, err := s.companies.ListCourses(ctx, companyID)
	if err != nil {
		return nil, err
	}
	if courses == nil {
		courses = []model.CompanyCourse{}
	}
	return courses, nil
}

func (s *companyService) IsMemberOfCourseCompany(ctx context.Context, userID, courseID string) (bool, error) {
	if userID == "" || courseID == "" {
		return false, nil
	}
	return s.companies.UserHasCourseAccess(ctx, userID, courseID)
}
