package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/zero-filtre/zerofiltre-blog-backend-sub004/internal/model"
	"github.com/zero-filtre/zerofiltre-blog-backend-sub004/internal/repository"
)

type MockCompanyRepository struct {
	mock.Mock
}

func (m *MockCompanyRepository) Create(ctx context.Context, c *model.Company) error {
	return m.Called(ctx, c).Error(0)
}

func (m *MockCompanyRepository) FindByID(ctx context.Context, id string) (*model.Company, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Company), args.Error(1)
}

func (m *MockCompanyRepository) List(ctx context.Context, pq repository.PageQuery) (*repository.PageResult[model.Company], error) {
	args := m.Called(ctx, pq)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.PageResult[model.Company]), args.Error(1)
}

func (m *MockCompanyRepository) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockCompanyRepository) AddUser(ctx context.Context, cu *model.CompanyUser) error {
	return m.Called(ctx, cu).Error(0)
}

func (m *MockCompanyRepository) RemoveUser(ctx context.Context, companyID, userID string) error {
	return m.Called(ctx, companyID, userID).Error(0)
}

func (m *MockCompanyRepository) FindUser(ctx context.Context, companyID, userID string) (*model.CompanyUser, error) {
	args := m.Called(ctx, companyID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CompanyUser), args.Error(1)
}

func (m *MockCompanyRepository) ListUsers(ctx context.Context, companyID string) ([]model.CompanyUser, error) {
	args := m.Called(ctx, companyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.CompanyUser), args.Error(1)
}

func (m *MockCompanyRepository) LinkCourse(ctx context.Context, cc *model.CompanyCourse) error {
	return m.Called(ctx, cc).Error(0)
}

func (m *MockCompanyRepository) UnlinkCourse(ctx context.Context, companyID, courseID string) error {
	return m.Called(ctx, companyID, courseID).Error(0)
}

func (m *MockCompanyRepository) ListCourses(ctx context.Context, companyID string) ([]model.CompanyCourse, error) {
	args := m.Called(ctx, companyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.CompanyCourse), args.Error(1)
}

func (m *MockCompanyRepository) UserHasCourseAccess(ctx context.Context, userID, courseID string) (bool, error) {
	args := m.Called(ctx, userID, courseID)
	return args.Bool(0), args.Error(1)
}
