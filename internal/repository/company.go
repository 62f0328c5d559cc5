package repository

import (
	"context"

	"github.com/zero-filtre/zerofiltre-blog-backend-sub004/internal/model"
)

type CompanyRepository interface {
	Create(ctx context.Context, c *model.Company) error
	FindByID(ctx context.Context, id string) (*model.Company, error)
	List(ctx context.Context, pq PageQuery) (*PageResult[model.Company], error)
	// Delete removes the company with its memberships and course links.
	Delete(ctx context.Context, id string) error

	AddUser(ctx context.Context, cu *model.CompanyUser) error
	RemoveUser(ctx context.Context, companyID, userID string) error
	FindUser(ctx context.Context, companyID, userID string) (*model.CompanyUser, error)
	ListUsers(ctx context.Context, companyID string) ([]model.CompanyUser, error)

	LinkCourse(ctx context.Context, cc *model.CompanyCourse) error
	UnlinkCourse(ctx context.Context, companyID, courseID string) error
	ListCourses(ctx context.Context, companyID string) ([]model.CompanyCourse, error)
	// UserHasCourseAccess reports whether the user belongs to a company with an
	// active link to the course.
	UserHasCourseAccess(ctx context.Context, userID, courseID string) (bool, error)
}
