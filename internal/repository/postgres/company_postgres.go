package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/zero-filtre/zerofiltre-blog-backend-sub004/internal/model"
	"github.com/zero-filtre/zerofiltre-blog-backend-sub004/internal/repository"
)

// CompanyPostgres is the gorm implementation of repository.CompanyRepository.
type CompanyPostgres struct {
	db *gorm.DB
}

func NewCompanyPostgres(db *gorm.DB) *CompanyPostgres {
	return &CompanyPostgres{db: db}
}

var _ repository.CompanyRepository = (*CompanyPostgres)(nil)

func (r *CompanyPostgres) Create(ctx context.Context, c *model.Company) error {
	return mapErr(r.db.WithContext(ctx).Create(c).Error)
}

func (r *CompanyPostgres) FindByID(ctx context.Context, id string) (*model.Company, error) {
	var c model.Company
	if err := r.db.WithContext(ctx).First(&c, "id = ?", id).Error; err != nil {
		return nil, mapErr(err)
	}
	return &c, nil
}

func (r *CompanyPostgres) List(ctx context.Context, pq repository.PageQuery) (*repository.PageResult[model.Company], error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&model.Company{}).Count(&total).Error; err != nil {
		return nil, err
	}
	items := make([]model.Company, 0)
	err := r.db.WithContext(ctx).
		Order("company_name, id").
		Limit(pq.Limit).Offset(pq.Offset).
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return &repository.PageResult[model.Company]{Items: items, Total: int(total)}, nil
}

func (r *CompanyPostgres) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&model.CompanyUser{}, "company_id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Delete(&model.CompanyCourse{}, "company_id = ?", id).Error; err != nil {
			return err
		}
		return affected(tx.Delete(&model.Company{}, "id = ?", id))
	})
}

func (r *CompanyPostgres) AddUser(ctx context.Context, cu *model.CompanyUser) error {
	return mapErr(r.db.WithContext(ctx).Create(cu).Error)
}

func (r *CompanyPostgres) RemoveUser(ctx context.Context, companyID, userID string) error {
	return affected(r.db.WithContext(ctx).
		Delete(&model.CompanyUser{}, "company_id = ? AND user_id = ?", companyID, userID))
}

func (r *CompanyPostgres) FindUser(ctx context.Context, companyID, userID string) (*model.CompanyUser, error) {
	var cu model.CompanyUser
	err := r.db.WithContext(ctx).
		First(&cu, "company_id = ? AND user_id = ?", companyID, userID).Error
	if err != nil {
		return nil, mapErr(err)
	}
	return &cu, nil
}

func (r *CompanyPostgres) ListUsers(ctx context.Context, companyID string) ([]model.CompanyUser, error) {
	items := make([]model.CompanyUser, 0)
	err := r.db.WithContext(ctx).
		Where("company_id = ?", companyID).
		Order("created_at").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *CompanyPostgres) LinkCourse(ctx context.Context, cc *model.CompanyCourse) error {
	return mapErr(r.db.WithContext(ctx).Create(cc).Error)
}

func (r *CompanyPostgres) UnlinkCourse(ctx context.Context, companyID, courseID string) error {
	return affected(r.db.WithContext(ctx).
		Delete(&model.CompanyCourse{}, "company_id = ? AND course_id = ?", companyID, courseID))
}

func (r *CompanyPostgres) ListCourses(ctx context.Context, companyID string) ([]model.CompanyCourse, error) {
	items := make([]model.CompanyCourse, 0)
	err := r.db.WithContext(ctx).
		Where("company_id = ?", companyID).
		Order("created_at").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *CompanyPostgres) UserHasCourseAccess(ctx context.Context, userID, courseID string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Table("company_courses AS cc").
		Joins("JOIN company_users AS cu ON cu.company_id = cc.company_id").
		Where("cu.user_id = ? AND cc.course_id = ? AND cc.active = ?", userID, courseID, true).
		Count(&n).Error
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
