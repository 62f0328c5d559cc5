package model

import "time"

type CompanyRole string

const (
	CompanyRoleAdmin  CompanyRole = "ADMIN"
	CompanyRoleEditor CompanyRole = "EDITOR"
	CompanyRoleViewer CompanyRole = "VIEWER"
)

func (r CompanyRole) Valid() bool {
	switch r {
	case CompanyRoleAdmin, CompanyRoleEditor, CompanyRoleViewer:
		return true
	}
	return false
}

type Company struct {
	ID          string    `json:"id" gorm:"primaryKey;size:36"`
	CompanyName string    `json:"company_name" gorm:"not null"`
	Siren       string    `json:"siren" gorm:"size:9;uniqueIndex;not null"`
	CreatedAt   time.Time `json:"created_at"`
}

type CompanyUser struct {
	CompanyID string      `json:"company_id" gorm:"primaryKey;size:36"`
	UserID    string      `json:"user_id" gorm:"primaryKey;size:36"`
	Role      CompanyRole `json:"role" gorm:"size:16;not null"`
	CreatedAt time.Time   `json:"created_at"`
}

type CompanyCourse struct {
	CompanyID string    `json:"company_id" gorm:"primaryKey;size:36"`
	CourseID  string    `json:"course_id" gorm:"primaryKey;size:36"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}
