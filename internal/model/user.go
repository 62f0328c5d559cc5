package model

import "time"

type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// LoginProvider identifies how an account authenticates besides its password.
type LoginProvider string

const (
	ProviderNone          LoginProvider = ""
	ProviderGitHub        LoginProvider = "GITHUB"
	ProviderStackOverflow LoginProvider = "STACKOVERFLOW"
)

// User is an account. PasswordHash is empty for accounts created through social login
// until the owner sets a password.
type User struct {
	ID             string        `json:"id" gorm:"primaryKey;size:36"`
	FullName       string        `json:"full_name" gorm:"not null"`
	Email          string        `json:"email,omitempty" gorm:"uniqueIndex:idx_users_email,where:email <> ''"`
	PasswordHash   string        `json:"-"`
	Role           Role          `json:"role" gorm:"size:16;not null;default:USER"`
	Active         bool          `json:"active"`
	LoginProvider  LoginProvider `json:"login_provider,omitempty" gorm:"size:32;uniqueIndex:idx_users_social"`
	SocialID       *string       `json:"-" gorm:"uniqueIndex:idx_users_social"`
	SocialLink     string        `json:"social_link,omitempty"`
	ProfilePicture string        `json:"profile_picture,omitempty"`
	Bio            string        `json:"bio,omitempty"`
	Language       string        `json:"language,omitempty" gorm:"size:8"`
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`
}

func (u *User) IsAdmin() bool { return u.Role == RoleAdmin }

// Public strips private fields before exposing a profile to other users.
func (u User) Public() User {
	u.Email = ""
	u.PasswordHash = ""
	return u
}

type TokenPurpose string

const (
	PurposeAccountVerification TokenPurpose = "ACCOUNT_VERIFICATION"
	PurposePasswordReset       TokenPurpose = "PASSWORD_RESET"
)

// VerificationToken is a single-use secret mailed to a user.
type VerificationToken struct {
	ID        string       `json:"id" gorm:"primaryKey;size:36"`
	UserID    string       `json:"user_id" gorm:"size:36;index;not null"`
	Token     string       `json:"-" gorm:"uniqueIndex;not null"`
	Purpose   TokenPurpose `json:"purpose" gorm:"size:32;not null"`
	ExpiresAt time.Time    `json:"expires_at"`
	UsedAt    *time.Time   `json:"used_at,omitempty"`
	CreatedAt time.Time    `json:"created_at"`
}

// Usable reports whether the token can still be redeemed at now.
func (t *VerificationToken) Usable(now time.Time) bool {
	return t.UsedAt == nil && now.Before(t.ExpiresAt)
}
