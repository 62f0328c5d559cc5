package model

import "time"

// Purchase grants a user access to a course. At most one per user/course pair.
type Purchase struct {
	ID          string     `json:"id" gorm:"primaryKey;size:36"`
	UserID      string     `json:"user_id" gorm:"size:36;not null;uniqueIndex:idx_purchases_user_course"`
	CourseID    string     `json:"course_id" gorm:"size:36;not null;uniqueIndex:idx_purchases_user_course"`
	PaymentID   *string    `json:"payment_id,omitempty" gorm:"size:36"`
	Completed   bool       `json:"completed"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

type PaymentProvider string

const (
	PaymentStripe   PaymentProvider = "STRIPE"
	PaymentNotchPay PaymentProvider = "NOTCHPAY"
)

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "PENDING"
	PaymentCompleted PaymentStatus = "COMPLETED"
	PaymentFailed    PaymentStatus = "FAILED"
	PaymentCanceled  PaymentStatus = "CANCELED"
)

// Payment tracks one checkout attempt. Reference is ours and unique; ProviderPaymentID
// is the gateway's own id (payment intent, NotchPay transaction reference).
type Payment struct {
	ID                string          `json:"id" gorm:"primaryKey;size:36"`
	Reference         string          `json:"reference" gorm:"uniqueIndex;not null"`
	Provider          PaymentProvider `json:"provider" gorm:"size:16;not null"`
	ProviderPaymentID string          `json:"provider_payment_id,omitempty" gorm:"index"`
	UserID            string          `json:"user_id" gorm:"size:36;index;not null"`
	CourseID          string          `json:"course_id" gorm:"size:36;not null"`
	Amount            int64           `json:"amount"`
	Currency          string          `json:"currency" gorm:"size:8"`
	Status            PaymentStatus   `json:"status" gorm:"size:16;not null"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

type NotificationType string

const (
	NotifyArticlePublished NotificationType = "ARTICLE_PUBLISHED"
	NotifyCoursePublished  NotificationType = "COURSE_PUBLISHED"
	NotifyReaction         NotificationType = "REACTION"
	NotifyPaymentCompleted NotificationType = "PAYMENT_COMPLETED"
	NotifyCompanyMember    NotificationType = "COMPANY_MEMBERSHIP"
)

type Notification struct {
	ID        string           `json:"id" gorm:"primaryKey;size:36"`
	UserID    string           `json:"user_id" gorm:"size:36;index;not null"`
	Type      NotificationType `json:"type" gorm:"size:32;not null"`
	Title     string           `json:"title"`
	Body      string           `json:"body"`
	Link      string           `json:"link,omitempty"`
	Read      bool             `json:"read"`
	CreatedAt time.Time        `json:"created_at"`
}

// All lists every persisted entity, in dependency order. Used by AutoMigrate in tests.
func All() []any {
	return []any{
		&User{}, &VerificationToken{}, &Tag{}, &Article{}, &Course{}, &Reaction{},
		&Company{}, &CompanyUser{}, &CompanyCourse{}, &Purchase{}, &Payment{},
		&Notification{}, &Media{}, &Video{},
	}
}
