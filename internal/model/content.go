package model

import "time"

// Status is the editorial status shared by articles and courses.
type Status string

const (
	StatusDraft     Status = "DRAFT"
	StatusInReview  Status = "IN_REVIEW"
	StatusPublished Status = "PUBLISHED"
)

func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusInReview, StatusPublished:
		return true
	}
	return false
}

type Tag struct {
	ID        string    `json:"id" gorm:"primaryKey;size:36"`
	Name      string    `json:"name" gorm:"uniqueIndex;not null"`
	ColorCode string    `json:"color_code,omitempty" gorm:"size:16"`
	CreatedAt time.Time `json:"created_at"`
}

type Article struct {
	ID           string     `json:"id" gorm:"primaryKey;size:36"`
	Title        string     `json:"title" gorm:"not null"`
	Slug         string     `json:"slug" gorm:"uniqueIndex;not null"`
	Summary      string     `json:"summary"`
	Content      string     `json:"content,omitempty"`
	ThumbnailURL string     `json:"thumbnail,omitempty"`
	Status       Status     `json:"status" gorm:"size:16;index;not null"`
	Premium      bool       `json:"premium"`
	AuthorID     string     `json:"author_id" gorm:"size:36;index;not null"`
	ViewsCount   int64      `json:"views_count"`
	Tags         []Tag      `json:"tags" gorm:"many2many:article_tags;"`
	PublishedAt  *time.Time `json:"published_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

type Course struct {
	ID            string     `json:"id" gorm:"primaryKey;size:36"`
	Title         string     `json:"title" gorm:"not null"`
	Slug          string     `json:"slug" gorm:"uniqueIndex;not null"`
	Subtitle      string     `json:"subtitle,omitempty"`
	Summary       string     `json:"summary"`
	ThumbnailURL  string     `json:"thumbnail,omitempty"`
	Price         int64      `json:"price"`
	Currency      string     `json:"currency" gorm:"size:8"`
	Status        Status     `json:"status" gorm:"size:16;index;not null"`
	AuthorID      string     `json:"author_id" gorm:"size:36;index;not null"`
	EnrolledCount int64      `json:"enrolled_count"`
	Tags          []Tag      `json:"tags" gorm:"many2many:course_tags;"`
	PublishedAt   *time.Time `json:"published_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// IsFree reports whether the course can be enrolled in without payment.
func (c *Course) IsFree() bool { return c.Price <= 0 }

type ReactionAction string

const (
	ReactionClap ReactionAction = "CLAP"
	ReactionFire ReactionAction = "FIRE"
	ReactionLove ReactionAction = "LOVE"
	ReactionLike ReactionAction = "LIKE"
)

func (a ReactionAction) Valid() bool {
	switch a {
	case ReactionClap, ReactionFire, ReactionLove, ReactionLike:
		return true
	}
	return false
}

// Reaction targets exactly one of an article or a course.
type Reaction struct {
	ID        string         `json:"id" gorm:"primaryKey;size:36"`
	ArticleID *string        `json:"article_id,omitempty" gorm:"size:36;uniqueIndex:idx_reactions_article"`
	CourseID  *string        `json:"course_id,omitempty" gorm:"size:36;uniqueIndex:idx_reactions_course"`
	AuthorID  string         `json:"author_id" gorm:"size:36;not null;uniqueIndex:idx_reactions_article;uniqueIndex:idx_reactions_course"`
	Action    ReactionAction `json:"action" gorm:"size:16;not null;uniqueIndex:idx_reactions_article;uniqueIndex:idx_reactions_course"`
	CreatedAt time.Time      `json:"created_at"`
}

type TargetKind string

const (
	TargetArticle TargetKind = "article"
	TargetCourse  TargetKind = "course"
)

// ReactionTarget addresses the content a reaction belongs to.
type ReactionTarget struct {
	Kind TargetKind
	ID   string
}
