package model

import "time"

// Media represents a file stored in object storage (article images, course thumbnails,
// attachments). Only metadata lives in the database.
type Media struct {
	ID          string    `json:"id" gorm:"primaryKey;size:36"`
	Filename    string    `json:"filename" gorm:"not null"`
	StoragePath string    `json:"storage_path" gorm:"not null;uniqueIndex"`
	Size        int64     `json:"size" gorm:"not null"`
	ContentType string    `json:"content_type" gorm:"not null"`
	OwnerID     string    `json:"owner_id" gorm:"size:36;index"`
	URL         string    `json:"url,omitempty" gorm:"-"`
	CreatedAt   time.Time `json:"created_at"`
}

func (Media) TableName() string { return "media" }

// Video is a Vimeo upload created through the API. ID is the Vimeo video id; the row
// records who may delete it.
type Video struct {
	ID        string    `json:"id" gorm:"primaryKey;size:64"`
	Name      string    `json:"name" gorm:"not null"`
	OwnerID   string    `json:"owner_id" gorm:"size:36;index;not null"`
	CreatedAt time.Time `json:"created_at"`
}
