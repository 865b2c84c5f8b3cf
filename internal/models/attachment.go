package model

import "time"

// Attachment is immutable after creation. Path and Thumb hold public-facing
// paths; Thumb is nil when the upload was not a raster image or thumbnail
// generation was skipped.
type Attachment struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	TaskID    string    `gorm:"size:36;not null;index" json:"task_id"`
	UserID    string    `gorm:"size:36;not null" json:"user_id"`
	Name      string    `gorm:"not null" json:"name"`
	Path      string    `gorm:"not null" json:"path"`
	Thumb     *string   `json:"thumb"`
	Type      string    `gorm:"not null" json:"type"`
	Size      int64     `gorm:"not null" json:"size"`
	CreatedAt time.Time `json:"created_at"`
}
