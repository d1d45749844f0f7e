package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// File is the metadata row for one stored object. Content lives in the blob
// store under ObjectKey; Type is the coarse category derived from the name's
// extension (document, image, video, ...), ContentType the HTTP media type.
type File struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	Name        string    `gorm:"size:255;not null" json:"name"`
	Size        int64     `gorm:"not null" json:"size"`
	Type        string    `gorm:"size:32;not null" json:"type"`
	ContentType string    `gorm:"size:128" json:"content_type"`
	FolderID    *string   `gorm:"size:36;index" json:"folder_id"`
	OwnerID     string    `gorm:"size:36;index;not null" json:"owner_id"`
	ObjectKey   string    `gorm:"size:255;not null" json:"-"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// BeforeCreate assigns a UUID primary key when none was provided.
func (f *File) BeforeCreate(tx *gorm.DB) error {
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	return nil
}
