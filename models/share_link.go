package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ShareLink grants anonymous access to one file through an unguessable token.
// The token never changes after creation. FileName is a snapshot taken at
// creation so audit trails stay readable after the file itself is gone.
// PasswordHash is nil for open links; ExpiresAt nil means the link never
// expires. AccessCount only moves forward, and only on a fully successful
// redemption.
type ShareLink struct {
	ID           string     `gorm:"primaryKey;size:36" json:"id"`
	Token        string     `gorm:"size:64;uniqueIndex;not null" json:"token"`
	FileID       string     `gorm:"size:36;index;not null" json:"file_id"`
	FileName     string     `gorm:"size:255;not null" json:"file_name"`
	OwnerID      string     `gorm:"size:36;index;not null" json:"owner_id"`
	PasswordHash *string    `gorm:"size:255" json:"-"`
	ExpiresAt    *time.Time `json:"expires_at"`
	AccessCount  int64      `gorm:"not null;default:0" json:"access_count"`
	CreatedAt    time.Time  `json:"created_at"`
}

// BeforeCreate assigns a UUID primary key when none was provided.
func (s *ShareLink) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}
