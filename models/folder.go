package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Folder is a named container in a user's tree. ParentID is nil at the root.
// Sibling names are kept unique per owner by the controller, not the schema,
// so renames into a taken name fail with a clean 400 instead of a driver error.
type Folder struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	Name      string    `gorm:"size:255;not null" json:"name"`
	ParentID  *string   `gorm:"size:36;index" json:"parent_id"`
	OwnerID   string    `gorm:"size:36;index;not null" json:"owner_id"`
	CreatedAt time.Time `json:"created_at"`
}

// BeforeCreate assigns a UUID primary key when none was provided.
func (f *Folder) BeforeCreate(tx *gorm.DB) error {
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	return nil
}
