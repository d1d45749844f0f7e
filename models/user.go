package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Role gates the admin surface. The first registered account becomes RoleAdmin.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleUser
}

// User is an account. Passwords are stored as bcrypt hashes only; OAuth-only
// accounts keep an empty PasswordHash and carry Provider/ProviderID instead.
type User struct {
	ID           string    `gorm:"primaryKey;size:36" json:"id"`
	Email        string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"size:255" json:"-"`
	Name         string    `gorm:"size:128;not null" json:"name"`
	Role         Role      `gorm:"size:16;not null;default:'user'" json:"role"`
	StorageUsed  int64     `gorm:"not null;default:0" json:"storage_used"`
	StorageLimit int64     `gorm:"not null" json:"storage_limit"`
	Provider     string    `gorm:"size:32" json:"-"`
	ProviderID   string    `gorm:"size:255" json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// BeforeCreate assigns a UUID primary key when none was provided.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}
