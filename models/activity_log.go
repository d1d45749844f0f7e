package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Action is the closed set of verbs the activity feed records.
type Action string

const (
	ActionRegister       Action = "register"
	ActionLogin          Action = "login"
	ActionCreate         Action = "create"
	ActionRename         Action = "rename"
	ActionDelete         Action = "delete"
	ActionUpload         Action = "upload"
	ActionDownload       Action = "download"
	ActionMove           Action = "move"
	ActionShare          Action = "share"
	ActionUnshare        Action = "unshare"
	ActionSharedDownload Action = "shared_download"
	ActionUpdate         Action = "update"
)

// Resource is the closed set of things an Action can apply to.
type Resource string

const (
	ResourceAccount Resource = "account"
	ResourceFolder  Resource = "folder"
	ResourceFile    Resource = "file"
	ResourceUser    Resource = "user"
)

// ActivityLog is one immutable audit row. UserName is denormalized so the
// feed survives account deletion; anonymous share downloads use the literal
// name "Anonymous" with an empty UserID.
type ActivityLog struct {
	ID           string    `gorm:"primaryKey;size:36" json:"id"`
	UserID       string    `gorm:"size:36;index" json:"user_id"`
	UserName     string    `gorm:"size:128;not null" json:"user_name"`
	Action       Action    `gorm:"size:32;not null" json:"action"`
	ResourceType Resource  `gorm:"size:32;not null" json:"resource_type"`
	ResourceName string    `gorm:"size:255" json:"resource_name"`
	IPAddress    string    `gorm:"size:45" json:"ip_address"`
	CreatedAt    time.Time `json:"created_at"`
}

// BeforeCreate assigns a UUID primary key when none was provided.
func (a *ActivityLog) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}
