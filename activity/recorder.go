package activity

import (
	"context"

	"gorm.io/gorm"

	"github.com/Atharva2604/Kuro/models"
	"github.com/Atharva2604/Kuro/utils"
)

// Recorder appends rows to the activity feed. Recording is best effort: an
// insert failure is logged and swallowed so audit trouble never fails the
// operation being audited.
type Recorder struct {
	db *gorm.DB
}

// NewRecorder creates a Recorder over the given database handle.
func NewRecorder(db *gorm.DB) *Recorder {
	return &Recorder{db: db}
}

// Record writes one immutable feed row. Anonymous actors (public share
// downloads) pass an empty userID and the display name "Anonymous".
func (r *Recorder) Record(ctx context.Context, userID, userName string, action models.Action, resource models.Resource, resourceName, ip string) {
	entry := models.ActivityLog{
		UserID:       userID,
		UserName:     userName,
		Action:       action,
		ResourceType: resource,
		ResourceName: resourceName,
		IPAddress:    ip,
	}
	if err := r.db.WithContext(ctx).Create(&entry).Error; err != nil {
		if utils.Sugar != nil {
			utils.Sugar.Warnf("activity record failed action=%s resource=%s err=%v", action, resource, err)
		}
	}
}
