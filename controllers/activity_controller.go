package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/Atharva2604/Kuro/models"
	"github.com/Atharva2604/Kuro/utils"
)

// ActivityController serves the per-user activity feed.
type ActivityController struct {
	db *gorm.DB
}

// NewActivityController creates a new ActivityController instance.
func NewActivityController(db *gorm.DB) *ActivityController {
	return &ActivityController{db: db}
}

// ListActivity returns the caller's own activity, newest first.
func (a *ActivityController) ListActivity(ctx *gin.Context) {
	user, ok := requireUser(ctx)
	if !ok {
		return
	}

	limit := parseLimit(ctx.Query("limit"), 50, 500)

	logs := make([]models.ActivityLog, 0)
	if err := a.db.WithContext(ctx.Request.Context()).
		Where("user_id = ?", user.ID).
		Order("created_at DESC").
		Limit(limit).
		Find(&logs).Error; err != nil {
		utils.Detail(ctx, http.StatusInternalServerError, "Failed to list activity")
		return
	}
	ctx.JSON(http.StatusOK, logs)
}

func parseLimit(raw string, def, max int) int {
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return def
	}
	if n > max {
		return max
	}
	return n
}
