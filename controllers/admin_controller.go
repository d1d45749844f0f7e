package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/Atharva2604/Kuro/activity"
	"github.com/Atharva2604/Kuro/models"
	"github.com/Atharva2604/Kuro/storage"
	"github.com/Atharva2604/Kuro/utils"
)

const statsCacheKey = "kuro:admin:stats"

// AdminController covers user administration and deployment-wide statistics.
// Every route behind it already passed middleware.AdminRequired.
type AdminController struct {
	db       *gorm.DB
	blobs    *storage.Blobs
	activity *activity.Recorder
}

// NewAdminController creates a new AdminController instance.
func NewAdminController(db *gorm.DB, blobs *storage.Blobs, recorder *activity.Recorder) *AdminController {
	return &AdminController{db: db, blobs: blobs, activity: recorder}
}

// ListUsers returns every account, oldest first.
func (a *AdminController) ListUsers(ctx *gin.Context) {
	users := make([]models.User, 0)
	if err := a.db.WithContext(ctx.Request.Context()).Order("created_at ASC").Find(&users).Error; err != nil {
		utils.Detail(ctx, http.StatusInternalServerError, "Failed to list users")
		return
	}
	ctx.JSON(http.StatusOK, users)
}

// UpdateUser changes a user's role and/or storage limit.
func (a *AdminController) UpdateUser(ctx *gin.Context) {
	var req struct {
		Role         *string `json:"role"`
		StorageLimit *int64  `json:"storage_limit"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Detail(ctx, http.StatusBadRequest, "Invalid request payload")
		return
	}

	admin, ok := requireUser(ctx)
	if !ok {
		return
	}

	rctx := ctx.Request.Context()

	var user models.User
	if err := a.db.WithContext(rctx).First(&user, "id = ?", ctx.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Detail(ctx, http.StatusNotFound, "User not found")
		} else {
			utils.Detail(ctx, http.StatusInternalServerError, "Failed to load user")
		}
		return
	}

	updates := map[string]interface{}{}
	if req.Role != nil {
		role := models.Role(*req.Role)
		if !role.Valid() {
			utils.Detail(ctx, http.StatusBadRequest, "Invalid role")
			return
		}
		updates["role"] = role
	}
	if req.StorageLimit != nil {
		if *req.StorageLimit < 0 {
			utils.Detail(ctx, http.StatusBadRequest, "Invalid storage limit")
			return
		}
		updates["storage_limit"] = *req.StorageLimit
	}

	if len(updates) > 0 {
		if err := a.db.WithContext(rctx).Model(&user).Updates(updates).Error; err != nil {
			utils.Detail(ctx, http.StatusInternalServerError, "Failed to update user")
			return
		}
		utils.InvalidateByPrefix(statsCacheKey)
	}

	a.activity.Record(rctx, admin.ID, admin.Name, models.ActionUpdate, models.ResourceUser, user.Email, ctx.ClientIP())

	ctx.JSON(http.StatusOK, gin.H{"message": "User updated"})
}

// DeleteUser removes an account and everything it owns: blobs (best-effort),
// files, folders, share links, and activity rows.
func (a *AdminController) DeleteUser(ctx *gin.Context) {
	admin, ok := requireUser(ctx)
	if !ok {
		return
	}

	rctx := ctx.Request.Context()

	var user models.User
	if err := a.db.WithContext(rctx).First(&user, "id = ?", ctx.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Detail(ctx, http.StatusNotFound, "User not found")
		} else {
			utils.Detail(ctx, http.StatusInternalServerError, "Failed to load user")
		}
		return
	}

	if user.ID == admin.ID {
		utils.Detail(ctx, http.StatusBadRequest, "Cannot delete yourself")
		return
	}

	var files []models.File
	if err := a.db.WithContext(rctx).Where("owner_id = ?", user.ID).Find(&files).Error; err != nil {
		utils.Detail(ctx, http.StatusInternalServerError, "Failed to delete user")
		return
	}
	for i := range files {
		_ = a.blobs.Remove(rctx, files[i].ObjectKey)
	}

	if err := a.db.WithContext(rctx).Delete(&models.File{}, "owner_id = ?", user.ID).Error; err != nil {
		utils.Detail(ctx, http.StatusInternalServerError, "Failed to delete user")
		return
	}
	if err := a.db.WithContext(rctx).Delete(&models.Folder{}, "owner_id = ?", user.ID).Error; err != nil {
		utils.Detail(ctx, http.StatusInternalServerError, "Failed to delete user")
		return
	}
	if err := a.db.WithContext(rctx).Delete(&models.ShareLink{}, "owner_id = ?", user.ID).Error; err != nil {
		utils.Detail(ctx, http.StatusInternalServerError, "Failed to delete user")
		return
	}
	if err := a.db.WithContext(rctx).Delete(&models.ActivityLog{}, "user_id = ?", user.ID).Error; err != nil {
		utils.Detail(ctx, http.StatusInternalServerError, "Failed to delete user")
		return
	}
	if err := a.db.WithContext(rctx).Delete(&models.User{}, "id = ?", user.ID).Error; err != nil {
		utils.Detail(ctx, http.StatusInternalServerError, "Failed to delete user")
		return
	}

	utils.InvalidateByPrefix(statsCacheKey)

	a.activity.Record(rctx, admin.ID, admin.Name, models.ActionDelete, models.ResourceUser, user.Email, ctx.ClientIP())

	ctx.JSON(http.StatusOK, gin.H{"message": "User deleted"})
}

// Stats returns deployment-wide totals plus the ten most recent activity
// rows, cached briefly to keep the dashboard cheap.
func (a *AdminController) Stats(ctx *gin.Context) {
	if b, ok := utils.CacheGetBytes(statsCacheKey); ok {
		ctx.Data(http.StatusOK, "application/json", b)
		return
	}

	rctx := ctx.Request.Context()

	var totalUsers, totalFiles, totalFolders, totalStorage int64
	if err := a.db.WithContext(rctx).Model(&models.User{}).Count(&totalUsers).Error; err != nil {
		totalUsers = 0
	}
	if err := a.db.WithContext(rctx).Model(&models.File{}).Count(&totalFiles).Error; err != nil {
		totalFiles = 0
	}
	if err := a.db.WithContext(rctx).Model(&models.Folder{}).Count(&totalFolders).Error; err != nil {
		totalFolders = 0
	}
	if err := a.db.WithContext(rctx).Model(&models.User{}).
		Select("COALESCE(SUM(storage_used),0)").
		Scan(&totalStorage).Error; err != nil {
		totalStorage = 0
	}

	recent := make([]models.ActivityLog, 0, 10)
	if err := a.db.WithContext(rctx).Order("created_at DESC").Limit(10).Find(&recent).Error; err != nil {
		utils.Detail(ctx, http.StatusInternalServerError, "Failed to load activity")
		return
	}

	payload := gin.H{
		"total_users":        totalUsers,
		"total_files":        totalFiles,
		"total_folders":      totalFolders,
		"total_storage_used": totalStorage,
		"recent_activity":    recent,
	}
	utils.CacheSetJSON(statsCacheKey, payload, 30*time.Second)
	ctx.JSON(http.StatusOK, payload)
}

// ListAllActivity returns the newest activity rows across all users.
func (a *AdminController) ListAllActivity(ctx *gin.Context) {
	limit := parseLimit(ctx.Query("limit"), 100, 500)

	logs := make([]models.ActivityLog, 0)
	if err := a.db.WithContext(ctx.Request.Context()).
		Order("created_at DESC").
		Limit(limit).
		Find(&logs).Error; err != nil {
		utils.Detail(ctx, http.StatusInternalServerError, "Failed to list activity")
		return
	}
	ctx.JSON(http.StatusOK, logs)
}
