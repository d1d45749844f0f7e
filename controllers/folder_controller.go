package controllers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/Atharva2604/Kuro/activity"
	"github.com/Atharva2604/Kuro/models"
	"github.com/Atharva2604/Kuro/storage"
	"github.com/Atharva2604/Kuro/utils"
)

// FolderController manages the folder tree. Sibling names are kept unique per
// owner here rather than by a schema constraint.
type FolderController struct {
	db       *gorm.DB
	blobs    *storage.Blobs
	activity *activity.Recorder
}

// NewFolderController creates a new FolderController instance.
func NewFolderController(db *gorm.DB, blobs *storage.Blobs, recorder *activity.Recorder) *FolderController {
	return &FolderController{db: db, blobs: blobs, activity: recorder}
}

// CreateFolder adds a folder under parent_id, or at the root when absent.
func (f *FolderController) CreateFolder(ctx *gin.Context) {
	var req struct {
		Name     string  `json:"name" binding:"required"`
		ParentID *string `json:"parent_id"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Detail(ctx, http.StatusBadRequest, "Invalid request payload")
		return
	}

	user, ok := requireUser(ctx)
	if !ok {
		return
	}

	name := utils.SanitizeName(req.Name)
	if name == "" {
		utils.Detail(ctx, http.StatusBadRequest, "Invalid folder name")
		return
	}

	rctx := ctx.Request.Context()

	taken, err := f.siblingNameTaken(rctx, user.ID, req.ParentID, name, "")
	if err != nil {
		utils.Detail(ctx, http.StatusInternalServerError, "Failed to create folder")
		return
	}
	if taken {
		utils.Detail(ctx, http.StatusBadRequest, "Folder with this name already exists")
		return
	}

	folder := models.Folder{
		Name:     name,
		ParentID: req.ParentID,
		OwnerID:  user.ID,
	}
	if err := f.db.WithContext(rctx).Create(&folder).Error; err != nil {
		utils.Detail(ctx, http.StatusInternalServerError, "Failed to create folder")
		return
	}

	f.activity.Record(rctx, user.ID, user.Name, models.ActionCreate, models.ResourceFolder, name, ctx.ClientIP())

	ctx.JSON(http.StatusOK, folder)
}

// ListFolders returns the caller's folders under one parent; no parent_id
// means the root level.
func (f *FolderController) ListFolders(ctx *gin.Context) {
	user, ok := requireUser(ctx)
	if !ok {
		return
	}

	query := f.db.WithContext(ctx.Request.Context()).Where("owner_id = ?", user.ID)
	if parentID := ctx.Query("parent_id"); parentID != "" {
		query = query.Where("parent_id = ?", parentID)
	} else {
		query = query.Where("parent_id IS NULL")
	}

	folders := make([]models.Folder, 0)
	if err := query.Order("created_at DESC").Find(&folders).Error; err != nil {
		utils.Detail(ctx, http.StatusInternalServerError, "Failed to list folders")
		return
	}
	ctx.JSON(http.StatusOK, folders)
}

// RenameFolder changes a folder's name, keeping sibling names unique.
func (f *FolderController) RenameFolder(ctx *gin.Context) {
	var req struct {
		Name string `json:"name" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Detail(ctx, http.StatusBadRequest, "Invalid request payload")
		return
	}

	user, ok := requireUser(ctx)
	if !ok {
		return
	}

	name := utils.SanitizeName(req.Name)
	if name == "" {
		utils.Detail(ctx, http.StatusBadRequest, "Invalid folder name")
		return
	}

	rctx := ctx.Request.Context()

	folder, ok := f.ownedFolder(ctx, user.ID, ctx.Param("id"))
	if !ok {
		return
	}

	taken, err := f.siblingNameTaken(rctx, user.ID, folder.ParentID, name, folder.ID)
	if err != nil {
		utils.Detail(ctx, http.StatusInternalServerError, "Failed to rename folder")
		return
	}
	if taken {
		utils.Detail(ctx, http.StatusBadRequest, "Folder with this name already exists")
		return
	}

	if err := f.db.WithContext(rctx).Model(folder).Update("name", name).Error; err != nil {
		utils.Detail(ctx, http.StatusInternalServerError, "Failed to rename folder")
		return
	}

	f.activity.Record(rctx, user.ID, user.Name, models.ActionRename, models.ResourceFolder, name, ctx.ClientIP())

	ctx.JSON(http.StatusOK, gin.H{"message": "Folder renamed"})
}

// DeleteFolder removes a folder and everything below it: subfolders, files
// with their blobs and share links, and refunds the freed storage.
func (f *FolderController) DeleteFolder(ctx *gin.Context) {
	user, ok := requireUser(ctx)
	if !ok {
		return
	}

	folder, ok := f.ownedFolder(ctx, user.ID, ctx.Param("id"))
	if !ok {
		return
	}

	rctx := ctx.Request.Context()

	folderIDs, err := f.descendantIDs(rctx, folder.ID)
	if err != nil {
		utils.Detail(ctx, http.StatusInternalServerError, "Failed to delete folder")
		return
	}

	var files []models.File
	if err := f.db.WithContext(rctx).Where("owner_id = ? AND folder_id IN ?", user.ID, folderIDs).Find(&files).Error; err != nil {
		utils.Detail(ctx, http.StatusInternalServerError, "Failed to delete folder")
		return
	}

	var freed int64
	fileIDs := make([]string, 0, len(files))
	for i := range files {
		_ = f.blobs.Remove(rctx, files[i].ObjectKey)
		freed += files[i].Size
		fileIDs = append(fileIDs, files[i].ID)
	}

	if len(fileIDs) > 0 {
		if err := f.db.WithContext(rctx).Delete(&models.ShareLink{}, "file_id IN ?", fileIDs).Error; err != nil {
			utils.Detail(ctx, http.StatusInternalServerError, "Failed to delete folder")
			return
		}
		if err := f.db.WithContext(rctx).Delete(&models.File{}, "id IN ?", fileIDs).Error; err != nil {
			utils.Detail(ctx, http.StatusInternalServerError, "Failed to delete folder")
			return
		}
	}

	if freed > 0 {
		_ = f.db.WithContext(rctx).Model(&models.User{}).
			Where("id = ?", user.ID).
			UpdateColumn("storage_used", gorm.Expr("storage_used - ?", freed)).Error
	}

	if err := f.db.WithContext(rctx).Delete(&models.Folder{}, "id IN ?", folderIDs).Error; err != nil {
		utils.Detail(ctx, http.StatusInternalServerError, "Failed to delete folder")
		return
	}

	f.activity.Record(rctx, user.ID, user.Name, models.ActionDelete, models.ResourceFolder, folder.Name, ctx.ClientIP())

	ctx.JSON(http.StatusOK, gin.H{"message": "Folder deleted"})
}

// descendantIDs walks the tree breadth-first and returns rootID plus every
// folder below it.
func (f *FolderController) descendantIDs(ctx context.Context, rootID string) ([]string, error) {
	ids := []string{rootID}
	frontier := []string{rootID}
	for len(frontier) > 0 {
		var children []models.Folder
		if err := f.db.WithContext(ctx).Where("parent_id IN ?", frontier).Find(&children).Error; err != nil {
			return nil, err
		}
		frontier = frontier[:0]
		for i := range children {
			ids = append(ids, children[i].ID)
			frontier = append(frontier, children[i].ID)
		}
	}
	return ids, nil
}

func (f *FolderController) siblingNameTaken(ctx context.Context, ownerID string, parentID *string, name, excludeID string) (bool, error) {
	query := f.db.WithContext(ctx).Model(&models.Folder{}).Where("owner_id = ? AND name = ?", ownerID, name)
	if parentID != nil {
		query = query.Where("parent_id = ?", *parentID)
	} else {
		query = query.Where("parent_id IS NULL")
	}
	if excludeID != "" {
		query = query.Where("id <> ?", excludeID)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (f *FolderController) ownedFolder(ctx *gin.Context, ownerID, id string) (*models.Folder, bool) {
	var folder models.Folder
	err := f.db.WithContext(ctx.Request.Context()).First(&folder, "id = ? AND owner_id = ?", id, ownerID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Detail(ctx, http.StatusNotFound, "Folder not found")
		} else {
			utils.Detail(ctx, http.StatusInternalServerError, "Failed to load folder")
		}
		return nil, false
	}
	return &folder, true
}
