package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Atharva2604/Kuro/activity"
	"github.com/Atharva2604/Kuro/config"
	"github.com/Atharva2604/Kuro/middleware"
	"github.com/Atharva2604/Kuro/models"
	"github.com/Atharva2604/Kuro/storage"
	"github.com/Atharva2604/Kuro/utils"
)

// FileController manages file metadata rows and their content blobs. Metadata
// lives in the database, content in the blob store under ObjectKey; the two
// are linked at upload and torn down together at delete.
type FileController struct {
	db       *gorm.DB
	blobs    *storage.Blobs
	activity *activity.Recorder
}

// NewFileController creates a new FileController instance.
func NewFileController(db *gorm.DB, blobs *storage.Blobs, recorder *activity.Recorder) *FileController {
	return &FileController{db: db, blobs: blobs, activity: recorder}
}

// Upload stores a multipart file. The blob is written before the metadata row
// so a failed request never leaves a row pointing at nothing.
func (f *FileController) Upload(ctx *gin.Context) {
	user, ok := requireUser(ctx)
	if !ok {
		return
	}

	header, err := ctx.FormFile("file")
	if err != nil {
		utils.Detail(ctx, http.StatusBadRequest, "No file uploaded")
		return
	}

	cfg := config.Get()
	if cfg.MaxUploadBytes > 0 && header.Size > cfg.MaxUploadBytes {
		utils.Detail(ctx, http.StatusBadRequest, "File too large")
		return
	}
	if user.StorageUsed+header.Size > user.StorageLimit {
		utils.Detail(ctx, http.StatusBadRequest, "Storage limit exceeded")
		return
	}

	name := utils.SanitizeName(filepath.Base(header.Filename))
	if name == "" {
		utils.Detail(ctx, http.StatusBadRequest, "Invalid file name")
		return
	}

	var folderID *string
	if v := ctx.PostForm("folder_id"); v != "" {
		folderID = &v
	}

	src, err := header.Open()
	if err != nil {
		utils.Detail(ctx, http.StatusInternalServerError, "Failed to read upload")
		return
	}
	defer src.Close()

	contentType := header.Header.Get("Content-Type")

	record := models.File{
		ID:          uuid.NewString(),
		Name:        name,
		Size:        header.Size,
		Type:        utils.FileCategory(name),
		ContentType: contentType,
		FolderID:    folderID,
		OwnerID:     user.ID,
	}
	record.ObjectKey = fmt.Sprintf("%s/%s", user.ID, record.ID)

	if err := f.blobs.Put(ctx.Request.Context(), record.ObjectKey, src, header.Size, contentType); err != nil {
		utils.Detail(ctx, http.StatusInternalServerError, "Failed to store file")
		return
	}

	if err := f.db.WithContext(ctx.Request.Context()).Create(&record).Error; err != nil {
		_ = f.blobs.Remove(ctx.Request.Context(), record.ObjectKey)
		utils.Detail(ctx, http.StatusInternalServerError, "Failed to save file")
		return
	}

	// Accounting only; the upload itself has already succeeded.
	_ = f.db.WithContext(ctx.Request.Context()).Model(&models.User{}).
		Where("id = ?", user.ID).
		UpdateColumn("storage_used", gorm.Expr("storage_used + ?", header.Size)).Error

	f.activity.Record(ctx.Request.Context(), user.ID, user.Name, models.ActionUpload, models.ResourceFile, name, ctx.ClientIP())

	ctx.JSON(http.StatusOK, record)
}

// ListFiles returns the caller's files in one folder; no folder_id means the
// root level, not all files.
func (f *FileController) ListFiles(ctx *gin.Context) {
	user, ok := requireUser(ctx)
	if !ok {
		return
	}

	query := f.db.WithContext(ctx.Request.Context()).Where("owner_id = ?", user.ID)
	if folderID := ctx.Query("folder_id"); folderID != "" {
		query = query.Where("folder_id = ?", folderID)
	} else {
		query = query.Where("folder_id IS NULL")
	}

	files := make([]models.File, 0)
	if err := query.Order("created_at DESC").Find(&files).Error; err != nil {
		utils.Detail(ctx, http.StatusInternalServerError, "Failed to list files")
		return
	}
	ctx.JSON(http.StatusOK, files)
}

// SearchFiles matches the caller's file names by substring across all
// folders, capped at 100 results.
func (f *FileController) SearchFiles(ctx *gin.Context) {
	user, ok := requireUser(ctx)
	if !ok {
		return
	}

	q := strings.TrimSpace(ctx.Query("q"))
	if q == "" {
		utils.Detail(ctx, http.StatusBadRequest, "Missing search query")
		return
	}

	files := make([]models.File, 0)
	if err := f.db.WithContext(ctx.Request.Context()).
		Where("owner_id = ? AND name LIKE ?", user.ID, "%"+q+"%").
		Order("created_at DESC").
		Limit(100).
		Find(&files).Error; err != nil {
		utils.Detail(ctx, http.StatusInternalServerError, "Failed to search files")
		return
	}
	ctx.JSON(http.StatusOK, files)
}

// Download streams the file content as an attachment and logs the download.
func (f *FileController) Download(ctx *gin.Context) {
	user, ok := requireUser(ctx)
	if !ok {
		return
	}

	file, ok := f.ownedFile(ctx, user.ID, ctx.Param("id"))
	if !ok {
		return
	}

	content, err := f.blobs.Get(ctx.Request.Context(), file.ObjectKey)
	if err != nil {
		utils.Detail(ctx, http.StatusInternalServerError, "Failed to read file")
		return
	}
	defer content.Close()

	f.activity.Record(ctx.Request.Context(), user.ID, user.Name, models.ActionDownload, models.ResourceFile, file.Name, ctx.ClientIP())

	ctx.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Name))
	ctx.DataFromReader(http.StatusOK, file.Size, contentTypeOrDefault(file.ContentType), content, nil)
}

// Preview streams the file content inline. Previews are not logged.
func (f *FileController) Preview(ctx *gin.Context) {
	user, ok := requireUser(ctx)
	if !ok {
		return
	}

	file, ok := f.ownedFile(ctx, user.ID, ctx.Param("id"))
	if !ok {
		return
	}

	content, err := f.blobs.Get(ctx.Request.Context(), file.ObjectKey)
	if err != nil {
		utils.Detail(ctx, http.StatusInternalServerError, "Failed to read file")
		return
	}
	defer content.Close()

	ctx.DataFromReader(http.StatusOK, file.Size, contentTypeOrDefault(file.ContentType), content, nil)
}

// DeleteFile removes the blob (best-effort), the metadata row, every share
// link pointing at the file, and refunds the owner's storage.
func (f *FileController) DeleteFile(ctx *gin.Context) {
	user, ok := requireUser(ctx)
	if !ok {
		return
	}

	file, ok := f.ownedFile(ctx, user.ID, ctx.Param("id"))
	if !ok {
		return
	}

	_ = f.blobs.Remove(ctx.Request.Context(), file.ObjectKey)

	if err := f.db.WithContext(ctx.Request.Context()).Delete(&models.File{}, "id = ?", file.ID).Error; err != nil {
		utils.Detail(ctx, http.StatusInternalServerError, "Failed to delete file")
		return
	}

	_ = f.db.WithContext(ctx.Request.Context()).Model(&models.User{}).
		Where("id = ?", user.ID).
		UpdateColumn("storage_used", gorm.Expr("storage_used - ?", file.Size)).Error

	if err := f.db.WithContext(ctx.Request.Context()).Delete(&models.ShareLink{}, "file_id = ?", file.ID).Error; err != nil {
		utils.Detail(ctx, http.StatusInternalServerError, "Failed to delete share links")
		return
	}

	f.activity.Record(ctx.Request.Context(), user.ID, user.Name, models.ActionDelete, models.ResourceFile, file.Name, ctx.ClientIP())

	ctx.JSON(http.StatusOK, gin.H{"message": "File deleted"})
}

// MoveFile reparents a file; an absent folder_id moves it to the root.
func (f *FileController) MoveFile(ctx *gin.Context) {
	user, ok := requireUser(ctx)
	if !ok {
		return
	}

	file, ok := f.ownedFile(ctx, user.ID, ctx.Param("id"))
	if !ok {
		return
	}

	var folderID *string
	if v := ctx.Query("folder_id"); v != "" {
		var folder models.Folder
		err := f.db.WithContext(ctx.Request.Context()).First(&folder, "id = ? AND owner_id = ?", v, user.ID).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				utils.Detail(ctx, http.StatusNotFound, "Folder not found")
			} else {
				utils.Detail(ctx, http.StatusInternalServerError, "Failed to load folder")
			}
			return
		}
		folderID = &v
	}

	if err := f.db.WithContext(ctx.Request.Context()).Model(file).
		Update("folder_id", folderID).Error; err != nil {
		utils.Detail(ctx, http.StatusInternalServerError, "Failed to move file")
		return
	}

	f.activity.Record(ctx.Request.Context(), user.ID, user.Name, models.ActionMove, models.ResourceFile, file.Name, ctx.ClientIP())

	ctx.JSON(http.StatusOK, gin.H{"message": "File moved"})
}

func (f *FileController) ownedFile(ctx *gin.Context, ownerID, id string) (*models.File, bool) {
	var file models.File
	err := f.db.WithContext(ctx.Request.Context()).First(&file, "id = ? AND owner_id = ?", id, ownerID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Detail(ctx, http.StatusNotFound, "File not found")
		} else {
			utils.Detail(ctx, http.StatusInternalServerError, "Failed to load file")
		}
		return nil, false
	}
	return &file, true
}

func contentTypeOrDefault(contentType string) string {
	if contentType == "" {
		return "application/octet-stream"
	}
	return contentType
}

func requireUser(ctx *gin.Context) (*models.User, bool) {
	user := middleware.CurrentUser(ctx)
	if user == nil {
		utils.Detail(ctx, http.StatusUnauthorized, "Not authenticated")
		return nil, false
	}
	return user, true
}
