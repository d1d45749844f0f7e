package share

import (
	"context"
	"io"

	"gorm.io/gorm"

	"github.com/Atharva2604/Kuro/models"
	"github.com/Atharva2604/Kuro/storage"
)

// dbFileStore resolves share targets against the files table and streams
// their content out of the blob store.
type dbFileStore struct {
	db    *gorm.DB
	blobs *storage.Blobs
}

// NewFileStore builds the production FileStore over MySQL metadata and MinIO
// content.
func NewFileStore(db *gorm.DB, blobs *storage.Blobs) FileStore {
	return &dbFileStore{db: db, blobs: blobs}
}

func (f *dbFileStore) Stat(ctx context.Context, fileID string) (*FileInfo, error) {
	var file models.File
	if err := f.db.WithContext(ctx).First(&file, "id = ?", fileID).Error; err != nil {
		return nil, translate(err)
	}
	return &FileInfo{
		ID:          file.ID,
		Name:        file.Name,
		Size:        file.Size,
		Type:        file.Type,
		ContentType: file.ContentType,
		OwnerID:     file.OwnerID,
	}, nil
}

func (f *dbFileStore) Open(ctx context.Context, fileID string) (io.ReadCloser, error) {
	var file models.File
	if err := f.db.WithContext(ctx).First(&file, "id = ?", fileID).Error; err != nil {
		return nil, translate(err)
	}
	return f.blobs.Get(ctx, file.ObjectKey)
}
