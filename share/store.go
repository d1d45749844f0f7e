package share

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/Atharva2604/Kuro/models"
)

// Store is the durable token to share-link mapping.
type Store interface {
	// Create persists a new link in one atomic insert. ErrConflict when the
	// token is already taken.
	Create(ctx context.Context, link *models.ShareLink) error
	GetByID(ctx context.Context, id string) (*models.ShareLink, error)
	GetByToken(ctx context.Context, token string) (*models.ShareLink, error)
	// ListByOwner returns the owner's links newest first, expired ones included.
	ListByOwner(ctx context.Context, ownerID string) ([]models.ShareLink, error)
	// Delete removes the link for good. ErrForbidden unless the requester owns
	// it or is an admin; ErrNotFound when no such link exists.
	Delete(ctx context.Context, id string, requester Principal) error
	// IncrementAccessCount bumps the counter in a single atomic UPDATE so
	// concurrent redemptions of the same token never lose an increment.
	IncrementAccessCount(ctx context.Context, token string) error
}

type gormStore struct {
	db *gorm.DB
}

// NewStore wraps a gorm handle in the Store contract. The handle must be
// opened with TranslateError so duplicate-key failures are detectable.
func NewStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) Create(ctx context.Context, link *models.ShareLink) error {
	return translate(s.db.WithContext(ctx).Create(link).Error)
}

func (s *gormStore) GetByID(ctx context.Context, id string) (*models.ShareLink, error) {
	var link models.ShareLink
	if err := s.db.WithContext(ctx).First(&link, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &link, nil
}

func (s *gormStore) GetByToken(ctx context.Context, token string) (*models.ShareLink, error) {
	var link models.ShareLink
	if err := s.db.WithContext(ctx).First(&link, "token = ?", token).Error; err != nil {
		return nil, translate(err)
	}
	return &link, nil
}

func (s *gormStore) ListByOwner(ctx context.Context, ownerID string) ([]models.ShareLink, error) {
	var links []models.ShareLink
	err := s.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Find(&links).Error
	if err != nil {
		return nil, translate(err)
	}
	return links, nil
}

func (s *gormStore) Delete(ctx context.Context, id string, requester Principal) error {
	link, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if link.OwnerID != requester.UserID && !requester.IsAdmin() {
		return ErrForbidden
	}
	res := s.db.WithContext(ctx).Delete(&models.ShareLink{}, "id = ?", id)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *gormStore) IncrementAccessCount(ctx context.Context, token string) error {
	res := s.db.WithContext(ctx).
		Model(&models.ShareLink{}).
		Where("token = ?", token).
		UpdateColumn("access_count", gorm.Expr("access_count + ?", 1))
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// translate maps gorm failures onto the package taxonomy. Anything that is
// neither a missing row nor a duplicate key is treated as a retryable storage
// fault and wrapped so the cause stays visible in logs.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrConflict
	default:
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
}
