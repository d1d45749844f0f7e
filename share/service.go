package share

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/Atharva2604/Kuro/models"
)

// Principal identifies the authenticated caller of a management operation. It
// is passed explicitly on every call; the service holds no session state.
type Principal struct {
	UserID string
	Name   string
	Role   models.Role
}

// IsAdmin reports whether the principal may act on other users' links.
func (p Principal) IsAdmin() bool { return p.Role == models.RoleAdmin }

// FileInfo is everything the service needs to know about a share target.
type FileInfo struct {
	ID          string
	Name        string
	Size        int64
	Type        string
	ContentType string
	OwnerID     string
}

// FileStore resolves share targets. Stat returns ErrNotFound when the file
// does not exist; Open streams its content.
type FileStore interface {
	Stat(ctx context.Context, fileID string) (*FileInfo, error)
	Open(ctx context.Context, fileID string) (io.ReadCloser, error)
}

// AuditSink receives share, unshare and shared_download events for the
// activity feed. activity.Recorder satisfies it.
type AuditSink interface {
	Record(ctx context.Context, userID, userName string, action models.Action, resource models.Resource, resourceName, ip string)
}

// PublicMetadata is the anonymous view of a link: enough to render the
// download page, never the owner id, file id, or password hash.
type PublicMetadata struct {
	FileName         string     `json:"file_name"`
	FileSize         int64      `json:"file_size"`
	FileType         string     `json:"file_type"`
	RequiresPassword bool       `json:"requires_password"`
	ExpiresAt        *time.Time `json:"expires_at"`
}

// Download couples a redeemed file's metadata with its content stream. The
// caller owns Content and must close it.
type Download struct {
	FileName    string
	FileSize    int64
	ContentType string
	Content     io.ReadCloser
}

// tokenAttempts bounds collision retries. With 256-bit tokens needing more
// than one round means the RNG is broken, not that the space is crowded.
const tokenAttempts = 3

// Service drives the share-link lifecycle. A link is Active until its
// optional deadline passes (Expired, still listed to the owner), and Deleted
// is terminal from either state. Expiry never deletes the record; deletion
// makes the token indistinguishable from one that never existed.
type Service struct {
	store Store
	files FileStore
	audit AuditSink
	now   func() time.Time
}

// NewService wires the service to its collaborators. Time is taken from the
// server clock, never from anything the client supplied.
func NewService(store Store, files FileStore, audit AuditSink) *Service {
	return &Service{store: store, files: files, audit: audit, now: time.Now}
}

// Create issues a new link for one of the principal's files. A non-empty
// password protects the link; expiresInHours > 0 sets an absolute deadline.
// ErrNotFound when the file does not exist, ErrForbidden when it belongs to
// someone else. The same file may carry any number of independent links.
func (s *Service) Create(ctx context.Context, p Principal, fileID, password string, expiresInHours int, clientIP string) (*models.ShareLink, error) {
	info, err := s.files.Stat(ctx, fileID)
	if err != nil {
		return nil, err
	}
	if info.OwnerID != p.UserID {
		return nil, ErrForbidden
	}

	now := s.now()
	link := &models.ShareLink{
		FileID:    fileID,
		FileName:  info.Name,
		OwnerID:   p.UserID,
		ExpiresAt: computeExpiry(now, expiresInHours),
		CreatedAt: now,
	}
	if password != "" {
		hash, err := hashPassword(password)
		if err != nil {
			return nil, err
		}
		link.PasswordHash = &hash
	}

	for attempt := 0; attempt < tokenAttempts; attempt++ {
		token, err := generateToken()
		if err != nil {
			return nil, err
		}
		link.Token = token
		err = s.store.Create(ctx, link)
		if err == nil {
			s.audit.Record(ctx, p.UserID, p.Name, models.ActionShare, models.ResourceFile, info.Name, clientIP)
			return link, nil
		}
		if !errors.Is(err, ErrConflict) {
			return nil, err
		}
	}
	return nil, ErrConflict
}

// List returns the principal's links newest first. Expired links stay in the
// list so the owner can see and delete them.
func (s *Service) List(ctx context.Context, p Principal) ([]models.ShareLink, error) {
	return s.store.ListByOwner(ctx, p.UserID)
}

// Delete removes a link immediately and irreversibly. The store enforces the
// owner-or-admin guard.
func (s *Service) Delete(ctx context.Context, p Principal, id, clientIP string) error {
	link, err := s.store.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.store.Delete(ctx, id, p); err != nil {
		return err
	}
	s.audit.Record(ctx, p.UserID, p.Name, models.ActionUnshare, models.ResourceFile, link.FileName, clientIP)
	return nil
}

// ResolvePublic looks up the anonymous download-page view of a token.
// ErrNotFound for unknown or deleted tokens, ErrGone for expired ones. The
// lookup never mutates the link; metadata fetches do not count as accesses.
func (s *Service) ResolvePublic(ctx context.Context, token string) (*PublicMetadata, error) {
	link, err := s.store.GetByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if expired(link.ExpiresAt, s.now()) {
		return nil, ErrGone
	}
	info, err := s.files.Stat(ctx, link.FileID)
	if err != nil {
		return nil, err
	}
	return &PublicMetadata{
		FileName:         info.Name,
		FileSize:         info.Size,
		FileType:         info.Type,
		RequiresPassword: link.PasswordHash != nil,
		ExpiresAt:        link.ExpiresAt,
	}, nil
}

// Redeem exchanges a token (plus password, when protected) for the file
// content. The check order is fixed: existence, then expiry, then password,
// so an expired protected link reports ErrGone without revealing that a
// password would have been required. Only a fully successful redemption
// increments the access count; failed attempts change nothing.
func (s *Service) Redeem(ctx context.Context, token, password, clientIP string) (*Download, error) {
	link, err := s.store.GetByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if expired(link.ExpiresAt, s.now()) {
		return nil, ErrGone
	}
	if !verifyPassword(link.PasswordHash, password) {
		return nil, ErrUnauthorized
	}
	info, err := s.files.Stat(ctx, link.FileID)
	if err != nil {
		return nil, err
	}
	content, err := s.files.Open(ctx, link.FileID)
	if err != nil {
		return nil, err
	}
	if err := s.store.IncrementAccessCount(ctx, token); err != nil {
		content.Close()
		return nil, err
	}
	s.audit.Record(ctx, "", "Anonymous", models.ActionSharedDownload, models.ResourceFile, info.Name, clientIP)
	return &Download{
		FileName:    info.Name,
		FileSize:    info.Size,
		ContentType: info.ContentType,
		Content:     content,
	}, nil
}
