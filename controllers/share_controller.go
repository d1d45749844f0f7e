package controllers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Atharva2604/Kuro/models"
	"github.com/Atharva2604/Kuro/share"
	"github.com/Atharva2604/Kuro/utils"
)

// ShareController exposes share-link management to owners and the anonymous
// metadata/download endpoints to the public. All lifecycle rules live in
// share.Service; this layer only translates HTTP.
type ShareController struct {
	service *share.Service
}

// NewShareController creates a new ShareController instance.
func NewShareController(service *share.Service) *ShareController {
	return &ShareController{service: service}
}

// shareLinkResponse is the owner-facing view of a link. The password hash
// never leaves the server; has_password stands in for it.
type shareLinkResponse struct {
	ID          string     `json:"id"`
	FileID      string     `json:"file_id"`
	Token       string     `json:"token"`
	HasPassword bool       `json:"has_password"`
	ExpiresAt   *time.Time `json:"expires_at"`
	AccessCount int64      `json:"access_count"`
	CreatedAt   time.Time  `json:"created_at"`
}

func toShareLinkResponse(link *models.ShareLink) shareLinkResponse {
	return shareLinkResponse{
		ID:          link.ID,
		FileID:      link.FileID,
		Token:       link.Token,
		HasPassword: link.PasswordHash != nil,
		ExpiresAt:   link.ExpiresAt,
		AccessCount: link.AccessCount,
		CreatedAt:   link.CreatedAt,
	}
}

// CreateShare issues a new link for one of the caller's files. The same file
// may carry any number of independent links.
func (s *ShareController) CreateShare(ctx *gin.Context) {
	var req struct {
		FileID         string `json:"file_id" binding:"required"`
		Password       string `json:"password"`
		ExpiresInHours int    `json:"expires_in_hours"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Detail(ctx, http.StatusBadRequest, "Invalid request payload")
		return
	}

	user, ok := requireUser(ctx)
	if !ok {
		return
	}

	link, err := s.service.Create(ctx.Request.Context(), principalFrom(user), req.FileID, req.Password, req.ExpiresInHours, ctx.ClientIP())
	if err != nil {
		renderShareError(ctx, err, "File not found")
		return
	}

	ctx.JSON(http.StatusCreated, toShareLinkResponse(link))
}

// ListShares returns the caller's links, newest first, expired ones included.
func (s *ShareController) ListShares(ctx *gin.Context) {
	user, ok := requireUser(ctx)
	if !ok {
		return
	}

	links, err := s.service.List(ctx.Request.Context(), principalFrom(user))
	if err != nil {
		renderShareError(ctx, err, "Share link not found")
		return
	}

	responses := make([]shareLinkResponse, 0, len(links))
	for i := range links {
		responses = append(responses, toShareLinkResponse(&links[i]))
	}
	ctx.JSON(http.StatusOK, responses)
}

// DeleteShare revokes a link immediately. Owners may delete their own links,
// admins anyone's.
func (s *ShareController) DeleteShare(ctx *gin.Context) {
	user, ok := requireUser(ctx)
	if !ok {
		return
	}

	if err := s.service.Delete(ctx.Request.Context(), principalFrom(user), ctx.Param("id"), ctx.ClientIP()); err != nil {
		renderShareError(ctx, err, "Share link not found")
		return
	}

	ctx.Status(http.StatusNoContent)
}

// SharedMetadata returns the anonymous download-page view of a token. It
// never mutates the link; fetching metadata does not count as an access.
func (s *ShareController) SharedMetadata(ctx *gin.Context) {
	meta, err := s.service.ResolvePublic(ctx.Request.Context(), ctx.Param("token"))
	if err != nil {
		renderShareError(ctx, err, "Share link not found")
		return
	}
	ctx.JSON(http.StatusOK, meta)
}

// DownloadShared redeems a token for the file content. The body is optional;
// an absent body means no password was supplied.
func (s *ShareController) DownloadShared(ctx *gin.Context) {
	var req struct {
		Password string `json:"password"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		utils.Detail(ctx, http.StatusBadRequest, "Invalid request payload")
		return
	}

	download, err := s.service.Redeem(ctx.Request.Context(), ctx.Param("token"), req.Password, ctx.ClientIP())
	if err != nil {
		renderShareError(ctx, err, "Share link not found")
		return
	}
	defer download.Content.Close()

	ctx.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", download.FileName))
	ctx.DataFromReader(http.StatusOK, download.FileSize, contentTypeOrDefault(download.ContentType), download.Content, nil)
}

// renderShareError maps the share package's failure taxonomy onto HTTP. The
// not-found message varies by endpoint; everything else is fixed.
func renderShareError(ctx *gin.Context, err error, notFound string) {
	switch {
	case errors.Is(err, share.ErrNotFound):
		utils.Detail(ctx, http.StatusNotFound, notFound)
	case errors.Is(err, share.ErrGone):
		utils.Detail(ctx, http.StatusGone, "Share link has expired")
	case errors.Is(err, share.ErrUnauthorized):
		utils.Detail(ctx, http.StatusUnauthorized, "Invalid password")
	case errors.Is(err, share.ErrForbidden):
		utils.Detail(ctx, http.StatusForbidden, "You do not own this resource")
	case errors.Is(err, share.ErrUnavailable):
		utils.Detail(ctx, http.StatusServiceUnavailable, "Storage temporarily unavailable")
	default:
		utils.Detail(ctx, http.StatusInternalServerError, "Internal server error")
	}
}

func principalFrom(user *models.User) share.Principal {
	return share.Principal{UserID: user.ID, Name: user.Name, Role: user.Role}
}
