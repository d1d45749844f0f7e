package controllers

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Atharva2604/Kuro/activity"
	"github.com/Atharva2604/Kuro/middleware"
	"github.com/Atharva2604/Kuro/models"
)

func newAuthRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	db := newTestDB(t)
	ac := NewAuthController(db, activity.NewRecorder(db))

	r := gin.New()
	r.POST("/api/auth/register", ac.Register)
	r.POST("/api/auth/login", ac.Login)
	r.POST("/api/auth/logout", middleware.AuthRequired(db), ac.Logout)
	r.GET("/api/auth/me", middleware.AuthRequired(db), ac.Me)
	return r, db
}

func register(t *testing.T, r *gin.Engine, email, name string) tokenResponse {
	t.Helper()
	w := doJSON(r, http.MethodPost, "/api/auth/register", "", map[string]any{
		"email":    email,
		"password": "secret123",
		"name":     name,
	})
	require.Equal(t, http.StatusOK, w.Code, "body: %s", w.Body.String())
	var resp tokenResponse
	decodeBody(t, w, &resp)
	return resp
}

func TestRegisterFirstUserBecomesAdmin(t *testing.T) {
	r, _ := newAuthRouter(t)

	first := register(t, r, "first@example.com", "First")
	assert.NotEmpty(t, first.AccessToken)
	assert.Equal(t, "bearer", first.TokenType)
	require.NotNil(t, first.User)
	assert.Equal(t, models.RoleAdmin, first.User.Role)

	second := register(t, r, "second@example.com", "Second")
	require.NotNil(t, second.User)
	assert.Equal(t, models.RoleUser, second.User.Role)
	assert.Positive(t, second.User.StorageLimit)
}

func TestRegisterNeverLeaksPasswordHash(t *testing.T) {
	r, _ := newAuthRouter(t)

	w := doJSON(r, http.MethodPost, "/api/auth/register", "", map[string]any{
		"email":    "user@example.com",
		"password": "secret123",
		"name":     "User",
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "password_hash")
	assert.NotContains(t, w.Body.String(), "secret123")
}

func TestRegisterDuplicateEmail(t *testing.T) {
	r, _ := newAuthRouter(t)
	register(t, r, "user@example.com", "User")

	w := doJSON(r, http.MethodPost, "/api/auth/register", "", map[string]any{
		"email":    "user@example.com",
		"password": "different",
		"name":     "Imposter",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Email already registered", detailOf(t, w))
}

func TestRegisterValidation(t *testing.T) {
	r, _ := newAuthRouter(t)

	w := doJSON(r, http.MethodPost, "/api/auth/register", "", map[string]any{
		"password": "secret123", "name": "User",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid request payload", detailOf(t, w))

	w = doJSON(r, http.MethodPost, "/api/auth/register", "", map[string]any{
		"email": "not-an-email", "password": "secret123", "name": "User",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(r, http.MethodPost, "/api/auth/register", "", map[string]any{
		"email": "user@example.com", "password": "secret123", "name": "<img src=x>",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid name", detailOf(t, w))
}

func TestRegisterSanitizesName(t *testing.T) {
	r, _ := newAuthRouter(t)

	resp := register(t, r, "eve@example.com", "<b>Eve</b>")
	require.NotNil(t, resp.User)
	assert.Equal(t, "Eve", resp.User.Name)
}

func TestLogin(t *testing.T) {
	r, db := newAuthRouter(t)
	user := createUser(t, db, "user@example.com", models.RoleUser)

	w := doJSON(r, http.MethodPost, "/api/auth/login", "", map[string]any{
		"email": "user@example.com", "password": "secret123",
	})
	require.Equal(t, http.StatusOK, w.Code)
	var resp tokenResponse
	decodeBody(t, w, &resp)
	assert.NotEmpty(t, resp.AccessToken)
	require.NotNil(t, resp.User)
	assert.Equal(t, user.ID, resp.User.ID)

	w = doJSON(r, http.MethodPost, "/api/auth/login", "", map[string]any{
		"email": "user@example.com", "password": "bad",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Invalid email or password", detailOf(t, w))

	w = doJSON(r, http.MethodPost, "/api/auth/login", "", map[string]any{
		"email": "ghost@example.com", "password": "secret123",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Invalid email or password", detailOf(t, w), "unknown accounts are not distinguishable")
}

func TestMeAndLogout(t *testing.T) {
	r, _ := newAuthRouter(t)
	resp := register(t, r, "user@example.com", "User")
	auth := "Bearer " + resp.AccessToken

	w := doJSON(r, http.MethodGet, "/api/auth/me", auth, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var me models.User
	decodeBody(t, w, &me)
	assert.Equal(t, resp.User.ID, me.ID)
	assert.Equal(t, "user@example.com", me.Email)

	w = doJSON(r, http.MethodPost, "/api/auth/logout", auth, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var msg struct {
		Message string `json:"message"`
	}
	decodeBody(t, w, &msg)
	assert.Equal(t, "Logged out", msg.Message)

	w = doJSON(r, http.MethodGet, "/api/auth/me", auth, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code, "a revoked token stops working immediately")
	assert.Equal(t, "Could not validate credentials", detailOf(t, w))
}

func TestAuthRequiredRejectsBadTokens(t *testing.T) {
	r, _ := newAuthRouter(t)

	w := doJSON(r, http.MethodGet, "/api/auth/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Not authenticated", detailOf(t, w))

	w = doJSON(r, http.MethodGet, "/api/auth/me", "Token abc", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Not authenticated", detailOf(t, w))

	w = doJSON(r, http.MethodGet, "/api/auth/me", "Bearer not-a-jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Could not validate credentials", detailOf(t, w))
}
