package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"
	"golang.org/x/oauth2/google"
	"gorm.io/gorm"

	"github.com/Atharva2604/Kuro/activity"
	"github.com/Atharva2604/Kuro/config"
	"github.com/Atharva2604/Kuro/models"
	"github.com/Atharva2604/Kuro/utils"
)

// AuthController handles registration, password and OAuth sign-in, and
// session lifecycle.
type AuthController struct {
	db       *gorm.DB
	activity *activity.Recorder
}

// NewAuthController creates a new AuthController instance.
func NewAuthController(db *gorm.DB, recorder *activity.Recorder) *AuthController {
	return &AuthController{db: db, activity: recorder}
}

// tokenResponse is returned by every sign-in path.
type tokenResponse struct {
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	User        *models.User `json:"user"`
}

func newTokenResponse(user *models.User) (*tokenResponse, error) {
	token, err := utils.GenerateToken(user.ID, string(user.Role), utils.TokenTTL)
	if err != nil {
		return nil, err
	}
	return &tokenResponse{AccessToken: token, TokenType: "bearer", User: user}, nil
}

// Register creates an account and signs it in. The first account on a fresh
// deployment becomes the admin.
func (a *AuthController) Register(ctx *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
		Name     string `json:"name" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Detail(ctx, http.StatusBadRequest, "Invalid request payload")
		return
	}

	email := strings.TrimSpace(req.Email)
	name := utils.SanitizeName(req.Name)
	if name == "" {
		utils.Detail(ctx, http.StatusBadRequest, "Invalid name")
		return
	}

	rctx := ctx.Request.Context()

	var existing int64
	if err := a.db.WithContext(rctx).Model(&models.User{}).Where("email = ?", email).Count(&existing).Error; err != nil {
		utils.Detail(ctx, http.StatusInternalServerError, "Failed to create account")
		return
	}
	if existing > 0 {
		utils.Detail(ctx, http.StatusBadRequest, "Email already registered")
		return
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		utils.Detail(ctx, http.StatusInternalServerError, "Failed to create account")
		return
	}

	role, err := a.firstUserRole(rctx)
	if err != nil {
		utils.Detail(ctx, http.StatusInternalServerError, "Failed to create account")
		return
	}

	user := models.User{
		Email:        email,
		PasswordHash: hash,
		Name:         name,
		Role:         role,
		StorageLimit: config.Get().DefaultStorageLimit,
	}
	if err := a.db.WithContext(rctx).Create(&user).Error; err != nil {
		// The unique index backstops the pre-check under concurrent registration.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			utils.Detail(ctx, http.StatusBadRequest, "Email already registered")
			return
		}
		utils.Detail(ctx, http.StatusInternalServerError, "Failed to create account")
		return
	}

	a.activity.Record(rctx, user.ID, user.Name, models.ActionRegister, models.ResourceAccount, user.Email, ctx.ClientIP())

	resp, err := newTokenResponse(&user)
	if err != nil {
		utils.Detail(ctx, http.StatusInternalServerError, "Failed to generate token")
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// Login exchanges email and password for a bearer token.
func (a *AuthController) Login(ctx *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Detail(ctx, http.StatusBadRequest, "Invalid request payload")
		return
	}

	rctx := ctx.Request.Context()

	var user models.User
	err := a.db.WithContext(rctx).Where("email = ?", strings.TrimSpace(req.Email)).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Detail(ctx, http.StatusUnauthorized, "Invalid email or password")
			return
		}
		utils.Detail(ctx, http.StatusInternalServerError, "Failed to sign in")
		return
	}
	if !utils.CheckPassword(user.PasswordHash, req.Password) {
		utils.Detail(ctx, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	a.activity.Record(rctx, user.ID, user.Name, models.ActionLogin, models.ResourceAccount, user.Email, ctx.ClientIP())

	resp, err := newTokenResponse(&user)
	if err != nil {
		utils.Detail(ctx, http.StatusInternalServerError, "Failed to generate token")
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// Me returns the authenticated account.
func (a *AuthController) Me(ctx *gin.Context) {
	user, ok := requireUser(ctx)
	if !ok {
		return
	}
	ctx.JSON(http.StatusOK, user)
}

// Logout invalidates the bearer token by blacklisting it until its natural
// expiry.
func (a *AuthController) Logout(ctx *gin.Context) {
	authHeader := ctx.GetHeader("Authorization")
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 {
		utils.Detail(ctx, http.StatusUnauthorized, "Not authenticated")
		return
	}

	token := strings.TrimSpace(parts[1])
	claims, err := utils.ParseToken(token)
	if err != nil {
		utils.Detail(ctx, http.StatusUnauthorized, "Could not validate credentials")
		return
	}

	expiresAt := time.Now().Add(utils.TokenTTL)
	if claims.ExpiresAt != nil {
		expiresAt = claims.ExpiresAt.Time
	}
	utils.BlacklistToken(token, expiresAt)

	ctx.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

// OAuthRedirect generates a provider-specific authorization URL with a
// single-use state.
func (a *AuthController) OAuthRedirect(ctx *gin.Context) {
	conf, err := oauthConfig(ctx.Param("provider"))
	if err != nil {
		utils.Detail(ctx, http.StatusBadRequest, err.Error())
		return
	}

	state := uuid.NewString()
	utils.SaveState(state, 10*time.Minute)

	url := conf.AuthCodeURL(state, oauth2.AccessTypeOffline)
	ctx.JSON(http.StatusOK, gin.H{"authorization_url": url, "state": state})
}

// OAuthCallback exchanges the authorization code for a provider identity and
// issues a bearer token, creating or linking the account as needed.
func (a *AuthController) OAuthCallback(ctx *gin.Context) {
	code := ctx.Query("code")
	state := ctx.Query("state")
	if code == "" || state == "" {
		utils.Detail(ctx, http.StatusBadRequest, "Missing code or state")
		return
	}
	if !utils.ConsumeState(state) {
		utils.Detail(ctx, http.StatusBadRequest, "Invalid or expired state")
		return
	}

	provider := ctx.Param("provider")
	conf, err := oauthConfig(provider)
	if err != nil {
		utils.Detail(ctx, http.StatusBadRequest, err.Error())
		return
	}

	rctx := ctx.Request.Context()

	token, err := conf.Exchange(rctx, code)
	if err != nil {
		utils.Detail(ctx, http.StatusBadRequest, "Failed to exchange code")
		return
	}

	identity, err := fetchOAuthUser(rctx, provider, token)
	if err != nil {
		utils.Detail(ctx, http.StatusInternalServerError, "Failed to fetch user profile")
		return
	}

	user, err := a.findOrCreateOAuthUser(rctx, provider, identity, ctx.ClientIP())
	if err != nil {
		utils.Detail(ctx, http.StatusInternalServerError, "Failed to sign in")
		return
	}

	a.activity.Record(rctx, user.ID, user.Name, models.ActionLogin, models.ResourceAccount, user.Email, ctx.ClientIP())

	resp, err := newTokenResponse(user)
	if err != nil {
		utils.Detail(ctx, http.StatusInternalServerError, "Failed to generate token")
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// firstUserRole makes the first account on an empty deployment the admin.
func (a *AuthController) firstUserRole(ctx context.Context) (models.Role, error) {
	var count int64
	if err := a.db.WithContext(ctx).Model(&models.User{}).Count(&count).Error; err != nil {
		return models.RoleUser, err
	}
	if count == 0 {
		return models.RoleAdmin, nil
	}
	return models.RoleUser, nil
}

func oauthConfig(provider string) (*oauth2.Config, error) {
	cfg := config.Get()
	switch strings.ToLower(provider) {
	case "github":
		if cfg.GitHubClientID == "" || cfg.GitHubClientSecret == "" {
			return nil, fmt.Errorf("github oauth not configured")
		}
		return &oauth2.Config{
			ClientID:     cfg.GitHubClientID,
			ClientSecret: cfg.GitHubClientSecret,
			RedirectURL:  fmt.Sprintf("%s/api/auth/oauth/github/callback", cfg.OAuthRedirectBase),
			Scopes:       []string{"read:user", "user:email"},
			Endpoint:     github.Endpoint,
		}, nil
	case "google":
		if cfg.GoogleClientID == "" || cfg.GoogleClientSecret == "" {
			return nil, fmt.Errorf("google oauth not configured")
		}
		return &oauth2.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  fmt.Sprintf("%s/api/auth/oauth/google/callback", cfg.OAuthRedirectBase),
			Scopes:       []string{"openid", "profile", "email"},
			Endpoint:     google.Endpoint,
		}, nil
	default:
		return nil, fmt.Errorf("unsupported provider: %s", provider)
	}
}

// oauthIdentity is what a provider tells us about the signed-in person.
type oauthIdentity struct {
	ID    string
	Login string
	Name  string
	Email string
}

func fetchOAuthUser(ctx context.Context, provider string, token *oauth2.Token) (*oauthIdentity, error) {
	switch strings.ToLower(provider) {
	case "github":
		return fetchGitHubUser(ctx, token)
	case "google":
		return fetchGoogleUser(ctx, token)
	default:
		return nil, fmt.Errorf("unsupported provider: %s", provider)
	}
}

// findOrCreateOAuthUser resolves a provider identity to an account: by
// provider id first, then by verified email (linking the provider to an
// existing password account), creating a fresh account otherwise.
func (a *AuthController) findOrCreateOAuthUser(ctx context.Context, provider string, identity *oauthIdentity, clientIP string) (*models.User, error) {
	var user models.User
	err := a.db.WithContext(ctx).Where("provider = ? AND provider_id = ?", provider, identity.ID).First(&user).Error
	if err == nil {
		return &user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	email := strings.TrimSpace(identity.Email)
	if email != "" {
		err = a.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
		if err == nil {
			if err := a.db.WithContext(ctx).Model(&user).Updates(map[string]interface{}{
				"provider":    provider,
				"provider_id": identity.ID,
			}).Error; err != nil {
				return nil, err
			}
			return &user, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	} else {
		// Providers may hide the email; synthesize a stable unique one.
		email = fmt.Sprintf("%s_%s@users.noreply.kuro.local", provider, identity.ID)
	}

	name := utils.SanitizeName(fallback(identity.Name, identity.Login, email))
	role, err := a.firstUserRole(ctx)
	if err != nil {
		return nil, err
	}

	user = models.User{
		Email:        email,
		Name:         name,
		Role:         role,
		StorageLimit: config.Get().DefaultStorageLimit,
		Provider:     provider,
		ProviderID:   identity.ID,
	}
	if err := a.db.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, err
	}

	a.activity.Record(ctx, user.ID, user.Name, models.ActionRegister, models.ResourceAccount, user.Email, clientIP)
	return &user, nil
}

func fetchGitHubUser(ctx context.Context, token *oauth2.Token) (*oauthIdentity, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "https://api.github.com/user", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", token.AccessToken))
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("github user info request failed: %s", resp.Status)
	}

	var payload struct {
		ID    int64  `json:"id"`
		Login string `json:"login"`
		Name  string `json:"name"`
		Email string `json:"email"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, err
	}

	email := payload.Email
	if email == "" {
		email, _ = fetchGitHubEmail(ctx, token.AccessToken)
	}

	return &oauthIdentity{
		ID:    fmt.Sprintf("%d", payload.ID),
		Login: payload.Login,
		Name:  payload.Name,
		Email: email,
	}, nil
}

func fetchGitHubEmail(ctx context.Context, accessToken string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "https://api.github.com/user/emails", nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", accessToken))
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("github emails request failed: %s", resp.Status)
	}

	var emails []struct {
		Email    string `json:"email"`
		Primary  bool   `json:"primary"`
		Verified bool   `json:"verified"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&emails); err != nil {
		return "", err
	}

	for _, e := range emails {
		if e.Primary && e.Verified {
			return e.Email, nil
		}
	}
	if len(emails) > 0 {
		return emails[0].Email, nil
	}
	return "", nil
}

func fetchGoogleUser(ctx context.Context, token *oauth2.Token) (*oauthIdentity, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "https://www.googleapis.com/oauth2/v2/userinfo", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", token.AccessToken))

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("google user info request failed: %s", resp.Status)
	}

	var payload struct {
		ID    string `json:"id"`
		Email string `json:"email"`
		Name  string `json:"name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, err
	}

	return &oauthIdentity{
		ID:    payload.ID,
		Login: payload.Email,
		Name:  payload.Name,
		Email: payload.Email,
	}, nil
}

func fallback(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
