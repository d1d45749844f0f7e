package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/Atharva2604/Kuro/models"
	"github.com/Atharva2604/Kuro/utils"
)

// ContextUserKey is the gin context key holding the authenticated *models.User.
const ContextUserKey = "current_user"

// AuthRequired ensures the request carries a valid bearer token and loads the
// account row, so handlers always see the current role and storage numbers
// rather than whatever was true when the token was minted.
func AuthRequired(db *gorm.DB) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		authHeader := ctx.GetHeader("Authorization")
		if authHeader == "" {
			utils.Detail(ctx, http.StatusUnauthorized, "Not authenticated")
			ctx.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			utils.Detail(ctx, http.StatusUnauthorized, "Not authenticated")
			ctx.Abort()
			return
		}

		tokenString := strings.TrimSpace(parts[1])
		if tokenString == "" {
			utils.Detail(ctx, http.StatusUnauthorized, "Not authenticated")
			ctx.Abort()
			return
		}

		if utils.IsTokenBlacklisted(tokenString) {
			utils.Detail(ctx, http.StatusUnauthorized, "Could not validate credentials")
			ctx.Abort()
			return
		}

		claims, err := utils.ParseToken(tokenString)
		if err != nil {
			utils.Detail(ctx, http.StatusUnauthorized, "Could not validate credentials")
			ctx.Abort()
			return
		}

		var user models.User
		if err := db.First(&user, "id = ?", claims.UserID).Error; err != nil {
			utils.Detail(ctx, http.StatusUnauthorized, "User not found")
			ctx.Abort()
			return
		}

		ctx.Set(ContextUserKey, &user)
		ctx.Next()
	}
}

// CurrentUser returns the account loaded by AuthRequired, or nil outside an
// authenticated request.
func CurrentUser(ctx *gin.Context) *models.User {
	if v, ok := ctx.Get(ContextUserKey); ok {
		if u, ok := v.(*models.User); ok {
			return u
		}
	}
	return nil
}

// AdminRequired gates the admin surface. Must be registered after AuthRequired.
func AdminRequired() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		user := CurrentUser(ctx)
		if user == nil || user.Role != models.RoleAdmin {
			utils.Detail(ctx, http.StatusForbidden, "Admin access required")
			ctx.Abort()
			return
		}
		ctx.Next()
	}
}
