package routes

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/Atharva2604/Kuro/activity"
	"github.com/Atharva2604/Kuro/config"
	"github.com/Atharva2604/Kuro/controllers"
	"github.com/Atharva2604/Kuro/middleware"
	"github.com/Atharva2604/Kuro/share"
	"github.com/Atharva2604/Kuro/storage"
	"github.com/Atharva2604/Kuro/utils"
)

// SetupRouter wires routes, middlewares, and controllers.
func SetupRouter(db *gorm.DB, blobs *storage.Blobs) *gin.Engine {
	cfg := config.Get()
	switch strings.ToLower(cfg.GinMode) {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	// Request logging and panic recovery go through zap instead of gin's
	// console defaults.
	gl, err := utils.NewRollingFileLogger(cfg.GinPath, cfg.LogLevel, cfg.LogMaxSizeMB, cfg.LogMaxBackups, cfg.LogMaxAgeDays, cfg.LogCompress)
	if err == nil {
		r.Use(utils.Ginzap(gl, time.RFC3339, true))
		r.Use(utils.RecoveryWithZap(gl, false))
	} else {
		r.Use(gin.Recovery())
	}

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
	}
	r.Use(cors.New(corsCfg))

	r.GET("/health", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	recorder := activity.NewRecorder(db)
	shareService := share.NewService(share.NewStore(db), share.NewFileStore(db, blobs), recorder)

	authController := controllers.NewAuthController(db, recorder)
	folderController := controllers.NewFolderController(db, blobs, recorder)
	fileController := controllers.NewFileController(db, blobs, recorder)
	shareController := controllers.NewShareController(shareService)
	activityController := controllers.NewActivityController(db)
	adminController := controllers.NewAdminController(db, blobs, recorder)

	api := r.Group("/api")

	api.GET("/", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"message": "Kuro File Storage API", "version": "1.0.0"})
	})

	authGroup := api.Group("/auth")
	authGroup.Use(middleware.RateLimitMiddleware())
	authGroup.POST("/register", authController.Register)
	authGroup.POST("/login", authController.Login)
	authGroup.GET("/oauth/:provider/login", authController.OAuthRedirect)
	authGroup.GET("/oauth/:provider/callback", authController.OAuthCallback)
	authGroup.POST("/logout", middleware.AuthRequired(db), authController.Logout)
	authGroup.GET("/me", middleware.AuthRequired(db), authController.Me)

	// Anonymous share redemption. Rate-limited so tokens and link passwords
	// cannot be guessed for free.
	shared := api.Group("/shared")
	shared.Use(middleware.RateLimitMiddleware())
	shared.GET("/:token", shareController.SharedMetadata)
	shared.POST("/:token/download", shareController.DownloadShared)

	protected := api.Group("")
	protected.Use(middleware.AuthRequired(db), middleware.RateLimitMiddleware())

	protected.POST("/folders", folderController.CreateFolder)
	protected.GET("/folders", folderController.ListFolders)
	protected.PUT("/folders/:id", folderController.RenameFolder)
	protected.DELETE("/folders/:id", folderController.DeleteFolder)

	protected.POST("/files/upload", fileController.Upload)
	protected.GET("/files", fileController.ListFiles)
	protected.GET("/files/search", fileController.SearchFiles)
	protected.GET("/files/:id/download", fileController.Download)
	protected.GET("/files/:id/preview", fileController.Preview)
	protected.DELETE("/files/:id", fileController.DeleteFile)
	protected.PUT("/files/:id/move", fileController.MoveFile)

	protected.POST("/share", shareController.CreateShare)
	protected.GET("/share", shareController.ListShares)
	protected.DELETE("/share/:id", shareController.DeleteShare)

	protected.GET("/activity", activityController.ListActivity)

	admin := protected.Group("/admin")
	admin.Use(middleware.AdminRequired())
	admin.GET("/users", adminController.ListUsers)
	admin.PUT("/users/:id", adminController.UpdateUser)
	admin.DELETE("/users/:id", adminController.DeleteUser)
	admin.GET("/stats", adminController.Stats)
	admin.GET("/activity", adminController.ListAllActivity)

	r.NoRoute(func(ctx *gin.Context) {
		utils.Detail(ctx, http.StatusNotFound, "Not found")
	})

	return r
}
