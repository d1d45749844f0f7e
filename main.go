package main

import (
	"time"

	"github.com/Atharva2604/Kuro/config"
	"github.com/Atharva2604/Kuro/models"
	"github.com/Atharva2604/Kuro/routes"
	"github.com/Atharva2604/Kuro/storage"
	"github.com/Atharva2604/Kuro/utils"
)

func main() {
	cfg := config.Load()

	// Initialize logger early
	if err := utils.InitLogger(cfg); err != nil {
		panic(err)
	}

	db := config.InitDatabase(&models.User{}, &models.Folder{}, &models.File{}, &models.ShareLink{}, &models.ActivityLog{})

	blobs, err := storage.New(cfg)
	if err != nil {
		utils.Sugar.Fatalf("object storage init failed: %v", err)
	}

	r := routes.SetupRouter(db, blobs)

	// Keep the in-memory Redis fallbacks from accumulating expired entries.
	utils.StartFallbackJanitor(10 * time.Minute)

	utils.Sugar.Infof("Starting server on port %s (graceful)", cfg.AppPort)
	if err := utils.GraceServer(":"+cfg.AppPort, r); err != nil {
		utils.Sugar.Fatalf("server stopped with error: %v", err)
	}
}
