package main

import (
	"context"
	"fmt"
	"os"

	"bakery-service/config"
	"bakery-service/internal/cleanup"
	"bakery-service/internal/media"
	"bakery-service/internal/repository"
	"bakery-service/pkg/database"
	"bakery-service/pkg/logger"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()

	isDev := os.Getenv("ENV") == "development"
	if err := logger.Init(isDev); err != nil {
		panic(err)
	}
	defer logger.Sync()

	log := logger.L()

	if len(os.Args) > 1 && os.Args[1] != "media" {
		fmt.Println("Usage: go run cmd/cleanup/main.go [media]")
		fmt.Println("  media - remove uploads no designer order references")
		os.Exit(1)
	}

	cfg := config.Load(log)

	db := database.ConnectDB(&cfg.DB.Config, log)
	defer database.CloseDB(db, log)

	store, err := media.NewLocalStore(cfg.Media.Dir, cfg.Media.MaxBytes)
	if err != nil {
		log.Fatal("failed to open media store", zap.Error(err))
	}

	janitor := cleanup.NewMediaJanitor(repository.NewDesignerOrderRepo(db), store, cfg.Media.OrphanGrace, log)

	log.Info("running media cleanup")
	n, err := janitor.CleanupOrphanedMedia(context.Background())
	if err != nil {
		log.Fatal("failed to cleanup media", zap.Error(err))
	}

	log.Info("cleanup completed successfully", zap.Int("removed", n))
}
