// devtoken выпускает JWT для локальной разработки.
//
//	devtoken token <actor-id> [ttl]   — токен для существующего участника
//	devtoken create <role> <name>     — завести участника и выпустить токен
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"bakery-service/config"
	"bakery-service/internal/auth"
	"bakery-service/internal/models"
	"bakery-service/internal/repository"
	"bakery-service/pkg/database"
	"bakery-service/pkg/logger"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

const defaultTTL = 24 * time.Hour

func main() {
	_ = godotenv.Load()

	isDev := os.Getenv("ENV") == "development"
	if err := logger.Init(isDev); err != nil {
		panic(err)
	}
	defer logger.Sync()

	log := logger.L()
	cfg := config.Load(log)

	if len(os.Args) < 3 {
		fmt.Println("usage: devtoken token <actor-id> [ttl] | devtoken create <role> <name>")
		os.Exit(2)
	}

	db := database.ConnectDB(&cfg.DB.Config, log)
	defer database.CloseDB(db, log)

	repos := repository.New(db)
	tokens := auth.NewHSProvider(cfg.JWT.Secret, cfg.JWT.Issuer)
	ctx := context.Background()

	var actor *models.Actor
	ttl := defaultTTL

	switch os.Args[1] {
	case "token":
		id, err := uuid.Parse(os.Args[2])
		if err != nil {
			log.Fatal("invalid actor id", zap.Error(err))
		}
		actor, err = repos.Actors.GetByID(ctx, id)
		if err != nil {
			log.Fatal("failed to load actor", zap.Error(err))
		}
		if actor == nil {
			log.Fatal("actor not found", zap.String("id", id.String()))
		}
		if len(os.Args) > 3 {
			if ttl, err = time.ParseDuration(os.Args[3]); err != nil {
				log.Fatal("invalid ttl", zap.Error(err))
			}
		}
	case "create":
		if len(os.Args) < 4 {
			log.Fatal("name is required")
		}
		role := models.Role(os.Args[2])
		if !role.Valid() {
			log.Fatal("invalid role", zap.String("role", os.Args[2]))
		}
		actor = &models.Actor{Name: os.Args[3], Role: role}
		if err := repos.Actors.Create(ctx, actor); err != nil {
			log.Fatal("failed to create actor", zap.Error(err))
		}
		log.Info("actor created", zap.String("id", actor.ID.String()), zap.String("role", string(role)))
	default:
		log.Fatal("unknown command", zap.String("cmd", os.Args[1]))
	}

	token, exp, err := tokens.Sign(actor.ID, actor.Role, ttl)
	if err != nil {
		log.Fatal("failed to sign token", zap.Error(err))
	}
	log.Info("token issued", zap.String("actor_id", actor.ID.String()), zap.Time("expires_at", exp))
	fmt.Println(token)
}
