package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bakery-service/config"
	"bakery-service/internal/notify"
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

	cfg := config.LoadNotifier(log)

	if len(cfg.Kafka.Brokers) == 0 {
		log.Fatal("no kafka brokers configured (KAFKA_BROKERS)")
	}

	db := database.ConnectDB(&cfg.DB.Config, log)
	defer database.CloseDB(db, log)
	actors := repository.NewActorRepo(db)

	emailSender := notify.NewEmailSender(notify.SMTPConfig{
		Host:        cfg.SMTP.Host,
		Port:        cfg.SMTP.Port,
		User:        cfg.SMTP.User,
		Password:    cfg.SMTP.Password,
		From:        cfg.SMTP.From,
		SSL:         cfg.SMTP.SSL,
		TemplateDir: cfg.SMTP.TemplateDir,
	})

	cons := notify.NewFulfillmentConsumer(cfg.Kafka.Brokers, cfg.GroupID, cfg.Kafka.FulfillmentTopic, actors, emailSender, log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		if err := cons.Run(ctx); err != nil {
			log.Error("consumer stopped", zap.Error(err))
		}
	}()

	// Graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	log.Info("shutdown signal received")
	cancel()
	_ = cons.Close()
	time.Sleep(200 * time.Millisecond)
}
