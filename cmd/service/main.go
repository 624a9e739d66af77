package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"bakery-service/config"
	"bakery-service/internal/auth"
	"bakery-service/internal/cache"
	"bakery-service/internal/cleanup"
	"bakery-service/internal/fulfillment"
	"bakery-service/internal/handlers"
	"bakery-service/internal/media"
	"bakery-service/internal/producer"
	"bakery-service/internal/repository"
	"bakery-service/internal/router"
	"bakery-service/internal/service"
	"bakery-service/pkg/database"
	"bakery-service/pkg/logger"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	grpc_health_v1 "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

func main() {
	_ = godotenv.Load()
	isDev := os.Getenv("ENV") == "development"
	if err := logger.Init(isDev); err != nil {
		panic(err)
	}

	defer logger.Sync()

	log := logger.L()

	cfg := config.Load(log)
	db := database.ConnectDB(&cfg.DB.Config, log)
	defer database.CloseDB(db, log)

	repos := repository.New(db)

	scope, ok := service.ParseAnalyticsScope(cfg.Fulfillment.AnalyticsCrossStore)
	if !ok {
		log.Fatal("invalid ANALYTICS_CROSS_STORE", zap.String("value", cfg.Fulfillment.AnalyticsCrossStore))
	}
	policy := service.Policy{AnalyticsScope: scope}

	opts := []service.Option{service.WithLogger(log)}

	// Kafka необязательна: без брокеров события не публикуются
	if cfg.Kafka.Enabled() {
		events := producer.NewEventProducer(cfg.Kafka.Brokers, cfg.Kafka.FulfillmentTopic)
		defer func() {
			if err := events.Close(); err != nil {
				log.Warn("kafka writer close failed", zap.Error(err))
			}
		}()
		opts = append(opts, service.WithEvents(events))
		log.Info("Kafka events enabled", zap.Strings("brokers", cfg.Kafka.Brokers), zap.String("topic", cfg.Kafka.FulfillmentTopic))
	}

	var idem service.IdempotencyGuard
	if cfg.Redis.Enabled {
		rc, err := cache.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.IdempotencyTTL, log)
		if err != nil {
			log.Fatal("failed to connect to redis", zap.Error(err))
		}
		defer rc.Close()
		idem = rc
	}

	strict := cfg.Fulfillment.StrictTransitions
	if !strict {
		log.Warn("STRICT_TRANSITIONS=false: accept/reject/receive не проверяют исходное состояние")
	}
	lineMachine := fulfillment.NewOrderLineMachine(strict)
	designerMachine := fulfillment.NewDesignerOrderMachine(strict)

	store, err := media.NewLocalStore(cfg.Media.Dir, cfg.Media.MaxBytes)
	if err != nil {
		log.Fatal("failed to init media store", zap.Error(err))
	}

	// осиротевшие вложения: после замены файлов в Update и неудачных загрузок
	if cfg.Media.CleanupInterval > 0 {
		janitor := cleanup.NewMediaJanitor(repos.DesignerOrders, store, cfg.Media.OrphanGrace, log)
		scheduler := cleanup.NewScheduler(janitor, cfg.Media.CleanupInterval, log)
		scheduler.Start(context.Background())
		defer scheduler.Stop()
	}

	tokens := auth.NewHSProvider(cfg.JWT.Secret, cfg.JWT.Issuer)

	orderSvc := service.NewOrderService(repos, idem, opts...)
	fulfillmentSvc := service.NewFulfillmentService(repos, lineMachine, opts...)
	designerSvc := service.NewDesignerService(repos, designerMachine, cfg.Media.BaseURL, opts...)
	catalogSvc := service.NewCatalogService(repos, opts...)
	analyticsSvc := service.NewAnalyticsService(repos, policy, opts...)
	directorySvc := service.NewDirectoryService(repos)

	r := router.Router(router.Handlers{
		Orders:    handlers.NewOrderHandler(orderSvc, fulfillmentSvc, log),
		Designer:  handlers.NewDesignerHandler(designerSvc, store, log),
		Catalog:   handlers.NewCatalogHandler(catalogSvc, log),
		Analytics: handlers.NewAnalyticsHandler(analyticsSvc, log),
		Directory: handlers.NewDirectoryHandler(directorySvc, log),
	}, tokens, store.Dir(), log)

	srv := &http.Server{
		Addr:              listenAddr(cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// gRPC health + reflection для проверок оркестратора
	var grpcServer *grpc.Server
	if cfg.GRPCHealthPort != "" {
		lis, err := net.Listen("tcp", listenAddr(cfg.GRPCHealthPort))
		if err != nil {
			log.Fatal("failed to listen", zap.Error(err))
		}
		grpcServer = grpc.NewServer()

		healthSrv := health.NewServer()
		healthSrv.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
		grpc_health_v1.RegisterHealthServer(grpcServer, healthSrv)
		reflection.Register(grpcServer)

		go func() {
			log.Info("Starting gRPC health server", zap.String("addr", lis.Addr().String()))
			if err := grpcServer.Serve(lis); err != nil {
				log.Fatal("gRPC server failed", zap.Error(err))
			}
		}()
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Info("Starting Bakery HTTP server", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	<-quit
	log.Info("Shutting down Bakery server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("HTTP server shutdown failed", zap.Error(err))
	}
	if grpcServer != nil {
		grpcServer.GracefulStop()
	}
	log.Info("Bakery server stopped gracefully")
}

// listenAddr допускает и "8080", и ":8080"
func listenAddr(port string) string {
	if strings.Contains(port, ":") {
		return port
	}
	return ":" + port
}
