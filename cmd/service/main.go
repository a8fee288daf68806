package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ecommerce-backend/config"
	"ecommerce-backend/internal/cache"
	"ecommerce-backend/internal/hashing"
	"ecommerce-backend/internal/mpesa"
	"ecommerce-backend/internal/producer"
	"ecommerce-backend/internal/repository"
	"ecommerce-backend/internal/router"
	"ecommerce-backend/internal/service"
	"ecommerce-backend/internal/sweeper"
	"ecommerce-backend/internal/token"
	"ecommerce-backend/pkg/database"
	"ecommerce-backend/pkg/logger"

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

	cfg := config.Load(log)

	db := database.ConnectDB(&cfg.DB.Config, log)
	defer database.CloseDB(db, log)

	repos := repository.New(db)

	redisClient, err := cache.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, log)
	if err != nil {
		log.Fatal("failed to create redis client", zap.Error(err))
	}
	defer redisClient.Close()

	tasks := producer.NewTaskProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic)
	defer tasks.Close()

	hasher := hashing.NewBcrypt(0)
	tokens := token.NewHSProvider(cfg.JWT.AccessSecret, cfg.JWT.Issuer, cfg.JWT.Audience)

	gateway := mpesa.NewClient(mpesa.Config{
		Environment:    cfg.Mpesa.Environment,
		ConsumerKey:    cfg.Mpesa.ConsumerKey,
		ConsumerSecret: cfg.Mpesa.ConsumerSecret,
		ShortCode:      cfg.Mpesa.ShortCode,
		Passkey:        cfg.Mpesa.Passkey,
		CallbackURL:    cfg.Mpesa.CallbackURL,
	}, redisClient, log)

	authSvc := service.NewAuthService(repos, hasher, tokens, tasks, service.AuthConfig{
		AccessTTL:  cfg.JWT.AccessTTL,
		RefreshTTL: cfg.JWT.RefreshTTL,
	}, log)
	catalogSvc := service.NewCatalogService(repos, tasks, log)
	cartSvc := service.NewCartService(repos)
	orderSvc := service.NewOrderService(repos, tasks, log)
	paymentSvc := service.NewPaymentService(repos, gateway, tasks, log)

	sweepSvc := sweeper.NewSweeperService(repos, log)
	scheduler := sweeper.NewScheduler(sweepSvc, log)

	sweepCtx, sweepCancel := context.WithCancel(context.Background())
	defer sweepCancel()
	scheduler.Start(sweepCtx)

	r := router.Router(router.Services{
		Auth:     authSvc,
		Catalog:  catalogSvc,
		Carts:    cartSvc,
		Orders:   orderSvc,
		Payments: paymentSvc,
		Tokens:   tokens,
	}, log)

	srv := &http.Server{
		Addr:    cfg.Port,
		Handler: r,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Info("Starting HTTP server", zap.String("addr", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	<-quit
	log.Info("Shutting down HTTP server...")

	scheduler.Stop()
	sweepCancel()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown failed", zap.Error(err))
	}
	log.Info("HTTP server stopped gracefully")
}
