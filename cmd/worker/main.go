package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"ecommerce-backend/config"
	"ecommerce-backend/internal/cache"
	"ecommerce-backend/internal/mpesa"
	"ecommerce-backend/internal/producer"
	"ecommerce-backend/internal/repository"
	"ecommerce-backend/internal/sender"
	"ecommerce-backend/internal/service"
	"ecommerce-backend/internal/worker"
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

	gateway := mpesa.NewClient(mpesa.Config{
		Environment:    cfg.Mpesa.Environment,
		ConsumerKey:    cfg.Mpesa.ConsumerKey,
		ConsumerSecret: cfg.Mpesa.ConsumerSecret,
		ShortCode:      cfg.Mpesa.ShortCode,
		Passkey:        cfg.Mpesa.Passkey,
		CallbackURL:    cfg.Mpesa.CallbackURL,
	}, redisClient, log)

	catalogSvc := service.NewCatalogService(repos, tasks, log)
	paymentSvc := service.NewPaymentService(repos, gateway, tasks, log)

	emails := sender.NewEmailSender(sender.Config{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		User:     cfg.SMTP.User,
		Password: cfg.SMTP.Password,
		From:     cfg.SMTP.From,
		TMPLDir:  cfg.SMTP.TMPLDir,
	})

	consumer := worker.NewTaskConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.Topic, repos, catalogSvc, paymentSvc, emails, log)
	defer consumer.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		log.Info("Shutting down worker...")
		cancel()
	}()

	if err := consumer.Run(ctx); err != nil {
		log.Fatal("worker failed", zap.Error(err))
	}
	log.Info("worker stopped gracefully")
}
