package main

import (
	"context"
	"log"
	"time"

	awspkg "order-service/aws"
	"order-service/controllers"
	"order-service/database"
	"order-service/kafka"
	"order-service/logger"
	"order-service/models"
	"order-service/repository"
	"order-service/routes"
	"order-service/sender"
	"order-service/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	cfg, err := LoadConfig()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logger.Initialize(cfg.Environment)
	defer logger.Sync()

	if err := database.Connect(); err != nil {
		logger.Log.Fatal("database connection failed", zap.Error(err))
	}
	if err := database.DB.AutoMigrate(
		&models.Product{},
		&models.Variation{},
		&models.Cart{},
		&models.CartItem{},
		&models.Order{},
		&models.OrderItem{},
		&models.PendingCheckout{},
	); err != nil {
		logger.Log.Fatal("migration failed", zap.Error(err))
	}

	store := repository.NewGormStore(database.DB)

	// optional infrastructure: the service runs without any of these
	var guard *database.CallbackGuard
	if redisClient, err := database.NewRedisClient(); err != nil {
		logger.Log.Warn("redis unavailable, callback replay fast path disabled", zap.Error(err))
	} else {
		guard = database.NewCallbackGuard(redisClient, 24*time.Hour)
	}

	var producer services.EventPublisher
	if len(cfg.KafkaBrokers) > 0 {
		kafkaProducer := kafka.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopic, logger.Log)
		defer kafkaProducer.Close()
		producer = kafkaProducer
	} else {
		logger.Log.Warn("KAFKA_BROKERS not set, order events disabled")
	}

	var snsClient awspkg.SNSPublisher
	if cfg.SNSTopicArn != "" {
		awsCfg, err := awspkg.LoadAWSConfig(context.Background())
		if err != nil {
			logger.Log.Warn("aws config load failed, sns mirror disabled", zap.Error(err))
		} else {
			snsClient = awspkg.NewSNSClient(awsCfg)
		}
	}

	var emailSender sender.EmailSender
	if smtpConfig, err := sender.SMTPConfigFromEnv(); err != nil {
		logger.Log.Warn("smtp not configured, order emails disabled", zap.Error(err))
	} else {
		emailSender = sender.NewSMTPSender(smtpConfig)
	}

	events := services.NewEventEmitter(producer, snsClient, cfg.SNSTopicArn, logger.Log)
	notifications := services.NewNotificationService(emailSender, logger.Log)
	reservations := services.NewReservationService(logger.Log)
	payments := services.NewPaymentService(store, reservations, notifications, events, guard, cfg.Gateway, logger.Log)
	orders := services.NewOrderService(store, reservations, payments, notifications, events, logger.Log)

	orderController := controllers.NewOrderController(orders)
	paymentController := controllers.NewPaymentController(payments)

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery(), logger.RequestLogger())

	routes.RegisterRoutes(r, orderController, paymentController)

	logger.Log.Info("order service listening", zap.String("port", cfg.Port))
	if err := r.Run(":" + cfg.Port); err != nil {
		logger.Log.Fatal("server error", zap.Error(err))
	}
}
