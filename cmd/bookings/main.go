package main

import (
	"hallbook/internal/bookings/handler"
	"hallbook/internal/bookings/repository"
	"hallbook/internal/bookings/service"
	"hallbook/internal/bookings/validator"
	"hallbook/internal/lifecycle"
	"hallbook/internal/notifications"
	"hallbook/pkg/app"
	"hallbook/pkg/clock"
	"hallbook/pkg/config"
	"hallbook/pkg/kafka"
	kafka_config "hallbook/pkg/kafka/config"
	kafka_middleware "hallbook/pkg/kafka/middleware"
)

const ServiceName = "bookings"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	defer cfg.GracefulShutdown()

	cfg.Log.Info("Starting Bookings service")

	producer, metrics := initProducer(cfg)
	if producer != nil {
		defer func() {
			cfg.Log.Info("Kafka producer stats", metrics.Snapshot().LogAttrs()...)
			if err := producer.Close(); err != nil {
				cfg.Log.Error("Failed to close Kafka producer", "error", err)
			}
		}()
	}

	clk := clock.NewSystem()
	bookingRepo := repository.NewMongoBookingRepository(cfg)
	bookingService := initServices(cfg, bookingRepo, producer, clk)

	serverApp := app.NewApplication(cfg)
	serverApp.SetApp(handler.NewBookingHandler(bookingService, cfg.Log))

	if cfg.LifecycleEnabled {
		sweeper := lifecycle.NewSweeper(bookingRepo, clk, cfg)
		serverApp.AddWorker("lifecycle", lifecycle.NewScheduler(sweeper, cfg).Run)
	}

	serverApp.Run()
}

func initServices(cfg *config.Config, bookingRepo repository.BookingRepository, producer *kafka.Producer, clk clock.Clock) service.BookingService {
	bookingValidator := validator.NewBookingValidator(cfg.Log, validator.Limits{
		MaxDurationDays: cfg.MaxBookingDurationDays,
		MaxAttendees:    cfg.MaxAttendees,
	})

	var notifier service.Notifier
	if producer != nil {
		notifier = notifications.NewPublisher(producer, cfg.Log)
	}

	bookingService := service.NewBookingService(
		bookingRepo,
		repository.NewResourceLockRepository(cfg),
		repository.NewResourceDirectory(cfg),
		repository.NewUserDirectory(cfg),
		bookingValidator,
		notifier,
		clk,
		cfg,
	)

	cfg.Log.Info("Booking service initialized",
		"database", cfg.MongoDatabaseName,
		"notifications_enabled", notifier != nil,
		"lifecycle_enabled", cfg.LifecycleEnabled,
	)
	return bookingService
}

// initProducer connects the booking event producer. A broker that cannot be reached
// at start-up disables notifications instead of failing the service.
func initProducer(cfg *config.Config) (*kafka.Producer, *kafka_middleware.Metrics) {
	if !cfg.NotificationsEnabled {
		return nil, nil
	}

	kafkaCfg, err := kafka_config.Load()
	if err != nil {
		cfg.Log.Fatal("Invalid Kafka configuration", "error", err)
	}
	kafkaCfg.LogConfiguration(cfg.Log)

	producer, err := kafka.NewProducer(kafkaCfg, kafkaCfg.BookingEventsTopic, kafkaCfg.BookingEventsDLQ, cfg.Log)
	if err != nil {
		cfg.Log.Error("Failed to create Kafka producer, notifications disabled", "error", err)
		return nil, nil
	}

	metrics := kafka_middleware.NewMetrics()
	producer.Use(kafka_middleware.LoggingProducerMiddleware(cfg.Log))
	producer.Use(metrics.ProducerMiddleware())
	return producer, metrics
}
