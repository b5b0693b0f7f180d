package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"hallbook/internal/notifications"
	"hallbook/pkg/config"
	"hallbook/pkg/kafka"
	kafka_config "hallbook/pkg/kafka/config"
	kafka_middleware "hallbook/pkg/kafka/middleware"
)

const ServiceName = "notifications"

func main() {
	cfg := config.Load(ServiceName)

	kafkaCfg, err := kafka_config.Load()
	if err != nil {
		cfg.Log.Fatal("Invalid Kafka configuration", "error", err)
	}
	kafkaCfg.LogConfiguration(cfg.Log)

	handler := notifications.NewHandler(notifications.NewLogDeliverer(cfg.Log), cfg.Log)

	consumer, err := kafka.NewConsumer(
		kafkaCfg,
		kafkaCfg.BookingEventsTopic,
		kafkaCfg.NotificationsGroup,
		kafkaCfg.BookingEventsDLQ,
		handler.Handle,
		cfg.Log,
	)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka consumer", "error", err)
	}

	metrics := kafka_middleware.NewMetrics()
	consumer.Use(kafka_middleware.LoggingConsumerMiddleware(cfg.Log))
	consumer.Use(metrics.ConsumerMiddleware())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg.Log.Info("Starting notifications consumer",
		"topic", kafkaCfg.BookingEventsTopic,
		"group", kafkaCfg.NotificationsGroup,
	)

	err = consumer.Start(ctx)
	if closeErr := consumer.Close(); closeErr != nil {
		cfg.Log.Error("Failed to close Kafka consumer", "error", closeErr)
	}
	cfg.Log.Info("Kafka consumer stats", metrics.Snapshot().LogAttrs()...)

	if err != nil && !errors.Is(err, context.Canceled) {
		cfg.Log.Fatal("Notifications consumer stopped with error", "error", err)
	}
	cfg.Log.Info("Notifications consumer stopped")
}
