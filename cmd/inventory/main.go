package main

import (
	"billboards/internal/inventory/events"
	"billboards/internal/inventory/handler"
	"billboards/internal/inventory/repository"
	"billboards/internal/inventory/service"
	"billboards/internal/inventory/validator"
	"billboards/pkg/app"
	"billboards/pkg/config"
	"billboards/pkg/kafka"
	kafka_config "billboards/pkg/kafka/config"
	kafka_middleware "billboards/pkg/kafka/middleware"
)

const ServiceName = "inventory"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	cfg.SetRedis()

	cfg.Log.Info("Starting Inventory service")
	billboardService := initServices(cfg)

	serverApp := app.NewApplication(cfg)
	serverApp.SetApp(handler.NewBillboardHandler(billboardService, cfg.Log))

	consumer := initBookingConsumer(cfg, billboardService)
	serverApp.AddWorker(consumer)
	serverApp.OnShutdown(func() {
		if err := consumer.Close(); err != nil {
			cfg.Log.Error("Failed to close booking consumer", "error", err)
		}
	})

	serverApp.Run()
}

func initServices(cfg *config.Config) service.BillboardService {
	billboardValidator := validator.NewBillboardValidator(cfg.Log)
	billboardRepo := repository.NewMongoBillboardRepository(cfg)
	billboardService := service.NewBillboardService(
		billboardRepo,
		billboardValidator,
		cfg,
	)

	cfg.Log.Info("Billboard service initialized", "database", cfg.MongoDatabaseName)
	return billboardService
}

// initBookingConsumer projects booking decisions onto billboard occupancy.
func initBookingConsumer(cfg *config.Config, svc service.BillboardService) *kafka.Consumer {
	kafkaCfg, err := kafka_config.Load(cfg.ServiceName)
	if err != nil {
		cfg.Log.Fatal("Invalid Kafka configuration", "error", err)
	}

	consumer, err := kafka.NewConsumer(
		kafkaCfg,
		cfg.BookingsTopic,
		cfg.BookingsConsumerGroup,
		cfg.BookingsDLQTopic,
		events.NewBookingEventHandler(svc, cfg.Log),
		cfg.Log,
	)
	if err != nil {
		cfg.Log.Fatal("Failed to create booking consumer", "error", err)
	}
	consumer.Use(kafka_middleware.LoggingConsumerMiddleware(cfg.Log))

	cfg.Log.Info("Booking consumer initialized",
		"topic", cfg.BookingsTopic,
		"group", cfg.BookingsConsumerGroup,
	)
	return consumer
}
