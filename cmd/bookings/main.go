package main

import (
	"billboards/internal/bookings/events"
	"billboards/internal/bookings/handler"
	"billboards/internal/bookings/repository"
	"billboards/internal/bookings/service"
	"billboards/internal/bookings/validator"
	cartsrepository "billboards/internal/carts/repository"
	"billboards/pkg/app"
	"billboards/pkg/config"
	"billboards/pkg/kafka"
	kafka_config "billboards/pkg/kafka/config"
	kafka_middleware "billboards/pkg/kafka/middleware"
)

const ServiceName = "bookings"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	cfg.SetRedis()

	cfg.Log.Info("Starting Bookings service")
	producer := initProducer(cfg)
	bookingService := initServices(cfg, producer)

	serverApp := app.NewApplication(cfg)
	serverApp.SetApp(handler.NewBookingHandler(bookingService, cfg.Log))
	serverApp.OnShutdown(func() {
		if err := producer.Close(); err != nil {
			cfg.Log.Error("Failed to close booking producer", "error", err)
		}
	})
	serverApp.Run()
}

func initProducer(cfg *config.Config) *kafka.Producer {
	kafkaCfg, err := kafka_config.Load(cfg.ServiceName)
	if err != nil {
		cfg.Log.Fatal("Invalid Kafka configuration", "error", err)
	}

	producer, err := kafka.NewProducer(kafkaCfg, cfg.BookingsTopic, cfg.BookingsDLQTopic, cfg.Log)
	if err != nil {
		cfg.Log.Fatal("Failed to create booking producer", "error", err)
	}
	producer.Use(kafka_middleware.LoggingProducerMiddleware(cfg.Log))
	return producer
}

func initServices(cfg *config.Config, producer *kafka.Producer) service.BookingService {
	bookingValidator := validator.NewBookingValidator(cfg.Log)
	bookingRepo := repository.NewMongoBookingRepository(cfg)
	cartRepo := cartsrepository.NewMongoCartRepository(cfg)
	bookingService := service.NewBookingService(
		bookingRepo,
		cartRepo,
		events.NewKafkaPublisher(producer, cfg.ServiceName),
		bookingValidator,
		cfg,
	)

	cfg.Log.Info("Booking service initialized",
		"database", cfg.MongoDatabaseName,
		"topic", cfg.BookingsTopic,
	)
	return bookingService
}
