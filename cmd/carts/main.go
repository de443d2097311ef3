package main

import (
	"billboards/internal/carts/handler"
	"billboards/internal/carts/repository"
	"billboards/internal/carts/service"
	"billboards/internal/carts/validator"
	"billboards/pkg/app"
	"billboards/pkg/client"
	"billboards/pkg/config"
)

const ServiceName = "carts"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	cfg.SetRedis()

	cfg.Log.Info("Starting Carts service")
	cartService := initServices(cfg)
	serverApp := app.NewApplication(cfg)
	serverApp.SetApp(handler.NewCartHandler(cartService, cfg.Log))
	serverApp.Run()
}

func initServices(cfg *config.Config) service.CartService {
	inventory := client.NewInventoryClient(cfg.InventoryServiceURL, cfg.RequestTimeout)
	cartRepo := repository.NewMongoCartRepository(cfg)
	cartService := service.NewCartService(
		cartRepo,
		inventory,
		validator.NewCartValidator(),
		cfg,
	)

	cfg.Log.Info("Cart service initialized",
		"database", cfg.MongoDatabaseName,
		"inventory_url", cfg.InventoryServiceURL,
	)
	return cartService
}
