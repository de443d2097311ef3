package main

import (
	"billboards/internal/presence"
	"billboards/internal/presence/channel"
	"billboards/internal/presence/handler"
	"billboards/pkg/app"
	"billboards/pkg/config"
)

const ServiceName = "presence"

// The viewer routes live in their own service: httprouter cannot mount
// /billboards/:id next to the inventory's /billboards/id/... routes.
func main() {
	cfg := config.Load(ServiceName)
	cfg.SetRedis()

	cfg.Log.Info("Starting Presence service")
	redisChannel := channel.NewRedisChannel(cfg.Client.Redis, cfg.PresenceStaleAfter, cfg.Log)
	aggregator := presence.NewAggregator(redisChannel, cfg.PresenceHeartbeat, cfg.Log)

	serverApp := app.NewApplication(cfg)
	serverApp.SetApp(handler.NewViewersHandler(aggregator, cfg.CORSAllowedOrigins, cfg.Log))
	serverApp.Run()
}
