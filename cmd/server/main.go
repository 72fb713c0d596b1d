package main // Entry point package

import (
	"context"
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/hotelio/hotel-reservation/internal/cascade"
	"github.com/hotelio/hotel-reservation/internal/config"
	"github.com/hotelio/hotel-reservation/internal/database"
	"github.com/hotelio/hotel-reservation/internal/engine"
	"github.com/hotelio/hotel-reservation/internal/handler"
	"github.com/hotelio/hotel-reservation/internal/middleware"
	"github.com/hotelio/hotel-reservation/internal/queue"
	"github.com/hotelio/hotel-reservation/internal/router"
	"github.com/hotelio/hotel-reservation/internal/store"
)

func main() {
	_ = godotenv.Load() // .env is optional; real env vars win

	cfg := config.Load()
	ctx := context.Background()

	// Persistence: MySQL in normal operation, in-memory for local runs.
	var st *store.Store
	switch cfg.StoreDriver {
	case "memory":
		st = store.NewMemory()
	default:
		db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
		if err != nil {
			log.Fatalf("open database: %v", err)
		}
		if err := store.EnsureSchema(ctx, db); err != nil {
			log.Fatalf("ensure schema: %v", err)
		}
		st = store.NewMySQL(db)
	}

	// Event relay: publish through the spooler so broker outages never
	// fail a client request.
	spooler := queue.NewSpooler(&queue.Rabbit{URL: queue.BrokerURL()})
	go spooler.Run(ctx)

	eng := engine.New(st, spooler)
	csc := cascade.New(st, eng, spooler)
	h := handler.New(st, eng, csc, spooler)

	e := echo.New()
	e.HideBanner = true

	// Response cache on read-only routes; a nil Redis client disables it.
	cacheCfg := config.LoadCacheConfig()
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable, response cache disabled")
	}
	router.RegisterRoutes(e, h, middleware.ResponseCache(cacheCfg, rdb))

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s, store=%s)", addr, cfg.Env, cfg.StoreDriver)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
