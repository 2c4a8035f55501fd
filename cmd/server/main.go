package main // Entry point package

import (
	"context" // context bounds the startup schema migration
	"log"     // Logging library
	"time"    // timeouts for startup work

	"github.com/joho/godotenv"    // godotenv loads .env files in development
	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/iliyamo/locker-reservation/internal/config"     // Internal config loader
	"github.com/iliyamo/locker-reservation/internal/database"   // MySQL connection and schema
	"github.com/iliyamo/locker-reservation/internal/handler"    // HTTP handlers
	"github.com/iliyamo/locker-reservation/internal/middleware" // rate limiting and response caching
	"github.com/iliyamo/locker-reservation/internal/queue"      // RabbitMQ reservation event consumer
	"github.com/iliyamo/locker-reservation/internal/repository" // data access layer
	"github.com/iliyamo/locker-reservation/internal/router"     // Internal router setup
)

func main() {
	// Load a .env file if present.  Real deployments set the variables
	// directly, so a missing file is not an error.
	_ = godotenv.Load()

	cfg := config.Load() // Load environment config

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := database.EnsureSchema(ctx, db); err != nil {
		cancel()
		log.Fatalf("schema: %v", err)
	}
	cancel()

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	lockers := repository.NewLockerRepo(db)
	reservations := repository.NewReservationRepo(db)

	authHandler := handler.NewAuthHandler(cfg, users, tokens)
	lockerHandler := handler.NewLockerHandler(lockers)
	reservationHandler := handler.NewReservationHandler(reservations, lockers)

	e := echo.New() // Create Echo instance

	// Redis backs the rate limiter and the list cache.  Both middlewares
	// fail open, so a missing Redis only disables them.
	rdb := config.NewRedisClient()
	var cacheMW echo.MiddlewareFunc
	if rdb != nil {
		rlCfg := config.LoadRateLimitConfig()
		if rlCfg.Enabled {
			e.Use(middleware.NewTokenBucket(rlCfg, rdb))
		}
		cCfg := config.LoadCacheConfig()
		if cCfg.Enabled {
			cacheMW = middleware.ResponseCache(cCfg, rdb)
		}
	}

	router.RegisterRoutes(e) // Register application routes
	router.RegisterAuth(e, authHandler, cfg.JWTSecret)
	router.RegisterLockers(e, lockerHandler, cfg.JWTSecret, cacheMW)
	router.RegisterReservations(e, reservationHandler, cfg.JWTSecret)

	// The consumer reconnects on its own; losing the broker never stops
	// the API.
	go func() {
		if err := queue.StartReservationConsumer(); err != nil {
			log.Printf("queue consumer: %v", err)
		}
	}()

	addr := ":" + cfg.Port                                // Address string with port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env) // Print startup info

	if err := e.Start(addr); err != nil { // Start HTTP server
		log.Fatal(err) // Log and exit if server fails
	}
}
