package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/blockpi/backend/internal/api"
	"github.com/blockpi/backend/internal/cache"
	"github.com/blockpi/backend/internal/config"
	"github.com/blockpi/backend/internal/database"
	"github.com/blockpi/backend/internal/experiment"
	"github.com/blockpi/backend/internal/migrations"
	"github.com/blockpi/backend/internal/redis"
	"github.com/blockpi/backend/internal/store"
	"github.com/blockpi/backend/internal/ws"
	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	goredis "github.com/redis/go-redis/v9"
)

func main() {
	// Initialize configuration (loads .env when present)
	cfg := config.Load()
	production := cfg.Environment == "production"

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize database; simulations still run without it
	var db *sqlx.DB
	if conn, err := database.Connect(cfg.DatabaseURL); err != nil {
		if production {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		log.Printf("[DB] Database unavailable, results will not be saved: %v", err)
	} else {
		db = conn
		defer db.Close()
	}

	// Run migrations on start if requested
	if db != nil && os.Getenv("MIGRATE_ON_START") == "true" {
		log.Println("[MIGRATE] Running DB migrations on startup...")
		if err := migrations.RunMigrations(cfg.DatabaseURL, "migrations"); err != nil {
			log.Fatalf("Failed to run migrations: %v", err)
		}
	}

	// Initialize Redis; caching and the live feed are skipped without it
	var rdb *goredis.Client
	if client, err := redis.Connect(cfg.RedisURL); err != nil {
		if production {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		log.Printf("[CACHE] Redis unavailable, caching disabled: %v", err)
	} else {
		rdb = client
		defer rdb.Close()
	}

	var st *store.Store
	if db != nil {
		st = store.New(db)
	}
	ch := cache.New(rdb, time.Duration(cfg.CacheTTLSeconds)*time.Second)

	// Fan saved-result events out to feed sockets
	if err := ws.StartEventSubscriber(ctx, rdb, ws.FeedHub); err != nil {
		log.Printf("[WS] %v", err)
	}

	// Background workers
	if st != nil {
		go store.StartRetentionWorker(ctx, st, cfg)
	}
	go experiment.StartWarmer(ctx, ch, cfg)

	// Set up Gin router
	if production {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()
	api.SetupRoutes(router, db, st, ch, cfg)

	port := cfg.Port
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{Addr: ":" + port, Handler: router}

	go func() {
		log.Printf("Starting blockpi server on port %s", port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}
}
