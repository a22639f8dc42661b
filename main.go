package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"storefront/internal/app"
	"storefront/internal/cache"
	"storefront/internal/config"
	"storefront/internal/handlers"
	"storefront/internal/repositories"
	"storefront/pkg/rabbitmq"
)

func main() {
	// --- Configuration ---
	cfg, err := config.Load(".env")
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	setupLogging(cfg)

	// --- Database ---
	db, err := repositories.Open(cfg.DBDriver, cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	if err := repositories.AutoMigrate(db); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	ctx := context.Background()
	deps := app.Deps{DB: db, Config: cfg, Probes: map[string]handlers.Probe{}}

	// --- Catalog cache (optional) ---
	if cfg.RedisURL != "" {
		catalogCache := cache.Connect(ctx, cfg.RedisURL, cfg.CacheTTL)
		defer catalogCache.Close()
		deps.Cache = catalogCache
		if catalogCache.Enabled() {
			deps.Probes["redis"] = catalogCache.Ping
		}
	}

	// --- RabbitMQ event publisher (optional) ---
	if cfg.RabbitMQURL != "" {
		mqClient, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL})
		if err != nil {
			log.WithError(err).Warn("RabbitMQ unavailable, catalog events disabled")
		} else {
			defer mqClient.Close()
			deps.Events = mqClient
		}
	}

	// --- Audit log in MongoDB (optional, defaults to the database) ---
	if cfg.MongoURI != "" {
		client, err := connectMongo(ctx, cfg.MongoURI)
		if err != nil {
			log.WithError(err).Warn("MongoDB unavailable, audit log stays in the database")
		} else {
			defer func() {
				disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				client.Disconnect(disconnectCtx)
			}()
			audit := repositories.NewMongoAuditRepository(client.Database(cfg.MongoDB).Collection("audit_entries"))
			if err := audit.EnsureIndexes(ctx); err != nil {
				log.WithError(err).Warn("Failed to create audit indexes")
			}
			deps.Audit = audit
			deps.Probes["mongo"] = func(ctx context.Context) error { return client.Ping(ctx, nil) }
		}
	}

	server := app.New(deps)

	// --- Start HTTP Server ---
	log.WithFields(log.Fields{"port": cfg.AppPort, "env": cfg.AppEnv, "db": cfg.DBDriver}).Info("Starting server")

	// Graceful shutdown handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := server.Listen(cfg.AppPort); err != nil {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	<-quit
	log.Info("Shutting down server...")

	if err := server.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.WithError(err).Error("Error during Fiber shutdown")
	}
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}
	log.Info("Server gracefully stopped")
}

func setupLogging(cfg *config.Config) {
	if cfg.IsProduction() {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.WithError(err).Warn("Unknown LOG_LEVEL, using info")
		level = log.InfoLevel
	}
	log.SetLevel(level)
}

func connectMongo(ctx context.Context, uri string) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, nil); err != nil {
		client.Disconnect(context.Background())
		return nil, err
	}
	log.Info("Connected to MongoDB audit store")
	return client, nil
}
