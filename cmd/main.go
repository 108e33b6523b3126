/**
 * @description
 * This is the main entry point for the beneficiary service. Its responsibility
 * is to initialize all necessary components and start the HTTP server that
 * exposes the beneficiary lifecycle, search and analytics endpoints.
 *
 * Key features:
 * - Loads application configuration from environment variables.
 * - Establishes and manages a connection pool to the PostgreSQL database.
 * - Initializes the screening client for pre-registration risk checks.
 * - Wires up the core application logic (services) with its dependencies
 *   (repositories, screening client, audit event producer).
 * - Starts the API server and implements graceful shutdown.
 *
 * @dependencies
 * - The service's internal packages for config, app logic, storage, and external clients.
 * - pgxpool for database connection, godotenv for local config, go-redis for
 *   rate limiting, and rabbitmq for audit event publishing.
 */
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/alokkulkarni/beneficiaries/internal/api"
	"github.com/alokkulkarni/beneficiaries/internal/app"
	"github.com/alokkulkarni/beneficiaries/internal/config"
	"github.com/alokkulkarni/beneficiaries/internal/store"
	"github.com/alokkulkarni/beneficiaries/pkg/middleware"
	"github.com/alokkulkarni/beneficiaries/pkg/rabbitmq"
	"github.com/alokkulkarni/beneficiaries/pkg/screening"
)

func main() {
	// Load .env file for local development.
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Load application configuration.
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("cannot load config: %v", err)
	}

	// Establish database connection pool.
	dbConfig, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Unable to parse database URL: %v\n", err)
	}

	dbConfig.MaxConns = 50
	dbConfig.MinConns = 10
	dbConfig.MaxConnLifetime = 30 * time.Minute
	dbConfig.MaxConnIdleTime = 5 * time.Minute

	// Disable prepared statement caching to prevent conflicts
	dbConfig.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeSimpleProtocol

	dbpool, err := pgxpool.NewWithConfig(context.Background(), dbConfig)
	if err != nil {
		log.Fatalf("Unable to connect to database: %v\n", err)
	}
	defer dbpool.Close()
	log.Println("Database connection established")

	// Audit event producer. The service stays up without RabbitMQ; audit
	// events are then dropped, the database trail is unaffected.
	var producer rabbitmq.Publisher
	if cfg.RabbitMQURL != "" {
		eventProducer, err := rabbitmq.NewEventProducer(cfg.RabbitMQURL)
		if err != nil {
			log.Printf("level=warn component=main msg=\"RabbitMQ unavailable, audit events disabled\" err=%v", err)
			producer = &rabbitmq.NoopProducer{}
		} else {
			producer = eventProducer
			defer eventProducer.Close()
		}
	} else {
		producer = &rabbitmq.NoopProducer{}
	}

	// Per-customer rate limiting on mutation routes, enabled when Redis is
	// configured.
	var limiter *middleware.RateLimiter
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			log.Fatalf("Unable to parse Redis URL: %v\n", err)
		}
		redisClient := redis.NewClient(opts)
		defer redisClient.Close()
		limiter = middleware.NewRateLimiter(
			redisClient,
			"beneficiaries",
			int(cfg.RateLimitMutations),
			time.Duration(cfg.RateLimitWindowSecs)*time.Second,
		)
		log.Println("Redis rate limiter enabled")
	}

	// Set up dependencies.
	beneficiaryRepo := store.NewPostgresBeneficiaryRepository(dbpool)
	auditRepo := store.NewPostgresAuditRepository(dbpool)
	screeningClient := screening.NewClient(cfg.ScreeningAPIBaseURL, cfg.ScreeningAPIKey)

	validator := app.NewValidator(app.ValidationConfig{
		Enabled:    cfg.ValidationEnabled,
		StrictMode: cfg.ValidationStrictMode,
	}, screeningClient)
	auditService := app.NewAuditService(auditRepo, producer, app.AuditConfig{Strict: cfg.AuditStrict})
	beneficiaryService := app.NewBeneficiaryService(beneficiaryRepo, validator, auditService)

	// Setup and start HTTP server.
	router := api.NewRouter(cfg, beneficiaryService, auditService, limiter)
	server := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.ServerPort),
		Handler: router,
	}

	go func() {
		log.Printf("Starting HTTP server on port %s", cfg.ServerPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Could not start server: %s\n", err)
		}
	}()

	log.Println("Beneficiary service is running.")

	// Wait for termination signal for graceful shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down beneficiary service...")

	// Create a context with a timeout for shutdown.
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Shutdown the HTTP server.
	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server shutdown failed: %v", err)
	}

	log.Println("Server gracefully stopped")
}
