package main

import (
	"database/sql"
	"flag"
	"log"
	"net/http"
	"time"

	_ "github.com/lib/pq"

	httpapi "bikerental-backend/internal/api/http"
	"bikerental-backend/internal/availability"
	"bikerental-backend/internal/config"
	"bikerental-backend/internal/logger"
	"bikerental-backend/internal/pricing"
	"bikerental-backend/internal/repository/postgres"
	"bikerental-backend/internal/security"
	"bikerental-backend/internal/service"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting Bike Rental Backend...", "log_level", cfg.Log.Level, "log_format", cfg.Log.Format)
	logger.Info("Server configuration", "address", cfg.GetServerAddress())
	logger.Info("Database configuration", "host", cfg.Database.Host, "port", cfg.Database.Port, "database", cfg.Database.Database, "user", cfg.Database.User)

	// Initialize Database
	db, err := sql.Open("postgres", cfg.GetDatabaseConnectionString())
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Test database connection
	if err := db.Ping(); err != nil {
		logger.Error("Failed to ping database", "error", err)
		log.Fatalf("Failed to ping database: %v", err)
	}
	logger.Info("Database connection established")

	// Initialize Repositories
	store := postgres.NewStore(db)

	// Initialize Security
	tokenManager := security.NewTokenManager(cfg.Auth.JWTSecret)

	// Initialize Services
	resolver := availability.NewResolver(
		store.BikeRepository,
		store.RentalRepository,
		store.MaintenanceRepository,
	)
	pricer := pricing.NewEngine(store.PricingRepository)
	calculator := service.NewReturnCalculator(store.SettingsRepository)
	emailSvc := service.NewEmailService(
		cfg.Email.SendGridAPIKey,
		cfg.Email.FromEmail,
		cfg.Email.FromName,
	)
	rentalSvc := service.NewRentalService(
		store.RentalRepository,
		store.BikeRepository,
		store.CustomerRepository,
		store.SettingsRepository,
		resolver,
		pricer,
		calculator,
		emailSvc,
	)

	// Initialize HTTP handlers
	rentalHandler := httpapi.NewRentalHandler(rentalSvc)
	availabilityHandler := httpapi.NewAvailabilityHandler(resolver, rentalSvc)
	pricingHandler := httpapi.NewPricingHandler(pricer)

	router := httpapi.NewRouter(tokenManager, rentalHandler, availabilityHandler, pricingHandler)

	server := &http.Server{
		Addr:         cfg.GetServerAddress(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	logger.Info("HTTP server listening", "address", cfg.GetServerAddress())
	if err := server.ListenAndServe(); err != nil {
		logger.Error("HTTP server error", "error", err)
		log.Fatalf("Failed to serve: %v", err)
	}
}
