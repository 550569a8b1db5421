package main

import (
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/modainteligente/backend/config"
	httpDelivery "github.com/modainteligente/backend/internal/delivery/http"
	"github.com/modainteligente/backend/internal/domain"
	"github.com/modainteligente/backend/internal/infrastructure/cache"
	"github.com/modainteligente/backend/internal/infrastructure/gemini"
	"github.com/modainteligente/backend/internal/infrastructure/postgres"
	"github.com/modainteligente/backend/internal/infrastructure/supabase"
	"github.com/modainteligente/backend/internal/usecase"
)

func main() {
	// Load .env if present; environment variables win
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("WARNING: could not read .env: %v", err)
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	log.Printf("Starting Moda Inteligente Backend v1.0.0")
	log.Printf("Environment: %s", cfg.Server.Environment)
	log.Printf("Port: %s", cfg.Server.Port)
	log.Printf("Store backend: %s", cfg.Store.Backend)

	// Initialize the record store
	var store domain.RecordStore
	switch cfg.Store.Backend {
	case "supabase":
		client := supabase.NewClient(cfg.Store.SupabaseURL, cfg.Store.SupabaseKey)
		if cfg.Server.Environment == "development" {
			client.SetDebug(true)
			log.Printf("Supabase client debug mode enabled")
		}
		log.Printf("Supabase configured: %s", cfg.Store.SupabaseURL)
		store = client
	case "postgres":
		db, err := postgres.Open(cfg.Store.PostgresDSN)
		if err != nil {
			log.Fatalf("Failed to connect to Postgres: %v", err)
		}
		defer db.Close()
		log.Printf("Postgres connected")
		store = postgres.NewStore(db)
	default:
		log.Fatalf("Unknown store backend: %s", cfg.Store.Backend)
	}

	memoryCache := cache.NewMemoryCache()
	log.Printf("Cache TTL: %s", cfg.Cache.TTL)

	drafter := gemini.NewClient(cfg.Gemini.BaseURL, cfg.Gemini.APIKey, cfg.Gemini.Model)
	if cfg.Gemini.APIKey != "" {
		log.Printf("Gemini configured: model=%s", cfg.Gemini.Model)
	} else {
		log.Printf("WARNING: Gemini API key not set - message drafting will be unavailable")
	}

	// Initialize usecase layer
	sniperService := usecase.NewSniperService(store, usecase.SniperConfig{
		WindowDays:     cfg.Sniper.WindowDays,
		MaxLineItems:   cfg.Sniper.MaxLineItems,
		MinPhoneDigits: cfg.Sniper.MinPhoneDigits,
		Debug:          cfg.Server.Environment == "development",
	})
	portfolioService := usecase.NewPortfolioService(store, cfg.Portfolio.PageSize)
	churnService := usecase.NewChurnService(store, cfg.Churn.ThresholdDays)
	dashboardService := usecase.NewDashboardService(store, memoryCache, cfg.Cache.TTL)

	log.Printf("Sniper: window=%dd, max_items=%d, min_phone_digits=%d",
		cfg.Sniper.WindowDays, cfg.Sniper.MaxLineItems, cfg.Sniper.MinPhoneDigits)
	log.Printf("Portfolio page size: %d, churn threshold: %dd",
		cfg.Portfolio.PageSize, cfg.Churn.ThresholdDays)

	// Create HTTP handler with dependencies
	handler := httpDelivery.NewHandler(sniperService, portfolioService, churnService, dashboardService, drafter)

	// Setup router
	router := httpDelivery.SetupRouter(cfg, handler)

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Printf("Server listening on %s", addr)

	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func init() {
	// Set log flags for better debugging
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	log.SetOutput(os.Stdout)
}
