package main

import (
	"fmt"
	"log"

	"github.com/ridwanfathin/receipt-normalizer-service/internal/config"
	"github.com/ridwanfathin/receipt-normalizer-service/internal/database"
	"github.com/ridwanfathin/receipt-normalizer-service/internal/enricher"
	"github.com/ridwanfathin/receipt-normalizer-service/internal/handler"
	"github.com/ridwanfathin/receipt-normalizer-service/internal/openrouter"
	"github.com/ridwanfathin/receipt-normalizer-service/internal/repository"
	"github.com/ridwanfathin/receipt-normalizer-service/internal/server"
	"github.com/ridwanfathin/receipt-normalizer-service/internal/service"
)

func main() {
	// Load configuration
	log.Println("Loading configuration...")
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Select the enrichment intelligence: OpenRouter when configured,
	// the deterministic rule path otherwise
	var intel enricher.Intelligence
	if cfg.UseIntelligence && cfg.OpenRouterAPIKey != "" {
		log.Println("Using OpenRouter intelligence for enrichment...")
		intel = openrouter.NewClient(&openrouter.Config{
			APIKey:  cfg.OpenRouterAPIKey,
			ModelID: cfg.OpenRouterModelID,
			Timeout: cfg.OpenRouterTimeout,
		})
	} else {
		log.Println("Using rule-based enrichment...")
	}
	receiptEnricher := enricher.New(intel)

	// Initialize repository
	log.Println("Initializing repository...")
	var repo repository.ReceiptRepository
	if cfg.PostgresURL != "" {
		db, err := database.NewPostgresDB(cfg.PostgresURL)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer db.Close()
		repo = repository.NewPostgresReceiptRepository(db.Pool())
	} else {
		repo = repository.NewMemoryReceiptRepository()
	}

	// Create pipeline service
	log.Println("Creating receipt pipeline service...")
	pipelineService := service.NewPipelineService(receiptEnricher, repo, cfg.MaxWorkers)

	// Create handler
	receiptHandler := handler.NewReceiptHandler(pipelineService)

	// Create and configure server
	log.Println("Configuring server...")
	appServer := server.NewServer(cfg, receiptHandler)

	// Start server (blocking call)
	log.Printf("Starting server on port %d...", cfg.Port)
	if err := appServer.Start(); err != nil {
		log.Fatalf("Server error: %v", err)
	}

	fmt.Println("Server shutdown complete")
}
