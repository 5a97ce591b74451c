// backend-go/cmd/ingest/main.go
package main

import (
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/shelfworks/planogram/backend-go/internal/config"
	"github.com/shelfworks/planogram/backend-go/internal/ingest"
	"github.com/shelfworks/planogram/backend-go/internal/repository"
	"github.com/shelfworks/planogram/backend-go/internal/repository/postgres"
)

func main() {
	// Load environment variables from .env file if it exists
	_ = godotenv.Load()

	cfg := config.Load()

	// Initialize Google Drive service
	driveService, err := ingest.NewDriveService(os.Getenv("GOOGLE_DRIVE_CREDENTIALS_JSON"))
	if err != nil {
		log.Fatalf("Failed to initialize Google Drive service: %v", err)
	}

	// Initialize database
	db, err := postgres.NewDB(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	ingestRepo := repository.NewIngestRepository(db.DB)
	ingestService := ingest.NewService(driveService, ingestRepo)

	// Create router and register routes
	r := mux.NewRouter()
	handler := ingest.NewHandler(driveService, ingestService)
	handler.RegisterRoutes(r)

	// Health check endpoint
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	}).Methods("GET")

	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Printf("Server starting on %s\n", addr)
	log.Fatal(http.ListenAndServe(addr, r))
}
