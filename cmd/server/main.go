package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"farmshops/internal/config"
	"farmshops/internal/db"
	"farmshops/internal/email"
	"farmshops/internal/images"
	"farmshops/internal/metrics"
	"farmshops/internal/moderation"
	"farmshops/internal/notify"
	"farmshops/internal/server"
	"farmshops/internal/storage"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg := config.Load()

	// Initialize database
	database, err := db.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()

	// Run migrations
	if err := database.RunMigrations(cfg.DatabaseURL); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Println("Migrations completed successfully")

	if cfg.IsDev() {
		if err := database.SeedDevFarms(ctx); err != nil {
			log.Printf("Warning: failed to seed dev farms: %v", err)
		}
	}

	// Moderation pipeline
	engine := moderation.NewEngine(database, cfg.PhotoQuota)

	// Notification dispatcher, detached from the request path
	dispatcher := notify.NewDispatcher(database, email.NewNotifier(cfg), 64)
	go dispatcher.Start(ctx)

	// Photo uploads (optional)
	var uploader *storage.Uploader
	if cfg.IsUploadEnabled() {
		uploader, err = storage.NewUploader(ctx, cfg)
		if err != nil {
			log.Fatalf("Failed to initialize S3 uploader: %v", err)
		}
	} else {
		log.Println("Photo uploads disabled (S3_BUCKET not set)")
	}

	// Display image resolution. Without an API key the resolver serves the
	// stored URL for google-sourced photos instead of a keyless Places URL.
	var places images.URLBuilder
	if cfg.GooglePlacesAPIKey != "" {
		places = images.NewGooglePlaces(cfg.GooglePlacesAPIKey)
	}
	resolver := images.NewResolver(places)

	// Metrics
	metrics.Init(database)

	// HTTP server
	srv := server.New(cfg)
	if err := srv.RegisterRoutes(ctx, database, engine, dispatcher, uploader, resolver); err != nil {
		log.Fatalf("Failed to register routes: %v", err)
	}

	go func() {
		if err := srv.Start(); err != nil {
			log.Printf("Server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	cancel()
	if err := srv.Shutdown(); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}
	log.Println("Server exited")
}
