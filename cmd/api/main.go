package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/IstyxI/foodgram/config"
	"github.com/IstyxI/foodgram/internal/api"
	"github.com/IstyxI/foodgram/internal/database"
	"github.com/IstyxI/foodgram/internal/server"
	"github.com/IstyxI/foodgram/internal/service"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	sqlDB, err := database.New(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer sqlDB.Close()

	db, err := database.NewGorm(cfg)
	if err != nil {
		log.Fatalf("Failed to open ORM connection: %v", err)
	}
	if err := database.RunMigrations(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Redis backs rate limiting and the short-link cache; the API works
	// without it.
	redisClient, err := database.NewRedisClient(cfg)
	if err != nil {
		log.Printf("Redis unavailable, continuing without it: %v", err)
		redisClient = nil
	}

	// S3 media storage is optional in development.
	var mediaService *service.MediaService
	if s3Cfg, err := config.NewS3Config(context.Background(), cfg); err != nil {
		log.Printf("S3 unavailable, image uploads disabled: %v", err)
	} else {
		if err := s3Cfg.SetupBucketPolicy(context.Background()); err != nil {
			log.Printf("Failed to apply bucket policy: %v", err)
		}
		mediaService = service.NewMediaService(s3Cfg)
	}

	shortCodes := service.NewShortCodeAllocator(db, redisClient)
	svcs := api.NewServices(db, cfg.JWTSecret, mediaService, shortCodes)
	srv := server.New(db, sqlDB, redisClient, svcs)

	errChan := make(chan error, 1)
	go func() {
		log.Printf("Starting server on %s:%s", cfg.ServerHost, cfg.ServerPort)
		errChan <- srv.Start(cfg.ServerHost + ":" + cfg.ServerPort)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		if err != nil {
			log.Fatalf("Server error: %v", err)
		}
	case sig := <-quit:
		log.Printf("Received signal: %v", sig)
	}

	log.Println("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server shutdown error: %v", err)
	}
	log.Println("Server stopped")
}
