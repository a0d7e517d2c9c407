// Package main runs the Ethan's Cookies storefront server.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/ethanscookies/storefront/internal/app/runtime"
)

func main() {
	configPath := flag.String("config", "config.yaml", "Path to YAML config file")
	flag.Parse()

	// Local development convenience; a missing .env is fine.
	_ = godotenv.Load()

	if v := os.Getenv("STOREFRONT_CONFIG"); v != "" {
		*configPath = v
	}

	app, err := runtime.NewApplication(*configPath)
	if err != nil {
		log.Fatalf("Failed to initialise storefront: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.Run(ctx); err != nil {
		log.Fatalf("Storefront exited: %v", err)
	}

	if err := app.Shutdown(context.Background()); err != nil {
		log.Printf("Shutdown error: %v", err)
	}
}
