package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/devflow-dev/devflow/db"
	"github.com/devflow-dev/devflow/internal/config"
	"github.com/devflow-dev/devflow/internal/server"
)

func main() {
	cfg, err := config.Load()

	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	conn, err := db.Connect(cfg.DatabaseDriver, cfg.DatabaseURL)

	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err = db.MigrateDatabase(conn); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	log.Println("Database connected and migrated")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := server.New(cfg, conn, server.Options{})

	if err = srv.Serve(ctx); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}

	log.Println("Server stopped")
}
