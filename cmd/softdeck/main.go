package main

import (
	"log"
	"log/slog"

	"github.com/joho/godotenv"
	"github.com/softdeck/softdeck/db"
	"github.com/softdeck/softdeck/internal/auth"
	"github.com/softdeck/softdeck/internal/config"
	"github.com/softdeck/softdeck/internal/logging"
	"github.com/softdeck/softdeck/internal/router"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file loaded: %v", err)
	}

	cfg, err := config.Load()

	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	slog.SetDefault(logging.NewLogger(cfg.Env))

	if err := auth.Configure(cfg.JWTSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL); err != nil {
		log.Fatalf("Failed to configure auth: %v", err)
	}

	if err := db.ConnectDatabase(cfg.DatabaseURL); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := db.MigrateDatabase(); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	r := router.NewRouter()

	slog.Info("starting server", "port", cfg.Port, "env", cfg.Env)

	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
