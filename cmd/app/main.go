package main

import (
	"flag"
	"log"
	"os"

	"StockDash/internal/di"
	"StockDash/pkg/config"
	applogger "StockDash/pkg/logger"

	"github.com/joho/godotenv"
)

func main() {
	// Parse flags
	configPath := flag.String("config", config.DefaultPath, "config file path")
	flag.Parse()

	// .env is optional
	_ = godotenv.Load()

	// Load config
	cfg, err := config.LoadWithEnv(*configPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	l, err := applogger.New(&applogger.Config{
		Level:  cfg.Logger.Level,
		Format: cfg.Logger.Format,
		Output: cfg.Logger.Output,
	})
	if err != nil {
		log.Fatalf("logger init failed: %v", err)
	}

	l.Info("config loaded",
		applogger.String("env", cfg.Environment),
		applogger.String("backend", cfg.Database.Backend),
	)

	// Wire DI: Initialize all dependencies
	app, cleanup, err := di.InitializeApp(cfg, l)
	if err != nil {
		l.Error("app initialization failed", applogger.Error(err))
		os.Exit(1)
	}

	// Run application (blocks until signal), then release the database
	err = app.Run()
	cleanup()
	if err != nil {
		l.Error("app error", applogger.Error(err))
		os.Exit(1)
	}
}
