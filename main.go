package main

import (
	"github.com/wfunc/cardbot/config"
	"github.com/wfunc/cardbot/logger"
	"github.com/wfunc/cardbot/persistence"
	"github.com/wfunc/cardbot/server"
)

func main() {
	// Initialize logger
	logger.Init()
	defer logger.Sync()

	// Load configuration
	cfg, err := config.LoadConfig(".")
	if err != nil {
		logger.Log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize Database
	db, err := persistence.NewGormPostgres(
		cfg.Database.Postgres.Host,
		cfg.Database.Postgres.Port,
		cfg.Database.Postgres.User,
		cfg.Database.Postgres.Password,
		cfg.Database.Postgres.DBName,
	)
	if err != nil {
		logger.Log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	logger.Log.Info("Database connection successful.")

	// Initialize Gateway
	gateway, err := server.NewGateway(cfg, db)
	if err != nil {
		logger.Log.Fatalf("Failed to create gateway: %v", err)
	}

	// Start Server
	if err := gateway.Start(); err != nil {
		logger.Log.Fatalf("Failed to start gateway: %v", err)
	}
}
