package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/bhavisyaji/backend/internal/config"
	"github.com/bhavisyaji/backend/internal/database"
)

func main() {
	envFile := flag.String("env", ".env", "path to the .env file")
	flag.Parse()
	args := flag.Args()

	if len(args) < 1 {
		fmt.Println("Error: migration command is required")
		fmt.Println("Usage: go run ./cmd/migrate [-env .env] [command] [args]")
		fmt.Println("Commands: up, down, status, redo, version, up-to VERSION, down-to VERSION")
		os.Exit(1)
	}

	logger, _ := zap.NewDevelopment()
	defer logger.Sync()

	cfg, err := config.Load(*envFile)
	if err != nil {
		logger.Fatal("config error", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	db, err := database.InitDB(ctx, cfg.Database, logger)
	if err != nil {
		logger.Fatal("database error", zap.Error(err))
	}
	defer db.Close()

	command := args[0]
	logger.Info("starting migration", zap.String("command", command))
	if err := database.RunMigrations(ctx, db, command, args[1:]...); err != nil {
		logger.Fatal("migration error", zap.Error(err))
	}
	logger.Info("migration finished")
}
