// Package main is the entry point for the todod task service.
package main

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"todoapp/internal/auth"
	"todoapp/internal/server"
	"todoapp/internal/storage"
)

func main() {
	if err := mainInner(); err != nil {
		slog.Error(err.Error())
		os.Exit(1)
	}
}

func mainInner() error {
	// Local-development convenience; a missing .env is not an error.
	_ = godotenv.Load()

	cfg := server.ConfigFromEnv(server.DefaultConfig())

	slog.Info("opening database", "path", cfg.DBPath)
	repo, err := storage.OpenSQLite(cfg.DBPath)
	if err != nil {
		return err
	}
	defer repo.Close()

	if err := storage.MigrateUp(repo.DB()); err != nil {
		return err
	}

	srv := server.NewServer(repo, auth.NewTokens(cfg.JWTSecret))

	slog.Info("listening", "port", cfg.Port)
	return srv.Run(cfg.Port)
}
