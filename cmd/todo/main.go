// Package main is the entry point for the todo CLI and interactive UI.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"

	"todoapp/internal/api"
	"todoapp/internal/cli"
	"todoapp/internal/localstore"
	"todoapp/internal/sync"
	"todoapp/internal/tui"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	_ = godotenv.Load()

	store, err := localstore.Open(storePath())
	if err != nil {
		slog.Error(err.Error())
		os.Exit(1)
	}
	rec := sync.NewReconciler(api.NewClient(os.Getenv("TODO_API_URL")), store, slog.Default())
	dispatcher := cli.NewDispatcher(rec, func(ctx context.Context) error {
		return tui.Run(ctx, rec)
	})

	code := dispatcher.Run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	_ = store.Close()
	os.Exit(code)
}

func storePath() string {
	if path := os.Getenv("TODO_DB"); path != "" {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".todo.db"
	}
	return filepath.Join(home, ".todo.db")
}
