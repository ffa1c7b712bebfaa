package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/emilythestrangee/volunteer-board/backend/internal/config"
	"github.com/emilythestrangee/volunteer-board/backend/internal/database"
	"github.com/emilythestrangee/volunteer-board/backend/internal/middleware"
	"github.com/emilythestrangee/volunteer-board/backend/internal/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	connectCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	store, err := database.Open(connectCtx, cfg)
	cancel()
	if err != nil {
		log.Fatalf("Failed to initialize %s store: %v", cfg.StoreDriver, err)
	}

	logger := middleware.NewLogger(os.Stdout, cfg.IsProduction())
	srv := server.NewServer(cfg, store, logger)

	done := make(chan struct{})
	go func() {
		defer close(done)
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("🛑 Shutting down server...")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Printf("Server forced to shutdown: %v", err)
		}
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("Server error: %v", err)
	}

	<-done
	if err := store.Health.Close(); err != nil {
		log.Printf("Error closing store: %v", err)
	}
	log.Println("✅ Server exited")
}
