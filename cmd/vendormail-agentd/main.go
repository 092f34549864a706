package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/opsdesk/vendormail/internal/agentd/config"
	"github.com/opsdesk/vendormail/internal/agentd/service"
	"github.com/opsdesk/vendormail/internal/agentd/store"
	httpx "github.com/opsdesk/vendormail/internal/agentd/transport/http"
)

func main() {
	cfg := config.Load()

	logStore, dataSource, err := buildStore(cfg)
	if err != nil {
		log.Fatalf("store setup failed: %v", err)
	}
	defer func() {
		if err := logStore.Close(); err != nil {
			log.Printf("store close warning: %v", err)
		}
	}()

	if err := logStore.Load(); err != nil {
		log.Fatalf("store initialization failed: %v", err)
	}

	agent := service.New(logStore, cfg.GmailMode, cfg.GeminiMode)
	server := httpx.NewServer(cfg.HTTPAddr, agent)

	go func() {
		log.Printf("vendormail agentd listening on %s", cfg.HTTPAddr)
		log.Printf("store driver=%s source=%s gmail=%s gemini=%s", cfg.StoreDriver, dataSource, cfg.GmailMode, cfg.GeminiMode)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("http serve failed: %v", err)
		}
	}()

	waitForShutdown(server)
}

func waitForShutdown(server *http.Server) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	log.Println("shutdown signal received; draining http server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("http shutdown warning: %v", err)
	}
}

func buildStore(cfg config.Config) (store.LogStore, string, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.StoreDriver)) {
	case "postgres":
		pgStore, err := store.NewPostgresStore(cfg.DatabaseURL)
		if err != nil {
			return nil, "", err
		}
		return pgStore, "postgres", nil
	case "", "file":
		return store.NewFileStore(cfg.DataFile), cfg.DataFile, nil
	default:
		return nil, "", fmt.Errorf("unsupported STORE_DRIVER %q; expected file|postgres", cfg.StoreDriver)
	}
}
