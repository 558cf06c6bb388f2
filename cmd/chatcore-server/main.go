// Package main provides the HTTP server for the chatcore support assistant.
package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/induxo/chatcore/internal/config"
	"github.com/induxo/chatcore/internal/conversation"
	"github.com/induxo/chatcore/internal/db"
	"github.com/induxo/chatcore/internal/generator"
	"github.com/induxo/chatcore/internal/llm"
	"github.com/induxo/chatcore/internal/metrics"
	"github.com/induxo/chatcore/internal/notify"
	"github.com/induxo/chatcore/internal/retriever"
	"github.com/induxo/chatcore/internal/server"
	"github.com/induxo/chatcore/internal/whatsapp"
)

// dedupeWindow bounds how many recently seen webhook message ids are kept.
const dedupeWindow = 4096

func main() {
	wipeDB := flag.Bool("wipe", false, "wipe all content from the database on startup (testing only)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	logger, closeLog := config.SetupLogger(cfg.LogFile, cfg.LogLevel)
	slog.SetDefault(logger)
	defer func() {
		if err := closeLog(); err != nil {
			slog.Error("failed to close log file", "error", err)
		}
	}()

	slog.Info("starting chatcore-server", "port", cfg.ServerPort)

	collector := metrics.NewCollector()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	dbClient, err := db.NewClient(ctx, db.Config{
		URL:       cfg.SurrealDBURL,
		Namespace: cfg.SurrealDBNamespace,
		Database:  cfg.SurrealDBDatabase,
		Username:  cfg.SurrealDBUser,
		Password:  cfg.SurrealDBPass,
		AuthLevel: cfg.SurrealDBAuthLevel,
		Dimension: cfg.EmbedDimension,
	}, logger)
	cancel()
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(context.Background()); err != nil {
			slog.Error("failed to close database", "error", err)
		}
	}()

	ctx, cancel = context.WithTimeout(context.Background(), 30*time.Second)
	if err := dbClient.InitSchema(ctx); err != nil {
		cancel()
		slog.Error("failed to initialize schema", "error", err)
		os.Exit(1)
	}
	if *wipeDB || os.Getenv("CHATCORE_WIPE_DB") == "true" {
		if err := dbClient.WipeData(ctx); err != nil {
			cancel()
			slog.Error("failed to wipe database", "error", err)
			os.Exit(1)
		}
	}
	cancel()

	embedder, err := llm.NewEmbedder(cfg, collector)
	if err != nil {
		slog.Error("failed to create embedder", "error", err)
		os.Exit(1)
	}

	ctx, cancel = context.WithTimeout(context.Background(), 30*time.Second)
	completer, err := llm.NewCompleter(ctx, cfg, collector)
	cancel()
	if err != nil {
		slog.Error("failed to create completion models", "error", err)
		os.Exit(1)
	}

	gen := generator.New(
		retriever.New(embedder, dbClient, logger),
		completer,
		nil,
		logger,
	)

	// WhatsApp channel: server-held conversation state per phone number.
	store := conversation.NewStore(nil)
	waClient := whatsapp.NewClient(cfg.WhatsAppToken, cfg.WhatsAppPhoneID, collector)
	bridge := notify.NewBridge(waClient, cfg.AgentNumbers, logger)

	deduper, err := whatsapp.NewLRUDeduper(dedupeWindow)
	if err != nil {
		slog.Error("failed to create dedupe cache", "error", err)
		os.Exit(1)
	}

	adapter := whatsapp.NewAdapter(whatsapp.Options{
		Store:       store,
		Responder:   gen,
		Sender:      waClient,
		Notifier:    bridge,
		Dedupe:      deduper,
		AgentList:   cfg.AgentNumbers,
		VerifyToken: cfg.WhatsAppVerifyToken,
		Logger:      logger,
	})

	srv := server.New(server.Options{
		Responder: gen,
		Stats:     collector,
		Webhook:   http.HandlerFunc(adapter.Webhook),
		Logger:    logger,
	})

	httpServer := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      srv.Handler(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 60 * time.Second, // Long for LLM responses
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		slog.Info("chat endpoint available", "url", "http://localhost:"+cfg.ServerPort+"/api/chat")
		slog.Info("whatsapp webhook mounted", "path", "/webhook/whatsapp")

		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped")
}
