// Package main provides the HTTP server for the Sophie sales assistant.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/acmeliving/sophie-go/internal/agent"
	"github.com/acmeliving/sophie-go/internal/config"
	"github.com/acmeliving/sophie-go/internal/db"
	"github.com/acmeliving/sophie-go/internal/llm"
	"github.com/acmeliving/sophie-go/internal/metrics"
	"github.com/acmeliving/sophie-go/internal/rag"
	"github.com/acmeliving/sophie-go/internal/server"
	"github.com/acmeliving/sophie-go/internal/service"
)

const version = "0.1.0"

func main() {
	wipeDB := flag.Bool("wipe", false, "wipe all data from database on startup (testing only)")
	seed := flag.Bool("seed", false, "seed the knowledge base on startup if empty")
	flag.Parse()

	cfg := config.Load()

	// Dual output: stderr text + file JSON
	logger, cleanup := config.SetupLogger(cfg.LogFile, cfg.LogLevel)
	defer cleanup()

	logger.Info("sophie-server starting",
		"version", version,
		"port", cfg.ServerPort,
		"surrealdb_url", cfg.SurrealDBURL,
	)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	dbClient, err := db.NewClient(ctx, db.Config{
		URL:       cfg.SurrealDBURL,
		Namespace: cfg.SurrealDBNamespace,
		Database:  cfg.SurrealDBDatabase,
		Username:  cfg.SurrealDBUser,
		Password:  cfg.SurrealDBPass,
		AuthLevel: cfg.SurrealDBAuthLevel,
	}, logger)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		cancel()
		os.Exit(1)
	}
	defer func() {
		_ = dbClient.Close(context.Background())
	}()

	if *wipeDB || os.Getenv("SOPHIE_WIPE_DB") == "true" {
		if err := dbClient.WipeData(ctx); err != nil {
			logger.Error("failed to wipe database", "error", err)
			cancel()
			os.Exit(1)
		}
		logger.Info("database wiped")
	}

	if err := dbClient.InitSchema(ctx, cfg.EmbedDimension); err != nil {
		logger.Error("failed to initialize schema", "error", err)
		cancel()
		os.Exit(1)
	}
	cancel()

	collector := metrics.NewCollector()

	embedder, err := llm.NewEmbedder(cfg, collector)
	if err != nil {
		logger.Error("failed to create embedder", "error", err)
		os.Exit(1)
	}
	model, err := llm.NewModel(cfg, collector)
	if err != nil {
		logger.Error("failed to create model", "error", err)
		os.Exit(1)
	}
	logger.Info("llm initialized",
		"model", model.Model(),
		"embed_model", embedder.Model(),
		"embed_dimension", embedder.Dimension(),
	)

	if *seed {
		seedCtx, seedCancel := context.WithTimeout(context.Background(), 5*time.Minute)
		if _, err := service.NewSeeder(dbClient, embedder).Seed(seedCtx, false); err != nil {
			logger.Error("failed to seed knowledge base", "error", err)
			seedCancel()
			os.Exit(1)
		}
		seedCancel()
	}

	retriever := rag.NewRetriever(embedder, dbClient, collector)
	pipeline := agent.NewPipeline(model, retriever, llm.NewEventExtractor(model), collector, agent.Options{
		AgentName:     cfg.AgentName,
		CommunityName: cfg.CommunityName,
	})
	chat := service.NewChatService(dbClient, pipeline)
	prospects := service.NewProspectService(dbClient)

	srv := server.New(chat, prospects, pipeline, collector, logger)

	httpServer := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      srv.Handler(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 120 * time.Second, // chat turns make multiple LLM calls
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("listening", "url", fmt.Sprintf("http://localhost:%s/", cfg.ServerPort))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}
