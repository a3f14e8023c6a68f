package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/vytor/flashdeck/internal/api"
	"github.com/vytor/flashdeck/internal/config"
	"github.com/vytor/flashdeck/internal/db"
	"github.com/vytor/flashdeck/internal/logger"
	"github.com/vytor/flashdeck/internal/repository/sqlite"
	"github.com/vytor/flashdeck/internal/scheduler"
	"github.com/vytor/flashdeck/internal/services"
)

func main() {
	cfg := config.Load()

	log := logger.New(
		logger.WithLevel(logger.ParseLevel(cfg.LogLevel)),
		logger.WithColors(true),
	)
	logger.SetDefault(log)

	log.Info("===========================================")
	log.Info("Flashdeck Server Starting")
	log.Info("===========================================")
	if err := cfg.Validate(); err != nil {
		log.Error("%v", err)
		os.Exit(1)
	}
	log.Info("configuration loaded")
	log.Debug("addr=%s", cfg.Addr)
	log.Debug("db_path=%s", cfg.DBPath)
	log.Debug("log_level=%s", cfg.LogLevel)
	log.Debug("max_new_cards=%d", cfg.MaxNewCards)
	log.Debug("max_learning_cards=%d", cfg.MaxLearningCards)
	log.Debug("max_review_cards=%d", cfg.MaxReviewCards)

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		log.Error("failed to open database: %v", err)
		os.Exit(1)
	}
	defer func() {
		log.Debug("closing database connection")
		database.Close()
	}()

	cards := sqlite.NewCardRepository(database.DB)
	sessions := sqlite.NewSessionRepository(database.DB)
	sessionCards := sqlite.NewSessionCardRepository(database.DB)
	reviewLogs := sqlite.NewReviewLogRepository(database.DB)
	collections := sqlite.NewCollectionRepository(database.DB)
	store := sqlite.NewTrainingStore(database.DB)

	collectionService := services.NewCollectionService(collections, cards)
	trainingService := services.NewTrainingService(
		services.TrainingDeps{
			Cards:        cards,
			Sessions:     sessions,
			SessionCards: sessionCards,
			ReviewLogs:   reviewLogs,
			Collections:  collections,
			Store:        store,
		},
		scheduler.New(scheduler.DefaultParams()),
		services.Quotas{
			MaxNewCards:      cfg.MaxNewCards,
			MaxLearningCards: cfg.MaxLearningCards,
			MaxReviewCards:   cfg.MaxReviewCards,
		},
	)

	srv := &api.Server{
		Collections: collectionService,
		Training:    trainingService,
	}

	httpServer := &http.Server{
		Addr:         cfg.Addr,
		Handler:      srv.Routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("HTTP server listening on %s", cfg.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error: %v", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	sig := <-stop

	log.Info("received signal %v, initiating graceful shutdown", sig)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	log.Debug("shutting down HTTP server")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error: %v", err)
	}

	log.Info("===========================================")
	log.Info("Flashdeck Server Stopped")
	log.Info("===========================================")
}
