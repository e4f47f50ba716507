package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"spv-lens/pkg/config"
	"spv-lens/pkg/logging"
	"spv-lens/pkg/metrics"
	"spv-lens/pkg/server"
	"spv-lens/pkg/store"
)

func main() {
	cfg, err := config.ParseWeb(os.Args[1:])
	if err != nil {
		if config.IsHelp(err) {
			fmt.Println(err)
			return
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	logger := logging.Must(cfg.Logging())
	defer func() { _ = logger.Sync() }()

	var db *store.DB
	if cfg.DataDir != "" {
		db, err = store.Open(cfg.DataDir, logger)
		if err != nil {
			logger.Fatal("open proof store", zap.String("datadir", cfg.DataDir), zap.Error(err))
		}
		defer db.Close()
	}

	srv := server.New(server.Options{
		Logger:      logger,
		Metrics:     metrics.New(logger),
		Store:       db,
		Network:     cfg.Network,
		CORSOrigins: cfg.CORSOrigins,
		StaticDir:   cfg.StaticDir,
	})

	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Warn("shutdown", zap.Error(err))
		}
	}()

	// Print URL and start server
	fmt.Printf("http://127.0.0.1:%s\n", cfg.Port)
	logger.Info("listening", zap.String("addr", httpServer.Addr), zap.String("network", cfg.Network), zap.Bool("store", db != nil))
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("serve", zap.Error(err))
	}
}
