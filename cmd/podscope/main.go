package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/HerbHall/podscope/internal/config"
	"github.com/HerbHall/podscope/internal/downward"
	"github.com/HerbHall/podscope/internal/metrics"
	"github.com/HerbHall/podscope/internal/server"
	"github.com/HerbHall/podscope/internal/version"
)

func main() {
	configPath := flag.String("config", "", "path to configuration file")
	showVersion := flag.Bool("version", false, "print version and exit")
	dump := flag.Bool("dump", false, "collect once, print the result and exit")
	output := flag.String("output", "json", "dump output format: json or yaml")
	flag.Parse()

	if *showVersion {
		fmt.Println(version.Info())
		return
	}

	if *dump {
		os.Exit(runDump(*configPath, *output, os.Stdout, os.Stderr))
	}

	// Initialize logger
	logger, err := zap.NewProduction()
	if err != nil {
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("podscope starting", version.Fields()...)

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatal("failed to load configuration", zap.Error(err))
	}
	settings, err := cfg.Settings()
	if err != nil {
		logger.Fatal("failed to decode configuration", zap.Error(err))
	}

	collector := downward.NewCollector(
		downward.WithLabelsPath(settings.Labels.Path),
	)
	logger.Info("collector ready", zap.String("labels_path", collector.LabelsPath()))

	var rec *metrics.Recorder
	if settings.Metrics.Enabled {
		rec = metrics.New()
	}

	addr := settings.Server.Addr()
	srv := server.New(server.Options{
		Addr:         addr,
		ReadTimeout:  settings.Server.ReadTimeout,
		WriteTimeout: settings.Server.WriteTimeout,
		IdleTimeout:  settings.Server.IdleTimeout,
		Metrics:      rec,
	}, collector, logger.Named("http"))

	// Start server in background
	go func() {
		if err := srv.Start(); err != nil {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	logger.Info("podscope ready", zap.String("addr", addr), zap.Bool("metrics", rec != nil))

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh

	logger.Info("received shutdown signal", zap.String("signal", sig.String()))

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", zap.Error(err))
	}

	logger.Info("podscope stopped")
}
