package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/iwvelando/mortgage-simulator/internal/config"
	"github.com/iwvelando/mortgage-simulator/internal/logging"
	"github.com/iwvelando/mortgage-simulator/internal/metrics"
	"github.com/iwvelando/mortgage-simulator/internal/server"
	"github.com/iwvelando/mortgage-simulator/internal/simulation"
	"github.com/iwvelando/mortgage-simulator/internal/store"
	"github.com/iwvelando/mortgage-simulator/internal/tracing"
	"github.com/iwvelando/mortgage-simulator/pkg/constants"
	"go.uber.org/zap"
)

func main() {
	configLocation := flag.String("config", constants.DefaultConfigFile, "path to configuration file")
	serverConfigLocation := flag.String("server-config", constants.DefaultServerConfigFile, "path to server configuration file")
	addressFlag := flag.String("address", "", "listen address override, e.g. :8080")
	maxUploadFlag := flag.String("max-upload-size", "", "batch upload size override, e.g. 512K or 10M")
	logLevel := flag.String("log-level", "", "log level override (debug, info, warn, error)")
	flag.Parse()

	conf, err := config.LoadConfiguration(*configLocation)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to load configuration at %s\", \"error\": \"%v\"}\n", *configLocation, err)
		os.Exit(1)
	}

	serverCfg, err := server.LoadConfig(*serverConfigLocation, conf.Server)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to load server configuration at %s\", \"error\": \"%v\"}\n", *serverConfigLocation, err)
		os.Exit(1)
	}
	if *addressFlag != "" {
		serverCfg.Address = *addressFlag
	}
	if *maxUploadFlag != "" {
		size, err := server.ParseSize(*maxUploadFlag)
		if err != nil {
			fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"invalid max upload size %s\", \"error\": \"%v\"}\n", *maxUploadFlag, err)
			os.Exit(1)
		}
		serverCfg.SetUploadSizeBytes(size)
	}

	logger, err := logging.New(mergeLogging(conf.Logging, serverCfg.Logging), *logLevel)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to initialize logger\", \"error\": \"%v\"}\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync()
	}()

	for _, warning := range conf.ValidateConfiguration() {
		logger.Debug("Configuration warning: "+warning,
			zap.String("op", "main"),
		)
	}

	shutdownTracing, err := tracing.Init(context.Background(), tracing.Config{
		Endpoint:    conf.Tracing.Endpoint,
		Insecure:    conf.Tracing.Insecure,
		ServiceName: conf.Tracing.ServiceName,
		Version:     serverCfg.Version,
	}, logger)
	if err != nil {
		logger.Fatal("failed to initialize tracing",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}

	repo, err := store.Open(store.Config{Driver: conf.Storage.Driver, DSN: conf.Storage.DSN}, logger)
	if err != nil {
		logger.Fatal("failed to open simulation store",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}
	defer func() {
		if err := repo.Close(); err != nil {
			logger.Warn("failed to close simulation store",
				zap.String("op", "main"),
				zap.Error(err),
			)
		}
	}()

	workers := conf.Batch.Workers
	if workers <= 0 {
		workers = constants.DefaultBatchWorkers
	}

	m := metrics.New()
	calc := simulation.NewCalculator(logger, simulation.WithRecorder(m), simulation.WithWorkers(workers))
	svc := simulation.NewService(calc, repo, logger)
	router := server.NewRouter(server.NewHandler(logger, svc, repo, m, serverCfg))

	srv := &http.Server{
		Addr:         serverCfg.Address,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server starting",
			zap.String("op", "main"),
			zap.String("address", serverCfg.Address),
			zap.String("version", serverCfg.Version),
			zap.String("storage", conf.Storage.Driver),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed",
				zap.String("op", "main"),
				zap.Error(err),
			)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server", zap.String("op", "main"))

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}
	if err := shutdownTracing(ctx); err != nil {
		logger.Warn("failed to flush traces",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}

	logger.Info("server stopped", zap.String("op", "main"))
}

// mergeLogging lets the server config override the main logging settings
// field by field.
func mergeLogging(base, override config.LoggingConfig) config.LoggingConfig {
	if override.Level != "" {
		base.Level = override.Level
	}
	if override.Format != "" {
		base.Format = override.Format
	}
	if override.OutputFile != "" {
		base.OutputFile = override.OutputFile
	}
	return base
}
