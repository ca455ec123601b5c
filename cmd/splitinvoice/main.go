package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"splitinvoice/internal/amqp"
	"splitinvoice/internal/backend"
	"splitinvoice/internal/cli"
	apphttp "splitinvoice/internal/http"
	applog "splitinvoice/internal/log"
	"splitinvoice/internal/recognition"
	"splitinvoice/internal/recognition/gemini"
	recmemory "splitinvoice/internal/recognition/memory"
	"splitinvoice/internal/scan"
	"splitinvoice/internal/services"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(applog.ComponentApp)
	cfg := cli.LoadAndValidateConfig(logger)

	ctx := context.Background()

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", "error", err)
		os.Exit(1)
	}
	factory := backend.NewFactory(logger.Logger)
	result, err := factory.CreateBackend(ctx, backendCfg)
	if err != nil {
		logger.Error("Failed to initialize storage backend", "error", err, "backend", cfg.DataBackend)
		os.Exit(1)
	}
	store := result.Backend

	// The AMQP publisher is optional. Without it bills are still saved,
	// they just never reach the export worker.
	var publisher services.ExportPublisher
	var amqpClient *amqp.Client
	if cfg.AMQPURL != "" {
		amqpClient, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("AMQP unavailable, bill exports disabled", "error", err)
		} else {
			publisher = amqpClient
			logger.Info("Connected to AMQP broker", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
		}
	}

	var recognizer recognition.Recognizer
	if cfg.GeminiAPIKey != "" {
		recognizer, err = gemini.New(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, cfg.ScanTimeout)
		if err != nil {
			logger.Error("Failed to initialize Gemini client", "error", err)
			os.Exit(1)
		}
		logger.Info("Receipt scanning enabled", "model", cfg.GeminiModel)
	} else {
		// Scan endpoints stay up but stage nothing.
		recognizer = recmemory.New(recognition.Result{})
		logger.Warn("GEMINI_API_KEY not set, receipt scanning returns empty results")
	}

	bills := services.NewBillService(store, publisher)
	stats := services.NewStatsService(store)
	scans := scan.NewService(recognizer, cfg.ScanTimeout, cfg.ScanSessionTTL, cfg.MaxScanSessions)

	srv := apphttp.NewServer(":"+cfg.Port, bills, stats, store, store, scans)
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 30 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16

	shutdownCtx, done := cli.GracefulShutdown(logger.Logger, 30*time.Second, func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 25*time.Second)
		defer cancel()
		if err := srv.Shutdown(stopCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		if amqpClient != nil {
			if err := amqpClient.Close(); err != nil {
				logger.Error("AMQP close error", "error", err)
			}
		}
		if result.Cleanup != nil {
			if err := result.Cleanup(); err != nil {
				logger.Error("Backend cleanup error", "error", err)
			}
		}
	})

	logger.Info("Starting splitinvoice server", "port", cfg.Port, "backend", cfg.DataBackend)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(shutdownCtx, done)
	logger.Info("Server stopped")
}
