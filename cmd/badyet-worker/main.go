package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"badyet/internal/amqp"
	"badyet/internal/config"
	"badyet/internal/log"
	"badyet/internal/sheets"
	gsheet "badyet/internal/sheets/google"
	mem "badyet/internal/sheets/memory"
	"badyet/internal/worker"
)

func main() {
	_ = godotenv.Load()

	logger := log.New(log.FromEnv()).WithComponent(log.ComponentWorker)

	cfg := config.Load()
	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the worker")
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Without a spreadsheet the worker still drains the queue, writing
	// activity rows to an in-memory store. Useful for local smoke tests.
	var writer sheets.ActivityWriter
	if cfg.GoogleSpreadsheetID != "" {
		client, err := gsheet.New(ctx, cfg.GoogleSpreadsheetID, cfg.ActivitySheetName)
		if err != nil {
			logger.Error("Failed to initialize Google Sheets client",
				log.FieldError, err.Error())
			os.Exit(1)
		}
		writer = client
		logger.Info("Activity log backed by Google Sheets",
			"spreadsheet_id", cfg.GoogleSpreadsheetID)
	} else {
		writer = mem.New()
		logger.Warn("GOOGLE_SPREADSHEET_ID not set, activity rows stay in memory")
	}

	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to connect to AMQP broker", log.FieldError, err.Error())
		os.Exit(1)
	}
	defer client.Close()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())
		cancel()
	}()

	w := worker.NewActivityWorker(writer)
	logger.Info("Activity worker started", "queue", cfg.AMQPQueue)
	if err := w.Run(ctx, client); err != nil && ctx.Err() == nil {
		logger.Error("Worker stopped with error", log.FieldError, err.Error())
		os.Exit(1)
	}

	processed, failed := w.Stats()
	logger.Info("Worker stopped", "processed", processed, "failed", failed)
}
