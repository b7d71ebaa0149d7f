package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"badyet/internal/amqp"
	"badyet/internal/backend"
	"badyet/internal/config"
	"badyet/internal/credstore"
	apphttp "badyet/internal/http"
	"badyet/internal/log"
	"badyet/internal/notify"
	"badyet/internal/session"
)

func main() {
	// Load .env if present; real deployments set the environment directly.
	_ = godotenv.Load()

	logger := log.New(log.FromEnv()).WithComponent(log.ComponentApp)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Invalid configuration", log.FieldError, err.Error())
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, err := credstore.New(cfg.CredStoreDBPath, logger.WithComponent(log.ComponentCredStore))
	if err != nil {
		logger.Error("Failed to open credential store",
			log.FieldError, err.Error(), "path", cfg.CredStoreDBPath)
		os.Exit(1)
	}
	defer store.Close()

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", log.FieldError, err.Error())
		os.Exit(1)
	}
	factory := backend.NewFactory(logger.WithComponent(log.ComponentBackend))
	result, err := factory.CreateBackend(ctx, backendCfg, store)
	if err != nil {
		logger.Error("Failed to create backend",
			log.FieldError, err.Error(), "backend", backendCfg.Type.String())
		os.Exit(1)
	}
	if result.Cleanup != nil {
		defer func() {
			if err := result.Cleanup(); err != nil {
				logger.Error("Backend cleanup failed", log.FieldError, err.Error())
			}
		}()
	}

	// Notifications go to the web UI's flash queue, and to the activity
	// queue when AMQP is configured.
	flash := notify.NewFlash(16)
	var sink notify.Sink = flash
	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			// The client reconnects on its own; a failed first dial only
			// costs the messages sent before the broker comes up.
			logger.Warn("AMQP broker unreachable at startup",
				log.FieldError, err.Error())
		}
		if client != nil {
			defer client.Close()
			sink = notify.Multi{flash, amqp.NewSink(client, logger.WithComponent(log.ComponentAMQP))}
		}
	}

	sess := session.NewManager(store, result.Backend, sink, cfg.APIBaseURL,
		logger.WithComponent(log.ComponentSession))

	// Resolve the stored credential in the background; the route guard
	// serves a holding page until this finishes.
	go sess.CheckAuth(ctx)

	srv := apphttp.NewServer(":"+cfg.Port, sess, result.Backend, result.Backend, flash, sink,
		logger.WithComponent(log.ComponentHTTP))

	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err.Error())
		}
		cancel()
	}()

	logger.Info("Starting badyet server",
		"port", cfg.Port, "backend", backendCfg.Type.String())
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", log.FieldError, err.Error(), "port", cfg.Port)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("Server stopped gracefully")
}
