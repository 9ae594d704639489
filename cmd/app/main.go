package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"foodgram/internal/app"
	"foodgram/internal/database/psql"
	"foodgram/internal/database/redis"
	"foodgram/pkg/config"
	"foodgram/pkg/lib/logger"
	"foodgram/pkg/lib/logger/sl"
	"foodgram/pkg/lib/metrics"
)

const shutdownTimeout = 15 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log, err := logger.SetupLogger(cfg.HTTP.Env)
	if err != nil {
		panic(err)
	}

	storage, err := psql.New(log, cfg.ConnectionString())
	if err != nil {
		panic(err)
	}

	connectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	tokens, err := redis.New(connectCtx, log, cfg.Redis)
	cancel()
	if err != nil {
		storage.Close()
		panic(err)
	}

	application, err := app.New(log, cfg, storage, tokens, metrics.New())
	if err != nil {
		log.Error("Failed to build application", sl.Err(err))
		tokens.Close()
		storage.Close()
		os.Exit(1)
	}

	go func() {
		if err := application.Run(); err != nil {
			log.Error("Application failed to start", sl.Err(err))
			panic(err)
		}
	}()

	done := make(chan os.Signal, 1)
	signal.Notify(done, syscall.SIGTERM, syscall.SIGINT)
	<-done

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := application.Shutdown(ctx); err != nil {
		log.Error("Failed to stop HTTP server", sl.Err(err))
	}

	log.Info("Closing redis")
	if err := tokens.Close(); err != nil {
		log.Error("Failed to close redis", sl.Err(err))
	}
	log.Info("Closing database")
	storage.Close()
}
