package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/diewo77/importdesk/internal/config"
	"github.com/diewo77/importdesk/internal/db"
	"github.com/diewo77/importdesk/internal/events"
	"github.com/diewo77/importdesk/internal/rates"
	"github.com/diewo77/importdesk/internal/server"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

var logger = zerolog.New(os.Stdout).With().Timestamp().Str("component", "server").Logger()

// request logging middleware
func withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		logger.Info().Str("method", r.Method).Str("path", r.URL.Path).Dur("took", time.Since(start)).Msg("request")
	})
}

var migrateOnlyFlag = flag.Bool("migrate-only", false, "Run DB migrations and exit")

func main() {
	flag.Parse()
	_ = godotenv.Load()
	if migrateOnlyFlag != nil && *migrateOnlyFlag {
		if _, err := db.ConnectAndMigrate(); err != nil {
			logger.Fatal().Err(err).Msg("migrate-only failed")
		}
		logger.Info().Msg("migrations completed; exiting as requested")
		return
	}
	cfg := config.Load()
	dbConn, err := db.ConnectAndMigrate()
	if err != nil {
		logger.Fatal().Err(err).Msg("database connection failed")
	}
	logger.Info().Str("env", cfg.Env).Str("port", cfg.Port).Msg("starting server")

	// Rates provider: live client when RATES_URL is set, static pair
	// otherwise. Redis (when configured) only caches the live responses.
	var provider rates.Provider = rates.Static{USD: rates.FallbackUSD, CNY: rates.FallbackCNY}
	if cfg.RatesURL != "" {
		var rdb *redis.Client
		if cfg.RedisAddr != "" {
			rdb = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		}
		provider = rates.NewClient(cfg.RatesURL, rdb)
	}

	var pub events.Publisher = events.Nop{}
	if cfg.KafkaBrokers != "" {
		kp := events.NewKafka(cfg.KafkaBrokers, "importdesk-events")
		defer func() {
			if err := kp.Close(); err != nil {
				logger.Warn().Err(err).Msg("kafka close failed")
			}
		}()
		pub = kp
	}

	handler := withLogging(server.New(dbConn, provider, pub))
	srv := &http.Server{Addr: ":" + cfg.Port, Handler: handler}

	go func() {
		logger.Info().Str("addr", srv.Addr).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info().Msg("shutdown signal received")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("error during shutdown")
	}
	logger.Info().Msg("server gracefully stopped")
}
