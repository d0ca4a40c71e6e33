package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/mcdev12/auctionpro/internal/events"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Warn().Err(err).Msg("could not load .env file")
	}

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	port := getEnv("PORT", "8080")
	natsURL := getEnv("NATS_URL", nats.DefaultURL)
	subjectPrefix := getEnv("EVENT_SUBJECT_PREFIX", events.DefaultSubjectPrefix)

	if configPath := getEnv("CONFIG_PATH", ""); configPath != "" {
		config, err := loadConfig(configPath)
		if err != nil {
			log.Fatal().Err(err).Str("path", configPath).Msg("failed to load config")
		}
		if config.Server.Port != "" && os.Getenv("PORT") == "" {
			port = config.Server.Port
		}
		if config.Auction.SubjectPrefix != "" && os.Getenv("EVENT_SUBJECT_PREFIX") == "" {
			subjectPrefix = config.Auction.SubjectPrefix
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := setupDatabase(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to setup database")
	}
	defer pool.Close()

	services, err := setupServices(pool, natsURL, subjectPrefix)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to setup services")
	}
	defer services.Publisher.Close()

	go func() {
		if err := services.Scheduler.Run(ctx); err != nil {
			log.Error().Err(err).Msg("scheduler failed")
		}
	}()

	go func() {
		if err := services.Gateway.Start(ctx); err != nil {
			log.Error().Err(err).Msg("gateway failed")
		}
	}()

	server := setupServer(services, port)
	go func() {
		log.Info().Str("addr", server.Addr).Msg("auction server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	log.Info().Str("signal", sig.String()).Msg("shutting down")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown error")
	}

	log.Info().Msg("shutdown complete")
}
