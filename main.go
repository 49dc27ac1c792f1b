package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"

	"github.com/enessquik/wpvdbot/internal/bot"
	"github.com/enessquik/wpvdbot/internal/conf"
)

func main() {
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: "15:04:05"}).
		With().Timestamp().Logger()

	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("No .env file found, using environment variables")
	}

	cfg := conf.LoadFromEnv()
	if cfg.Debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	ctx := context.Background()
	b, err := bot.New(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create bot")
	}

	if err := b.Run(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to start bot")
	}
	log.Info().Msg("🚀 Bot is running, press Ctrl+C to stop")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	log.Info().Msg("👋 Shutting down")
	b.Stop()
}
