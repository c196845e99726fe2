package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/GlebRadaev/artauction/internal/closer"
	"github.com/GlebRadaev/artauction/internal/config"
	"github.com/GlebRadaev/artauction/pkg/clients"
	"github.com/GlebRadaev/artauction/pkg/logger"
	"github.com/rs/zerolog/log"
	"go.uber.org/zap"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg := config.NewTrigger()
	if err := logger.InitLogger(logger.Options{Service: "closer", Level: cfg.LogLvl, Format: cfg.LogFormat}); err != nil {
		log.Fatal().Err(err).Msg("Can't init logger")
	}

	trigger := closer.NewTrigger(clients.NewHTTPClient(), cfg.ServiceAddress, cfg.CloserToken)
	zap.L().Info("starting auction closer",
		zap.String("service", cfg.ServiceAddress),
		zap.Duration("interval", cfg.CloseInterval),
	)
	if err := trigger.Loop(ctx, cfg.CloseInterval); err != nil {
		zap.L().Fatal("closer run failed", zap.Error(err))
	}
}
