package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	_ "time/tzdata"

	"github.com/alimikegami/point-of-sales/payment-bridge/config"
	"github.com/alimikegami/point-of-sales/payment-bridge/internal/app"
	"github.com/rs/zerolog/log"
)

func main() {
	conf := config.CreateNewConfig()
	app.SetupLogger(conf.LogLevel)

	a := app.App{Config: conf}
	if err := a.Build(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("Failed to build application")
	}

	go func() {
		if err := a.Start(); err != nil {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down")
	if err := a.StopServer(); err != nil {
		log.Error().Err(err).Msg("Failed to shut down cleanly")
	}
}
