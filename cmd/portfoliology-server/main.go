package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bobmcallan/portfoliology/internal/app"
	"github.com/bobmcallan/portfoliology/internal/common"
	"github.com/bobmcallan/portfoliology/internal/server"
)

func main() {
	// Resolve config path
	configPath := os.Getenv("PORTFOLIOLOGY_CONFIG")

	a, err := app.NewApp(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize app: %v\n", err)
		os.Exit(1)
	}

	common.PrintBanner(os.Stdout, a.Config, a.Logger)

	srv := server.NewServer(a)

	// Start HTTP server
	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			a.Logger.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	a.Logger.Info().
		Str("url", fmt.Sprintf("http://localhost:%d", a.Config.Server.Port)).
		Msg("Server ready")

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	common.PrintShutdownBanner(os.Stdout, a.Logger)

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		a.Logger.Error().Err(err).Msg("HTTP server shutdown failed")
	}

	a.Close()
	a.Logger.Info().Msg("Server stopped")
}
