// Package main inicia o bridge entre WhatsApp e webhook.
//
// @title           WABridge API
// @version         1.0
// @description     Bridge entre uma sessão WhatsApp e um webhook: envio de mensagens com simulação de digitação, presença e ciclo de vida da sessão.
//
// @license.name  MIT
//
// @host      localhost:8080
// @BasePath  /
//
// @securityDefinitions.apikey  ApiKeyAuth
// @in                          header
// @name                        X-API-Key
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/lib/pq"           // store de sessão em PostgreSQL
	_ "github.com/mattn/go-sqlite3" // store de sessão em diretório

	"wabridge/internal/app"
	"wabridge/internal/app/config"
	"wabridge/internal/app/server"
	"wabridge/internal/domain/session"
	"wabridge/pkg/logger"
)

// exitRestart sinaliza ao supervisor (docker, systemd) que o processo deve subir de novo
const exitRestart = 1

func main() {
	// Carregar configuração
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(2)
	}

	log := logger.Setup(cfg).WithComponent("main")

	log.WithFields(map[string]interface{}{
		"env":  cfg.App.Env,
		"port": cfg.App.Port,
	}).Info().Msg("Starting wabridge")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	restart := make(chan string, 1)
	restarter := session.RestarterFunc(func(reason string) {
		select {
		case restart <- reason:
		default:
		}
	})

	container, err := app.NewContainer(ctx, cfg, restarter, log)
	if err != nil {
		log.WithError(err).Fatal().Msg("Failed to initialize container")
	}

	srv := server.New(cfg, container.Router, log)

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- srv.Start()
	}()

	container.Start(ctx)
	log.Info().Msg("wabridge started successfully")

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	exitCode := 0
	select {
	case sig := <-stop:
		log.WithField("signal", sig.String()).Info().Msg("Shutdown signal received")
	case reason := <-restart:
		log.WithField("reason", reason).Warn().Msg("Session reset, restarting process")
		exitCode = exitRestart
	case err := <-serverErr:
		if err != nil {
			log.WithError(err).Error().Msg("HTTP server failed")
			exitCode = 1
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Stop(shutdownCtx); err != nil {
		log.WithError(err).Error().Msg("Error during server shutdown")
	}
	cancel()
	container.Close()

	log.Info().Msg("Application stopped")
	if exitCode != 0 {
		shutdownCancel()
		os.Exit(exitCode)
	}
}
