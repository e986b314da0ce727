package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"customer-notes/internal/config"
	"customer-notes/internal/logger"
	"customer-notes/internal/server"
)

type reload struct {
	cfg *config.Config
	err error
}

func main() {
	configFlag := flag.String("config", "", "path to config file (default $NOTES_CONFIG or config.yml)")
	flag.Parse()
	configFile := config.ResolveFile(*configFlag)

	// Изменения файла конфигурации обрабатываются в основном цикле
	reloads := make(chan reload, 1)
	appConfig, err := config.Watch(configFile, func(cfg *config.Config, err error) {
		select {
		case reloads <- reload{cfg: cfg, err: err}:
		default:
		}
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing config: %v\n", err)
		os.Exit(1)
	}
	appConfig.ApplyDefaults()
	if err := appConfig.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(appConfig.Logger, os.Stdout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing logger: %v\n", err)
		os.Exit(1)
	}
	log.Info().Str("config", configFile).Msg("starting customer notes service")

	srv, err := server.NewServer(appConfig, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create server")
	}

	if err := srv.Initialize(context.Background()); err != nil {
		srv.Shutdown()
		log.Fatal().Err(err).Msg("failed to initialize server")
	}

	// Канал для graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)

	errChan := srv.Start()

	// Ожидание сигнала или ошибки
	var serveErr error
loop:
	for {
		select {
		case serveErr = <-errChan:
			log.Error().Err(serveErr).Msg("server error")
			break loop
		case sig := <-sigChan:
			log.Info().Str("signal", sig.String()).Msg("received signal")
			break loop
		case r := <-reloads:
			applyReload(log, r)
		}
	}

	if err := srv.Shutdown(); err != nil {
		log.Error().Err(err).Msg("shutdown failed")
	}
	log.Info().Msg("customer notes service stopped")

	if serveErr != nil {
		os.Exit(1)
	}
}

// applyReload применяет на лету только уровень логирования; остальное требует перезапуска
func applyReload(log zerolog.Logger, r reload) {
	if r.err != nil {
		log.Warn().Err(r.err).Msg("config reload failed, keeping previous settings")
		return
	}
	r.cfg.ApplyDefaults()
	if err := logger.SetLevel(r.cfg.Logger.Level); err != nil {
		log.Warn().Err(err).Msg("config reload: bad log level")
		return
	}
	log.Info().Str("level", r.cfg.Logger.Level).Msg("config reloaded")
}
