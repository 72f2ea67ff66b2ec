package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/gaohoward/activemq-artemis-jolokia-api-server/endpoints"
	"github.com/gaohoward/activemq-artemis-jolokia-api-server/internal/config"
	"github.com/gaohoward/activemq-artemis-jolokia-api-server/security"
	"github.com/gaohoward/activemq-artemis-jolokia-api-server/server"
	"github.com/gaohoward/activemq-artemis-jolokia-api-server/token"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("error running server")
	}
	log.Info().Msg("server stopped")
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("recovered from panic")
			debug.PrintStack()
			returnError = errors.New("panic recovered")
		}
	}()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// the secret's presence is a startup condition, never a per-request
	// failure; jolokia login sessions are signed even with security off
	signer, err := token.NewHMACSigner(cfg.SecretToken)
	if err != nil {
		return err
	}

	var manager security.SessionAuthority
	if cfg.SecurityEnabled {
		store, err := security.NewStore(cfg.UsersFile, cfg.RolesFile, cfg.AccessFile)
		if err != nil {
			return err
		}
		manager, err = security.NewManager(store, signer)
		if err != nil {
			return err
		}
	}

	directory, err := endpoints.Load(cfg.EndpointsFile)
	if err != nil {
		return err
	}

	apiServer, err := server.New(cfg, manager, signer, directory, security.NewBindingStore())
	if err != nil {
		return err
	}

	httpServer := &http.Server{Addr: ":" + cfg.Port, Handler: apiServer}
	go listenAndServe(httpServer)
	log.Info().
		Str("addr", httpServer.Addr).
		Bool("security", cfg.SecurityEnabled).
		Msg("server listening")
	waitForStopSignal()
	return shutdown(httpServer)
}

func listenAndServe(httpServer *http.Server) {
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("server.ListenAndServe")
	}
}

func waitForStopSignal() {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
}

func shutdown(httpServer *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}
