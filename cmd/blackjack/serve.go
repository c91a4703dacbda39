package main

import (
	"context"
	"os"
	"time"

	"github.com/lox/blackjack/cmd/blackjack/shared"
	"github.com/lox/blackjack/internal/server"
)

type ServeCmd struct {
	Addr     string `help:"Listen address, overrides the config"`
	Training bool   `help:"Enable training mode for new sessions"`
}

func (c *ServeCmd) Run(g *Globals) error {
	cfg, err := g.loadConfig()
	if err != nil {
		return err
	}

	logger, closeLog, err := newLogger(cfg.Logging, os.Stderr)
	if err != nil {
		return err
	}
	defer closeLog()

	ctx := shared.SetupSignalHandler(logger)

	gateway, cleanup, err := openGateway(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	srv := server.NewServer(logger, gateway,
		server.WithRules(cfg.Rules),
		server.WithTraining(c.Training),
		server.WithAllowedOrigins(cfg.Server.AllowedOrigins),
	)

	addr := cfg.Server.Addr()
	if c.Addr != "" {
		addr = c.Addr
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Debug("Serving accounts", "backend", cfg.Persistence.Backend, "namespace", cfg.Persistence.Namespace)
		serverErr <- srv.Start(addr)
	}()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
		logger.Info("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		return nil
	}
}
