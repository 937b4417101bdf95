package main

import (
	"fmt"
	"time"

	"github.com/coder/quartz"

	"github.com/lox/blackjack/internal/config"
	"github.com/lox/blackjack/internal/server"
)

// ServeCmd runs the WebSocket table server
type ServeCmd struct {
	Addr      string `kong:"help='Listen address (defaults to the config server block)'"`
	Config    string `kong:"default='blackjack.hcl',help='Path to HCL config file'"`
	Table     string `kong:"default='main',help='Table profile for new sessions'"`
	TimeoutMs int    `kong:"default='30000',help='Decision timeout in milliseconds (0 disables)'"`
	Seed      *int64 `kong:"help='Deterministic shoe seed for every session (optional)'"`
	Debug     bool   `kong:"help='Enable debug logging'"`
}

func (c *ServeCmd) Run() error {
	logger := setupLogger(c.Debug)

	cfg, err := config.Load(c.Config)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	profile := cfg.GetTableByName(c.Table)
	if profile == nil {
		return fmt.Errorf("no table profile named %q in %s", c.Table, c.Config)
	}

	addr := c.Addr
	if addr == "" {
		addr = cfg.GetServerAddress()
	}

	opts := []server.ServerOption{
		server.WithRules(profile.Rules()),
		server.WithStakes(profile.Bank, profile.MinimumBet),
	}
	if c.TimeoutMs >= 0 {
		opts = append(opts, server.WithDecisionClock(quartz.NewReal(), time.Duration(c.TimeoutMs)*time.Millisecond))
	}
	if c.Seed != nil {
		seed := *c.Seed
		logger.Info("Using deterministic shoe seed", "seed", seed)
		opts = append(opts, server.WithSeedSource(func() (int64, bool) { return seed, true }))
	}

	s := server.NewServer(addr, logger, opts...)

	logger.Info("Starting table server",
		"addr", addr,
		"table", profile.Name,
		"minimum_bet", profile.MinimumBet,
		"bankroll", profile.Bank,
		"decision_timeout", time.Duration(c.TimeoutMs)*time.Millisecond,
	)

	ctx := setupSignalHandler(logger)

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- s.Start()
	}()

	select {
	case <-ctx.Done():
		logger.Info("Shutting down server")
		return s.Stop()
	case err := <-serverErr:
		return err
	}
}
