package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"

	"github.com/lox/blackjack/internal/config"
	"github.com/lox/blackjack/internal/game"
	"github.com/lox/blackjack/internal/statistics"
	"github.com/lox/blackjack/internal/store"
	"github.com/lox/blackjack/internal/tui"
)

// PlayCmd runs the interactive table
type PlayCmd struct {
	Config   string `kong:"default='blackjack.hcl',help='Path to HCL config file'"`
	Table    string `kong:"default='main',help='Table profile to play'"`
	Bankroll int    `kong:"help='Override the profile starting bankroll'"`
	Seed     *int64 `kong:"help='Deterministic shoe seed (optional)'"`
	DB       string `kong:"help='SQLite database to record rounds (optional)'"`
	Debug    bool   `kong:"help='Write debug logging to blackjack-debug.log'"`
}

func (c *PlayCmd) Run() error {
	// The TUI owns the terminal, so debug logging goes to a file.
	logger := log.New(io.Discard)
	if c.Debug {
		debugFile, err := os.OpenFile("blackjack-debug.log", os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o666)
		if err != nil {
			return fmt.Errorf("failed to create debug log: %w", err)
		}
		defer debugFile.Close()
		logger = log.NewWithOptions(debugFile, log.Options{
			Level:           log.DebugLevel,
			ReportTimestamp: true,
			TimeFormat:      "15:04:05",
		})
	}

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
	rules := profile.Rules()

	bankroll := profile.Bank
	if c.Bankroll > 0 {
		bankroll = c.Bankroll
	}

	opts := []tui.ModelOption{
		tui.WithBankroll(bankroll),
		tui.WithMinimumBet(profile.MinimumBet),
	}
	if c.Seed != nil {
		opts = append(opts, tui.WithSeed(*c.Seed))
	}

	// Engine events fan out over a bus: session statistics always, the
	// store recorder when a database is configured.
	bus := game.NewBus()
	var stats statistics.Statistics
	bus.Subscribe(statistics.NewRecorder(&stats))
	opts = append(opts, tui.WithEventSink(bus.Publish))

	if c.DB != "" {
		db, err := store.NewSQLiteDB(c.DB)
		if err != nil {
			return err
		}
		defer db.Close()
		if err := db.Migrate(); err != nil {
			return err
		}

		rulesJSON, err := json.Marshal(rules)
		if err != nil {
			return err
		}
		session := &store.Session{
			Label:       "play:" + profile.Name,
			Decks:       rules.NumberOfDecks,
			Penetration: rules.PenetrationPercent,
			Rules:       string(rulesJSON),
		}
		if c.Seed != nil {
			session.Seed = *c.Seed
		}
		if err := db.SaveSession(session); err != nil {
			return err
		}
		logger.Info("Recording session", "id", session.ID, "db", c.DB)

		bus.Subscribe(store.NewRecorder(db, session.ID, logger))
	}

	if err := tui.Run(rules, logger, opts...); err != nil {
		return err
	}

	if stats.Rounds > 0 {
		fmt.Printf("Session over: %d rounds, %d won, %d lost, %d pushed, net %+.1f units\n",
			stats.Rounds, stats.Wins+stats.Blackjacks, stats.Losses+stats.Surrenders,
			stats.Pushes, stats.AllNet)
	}
	return nil
}
