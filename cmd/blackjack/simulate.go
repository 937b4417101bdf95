package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/lox/blackjack/internal/config"
	"github.com/lox/blackjack/internal/game"
	"github.com/lox/blackjack/internal/simulator"
	"github.com/lox/blackjack/internal/statistics"
	"github.com/lox/blackjack/internal/store"
)

// SimulateCmd runs basic-strategy sessions against the round engine
type SimulateCmd struct {
	Rounds   int    `kong:"default='100000',help='Number of rounds to simulate'"`
	Bet      int    `kong:"default='10',help='Flat bet per round'"`
	Bankroll int    `kong:"default='1000000',help='Bankroll cap for doubles and splits'"`
	Workers  int    `kong:"default='0',help='Worker count (0 uses all CPUs)'"`
	Seed     *int64 `kong:"help='Deterministic base seed (optional)'"`
	Config   string `kong:"default='blackjack.hcl',help='Path to HCL config file'"`
	Table    string `kong:"default='main',help='Table profile to simulate'"`
	DB       string `kong:"help='SQLite database to store results (optional)'"`
	Label    string `kong:"help='Session label for stored results'"`
	Debug    bool   `kong:"help='Enable debug logging'"`
}

func (c *SimulateCmd) Run() error {
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
	rules := profile.Rules()

	var seed int64
	if c.Seed != nil {
		seed = *c.Seed
		logger.Info("Using deterministic seed", "seed", seed)
	} else {
		seed = time.Now().UnixNano()
		logger.Info("Using random seed", "seed", seed)
	}

	sim := simulator.New(simulator.Config{
		Rounds:  c.Rounds,
		Bet:     c.Bet,
		Bank:    c.Bankroll,
		Seed:    seed,
		Workers: c.Workers,
		Rules:   rules,
		Logger:  logger,
	})

	logger.Info("Starting simulation",
		"rounds", c.Rounds,
		"bet", c.Bet,
		"workers", c.Workers,
		"table", profile.Name,
	)

	ctx := setupSignalHandler(logger)
	started := time.Now()

	stats, err := sim.Run(ctx)
	if err != nil {
		return err
	}

	logger.Info("Simulation complete",
		"rounds", stats.Rounds,
		"elapsed", time.Since(started).Round(time.Millisecond),
	)
	simulator.PrintSummary(stats)

	if c.DB != "" {
		if err := c.saveResults(rules, seed, stats); err != nil {
			return fmt.Errorf("failed to store results: %w", err)
		}
	}
	return nil
}

// saveResults persists the session and its per-round nets. Only the
// per-round net survives aggregation, so hand-level detail is not
// stored for simulations.
func (c *SimulateCmd) saveResults(rules game.Rules, seed int64, stats *statistics.Statistics) error {
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

	label := c.Label
	if label == "" {
		label = fmt.Sprintf("simulate:%s", c.Table)
	}

	session := &store.Session{
		Label:       label,
		Decks:       rules.NumberOfDecks,
		Penetration: rules.PenetrationPercent,
		Rules:       string(rulesJSON),
		Seed:        seed,
	}
	if err := db.SaveSession(session); err != nil {
		return err
	}

	rounds := make([]store.RoundRecord, 0, len(stats.Values))
	for i, net := range stats.Values {
		rounds = append(rounds, store.RoundRecord{
			Seq:   i + 1,
			Bet:   c.Bet,
			Hands: 1,
			Net:   decimal.NewFromFloat(net),
		})
	}
	if err := db.SaveRounds(session.ID, rounds); err != nil {
		return err
	}

	fmt.Printf("Stored session %s (%d rounds) in %s\n", session.ID, len(rounds), c.DB)
	return nil
}
