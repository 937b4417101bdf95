// Package simulator plays seeded rounds against a strategy and
// reports session statistics.
package simulator

import (
	"context"
	"fmt"
	"io"
	"runtime"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/lox/blackjack/internal/game"
	"github.com/lox/blackjack/internal/randutil"
	"github.com/lox/blackjack/internal/shoe"
	"github.com/lox/blackjack/internal/statistics"
)

// Config holds configuration for running simulations
type Config struct {
	Rounds   int
	Bet      int
	Bank     int
	Seed     int64
	Workers  int
	Rules    game.Rules
	Strategy Strategy
	Logger   *log.Logger
}

// Simulator runs blackjack round simulations
type Simulator struct {
	config Config
}

// New creates a new simulator with the given configuration
func New(config Config) *Simulator {
	if config.Workers <= 0 {
		config.Workers = runtime.NumCPU()
	}
	if config.Bet <= 0 {
		config.Bet = 10
	}
	if config.Bank <= 0 {
		config.Bank = 1_000_000
	}
	if config.Strategy == nil {
		config.Strategy = NewBasicStrategy()
	}
	if config.Logger == nil {
		config.Logger = log.New(io.Discard)
	}
	return &Simulator{config: config}
}

// Run executes the simulation and returns aggregated results. Rounds
// are sharded across workers; each worker owns a seeded shoe, so a
// given seed and worker count always reproduces the same session.
func (s *Simulator) Run(ctx context.Context) (*statistics.Statistics, error) {
	workers := s.config.Workers
	if workers > s.config.Rounds {
		workers = s.config.Rounds
	}
	if workers < 1 {
		workers = 1
	}

	results := make([]*statistics.Statistics, workers)

	g, ctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		rounds := s.config.Rounds / workers
		if w < s.config.Rounds%workers {
			rounds++
		}
		seed := s.config.Seed + int64(w)

		g.Go(func() error {
			stats, err := s.runWorker(ctx, seed, rounds)
			if err != nil {
				return fmt.Errorf("worker seed %d: %w", seed, err)
			}
			results[w] = stats
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	total := &statistics.Statistics{}
	for _, stats := range results {
		total.Merge(stats)
	}
	if err := total.Validate(); err != nil {
		return nil, fmt.Errorf("statistics validation failed: %w", err)
	}
	return total, nil
}

// runWorker plays its share of rounds against one seeded shoe.
func (s *Simulator) runWorker(ctx context.Context, seed int64, rounds int) (*statistics.Statistics, error) {
	sh, err := shoe.New(s.config.Rules.NumberOfDecks, s.config.Rules.PenetrationPercent,
		shoe.WithRand(randutil.New(seed)))
	if err != nil {
		return nil, err
	}

	stats := &statistics.Statistics{}
	rec := statistics.NewRecorder(stats)
	rec.SetSeed(seed)

	for i := 0; i < rounds; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		sh.ReshuffleIfCutCardReached()
		if err := s.playRound(sh, rec); err != nil {
			return nil, fmt.Errorf("round %d: %w", i+1, err)
		}
	}
	return stats, nil
}

// playRound drives a single round with the configured strategy.
func (s *Simulator) playRound(sh *shoe.Shoe, rec *statistics.Recorder) error {
	r := game.NewRound(s.config.Rules, sh,
		game.WithBank(s.config.Bank),
		game.WithSink(rec.OnEvent),
		game.WithLogger(s.config.Logger),
	)

	if err := r.PlaceBet(s.config.Bet); err != nil {
		return err
	}
	if err := r.Deal(); err != nil {
		return err
	}

	if r.Phase() == game.PhaseInsuranceOffered {
		var err error
		if s.config.Strategy.TakeInsurance(r) {
			err = r.AcceptInsurance(s.config.Bet / 2)
		} else {
			err = r.DeclineInsurance()
		}
		if err != nil {
			return err
		}
	}

	// A round has at most a handful of decisions; a runaway loop here
	// means the strategy and the engine disagree on legality.
	for guard := 0; r.Phase() == game.PhasePlayerTurn; guard++ {
		if guard > 64 {
			return fmt.Errorf("strategy made no progress in phase %s", r.Phase())
		}

		var err error
		switch action := s.config.Strategy.Decide(r); action {
		case ActionHit:
			err = r.PlayerHit()
		case ActionStand:
			err = r.PlayerStand()
		case ActionDouble:
			err = r.PlayerDoubleDown()
		case ActionSplit:
			err = r.PlayerSplit()
		case ActionSurrender:
			err = r.PlayerSurrender()
		default:
			err = fmt.Errorf("unknown action %v", action)
		}
		if err != nil {
			return err
		}
	}

	if r.Phase() != game.PhaseComplete {
		return fmt.Errorf("round stalled in phase %s", r.Phase())
	}
	return nil
}

// PrintSummary prints a comprehensive summary of simulation results
func PrintSummary(stats *statistics.Statistics) {
	mean := stats.Mean()
	median := stats.Median()
	stdDev := stats.StdDev()
	stdErr := stats.StdError()
	low, high := stats.ConfidenceInterval95()
	p05 := stats.Percentile(0.05)
	p25 := stats.Percentile(0.25)
	p75 := stats.Percentile(0.75)
	p95 := stats.Percentile(0.95)

	fmt.Printf("\n=== FINAL RESULTS ===\n")
	fmt.Printf("Rounds played: %d (%d hands)\n", stats.Rounds, stats.HandsPlayed)

	fmt.Printf("\n=== STATISTICAL RESULTS ===\n")
	fmt.Printf("Mean: %.4f units/round\n", mean)
	fmt.Printf("Median: %.4f units/round\n", median)
	fmt.Printf("Std Dev: %.4f units\n", stdDev)
	fmt.Printf("Std Error: %.4f units\n", stdErr)
	fmt.Printf("95%% CI: [%.4f, %.4f] units/round\n", low, high)
	fmt.Printf("Percentiles: P5=%.3f, P25=%.3f, P75=%.3f, P95=%.3f\n", p05, p25, p75, p95)

	fmt.Printf("\n=== OUTCOME ANALYSIS ===\n")
	fmt.Printf("Win rate: %.2f%% of hands\n", stats.WinRate()*100)
	fmt.Printf("Wins: %d, Losses: %d, Pushes: %d, Blackjacks: %d, Surrenders: %d\n",
		stats.Wins, stats.Losses, stats.Pushes, stats.Blackjacks, stats.Surrenders)
	fmt.Printf("Doubled: %d rounds, Split: %d rounds, Insured: %d rounds\n",
		stats.DoubledRounds, stats.SplitRounds, stats.InsuredRounds)
	fmt.Printf("Largest swing: +%.1f / %.1f units\n", stats.MaxWin, stats.MaxLoss)

	fmt.Printf("\n=== LEDGER ===\n")
	fmt.Printf("Main bets: %.2f units, Insurance: %.2f units, Total: %.2f units\n",
		stats.MainNet, stats.InsuranceNet, stats.AllNet)
}
