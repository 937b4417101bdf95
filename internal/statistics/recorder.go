package statistics

import (
	"github.com/lox/blackjack/internal/game"
)

// Recorder builds RoundResults from the event stream and folds them
// into a Statistics accumulator. It implements game.Subscriber, so it
// can sit on a Bus next to a display or a store; it can equally be
// wired directly as a round sink.
type Recorder struct {
	stats *Statistics
	seed  int64

	current RoundResult
}

// NewRecorder creates a recorder feeding the given accumulator.
func NewRecorder(stats *Statistics) *Recorder {
	return &Recorder{stats: stats}
}

// Stats returns the accumulator the recorder feeds.
func (r *Recorder) Stats() *Statistics {
	return r.stats
}

// SetSeed tags subsequent rounds with the RNG seed that produced them.
func (r *Recorder) SetSeed(seed int64) {
	r.seed = seed
}

// OnEvent consumes one round event. Per-round state accumulates until
// RoundComplete, which commits the result and resets for the next
// round.
func (r *Recorder) OnEvent(e game.Event) {
	switch ev := e.(type) {
	case game.PlayerDoubledDown:
		r.current.Doubled = true
	case game.PlayerSplit:
		r.current.Split = true
	case game.InsuranceResult:
		payout, _ := ev.Payout.Float64()
		r.current.InsuranceNet = payout
	case game.HandResolved:
		r.current.Hands++
		switch ev.Outcome {
		case game.OutcomeWin:
			r.current.Wins++
		case game.OutcomeLose:
			r.current.Losses++
		case game.OutcomePush:
			r.current.Pushes++
		case game.OutcomeBlackjack:
			r.current.Blackjacks++
		case game.OutcomeSurrender:
			r.current.Surrenders++
		}
	case game.RoundComplete:
		net, _ := ev.Net.Float64()
		r.current.Net = net
		r.current.Seed = r.seed
		r.stats.Add(r.current)
		r.current = RoundResult{}
	}
}
