// Package shoe implements the multi-deck card supply for a blackjack
// table: seeded or cryptographic Fisher–Yates shuffling, cut-card
// penetration tracking and a forced-draw queue for deterministic
// scenarios.
package shoe

import (
	"fmt"
	rand "math/rand/v2"

	"github.com/lox/blackjack/internal/deck"
	"github.com/lox/blackjack/internal/randutil"
)

const (
	// MaxDecks bounds the shoe size; anything larger is a caller bug.
	MaxDecks = 1000

	cardsPerDeck = 52
)

// Shoe owns a pool of cards built from N standard decks.
//
// Remaining reflects the shuffled pool only; cards parked in the
// forced-draw queue are not counted. Forced draws are inserted ahead
// of the shuffle rather than drawn from it, so heavy forced-draw use
// in tooling does not disturb cut-card accounting.
type Shoe struct {
	deckCount   int
	penetration int
	rng         *rand.Rand
	cards       []deck.Card
	forced      []deck.Card
}

// Option configures a Shoe at construction time.
type Option func(*Shoe)

// WithRand supplies a deterministic random source, typically from
// randutil.New(seed). The default is a cryptographic source.
func WithRand(rng *rand.Rand) Option {
	return func(s *Shoe) {
		s.rng = rng
	}
}

// New builds a shoe of deckCount standard decks and shuffles it.
// deckCount must be in [1, MaxDecks] and penetrationPercent in [1, 100].
func New(deckCount, penetrationPercent int, opts ...Option) (*Shoe, error) {
	if deckCount < 1 || deckCount > MaxDecks {
		return nil, fmt.Errorf("deck count %d out of range [1, %d]", deckCount, MaxDecks)
	}
	if penetrationPercent < 1 || penetrationPercent > 100 {
		return nil, fmt.Errorf("penetration percent %d out of range [1, 100]", penetrationPercent)
	}

	s := &Shoe{
		deckCount:   deckCount,
		penetration: penetrationPercent,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.rng == nil {
		s.rng = randutil.NewCrypto()
	}

	s.rebuild()
	s.Shuffle()
	return s, nil
}

func (s *Shoe) rebuild() {
	s.cards = make([]deck.Card, 0, s.deckCount*cardsPerDeck)
	for i := 0; i < s.deckCount; i++ {
		s.cards = append(s.cards, deck.StandardDeck()...)
	}
}

// Shuffle randomises the pool in place with a Fisher–Yates pass from
// the last index down to index 1.
func (s *Shoe) Shuffle() {
	for i := len(s.cards) - 1; i > 0; i-- {
		j := s.rng.IntN(i + 1)
		s.cards[i], s.cards[j] = s.cards[j], s.cards[i]
	}
}

// Draw returns and removes the next card. Precedence: the forced-draw
// queue first, then the shuffled pool. An exhausted pool is rebuilt
// and reshuffled before drawing; that is a safety fallback for
// undersized shoes, distinct from the intentional cut-card policy.
func (s *Shoe) Draw() deck.Card {
	if len(s.forced) > 0 {
		card := s.forced[0]
		s.forced = s.forced[1:]
		return card
	}

	if len(s.cards) == 0 {
		s.rebuild()
		s.Shuffle()
	}

	card := s.cards[len(s.cards)-1]
	s.cards = s.cards[:len(s.cards)-1]
	return card
}

// EnqueueForcedDraw parks a card to be returned by an upcoming Draw,
// ahead of the shuffled pool and in FIFO order.
func (s *Shoe) EnqueueForcedDraw(card deck.Card) {
	s.forced = append(s.forced, card)
}

// ClearForcedDraws discards any pending forced draws.
func (s *Shoe) ClearForcedDraws() {
	s.forced = nil
}

// ForcedDrawCount returns the number of pending forced draws.
func (s *Shoe) ForcedDrawCount() int {
	return len(s.forced)
}

// Remaining returns the number of cards left in the shuffled pool.
func (s *Shoe) Remaining() int {
	return len(s.cards)
}

// DeckCount returns the number of decks the shoe was built from.
func (s *Shoe) DeckCount() int {
	return s.deckCount
}

// CutCardThreshold returns the pool size at or below which the cut
// card is considered reached: ceil(52N * (1 - penetration/100)).
func (s *Shoe) CutCardThreshold() int {
	total := s.deckCount * cardsPerDeck
	return (total*(100-s.penetration) + 99) / 100
}

// IsCutCardReached reports whether enough of the shoe has been played
// that the caller should reshuffle between rounds.
func (s *Shoe) IsCutCardReached() bool {
	return len(s.cards) <= s.CutCardThreshold()
}

// ReshuffleIfCutCardReached rebuilds and reshuffles the pool if the
// cut card has been reached, returning whether it did so. Reshuffling
// is left to the caller so it never lands mid-round.
func (s *Shoe) ReshuffleIfCutCardReached() bool {
	if !s.IsCutCardReached() {
		return false
	}
	s.rebuild()
	s.Shuffle()
	return true
}

// ResetOption adjusts Reset behaviour.
type ResetOption func(*resetConfig)

type resetConfig struct {
	keepForced bool
}

// KeepForcedDraws preserves the forced-draw queue across a Reset,
// which scripted tooling relies on. The default is to clear it.
func KeepForcedDraws() ResetOption {
	return func(c *resetConfig) {
		c.keepForced = true
	}
}

// Reset rebuilds all decks and reshuffles. The forced-draw queue is
// cleared unless KeepForcedDraws is given.
func (s *Shoe) Reset(opts ...ResetOption) {
	var cfg resetConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	s.rebuild()
	s.Shuffle()
	if !cfg.keepForced {
		s.forced = nil
	}
}
