package shoe

import (
	"testing"

	"github.com/lox/blackjack/internal/deck"
	"github.com/lox/blackjack/internal/randutil"
)

func TestNewShoeComposition(t *testing.T) {
	for _, decks := range []int{1, 2, 6, 8} {
		s, err := New(decks, 75, WithRand(randutil.New(1)))
		if err != nil {
			t.Fatalf("New(%d): %v", decks, err)
		}

		if s.Remaining() != 52*decks {
			t.Errorf("%d decks: expected %d cards, got %d", decks, 52*decks, s.Remaining())
		}

		rankCounts := make(map[deck.Rank]int)
		suitCounts := make(map[deck.Suit]int)
		for s.Remaining() > 0 {
			c := s.Draw()
			if !c.IsValid() {
				t.Fatalf("drew invalid card %+v", c)
			}
			rankCounts[c.Rank]++
			suitCounts[c.Suit]++
		}

		for rank, n := range rankCounts {
			if n != 4*decks {
				t.Errorf("%d decks: rank %s appears %d times, expected %d", decks, rank, n, 4*decks)
			}
		}
		for suit, n := range suitCounts {
			if n != 13*decks {
				t.Errorf("%d decks: suit %s appears %d times, expected %d", decks, suit, n, 13*decks)
			}
		}
	}
}

func TestNewShoeRejectsBadArguments(t *testing.T) {
	tests := []struct {
		name        string
		decks       int
		penetration int
	}{
		{"zero decks", 0, 75},
		{"negative decks", -1, 75},
		{"too many decks", MaxDecks + 1, 75},
		{"zero penetration", 6, 0},
		{"penetration over 100", 6, 101},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(tt.decks, tt.penetration); err == nil {
				t.Errorf("New(%d, %d): expected error", tt.decks, tt.penetration)
			}
		})
	}
}

func TestSeededShoeIsDeterministic(t *testing.T) {
	a, err := New(6, 75, WithRand(randutil.New(42)))
	if err != nil {
		t.Fatal(err)
	}
	b, err := New(6, 75, WithRand(randutil.New(42)))
	if err != nil {
		t.Fatal(err)
	}

	// Draw past a full rebuild to cover the exhaustion path too.
	for i := 0; i < 6*52+20; i++ {
		ca, cb := a.Draw(), b.Draw()
		if ca != cb {
			t.Fatalf("draw %d diverged: %s vs %s", i, ca, cb)
		}
	}
}

func TestForcedDrawsComeFirstInOrder(t *testing.T) {
	s, err := New(1, 75, WithRand(randutil.New(7)))
	if err != nil {
		t.Fatal(err)
	}

	forced, err := deck.ParseCards("AsKdTh2c")
	if err != nil {
		t.Fatal(err)
	}
	for _, c := range forced {
		s.EnqueueForcedDraw(c)
	}

	if s.ForcedDrawCount() != len(forced) {
		t.Fatalf("expected %d forced draws, got %d", len(forced), s.ForcedDrawCount())
	}

	remaining := s.Remaining()
	for i, want := range forced {
		if got := s.Draw(); got != want {
			t.Errorf("forced draw %d: expected %s, got %s", i, want, got)
		}
	}

	// Forced draws must not deplete the shuffled pool.
	if s.Remaining() != remaining {
		t.Errorf("shuffled pool depleted by forced draws: %d -> %d", remaining, s.Remaining())
	}
	if s.ForcedDrawCount() != 0 {
		t.Errorf("expected empty forced queue, got %d", s.ForcedDrawCount())
	}
}

func TestClearForcedDraws(t *testing.T) {
	s, err := New(1, 75, WithRand(randutil.New(7)))
	if err != nil {
		t.Fatal(err)
	}

	s.EnqueueForcedDraw(deck.NewCard(deck.Spades, deck.Ace))
	s.ClearForcedDraws()
	if s.ForcedDrawCount() != 0 {
		t.Errorf("expected 0 forced draws after clear, got %d", s.ForcedDrawCount())
	}
}

func TestCutCardThreshold(t *testing.T) {
	// 6 decks at 75% penetration: threshold = ceil(312 * 0.25) = 78.
	s, err := New(6, 75, WithRand(randutil.New(3)))
	if err != nil {
		t.Fatal(err)
	}
	if got := s.CutCardThreshold(); got != 78 {
		t.Fatalf("expected threshold 78, got %d", got)
	}
	if s.IsCutCardReached() {
		t.Error("fresh shoe should not have reached the cut card")
	}
	if s.ReshuffleIfCutCardReached() {
		t.Error("fresh shoe should not reshuffle")
	}

	for s.Remaining() > 78 {
		s.Draw()
	}
	if !s.IsCutCardReached() {
		t.Error("cut card should be reached at the threshold")
	}
	if !s.ReshuffleIfCutCardReached() {
		t.Error("expected a reshuffle once the cut card is reached")
	}
	if s.Remaining() != 6*52 {
		t.Errorf("expected full shoe after reshuffle, got %d", s.Remaining())
	}
}

func TestDrawRebuildsExhaustedPool(t *testing.T) {
	s, err := New(1, 75, WithRand(randutil.New(11)))
	if err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 52; i++ {
		s.Draw()
	}
	if s.Remaining() != 0 {
		t.Fatalf("expected empty pool, got %d", s.Remaining())
	}

	c := s.Draw()
	if !c.IsValid() {
		t.Fatalf("drew invalid card %+v after rebuild", c)
	}
	if s.Remaining() != 51 {
		t.Errorf("expected 51 cards after rebuild and draw, got %d", s.Remaining())
	}
}

func TestResetClearsForcedDrawsByDefault(t *testing.T) {
	s, err := New(2, 75, WithRand(randutil.New(5)))
	if err != nil {
		t.Fatal(err)
	}

	s.Draw()
	s.EnqueueForcedDraw(deck.NewCard(deck.Hearts, deck.Queen))

	s.Reset()
	if s.Remaining() != 2*52 {
		t.Errorf("expected full shoe after reset, got %d", s.Remaining())
	}
	if s.ForcedDrawCount() != 0 {
		t.Errorf("expected forced queue cleared by reset, got %d", s.ForcedDrawCount())
	}
}

func TestResetKeepForcedDraws(t *testing.T) {
	s, err := New(2, 75, WithRand(randutil.New(5)))
	if err != nil {
		t.Fatal(err)
	}

	want := deck.NewCard(deck.Hearts, deck.Queen)
	s.EnqueueForcedDraw(want)

	s.Reset(KeepForcedDraws())
	if s.ForcedDrawCount() != 1 {
		t.Fatalf("expected forced queue preserved, got %d", s.ForcedDrawCount())
	}
	if got := s.Draw(); got != want {
		t.Errorf("expected preserved forced draw %s, got %s", want, got)
	}
}
