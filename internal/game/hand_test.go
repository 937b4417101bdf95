package game

import (
	"testing"

	"github.com/lox/blackjack/internal/deck"
)

func handOf(t *testing.T, cards string) *Hand {
	t.Helper()
	parsed, err := deck.ParseCards(cards)
	if err != nil {
		t.Fatalf("parse %q: %v", cards, err)
	}
	h := NewHand()
	for i, c := range parsed {
		h.Add(DealtCard{Card: c, DealID: i})
	}
	return h
}

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name   string
		cards  string
		value  int
		soft   bool
		busted bool
	}{
		{"blackjack", "AsKs", 21, true, false},
		{"soft seventeen", "Ah6d", 17, true, false},
		{"hard fourteen", "Ah6d7c", 14, false, false},
		{"busted", "Th9d5c", 24, false, true},
		{"two aces", "AhAd", 12, true, false},
		{"many aces", "AhAdAcAs", 14, true, false},
		{"hard twenty", "ThQd", 20, false, false},
		{"soft twenty", "Ah9d", 20, true, false},
		{"twenty one with three cards", "7h7d7c", 21, false, false},
		{"empty", "", 0, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := handOf(t, tt.cards)
			if got := h.Value(); got != tt.value {
				t.Errorf("Value() = %d, expected %d", got, tt.value)
			}
			if got := h.IsSoft(); got != tt.soft {
				t.Errorf("IsSoft() = %v, expected %v", got, tt.soft)
			}
			if got := h.IsBusted(); got != tt.busted {
				t.Errorf("IsBusted() = %v, expected %v", got, tt.busted)
			}
		})
	}
}

func TestEvaluateSnapshot(t *testing.T) {
	// Evaluate works on bare card slices without a Hand instance.
	cards, err := deck.ParseCards("AsKs")
	if err != nil {
		t.Fatal(err)
	}
	if got := Evaluate(cards); got != 21 {
		t.Errorf("Evaluate(AsKs) = %d, expected 21", got)
	}
	if got := Evaluate(nil); got != 0 {
		t.Errorf("Evaluate(nil) = %d, expected 0", got)
	}
}

func TestIsBlackjack(t *testing.T) {
	tests := []struct {
		cards     string
		blackjack bool
	}{
		{"AsKs", true},
		{"AdTh", true},
		{"7h7d7c", false}, // 21 but three cards
		{"ThQd", false},
		{"AhAd", false},
	}

	for _, tt := range tests {
		h := handOf(t, tt.cards)
		if got := h.IsBlackjack(); got != tt.blackjack {
			t.Errorf("%s: IsBlackjack() = %v, expected %v", tt.cards, got, tt.blackjack)
		}
	}
}

func TestHandOrderAndIdentity(t *testing.T) {
	h := handOf(t, "As6d7c")

	cards := h.Cards()
	if len(cards) != 3 {
		t.Fatalf("expected 3 cards, got %d", len(cards))
	}
	if cards[0].Rank != deck.Ace || cards[2].Rank != deck.Seven {
		t.Errorf("deal order not preserved: %v", cards)
	}

	dealt := h.Dealt()
	for i, c := range dealt {
		if c.DealID != i {
			t.Errorf("card %d: DealID = %d", i, c.DealID)
		}
	}

	popped := h.popLast()
	if popped.Rank != deck.Seven {
		t.Errorf("popLast returned %s, expected 7", popped)
	}
	if h.Len() != 2 {
		t.Errorf("expected 2 cards after pop, got %d", h.Len())
	}
}
