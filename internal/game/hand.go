package game

import (
	"encoding/json"
	"strings"

	"github.com/lox/blackjack/internal/deck"
)

// DealtCard is a card with the stable identity it was assigned when it
// left the shoe. Split bookkeeping remaps hands by DealID rather than
// by card position.
type DealtCard struct {
	deck.Card
	DealID int
}

// dealtCardJSON keeps DealID on the wire; the embedded card would
// otherwise promote its own MarshalJSON and drop it.
type dealtCardJSON struct {
	Card   deck.Card `json:"card"`
	DealID int       `json:"dealId"`
}

// MarshalJSON encodes the card code together with its deal identity.
func (c DealtCard) MarshalJSON() ([]byte, error) {
	return json.Marshal(dealtCardJSON{Card: c.Card, DealID: c.DealID})
}

// UnmarshalJSON decodes a card code and deal identity.
func (c *DealtCard) UnmarshalJSON(data []byte) error {
	var wire dealtCardJSON
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	c.Card = wire.Card
	c.DealID = wire.DealID
	return nil
}

// Hand is an ordered sequence of dealt cards. Insertion order is deal
// order, which matters for display and for split semantics. All
// derived values are recomputed on access; nothing is cached.
type Hand struct {
	cards []DealtCard
}

// NewHand creates an empty hand.
func NewHand() *Hand {
	return &Hand{}
}

// Add appends a card to the hand.
func (h *Hand) Add(c DealtCard) {
	h.cards = append(h.cards, c)
}

// Len returns the number of cards in the hand.
func (h *Hand) Len() int {
	return len(h.cards)
}

// Cards returns a snapshot of the hand's cards in deal order.
func (h *Hand) Cards() []deck.Card {
	out := make([]deck.Card, len(h.cards))
	for i, c := range h.cards {
		out[i] = c.Card
	}
	return out
}

// Dealt returns a snapshot of the hand's cards with their deal IDs.
func (h *Hand) Dealt() []DealtCard {
	out := make([]DealtCard, len(h.cards))
	copy(out, h.cards)
	return out
}

// Value returns the blackjack value of the hand, counting one ace as
// 11 when that does not bust.
func (h *Hand) Value() int {
	return Evaluate(h.Cards())
}

// IsSoft reports whether an ace is currently counted as 11.
func (h *Hand) IsSoft() bool {
	sum, hasAce := rawSum(h.Cards())
	return hasAce && sum+10 <= 21
}

// IsBusted reports whether the hand is over 21.
func (h *Hand) IsBusted() bool {
	return h.Value() > 21
}

// IsBlackjack reports whether the hand is a two-card 21.
func (h *Hand) IsBlackjack() bool {
	return len(h.cards) == 2 && h.Value() == 21
}

// String renders the hand like "A♠ K♦".
func (h *Hand) String() string {
	parts := make([]string, len(h.cards))
	for i, c := range h.cards {
		parts[i] = c.Card.String()
	}
	return strings.Join(parts, " ")
}

// popLast removes and returns the most recently dealt card; used when
// splitting a pair.
func (h *Hand) popLast() DealtCard {
	c := h.cards[len(h.cards)-1]
	h.cards = h.cards[:len(h.cards)-1]
	return c
}

// Evaluate computes the blackjack value of a card snapshot: sum of
// point values, plus 10 if an ace is present and the bump stays at or
// under 21. It is deliberately re-derived from scratch each call;
// splits and card removal make incremental tracking error-prone, and
// callers such as decision tracking only hold snapshot slices.
func Evaluate(cards []deck.Card) int {
	sum, hasAce := rawSum(cards)
	if hasAce && sum+10 <= 21 {
		return sum + 10
	}
	return sum
}

func rawSum(cards []deck.Card) (sum int, hasAce bool) {
	for _, c := range cards {
		sum += c.PointValue()
		if c.IsAce() {
			hasAce = true
		}
	}
	return sum, hasAce
}
