package simulator

import (
	"github.com/lox/blackjack/internal/game"
)

// Action is one player decision.
type Action int

const (
	ActionHit Action = iota
	ActionStand
	ActionDouble
	ActionSplit
	ActionSurrender
)

// String returns the string representation of an action
func (a Action) String() string {
	switch a {
	case ActionHit:
		return "hit"
	case ActionStand:
		return "stand"
	case ActionDouble:
		return "double"
	case ActionSplit:
		return "split"
	case ActionSurrender:
		return "surrender"
	default:
		return "?"
	}
}

// Strategy decides the next action for the active hand.
type Strategy interface {
	Decide(r *game.Round) Action
	TakeInsurance(r *game.Round) bool
}

// BasicStrategy plays the standard multi-deck chart: surrender the
// worst hands, split by pair value, double on favorable totals, and
// hit or stand against the dealer's upcard. It never takes insurance.
type BasicStrategy struct{}

// NewBasicStrategy creates a chart-following strategy.
func NewBasicStrategy() *BasicStrategy {
	return &BasicStrategy{}
}

// TakeInsurance always declines; insurance is a losing side bet
// without a count.
func (s *BasicStrategy) TakeInsurance(r *game.Round) bool {
	return false
}

// Decide returns the chart action for the active hand, downgraded to
// a legal one when the table rules forbid the preferred play.
func (s *BasicStrategy) Decide(r *game.Round) Action {
	hand := r.PlayerHand(r.ActiveHandIndex())
	upcard, ok := r.DealerUpcard()
	if !ok {
		return ActionStand
	}

	up := upcard.PointValue()
	if upcard.IsAce() {
		up = 11
	}

	if r.CanSurrender() && s.shouldSurrender(hand, up) {
		return ActionSurrender
	}

	if r.CanSplit() && s.shouldSplit(hand, up) {
		return ActionSplit
	}

	if r.CanDoubleDown() && s.shouldDouble(hand, up) {
		return ActionDouble
	}

	if s.shouldStand(hand, up) || !r.CanHit() {
		return ActionStand
	}
	return ActionHit
}

// shouldSurrender covers the late-surrender chart: hard 16 against
// 9, ten or ace, and hard 15 against a ten.
func (s *BasicStrategy) shouldSurrender(hand *game.Hand, up int) bool {
	if hand.IsSoft() {
		return false
	}
	switch hand.Value() {
	case 16:
		return up >= 9
	case 15:
		return up == 10
	}
	return false
}

func (s *BasicStrategy) shouldSplit(hand *game.Hand, up int) bool {
	cards := hand.Cards()
	if len(cards) != 2 {
		return false
	}

	if cards[0].IsAce() {
		return true
	}
	pair := cards[0].PointValue()

	switch pair {
	case 8:
		return true
	case 9:
		return up != 7 && up != 10 && up != 11
	case 7:
		return up <= 7
	case 6:
		return up <= 6
	case 4:
		return up == 5 || up == 6
	case 2, 3:
		return up <= 7
	default: // fives and tens stay
		return false
	}
}

func (s *BasicStrategy) shouldDouble(hand *game.Hand, up int) bool {
	value := hand.Value()

	if hand.IsSoft() {
		switch value {
		case 13, 14:
			return up == 5 || up == 6
		case 15, 16:
			return up >= 4 && up <= 6
		case 17, 18:
			return up >= 3 && up <= 6
		}
		return false
	}

	switch value {
	case 9:
		return up >= 3 && up <= 6
	case 10:
		return up <= 9
	case 11:
		return up <= 10
	}
	return false
}

func (s *BasicStrategy) shouldStand(hand *game.Hand, up int) bool {
	value := hand.Value()

	if hand.IsSoft() {
		if value >= 19 {
			return true
		}
		return value == 18 && up <= 8
	}

	if value >= 17 {
		return true
	}
	if value >= 13 {
		return up <= 6
	}
	if value == 12 {
		return up >= 4 && up <= 6
	}
	return false
}
