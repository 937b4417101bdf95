// Package game implements one hand of blackjack as a deterministic
// state machine: betting, dealing, insurance, the player's turn across
// split hands, the dealer's fixed policy and payout resolution. The
// engine publishes ordered events and knows nothing about who listens.
package game

import (
	"io"

	"github.com/charmbracelet/log"
	"github.com/shopspring/decimal"

	"github.com/lox/blackjack/internal/deck"
	"github.com/lox/blackjack/internal/shoe"
)

// Phase is the round's state machine position.
type Phase int

const (
	PhaseBetting Phase = iota
	PhaseDealing
	PhaseInsuranceOffered
	PhasePlayerTurn
	PhaseDealerTurn
	PhaseResolution
	PhaseComplete
)

// String returns the string representation of a phase
func (p Phase) String() string {
	switch p {
	case PhaseBetting:
		return "betting"
	case PhaseDealing:
		return "dealing"
	case PhaseInsuranceOffered:
		return "insurance_offered"
	case PhasePlayerTurn:
		return "player_turn"
	case PhaseDealerTurn:
		return "dealer_turn"
	case PhaseResolution:
		return "resolution"
	case PhaseComplete:
		return "complete"
	default:
		return "?"
	}
}

// playerHand is one of the player's hands with its per-hand bet and
// turn state. A round starts with one and grows by splitting.
type playerHand struct {
	hand        *Hand
	bet         int
	doubled     bool
	surrendered bool
	finished    bool
	fromSplit   bool
	splitAces   bool

	// resplitOnly marks a split-ace hand that drew another ace while
	// resplitting is allowed: its only legal actions are split and
	// stand (split aces receive one card each, never hits).
	resplitOnly bool
}

// Round enacts one hand of blackjack. It owns the player's hands, the
// dealer's hand, the bets and the event queue; it reads policy from an
// immutable Rules value and draws cards from the shoe it is given.
// One Round exists per hand and is discarded at completion.
//
// All operations are synchronous and single-threaded; events are
// appended in order and drained by the caller whenever convenient.
type Round struct {
	rules  Rules
	shoe   *shoe.Shoe
	logger *log.Logger

	phase   Phase
	bank    int
	minBet  int
	hands   []*playerHand
	active  int
	dealer  *Hand
	insured int

	splitCount int
	nextDealID int
	handByDeal map[int]int

	// earlyOut means the deal found a dealer blackjack while early
	// surrender is in play: the player gets exactly one decision,
	// surrender or stand, before the blackjack resolves.
	earlyOut bool

	net   decimal.Decimal
	queue Queue
	sink  func(Event)
}

// RoundOption configures a Round at construction time.
type RoundOption func(*Round)

// WithBank sets the player's available bankroll, the upper clamp for
// bets. Defaults to 1000 units.
func WithBank(bank int) RoundOption {
	return func(r *Round) {
		r.bank = bank
	}
}

// WithMinimumBet sets the table minimum, the lower clamp for bets.
// Defaults to 1 unit.
func WithMinimumBet(minBet int) RoundOption {
	return func(r *Round) {
		r.minBet = minBet
	}
}

// WithSink attaches a callback invoked synchronously for every event
// in addition to the internal queue. The composition root typically
// wires this to a Bus.
func WithSink(sink func(Event)) RoundOption {
	return func(r *Round) {
		r.sink = sink
	}
}

// WithLogger attaches a logger for debug tracing.
func WithLogger(logger *log.Logger) RoundOption {
	return func(r *Round) {
		r.logger = logger
	}
}

// NewRound creates a round in the Betting phase.
func NewRound(rules Rules, s *shoe.Shoe, opts ...RoundOption) *Round {
	r := &Round{
		rules:      rules,
		shoe:       s,
		bank:       1000,
		minBet:     1,
		dealer:     NewHand(),
		handByDeal: make(map[int]int),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = log.New(io.Discard)
	}
	return r
}

// Phase returns the round's current phase.
func (r *Round) Phase() Phase {
	return r.phase
}

// Drain returns all pending events in emission order and clears the
// queue.
func (r *Round) Drain() []Event {
	return r.queue.Flush()
}

// Net returns the round's running net payout, including insurance.
func (r *Round) Net() decimal.Decimal {
	return r.net
}

// PlayerHandCount returns the number of player hands.
func (r *Round) PlayerHandCount() int {
	return len(r.hands)
}

// PlayerHand returns the player hand at the given index.
func (r *Round) PlayerHand(i int) *Hand {
	return r.hands[i].hand
}

// PlayerBet returns the bet riding on the given hand.
func (r *Round) PlayerBet(i int) int {
	return r.hands[i].bet
}

// ActiveHandIndex returns the hand currently being played, or -1
// outside the player's turn.
func (r *Round) ActiveHandIndex() int {
	if r.phase != PhasePlayerTurn {
		return -1
	}
	return r.active
}

// DealerHand returns the dealer's hand. The second card is the hole
// card; it is the caller's job not to display it before the reveal
// event.
func (r *Round) DealerHand() *Hand {
	return r.dealer
}

// DealerUpcard returns the dealer's face-up card once dealt.
func (r *Round) DealerUpcard() (DealtCard, bool) {
	if r.dealer.Len() == 0 {
		return DealtCard{}, false
	}
	return r.dealer.Dealt()[0], true
}

// InsuranceBet returns the insurance stake, zero if none was taken.
func (r *Round) InsuranceBet() int {
	return r.insured
}

// HandIndexForDeal maps a card's deal-time identity to the player hand
// it currently belongs to. The mapping survives splits, which is what
// sprite and decision-tracking consumers key off.
func (r *Round) HandIndexForDeal(dealID int) (int, bool) {
	idx, ok := r.handByDeal[dealID]
	return idx, ok
}

func (r *Round) emit(e Event) {
	r.queue.Append(e)
	if r.sink != nil {
		r.sink(e)
	}
}

func (r *Round) draw() DealtCard {
	c := DealtCard{Card: r.shoe.Draw(), DealID: r.nextDealID}
	r.nextDealID++
	return c
}

// PlaceBet accepts a bet, clamping it to [minimum bet, bank] so UI
// sliders never need a validation round-trip. Valid only in Betting.
func (r *Round) PlaceBet(amount int) error {
	if r.phase != PhaseBetting {
		return phaseErr("PlaceBet", r.phase)
	}

	if amount < r.minBet {
		amount = r.minBet
	}
	if amount > r.bank {
		amount = r.bank
	}

	r.hands = []*playerHand{{hand: NewHand(), bet: amount}}
	r.phase = PhaseDealing
	r.logger.Debug("bet placed", "amount", amount)
	r.emit(BetPlaced{eventTime: stamp(), Amount: amount})
	return nil
}

// Deal draws the four opening cards in strict player, dealer, player,
// dealer order, then either offers insurance, short-circuits on a
// blackjack, or starts the player's turn. Valid only after PlaceBet.
func (r *Round) Deal() error {
	if r.phase != PhaseDealing {
		return phaseErr("Deal", r.phase)
	}

	r.dealInitial(ParticipantPlayer, false)
	r.dealInitial(ParticipantDealer, false)
	r.dealInitial(ParticipantPlayer, false)
	r.dealInitial(ParticipantDealer, true)
	r.emit(InitialDealComplete{eventTime: stamp()})

	upcard, _ := r.DealerUpcard()
	if r.rules.OfferInsurance && upcard.IsAce() {
		r.phase = PhaseInsuranceOffered
		r.emit(InsuranceOffered{eventTime: stamp()})
		return nil
	}

	r.continueAfterInsurance()
	return nil
}

func (r *Round) dealInitial(to Participant, faceDown bool) {
	c := r.draw()
	if to == ParticipantPlayer {
		r.hands[0].hand.Add(c)
		r.handByDeal[c.DealID] = 0
	} else {
		r.dealer.Add(c)
	}
	r.emit(CardDealt{eventTime: stamp(), Card: c, Recipient: to, HandIndex: 0, FaceDown: faceDown})
}

// AcceptInsurance places an insurance stake, capped at half the
// original bet and the remaining bankroll. A stake that clamps to
// zero counts as declining. Valid only while insurance is offered.
func (r *Round) AcceptInsurance(amount int) error {
	if r.phase != PhaseInsuranceOffered {
		return phaseErr("AcceptInsurance", r.phase)
	}

	stake := amount
	if limit := r.hands[0].bet / 2; stake > limit {
		stake = limit
	}
	if headroom := r.bank - r.committed(); stake > headroom {
		stake = headroom
	}
	if stake <= 0 {
		return r.DeclineInsurance()
	}

	r.insured = stake
	r.emit(InsurancePlaced{eventTime: stamp(), Amount: stake})
	r.continueAfterInsurance()
	return nil
}

// DeclineInsurance waves off the insurance offer and lets the round
// proceed. Valid only while insurance is offered.
func (r *Round) DeclineInsurance() error {
	if r.phase != PhaseInsuranceOffered {
		return phaseErr("DeclineInsurance", r.phase)
	}

	r.emit(InsuranceDeclined{eventTime: stamp()})
	r.continueAfterInsurance()
	return nil
}

// continueAfterInsurance performs the dealer peek and routes the round
// to the player's turn, an early-surrender decision, or straight to
// resolution on a blackjack.
func (r *Round) continueAfterInsurance() {
	dealerBJ := r.dealer.IsBlackjack()
	playerBJ := r.hands[0].hand.IsBlackjack()

	upcard, _ := r.DealerUpcard()
	if upcard.IsAce() || upcard.PointValue() == 10 {
		r.emit(DealerPeeked{eventTime: stamp(), DealerBlackjack: dealerBJ})
	}

	if r.insured > 0 {
		// Insurance resolves the moment the hole card is known.
		var payout decimal.Decimal
		if dealerBJ {
			payout = decimal.NewFromInt(int64(2 * r.insured))
		} else {
			payout = decimal.NewFromInt(int64(r.insured)).Neg()
		}
		r.net = r.net.Add(payout)
		r.emit(InsuranceResult{eventTime: stamp(), DealerHadBlackjack: dealerBJ, Payout: payout})
	}

	switch {
	case dealerBJ && !playerBJ && r.rules.Surrender == SurrenderEarly:
		r.earlyOut = true
		r.phase = PhasePlayerTurn
		r.active = 0
		r.emit(PlayerTurnStarted{eventTime: stamp(), HandIndex: 0})
	case dealerBJ || playerBJ:
		if playerBJ {
			r.emit(BlackjackDetected{eventTime: stamp(), Holder: ParticipantPlayer})
		}
		if dealerBJ {
			r.emit(BlackjackDetected{eventTime: stamp(), Holder: ParticipantDealer})
		}
		r.revealAndResolve()
	default:
		r.phase = PhasePlayerTurn
		r.active = 0
		r.emit(PlayerTurnStarted{eventTime: stamp(), HandIndex: 0})
	}
}

// CanHit reports whether the active hand may draw right now. Split-ace
// hands holding a live resplit decision may only split or stand.
func (r *Round) CanHit() bool {
	if r.phase != PhasePlayerTurn || r.earlyOut {
		return false
	}
	return !r.hands[r.active].resplitOnly
}

// PlayerHit draws one card into the active hand. A bust is an
// immediate automatic stand. Valid only during the player's turn.
func (r *Round) PlayerHit() error {
	if r.phase != PhasePlayerTurn {
		return phaseErr("PlayerHit", r.phase)
	}
	h := r.hands[r.active]
	if r.earlyOut || h.resplitOnly {
		return ErrActionUnavailable
	}

	c := r.draw()
	h.hand.Add(c)
	r.handByDeal[c.DealID] = r.active
	r.emit(PlayerHit{eventTime: stamp(), HandIndex: r.active, Card: c})

	if h.hand.IsBusted() {
		r.emit(PlayerBusted{eventTime: stamp(), HandIndex: r.active, Value: h.hand.Value()})
		r.advance()
	}
	return nil
}

// PlayerStand finishes the active hand. Valid only during the
// player's turn.
func (r *Round) PlayerStand() error {
	if r.phase != PhasePlayerTurn {
		return phaseErr("PlayerStand", r.phase)
	}

	r.emit(PlayerStood{eventTime: stamp(), HandIndex: r.active})

	if r.earlyOut {
		// Standing into a peeked dealer blackjack resolves the round.
		r.emit(BlackjackDetected{eventTime: stamp(), Holder: ParticipantDealer})
		r.revealAndResolve()
		return nil
	}

	r.advance()
	return nil
}

// CanDoubleDown reports whether the active hand may double right now.
func (r *Round) CanDoubleDown() bool {
	if r.phase != PhasePlayerTurn || r.earlyOut {
		return false
	}
	return r.canDouble(r.hands[r.active])
}

func (r *Round) canDouble(h *playerHand) bool {
	if h.resplitOnly || h.hand.Len() != 2 {
		return false
	}
	if !r.rules.DoubleDown.Permits(h.hand.Value()) {
		return false
	}
	if h.fromSplit && !r.rules.DoubleAfterSplit {
		return false
	}
	return r.committed()+h.bet <= r.bank
}

// PlayerDoubleDown doubles the active hand's bet, draws exactly one
// card and stands, bust or not. Only available as the hand's first
// decision, subject to the double-down restriction and the
// double-after-split rule.
func (r *Round) PlayerDoubleDown() error {
	if r.phase != PhasePlayerTurn {
		return phaseErr("PlayerDoubleDown", r.phase)
	}
	if r.earlyOut || !r.canDouble(r.hands[r.active]) {
		return ErrActionUnavailable
	}

	h := r.hands[r.active]
	h.bet *= 2
	h.doubled = true

	c := r.draw()
	h.hand.Add(c)
	r.handByDeal[c.DealID] = r.active
	r.emit(PlayerDoubledDown{eventTime: stamp(), HandIndex: r.active, Card: c, NewBet: h.bet})

	if h.hand.IsBusted() {
		r.emit(PlayerBusted{eventTime: stamp(), HandIndex: r.active, Value: h.hand.Value()})
	}
	r.advance()
	return nil
}

// CanSplit reports whether the active hand may split right now.
func (r *Round) CanSplit() bool {
	if r.phase != PhasePlayerTurn || r.earlyOut {
		return false
	}
	return r.canSplit(r.hands[r.active])
}

func (r *Round) canSplit(h *playerHand) bool {
	if h.hand.Len() != 2 || r.splitCount >= r.rules.MaxSplits {
		return false
	}
	cards := h.hand.Dealt()
	if !r.pairMatches(cards[0].Card, cards[1].Card) {
		return false
	}
	if cards[0].IsAce() && h.splitAces && !r.rules.ResplitAces {
		return false
	}
	return r.committed()+h.bet <= r.bank
}

// pairMatches applies the configured split-eligibility convention:
// exact rank pairs always split; any two ten-value cards split only
// when the rules say so.
func (r *Round) pairMatches(a, b deck.Card) bool {
	if a.Rank == b.Rank {
		return true
	}
	return r.rules.SplitTenValueCards && a.PointValue() == 10 && b.PointValue() == 10
}

// PlayerSplit moves the active hand's second card into a new hand
// inserted directly after it, then deals one fresh card to each.
// Split aces receive that one card and stand, unless resplitting aces
// is allowed and another ace arrives.
func (r *Round) PlayerSplit() error {
	if r.phase != PhasePlayerTurn {
		return phaseErr("PlayerSplit", r.phase)
	}
	if r.earlyOut || !r.canSplit(r.hands[r.active]) {
		return ErrActionUnavailable
	}

	h := r.hands[r.active]
	aces := h.hand.Dealt()[0].IsAce()
	second := h.hand.popLast()

	next := &playerHand{hand: NewHand(), bet: h.bet, fromSplit: true, splitAces: aces}
	next.hand.Add(second)
	h.fromSplit = true
	if aces {
		h.splitAces = true
	}
	h.resplitOnly = false

	// Insert the new hand right after the active one and shift the
	// identity map for every hand behind it.
	r.hands = append(r.hands, nil)
	copy(r.hands[r.active+2:], r.hands[r.active+1:])
	r.hands[r.active+1] = next
	for id, idx := range r.handByDeal {
		if idx > r.active {
			r.handByDeal[id] = idx + 1
		}
	}
	r.handByDeal[second.DealID] = r.active + 1

	r.splitCount++
	r.emit(PlayerSplit{eventTime: stamp(), OriginalHandIndex: r.active, NewHandIndex: r.active + 1, SplitCard: second})

	first := r.draw()
	h.hand.Add(first)
	r.handByDeal[first.DealID] = r.active
	r.emit(CardDealt{eventTime: stamp(), Card: first, Recipient: ParticipantPlayer, HandIndex: r.active})

	fresh := r.draw()
	next.hand.Add(fresh)
	r.handByDeal[fresh.DealID] = r.active + 1
	r.emit(CardDealt{eventTime: stamp(), Card: fresh, Recipient: ParticipantPlayer, HandIndex: r.active + 1})

	if aces {
		h.resplitOnly = r.resplittable(first)
		next.resplitOnly = r.resplittable(fresh)
		next.finished = !next.resplitOnly
		if !h.resplitOnly {
			r.advance()
		}
	}
	return nil
}

// resplittable reports whether a split-ace hand that just received the
// given card keeps a live split decision.
func (r *Round) resplittable(c DealtCard) bool {
	return c.IsAce() && r.rules.ResplitAces && r.splitCount < r.rules.MaxSplits
}

// CanSurrender reports whether the active hand may surrender right now.
func (r *Round) CanSurrender() bool {
	if r.phase != PhasePlayerTurn {
		return false
	}
	return r.canSurrender(r.hands[r.active])
}

func (r *Round) canSurrender(h *playerHand) bool {
	if r.rules.Surrender == SurrenderNone {
		return false
	}
	return h.hand.Len() == 2 && !h.fromSplit && !h.doubled && !h.resplitOnly
}

// PlayerSurrender forfeits half the bet as the hand's first decision.
// Under late surrender the dealer has already peeked; under early
// surrender this is also the escape hatch from a peeked dealer
// blackjack.
func (r *Round) PlayerSurrender() error {
	if r.phase != PhasePlayerTurn {
		return phaseErr("PlayerSurrender", r.phase)
	}
	if !r.canSurrender(r.hands[r.active]) {
		return ErrActionUnavailable
	}

	h := r.hands[r.active]
	h.surrendered = true
	r.emit(PlayerSurrendered{eventTime: stamp(), HandIndex: r.active})
	r.advance()
	return nil
}

// advance finishes the active hand and moves to the next unfinished
// one, or hands control to the dealer once all are done.
func (r *Round) advance() {
	r.hands[r.active].finished = true
	for i := r.active + 1; i < len(r.hands); i++ {
		h := r.hands[i]
		if h.finished {
			continue
		}
		// A waiting split-ace hand can lose its resplit window to
		// splits played in between; it stands on its one card rather
		// than becoming an active hand with no legal draw.
		if h.resplitOnly && !r.canSplit(h) {
			h.finished = true
			r.emit(PlayerStood{eventTime: stamp(), HandIndex: i})
			continue
		}
		r.active = i
		r.emit(PlayerTurnStarted{eventTime: stamp(), HandIndex: i})
		return
	}
	r.startDealerTurn()
}

func (r *Round) anyLiveHand() bool {
	for _, h := range r.hands {
		if !h.hand.IsBusted() && !h.surrendered {
			return true
		}
	}
	return false
}

// startDealerTurn reveals the hole card and plays the house policy.
// When every player hand is already dead the hole card is still
// revealed for transparency, but the dealer draws nothing.
func (r *Round) startDealerTurn() {
	r.phase = PhaseDealerTurn
	r.emit(DealerTurnStarted{eventTime: stamp()})
	r.emit(DealerHoleCardRevealed{eventTime: stamp(), Card: r.dealer.Dealt()[1]})

	if r.anyLiveHand() {
		PlayDealer(r.rules, r.dealer, r.draw, func(c DealtCard) {
			r.emit(DealerHit{eventTime: stamp(), Card: c})
		})
		if r.dealer.IsBusted() {
			r.emit(DealerBusted{eventTime: stamp(), Value: r.dealer.Value()})
		} else {
			r.emit(DealerStood{eventTime: stamp(), Value: r.dealer.Value()})
		}
	}

	r.resolve()
}

// revealAndResolve is the blackjack short-circuit: no dealer turn,
// just the hole-card reveal and payout resolution.
func (r *Round) revealAndResolve() {
	r.emit(DealerHoleCardRevealed{eventTime: stamp(), Card: r.dealer.Dealt()[1]})
	r.resolve()
}

// resolve compares every player hand against the dealer and emits one
// HandResolved each, then RoundComplete.
func (r *Round) resolve() {
	r.phase = PhaseResolution

	dealerBJ := r.dealer.IsBlackjack()
	dealerBusted := r.dealer.IsBusted()
	dealerValue := r.dealer.Value()

	for i, h := range r.hands {
		bet := decimal.NewFromInt(int64(h.bet))
		// A split two-card 21 is an ordinary 21, not a blackjack.
		playerBJ := h.hand.IsBlackjack() && !h.fromSplit

		var outcome Outcome
		var payout decimal.Decimal
		switch {
		case h.surrendered:
			outcome = OutcomeSurrender
			payout = bet.Div(decimal.NewFromInt(2)).Neg()
		case h.hand.IsBusted():
			outcome = OutcomeLose
			payout = bet.Neg()
		case playerBJ && !dealerBJ:
			outcome = OutcomeBlackjack
			payout = r.rules.BlackjackPayout.Mul(bet)
		case playerBJ && dealerBJ:
			outcome = OutcomePush
			payout = decimal.Zero
		case dealerBJ:
			outcome = OutcomeLose
			payout = bet.Neg()
		case dealerBusted:
			outcome = OutcomeWin
			payout = bet
		case h.hand.Value() > dealerValue:
			outcome = OutcomeWin
			payout = bet
		case h.hand.Value() == dealerValue:
			outcome = OutcomePush
			payout = decimal.Zero
		default:
			outcome = OutcomeLose
			payout = bet.Neg()
		}

		r.net = r.net.Add(payout)
		r.logger.Debug("hand resolved", "hand", i, "outcome", outcome, "payout", payout)
		r.emit(HandResolved{eventTime: stamp(), HandIndex: i, Outcome: outcome, Bet: h.bet, Payout: payout})
	}

	r.emit(RoundComplete{eventTime: stamp(), Net: r.net})
	r.phase = PhaseComplete
}

// committed returns the units already riding on this round.
func (r *Round) committed() int {
	total := r.insured
	for _, h := range r.hands {
		total += h.bet
	}
	return total
}
