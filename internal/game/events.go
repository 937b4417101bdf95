package game

import (
	"time"

	"github.com/shopspring/decimal"
)

// EventType represents a round event type with type safety
type EventType string

// EventType constants for round domain events, one per occurrence the
// engine can report. Consumers switch on these (or on the concrete
// event type) to stay exhaustive.
const (
	EventTypeBetPlaced              EventType = "bet_placed"
	EventTypeCardDealt              EventType = "card_dealt"
	EventTypeInitialDealComplete    EventType = "initial_deal_complete"
	EventTypeBlackjackDetected      EventType = "blackjack_detected"
	EventTypeDealerPeeked           EventType = "dealer_peeked"
	EventTypeInsuranceOffered       EventType = "insurance_offered"
	EventTypeInsurancePlaced        EventType = "insurance_placed"
	EventTypeInsuranceDeclined      EventType = "insurance_declined"
	EventTypeInsuranceResult        EventType = "insurance_result"
	EventTypePlayerTurnStarted      EventType = "player_turn_started"
	EventTypePlayerHit              EventType = "player_hit"
	EventTypePlayerStood            EventType = "player_stood"
	EventTypePlayerBusted           EventType = "player_busted"
	EventTypePlayerDoubledDown      EventType = "player_doubled_down"
	EventTypePlayerSplit            EventType = "player_split"
	EventTypePlayerSurrendered      EventType = "player_surrendered"
	EventTypeDealerTurnStarted      EventType = "dealer_turn_started"
	EventTypeDealerHoleCardRevealed EventType = "dealer_hole_card_revealed"
	EventTypeDealerHit              EventType = "dealer_hit"
	EventTypeDealerStood            EventType = "dealer_stood"
	EventTypeDealerBusted           EventType = "dealer_busted"
	EventTypeHandResolved           EventType = "hand_resolved"
	EventTypeRoundComplete          EventType = "round_complete"
)

// String returns the string representation of the event type
func (et EventType) String() string {
	return string(et)
}

// Event represents any event that occurs during a round
type Event interface {
	Type() EventType
	Timestamp() time.Time
}

// eventTime carries the emission timestamp shared by every event
// variant.
type eventTime struct {
	at time.Time
}

func (e eventTime) Timestamp() time.Time { return e.at }

func stamp() eventTime { return eventTime{at: time.Now()} }

// Participant identifies who a card-related event applies to.
type Participant int

const (
	ParticipantPlayer Participant = iota
	ParticipantDealer
)

// String returns the string representation of a participant
func (p Participant) String() string {
	switch p {
	case ParticipantPlayer:
		return "player"
	case ParticipantDealer:
		return "dealer"
	default:
		return "?"
	}
}

// Outcome classifies how a player hand resolved.
type Outcome string

const (
	OutcomeWin       Outcome = "win"
	OutcomeLose      Outcome = "lose"
	OutcomePush      Outcome = "push"
	OutcomeBlackjack Outcome = "blackjack"
	OutcomeSurrender Outcome = "surrender"
)

// BetPlaced is published when the round accepts a bet.
type BetPlaced struct {
	eventTime
	Amount int
}

func (e BetPlaced) Type() EventType { return EventTypeBetPlaced }

// CardDealt is published once per card during the initial deal.
// FaceDown is true only for the dealer's hole card.
type CardDealt struct {
	eventTime
	Card      DealtCard
	Recipient Participant
	HandIndex int
	FaceDown  bool
}

func (e CardDealt) Type() EventType { return EventTypeCardDealt }

// InitialDealComplete is published after all four opening cards are out.
type InitialDealComplete struct {
	eventTime
}

func (e InitialDealComplete) Type() EventType { return EventTypeInitialDealComplete }

// BlackjackDetected is published when a two-card 21 short-circuits the
// round.
type BlackjackDetected struct {
	eventTime
	Holder Participant
}

func (e BlackjackDetected) Type() EventType { return EventTypeBlackjackDetected }

// DealerPeeked is published when the dealer checks the hole card under
// an ace or ten-value upcard.
type DealerPeeked struct {
	eventTime
	DealerBlackjack bool
}

func (e DealerPeeked) Type() EventType { return EventTypeDealerPeeked }

// InsuranceOffered is published when the dealer shows an ace and house
// rules allow insurance; the driver must accept or decline before the
// round proceeds.
type InsuranceOffered struct {
	eventTime
}

func (e InsuranceOffered) Type() EventType { return EventTypeInsuranceOffered }

// InsurancePlaced is published when the player takes insurance.
type InsurancePlaced struct {
	eventTime
	Amount int
}

func (e InsurancePlaced) Type() EventType { return EventTypeInsurancePlaced }

// InsuranceDeclined is published when the player waves insurance off.
type InsuranceDeclined struct {
	eventTime
}

func (e InsuranceDeclined) Type() EventType { return EventTypeInsuranceDeclined }

// InsuranceResult is published once the hole card is known.
type InsuranceResult struct {
	eventTime
	DealerHadBlackjack bool
	Payout             decimal.Decimal
}

func (e InsuranceResult) Type() EventType { return EventTypeInsuranceResult }

// PlayerTurnStarted is published when a player hand becomes active.
type PlayerTurnStarted struct {
	eventTime
	HandIndex int
}

func (e PlayerTurnStarted) Type() EventType { return EventTypePlayerTurnStarted }

// PlayerHit is published for each card the player draws.
type PlayerHit struct {
	eventTime
	HandIndex int
	Card      DealtCard
}

func (e PlayerHit) Type() EventType { return EventTypePlayerHit }

// PlayerStood is published when the player stands a hand.
type PlayerStood struct {
	eventTime
	HandIndex int
}

func (e PlayerStood) Type() EventType { return EventTypePlayerStood }

// PlayerBusted is published when a hand goes over 21; it is an
// automatic stand, not a separate player action.
type PlayerBusted struct {
	eventTime
	HandIndex int
	Value     int
}

func (e PlayerBusted) Type() EventType { return EventTypePlayerBusted }

// PlayerDoubledDown is published when a hand doubles its bet for one
// final card.
type PlayerDoubledDown struct {
	eventTime
	HandIndex int
	Card      DealtCard
	NewBet    int
}

func (e PlayerDoubledDown) Type() EventType { return EventTypePlayerDoubledDown }

// PlayerSplit is published when a pair is split into two hands.
type PlayerSplit struct {
	eventTime
	OriginalHandIndex int
	NewHandIndex      int
	SplitCard         DealtCard
}

func (e PlayerSplit) Type() EventType { return EventTypePlayerSplit }

// PlayerSurrendered is published when the player forfeits half the bet.
type PlayerSurrendered struct {
	eventTime
	HandIndex int
}

func (e PlayerSurrendered) Type() EventType { return EventTypePlayerSurrendered }

// DealerTurnStarted is published when all player hands are finished.
type DealerTurnStarted struct {
	eventTime
}

func (e DealerTurnStarted) Type() EventType { return EventTypeDealerTurnStarted }

// DealerHoleCardRevealed is published when the hole card is flipped.
// It is emitted even when every player hand busted, for stats
// transparency.
type DealerHoleCardRevealed struct {
	eventTime
	Card DealtCard
}

func (e DealerHoleCardRevealed) Type() EventType { return EventTypeDealerHoleCardRevealed }

// DealerHit is published for each card the dealer draws.
type DealerHit struct {
	eventTime
	Card DealtCard
}

func (e DealerHit) Type() EventType { return EventTypeDealerHit }

// DealerStood is published when the dealer's policy stands.
type DealerStood struct {
	eventTime
	Value int
}

func (e DealerStood) Type() EventType { return EventTypeDealerStood }

// DealerBusted is published when the dealer goes over 21.
type DealerBusted struct {
	eventTime
	Value int
}

func (e DealerBusted) Type() EventType { return EventTypeDealerBusted }

// HandResolved is published once per player hand during resolution.
type HandResolved struct {
	eventTime
	HandIndex int
	Outcome   Outcome
	Bet       int
	Payout    decimal.Decimal
}

func (e HandResolved) Type() EventType { return EventTypeHandResolved }

// RoundComplete is the terminal event; Net is the sum of all payouts
// including insurance.
type RoundComplete struct {
	eventTime
	Net decimal.Decimal
}

func (e RoundComplete) Type() EventType { return EventTypeRoundComplete }

// Queue buffers events in emission order so frame-based consumers
// (animation, stats flush) can drain them later without threading
// concerns; the engine is single-threaded.
type Queue struct {
	events []Event
}

// Append adds an event to the back of the queue.
func (q *Queue) Append(e Event) {
	q.events = append(q.events, e)
}

// Len returns the number of queued events.
func (q *Queue) Len() int {
	return len(q.events)
}

// Flush returns all queued events in order and clears the queue.
func (q *Queue) Flush() []Event {
	out := q.events
	q.events = nil
	return out
}

// Subscriber can subscribe to round events
type Subscriber interface {
	OnEvent(event Event)
}

// Bus fans events out to subscribers. It is owned by the composition
// root; the round engine itself only ever holds a sink function.
type Bus struct {
	subscribers []Subscriber
}

// NewBus creates a new event bus
func NewBus() *Bus {
	return &Bus{subscribers: make([]Subscriber, 0)}
}

// Subscribe adds a subscriber to receive events
func (b *Bus) Subscribe(subscriber Subscriber) {
	b.subscribers = append(b.subscribers, subscriber)
}

// Unsubscribe removes a subscriber from receiving events
func (b *Bus) Unsubscribe(subscriber Subscriber) {
	for i, sub := range b.subscribers {
		if sub == subscriber {
			b.subscribers = append(b.subscribers[:i], b.subscribers[i+1:]...)
			break
		}
	}
}

// Publish sends an event to all subscribers in subscription order.
func (b *Bus) Publish(event Event) {
	for _, subscriber := range b.subscribers {
		subscriber.OnEvent(event)
	}
}
