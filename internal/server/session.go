package server

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/shopspring/decimal"

	"github.com/lox/blackjack/internal/game"
	"github.com/lox/blackjack/internal/randutil"
	"github.com/lox/blackjack/internal/shoe"
)

// Session drives one player's table: a shoe that persists across
// rounds, a bankroll, and the currently live round. All entry points
// are safe for concurrent use; the engine itself stays
// single-threaded behind the session mutex.
type Session struct {
	mu sync.Mutex

	rules    game.Rules
	shoe     *shoe.Shoe
	round    *game.Round
	bankroll decimal.Decimal
	minBet   int

	logger  *log.Logger
	clock   quartz.Clock
	timeout time.Duration
	timer   *quartz.Timer
	send    func(*Message)

	holeRevealed bool
	roundsPlayed int
}

// SessionOption configures a Session at construction time.
type SessionOption func(*Session)

// WithSessionSeed makes the shoe deterministic; without it the shoe
// shuffles from the system entropy source.
func WithSessionSeed(seed int64) SessionOption {
	return func(s *Session) {
		s.shoe = nil
		sh, err := shoe.New(s.rules.NumberOfDecks, s.rules.PenetrationPercent,
			shoe.WithRand(randutil.New(seed)))
		if err == nil {
			s.shoe = sh
		}
	}
}

// WithSessionShoe substitutes a prepared shoe, used by tests to force
// known deals.
func WithSessionShoe(sh *shoe.Shoe) SessionOption {
	return func(s *Session) {
		s.shoe = sh
	}
}

// WithBankroll sets the starting bankroll. Defaults to 1000 units.
func WithBankroll(units int) SessionOption {
	return func(s *Session) {
		s.bankroll = decimal.NewFromInt(int64(units))
	}
}

// WithSessionMinimumBet sets the table minimum. Defaults to 1 unit.
func WithSessionMinimumBet(minBet int) SessionOption {
	return func(s *Session) {
		s.minBet = minBet
	}
}

// WithClock substitutes the decision-timeout clock, mocked in tests.
func WithClock(clock quartz.Clock) SessionOption {
	return func(s *Session) {
		s.clock = clock
	}
}

// WithDecisionTimeout sets how long the player may sit on a decision
// before the session acts for them. Zero disables the timeout.
func WithDecisionTimeout(d time.Duration) SessionOption {
	return func(s *Session) {
		s.timeout = d
	}
}

// WithSessionLogger attaches a logger.
func WithSessionLogger(logger *log.Logger) SessionOption {
	return func(s *Session) {
		s.logger = logger
	}
}

// WithSend attaches the outbound message callback. Round events and
// timeout notices flow through it.
func WithSend(send func(*Message)) SessionOption {
	return func(s *Session) {
		s.send = send
	}
}

// NewSession creates a session for the given rules.
func NewSession(rules game.Rules, opts ...SessionOption) (*Session, error) {
	if err := rules.Validate(); err != nil {
		return nil, err
	}

	s := &Session{
		rules:    rules,
		bankroll: decimal.NewFromInt(1000),
		minBet:   1,
		clock:    quartz.NewReal(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = log.New(io.Discard)
	}
	if s.shoe == nil {
		sh, err := shoe.New(rules.NumberOfDecks, rules.PenetrationPercent,
			shoe.WithRand(randutil.NewCrypto()))
		if err != nil {
			return nil, err
		}
		s.shoe = sh
	}
	return s, nil
}

// Bankroll returns the player's current bankroll.
func (s *Session) Bankroll() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bankroll
}

// StartRound begins a new round with the given bet. The shoe
// reshuffles first if the cut card was reached last round.
func (s *Session) StartRound(bet int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.round != nil && s.round.Phase() != game.PhaseComplete {
		return fmt.Errorf("round in progress (phase %s)", s.round.Phase())
	}
	if s.bankroll.LessThan(decimal.NewFromInt(int64(s.minBet))) {
		return fmt.Errorf("bankroll %s cannot cover the %d minimum", s.bankroll, s.minBet)
	}

	s.shoe.ReshuffleIfCutCardReached()
	s.holeRevealed = false

	s.round = game.NewRound(s.rules, s.shoe,
		game.WithBank(int(s.bankroll.IntPart())),
		game.WithMinimumBet(s.minBet),
		game.WithSink(s.forward),
		game.WithLogger(s.logger),
	)

	if err := s.round.PlaceBet(bet); err != nil {
		return err
	}
	return s.round.Deal()
}

// Action applies a named player action to the live round.
func (s *Session) Action(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.round == nil {
		return fmt.Errorf("no round in progress")
	}

	switch name {
	case "hit":
		return s.round.PlayerHit()
	case "stand":
		return s.round.PlayerStand()
	case "double":
		return s.round.PlayerDoubleDown()
	case "split":
		return s.round.PlayerSplit()
	case "surrender":
		return s.round.PlayerSurrender()
	default:
		return fmt.Errorf("unknown action %q", name)
	}
}

// Insurance resolves the insurance offer. Accepting with a zero
// amount takes the full half-bet stake.
func (s *Session) Insurance(accept bool, amount int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.round == nil {
		return fmt.Errorf("no round in progress")
	}
	if !accept {
		return s.round.DeclineInsurance()
	}
	if amount <= 0 {
		amount = s.round.PlayerBet(0)
	}
	return s.round.AcceptInsurance(amount)
}

// State returns a snapshot for display.
func (s *Session) State() StateData {
	s.mu.Lock()
	defer s.mu.Unlock()

	state := StateData{
		Phase:          game.PhaseBetting.String(),
		Bankroll:       s.bankroll.String(),
		MinimumBet:     s.minBet,
		ActiveHand:     -1,
		CardsRemaining: s.shoe.Remaining(),
		RoundsPlayed:   s.roundsPlayed,
	}
	if s.round == nil {
		return state
	}

	r := s.round
	state.Phase = r.Phase().String()
	state.ActiveHand = r.ActiveHandIndex()
	state.CanDouble = r.CanDoubleDown()
	state.CanSplit = r.CanSplit()
	state.CanSurrender = r.CanSurrender()

	for i := 0; i < r.PlayerHandCount(); i++ {
		hand := r.PlayerHand(i)
		hs := HandState{
			Value:  hand.Value(),
			Soft:   hand.IsSoft(),
			Bet:    r.PlayerBet(i),
			Active: i == r.ActiveHandIndex(),
		}
		for _, c := range hand.Cards() {
			hs.Cards = append(hs.Cards, c.Code())
		}
		state.Hands = append(state.Hands, hs)
	}

	dealer := r.DealerHand()
	if dealer.Len() > 0 {
		cards := dealer.Cards()
		if s.holeRevealed || r.Phase() == game.PhaseComplete {
			for _, c := range cards {
				state.DealerCards = append(state.DealerCards, c.Code())
			}
			state.DealerValue = dealer.Value()
		} else {
			// Only the upcard leaves the server before the reveal. An
			// ace shows as 11, matching the table convention.
			up := cards[0]
			state.DealerCards = []string{up.Code()}
			state.DealerValue = up.PointValue()
			if up.IsAce() {
				state.DealerValue = 11
			}
			state.HoleCardHidden = dealer.Len() > 1
		}
	}

	return state
}

// forward relays one engine event to the client and maintains the
// decision timer and bankroll. Runs under the session mutex, inside
// the engine call that emitted the event.
func (s *Session) forward(e game.Event) {
	switch ev := e.(type) {
	case game.DealerHoleCardRevealed:
		s.holeRevealed = true
	case game.PlayerTurnStarted:
		s.armTimer("stand")
	case game.InsuranceOffered:
		s.armTimer("decline_insurance")
	case game.RoundComplete:
		s.stopTimer()
		s.bankroll = s.bankroll.Add(ev.Net)
		s.roundsPlayed++
	}

	s.publish(e)
}

// publish converts an event to a wire message. The face-down hole
// card is stripped so the client cannot peek.
func (s *Session) publish(e game.Event) {
	if s.send == nil {
		return
	}

	var payload interface{} = e
	if cd, ok := e.(game.CardDealt); ok && cd.FaceDown {
		payload = struct {
			Recipient game.Participant `json:"Recipient"`
			HandIndex int              `json:"HandIndex"`
			FaceDown  bool             `json:"FaceDown"`
		}{cd.Recipient, cd.HandIndex, cd.FaceDown}
	}

	msg, err := NewMessage(MessageType(e.Type()), payload)
	if err != nil {
		s.logger.Error("Failed to encode event", "type", e.Type(), "error", err)
		return
	}
	msg.Timestamp = e.Timestamp()
	s.send(msg)
}

// armTimer schedules the auto action for the pending decision.
func (s *Session) armTimer(autoAction string) {
	if s.timeout <= 0 {
		return
	}
	s.stopTimer()
	s.timer = s.clock.AfterFunc(s.timeout, func() {
		s.expire(autoAction)
	})
}

func (s *Session) stopTimer() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

// expire acts for a player who sat on a decision too long: insurance
// is declined and every open hand stands.
func (s *Session) expire(autoAction string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.round == nil || s.round.Phase() == game.PhaseComplete {
		return
	}

	s.logger.Info("Decision timeout", "autoAction", autoAction)
	if s.send != nil {
		if msg, err := NewMessage(MessageTypePlayerTimeout, PlayerTimeoutData{AutoAction: autoAction}); err == nil {
			s.send(msg)
		}
	}

	if s.round.Phase() == game.PhaseInsuranceOffered {
		if err := s.round.DeclineInsurance(); err != nil {
			s.logger.Error("Auto-decline failed", "error", err)
			return
		}
	}
	for s.round.Phase() == game.PhasePlayerTurn {
		if err := s.round.PlayerStand(); err != nil {
			s.logger.Error("Auto-stand failed", "error", err)
			return
		}
	}
}
