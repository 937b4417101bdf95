package store

import (
	"encoding/json"
	"io"

	"github.com/charmbracelet/log"

	"github.com/lox/blackjack/internal/game"
)

// Recorder converts the engine's event stream into RoundRecords and
// persists them as each round completes. It implements
// game.Subscriber. Write failures are logged and never interrupt
// gameplay.
type Recorder struct {
	db        DB
	sessionID string
	logger    *log.Logger

	seq      int
	current  RoundRecord
	outcomes []game.Outcome
}

// NewRecorder creates a recorder writing rounds under the given
// session.
func NewRecorder(db DB, sessionID string, logger *log.Logger) *Recorder {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Recorder{
		db:        db,
		sessionID: sessionID,
		logger:    logger.WithPrefix("store"),
	}
}

// Saved returns how many rounds have been written.
func (r *Recorder) Saved() int {
	return r.seq
}

// OnEvent consumes one round event. Per-round state accumulates until
// RoundComplete, which writes the record and resets for the next
// round.
func (r *Recorder) OnEvent(e game.Event) {
	switch ev := e.(type) {
	case game.BetPlaced:
		r.current.Bet = ev.Amount
	case game.InsuranceResult:
		r.current.InsuranceNet = ev.Payout
	case game.HandResolved:
		r.current.Hands++
		r.outcomes = append(r.outcomes, ev.Outcome)
	case game.RoundComplete:
		r.current.Net = ev.Net
		r.commit()
	}
}

func (r *Recorder) commit() {
	r.seq++
	r.current.SessionID = r.sessionID
	r.current.Seq = r.seq

	if encoded, err := json.Marshal(r.outcomes); err == nil {
		r.current.Outcomes = string(encoded)
	}

	if err := r.db.SaveRounds(r.sessionID, []RoundRecord{r.current}); err != nil {
		r.logger.Error("Failed to save round", "seq", r.seq, "error", err)
	}

	r.current = RoundRecord{}
	r.outcomes = nil
}
