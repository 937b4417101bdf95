package store

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/blackjack/internal/deck"
	"github.com/lox/blackjack/internal/game"
	"github.com/lox/blackjack/internal/randutil"
	"github.com/lox/blackjack/internal/shoe"
)

func playForcedRound(t *testing.T, rec *Recorder, forced string, bet int) {
	t.Helper()
	sh, err := shoe.New(6, 75, shoe.WithRand(randutil.New(3)))
	require.NoError(t, err)
	cards, err := deck.ParseCards(forced)
	require.NoError(t, err)
	for _, c := range cards {
		sh.EnqueueForcedDraw(c)
	}

	r := game.NewRound(game.DefaultRules(), sh, game.WithSink(rec.OnEvent))
	require.NoError(t, r.PlaceBet(bet))
	require.NoError(t, r.Deal())
	if r.Phase() == game.PhasePlayerTurn {
		require.NoError(t, r.PlayerStand())
	}
	require.Equal(t, game.PhaseComplete, r.Phase())
}

func TestRecorderPersistsCompletedRounds(t *testing.T) {
	db := newTestDB(t)
	session := &Session{Decks: 6, Penetration: 75, Rules: "{}"}
	require.NoError(t, db.SaveSession(session))

	rec := NewRecorder(db, session.ID, nil)

	// Player 7,5 stands; dealer 16 draws to 20 and wins.
	playForcedRound(t, rec, "7hTh5d6c4s", 10)
	// Player blackjack pays 3:2.
	playForcedRound(t, rec, "As5hKd9c", 10)

	assert.Equal(t, 2, rec.Saved())

	rounds, err := db.GetRounds(session.ID, 10, 0)
	require.NoError(t, err)
	require.Len(t, rounds, 2)

	assert.Equal(t, 1, rounds[0].Seq)
	assert.Equal(t, 10, rounds[0].Bet)
	assert.Equal(t, 1, rounds[0].Hands)
	assert.Equal(t, `["lose"]`, rounds[0].Outcomes)
	assert.True(t, rounds[0].Net.Equal(decimal.NewFromInt(-10)), "net %s", rounds[0].Net)

	assert.Equal(t, `["blackjack"]`, rounds[1].Outcomes)
	assert.True(t, rounds[1].Net.Equal(decimal.RequireFromString("15")), "net %s", rounds[1].Net)
}

func TestRecorderSurvivesWriteFailure(t *testing.T) {
	db := newTestDB(t)
	rec := NewRecorder(db, "no-such-session", nil)

	// No session row exists; the write may fail but the recorder keeps
	// counting and the round is unaffected.
	playForcedRound(t, rec, "7hTh5d6c4s", 10)
	assert.Equal(t, 1, rec.Saved())
}
