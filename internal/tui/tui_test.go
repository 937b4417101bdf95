package tui

import (
	"io"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/blackjack/internal/deck"
	"github.com/lox/blackjack/internal/game"
	"github.com/lox/blackjack/internal/randutil"
	"github.com/lox/blackjack/internal/shoe"
	"github.com/lox/blackjack/internal/statistics"
)

func quietLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{Level: log.ErrorLevel})
}

func forcedShoe(t *testing.T, forced string) *shoe.Shoe {
	t.Helper()
	s, err := shoe.New(6, 75, shoe.WithRand(randutil.New(7)))
	require.NoError(t, err)
	cards, err := deck.ParseCards(forced)
	require.NoError(t, err)
	for _, c := range cards {
		s.EnqueueForcedDraw(c)
	}
	return s
}

func newTestModel(t *testing.T, forced string) *Model {
	t.Helper()
	m, err := NewModel(game.DefaultRules(), quietLogger(),
		WithShoe(forcedShoe(t, forced)),
		WithTestMode(),
	)
	require.NoError(t, err)
	return m
}

func capturedText(m *Model) string {
	return strings.Join(m.GetCapturedLog(), "\n")
}

func TestModelTestMode(t *testing.T) {
	t.Run("test mode captures log entries", func(t *testing.T) {
		m := newTestModel(t, "7hTh5d6c4s")

		assert.True(t, m.IsTestMode())
		assert.Empty(t, m.GetCapturedLog())

		m.AddLogEntry("Welcome to the table")

		captured := m.GetCapturedLog()
		require.Len(t, captured, 1)
		assert.Equal(t, "Welcome to the table", captured[0])
	})

	t.Run("production mode does not capture logs", func(t *testing.T) {
		m, err := NewModel(game.DefaultRules(), quietLogger())
		require.NoError(t, err)

		assert.False(t, m.IsTestMode())

		m.AddLogEntry("Some log entry")

		// Should return nil in production mode
		assert.Nil(t, m.GetCapturedLog())
	})
}

func TestModelPlaysRound(t *testing.T) {
	// Player 7,5 stands; dealer 16 draws to 20 and wins.
	m := newTestModel(t, "7hTh5d6c4s")

	m.HandleCommand("10")
	require.Equal(t, game.PhasePlayerTurn, m.Phase())

	m.HandleCommand("stand")
	require.Equal(t, game.PhaseComplete, m.Phase())

	assert.Equal(t, 1, m.RoundsPlayed())
	assert.True(t, m.Bankroll().Equal(decimal.NewFromInt(990)), "bankroll %s", m.Bankroll())

	text := capturedText(m)
	assert.Contains(t, text, "Bet placed")
	assert.Contains(t, text, "You are dealt")
	assert.Contains(t, text, "Dealer takes the hole card")
	assert.Contains(t, text, "You stand on 12")
	assert.Contains(t, text, "Dealer stands on 20")
	assert.Contains(t, text, "Lose")
}

func TestModelBlackjackPaysThreeToTwo(t *testing.T) {
	m := newTestModel(t, "As5hKd9c")

	m.HandleCommand("10")
	require.Equal(t, game.PhaseComplete, m.Phase())

	assert.True(t, m.Bankroll().Equal(decimal.NewFromInt(1015)), "bankroll %s", m.Bankroll())
	assert.Contains(t, capturedText(m), "Blackjack")
}

func TestModelInsurancePrompt(t *testing.T) {
	m := newTestModel(t, "7hAh5d7c4s")

	m.HandleCommand("10")
	require.Equal(t, game.PhaseInsuranceOffered, m.Phase())
	assert.Contains(t, capturedText(m), "Insurance?")

	m.HandleCommand("no")
	require.Equal(t, game.PhasePlayerTurn, m.Phase())
	assert.Contains(t, capturedText(m), "Insurance declined")

	// The sidebar shows the hidden-ace upcard as 11, not 1.
	assert.Contains(t, m.renderDealerCards(), "11")
}

func TestModelRebetOnEnter(t *testing.T) {
	m := newTestModel(t, "7hTh5d6c4s7hTh5d6c4s")

	m.HandleCommand("10")
	m.HandleCommand("stand")
	require.Equal(t, game.PhaseComplete, m.Phase())

	// Bare enter repeats the previous bet.
	m.HandleCommand("")
	require.Equal(t, game.PhasePlayerTurn, m.Phase())

	m.HandleCommand("s")
	assert.Equal(t, 2, m.RoundsPlayed())
	assert.True(t, m.Bankroll().Equal(decimal.NewFromInt(980)), "bankroll %s", m.Bankroll())
}

func TestModelRejectsUnknownCommands(t *testing.T) {
	m := newTestModel(t, "7hTh5d6c4s")

	m.HandleCommand("moonwalk")
	assert.Contains(t, capturedText(m), "Unknown command")
	require.Equal(t, 0, m.RoundsPlayed())

	m.HandleCommand("10")
	m.HandleCommand("moonwalk")
	assert.Contains(t, capturedText(m), "Unknown action")
	require.Equal(t, game.PhasePlayerTurn, m.Phase())
}

func TestModelForwardsEventsToSink(t *testing.T) {
	var seen []game.EventType
	m, err := NewModel(game.DefaultRules(), quietLogger(),
		WithShoe(forcedShoe(t, "7hTh5d6c4s")),
		WithTestMode(),
		WithEventSink(func(e game.Event) { seen = append(seen, e.Type()) }),
	)
	require.NoError(t, err)

	m.HandleCommand("10")
	m.HandleCommand("stand")

	assert.Equal(t, game.EventTypeBetPlaced, seen[0])
	assert.Equal(t, game.EventTypeRoundComplete, seen[len(seen)-1])
}

func TestModelEventSinkFansOutOverBus(t *testing.T) {
	// Mirrors the play command wiring: the sink is a bus Publish, with
	// subscribers attached by the composition root.
	bus := game.NewBus()
	stats := &statistics.Statistics{}
	bus.Subscribe(statistics.NewRecorder(stats))
	var seen []game.EventType
	bus.Subscribe(eventTypeCollector{&seen})

	m, err := NewModel(game.DefaultRules(), quietLogger(),
		WithShoe(forcedShoe(t, "7hTh5d6c4s")),
		WithTestMode(),
		WithEventSink(bus.Publish),
	)
	require.NoError(t, err)

	m.HandleCommand("10")
	m.HandleCommand("stand")

	assert.Equal(t, 1, stats.Rounds)
	assert.Equal(t, float64(-10), stats.SumNet)
	require.NotEmpty(t, seen)
	assert.Equal(t, game.EventTypeBetPlaced, seen[0])
	assert.Equal(t, game.EventTypeRoundComplete, seen[len(seen)-1])
}

type eventTypeCollector struct {
	seen *[]game.EventType
}

func (c eventTypeCollector) OnEvent(e game.Event) {
	*c.seen = append(*c.seen, e.Type())
}

func TestModelIllegalActionIsLogged(t *testing.T) {
	// 7,5 is not a pair; split is rejected without advancing the round.
	m := newTestModel(t, "7hTh5d6c4s")

	m.HandleCommand("10")
	before := m.Phase()

	m.HandleCommand("split")
	assert.Equal(t, before, m.Phase())
	assert.Contains(t, capturedText(m), "action not available")
}
