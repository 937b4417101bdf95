package main

import (
	"fmt"

	"github.com/muesli/termenv"
	"github.com/shopspring/decimal"

	"github.com/lox/blackjack/internal/store"
)

// StatsCmd prints stored session results
type StatsCmd struct {
	DB      string `kong:"default='blackjack.db',help='SQLite database to read'"`
	Session string `kong:"arg,optional,help='Session ID (omit to list recent sessions)'"`
	Limit   int    `kong:"default='20',help='How many sessions or rounds to show'"`
}

func (c *StatsCmd) Run() error {
	db, err := store.NewSQLiteDB(c.DB)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := db.Migrate(); err != nil {
		return err
	}

	if c.Session == "" {
		return c.listSessions(db)
	}
	return c.showSession(db)
}

func (c *StatsCmd) listSessions(db *store.SQLiteDB) error {
	sessions, err := db.ListSessions(c.Limit)
	if err != nil {
		return err
	}
	if len(sessions) == 0 {
		fmt.Println("No sessions recorded yet.")
		return nil
	}

	fmt.Printf("%-36s  %-20s  %-19s  %8s  %12s\n", "ID", "LABEL", "CREATED", "ROUNDS", "NET")
	for _, session := range sessions {
		summary, err := db.SessionSummary(session.ID)
		if err != nil {
			return err
		}
		fmt.Printf("%-36s  %-20s  %-19s  %8d  %12s\n",
			session.ID, session.Label,
			session.CreatedAt.Format("2006-01-02 15:04:05"),
			summary.Rounds, colourNet(summary.Net),
		)
	}
	return nil
}

func (c *StatsCmd) showSession(db *store.SQLiteDB) error {
	session, err := db.GetSession(c.Session)
	if err != nil {
		return fmt.Errorf("session %q: %w", c.Session, err)
	}
	summary, err := db.SessionSummary(session.ID)
	if err != nil {
		return err
	}

	fmt.Printf("Session:  %s\n", session.ID)
	fmt.Printf("Label:    %s\n", session.Label)
	fmt.Printf("Created:  %s\n", session.CreatedAt.Format("2006-01-02 15:04:05"))
	fmt.Printf("Shoe:     %d decks, %d%% penetration\n", session.Decks, session.Penetration)
	if session.Seed != 0 {
		fmt.Printf("Seed:     %d\n", session.Seed)
	}
	fmt.Printf("Rounds:   %d\n", summary.Rounds)
	fmt.Printf("Net:      %s\n", colourNet(summary.Net))

	rounds, err := db.GetRounds(session.ID, c.Limit, 0)
	if err != nil {
		return err
	}
	if len(rounds) == 0 {
		return nil
	}

	fmt.Printf("\n%6s  %6s  %6s  %12s  %s\n", "SEQ", "BET", "HANDS", "NET", "OUTCOMES")
	for _, round := range rounds {
		fmt.Printf("%6d  %6d  %6d  %12s  %s\n",
			round.Seq, round.Bet, round.Hands, colourNet(round.Net), round.Outcomes)
	}
	return nil
}

// colourNet renders a net amount green for profit, red for loss.
func colourNet(net decimal.Decimal) string {
	p := termenv.ColorProfile()
	s := termenv.String("$" + net.String())
	switch net.Sign() {
	case 1:
		s = s.Foreground(p.Color("#96CEB4"))
	case -1:
		s = s.Foreground(p.Color("#FF6B6B"))
	}
	return s.String()
}
