package store

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"
)

// SQLiteDB implements the DB interface using SQLite
type SQLiteDB struct {
	db *sql.DB
}

// NewSQLiteDB creates a new SQLite database connection
func NewSQLiteDB(path string) (*SQLiteDB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	return &SQLiteDB{db: db}, nil
}

// Close closes the database connection
func (s *SQLiteDB) Close() error {
	return s.db.Close()
}

// Migrate runs database migrations
func (s *SQLiteDB) Migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			label TEXT NOT NULL DEFAULT '',
			decks INTEGER NOT NULL,
			penetration INTEGER NOT NULL,
			rules TEXT NOT NULL,
			seed INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS rounds (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id TEXT NOT NULL,
			seq INTEGER NOT NULL,
			bet INTEGER NOT NULL,
			hands INTEGER NOT NULL,
			outcomes TEXT,
			net TEXT NOT NULL,
			insurance_net TEXT NOT NULL DEFAULT '0',
			FOREIGN KEY (session_id) REFERENCES sessions(id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_rounds_session_id ON rounds(session_id)`,
		`CREATE INDEX IF NOT EXISTS idx_rounds_seq ON rounds(session_id, seq)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}

	return nil
}

// SaveSession saves a session to the database
func (s *SQLiteDB) SaveSession(session *Session) error {
	if session.ID == "" {
		session.ID = uuid.New().String()
	}

	query := `INSERT INTO sessions (
		id, label, decks, penetration, rules, seed
	) VALUES (?, ?, ?, ?, ?, ?)`

	_, err := s.db.Exec(query,
		session.ID, session.Label, session.Decks,
		session.Penetration, session.Rules, session.Seed,
	)

	return err
}

// SaveRounds saves multiple round records to the database
func (s *SQLiteDB) SaveRounds(sessionID string, rounds []RoundRecord) error {
	if len(rounds) == 0 {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`INSERT INTO rounds (
		session_id, seq, bet, hands, outcomes, net, insurance_net
	) VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, round := range rounds {
		_, err := stmt.Exec(
			sessionID, round.Seq, round.Bet, round.Hands,
			round.Outcomes, round.Net.String(), round.InsuranceNet.String(),
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// GetSession retrieves a session by ID
func (s *SQLiteDB) GetSession(id string) (*Session, error) {
	query := `SELECT id, label, decks, penetration, rules, seed, created_at
		FROM sessions WHERE id = ?`

	var session Session
	err := s.db.QueryRow(query, id).Scan(
		&session.ID, &session.Label, &session.Decks,
		&session.Penetration, &session.Rules, &session.Seed,
		&session.CreatedAt,
	)

	if err != nil {
		return nil, err
	}

	return &session, nil
}

// ListSessions retrieves the most recent sessions, newest first.
func (s *SQLiteDB) ListSessions(limit int) ([]*Session, error) {
	query := `SELECT id, label, decks, penetration, rules, seed, created_at
		FROM sessions ORDER BY created_at DESC, id LIMIT ?`

	rows, err := s.db.Query(query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []*Session
	for rows.Next() {
		var session Session
		err := rows.Scan(
			&session.ID, &session.Label, &session.Decks,
			&session.Penetration, &session.Rules, &session.Seed,
			&session.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, &session)
	}

	return sessions, rows.Err()
}

// GetRounds retrieves rounds for a session with pagination
func (s *SQLiteDB) GetRounds(sessionID string, limit, offset int) ([]RoundRecord, error) {
	query := `SELECT id, session_id, seq, bet, hands, outcomes, net, insurance_net
		FROM rounds WHERE session_id = ?
		ORDER BY seq LIMIT ? OFFSET ?`

	rows, err := s.db.Query(query, sessionID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rounds []RoundRecord
	for rows.Next() {
		var round RoundRecord
		var outcomes sql.NullString
		var net, insuranceNet string

		err := rows.Scan(
			&round.ID, &round.SessionID, &round.Seq, &round.Bet,
			&round.Hands, &outcomes, &net, &insuranceNet,
		)
		if err != nil {
			return nil, err
		}

		if outcomes.Valid {
			round.Outcomes = outcomes.String
		}
		if round.Net, err = decimal.NewFromString(net); err != nil {
			return nil, fmt.Errorf("round %d: bad net %q: %w", round.ID, net, err)
		}
		if round.InsuranceNet, err = decimal.NewFromString(insuranceNet); err != nil {
			return nil, fmt.Errorf("round %d: bad insurance net %q: %w", round.ID, insuranceNet, err)
		}

		rounds = append(rounds, round)
	}

	return rounds, rows.Err()
}

// SessionSummary aggregates a session's rounds. The net is summed in
// decimal to keep fractional payouts exact.
func (s *SQLiteDB) SessionSummary(sessionID string) (*Summary, error) {
	rows, err := s.db.Query(`SELECT net FROM rounds WHERE session_id = ?`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	summary := &Summary{SessionID: sessionID, Net: decimal.Zero}
	for rows.Next() {
		var net string
		if err := rows.Scan(&net); err != nil {
			return nil, err
		}
		d, err := decimal.NewFromString(net)
		if err != nil {
			return nil, fmt.Errorf("bad net %q: %w", net, err)
		}
		summary.Rounds++
		summary.Net = summary.Net.Add(d)
	}

	return summary, rows.Err()
}
