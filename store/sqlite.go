package store

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"stockfolio"
)

// SQLiteStore keeps every user's ledger in a single SQLite database file.
// The seq column records arrival order within a user's ledger; loading
// replays rows ordered by it.
type SQLiteStore struct {
	db *sql.DB
}

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS transactions (
	user_id  TEXT    NOT NULL,
	seq      INTEGER NOT NULL,
	id       TEXT    NOT NULL,
	date     TEXT    NOT NULL,
	type     TEXT    NOT NULL,
	symbol   TEXT    NOT NULL,
	name     TEXT    NOT NULL DEFAULT '',
	shares   REAL    NOT NULL,
	price    REAL    NOT NULL,
	account  TEXT    NOT NULL DEFAULT '',
	exchange TEXT    NOT NULL DEFAULT '',
	currency TEXT    NOT NULL,
	PRIMARY KEY (user_id, seq)
);
CREATE INDEX IF NOT EXISTS transactions_by_user ON transactions(user_id);
`

// NewSQLiteStore opens (and initializes if needed) a SQLite store at path.
// Use ":memory:" for an ephemeral store.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("cannot open database %q: %w", path, err)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("cannot initialize database schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Load(userID string) (*stockfolio.Ledger, error) {
	rows, err := s.db.Query(`
		SELECT id, date, type, symbol, name, shares, price, account, exchange, currency
		FROM transactions WHERE user_id = ? ORDER BY seq`, userID)
	if err != nil {
		return nil, fmt.Errorf("cannot query ledger for %q: %w", userID, err)
	}
	defer rows.Close()

	ledger := stockfolio.NewLedger()
	for rows.Next() {
		var tx stockfolio.Transaction
		var date string
		if err := rows.Scan(&tx.ID, &date, &tx.Type, &tx.Symbol, &tx.Name,
			&tx.Shares, &tx.Price, &tx.Account, &tx.Exchange, &tx.Currency); err != nil {
			return nil, fmt.Errorf("cannot scan transaction row: %w", err)
		}
		tx.Date, err = stockfolio.ParseDate(date)
		if err != nil {
			return nil, fmt.Errorf("bad date in stored transaction %q: %w", tx.ID, err)
		}
		ledger.Append(tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("cannot read ledger for %q: %w", userID, err)
	}
	return ledger, nil
}

func (s *SQLiteStore) Save(userID string, ledger *stockfolio.Ledger) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("cannot begin save for %q: %w", userID, err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM transactions WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("cannot clear ledger for %q: %w", userID, err)
	}
	stmt, err := tx.Prepare(`
		INSERT INTO transactions
			(user_id, seq, id, date, type, symbol, name, shares, price, account, exchange, currency)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("cannot prepare insert: %w", err)
	}
	defer stmt.Close()

	for seq, t := range ledger.Slice() {
		_, err := stmt.Exec(userID, seq, t.ID, t.Date.String(), string(t.Type),
			t.Symbol, t.Name, t.Shares, t.Price, t.Account, t.Exchange, t.Currency)
		if err != nil {
			return fmt.Errorf("cannot insert transaction %q: %w", t.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("cannot commit ledger for %q: %w", userID, err)
	}
	return nil
}

func (s *SQLiteStore) Delete(userID string) error {
	if _, err := s.db.Exec(`DELETE FROM transactions WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("cannot delete ledger for %q: %w", userID, err)
	}
	return nil
}

func (s *SQLiteStore) Users() ([]string, error) {
	rows, err := s.db.Query(`SELECT DISTINCT user_id FROM transactions ORDER BY user_id`)
	if err != nil {
		return nil, fmt.Errorf("cannot list users: %w", err)
	}
	defer rows.Close()

	var users []string
	for rows.Next() {
		var u string
		if err := rows.Scan(&u); err != nil {
			return nil, fmt.Errorf("cannot scan user id: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (s *SQLiteStore) Close() error { return s.db.Close() }

var _ Store = (*SQLiteStore)(nil)
