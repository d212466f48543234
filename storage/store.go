package storage

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Store persists the small client-side state that survives restarts: the
// session token (encrypted at rest) and the last monthly goal the user saw,
// kept as a fallback for when the backend cannot be reached.
type Store struct {
	db     *sql.DB
	crypto *cryptor
}

// Open opens (or creates) the local store at path. Use ":memory:" in tests.
func Open(path, encryptionKey string) (*Store, error) {
	crypto, err := newCryptor(encryptionKey)
	if err != nil {
		return nil, err
	}

	dsn := path + "?_journal=WAL&_busy_timeout=5000"
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(5 * time.Minute)

	if _, err := db.Exec("PRAGMA busy_timeout=5000;"); err != nil {
		db.Close()
		return nil, err
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}

	schema := `
	CREATE TABLE IF NOT EXISTS session (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		token TEXT NOT NULL,
		updated_at DATETIME NOT NULL
	);
	CREATE TABLE IF NOT EXISTS goal_fallback (
		month TEXT PRIMARY KEY,
		price INTEGER NOT NULL,
		updated_at DATETIME NOT NULL
	);
	`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("error creating local store schema: %w", err)
	}

	return &Store{db: db, crypto: crypto}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// SetToken stores the session token, encrypted.
func (s *Store) SetToken(token string) error {
	encrypted, err := s.crypto.encrypt(token)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(`
		INSERT INTO session (id, token, updated_at) VALUES (1, ?, ?)
		ON CONFLICT(id) DO UPDATE SET token = excluded.token, updated_at = excluded.updated_at
	`, encrypted, time.Now())
	return err
}

// Token returns the stored session token. The second return value is false
// when no readable token is present, which also covers a token written with
// a different encryption key.
func (s *Store) Token() (string, bool) {
	var encrypted string
	err := s.db.QueryRow("SELECT token FROM session WHERE id = 1").Scan(&encrypted)
	if err != nil {
		return "", false
	}
	token, err := s.crypto.decrypt(encrypted)
	if err != nil {
		return "", false
	}
	return token, true
}

// ClearToken drops the stored session token.
func (s *Store) ClearToken() error {
	_, err := s.db.Exec("DELETE FROM session WHERE id = 1")
	return err
}

// RememberGoal records the monthly goal price last confirmed by the backend.
func (s *Store) RememberGoal(month string, price int64) error {
	_, err := s.db.Exec(`
		INSERT INTO goal_fallback (month, price, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(month) DO UPDATE SET price = excluded.price, updated_at = excluded.updated_at
	`, month, price, time.Now())
	return err
}

// RememberedGoal returns the locally remembered goal price for the month.
func (s *Store) RememberedGoal(month string) (int64, bool) {
	var price int64
	err := s.db.QueryRow("SELECT price FROM goal_fallback WHERE month = ?", month).Scan(&price)
	if err != nil {
		return 0, false
	}
	return price, true
}
