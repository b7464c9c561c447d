// Package store persists japa state as JSON records in a SQLite key-value table.
package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/theirongolddev/japa/internal/model"

	_ "modernc.org/sqlite" // register sqlite driver
)

// Store is a SQLite-backed gateway for the profile, history and active session.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens or creates the database at the given path.
func Open(dbPath string) (*Store, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating data dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=synchronous(normal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening db: %w", err)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &Store{db: db, now: time.Now}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Load reads all three records. A missing or undecodable record falls back
// to its default (a fresh guest profile, empty history, no session) so a
// corrupt value never blocks startup. Only database errors are returned.
func (s *Store) Load() (model.State, error) {
	st := model.State{Profile: model.NewProfile(s.now())}

	raw, err := s.getAll()
	if err != nil {
		return st, err
	}

	if data, ok := raw[KeyProfile]; ok {
		var p model.Profile
		if err := json.Unmarshal(data, &p); err != nil {
			log.Printf("[store] discarding unreadable %s: %v", KeyProfile, err)
		} else {
			st.Profile = p
		}
	}
	if data, ok := raw[KeyHistory]; ok {
		var h []model.DailyStats
		if err := json.Unmarshal(data, &h); err != nil {
			log.Printf("[store] discarding unreadable %s: %v", KeyHistory, err)
		} else {
			st.History = h
		}
	}
	if data, ok := raw[KeySession]; ok {
		var sess model.Session
		if err := json.Unmarshal(data, &sess); err != nil {
			log.Printf("[store] discarding unreadable %s: %v", KeySession, err)
		} else {
			st.Session = &sess
		}
	}

	return st, nil
}

func (s *Store) getAll() (map[string][]byte, error) {
	rows, err := s.db.Query("SELECT key, value FROM kv WHERE key IN (?, ?, ?)", KeyProfile, KeyHistory, KeySession)
	if err != nil {
		return nil, fmt.Errorf("querying kv: %w", err)
	}
	defer func() { _ = rows.Close() }()

	result := make(map[string][]byte)
	for rows.Next() {
		var key string
		var value []byte
		if err := rows.Scan(&key, &value); err != nil {
			return nil, err
		}
		result[key] = value
	}
	return result, rows.Err()
}

// Save writes all three records in one transaction. A nil session removes
// the stored one.
func (s *Store) Save(st model.State) error {
	profile, err := json.Marshal(st.Profile)
	if err != nil {
		return fmt.Errorf("encoding profile: %w", err)
	}
	history := st.History
	if history == nil {
		history = []model.DailyStats{}
	}
	stats, err := json.Marshal(history)
	if err != nil {
		return fmt.Errorf("encoding history: %w", err)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	now := s.now().UTC().Format(time.RFC3339)
	put := func(key string, value []byte) error {
		_, err := tx.Exec(`INSERT OR REPLACE INTO kv (key, value, updated_at) VALUES (?, ?, ?)`, key, value, now)
		return err
	}

	if err := put(KeyProfile, profile); err != nil {
		return err
	}
	if err := put(KeyHistory, stats); err != nil {
		return err
	}

	if st.Session == nil {
		if _, err := tx.Exec("DELETE FROM kv WHERE key = ?", KeySession); err != nil {
			return err
		}
	} else {
		sess, err := json.Marshal(st.Session)
		if err != nil {
			return fmt.Errorf("encoding session: %w", err)
		}
		if err := put(KeySession, sess); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// raw returns the stored bytes for key, or ErrNotFound.
func (s *Store) raw(key string) ([]byte, error) {
	var value []byte
	err := s.db.QueryRow("SELECT value FROM kv WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return value, err
}

// putRaw overwrites key with value without encoding it.
func (s *Store) putRaw(key string, value []byte) error {
	_, err := s.db.Exec(`INSERT OR REPLACE INTO kv (key, value, updated_at) VALUES (?, ?, ?)`,
		key, value, s.now().UTC().Format(time.RFC3339))
	return err
}

// UpdatedAt returns when key was last written.
func (s *Store) UpdatedAt(key string) (time.Time, error) {
	var ts string
	err := s.db.QueryRow("SELECT updated_at FROM kv WHERE key = ?", key).Scan(&ts)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, ErrNotFound
	}
	if err != nil {
		return time.Time{}, err
	}
	return time.Parse(time.RFC3339, ts)
}

// ErrNotFound is returned when a key has never been written.
var ErrNotFound = errors.New("store: key not found")
