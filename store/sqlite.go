package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jsphweid/melodex/chunk"
	"github.com/jsphweid/melodex/model"
	_ "github.com/mattn/go-sqlite3" // SQLite driver registration
)

const databaseFile = "library.db"

type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(dir string) (*SQLiteStore, error) {
	if err := os.MkdirAll(dir, 0777); err != nil {
		return nil, fmt.Errorf("error creating database directory: %w", err)
	}
	return OpenSQLite(filepath.Join(dir, databaseFile) + "?_busy_timeout=5000")
}

func OpenSQLite(dataSourceName string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("error connecting to SQLite: %w", err)
	}
	if err := createTables(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("error creating tables: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func createTables(db *sql.DB) error {
	createLibraryTable := `
    CREATE TABLE IF NOT EXISTS library (
        id INTEGER PRIMARY KEY CHECK (id = 1),
        config TEXT NOT NULL
    );
    `

	createEntriesTable := `
    CREATE TABLE IF NOT EXISTS entries (
        ord INTEGER PRIMARY KEY,
        entry_id TEXT NOT NULL UNIQUE,
        title TEXT NOT NULL,
        artist TEXT NOT NULL,
        source TEXT NOT NULL,
        metadata TEXT,
        length INTEGER NOT NULL
    );
    `

	createChunksTable := `
    CREATE TABLE IF NOT EXISTS chunks (
        entry_id TEXT NOT NULL,
        idx INTEGER NOT NULL,
        event_offset INTEGER NOT NULL,
        onset REAL NOT NULL,
        partial INTEGER NOT NULL DEFAULT 0,
        median REAL NOT NULL,
        quantize_step REAL NOT NULL,
        events TEXT NOT NULL,
        PRIMARY KEY (entry_id, idx)
    );
    `

	for name, stmt := range map[string]string{
		"library": createLibraryTable,
		"entries": createEntriesTable,
		"chunks":  createChunksTable,
	} {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("error creating %s table: %w", name, err)
		}
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Save replaces whatever library was stored before.
func (s *SQLiteStore) Save(snap Snapshot) error {
	cfg, err := json.Marshal(snap.Config)
	if err != nil {
		return err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("error starting transaction: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"chunks", "entries", "library"} {
		if _, err := tx.Exec("DELETE FROM " + table); err != nil {
			return fmt.Errorf("error clearing %s: %w", table, err)
		}
	}
	if _, err := tx.Exec("INSERT INTO library (id, config) VALUES (1, ?)", string(cfg)); err != nil {
		return fmt.Errorf("error saving config: %w", err)
	}

	entryStmt, err := tx.Prepare("INSERT INTO entries (ord, entry_id, title, artist, source, metadata, length) VALUES (?, ?, ?, ?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("error preparing statement: %w", err)
	}
	defer entryStmt.Close()

	chunkStmt, err := tx.Prepare("INSERT INTO chunks (entry_id, idx, event_offset, onset, partial, median, quantize_step, events) VALUES (?, ?, ?, ?, ?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("error preparing statement: %w", err)
	}
	defer chunkStmt.Close()

	for ord, e := range snap.Entries {
		meta, err := json.Marshal(e.Metadata)
		if err != nil {
			return err
		}
		if _, err := entryStmt.Exec(ord, e.ID, e.Title, e.Artist, e.Source, string(meta), e.Length); err != nil {
			return fmt.Errorf("error saving entry %q: %w", e.ID, err)
		}
		for _, c := range e.Chunks {
			events, err := json.Marshal(c.Sequence.Events)
			if err != nil {
				return err
			}
			if _, err := chunkStmt.Exec(c.EntryID, c.Index, c.Offset, c.Onset, c.Partial, c.Sequence.Median, c.Sequence.QuantizeStep, string(events)); err != nil {
				return fmt.Errorf("error saving chunk %d of %q: %w", c.Index, e.ID, err)
			}
		}
	}
	return tx.Commit()
}

func (s *SQLiteStore) Load() (Snapshot, error) {
	var snap Snapshot

	var cfg string
	err := s.db.QueryRow("SELECT config FROM library WHERE id = 1").Scan(&cfg)
	if err == sql.ErrNoRows {
		return snap, ErrNotFound
	}
	if err != nil {
		return snap, fmt.Errorf("error reading config: %w", err)
	}
	var chunkCfg chunk.Config
	if err := json.Unmarshal([]byte(cfg), &chunkCfg); err != nil {
		return snap, fmt.Errorf("error decoding config: %w", err)
	}
	snap.Config = chunkCfg

	rows, err := s.db.Query("SELECT entry_id, title, artist, source, metadata, length FROM entries ORDER BY ord")
	if err != nil {
		return snap, fmt.Errorf("error querying entries: %w", err)
	}
	byID := make(map[string]int)
	for rows.Next() {
		var e model.ReferenceEntry
		var meta sql.NullString
		if err := rows.Scan(&e.ID, &e.Title, &e.Artist, &e.Source, &meta, &e.Length); err != nil {
			rows.Close()
			return snap, fmt.Errorf("error scanning entry: %w", err)
		}
		if meta.Valid {
			if err := json.Unmarshal([]byte(meta.String), &e.Metadata); err != nil {
				rows.Close()
				return snap, fmt.Errorf("error decoding metadata of %q: %w", e.ID, err)
			}
		}
		byID[e.ID] = len(snap.Entries)
		snap.Entries = append(snap.Entries, e)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return snap, err
	}

	rows, err = s.db.Query("SELECT entry_id, idx, event_offset, onset, partial, median, quantize_step, events FROM chunks ORDER BY entry_id, idx")
	if err != nil {
		return snap, fmt.Errorf("error querying chunks: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var c model.Chunk
		var events string
		if err := rows.Scan(&c.EntryID, &c.Index, &c.Offset, &c.Onset, &c.Partial, &c.Sequence.Median, &c.Sequence.QuantizeStep, &events); err != nil {
			return snap, fmt.Errorf("error scanning chunk: %w", err)
		}
		if err := json.Unmarshal([]byte(events), &c.Sequence.Events); err != nil {
			return snap, fmt.Errorf("error decoding chunk %d of %q: %w", c.Index, c.EntryID, err)
		}
		idx, ok := byID[c.EntryID]
		if !ok {
			return snap, fmt.Errorf("%w: chunk %d belongs to unknown entry %q", model.ErrInvalidConfig, c.Index, c.EntryID)
		}
		snap.Entries[idx].Chunks = append(snap.Entries[idx].Chunks, c)
	}
	return snap, rows.Err()
}
