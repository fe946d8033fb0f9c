// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package notestore

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/vnote-importer/pkg/types"
)

// DefaultDBPath is used when no database path is configured.
const DefaultDBPath = "notes.db"

// SQLiteStore keeps notes in a local SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens or creates the database at path and creates the
// schema if it does not exist.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if path == "" {
		path = DefaultDBPath
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// One writer at a time; concurrent imports queue on the pool.
	db.SetMaxOpenConns(1)

	s := &SQLiteStore{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS notes (
			guid TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			created TEXT NOT NULL,
			updated TEXT NOT NULL,
			content TEXT NOT NULL,
			notebook_guid TEXT,
			source_path TEXT,
			stored_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_notes_source_path ON notes(source_path)`,
		`CREATE INDEX IF NOT EXISTS idx_notes_notebook ON notes(notebook_guid)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// CreateNote inserts note under a fresh GUID.
func (s *SQLiteStore) CreateNote(ctx context.Context, note types.Note) (types.StoredNote, error) {
	stored := types.StoredNote{
		GUID:         uuid.NewString(),
		Title:        note.Title,
		Created:      note.Created,
		Updated:      note.UpdatedOrCreated(),
		NotebookGUID: note.NotebookGUID,
		Backend:      types.BackendSQLite,
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO notes (guid, title, created, updated, content, notebook_guid, source_path, stored_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		stored.GUID, stored.Title,
		stored.Created.UTC().Format(time.RFC3339), stored.Updated.UTC().Format(time.RFC3339),
		note.Content, note.NotebookGUID, note.SourcePath,
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return types.StoredNote{}, fmt.Errorf("inserting note %q: %w", note.Title, err)
	}
	return stored, nil
}

// HasImported reports whether a note from sourcePath is already stored.
func (s *SQLiteStore) HasImported(ctx context.Context, sourcePath string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT count(*) FROM notes WHERE source_path = ?`, sourcePath,
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("checking import status: %w", err)
	}
	return n > 0, nil
}

// Notes returns every stored note handle ordered by creation time. Times
// are stored in UTC so the text columns sort chronologically.
func (s *SQLiteStore) Notes(ctx context.Context) ([]types.StoredNote, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT guid, title, created, updated, COALESCE(notebook_guid, '')
		 FROM notes ORDER BY created, title`)
	if err != nil {
		return nil, fmt.Errorf("querying notes: %w", err)
	}
	defer rows.Close()

	var notes []types.StoredNote
	for rows.Next() {
		var n types.StoredNote
		var created, updated string
		if err := rows.Scan(&n.GUID, &n.Title, &created, &updated, &n.NotebookGUID); err != nil {
			return nil, fmt.Errorf("scanning note: %w", err)
		}
		if n.Created, err = time.Parse(time.RFC3339, created); err != nil {
			return nil, fmt.Errorf("note %s: bad created time: %w", n.GUID, err)
		}
		if n.Updated, err = time.Parse(time.RFC3339, updated); err != nil {
			return nil, fmt.Errorf("note %s: bad updated time: %w", n.GUID, err)
		}
		n.Backend = types.BackendSQLite
		notes = append(notes, n)
	}
	return notes, rows.Err()
}

// Content returns the ENML document stored under guid.
func (s *SQLiteStore) Content(ctx context.Context, guid string) (string, error) {
	var content string
	err := s.db.QueryRowContext(ctx, `SELECT content FROM notes WHERE guid = ?`, guid).Scan(&content)
	if err == sql.ErrNoRows {
		return "", fmt.Errorf("note %s not found", guid)
	}
	if err != nil {
		return "", fmt.Errorf("reading note %s: %w", guid, err)
	}
	return content, nil
}
