// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package notestore persists converted notes. A NoteStore accepts one note
// at a time and returns a handle; backends are a local SQLite database, an
// Evernote export (.enex) file, and a remote HTTP note service.
package notestore

import (
	"context"
	"fmt"

	"github.com/pdiddy/vnote-importer/pkg/types"
)

// NoteStore creates notes in a storage backend. Implementations are safe
// for concurrent use.
type NoteStore interface {
	// CreateNote stores note in note.NotebookGUID, or the default notebook
	// when that is empty, and returns the stored handle.
	CreateNote(ctx context.Context, note types.Note) (types.StoredNote, error)

	// Close flushes pending output and releases resources.
	Close() error
}

// Tracker is implemented by stores that remember which source files they
// have already accepted.
type Tracker interface {
	HasImported(ctx context.Context, sourcePath string) (bool, error)
}

// Aborter is implemented by stores that buffer output and can drop it
// instead of flushing on Close.
type Aborter interface {
	Abort() error
}

// Abort releases s without flushing pending output when s supports that,
// and closes it otherwise.
func Abort(s NoteStore) error {
	if a, ok := s.(Aborter); ok {
		return a.Abort()
	}
	return s.Close()
}

// New opens the store selected by cfg.Backend. An empty backend selects
// SQLite.
func New(cfg types.StoreConfig) (NoteStore, error) {
	switch cfg.Backend {
	case types.BackendSQLite, "":
		return NewSQLiteStore(cfg.DBPath)
	case types.BackendENEX:
		return NewENEXStore(cfg.ENEXPath, cfg.Application, cfg.Version)
	case types.BackendHTTP:
		return NewHTTPStore(cfg.HTTPConfig)
	default:
		return nil, fmt.Errorf("unknown store backend %q (want sqlite, enex, or http)", cfg.Backend)
	}
}
