// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package notestore

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pdiddy/vnote-importer/pkg/types"
)

const (
	// DefaultENEXPath is used when no export path is configured.
	DefaultENEXPath = "notes.enex"

	enexDoctype    = `<!DOCTYPE en-export SYSTEM "http://xml.evernote.com/pub/evernote-export3.dtd">`
	enexTimeLayout = "20060102T150405Z"
)

type enexNote struct {
	XMLName xml.Name    `xml:"note"`
	Title   string      `xml:"title"`
	Content enexContent `xml:"content"`
	Created string      `xml:"created"`
	Updated string      `xml:"updated"`
}

// enexContent carries the ENML document as CDATA inside <content>.
type enexContent struct {
	Text string `xml:",cdata"`
}

type enexEntry struct {
	stored  types.StoredNote
	content string
}

// ENEXStore collects notes in memory and writes them as an Evernote export
// file on Close. The file can be imported by the Evernote clients.
type ENEXStore struct {
	path        string
	application string
	version     string

	mu      sync.Mutex
	entries []enexEntry
	closed  bool
}

// NewENEXStore returns a store that writes path on Close. The parent
// directory is created immediately so a bad path fails before any note is
// converted.
func NewENEXStore(path, application, version string) (*ENEXStore, error) {
	if path == "" {
		path = DefaultENEXPath
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating export directory: %w", err)
	}
	return &ENEXStore{path: path, application: application, version: version}, nil
}

// CreateNote buffers note for the export.
func (s *ENEXStore) CreateNote(ctx context.Context, note types.Note) (types.StoredNote, error) {
	if err := ctx.Err(); err != nil {
		return types.StoredNote{}, err
	}

	stored := types.StoredNote{
		GUID:         uuid.NewString(),
		Title:        note.Title,
		Created:      note.Created,
		Updated:      note.UpdatedOrCreated(),
		NotebookGUID: note.NotebookGUID,
		Backend:      types.BackendENEX,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return types.StoredNote{}, fmt.Errorf("enex store %s is closed", s.path)
	}
	s.entries = append(s.entries, enexEntry{stored: stored, content: note.Content})
	return stored, nil
}

// Abort discards buffered notes and closes the store without touching the
// export file.
func (s *ENEXStore) Abort() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.entries = nil
	return nil
}

// Close writes the export file. Notes are ordered by creation time so
// repeated runs over the same input produce the same file.
func (s *ENEXStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true

	sort.SliceStable(s.entries, func(i, j int) bool {
		a, b := s.entries[i].stored, s.entries[j].stored
		if !a.Created.Equal(b.Created) {
			return a.Created.Before(b.Created)
		}
		return a.Title < b.Title
	})

	data, err := s.encode(time.Now())
	if err != nil {
		return err
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing export: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("finalizing export: %w", err)
	}
	return nil
}

func (s *ENEXStore) encode(now time.Time) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	buf.WriteString(enexDoctype + "\n")

	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	start := xml.StartElement{Name: xml.Name{Local: "en-export"}, Attr: []xml.Attr{
		{Name: xml.Name{Local: "export-date"}, Value: now.UTC().Format(enexTimeLayout)},
	}}
	if s.application != "" {
		start.Attr = append(start.Attr, xml.Attr{Name: xml.Name{Local: "application"}, Value: s.application})
	}
	if s.version != "" {
		start.Attr = append(start.Attr, xml.Attr{Name: xml.Name{Local: "version"}, Value: s.version})
	}
	if err := enc.EncodeToken(start); err != nil {
		return nil, fmt.Errorf("encoding export: %w", err)
	}
	for _, e := range s.entries {
		note := enexNote{
			Title:   e.stored.Title,
			Content: enexContent{Text: e.content},
			Created: e.stored.Created.UTC().Format(enexTimeLayout),
			Updated: e.stored.Updated.UTC().Format(enexTimeLayout),
		}
		if err := enc.Encode(note); err != nil {
			return nil, fmt.Errorf("encoding note %q: %w", e.stored.Title, err)
		}
	}
	if err := enc.EncodeToken(start.End()); err != nil {
		return nil, fmt.Errorf("encoding export: %w", err)
	}
	if err := enc.Flush(); err != nil {
		return nil, fmt.Errorf("encoding export: %w", err)
	}
	buf.WriteString("\n")
	return buf.Bytes(), nil
}
