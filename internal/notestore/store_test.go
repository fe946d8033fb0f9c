// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package notestore

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/vnote-importer/internal/httputil"
	"github.com/pdiddy/vnote-importer/pkg/types"
)

var plus3 = time.FixedZone("+03:00", 3*60*60)

const testContent = `<?xml version="1.0" encoding="UTF-8"?>` +
	`<!DOCTYPE en-note SYSTEM "http://xml.evernote.com/pub/enml2.dtd">` +
	`<en-note><div>Stocks</div><div><br /></div></en-note>`

func testNote(title string, minute int) types.Note {
	return types.Note{
		Title:      title,
		Created:    time.Date(2011, 5, 5, 12, minute, 0, 0, plus3),
		Updated:    time.Date(2011, 5, 5, 12, minute, 42, 0, plus3),
		Body:       "Stocks\r\n",
		Content:    testContent,
		SourcePath: filepath.Join("_notes", title),
	}
}

// --- factory ---

func TestNew(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		cfg     types.StoreConfig
		want    any
		wantErr string
	}{
		{
			name: "empty backend is sqlite",
			cfg:  types.StoreConfig{DBPath: filepath.Join(dir, "a.db")},
			want: &SQLiteStore{},
		},
		{
			name: "enex",
			cfg:  types.StoreConfig{Backend: types.BackendENEX, ENEXPath: filepath.Join(dir, "out.enex")},
			want: &ENEXStore{},
		},
		{
			name: "http",
			cfg: types.StoreConfig{Backend: types.BackendHTTP, HTTPConfig: types.HTTPConfig{
				Endpoint: "http://127.0.0.1:1", Token: "t",
			}},
			want: &HTTPStore{},
		},
		{
			name:    "http without endpoint",
			cfg:     types.StoreConfig{Backend: types.BackendHTTP},
			wantErr: "endpoint is required",
		},
		{
			name:    "unknown backend",
			cfg:     types.StoreConfig{Backend: "evernote-cloud"},
			wantErr: `unknown store backend "evernote-cloud"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := New(tt.cfg)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			t.Cleanup(func() { s.Close() })
			assert.IsType(t, tt.want, s)
		})
	}
}

// --- sqlite ---

func newTestSQLite(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "db", "notes.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSQLiteStore_CreateNote(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	note := testNote("note-001.vnt", 58)
	note.NotebookGUID = "nb-1"
	stored, err := s.CreateNote(ctx, note)
	require.NoError(t, err)

	assert.NotEmpty(t, stored.GUID)
	assert.Equal(t, "note-001.vnt", stored.Title)
	assert.Equal(t, "nb-1", stored.NotebookGUID)
	assert.Equal(t, types.BackendSQLite, stored.Backend)

	content, err := s.Content(ctx, stored.GUID)
	require.NoError(t, err)
	assert.Equal(t, testContent, content)

	notes, err := s.Notes(ctx)
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, stored.GUID, notes[0].GUID)
	assert.True(t, note.Created.Equal(notes[0].Created), "created = %s", notes[0].Created)
	assert.True(t, note.Updated.Equal(notes[0].Updated), "updated = %s", notes[0].Updated)
}

func TestSQLiteStore_UniqueGUIDs(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	a, err := s.CreateNote(ctx, testNote("a.vnt", 1))
	require.NoError(t, err)
	b, err := s.CreateNote(ctx, testNote("a.vnt", 1))
	require.NoError(t, err)
	assert.NotEqual(t, a.GUID, b.GUID)

	notes, err := s.Notes(ctx)
	require.NoError(t, err)
	assert.Len(t, notes, 2)
}

func TestSQLiteStore_NotesChronologicalAcrossOffsets(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	// 10:00 at +03:00 is 07:00 UTC; 08:00 UTC is later but sorts first as
	// offset-bearing text.
	early := testNote("early.vnt", 0)
	early.Created = time.Date(2011, 5, 5, 10, 0, 0, 0, plus3)
	early.Updated = early.Created
	late := testNote("late.vnt", 0)
	late.Created = time.Date(2011, 5, 5, 8, 0, 0, 0, time.UTC)
	late.Updated = late.Created

	_, err := s.CreateNote(ctx, late)
	require.NoError(t, err)
	_, err = s.CreateNote(ctx, early)
	require.NoError(t, err)

	notes, err := s.Notes(ctx)
	require.NoError(t, err)
	require.Len(t, notes, 2)
	assert.Equal(t, "early.vnt", notes[0].Title)
	assert.Equal(t, "late.vnt", notes[1].Title)
	assert.True(t, early.Created.Equal(notes[0].Created))
}

func TestSQLiteStore_HasImported(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	note := testNote("seen.vnt", 3)
	_, err := s.CreateNote(ctx, note)
	require.NoError(t, err)

	got, err := s.HasImported(ctx, note.SourcePath)
	require.NoError(t, err)
	assert.True(t, got)

	got, err = s.HasImported(ctx, filepath.Join("_notes", "unseen.vnt"))
	require.NoError(t, err)
	assert.False(t, got)
}

func TestSQLiteStore_ContentNotFound(t *testing.T) {
	s := newTestSQLite(t)
	_, err := s.Content(context.Background(), "missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestSQLiteStore_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.db")
	s, err := NewSQLiteStore(path)
	require.NoError(t, err)
	_, err = s.CreateNote(context.Background(), testNote("keep.vnt", 5))
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = NewSQLiteStore(path)
	require.NoError(t, err)
	defer s.Close()
	notes, err := s.Notes(context.Background())
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, "keep.vnt", notes[0].Title)
}

// --- enex ---

type parsedExport struct {
	XMLName     xml.Name `xml:"en-export"`
	Application string   `xml:"application,attr"`
	Version     string   `xml:"version,attr"`
	ExportDate  string   `xml:"export-date,attr"`
	Notes       []struct {
		Title   string `xml:"title"`
		Content string `xml:"content"`
		Created string `xml:"created"`
		Updated string `xml:"updated"`
	} `xml:"note"`
}

func TestENEXStore_Close(t *testing.T) {
	path := filepath.Join(t.TempDir(), "export", "notes.enex")
	s, err := NewENEXStore(path, "vnote-importer", "1.0")
	require.NoError(t, err)

	ctx := context.Background()
	// Created out of order; the export is sorted by creation time.
	_, err = s.CreateNote(ctx, testNote("later.vnt", 30))
	require.NoError(t, err)
	_, err = s.CreateNote(ctx, testNote("earlier.vnt", 10))
	require.NoError(t, err)
	require.NoError(t, s.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)
	assert.True(t, strings.HasPrefix(text, xml.Header), "missing XML declaration")
	assert.Contains(t, text, enexDoctype)
	assert.Contains(t, text, "<![CDATA["+testContent+"]]>")

	dec := xml.NewDecoder(strings.NewReader(text))
	dec.Strict = true
	var export parsedExport
	require.NoError(t, dec.Decode(&export))

	assert.Equal(t, "vnote-importer", export.Application)
	assert.Equal(t, "1.0", export.Version)
	assert.NotEmpty(t, export.ExportDate)
	require.Len(t, export.Notes, 2)
	assert.Equal(t, "earlier.vnt", export.Notes[0].Title)
	assert.Equal(t, "later.vnt", export.Notes[1].Title)
	assert.Equal(t, testContent, export.Notes[0].Content)
	assert.Equal(t, "20110505T091000Z", export.Notes[0].Created)
	assert.Equal(t, "20110505T091042Z", export.Notes[0].Updated)

	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err), "temporary file left behind")
}

func TestENEXStore_CreateAfterClose(t *testing.T) {
	s, err := NewENEXStore(filepath.Join(t.TempDir(), "notes.enex"), "", "")
	require.NoError(t, err)
	require.NoError(t, s.Close())
	require.NoError(t, s.Close(), "second Close is a no-op")

	_, err = s.CreateNote(context.Background(), testNote("late.vnt", 1))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "closed")
}

func TestENEXStore_AbortKeepsExistingExport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.enex")

	first, err := NewENEXStore(path, "vnote-importer", "1.0")
	require.NoError(t, err)
	_, err = first.CreateNote(context.Background(), testNote("kept.vnt", 1))
	require.NoError(t, err)
	require.NoError(t, first.Close())
	before, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(before), "kept.vnt")

	// A second run that fails before importing anything.
	second, err := NewENEXStore(path, "vnote-importer", "1.0")
	require.NoError(t, err)
	require.NoError(t, Abort(second))

	after, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, string(before), string(after))

	_, err = second.CreateNote(context.Background(), testNote("late.vnt", 2))
	assert.Error(t, err, "aborted store accepts no notes")
	require.NoError(t, second.Close(), "Close after Abort is a no-op")
	after, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, string(before), string(after))
}

func TestAbort_ClosesStoresWithoutBuffer(t *testing.T) {
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "notes.db"))
	require.NoError(t, err)
	require.NoError(t, Abort(s))

	_, err = s.Notes(context.Background())
	assert.Error(t, err, "database should be closed")
}

func TestENEXStore_CancelledContext(t *testing.T) {
	s, err := NewENEXStore(filepath.Join(t.TempDir(), "notes.enex"), "", "")
	require.NoError(t, err)
	defer s.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = s.CreateNote(ctx, testNote("x.vnt", 1))
	assert.ErrorIs(t, err, context.Canceled)
}

// --- http ---

func TestHTTPStore_CreateNote(t *testing.T) {
	var got createNoteRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/notes", r.URL.Path)
		assert.Equal(t, "Bearer secret-token", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, defaultUserAgent, r.Header.Get("User-Agent"))
		if !assert.NoError(t, json.NewDecoder(r.Body).Decode(&got)) {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"guid":"remote-guid-1","notebookGuid":"default-nb"}`)
	}))
	defer srv.Close()

	s, err := NewHTTPStore(types.HTTPConfig{Endpoint: srv.URL + "/api/", Token: "secret-token"})
	require.NoError(t, err)
	defer s.Close()

	note := testNote("note.vnt", 58)
	stored, err := s.CreateNote(context.Background(), note)
	require.NoError(t, err)

	assert.Equal(t, "remote-guid-1", stored.GUID)
	assert.Equal(t, "default-nb", stored.NotebookGUID)
	assert.Equal(t, types.BackendHTTP, stored.Backend)

	assert.Equal(t, "note.vnt", got.Title)
	assert.Equal(t, testContent, got.Content)
	assert.Equal(t, note.Created.UnixMilli(), got.Created)
	assert.Equal(t, note.Updated.UnixMilli(), got.Updated)
	assert.Empty(t, got.NotebookGUID)
}

func TestHTTPStore_ServiceErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr string
	}{
		{name: "server error", status: http.StatusInternalServerError, body: "quota exceeded", wantErr: "quota exceeded"},
		{name: "unauthorized", status: http.StatusUnauthorized, body: "", wantErr: "401"},
		{name: "missing guid", status: http.StatusOK, body: `{}`, wantErr: "no guid"},
		{name: "bad json", status: http.StatusOK, body: `not json`, wantErr: "decoding create response"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				io.WriteString(w, tt.body)
			}))
			defer srv.Close()

			s, err := NewHTTPStore(types.HTTPConfig{Endpoint: srv.URL, Token: "t"})
			require.NoError(t, err)

			_, err = s.CreateNote(context.Background(), testNote("x.vnt", 1))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestHTTPStore_StatusErrorIsExposed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	s, err := NewHTTPStore(types.HTTPConfig{Endpoint: srv.URL, Token: "t"})
	require.NoError(t, err)

	_, err = s.CreateNote(context.Background(), testNote("x.vnt", 1))
	var se *httputil.StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusBadGateway, se.StatusCode)
}

func TestHTTPStore_RetriesRateLimit(t *testing.T) {
	orig := httputil.RetryBaseDelay
	httputil.RetryBaseDelay = time.Millisecond
	t.Cleanup(func() { httputil.RetryBaseDelay = orig })

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		assert.Contains(t, string(body), `"title":"x.vnt"`)
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		io.WriteString(w, `{"guid":"g"}`)
	}))
	defer srv.Close()

	s, err := NewHTTPStore(types.HTTPConfig{Endpoint: srv.URL, Token: "t", MaxRetries: 2})
	require.NoError(t, err)

	stored, err := s.CreateNote(context.Background(), testNote("x.vnt", 1))
	require.NoError(t, err)
	assert.Equal(t, "g", stored.GUID)
	assert.Equal(t, int32(2), calls.Load())
}

func TestNewHTTPStore_Validation(t *testing.T) {
	_, err := NewHTTPStore(types.HTTPConfig{Endpoint: "http://x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "token is required")

	s, err := NewHTTPStore(types.HTTPConfig{Endpoint: "http://x/", Token: "t"})
	require.NoError(t, err)
	assert.Equal(t, "http://x", s.cfg.Endpoint)
	assert.Equal(t, defaultTimeout, s.cfg.Timeout)
}
