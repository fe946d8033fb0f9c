// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package notestore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/pdiddy/vnote-importer/internal/httputil"
	"github.com/pdiddy/vnote-importer/pkg/types"
)

const (
	defaultTimeout   = 60 * time.Second
	defaultUserAgent = "vnote-importer/0.1"
	notesPath        = "/notes"
)

// createNoteRequest is the JSON body posted to the note service.
type createNoteRequest struct {
	Title        string `json:"title"`
	Created      int64  `json:"created"`
	Updated      int64  `json:"updated"`
	Content      string `json:"content"`
	NotebookGUID string `json:"notebookGuid,omitempty"`
}

type createNoteResponse struct {
	GUID         string `json:"guid"`
	NotebookGUID string `json:"notebookGuid"`
}

// HTTPStore creates notes through a remote JSON note service. Timestamps
// are sent as Unix milliseconds, the unit Evernote uses for note times.
type HTTPStore struct {
	client *http.Client
	cfg    types.HTTPConfig
}

// NewHTTPStore returns a store posting to cfg.Endpoint + "/notes".
func NewHTTPStore(cfg types.HTTPConfig) (*HTTPStore, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("http store: endpoint is required")
	}
	if cfg.Token == "" {
		return nil, fmt.Errorf("http store: token is required (set --token or .secrets/evernote-token)")
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaultUserAgent
	}
	cfg.Endpoint = strings.TrimRight(cfg.Endpoint, "/")
	return &HTTPStore{client: &http.Client{Timeout: cfg.Timeout}, cfg: cfg}, nil
}

// CreateNote posts note and returns the GUID assigned by the service.
func (s *HTTPStore) CreateNote(ctx context.Context, note types.Note) (types.StoredNote, error) {
	updated := note.UpdatedOrCreated()
	body, err := json.Marshal(createNoteRequest{
		Title:        note.Title,
		Created:      note.Created.UnixMilli(),
		Updated:      updated.UnixMilli(),
		Content:      note.Content,
		NotebookGUID: note.NotebookGUID,
	})
	if err != nil {
		return types.StoredNote{}, fmt.Errorf("encoding note %q: %w", note.Title, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.Endpoint+notesPath, bytes.NewReader(body))
	if err != nil {
		return types.StoredNote{}, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.cfg.Token)
	req.Header.Set("User-Agent", s.cfg.UserAgent)

	resp, err := httputil.DoWithRetry(ctx, s.client, req, s.cfg.MaxRetries)
	if err != nil {
		return types.StoredNote{}, fmt.Errorf("creating note %q: %w", note.Title, err)
	}
	defer resp.Body.Close()

	if err := httputil.CheckResponse(resp); err != nil {
		return types.StoredNote{}, fmt.Errorf("creating note %q: %w", note.Title, err)
	}

	var out createNoteResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return types.StoredNote{}, fmt.Errorf("decoding create response for %q: %w", note.Title, err)
	}
	if out.GUID == "" {
		return types.StoredNote{}, fmt.Errorf("creating note %q: response has no guid", note.Title)
	}

	notebook := out.NotebookGUID
	if notebook == "" {
		notebook = note.NotebookGUID
	}
	return types.StoredNote{
		GUID:         out.GUID,
		Title:        note.Title,
		Created:      note.Created,
		Updated:      updated,
		NotebookGUID: notebook,
		Backend:      types.BackendHTTP,
	}, nil
}

// Close releases idle connections.
func (s *HTTPStore) Close() error {
	s.client.CloseIdleConnections()
	return nil
}
