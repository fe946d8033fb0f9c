// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the vnote-importer
// pipeline: parsed notes, stored note handles, per-file outcomes, and the
// configuration of each stage.
package types

import "time"

// Note is the normalized form of one vNote record, ready to hand to a
// note store.
type Note struct {
	// Title is assigned by the batch driver from the source filename.
	Title string `json:"title" yaml:"title"`

	// Created is the instant decoded from the DCREATED field.
	Created time.Time `json:"created" yaml:"created"`

	// Updated is the instant decoded from the LAST-MODIFIED field.
	Updated time.Time `json:"updated" yaml:"updated"`

	// Body is the decoded body text before markup encoding.
	Body string `json:"body" yaml:"body"`

	// Content is the complete ENML document embedding Body.
	Content string `json:"content" yaml:"content"`

	// SourcePath is the file the note was read from.
	SourcePath string `json:"source_path,omitempty" yaml:"source_path,omitempty"`

	// NotebookGUID selects the target notebook. Empty means the store's
	// default notebook.
	NotebookGUID string `json:"notebook_guid,omitempty" yaml:"notebook_guid,omitempty"`
}

// UpdatedOrCreated returns Updated, or Created when Updated is unset.
func (n Note) UpdatedOrCreated() time.Time {
	if n.Updated.IsZero() {
		return n.Created
	}
	return n.Updated
}

// StoredNote is the handle a note store returns after a successful create.
type StoredNote struct {
	GUID         string    `json:"guid" yaml:"guid"`
	Title        string    `json:"title" yaml:"title"`
	Created      time.Time `json:"created" yaml:"created"`
	Updated      time.Time `json:"updated" yaml:"updated"`
	NotebookGUID string    `json:"notebook_guid,omitempty" yaml:"notebook_guid,omitempty"`

	// Backend names the store that accepted the note (e.g. "sqlite").
	Backend StoreBackend `json:"backend" yaml:"backend"`
}

// ImportStatus indicates what happened to one input file.
type ImportStatus string

const (
	ImportStored  ImportStatus = "stored"
	ImportSkipped ImportStatus = "skipped"
	ImportFailed  ImportStatus = "failed"
)

// FileOutcome records the result of importing a single file.
type FileOutcome struct {
	// File is the base name of the input file.
	File string `json:"file" yaml:"file"`

	Status ImportStatus `json:"status" yaml:"status"`

	// GUID is set when Status is ImportStored.
	GUID string `json:"guid,omitempty" yaml:"guid,omitempty"`

	// Category classifies a failure: bad_input, operation, or external.
	Category string `json:"category,omitempty" yaml:"category,omitempty"`

	// Error is the failure message.
	Error string `json:"error,omitempty" yaml:"error,omitempty"`
}

// ImportReport summarizes one import run. It is written as YAML when a
// report path is configured.
type ImportReport struct {
	NotesDir   string        `json:"notes_dir" yaml:"notes_dir"`
	Backend    StoreBackend  `json:"backend" yaml:"backend"`
	StartedAt  time.Time     `json:"started_at" yaml:"started_at"`
	FinishedAt time.Time     `json:"finished_at" yaml:"finished_at"`
	Stored     int           `json:"stored" yaml:"stored"`
	Skipped    int           `json:"skipped" yaml:"skipped"`
	Failed     int           `json:"failed" yaml:"failed"`
	Files      []FileOutcome `json:"files" yaml:"files"`
}
