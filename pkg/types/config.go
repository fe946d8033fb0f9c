// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds settings for stores that talk to a remote service.
type HTTPConfig struct {
	// Endpoint is the base URL of the note service (e.g. "https://notes.example.com/api").
	Endpoint string `json:"endpoint" yaml:"endpoint"`

	// Token is the bearer token sent with every request.
	Token string `json:"token,omitempty" yaml:"token,omitempty"`

	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "vnote-importer/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`

	// MaxRetries is the number of retries on HTTP 429. Zero disables retries.
	MaxRetries int `json:"max_retries" yaml:"max_retries"`
}

// StoreBackend identifies the note store implementation.
type StoreBackend string

const (
	BackendSQLite StoreBackend = "sqlite"
	BackendENEX   StoreBackend = "enex"
	BackendHTTP   StoreBackend = "http"
)

// StoreConfig holds settings for the note store.
type StoreConfig struct {
	HTTPConfig `yaml:",inline"`

	// Backend selects the store: sqlite, enex, or http.
	Backend StoreBackend `json:"backend" yaml:"backend"`

	// DBPath is the SQLite database file used by the sqlite backend.
	DBPath string `json:"db_path" yaml:"db_path"`

	// ENEXPath is the export file written by the enex backend.
	ENEXPath string `json:"enex_path" yaml:"enex_path"`

	// Application is recorded in ENEX exports (e.g. "vnote-importer").
	Application string `json:"application" yaml:"application"`

	// Version is recorded in ENEX exports.
	Version string `json:"version" yaml:"version"`
}

// ImportConfig holds settings for the batch import.
type ImportConfig struct {
	// NotesDir is the directory holding the vNote files.
	NotesDir string `json:"notes_dir" yaml:"notes_dir"`

	// Include is a doublestar pattern matched against file names (default "*").
	Include string `json:"include" yaml:"include"`

	// MaxFiles limits how many files are processed, in name order.
	// Zero processes every file.
	MaxFiles int `json:"max_files" yaml:"max_files"`

	// Concurrency bounds the number of files processed at once (default 4).
	Concurrency int `json:"concurrency" yaml:"concurrency"`

	// NotebookGUID is the target notebook for every note. Empty uses the
	// store default.
	NotebookGUID string `json:"notebook_guid,omitempty" yaml:"notebook_guid,omitempty"`

	// TimezoneOffset is applied to vNote timestamps, which carry no zone
	// (default "+03:00").
	TimezoneOffset string `json:"timezone_offset" yaml:"timezone_offset"`

	// SkipImported skips files the store has already recorded.
	SkipImported bool `json:"skip_imported" yaml:"skip_imported"`

	// ReportPath, when set, receives a YAML report of the run.
	ReportPath string `json:"report_path,omitempty" yaml:"report_path,omitempty"`
}

// LogConfig controls diagnostic logging.
type LogConfig struct {
	// Level is one of trace, debug, info, warn, error.
	Level string `json:"level" yaml:"level"`

	// Format is one of console, json, pretty.
	Format string `json:"format" yaml:"format"`
}

// Config groups every stage configuration.
type Config struct {
	Import ImportConfig `json:"import" yaml:"import"`
	Store  StoreConfig  `json:"store" yaml:"store"`
	Log    LogConfig    `json:"log" yaml:"log"`
}
