// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package importer drives a batch import: it lists a directory of vNote
// files, parses each one into a note, and hands the note to a NoteStore.
// Every file runs through its own pipeline; a failure is recorded and
// logged but never stops the other files.
package importer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	goerrors "github.com/goliatone/go-errors"
	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/vnote-importer/internal/logging"
	"github.com/pdiddy/vnote-importer/internal/notestore"
	"github.com/pdiddy/vnote-importer/internal/vnote"
	"github.com/pdiddy/vnote-importer/pkg/types"
)

const (
	// DefaultInclude matches every file name.
	DefaultInclude = "*"

	// DefaultConcurrency bounds the number of files processed at once.
	DefaultConcurrency = 4
)

// Failure categories attached to per-file errors.
var (
	CategoryFormat  = goerrors.CategoryBadInput
	CategoryIO      = goerrors.CategoryOperation
	CategoryService = goerrors.CategoryExternal
)

const (
	codeFormat  = "VNOTE_FORMAT_INVALID"
	codeIO      = "VNOTE_READ_FAILED"
	codeService = "NOTE_STORE_FAILED"
)

// categoryNames maps failure categories to the labels used in reports.
var categoryNames = []struct {
	category goerrors.Category
	name     string
}{
	{CategoryFormat, "bad_input"},
	{CategoryIO, "operation"},
	{CategoryService, "external"},
}

// CategoryName returns the report label for err's category, or "" when
// err carries none of the import categories.
func CategoryName(err error) string {
	for _, c := range categoryNames {
		if goerrors.IsCategory(err, c.category) {
			return c.name
		}
	}
	return ""
}

// BatchResult holds the outcome of a batch import run.
type BatchResult struct {
	Stored  int
	Skipped int
	Failed  int

	// Outcomes lists every processed file, sorted by file name.
	Outcomes []types.FileOutcome

	NotesDir   string
	StartedAt  time.Time
	FinishedAt time.Time
}

// Total returns the total number of files processed.
func (r BatchResult) Total() int {
	return r.Stored + r.Skipped + r.Failed
}

// HasFailures reports whether any file failed to import.
func (r BatchResult) HasFailures() bool {
	return r.Failed > 0
}

// Report converts the result into a serializable run report.
func (r BatchResult) Report(backend types.StoreBackend) types.ImportReport {
	return types.ImportReport{
		NotesDir:   r.NotesDir,
		Backend:    backend,
		StartedAt:  r.StartedAt,
		FinishedAt: r.FinishedAt,
		Stored:     r.Stored,
		Skipped:    r.Skipped,
		Failed:     r.Failed,
		Files:      r.Outcomes,
	}
}

// ListNotes returns the absolute paths of the non-hidden regular files in
// dir whose names match the doublestar pattern include, sorted by name.
// Symlinks are followed; links to directories or missing targets are
// skipped. When maxFiles is positive only the first maxFiles names are
// returned.
func ListNotes(dir, include string, maxFiles int) ([]string, error) {
	if include == "" {
		include = DefaultInclude
	}
	if !doublestar.ValidatePattern(include) {
		return nil, fmt.Errorf("invalid include pattern %q", include)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("listing notes directory %s: %w", dir, err)
	}
	if dir, err = filepath.Abs(dir); err != nil {
		return nil, fmt.Errorf("resolving notes directory: %w", err)
	}

	var paths []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasPrefix(name, ".") || !isRegular(dir, entry) {
			continue
		}
		ok, err := doublestar.Match(include, name)
		if err != nil {
			return nil, fmt.Errorf("matching %s against %q: %w", name, include, err)
		}
		if ok {
			paths = append(paths, filepath.Join(dir, name))
		}
	}
	sort.Strings(paths)

	if maxFiles > 0 && len(paths) > maxFiles {
		paths = paths[:maxFiles]
	}
	return paths, nil
}

// isRegular reports whether entry is a regular file, following symlinks.
func isRegular(dir string, entry os.DirEntry) bool {
	if entry.Type()&fs.ModeSymlink == 0 {
		return entry.Type().IsRegular()
	}
	info, err := os.Stat(filepath.Join(dir, entry.Name()))
	return err == nil && info.Mode().IsRegular()
}

// sourcePath returns the absolute form of path, so the same file is
// recorded under one name however the notes directory was spelled.
func sourcePath(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return path
}

// ParseFile reads path and parses its contents as one vNote record. The
// returned note is titled with the file name.
func ParseFile(p *vnote.Parser, path string) (*types.Note, error) {
	name := filepath.Base(path)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, goerrors.Wrap(err, CategoryIO, fmt.Sprintf("reading %s: %v", name, err)).
			WithTextCode(codeIO)
	}

	note, err := p.Parse(string(data))
	if err != nil {
		return nil, goerrors.Wrap(err, CategoryFormat, fmt.Sprintf("parsing %s: %v", name, err)).
			WithTextCode(codeFormat)
	}
	note.Title = name
	note.SourcePath = sourcePath(path)
	return note, nil
}

// ImportFile parses path and stores the note in the notebook identified by
// notebookGUID (empty selects the store default).
func ImportFile(ctx context.Context, store notestore.NoteStore, p *vnote.Parser, path, notebookGUID string) (types.StoredNote, error) {
	note, err := ParseFile(p, path)
	if err != nil {
		return types.StoredNote{}, err
	}
	note.NotebookGUID = notebookGUID

	stored, err := store.CreateNote(ctx, *note)
	if err != nil {
		return types.StoredNote{}, goerrors.Wrap(err, CategoryService, fmt.Sprintf("storing %s: %v", note.Title, err)).
			WithTextCode(codeService)
	}
	return stored, nil
}

// ImportBatch imports every file selected by cfg from cfg.NotesDir into
// store. Per-file status lines and a summary are written to w; failures
// are logged with the file name. The returned error is non-nil only when
// the run could not start: a bad timezone offset or an unreadable
// directory.
func ImportBatch(ctx context.Context, store notestore.NoteStore, cfg types.ImportConfig, w io.Writer, log logging.Logger) (BatchResult, error) {
	if log == nil {
		log = logging.NoOp()
	}
	result := BatchResult{NotesDir: cfg.NotesDir, StartedAt: time.Now()}

	loc, err := vnote.ParseOffset(cfg.TimezoneOffset)
	if err != nil {
		return result, err
	}
	paths, err := ListNotes(cfg.NotesDir, cfg.Include, cfg.MaxFiles)
	if err != nil {
		return result, err
	}
	log.Info("import started", "dir", cfg.NotesDir, "files", len(paths), "offset", loc.String())

	parser := vnote.NewParser(loc)
	tracker, _ := store.(notestore.Tracker)

	limit := cfg.Concurrency
	if limit <= 0 {
		limit = DefaultConcurrency
	}

	var (
		mu sync.Mutex
		g  errgroup.Group
	)
	g.SetLimit(limit)

	record := func(o types.FileOutcome) {
		mu.Lock()
		defer mu.Unlock()
		switch o.Status {
		case types.ImportStored:
			result.Stored++
			fmt.Fprintf(w, "stored:  %s (%s)\n", o.File, o.GUID)
		case types.ImportSkipped:
			result.Skipped++
			fmt.Fprintf(w, "skipped: %s (already imported)\n", o.File)
		case types.ImportFailed:
			result.Failed++
			fmt.Fprintf(w, "failed:  %s (%s)\n", o.File, o.Error)
		}
		result.Outcomes = append(result.Outcomes, o)
	}

	for _, path := range paths {
		g.Go(func() error {
			name := filepath.Base(path)

			if cfg.SkipImported && tracker != nil {
				seen, err := tracker.HasImported(ctx, sourcePath(path))
				if err != nil {
					err = goerrors.Wrap(err, CategoryService, fmt.Sprintf("checking %s: %v", name, err)).
						WithTextCode(codeService)
					log.Error("import failed", "file", name, "category", CategoryName(err), "error", cause(err))
					record(failure(name, err))
					return nil
				}
				if seen {
					log.Debug("already imported", "file", name)
					record(types.FileOutcome{File: name, Status: types.ImportSkipped})
					return nil
				}
			}

			stored, err := ImportFile(ctx, store, parser, path, cfg.NotebookGUID)
			if err != nil {
				log.Error("import failed", "file", name, "category", CategoryName(err), "error", cause(err))
				record(failure(name, err))
				return nil
			}
			log.Debug("note stored", "file", name, "guid", stored.GUID)
			record(types.FileOutcome{File: name, Status: types.ImportStored, GUID: stored.GUID})
			return nil
		})
	}
	g.Wait()

	sort.Slice(result.Outcomes, func(i, j int) bool {
		return result.Outcomes[i].File < result.Outcomes[j].File
	})
	result.FinishedAt = time.Now()

	fmt.Fprintln(w, "Done.")
	fmt.Fprintf(w, "\nImport summary: %d stored, %d skipped, %d failed (total: %d)\n",
		result.Stored, result.Skipped, result.Failed, result.Total())
	log.Info("import finished", "stored", result.Stored, "skipped", result.Skipped, "failed", result.Failed)
	return result, nil
}

func failure(name string, err error) types.FileOutcome {
	return types.FileOutcome{
		File:     name,
		Status:   types.ImportFailed,
		Category: CategoryName(err),
		Error:    cause(err).Error(),
	}
}

// cause returns the error underneath the category wrapper, which carries
// the specific message (a FormatError, a path error, or a store error).
func cause(err error) error {
	if inner := errors.Unwrap(err); inner != nil {
		return inner
	}
	return err
}
