// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/vnote-importer/internal/importer"
	"github.com/pdiddy/vnote-importer/internal/logging"
	"github.com/pdiddy/vnote-importer/internal/notestore"
)

var importCmd = &cobra.Command{
	Use:   "import [dir]",
	Short: "Import every vNote file in a directory",
	Long: `Import lists the vNote files in the notes directory (default _notes/),
converts each one to an ENML note titled with its file name, and stores it
with the configured backend. A file that fails to read, parse, or store is
reported and skipped; the remaining files are still imported.

The command exits non-zero when any file failed.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runImport,
}

func runImport(cmd *cobra.Command, args []string) error {
	cfg := loadConfig(viper.GetViper())
	if len(args) == 1 {
		cfg.Import.NotesDir = args[0]
	}

	log, err := logging.New(cfg.Log, "import")
	if err != nil {
		return err
	}

	store, err := notestore.New(cfg.Store)
	if err != nil {
		return err
	}

	result, err := importer.ImportBatch(cmd.Context(), store, cfg.Import, os.Stdout, log)
	if err != nil {
		// The run never started; an existing export must not be replaced.
		if aerr := notestore.Abort(store); aerr != nil {
			err = errors.Join(err, fmt.Errorf("aborting note store: %w", aerr))
		}
		return err
	}
	// Closing flushes the enex backend.
	if err := store.Close(); err != nil {
		return fmt.Errorf("closing note store: %w", err)
	}

	if cfg.Import.ReportPath != "" {
		if err := importer.WriteReport(cfg.Import.ReportPath, result.Report(cfg.Store.Backend)); err != nil {
			return err
		}
		fmt.Fprintf(os.Stdout, "Report written to %s\n", cfg.Import.ReportPath)
	}

	if result.HasFailures() {
		return fmt.Errorf("%d of %d file(s) failed to import", result.Failed, result.Total())
	}
	return nil
}

func init() {
	f := importCmd.Flags()
	f.String("notes-dir", "_notes", "directory holding the vNote files")
	f.String("include", importer.DefaultInclude, "file name pattern (doublestar syntax, e.g. \"*.vnt\")")
	f.Int("max-files", 0, "import only the first N files in name order (0 = all)")
	f.Int("concurrency", importer.DefaultConcurrency, "files processed at once")
	f.String("notebook", "", "target notebook GUID (default: the store's default notebook)")
	f.String("report", "", "write a YAML report of the run to this path")
	f.Bool("skip-imported", false, "skip files the store has already imported (sqlite backend)")

	bindFlags(f, map[string]string{
		"import.notes_dir":     "notes-dir",
		"import.include":       "include",
		"import.max_files":     "max-files",
		"import.concurrency":   "concurrency",
		"import.notebook_guid": "notebook",
		"import.report_path":   "report",
		"import.skip_imported": "skip-imported",
	})

	rootCmd.AddCommand(importCmd)
}
