// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the vnote-importer CLI.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/vnote-importer/internal/secrets"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds credentials loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// rootCmd is the base command for the vnote-importer CLI.
var rootCmd = &cobra.Command{
	Use:   "vnote-importer",
	Short: "Import vNote 1.1 files into a note store",
	Long: `vnote-importer reads a directory of vNote 1.1 files exported from a phone,
decodes each note's quoted-printable body and timestamps, encodes the body as
an ENML document, and stores the result as a note.

Notes are stored in a local SQLite database by default. The enex backend
writes an Evernote export file instead, and the http backend posts each note
to a remote note service.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := secrets.Load(viper.GetString("secrets_dir"), os.Stderr)
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", keys)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "config file (default: ./vnote-importer.yaml or ~/.config/vnote-importer/vnote-importer.yaml)")
	pf.String("secrets-dir", ".secrets", "directory of credential files (evernote-token)")
	pf.String("log-level", "info", "diagnostic log level: trace, debug, info, warn, error")
	pf.String("log-format", "console", "diagnostic log format: console, json, pretty")
	pf.String("timezone-offset", "+03:00", "UTC offset applied to vNote timestamps (±HH:MM)")

	pf.String("backend", "sqlite", "note store: sqlite, enex, or http")
	pf.String("db", "notes.db", "SQLite database path (sqlite backend)")
	pf.String("enex", "notes.enex", "export file path (enex backend)")
	pf.String("endpoint", "", "note service base URL (http backend)")
	pf.String("token", "", "note service token (default: .secrets/evernote-token)")
	pf.Duration("timeout", 0, "note service request timeout (0 = 60s)")
	pf.Int("max-retries", 0, "retries on HTTP 429 from the note service (0 = none)")

	bindFlags(pf, map[string]string{
		"secrets_dir":            "secrets-dir",
		"log.level":              "log-level",
		"log.format":             "log-format",
		"import.timezone_offset": "timezone-offset",
		"store.backend":          "backend",
		"store.db_path":          "db",
		"store.enex_path":        "enex",
		"store.endpoint":         "endpoint",
		"store.token":            "token",
		"store.timeout":          "timeout",
		"store.max_retries":      "max-retries",
	})
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("vnote-importer")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "vnote-importer"))
		}
	}

	viper.SetEnvPrefix("VNOTE_IMPORTER")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
