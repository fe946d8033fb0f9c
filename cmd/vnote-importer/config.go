// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/pdiddy/vnote-importer/internal/secrets"
	"github.com/pdiddy/vnote-importer/pkg/types"
)

const application = "vnote-importer"

// bindFlags binds config keys to the named flags in fs. A missing flag is
// a programming error.
func bindFlags(fs *pflag.FlagSet, keys map[string]string) {
	for key, name := range keys {
		f := fs.Lookup(name)
		if f == nil {
			panic(fmt.Sprintf("bindFlags: no flag %q for key %q", name, key))
		}
		if err := viper.BindPFlag(key, f); err != nil {
			panic(err)
		}
	}
}

// secretDefault returns value if set, or the token loaded from .secrets/.
func secretDefault(value string) string {
	if value != "" {
		return value
	}
	return secrets.Token(loadedSecrets)
}

// loadConfig assembles the run configuration from v. Precedence follows
// viper: flags, environment, config file, flag defaults.
func loadConfig(v *viper.Viper) types.Config {
	return types.Config{
		Import: types.ImportConfig{
			NotesDir:       v.GetString("import.notes_dir"),
			Include:        v.GetString("import.include"),
			MaxFiles:       v.GetInt("import.max_files"),
			Concurrency:    v.GetInt("import.concurrency"),
			NotebookGUID:   v.GetString("import.notebook_guid"),
			TimezoneOffset: v.GetString("import.timezone_offset"),
			SkipImported:   v.GetBool("import.skip_imported"),
			ReportPath:     v.GetString("import.report_path"),
		},
		Store: types.StoreConfig{
			HTTPConfig: types.HTTPConfig{
				Endpoint:   v.GetString("store.endpoint"),
				Token:      secretDefault(v.GetString("store.token")),
				Timeout:    v.GetDuration("store.timeout"),
				UserAgent:  application + "/" + version,
				MaxRetries: v.GetInt("store.max_retries"),
			},
			Backend:     types.StoreBackend(v.GetString("store.backend")),
			DBPath:      v.GetString("store.db_path"),
			ENEXPath:    v.GetString("store.enex_path"),
			Application: application,
			Version:     version,
		},
		Log: types.LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
		},
	}
}
