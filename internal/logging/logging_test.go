// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/vnote-importer/pkg/types"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		cfg     types.LogConfig
		wantErr string
	}{
		{name: "defaults", cfg: types.LogConfig{}},
		{name: "console debug", cfg: types.LogConfig{Level: "debug", Format: "console"}},
		{name: "json warn", cfg: types.LogConfig{Level: "WARN", Format: "json"}},
		{name: "pretty", cfg: types.LogConfig{Format: "pretty"}},
		{name: "bad format", cfg: types.LogConfig{Format: "xml"}, wantErr: "unsupported format"},
		{name: "bad level", cfg: types.LogConfig{Level: "loud"}, wantErr: "unknown level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := New(tt.cfg, "vnote-importer.test")
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, logger)
			logger.Debug("logger.ready", "format", tt.cfg.Format)
		})
	}
}

func TestNoOp(t *testing.T) {
	l := NoOp()
	l.Debug("x")
	l.Info("x", "k", "v")
	l.Warn("x")
	l.Error("x")
}
