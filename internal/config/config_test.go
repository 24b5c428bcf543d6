package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/digilab/internal/ops"
	"github.com/roach88/digilab/internal/parity"
)

func writeConfig(t *testing.T, src string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "digilab.cue")
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, Limits{Binary: 16, Octal: 8, Decimal: 8, Hex: 8}, cfg.Limits)
	assert.Equal(t, 4, cfg.MinWidth)
	assert.Equal(t, "even", cfg.Parity)
	assert.Equal(t, "", cfg.Database)
	assert.Equal(t, Log{Level: "info"}, cfg.Log)
	assert.Equal(t, ops.DefaultLimits(), cfg.OpsLimits())
}

func TestLoad_Overrides(t *testing.T) {
	path := writeConfig(t, `
limits: binary: 32
parity: "odd"
database: "journal.db"
log: {
	level:   "debug"
	journal: true
}
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 32, cfg.Limits.Binary)
	assert.Equal(t, 8, cfg.Limits.Hex)
	assert.Equal(t, "journal.db", cfg.Database)
	assert.True(t, cfg.Log.Journal)
	assert.Equal(t, slog.LevelDebug, cfg.Log.SlogLevel())
	assert.Equal(t, parity.Odd, cfg.OpsLimits().Parity)
}

func TestLoad_EmptyPath(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		code string
	}{
		{"syntax", "limits: {", ErrCodeParse},
		{"out of range", "limits: binary: 65", ErrCodeInvalid},
		{"bad parity", `parity: "mark"`, ErrCodeInvalid},
		{"unknown field", "colour: true", ErrCodeInvalid},
		{"wrong type", `min_width: "four"`, ErrCodeInvalid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.src))
			var le *LoadError
			require.ErrorAs(t, err, &le)
			assert.Equal(t, tt.code, le.Code)
			assert.Contains(t, err.Error(), tt.code)
		})
	}
}

func TestLoad_NotFound(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.cue"))
	var le *LoadError
	require.ErrorAs(t, err, &le)
	assert.Equal(t, ErrCodeNotFound, le.Code)
}

func TestLoadError_Position(t *testing.T) {
	path := writeConfig(t, "min_width: 99\n")
	_, err := Load(path)
	var le *LoadError
	require.ErrorAs(t, err, &le)
	assert.True(t, le.Pos.IsValid())
	assert.Equal(t, ErrCodeInvalid, le.Code)
}

func TestResolve(t *testing.T) {
	assert.Equal(t, "custom.cue", Resolve("custom.cue"))

	t.Chdir(t.TempDir())
	assert.Equal(t, "", Resolve(""))
	require.NoError(t, os.WriteFile(DefaultPath, []byte("{}"), 0o644))
	assert.Equal(t, DefaultPath, Resolve(""))
}

func TestSlogLevel(t *testing.T) {
	assert.Equal(t, slog.LevelInfo, Log{}.SlogLevel())
	assert.Equal(t, slog.LevelWarn, Log{Level: "warn"}.SlogLevel())
	assert.Equal(t, slog.LevelError, Log{Level: "error"}.SlogLevel())
}
