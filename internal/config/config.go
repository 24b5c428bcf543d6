// Package config loads digilab settings from an optional CUE file
// validated against an embedded schema.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/roach88/digilab/internal/ops"
	"github.com/roach88/digilab/internal/parity"
)

//go:embed schema.cue
var schemaSrc string

// DefaultPath is read when no config path is given and the file exists.
const DefaultPath = "digilab.cue"

// Config is the decoded configuration.
type Config struct {
	Limits   Limits `json:"limits"`
	MinWidth int    `json:"min_width"`
	Parity   string `json:"parity"`
	Database string `json:"database"`
	Log      Log    `json:"log"`
}

// Limits caps operand widths per base.
type Limits struct {
	Binary  int `json:"binary"`
	Octal   int `json:"octal"`
	Decimal int `json:"decimal"`
	Hex     int `json:"hex"`
}

// Log configures the process logger.
type Log struct {
	Level   string `json:"level"`
	File    string `json:"file"`
	Journal bool   `json:"journal"`
}

// Error codes for LoadError.
const (
	ErrCodeParse    = "E004" // CUE source failed to compile
	ErrCodeNotFound = "E005" // config file missing
	ErrCodeInvalid  = "E006" // schema violation
)

// LoadError is a configuration failure, with the CUE position when known.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Default returns the schema defaults.
func Default() Config {
	cfg, err := Parse(nil, "")
	if err != nil {
		panic(fmt.Sprintf("config: embedded schema: %v", err))
	}
	return cfg
}

// Resolve picks the config path: explicit if given, else DefaultPath when
// it exists, else "" for defaults only.
func Resolve(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if _, err := os.Stat(DefaultPath); err == nil {
		return DefaultPath
	}
	return ""
}

// Load reads and validates the CUE file at path. An empty path yields
// the defaults.
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}
	src, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Config{}, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("config file not found: %s", path)}
	}
	if err != nil {
		return Config{}, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("reading config: %v", err)}
	}
	return Parse(src, path)
}

// Parse unifies src with the schema and decodes the result. A nil src
// yields the defaults.
func Parse(src []byte, filename string) (Config, error) {
	ctx := cuecontext.New()
	schema := ctx.CompileString(schemaSrc, cue.Filename("schema.cue")).LookupPath(cue.ParsePath("#Config"))
	if err := schema.Err(); err != nil {
		return Config{}, loadError(ErrCodeParse, err)
	}

	value := schema
	if src != nil {
		file := ctx.CompileBytes(src, cue.Filename(filename))
		if err := file.Err(); err != nil {
			return Config{}, loadError(ErrCodeParse, err)
		}
		value = schema.Unify(file)
	}
	if err := value.Validate(cue.Concrete(true)); err != nil {
		return Config{}, loadError(ErrCodeInvalid, err)
	}

	var cfg Config
	if err := value.Decode(&cfg); err != nil {
		return Config{}, loadError(ErrCodeInvalid, err)
	}
	return cfg, nil
}

func loadError(code string, err error) *LoadError {
	le := &LoadError{Code: code, Message: err.Error()}
	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return le
	}
	le.Message = errs[0].Error()
	if pos := cueerrors.Positions(errs[0]); len(pos) > 0 {
		le.Pos = pos[0]
	}
	return le
}

// OpsLimits converts the configured limits for the operation registry.
func (c Config) OpsLimits() ops.Limits {
	mode, err := parity.ParseMode(c.Parity)
	if err != nil {
		mode = parity.Even
	}
	return ops.Limits{
		Binary:   c.Limits.Binary,
		Octal:    c.Limits.Octal,
		Decimal:  c.Limits.Decimal,
		Hex:      c.Limits.Hex,
		MinWidth: c.MinWidth,
		Parity:   mode,
	}
}

// SlogLevel maps the configured level name to a slog.Level.
func (l Log) SlogLevel() slog.Level {
	switch l.Level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}
