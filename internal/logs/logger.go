// Package logs builds the process logger: a terminal handler, an optional
// JSON log file and an optional systemd journal handler, fanned out with
// slog-multi.
package logs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	slogmulti "github.com/samber/slog-multi"
	slogjournal "github.com/systemd/slog-journal"
)

// Options configures New.
type Options struct {
	// Writer receives human-readable output. Defaults to os.Stderr.
	Writer io.Writer

	// Level is the initial minimum level for every handler.
	Level slog.Level

	// File, if set, receives JSON records appended to it.
	File string

	// Journal enables the systemd journal handler.
	Journal bool
}

// Logger is a slog.Logger whose level can be changed after construction.
type Logger struct {
	*slog.Logger
	level *slog.LevelVar
	file  *os.File
}

// New builds a Logger from opts. A journal that cannot be reached is
// reported on the terminal handler and skipped.
func New(opts Options) (*Logger, error) {
	level := new(slog.LevelVar)
	level.Set(opts.Level)

	writer := opts.Writer
	if writer == nil {
		writer = os.Stderr
	}
	terminal := slog.NewTextHandler(writer, &slog.HandlerOptions{Level: level})
	handlers := []slog.Handler{terminal}

	l := &Logger{level: level}
	if opts.File != "" {
		f, err := os.OpenFile(opts.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		l.file = f
		handlers = append(handlers, slog.NewJSONHandler(f, &slog.HandlerOptions{Level: level}))
	}

	if opts.Journal {
		journal, err := slogjournal.NewHandler(&slogjournal.Options{
			Level: level,
			ReplaceGroup: func(key string) string {
				return journalKey(key)
			},
			ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
				a.Key = journalKey(a.Key)
				return a
			},
		})
		if err != nil {
			record := slog.NewRecord(time.Now(), slog.LevelWarn, "new systemd journal handler", 0)
			record.Add("error", err)
			_ = terminal.Handle(context.Background(), record)
		} else {
			handlers = append(handlers, journal)
		}
	}

	l.Logger = slog.New(slogmulti.Fanout(handlers...))
	return l, nil
}

// SetLevel changes the minimum level of every handler.
func (l *Logger) SetLevel(level slog.Level) {
	l.level.Set(level)
}

// Level returns the current minimum level.
func (l *Logger) Level() slog.Level {
	return l.level.Level()
}

// Close closes the log file, if any.
func (l *Logger) Close() error {
	if l == nil || l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	if errors.Is(err, os.ErrClosed) {
		return nil
	}
	return err
}

// journalKey maps an attribute key to a valid journal field name.
func journalKey(key string) string {
	return strings.Map(func(r rune) rune {
		if r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' {
			return r
		}
		return '_'
	}, strings.ToUpper(key))
}
