package cli

import (
	"context"
	"fmt"

	"github.com/roach88/digilab/internal/config"
	"github.com/roach88/digilab/internal/engine"
	"github.com/roach88/digilab/internal/ops"
	"github.com/roach88/digilab/internal/store"
)

// workspace is an engine plus the journal it writes to, if any.
type workspace struct {
	engine *engine.Engine
	store  *store.Store
}

func (w *workspace) Close() error {
	if w.store == nil {
		return nil
	}
	return w.store.Close()
}

// opsLimits returns the configured limits, or the defaults when no
// configuration was loaded.
func (o *RootOptions) opsLimits() ops.Limits {
	if o.Config == (config.Config{}) {
		return ops.DefaultLimits()
	}
	return o.Config.OpsLimits()
}

// openWorkspace builds an engine for a command. With a database the
// engine journals to it, and --session resumes an existing session.
func (o *RootOptions) openWorkspace(ctx context.Context) (*workspace, error) {
	w := &workspace{}
	engineOpts := []engine.Option{engine.WithLogger(o.logger())}
	if o.Database != "" {
		st, err := store.Open(o.Database)
		if err != nil {
			return nil, WrapExitError(ExitCommandError, "failed to open database", err)
		}
		w.store = st
		engineOpts = append(engineOpts, engine.WithStore(st))
	}

	eng, err := engine.New(ctx, ops.NewRegistry(o.opsLimits()), engineOpts...)
	if err != nil {
		w.Close()
		return nil, WrapExitError(ExitCommandError, "failed to start engine", err)
	}
	if o.Session != "" {
		if err := eng.Resume(ctx, o.Session); err != nil {
			w.Close()
			return nil, WrapExitError(ExitCommandError, fmt.Sprintf("failed to resume session %s", o.Session), err)
		}
	}
	w.engine = eng
	return w, nil
}

// openStore opens the journal for read-only commands.
func (o *RootOptions) openStore() (*store.Store, error) {
	if o.Database == "" {
		return nil, NewExitError(ExitCommandError, "no database: set --db or database in the config")
	}
	st, err := store.Open(o.Database)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open database", err)
	}
	return st, nil
}
