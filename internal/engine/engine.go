package engine

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/roach88/digilab/internal/ir"
	"github.com/roach88/digilab/internal/ops"
	"github.com/roach88/digilab/internal/store"
)

// Engine runs operations from a registry and journals them.
//
// Invocations are processed one at a time; an Engine must not be shared
// between goroutines without external locking.
type Engine struct {
	registry *ops.Registry
	store    *store.Store
	clock    SeqSource
	sessions SessionTokenGenerator
	session  string
	quota    *quota
	logger   *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithStore journals every exchange to s.
func WithStore(s *store.Store) Option {
	return func(e *Engine) {
		e.store = s
	}
}

// WithClock replaces the logical clock. Without it the clock resumes after
// the store's last sequence number.
func WithClock(c SeqSource) Option {
	return func(e *Engine) {
		e.clock = c
	}
}

// WithSessionGenerator replaces the UUIDv7 session token generator.
func WithSessionGenerator(g SessionTokenGenerator) Option {
	return func(e *Engine) {
		e.sessions = g
	}
}

// WithMaxInvocations sets the per-session invocation limit. Zero disables it.
func WithMaxInvocations(n int) Option {
	return func(e *Engine) {
		e.quota = newQuota(n)
	}
}

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = l
	}
}

// New creates an Engine over registry and opens a fresh session.
func New(ctx context.Context, registry *ops.Registry, opts ...Option) (*Engine, error) {
	e := &Engine{
		registry: registry,
		sessions: UUIDv7Generator{},
		quota:    newQuota(DefaultMaxInvocations),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}

	if e.clock == nil {
		var last int64
		if e.store != nil {
			var err error
			if last, err = e.store.LastSeq(ctx); err != nil {
				return nil, fmt.Errorf("resume clock: %w", err)
			}
		}
		e.clock = NewClockAt(last)
	}
	e.session = e.sessions.Generate()
	return e, nil
}

// Registry returns the engine's operations.
func (e *Engine) Registry() *ops.Registry {
	return e.registry
}

// Session returns the current session token.
func (e *Engine) Session() string {
	return e.session
}

// NewSession starts a new session and returns its token.
func (e *Engine) NewSession() string {
	e.session = e.sessions.Generate()
	return e.session
}

// Resume continues an existing session. With a store attached, the
// session's journaled invocations count toward its limit.
func (e *Engine) Resume(ctx context.Context, session string) error {
	if e.store != nil {
		state, err := e.store.SessionState(ctx, session)
		if err != nil {
			return fmt.Errorf("resume %s: %w", session, err)
		}
		e.quota.seed(session, len(state.Invocations))
	}
	e.session = session
	return nil
}

// Invoke runs op with args in the current session and returns its
// completion.
//
// A calculation failure is returned as a completion with a failure output
// case and a nil error. The returned error is a *RuntimeError for a
// request that cannot run, or a store failure.
func (e *Engine) Invoke(ctx context.Context, op string, args ir.IRObject) (ir.Completion, error) {
	def, ok := e.registry.Lookup(op)
	if !ok {
		return ir.Completion{}, newUnknownOp(op, e.session)
	}
	if args == nil {
		args = ir.IRObject{}
	}

	outputCase, result, err := e.execute(def, args)
	if err != nil {
		return ir.Completion{}, err
	}
	if err := e.quota.take(op, e.session); err != nil {
		return ir.Completion{}, err
	}

	seq := e.clock.Next()
	invID, err := ir.InvocationID(e.session, op, args, seq)
	if err != nil {
		return ir.Completion{}, fmt.Errorf("invocation id: %w", err)
	}
	inv := ir.Invocation{
		ID:            invID,
		SessionToken:  e.session,
		Op:            op,
		Args:          args,
		Seq:           seq,
		EngineVersion: ir.EngineVersion,
		IRVersion:     ir.IRVersion,
	}
	e.logger.DebugContext(ctx, "invocation", "op", op, "session", e.session, "seq", seq)

	compSeq := e.clock.Next()
	compID, err := ir.CompletionID(invID, outputCase, result, compSeq)
	if err != nil {
		return ir.Completion{}, fmt.Errorf("completion id: %w", err)
	}
	comp := ir.Completion{
		ID:           compID,
		InvocationID: invID,
		OutputCase:   outputCase,
		Result:       result,
		Seq:          compSeq,
	}

	if e.store != nil {
		if err := e.store.WriteExchange(ctx, inv, comp); err != nil {
			return ir.Completion{}, fmt.Errorf("journal %s: %w", op, err)
		}
	}
	e.logger.DebugContext(ctx, "completion", "op", op, "session", e.session, "seq", compSeq, "case", outputCase)
	return comp, nil
}
