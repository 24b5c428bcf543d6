package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roach88/digilab/internal/ir"
)

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// WriteInvocation journals inv. Writing an ID that already exists is a no-op.
func (s *Store) WriteInvocation(ctx context.Context, inv ir.Invocation) error {
	if err := writeInvocation(ctx, s.db, inv); err != nil {
		return fmt.Errorf("write invocation: %w", err)
	}
	return nil
}

// WriteCompletion journals comp. A second completion for the same invocation
// is silently ignored; the invocation must already exist.
func (s *Store) WriteCompletion(ctx context.Context, comp ir.Completion) error {
	if err := writeCompletion(ctx, s.db, comp); err != nil {
		return fmt.Errorf("write completion: %w", err)
	}
	return nil
}

// WriteExchange journals an invocation and its completion in one transaction,
// so a crash never leaves a completion without its invocation.
func (s *Store) WriteExchange(ctx context.Context, inv ir.Invocation, comp ir.Completion) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("write exchange: begin: %w", err)
	}
	defer tx.Rollback()

	if err := writeInvocation(ctx, tx, inv); err != nil {
		return fmt.Errorf("write exchange: invocation: %w", err)
	}
	if err := writeCompletion(ctx, tx, comp); err != nil {
		return fmt.Errorf("write exchange: completion: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("write exchange: commit: %w", err)
	}
	return nil
}

func writeInvocation(ctx context.Context, db execer, inv ir.Invocation) error {
	args, err := encodeObject(inv.Args)
	if err != nil {
		return fmt.Errorf("args: %w", err)
	}
	_, err = db.ExecContext(ctx, `
		INSERT INTO invocations
		(id, session_token, op, args, seq, engine_version, ir_version)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`, inv.ID, inv.SessionToken, inv.Op, args, inv.Seq, inv.EngineVersion, inv.IRVersion)
	return err
}

func writeCompletion(ctx context.Context, db execer, comp ir.Completion) error {
	result, err := encodeObject(comp.Result)
	if err != nil {
		return fmt.Errorf("result: %w", err)
	}
	_, err = db.ExecContext(ctx, `
		INSERT INTO completions
		(id, invocation_id, output_case, result, seq)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT DO NOTHING
	`, comp.ID, comp.InvocationID, comp.OutputCase, result, comp.Seq)
	return err
}
