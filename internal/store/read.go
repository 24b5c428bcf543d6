package store

import (
	"context"
	"fmt"

	"github.com/roach88/digilab/internal/ir"
)

const invocationColumns = `id, session_token, op, args, seq, engine_version, ir_version`

const completionColumns = `c.id, c.invocation_id, c.output_case, c.result, c.seq`

type scanner interface {
	Scan(dest ...any) error
}

// ReadSession returns the invocations and completions of a session, each in
// journal order. Unknown sessions yield empty slices.
func (s *Store) ReadSession(ctx context.Context, session string) ([]ir.Invocation, []ir.Completion, error) {
	invs, err := s.queryInvocations(ctx, `
		SELECT `+invocationColumns+`
		FROM invocations
		WHERE session_token = ?
		ORDER BY seq ASC, id COLLATE BINARY ASC
	`, session)
	if err != nil {
		return nil, nil, err
	}
	comps, err := s.queryCompletions(ctx, `
		SELECT `+completionColumns+`
		FROM completions c
		JOIN invocations i ON c.invocation_id = i.id
		WHERE i.session_token = ?
		ORDER BY c.seq ASC, c.id COLLATE BINARY ASC
	`, session)
	if err != nil {
		return nil, nil, err
	}
	return invs, comps, nil
}

// ReadInvocation returns one invocation. A missing ID yields sql.ErrNoRows.
func (s *Store) ReadInvocation(ctx context.Context, id string) (ir.Invocation, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+invocationColumns+` FROM invocations WHERE id = ?`, id)
	return scanInvocation(row)
}

// ReadCompletion returns one completion. A missing ID yields sql.ErrNoRows.
func (s *Store) ReadCompletion(ctx context.Context, id string) (ir.Completion, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+completionColumns+` FROM completions c WHERE c.id = ?`, id)
	return scanCompletion(row)
}

// ReadCompletionFor returns the completion of an invocation, or sql.ErrNoRows.
func (s *Store) ReadCompletionFor(ctx context.Context, invocationID string) (ir.Completion, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+completionColumns+` FROM completions c WHERE c.invocation_id = ?`, invocationID)
	return scanCompletion(row)
}

// PendingInvocations returns the invocations of a session that have no
// completion.
func (s *Store) PendingInvocations(ctx context.Context, session string) ([]ir.Invocation, error) {
	return s.queryInvocations(ctx, `
		SELECT i.id, i.session_token, i.op, i.args, i.seq, i.engine_version, i.ir_version
		FROM invocations i
		LEFT JOIN completions c ON i.id = c.invocation_id
		WHERE i.session_token = ? AND c.id IS NULL
		ORDER BY i.seq ASC, i.id COLLATE BINARY ASC
	`, session)
}

// ListSessions returns every session token, sorted.
func (s *Store) ListSessions(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT DISTINCT session_token FROM invocations
		ORDER BY session_token COLLATE BINARY
	`)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	sessions := []string{}
	for rows.Next() {
		var token string
		if err := rows.Scan(&token); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		sessions = append(sessions, token)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}
	return sessions, nil
}

// LastSeq returns the highest seq in the journal, or 0 when it is empty.
// The engine resumes its clock from here.
func (s *Store) LastSeq(ctx context.Context) (int64, error) {
	var seq int64
	err := s.db.QueryRowContext(ctx, `
		SELECT MAX(
			(SELECT COALESCE(MAX(seq), 0) FROM invocations),
			(SELECT COALESCE(MAX(seq), 0) FROM completions)
		)
	`).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("last seq: %w", err)
	}
	return seq, nil
}

// CountOutcomes counts the completions of a session with the given output
// case.
func (s *Store) CountOutcomes(ctx context.Context, session, outputCase string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*)
		FROM completions c
		JOIN invocations i ON c.invocation_id = i.id
		WHERE i.session_token = ? AND c.output_case = ?
	`, session, outputCase).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count outcomes: %w", err)
	}
	return n, nil
}

func (s *Store) queryInvocations(ctx context.Context, query string, args ...any) ([]ir.Invocation, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query invocations: %w", err)
	}
	defer rows.Close()

	invs := []ir.Invocation{}
	for rows.Next() {
		inv, err := scanInvocation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan invocation: %w", err)
		}
		invs = append(invs, inv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate invocations: %w", err)
	}
	return invs, nil
}

func (s *Store) queryCompletions(ctx context.Context, query string, args ...any) ([]ir.Completion, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query completions: %w", err)
	}
	defer rows.Close()

	comps := []ir.Completion{}
	for rows.Next() {
		comp, err := scanCompletion(rows)
		if err != nil {
			return nil, fmt.Errorf("scan completion: %w", err)
		}
		comps = append(comps, comp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate completions: %w", err)
	}
	return comps, nil
}

// scanInvocation returns the row's Scan error unwrapped so callers can
// match sql.ErrNoRows.
func scanInvocation(row scanner) (ir.Invocation, error) {
	var inv ir.Invocation
	var args string
	if err := row.Scan(&inv.ID, &inv.SessionToken, &inv.Op, &args, &inv.Seq, &inv.EngineVersion, &inv.IRVersion); err != nil {
		return ir.Invocation{}, err
	}
	obj, err := decodeObject(args)
	if err != nil {
		return ir.Invocation{}, fmt.Errorf("invocation %s args: %w", inv.ID, err)
	}
	inv.Args = obj
	return inv, nil
}

func scanCompletion(row scanner) (ir.Completion, error) {
	var comp ir.Completion
	var result string
	if err := row.Scan(&comp.ID, &comp.InvocationID, &comp.OutputCase, &result, &comp.Seq); err != nil {
		return ir.Completion{}, err
	}
	obj, err := decodeObject(result)
	if err != nil {
		return ir.Completion{}, fmt.Errorf("completion %s result: %w", comp.ID, err)
	}
	comp.Result = obj
	return comp, nil
}
