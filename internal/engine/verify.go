package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/roach88/digilab/internal/ir"
)

// Mismatch is a recorded value that re-execution did not reproduce.
type Mismatch struct {
	InvocationID string `json:"invocation_id"`
	Op           string `json:"op"`
	Seq          int64  `json:"seq"`
	Field        string `json:"field"`
	Recorded     string `json:"recorded"`
	Replayed     string `json:"replayed"`
}

// Report is the outcome of Verify.
type Report struct {
	Session    string     `json:"session"`
	Checked    int        `json:"checked"`
	Pending    []string   `json:"pending"`
	Mismatches []Mismatch `json:"mismatches"`
}

// Deterministic reports whether every checked exchange was reproduced.
func (r Report) Deterministic() bool {
	return len(r.Mismatches) == 0
}

// Verify re-executes every journaled invocation of session and compares the
// output case and completion ID with what was recorded. Invocation IDs are
// recomputed as well, so edited journal rows are reported.
//
// Operations run against the engine's current registry and limits.
// Invocations without a completion are listed as pending and not run.
func (e *Engine) Verify(ctx context.Context, session string) (Report, error) {
	if e.store == nil {
		return Report{}, errors.New("verify: no journal attached")
	}
	invs, comps, err := e.store.ReadSession(ctx, session)
	if err != nil {
		return Report{}, fmt.Errorf("verify %s: %w", session, err)
	}

	byInvocation := make(map[string]ir.Completion, len(comps))
	for _, c := range comps {
		byInvocation[c.InvocationID] = c
	}

	report := Report{Session: session, Pending: []string{}, Mismatches: []Mismatch{}}
	for _, inv := range invs {
		mismatch := func(field, recorded, replayed string) {
			report.Mismatches = append(report.Mismatches, Mismatch{
				InvocationID: inv.ID,
				Op:           inv.Op,
				Seq:          inv.Seq,
				Field:        field,
				Recorded:     recorded,
				Replayed:     replayed,
			})
		}

		id, err := ir.InvocationID(inv.SessionToken, inv.Op, inv.Args, inv.Seq)
		if err != nil {
			return Report{}, fmt.Errorf("verify %s: %w", inv.ID, err)
		}
		if id != inv.ID {
			mismatch("invocation_id", inv.ID, id)
		}

		comp, ok := byInvocation[inv.ID]
		if !ok {
			report.Pending = append(report.Pending, inv.ID)
			continue
		}
		report.Checked++

		def, ok := e.registry.Lookup(inv.Op)
		if !ok {
			mismatch("op", inv.Op, "not registered")
			continue
		}
		outputCase, result, err := e.execute(def, inv.Args)
		if err != nil {
			mismatch("output_case", comp.OutputCase, err.Error())
			continue
		}
		if outputCase != comp.OutputCase {
			mismatch("output_case", comp.OutputCase, outputCase)
			continue
		}
		replayed, err := ir.CompletionID(inv.ID, outputCase, result, comp.Seq)
		if err != nil {
			return Report{}, fmt.Errorf("verify %s: %w", inv.ID, err)
		}
		if replayed != comp.ID {
			mismatch("completion_id", comp.ID, replayed)
		}
	}

	e.logger.InfoContext(ctx, "session verified",
		"session", session,
		"checked", report.Checked,
		"pending", len(report.Pending),
		"mismatches", len(report.Mismatches))
	return report, nil
}
