package harness

import "github.com/roach88/digilab/internal/ir"

// Trace event types.
const (
	EventInvocation = "invocation"
	EventCompletion = "completion"
)

// TraceEvent is one journal record as it appears in a trace.
type TraceEvent struct {
	Type       string      `json:"type"`
	Op         string      `json:"op"`
	Args       ir.IRObject `json:"args,omitempty"`
	OutputCase string      `json:"output_case,omitempty"`
	Result     ir.IRObject `json:"result,omitempty"`
	Seq        int64       `json:"seq"`
}

// Result is the outcome of running a worksheet.
type Result struct {
	// Pass is true when every step matched its expectation and every
	// assertion held.
	Pass bool `json:"pass"`

	// Session is the token the worksheet ran under.
	Session string `json:"session"`

	// Trace holds the journal in seq order.
	Trace []TraceEvent `json:"trace"`

	// Errors lists every failed expectation and assertion.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a passing result.
func NewResult(session string) *Result {
	return &Result{
		Pass:    true,
		Session: session,
		Trace:   []TraceEvent{},
		Errors:  []string{},
	}
}

// AddError records a failure and marks the result failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
