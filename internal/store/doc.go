// Package store is the SQLite journal of invocations and completions.
//
// The journal is append-only. Records are keyed by content-addressed IDs
// computed in internal/ir, so writing the same record twice is a no-op.
// Each invocation has at most one completion.
//
// Ordering uses the logical seq column only. Every multi-row read orders by
// seq ASC, id COLLATE BINARY ASC so two reads of the same journal return
// identical sequences.
//
// Connections run with WAL journaling, synchronous=NORMAL, a 5 second busy
// timeout and foreign keys enforced. The pool is limited to one connection.
package store
