// Package engine runs registered operations and journals each one.
//
// Every call to Invoke produces exactly one invocation and one completion.
// Both are stamped with sequence numbers from a logical clock and given
// content-addressed IDs, then written to the store in one transaction.
//
// Calculation failures are outcomes, not errors: a handler that returns a
// *bits.Error yields a completion whose output case names the failure.
// Invoke returns an error only when the request itself is unusable
// (unknown operation, bad arguments, session limit) or the store fails;
// nothing is journaled in that case.
//
// Because handlers are pure, a recorded session can be re-executed and
// must reproduce every completion ID. Verify performs that check.
package engine
