// Package ir defines the journal records exchanged between the operation
// registry, the engine and the store.
//
// Values are restricted to string, int64, bool, array and object so that
// every record has exactly one canonical JSON encoding and a stable
// content-addressed ID. There are no floats and no wall-clock timestamps;
// ordering comes from a logical sequence number.
//
// ir imports nothing internal.
package ir
