// Package harness runs worksheets: YAML files listing operations to invoke,
// the outcome each should produce, and assertions over the resulting
// journal.
//
// # Worksheet Format
//
//	name: twos_basics
//	description: "Subtraction by two's complement"
//	session: ws-twos-basics
//	steps:
//	  - invoke: twos.subtract
//	    args: { minuend: "1010", subtrahend: "0011" }
//	    expect:
//	      case: Success
//	      result: { result: "0111", overflow_carry: true }
//	  - invoke: convert
//	    args: { value: "102", from: binary, to: decimal }
//	    expect:
//	      case: InvalidSymbol
//	assertions:
//	  - type: trace_contains
//	    op: twos.subtract
//	    args: { minuend: "1010" }
//	  - type: trace_order
//	    ops: [twos.subtract, convert]
//	  - type: trace_count
//	    op: convert
//	    count: 1
//	  - type: outcome_count
//	    case: InvalidSymbol
//	    count: 1
//
// Expected results are subset matches: only the listed fields are compared,
// recursively for nested objects.
//
// Each worksheet runs against a fresh in-memory journal with a
// deterministic clock and the worksheet's session token, so the trace is
// byte-stable and can be compared with a golden snapshot.
package harness
