// Package bits validates and normalizes positional digit strings and holds
// the bit-level helpers shared by every calculator in digilab.
//
// A digit string is a sequence of symbols from a base's alphabet:
//
//	binary   01
//	octal    01234567
//	decimal  0123456789
//	hex      0123456789ABCDEF
//
// Normalize is strict: a symbol outside the alphabet is an InvalidSymbol
// error, never silently dropped. Filter is the permissive variant for
// live input and is not used by the calculators themselves.
//
// All failures produced by the calculators are *Error values carrying an
// ErrorCode. Match them with errors.Is against the Err* sentinels or
// extract the code with CodeOf.
package bits
