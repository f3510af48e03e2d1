/*
Package parser turns a line-oriented sequence-diagram description into a
domain.Diagram.

The parser targets a practical subset of the usual sequence-diagram syntax:
entity declarations, directed messages with optional labels, activation
markers and notes. Lines it does not recognize are dropped; it never fails on
malformed input, and a result with zero entities is a valid, empty diagram.

Matching is driven by an ordered pattern catalog (see Markers). Ambiguous
lines always resolve the same way because the catalog order is fixed.

	d := parser.Parse(`actor "User" as U
	U -> S: go`)
	// d.Entities: U (actor, "User"), S (participant)
*/
package parser
