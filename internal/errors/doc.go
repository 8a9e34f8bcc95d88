// Package errors provides structured, actionable error messages for weft.
//
// Each error has a unique code (e.g., "E001") that maps to:
//   - A short message describing the error
//   - A detailed explanation
//   - A documentation URL
//
// # Error Categories
//
// Errors are organized into categories:
//   - runtime: store misuse (missing node, type mismatch, selector write, cycle)
//   - config: weft.json problems
//   - cli: command-line usage errors
//   - snapshot: snapshot serialization and archiving errors
//
// # Usage
//
//	err := errors.New("E001").
//	    WithDetailf("node %d was removed when entity %d was destroyed", id, owner).
//	    WithSuggestion("Use TryGet for handles that can outlive their owner")
package errors
