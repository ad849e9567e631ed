// Package dockerr defines the single error type surfaced by every
// failure in the docking workflow. Errors carry a Kind so callers can
// distinguish bad input, external-tool failures and integrity
// violations without string matching.
package dockerr

import (
	"errors"
	"fmt"
)

// Kind classifies a docking failure.
type Kind int

const (
	// KindParse covers bad SMILES, malformed files, failed structural
	// checks and any other input that cannot be turned into a molecule.
	KindParse Kind = iota + 1

	// KindTool covers nonzero exits, missing binaries and empty or
	// unusable output from the external converters and the docking engine.
	KindTool

	// KindIntegrity covers mismatches between the docked pose and the
	// original ligand: failed bond-order reconstruction or a canonical
	// SMILES round trip that does not close.
	KindIntegrity
)

func (k Kind) String() string {
	switch k {
	case KindParse:
		return "parse"
	case KindTool:
		return "tool"
	case KindIntegrity:
		return "integrity"
	}
	return "unknown"
}

// Error is the canonical error type for the whole module.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("docking: %s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("docking: %s: %s", e.Kind, e.Message)
}

// Unwrap returns the underlying cause so errors.Is / errors.As work
// across the chain.
func (e *Error) Unwrap() error { return e.Cause }

// Parse constructs a KindParse error.
func Parse(format string, args ...interface{}) *Error {
	return &Error{Kind: KindParse, Message: fmt.Sprintf(format, args...)}
}

// Tool constructs a KindTool error.
func Tool(format string, args ...interface{}) *Error {
	return &Error{Kind: KindTool, Message: fmt.Sprintf(format, args...)}
}

// Integrity constructs a KindIntegrity error.
func Integrity(format string, args ...interface{}) *Error {
	return &Error{Kind: KindIntegrity, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a cause to a new Error of the given kind.
// Returns nil when cause is nil so it can be used inline.
func Wrap(kind Kind, cause error, format string, args ...interface{}) *Error {
	if cause == nil {
		return nil
	}
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// IsKind reports whether any error in the chain is an *Error of the
// given kind.
func IsKind(err error, kind Kind) bool {
	var de *Error
	for err != nil {
		if errors.As(err, &de) && de.Kind == kind {
			return true
		}
		err = errors.Unwrap(err)
	}
	return false
}

// AsError extracts the first *Error in the chain, or nil.
func AsError(err error) *Error {
	var de *Error
	if errors.As(err, &de) {
		return de
	}
	return nil
}
