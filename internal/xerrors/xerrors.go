// Package xerrors classifies the extractor's error kinds — IoError,
// ParseError, ResolveError, DangleError, and FatalConfigError — so callers
// can branch on the policy each one carries: log-and-skip at the file
// boundary, drop the relation silently, or exit nonzero.
package xerrors

import "fmt"

// Kind distinguishes the five error kinds.
type Kind int

const (
	KindIO Kind = iota
	KindParse
	KindResolve
	KindDangle
	KindFatalConfig
)

func (k Kind) String() string {
	switch k {
	case KindIO:
		return "IoError"
	case KindParse:
		return "ParseError"
	case KindResolve:
		return "ResolveError"
	case KindDangle:
		return "DangleError"
	case KindFatalConfig:
		return "FatalConfigError"
	default:
		return "UnknownError"
	}
}

// Error is a typed error carrying a Kind, the path it concerns (when
// applicable), and the underlying cause.
type Error struct {
	Kind Kind
	Path string
	Err  error
}

func (e *Error) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Path, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// IO wraps a file-unreadable error (log and skip).
func IO(path string, err error) *Error { return &Error{Kind: KindIO, Path: path, Err: err} }

// Parse wraps a syntax-tree-unavailable error (log and skip).
func Parse(path string, err error) *Error { return &Error{Kind: KindParse, Path: path, Err: err} }

// Resolve wraps a name-cannot-be-bound error (drop the relation silently).
func Resolve(name string, err error) *Error { return &Error{Kind: KindResolve, Path: name, Err: err} }

// Dangle wraps a relation-references-absent-entity error (drop at
// serialization).
func Dangle(uniqueName string, err error) *Error {
	return &Error{Kind: KindDangle, Path: uniqueName, Err: err}
}

// FatalConfig wraps a missing-or-unreadable-base-path error (exit nonzero).
func FatalConfig(err error) *Error { return &Error{Kind: KindFatalConfig, Err: err} }
