// Package pkgerr defines the engine's error taxonomy. Every error that can
// reach the Façade or land in a task's terminal state carries a Kind and a
// localization key; no user-facing strings are formed here — that's the
// caller's job, keyed off Key and Args.
package pkgerr

import (
	"errors"
	"fmt"
)

// Kind enumerates the taxonomy from spec.md §7.
type Kind string

const (
	KindManagerNotFound       Kind = "ManagerNotFound"
	KindCapabilityUnsupported Kind = "CapabilityUnsupported"
	KindInvalidArgument       Kind = "InvalidArgument"
	KindBlockedSafeMode       Kind = "Blocked.SafeMode"
	KindBlockedPinned         Kind = "Blocked.Pinned"
	KindExecutionSpawn        Kind = "Execution.Spawn"
	KindExecutionTimeout      Kind = "Execution.Timeout"
	KindExecutionSignal       Kind = "Execution.Signal"
	KindExecutionNonZeroExit  Kind = "Execution.NonZeroExit"
	KindParseUnexpectedFormat Kind = "Parse.UnexpectedFormat"
	KindParseMissingField     Kind = "Parse.MissingField"
	KindPersistenceIO         Kind = "Persistence.Io"
	KindPersistenceConstraint Kind = "Persistence.Constraint"
	KindPersistenceMigration  Kind = "Persistence.Migration"
	KindPostVerifyFailed      Kind = "PostVerifyFailed"
	KindCanceled              Kind = "Canceled"
	KindInterrupted           Kind = "Interrupted"
	KindUnknown               Kind = "Unknown"
)

// localizationKeys maps each Kind to its default error.* localization key.
// Callers may override with WithKey when a more specific key is warranted
// (e.g. a concrete "error.invalid_package_identifier" instead of the
// generic "error.invalid_argument").
var localizationKeys = map[Kind]string{
	KindManagerNotFound:       "error.manager_not_found",
	KindCapabilityUnsupported: "error.capability_unsupported",
	KindInvalidArgument:       "error.invalid_argument",
	KindBlockedSafeMode:       "error.blocked_safe_mode",
	KindBlockedPinned:         "error.blocked_pinned",
	KindExecutionSpawn:        "error.execution_spawn",
	KindExecutionTimeout:      "error.execution_timeout",
	KindExecutionSignal:       "error.execution_signal",
	KindExecutionNonZeroExit:  "error.execution_nonzero_exit",
	KindParseUnexpectedFormat: "error.parse_unexpected_format",
	KindParseMissingField:     "error.parse_missing_field",
	KindPersistenceIO:         "error.persistence_io",
	KindPersistenceConstraint: "error.persistence_constraint",
	KindPersistenceMigration:  "error.persistence_migration",
	KindPostVerifyFailed:      "error.post_verify_failed",
	KindCanceled:              "error.canceled",
	KindInterrupted:           "error.interrupted",
	KindUnknown:               "error.unknown",
}

// Error is the engine's structured error type. It always wraps an
// underlying error (possibly nil for a purely synthetic failure) and
// carries enough information for the queue to fill in a task's
// (error_key, error_args) without inspecting error strings.
type Error struct {
	Kind Kind
	Key  string
	Args map[string]string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Key, e.Err)
	}
	return e.Key
}

func (e *Error) Unwrap() error { return e.Err }

// New builds an Error of the given kind wrapping err, using the kind's
// default localization key.
func New(kind Kind, err error) *Error {
	return &Error{Kind: kind, Key: localizationKeys[kind], Err: err}
}

// Newf is New with a formatted underlying error.
func Newf(kind Kind, format string, a ...any) *Error {
	return New(kind, fmt.Errorf(format, a...))
}

// WithKey overrides the default localization key, e.g. to distinguish
// "error.invalid_package_identifier" from the generic InvalidArgument key.
func (e *Error) WithKey(key string) *Error {
	e.Key = key
	return e
}

// WithArgs attaches localization arguments.
func (e *Error) WithArgs(args map[string]string) *Error {
	e.Args = args
	return e
}

// KindOf extracts the Kind from err, defaulting to KindUnknown for errors
// that didn't originate from this package (e.g. a panic recovered at an
// FFI-ish boundary, or a bare stdlib error an adapter forgot to wrap).
func KindOf(err error) Kind {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return KindUnknown
}

// KeyAndArgs extracts the localization key and args the queue should record
// on a task's terminal Failed state.
func KeyAndArgs(err error) (string, map[string]string) {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Key, pe.Args
	}
	return localizationKeys[KindUnknown], nil
}

// Recover converts a recovered panic value into an *Error of KindUnknown,
// for use at goroutine/HTTP-handler boundaries that must never let a panic
// escape outward (spec.md §7: "Panics at FFI boundaries are caught and
// converted to Unknown").
func Recover(r any) *Error {
	return Newf(KindUnknown, "recovered panic: %v", r)
}
