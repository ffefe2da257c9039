// Package fault builds the sentinel errors used across polyscript.
//
// Every package declares its failures as sentinels in an errors.go file. A
// sentinel created with [Kind] carries a containerd errdefs class, so callers
// can branch on the category (errdefs.IsNotFound, errdefs.IsUnavailable, ...)
// without importing the package that raised it. [Wrap] and [Wrapf] attach a
// cause or detail to a sentinel while keeping both visible to errors.Is.
//
// Example usage:
//
//	var ErrUnknownLanguage = fault.Kind("unknown language", errdefs.ErrNotFound)
//
//	return fault.Wrapf(ErrUnknownLanguage, "%q", lang)
package fault

import "fmt"

// Sentinel error tied to an errdefs class.
type kindError struct {
	msg   string
	class error
}

func (e *kindError) Error() string { return e.msg }

func (e *kindError) Unwrap() error { return e.class }

// Creates a sentinel whose message is msg and which unwraps to class.
//
// The class is usually one of the containerd errdefs values. A nil class
// yields a plain sentinel.
func Kind(msg string, class error) error {
	return &kindError{msg: msg, class: class}
}

// Wraps err under sentinel.
//
// The result reads "sentinel: err" and matches both values with errors.Is.
// A nil err returns the sentinel unchanged.
func Wrap(sentinel, err error) error {
	if err == nil {
		return sentinel
	}
	return fmt.Errorf("%w: %w", sentinel, err)
}

// Wraps a formatted detail under sentinel.
//
// The format may itself contain %w verbs.
func Wrapf(sentinel error, format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{sentinel}, args...)...)
}
