// Package errs provides the discriminated error kinds shared by the weigh
// and billing HTTP handlers, replacing broad catch-all error handling with
// explicit, classifiable types each call site can recover from or surface.
package errs

import "fmt"

// Validation reports bad input: a missing field, an unknown direction, a
// malformed date, an unsupported unit, a bad file type.
type Validation struct{ Msg string }

func (e *Validation) Error() string { return e.Msg }

// NewValidation builds a Validation error, optionally formatted.
func NewValidation(format string, args ...any) *Validation {
	return &Validation{Msg: fmt.Sprintf(format, args...)}
}

// Conflict reports a state-machine violation recoverable via force=true,
// e.g. two consecutive "in" transactions for the same truck.
type Conflict struct{ Msg string }

func (e *Conflict) Error() string { return e.Msg }

func NewConflict(format string, args ...any) *Conflict {
	return &Conflict{Msg: fmt.Sprintf(format, args...)}
}

// NotFound reports a referenced truck, provider, session, or item that does
// not exist.
type NotFound struct{ Msg string }

func (e *NotFound) Error() string { return e.Msg }

func NewNotFound(format string, args ...any) *NotFound {
	return &NotFound{Msg: fmt.Sprintf(format, args...)}
}

// Upstream reports a failed or non-OK call to the sister service. The
// billing aggregator treats this as a per-item skip, never as a whole-bill
// failure.
type Upstream struct {
	Msg string
	Err error
}

func (e *Upstream) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *Upstream) Unwrap() error { return e.Err }

func NewUpstream(msg string, err error) *Upstream {
	return &Upstream{Msg: msg, Err: err}
}

// Storage reports an unexpected database failure. The caller's transaction
// is assumed already rolled back by the time this is surfaced.
type Storage struct {
	Msg string
	Err error
}

func (e *Storage) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *Storage) Unwrap() error { return e.Err }

func NewStorage(msg string, err error) *Storage {
	return &Storage{Msg: msg, Err: err}
}
