package spawn

import (
	"errors"
	"fmt"
)

// Expected failure conditions are typed so callers can branch with
// errors.As / errors.Is. Anything else that escapes a repository is an
// unexpected store failure wrapped with context.

// NotFoundError reports that an operation targeted a nonexistent entity.
// No write occurs.
type NotFoundError struct {
	Kind string // "asset", "profile", "spawn", "spawn asset"
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.ID)
}

// ConflictError reports a case-insensitive name collision. No partial
// write occurs.
type ConflictError struct {
	Kind string
	Name string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s name already in use: %q", e.Kind, e.Name)
}

// ValidationError reports a structural mismatch. Non-fatal on load
// (the offending record is dropped), fatal on import.
type ValidationError struct {
	Kind string
	Err  error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %v", e.Kind, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// WriteError reports that the backing store rejected a write, for
// example because its capacity is exhausted.
type WriteError struct {
	Key string
	Err error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("writing %q: %v", e.Key, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

// IsNotFound reports whether err is a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// IsConflict reports whether err is a ConflictError.
func IsConflict(err error) bool {
	var c *ConflictError
	return errors.As(err, &c)
}
