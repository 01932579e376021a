package db

import (
	"errors"
	"fmt"
)

// Common database errors, matched with errors.Is by every caller.
var (
	// ErrNoRecord is the NotFound outcome for reads and exports.
	ErrNoRecord = errors.New("no matching record found")

	// ErrConstraint covers uniqueness and foreign-key violations on writes.
	ErrConstraint = errors.New("constraint violation")

	// ErrForeignKeyViolation narrows ErrConstraint for broken patient
	// references; errors.Is against ErrConstraint also holds.
	ErrForeignKeyViolation = fmt.Errorf("%w: foreign key reference", ErrConstraint)

	// ErrUnavailable means the store cannot be reached at all, including
	// a missing or wrong encryption key. The connection fails closed.
	ErrUnavailable = errors.New("database unavailable")
)
