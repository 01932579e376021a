package service

import "errors"

var (
	// ErrInvalidCredentials is the single generic authentication failure.
	// Unknown username and wrong password are deliberately indistinguishable
	// to prevent username enumeration.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrTooManyAttempts is returned when the login throttle rejects an
	// attempt before any lookup happens.
	ErrTooManyAttempts = errors.New("too many login attempts")

	// ErrPartialArchive marks a failure between the archive insert and the
	// live delete. The transaction is rolled back, but the caller must know
	// the record was NOT archived rather than see a generic storage error.
	ErrPartialArchive = errors.New("archive incomplete: live record not removed")

	// ErrWeakPassword is returned when a new staff password fails the
	// strength rules.
	ErrWeakPassword = errors.New("password does not meet strength requirements")
)
