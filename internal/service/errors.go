package service

import "errors"

var (
	// ErrNoteLimitReached is returned when a free account already holds the
	// maximum number of notes and tries to create another.
	ErrNoteLimitReached = errors.New("note limit reached")

	// ErrNotFound is returned when the requested record does not exist or is
	// not owned by the requesting user.
	ErrNotFound = errors.New("record not found")
)
