// Package catalog holds the immutable snapshot of the backing source
// directory that a passfs mount serves from.
package catalog

import "errors"

// Sentinel errors for the passfs error taxonomy.
// These errors can be checked with errors.Is() for specific error handling.
var (
	// Source and backing store errors
	ErrSourceUnreadable = errors.New("source directory or backing file unreadable")
	ErrIOFailure        = errors.New("backing store read failure")

	// Resolution errors
	ErrNotFound = errors.New("no such entry")

	// Entry kind errors
	ErrNotADirectory = errors.New("entry is not a directory")
	ErrNotAFile      = errors.New("entry is not a regular file")

	// Access errors
	ErrPermissionDenied = errors.New("filesystem is read-only")
)
