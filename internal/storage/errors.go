package storage

import "errors"

// Storage-level error sentinels shared by all backends. Repositories
// translate driver-specific failures into these so domain code can
// classify them without knowing the backend.
var (
	// ErrNotFound reports that the requested row does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrDuplicateKey reports a uniqueness-constraint violation. For the
	// votes table this is the authoritative one-vote-per-election backstop:
	// the ledger translates it into the already-voted domain error.
	ErrDuplicateKey = errors.New("duplicate key violates unique constraint")
)
