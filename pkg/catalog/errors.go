package catalog

import "errors"

var (
	// ErrCorrupt means the persisted catalog document could not be parsed.
	ErrCorrupt = errors.New("catalog document is corrupt")
	// ErrDuplicateID means a record with the same identifier already exists.
	ErrDuplicateID = errors.New("duplicate paper identifier")
	// ErrNotFound means no record with the given identifier exists.
	ErrNotFound = errors.New("paper not found")
	// ErrInvalidRecord means a record is missing required attributes.
	ErrInvalidRecord = errors.New("invalid paper record")
)
