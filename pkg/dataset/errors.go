package dataset

import "errors"

// Sentinel errors returned by the loader and frame operations. Callers
// match them with errors.Is; messages carry the specific context.
var (
	// ErrDataUnavailable indicates a remote fetch failed and no cached
	// copy exists for the requested year/split.
	ErrDataUnavailable = errors.New("dataset unavailable")

	// ErrSchemaMismatch indicates expected sensor columns are absent or
	// two frames disagree on their sensor schema.
	ErrSchemaMismatch = errors.New("schema mismatch")

	// ErrInvalidConfiguration indicates an unknown year or split name.
	ErrInvalidConfiguration = errors.New("invalid configuration")
)
