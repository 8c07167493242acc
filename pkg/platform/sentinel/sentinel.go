package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores return these (optionally
// wrapped) so services can translate them into domain errors.
//
// These represent factual states about resources, not validation failures:
// - ErrNotFound: entity does not exist in the store
// - ErrConflict: a uniqueness constraint rejected the write
// - ErrProtected: the row is referenced by another entity and cannot be deleted
// - ErrInvalidState: entity in wrong state for the requested operation
//
// For validation errors (bad input, missing fields), use pkg/domain-errors.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrProtected    = errors.New("protected reference")
	ErrInvalidState = errors.New("invalid state")
)
