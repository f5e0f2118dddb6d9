package sentinel

import "errors"

// Sentinel errors for record-store facts. Stores return these (optionally
// wrapped) and services translate them into domain errors.
//
//   - ErrNotFound: the row does not exist
//   - ErrConflict: an optimistic status precondition no longer holds
//   - ErrAlreadyUsed: a unique key (application number, certificate number,
//     RC number, one-active-request index) is already taken
//   - ErrInvalidState: the row is in the wrong state for the operation
//   - ErrUnavailable: a backing service is temporarily unavailable
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrAlreadyUsed  = errors.New("already used")
	ErrInvalidState = errors.New("invalid state")
	ErrUnavailable  = errors.New("unavailable")
)
