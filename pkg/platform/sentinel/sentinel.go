package sentinel

import "errors"

// Sentinel errors for storage facts. Stores return these (optionally wrapped)
// so the registry service can translate them into tagged domain errors.
//
//   - ErrNotFound: record does not exist in the store
//   - ErrAlreadyUsed: a unique key (property id, history sequence) is taken
//   - ErrUnavailable: backing store or sequencer is temporarily unavailable
//
// For precondition failures use pkg/domain-errors directly.
var (
	ErrNotFound    = errors.New("not found")
	ErrAlreadyUsed = errors.New("already used")
	ErrUnavailable = errors.New("unavailable")
)
