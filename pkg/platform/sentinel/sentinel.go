package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores and cache layers return
// these (optionally wrapped) so services can translate them into domain errors.
//
// These represent factual states about resources, not validation failures:
// - ErrNotFound: record does not exist in the store or cache
// - ErrConflict: a uniqueness constraint rejected the write
// - ErrUnavailable: backing service temporarily unreachable
//
// For validation errors (bad input, missing fields), use pkg/domain-errors directly.
var (
	ErrNotFound    = errors.New("not found")
	ErrConflict    = errors.New("conflict")
	ErrUnavailable = errors.New("unavailable")
)
