package slashing

import "github.com/pkg/errors"

var (
	// ErrMalformedEvidence is returned for evidence missing a proof or naming an unknown offense.
	ErrMalformedEvidence = errors.New("malformed slashing evidence")
	// ErrDuplicateEvidence is returned when the offense was already recorded or queued.
	ErrDuplicateEvidence = errors.New("duplicate slashing evidence")
	// ErrStaleEvidence is returned for evidence older than the configured evidence window.
	ErrStaleEvidence = errors.New("stale epoch: evidence outside the slashing window")
	// ErrFutureEvidence is returned for evidence from an epoch the set has not reached.
	ErrFutureEvidence = errors.New("evidence from a future epoch")
	// ErrEvidenceQueueFull is returned when the pending evidence queue is at capacity.
	ErrEvidenceQueueFull = errors.New("evidence queue full")
)
