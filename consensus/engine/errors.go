package engine

import "github.com/pkg/errors"

var (
	// ErrConsensusHalted is returned by every write once a consistency fault stopped the engine.
	ErrConsensusHalted = errors.New("consensus halted")
	// ErrNoRandomness is returned when the service is built without a randomness source.
	ErrNoRandomness = errors.New("no epoch randomness source")
	// ErrNoGenesis is returned when there is neither saved state nor a genesis to start from.
	ErrNoGenesis = errors.New("no saved state and no genesis configured")
)
