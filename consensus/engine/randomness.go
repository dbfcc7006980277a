package engine

import (
	"context"

	types "github.com/tessera-chain/tessera/consensus-types/primitives"
	"github.com/tessera-chain/tessera/crypto/hash"
)

// RandomnessSource supplies the randomness fixed once per epoch by the external beacon.
type RandomnessSource interface {
	EpochRandomness(ctx context.Context, epoch types.Epoch) ([32]byte, error)
}

// SeededRandomness derives epoch randomness by hashing a fixed seed with the epoch. It stands
// in for a randomness beacon in simulations and tests.
type SeededRandomness [32]byte

// EpochRandomness returns H(seed, epoch).
func (r SeededRandomness) EpochRandomness(_ context.Context, epoch types.Epoch) ([32]byte, error) {
	return hash.HashConcat(r[:], epoch.Bytes8()), nil
}
