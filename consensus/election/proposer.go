// Package election implements deterministic, stake-weighted selection of the block producer
// for a slot. The result is a pure function of the validator snapshot, the epoch, the slot and
// the epoch randomness.
package election

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/pkg/errors"
	types "github.com/tessera-chain/tessera/consensus-types/primitives"
	"github.com/tessera-chain/tessera/consensus/validators"
	"github.com/tessera-chain/tessera/crypto/hash"
)

// Seed returns sha256(epoch || slot || randomness) with epoch and slot as 8-byte little-endian integers.
func Seed(epoch types.Epoch, slot types.Slot, randomness [32]byte) [32]byte {
	return hash.HashConcat(epoch.Bytes8(), slot.Bytes8(), randomness[:])
}

// ElectProposer returns the validator elected for the slot: the seed modulo the total active
// stake picks a point on the cumulative stake of the active validators sorted by address.
func ElectProposer(snap *validators.Snapshot, epoch types.Epoch, slot types.Slot, randomness [32]byte) (common.Address, error) {
	if snap == nil {
		return common.Address{}, ErrNilSnapshot
	}
	total := snap.TotalActiveStake()
	if total.IsZero() {
		return common.Address{}, ErrNoActiveStake
	}
	seed := Seed(epoch, slot, randomness)
	target := new(uint256.Int).SetBytes(seed[:])
	target.Mod(target, total)
	return SelectByCumulativeStake(snap.Active(), target)
}

// SelectByCumulativeStake walks the validators in order, accumulating stake, and returns the
// first one whose running sum exceeds target.
func SelectByCumulativeStake(active []validators.Validator, target *uint256.Int) (common.Address, error) {
	cumulative := new(uint256.Int)
	for i := range active {
		cumulative.Add(cumulative, &active[i].Stake)
		if cumulative.Gt(target) {
			return active[i].Address, nil
		}
	}
	return common.Address{}, errors.Wrapf(ErrNoActiveStake, "target %s beyond cumulative stake %s", target.ToBig(), cumulative.ToBig())
}
