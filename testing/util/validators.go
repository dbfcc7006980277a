// Package util provides helpers for building validator sets and header chains in tests.
package util

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/tessera-chain/tessera/config/params"
	"github.com/tessera-chain/tessera/consensus/validators"
	"github.com/tessera-chain/tessera/testing/require"
)

// Address returns a deterministic validator address for index i. Addresses sort in index order.
func Address(i int) common.Address {
	return common.BigToAddress(uint256.NewInt(uint64(i) + 1).ToBig())
}

// NewValidatorSet returns a set at epoch zero whose genesis validators hold the given stakes,
// the i-th validator at Address(i).
func NewValidatorSet(t testing.TB, cfg *params.ConsensusConfig, stakes ...uint64) *validators.Set {
	s := validators.NewSet(cfg, 0)
	for i, st := range stakes {
		require.NoError(t, s.AddGenesisValidator(Address(i), uint256.NewInt(st), 0))
	}
	return s
}

// NewSnapshot returns the snapshot of a set built by NewValidatorSet.
func NewSnapshot(t testing.TB, cfg *params.ConsensusConfig, stakes ...uint64) *validators.Snapshot {
	return NewValidatorSet(t, cfg, stakes...).Snapshot()
}

// TestConfig returns the minimal config with a low minimum stake suited to small-number scenarios.
func TestConfig() *params.ConsensusConfig {
	cfg := params.MinimalSpecConfig()
	cfg.MinValidatorStake = 1
	return cfg
}
