package validators

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// maxStakeBits bounds stakes to unsigned 128-bit values.
const maxStakeBits = 128

// Validator is a single entry of the validator set. Stake is held by value so
// copies of a Validator never alias each other.
type Validator struct {
	Address    common.Address
	Stake      uint256.Int
	Commission uint64
	Status     Status
}

// Copy returns a copy of the validator.
func (v *Validator) Copy() *Validator {
	if v == nil {
		return nil
	}
	cp := *v
	return &cp
}

// StakeBig returns the stake as a big integer.
func (v *Validator) StakeBig() *big.Int {
	return v.Stake.ToBig()
}

func checkStakeWidth(stake *uint256.Int) error {
	if stake.BitLen() > maxStakeBits {
		return ErrStakeOverflow
	}
	return nil
}
