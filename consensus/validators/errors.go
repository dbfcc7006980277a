package validators

import "github.com/pkg/errors"

var (
	// ErrInsufficientStake is returned when a stake would sit below the configured minimum.
	ErrInsufficientStake = errors.New("stake below minimum validator stake")
	// ErrDuplicateValidator is returned when the address is already registered, tombstones included.
	ErrDuplicateValidator = errors.New("validator already registered")
	// ErrValidatorNotFound is returned when no validator exists for the address.
	ErrValidatorNotFound = errors.New("validator not found")
	// ErrStakeUnderflow is returned when a stake update would make a stake negative.
	ErrStakeUnderflow = errors.New("stake update would underflow")
	// ErrStakeOverflow is returned when a stake would not fit in 128 bits.
	ErrStakeOverflow = errors.New("stake exceeds 128 bits")
	// ErrInvalidCommission is returned when the commission exceeds the configured maximum.
	ErrInvalidCommission = errors.New("invalid commission")
	// ErrStaleEpoch is returned when asked to move the set to an epoch at or before its current one.
	ErrStaleEpoch = errors.New("stale epoch")
	// ErrInvalidTransition is returned when a status change is not allowed from the validator's current status.
	ErrInvalidTransition = errors.New("invalid validator status transition")
	// ErrActiveSetFull is returned when a validator cannot rejoin an active set already at MaxValidators.
	ErrActiveSetFull = errors.New("active validator set is full")

	// ErrNegativeStake is a consistency fault: stake accounting tried to go below zero.
	ErrNegativeStake = errors.New("negative stake detected")
	// ErrStakeAccountingMismatch is a consistency fault: total active stake disagrees with the active validators.
	ErrStakeAccountingMismatch = errors.New("total active stake does not match active validators")
	// ErrActiveBelowMinimum is a consistency fault: an active validator holds less than the minimum stake.
	ErrActiveBelowMinimum = errors.New("active validator below minimum stake")
)

// IsConsistencyFault reports whether err signals broken validator set bookkeeping.
func IsConsistencyFault(err error) bool {
	return errors.Is(err, ErrNegativeStake) ||
		errors.Is(err, ErrStakeAccountingMismatch) ||
		errors.Is(err, ErrActiveBelowMinimum)
}
