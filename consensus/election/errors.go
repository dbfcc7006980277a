package election

import "github.com/pkg/errors"

var (
	// ErrInvalidProducer is returned when a header was produced by someone other than the elected validator.
	ErrInvalidProducer = errors.New("block producer was not elected for slot")
	// ErrNoActiveStake is returned when the snapshot has no active stake to elect from.
	ErrNoActiveStake = errors.New("no active stake to elect a proposer from")
	// ErrSlotOutsideEpoch is returned when an elector is asked about a slot of another epoch.
	ErrSlotOutsideEpoch = errors.New("slot does not belong to the elector's epoch")
	// ErrNilSnapshot is returned when an elector is built without a validator snapshot.
	ErrNilSnapshot = errors.New("nil validator snapshot")
)
