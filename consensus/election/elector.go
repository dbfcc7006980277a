package election

import (
	"github.com/ethereum/go-ethereum/common"
	lru "github.com/hashicorp/golang-lru"
	"github.com/holiman/uint256"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/tessera-chain/tessera/config/params"
	"github.com/tessera-chain/tessera/consensus-types/blocks"
	types "github.com/tessera-chain/tessera/consensus-types/primitives"
	"github.com/tessera-chain/tessera/consensus/validators"
)

// Elector answers proposer queries for the slots of one epoch from a frozen validator snapshot.
// It is safe for concurrent use.
type Elector struct {
	cfg        *params.ConsensusConfig
	epoch      types.Epoch
	snap       *validators.Snapshot
	randomness [32]byte
	proposers  *lru.Cache
}

// NewElector returns an elector for the epoch the snapshot was taken at.
func NewElector(cfg *params.ConsensusConfig, snap *validators.Snapshot, randomness [32]byte) (*Elector, error) {
	if snap == nil {
		return nil, ErrNilSnapshot
	}
	cache, err := lru.New(cfg.ProposerCacheSize)
	if err != nil {
		return nil, errors.Wrap(err, "could not create proposer cache")
	}
	return &Elector{
		cfg:        cfg,
		epoch:      snap.Epoch(),
		snap:       snap,
		randomness: randomness,
		proposers:  cache,
	}, nil
}

// Epoch of the elector.
func (e *Elector) Epoch() types.Epoch {
	return e.epoch
}

// Snapshot returns the frozen validator snapshot backing the elector.
func (e *Elector) Snapshot() *validators.Snapshot {
	return e.snap
}

// Randomness returns the epoch randomness the elector was built with.
func (e *Elector) Randomness() [32]byte {
	return e.randomness
}

// ProposerAt returns the validator elected for the slot.
func (e *Elector) ProposerAt(slot types.Slot) (common.Address, error) {
	if e.cfg.SlotToEpoch(slot) != e.epoch {
		return common.Address{}, errors.Wrapf(ErrSlotOutsideEpoch, "slot %d, epoch %d", slot, e.epoch)
	}
	if cached, ok := e.proposers.Get(slot); ok {
		proposerCacheHit.Inc()
		return cached.(common.Address), nil
	}
	proposerCacheMiss.Inc()
	proposer, err := ElectProposer(e.snap, e.epoch, slot, e.randomness)
	if err != nil {
		return common.Address{}, err
	}
	e.proposers.Add(slot, proposer)
	log.WithFields(logrus.Fields{
		"epoch":    e.epoch,
		"slot":     slot,
		"proposer": proposer.Hex(),
	}).Debug("Elected proposer")
	return proposer, nil
}

// ValidateBlockProducer recomputes the proposer of the header's slot and fails with
// ErrInvalidProducer when it is not the header's producer.
func (e *Elector) ValidateBlockProducer(header *blocks.Header) error {
	if header == nil {
		return blocks.ErrNilHeader
	}
	expected, err := e.ProposerAt(header.Slot)
	if err != nil {
		return errors.Wrap(ErrInvalidProducer, err.Error())
	}
	if expected != header.Producer {
		invalidProducerCount.Inc()
		return errors.Wrapf(ErrInvalidProducer, "slot %d: expected %s, got %s", header.Slot, expected.Hex(), header.Producer.Hex())
	}
	return nil
}

// IsValidProducer reports whether the header's producer was elected for its slot.
func (e *Elector) IsValidProducer(header *blocks.Header) bool {
	return e.ValidateBlockProducer(header) == nil
}

// ProducerWeight returns the active stake of the header's producer in the elector's snapshot.
func (e *Elector) ProducerWeight(header *blocks.Header) (*uint256.Int, error) {
	if header == nil {
		return nil, blocks.ErrNilHeader
	}
	stake, ok := e.snap.ActiveStake(header.Producer)
	if !ok {
		return nil, errors.Wrapf(ErrInvalidProducer, "producer %s is not active", header.Producer.Hex())
	}
	return &stake, nil
}
