package engine

import (
	"github.com/holiman/uint256"
	"github.com/pkg/errors"
	"github.com/tessera-chain/tessera/consensus-types/blocks"
	types "github.com/tessera-chain/tessera/consensus-types/primitives"
	"github.com/tessera-chain/tessera/consensus/election"
	"github.com/tessera-chain/tessera/consensus/forkchoice"
)

var _ forkchoice.Authority = (*authority)(nil)

// authority resolves a header to the elector of the epoch its slot belongs to.
type authority struct {
	s *Service
}

func (a *authority) elector(slot types.Slot) (*election.Elector, error) {
	epoch := a.s.cfg.chain.SlotToEpoch(slot)
	v, ok := a.s.electors.Get(epoch)
	if !ok {
		return nil, errors.Wrapf(election.ErrInvalidProducer, "no elector for epoch %d", epoch)
	}
	return v.(*election.Elector), nil
}

func (a *authority) ValidateBlockProducer(header *blocks.Header) error {
	if header == nil {
		return blocks.ErrNilHeader
	}
	e, err := a.elector(header.Slot)
	if err != nil {
		return err
	}
	return e.ValidateBlockProducer(header)
}

func (a *authority) ProducerWeight(header *blocks.Header) (*uint256.Int, error) {
	if header == nil {
		return nil, blocks.ErrNilHeader
	}
	e, err := a.elector(header.Slot)
	if err != nil {
		return nil, err
	}
	return e.ProducerWeight(header)
}
