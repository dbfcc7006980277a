package engine

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/sirupsen/logrus"
	types "github.com/tessera-chain/tessera/consensus-types/primitives"
)

// RequestActivation registers a validator. It becomes active after the activation delay, at
// the first epoch transition with room under the validator cap.
func (s *Service) RequestActivation(addr common.Address, stake *uint256.Int, commission uint64) error {
	if err := s.checkHalted(); err != nil {
		return err
	}
	s.lock.Lock()
	defer s.lock.Unlock()

	if err := s.set.AddValidator(addr, stake, commission); err != nil {
		return err
	}
	log.WithFields(logrus.Fields{
		"address": addr.Hex(),
		"stake":   stake.ToBig().String(),
	}).Info("Validator requested activation")
	s.persistValidators(s.ctx)
	return nil
}

// RequestExit moves an active validator to PendingExit and returns the epoch it exits at.
func (s *Service) RequestExit(addr common.Address) (types.Epoch, error) {
	if err := s.checkHalted(); err != nil {
		return 0, err
	}
	s.lock.Lock()
	defer s.lock.Unlock()

	exit, err := s.set.RequestExit(addr)
	if err != nil {
		return 0, err
	}
	log.WithFields(logrus.Fields{
		"address":   addr.Hex(),
		"exitEpoch": exit,
	}).Info("Validator requested exit")
	s.persistValidators(s.ctx)
	return exit, nil
}

// UpdateStake applies a signed stake delta. The change reaches elections at the next epoch.
func (s *Service) UpdateStake(addr common.Address, delta *big.Int) error {
	if err := s.checkHalted(); err != nil {
		return err
	}
	s.lock.Lock()
	defer s.lock.Unlock()

	if err := s.set.UpdateStake(addr, delta); err != nil {
		return err
	}
	if err := s.verifyIntegrity(); err != nil {
		return err
	}
	s.persistValidators(s.ctx)
	return nil
}
