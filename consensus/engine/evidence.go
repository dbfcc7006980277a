package engine

import (
	"github.com/pkg/errors"
	"github.com/tessera-chain/tessera/consensus/slashing"
	"github.com/tessera-chain/tessera/consensus/validators"
)

// SubmitEvidence validates the evidence and applies its penalty immediately. A severe
// offense jails the offender at the next epoch transition.
func (s *Service) SubmitEvidence(e *slashing.Evidence) (*slashing.PenaltyOutcome, error) {
	if err := s.checkHalted(); err != nil {
		return nil, err
	}
	s.lock.Lock()
	defer s.lock.Unlock()

	outcome, err := s.slasher.SubmitEvidence(e)
	if err != nil {
		if validators.IsConsistencyFault(err) {
			s.halt(err)
			return nil, errors.Wrap(ErrConsensusHalted, err.Error())
		}
		return nil, err
	}
	if err := s.verifyIntegrity(); err != nil {
		return nil, err
	}
	s.persistValidators(s.ctx)
	return outcome, nil
}

// QueueEvidence hands evidence to the writer without waiting for the writer lock. It may be
// called from any goroutine and fails with slashing.ErrEvidenceQueueFull at capacity.
func (s *Service) QueueEvidence(e *slashing.Evidence) error {
	if err := s.checkHalted(); err != nil {
		return err
	}
	return s.slasher.QueueEvidence(e)
}

// PendingEvidence returns the number of queued evidence objects.
func (s *Service) PendingEvidence() int {
	return s.slasher.PendingCount()
}

// SlashingRecords returns the audit log of applied evidence.
func (s *Service) SlashingRecords() []slashing.Record {
	return s.slasher.Records()
}

// flushEvidence applies queued evidence outside an epoch transition.
func (s *Service) flushEvidence() {
	if s.Status() != nil || s.slasher.PendingCount() == 0 {
		return
	}
	s.lock.Lock()
	defer s.lock.Unlock()
	if err := s.applyPendingEvidence(); err != nil {
		log.WithError(err).Error("Could not apply queued evidence")
		return
	}
	s.persistValidators(s.ctx)
}

// applyPendingEvidence must be called with the writer lock held.
func (s *Service) applyPendingEvidence() error {
	outcomes, err := s.slasher.ApplyPending()
	if err != nil {
		if validators.IsConsistencyFault(err) {
			s.halt(err)
			return errors.Wrap(ErrConsensusHalted, err.Error())
		}
		return err
	}
	if len(outcomes) == 0 {
		return nil
	}
	if err := s.verifyIntegrity(); err != nil {
		return err
	}
	log.WithField("count", len(outcomes)).Info("Applied queued slashing evidence")
	return nil
}

// verifyIntegrity audits the validator set and halts the engine when the audit fails.
func (s *Service) verifyIntegrity() error {
	if err := s.set.VerifyIntegrity(); err != nil {
		s.halt(err)
		return errors.Wrap(ErrConsensusHalted, err.Error())
	}
	return nil
}
