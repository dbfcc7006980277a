// Package slashing converts misbehavior evidence into stake penalties and jail reports.
// Applied evidence and its outcome are kept for audit after the pending queue is drained.
package slashing

import (
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/tessera-chain/tessera/config/params"
	types "github.com/tessera-chain/tessera/consensus-types/primitives"
	"github.com/tessera-chain/tessera/consensus/validators"
)

// Ledger is the part of the validator set that penalties are applied to.
type Ledger interface {
	Slash(addr common.Address, bps uint64) (*validators.PenaltyResult, error)
	Epoch() types.Epoch
}

var _ Ledger = (*validators.Set)(nil)

// Module applies slashing evidence to a validator set. Submissions and pending-queue draining
// belong to the consensus writer; QueueEvidence may be called from any goroutine.
type Module struct {
	cfg  *params.ConsensusConfig
	set  Ledger
	lock sync.Mutex

	applied  map[evidenceKey]struct{}
	queued   map[evidenceKey]struct{}
	pending  []*Evidence
	records  []Record
	jailings []JailReport
}

// New returns a slashing module acting on the given validator set.
func New(cfg *params.ConsensusConfig, set Ledger) *Module {
	return &Module{
		cfg:     cfg,
		set:     set,
		applied: make(map[evidenceKey]struct{}),
		queued:  make(map[evidenceKey]struct{}),
	}
}

// PenaltyBps returns the stake fraction, in basis points, removed for an offense kind.
func (m *Module) PenaltyBps(kind OffenseKind) uint64 {
	switch kind {
	case DoubleSign:
		return m.cfg.DoubleSignPenaltyBps
	case Downtime:
		return m.cfg.DowntimePenaltyBps
	case FraudulentScoring:
		return m.cfg.FraudulentScoringPenaltyBps
	}
	return 0
}

// SubmitEvidence validates the evidence and applies its penalty immediately.
func (m *Module) SubmitEvidence(e *Evidence) (*PenaltyOutcome, error) {
	m.lock.Lock()
	defer m.lock.Unlock()

	if err := checkWellFormed(e); err != nil {
		evidenceRejected.Inc()
		return nil, err
	}
	k := e.key()
	_, isApplied := m.applied[k]
	_, isQueued := m.queued[k]
	if isApplied || isQueued {
		evidenceRejected.Inc()
		return nil, errors.Wrap(ErrDuplicateEvidence, e.String())
	}
	return m.apply(e.Copy())
}

// QueueEvidence stores well-formed evidence for the writer to apply later with ApplyPending.
// It fails with ErrEvidenceQueueFull when the queue is at capacity.
func (m *Module) QueueEvidence(e *Evidence) error {
	m.lock.Lock()
	defer m.lock.Unlock()

	if err := checkWellFormed(e); err != nil {
		evidenceRejected.Inc()
		return err
	}
	k := e.key()
	_, isApplied := m.applied[k]
	_, isQueued := m.queued[k]
	if isApplied || isQueued {
		evidenceRejected.Inc()
		return errors.Wrap(ErrDuplicateEvidence, e.String())
	}
	if uint64(len(m.pending)) >= m.cfg.EvidenceQueueLimit {
		evidenceQueueDropped.Inc()
		log.WithField("evidence", e.String()).Warn("Evidence queue full, dropping evidence")
		return ErrEvidenceQueueFull
	}
	m.pending = append(m.pending, e.Copy())
	m.queued[k] = struct{}{}
	evidenceQueueLength.Set(float64(len(m.pending)))
	return nil
}

// ApplyPending drains the evidence queue, applying every entry that is still valid.
// Entries that became invalid since they were queued are dropped and logged. A consistency
// fault from the validator set stops the drain: the fault is returned together with the
// outcomes applied before it, and the entries after the faulty one stay queued.
func (m *Module) ApplyPending() ([]*PenaltyOutcome, error) {
	m.lock.Lock()
	defer m.lock.Unlock()

	outcomes := make([]*PenaltyOutcome, 0, len(m.pending))
	for i, e := range m.pending {
		delete(m.queued, e.key())
		outcome, err := m.apply(e)
		if validators.IsConsistencyFault(err) {
			m.pending = append(m.pending[:0], m.pending[i+1:]...)
			evidenceQueueLength.Set(float64(len(m.pending)))
			return outcomes, err
		}
		if err != nil {
			log.WithError(err).WithField("evidence", e.String()).Debug("Dropping queued evidence")
			continue
		}
		outcomes = append(outcomes, outcome)
	}
	m.pending = m.pending[:0]
	evidenceQueueLength.Set(0)
	return outcomes, nil
}

// PendingCount returns the number of queued evidence objects.
func (m *Module) PendingCount() int {
	m.lock.Lock()
	defer m.lock.Unlock()
	return len(m.pending)
}

// DrainJailings returns and clears the jail reports issued since the last call.
func (m *Module) DrainJailings() []JailReport {
	m.lock.Lock()
	defer m.lock.Unlock()
	reports := m.jailings
	m.jailings = nil
	return reports
}

// Records returns the audit log of applied evidence in application order.
func (m *Module) Records() []Record {
	m.lock.Lock()
	defer m.lock.Unlock()
	res := make([]Record, len(m.records))
	for i, r := range m.records {
		res[i] = r
		res[i].Evidence.Proof = append([]byte{}, r.Evidence.Proof...)
	}
	return res
}

// RestoreRecords loads a previously persisted audit log so its offenses count as duplicates.
func (m *Module) RestoreRecords(records []Record) {
	m.lock.Lock()
	defer m.lock.Unlock()
	for _, r := range records {
		ev := r.Evidence.Copy()
		m.records = append(m.records, Record{Evidence: *ev, Outcome: r.Outcome})
		m.applied[ev.key()] = struct{}{}
	}
}

// apply must be called with the module lock held.
func (m *Module) apply(e *Evidence) (*PenaltyOutcome, error) {
	if err := m.checkWindow(e); err != nil {
		evidenceRejected.Inc()
		return nil, err
	}
	bps := m.PenaltyBps(e.Kind)
	res, err := m.set.Slash(e.Offender, bps)
	if err != nil {
		evidenceRejected.Inc()
		return nil, errors.Wrapf(err, "could not slash %s", e.Offender.Hex())
	}
	outcome := &PenaltyOutcome{
		Offender:    e.Offender,
		Kind:        e.Kind,
		Epoch:       e.Epoch,
		PenaltyBps:  bps,
		StakeBefore: res.StakeBefore,
		Penalty:     res.Penalty,
		StakeAfter:  res.StakeAfter,
		ForcedExit:  res.ForcedExit,
		Jailed:      e.Kind.Severe(),
	}
	if outcome.Jailed {
		m.jailings = append(m.jailings, JailReport{Offender: e.Offender, Kind: e.Kind, Epoch: e.Epoch})
	}
	m.applied[e.key()] = struct{}{}
	m.records = append(m.records, Record{Evidence: *e, Outcome: *outcome})
	slashingsApplied.WithLabelValues(e.Kind.String()).Inc()
	log.WithFields(logrus.Fields{
		"offender":   e.Offender.Hex(),
		"kind":       e.Kind.String(),
		"epoch":      e.Epoch,
		"penalty":    res.Penalty.ToBig().String(),
		"forcedExit": res.ForcedExit,
		"jailed":     outcome.Jailed,
	}).Info("Applied slashing")
	return outcome, nil
}

func (m *Module) checkWindow(e *Evidence) error {
	current := m.set.Epoch()
	if e.Epoch > current {
		return errors.Wrapf(ErrFutureEvidence, "evidence epoch %d, current epoch %d", e.Epoch, current)
	}
	if current.SubEpoch(e.Epoch) > m.cfg.EvidenceMaxAgeEpochs {
		return errors.Wrapf(ErrStaleEvidence, "evidence epoch %d, current epoch %d", e.Epoch, current)
	}
	return nil
}

func checkWellFormed(e *Evidence) error {
	if e == nil {
		return errors.Wrap(ErrMalformedEvidence, "nil evidence")
	}
	if !e.Kind.valid() {
		return errors.Wrapf(ErrMalformedEvidence, "unknown offense kind %d", e.Kind)
	}
	if len(e.Proof) == 0 {
		return errors.Wrap(ErrMalformedEvidence, "empty proof")
	}
	return nil
}
