// Package validators implements the authoritative record of who may produce blocks and with
// what weight. Every status or stake change updates the total active stake in the same step.
package validators

import (
	"math/big"
	"sort"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/tessera-chain/tessera/config/params"
	types "github.com/tessera-chain/tessera/consensus-types/primitives"
)

// PenaltyResult describes the effect of a stake penalty on a validator.
type PenaltyResult struct {
	Address     common.Address
	StakeBefore uint256.Int
	Penalty     uint256.Int
	StakeAfter  uint256.Int
	// ForcedExit is set when the penalty left an active validator below the
	// minimum stake and it was queued for exit at the next epoch.
	ForcedExit bool
}

// Set is the live validator set. It is safe for concurrent use; callers that need several
// mutations to appear atomic serialize them through a single writer and publish Snapshot results.
type Set struct {
	cfg              *params.ConsensusConfig
	lock             sync.RWMutex
	validators       map[common.Address]*Validator
	totalActiveStake uint256.Int
	activeCount      int
	epoch            types.Epoch
	activations      changeQueue
	exits            changeQueue
}

// NewSet returns an empty validator set positioned at the given epoch.
func NewSet(cfg *params.ConsensusConfig, epoch types.Epoch) *Set {
	return &Set{
		cfg:        cfg,
		validators: make(map[common.Address]*Validator),
		epoch:      epoch,
	}
}

// NewSetFromSnapshot rebuilds a live set from a snapshot, typically one loaded from storage.
func NewSetFromSnapshot(cfg *params.ConsensusConfig, snap *Snapshot) (*Set, error) {
	if snap == nil {
		return nil, errors.New("nil validator snapshot")
	}
	s := NewSet(cfg, snap.epoch)
	for addr, v := range snap.validators {
		cp := v
		s.validators[addr] = &cp
		if cp.Status.IsActive() {
			s.totalActiveStake.Add(&s.totalActiveStake, &cp.Stake)
			s.activeCount++
		}
	}
	for _, c := range snap.activations {
		s.activations.push(c)
	}
	for _, c := range snap.exits {
		s.exits.push(c)
	}
	if err := s.VerifyIntegrity(); err != nil {
		return nil, errors.Wrap(err, "restored validator set is inconsistent")
	}
	s.lock.Lock()
	s.updateMetrics()
	s.lock.Unlock()
	return s, nil
}

func (s *Set) minStake() *uint256.Int {
	return uint256.NewInt(s.cfg.MinValidatorStake)
}

// AddValidator registers a validator requesting activation. Its status becomes
// PendingActivation at the current epoch plus the activation delay.
func (s *Set) AddValidator(addr common.Address, stake *uint256.Int, commission uint64) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	if err := s.checkNewValidator(addr, stake, commission); err != nil {
		return err
	}
	activation := s.epoch.Add(uint64(s.cfg.ActivationDelayEpochs))
	s.validators[addr] = &Validator{
		Address:    addr,
		Stake:      *stake,
		Commission: commission,
		Status:     PendingActivationStatus(activation),
	}
	s.activations.push(PendingChange{Address: addr, Kind: Activation, EffectiveEpoch: activation})
	log.WithFields(logrus.Fields{
		"address":         addr.Hex(),
		"stake":           stake.ToBig().String(),
		"activationEpoch": activation,
	}).Debug("Queued validator activation")
	s.updateMetrics()
	return nil
}

// AddGenesisValidator registers a validator that is active from the start.
func (s *Set) AddGenesisValidator(addr common.Address, stake *uint256.Int, commission uint64) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	if err := s.checkNewValidator(addr, stake, commission); err != nil {
		return err
	}
	v := &Validator{
		Address:    addr,
		Stake:      *stake,
		Commission: commission,
		Status:     ActiveStatus(),
	}
	s.validators[addr] = v
	s.totalActiveStake.Add(&s.totalActiveStake, &v.Stake)
	s.activeCount++
	s.updateMetrics()
	return nil
}

func (s *Set) checkNewValidator(addr common.Address, stake *uint256.Int, commission uint64) error {
	if stake == nil {
		return errors.Wrap(ErrInsufficientStake, "nil stake")
	}
	if err := checkStakeWidth(stake); err != nil {
		return err
	}
	if stake.Lt(s.minStake()) {
		return errors.Wrapf(ErrInsufficientStake, "stake %s below minimum %d", stake.ToBig(), s.cfg.MinValidatorStake)
	}
	if commission > s.cfg.MaxCommissionBps {
		return errors.Wrapf(ErrInvalidCommission, "commission %d exceeds maximum %d", commission, s.cfg.MaxCommissionBps)
	}
	if _, ok := s.validators[addr]; ok {
		return errors.Wrapf(ErrDuplicateValidator, "address %s", addr.Hex())
	}
	return nil
}

// UpdateStake applies a signed delta to a validator's stake. A result below zero fails with
// ErrStakeUnderflow, and an active validator may not drop below the minimum stake.
func (s *Set) UpdateStake(addr common.Address, delta *big.Int) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	v, ok := s.validators[addr]
	if !ok {
		return errors.Wrapf(ErrValidatorNotFound, "address %s", addr.Hex())
	}
	if v.Status.Kind() == Exited {
		return errors.Wrap(ErrInvalidTransition, "exited validators are immutable")
	}
	if delta == nil || delta.Sign() == 0 {
		return nil
	}
	result := new(big.Int).Add(v.Stake.ToBig(), delta)
	if result.Sign() < 0 {
		return errors.Wrapf(ErrStakeUnderflow, "stake %s, delta %s", v.Stake.ToBig(), delta)
	}
	newStake, overflow := uint256.FromBig(result)
	if overflow {
		return ErrStakeOverflow
	}
	if err := checkStakeWidth(newStake); err != nil {
		return err
	}
	if v.Status.IsActive() {
		if newStake.Lt(s.minStake()) {
			return errors.Wrapf(ErrInsufficientStake, "active validator stake would become %s", result)
		}
		if err := s.subActiveStake(&v.Stake); err != nil {
			return err
		}
		s.totalActiveStake.Add(&s.totalActiveStake, newStake)
	}
	v.Stake = *newStake
	s.updateMetrics()
	return nil
}

// Slash removes bps/10000 of the validator's stake, clamped so the stake never goes below zero.
// An active validator left under the minimum stake is moved to PendingExit at the next epoch.
func (s *Set) Slash(addr common.Address, bps uint64) (*PenaltyResult, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	v, ok := s.validators[addr]
	if !ok {
		return nil, errors.Wrapf(ErrValidatorNotFound, "address %s", addr.Hex())
	}
	if v.Status.Kind() == Exited {
		return nil, errors.Wrap(ErrInvalidTransition, "cannot slash an exited validator")
	}
	res := &PenaltyResult{Address: addr, StakeBefore: v.Stake}

	penalty := new(uint256.Int).Mul(&v.Stake, uint256.NewInt(bps))
	penalty.Div(penalty, uint256.NewInt(params.BasisPointsDenominator))
	if penalty.Gt(&v.Stake) {
		penalty.Set(&v.Stake)
	}
	if v.Status.IsActive() {
		if err := s.subActiveStake(penalty); err != nil {
			return nil, err
		}
	}
	v.Stake.Sub(&v.Stake, penalty)
	res.Penalty = *penalty
	res.StakeAfter = v.Stake

	if v.Status.IsActive() && v.Stake.Lt(s.minStake()) {
		if err := s.deactivate(v); err != nil {
			return nil, err
		}
		exitEpoch := s.epoch.Add(1)
		v.Status = PendingExitStatus(exitEpoch)
		s.exits.push(PendingChange{Address: addr, Kind: Exit, EffectiveEpoch: exitEpoch})
		res.ForcedExit = true
	}
	s.updateMetrics()
	return res, nil
}

// RequestExit moves an active validator to PendingExit after the exit delay and returns its exit epoch.
func (s *Set) RequestExit(addr common.Address) (types.Epoch, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	v, ok := s.validators[addr]
	if !ok {
		return 0, errors.Wrapf(ErrValidatorNotFound, "address %s", addr.Hex())
	}
	if !v.Status.IsActive() {
		return 0, errors.Wrapf(ErrInvalidTransition, "cannot exit validator with status %s", v.Status)
	}
	if err := s.deactivate(v); err != nil {
		return 0, err
	}
	exitEpoch := s.epoch.Add(uint64(s.cfg.ExitDelayEpochs))
	v.Status = PendingExitStatus(exitEpoch)
	s.exits.push(PendingChange{Address: addr, Kind: Exit, EffectiveEpoch: exitEpoch})
	s.updateMetrics()
	return exitEpoch, nil
}

// Jail suspends an Active or PendingExit validator until the given epoch. A queued exit is
// dropped, and the term of an already jailed validator is only ever extended.
func (s *Set) Jail(addr common.Address, until types.Epoch) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	v, ok := s.validators[addr]
	if !ok {
		return errors.Wrapf(ErrValidatorNotFound, "address %s", addr.Hex())
	}
	switch v.Status.Kind() {
	case Active:
		if err := s.deactivate(v); err != nil {
			return err
		}
	case PendingExit:
		s.exits.remove(addr)
	case Jailed:
		if until <= v.Status.Epoch() {
			return nil
		}
	default:
		return errors.Wrapf(ErrInvalidTransition, "cannot jail validator with status %s", v.Status)
	}
	v.Status = JailedStatus(until)
	s.updateMetrics()
	return nil
}

// AdvanceEpoch moves the set to a later epoch.
func (s *Set) AdvanceEpoch(epoch types.Epoch) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	if epoch <= s.epoch {
		return errors.Wrapf(ErrStaleEpoch, "current epoch %d, requested %d", s.epoch, epoch)
	}
	s.epoch = epoch
	return nil
}

// DueChanges returns the queued changes of a kind effective at or before the current epoch, in queue order.
func (s *Set) DueChanges(kind ChangeKind) []PendingChange {
	s.lock.RLock()
	defer s.lock.RUnlock()
	if kind == Activation {
		return s.activations.due(s.epoch)
	}
	return s.exits.due(s.epoch)
}

// Activate consumes the queued activation of addr. A validator whose stake fell below the
// minimum while pending is moved to Exited instead; the returned flag reports whether it became Active.
func (s *Set) Activate(addr common.Address) (bool, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	v, ok := s.validators[addr]
	if !ok {
		return false, errors.Wrapf(ErrValidatorNotFound, "address %s", addr.Hex())
	}
	if v.Status.Kind() != PendingActivation || v.Status.Epoch() > s.epoch {
		return false, errors.Wrapf(ErrInvalidTransition, "cannot activate validator with status %s at epoch %d", v.Status, s.epoch)
	}
	s.activations.remove(addr)
	defer s.updateMetrics()
	if v.Stake.Lt(s.minStake()) {
		v.Status = ExitedStatus()
		return false, nil
	}
	v.Status = ActiveStatus()
	s.totalActiveStake.Add(&s.totalActiveStake, &v.Stake)
	s.activeCount++
	return true, nil
}

// ProcessExit consumes the queued exit of addr. A change that no longer matches the validator's
// status, for example because it was jailed in the meantime, is dropped and false is returned.
func (s *Set) ProcessExit(addr common.Address) (bool, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	v, ok := s.validators[addr]
	if !ok {
		return false, errors.Wrapf(ErrValidatorNotFound, "address %s", addr.Hex())
	}
	s.exits.remove(addr)
	defer s.updateMetrics()
	if v.Status.Kind() != PendingExit {
		return false, nil
	}
	if v.Status.Epoch() > s.epoch {
		return false, errors.Wrapf(ErrInvalidTransition, "exit epoch %d not reached at epoch %d", v.Status.Epoch(), s.epoch)
	}
	v.Status = ExitedStatus()
	return true, nil
}

// ReleasableJailed returns the jailed validators whose jail term ended, sorted by address.
func (s *Set) ReleasableJailed() []common.Address {
	s.lock.RLock()
	defer s.lock.RUnlock()
	res := make([]common.Address, 0)
	for addr, v := range s.validators {
		if v.Status.Kind() == Jailed && v.Status.Epoch() <= s.epoch {
			res = append(res, addr)
		}
	}
	sort.Slice(res, func(i, j int) bool {
		return addressLess(res[i], res[j])
	})
	return res
}

// Release ends the jail term of addr. It returns true if the validator became Active again;
// a validator without the minimum stake is moved to Exited. When the active set is at
// MaxValidators the validator stays Jailed and ErrActiveSetFull is returned.
func (s *Set) Release(addr common.Address) (bool, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	v, ok := s.validators[addr]
	if !ok {
		return false, errors.Wrapf(ErrValidatorNotFound, "address %s", addr.Hex())
	}
	if v.Status.Kind() != Jailed || v.Status.Epoch() > s.epoch {
		return false, errors.Wrapf(ErrInvalidTransition, "cannot release validator with status %s at epoch %d", v.Status, s.epoch)
	}
	defer s.updateMetrics()
	if v.Stake.Lt(s.minStake()) {
		v.Status = ExitedStatus()
		return false, nil
	}
	if uint64(s.activeCount) >= s.cfg.MaxValidators {
		return false, errors.Wrapf(ErrActiveSetFull, "%d active validators", s.activeCount)
	}
	v.Status = ActiveStatus()
	s.totalActiveStake.Add(&s.totalActiveStake, &v.Stake)
	s.activeCount++
	return true, nil
}

// Get returns a copy of the validator registered at addr.
func (s *Set) Get(addr common.Address) (Validator, bool) {
	s.lock.RLock()
	defer s.lock.RUnlock()
	v, ok := s.validators[addr]
	if !ok {
		return Validator{}, false
	}
	return *v, true
}

// Epoch returns the current epoch of the set.
func (s *Set) Epoch() types.Epoch {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return s.epoch
}

// TotalActiveStake returns the sum of the stakes of all active validators.
func (s *Set) TotalActiveStake() *uint256.Int {
	s.lock.RLock()
	defer s.lock.RUnlock()
	total := s.totalActiveStake
	return &total
}

// ActiveCount returns the number of active validators.
func (s *Set) ActiveCount() int {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return s.activeCount
}

// Len returns the number of registered validators, tombstones included.
func (s *Set) Len() int {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return len(s.validators)
}

// VerifyIntegrity recomputes the total active stake from the active validators and checks that
// no active validator sits below the minimum stake. Any mismatch is a consistency fault.
func (s *Set) VerifyIntegrity() error {
	s.lock.RLock()
	defer s.lock.RUnlock()

	total := new(uint256.Int)
	count := 0
	for _, v := range s.validators {
		if !v.Status.IsActive() {
			continue
		}
		if v.Stake.Lt(s.minStake()) {
			return errors.Wrapf(ErrActiveBelowMinimum, "validator %s has stake %s", v.Address.Hex(), v.Stake.ToBig())
		}
		total.Add(total, &v.Stake)
		count++
	}
	if !total.Eq(&s.totalActiveStake) || count != s.activeCount {
		return errors.Wrapf(ErrStakeAccountingMismatch, "recorded %s over %d validators, recomputed %s over %d",
			s.totalActiveStake.ToBig(), s.activeCount, total.ToBig(), count)
	}
	return nil
}

// deactivate removes an active validator's stake from the total. Callers set the new status.
func (s *Set) deactivate(v *Validator) error {
	if err := s.subActiveStake(&v.Stake); err != nil {
		return err
	}
	s.activeCount--
	return nil
}

func (s *Set) subActiveStake(amount *uint256.Int) error {
	if s.totalActiveStake.Lt(amount) {
		return errors.Wrapf(ErrNegativeStake, "total active stake %s, subtracting %s", s.totalActiveStake.ToBig(), amount.ToBig())
	}
	s.totalActiveStake.Sub(&s.totalActiveStake, amount)
	return nil
}
