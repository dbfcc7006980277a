package validators

import (
	"bytes"
	"sort"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/pkg/errors"
	types "github.com/tessera-chain/tessera/consensus-types/primitives"
)

// Snapshot is an immutable copy of the validator set. Elections and fork-choice weights for a
// whole epoch are computed from one snapshot, so concurrent mutations of the live set never
// change their outcome.
type Snapshot struct {
	epoch            types.Epoch
	totalActiveStake uint256.Int
	validators       map[common.Address]Validator
	active           []Validator
	activations      []PendingChange
	exits            []PendingChange
}

// Snapshot returns an immutable copy of the current set.
func (s *Set) Snapshot() *Snapshot {
	s.lock.RLock()
	defer s.lock.RUnlock()

	snap := &Snapshot{
		epoch:            s.epoch,
		totalActiveStake: s.totalActiveStake,
		validators:       make(map[common.Address]Validator, len(s.validators)),
		active:           make([]Validator, 0, s.activeCount),
		activations:      s.activations.copyItems(),
		exits:            s.exits.copyItems(),
	}
	for addr, v := range s.validators {
		snap.validators[addr] = *v
		if v.Status.IsActive() {
			snap.active = append(snap.active, *v)
		}
	}
	sortByAddress(snap.active)
	return snap
}

// NewSnapshot assembles a snapshot from its parts, recomputing the total active stake.
func NewSnapshot(epoch types.Epoch, vals []Validator, activations, exits []PendingChange) (*Snapshot, error) {
	snap := &Snapshot{
		epoch:       epoch,
		validators:  make(map[common.Address]Validator, len(vals)),
		active:      make([]Validator, 0),
		activations: append([]PendingChange{}, activations...),
		exits:       append([]PendingChange{}, exits...),
	}
	for _, v := range vals {
		if _, ok := snap.validators[v.Address]; ok {
			return nil, errors.Wrapf(ErrDuplicateValidator, "address %s", v.Address.Hex())
		}
		if err := checkStakeWidth(&v.Stake); err != nil {
			return nil, err
		}
		snap.validators[v.Address] = v
		if v.Status.IsActive() {
			snap.totalActiveStake.Add(&snap.totalActiveStake, &v.Stake)
			snap.active = append(snap.active, v)
		}
	}
	for _, c := range snap.activations {
		if _, ok := snap.validators[c.Address]; !ok {
			return nil, errors.Wrapf(ErrValidatorNotFound, "queued activation for %s", c.Address.Hex())
		}
	}
	for _, c := range snap.exits {
		if _, ok := snap.validators[c.Address]; !ok {
			return nil, errors.Wrapf(ErrValidatorNotFound, "queued exit for %s", c.Address.Hex())
		}
	}
	sortByAddress(snap.active)
	return snap, nil
}

// Epoch returns the epoch the snapshot was taken at.
func (s *Snapshot) Epoch() types.Epoch {
	return s.epoch
}

// TotalActiveStake returns a copy of the sum of active stakes.
func (s *Snapshot) TotalActiveStake() *uint256.Int {
	total := s.totalActiveStake
	return &total
}

// ActiveCount returns the number of active validators.
func (s *Snapshot) ActiveCount() int {
	return len(s.active)
}

// Active returns the active validators sorted by address.
func (s *Snapshot) Active() []Validator {
	cp := make([]Validator, len(s.active))
	copy(cp, s.active)
	return cp
}

// Validators returns every registered validator, tombstones included, sorted by address.
func (s *Snapshot) Validators() []Validator {
	res := make([]Validator, 0, len(s.validators))
	for _, v := range s.validators {
		res = append(res, v)
	}
	sortByAddress(res)
	return res
}

// Validator returns the validator registered at addr.
func (s *Snapshot) Validator(addr common.Address) (Validator, bool) {
	v, ok := s.validators[addr]
	return v, ok
}

// ActiveStake returns the stake of addr if it is active in this snapshot.
func (s *Snapshot) ActiveStake(addr common.Address) (uint256.Int, bool) {
	v, ok := s.validators[addr]
	if !ok || !v.Status.IsActive() {
		return uint256.Int{}, false
	}
	return v.Stake, true
}

// PendingActivations returns the queued activations in queue order.
func (s *Snapshot) PendingActivations() []PendingChange {
	return append([]PendingChange{}, s.activations...)
}

// PendingExits returns the queued exits in queue order.
func (s *Snapshot) PendingExits() []PendingChange {
	return append([]PendingChange{}, s.exits...)
}

func sortByAddress(vals []Validator) {
	sort.Slice(vals, func(i, j int) bool {
		return addressLess(vals[i].Address, vals[j].Address)
	})
}

func addressLess(a, b common.Address) bool {
	return bytes.Compare(a[:], b[:]) < 0
}
