package kv

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/pkg/errors"
	types "github.com/tessera-chain/tessera/consensus-types/primitives"
	"github.com/tessera-chain/tessera/consensus/forkchoice"
	"github.com/tessera-chain/tessera/consensus/slashing"
	"github.com/tessera-chain/tessera/consensus/validators"
)

// Stored values are JSON documents. Stake amounts are decimal strings.

type validatorRecord struct {
	Address     common.Address `json:"address"`
	Stake       string         `json:"stake"`
	Commission  uint64         `json:"commission"`
	Status      string         `json:"status"`
	StatusEpoch uint64         `json:"status_epoch"`
}

type pendingChangeRecord struct {
	Address        common.Address `json:"address"`
	Kind           uint8          `json:"kind"`
	EffectiveEpoch uint64         `json:"effective_epoch"`
}

type snapshotRecord struct {
	Epoch       uint64                `json:"epoch"`
	Validators  []validatorRecord     `json:"validators"`
	Activations []pendingChangeRecord `json:"activations"`
	Exits       []pendingChangeRecord `json:"exits"`
}

type nodeRecord struct {
	Hash       common.Hash    `json:"hash"`
	ParentHash common.Hash    `json:"parent_hash"`
	Height     uint64         `json:"height"`
	Slot       uint64         `json:"slot"`
	Producer   common.Address `json:"producer"`
	Weight     string         `json:"weight"`
}

type checkpointRecord struct {
	Hash   common.Hash `json:"hash"`
	Height uint64      `json:"height"`
}

type slashingRecord struct {
	Offender    common.Address `json:"offender"`
	Kind        uint8          `json:"kind"`
	Epoch       uint64         `json:"epoch"`
	Proof       []byte         `json:"proof"`
	PenaltyBps  uint64         `json:"penalty_bps"`
	StakeBefore string         `json:"stake_before"`
	Penalty     string         `json:"penalty"`
	StakeAfter  string         `json:"stake_after"`
	ForcedExit  bool           `json:"forced_exit"`
	Jailed      bool           `json:"jailed"`
}

func amountString(v *uint256.Int) string {
	return v.ToBig().String()
}

func parseAmount(s string) (uint256.Int, error) {
	b, ok := new(big.Int).SetString(s, 10)
	if !ok || b.Sign() < 0 {
		return uint256.Int{}, errors.Errorf("invalid amount %q", s)
	}
	v, overflow := uint256.FromBig(b)
	if overflow {
		return uint256.Int{}, errors.Errorf("amount %q overflows", s)
	}
	return *v, nil
}

func toSnapshotRecord(snap *validators.Snapshot) *snapshotRecord {
	vals := snap.Validators()
	rec := &snapshotRecord{
		Epoch:      uint64(snap.Epoch()),
		Validators: make([]validatorRecord, len(vals)),
	}
	for i := range vals {
		v := &vals[i]
		rec.Validators[i] = validatorRecord{
			Address:     v.Address,
			Stake:       amountString(&v.Stake),
			Commission:  v.Commission,
			Status:      v.Status.Kind().String(),
			StatusEpoch: uint64(v.Status.Epoch()),
		}
	}
	rec.Activations = toPendingRecords(snap.PendingActivations())
	rec.Exits = toPendingRecords(snap.PendingExits())
	return rec
}

func toPendingRecords(changes []validators.PendingChange) []pendingChangeRecord {
	res := make([]pendingChangeRecord, len(changes))
	for i, c := range changes {
		res[i] = pendingChangeRecord{
			Address:        c.Address,
			Kind:           uint8(c.Kind),
			EffectiveEpoch: uint64(c.EffectiveEpoch),
		}
	}
	return res
}

func fromPendingRecords(recs []pendingChangeRecord) []validators.PendingChange {
	res := make([]validators.PendingChange, len(recs))
	for i, r := range recs {
		res[i] = validators.PendingChange{
			Address:        r.Address,
			Kind:           validators.ChangeKind(r.Kind),
			EffectiveEpoch: types.Epoch(r.EffectiveEpoch),
		}
	}
	return res
}

func (r *snapshotRecord) toSnapshot() (*validators.Snapshot, error) {
	vals := make([]validators.Validator, len(r.Validators))
	for i, vr := range r.Validators {
		stake, err := parseAmount(vr.Stake)
		if err != nil {
			return nil, errors.Wrapf(err, "validator %s", vr.Address.Hex())
		}
		kind, ok := validators.StatusKindFromString(vr.Status)
		if !ok {
			return nil, errors.Errorf("validator %s: unknown status %q", vr.Address.Hex(), vr.Status)
		}
		status, err := validators.NewStatus(kind, types.Epoch(vr.StatusEpoch))
		if err != nil {
			return nil, errors.Wrapf(err, "validator %s", vr.Address.Hex())
		}
		vals[i] = validators.Validator{
			Address:    vr.Address,
			Stake:      stake,
			Commission: vr.Commission,
			Status:     status,
		}
	}
	return validators.NewSnapshot(types.Epoch(r.Epoch), vals, fromPendingRecords(r.Activations), fromPendingRecords(r.Exits))
}

func toNodeRecord(n forkchoice.NodeRecord) *nodeRecord {
	return &nodeRecord{
		Hash:       n.Hash,
		ParentHash: n.ParentHash,
		Height:     n.Height,
		Slot:       uint64(n.Slot),
		Producer:   n.Producer,
		Weight:     amountString(&n.Weight),
	}
}

func (r *nodeRecord) toNode() (forkchoice.NodeRecord, error) {
	w, err := parseAmount(r.Weight)
	if err != nil {
		return forkchoice.NodeRecord{}, errors.Wrapf(err, "node %s", r.Hash.Hex())
	}
	return forkchoice.NodeRecord{
		Hash:       r.Hash,
		ParentHash: r.ParentHash,
		Height:     r.Height,
		Slot:       types.Slot(r.Slot),
		Producer:   r.Producer,
		Weight:     w,
	}, nil
}

func toSlashingRecord(r *slashing.Record) *slashingRecord {
	return &slashingRecord{
		Offender:    r.Evidence.Offender,
		Kind:        uint8(r.Evidence.Kind),
		Epoch:       uint64(r.Evidence.Epoch),
		Proof:       r.Evidence.Proof,
		PenaltyBps:  r.Outcome.PenaltyBps,
		StakeBefore: amountString(&r.Outcome.StakeBefore),
		Penalty:     amountString(&r.Outcome.Penalty),
		StakeAfter:  amountString(&r.Outcome.StakeAfter),
		ForcedExit:  r.Outcome.ForcedExit,
		Jailed:      r.Outcome.Jailed,
	}
}

func (r *slashingRecord) toRecord() (slashing.Record, error) {
	amounts := make([]uint256.Int, 3)
	for i, s := range []string{r.StakeBefore, r.Penalty, r.StakeAfter} {
		v, err := parseAmount(s)
		if err != nil {
			return slashing.Record{}, errors.Wrapf(err, "slashing of %s", r.Offender.Hex())
		}
		amounts[i] = v
	}
	ev := slashing.Evidence{
		Offender: r.Offender,
		Kind:     slashing.OffenseKind(r.Kind),
		Epoch:    types.Epoch(r.Epoch),
		Proof:    r.Proof,
	}
	return slashing.Record{
		Evidence: ev,
		Outcome: slashing.PenaltyOutcome{
			Offender:    ev.Offender,
			Kind:        ev.Kind,
			Epoch:       ev.Epoch,
			PenaltyBps:  r.PenaltyBps,
			StakeBefore: amounts[0],
			Penalty:     amounts[1],
			StakeAfter:  amounts[2],
			ForcedExit:  r.ForcedExit,
			Jailed:      r.Jailed,
		},
	}, nil
}
