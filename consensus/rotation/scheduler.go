// Package rotation advances the validator set across epoch boundaries. Activations, exits,
// jailings and jail releases only ever happen inside ProcessEpochTransition.
package rotation

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/tessera-chain/tessera/config/params"
	types "github.com/tessera-chain/tessera/consensus-types/primitives"
	"github.com/tessera-chain/tessera/consensus/slashing"
	"github.com/tessera-chain/tessera/consensus/validators"
	"go.opencensus.io/trace"
)

// JailSource yields the jail reports issued by slashing since the last transition.
type JailSource interface {
	DrainJailings() []slashing.JailReport
}

// Result lists the validators whose status changed in one epoch transition.
type Result struct {
	Epoch     types.Epoch
	Activated []common.Address
	Exited    []common.Address
	Jailed    []common.Address
}

// Empty is true when the transition changed nothing.
func (r *Result) Empty() bool {
	return len(r.Activated) == 0 && len(r.Exited) == 0 && len(r.Jailed) == 0
}

// Scheduler runs epoch transitions against a validator set.
type Scheduler struct {
	cfg   *params.ConsensusConfig
	set   *validators.Set
	jails JailSource
}

// New returns a scheduler for the set. jails may be nil when no slashing module is wired.
func New(cfg *params.ConsensusConfig, set *validators.Set, jails JailSource) *Scheduler {
	return &Scheduler{cfg: cfg, set: set, jails: jails}
}

// ProcessEpochTransition moves the set to newEpoch and returns the changes made together with
// the frozen snapshot for the new epoch. Repeating the current epoch is a no-op with an empty
// result; an earlier epoch fails with validators.ErrStaleEpoch.
//
// Changes are applied in this order: pending jail reports, due exits, jail releases, then due
// activations in request order while the active count is under MaxValidators.
func (s *Scheduler) ProcessEpochTransition(ctx context.Context, newEpoch types.Epoch) (*Result, *validators.Snapshot, error) {
	_, span := trace.StartSpan(ctx, "rotation.ProcessEpochTransition")
	defer span.End()

	res := &Result{
		Epoch:     newEpoch,
		Activated: make([]common.Address, 0),
		Exited:    make([]common.Address, 0),
		Jailed:    make([]common.Address, 0),
	}
	current := s.set.Epoch()
	if newEpoch < current {
		return nil, nil, errors.Wrapf(validators.ErrStaleEpoch, "current epoch %d, requested %d", current, newEpoch)
	}
	if newEpoch == current {
		return res, s.set.Snapshot(), nil
	}
	if err := s.set.AdvanceEpoch(newEpoch); err != nil {
		return nil, nil, err
	}

	if err := s.applyJailings(newEpoch, res); err != nil {
		return nil, nil, err
	}
	for _, c := range s.set.DueChanges(validators.Exit) {
		exited, err := s.set.ProcessExit(c.Address)
		if err != nil {
			return nil, nil, errors.Wrap(err, "could not process exit")
		}
		if exited {
			res.Exited = append(res.Exited, c.Address)
		}
	}
	for _, addr := range s.set.ReleasableJailed() {
		active, err := s.set.Release(addr)
		if errors.Is(err, validators.ErrActiveSetFull) {
			log.WithField("validator", addr.Hex()).Debug("Validator cap reached, keeping validator jailed")
			continue
		}
		if err != nil {
			return nil, nil, errors.Wrap(err, "could not release jailed validator")
		}
		if active {
			res.Activated = append(res.Activated, addr)
		} else {
			res.Exited = append(res.Exited, addr)
		}
	}
	if err := s.applyActivations(res); err != nil {
		return nil, nil, err
	}

	if err := s.set.VerifyIntegrity(); err != nil {
		return nil, nil, err
	}
	snap := s.set.Snapshot()

	currentEpochGauge.Set(float64(newEpoch))
	activatedCount.Add(float64(len(res.Activated)))
	exitedCount.Add(float64(len(res.Exited)))
	jailedCount.Add(float64(len(res.Jailed)))
	log.WithFields(logrus.Fields{
		"epoch":            newEpoch,
		"activated":        len(res.Activated),
		"exited":           len(res.Exited),
		"jailed":           len(res.Jailed),
		"activeValidators": snap.ActiveCount(),
		"totalActiveStake": snap.TotalActiveStake().ToBig().String(),
	}).Info("Processed epoch transition")
	return res, snap, nil
}

func (s *Scheduler) applyJailings(newEpoch types.Epoch, res *Result) error {
	if s.jails == nil {
		return nil
	}
	until := newEpoch.Add(uint64(s.cfg.JailDurationEpochs))
	seen := make(map[common.Address]bool)
	for _, report := range s.jails.DrainJailings() {
		v, ok := s.set.Get(report.Offender)
		if !ok {
			continue
		}
		switch v.Status.Kind() {
		case validators.Active, validators.PendingExit, validators.Jailed:
		default:
			log.WithFields(logrus.Fields{
				"offender": report.Offender.Hex(),
				"status":   v.Status.String(),
			}).Debug("Skipping jail report for validator outside the active set")
			continue
		}
		if err := s.set.Jail(report.Offender, until); err != nil {
			return errors.Wrap(err, "could not jail validator")
		}
		if v.Status.Kind() != validators.Jailed && !seen[report.Offender] {
			res.Jailed = append(res.Jailed, report.Offender)
			seen[report.Offender] = true
		}
	}
	return nil
}

func (s *Scheduler) applyActivations(res *Result) error {
	due := s.set.DueChanges(validators.Activation)
	for i, c := range due {
		if uint64(s.set.ActiveCount()) >= s.cfg.MaxValidators {
			deferredActivations.Set(float64(len(due) - i))
			log.WithField("deferred", len(due)-i).Warn("Validator cap reached, deferring activations")
			return nil
		}
		active, err := s.set.Activate(c.Address)
		if err != nil {
			return errors.Wrap(err, "could not activate validator")
		}
		if active {
			res.Activated = append(res.Activated, c.Address)
		} else {
			res.Exited = append(res.Exited, c.Address)
		}
	}
	deferredActivations.Set(0)
	return nil
}
