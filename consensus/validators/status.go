package validators

import (
	"fmt"

	"github.com/pkg/errors"
	types "github.com/tessera-chain/tessera/consensus-types/primitives"
)

// StatusKind enumerates the lifecycle stages of a validator.
type StatusKind uint8

const (
	// PendingActivation validators wait for their activation epoch.
	PendingActivation StatusKind = iota
	// Active validators are elected and carry fork-choice weight.
	Active
	// PendingExit validators leave the set at their exit epoch.
	PendingExit
	// Jailed validators are suspended until their release epoch.
	Jailed
	// Exited validators are tombstones kept for historical queries.
	Exited
)

var statusKindNames = map[StatusKind]string{
	PendingActivation: "pending_activation",
	Active:            "active",
	PendingExit:       "pending_exit",
	Jailed:            "jailed",
	Exited:            "exited",
}

// String returns the name of the status kind.
func (k StatusKind) String() string {
	if s, ok := statusKindNames[k]; ok {
		return s
	}
	return "unknown"
}

// StatusKindFromString parses a status kind name.
func StatusKindFromString(s string) (StatusKind, bool) {
	for k, name := range statusKindNames {
		if name == s {
			return k, true
		}
	}
	return 0, false
}

// Status is a validator status with the epoch attached to the variants that carry one:
// the activation epoch, the exit epoch or the jail release epoch.
type Status struct {
	kind  StatusKind
	epoch types.Epoch
}

// ActiveStatus returns the Active status.
func ActiveStatus() Status { return Status{kind: Active} }

// ExitedStatus returns the Exited status.
func ExitedStatus() Status { return Status{kind: Exited} }

// PendingActivationStatus returns a status activating at the given epoch.
func PendingActivationStatus(activation types.Epoch) Status {
	return Status{kind: PendingActivation, epoch: activation}
}

// PendingExitStatus returns a status exiting at the given epoch.
func PendingExitStatus(exit types.Epoch) Status {
	return Status{kind: PendingExit, epoch: exit}
}

// JailedStatus returns a status jailed until the given epoch.
func JailedStatus(until types.Epoch) Status {
	return Status{kind: Jailed, epoch: until}
}

// NewStatus rebuilds a status from its parts, dropping the epoch for variants without one.
func NewStatus(kind StatusKind, epoch types.Epoch) (Status, error) {
	switch kind {
	case Active:
		return ActiveStatus(), nil
	case Exited:
		return ExitedStatus(), nil
	case PendingActivation, PendingExit, Jailed:
		return Status{kind: kind, epoch: epoch}, nil
	}
	return Status{}, errors.Errorf("unknown status kind %d", kind)
}

// Kind returns the status variant.
func (s Status) Kind() StatusKind { return s.kind }

// Epoch returns the epoch carried by the variant, zero for Active and Exited.
func (s Status) Epoch() types.Epoch { return s.epoch }

// IsActive is true for the Active variant.
func (s Status) IsActive() bool { return s.kind == Active }

// String implements fmt.Stringer.
func (s Status) String() string {
	switch s.kind {
	case Active, Exited:
		return s.kind.String()
	}
	return fmt.Sprintf("%s(%d)", s.kind, s.epoch)
}
