package validators

import (
	"github.com/ethereum/go-ethereum/common"
	types "github.com/tessera-chain/tessera/consensus-types/primitives"
)

// ChangeKind is the kind of a queued membership change.
type ChangeKind uint8

const (
	// Activation moves a validator into the active set.
	Activation ChangeKind = iota
	// Exit moves a validator out of the set.
	Exit
)

// String returns the name of the change kind.
func (k ChangeKind) String() string {
	switch k {
	case Activation:
		return "activation"
	case Exit:
		return "exit"
	}
	return "unknown"
}

// PendingChange is a membership change waiting for its effective epoch.
type PendingChange struct {
	Address        common.Address
	Kind           ChangeKind
	EffectiveEpoch types.Epoch
}

// changeQueue is a first-in-first-out queue of pending changes of one kind.
type changeQueue struct {
	items []PendingChange
}

func (q *changeQueue) push(c PendingChange) {
	q.items = append(q.items, c)
}

func (q *changeQueue) len() int {
	return len(q.items)
}

func (q *changeQueue) copyItems() []PendingChange {
	cp := make([]PendingChange, len(q.items))
	copy(cp, q.items)
	return cp
}

// due returns the queued changes effective at or before epoch, in queue order.
func (q *changeQueue) due(epoch types.Epoch) []PendingChange {
	res := make([]PendingChange, 0)
	for _, c := range q.items {
		if c.EffectiveEpoch <= epoch {
			res = append(res, c)
		}
	}
	return res
}

// remove drops the first queued change for addr and reports whether one was found.
func (q *changeQueue) remove(addr common.Address) bool {
	for i, c := range q.items {
		if c.Address == addr {
			q.items = append(q.items[:i], q.items[i+1:]...)
			return true
		}
	}
	return false
}
