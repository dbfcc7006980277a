package forkchoice

import "github.com/pkg/errors"

var (
	// ErrNilNode is returned for an unknown or nil node.
	ErrNilNode = errors.New("invalid nil or unknown node")
	// ErrUnknownParent marks a block whose parent has not been seen; such blocks are buffered.
	ErrUnknownParent = errors.New("unknown parent")
	// ErrUnknownAncestor is returned when a chain walk does not reach the requested ancestor.
	ErrUnknownAncestor = errors.New("unknown ancestor")
	// ErrInvalidBlock is returned for headers inconsistent with their parent or with themselves.
	ErrInvalidBlock = errors.New("invalid block header")
	// ErrBlockKnown is returned for a block that is already in the tree or was pruned.
	ErrBlockKnown = errors.New("block already known")
	// ErrNotDescendantOfFinalized is returned for blocks that do not extend the finalized chain.
	ErrNotDescendantOfFinalized = errors.New("block does not descend from the finalized block")
	// ErrOrphanPoolFull reports buffered blocks evicted from the bounded orphan pool.
	ErrOrphanPoolFull = errors.New("orphan pool full")
	// ErrConflictingFinalizedBlocks is a consistency fault: two finalized blocks are not on one chain.
	ErrConflictingFinalizedBlocks = errors.New("conflicting finalized blocks")
	// ErrNoAuthority is returned when blocks are ingested before a producer authority is set.
	ErrNoAuthority = errors.New("no block producer authority")
)

// IsConsistencyFault reports whether err means the block tree can no longer be trusted.
func IsConsistencyFault(err error) bool {
	return errors.Is(err, ErrConflictingFinalizedBlocks)
}
