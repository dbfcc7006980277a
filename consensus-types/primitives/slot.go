package primitives

import (
	"fmt"
	"math"

	"github.com/tessera-chain/tessera/encoding/bytesutil"
)

// Slot represents the smallest unit of time in which a single block may be produced.
type Slot uint64

// Add increases slot by x, saturating at the maximum slot.
func (s Slot) Add(x uint64) Slot {
	if uint64(s) > math.MaxUint64-x {
		return Slot(math.MaxUint64)
	}
	return s + Slot(x)
}

// SubSlot returns the number of slots between s and x, or zero when x is ahead of s.
func (s Slot) SubSlot(x Slot) Slot {
	if x > s {
		return 0
	}
	return s - x
}

// String returns the decimal representation of the slot.
func (s Slot) String() string {
	return fmt.Sprintf("%d", uint64(s))
}

// Bytes8 returns the little-endian encoding of the slot.
func (s Slot) Bytes8() []byte {
	return bytesutil.Bytes8(uint64(s))
}
