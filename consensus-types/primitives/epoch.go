package primitives

import (
	"fmt"
	"math"

	"github.com/tessera-chain/tessera/encoding/bytesutil"
)

// Epoch represents a fixed-length span of slots after which the active validator set may change.
type Epoch uint64

// Add increases epoch by x, saturating at the maximum epoch.
func (e Epoch) Add(x uint64) Epoch {
	if uint64(e) > math.MaxUint64-x {
		return Epoch(math.MaxUint64)
	}
	return e + Epoch(x)
}

// SubEpoch returns the number of epochs between e and x, or zero when x is ahead of e.
func (e Epoch) SubEpoch(x Epoch) Epoch {
	if x > e {
		return 0
	}
	return e - x
}

// Bytes8 returns the little-endian encoding of the epoch.
func (e Epoch) Bytes8() []byte {
	return bytesutil.Bytes8(uint64(e))
}

// String returns the decimal representation of the epoch.
func (e Epoch) String() string {
	return fmt.Sprintf("%d", uint64(e))
}
