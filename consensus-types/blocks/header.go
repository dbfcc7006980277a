// Package blocks defines the block header value consumed by the consensus core.
package blocks

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	types "github.com/tessera-chain/tessera/consensus-types/primitives"
	"github.com/tessera-chain/tessera/crypto/hash"
	"github.com/tessera-chain/tessera/encoding/bytesutil"
)

// ErrNilHeader is returned when a nil header is handed to the core.
var ErrNilHeader = errors.New("nil block header")

// Header is an already-authenticated block header. Signatures are checked
// by the network layer before a header reaches the consensus core.
type Header struct {
	Hash       common.Hash
	ParentHash common.Hash
	Height     uint64
	Slot       types.Slot
	Producer   common.Address
}

// Copy returns a copy of the header.
func (h *Header) Copy() *Header {
	if h == nil {
		return nil
	}
	cp := *h
	return &cp
}

// String implements fmt.Stringer.
func (h *Header) String() string {
	return fmt.Sprintf("Header{hash=%#x parent=%#x height=%d slot=%d producer=%s}",
		h.Hash[:4], h.ParentHash[:4], h.Height, h.Slot, h.Producer.Hex())
}

// ComputeHash derives a header hash from its fields and an arbitrary body
// commitment. It is used by tooling that needs to mint deterministic headers.
func ComputeHash(parent common.Hash, height uint64, slot types.Slot, producer common.Address, body []byte) common.Hash {
	return common.Hash(hash.HashConcat(parent[:], bytesutil.Bytes8(height), slot.Bytes8(), producer[:], body))
}

// NewHeader returns a header whose hash is computed from the given fields.
func NewHeader(parent common.Hash, height uint64, slot types.Slot, producer common.Address, body []byte) *Header {
	return &Header{
		Hash:       ComputeHash(parent, height, slot, producer, body),
		ParentHash: parent,
		Height:     height,
		Slot:       slot,
		Producer:   producer,
	}
}
