package forkchoice

import (
	"context"
	"fmt"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	logTest "github.com/sirupsen/logrus/hooks/test"
	"github.com/tessera-chain/tessera/consensus-types/blocks"
	types "github.com/tessera-chain/tessera/consensus-types/primitives"
	"github.com/tessera-chain/tessera/testing/assert"
	"github.com/tessera-chain/tessera/testing/require"
	"github.com/tessera-chain/tessera/testing/util"
)

func TestStore_Orphans_BufferedUntilParentArrives(t *testing.T) {
	ctx := context.Background()
	s, genesis := setup(t, util.TestConfig(), 10)
	a := child(genesis, 0, 1, "a")
	b := child(a, 0, 2, "b")
	c := child(b, 0, 3, "c")
	d := child(b, 0, 4, "d")

	res := ingest(t, s, c, Buffered)
	assert.Equal(t, genesis.Hash, res.Head)
	assert.Equal(t, 0, len(res.Inserted))
	ingest(t, s, d, Buffered)
	ingest(t, s, b, Buffered)
	assert.Equal(t, 3, s.OrphanCount())
	assert.Equal(t, false, s.HasNode(b.Hash))

	res = ingest(t, s, c, Rejected)
	assert.ErrorIs(t, res.Reason, ErrBlockKnown)

	res = ingest(t, s, a, Accepted)
	assert.DeepEqual(t, []common.Hash{a.Hash, b.Hash, c.Hash, d.Hash}, res.Inserted)
	assert.Equal(t, nil, res.Reason)
	assert.Equal(t, 0, s.OrphanCount())
	assert.Equal(t, 5, s.NodeCount())
	assert.Equal(t, uint64(40), subtreeWeight(t, s, genesis.Hash))
	head := s.Head(ctx)
	assert.Equal(t, true, head == c.Hash || head == d.Hash)
	assert.Equal(t, res.Head, head)
}

func TestStore_Orphans_ResolutionDropsInvalidDescendants(t *testing.T) {
	s, genesis := setup(t, util.TestConfig(), 10)
	a := child(genesis, 0, 5, "a")
	bad := child(a, 0, 5, "bad") // Slot does not advance.
	good := child(a, 0, 6, "good")
	ingest(t, s, bad, Buffered)
	ingest(t, s, good, Buffered)

	res := ingest(t, s, a, Accepted)
	assert.DeepEqual(t, []common.Hash{a.Hash, good.Hash}, res.Inserted)
	assert.Equal(t, false, s.HasNode(bad.Hash))
	assert.Equal(t, 0, s.OrphanCount())
}

func TestStore_Orphans_PerParentLimit(t *testing.T) {
	hook := logTest.NewGlobal()
	cfg := util.TestConfig()
	s, _ := setup(t, cfg, 10)
	missing := common.HexToHash("0xabcd")

	var headers []*blocks.Header
	for i := 0; i <= int(cfg.OrphanPoolPerParentLimit); i++ {
		headers = append(headers, blocks.NewHeader(missing, 5, types.Slot(i+1), util.Address(0), []byte(fmt.Sprintf("%d", i))))
	}
	for _, h := range headers[:len(headers)-1] {
		res := ingest(t, s, h, Buffered)
		assert.Equal(t, nil, res.Reason)
		assert.Equal(t, 0, len(res.Evicted))
	}
	res := ingest(t, s, headers[len(headers)-1], Buffered)
	assert.ErrorIs(t, res.Reason, ErrOrphanPoolFull)
	assert.DeepEqual(t, []common.Hash{headers[0].Hash}, res.Evicted)
	assert.Equal(t, int(cfg.OrphanPoolPerParentLimit), s.OrphanCount())
	require.LogsContain(t, hook, "Evicted buffered blocks")

	// The evicted block may be delivered again.
	res = ingest(t, s, headers[0], Buffered)
	assert.DeepEqual(t, []common.Hash{headers[1].Hash}, res.Evicted)
}

func TestStore_Orphans_GlobalLimit(t *testing.T) {
	cfg := util.TestConfig()
	cfg.OrphanPoolPerParentLimit = 2
	cfg.OrphanPoolLimit = 3
	s, _ := setup(t, cfg, 10)

	var headers []*blocks.Header
	for i := 0; i < 4; i++ {
		parent := common.HexToHash(fmt.Sprintf("0x%x", i+100))
		headers = append(headers, blocks.NewHeader(parent, 5, 5, util.Address(0), nil))
	}
	for _, h := range headers[:3] {
		ingest(t, s, h, Buffered)
	}
	res := ingest(t, s, headers[3], Buffered)
	assert.ErrorIs(t, res.Reason, ErrOrphanPoolFull)
	assert.DeepEqual(t, []common.Hash{headers[0].Hash}, res.Evicted)
	assert.Equal(t, 3, s.OrphanCount())
}

func TestStore_PruneOrphans(t *testing.T) {
	ctx := context.Background()
	cfg := util.TestConfig()
	s, _ := setup(t, cfg, 10)

	s.SetCurrentSlot(0)
	aged := blocks.NewHeader(common.HexToHash("0x01"), 5, 5, util.Address(0), []byte("aged"))
	ingest(t, s, aged, Buffered)
	far := blocks.NewHeader(common.HexToHash("0x02"), cfg.OrphanMaxHeightLead+1, 5, util.Address(0), []byte("far"))
	ingest(t, s, far, Buffered)

	assert.DeepEqual(t, []common.Hash{far.Hash}, s.PruneOrphans(ctx))
	assert.Equal(t, 1, s.OrphanCount())

	s.SetCurrentSlot(cfg.OrphanMaxAgeSlots)
	assert.Equal(t, 0, len(s.PruneOrphans(ctx)))
	s.SetCurrentSlot(cfg.OrphanMaxAgeSlots + 1)
	assert.DeepEqual(t, []common.Hash{aged.Hash}, s.PruneOrphans(ctx))
	assert.Equal(t, 0, s.OrphanCount())
}
