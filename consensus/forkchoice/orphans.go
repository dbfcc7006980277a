package forkchoice

import (
	"github.com/ethereum/go-ethereum/common"
	lru "github.com/hashicorp/golang-lru"
	"github.com/pkg/errors"
	"github.com/tessera-chain/tessera/consensus-types/blocks"
	types "github.com/tessera-chain/tessera/consensus-types/primitives"
)

type orphan struct {
	header  *blocks.Header
	arrival types.Slot
}

// orphanPool buffers headers keyed by their missing parent. It is bounded per parent and
// globally; when either bound is hit the oldest entry is evicted and recorded.
type orphanPool struct {
	perParentLimit int
	byParent       map[common.Hash][]common.Hash
	cache          *lru.Cache
	evicted        []common.Hash
}

func newOrphanPool(perParentLimit, limit int) (*orphanPool, error) {
	p := &orphanPool{
		perParentLimit: perParentLimit,
		byParent:       make(map[common.Hash][]common.Hash),
	}
	cache, err := lru.NewWithEvict(limit, p.onEvict)
	if err != nil {
		return nil, errors.Wrap(err, "could not create orphan pool")
	}
	p.cache = cache
	return p, nil
}

// onEvict runs for every removal from the cache. Entries still indexed by parent were
// evicted; resolved entries are unindexed before they are removed.
func (p *orphanPool) onEvict(key, value interface{}) {
	hash, ok := key.(common.Hash)
	if !ok {
		return
	}
	o, ok := value.(*orphan)
	if !ok {
		return
	}
	if p.detach(o.header.ParentHash, hash) {
		p.evicted = append(p.evicted, hash)
	}
}

func (p *orphanPool) detach(parent, hash common.Hash) bool {
	siblings := p.byParent[parent]
	for i, h := range siblings {
		if h != hash {
			continue
		}
		siblings = append(siblings[:i], siblings[i+1:]...)
		if len(siblings) == 0 {
			delete(p.byParent, parent)
		} else {
			p.byParent[parent] = siblings
		}
		return true
	}
	return false
}

func (p *orphanPool) has(hash common.Hash) bool {
	return p.cache.Contains(hash)
}

func (p *orphanPool) len() int {
	return p.cache.Len()
}

func (p *orphanPool) add(h *blocks.Header, arrival types.Slot) {
	if siblings := p.byParent[h.ParentHash]; len(siblings) >= p.perParentLimit {
		p.cache.Remove(siblings[0])
	}
	p.byParent[h.ParentHash] = append(p.byParent[h.ParentHash], h.Hash)
	p.cache.Add(h.Hash, &orphan{header: h.Copy(), arrival: arrival})
}

// take removes and returns the buffered children of parent in arrival order.
func (p *orphanPool) take(parent common.Hash) []*blocks.Header {
	hashes := p.byParent[parent]
	delete(p.byParent, parent)
	res := make([]*blocks.Header, 0, len(hashes))
	for _, h := range hashes {
		v, ok := p.cache.Peek(h)
		if !ok {
			continue
		}
		p.cache.Remove(h)
		res = append(res, v.(*orphan).header)
	}
	return res
}

// evictWhere evicts every buffered entry matching cond.
func (p *orphanPool) evictWhere(cond func(o *orphan) bool) {
	for _, k := range p.cache.Keys() {
		v, ok := p.cache.Peek(k)
		if !ok {
			continue
		}
		if cond(v.(*orphan)) {
			p.cache.Remove(k)
		}
	}
}

func (p *orphanPool) drainEvicted() []common.Hash {
	res := p.evicted
	p.evicted = nil
	return res
}
