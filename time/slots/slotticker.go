// Package slots turns wall-clock time into consensus slots.
package slots

import (
	"time"

	types "github.com/tessera-chain/tessera/consensus-types/primitives"
)

// Ticker emits the slot number at the start of every slot.
type Ticker interface {
	C() <-chan types.Slot
	Done()
}

// SlotTicker is a special ticker for consensus slots. Its first tick is the slot the clock
// is in or, before genesis, slot zero at genesis time. Ticks continue every slot duration.
type SlotTicker struct {
	c    chan types.Slot
	done chan struct{}
}

// C returns the ticker channel. Call Done afterwards to release resources.
func (s *SlotTicker) C() <-chan types.Slot {
	return s.c
}

// Done stops the ticker.
func (s *SlotTicker) Done() {
	go func() {
		s.done <- struct{}{}
	}()
}

// NewSlotTicker starts ticking slots of the given duration counted from genesis.
func NewSlotTicker(genesis time.Time, slotDuration time.Duration) *SlotTicker {
	if slotDuration <= 0 {
		panic("slot duration must be positive")
	}
	ticker := &SlotTicker{
		c:    make(chan types.Slot),
		done: make(chan struct{}),
	}
	ticker.start(genesis, slotDuration, time.Since, time.Until, time.After)
	return ticker
}

func (s *SlotTicker) start(
	genesis time.Time,
	d time.Duration,
	since, until func(time.Time) time.Duration,
	after func(time.Duration) <-chan time.Time) {

	go func() {
		sinceGenesis := since(genesis)

		var nextTickTime time.Time
		var slot types.Slot
		if sinceGenesis < d {
			nextTickTime = genesis
			slot = 0
		} else {
			nextTick := sinceGenesis.Truncate(d)
			nextTickTime = genesis.Add(nextTick)
			slot = types.Slot(nextTick / d)
		}

		for {
			waitTime := until(nextTickTime)
			select {
			case <-after(waitTime):
				select {
				case s.c <- slot:
				case <-s.done:
					return
				}
				slot++
				nextTickTime = nextTickTime.Add(d)
			case <-s.done:
				return
			}
		}
	}()
}
