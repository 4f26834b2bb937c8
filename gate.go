package camstream

import "sync/atomic"

// gate is a capacity-1 token: one conversion in flight per stream.
// tryAcquire never blocks.
type gate struct {
	held atomic.Bool
}

func (g *gate) tryAcquire() bool {
	return g.held.CompareAndSwap(false, true)
}

func (g *gate) release() {
	g.held.Store(false)
}

func (g *gate) busy() bool {
	return g.held.Load()
}
