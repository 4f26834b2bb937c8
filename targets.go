package camstream

import (
	"context"
	"slices"
	"sync"

	"github.com/google/uuid"
)

// Consumer receives converted frames.
//
// Receive runs on the GPU work queue and is handed the framebuffer with one
// lock taken on the consumer's behalf; the consumer must call Unlock when
// it is done with it, possibly later and from another goroutine. ctx is
// only valid inside Receive; keep the framebuffer, not the context. Receive
// should return quickly: the next frame cannot be converted until every
// consumer has returned.
type Consumer interface {
	Receive(ctx context.Context, fb *Framebuffer, index uint)
}

// ConsumerFunc adapts a function to Consumer.
type ConsumerFunc func(ctx context.Context, fb *Framebuffer, index uint)

// Receive calls f.
func (f ConsumerFunc) Receive(ctx context.Context, fb *Framebuffer, index uint) {
	f(ctx, fb, index)
}

// TargetID identifies a registered consumer.
type TargetID uuid.UUID

// String returns the ID in canonical UUID form.
func (id TargetID) String() string { return uuid.UUID(id).String() }

type targetEntry struct {
	id       TargetID
	consumer Consumer
	index    uint
}

// targetList fans frames out to consumers in registration order.
type targetList struct {
	mu      sync.RWMutex
	entries []targetEntry
}

func (l *targetList) add(c Consumer, index uint) TargetID {
	id := TargetID(uuid.New())
	l.mu.Lock()
	l.entries = append(l.entries, targetEntry{id: id, consumer: c, index: index})
	l.mu.Unlock()
	return id
}

func (l *targetList) remove(id TargetID) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	i := slices.IndexFunc(l.entries, func(e targetEntry) bool { return e.id == id })
	if i < 0 {
		return false
	}
	l.entries = slices.Delete(l.entries, i, i+1)
	return true
}

func (l *targetList) removeAll() {
	l.mu.Lock()
	l.entries = nil
	l.mu.Unlock()
}

func (l *targetList) len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}

// fanOut locks fb once per consumer and delivers it.
func (l *targetList) fanOut(ctx context.Context, fb *Framebuffer) {
	l.mu.RLock()
	entries := slices.Clone(l.entries)
	l.mu.RUnlock()

	for _, e := range entries {
		fb.Lock()
		e.consumer.Receive(ctx, fb, e.index)
	}
}
