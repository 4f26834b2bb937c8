package camstream

import (
	"container/list"
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/gogpu/camstream/gpucore"
)

// Default cache limits.
const (
	// DefaultMaxMemoryMB is the default texture memory budget (256 MB).
	DefaultMaxMemoryMB = 256

	// DefaultMaxPerBucket is the default number of idle textures kept per
	// size/format.
	DefaultMaxPerBucket = 4
)

// Ownership tells who releases a texture.
type Ownership uint8

const (
	// Owned textures come from the FramebufferCache and go back to it.
	Owned Ownership = iota

	// Borrowed textures alias capture memory through a texture cache and
	// are released to that cache.
	Borrowed
)

// String returns the ownership mode name.
func (o Ownership) String() string {
	if o == Borrowed {
		return "borrowed"
	}
	return "owned"
}

// TextureHandle identifies a GPU texture together with its shape.
type TextureHandle struct {
	ID        gpucore.TextureID
	Width     int
	Height    int
	Format    gpucore.TextureFormat
	Usage     gpucore.TextureUsage
	Ownership Ownership
}

// Valid reports whether the handle names a texture.
func (h TextureHandle) Valid() bool { return h.ID != gpucore.InvalidID }

func (h TextureHandle) sizeBytes() uint64 {
	//nolint:gosec // G115: dimensions validated at allocation
	return uint64(h.Width * h.Height * h.Format.BytesPerPixel())
}

// CacheConfig holds configuration for a FramebufferCache.
type CacheConfig struct {
	// MaxMemoryMB is the texture memory budget in megabytes, counting both
	// textures in use and idle pooled textures.
	// Defaults to DefaultMaxMemoryMB if <= 0.
	MaxMemoryMB int

	// MaxPerBucket limits how many idle textures of one size/format are
	// retained. Defaults to DefaultMaxPerBucket if <= 0.
	MaxPerBucket int
}

// CacheStats contains framebuffer cache statistics.
type CacheStats struct {
	BudgetBytes uint64
	UsedBytes   uint64
	InUse       int
	Idle        int
	Hits        uint64
	Misses      uint64
	Evictions   uint64
}

// String returns a human-readable summary.
func (s CacheStats) String() string {
	return fmt.Sprintf("Cache[%d/%d KB, %d in use, %d idle, %d hits, %d misses, %d evictions]",
		s.UsedBytes/1024, s.BudgetBytes/1024, s.InUse, s.Idle, s.Hits, s.Misses, s.Evictions)
}

// textureKey identifies a bucket of interchangeable textures.
type textureKey struct {
	width  int
	height int
	format gpucore.TextureFormat
	usage  gpucore.TextureUsage
}

// idleTexture is a pooled texture waiting for reuse.
type idleTexture struct {
	key    textureKey
	handle TextureHandle
}

// FramebufferCache pools GPU textures for plane uploads and conversion
// outputs.
//
// Textures are grouped by size, format and usage. Every texture the cache
// creates counts against a memory budget; when a new allocation would
// exceed it, idle textures are evicted least recently used first. If the
// budget still cannot be met the request fails with ErrBudgetExceeded and
// the caller drops the frame.
//
// A cache is shared by every Stream on a GPUContext. All methods are safe
// for concurrent use.
type FramebufferCache struct {
	mu sync.Mutex

	device gpucore.Device
	// queue, when set, runs texture destruction for returns and purges.
	queue        *WorkQueue
	budgetBytes  uint64
	usedBytes    uint64
	maxPerBucket int

	// buckets maps a key to its idle textures, newest last.
	buckets map[textureKey][]*list.Element

	// lru orders all idle textures, front = most recently returned.
	lru *list.List

	inUse     int
	hits      uint64
	misses    uint64
	evictions uint64
	closed    bool
}

// NewFramebufferCache creates a cache allocating from dev.
func NewFramebufferCache(dev gpucore.Device, config CacheConfig) *FramebufferCache {
	maxMB := config.MaxMemoryMB
	if maxMB <= 0 {
		maxMB = DefaultMaxMemoryMB
	}
	perBucket := config.MaxPerBucket
	if perBucket <= 0 {
		perBucket = DefaultMaxPerBucket
	}

	//nolint:gosec // G115: maxMB is positive
	return &FramebufferCache{
		device:       dev,
		budgetBytes:  uint64(maxMB) * 1024 * 1024,
		maxPerBucket: perBucket,
		buckets:      make(map[textureKey][]*list.Element),
		lru:          list.New(),
	}
}

// RequestTexture returns a pooled texture of the given shape or allocates
// a new one. The caller owns the handle until it calls ReturnTexture.
// RequestTexture creates textures and must run on the GPU work queue.
func (c *FramebufferCache) RequestTexture(width, height int, format gpucore.TextureFormat, usage gpucore.TextureUsage) (TextureHandle, error) {
	desc := &gpucore.TextureDesc{
		Label:  "camstream_pooled",
		Width:  width,
		Height: height,
		Format: format,
		Usage:  usage,
	}
	if err := desc.Validate(); err != nil {
		return TextureHandle{}, err
	}
	key := textureKey{width: width, height: height, format: format, usage: usage}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return TextureHandle{}, ErrCacheClosed
	}

	if bucket := c.buckets[key]; len(bucket) > 0 {
		el := bucket[len(bucket)-1]
		c.buckets[key] = bucket[:len(bucket)-1]
		idle := c.lru.Remove(el).(*idleTexture)
		c.inUse++
		c.hits++
		c.mu.Unlock()
		return idle.handle, nil
	}

	c.misses++
	//nolint:gosec // G115: validated above
	need := uint64(desc.SizeBytes())
	var victims []TextureHandle
	for c.usedBytes+need > c.budgetBytes && c.lru.Len() > 0 {
		victims = append(victims, c.evictOldestLocked())
	}
	if c.usedBytes+need > c.budgetBytes {
		used, budget := c.usedBytes, c.budgetBytes
		c.mu.Unlock()
		c.destroy(victims)
		return TextureHandle{}, fmt.Errorf("%w: need %d bytes, %d of %d in use",
			ErrBudgetExceeded, need, used, budget)
	}
	c.usedBytes += need
	c.inUse++
	c.mu.Unlock()

	c.destroy(victims)

	id, err := c.device.CreateTexture(desc)
	if err != nil {
		c.mu.Lock()
		c.usedBytes -= need
		c.inUse--
		c.mu.Unlock()
		return TextureHandle{}, fmt.Errorf("camstream: create %dx%d %v texture: %w", width, height, format, err)
	}

	return TextureHandle{
		ID:        id,
		Width:     width,
		Height:    height,
		Format:    format,
		Usage:     usage,
		Ownership: Owned,
	}, nil
}

// ReturnTexture gives an owned texture back to the pool. Borrowed and
// invalid handles are ignored. If the bucket is full or the cache is
// closed the texture is destroyed on the work queue. ReturnTexture may be
// called from any goroutine.
func (c *FramebufferCache) ReturnTexture(h TextureHandle) {
	if !h.Valid() || h.Ownership != Owned {
		return
	}
	key := textureKey{width: h.Width, height: h.Height, format: h.Format, usage: h.Usage}

	c.mu.Lock()
	c.inUse--
	bucket := c.buckets[key]
	if c.closed || len(bucket) >= c.maxPerBucket {
		c.usedBytes -= h.sizeBytes()
		c.mu.Unlock()
		c.destroyQueued([]TextureHandle{h})
		return
	}
	el := c.lru.PushFront(&idleTexture{key: key, handle: h})
	c.buckets[key] = append(bucket, el)
	c.mu.Unlock()
}

// Purge destroys all idle textures.
func (c *FramebufferCache) Purge() {
	c.mu.Lock()
	var victims []TextureHandle
	for c.lru.Len() > 0 {
		victims = append(victims, c.evictOldestLocked())
	}
	c.mu.Unlock()
	c.destroyQueued(victims)
}

// Close purges the cache and rejects further requests. Textures still in
// use are destroyed when they are returned.
func (c *FramebufferCache) Close() {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
	c.Purge()
}

// Stats returns a snapshot of the cache counters.
func (c *FramebufferCache) Stats() CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return CacheStats{
		BudgetBytes: c.budgetBytes,
		UsedBytes:   c.usedBytes,
		InUse:       c.inUse,
		Idle:        c.lru.Len(),
		Hits:        c.hits,
		Misses:      c.misses,
		Evictions:   c.evictions,
	}
}

// evictOldestLocked removes the least recently returned idle texture from
// the pool and returns it for destruction. c.mu must be held and the pool
// must not be empty.
func (c *FramebufferCache) evictOldestLocked() TextureHandle {
	el := c.lru.Back()
	idle := c.lru.Remove(el).(*idleTexture)

	bucket := c.buckets[idle.key]
	if i := slices.Index(bucket, el); i >= 0 {
		bucket = slices.Delete(bucket, i, i+1)
	}
	if len(bucket) == 0 {
		delete(c.buckets, idle.key)
	} else {
		c.buckets[idle.key] = bucket
	}

	c.usedBytes -= idle.handle.sizeBytes()
	c.evictions++
	return idle.handle
}

func (c *FramebufferCache) destroy(handles []TextureHandle) {
	for _, h := range handles {
		c.device.DestroyTexture(h.ID)
	}
}

// destroyQueued hands destruction to the work queue. Without a queue, or
// once the queue is closed and no GPU work can run, it destroys inline.
func (c *FramebufferCache) destroyQueued(handles []TextureHandle) {
	if len(handles) == 0 {
		return
	}
	if c.queue != nil {
		err := c.queue.Async(func(context.Context) { c.destroy(handles) })
		if err == nil {
			return
		}
	}
	c.destroy(handles)
}
