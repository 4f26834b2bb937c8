package camstream

import (
	"sync"

	"github.com/gogpu/camstream/gpucore"
)

// GPUContext is the execution context shared by conversion pipelines.
//
// It bundles a device, the work queue every GPU operation runs on and the
// framebuffer cache. Pass one GPUContext to every Stream that should share
// the GPU; nothing in the package keeps a global context.
type GPUContext struct {
	device gpucore.Device
	queue  *WorkQueue
	cache  *FramebufferCache

	closeOnce sync.Once
}

// NewGPUContext wraps dev. The caller keeps ownership of dev and destroys
// it after Close.
func NewGPUContext(dev gpucore.Device, opts ...ContextOption) (*GPUContext, error) {
	if dev == nil {
		return nil, ErrNilDevice
	}
	o := defaultContextOptions()
	for _, opt := range opts {
		opt(&o)
	}

	gc := &GPUContext{
		device: dev,
		queue:  NewWorkQueue(),
		cache:  NewFramebufferCache(dev, o.cache),
	}
	gc.cache.queue = gc.queue
	propagateLogger(dev)

	info := dev.AdapterInfo()
	Logger().Info("camstream: gpu context created",
		"backend", dev.Name(),
		"adapter", info.Name,
		"texture_cache", dev.TextureCache() != nil)
	return gc, nil
}

// Device returns the device.
func (g *GPUContext) Device() gpucore.Device { return g.device }

// Queue returns the GPU work queue.
func (g *GPUContext) Queue() *WorkQueue { return g.queue }

// Cache returns the shared framebuffer cache.
func (g *GPUContext) Cache() *FramebufferCache { return g.cache }

// SupportsTextureCache reports whether the device can bind planes without
// copying.
func (g *GPUContext) SupportsTextureCache() bool {
	return g.device.TextureCache() != nil
}

// Close drains the work queue and releases pooled textures. Streams using
// the context must be closed first.
func (g *GPUContext) Close() {
	g.closeOnce.Do(func() {
		g.queue.Close()
		g.cache.Close()
		if err := g.device.WaitIdle(); err != nil {
			Logger().Warn("camstream: wait idle on close", "err", err)
		}
		forgetLogger(g.device)
	})
}
