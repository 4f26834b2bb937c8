package software

import (
	"fmt"
	"sync/atomic"

	"github.com/gogpu/camstream/gpucore"
)

// textureCache creates textures that alias plane memory.
type textureCache struct {
	dev     *Device
	flushes atomic.Uint64
}

var _ gpucore.TextureCache = (*textureCache)(nil)

func (c *textureCache) CreateTextureFromPlane(p gpucore.Plane, format gpucore.TextureFormat) (gpucore.TextureID, error) {
	desc := gpucore.TextureDesc{
		Label:  "plane",
		Width:  p.Width,
		Height: p.Height,
		Format: format,
		Usage:  gpucore.TextureUsageTextureBinding,
	}
	if err := desc.Validate(); err != nil {
		return gpucore.InvalidID, err
	}
	rowBytes := p.Width * format.BytesPerPixel()
	if p.BytesPerRow < rowBytes {
		return gpucore.InvalidID, fmt.Errorf("%w: plane stride %d < row size %d",
			gpucore.ErrInvalidDescriptor, p.BytesPerRow, rowBytes)
	}
	if need := (p.Height-1)*p.BytesPerRow + rowBytes; len(p.Data) < need {
		return gpucore.InvalidID, fmt.Errorf("%w: plane holds %d bytes, need %d",
			gpucore.ErrInvalidDescriptor, len(p.Data), need)
	}

	c.dev.mu.Lock()
	defer c.dev.mu.Unlock()
	return c.dev.addTexture(&texture{
		desc:     desc,
		data:     p.Data,
		stride:   p.BytesPerRow,
		borrowed: true,
	})
}

func (c *textureCache) ReleaseTexture(id gpucore.TextureID) {
	c.dev.DestroyTexture(id)
}

func (c *textureCache) Flush() { c.flushes.Add(1) }

// CacheFlushes returns how many times the zero-copy texture cache was
// flushed.
func (d *Device) CacheFlushes() uint64 { return d.cache.flushes.Load() }
