package camstream

import (
	"context"
	"fmt"

	"github.com/gogpu/camstream/gpucore"
)

// cacheBinder binds planes through the device's texture cache. The
// textures alias the capture memory, so nothing is copied.
type cacheBinder struct {
	device  gpucore.Device
	cache   gpucore.TextureCache
	sampler gpucore.SamplerID
}

func (b *cacheBinder) Path() BindPath { return BindZeroCopy }

func (b *cacheBinder) Bind(_ context.Context, buf PlanarBuffer) (*Binding, error) {
	w, h := buf.Width(), buf.Height()
	cw, ch := chromaSize(w, h)

	luma, err := b.borrow(subPlane(buf.LumaPlane(), w, h), gpucore.TextureFormatR8Unorm)
	if err != nil {
		return nil, fmt.Errorf("camstream: bind luma plane: %w", err)
	}
	chroma, err := b.borrow(subPlane(buf.ChromaPlane(), cw, ch), gpucore.TextureFormatRG8Unorm)
	if err != nil {
		b.cache.ReleaseTexture(luma.ID)
		return nil, fmt.Errorf("camstream: bind chroma plane: %w", err)
	}

	return &Binding{
		Luma:    luma,
		Chroma:  chroma,
		Sampler: b.sampler,
		release: b.release,
	}, nil
}

func (b *cacheBinder) borrow(p Plane, format gpucore.TextureFormat) (TextureHandle, error) {
	id, err := b.cache.CreateTextureFromPlane(p, format)
	if err != nil {
		return TextureHandle{}, err
	}
	return TextureHandle{
		ID:        id,
		Width:     p.Width,
		Height:    p.Height,
		Format:    format,
		Usage:     gpucore.TextureUsageTextureBinding,
		Ownership: Borrowed,
	}, nil
}

func (b *cacheBinder) release(bd *Binding) {
	b.cache.ReleaseTexture(bd.Luma.ID)
	b.cache.ReleaseTexture(bd.Chroma.ID)
	b.cache.Flush()
}

func (b *cacheBinder) Close() {
	b.device.DestroySampler(b.sampler)
}
