package camstream

import (
	"context"
	"fmt"

	"github.com/gogpu/camstream/gpucore"
)

// uploadBinder copies planes into pooled textures.
type uploadBinder struct {
	device  gpucore.Device
	pool    *FramebufferCache
	sampler gpucore.SamplerID
}

func (b *uploadBinder) Path() BindPath { return BindUpload }

func (b *uploadBinder) Bind(_ context.Context, buf PlanarBuffer) (*Binding, error) {
	w, h := buf.Width(), buf.Height()
	cw, ch := chromaSize(w, h)

	luma, err := b.upload(buf.LumaPlane(), w, h, gpucore.TextureFormatR8Unorm)
	if err != nil {
		return nil, fmt.Errorf("camstream: upload luma plane: %w", err)
	}
	chroma, err := b.upload(buf.ChromaPlane(), cw, ch, gpucore.TextureFormatRG8Unorm)
	if err != nil {
		b.pool.ReturnTexture(luma)
		return nil, fmt.Errorf("camstream: upload chroma plane: %w", err)
	}

	return &Binding{
		Luma:    luma,
		Chroma:  chroma,
		Sampler: b.sampler,
		release: b.release,
	}, nil
}

func (b *uploadBinder) upload(p Plane, width, height int, format gpucore.TextureFormat) (TextureHandle, error) {
	tex, err := b.pool.RequestTexture(width, height, format, gpucore.UsagePlane)
	if err != nil {
		return TextureHandle{}, err
	}
	if err := b.device.WriteTexture(tex.ID, p.Data, p.BytesPerRow); err != nil {
		b.pool.ReturnTexture(tex)
		return TextureHandle{}, err
	}
	return tex, nil
}

func (b *uploadBinder) release(bd *Binding) {
	b.pool.ReturnTexture(bd.Luma)
	b.pool.ReturnTexture(bd.Chroma)
}

func (b *uploadBinder) Close() {
	b.device.DestroySampler(b.sampler)
}
