package camstream

import (
	"context"
	"sync"

	"github.com/gogpu/camstream/gpucore"
)

// BindPath names a TextureBinder implementation.
type BindPath uint8

const (
	// BindZeroCopy creates textures directly over the capture memory.
	BindZeroCopy BindPath = iota

	// BindUpload copies planes into pooled textures.
	BindUpload
)

// String returns the path name.
func (p BindPath) String() string {
	if p == BindZeroCopy {
		return "zero-copy"
	}
	return "upload"
}

// TextureBinder maps a planar buffer to a luma and a chroma texture.
//
// Luma binds to an R8 texture at the buffer size. Chroma binds to an RG8
// texture at exactly half the buffer size in both axes. The buffer must
// stay locked until the returned Binding is released.
type TextureBinder interface {
	Bind(ctx context.Context, buf PlanarBuffer) (*Binding, error)

	// Path reports which implementation this is.
	Path() BindPath

	// Close releases the binder's sampler.
	Close()
}

// Binding is the pair of textures bound for one frame.
type Binding struct {
	Luma    TextureHandle
	Chroma  TextureHandle
	Sampler gpucore.SamplerID

	once    sync.Once
	release func(*Binding)
}

// Release gives both textures back to where they came from: the texture
// cache for borrowed textures, the framebuffer cache for owned ones. It is
// safe to call more than once.
func (b *Binding) Release() {
	if b == nil {
		return
	}
	b.once.Do(func() {
		if b.release != nil {
			b.release(b)
		}
	})
}

// NewTextureBinder returns the zero-copy binder when the context's device
// has a texture cache and forceUpload is false, and the upload binder
// otherwise. The choice is made once.
func NewTextureBinder(gc *GPUContext, forceUpload bool) (TextureBinder, error) {
	sampler, err := gc.device.CreateSampler(&gpucore.ClampSampler)
	if err != nil {
		return nil, err
	}

	if tc := gc.device.TextureCache(); tc != nil && !forceUpload {
		return &cacheBinder{device: gc.device, cache: tc, sampler: sampler}, nil
	}
	return &uploadBinder{device: gc.device, pool: gc.cache, sampler: sampler}, nil
}
