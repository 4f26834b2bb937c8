package camstream

import (
	"context"
	"fmt"
	"image"
	"sync/atomic"

	"github.com/gogpu/gpucontext"
)

// Framebuffer is a GPU-resident RGBA image produced by one conversion.
//
// A framebuffer is reference counted. It starts with one lock held by its
// creator; every holder that keeps it calls Lock and later Unlock. When the
// last lock is released the texture returns to the FramebufferCache and the
// framebuffer must no longer be used.
type Framebuffer struct {
	gc          *GPUContext
	texture     TextureHandle
	orientation Orientation
	timing      Timing
	refs        atomic.Int32
}

var _ gpucontext.Texture = (*Framebuffer)(nil)

func newFramebuffer(gc *GPUContext, tex TextureHandle, orientation Orientation) *Framebuffer {
	fb := &Framebuffer{
		gc:          gc,
		texture:     tex,
		orientation: orientation,
	}
	fb.refs.Store(1)
	return fb
}

// Width returns the framebuffer width in pixels.
func (f *Framebuffer) Width() int { return f.texture.Width }

// Height returns the framebuffer height in pixels.
func (f *Framebuffer) Height() int { return f.texture.Height }

// Size returns the framebuffer bounds.
func (f *Framebuffer) Size() image.Rectangle {
	return image.Rect(0, 0, f.texture.Width, f.texture.Height)
}

// Texture returns the backing texture handle.
func (f *Framebuffer) Texture() TextureHandle { return f.texture }

// Orientation returns the pixel orientation. Camera frames are always
// OrientationPortrait.
func (f *Framebuffer) Orientation() Orientation { return f.orientation }

// Timing returns the timing tag.
func (f *Framebuffer) Timing() Timing { return f.timing }

// Timestamp returns the capture timestamp of the frame.
func (f *Framebuffer) Timestamp() Timestamp { return f.timing.Timestamp }

// Lock adds a holder.
func (f *Framebuffer) Lock() {
	f.refs.Add(1)
}

// Unlock releases a holder. The last Unlock returns the texture to the
// framebuffer cache. Unlock may be called from any goroutine.
func (f *Framebuffer) Unlock() {
	n := f.refs.Add(-1)
	switch {
	case n == 0:
		f.gc.cache.ReturnTexture(f.texture)
	case n < 0:
		Logger().Warn("camstream: unbalanced framebuffer unlock",
			"width", f.texture.Width, "height", f.texture.Height)
	}
}

// Released reports whether the last lock has been released.
func (f *Framebuffer) Released() bool {
	return f.refs.Load() <= 0
}

// ReadPixels copies the framebuffer contents to host memory.
//
// The read runs on the GPU work queue. Consumers calling it from Receive
// pass the context they were given, which makes the read run inline; from
// any other goroutine the read is queued and ReadPixels waits for it.
func (f *Framebuffer) ReadPixels(ctx context.Context) (*image.RGBA, error) {
	if f.Released() {
		return nil, ErrFramebufferReleased
	}

	var (
		data []byte
		err  error
	)
	qerr := f.gc.queue.Sync(ctx, func(context.Context) {
		data, err = f.gc.device.ReadTexture(f.texture.ID)
	})
	if qerr != nil {
		return nil, qerr
	}
	if err != nil {
		return nil, fmt.Errorf("camstream: read framebuffer: %w", err)
	}

	return &image.RGBA{
		Pix:    data,
		Stride: f.texture.Width * 4,
		Rect:   f.Size(),
	}, nil
}
