package camstream

import (
	"fmt"
	"sync/atomic"

	"github.com/gogpu/camstream/gpucore"
)

// Plane is a view of one plane of a planar buffer.
type Plane = gpucore.Plane

// PlanarBuffer is a captured biplanar YUV frame.
//
// The buffer is owned by the capture subsystem. The pipeline pins it with
// Lock while a conversion reads it and never retains it past Unlock.
type PlanarBuffer interface {
	Width() int
	Height() int
	PixelFormat() PixelFormat

	// Lock pins the backing memory so the capture layer cannot recycle it.
	Lock() error
	Unlock()

	// LumaPlane returns the full-resolution 1-byte-per-pixel plane.
	LumaPlane() Plane

	// ChromaPlane returns the half-resolution plane of interleaved Cb, Cr.
	ChromaPlane() Plane
}

// chromaSize returns the chroma texture size for a luma size. Halving is a
// property of the 4:2:0 layout, not a setting.
func chromaSize(width, height int) (int, int) {
	return width / 2, height / 2
}

// validatePlanarBuffer checks that buf holds a usable biplanar 4:2:0 frame.
func validatePlanarBuffer(buf PlanarBuffer) error {
	if buf == nil {
		return fmt.Errorf("%w: nil buffer", ErrInvalidBuffer)
	}
	if b, ok := buf.(*NV12Buffer); ok && b == nil {
		return fmt.Errorf("%w: nil buffer", ErrInvalidBuffer)
	}
	if f := buf.PixelFormat(); !f.IsBiplanar420() {
		return fmt.Errorf("%w: pixel format %v", ErrInvalidBuffer, f)
	}
	w, h := buf.Width(), buf.Height()
	if w < 2 || h < 2 {
		return fmt.Errorf("%w: size %dx%d", ErrInvalidBuffer, w, h)
	}
	if err := checkPlane("luma", buf.LumaPlane(), w, h, 1); err != nil {
		return err
	}
	cw, ch := chromaSize(w, h)
	return checkPlane("chroma", buf.ChromaPlane(), cw, ch, 2)
}

func checkPlane(name string, p Plane, width, height, bpp int) error {
	if p.Width < width || p.Height < height {
		return fmt.Errorf("%w: %s plane %dx%d, want at least %dx%d",
			ErrInvalidBuffer, name, p.Width, p.Height, width, height)
	}
	if p.BytesPerRow < width*bpp {
		return fmt.Errorf("%w: %s stride %d below row size %d",
			ErrInvalidBuffer, name, p.BytesPerRow, width*bpp)
	}
	if need := (height-1)*p.BytesPerRow + width*bpp; len(p.Data) < need {
		return fmt.Errorf("%w: %s plane holds %d bytes, want %d",
			ErrInvalidBuffer, name, len(p.Data), need)
	}
	return nil
}

// subPlane narrows p to width x height texels.
func subPlane(p Plane, width, height int) Plane {
	p.Width = width
	p.Height = height
	return p
}

// NV12Buffer is a host-memory biplanar 4:2:0 buffer.
//
// It is used by the synthetic capture source and by tests. Lock and Unlock
// only count; the memory never moves.
type NV12Buffer struct {
	width  int
	height int
	format PixelFormat
	luma   Plane
	chroma Plane
	locks  atomic.Int32
}

var _ PlanarBuffer = (*NV12Buffer)(nil)

// NewNV12Buffer allocates a tightly packed buffer. Width and height must be
// even and at least 2.
func NewNV12Buffer(width, height int, format PixelFormat) (*NV12Buffer, error) {
	if width < 2 || height < 2 || width%2 != 0 || height%2 != 0 {
		return nil, fmt.Errorf("%w: size %dx%d must be even and at least 2x2",
			ErrInvalidBuffer, width, height)
	}
	if !format.IsBiplanar420() {
		return nil, fmt.Errorf("%w: pixel format %v", ErrUnsupportedFormat, format)
	}
	return NewNV12BufferWithStride(width, height, format, width, width)
}

// NewNV12BufferWithStride allocates a buffer whose rows are padded to the
// given strides, as hardware capture buffers usually are.
func NewNV12BufferWithStride(width, height int, format PixelFormat, lumaStride, chromaStride int) (*NV12Buffer, error) {
	cw, ch := chromaSize(width, height)
	if lumaStride < width || chromaStride < cw*2 {
		return nil, fmt.Errorf("%w: strides %d/%d too small for %dx%d",
			ErrInvalidBuffer, lumaStride, chromaStride, width, height)
	}
	return &NV12Buffer{
		width:  width,
		height: height,
		format: format,
		luma: Plane{
			Data:        make([]byte, lumaStride*height),
			Width:       width,
			Height:      height,
			BytesPerRow: lumaStride,
		},
		chroma: Plane{
			Data:        make([]byte, chromaStride*ch),
			Width:       cw,
			Height:      ch,
			BytesPerRow: chromaStride,
		},
	}, nil
}

func (b *NV12Buffer) Width() int               { return b.width }
func (b *NV12Buffer) Height() int              { return b.height }
func (b *NV12Buffer) PixelFormat() PixelFormat { return b.format }
func (b *NV12Buffer) LumaPlane() Plane         { return b.luma }
func (b *NV12Buffer) ChromaPlane() Plane       { return b.chroma }

// Lock increments the lock count.
func (b *NV12Buffer) Lock() error {
	b.locks.Add(1)
	return nil
}

// Unlock decrements the lock count.
func (b *NV12Buffer) Unlock() {
	b.locks.Add(-1)
}

// Locked reports the current lock count.
func (b *NV12Buffer) Locked() int {
	return int(b.locks.Load())
}

// Fill sets every luma sample to y and every chroma pair to (cb, cr).
func (b *NV12Buffer) Fill(y, cb, cr uint8) {
	for row := range b.height {
		line := b.luma.Row(row, 1)
		for i := range line {
			line[i] = y
		}
	}
	for row := range b.chroma.Height {
		line := b.chroma.Row(row, 2)
		for i := 0; i < len(line); i += 2 {
			line[i] = cb
			line[i+1] = cr
		}
	}
}

// SetLuma sets the luma sample at (x, y).
func (b *NV12Buffer) SetLuma(x, y int, v uint8) {
	b.luma.Data[y*b.luma.BytesPerRow+x] = v
}

// SetChroma sets the chroma pair covering the 2x2 block at (x*2, y*2).
func (b *NV12Buffer) SetChroma(x, y int, cb, cr uint8) {
	off := y*b.chroma.BytesPerRow + x*2
	b.chroma.Data[off] = cb
	b.chroma.Data[off+1] = cr
}
