// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpucore

import (
	"errors"

	"github.com/gogpu/gpucontext"
)

// Device errors.
var (
	// ErrInvalidDescriptor is returned for descriptors that cannot be allocated.
	ErrInvalidDescriptor = errors.New("gpucore: invalid descriptor")

	// ErrTextureNotFound is returned when an ID does not name a live texture.
	ErrTextureNotFound = errors.New("gpucore: texture not found")

	// ErrSamplerNotFound is returned when an ID does not name a live sampler.
	ErrSamplerNotFound = errors.New("gpucore: sampler not found")

	// ErrUnsupportedProgram is returned when a device cannot build a program.
	ErrUnsupportedProgram = errors.New("gpucore: unsupported program")

	// ErrDeviceLost is returned after the device has been destroyed.
	ErrDeviceLost = errors.New("gpucore: device lost")

	// ErrOutOfMemory is returned when the device cannot allocate a resource.
	ErrOutOfMemory = errors.New("gpucore: out of memory")
)

// Device abstracts over the GPU backend executing the conversion pipeline.
//
// Implementations must be safe for concurrent use. Resource lifecycle
// follows the usual pattern: Create* returns an ID, Destroy* releases it,
// and an ID must not be used after it is destroyed.
type Device interface {
	// Name returns a short backend identifier ("software", "wgpu").
	Name() string

	// AdapterInfo describes the physical adapter behind the device.
	AdapterInfo() gpucontext.AdapterInfo

	// CreateTexture allocates a 2D texture.
	CreateTexture(desc *TextureDesc) (TextureID, error)

	// DestroyTexture releases a texture. Unknown IDs are ignored.
	DestroyTexture(id TextureID)

	// WriteTexture uploads host memory into a texture. Rows in data are
	// bytesPerRow apart and may carry padding past the texture width.
	WriteTexture(id TextureID, data []byte, bytesPerRow int) error

	// ReadTexture copies the texture contents back to host memory, tightly
	// packed. This stalls until pending GPU work completes.
	ReadTexture(id TextureID) ([]byte, error)

	// CreateSampler creates a texture sampler.
	CreateSampler(desc *SamplerDesc) (SamplerID, error)

	// DestroySampler releases a sampler. Unknown IDs are ignored.
	DestroySampler(id SamplerID)

	// CreateProgram builds the two-input conversion program.
	CreateProgram(desc *ProgramDesc) (Program, error)

	// TextureCache returns the shared-memory texture cache, or nil when the
	// device has no zero-copy path.
	TextureCache() TextureCache

	// WaitIdle blocks until all submitted GPU work has completed.
	WaitIdle() error

	// Destroy releases the device. All resources must be destroyed first.
	Destroy()
}

// ProgramDesc describes the conversion program.
type ProgramDesc struct {
	Label string

	// Source is the WGSL source of the compute shader.
	Source string

	// EntryPoint is the compute entry point in Source.
	EntryPoint string
}

// Program is a compiled two-input conversion program.
type Program interface {
	// Dispatch runs the program once and returns after the output texture
	// has been written.
	Dispatch(pass *ConversionPass) error

	// Destroy releases the program's GPU objects.
	Destroy()
}

// ConversionPass binds the inputs and output of one program dispatch.
type ConversionPass struct {
	Luma    TextureID
	Chroma  TextureID
	Sampler SamplerID
	Output  TextureID
	Params  ConversionParams
}

// TextureCache creates textures directly over host plane memory.
//
// Textures returned by CreateTextureFromPlane alias the plane's bytes; the
// caller must keep the backing buffer pinned until ReleaseTexture.
type TextureCache interface {
	CreateTextureFromPlane(plane Plane, format TextureFormat) (TextureID, error)
	ReleaseTexture(id TextureID)

	// Flush drops cache bookkeeping for released textures.
	Flush()
}
