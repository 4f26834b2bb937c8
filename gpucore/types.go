// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpucore

import "fmt"

// Resource IDs
//
// These opaque IDs represent GPU resources. Each device implementation
// maintains a mapping between IDs and actual backend resources.

// TextureID is an opaque handle to a GPU texture.
type TextureID uint64

// SamplerID is an opaque handle to a texture sampler.
type SamplerID uint64

// InvalidID is the zero value, representing an invalid/null resource.
const InvalidID = 0

// TextureFormat specifies the format of texture data.
type TextureFormat uint32

// Texture formats used by the conversion pipeline.
const (
	// TextureFormatR8Unorm is a single 8-bit channel (luma plane).
	TextureFormatR8Unorm TextureFormat = iota + 1

	// TextureFormatRG8Unorm is two interleaved 8-bit channels (chroma plane, U then V).
	TextureFormatRG8Unorm

	// TextureFormatRGBA8Unorm is 8-bit RGBA (conversion output).
	TextureFormatRGBA8Unorm
)

// BytesPerPixel returns the number of bytes per texel.
func (f TextureFormat) BytesPerPixel() int {
	switch f {
	case TextureFormatR8Unorm:
		return 1
	case TextureFormatRG8Unorm:
		return 2
	case TextureFormatRGBA8Unorm:
		return 4
	default:
		return 0
	}
}

// String returns the format name.
func (f TextureFormat) String() string {
	switch f {
	case TextureFormatR8Unorm:
		return "R8Unorm"
	case TextureFormatRG8Unorm:
		return "RG8Unorm"
	case TextureFormatRGBA8Unorm:
		return "RGBA8Unorm"
	default:
		return fmt.Sprintf("TextureFormat(%d)", uint32(f))
	}
}

// TextureUsage is a bitmask specifying how a texture will be used.
type TextureUsage uint32

// Texture usage flags.
const (
	// TextureUsageCopySrc indicates the texture can be read back.
	TextureUsageCopySrc TextureUsage = 1 << 0

	// TextureUsageCopyDst indicates the texture can be written from host memory.
	TextureUsageCopyDst TextureUsage = 1 << 1

	// TextureUsageTextureBinding indicates the texture can be sampled.
	TextureUsageTextureBinding TextureUsage = 1 << 2

	// TextureUsageStorageBinding indicates the texture can be written by a compute pass.
	TextureUsageStorageBinding TextureUsage = 1 << 3
)

// Common usage combinations.
const (
	// UsagePlane is the usage of an uploaded luma or chroma plane.
	UsagePlane = TextureUsageCopyDst | TextureUsageTextureBinding

	// UsageOutput is the usage of a conversion output texture.
	UsageOutput = TextureUsageStorageBinding | TextureUsageTextureBinding | TextureUsageCopySrc
)

// TextureDesc describes a 2D texture.
type TextureDesc struct {
	// Label is an optional debug label.
	Label string

	Width  int
	Height int
	Format TextureFormat
	Usage  TextureUsage
}

// Validate reports whether the descriptor can be allocated.
func (d *TextureDesc) Validate() error {
	if d == nil {
		return fmt.Errorf("%w: nil texture descriptor", ErrInvalidDescriptor)
	}
	if d.Width <= 0 || d.Height <= 0 {
		return fmt.Errorf("%w: texture size %dx%d", ErrInvalidDescriptor, d.Width, d.Height)
	}
	if d.Format.BytesPerPixel() == 0 {
		return fmt.Errorf("%w: texture format %v", ErrInvalidDescriptor, d.Format)
	}
	return nil
}

// SizeBytes returns the tightly packed size of the texture contents.
func (d *TextureDesc) SizeBytes() int {
	return d.Width * d.Height * d.Format.BytesPerPixel()
}

// AddressMode controls sampling outside the [0, 1] texture coordinate range.
type AddressMode uint32

// Address modes.
const (
	// AddressModeClampToEdge clamps coordinates to the edge texel.
	AddressModeClampToEdge AddressMode = iota + 1

	// AddressModeRepeat wraps coordinates around.
	AddressModeRepeat
)

// FilterMode selects texel filtering.
type FilterMode uint32

// Filter modes.
const (
	// FilterModeNearest picks the nearest texel.
	FilterModeNearest FilterMode = iota + 1

	// FilterModeLinear blends neighboring texels.
	FilterModeLinear
)

// SamplerDesc describes a texture sampler.
type SamplerDesc struct {
	Label        string
	AddressModeU AddressMode
	AddressModeV AddressMode
	MagFilter    FilterMode
	MinFilter    FilterMode
}

// ClampSampler is the sampler used for plane textures: clamp to edge in
// both axes with nearest filtering, so edge texels never wrap around.
var ClampSampler = SamplerDesc{
	Label:        "plane_clamp_sampler",
	AddressModeU: AddressModeClampToEdge,
	AddressModeV: AddressModeClampToEdge,
	MagFilter:    FilterModeNearest,
	MinFilter:    FilterModeNearest,
}

// Plane is a view of one plane of a planar pixel buffer.
//
// Data holds Height rows of BytesPerRow bytes each; only the first
// Width*bytesPerPixel bytes of a row are pixel data.
type Plane struct {
	Data        []byte
	Width       int
	Height      int
	BytesPerRow int
}

// Row returns the pixel bytes of row y, given the texel size.
func (p Plane) Row(y, bytesPerPixel int) []byte {
	off := y * p.BytesPerRow
	return p.Data[off : off+p.Width*bytesPerPixel]
}
