package camstream

import (
	"fmt"
	"slices"
)

// PixelFormat identifies a capture pixel format.
type PixelFormat uint32

// Pixel formats a capture source may advertise. Only the biplanar 4:2:0
// 8-bit variants can be converted.
const (
	// PixelFormatNV12VideoRange is biplanar 4:2:0 with luma in [16, 235].
	PixelFormatNV12VideoRange PixelFormat = iota + 1

	// PixelFormatNV12FullRange is biplanar 4:2:0 with luma in [0, 255].
	PixelFormatNV12FullRange

	// PixelFormatBGRA is packed 32-bit BGRA. Not convertible.
	PixelFormatBGRA

	// PixelFormatI420 is triplanar 4:2:0. Not convertible.
	PixelFormatI420
)

// String returns the format name.
func (f PixelFormat) String() string {
	switch f {
	case PixelFormatNV12VideoRange:
		return "420v"
	case PixelFormatNV12FullRange:
		return "420f"
	case PixelFormatBGRA:
		return "BGRA"
	case PixelFormatI420:
		return "I420"
	default:
		return fmt.Sprintf("PixelFormat(%d)", uint32(f))
	}
}

// IsBiplanar420 reports whether the format is one of the supported
// biplanar 4:2:0 8-bit variants.
func (f PixelFormat) IsBiplanar420() bool {
	return f == PixelFormatNV12VideoRange || f == PixelFormatNV12FullRange
}

// ColorRange is the luma/chroma value-scaling convention.
type ColorRange uint8

// Color ranges.
const (
	// RangeVideo is limited (studio) range.
	RangeVideo ColorRange = iota

	// RangeFull is full range.
	RangeFull
)

// String returns the range name.
func (r ColorRange) String() string {
	if r == RangeFull {
		return "full"
	}
	return "video"
}

// FormatSelection is the outcome of negotiating with a capture source.
type FormatSelection struct {
	Format PixelFormat
	Range  ColorRange
}

// SelectPixelFormat picks the capture format from the formats a source
// advertises: full-range biplanar 4:2:0 when offered, else video range.
// It returns ErrUnsupportedFormat when neither is available.
func SelectPixelFormat(available []PixelFormat) (FormatSelection, error) {
	if slices.Contains(available, PixelFormatNV12FullRange) {
		return FormatSelection{Format: PixelFormatNV12FullRange, Range: RangeFull}, nil
	}
	if slices.Contains(available, PixelFormatNV12VideoRange) {
		return FormatSelection{Format: PixelFormatNV12VideoRange, Range: RangeVideo}, nil
	}
	return FormatSelection{}, fmt.Errorf("%w: source offers %v", ErrUnsupportedFormat, available)
}
