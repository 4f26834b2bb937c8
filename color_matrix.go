package camstream

import "github.com/gogpu/camstream/gpucore"

// ColorMatrix is a fixed YCbCr to RGB conversion.
type ColorMatrix struct {
	Name   string
	Range  ColorRange
	Params gpucore.ConversionParams
}

// BT.601 conversion matrices. Columns multiply Y, Cb and Cr respectively.
var (
	// ColorMatrix601VideoRange converts limited-range BT.601: luma in
	// [16, 235], chroma centered at 128.
	ColorMatrix601VideoRange = ColorMatrix{
		Name:  "bt601-video",
		Range: RangeVideo,
		Params: gpucore.ConversionParams{
			Columns: [3][3]float32{
				{1.164, 1.164, 1.164},
				{0.0, -0.392, 2.017},
				{1.596, -0.813, 0.0},
			},
			Offset: [3]float32{16.0 / 255.0, 0.5, 0.5},
		},
	}

	// ColorMatrix601FullRange converts full-range BT.601: luma in [0, 255].
	ColorMatrix601FullRange = ColorMatrix{
		Name:  "bt601-full",
		Range: RangeFull,
		Params: gpucore.ConversionParams{
			Columns: [3][3]float32{
				{1.0, 1.0, 1.0},
				{0.0, -0.343, 1.765},
				{1.4, -0.711, 0.0},
			},
			Offset: [3]float32{0.0, 0.5, 0.5},
		},
	}
)

// ColorMatrixForRange returns the matrix matching a capture range.
func ColorMatrixForRange(r ColorRange) ColorMatrix {
	if r == RangeFull {
		return ColorMatrix601FullRange
	}
	return ColorMatrix601VideoRange
}

// Convert applies the matrix to a single sample on the CPU. The result is
// bit-identical to the GPU program on the upload path.
func (m *ColorMatrix) Convert(y, cb, cr uint8) (r, g, b uint8) {
	return m.Params.Apply(y, cb, cr)
}
