// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpucore

import (
	"encoding/binary"
	"math"
)

// ParamsSize is the size in bytes of the packed uniform block.
const ParamsSize = 64

// ConversionParams are the uniforms of the conversion program.
//
// Columns is the 3x3 matrix in column order: column 0 multiplies luma,
// column 1 multiplies Cb and column 2 multiplies Cr. Offset is subtracted
// from the normalized (Y, Cb, Cr) sample before the multiply.
type ConversionParams struct {
	Columns [3][3]float32
	Offset  [3]float32
}

// Bytes packs the parameters in the std140 layout of the shader's
// ConversionParams struct: three vec4 columns followed by a vec4 offset.
func (p *ConversionParams) Bytes() []byte {
	buf := make([]byte, ParamsSize)
	for c := range 3 {
		for r := range 3 {
			putFloat32(buf, c*16+r*4, p.Columns[c][r])
		}
	}
	for i := range 3 {
		putFloat32(buf, 48+i*4, p.Offset[i])
	}
	return buf
}

// Apply converts one (Y, Cb, Cr) sample to RGB exactly as the shader does:
// normalize, subtract the offset, multiply, clamp and round to 8 bits.
func (p *ConversionParams) Apply(y, cb, cr uint8) (r, g, b uint8) {
	fy := float32(y)/255 - p.Offset[0]
	fu := float32(cb)/255 - p.Offset[1]
	fv := float32(cr)/255 - p.Offset[2]

	m := &p.Columns
	return unorm8(dot3(m[0][0], m[1][0], m[2][0], fy, fu, fv)),
		unorm8(dot3(m[0][1], m[1][1], m[2][1], fy, fu, fv)),
		unorm8(dot3(m[0][2], m[1][2], m[2][2], fy, fu, fv))
}

// dot3 rounds every product explicitly so the compiler cannot fuse them
// into FMA instructions; results are identical on every architecture.
func dot3(a, b, c, x, y, z float32) float32 {
	return float32(a*x) + float32(b*y) + float32(c*z)
}

func unorm8(v float32) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return uint8(v*255 + 0.5)
}

func putFloat32(buf []byte, offset int, v float32) {
	binary.LittleEndian.PutUint32(buf[offset:], math.Float32bits(v))
}
