// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpucore

import (
	_ "embed"
)

// YUVConversionWGSL is the compute shader fusing a luma and a chroma plane
// into RGBA.
//
// Bindings (group 0):
//
//	0: luma texture (R8Unorm, sampled)
//	1: chroma texture (RG8Unorm, sampled)
//	2: sampler (clamp to edge, nearest)
//	3: uniform ConversionParams
//	4: output storage texture (RGBA8Unorm, write)
//
//go:embed shaders/yuv_to_rgb.wgsl
var YUVConversionWGSL string

// YUVConversionEntryPoint is the compute entry point of YUVConversionWGSL.
const YUVConversionEntryPoint = "cs_yuv_to_rgb"

// YUVConversionWorkgroupSize is the workgroup edge length of the shader.
const YUVConversionWorkgroupSize = 8

// YUVConversionProgram returns the program descriptor of the conversion
// shader.
func YUVConversionProgram() *ProgramDesc {
	return &ProgramDesc{
		Label:      "yuv_to_rgb",
		Source:     YUVConversionWGSL,
		EntryPoint: YUVConversionEntryPoint,
	}
}

// WorkgroupCount returns the number of workgroups covering n pixels.
func WorkgroupCount(n int) uint32 {
	//nolint:gosec // G115: n is a validated texture dimension
	return uint32((n + YUVConversionWorkgroupSize - 1) / YUVConversionWorkgroupSize)
}
