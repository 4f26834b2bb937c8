// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package wgpu implements gpucore.Device on the gogpu/wgpu hardware
// abstraction layer.
//
// The device runs the YUV conversion as a WGSL compute shader. The shader is
// compiled to SPIR-V with gogpu/naga and dispatched in 8x8 workgroups; each
// invocation samples the luma and chroma planes at its output texel center
// and writes one RGBA8 texel to a storage texture.
//
// # Device Sources
//
// A device can share the GPU of a host application or own a standalone one:
//
//	// Shared: any provider exposing HalDevice() / HalQueue().
//	dev, err := wgpu.NewDevice(provider)
//
//	// Standalone: selects the best registered HAL backend and adapter.
//	dev, err := wgpu.Open()
//
// # Data Flow
//
//	NV12 planes -> WriteTexture (R8 + RG8) -> cs_yuv_to_rgb -> RGBA8 storage
//	            -> CopyTextureToBuffer -> MapBuffer (ReadTexture only)
//
// The HAL layer has no zero-copy import of host memory, so TextureCache
// returns nil and callers upload planes with WriteTexture.
//
// Importing the package registers the "wgpu" backend with the backend
// registry. Build with the nogpu tag to exclude it.
package wgpu
