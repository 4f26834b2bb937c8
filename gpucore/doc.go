// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package gpucore provides the backend-neutral GPU contract of the camstream
// conversion pipeline.
//
// The [Device] interface abstracts over backend implementations so the same
// binding and conversion code runs on:
//   - backend/wgpu (gogpu/wgpu HAL: Vulkan, Metal, DX12, GLES)
//   - backend/software (CPU device mirroring the shader)
//
// # Architecture
//
//	               +------------------+
//	               |    camstream     |
//	               | (Stream, binder, |
//	               |  converter)      |
//	               +--------+---------+
//	                        |  gpucore.Device
//	         +--------------+--------------+
//	         |                             |
//	+--------v--------+          +--------v--------+
//	|  wgpu backend   |          | software backend|
//	|  (hal.Device)   |          |   (CPU mirror)  |
//	+-----------------+          +-----------------+
//
// # Resource Management
//
// GPU resources are managed via opaque IDs ([TextureID], [SamplerID]).
// Devices track the mapping between IDs and backend resources. The
// conversion shader itself is embedded as [YUVConversionWGSL]; devices
// compile it in [Device.CreateProgram].
//
// # Zero-copy
//
// Devices that can alias host memory expose a [TextureCache]. Textures from
// the cache borrow the plane bytes and must be released before the source
// buffer is unlocked.
package gpucore
