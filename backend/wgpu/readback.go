// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build !nogpu

package wgpu

import (
	"fmt"
	"unsafe"

	"github.com/gogpu/camstream/gpucore"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// copyRowAlignment is the required BytesPerRow alignment of texture to
// buffer copies.
const copyRowAlignment = 256

// alignedBytesPerRow rounds a row size up to copyRowAlignment.
func alignedBytesPerRow(rowBytes int) int {
	return (rowBytes + copyRowAlignment - 1) / copyRowAlignment * copyRowAlignment
}

// ReadTexture copies the texture into a staging buffer, waits for the GPU
// and returns the rows tightly packed.
func (d *Device) ReadTexture(id gpucore.TextureID) ([]byte, error) {
	t, err := d.lookup(id)
	if err != nil {
		return nil, err
	}
	w, h := t.desc.Width, t.desc.Height
	rowBytes := w * t.desc.Format.BytesPerPixel()
	stride := alignedBytesPerRow(rowBytes)
	size := uint64(stride) * uint64(h) //nolint:gosec // validated positive

	staging, err := d.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "readback_staging",
		Size:  size,
		Usage: gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("wgpu: create staging buffer: %w", err)
	}
	defer d.device.DestroyBuffer(staging)

	encoder, err := d.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: "readback_encoder"})
	if err != nil {
		return nil, fmt.Errorf("wgpu: create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding("readback"); err != nil {
		return nil, fmt.Errorf("wgpu: begin encoding: %w", err)
	}

	// Storage writes must be visible to the copy. This is a no-op on
	// Metal, GLES, software and noop backends.
	encoder.TransitionTextures([]hal.TextureBarrier{{
		Texture: t.tex,
		Usage: hal.TextureUsageTransition{
			OldUsage: gputypes.TextureUsageStorageBinding,
			NewUsage: gputypes.TextureUsageCopySrc,
		},
	}})
	//nolint:gosec // G115: dimensions validated positive
	encoder.CopyTextureToBuffer(t.tex, staging, []hal.BufferTextureCopy{{
		BufferLayout: hal.ImageDataLayout{BytesPerRow: uint32(stride), RowsPerImage: uint32(h)},
		TextureBase:  hal.ImageCopyTexture{Texture: t.tex, Aspect: gputypes.TextureAspectAll},
		Size:         hal.Extent3D{Width: uint32(w), Height: uint32(h), DepthOrArrayLayers: 1},
	}})

	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return nil, fmt.Errorf("wgpu: end encoding: %w", err)
	}
	defer d.device.FreeCommandBuffer(cmdBuf)

	if err := d.submitAndWait(cmdBuf); err != nil {
		return nil, err
	}

	mapping, err := d.device.MapBuffer(staging, 0, size)
	if err != nil {
		return nil, fmt.Errorf("wgpu: map staging buffer: %w", err)
	}
	mapped := unsafe.Slice((*byte)(mapping.Ptr), size) //nolint:gosec // mapping covers size bytes
	out := make([]byte, 0, rowBytes*h)
	for y := range h {
		out = append(out, mapped[y*stride:y*stride+rowBytes]...)
	}
	if err := d.device.UnmapBuffer(staging); err != nil {
		return nil, fmt.Errorf("wgpu: unmap staging buffer: %w", err)
	}
	return out, nil
}

// submitAndWait submits one command buffer and blocks until the GPU is idle.
func (d *Device) submitAndWait(cmdBuf hal.CommandBuffer) error {
	if _, err := d.queue.Submit([]hal.CommandBuffer{cmdBuf}); err != nil {
		return fmt.Errorf("wgpu: submit: %w", err)
	}
	if err := d.device.WaitIdle(); err != nil {
		return fmt.Errorf("wgpu: wait for GPU: %w", err)
	}
	return nil
}
