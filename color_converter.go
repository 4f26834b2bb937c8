package camstream

import (
	"context"
	"fmt"

	"github.com/gogpu/camstream/gpucore"
)

// ColorConverter fuses a bound luma and chroma texture pair into an RGBA
// framebuffer.
//
// The matrix is fixed for the converter's lifetime. Convert must run on the
// GPU work queue.
type ColorConverter struct {
	gc      *GPUContext
	matrix  ColorMatrix
	program gpucore.Program
}

// NewColorConverter compiles the conversion program. A compile failure is
// a setup error and is returned as is.
func NewColorConverter(gc *GPUContext, matrix ColorMatrix) (*ColorConverter, error) {
	program, err := gc.device.CreateProgram(gpucore.YUVConversionProgram())
	if err != nil {
		return nil, fmt.Errorf("camstream: compile conversion program: %w", err)
	}
	return &ColorConverter{gc: gc, matrix: matrix, program: program}, nil
}

// Matrix returns the conversion matrix.
func (c *ColorConverter) Matrix() ColorMatrix { return c.matrix }

// Convert writes RGB for luma and chroma into a new framebuffer sized like
// luma, tagged with the capture timestamp ts. The returned framebuffer
// holds one lock owned by the caller.
func (c *ColorConverter) Convert(_ context.Context, luma, chroma TextureHandle, sampler gpucore.SamplerID, ts Timestamp) (*Framebuffer, error) {
	out, err := c.gc.cache.RequestTexture(luma.Width, luma.Height,
		gpucore.TextureFormatRGBA8Unorm, gpucore.UsageOutput)
	if err != nil {
		return nil, fmt.Errorf("camstream: allocate output framebuffer: %w", err)
	}
	fb := newFramebuffer(c.gc, out, OrientationPortrait)

	err = c.program.Dispatch(&gpucore.ConversionPass{
		Luma:    luma.ID,
		Chroma:  chroma.ID,
		Sampler: sampler,
		Output:  out.ID,
		Params:  c.matrix.Params,
	})
	if err != nil {
		fb.Unlock()
		return nil, fmt.Errorf("camstream: conversion pass: %w", err)
	}

	fb.timing = VideoFrame(ts)
	return fb, nil
}

// Close releases the program.
func (c *ColorConverter) Close() {
	c.program.Destroy()
}
