// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build !nogpu

package wgpu

import (
	"fmt"
	"sync"

	"github.com/gogpu/camstream/gpucore"
	"github.com/gogpu/camstream/internal/cache"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/naga"
	"github.com/gogpu/wgpu/hal"
)

// spirvCache holds compiled modules keyed by WGSL source. Every stream
// creates its own program from the same source.
var spirvCache = cache.New[string, []uint32](8)

// compileSPIRV compiles WGSL to little-endian SPIR-V words, once per
// distinct source.
func compileSPIRV(wgsl string) ([]uint32, error) {
	return spirvCache.GetOrCreate(wgsl, func() ([]uint32, error) {
		return compileSPIRVUncached(wgsl)
	})
}

func compileSPIRVUncached(wgsl string) ([]uint32, error) {
	spirvBytes, err := naga.Compile(wgsl)
	if err != nil {
		return nil, fmt.Errorf("failed to compile shader: %w", err)
	}
	if len(spirvBytes)%4 != 0 {
		return nil, fmt.Errorf("SPIR-V size %d is not a multiple of 4", len(spirvBytes))
	}

	spirvCode := make([]uint32, len(spirvBytes)/4)
	for i := range spirvCode {
		spirvCode[i] = uint32(spirvBytes[i*4]) |
			uint32(spirvBytes[i*4+1])<<8 |
			uint32(spirvBytes[i*4+2])<<16 |
			uint32(spirvBytes[i*4+3])<<24
	}
	return spirvCode, nil
}

// conversionLayoutEntries mirrors the bindings of the conversion shader.
func conversionLayoutEntries() []gputypes.BindGroupLayoutEntry {
	plane := &gputypes.TextureBindingLayout{
		SampleType:    gputypes.TextureSampleTypeFloat,
		ViewDimension: gputypes.TextureViewDimension2D,
	}
	return []gputypes.BindGroupLayoutEntry{
		{Binding: 0, Visibility: gputypes.ShaderStageCompute, Texture: plane},
		{Binding: 1, Visibility: gputypes.ShaderStageCompute, Texture: plane},
		{
			Binding: 2, Visibility: gputypes.ShaderStageCompute,
			Sampler: &gputypes.SamplerBindingLayout{Type: gputypes.SamplerBindingTypeNonFiltering},
		},
		{
			Binding: 3, Visibility: gputypes.ShaderStageCompute,
			Buffer: &gputypes.BufferBindingLayout{
				Type:           gputypes.BufferBindingTypeUniform,
				MinBindingSize: gpucore.ParamsSize,
			},
		},
		{
			Binding: 4, Visibility: gputypes.ShaderStageCompute,
			StorageTexture: &gputypes.StorageTextureBindingLayout{
				Access:        gputypes.StorageTextureAccessWriteOnly,
				Format:        gputypes.TextureFormatRGBA8Unorm,
				ViewDimension: gputypes.TextureViewDimension2D,
			},
		},
	}
}

// program is the compiled conversion compute pipeline.
type program struct {
	dev   *Device
	label string

	mu         sync.Mutex
	shader     hal.ShaderModule
	bindLayout hal.BindGroupLayout
	pipeLayout hal.PipelineLayout
	pipeline   hal.ComputePipeline
	params     hal.Buffer
}

// CreateProgram compiles the conversion shader and builds its pipeline.
func (d *Device) CreateProgram(desc *gpucore.ProgramDesc) (gpucore.Program, error) {
	if desc == nil || desc.Source == "" || desc.EntryPoint == "" {
		return nil, fmt.Errorf("%w: empty program", gpucore.ErrUnsupportedProgram)
	}
	spirv, err := compileSPIRV(desc.Source)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", gpucore.ErrUnsupportedProgram, desc.Label, err)
	}

	p := &program{dev: d, label: desc.Label}
	if err := p.init(spirv, desc.EntryPoint); err != nil {
		p.Destroy()
		return nil, err
	}
	slogger().Debug("wgpu: program created", "label", desc.Label, "spirv_words", len(spirv))
	return p, nil
}

func (p *program) init(spirv []uint32, entryPoint string) error {
	dev := p.dev.device
	var err error

	p.shader, err = dev.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  p.label,
		Source: hal.ShaderSource{SPIRV: spirv},
	})
	if err != nil {
		return fmt.Errorf("wgpu: create shader module: %w", err)
	}
	p.bindLayout, err = dev.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label:   p.label + "_bind_layout",
		Entries: conversionLayoutEntries(),
	})
	if err != nil {
		return fmt.Errorf("wgpu: create bind group layout: %w", err)
	}
	p.pipeLayout, err = dev.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            p.label + "_pipe_layout",
		BindGroupLayouts: []hal.BindGroupLayout{p.bindLayout},
	})
	if err != nil {
		return fmt.Errorf("wgpu: create pipeline layout: %w", err)
	}
	p.pipeline, err = dev.CreateComputePipeline(&hal.ComputePipelineDescriptor{
		Label:   p.label,
		Layout:  p.pipeLayout,
		Compute: hal.ComputeState{Module: p.shader, EntryPoint: entryPoint},
	})
	if err != nil {
		return fmt.Errorf("wgpu: create compute pipeline: %w", err)
	}
	p.params, err = dev.CreateBuffer(&hal.BufferDescriptor{
		Label: p.label + "_params",
		Size:  gpucore.ParamsSize,
		Usage: gputypes.BufferUsageUniform | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("wgpu: create params buffer: %w", err)
	}
	return nil
}

// Dispatch encodes one compute pass over the output texture, submits it
// and waits for completion.
func (p *program) Dispatch(pass *gpucore.ConversionPass) error {
	d := p.dev
	luma, err := d.lookup(pass.Luma)
	if err != nil {
		return fmt.Errorf("wgpu: luma: %w", err)
	}
	chroma, err := d.lookup(pass.Chroma)
	if err != nil {
		return fmt.Errorf("wgpu: chroma: %w", err)
	}
	out, err := d.lookup(pass.Output)
	if err != nil {
		return fmt.Errorf("wgpu: output: %w", err)
	}
	sampler, err := d.sampler(pass.Sampler)
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if err := d.queue.WriteBuffer(p.params, 0, pass.Params.Bytes()); err != nil {
		return fmt.Errorf("wgpu: write params: %w", err)
	}

	bindGroup, err := d.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:  p.label + "_bind",
		Layout: p.bindLayout,
		Entries: []gputypes.BindGroupEntry{
			{Binding: 0, Resource: gputypes.TextureViewBinding{TextureView: luma.view.NativeHandle()}},
			{Binding: 1, Resource: gputypes.TextureViewBinding{TextureView: chroma.view.NativeHandle()}},
			{Binding: 2, Resource: gputypes.SamplerBinding{Sampler: sampler.NativeHandle()}},
			{Binding: 3, Resource: gputypes.BufferBinding{Buffer: p.params.NativeHandle(), Size: gpucore.ParamsSize}},
			{Binding: 4, Resource: gputypes.TextureViewBinding{TextureView: out.view.NativeHandle()}},
		},
	})
	if err != nil {
		return fmt.Errorf("wgpu: create bind group: %w", err)
	}
	defer d.device.DestroyBindGroup(bindGroup)

	encoder, err := d.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: p.label + "_encoder"})
	if err != nil {
		return fmt.Errorf("wgpu: create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding(p.label); err != nil {
		return fmt.Errorf("wgpu: begin encoding: %w", err)
	}

	cp := encoder.BeginComputePass(&hal.ComputePassDescriptor{Label: p.label + "_pass"})
	cp.SetPipeline(p.pipeline)
	cp.SetBindGroup(0, bindGroup, nil)
	cp.Dispatch(gpucore.WorkgroupCount(out.desc.Width), gpucore.WorkgroupCount(out.desc.Height), 1)
	cp.End()

	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return fmt.Errorf("wgpu: end encoding: %w", err)
	}
	defer d.device.FreeCommandBuffer(cmdBuf)

	return d.submitAndWait(cmdBuf)
}

// Destroy releases the pipeline objects. Safe on a partially built program.
func (p *program) Destroy() {
	p.mu.Lock()
	defer p.mu.Unlock()

	dev := p.dev.device
	if p.params != nil {
		dev.DestroyBuffer(p.params)
		p.params = nil
	}
	if p.pipeline != nil {
		dev.DestroyComputePipeline(p.pipeline)
		p.pipeline = nil
	}
	if p.pipeLayout != nil {
		dev.DestroyPipelineLayout(p.pipeLayout)
		p.pipeLayout = nil
	}
	if p.bindLayout != nil {
		dev.DestroyBindGroupLayout(p.bindLayout)
		p.bindLayout = nil
	}
	if p.shader != nil {
		dev.DestroyShaderModule(p.shader)
		p.shader = nil
	}
}
