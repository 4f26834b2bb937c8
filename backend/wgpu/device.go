// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build !nogpu

package wgpu

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/gogpu/camstream/gpucore"
	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// ErrNoAdapter is returned by Open when no GPU adapter is available.
var ErrNoAdapter = errors.New("wgpu: no GPU adapters found")

// texture is a HAL texture with the view bound by the conversion program.
type texture struct {
	desc gpucore.TextureDesc
	tex  hal.Texture
	view hal.TextureView
}

// Device is a gpucore.Device backed by a hal.Device and its queue.
type Device struct {
	device hal.Device
	queue  hal.Queue
	info   gpucontext.AdapterInfo

	// instance is set when the device was opened standalone.
	instance hal.Instance

	mu       sync.RWMutex
	textures map[gpucore.TextureID]*texture
	samplers map[gpucore.SamplerID]hal.Sampler
	nextID   atomic.Uint64
	lost     bool
}

var _ gpucore.Device = (*Device)(nil)

// NewDevice creates a device on the GPU of an external provider (e.g.,
// gogpu). The provider must implement HalDevice() any and HalQueue() any
// returning hal.Device and hal.Queue. If it also implements
// gpucontext.DeviceProvider, its adapter info is used.
func NewDevice(provider any) (*Device, error) {
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	hp, ok := provider.(halProvider)
	if !ok {
		return nil, fmt.Errorf("wgpu: provider does not expose HAL types")
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return nil, fmt.Errorf("wgpu: provider HalDevice is not hal.Device")
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return nil, fmt.Errorf("wgpu: provider HalQueue is not hal.Queue")
	}

	info := gpucontext.AdapterInfo{Name: "shared", Type: gpucontext.AdapterTypeUnknown}
	if dp, ok := provider.(gpucontext.DeviceProvider); ok {
		info = dp.AdapterInfo()
	}
	return NewDeviceFromHAL(device, queue, info)
}

// NewDeviceFromHAL wraps an opened HAL device. The caller keeps ownership
// of device and queue; Destroy releases only resources created through the
// returned Device.
func NewDeviceFromHAL(device hal.Device, queue hal.Queue, info gpucontext.AdapterInfo) (*Device, error) {
	if device == nil || queue == nil {
		return nil, fmt.Errorf("wgpu: nil HAL device or queue")
	}
	return &Device{
		device:   device,
		queue:    queue,
		info:     info,
		textures: make(map[gpucore.TextureID]*texture),
		samplers: make(map[gpucore.SamplerID]hal.Sampler),
	}, nil
}

// Open creates a standalone device on the best available HAL backend,
// preferring discrete and integrated GPUs over other adapters.
func Open() (*Device, error) {
	backend, err := hal.SelectBestBackend()
	if err != nil {
		return nil, fmt.Errorf("wgpu: select backend: %w", err)
	}
	instance, err := backend.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	if err != nil {
		return nil, fmt.Errorf("wgpu: create instance: %w", err)
	}

	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		instance.Destroy()
		return nil, ErrNoAdapter
	}
	selected := selectAdapter(adapters)

	openDev, err := selected.Adapter.Open(gputypes.Features(0), gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		return nil, fmt.Errorf("wgpu: open device: %w", err)
	}

	d, err := NewDeviceFromHAL(openDev.Device, openDev.Queue, adapterInfo(selected.Info))
	if err != nil {
		openDev.Device.Destroy()
		instance.Destroy()
		return nil, err
	}
	d.instance = instance
	slogger().Info("wgpu: device opened",
		"backend", backend.Variant(),
		"adapter", selected.Info.Name,
		"type", selected.Info.DeviceType)
	return d, nil
}

// selectAdapter picks the first hardware GPU, falling back to the first
// adapter.
func selectAdapter(adapters []hal.ExposedAdapter) *hal.ExposedAdapter {
	for i := range adapters {
		if adapters[i].Info.DeviceType == gputypes.DeviceTypeDiscreteGPU ||
			adapters[i].Info.DeviceType == gputypes.DeviceTypeIntegratedGPU {
			return &adapters[i]
		}
	}
	return &adapters[0]
}

// adapterInfo converts HAL adapter info to the gpucontext form.
func adapterInfo(info gputypes.AdapterInfo) gpucontext.AdapterInfo {
	t := gpucontext.AdapterTypeUnknown
	switch info.DeviceType {
	case gputypes.DeviceTypeDiscreteGPU:
		t = gpucontext.AdapterTypeDiscrete
	case gputypes.DeviceTypeIntegratedGPU:
		t = gpucontext.AdapterTypeIntegrated
	case gputypes.DeviceTypeCPU:
		t = gpucontext.AdapterTypeSoftware
	}
	return gpucontext.AdapterInfo{Name: info.Name, Type: t}
}

// Name returns "wgpu".
func (d *Device) Name() string { return "wgpu" }

// AdapterInfo describes the adapter the device was opened on.
func (d *Device) AdapterInfo() gpucontext.AdapterInfo { return d.info }

// SetLogger sets the logger for the wgpu device.
func (d *Device) SetLogger(l *slog.Logger) { setLogger(l) }

// HalDevice returns the underlying hal.Device.
func (d *Device) HalDevice() any { return d.device }

// HalQueue returns the underlying hal.Queue.
func (d *Device) HalQueue() any { return d.queue }

// CreateTexture allocates a texture and its default view.
func (d *Device) CreateTexture(desc *gpucore.TextureDesc) (gpucore.TextureID, error) {
	if err := desc.Validate(); err != nil {
		return gpucore.InvalidID, err
	}
	format := textureFormat(desc.Format)

	tex, err := d.device.CreateTexture(&hal.TextureDescriptor{
		Label: desc.Label,
		Size: hal.Extent3D{
			Width:              uint32(desc.Width),  //nolint:gosec // validated positive
			Height:             uint32(desc.Height), //nolint:gosec // validated positive
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        format,
		Usage:         textureUsage(desc.Usage),
	})
	if err != nil {
		return gpucore.InvalidID, fmt.Errorf("%w: create texture: %w", gpucore.ErrOutOfMemory, err)
	}
	view, err := d.device.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label:           desc.Label + "_view",
		Format:          format,
		Dimension:       gputypes.TextureViewDimension2D,
		Aspect:          gputypes.TextureAspectAll,
		MipLevelCount:   1,
		ArrayLayerCount: 1,
	})
	if err != nil {
		d.device.DestroyTexture(tex)
		return gpucore.InvalidID, fmt.Errorf("wgpu: create texture view: %w", err)
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.lost {
		d.device.DestroyTextureView(view)
		d.device.DestroyTexture(tex)
		return gpucore.InvalidID, gpucore.ErrDeviceLost
	}
	id := gpucore.TextureID(d.nextID.Add(1))
	d.textures[id] = &texture{desc: *desc, tex: tex, view: view}
	return id, nil
}

// DestroyTexture releases a texture and its view.
func (d *Device) DestroyTexture(id gpucore.TextureID) {
	d.mu.Lock()
	t, ok := d.textures[id]
	delete(d.textures, id)
	d.mu.Unlock()
	if ok {
		d.destroyTexture(t)
	}
}

func (d *Device) destroyTexture(t *texture) {
	d.device.DestroyTextureView(t.view)
	d.device.DestroyTexture(t.tex)
}

func (d *Device) lookup(id gpucore.TextureID) (*texture, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	t, ok := d.textures[id]
	if !ok {
		return nil, fmt.Errorf("%w: %d", gpucore.ErrTextureNotFound, id)
	}
	return t, nil
}

// WriteTexture uploads host rows through the queue.
func (d *Device) WriteTexture(id gpucore.TextureID, data []byte, bytesPerRow int) error {
	t, err := d.lookup(id)
	if err != nil {
		return err
	}
	rowBytes := t.desc.Width * t.desc.Format.BytesPerPixel()
	if bytesPerRow < rowBytes {
		return fmt.Errorf("wgpu: bytesPerRow %d < row size %d", bytesPerRow, rowBytes)
	}
	if need := (t.desc.Height-1)*bytesPerRow + rowBytes; len(data) < need {
		return fmt.Errorf("wgpu: write of %d bytes, need %d", len(data), need)
	}

	w, h := uint32(t.desc.Width), uint32(t.desc.Height) //nolint:gosec // validated positive
	err = d.queue.WriteTexture(
		&hal.ImageCopyTexture{Texture: t.tex, Aspect: gputypes.TextureAspectAll},
		data,
		&hal.ImageDataLayout{BytesPerRow: uint32(bytesPerRow), RowsPerImage: h}, //nolint:gosec // bounded by data length
		&hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
	)
	if err != nil {
		return fmt.Errorf("wgpu: write texture: %w", err)
	}
	return nil
}

// CreateSampler creates a HAL sampler.
func (d *Device) CreateSampler(desc *gpucore.SamplerDesc) (gpucore.SamplerID, error) {
	if desc == nil {
		return gpucore.InvalidID, fmt.Errorf("%w: nil sampler descriptor", gpucore.ErrInvalidDescriptor)
	}
	s, err := d.device.CreateSampler(&hal.SamplerDescriptor{
		Label:        desc.Label,
		AddressModeU: addressMode(desc.AddressModeU),
		AddressModeV: addressMode(desc.AddressModeV),
		AddressModeW: gputypes.AddressModeClampToEdge,
		MagFilter:    filterMode(desc.MagFilter),
		MinFilter:    filterMode(desc.MinFilter),
		MipmapFilter: gputypes.FilterModeNearest,
		LodMaxClamp:  32,
	})
	if err != nil {
		return gpucore.InvalidID, fmt.Errorf("wgpu: create sampler: %w", err)
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.lost {
		d.device.DestroySampler(s)
		return gpucore.InvalidID, gpucore.ErrDeviceLost
	}
	id := gpucore.SamplerID(d.nextID.Add(1))
	d.samplers[id] = s
	return id, nil
}

// DestroySampler releases a sampler.
func (d *Device) DestroySampler(id gpucore.SamplerID) {
	d.mu.Lock()
	s, ok := d.samplers[id]
	delete(d.samplers, id)
	d.mu.Unlock()
	if ok {
		d.device.DestroySampler(s)
	}
}

func (d *Device) sampler(id gpucore.SamplerID) (hal.Sampler, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	s, ok := d.samplers[id]
	if !ok {
		return nil, fmt.Errorf("%w: %d", gpucore.ErrSamplerNotFound, id)
	}
	return s, nil
}

// TextureCache returns nil: the HAL has no host memory import.
func (d *Device) TextureCache() gpucore.TextureCache { return nil }

// WaitIdle blocks until the GPU has finished all submitted work.
func (d *Device) WaitIdle() error {
	if err := d.device.WaitIdle(); err != nil {
		return fmt.Errorf("wgpu: wait idle: %w", err)
	}
	return nil
}

// Destroy releases every remaining texture and sampler. A standalone
// device also destroys its HAL device and instance.
func (d *Device) Destroy() {
	d.mu.Lock()
	if d.lost {
		d.mu.Unlock()
		return
	}
	d.lost = true
	textures := d.textures
	samplers := d.samplers
	d.textures = make(map[gpucore.TextureID]*texture)
	d.samplers = make(map[gpucore.SamplerID]hal.Sampler)
	d.mu.Unlock()

	if err := d.device.WaitIdle(); err != nil {
		slogger().Warn("wgpu: wait idle on destroy", "err", err)
	}
	if len(textures) > 0 {
		slogger().Warn("wgpu: device destroyed with live textures", "count", len(textures))
	}
	for _, t := range textures {
		d.destroyTexture(t)
	}
	for _, s := range samplers {
		d.device.DestroySampler(s)
	}
	if d.instance != nil {
		d.device.Destroy()
		d.instance.Destroy()
		d.instance = nil
	}
}
