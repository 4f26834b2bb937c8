// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build !nogpu

package wgpu

import (
	"github.com/gogpu/camstream/backend"
	"github.com/gogpu/camstream/gpucore"
)

func init() {
	backend.Register(backend.BackendWGPU, func() backend.DeviceBackend {
		return NewBackend()
	})
}

// Backend adapts a standalone wgpu Device to the backend registry.
type Backend struct {
	dev *Device
}

var _ backend.DeviceBackend = (*Backend)(nil)

// NewBackend returns an uninitialized wgpu backend.
func NewBackend() *Backend { return &Backend{} }

// Name returns "wgpu".
func (b *Backend) Name() string { return backend.BackendWGPU }

// Init opens a standalone device. See Open.
func (b *Backend) Init() error {
	if b.dev != nil {
		return nil
	}
	dev, err := Open()
	if err != nil {
		return err
	}
	b.dev = dev
	return nil
}

// Close destroys the device.
func (b *Backend) Close() {
	if b.dev != nil {
		b.dev.Destroy()
		b.dev = nil
	}
}

// Device returns the device, or nil before Init.
func (b *Backend) Device() gpucore.Device {
	if b.dev == nil {
		return nil
	}
	return b.dev
}
