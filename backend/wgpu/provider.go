// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build !nogpu

package wgpu

import (
	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
)

// Provider exposes a Device's HAL objects as a gpucontext.DeviceProvider so
// other gogpu libraries can render on the same GPU as the camera pipeline.
type Provider struct {
	dev *Device
}

var _ gpucontext.DeviceProvider = Provider{}

// Provider returns a DeviceProvider sharing d's HAL device and queue.
func (d *Device) Provider() Provider { return Provider{dev: d} }

// Device returns the hal.Device.
func (p Provider) Device() gpucontext.Device { return p.dev.device }

// Queue returns the hal.Queue.
func (p Provider) Queue() gpucontext.Queue { return p.dev.queue }

// SurfaceFormat returns TextureFormatUndefined: the pipeline is headless.
func (p Provider) SurfaceFormat() gputypes.TextureFormat {
	return gputypes.TextureFormatUndefined
}

// Adapter returns nil; the adapter is not retained after Open.
func (p Provider) Adapter() gpucontext.Adapter { return nil }

// AdapterInfo returns the adapter metadata of the device.
func (p Provider) AdapterInfo() gpucontext.AdapterInfo { return p.dev.info }

// HalDevice returns the hal.Device.
func (p Provider) HalDevice() any { return p.dev.device }

// HalQueue returns the hal.Queue.
func (p Provider) HalQueue() any { return p.dev.queue }
