package software

import (
	"github.com/gogpu/camstream/backend"
	"github.com/gogpu/camstream/gpucore"
)

func init() {
	backend.Register(backend.BackendSoftware, func() backend.DeviceBackend {
		return NewBackend(Options{})
	})
}

// Backend adapts a software Device to the backend registry.
type Backend struct {
	opts Options
	dev  *Device
}

var _ backend.DeviceBackend = (*Backend)(nil)

// NewBackend returns an uninitialized software backend.
func NewBackend(opts Options) *Backend {
	return &Backend{opts: opts}
}

// Name returns "software".
func (b *Backend) Name() string { return backend.BackendSoftware }

// Init creates the device. It never fails.
func (b *Backend) Init() error {
	if b.dev == nil {
		b.dev = New(b.opts)
	}
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
