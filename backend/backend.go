package backend

import (
	"errors"

	"github.com/gogpu/camstream/gpucore"
)

// Backend name constants.
const (
	// BackendSoftware is the name of the CPU device backend.
	BackendSoftware = "software"

	// BackendWGPU is the name of the gogpu/wgpu HAL backend.
	BackendWGPU = "wgpu"
)

// Common backend errors.
var (
	// ErrBackendNotAvailable is returned when a requested backend is not available.
	ErrBackendNotAvailable = errors.New("backend: not available")
)

// DeviceBackend creates the gpucore.Device a GPU context runs on.
//
// Backends are registered via Register() and selected via Get() or
// Default().
type DeviceBackend interface {
	// Name returns the backend identifier (e.g., "software", "wgpu").
	Name() string

	// Init opens the device.
	Init() error

	// Close destroys the device. The backend should not be used after
	// Close is called.
	Close()

	// Device returns the opened device, or nil before Init.
	Device() gpucore.Device
}
