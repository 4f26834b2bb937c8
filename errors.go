package camstream

import "errors"

// Pipeline errors.
var (
	// ErrUnsupportedFormat is returned at construction when the capture
	// source cannot deliver biplanar 4:2:0 8-bit YUV.
	ErrUnsupportedFormat = errors.New("camstream: unsupported pixel format")

	// ErrInvalidBuffer is returned for a buffer whose planes do not match
	// the biplanar 4:2:0 layout.
	ErrInvalidBuffer = errors.New("camstream: invalid planar buffer")

	// ErrBudgetExceeded is returned when a texture allocation would exceed
	// the framebuffer cache memory budget even after eviction.
	ErrBudgetExceeded = errors.New("camstream: texture memory budget exceeded")

	// ErrCacheClosed is returned when requesting from a closed cache.
	ErrCacheClosed = errors.New("camstream: framebuffer cache closed")

	// ErrQueueClosed is returned when submitting work to a closed queue.
	ErrQueueClosed = errors.New("camstream: work queue closed")

	// ErrFramebufferReleased is returned when using a framebuffer after its
	// last lock was released.
	ErrFramebufferReleased = errors.New("camstream: framebuffer released")

	// ErrNilDevice is returned when a GPU context is created without a device.
	ErrNilDevice = errors.New("camstream: nil device")

	// ErrNilSource is returned when a stream is created without a source.
	ErrNilSource = errors.New("camstream: nil capture source")
)
