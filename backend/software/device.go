package software

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gogpu/camstream/gpucore"
	"github.com/gogpu/camstream/internal/parallel"
	"github.com/gogpu/gpucontext"
)

// Options configures a software device.
type Options struct {
	// DispatchDelay is added to every program dispatch to simulate a slow
	// GPU.
	DispatchDelay time.Duration

	// MaxTextures caps the number of live textures. CreateTexture and
	// CreateTextureFromPlane return gpucore.ErrOutOfMemory past the cap.
	// Zero means unlimited.
	MaxTextures int

	// DisableTextureCache makes TextureCache return nil so callers take the
	// upload path.
	DisableTextureCache bool

	// BeforeDispatch, if set, is called at the start of every dispatch.
	BeforeDispatch func(pass *gpucore.ConversionPass)

	// Workers is the number of goroutines converting row bands. Zero uses
	// GOMAXPROCS; one converts on the dispatching goroutine.
	Workers int
}

// texture is a host-memory texture.
type texture struct {
	desc     gpucore.TextureDesc
	data     []byte
	stride   int
	borrowed bool
}

// row returns the texel bytes of row y.
func (t *texture) row(y int) []byte {
	off := y * t.stride
	return t.data[off : off+t.desc.Width*t.desc.Format.BytesPerPixel()]
}

// Device is a CPU implementation of gpucore.Device.
type Device struct {
	opts Options

	mu       sync.RWMutex
	textures map[gpucore.TextureID]*texture
	samplers map[gpucore.SamplerID]gpucore.SamplerDesc
	nextID   atomic.Uint64
	lost     bool

	dispatches atomic.Uint64
	cache      *textureCache
	pool       *parallel.WorkerPool
}

var _ gpucore.Device = (*Device)(nil)

// New creates a software device.
func New(opts Options) *Device {
	d := &Device{
		opts:     opts,
		textures: make(map[gpucore.TextureID]*texture),
		samplers: make(map[gpucore.SamplerID]gpucore.SamplerDesc),
	}
	d.cache = &textureCache{dev: d}
	if opts.Workers != 1 {
		d.pool = parallel.NewWorkerPool(opts.Workers)
	}
	return d
}

// Name returns "software".
func (d *Device) Name() string { return "software" }

// AdapterInfo describes the CPU adapter.
func (d *Device) AdapterInfo() gpucontext.AdapterInfo {
	return gpucontext.AdapterInfo{
		Name: "camstream CPU rasterizer",
		Type: gpucontext.AdapterTypeSoftware,
	}
}

// SetLogger sets the logger for the software device.
func (d *Device) SetLogger(l *slog.Logger) { setLogger(l) }

func (d *Device) newID() uint64 { return d.nextID.Add(1) }

// addTexture registers t under a new ID. Caller must hold d.mu.
func (d *Device) addTexture(t *texture) (gpucore.TextureID, error) {
	if d.lost {
		return gpucore.InvalidID, gpucore.ErrDeviceLost
	}
	if d.opts.MaxTextures > 0 && len(d.textures) >= d.opts.MaxTextures {
		return gpucore.InvalidID, fmt.Errorf("%w: %d live textures", gpucore.ErrOutOfMemory, len(d.textures))
	}
	id := gpucore.TextureID(d.newID())
	d.textures[id] = t
	return id, nil
}

// CreateTexture allocates a zeroed host texture.
func (d *Device) CreateTexture(desc *gpucore.TextureDesc) (gpucore.TextureID, error) {
	if err := desc.Validate(); err != nil {
		return gpucore.InvalidID, err
	}
	t := &texture{
		desc:   *desc,
		data:   make([]byte, desc.SizeBytes()),
		stride: desc.Width * desc.Format.BytesPerPixel(),
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	return d.addTexture(t)
}

// DestroyTexture releases a texture.
func (d *Device) DestroyTexture(id gpucore.TextureID) {
	d.mu.Lock()
	delete(d.textures, id)
	d.mu.Unlock()
}

func (d *Device) lookup(id gpucore.TextureID) (*texture, error) {
	t, ok := d.textures[id]
	if !ok {
		return nil, fmt.Errorf("%w: %d", gpucore.ErrTextureNotFound, id)
	}
	return t, nil
}

// WriteTexture copies host rows into the texture.
func (d *Device) WriteTexture(id gpucore.TextureID, data []byte, bytesPerRow int) error {
	d.mu.RLock()
	t, err := d.lookup(id)
	d.mu.RUnlock()
	if err != nil {
		return err
	}
	if t.borrowed {
		return fmt.Errorf("software: write to borrowed texture %d", id)
	}

	rowBytes := t.desc.Width * t.desc.Format.BytesPerPixel()
	if bytesPerRow < rowBytes {
		return fmt.Errorf("software: bytesPerRow %d < row size %d", bytesPerRow, rowBytes)
	}
	if need := (t.desc.Height-1)*bytesPerRow + rowBytes; len(data) < need {
		return fmt.Errorf("software: write of %d bytes, need %d", len(data), need)
	}
	for y := range t.desc.Height {
		copy(t.row(y), data[y*bytesPerRow:y*bytesPerRow+rowBytes])
	}
	return nil
}

// ReadTexture returns a tightly packed copy of the texture contents.
func (d *Device) ReadTexture(id gpucore.TextureID) ([]byte, error) {
	d.mu.RLock()
	t, err := d.lookup(id)
	d.mu.RUnlock()
	if err != nil {
		return nil, err
	}
	out := make([]byte, 0, t.desc.SizeBytes())
	for y := range t.desc.Height {
		out = append(out, t.row(y)...)
	}
	return out, nil
}

// CreateSampler records a sampler descriptor.
func (d *Device) CreateSampler(desc *gpucore.SamplerDesc) (gpucore.SamplerID, error) {
	if desc == nil {
		return gpucore.InvalidID, fmt.Errorf("%w: nil sampler descriptor", gpucore.ErrInvalidDescriptor)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.lost {
		return gpucore.InvalidID, gpucore.ErrDeviceLost
	}
	id := gpucore.SamplerID(d.newID())
	d.samplers[id] = *desc
	return id, nil
}

// DestroySampler releases a sampler.
func (d *Device) DestroySampler(id gpucore.SamplerID) {
	d.mu.Lock()
	delete(d.samplers, id)
	d.mu.Unlock()
}

// TextureCache returns the zero-copy texture cache, or nil when
// Options.DisableTextureCache is set.
func (d *Device) TextureCache() gpucore.TextureCache {
	if d.opts.DisableTextureCache {
		return nil
	}
	return d.cache
}

// WaitIdle returns immediately: dispatches complete synchronously.
func (d *Device) WaitIdle() error { return nil }

// Destroy releases all resources. Later calls that allocate return
// gpucore.ErrDeviceLost.
func (d *Device) Destroy() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if n := len(d.textures); n > 0 {
		slogger().Warn("software: device destroyed with live textures", "count", n)
	}
	clear(d.textures)
	clear(d.samplers)
	d.lost = true
	d.pool.Close()
}

// LiveTextures returns the number of live textures, borrowed ones included.
func (d *Device) LiveTextures() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.textures)
}

// Dispatches returns the number of completed program dispatches.
func (d *Device) Dispatches() uint64 { return d.dispatches.Load() }
