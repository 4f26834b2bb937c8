package capture

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gogpu/camstream"
	"github.com/google/uuid"
)

// Default synthetic source settings.
const (
	DefaultWidth    = 640
	DefaultHeight   = 480
	DefaultFPS      = 30
	DefaultPoolSize = 3
)

// ErrRunning is returned by Start on a running source.
var ErrRunning = errors.New("capture: source already running")

// Config describes a synthetic source. Zero fields take defaults.
type Config struct {
	Width  int
	Height int
	FPS    int

	// Formats are the advertised pixel formats. Defaults to both NV12
	// ranges.
	Formats []camstream.PixelFormat

	Pattern Pattern

	// DeviceID defaults to "synthetic-" followed by a random UUID.
	DeviceID string

	// PoolSize is the number of ring buffers.
	PoolSize int

	// Stride pads luma rows to this many bytes and chroma rows likewise.
	// Zero means tightly packed.
	Stride int
}

func (c *Config) applyDefaults() {
	if c.Width == 0 {
		c.Width = DefaultWidth
	}
	if c.Height == 0 {
		c.Height = DefaultHeight
	}
	if c.FPS <= 0 {
		c.FPS = DefaultFPS
	}
	if len(c.Formats) == 0 {
		c.Formats = []camstream.PixelFormat{
			camstream.PixelFormatNV12VideoRange,
			camstream.PixelFormatNV12FullRange,
		}
	}
	if c.DeviceID == "" {
		c.DeviceID = "synthetic-" + uuid.NewString()
	}
	if c.PoolSize <= 0 {
		c.PoolSize = DefaultPoolSize
	}
}

// Stats are the delivery counters of a synthetic source.
type Stats struct {
	// Delivered counts frames passed to the handler.
	Delivered uint64

	// Starved counts frames skipped because every ring buffer was pinned.
	Starved uint64
}

// Synthetic is a software capture source implementing
// camstream.CaptureSource.
type Synthetic struct {
	cfg Config
	log atomic.Pointer[slog.Logger]

	mu      sync.Mutex
	format  camstream.PixelFormat
	handler camstream.FrameHandler
	pool    []*camstream.NV12Buffer
	next    int
	frame   uint64
	epoch   time.Time
	stop    chan struct{}
	done    chan struct{}

	delivered atomic.Uint64
	starved   atomic.Uint64
}

var _ camstream.CaptureSource = (*Synthetic)(nil)

// NewSynthetic creates a stopped synthetic source.
func NewSynthetic(cfg Config) (*Synthetic, error) {
	cfg.applyDefaults()
	if cfg.Width < 2 || cfg.Height < 2 || cfg.Width%2 != 0 || cfg.Height%2 != 0 {
		return nil, fmt.Errorf("capture: size %dx%d must be even and at least 2x2", cfg.Width, cfg.Height)
	}
	if cfg.Stride != 0 && cfg.Stride < cfg.Width {
		return nil, fmt.Errorf("capture: stride %d < width %d", cfg.Stride, cfg.Width)
	}
	s := &Synthetic{cfg: cfg, format: cfg.Formats[0]}
	s.SetLogger(camstream.Logger())
	return s, nil
}

// SetLogger sets the source's logger. Nil restores the camstream logger.
func (s *Synthetic) SetLogger(l *slog.Logger) {
	if l == nil {
		l = camstream.Logger()
	}
	s.log.Store(l.With("device_id", s.cfg.DeviceID))
}

// DeviceID returns the configured device identifier.
func (s *Synthetic) DeviceID() string { return s.cfg.DeviceID }

// SupportedPixelFormats returns the advertised formats.
func (s *Synthetic) SupportedPixelFormats() []camstream.PixelFormat {
	return slices.Clone(s.cfg.Formats)
}

// SetPixelFormat selects the delivered format and reallocates the ring.
func (s *Synthetic) SetPixelFormat(f camstream.PixelFormat) error {
	if !slices.Contains(s.cfg.Formats, f) {
		return fmt.Errorf("%w: %v not advertised", camstream.ErrUnsupportedFormat, f)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.format != f {
		s.format = f
		s.pool = nil
	}
	return nil
}

// PixelFormat returns the selected format.
func (s *Synthetic) PixelFormat() camstream.PixelFormat {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.format
}

// SetFrameHandler installs h. Nil detaches the handler; frames produced
// while detached are discarded.
func (s *Synthetic) SetFrameHandler(h camstream.FrameHandler) {
	s.mu.Lock()
	s.handler = h
	s.mu.Unlock()
}

// Start begins delivering frames at the configured rate.
func (s *Synthetic) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stop != nil {
		return ErrRunning
	}
	s.stop = make(chan struct{})
	s.done = make(chan struct{})
	s.epoch = time.Now()
	go s.run(s.stop, s.done)

	s.log.Load().Info("capture: started",
		"size", fmt.Sprintf("%dx%d", s.cfg.Width, s.cfg.Height),
		"fps", s.cfg.FPS,
		"format", s.format,
		"pattern", s.cfg.Pattern)
	return nil
}

// Stop halts delivery and waits for the capture goroutine to exit. Stop on
// a stopped source is a no-op.
func (s *Synthetic) Stop() error {
	s.mu.Lock()
	stop, done := s.stop, s.done
	s.stop, s.done = nil, nil
	s.mu.Unlock()

	if stop == nil {
		return nil
	}
	close(stop)
	<-done
	s.log.Load().Info("capture: stopped",
		"delivered", s.delivered.Load(),
		"starved", s.starved.Load())
	return nil
}

func (s *Synthetic) run(stop, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(time.Second / time.Duration(s.cfg.FPS))
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if _, err := s.Emit(); err != nil {
				s.log.Load().Warn("capture: frame", "err", err)
			}
		}
	}
}

// Emit renders the next frame and delivers it synchronously to the
// handler. It reports whether a frame was delivered; false means no
// handler is installed or every ring buffer is pinned.
//
// Emit is how the capture goroutine produces frames. Calling it directly
// on a stopped source drives the pipeline one frame at a time.
func (s *Synthetic) Emit() (bool, error) {
	s.mu.Lock()
	h := s.handler
	if h == nil {
		s.mu.Unlock()
		return false, nil
	}
	buf, err := s.acquire()
	if err != nil {
		s.mu.Unlock()
		return false, err
	}
	if buf == nil {
		s.mu.Unlock()
		s.starved.Add(1)
		s.log.Load().Debug("capture: all buffers pinned, frame skipped")
		return false, nil
	}
	n := s.frame
	s.frame++
	if s.epoch.IsZero() {
		s.epoch = time.Now()
	}
	ts := camstream.Timestamp(time.Since(s.epoch))
	s.mu.Unlock()

	render(buf, s.cfg.Pattern, n)
	h(buf, ts)
	s.delivered.Add(1)
	return true, nil
}

// acquire returns the next unpinned ring buffer, or nil when all are
// pinned. Caller must hold s.mu.
func (s *Synthetic) acquire() (*camstream.NV12Buffer, error) {
	if s.pool == nil {
		pool := make([]*camstream.NV12Buffer, s.cfg.PoolSize)
		for i := range pool {
			buf, err := s.newBuffer()
			if err != nil {
				return nil, err
			}
			pool[i] = buf
		}
		s.pool = pool
		s.next = 0
	}
	for range len(s.pool) {
		buf := s.pool[s.next]
		s.next = (s.next + 1) % len(s.pool)
		if buf.Locked() == 0 {
			return buf, nil
		}
	}
	return nil, nil
}

func (s *Synthetic) newBuffer() (*camstream.NV12Buffer, error) {
	if s.cfg.Stride == 0 {
		return camstream.NewNV12Buffer(s.cfg.Width, s.cfg.Height, s.format)
	}
	return camstream.NewNV12BufferWithStride(s.cfg.Width, s.cfg.Height, s.format, s.cfg.Stride, s.cfg.Stride)
}

// Stats returns the delivery counters.
func (s *Synthetic) Stats() Stats {
	return Stats{
		Delivered: s.delivered.Load(),
		Starved:   s.starved.Load(),
	}
}
