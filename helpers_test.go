package camstream

import (
	"context"
	"sync"
	"testing"

	"github.com/gogpu/camstream/backend/software"
)

// newTestContext returns a GPU context over a fresh software device. Both
// are torn down at the end of the test.
func newTestContext(t *testing.T, opts software.Options, copts ...ContextOption) (*GPUContext, *software.Device) {
	t.Helper()
	dev := software.New(opts)
	gc, err := NewGPUContext(dev, copts...)
	if err != nil {
		t.Fatalf("NewGPUContext() error = %v", err)
	}
	t.Cleanup(func() {
		gc.Close()
		dev.Destroy()
	})
	return gc, dev
}

// drain waits until every task queued so far has run.
func drain(t *testing.T, gc *GPUContext) {
	t.Helper()
	if err := gc.Queue().Sync(context.Background(), func(context.Context) {}); err != nil {
		t.Fatalf("queue sync: %v", err)
	}
}

// fakeSource is a CaptureSource driven by the test.
type fakeSource struct {
	mu       sync.Mutex
	formats  []PixelFormat
	selected PixelFormat
	setErr   error
	handler  FrameHandler
}

func newFakeSource(formats ...PixelFormat) *fakeSource {
	return &fakeSource{formats: formats}
}

func (s *fakeSource) DeviceID() string { return "fake-camera" }

func (s *fakeSource) SupportedPixelFormats() []PixelFormat { return s.formats }

func (s *fakeSource) SetPixelFormat(f PixelFormat) error {
	if s.setErr != nil {
		return s.setErr
	}
	s.mu.Lock()
	s.selected = f
	s.mu.Unlock()
	return nil
}

func (s *fakeSource) SetFrameHandler(h FrameHandler) {
	s.mu.Lock()
	s.handler = h
	s.mu.Unlock()
}

func (s *fakeSource) Start() error { return nil }
func (s *fakeSource) Stop() error  { return nil }

// deliver calls the installed handler, if any. It reports whether one was
// installed.
func (s *fakeSource) deliver(buf PlanarBuffer, ts Timestamp) bool {
	s.mu.Lock()
	h := s.handler
	s.mu.Unlock()
	if h == nil {
		return false
	}
	h(buf, ts)
	return true
}

// recorder is a Consumer remembering what it received.
type recorder struct {
	mu      sync.Mutex
	stamps  []Timestamp
	indices []uint
	keep    bool
	kept    []*Framebuffer
}

func (r *recorder) Receive(_ context.Context, fb *Framebuffer, index uint) {
	r.mu.Lock()
	r.stamps = append(r.stamps, fb.Timestamp())
	r.indices = append(r.indices, index)
	if r.keep {
		r.kept = append(r.kept, fb)
	}
	r.mu.Unlock()
	if !r.keep {
		fb.Unlock()
	}
}

func (r *recorder) timestamps() []Timestamp {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Timestamp(nil), r.stamps...)
}
