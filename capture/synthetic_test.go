package capture

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/gogpu/camstream"
)

func TestNewSyntheticDefaults(t *testing.T) {
	s, err := NewSynthetic(Config{})
	if err != nil {
		t.Fatalf("NewSynthetic() error = %v", err)
	}
	if s.cfg.Width != DefaultWidth || s.cfg.Height != DefaultHeight || s.cfg.FPS != DefaultFPS {
		t.Errorf("defaults = %dx%d@%d", s.cfg.Width, s.cfg.Height, s.cfg.FPS)
	}
	if len(s.DeviceID()) <= len("synthetic-") {
		t.Errorf("DeviceID() = %q, want generated id", s.DeviceID())
	}
	if got := s.PixelFormat(); got != camstream.PixelFormatNV12VideoRange {
		t.Errorf("PixelFormat() = %v, want 420v", got)
	}
}

func TestNewSyntheticInvalid(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"odd width", Config{Width: 5, Height: 4}},
		{"odd height", Config{Width: 4, Height: 3}},
		{"stride too small", Config{Width: 8, Height: 4, Stride: 6}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewSynthetic(tt.cfg); err == nil {
				t.Error("NewSynthetic() should fail")
			}
		})
	}
}

func TestSetPixelFormat(t *testing.T) {
	s, err := NewSynthetic(Config{Width: 4, Height: 4, Formats: []camstream.PixelFormat{camstream.PixelFormatNV12FullRange}})
	if err != nil {
		t.Fatal(err)
	}
	if err := s.SetPixelFormat(camstream.PixelFormatNV12VideoRange); !errors.Is(err, camstream.ErrUnsupportedFormat) {
		t.Errorf("SetPixelFormat(420v) error = %v, want ErrUnsupportedFormat", err)
	}
	if err := s.SetPixelFormat(camstream.PixelFormatNV12FullRange); err != nil {
		t.Errorf("SetPixelFormat(420f) error = %v", err)
	}

	// The returned slice is a copy.
	formats := s.SupportedPixelFormats()
	formats[0] = camstream.PixelFormatBGRA
	if s.SupportedPixelFormats()[0] != camstream.PixelFormatNV12FullRange {
		t.Error("SupportedPixelFormats() exposes internal slice")
	}
}

func TestEmitWithoutHandler(t *testing.T) {
	s, err := NewSynthetic(Config{Width: 4, Height: 4})
	if err != nil {
		t.Fatal(err)
	}
	ok, err := s.Emit()
	if ok || err != nil {
		t.Errorf("Emit() = %v, %v; want false, nil", ok, err)
	}
}

func TestEmitDeliversInOrder(t *testing.T) {
	s, err := NewSynthetic(Config{Width: 4, Height: 4, Pattern: PatternFrameCounter})
	if err != nil {
		t.Fatal(err)
	}

	var lumas []uint8
	var stamps []camstream.Timestamp
	s.SetFrameHandler(func(buf camstream.PlanarBuffer, ts camstream.Timestamp) {
		lumas = append(lumas, buf.LumaPlane().Data[0])
		stamps = append(stamps, ts)
	})
	for range 5 {
		if ok, err := s.Emit(); !ok || err != nil {
			t.Fatalf("Emit() = %v, %v", ok, err)
		}
	}

	for i, l := range lumas {
		if l != CounterLuma(uint64(i)) {
			t.Errorf("frame %d luma = %d, want %d", i, l, CounterLuma(uint64(i)))
		}
		if i > 0 && stamps[i] < stamps[i-1] {
			t.Errorf("timestamp %d went backwards: %d < %d", i, stamps[i], stamps[i-1])
		}
	}
	if got := s.Stats().Delivered; got != 5 {
		t.Errorf("Stats().Delivered = %d, want 5", got)
	}
}

func TestEmitSkipsPinnedBuffers(t *testing.T) {
	s, err := NewSynthetic(Config{Width: 4, Height: 4, PoolSize: 2})
	if err != nil {
		t.Fatal(err)
	}

	var pinned []camstream.PlanarBuffer
	s.SetFrameHandler(func(buf camstream.PlanarBuffer, _ camstream.Timestamp) {
		if err := buf.Lock(); err != nil {
			t.Error(err)
		}
		pinned = append(pinned, buf)
	})

	for range 2 {
		if ok, _ := s.Emit(); !ok {
			t.Fatal("Emit() with free buffers should deliver")
		}
	}
	if pinned[0] == pinned[1] {
		t.Fatal("consecutive frames reused a pinned buffer")
	}
	if ok, _ := s.Emit(); ok {
		t.Error("Emit() with every buffer pinned should skip")
	}
	if got := s.Stats().Starved; got != 1 {
		t.Errorf("Stats().Starved = %d, want 1", got)
	}

	pinned[0].Unlock()
	if ok, _ := s.Emit(); !ok {
		t.Error("Emit() after unpin should deliver")
	}
}

func TestStartStop(t *testing.T) {
	s, err := NewSynthetic(Config{Width: 4, Height: 4, FPS: 200})
	if err != nil {
		t.Fatal(err)
	}

	var mu sync.Mutex
	got := 0
	enough := make(chan struct{})
	s.SetFrameHandler(func(camstream.PlanarBuffer, camstream.Timestamp) {
		mu.Lock()
		defer mu.Unlock()
		got++
		if got == 3 {
			close(enough)
		}
	})

	if err := s.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if err := s.Start(); !errors.Is(err, ErrRunning) {
		t.Errorf("second Start() error = %v, want ErrRunning", err)
	}

	select {
	case <-enough:
	case <-time.After(5 * time.Second):
		t.Fatal("no frames delivered")
	}
	if err := s.Stop(); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}

	mu.Lock()
	after := got
	mu.Unlock()
	time.Sleep(30 * time.Millisecond)
	mu.Lock()
	defer mu.Unlock()
	if got != after {
		t.Errorf("frames delivered after Stop: %d -> %d", after, got)
	}

	if err := s.Stop(); err != nil {
		t.Errorf("Stop() on stopped source error = %v", err)
	}
}

func TestStridedBuffers(t *testing.T) {
	s, err := NewSynthetic(Config{Width: 4, Height: 2, Stride: 16, Pattern: PatternGradient})
	if err != nil {
		t.Fatal(err)
	}
	var luma camstream.Plane
	s.SetFrameHandler(func(buf camstream.PlanarBuffer, _ camstream.Timestamp) {
		luma = buf.LumaPlane()
	})
	if ok, err := s.Emit(); !ok || err != nil {
		t.Fatalf("Emit() = %v, %v", ok, err)
	}
	if luma.BytesPerRow != 16 {
		t.Errorf("BytesPerRow = %d, want 16", luma.BytesPerRow)
	}
	row := luma.Row(1, 1)
	if row[0] != 16 || row[3] != 235 {
		t.Errorf("gradient row = %v, want 16..235", row)
	}
}
