package camstream_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/gogpu/camstream"
	"github.com/gogpu/camstream/backend/software"
	"github.com/gogpu/camstream/capture"
)

func newPipeline(t *testing.T, devOpts software.Options, cfg capture.Config, opts ...camstream.StreamOption) (*camstream.GPUContext, *capture.Synthetic, *camstream.Stream) {
	t.Helper()
	dev := software.New(devOpts)
	gc, err := camstream.NewGPUContext(dev)
	if err != nil {
		t.Fatal(err)
	}
	src, err := capture.NewSynthetic(cfg)
	if err != nil {
		t.Fatal(err)
	}
	s, err := camstream.NewStream(gc, src, opts...)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		_ = src.Stop()
		s.Close()
		gc.Close()
		dev.Destroy()
	})
	return gc, src, s
}

func TestPipelineFrameOrder(t *testing.T) {
	for _, upload := range []bool{false, true} {
		name := "zero-copy"
		var opts []camstream.StreamOption
		if upload {
			name = "upload"
			opts = append(opts, camstream.WithUploadPath())
		}
		t.Run(name, func(t *testing.T) {
			cfg := capture.Config{
				Width:   32,
				Height:  16,
				Formats: []camstream.PixelFormat{camstream.PixelFormatNV12VideoRange},
				Pattern: capture.PatternFrameCounter,
				Stride:  48,
			}
			gc, src, s := newPipeline(t, software.Options{}, cfg, opts...)

			var reds []uint8
			s.AddTarget(camstream.ConsumerFunc(func(ctx context.Context, fb *camstream.Framebuffer, _ uint) {
				defer fb.Unlock()
				img, err := fb.ReadPixels(ctx)
				if err != nil {
					t.Errorf("ReadPixels() error = %v", err)
					return
				}
				reds = append(reds, img.Pix[0])
			}), 0)

			const frames = 6
			for range frames {
				if ok, err := src.Emit(); !ok || err != nil {
					t.Fatalf("Emit() = %v, %v", ok, err)
				}
				_ = gc.Queue().Sync(context.Background(), func(context.Context) {})
			}

			if len(reds) != frames {
				t.Fatalf("received %d frames, want %d", len(reds), frames)
			}
			m := camstream.ColorMatrix601VideoRange
			for n, got := range reds {
				want, _, _ := m.Convert(capture.CounterLuma(uint64(n)), 128, 128)
				if got != want {
					t.Errorf("frame %d red = %d, want %d", n, got, want)
				}
			}
		})
	}
}

func TestPipelineLiveCapture(t *testing.T) {
	gc, src, s := newPipeline(t,
		software.Options{DispatchDelay: 10 * time.Millisecond},
		capture.Config{Width: 64, Height: 32, FPS: 500})

	var (
		mu    sync.Mutex
		last  camstream.Timestamp
		count int
		order = true
	)
	got := make(chan struct{})
	s.AddTarget(camstream.ConsumerFunc(func(_ context.Context, fb *camstream.Framebuffer, _ uint) {
		defer fb.Unlock()
		mu.Lock()
		defer mu.Unlock()
		if count > 0 && fb.Timestamp() <= last {
			order = false
		}
		last = fb.Timestamp()
		count++
		if count == 5 {
			close(got)
		}
	}), 0)

	s.StartCapture()
	if err := src.Start(); err != nil {
		t.Fatal(err)
	}
	select {
	case <-got:
	case <-time.After(10 * time.Second):
		t.Fatal("timed out waiting for frames")
	}
	if err := src.Stop(); err != nil {
		t.Fatal(err)
	}
	_ = gc.Queue().Sync(context.Background(), func(context.Context) {})

	mu.Lock()
	defer mu.Unlock()
	if !order {
		t.Error("frames delivered out of capture order")
	}
	st := s.Stats()
	if st.FramesCaptured+st.FramesDropped+st.FramesFailed != st.FramesSubmitted {
		t.Errorf("counters do not add up: %v", st)
	}
	if st.FramesFailed != 0 {
		t.Errorf("FramesFailed = %d, want 0", st.FramesFailed)
	}
	// A conversion takes five frame intervals, so frames arriving while
	// one is in flight must be dropped.
	if st.FramesDropped == 0 || st.FramesCaptured >= st.FramesSubmitted {
		t.Errorf("expected drops with conversions slower than capture: %v", st)
	}
	if uint64(count) != st.FramesCaptured {
		t.Errorf("consumer received %d frames, stream captured %d", count, st.FramesCaptured)
	}
	if st.FramesSubmitted != src.Stats().Delivered {
		t.Errorf("stream saw %d frames, source delivered %d", st.FramesSubmitted, src.Stats().Delivered)
	}
}
