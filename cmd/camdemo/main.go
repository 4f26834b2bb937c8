// Command camdemo runs a synthetic camera through the camstream pipeline
// and saves the last converted frame as a BMP image.
package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/gogpu/camstream"
	"github.com/gogpu/camstream/backend"
	_ "github.com/gogpu/camstream/backend/software"
	_ "github.com/gogpu/camstream/backend/wgpu"
	"github.com/gogpu/camstream/capture"
	_ "github.com/gogpu/wgpu/hal/allbackends"
	"golang.org/x/image/bmp"
	"golang.org/x/image/draw"
)

func main() {
	var (
		backendName = flag.String("backend", "", "device backend (wgpu, software); empty selects the best available")
		width       = flag.Int("width", 640, "capture width")
		height      = flag.Int("height", 480, "capture height")
		fps         = flag.Int("fps", 30, "capture frame rate")
		duration    = flag.Duration("duration", 2*time.Second, "capture duration")
		pattern     = flag.String("pattern", "bars", "test pattern (bars, gradient, counter)")
		upload      = flag.Bool("upload", false, "force the upload bind path")
		thumb       = flag.Int("thumb", 0, "scale the snapshot to this width (0 keeps full size)")
		output      = flag.String("output", "camdemo.bmp", "snapshot file")
		verbose     = flag.Bool("v", false, "debug logging")
	)
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	camstream.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	p, err := parsePattern(*pattern)
	if err != nil {
		log.Fatal(err)
	}

	b, err := backend.Open(*backendName)
	if err != nil {
		log.Fatalf("Failed to open backend: %v", err)
	}
	defer b.Close()

	gc, err := camstream.NewGPUContext(b.Device())
	if err != nil {
		log.Fatalf("Failed to create GPU context: %v", err)
	}
	defer gc.Close()

	src, err := capture.NewSynthetic(capture.Config{
		Width: *width, Height: *height, FPS: *fps, Pattern: p,
	})
	if err != nil {
		log.Fatalf("Failed to create capture source: %v", err)
	}

	opts := []camstream.StreamOption{
		camstream.WithLabel("camdemo"),
		camstream.WithFPSLogging(*verbose),
	}
	if *upload {
		opts = append(opts, camstream.WithUploadPath())
	}
	stream, err := camstream.NewStream(gc, src, opts...)
	if err != nil {
		log.Fatalf("Failed to create stream: %v", err)
	}

	snap := newSnapshotter()
	stream.AddTarget(snap, 0)

	stream.StartCapture()
	if err := src.Start(); err != nil {
		log.Fatalf("Failed to start capture: %v", err)
	}
	time.Sleep(*duration)

	img, err := snap.next(5 * time.Second)
	_ = src.Stop()
	stream.StopCapture()
	stream.Close()
	if err != nil {
		log.Fatalf("Failed to take snapshot: %v", err)
	}

	if err := save(*output, img, *thumb); err != nil {
		log.Fatalf("Failed to save: %v", err)
	}

	st := stream.Stats()
	fmt.Printf("backend:   %s (%s)\n", b.Name(), gc.Device().AdapterInfo().Name)
	fmt.Printf("format:    %v, matrix %s, bind path %v\n", stream.Format().Format, stream.Matrix().Name, stream.BindPath())
	fmt.Printf("stream:    %v\n", st)
	fmt.Printf("capture:   %+v\n", src.Stats())
	fmt.Printf("cache:     %v\n", gc.Cache().Stats())
	fmt.Printf("snapshot:  %s (%dx%d)\n", *output, img.Bounds().Dx(), img.Bounds().Dy())
}

func parsePattern(name string) (capture.Pattern, error) {
	for _, p := range []capture.Pattern{capture.PatternColorBars, capture.PatternGradient, capture.PatternFrameCounter} {
		if strings.EqualFold(name, p.String()) {
			return p, nil
		}
	}
	return 0, fmt.Errorf("unknown pattern %q", name)
}

// snapshotter reads back the first frame delivered after a request.
type snapshotter struct {
	requests chan chan *image.RGBA
}

func newSnapshotter() *snapshotter {
	return &snapshotter{requests: make(chan chan *image.RGBA, 1)}
}

func (s *snapshotter) Receive(ctx context.Context, fb *camstream.Framebuffer, _ uint) {
	defer fb.Unlock()

	var reply chan *image.RGBA
	select {
	case reply = <-s.requests:
	default:
		return
	}
	img, err := fb.ReadPixels(ctx)
	if err != nil {
		camstream.Logger().Warn("camdemo: read pixels", "err", err)
		s.requests <- reply
		return
	}
	reply <- img
}

func (s *snapshotter) next(timeout time.Duration) (*image.RGBA, error) {
	reply := make(chan *image.RGBA, 1)
	s.requests <- reply
	select {
	case img := <-reply:
		return img, nil
	case <-time.After(timeout):
		return nil, fmt.Errorf("no frame within %v", timeout)
	}
}

func save(path string, img *image.RGBA, thumbWidth int) error {
	var out image.Image = img
	if thumbWidth > 0 && thumbWidth < img.Bounds().Dx() {
		b := img.Bounds()
		h := b.Dy() * thumbWidth / b.Dx()
		dst := image.NewRGBA(image.Rect(0, 0, thumbWidth, max(h, 1)))
		draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
		out = dst
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := bmp.Encode(f, out); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
