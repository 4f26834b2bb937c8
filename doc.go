// Package camstream converts live camera frames to GPU RGBA framebuffers.
//
// # Overview
//
// A capture device delivers biplanar 4:2:0 YUV frames (NV12: a full
// resolution luma plane and a half resolution plane of interleaved Cb, Cr).
// camstream binds both planes as textures, runs a BT.601 color conversion
// on the GPU and hands the resulting RGBA framebuffer to every registered
// consumer, in capture order.
//
// # Quick Start
//
//	import (
//	    "github.com/gogpu/camstream"
//	    "github.com/gogpu/camstream/backend"
//	    _ "github.com/gogpu/camstream/backend/software"
//	    "github.com/gogpu/camstream/capture"
//	)
//
//	b, _ := backend.Open("")
//	defer b.Close()
//
//	gc, _ := camstream.NewGPUContext(b.Device())
//	defer gc.Close()
//
//	src, _ := capture.NewSynthetic(capture.Config{})
//	s, _ := camstream.NewStream(gc, src)
//	defer s.Close()
//
//	s.AddTarget(camstream.ConsumerFunc(func(ctx context.Context, fb *camstream.Framebuffer, _ uint) {
//	    defer fb.Unlock()
//	    img, _ := fb.ReadPixels(ctx)
//	    _ = img
//	}), 0)
//	src.Start()
//
// # Frame Scheduling
//
// A Stream converts at most one frame at a time. A frame arriving while
// the previous one is still in flight is dropped rather than queued, so
// latency stays bounded at one frame and delivered frames keep their
// capture order. Stats reports submitted, captured, dropped and failed
// frames.
//
// # Binding Paths
//
// When the device has a texture cache the planes are wrapped as textures
// in place (zero-copy). Otherwise, or with WithUploadPath, they are copied
// into pooled textures. The choice is made once per stream.
//
// # Color Matrix
//
// The matrix is chosen when the stream is created: full range BT.601 when
// the source offers full-range NV12, video range otherwise. It never
// changes afterwards.
//
// # Threading
//
// All GPU work of a GPUContext runs serially on its WorkQueue. Consumers
// are called on that queue; a Framebuffer may be kept past Receive by
// calling Lock, and must be unlocked when done.
//
// # Logging
//
// camstream is silent by default. Call SetLogger with a *slog.Logger to
// see stream lifecycle, dropped frames and backend events.
package camstream

// Version information
const (
	// Version is the current version of the library
	Version = "0.1.0-alpha.1"

	// VersionMajor is the major version
	VersionMajor = 0

	// VersionMinor is the minor version
	VersionMinor = 1

	// VersionPatch is the patch version
	VersionPatch = 0

	// VersionPrerelease is the prerelease identifier
	VersionPrerelease = "alpha.1"
)
