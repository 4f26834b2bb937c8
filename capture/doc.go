// Package capture provides capture sources for camstream.
//
// Synthetic is a software camera: it renders a test pattern into a small
// ring of NV12 buffers at a fixed frame rate and delivers them to the
// installed frame handler on its own goroutine, the way a hardware capture
// layer does. It is used by the camdemo command and by tests.
//
//	src, err := capture.NewSynthetic(capture.Config{Width: 640, Height: 480, FPS: 30})
//	if err != nil {
//	    return err
//	}
//	s, err := camstream.NewStream(gc, src)
//	...
//	src.Start()
//
// Buffers still pinned by the pipeline are never overwritten. When every
// ring buffer is pinned the frame is skipped and counted in Stats.
package capture
