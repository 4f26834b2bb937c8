package camstream

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

// fpsWindow is how often the frame rate is measured.
const fpsWindow = time.Second

// StreamStats is a snapshot of a stream's counters.
//
// FramesCaptured, TotalFrameTime and AverageFrameTime restart at every
// StartCapture. The other counters cover the stream's whole lifetime.
type StreamStats struct {
	// FramesSubmitted counts every frame handed to Submit.
	FramesSubmitted uint64

	// FramesCaptured counts frames converted and delivered.
	FramesCaptured uint64

	// FramesDropped counts frames rejected because a conversion was in
	// flight or the stream was closed.
	FramesDropped uint64

	// FramesFailed counts frames lost to invalid buffers or to bind and
	// conversion failures.
	FramesFailed uint64

	// TotalFrameTime is the conversion time summed over captured frames
	// after the warm-up frames.
	TotalFrameTime time.Duration

	// AverageFrameTime is TotalFrameTime per measured frame.
	AverageFrameTime time.Duration

	// FPS is the most recent frame-rate measurement.
	FPS float64
}

// String returns a human-readable summary.
func (s StreamStats) String() string {
	return fmt.Sprintf("Stream[%d submitted, %d captured, %d dropped, %d failed, avg %v, %.1f fps]",
		s.FramesSubmitted, s.FramesCaptured, s.FramesDropped, s.FramesFailed,
		s.AverageFrameTime, s.FPS)
}

// streamStats tracks the counters of one stream.
type streamStats struct {
	submitted atomic.Uint64
	dropped   atomic.Uint64
	failed    atomic.Uint64

	mu                   sync.Mutex
	framesToIgnore       int
	captured             uint64
	totalFrameTime       time.Duration
	framesSinceLastCheck int
	lastCheckTime        time.Time
	fps                  float64
}

func newStreamStats(framesToIgnore int, now time.Time) *streamStats {
	return &streamStats{framesToIgnore: framesToIgnore, lastCheckTime: now}
}

// reset restarts the capture counters.
func (s *streamStats) reset(now time.Time) {
	s.mu.Lock()
	s.captured = 0
	s.totalFrameTime = 0
	s.framesSinceLastCheck = 0
	s.lastCheckTime = now
	s.fps = 0
	s.mu.Unlock()
}

// frameCaptured records a delivered frame that took elapsed to convert.
// It returns the new frame rate and true once per fpsWindow.
func (s *streamStats) frameCaptured(elapsed time.Duration, now time.Time) (float64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.captured++
	if s.captured > uint64(s.framesToIgnore) {
		s.totalFrameTime += elapsed
	}

	s.framesSinceLastCheck++
	window := now.Sub(s.lastCheckTime)
	if window < fpsWindow {
		return s.fps, false
	}
	s.fps = float64(s.framesSinceLastCheck) / window.Seconds()
	s.framesSinceLastCheck = 0
	s.lastCheckTime = now
	return s.fps, true
}

func (s *streamStats) snapshot() StreamStats {
	st := StreamStats{
		FramesSubmitted: s.submitted.Load(),
		FramesDropped:   s.dropped.Load(),
		FramesFailed:    s.failed.Load(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	st.FramesCaptured = s.captured
	st.TotalFrameTime = s.totalFrameTime
	st.FPS = s.fps
	if measured := s.captured - min(s.captured, uint64(s.framesToIgnore)); measured > 0 {
		//nolint:gosec // G115: frame counts stay far below MaxInt64
		st.AverageFrameTime = s.totalFrameTime / time.Duration(measured)
	}
	return st
}
