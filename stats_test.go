package camstream

import (
	"strings"
	"testing"
	"time"
)

func TestStreamStatsWarmUp(t *testing.T) {
	start := time.Unix(0, 0)
	s := newStreamStats(2, start)

	for i := range 4 {
		s.frameCaptured(time.Duration(i+1)*time.Millisecond, start)
	}
	st := s.snapshot()
	if st.FramesCaptured != 4 {
		t.Errorf("FramesCaptured = %d, want 4", st.FramesCaptured)
	}
	// Frames 3 and 4 are measured: 3ms + 4ms.
	if st.TotalFrameTime != 7*time.Millisecond {
		t.Errorf("TotalFrameTime = %v, want 7ms", st.TotalFrameTime)
	}
	if st.AverageFrameTime != 3500*time.Microsecond {
		t.Errorf("AverageFrameTime = %v, want 3.5ms", st.AverageFrameTime)
	}
}

func TestStreamStatsNoMeasuredFrames(t *testing.T) {
	s := newStreamStats(DefaultFramesToIgnore, time.Now())
	s.frameCaptured(time.Millisecond, time.Now())
	if got := s.snapshot().AverageFrameTime; got != 0 {
		t.Errorf("AverageFrameTime during warm-up = %v, want 0", got)
	}
}

func TestStreamStatsFPSWindow(t *testing.T) {
	start := time.Unix(100, 0)
	s := newStreamStats(0, start)

	for i := range 29 {
		if _, ok := s.frameCaptured(time.Millisecond, start.Add(time.Duration(i)*time.Millisecond)); ok {
			t.Fatalf("frame %d reported fps inside the window", i)
		}
	}
	fps, ok := s.frameCaptured(time.Millisecond, start.Add(2*time.Second))
	if !ok {
		t.Fatal("no fps after the window elapsed")
	}
	if fps != 15 {
		t.Errorf("fps = %v, want 15", fps)
	}
	if s.snapshot().FPS != 15 {
		t.Errorf("snapshot FPS = %v, want 15", s.snapshot().FPS)
	}
}

func TestStreamStatsResetKeepsLifetimeCounters(t *testing.T) {
	now := time.Now()
	s := newStreamStats(0, now)
	s.submitted.Add(3)
	s.dropped.Add(1)
	s.failed.Add(1)
	s.frameCaptured(time.Millisecond, now)

	s.reset(now)
	st := s.snapshot()
	if st.FramesCaptured != 0 || st.TotalFrameTime != 0 || st.FPS != 0 {
		t.Errorf("capture counters not reset: %+v", st)
	}
	if st.FramesSubmitted != 3 || st.FramesDropped != 1 || st.FramesFailed != 1 {
		t.Errorf("lifetime counters changed: %+v", st)
	}
}

func TestStreamStatsString(t *testing.T) {
	st := StreamStats{FramesSubmitted: 10, FramesCaptured: 8, FramesDropped: 2}
	s := st.String()
	for _, want := range []string{"10 submitted", "8 captured", "2 dropped"} {
		if !strings.Contains(s, want) {
			t.Errorf("String() = %q, missing %q", s, want)
		}
	}
}
