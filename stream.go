package camstream

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// FrameHandler is called by a capture source for every captured frame.
type FrameHandler func(buf PlanarBuffer, ts Timestamp)

// CaptureSource is the capture subsystem feeding a Stream.
//
// The source delivers frames serially on its own goroutine. Starting and
// stopping the hardware is the source's business; a Stream only
// negotiates the pixel format and installs its frame handler.
type CaptureSource interface {
	// DeviceID is an opaque identifier of the capture device.
	DeviceID() string

	// SupportedPixelFormats lists the formats the device can deliver.
	SupportedPixelFormats() []PixelFormat

	// SetPixelFormat selects the format of delivered buffers.
	SetPixelFormat(f PixelFormat) error

	// SetFrameHandler installs h; nil detaches the current handler.
	SetFrameHandler(h FrameHandler)

	Start() error
	Stop() error
}

// Stream converts live biplanar YUV frames to RGBA framebuffers.
//
// At most one frame is converted at a time. A frame arriving while the
// previous one is still being converted is dropped, never queued, so the
// stream runs at whatever rate the GPU sustains and delivered frames keep
// their capture order.
//
// Stream is safe for concurrent use.
type Stream struct {
	id     uuid.UUID
	gc     *GPUContext
	source CaptureSource
	format FormatSelection
	log    *slog.Logger
	logFPS bool

	binder    TextureBinder
	converter *ColorConverter

	gate    gate
	targets targetList
	stats   *streamStats

	mu       sync.RWMutex // guards closed and inflight.Add
	closed   bool
	inflight sync.WaitGroup
}

// NewStream negotiates the pixel format with source, builds the texture
// binder and the color converter on gc, and installs itself as the
// source's frame handler.
//
// The color matrix is chosen here from the source's advertised formats and
// never changes. NewStream returns ErrUnsupportedFormat when the source
// cannot deliver biplanar 4:2:0 frames.
func NewStream(gc *GPUContext, source CaptureSource, opts ...StreamOption) (*Stream, error) {
	if gc == nil {
		return nil, ErrNilDevice
	}
	if source == nil {
		return nil, ErrNilSource
	}
	o := defaultStreamOptions()
	for _, opt := range opts {
		opt(&o)
	}

	sel, err := SelectPixelFormat(source.SupportedPixelFormats())
	if err != nil {
		return nil, err
	}
	if err := source.SetPixelFormat(sel.Format); err != nil {
		return nil, fmt.Errorf("%w: source rejected %v: %w", ErrUnsupportedFormat, sel.Format, err)
	}

	id := uuid.New()
	log := Logger().With("stream_id", id.String(), "device_id", source.DeviceID())
	if o.label != "" {
		log = log.With("label", o.label)
	}

	s := &Stream{
		id:     id,
		gc:     gc,
		source: source,
		format: sel,
		log:    log,
		logFPS: o.logFPS,
		stats:  newStreamStats(o.framesToIgnore, time.Now()),
	}

	matrix := ColorMatrixForRange(sel.Range)
	var initErr error
	err = gc.queue.Sync(context.Background(), func(context.Context) {
		s.binder, initErr = NewTextureBinder(gc, o.forceUpload)
		if initErr != nil {
			return
		}
		s.converter, initErr = NewColorConverter(gc, matrix)
		if initErr != nil {
			s.binder.Close()
		}
	})
	if err != nil {
		return nil, err
	}
	if initErr != nil {
		return nil, initErr
	}

	source.SetFrameHandler(s.Submit)

	log.Info("camstream: stream created",
		"format", sel.Format.String(),
		"matrix", matrix.Name,
		"bind_path", s.binder.Path().String())
	return s, nil
}

// ID returns the stream's unique identifier.
func (s *Stream) ID() uuid.UUID { return s.id }

// Format returns the negotiated capture format.
func (s *Stream) Format() FormatSelection { return s.format }

// Matrix returns the color matrix selected at construction.
func (s *Stream) Matrix() ColorMatrix { return s.converter.Matrix() }

// BindPath reports which texture binder the stream uses.
func (s *Stream) BindPath() BindPath { return s.binder.Path() }

// Submit hands a captured frame to the stream. It never blocks: if a
// conversion is already in flight the frame is dropped.
//
// buf must stay valid until Submit returns; the stream locks it for the
// duration of the conversion.
func (s *Stream) Submit(buf PlanarBuffer, ts Timestamp) {
	s.stats.submitted.Add(1)

	if !s.gate.tryAcquire() {
		s.stats.dropped.Add(1)
		s.log.Debug("camstream: frame dropped, conversion in flight", "timestamp", int64(ts))
		return
	}

	s.mu.RLock()
	if s.closed {
		s.mu.RUnlock()
		s.gate.release()
		s.stats.dropped.Add(1)
		return
	}
	s.inflight.Add(1)
	s.mu.RUnlock()

	queued := false
	defer func() {
		if !queued {
			s.gate.release()
			s.inflight.Done()
		}
	}()

	if err := validatePlanarBuffer(buf); err != nil {
		s.frameFailed(err, ts)
		return
	}
	if err := buf.Lock(); err != nil {
		s.frameFailed(fmt.Errorf("camstream: lock buffer: %w", err), ts)
		return
	}

	err := s.gc.queue.Async(func(ctx context.Context) {
		s.process(ctx, buf, ts)
	})
	if err != nil {
		buf.Unlock()
		s.frameFailed(err, ts)
		return
	}
	queued = true
}

// process runs on the work queue: bind, convert, unlock, fan out. The gate
// is released last, whatever happened.
func (s *Stream) process(ctx context.Context, buf PlanarBuffer, ts Timestamp) {
	defer s.inflight.Done()
	defer s.gate.release()

	start := time.Now()
	fb, err := s.convert(ctx, buf, ts)
	buf.Unlock()
	if err != nil {
		s.frameFailed(err, ts)
		return
	}

	now := time.Now()
	if fps, measured := s.stats.frameCaptured(now.Sub(start), now); measured && s.logFPS {
		s.log.Debug("camstream: frame rate", "fps", fps)
	}

	s.targets.fanOut(ctx, fb)
	fb.Unlock()
}

func (s *Stream) convert(ctx context.Context, buf PlanarBuffer, ts Timestamp) (*Framebuffer, error) {
	binding, err := s.binder.Bind(ctx, buf)
	if err != nil {
		return nil, err
	}
	defer binding.Release()
	return s.converter.Convert(ctx, binding.Luma, binding.Chroma, binding.Sampler, ts)
}

func (s *Stream) frameFailed(err error, ts Timestamp) {
	s.stats.failed.Add(1)
	s.log.Warn("camstream: frame dropped", "timestamp", int64(ts), "err", err)
}

// StartCapture resets the capture counters. Starting the device is up to
// the capture source.
func (s *Stream) StartCapture() {
	s.stats.reset(time.Now())
	s.log.Debug("camstream: capture started")
}

// StopCapture leaves the stream untouched: frames keep being accepted and a
// later StartCapture resumes counting.
func (s *Stream) StopCapture() {
	s.log.Debug("camstream: capture stopped")
}

// TransmitPreviousImage does nothing. A live stream keeps no previous
// frame; new consumers see the next captured frame.
func (s *Stream) TransmitPreviousImage(Consumer, uint) {}

// AddTarget registers a consumer. index is passed back to it with every
// frame.
func (s *Stream) AddTarget(c Consumer, index uint) TargetID {
	return s.targets.add(c, index)
}

// RemoveTarget unregisters a consumer. It reports whether id was
// registered.
func (s *Stream) RemoveTarget(id TargetID) bool {
	return s.targets.remove(id)
}

// RemoveAllTargets unregisters every consumer.
func (s *Stream) RemoveAllTargets() {
	s.targets.removeAll()
}

// TargetCount returns the number of registered consumers.
func (s *Stream) TargetCount() int {
	return s.targets.len()
}

// Busy reports whether a conversion is in flight.
func (s *Stream) Busy() bool {
	return s.gate.busy()
}

// Stats returns a snapshot of the stream counters.
func (s *Stream) Stats() StreamStats {
	return s.stats.snapshot()
}

// Close detaches the stream from its source, waits for the in-flight
// conversion and releases the stream's GPU objects on the work queue.
// After Close returns no work of the stream remains. Close must not be
// called from a Consumer.
func (s *Stream) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()

	s.source.SetFrameHandler(nil)
	s.inflight.Wait()

	cleanup := func(context.Context) {
		s.converter.Close()
		s.binder.Close()
	}
	if err := s.gc.queue.Sync(context.Background(), cleanup); errors.Is(err, ErrQueueClosed) {
		cleanup(context.Background())
	}
	s.targets.removeAll()

	s.log.Info("camstream: stream closed", "stats", s.stats.snapshot().String())
}
