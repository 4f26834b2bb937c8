package camstream

// Timestamp is a capture timestamp as delivered by the capture subsystem.
//
// Units and epoch belong to the source. The pipeline only compares and
// propagates timestamps, it never interprets their scale.
type Timestamp int64

// TimingStyle tells consumers how to interpret a framebuffer's timing.
type TimingStyle uint8

// Timing styles.
const (
	// TimingStillImage marks a framebuffer with no position in a stream.
	TimingStillImage TimingStyle = iota

	// TimingVideoFrame marks a live frame carrying its capture timestamp.
	TimingVideoFrame
)

// Timing is the timing tag attached to a framebuffer.
type Timing struct {
	Style     TimingStyle
	Timestamp Timestamp
}

// VideoFrame returns the timing tag of a live frame captured at ts.
func VideoFrame(ts Timestamp) Timing {
	return Timing{Style: TimingVideoFrame, Timestamp: ts}
}

// IsVideoFrame reports whether the tag belongs to a live frame.
func (t Timing) IsVideoFrame() bool { return t.Style == TimingVideoFrame }

// Orientation describes how a framebuffer's pixels map onto the display.
type Orientation uint8

// Orientations.
const (
	// OrientationPortrait applies no rotation.
	OrientationPortrait Orientation = iota
	OrientationPortraitUpsideDown
	OrientationLandscapeLeft
	OrientationLandscapeRight
)

// String returns the orientation name.
func (o Orientation) String() string {
	switch o {
	case OrientationPortrait:
		return "portrait"
	case OrientationPortraitUpsideDown:
		return "portraitUpsideDown"
	case OrientationLandscapeLeft:
		return "landscapeLeft"
	case OrientationLandscapeRight:
		return "landscapeRight"
	default:
		return "unknown"
	}
}
