package capture

import "github.com/gogpu/camstream"

// Pattern selects the test image rendered into synthetic frames.
type Pattern uint8

// Test patterns.
const (
	// PatternColorBars draws eight vertical 75% color bars that scroll one
	// chroma column per frame.
	PatternColorBars Pattern = iota

	// PatternGradient draws a horizontal luma ramp with neutral chroma.
	PatternGradient

	// PatternFrameCounter fills the frame with a flat gray whose luma
	// encodes the frame number, so a consumer can recover frame order.
	PatternFrameCounter
)

// String returns the pattern name.
func (p Pattern) String() string {
	switch p {
	case PatternColorBars:
		return "bars"
	case PatternGradient:
		return "gradient"
	case PatternFrameCounter:
		return "counter"
	default:
		return "unknown"
	}
}

// ycbcr is a BT.601 video-range sample.
type ycbcr struct{ y, cb, cr uint8 }

// colorBars are the 75% bars: white, yellow, cyan, green, magenta, red,
// blue, black.
var colorBars = [8]ycbcr{
	{180, 128, 128},
	{162, 44, 142},
	{131, 156, 44},
	{112, 72, 58},
	{84, 184, 198},
	{65, 100, 212},
	{35, 212, 114},
	{16, 128, 128},
}

// CounterLuma returns the luma PatternFrameCounter uses for frame n.
// Values stay inside video range and repeat every 200 frames.
func CounterLuma(n uint64) uint8 {
	return uint8(16 + n%200) //nolint:gosec // bounded by modulo
}

// render draws pattern p for frame n into buf.
func render(buf *camstream.NV12Buffer, p Pattern, n uint64) {
	switch p {
	case PatternGradient:
		renderGradient(buf)
	case PatternFrameCounter:
		buf.Fill(CounterLuma(n), 128, 128)
	default:
		renderBars(buf, n)
	}
}

func renderBars(buf *camstream.NV12Buffer, n uint64) {
	w, h := buf.Width(), buf.Height()
	cw, ch := w/2, h/2
	shift := int(n % uint64(cw)) //nolint:gosec // bounded by width
	for cx := range cw {
		bar := colorBars[((cx+shift)%cw)*len(colorBars)/cw]
		for cy := range ch {
			buf.SetChroma(cx, cy, bar.cb, bar.cr)
			buf.SetLuma(cx*2, cy*2, bar.y)
			buf.SetLuma(cx*2+1, cy*2, bar.y)
			buf.SetLuma(cx*2, cy*2+1, bar.y)
			buf.SetLuma(cx*2+1, cy*2+1, bar.y)
		}
	}
}

func renderGradient(buf *camstream.NV12Buffer) {
	w, h := buf.Width(), buf.Height()
	for x := range w {
		v := uint8(16 + x*(235-16)/max(w-1, 1)) //nolint:gosec // in [16, 235]
		for y := range h {
			buf.SetLuma(x, y, v)
		}
	}
	for cx := range w / 2 {
		for cy := range h / 2 {
			buf.SetChroma(cx, cy, 128, 128)
		}
	}
}
