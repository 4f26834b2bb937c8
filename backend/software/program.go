package software

import (
	"fmt"
	"time"

	"github.com/gogpu/camstream/gpucore"
	"github.com/gogpu/camstream/internal/parallel"
)

// rowsPerBand is the smallest band of output rows handed to a worker.
const rowsPerBand = 16

// program runs the YUV conversion on the CPU.
type program struct {
	dev   *Device
	label string
}

// CreateProgram accepts the YUV conversion program. Other entry points
// return gpucore.ErrUnsupportedProgram.
func (d *Device) CreateProgram(desc *gpucore.ProgramDesc) (gpucore.Program, error) {
	if desc == nil || desc.Source == "" {
		return nil, fmt.Errorf("%w: empty program", gpucore.ErrUnsupportedProgram)
	}
	if desc.EntryPoint != gpucore.YUVConversionEntryPoint {
		return nil, fmt.Errorf("%w: entry point %q", gpucore.ErrUnsupportedProgram, desc.EntryPoint)
	}
	return &program{dev: d, label: desc.Label}, nil
}

// Dispatch converts pass.Luma and pass.Chroma into pass.Output.
func (p *program) Dispatch(pass *gpucore.ConversionPass) error {
	d := p.dev
	if d.opts.BeforeDispatch != nil {
		d.opts.BeforeDispatch(pass)
	}

	d.mu.RLock()
	luma, errL := d.lookup(pass.Luma)
	chroma, errC := d.lookup(pass.Chroma)
	out, errO := d.lookup(pass.Output)
	_, hasSampler := d.samplers[pass.Sampler]
	d.mu.RUnlock()

	switch {
	case errL != nil:
		return fmt.Errorf("software: luma: %w", errL)
	case errC != nil:
		return fmt.Errorf("software: chroma: %w", errC)
	case errO != nil:
		return fmt.Errorf("software: output: %w", errO)
	case !hasSampler:
		return fmt.Errorf("%w: %d", gpucore.ErrSamplerNotFound, pass.Sampler)
	}
	if luma.desc.Format != gpucore.TextureFormatR8Unorm ||
		chroma.desc.Format != gpucore.TextureFormatRG8Unorm ||
		out.desc.Format != gpucore.TextureFormatRGBA8Unorm {
		return fmt.Errorf("%w: formats %v/%v -> %v", gpucore.ErrInvalidDescriptor,
			luma.desc.Format, chroma.desc.Format, out.desc.Format)
	}

	convert(d.pool, luma, chroma, out, &pass.Params)

	if d.opts.DispatchDelay > 0 {
		time.Sleep(d.opts.DispatchDelay)
	}
	d.dispatches.Add(1)
	return nil
}

func (p *program) Destroy() {}

// convert writes every output texel. Each input is sampled at the output
// texel center with nearest filtering, as the compute shader does.
func convert(pool *parallel.WorkerPool, luma, chroma, out *texture, params *gpucore.ConversionParams) {
	pool.ForRows(out.desc.Height, rowsPerBand, func(y0, y1 int) {
		convertRows(luma, chroma, out, params, y0, y1)
	})
}

// convertRows writes output rows [y0, y1).
func convertRows(luma, chroma, out *texture, params *gpucore.ConversionParams, y0, y1 int) {
	ow, oh := out.desc.Width, out.desc.Height
	for y := y0; y < y1; y++ {
		ly := nearest(y, oh, luma.desc.Height)
		cy := nearest(y, oh, chroma.desc.Height)
		lrow := luma.row(ly)
		crow := chroma.row(cy)
		orow := out.row(y)
		for x := range ow {
			lx := nearest(x, ow, luma.desc.Width)
			cx := nearest(x, ow, chroma.desc.Width)
			r, g, b := params.Apply(lrow[lx], crow[cx*2], crow[cx*2+1])
			o := orow[x*4 : x*4+4 : x*4+4]
			o[0], o[1], o[2], o[3] = r, g, b, 255
		}
	}
}

// nearest maps output texel i of n onto a source axis of size m:
// floor((i+0.5)/n*m), clamped to the edge texel.
func nearest(i, n, m int) int {
	t := ((2*i + 1) * m) / (2 * n)
	if t >= m {
		return m - 1
	}
	return t
}
