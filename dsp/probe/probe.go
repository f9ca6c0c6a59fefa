package probe

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gonum.org/v1/gonum/stat"

	"github.com/cwbudde/fft3dfilter/dsp/blockfft"
	"github.com/cwbudde/fft3dfilter/dsp/plane"
	"github.com/cwbudde/fft3dfilter/dsp/spectral"
)

// ErrBlockIndex reports a block coordinate outside the grid.
var ErrBlockIndex = errors.New("probe: block index out of range")

// Report is the spectrum of one block before and after Wiener filtering.
type Report struct {
	PX, PY   int
	BW, BH   int
	Sigma    float64 // estimated noise level, 8-bit units
	Raw      []float64
	Filtered []float64
}

// MeanRaw is the mean raw magnitude.
func (r *Report) MeanRaw() float64 { return stat.Mean(r.Raw, nil) }

// MeanFiltered is the mean filtered magnitude.
func (r *Report) MeanFiltered() float64 { return stat.Mean(r.Filtered, nil) }

// Text formats the report for an overlay renderer, one value per line.
func (r *Report) Text() string {
	var b strings.Builder
	fmt.Fprintf(&b, "px=%d\n", r.PX)
	fmt.Fprintf(&b, "py=%d\n", r.PY)
	fmt.Fprintf(&b, "sigma=%.3f\n", r.Sigma)
	return b.String()
}

// Probe measures single blocks with a fixed transform and noise model.
type Probe struct {
	fwd   *blockfft.Forward
	model *spectral.Model
	an    *Analyzer
}

// New returns a probe. pcutoff sets the noise estimation high-pass.
func New(fwd *blockfft.Forward, model *spectral.Model, format plane.Format, pcutoff float64) (*Probe, error) {
	an, err := NewAnalyzer(fwd.Bank(), format, pcutoff)
	if err != nil {
		return nil, err
	}
	return &Probe{fwd: fwd, model: model, an: an}, nil
}

// Analyzer returns the noise analyzer.
func (p *Probe) Analyzer() *Analyzer { return p.an }

// Locate resolves the probed block. (0, 0) selects the quietest block.
func (p *Probe) Locate(ctx context.Context, pl *plane.Plane, px, py int) (bx, by int, err error) {
	g := p.fwd.Bank().Grid()
	if px < 0 || py < 0 || px >= g.NX || py >= g.NY {
		return 0, 0, fmt.Errorf("%w: (%d,%d) in %dx%d blocks", ErrBlockIndex, px, py, g.NX, g.NY)
	}
	if px != 0 || py != 0 {
		return px, py, nil
	}
	s, err := p.fwd.Transform(ctx, pl)
	if err != nil {
		return 0, 0, err
	}
	bx, by = p.an.QuietBlock(s)
	return bx, by, nil
}

// Block returns the spectrum of block (bx, by) of pl.
func (p *Probe) Block(pl *plane.Plane, bx, by int) ([]complex128, error) {
	blk := make([]complex128, p.fwd.Bank().Grid().BlockLen())
	if err := p.fwd.TransformBlock(pl, bx, by, blk); err != nil {
		return nil, err
	}
	return blk, nil
}

// Measure reports block (px, py) of pl.
func (p *Probe) Measure(ctx context.Context, pl *plane.Plane, px, py int) (*Report, error) {
	bx, by, err := p.Locate(ctx, pl, px, py)
	if err != nil {
		return nil, err
	}
	blk, err := p.Block(pl, bx, by)
	if err != nil {
		return nil, err
	}

	g := p.fwd.Bank().Grid()
	r := &Report{
		PX:    bx,
		PY:    by,
		BW:    g.BW,
		BH:    g.BH,
		Sigma: p.an.Sigma(p.an.NoisePower(p.an.PSD(blk))),
		Raw:   Magnitudes(blk),
	}

	filtered := append([]complex128(nil), blk...)
	p.model.Wiener2D(filtered)
	r.Filtered = Magnitudes(filtered)

	return r, nil
}
