package blockfft

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/cwbudde/fft3dfilter/dsp/overlap"
	"github.com/cwbudde/fft3dfilter/dsp/plane"
)

// Forward windows and transforms every block of a plane. It holds no
// mutable state and may be used from several goroutines.
type Forward struct {
	bank    *overlap.Bank
	workers int
}

// NewForward returns a forward transform for bank. workers bounds the
// number of block rows transformed concurrently; values below 1 mean 1.
func NewForward(bank *overlap.Bank, workers int) (*Forward, error) {
	if err := Init(); err != nil {
		return nil, err
	}
	g := bank.Grid()
	t, err := acquire(g.BW, g.BH)
	if err != nil {
		return nil, err
	}
	release(t)

	return &Forward{bank: bank, workers: max(workers, 1)}, nil
}

// Bank returns the window bank.
func (f *Forward) Bank() *overlap.Bank { return f.bank }

// Transform returns the spectra of every block of p.
func (f *Forward) Transform(ctx context.Context, p *plane.Plane) (*Spectra, error) {
	g := f.bank.Grid()
	if p.Width != g.Width || p.Height != g.Height {
		return nil, fmt.Errorf("%w: plane %dx%d, grid %dx%d", ErrGeometry, p.Width, p.Height, g.Width, g.Height)
	}

	out := NewSpectra(g)

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(f.workers)

	for by := range g.NY {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			t, err := acquire(g.BW, g.BH)
			if err != nil {
				return err
			}
			defer release(t)

			for bx := range g.NX {
				blk := out.Block(by*g.NX + bx)
				f.extract(p, bx, by, blk)
				if err := t.forward(blk); err != nil {
					return err
				}
			}
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}

	return out, nil
}

// TransformBlock windows and transforms block (bx, by) of p into dst.
func (f *Forward) TransformBlock(p *plane.Plane, bx, by int, dst []complex128) error {
	g := f.bank.Grid()
	if p.Width != g.Width || p.Height != g.Height || len(dst) != g.BlockLen() ||
		bx < 0 || by < 0 || bx >= g.NX || by >= g.NY {
		return ErrGeometry
	}

	t, err := acquire(g.BW, g.BH)
	if err != nil {
		return err
	}
	defer release(t)

	f.extract(p, bx, by, dst)
	return t.forward(dst)
}

func (f *Forward) extract(p *plane.Plane, bx, by int, dst []complex128) {
	g := f.bank.Grid()
	a := f.bank.Analysis()

	for j := range g.BH {
		row := p.Row(g.SourceY(by, j))
		k := j * g.BW
		for i := range g.BW {
			dst[k+i] = complex(row[g.SourceX(bx, i)]*a[k+i], 0)
		}
	}
}

// WindowSpectrum returns the spectrum of the analysis window applied to a
// constant block of ones. Its DC term is the window sum.
func WindowSpectrum(bank *overlap.Bank) ([]complex128, error) {
	g := bank.Grid()
	t, err := acquire(g.BW, g.BH)
	if err != nil {
		return nil, err
	}
	defer release(t)

	a := bank.Analysis()
	out := make([]complex128, len(a))
	for k, v := range a {
		out[k] = complex(v, 0)
	}
	if err := t.forward(out); err != nil {
		return nil, err
	}
	return out, nil
}
