package blockfft

import (
	"context"
	"fmt"

	"github.com/cwbudde/algo-vecmath"
	"golang.org/x/sync/errgroup"

	"github.com/cwbudde/fft3dfilter/dsp/buffer"
	"github.com/cwbudde/fft3dfilter/dsp/overlap"
	"github.com/cwbudde/fft3dfilter/dsp/plane"
)

var (
	complexScratch = buffer.NewPool[complex128]()
	realScratch    = buffer.NewPool[float64]()
)

// Inverse reconstructs planes from block spectra.
type Inverse struct {
	bank    *overlap.Bank
	workers int
}

// NewInverse returns an inverse transform for bank.
func NewInverse(bank *overlap.Bank, workers int) (*Inverse, error) {
	if err := Init(); err != nil {
		return nil, err
	}
	g := bank.Grid()
	t, err := acquire(g.BW, g.BH)
	if err != nil {
		return nil, err
	}
	release(t)

	return &Inverse{bank: bank, workers: max(workers, 1)}, nil
}

// Bank returns the window bank.
func (inv *Inverse) Bank() *overlap.Bank { return inv.bank }

// Reconstruct inverse-transforms s, overlap-adds the synthesis-weighted
// blocks and returns a new plane quantised to format. s is not modified.
//
// Blocks are inverse-transformed concurrently into private slabs and then
// accumulated in raster order by a single goroutine, so the result does
// not depend on scheduling.
func (inv *Inverse) Reconstruct(ctx context.Context, s *Spectra, format plane.Format) (*plane.Plane, error) {
	g := inv.bank.Grid()
	if !g.SameGeometry(s.Grid) || len(s.Data) != g.Blocks()*g.BlockLen() {
		return nil, fmt.Errorf("%w: spectra do not belong to this bank", ErrGeometry)
	}

	n := g.BlockLen()
	slabs := realScratch.Get(g.Blocks() * n)
	defer realScratch.Put(slabs)

	if err := inv.synthesize(ctx, s, slabs.Data()); err != nil {
		return nil, err
	}

	acc := realScratch.Get(g.Width * g.Height)
	defer realScratch.Put(acc)
	overlapAdd(g, slabs.Data(), acc.Data())

	out := plane.New(g.Width, g.Height, format)
	divX, divY := inv.bank.DivisorX(), inv.bank.DivisorY()
	sum := acc.Data()
	for y := range g.Height {
		row := out.Row(y)
		src := sum[y*g.Width : (y+1)*g.Width]
		for x := range g.Width {
			row[x] = format.Quantize(src[x] / (divX[x] * divY[y]))
		}
	}

	return out, nil
}

func (inv *Inverse) synthesize(ctx context.Context, s *Spectra, slabs []float64) error {
	g := s.Grid
	n := g.BlockLen()
	syn := inv.bank.Synthesis()

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(inv.workers)

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

			work := complexScratch.Get(n)
			defer complexScratch.Put(work)
			blk := work.Data()

			for bx := range g.NX {
				b := by*g.NX + bx
				copy(blk, s.Block(b))
				if err := t.inverse(blk); err != nil {
					return err
				}
				dst := slabs[b*n : (b+1)*n]
				for k, c := range blk {
					dst[k] = real(c)
				}
				vecmath.MulBlockInPlace(dst, syn)
			}
			return nil
		})
	}

	return eg.Wait()
}

// overlapAdd accumulates the in-plane part of every slab into acc.
func overlapAdd(g *overlap.Grid, slabs, acc []float64) {
	n := g.BlockLen()
	for by := range g.NY {
		j0, j1, y0 := g.ClipY(by)
		for bx := range g.NX {
			i0, i1, x0 := g.ClipX(bx)
			slab := slabs[(by*g.NX+bx)*n:]
			for j := j0; j < j1; j++ {
				y := y0 + j - j0
				dst := acc[y*g.Width+x0 : y*g.Width+x0+i1-i0]
				vecmath.AddBlockInPlace(dst, slab[j*g.BW+i0:j*g.BW+i1])
			}
		}
	}
}
