package spectral

import (
	"context"
	"sync"

	"gonum.org/v1/gonum/dsp/fourier"

	"github.com/cwbudde/fft3dfilter/dsp/blockfft"
)

// wiener3DEngine filters frame n with the bt frames n-bt/2 .. n+bt-1-bt/2
// (clamped to the clip). Each coefficient's temporal sequence is
// transformed with a bt-point DFT, Wiener-weighted against bt times the
// noise power and transformed back.
type wiener3DEngine struct {
	m      *Model
	bt     int
	noise3 []float64

	mu   sync.Mutex
	hist *History
	last int
}

func newWiener3DEngine(m *Model) *wiener3DEngine {
	bt := m.cfg.Temporal
	noise3 := make([]float64, len(m.noise))
	for k, v := range m.noise {
		noise3[k] = v * float64(bt)
	}
	return &wiener3DEngine{m: m, bt: bt, noise3: noise3, last: -1}
}

func (e *wiener3DEngine) Ordered() bool { return true }
func (e *wiener3DEngine) Model() *Model { return e.m }

func (e *wiener3DEngine) Release() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.hist != nil {
		e.hist.Release()
		e.hist = nil
	}
	e.last = -1
}

func (e *wiener3DEngine) Filter(ctx context.Context, n int, src Source) (*blockfft.Spectra, error) {
	if err := checkFrame(n, src); err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.hist == nil {
		e.hist = NewHistory(e.bt)
	}
	if n < e.last {
		e.m.restarted()
	}
	e.last = n

	frames := make([]*blockfft.Spectra, e.bt)
	first := n - e.bt/2
	for i := range frames {
		idx := min(max(first+i, 0), src.Frames()-1)
		s, err := e.hist.Get(ctx, idx, src)
		if err != nil {
			return nil, err
		}
		frames[i] = s
	}

	out := blockfft.NewSpectra(frames[0].Grid)
	err := e.m.forEachBlockRow(ctx, func(by int) error {
		e.filterRow(by, frames, out)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (e *wiener3DEngine) filterRow(by int, frames []*blockfft.Spectra, out *blockfft.Spectra) {
	g := out.Grid
	n := g.BlockLen()
	bt := e.bt
	cur := bt / 2
	inv := 1 / float64(bt)

	fft := fourier.NewCmplxFFT(bt)
	blocks := make([][]complex128, bt)
	for i := range blocks {
		blocks[i] = make([]complex128, n)
	}
	fractions := make([]float64, bt)
	seq := make([]complex128, bt)
	coef := make([]complex128, bt)
	noise := make([]float64, bt)

	for bx := range g.NX {
		b := by*g.NX + bx
		for i, f := range frames {
			copy(blocks[i], f.Block(b))
			fractions[i] = e.m.degrid.Remove(blocks[i])
		}

		dst := out.Block(b)
		for k := range n {
			for i := range seq {
				seq[i] = blocks[i][k]
				noise[i] = e.noise3[k]
			}
			fft.Coefficients(coef, seq)
			e.m.kern.Wiener(coef, noise, e.m.floor)
			fft.Sequence(seq, coef)
			dst[k] = complex(real(seq[cur])*inv, imag(seq[cur])*inv)
		}

		e.m.post.Apply(dst)
		e.m.degrid.Restore(dst, fractions[cur])
	}
}
