package spectral

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/cwbudde/fft3dfilter/dsp/blockfft"
	"github.com/cwbudde/fft3dfilter/dsp/overlap"
	"github.com/cwbudde/fft3dfilter/dsp/plane"
	"github.com/cwbudde/fft3dfilter/internal/testutil"
)

type memSource struct {
	fwd    *blockfft.Forward
	planes []*plane.Plane
	calls  atomic.Int32
}

func (s *memSource) Frames() int { return len(s.planes) }

func (s *memSource) Spectra(ctx context.Context, n int) (*blockfft.Spectra, error) {
	s.calls.Add(1)
	return s.fwd.Transform(ctx, s.planes[n])
}

type rig struct {
	bank *overlap.Bank
	fwd  *blockfft.Forward
	inv  *blockfft.Inverse
}

func newRig(t *testing.T, w, h, bw, ow int, wt overlap.WindowType) *rig {
	t.Helper()

	g, err := overlap.NewGrid(w, h, bw, bw, ow, ow)
	if err != nil {
		t.Fatal(err)
	}
	bank, err := overlap.NewBank(g, wt)
	if err != nil {
		t.Fatal(err)
	}
	fwd, err := blockfft.NewForward(bank, 2)
	if err != nil {
		t.Fatal(err)
	}
	inv, err := blockfft.NewInverse(bank, 2)
	if err != nil {
		t.Fatal(err)
	}
	return &rig{bank: bank, fwd: fwd, inv: inv}
}

func (r *rig) source(planes ...*plane.Plane) *memSource {
	return &memSource{fwd: r.fwd, planes: planes}
}

func (r *rig) filter(t *testing.T, e Engine, n int, src Source, format plane.Format) *plane.Plane {
	t.Helper()

	s, err := e.Filter(context.Background(), n, src)
	if err != nil {
		t.Fatalf("Filter(%d): %v", n, err)
	}
	out, err := r.inv.Reconstruct(context.Background(), s, format)
	if err != nil {
		t.Fatalf("Reconstruct: %v", err)
	}
	return out
}

func defaultConfig() Config {
	return Config{
		Temporal: ModeWiener,
		Sigma:    2,
		Sigma2:   2,
		Sigma3:   2,
		Sigma4:   2,
		Beta:     1,
		KRatio:   2,
		SCutoff:  0.3,
		SVR:      1,
		SMin:     4,
		SMax:     20,
		Degrid:   1,
		HR:       2,
		HT:       50,
		Workers:  2,
	}
}

func noisyFrames(w, h int, base []float64, sigma float64, count int, format plane.Format) []*plane.Plane {
	out := make([]*plane.Plane, count)
	for i := range out {
		data := testutil.Noisy(base, int64(100+i), sigma, max(format.Max(), 255))
		if format.Type == plane.SampleInteger {
			data = testutil.Round(data)
		}
		p, _ := plane.FromSlice(w, h, format, data)
		out[i] = p
	}
	return out
}

func mse(a, b []float64) float64 {
	acc := 0.0
	for i := range a {
		d := a[i] - b[i]
		acc += d * d
	}
	return acc / float64(len(a))
}
