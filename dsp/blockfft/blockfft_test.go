package blockfft

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/cwbudde/fft3dfilter/dsp/overlap"
	"github.com/cwbudde/fft3dfilter/dsp/plane"
	"github.com/cwbudde/fft3dfilter/internal/testutil"
)

func newPipeline(t *testing.T, w, h, bw, bh, ow, oh int, wt overlap.WindowType, workers int) (*Forward, *Inverse) {
	t.Helper()

	g, err := overlap.NewGrid(w, h, bw, bh, ow, oh)
	if err != nil {
		t.Fatalf("NewGrid: %v", err)
	}
	bank, err := overlap.NewBank(g, wt)
	if err != nil {
		t.Fatalf("NewBank: %v", err)
	}
	fwd, err := NewForward(bank, workers)
	if err != nil {
		t.Fatalf("NewForward: %v", err)
	}
	inv, err := NewInverse(bank, workers)
	if err != nil {
		t.Fatalf("NewInverse: %v", err)
	}
	return fwd, inv
}

func TestRoundTripIdentity(t *testing.T) {
	geometries := [][6]int{
		{64, 48, 32, 32, 10, 10},
		{50, 37, 16, 16, 8, 8},
		{40, 30, 12, 10, 4, 5},
		{19, 7, 8, 8, 0, 0},
		{3, 2, 8, 8, 2, 2},
	}
	windows := []overlap.WindowType{
		overlap.WindowRectangular,
		overlap.WindowHanning,
		overlap.WindowRaisedCosine,
		overlap.WindowFlat,
	}

	for _, geo := range geometries {
		for _, wt := range windows {
			t.Run(fmt.Sprintf("%v/%v", geo, wt), func(t *testing.T) {
				fwd, inv := newPipeline(t, geo[0], geo[1], geo[2], geo[3], geo[4], geo[5], wt, 3)

				src := testutil.Noisy(testutil.Gradient(200, geo[0], geo[1]), 11, 20, 255)
				p, err := plane.FromSlice(geo[0], geo[1], plane.GrayS, src)
				if err != nil {
					t.Fatal(err)
				}

				s, err := fwd.Transform(context.Background(), p)
				if err != nil {
					t.Fatalf("Transform: %v", err)
				}
				out, err := inv.Reconstruct(context.Background(), s, plane.GrayS)
				if err != nil {
					t.Fatalf("Reconstruct: %v", err)
				}

				diff, err := testutil.MaxAbsDiff(out.Data, src)
				if err != nil {
					t.Fatal(err)
				}
				if diff > 1e-4 {
					t.Fatalf("round trip max diff = %g", diff)
				}
			})
		}
	}
}

func TestRoundTripIntegerExact(t *testing.T) {
	fwd, inv := newPipeline(t, 96, 64, 32, 32, 10, 10, overlap.WindowHanning, 4)

	src := testutil.Round(testutil.Noisy(testutil.Constant(128, 96, 64), 3, 40, 255))
	p, _ := plane.FromSlice(96, 64, plane.Gray8, src)

	s, err := fwd.Transform(context.Background(), p)
	if err != nil {
		t.Fatal(err)
	}
	out, err := inv.Reconstruct(context.Background(), s, plane.Gray8)
	if err != nil {
		t.Fatal(err)
	}
	testutil.RequireSliceNearlyEqual(t, out.Data, src, 0)
}

func TestReconstructDeterministic(t *testing.T) {
	fwd, inv := newPipeline(t, 80, 80, 16, 16, 5, 5, overlap.WindowRaisedCosine, 8)
	p, _ := plane.FromSlice(80, 80, plane.GrayS, testutil.Noise(5, 1, 6400))

	s, err := fwd.Transform(context.Background(), p)
	if err != nil {
		t.Fatal(err)
	}

	a, err := inv.Reconstruct(context.Background(), s, plane.GrayS)
	if err != nil {
		t.Fatal(err)
	}
	for range 3 {
		b, err := inv.Reconstruct(context.Background(), s, plane.GrayS)
		if err != nil {
			t.Fatal(err)
		}
		for i := range a.Data {
			if a.Data[i] != b.Data[i] {
				t.Fatalf("sample %d differs between runs: %v vs %v", i, a.Data[i], b.Data[i])
			}
		}
	}
}

func TestTransformBlockMatchesTransform(t *testing.T) {
	fwd, _ := newPipeline(t, 40, 40, 16, 16, 4, 4, overlap.WindowHanning, 2)
	p, _ := plane.FromSlice(40, 40, plane.GrayS, testutil.Noise(9, 1, 1600))

	s, err := fwd.Transform(context.Background(), p)
	if err != nil {
		t.Fatal(err)
	}

	g := s.Grid
	blk := make([]complex128, g.BlockLen())
	if err := fwd.TransformBlock(p, 1, 2, blk); err != nil {
		t.Fatal(err)
	}
	testutil.RequireComplexNearlyEqual(t, blk, s.Block(2*g.NX+1), 0)

	if err := fwd.TransformBlock(p, g.NX, 0, blk); !errors.Is(err, ErrGeometry) {
		t.Fatalf("err = %v, want ErrGeometry", err)
	}
}

func TestWindowSpectrumDC(t *testing.T) {
	g, _ := overlap.NewGrid(64, 64, 16, 8, 4, 2)
	bank, _ := overlap.NewBank(g, overlap.WindowRaisedCosine)

	ws, err := WindowSpectrum(bank)
	if err != nil {
		t.Fatal(err)
	}

	sum := 0.0
	for _, v := range bank.Analysis() {
		sum += v
	}
	if math.Abs(real(ws[0])-sum) > 1e-9 || math.Abs(imag(ws[0])) > 1e-9 {
		t.Fatalf("DC = %v, want %v", ws[0], sum)
	}
}

func TestConstantPlaneIsDCOnly(t *testing.T) {
	fwd, _ := newPipeline(t, 64, 64, 32, 32, 0, 0, overlap.WindowRectangular, 1)
	p, _ := plane.FromSlice(64, 64, plane.Gray8, testutil.Constant(10, 64, 64))

	s, err := fwd.Transform(context.Background(), p)
	if err != nil {
		t.Fatal(err)
	}
	for b := range s.Blocks() {
		blk := s.Block(b)
		if math.Abs(real(blk[0])-10*32*32) > 1e-6 {
			t.Fatalf("block %d DC = %v", b, blk[0])
		}
		for k := 1; k < len(blk); k++ {
			if math.Abs(real(blk[k]))+math.Abs(imag(blk[k])) > 1e-8 {
				t.Fatalf("block %d coefficient %d = %v, want 0", b, k, blk[k])
			}
		}
	}
}

func TestGeometryMismatch(t *testing.T) {
	fwd, inv := newPipeline(t, 32, 32, 16, 16, 4, 4, overlap.WindowHanning, 1)

	if _, err := fwd.Transform(context.Background(), plane.New(31, 32, plane.Gray8)); !errors.Is(err, ErrGeometry) {
		t.Fatalf("Transform err = %v, want ErrGeometry", err)
	}

	other, _ := overlap.NewGrid(32, 32, 16, 16, 2, 2)
	if _, err := inv.Reconstruct(context.Background(), NewSpectra(other), plane.Gray8); !errors.Is(err, ErrGeometry) {
		t.Fatalf("Reconstruct err = %v, want ErrGeometry", err)
	}
}

func TestTransformCanceled(t *testing.T) {
	fwd, _ := newPipeline(t, 64, 64, 16, 16, 4, 4, overlap.WindowHanning, 2)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := fwd.Transform(ctx, plane.New(64, 64, plane.Gray8)); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

func TestShutdownAndReinit(t *testing.T) {
	if err := Init(); err != nil {
		t.Fatal(err)
	}
	Shutdown()
	fwd, inv := newPipeline(t, 16, 16, 8, 8, 2, 2, overlap.WindowHanning, 1)
	p, _ := plane.FromSlice(16, 16, plane.Gray8, testutil.Round(testutil.Gradient(255, 16, 16)))

	s, err := fwd.Transform(context.Background(), p)
	if err != nil {
		t.Fatal(err)
	}
	out, err := inv.Reconstruct(context.Background(), s, plane.Gray8)
	if err != nil {
		t.Fatal(err)
	}
	testutil.RequireSliceNearlyEqual(t, out.Data, p.Data, 0)
}

func TestBackendSelection(t *testing.T) {
	if Backend(32) != "algo-fft" || Backend(12) != "gonum" {
		t.Fatalf("Backend(32)=%q Backend(12)=%q", Backend(32), Backend(12))
	}

	for _, n := range []int{8, 12} {
		f, err := newFFT1(n)
		if err != nil {
			t.Fatal(err)
		}
		x := testutil.Noise(int64(n), 1, n)
		buf := make([]complex128, n)
		for i, v := range x {
			buf[i] = complex(v, 0)
		}
		if err := f.Forward(buf, buf); err != nil {
			t.Fatal(err)
		}
		if err := f.Inverse(buf, buf); err != nil {
			t.Fatal(err)
		}
		for i, v := range x {
			if math.Abs(real(buf[i])-v) > 1e-12 {
				t.Fatalf("n=%d index %d: %v, want %v", n, i, buf[i], v)
			}
		}
	}
}
