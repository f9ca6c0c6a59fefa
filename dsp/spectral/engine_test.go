package spectral

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/cwbudde/fft3dfilter/dsp/blockfft"
	"github.com/cwbudde/fft3dfilter/dsp/overlap"
	"github.com/cwbudde/fft3dfilter/dsp/plane"
	"github.com/cwbudde/fft3dfilter/internal/testutil"
)

func TestConfigValidate(t *testing.T) {
	c := defaultConfig()
	c.Temporal = 6
	if err := c.Validate(); !errors.Is(err, ErrTemporalMode) {
		t.Fatalf("err = %v, want ErrTemporalMode", err)
	}

	c = defaultConfig()
	c.Temporal = -2
	if err := c.Validate(); !errors.Is(err, ErrTemporalMode) {
		t.Fatalf("err = %v, want ErrTemporalMode", err)
	}

	c = defaultConfig()
	c.Beta = 0.9
	if err := c.Validate(); !errors.Is(err, ErrBeta) {
		t.Fatalf("err = %v, want ErrBeta", err)
	}
}

func TestModeName(t *testing.T) {
	want := map[int]string{-1: "sharpen", 0: "kalman", 1: "wiener", 3: "wiener3d(3)", 9: "invalid(9)"}
	for bt, name := range want {
		if got := ModeName(bt); got != name {
			t.Fatalf("ModeName(%d) = %q, want %q", bt, got, name)
		}
	}
}

func TestOrderedContract(t *testing.T) {
	r := newRig(t, 32, 32, 16, 4, overlap.WindowHanning)
	for bt, ordered := range map[int]bool{-1: false, 0: true, 1: false, 2: true, 5: true} {
		c := defaultConfig()
		c.Temporal = bt
		e, err := New(r.bank, plane.Gray8, c)
		if err != nil {
			t.Fatal(err)
		}
		if e.Ordered() != ordered {
			t.Fatalf("bt=%d Ordered() = %v, want %v", bt, e.Ordered(), ordered)
		}
		e.Release()
	}
}

func TestPatternLengthChecked(t *testing.T) {
	r := newRig(t, 32, 32, 16, 4, overlap.WindowHanning)
	c := defaultConfig()
	c.Pattern = make([]float64, 3)
	if _, err := New(r.bank, plane.Gray8, c); !errors.Is(err, ErrPattern) {
		t.Fatalf("err = %v, want ErrPattern", err)
	}
}

func TestSharpenZeroPlaneStaysZero(t *testing.T) {
	r := newRig(t, 64, 64, 32, 10, overlap.WindowRectangular)
	c := defaultConfig()
	c.Temporal = ModeSharpen
	c.Sharpen = 1
	c.SCutoff = 0.3
	c.Dehalo = 1

	e, err := New(r.bank, plane.Gray8, c)
	if err != nil {
		t.Fatal(err)
	}
	out := r.filter(t, e, 0, r.source(plane.New(64, 64, plane.Gray8)), plane.Gray8)
	for i, v := range out.Data {
		if v != 0 {
			t.Fatalf("sample %d = %v, want 0", i, v)
		}
	}
}

func TestSharpenIncreasesDetail(t *testing.T) {
	r := newRig(t, 64, 64, 16, 4, overlap.WindowHanning)
	c := defaultConfig()
	c.Temporal = ModeSharpen
	c.Sharpen = 1

	src := testutil.Checkerboard(100, 140, 3, 64, 64)
	p, _ := plane.FromSlice(64, 64, plane.GrayS, src)

	e, err := New(r.bank, plane.Gray8, c)
	if err != nil {
		t.Fatal(err)
	}
	out := r.filter(t, e, 0, r.source(p), plane.GrayS)
	if testutil.StdDev(out.Data) <= testutil.StdDev(src) {
		t.Fatalf("sharpen did not increase contrast: %v <= %v", testutil.StdDev(out.Data), testutil.StdDev(src))
	}
}

func TestWienerWithoutNoiseIsIdentity(t *testing.T) {
	for _, bt := range []int{ModeSharpen, ModeWiener, 2, 3} {
		r := newRig(t, 48, 40, 16, 5, overlap.WindowRaisedCosine)
		c := defaultConfig()
		c.Temporal = bt
		c.Sigma, c.Sigma2, c.Sigma3, c.Sigma4 = 0, 0, 0, 0

		frames := noisyFrames(48, 40, testutil.Gradient(200, 48, 40), 10, 3, plane.Gray8)
		e, err := New(r.bank, plane.Gray8, c)
		if err != nil {
			t.Fatal(err)
		}
		src := r.source(frames...)
		for n := range frames {
			out := r.filter(t, e, n, src, plane.Gray8)
			testutil.RequireSliceNearlyEqual(t, out.Data, frames[n].Data, 0)
		}
	}
}

func TestWienerDeterministic(t *testing.T) {
	r := newRig(t, 96, 64, 32, 10, overlap.WindowHanning)
	c := defaultConfig()
	c.Sharpen = 0.5
	c.Dehalo = 0.5
	c.Workers = 4

	frames := noisyFrames(96, 64, testutil.Gradient(255, 96, 64), 6, 1, plane.Gray8)
	e, err := New(r.bank, plane.Gray8, c)
	if err != nil {
		t.Fatal(err)
	}
	src := r.source(frames...)
	a := r.filter(t, e, 0, src, plane.Gray8)
	b := r.filter(t, e, 0, src, plane.Gray8)
	testutil.RequireSliceNearlyEqual(t, a.Data, b.Data, 0)
}

func TestWienerReducesNoise(t *testing.T) {
	r := newRig(t, 64, 64, 32, 10, overlap.WindowHanning)
	c := defaultConfig()
	c.Sigma, c.Sigma2, c.Sigma3, c.Sigma4 = 6, 6, 6, 6

	clean := testutil.Constant(128, 64, 64)
	frames := noisyFrames(64, 64, clean, 6, 1, plane.GrayS)
	e, err := New(r.bank, plane.Gray8, c)
	if err != nil {
		t.Fatal(err)
	}
	out := r.filter(t, e, 0, r.source(frames...), plane.GrayS)

	before, after := mse(frames[0].Data, clean), mse(out.Data, clean)
	if after >= before*0.5 {
		t.Fatalf("wiener error %v not well below input error %v", after, before)
	}
}

func TestWiener3DBeatsWiener2D(t *testing.T) {
	r := newRig(t, 64, 64, 16, 5, overlap.WindowHanning)
	clean := testutil.Gradient(200, 64, 64)
	frames := noisyFrames(64, 64, clean, 5, 5, plane.GrayS)

	errFor := func(bt int) float64 {
		c := defaultConfig()
		c.Temporal = bt
		c.Sigma, c.Sigma2, c.Sigma3, c.Sigma4 = 5, 5, 5, 5
		e, err := New(r.bank, plane.Gray8, c)
		if err != nil {
			t.Fatal(err)
		}
		defer e.Release()
		out := r.filter(t, e, 2, r.source(frames...), plane.GrayS)
		return mse(out.Data, clean)
	}

	if e3, e1 := errFor(5), errFor(1); e3 >= e1 {
		t.Fatalf("bt=5 error %v not below bt=1 error %v", e3, e1)
	}
}

func TestWiener3DHistoryBounded(t *testing.T) {
	r := newRig(t, 32, 32, 16, 4, overlap.WindowHanning)
	c := defaultConfig()
	c.Temporal = 3
	restarts := 0
	c.OnRestart = func() { restarts++ }

	frames := noisyFrames(32, 32, testutil.Constant(60, 32, 32), 3, 6, plane.Gray8)
	src := r.source(frames...)
	e, err := New(r.bank, plane.Gray8, c)
	if err != nil {
		t.Fatal(err)
	}

	for n := range frames {
		r.filter(t, e, n, src, plane.Gray8)
	}
	w := e.(*wiener3DEngine)
	if w.hist.Len() > 3 {
		t.Fatalf("history holds %d frames, want <= 3", w.hist.Len())
	}
	if got := int(src.calls.Load()); got != len(frames) {
		t.Fatalf("source called %d times for %d frames", got, len(frames))
	}

	r.filter(t, e, 0, src, plane.Gray8)
	if restarts != 1 {
		t.Fatalf("restarts = %d, want 1", restarts)
	}

	e.Release()
	if w.hist != nil {
		t.Fatal("Release kept history")
	}
}

func TestKalmanConstantPlaneConverges(t *testing.T) {
	r := newRig(t, 64, 64, 32, 10, overlap.WindowRectangular)
	c := defaultConfig()
	c.Temporal = ModeKalman

	clean := testutil.Constant(128, 64, 64)
	frames := noisyFrames(64, 64, clean, 2, 5, plane.GrayS)
	src := r.source(frames...)

	e, err := New(r.bank, plane.Gray8, c)
	if err != nil {
		t.Fatal(err)
	}

	var raw, filtered float64
	for n := range frames {
		s, err := e.Filter(context.Background(), n, src)
		if err != nil {
			t.Fatal(err)
		}
		if n != len(frames)-1 {
			continue
		}
		in, _ := r.fwd.Transform(context.Background(), frames[n])
		for b := range s.Blocks() {
			for k, v := range s.Block(b)[1:] {
				filtered += real(v)*real(v) + imag(v)*imag(v)
				u := in.Block(b)[k+1]
				raw += real(u)*real(u) + imag(u)*imag(u)
			}
			if dc := real(s.Block(b)[0]); math.Abs(dc-128*32*32) > 3*32*32 {
				t.Fatalf("block %d DC = %v drifted from %v", b, dc, 128*32*32)
			}
		}
	}

	if filtered >= raw*0.7 {
		t.Fatalf("non-DC energy %v not well below raw %v", filtered, raw)
	}
}

func TestKalmanCausality(t *testing.T) {
	r := newRig(t, 48, 48, 16, 5, overlap.WindowHanning)
	frames := noisyFrames(48, 48, testutil.Gradient(255, 48, 48), 4, 6, plane.Gray8)

	c := defaultConfig()
	c.Temporal = ModeKalman
	restarts := 0
	c.OnRestart = func() { restarts++ }

	sequential, err := New(r.bank, plane.Gray8, c)
	if err != nil {
		t.Fatal(err)
	}
	src := r.source(frames...)
	var want *plane.Plane
	for n := range 6 {
		out := r.filter(t, sequential, n, src, plane.Gray8)
		if n == 2 {
			want = out
		}
	}

	// Frame 2 requested alone, with no later frames ever fetched.
	direct, err := New(r.bank, plane.Gray8, c)
	if err != nil {
		t.Fatal(err)
	}
	limited := r.source(frames[:3]...)
	got := r.filter(t, direct, 2, limited, plane.Gray8)
	testutil.RequireSliceNearlyEqual(t, got.Data, want.Data, 0)

	// Rewinding replays from frame 0 and reproduces the same output.
	again := r.filter(t, sequential, 2, src, plane.Gray8)
	testutil.RequireSliceNearlyEqual(t, again.Data, want.Data, 0)
	if restarts != 1 {
		t.Fatalf("restarts = %d, want 1", restarts)
	}

	// Repeating the last frame is served from the cached output.
	before := src.calls.Load()
	r.filter(t, sequential, 2, src, plane.Gray8)
	if src.calls.Load() != before {
		t.Fatal("repeated request refetched source frames")
	}
}

func TestFrameRange(t *testing.T) {
	r := newRig(t, 32, 32, 16, 4, overlap.WindowHanning)
	for _, bt := range []int{-1, 0, 1, 3} {
		c := defaultConfig()
		c.Temporal = bt
		e, err := New(r.bank, plane.Gray8, c)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := e.Filter(context.Background(), 1, r.source(plane.New(32, 32, plane.Gray8))); !errors.Is(err, ErrFrameRange) {
			t.Fatalf("bt=%d err = %v, want ErrFrameRange", bt, err)
		}
	}
}

type failingSource struct{ frames int }

var errSourceFailed = errors.New("source failed")

func (f failingSource) Frames() int { return f.frames }

func (f failingSource) Spectra(context.Context, int) (*blockfft.Spectra, error) {
	return nil, errSourceFailed
}

func TestSourceErrorsPropagate(t *testing.T) {
	r := newRig(t, 32, 32, 16, 4, overlap.WindowHanning)
	for _, bt := range []int{-1, 0, 1, 3} {
		c := defaultConfig()
		c.Temporal = bt
		e, err := New(r.bank, plane.Gray8, c)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := e.Filter(context.Background(), 0, failingSource{frames: 2}); !errors.Is(err, errSourceFailed) {
			t.Fatalf("bt=%d err = %v, want errSourceFailed", bt, err)
		}
	}
}
