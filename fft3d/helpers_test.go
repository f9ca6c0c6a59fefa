package fft3d

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cwbudde/fft3dfilter/dsp/plane"
	"github.com/cwbudde/fft3dfilter/internal/testutil"
)

// noisyClip returns a static scene of constant planes plus independent
// noise per frame, and the clean planes.
func noisyClip(t *testing.T, frames, w, h int, sigma float64, levels ...float64) (*MemoryClip, []*plane.Plane) {
	t.Helper()

	clean := make([]*plane.Plane, len(levels))
	for i, v := range levels {
		p, err := plane.FromSlice(w, h, plane.Gray8, testutil.Constant(v, w, h))
		require.NoError(t, err)
		clean[i] = p
	}

	out := make([]*plane.Frame, frames)
	for n := range out {
		fr := &plane.Frame{Planes: make([]*plane.Plane, len(levels))}
		for i, c := range clean {
			data := testutil.Round(testutil.Noisy(c.Data, int64(100*n+i), sigma, 255))
			p, err := plane.FromSlice(w, h, plane.Gray8, data)
			require.NoError(t, err)
			fr.Planes[i] = p
		}
		out[n] = fr
	}

	clip, err := NewMemoryClip(out)
	require.NoError(t, err)
	return clip, clean
}

func mse(a, b []float64) float64 {
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum / float64(len(a))
}

func processAll(t *testing.T, f *Filter) []*plane.Frame {
	t.Helper()

	out := make([]*plane.Frame, f.Frames())
	err := f.ProcessClip(context.Background(), func(n int, fr *plane.Frame) error {
		out[n] = fr
		return nil
	})
	require.NoError(t, err)
	return out
}

// shapeClip returns a frame with a different size at index bad.
type shapeClip struct {
	*MemoryClip
	bad   int
	other *plane.Frame
}

func (c *shapeClip) Frame(ctx context.Context, n int) (*plane.Frame, error) {
	if n == c.bad {
		return c.other, nil
	}
	return c.MemoryClip.Frame(ctx, n)
}
