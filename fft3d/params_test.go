package fft3d

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cwbudde/fft3dfilter/dsp/overlap"
	"github.com/cwbudde/fft3dfilter/dsp/plane"
)

func TestDefaultParams(t *testing.T) {
	p := DefaultParams()

	assert.Equal(t, 2.0, p.Sigma)
	assert.Equal(t, 2.0, p.Sigma4)
	assert.Equal(t, 1.0, p.Beta)
	assert.Equal(t, 32, p.BW)
	assert.Equal(t, 3, p.BT)
	assert.Equal(t, 10, p.OW)
	assert.Equal(t, 10, p.OH)
	assert.Equal(t, overlap.WindowRectangular, p.WinType)
	assert.Equal(t, 1, p.NCPU)
	assert.Nil(t, p.Planes)
	assert.True(t, p.Ordered())
	assert.False(t, p.Preview())
	require.NoError(t, p.Validate())
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Params)
		want   error
	}{
		{"temporal above range", func(p *Params) { p.BT = 7 }, ErrInvalidTemporalMode},
		{"temporal below range", func(p *Params) { p.BT = -2 }, ErrInvalidTemporalMode},
		{"zero block", func(p *Params) { p.BW = 0 }, ErrBlockSize},
		{"overlap too large", func(p *Params) { p.OW = p.BW/2 + 1 }, ErrOverlapTooLarge},
		{"negative overlap", func(p *Params) { p.OH = -1 }, ErrOverlapTooLarge},
		{"beta below one", func(p *Params) { p.Beta = 0.5 }, ErrBetaTooSmall},
		{"window code", func(p *Params) { p.WinType = 9 }, ErrWindowType},
		{"empty plane list", func(p *Params) { p.Planes = []int{} }, ErrNoPlanes},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := DefaultParams()
			tt.mutate(&p)
			err := p.Validate()
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)

			var cfgErr *ConfigError
			require.True(t, errors.As(err, &cfgErr))
			assert.True(t, strings.HasPrefix(err.Error(), "FFT3DFilter: "), err.Error())
		})
	}
}

func TestValidateAcceptsHalfOverlap(t *testing.T) {
	p := DefaultParams()
	p.OW = p.BW / 2
	p.OH = 0
	require.NoError(t, p.Validate())
}

func TestResolvePlanes(t *testing.T) {
	infos := []plane.Info{
		{Width: 8, Height: 8, Format: plane.Gray8},
		{Width: 4, Height: 4, Format: plane.Gray8},
		{Width: 4, Height: 4, Format: plane.Gray8},
	}

	p := DefaultParams()
	got, err := p.resolvePlanes(infos)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2}, got)

	p.Planes = []int{2, 0}
	got, err = p.resolvePlanes(infos)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 2}, got)

	p.Planes = []int{3}
	_, err = p.resolvePlanes(infos)
	assert.ErrorIs(t, err, ErrPlaneIndex)

	p.Planes = []int{1, 1}
	_, err = p.resolvePlanes(infos)
	assert.ErrorIs(t, err, ErrDuplicatePlane)

	bad := []plane.Info{{Width: 8, Height: 8, Format: plane.Format{Type: plane.SampleInteger, Bits: 24}}}
	p.Planes = nil
	_, err = p.resolvePlanes(bad)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = p.resolvePlanes(nil)
	assert.ErrorIs(t, err, ErrNoPlanes)
}

func TestOptions(t *testing.T) {
	s := applyOptions(
		WithSigma(3),
		WithBandSigmas(2.5, 2, 1.5),
		WithBlockSize(48, 24),
		WithTemporal(1),
		WithWindow(overlap.WindowHanning),
		WithWorkers(0),
		nil,
	)

	want := DefaultParams()
	want.Sigma = 3
	want.Sigma2 = 2.5
	want.Sigma3 = 2
	want.Sigma4 = 1.5
	want.BW = 48
	want.BH = 24
	want.OW = 16
	want.OH = 8
	want.BT = 1
	want.WinType = overlap.WindowHanning

	if diff := cmp.Diff(want, s.params); diff != "" {
		t.Fatalf("params mismatch (-want +got):\n%s", diff)
	}
}

func TestOverlapAfterBlockSize(t *testing.T) {
	s := applyOptions(WithBlockSize(16, 16), WithOverlap(4, 2))
	assert.Equal(t, 4, s.params.OW)
	assert.Equal(t, 2, s.params.OH)

	s = applyOptions(WithOverlap(4, 2), WithBlockSize(16, 16))
	assert.Equal(t, 5, s.params.OW)
}

func TestWithParamsCopiesPlanes(t *testing.T) {
	p := DefaultParams()
	p.Planes = []int{0}
	s := applyOptions(WithParams(p))
	p.Planes[0] = 2
	assert.Equal(t, []int{0}, s.params.Planes)
}
