package fft3d

import (
	"slices"

	"github.com/cwbudde/fft3dfilter/dsp/overlap"
	"github.com/cwbudde/fft3dfilter/dsp/plane"
	"github.com/cwbudde/fft3dfilter/dsp/spectral"
)

// Params is the complete filter configuration. Noise, sharpen and halo
// levels are on the 8-bit sample scale whatever the input format.
type Params struct {
	Sigma  float64 // noise level of the highest frequencies
	Sigma2 float64 // noise level at 2/3 of the frequency range
	Sigma3 float64 // noise level at 1/3 of the frequency range
	Sigma4 float64 // noise level at DC
	Beta   float64 // noise margin; gains never drop below (beta-1)/beta

	Planes []int // plane indices to process; nil means all

	BW, BH int // block size
	BT     int // -1 sharpen, 0 kalman, 1..5 wiener depth
	OW, OH int // overlap

	KRatio float64 // kalman motion threshold relative to sigma

	Sharpen float64
	SCutoff float64
	SVR     float64
	SMin    float64
	SMax    float64

	Degrid float64
	Dehalo float64
	HR     float64
	HT     float64

	WinType overlap.WindowType

	Interlaced bool

	PFrame  int
	PX, PY  int
	PShow   bool
	PCutoff float64
	PFactor float64

	NCPU int
}

// DefaultParams returns the documented defaults.
func DefaultParams() Params {
	return Params{
		Sigma:   2,
		Sigma2:  2,
		Sigma3:  2,
		Sigma4:  2,
		Beta:    1,
		BW:      32,
		BH:      32,
		BT:      3,
		OW:      32 / 3,
		OH:      32 / 3,
		KRatio:  2,
		SCutoff: 0.3,
		SVR:     1,
		SMin:    4,
		SMax:    20,
		Degrid:  1,
		HR:      2,
		HT:      50,
		WinType: overlap.WindowRectangular,
		PCutoff: 0.1,
		NCPU:    1,
	}
}

// Preview reports whether the filter only measures noise.
func (p Params) Preview() bool {
	return p.PShow && p.PFactor != 0
}

// Ordered reports whether the temporal mode needs frames in order.
func (p Params) Ordered() bool {
	return p.BT == spectral.ModeKalman || p.BT > spectral.ModeWiener
}

// Validate checks the parameters that do not depend on the clip.
func (p Params) Validate() error {
	if p.BT < spectral.ModeSharpen || p.BT > spectral.MaxTemporal {
		return configErr(ErrInvalidTemporalMode, "got %d", p.BT)
	}
	if p.BW <= 0 || p.BH <= 0 {
		return configErr(ErrBlockSize, "got %dx%d", p.BW, p.BH)
	}
	if p.OW < 0 || p.OH < 0 || 2*p.OW > p.BW || 2*p.OH > p.BH {
		return configErr(ErrOverlapTooLarge, "ow=%d oh=%d for %dx%d blocks", p.OW, p.OH, p.BW, p.BH)
	}
	if p.Beta < 1 {
		return configErr(ErrBetaTooSmall, "got %g", p.Beta)
	}
	if !p.WinType.Valid() {
		return configErr(ErrWindowType, "got %d", int(p.WinType))
	}
	if p.Planes != nil && len(p.Planes) == 0 {
		return configErr(ErrNoPlanes, "empty plane list")
	}
	return nil
}

// resolvePlanes validates the plane selection against the clip and returns
// the selected indices in ascending order.
func (p Params) resolvePlanes(infos []plane.Info) ([]int, error) {
	if len(infos) == 0 {
		return nil, configErr(ErrNoPlanes, "clip has no planes")
	}

	selected := p.Planes
	if selected == nil {
		selected = make([]int, len(infos))
		for i := range selected {
			selected[i] = i
		}
	}

	seen := make(map[int]bool, len(selected))
	for _, idx := range selected {
		if idx < 0 || idx >= len(infos) {
			return nil, configErr(ErrPlaneIndex, "plane %d of %d", idx, len(infos))
		}
		if seen[idx] {
			return nil, configErr(ErrDuplicatePlane, "plane %d", idx)
		}
		seen[idx] = true
	}

	for i, info := range infos {
		if err := info.Validate(); err != nil {
			return nil, configErr(ErrUnsupportedFormat, "plane %d: %v", i, err)
		}
	}

	out := slices.Clone(selected)
	slices.Sort(out)
	return out, nil
}

// spectralConfig maps the parameters onto an engine configuration.
func (p Params) spectralConfig() spectral.Config {
	return spectral.Config{
		Temporal: p.BT,
		Sigma:    p.Sigma,
		Sigma2:   p.Sigma2,
		Sigma3:   p.Sigma3,
		Sigma4:   p.Sigma4,
		Beta:     p.Beta,
		KRatio:   p.KRatio,
		Sharpen:  p.Sharpen,
		SCutoff:  p.SCutoff,
		SVR:      p.SVR,
		SMin:     p.SMin,
		SMax:     p.SMax,
		Degrid:   p.Degrid,
		Dehalo:   p.Dehalo,
		HR:       p.HR,
		HT:       p.HT,
		Workers:  max(p.NCPU, 1),
	}
}
