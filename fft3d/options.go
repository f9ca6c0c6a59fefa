package fft3d

import (
	"slices"

	"github.com/cwbudde/fft3dfilter/dsp/overlap"
)

// Option configures a Filter.
type Option func(*settings)

type settings struct {
	params  Params
	metrics *Metrics
}

func applyOptions(opts ...Option) settings {
	s := settings{params: DefaultParams()}
	for _, opt := range opts {
		if opt != nil {
			opt(&s)
		}
	}
	return s
}

// WithParams replaces the whole parameter set. Later options still apply.
func WithParams(p Params) Option {
	return func(s *settings) {
		s.params = p
		s.params.Planes = slices.Clone(p.Planes)
	}
}

// WithSigma sets the noise level of every frequency band.
func WithSigma(sigma float64) Option {
	return func(s *settings) {
		s.params.Sigma = sigma
		s.params.Sigma2 = sigma
		s.params.Sigma3 = sigma
		s.params.Sigma4 = sigma
	}
}

// WithBandSigmas sets the noise levels at 2/3, 1/3 and zero frequency.
func WithBandSigmas(sigma2, sigma3, sigma4 float64) Option {
	return func(s *settings) {
		s.params.Sigma2 = sigma2
		s.params.Sigma3 = sigma3
		s.params.Sigma4 = sigma4
	}
}

// WithBeta sets the noise margin.
func WithBeta(beta float64) Option {
	return func(s *settings) {
		s.params.Beta = beta
	}
}

// WithPlanes selects the planes to filter.
func WithPlanes(planes ...int) Option {
	return func(s *settings) {
		s.params.Planes = append([]int{}, planes...)
	}
}

// WithBlockSize sets the block size and resets the overlap to a third of it.
func WithBlockSize(bw, bh int) Option {
	return func(s *settings) {
		s.params.BW = bw
		s.params.BH = bh
		s.params.OW = bw / 3
		s.params.OH = bh / 3
	}
}

// WithOverlap sets the block overlap.
func WithOverlap(ow, oh int) Option {
	return func(s *settings) {
		s.params.OW = ow
		s.params.OH = oh
	}
}

// WithTemporal selects the temporal mode: -1 sharpen only, 0 kalman,
// 1 spatial wiener, 2..5 wiener over that many frames.
func WithTemporal(bt int) Option {
	return func(s *settings) {
		s.params.BT = bt
	}
}

// WithKalmanRatio sets the motion threshold of the kalman mode.
func WithKalmanRatio(ratio float64) Option {
	return func(s *settings) {
		s.params.KRatio = ratio
	}
}

// WithSharpen sets the sharpen strength and its low-frequency cutoff.
func WithSharpen(strength, cutoff float64) Option {
	return func(s *settings) {
		s.params.Sharpen = strength
		s.params.SCutoff = cutoff
	}
}

// WithSharpenShape sets the vertical ratio and the sharpen limits.
func WithSharpenShape(svr, smin, smax float64) Option {
	return func(s *settings) {
		s.params.SVR = svr
		s.params.SMin = smin
		s.params.SMax = smax
	}
}

// WithDegrid sets the grid artifact compensation strength.
func WithDegrid(degrid float64) Option {
	return func(s *settings) {
		s.params.Degrid = degrid
	}
}

// WithDehalo sets the halo removal strength, radius and threshold.
func WithDehalo(strength, hr, ht float64) Option {
	return func(s *settings) {
		s.params.Dehalo = strength
		s.params.HR = hr
		s.params.HT = ht
	}
}

// WithWindow selects the analysis and synthesis window.
func WithWindow(t overlap.WindowType) Option {
	return func(s *settings) {
		s.params.WinType = t
	}
}

// WithInterlaced filters the two fields of every plane separately.
func WithInterlaced(interlaced bool) Option {
	return func(s *settings) {
		s.params.Interlaced = interlaced
	}
}

// WithPattern measures the noise pattern at block (px, py) of frame pframe.
// A zero px and py selects the quietest block.
func WithPattern(pframe, px, py int, pcutoff, pfactor float64) Option {
	return func(s *settings) {
		s.params.PFrame = pframe
		s.params.PX = px
		s.params.PY = py
		s.params.PCutoff = pcutoff
		s.params.PFactor = pfactor
	}
}

// WithPreview turns pattern measurement into a report only mode.
func WithPreview(show bool) Option {
	return func(s *settings) {
		s.params.PShow = show
	}
}

// WithWorkers bounds the number of concurrent workers.
func WithWorkers(n int) Option {
	return func(s *settings) {
		if n > 0 {
			s.params.NCPU = n
		}
	}
}

// WithMetrics records filter activity on m.
func WithMetrics(m *Metrics) Option {
	return func(s *settings) {
		s.metrics = m
	}
}
