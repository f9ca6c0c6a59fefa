// Package window generates the one-dimensional tapers used on the edges of
// overlapping transform blocks.
package window

import "math"

// Type identifies a taper shape.
type Type int

const (
	TypeRectangular Type = iota
	TypeHann
	TypeCosine // half-period sine, the square root of Hann
)

// Sampling selects where coefficients are evaluated on the unit interval.
type Sampling int

const (
	// SamplingSymmetric places the first and last coefficient on the window edges.
	SamplingSymmetric Sampling = iota
	// SamplingMidpoint evaluates at (n+0.5)/N so no coefficient sits on an edge.
	SamplingMidpoint
)

// Option configures window generation.
type Option func(*config)

type config struct {
	sampling Sampling
	power    float64
}

// WithSampling selects the coefficient placement.
func WithSampling(s Sampling) Option {
	return func(c *config) {
		c.sampling = s
	}
}

// WithPower raises every coefficient to p. A value of 0.5 yields the
// square-root window used for split analysis/synthesis weighting.
func WithPower(p float64) Option {
	return func(c *config) {
		if p > 0 {
			c.power = p
		}
	}
}

// Generate returns window coefficients of the given length.
func Generate(t Type, length int, opts ...Option) []float64 {
	if length <= 0 {
		return nil
	}

	cfg := config{sampling: SamplingSymmetric, power: 1}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	out := make([]float64, length)
	for i := range out {
		v := eval(t, position(i, length, cfg.sampling))
		if cfg.power != 1 {
			v = math.Pow(math.Max(v, 0), cfg.power)
		}
		out[i] = v
	}
	return out
}

// Taper returns the rising and falling edges of an n-sample overlap. Both
// are halves of a midpoint-sampled window of length 2n, so for the Hann
// window rise[i] + fall[i] == 1 for every i.
func Taper(t Type, n int, opts ...Option) (rise, fall []float64) {
	if n <= 0 {
		return nil, nil
	}

	full := Generate(t, 2*n, append([]Option{WithSampling(SamplingMidpoint)}, opts...)...)

	return full[:n], full[n:]
}

// CoherentGain returns the mean coefficient.
func CoherentGain(coeffs []float64) (float64, error) {
	if len(coeffs) == 0 {
		return 0, errEmptyCoeffs
	}
	sum := 0.0
	for _, c := range coeffs {
		sum += c
	}
	return sum / float64(len(coeffs)), nil
}

// EquivalentNoiseBandwidth returns the ENBW in bins for a window.
func EquivalentNoiseBandwidth(coeffs []float64) (float64, error) {
	if len(coeffs) == 0 {
		return 0, errEmptyCoeffs
	}

	sum := 0.0
	sumSquares := 0.0

	for _, c := range coeffs {
		sum += c
		sumSquares += c * c
	}

	if sum == 0 {
		return 0, errZeroCoherentGain
	}

	return float64(len(coeffs)) * sumSquares / (sum * sum), nil
}

func eval(t Type, x float64) float64 {
	x = math.Min(math.Max(x, 0), 1)

	switch t {
	case TypeHann:
		return 0.5 - 0.5*math.Cos(2*math.Pi*x)
	case TypeCosine:
		return math.Sin(math.Pi * x)
	default:
		return 1
	}
}

func position(n, size int, sampling Sampling) float64 {
	if sampling == SamplingMidpoint {
		return (float64(n) + 0.5) / float64(size)
	}
	if size <= 1 {
		return 0.5
	}
	return float64(n) / float64(size-1)
}
