package spectral

import "math"

// AxisFreq returns |f| for each bin of an n-point DFT, normalised so the
// Nyquist bin is 1.
func AxisFreq(n int) []float64 {
	f := make([]float64, n)
	half := float64(n) / 2
	for u := range f {
		f[u] = float64(min(u, n-u)) / half
	}
	return f
}

// bandSigma interpolates the per-band noise levels over normalised
// frequency f in [0, 1]: sigma4 at DC, sigma3 at 1/3, sigma2 at 2/3 and
// sigma at 1.
func bandSigma(c Config, f float64) float64 {
	switch {
	case f <= 1.0/3.0:
		return lerp(c.Sigma4, c.Sigma3, 3*f)
	case f <= 2.0/3.0:
		return lerp(c.Sigma3, c.Sigma2, 3*f-1)
	default:
		return lerp(c.Sigma2, c.Sigma, min(3*f-2, 1))
	}
}

func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// noiseFloor returns the normalised noise power of each coefficient.
// scale converts an 8-bit level into coefficient power.
func noiseFloor(c Config, bw, bh int, scale func(float64) float64) []float64 {
	out := make([]float64, bw*bh)
	if c.Sigma2 == c.Sigma && c.Sigma3 == c.Sigma && c.Sigma4 == c.Sigma {
		n := scale(c.Sigma)
		for k := range out {
			out[k] = n
		}
		return out
	}

	fx, fy := AxisFreq(bw), AxisFreq(bh)
	for v := range bh {
		for u := range bw {
			f := math.Sqrt((fx[u]*fx[u] + fy[v]*fy[v]) / 2)
			out[v*bw+u] = scale(bandSigma(c, f))
		}
	}
	return out
}

// sharpenWeights is sharpen*(1-exp(-d²/(2·scutoff²))) with d² = fx² + (svr·fy)².
func sharpenWeights(c Config, bw, bh int) []float64 {
	fx, fy := AxisFreq(bw), AxisFreq(bh)
	out := make([]float64, bw*bh)
	s2 := 2 * c.SCutoff * c.SCutoff
	for v := range bh {
		for u := range bw {
			d2 := fx[u]*fx[u] + c.SVR*c.SVR*fy[v]*fy[v]
			w := 1.0
			if s2 > 0 {
				w = 1 - math.Exp(-d2/s2)
			}
			out[v*bw+u] = c.Sharpen * w
		}
	}
	return out
}

// dehaloWeights is a band-pass ring exp(-0.7·d²·hr²) - exp(-d²·hr²),
// normalised to a peak of 1 and scaled by dehalo.
func dehaloWeights(c Config, bw, bh int) []float64 {
	fx, fy := AxisFreq(bw), AxisFreq(bh)
	out := make([]float64, bw*bh)
	hr2 := c.HR * c.HR
	peak := 0.0
	for v := range bh {
		for u := range bw {
			d2 := fx[u]*fx[u] + fy[v]*fy[v]
			w := math.Exp(-0.7*d2*hr2) - math.Exp(-d2*hr2)
			out[v*bw+u] = w
			peak = max(peak, w)
		}
	}
	if peak > 0 {
		for k := range out {
			out[k] *= c.Dehalo / peak
		}
	}
	return out
}
