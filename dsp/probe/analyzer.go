package probe

import (
	"math"

	"github.com/cwbudde/algo-vecmath"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/cwbudde/fft3dfilter/dsp/blockfft"
	"github.com/cwbudde/fft3dfilter/dsp/overlap"
	"github.com/cwbudde/fft3dfilter/dsp/plane"
	"github.com/cwbudde/fft3dfilter/dsp/spectral"
)

// Analyzer estimates noise from block power spectra. The block mean is
// removed together with its window leakage, and coefficients are weighted
// by the high-pass 1-exp(-f²/(2·pcutoff²)) so that image content near DC
// does not count as noise.
type Analyzer struct {
	bank      *overlap.Bank
	mean      *spectral.Degridder
	pwin      []float64
	unitPower float64
}

// NewAnalyzer returns an analyzer for blocks of bank in the given format.
func NewAnalyzer(bank *overlap.Bank, format plane.Format, pcutoff float64) (*Analyzer, error) {
	ws, err := blockfft.WindowSpectrum(bank)
	if err != nil {
		return nil, err
	}

	g := bank.Grid()
	fx, fy := spectral.AxisFreq(g.BW), spectral.AxisFreq(g.BH)
	pwin := make([]float64, g.BlockLen())
	s2 := 2 * pcutoff * pcutoff
	for v := range g.BH {
		for u := range g.BW {
			f2 := (fx[u]*fx[u] + fy[v]*fy[v]) / 2
			w := 1.0
			if s2 > 0 {
				w = 1 - math.Exp(-f2/s2)
			}
			pwin[v*g.BW+u] = w
		}
	}

	unit := format.Unit()
	return &Analyzer{
		bank:      bank,
		mean:      spectral.NewDegridder(ws, 1),
		pwin:      pwin,
		unitPower: unit * unit * bank.AnalysisEnergy(),
	}, nil
}

// Weights returns the high-pass weights. The slice is shared.
func (a *Analyzer) Weights() []float64 { return a.pwin }

// PSD returns |c|² of every coefficient of block after removing the
// block mean. block is not modified.
func (a *Analyzer) PSD(block []complex128) []float64 {
	flat := append([]complex128(nil), block...)
	a.mean.Remove(flat)

	re := make([]float64, len(flat))
	im := make([]float64, len(flat))
	for k, c := range flat {
		re[k], im[k] = real(c), imag(c)
	}
	psd := make([]float64, len(flat))
	vecmath.Power(psd, re, im)
	return psd
}

// Magnitudes returns |c| of every coefficient of block.
func Magnitudes(block []complex128) []float64 {
	re := make([]float64, len(block))
	im := make([]float64, len(block))
	for k, c := range block {
		re[k], im[k] = real(c), imag(c)
	}
	mag := make([]float64, len(block))
	vecmath.Magnitude(mag, re, im)
	return mag
}

// NoisePower is the high-pass weighted mean of psd.
func (a *Analyzer) NoisePower(psd []float64) float64 {
	return stat.Mean(psd, a.pwin)
}

// Sigma converts a coefficient noise power into an 8-bit noise level.
func (a *Analyzer) Sigma(power float64) float64 {
	if a.unitPower == 0 || power <= 0 {
		return 0
	}
	return math.Sqrt(power / a.unitPower)
}

// QuietBlock returns the block whose weighted power is lowest.
func (a *Analyzer) QuietBlock(s *blockfft.Spectra) (bx, by int) {
	scores := make([]float64, s.Blocks())
	for b := range scores {
		scores[b] = floats.Dot(a.PSD(s.Block(b)), a.pwin)
	}
	i := floats.MinIdx(scores)
	return i % s.Grid.NX, i / s.Grid.NX
}

// Pattern turns the spectrum of a noise-only block into per-coefficient
// noise power: the measured power where the high-pass weight is large,
// blended toward the mean noise power near DC, scaled by pfactor.
func (a *Analyzer) Pattern(psd []float64, pfactor float64) []float64 {
	mean := a.NoisePower(psd)
	out := make([]float64, len(psd))
	for k, p := range psd {
		w := a.pwin[k]
		out[k] = pfactor * (w*p + (1-w)*mean)
	}
	return out
}
