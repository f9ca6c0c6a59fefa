// Package vector registers spectral kernels that evaluate the power spectrum
// and apply gains through the algo-vecmath block routines, which dispatch to
// SSE2, AVX2 or NEON code.
package vector

import (
	"sync"

	"github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/fft3dfilter/internal/arch/generic"
	"github.com/cwbudde/fft3dfilter/internal/arch/registry"
	"github.com/cwbudde/fft3dfilter/internal/cpu"
)

const psdFloor = 1e-15

func init() {
	for _, e := range []struct {
		name  string
		level cpu.SIMDLevel
	}{
		{"vecmath-sse2", cpu.SIMDSSE2},
		{"vecmath-neon", cpu.SIMDNEON},
	} {
		registry.Global.Register(registry.OpEntry{
			Name:      e.name,
			SIMDLevel: e.level,
			Priority:  10,
			Wiener:    Wiener,
			Sharpen:   Sharpen,
			Dehalo:    Dehalo,
			Kalman:    generic.Kalman,
		})
	}
}

// scratch holds the split real/imaginary view of one block.
type scratch struct {
	re, im, psd, gain []float64
}

var scratchPool = sync.Pool{New: func() any { return new(scratch) }}

func getScratch(n int) *scratch {
	s := scratchPool.Get().(*scratch)
	if cap(s.re) < n {
		s.re = make([]float64, n)
		s.im = make([]float64, n)
		s.psd = make([]float64, n)
		s.gain = make([]float64, n)
	}
	s.re, s.im, s.psd, s.gain = s.re[:n], s.im[:n], s.psd[:n], s.gain[:n]
	return s
}

// split loads data into s and returns the floored power spectrum.
func (s *scratch) split(data []complex128) []float64 {
	for k, c := range data {
		s.re[k] = real(c)
		s.im[k] = imag(c)
	}
	vecmath.Power(s.psd, s.re, s.im)
	for k := range s.psd {
		s.psd[k] += psdFloor
	}
	return s.psd
}

// apply scales data by s.gain.
func (s *scratch) apply(data []complex128) {
	vecmath.MulBlockInPlace(s.re, s.gain)
	vecmath.MulBlockInPlace(s.im, s.gain)
	for k := range data {
		data[k] = complex(s.re[k], s.im[k])
	}
	scratchPool.Put(s)
}

// Wiener implements registry.WienerFn.
func Wiener(data []complex128, noise []float64, floor float64) {
	s := getScratch(len(data))
	psd := s.split(data)
	noise = noise[:len(data)]
	for k, p := range psd {
		s.gain[k] = max((p-noise[k])/p, floor)
	}
	s.apply(data)
}

// Sharpen implements registry.SharpenFn.
func Sharpen(data []complex128, weight []float64, smin, smax float64) {
	s := getScratch(len(data))
	psd := s.split(data)
	weight = weight[:len(data)]
	for k, p := range psd {
		s.gain[k] = 1 + weight[k]*generic.Sqrt(p*smax/((p+smin)*(p+smax)))
	}
	s.apply(data)
}

// Dehalo implements registry.DehaloFn.
func Dehalo(data []complex128, weight []float64, ht float64) {
	s := getScratch(len(data))
	psd := s.split(data)
	weight = weight[:len(data)]
	for k, p := range psd {
		s.gain[k] = (p + ht) / ((p + ht) + weight[k]*p)
	}
	s.apply(data)
}
