// Package generic registers the portable spectral kernels.
package generic

import (
	"github.com/cwbudde/fft3dfilter/internal/arch/registry"
	"github.com/cwbudde/fft3dfilter/internal/cpu"
)

// psdFloor keeps the gain formulas finite on zero coefficients.
const psdFloor = 1e-15

func init() {
	registry.Global.Register(registry.OpEntry{
		Name:      "generic" + variant,
		SIMDLevel: cpu.SIMDNone,
		Priority:  0,
		Wiener:    Wiener,
		Sharpen:   Sharpen,
		Dehalo:    Dehalo,
		Kalman:    Kalman,
	})
}

// Wiener implements registry.WienerFn.
func Wiener(data []complex128, noise []float64, floor float64) {
	noise = noise[:len(data)]
	for k, c := range data {
		re, im := real(c), imag(c)
		psd := re*re + im*im + psdFloor
		g := max((psd-noise[k])/psd, floor)
		data[k] = complex(re*g, im*g)
	}
}

// Sharpen implements registry.SharpenFn.
func Sharpen(data []complex128, weight []float64, smin, smax float64) {
	weight = weight[:len(data)]
	for k, c := range data {
		re, im := real(c), imag(c)
		psd := re*re + im*im + psdFloor
		g := 1 + weight[k]*Sqrt(psd*smax/((psd+smin)*(psd+smax)))
		data[k] = complex(re*g, im*g)
	}
}

// Dehalo implements registry.DehaloFn.
func Dehalo(data []complex128, weight []float64, ht float64) {
	weight = weight[:len(data)]
	for k, c := range data {
		re, im := real(c), imag(c)
		psd := re*re + im*im + psdFloor
		g := (psd + ht) / ((psd + ht) + weight[k]*psd)
		data[k] = complex(re*g, im*g)
	}
}

// Kalman implements registry.KalmanFn.
func Kalman(cur []complex128, st registry.KalmanState, noise []float64, ratio2, floor float64) {
	n := len(cur)
	last, covar, process, noise := st.Last[:n], st.Covar[:n], st.Process[:n], noise[:n]

	for k, c := range cur {
		nk := noise[k]
		dre := real(c) - real(last[k])
		dim := imag(c) - imag(last[k])
		motion := ratio2 * nk

		if dre*dre > motion || dim*dim > motion {
			covar[k] = complex(nk, nk)
			process[k] = complex(nk, nk)
			last[k] = c
			continue
		}

		lre, pre, qre := kalmanStep(real(c), real(last[k]), real(covar[k]), real(process[k]), nk, floor)
		lim, pim, qim := kalmanStep(imag(c), imag(last[k]), imag(covar[k]), imag(process[k]), nk, floor)

		last[k] = complex(lre, lim)
		covar[k] = complex(pre, pim)
		process[k] = complex(qre, qim)
		cur[k] = last[k]
	}
}

func kalmanStep(cur, last, p, q, noise, floor float64) (estimate, covar, process float64) {
	sum := p + q
	gain := floor
	if d := sum + noise; d > 0 {
		gain = max(sum/d, floor)
	}
	return gain*cur + (1-gain)*last, (1 - gain) * sum, gain * gain * noise
}
