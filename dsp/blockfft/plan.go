package blockfft

import (
	"errors"
	"fmt"

	algofft "github.com/MeKo-Christian/algo-fft"
	"gonum.org/v1/gonum/dsp/fourier"
)

var (
	// ErrGeometry reports a plane or spectrum that does not match the grid.
	ErrGeometry = errors.New("blockfft: geometry does not match grid")
	// ErrPlan reports a transform plan that could not be created.
	ErrPlan = errors.New("blockfft: cannot create FFT plan")
)

// fft1 is a fixed-length complex transform. Inverse is normalised so that
// Inverse(Forward(x)) == x.
type fft1 interface {
	Len() int
	Forward(dst, src []complex128) error
	Inverse(dst, src []complex128) error
}

// Backend names the FFT implementation used for length n.
func Backend(n int) string {
	if isPowerOf2(n) {
		return "algo-fft"
	}
	return "gonum"
}

func newFFT1(n int) (fft1, error) {
	if n <= 0 {
		return nil, fmt.Errorf("%w: length %d", ErrPlan, n)
	}
	if isPowerOf2(n) {
		return newAlgoPlan(n)
	}
	return newGonumPlan(n), nil
}

func isPowerOf2(n int) bool {
	return n > 0 && n&(n-1) == 0
}

type algoPlan struct {
	plan  *algofft.Plan[complex128]
	n     int
	scale float64
}

func newAlgoPlan(n int) (*algoPlan, error) {
	plan, err := algofft.NewPlan64(n)
	if err != nil {
		return nil, fmt.Errorf("%w: length %d: %w", ErrPlan, n, err)
	}

	p := &algoPlan{plan: plan, n: n, scale: 1}

	// Measure the round-trip gain once so Inverse is normalised whatever
	// convention the plan uses.
	probe := make([]complex128, n)
	probe[0] = 1
	if err := plan.Forward(probe, probe); err != nil {
		return nil, fmt.Errorf("%w: length %d: %w", ErrPlan, n, err)
	}
	if err := plan.Inverse(probe, probe); err != nil {
		return nil, fmt.Errorf("%w: length %d: %w", ErrPlan, n, err)
	}
	if g := real(probe[0]); g != 0 && g != 1 {
		p.scale = 1 / g
	}

	return p, nil
}

func (p *algoPlan) Len() int { return p.n }

func (p *algoPlan) Forward(dst, src []complex128) error {
	return p.plan.Forward(dst, src)
}

func (p *algoPlan) Inverse(dst, src []complex128) error {
	if err := p.plan.Inverse(dst, src); err != nil {
		return err
	}
	if p.scale != 1 {
		scaleComplex(dst, p.scale)
	}
	return nil
}

type gonumPlan struct {
	fft     *fourier.CmplxFFT
	scratch []complex128
	scale   float64
}

func newGonumPlan(n int) *gonumPlan {
	return &gonumPlan{
		fft:     fourier.NewCmplxFFT(n),
		scratch: make([]complex128, n),
		scale:   1 / float64(n),
	}
}

func (p *gonumPlan) Len() int { return len(p.scratch) }

func (p *gonumPlan) Forward(dst, src []complex128) error {
	copy(p.scratch, src)
	p.fft.Coefficients(dst, p.scratch)
	return nil
}

func (p *gonumPlan) Inverse(dst, src []complex128) error {
	copy(p.scratch, src)
	p.fft.Sequence(dst, p.scratch)
	scaleComplex(dst, p.scale)
	return nil
}

func scaleComplex(v []complex128, s float64) {
	for i, c := range v {
		v[i] = complex(real(c)*s, imag(c)*s)
	}
}
