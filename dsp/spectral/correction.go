package spectral

import "github.com/cwbudde/fft3dfilter/internal/arch/registry"

// Correction is a post-filter step applied to one block spectrum in place.
type Correction interface {
	Name() string
	Apply(block []complex128)
}

// Chain applies corrections in order.
type Chain []Correction

// Apply runs every correction on block.
func (c Chain) Apply(block []complex128) {
	for _, step := range c {
		step.Apply(block)
	}
}

// Names lists the corrections in order.
func (c Chain) Names() []string {
	names := make([]string, len(c))
	for i, step := range c {
		names[i] = step.Name()
	}
	return names
}

// Sharpener boosts mid-level coefficients above the sharpen cutoff.
type Sharpener struct {
	weight     []float64
	smin, smax float64
	kernel     registry.SharpenFn
}

func (s *Sharpener) Name() string { return "sharpen" }

func (s *Sharpener) Apply(block []complex128) {
	s.kernel(block, s.weight, s.smin, s.smax)
}

// Dehaloer attenuates the ring of frequencies that carries edge halos.
type Dehaloer struct {
	weight []float64
	ht     float64
	kernel registry.DehaloFn
}

func (d *Dehaloer) Name() string { return "dehalo" }

func (d *Dehaloer) Apply(block []complex128) {
	d.kernel(block, d.weight, d.ht)
}

// Degridder removes the part of a block that is the spectrum of the window
// itself scaled by the block's mean, so the noise gain does not darken or
// brighten block interiors relative to their overlaps.
type Degridder struct {
	grid     []complex128
	inv0     float64
	strength float64
}

// NewDegridder returns nil when strength is 0 or the window has no DC.
func NewDegridder(windowSpectrum []complex128, strength float64) *Degridder {
	if strength == 0 || len(windowSpectrum) == 0 || real(windowSpectrum[0]) == 0 {
		return nil
	}
	return &Degridder{
		grid:     windowSpectrum,
		inv0:     1 / real(windowSpectrum[0]),
		strength: strength,
	}
}

// Fraction is the amount of window spectrum contained in block.
func (d *Degridder) Fraction(block []complex128) float64 {
	if d == nil {
		return 0
	}
	return d.strength * real(block[0]) * d.inv0
}

// Remove subtracts the window spectrum and returns the fraction removed.
func (d *Degridder) Remove(block []complex128) float64 {
	f := d.Fraction(block)
	if f != 0 {
		d.add(block, -f)
	}
	return f
}

// Restore adds back a fraction returned by Remove.
func (d *Degridder) Restore(block []complex128, fraction float64) {
	if d != nil && fraction != 0 {
		d.add(block, fraction)
	}
}

func (d *Degridder) add(block []complex128, f float64) {
	for k, g := range d.grid {
		block[k] += complex(f*real(g), f*imag(g))
	}
}
