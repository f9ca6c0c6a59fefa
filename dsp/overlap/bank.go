package overlap

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cwbudde/fft3dfilter/dsp/window"
)

// WindowType selects the analysis/synthesis taper pair.
type WindowType int

const (
	// WindowRectangular uses no taper; the divisor counts covering blocks.
	WindowRectangular WindowType = iota
	// WindowHanning uses a sine taper for both analysis and synthesis.
	WindowHanning
	// WindowRaisedCosine analyses with the square root of the sine taper
	// and synthesises with its 1.5 power.
	WindowRaisedCosine
	// WindowFlat analyses without a taper and synthesises with Hann.
	WindowFlat
)

var windowNames = [...]string{"rectangular", "hanning", "raised-cosine", "flat"}

func (t WindowType) String() string {
	if t.Valid() {
		return windowNames[t]
	}
	return "WindowType(" + strconv.Itoa(int(t)) + ")"
}

// Valid reports whether t is a known window type.
func (t WindowType) Valid() bool {
	return t >= WindowRectangular && t <= WindowFlat
}

// ParseWindowType accepts a window name or its numeric code.
func ParseWindowType(s string) (WindowType, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, n := range windowNames {
		if s == n {
			return WindowType(i), nil
		}
	}
	if n, err := strconv.Atoi(s); err == nil && WindowType(n).Valid() {
		return WindowType(n), nil
	}
	return 0, fmt.Errorf("%w: %q", ErrWindowType, s)
}

// Bank holds the 2D windows and the reconstruction divisor for one grid.
type Bank struct {
	grid *Grid
	kind WindowType

	ax, sx []float64 // horizontal tapers, length BW
	ay, sy []float64 // vertical tapers, length BH

	analysis  []float64
	synthesis []float64
	divX      []float64
	divY      []float64
	energy    float64
}

// NewBank builds the windows of type t for grid g.
func NewBank(g *Grid, t WindowType) (*Bank, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrWindowType, int(t))
	}

	b := &Bank{grid: g, kind: t}
	b.ax, b.sx = tapers(t, g.BW, g.OW)
	b.ay, b.sy = tapers(t, g.BH, g.OH)

	n := g.BlockLen()
	b.analysis = make([]float64, n)
	b.synthesis = make([]float64, n)
	for j := range g.BH {
		for i := range g.BW {
			k := j*g.BW + i
			b.analysis[k] = b.ay[j] * b.ax[i]
			b.synthesis[k] = b.sy[j] * b.sx[i]
			b.energy += b.analysis[k] * b.analysis[k]
		}
	}

	b.divX = divisor1D(g.Width, g.NX, g.StepX(), g.OW, b.ax, b.sx)
	b.divY = divisor1D(g.Height, g.NY, g.StepY(), g.OH, b.ay, b.sy)

	return b, nil
}

// tapers returns the 1D analysis and synthesis windows of length n whose
// first and last o samples are tapered.
func tapers(t WindowType, n, o int) (a, s []float64) {
	a = ones(n)
	s = ones(n)
	if o == 0 || t == WindowRectangular {
		return a, s
	}

	var aRise, aFall, sRise, sFall []float64
	switch t {
	case WindowHanning:
		aRise, aFall = window.Taper(window.TypeCosine, o)
		sRise, sFall = aRise, aFall
	case WindowRaisedCosine:
		aRise, aFall = window.Taper(window.TypeCosine, o, window.WithPower(0.5))
		sRise, sFall = window.Taper(window.TypeCosine, o, window.WithPower(1.5))
	case WindowFlat:
		sRise, sFall = window.Taper(window.TypeHann, o)
	}

	if aRise != nil {
		copy(a, aRise)
		copy(a[n-o:], aFall)
	}
	copy(s, sRise)
	copy(s[n-o:], sFall)

	return a, s
}

func ones(n int) []float64 {
	v := make([]float64, n)
	for i := range v {
		v[i] = 1
	}
	return v
}

func divisor1D(size, blocks, step, o int, a, s []float64) []float64 {
	d := make([]float64, size)
	for b := range blocks {
		origin := b*step - o
		for i := range a {
			x := origin + i
			if x >= 0 && x < size {
				d[x] += a[i] * s[i]
			}
		}
	}
	return d
}

// Grid returns the tiling the bank was built for.
func (b *Bank) Grid() *Grid { return b.grid }

// Type returns the window type.
func (b *Bank) Type() WindowType { return b.kind }

// Analysis returns the BW*BH analysis window in row-major order.
// The slice is shared and must not be modified.
func (b *Bank) Analysis() []float64 { return b.analysis }

// Synthesis returns the BW*BH synthesis window in row-major order.
// The slice is shared and must not be modified.
func (b *Bank) Synthesis() []float64 { return b.synthesis }

// AnalysisEnergy is the sum of squared analysis coefficients. White noise of
// variance v has expected coefficient power v*AnalysisEnergy.
func (b *Bank) AnalysisEnergy() float64 { return b.energy }

// Tapers returns the horizontal and vertical 1D windows.
func (b *Bank) Tapers() (ax, sx, ay, sy []float64) {
	return b.ax, b.sx, b.ay, b.sy
}

// DivisorX is the horizontal factor of the separable divisor.
func (b *Bank) DivisorX() []float64 { return b.divX }

// DivisorY is the vertical factor of the separable divisor.
func (b *Bank) DivisorY() []float64 { return b.divY }

// DivisorAt returns the normalisation divisor of plane sample (x, y).
func (b *Bank) DivisorAt(x, y int) float64 {
	return b.divX[x] * b.divY[y]
}

// Divisor returns the full width*height divisor plane.
func (b *Bank) Divisor() []float64 {
	d := make([]float64, b.grid.Width*b.grid.Height)
	for y, dy := range b.divY {
		row := d[y*b.grid.Width : (y+1)*b.grid.Width]
		for x, dx := range b.divX {
			row[x] = dx * dy
		}
	}
	return d
}
