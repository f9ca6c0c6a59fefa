package blockfft

import "github.com/cwbudde/fft3dfilter/dsp/overlap"

// Spectra holds one BW*BH coefficient slab per block, blocks in raster order.
type Spectra struct {
	Grid *overlap.Grid
	Data []complex128
}

// NewSpectra allocates zeroed spectra for g.
func NewSpectra(g *overlap.Grid) *Spectra {
	return &Spectra{Grid: g, Data: make([]complex128, g.Blocks()*g.BlockLen())}
}

// Blocks returns the number of block slabs.
func (s *Spectra) Blocks() int { return s.Grid.Blocks() }

// Block returns the coefficients of block i.
func (s *Spectra) Block(i int) []complex128 {
	n := s.Grid.BlockLen()
	return s.Data[i*n : (i+1)*n]
}

// Clone deep-copies the coefficients. The grid is shared.
func (s *Spectra) Clone() *Spectra {
	c := &Spectra{Grid: s.Grid, Data: make([]complex128, len(s.Data))}
	copy(c.Data, s.Data)
	return c
}

// CopyFrom overwrites s with the coefficients of o.
func (s *Spectra) CopyFrom(o *Spectra) {
	copy(s.Data, o.Data)
}
