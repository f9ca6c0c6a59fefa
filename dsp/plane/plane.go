package plane

import "fmt"

// Info is the geometry and format of a plane without its samples.
type Info struct {
	Width  int
	Height int
	Format Format
}

// Validate checks dimensions and format.
func (i Info) Validate() error {
	if i.Width <= 0 || i.Height <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrDimensions, i.Width, i.Height)
	}
	return i.Format.Validate()
}

// Plane is a row-major raster of samples.
type Plane struct {
	Width  int
	Height int
	Format Format
	Data   []float64
}

// New returns a zero-filled plane.
func New(width, height int, format Format) *Plane {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	return &Plane{
		Width:  width,
		Height: height,
		Format: format,
		Data:   make([]float64, width*height),
	}
}

// FromSlice wraps data without copying.
func FromSlice(width, height int, format Format, data []float64) (*Plane, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrDimensions, width, height)
	}
	if len(data) != width*height {
		return nil, fmt.Errorf("%w: %d != %d", ErrDataLength, len(data), width*height)
	}
	return &Plane{Width: width, Height: height, Format: format, Data: data}, nil
}

// Info returns the plane geometry.
func (p *Plane) Info() Info {
	return Info{Width: p.Width, Height: p.Height, Format: p.Format}
}

// Row returns the samples of row y.
func (p *Plane) Row(y int) []float64 {
	return p.Data[y*p.Width : (y+1)*p.Width]
}

// At returns the sample at (x, y).
func (p *Plane) At(x, y int) float64 {
	return p.Data[y*p.Width+x]
}

// Set stores v at (x, y).
func (p *Plane) Set(x, y int, v float64) {
	p.Data[y*p.Width+x] = v
}

// Clone returns a deep copy.
func (p *Plane) Clone() *Plane {
	c := &Plane{Width: p.Width, Height: p.Height, Format: p.Format, Data: make([]float64, len(p.Data))}
	copy(c.Data, p.Data)
	return c
}

// Field extracts every second row starting at parity (0 top, 1 bottom).
func (p *Plane) Field(parity int) *Plane {
	parity &= 1
	rows := (p.Height - parity + 1) / 2
	f := New(p.Width, rows, p.Format)
	for y := range rows {
		copy(f.Row(y), p.Row(2*y+parity))
	}
	return f
}

// Weave interleaves a top and bottom field into one plane.
func Weave(top, bottom *Plane) (*Plane, error) {
	if top.Width != bottom.Width || top.Format != bottom.Format ||
		top.Height < bottom.Height || top.Height > bottom.Height+1 {
		return nil, ErrFieldMismatch
	}
	p := New(top.Width, top.Height+bottom.Height, top.Format)
	for y := range top.Height {
		copy(p.Row(2*y), top.Row(y))
	}
	for y := range bottom.Height {
		copy(p.Row(2*y+1), bottom.Row(y))
	}
	return p, nil
}

// Frame is the ordered set of planes making up one picture.
type Frame struct {
	Planes []*Plane
}

// Clone deep-copies every plane.
func (f *Frame) Clone() *Frame {
	c := &Frame{Planes: make([]*Plane, len(f.Planes))}
	for i, p := range f.Planes {
		if p != nil {
			c.Planes[i] = p.Clone()
		}
	}
	return c
}
