package overlap

import (
	"errors"
	"fmt"
)

var (
	// ErrBlockSize reports a non-positive block dimension.
	ErrBlockSize = errors.New("overlap: block size must be > 0")
	// ErrOverlapTooLarge reports an overlap exceeding half the block size.
	ErrOverlapTooLarge = errors.New("overlap: overlap must not exceed half the block size")
	// ErrPlaneSize reports a non-positive plane dimension.
	ErrPlaneSize = errors.New("overlap: plane size must be > 0")
	// ErrWindowType reports an unknown window shape.
	ErrWindowType = errors.New("overlap: unknown window type")
)

// Grid is the block tiling of one plane geometry. It is immutable once built.
type Grid struct {
	Width, Height int // plane size
	BW, BH        int // block size
	OW, OH        int // overlap
	NX, NY        int // blocks per row and column

	srcX []int
	srcY []int
}

// NewGrid computes the tiling for a width x height plane.
func NewGrid(width, height, bw, bh, ow, oh int) (*Grid, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrPlaneSize, width, height)
	}
	if bw <= 0 || bh <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrBlockSize, bw, bh)
	}
	if ow < 0 || oh < 0 || 2*ow > bw || 2*oh > bh {
		return nil, fmt.Errorf("%w: ow=%d oh=%d for %dx%d blocks", ErrOverlapTooLarge, ow, oh, bw, bh)
	}

	g := &Grid{
		Width: width, Height: height,
		BW: bw, BH: bh,
		OW: ow, OH: oh,
	}
	g.NX = blockCount(width, bw, ow)
	g.NY = blockCount(height, bh, oh)
	g.srcX = mirrorTable(width, ow, (g.NX-1)*g.StepX()+bw)
	g.srcY = mirrorTable(height, oh, (g.NY-1)*g.StepY()+bh)

	return g, nil
}

// blockCount is the smallest count whose span covers [-o, size+o).
func blockCount(size, block, o int) int {
	step := block - o
	need := size + 2*o - block
	if need <= 0 {
		return 1
	}
	return 1 + (need+step-1)/step
}

// mirrorTable maps extended coordinates u (plane coordinate u-o) to an
// in-plane coordinate by reflection about the edge samples.
func mirrorTable(size, o, span int) []int {
	t := make([]int, span)
	for u := range t {
		t[u] = reflect(u-o, size)
	}
	return t
}

func reflect(x, size int) int {
	if size == 1 {
		return 0
	}
	period := 2 * (size - 1)
	x %= period
	if x < 0 {
		x += period
	}
	if x >= size {
		x = period - x
	}
	return x
}

// StepX is the horizontal distance between block origins.
func (g *Grid) StepX() int { return g.BW - g.OW }

// StepY is the vertical distance between block origins.
func (g *Grid) StepY() int { return g.BH - g.OH }

// Blocks is the total number of blocks.
func (g *Grid) Blocks() int { return g.NX * g.NY }

// BlockLen is the number of samples in one block.
func (g *Grid) BlockLen() int { return g.BW * g.BH }

// Origin returns the plane coordinate of the top-left sample of block (bx, by).
// It may be negative.
func (g *Grid) Origin(bx, by int) (x, y int) {
	return bx*g.StepX() - g.OW, by*g.StepY() - g.OH
}

// SourceX maps column i of block bx to the plane column it reads from.
func (g *Grid) SourceX(bx, i int) int { return g.srcX[bx*g.StepX()+i] }

// SourceY maps row j of block by to the plane row it reads from.
func (g *Grid) SourceY(by, j int) int { return g.srcY[by*g.StepY()+j] }

// ClipX returns the block-local range [i0, i1) of columns of block bx that
// lie inside the plane, and the plane column of i0.
func (g *Grid) ClipX(bx int) (i0, i1, x0 int) {
	ox, _ := g.Origin(bx, 0)
	return clip(ox, g.BW, g.Width)
}

// ClipY is ClipX for rows.
func (g *Grid) ClipY(by int) (j0, j1, y0 int) {
	_, oy := g.Origin(0, by)
	return clip(oy, g.BH, g.Height)
}

func clip(origin, block, size int) (lo, hi, start int) {
	lo = max(0, -origin)
	hi = min(block, size-origin)
	return lo, hi, origin + lo
}

// SameGeometry reports whether two grids tile identically.
func (g *Grid) SameGeometry(o *Grid) bool {
	return o != nil && g.Width == o.Width && g.Height == o.Height &&
		g.BW == o.BW && g.BH == o.BH && g.OW == o.OW && g.OH == o.OH
}
