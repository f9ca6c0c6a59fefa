package fft3d

import (
	"context"
	"errors"
	"fmt"

	"github.com/cwbudde/fft3dfilter/dsp/plane"
)

// ErrClipShape reports frames that disagree with the clip's plane layout.
var ErrClipShape = errors.New("clip frames differ in plane layout")

// Clip is a random access sequence of planar frames with a constant
// layout. Frame must be safe for concurrent use and must not return frames
// the caller is expected to modify.
type Clip interface {
	Frames() int
	Planes() []plane.Info
	Frame(ctx context.Context, n int) (*plane.Frame, error)
}

// MemoryClip serves frames held in memory.
type MemoryClip struct {
	frames []*plane.Frame
	infos  []plane.Info
}

// NewMemoryClip wraps frames, which must all share one plane layout.
func NewMemoryClip(frames []*plane.Frame) (*MemoryClip, error) {
	if len(frames) == 0 {
		return nil, ErrNoFrames
	}

	infos := planeInfos(frames[0])
	for n, f := range frames[1:] {
		if !sameLayout(infos, f) {
			return nil, fmt.Errorf("%w: frame %d", ErrClipShape, n+1)
		}
	}

	return &MemoryClip{frames: frames, infos: infos}, nil
}

// Frames returns the clip length.
func (c *MemoryClip) Frames() int { return len(c.frames) }

// Planes returns the plane layout.
func (c *MemoryClip) Planes() []plane.Info { return append([]plane.Info(nil), c.infos...) }

// Frame returns frame n.
func (c *MemoryClip) Frame(ctx context.Context, n int) (*plane.Frame, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if n < 0 || n >= len(c.frames) {
		return nil, fmt.Errorf("%w: %d of %d", ErrFrameRange, n, len(c.frames))
	}
	return c.frames[n], nil
}

func planeInfos(f *plane.Frame) []plane.Info {
	infos := make([]plane.Info, len(f.Planes))
	for i, p := range f.Planes {
		infos[i] = p.Info()
	}
	return infos
}

func sameLayout(infos []plane.Info, f *plane.Frame) bool {
	if f == nil || len(f.Planes) != len(infos) {
		return false
	}
	for i, p := range f.Planes {
		if p == nil || p.Info() != infos[i] {
			return false
		}
	}
	return true
}
