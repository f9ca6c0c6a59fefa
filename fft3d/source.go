package fft3d

import (
	"context"
	"fmt"

	"github.com/cwbudde/fft3dfilter/dsp/blockfft"
	"github.com/cwbudde/fft3dfilter/dsp/plane"
)

// planeSource adapts one plane (or field) of a clip to spectral.Source.
type planeSource struct {
	clip   Clip
	index  int
	parity int // -1 for progressive
	info   plane.Info
	fwd    *blockfft.Forward
}

func (s *planeSource) Frames() int { return s.clip.Frames() }

func (s *planeSource) Plane(ctx context.Context, n int) (*plane.Plane, error) {
	fr, err := s.clip.Frame(ctx, n)
	if err != nil {
		return nil, err
	}
	if s.index >= len(fr.Planes) || fr.Planes[s.index] == nil {
		return nil, fmt.Errorf("%w: plane %d missing", ErrFormatChanged, s.index)
	}
	p := fr.Planes[s.index]
	if p.Info() != s.info {
		return nil, fmt.Errorf("%w: %+v != %+v", ErrFormatChanged, p.Info(), s.info)
	}
	if s.parity >= 0 {
		p = p.Field(s.parity)
	}
	return p, nil
}

func (s *planeSource) Spectra(ctx context.Context, n int) (*blockfft.Spectra, error) {
	p, err := s.Plane(ctx, n)
	if err != nil {
		return nil, err
	}
	return s.fwd.Transform(ctx, p)
}
