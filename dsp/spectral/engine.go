package spectral

import (
	"context"
	"errors"
	"fmt"

	"github.com/cwbudde/fft3dfilter/dsp/blockfft"
	"github.com/cwbudde/fft3dfilter/dsp/overlap"
	"github.com/cwbudde/fft3dfilter/dsp/plane"
)

// ErrFrameRange reports a frame index outside the source.
var ErrFrameRange = errors.New("spectral: frame index out of range")

// Source supplies the forward spectra of one plane of a clip. Every call
// returns spectra owned by the caller.
type Source interface {
	Frames() int
	Spectra(ctx context.Context, n int) (*blockfft.Spectra, error)
}

// Engine filters the spectra of frame n of a plane.
type Engine interface {
	// Filter returns the filtered spectra of frame n.
	Filter(ctx context.Context, n int, src Source) (*blockfft.Spectra, error)
	// Ordered reports whether frames must be requested in increasing order,
	// one at a time. Unordered engines may be called concurrently.
	Ordered() bool
	// Release drops all temporal history.
	Release()
	// Model returns the shared noise model.
	Model() *Model
}

// New returns the engine selected by cfg.Temporal.
func New(bank *overlap.Bank, format plane.Format, cfg Config) (Engine, error) {
	m, err := NewModel(bank, format, cfg)
	if err != nil {
		return nil, err
	}

	switch {
	case cfg.Temporal == ModeSharpen:
		return &sharpenEngine{m: m}, nil
	case cfg.Temporal == ModeKalman:
		return newKalmanEngine(m), nil
	case cfg.Temporal == ModeWiener:
		return &wienerEngine{m: m}, nil
	default:
		return newWiener3DEngine(m), nil
	}
}

func checkFrame(n int, src Source) error {
	if n < 0 || n >= src.Frames() {
		return fmt.Errorf("%w: %d of %d", ErrFrameRange, n, src.Frames())
	}
	return nil
}

type sharpenEngine struct {
	m *Model
}

func (e *sharpenEngine) Filter(ctx context.Context, n int, src Source) (*blockfft.Spectra, error) {
	if err := checkFrame(n, src); err != nil {
		return nil, err
	}
	s, err := src.Spectra(ctx, n)
	if err != nil {
		return nil, err
	}
	if len(e.m.post) == 0 {
		return s, nil
	}
	if err := e.m.forEachBlock(ctx, s, e.m.Sharpen2D); err != nil {
		return nil, err
	}
	return s, nil
}

func (e *sharpenEngine) Ordered() bool { return false }
func (e *sharpenEngine) Release() {}
func (e *sharpenEngine) Model() *Model { return e.m }

type wienerEngine struct {
	m *Model
}

func (e *wienerEngine) Filter(ctx context.Context, n int, src Source) (*blockfft.Spectra, error) {
	if err := checkFrame(n, src); err != nil {
		return nil, err
	}
	s, err := src.Spectra(ctx, n)
	if err != nil {
		return nil, err
	}
	if err := e.m.forEachBlock(ctx, s, e.m.Wiener2D); err != nil {
		return nil, err
	}
	return s, nil
}

func (e *wienerEngine) Ordered() bool { return false }
func (e *wienerEngine) Release() {}
func (e *wienerEngine) Model() *Model { return e.m }
