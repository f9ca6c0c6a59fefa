package fft3d

import (
	"errors"
	"fmt"
)

// Configuration errors. They are returned wrapped in a *ConfigError.
var (
	ErrInvalidTemporalMode = errors.New("bt must be in [-1, 5]")
	ErrOverlapTooLarge     = errors.New("overlap must not exceed half the block size")
	ErrBetaTooSmall        = errors.New("beta must be >= 1.0")
	ErrNoPlanes            = errors.New("no planes selected")
	ErrPlaneIndex          = errors.New("plane index out of range")
	ErrDuplicatePlane      = errors.New("plane selected more than once")
	ErrUnsupportedFormat   = errors.New("only constant format 8-16 bit integer and 32 bit float input supported")
	ErrBlockSize           = errors.New("block size must be > 0")
	ErrWindowType          = errors.New("wintype must be in [0, 3]")
	ErrNoFrames            = errors.New("clip has no frames")
	ErrPatternFrame        = errors.New("pframe out of range")
)

// Runtime errors.
var (
	ErrClosed        = errors.New("filter is closed")
	ErrFrameRange    = errors.New("frame index out of range")
	ErrFormatChanged = errors.New("plane format or size changed mid-clip")
)

const errPrefix = "FFT3DFilter: "

// ConfigError reports parameters rejected before any processing.
type ConfigError struct {
	Err error
}

func (e *ConfigError) Error() string { return errPrefix + e.Err.Error() }

func (e *ConfigError) Unwrap() error { return e.Err }

func configErr(sentinel error, format string, args ...any) error {
	return &ConfigError{Err: fmt.Errorf("%w: "+format, append([]any{sentinel}, args...)...)}
}

// FrameError reports the failure of one frame request.
type FrameError struct {
	Frame int
	Plane int
	Err   error
}

func (e *FrameError) Error() string {
	return fmt.Sprintf("%sframe %d plane %d: %v", errPrefix, e.Frame, e.Plane, e.Err)
}

func (e *FrameError) Unwrap() error { return e.Err }
