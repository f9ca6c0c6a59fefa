package spectral

import (
	"errors"
	"fmt"
)

var (
	// ErrTemporalMode reports bt outside [-1, 5].
	ErrTemporalMode = errors.New("spectral: bt must be in [-1, 5]")
	// ErrBeta reports beta below 1.
	ErrBeta = errors.New("spectral: beta must be >= 1")
	// ErrPattern reports a noise pattern that does not match the block size.
	ErrPattern = errors.New("spectral: noise pattern length does not match block size")
)

// Temporal mode bounds.
const (
	ModeSharpen = -1
	ModeKalman  = 0
	ModeWiener  = 1
	MaxTemporal = 5
)

// Config is the resolved parameter set of one engine.
type Config struct {
	Temporal int // bt

	Sigma  float64
	Sigma2 float64
	Sigma3 float64
	Sigma4 float64
	Beta   float64

	KRatio float64

	Sharpen float64
	SCutoff float64
	SVR     float64
	SMin    float64
	SMax    float64

	Degrid float64
	Dehalo float64
	HR     float64
	HT     float64

	// Pattern optionally replaces the sigma noise floor with a measured
	// per-coefficient noise power (already normalised).
	Pattern []float64

	// Workers bounds the block rows filtered concurrently.
	Workers int

	// OnRestart is called when a temporal engine discards its history
	// because frames were requested out of order.
	OnRestart func()
}

// Validate checks the parameters an engine cannot run without.
func (c Config) Validate() error {
	if c.Temporal < ModeSharpen || c.Temporal > MaxTemporal {
		return fmt.Errorf("%w: %d", ErrTemporalMode, c.Temporal)
	}
	if c.Beta < 1 {
		return fmt.Errorf("%w: %g", ErrBeta, c.Beta)
	}
	return nil
}

// ModeName describes a temporal mode.
func ModeName(bt int) string {
	switch {
	case bt == ModeSharpen:
		return "sharpen"
	case bt == ModeKalman:
		return "kalman"
	case bt == ModeWiener:
		return "wiener"
	case bt > ModeWiener && bt <= MaxTemporal:
		return fmt.Sprintf("wiener3d(%d)", bt)
	default:
		return fmt.Sprintf("invalid(%d)", bt)
	}
}
