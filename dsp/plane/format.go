package plane

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrUnsupportedFormat reports a sample format other than integer 1..16 bit or 32-bit float.
	ErrUnsupportedFormat = errors.New("plane: unsupported sample format")
	// ErrDimensions reports a non-positive width or height.
	ErrDimensions = errors.New("plane: width and height must be > 0")
	// ErrDataLength reports sample data that does not match width*height.
	ErrDataLength = errors.New("plane: data length does not match dimensions")
	// ErrFieldMismatch reports fields that cannot be woven into one frame.
	ErrFieldMismatch = errors.New("plane: fields have mismatched geometry")
)

// SampleType distinguishes integer from floating-point samples.
type SampleType int

const (
	SampleInteger SampleType = iota
	SampleFloat
)

// Format describes how the samples of a plane are represented.
type Format struct {
	Type SampleType
	Bits int
}

var (
	Gray8  = Format{Type: SampleInteger, Bits: 8}
	Gray10 = Format{Type: SampleInteger, Bits: 10}
	Gray16 = Format{Type: SampleInteger, Bits: 16}
	GrayS  = Format{Type: SampleFloat, Bits: 32}
)

// Validate rejects formats the filter cannot process.
func (f Format) Validate() error {
	switch f.Type {
	case SampleInteger:
		if f.Bits < 1 || f.Bits > 16 {
			return fmt.Errorf("%w: %d-bit integer", ErrUnsupportedFormat, f.Bits)
		}
	case SampleFloat:
		if f.Bits != 32 {
			return fmt.Errorf("%w: %d-bit float", ErrUnsupportedFormat, f.Bits)
		}
	default:
		return fmt.Errorf("%w: sample type %d", ErrUnsupportedFormat, f.Type)
	}
	return nil
}

// Unit is the size of one 8-bit step expressed in this format's units.
// Noise parameters are given on the 8-bit scale and multiplied by Unit.
func (f Format) Unit() float64 {
	if f.Type == SampleFloat {
		return 1.0 / 255.0
	}
	return math.Ldexp(1, f.Bits-8)
}

// Max is the largest representable sample value.
func (f Format) Max() float64 {
	if f.Type == SampleFloat {
		return 1
	}
	return math.Ldexp(1, f.Bits) - 1
}

// BytesPerSample is the storage width used by packed containers.
func (f Format) BytesPerSample() int {
	if f.Type == SampleFloat {
		return 4
	}
	if f.Bits > 8 {
		return 2
	}
	return 1
}

// Quantize rounds and clamps v for integer formats and narrows it to
// float32 precision for float formats.
func (f Format) Quantize(v float64) float64 {
	if f.Type == SampleFloat {
		return float64(float32(v))
	}
	v = math.Round(v)
	if v < 0 {
		return 0
	}
	if hi := f.Max(); v > hi {
		return hi
	}
	return v
}

func (f Format) String() string {
	if f.Type == SampleFloat {
		return fmt.Sprintf("float%d", f.Bits)
	}
	return fmt.Sprintf("int%d", f.Bits)
}
