package y4m

import "errors"

var (
	// ErrInvalidHeader indicates a missing signature or a malformed or
	// unsupported header parameter.
	ErrInvalidHeader = errors.New("y4m: invalid stream header")

	// ErrInvalidFrame indicates a frame without its FRAME marker.
	ErrInvalidFrame = errors.New("y4m: invalid frame header")

	// ErrTruncated indicates a stream that ends inside a frame.
	ErrTruncated = errors.New("y4m: truncated frame")

	// ErrFrameRange indicates a frame index outside the stream.
	ErrFrameRange = errors.New("y4m: frame index out of range")

	// ErrLayout indicates a frame that does not match the stream layout.
	ErrLayout = errors.New("y4m: frame does not match stream layout")
)
