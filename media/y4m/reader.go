package y4m

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/cwbudde/fft3dfilter/dsp/plane"
)

// Reader serves the frames of a stream by index.
type Reader struct {
	r         io.ReaderAt
	header    Header
	infos     []plane.Info
	frameSize int64
	offsets   []int64 // payload offset of every frame
}

// NewReader parses the header of the size bytes in r and indexes every
// frame.
func NewReader(r io.ReaderAt, size int64) (*Reader, error) {
	line, off, err := readLine(r, 0)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidHeader, err)
	}
	h, err := ParseHeader(line)
	if err != nil {
		return nil, err
	}
	infos, err := h.Layout()
	if err != nil {
		return nil, err
	}
	frameSize, err := h.FrameSize()
	if err != nil {
		return nil, err
	}

	rd := &Reader{
		r:         r,
		header:    h,
		infos:     infos,
		frameSize: frameSize,
	}

	for off < size {
		line, next, err := readLine(r, off)
		if err != nil {
			return nil, fmt.Errorf("%w: frame %d: %v", ErrInvalidFrame, len(rd.offsets), err)
		}
		if line != frameMarker && !strings.HasPrefix(line, frameMarker+" ") {
			return nil, fmt.Errorf("%w: frame %d at offset %d", ErrInvalidFrame, len(rd.offsets), off)
		}
		if next+frameSize > size {
			return nil, fmt.Errorf("%w: frame %d needs %d bytes, %d left", ErrTruncated, len(rd.offsets), frameSize, size-next)
		}
		rd.offsets = append(rd.offsets, next)
		off = next + frameSize
	}

	return rd, nil
}

func readLine(r io.ReaderAt, off int64) (string, int64, error) {
	buf := make([]byte, maxLineLen)
	n, err := r.ReadAt(buf, off)
	if n == 0 && err != nil {
		return "", 0, err
	}
	i := bytes.IndexByte(buf[:n], '\n')
	if i < 0 {
		return "", 0, errors.New("line too long or unterminated")
	}
	return string(buf[:i]), off + int64(i) + 1, nil
}

// Header returns the stream header.
func (r *Reader) Header() Header { return r.header }

// Frames returns the number of frames.
func (r *Reader) Frames() int { return len(r.offsets) }

// Planes returns the plane layout of every frame.
func (r *Reader) Planes() []plane.Info { return append([]plane.Info(nil), r.infos...) }

// Frame decodes frame n.
func (r *Reader) Frame(ctx context.Context, n int) (*plane.Frame, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if n < 0 || n >= len(r.offsets) {
		return nil, fmt.Errorf("%w: %d of %d", ErrFrameRange, n, len(r.offsets))
	}

	buf := make([]byte, r.frameSize)
	got, err := r.r.ReadAt(buf, r.offsets[n])
	if int64(got) < r.frameSize {
		if err == nil || errors.Is(err, io.EOF) {
			err = ErrTruncated
		}
		return nil, fmt.Errorf("y4m: frame %d: %w", n, err)
	}

	f := &plane.Frame{Planes: make([]*plane.Plane, len(r.infos))}
	for i, info := range r.infos {
		p := plane.New(info.Width, info.Height, info.Format)
		buf = decode(p.Data, buf, info.Format.BytesPerSample())
		f.Planes[i] = p
	}
	return f, nil
}

// decode fills dst from src and returns the unread remainder of src.
func decode(dst []float64, src []byte, bps int) []byte {
	if bps == 1 {
		for i := range dst {
			dst[i] = float64(src[i])
		}
		return src[len(dst):]
	}
	for i := range dst {
		dst[i] = float64(binary.LittleEndian.Uint16(src[2*i:]))
	}
	return src[2*len(dst):]
}

// File is a Reader over an open file.
type File struct {
	*Reader
	f *os.File
}

// Open opens and indexes the stream at path.
func Open(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	r, err := NewReader(f, info.Size())
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &File{Reader: r, f: f}, nil
}

// Close closes the underlying file.
func (f *File) Close() error { return f.f.Close() }
