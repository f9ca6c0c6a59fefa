package y4m

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/cwbudde/fft3dfilter/dsp/plane"
)

// Writer encodes frames into a stream.
type Writer struct {
	w           *bufio.Writer
	header      Header
	infos       []plane.Info
	wroteHeader bool
	buf         []byte
	frames      int
}

// NewWriter returns a writer for streams described by h.
func NewWriter(w io.Writer, h Header) (*Writer, error) {
	if h.Width <= 0 || h.Height <= 0 {
		return nil, fmt.Errorf("%w: size %dx%d", ErrInvalidHeader, h.Width, h.Height)
	}
	if h.Interlace == 0 {
		h.Interlace = 'p'
	}
	if h.FrameRate.Den == 0 {
		h.FrameRate = Ratio{Num: 25, Den: 1}
	}
	infos, err := h.Layout()
	if err != nil {
		return nil, err
	}
	return &Writer{
		w:      bufio.NewWriter(w),
		header: h,
		infos:  infos,
	}, nil
}

// Frames returns the number of frames written.
func (w *Writer) Frames() int { return w.frames }

// WriteFrame appends f. Its planes must match the header layout; samples
// are rounded and clamped to the format range.
func (w *Writer) WriteFrame(f *plane.Frame) error {
	if f == nil || len(f.Planes) != len(w.infos) {
		return fmt.Errorf("%w: frame %d", ErrLayout, w.frames)
	}
	for i, p := range f.Planes {
		if p == nil || p.Info() != w.infos[i] {
			return fmt.Errorf("%w: frame %d plane %d", ErrLayout, w.frames, i)
		}
	}

	if !w.wroteHeader {
		if _, err := w.w.WriteString(w.header.String() + "\n"); err != nil {
			return err
		}
		w.wroteHeader = true
	}
	if _, err := w.w.WriteString(frameMarker + "\n"); err != nil {
		return err
	}

	for _, p := range f.Planes {
		w.buf = encode(w.buf[:0], p)
		if _, err := w.w.Write(w.buf); err != nil {
			return err
		}
	}
	w.frames++
	return nil
}

// Flush writes buffered data to the underlying writer.
func (w *Writer) Flush() error { return w.w.Flush() }

func encode(dst []byte, p *plane.Plane) []byte {
	bps := p.Format.BytesPerSample()
	for _, v := range p.Data {
		q := uint16(p.Format.Quantize(v))
		if bps == 1 {
			dst = append(dst, byte(q))
			continue
		}
		dst = binary.LittleEndian.AppendUint16(dst, q)
	}
	return dst
}
