package y4m

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cwbudde/fft3dfilter/dsp/plane"
)

const (
	signature   = "YUV4MPEG2"
	frameMarker = "FRAME"
	maxLineLen  = 1024
)

// Ratio is a frame rate or pixel aspect ratio.
type Ratio struct {
	Num, Den int
}

func (r Ratio) String() string { return strconv.Itoa(r.Num) + ":" + strconv.Itoa(r.Den) }

// Header describes a stream.
type Header struct {
	Width      int
	Height     int
	FrameRate  Ratio
	Interlace  byte // 'p', 't', 'b', 'm' or '?'
	Aspect     Ratio
	Colorspace string // e.g. "420jpeg", "422", "444p10", "mono"
	Extra      []string
}

// ParseHeader parses the stream header line without its newline.
func ParseHeader(line string) (Header, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 || fields[0] != signature {
		return Header{}, fmt.Errorf("%w: missing %s signature", ErrInvalidHeader, signature)
	}

	h := Header{
		FrameRate:  Ratio{Num: 25, Den: 1},
		Interlace:  'p',
		Aspect:     Ratio{Num: 0, Den: 0},
		Colorspace: "420jpeg",
	}
	for _, f := range fields[1:] {
		key, val := f[0], f[1:]
		var err error
		switch key {
		case 'W':
			h.Width, err = strconv.Atoi(val)
		case 'H':
			h.Height, err = strconv.Atoi(val)
		case 'F':
			h.FrameRate, err = parseRatio(val)
		case 'A':
			h.Aspect, err = parseRatio(val)
		case 'I':
			if len(val) != 1 || !strings.Contains("ptbm?", val) {
				err = fmt.Errorf("interlace %q", val)
			} else {
				h.Interlace = val[0]
			}
		case 'C':
			h.Colorspace = val
		case 'X':
			h.Extra = append(h.Extra, val)
		default:
			err = fmt.Errorf("unknown parameter %q", f)
		}
		if err != nil {
			return Header{}, fmt.Errorf("%w: %v", ErrInvalidHeader, err)
		}
	}

	if h.Width <= 0 || h.Height <= 0 {
		return Header{}, fmt.Errorf("%w: size %dx%d", ErrInvalidHeader, h.Width, h.Height)
	}
	if _, err := h.Layout(); err != nil {
		return Header{}, err
	}
	return h, nil
}

func parseRatio(s string) (Ratio, error) {
	num, den, ok := strings.Cut(s, ":")
	if !ok {
		return Ratio{}, fmt.Errorf("ratio %q", s)
	}
	n, err := strconv.Atoi(num)
	if err != nil {
		return Ratio{}, err
	}
	d, err := strconv.Atoi(den)
	if err != nil {
		return Ratio{}, err
	}
	return Ratio{Num: n, Den: d}, nil
}

// String formats the header line without its newline.
func (h Header) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s W%d H%d F%s I%c A%s", signature, h.Width, h.Height, h.FrameRate, h.Interlace, h.Aspect)
	if h.Colorspace != "" {
		b.WriteString(" C" + h.Colorspace)
	}
	for _, x := range h.Extra {
		b.WriteString(" X" + x)
	}
	return b.String()
}

// Interlaced reports whether the header declares field based content.
func (h Header) Interlaced() bool {
	return h.Interlace == 't' || h.Interlace == 'b' || h.Interlace == 'm'
}

// Layout returns the plane geometry and format implied by the colorspace.
func (h Header) Layout() ([]plane.Info, error) {
	cs := h.Colorspace
	if cs == "" {
		cs = "420jpeg"
	}

	bits := 8
	base := cs
	if i := strings.LastIndexByte(cs, 'p'); i > 0 && isDigits(cs[i+1:]) {
		bits, _ = strconv.Atoi(cs[i+1:])
		base = cs[:i]
	} else if strings.HasPrefix(cs, "mono") && isDigits(cs[4:]) {
		bits, _ = strconv.Atoi(cs[4:])
		base = "mono"
	}

	format := plane.Format{Type: plane.SampleInteger, Bits: bits}
	if err := format.Validate(); err != nil {
		return nil, fmt.Errorf("%w: colorspace %q: %v", ErrInvalidHeader, cs, err)
	}

	luma := plane.Info{Width: h.Width, Height: h.Height, Format: format}
	var cw, ch int
	switch base {
	case "420", "420jpeg", "420paldv", "420mpeg2":
		cw, ch = (h.Width+1)/2, (h.Height+1)/2
	case "422":
		cw, ch = (h.Width+1)/2, h.Height
	case "444":
		cw, ch = h.Width, h.Height
	case "mono":
		return []plane.Info{luma}, nil
	default:
		return nil, fmt.Errorf("%w: colorspace %q", ErrInvalidHeader, cs)
	}

	chroma := plane.Info{Width: cw, Height: ch, Format: format}
	return []plane.Info{luma, chroma, chroma}, nil
}

// FrameSize returns the payload size of one frame in bytes.
func (h Header) FrameSize() (int64, error) {
	infos, err := h.Layout()
	if err != nil {
		return 0, err
	}
	var n int64
	for _, info := range infos {
		n += int64(info.Width) * int64(info.Height) * int64(info.Format.BytesPerSample())
	}
	return n, nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
