// Command wininfo prints the analysis and synthesis windows of the block
// filter and the reconstruction divisor they produce.
//
// Usage:
//
//	wininfo [flags] [window ...]
//
// Without arguments it prints every window type.
//
// Examples:
//
//	wininfo hanning
//	wininfo --size 16 --overlap 4 raised-cosine flat
//	wininfo --taps --size 8 hanning
package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/alecthomas/kong"

	"github.com/cwbudde/fft3dfilter/dsp/blockfft"
	"github.com/cwbudde/fft3dfilter/dsp/overlap"
	"github.com/cwbudde/fft3dfilter/dsp/window"
	"github.com/cwbudde/fft3dfilter/internal/cli"
)

type options struct {
	Size    int      `default:"32" help:"Block size."`
	Overlap int      `default:"-1" help:"Overlap; -1 uses size/3."`
	Plane   int      `default:"0" help:"Plane size for divisor statistics; 0 uses 4*size."`
	Taps    bool     `help:"Print the rising tapers."`
	Windows []string `arg:"" optional:"" help:"Window names or codes."`
}

type row struct {
	kind     overlap.WindowType
	enbw     float64
	gain     float64
	energy   float64
	divMin   float64
	divMax   float64
	interior float64
	ax, sx   []float64
}

func main() {
	var o options
	kong.Parse(&o,
		kong.Name("wininfo"),
		kong.Description("Prints block filter window properties."),
		kong.UsageOnError(),
	)

	if err := run(os.Stdout, o); err != nil {
		cli.PrintError(err.Error())
		os.Exit(1)
	}
}

func run(w io.Writer, o options) error {
	kinds, err := resolve(o.Windows)
	if err != nil {
		return err
	}
	ov := o.Overlap
	if ov < 0 {
		ov = o.Size / 3
	}
	size := o.Plane
	if size <= 0 {
		size = 4 * o.Size
	}

	rows := make([]row, 0, len(kinds))
	for _, k := range kinds {
		r, err := analyze(k, o.Size, ov, size)
		if err != nil {
			return err
		}
		rows = append(rows, r)
	}

	fmt.Fprintln(w, cli.KV("block", fmt.Sprintf("%d overlap %d on %dx%d", o.Size, ov, size, size)))
	fmt.Fprintln(w, cli.KV("fft", blockfft.Backend(o.Size)))
	fmt.Fprintln(w)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Window\tENBW [bins]\tGain\tEnergy\tDivisor min\tDivisor max\tInterior\n")
	fmt.Fprintf(tw, "------\t-----------\t----\t------\t-----------\t-----------\t--------\n")
	for _, r := range rows {
		fmt.Fprintf(tw, "%s\t%.4f\t%.4f\t%.2f\t%.4f\t%.4f\t%.4f\n",
			r.kind, r.enbw, r.gain, r.energy, r.divMin, r.divMax, r.interior)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if o.Taps {
		for _, r := range rows {
			fmt.Fprintln(w)
			fmt.Fprintln(w, cli.TitleStyle.Render(r.kind.String()))
			fmt.Fprintln(w, cli.KV("analysis ", formatTaps(r.ax, ov)))
			fmt.Fprintln(w, cli.KV("synthesis", formatTaps(r.sx, ov)))
		}
	}
	return nil
}

func resolve(names []string) ([]overlap.WindowType, error) {
	if len(names) == 0 {
		return []overlap.WindowType{
			overlap.WindowRectangular,
			overlap.WindowHanning,
			overlap.WindowRaisedCosine,
			overlap.WindowFlat,
		}, nil
	}
	out := make([]overlap.WindowType, 0, len(names))
	for _, n := range names {
		k, err := overlap.ParseWindowType(n)
		if err != nil {
			return nil, err
		}
		out = append(out, k)
	}
	return out, nil
}

func analyze(k overlap.WindowType, bs, ov, size int) (row, error) {
	g, err := overlap.NewGrid(size, size, bs, bs, ov, ov)
	if err != nil {
		return row{}, err
	}
	b, err := overlap.NewBank(g, k)
	if err != nil {
		return row{}, err
	}

	ax, sx, _, _ := b.Tapers()
	enbw, err := window.EquivalentNoiseBandwidth(ax)
	if err != nil {
		return row{}, err
	}
	gain, err := window.CoherentGain(ax)
	if err != nil {
		return row{}, err
	}

	div := b.DivisorX()
	lo, hi := div[0], div[0]
	for _, v := range div {
		lo = min(lo, v)
		hi = max(hi, v)
	}

	return row{
		kind:     k,
		enbw:     enbw,
		gain:     gain,
		energy:   b.AnalysisEnergy(),
		divMin:   lo * lo,
		divMax:   hi * hi,
		interior: b.DivisorAt(size/2, size/2),
		ax:       ax,
		sx:       sx,
	}, nil
}

func formatTaps(t []float64, n int) string {
	n = min(max(n, 1), len(t))
	parts := make([]string, n)
	for i := range n {
		parts[i] = fmt.Sprintf("%.4f", t[i])
	}
	return strings.Join(parts, " ")
}
