package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/cwbudde/fft3dfilter/dsp/probe"
	"github.com/cwbudde/fft3dfilter/fft3d"
	"github.com/cwbudde/fft3dfilter/internal/cli"
	"github.com/cwbudde/fft3dfilter/media/y4m"
)

type probeCmd struct {
	paramFlags

	Frame    int  `default:"0" help:"Frame to measure."`
	Spectrum bool `help:"Print the raw and filtered block magnitudes."`

	Input string `arg:"" type:"existingfile" help:"Input YUV4MPEG2 clip."`
}

func (c *probeCmd) Run(ctx context.Context) error {
	in, err := y4m.Open(c.Input)
	if err != nil {
		return err
	}
	defer in.Close()

	opts, err := c.options(in.Header().Interlaced())
	if err != nil {
		return err
	}
	f, err := fft3d.New(in, opts...)
	if err != nil {
		return err
	}
	defer f.Close()

	reports, err := f.Probe(ctx, c.Frame)
	if err != nil {
		return err
	}
	for i, r := range reports {
		printReport(os.Stdout, fmt.Sprintf("frame %d plane %d", c.Frame, f.SelectedPlanes()[i]), r, c.Spectrum)
	}
	return nil
}

func printReport(w io.Writer, title string, r *probe.Report, spectrum bool) {
	lines := []string{
		cli.KV("block", fmt.Sprintf("%d,%d", r.PX, r.PY)),
		cli.KV("size", fmt.Sprintf("%dx%d", r.BW, r.BH)),
		cli.KV("sigma", fmt.Sprintf("%.3f", r.Sigma)),
		cli.KV("mean raw", fmt.Sprintf("%.3f", r.MeanRaw())),
		cli.KV("mean filtered", fmt.Sprintf("%.3f", r.MeanFiltered())),
	}
	if spectrum {
		lines = append(lines, "", cli.KeyStyle.Render("raw"))
		lines = append(lines, magnitudeRows(r.Raw, r.BW)...)
		lines = append(lines, "", cli.KeyStyle.Render("filtered"))
		lines = append(lines, magnitudeRows(r.Filtered, r.BW)...)
	}
	cli.PrintSection(w, title, lines...)
}

func magnitudeRows(mag []float64, width int) []string {
	rows := make([]string, 0, len(mag)/width)
	for y := 0; y+width <= len(mag); y += width {
		var b strings.Builder
		for _, v := range mag[y : y+width] {
			fmt.Fprintf(&b, "%7.1f", v)
		}
		rows = append(rows, b.String())
	}
	return rows
}
