package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/cwbudde/fft3dfilter/dsp/plane"
	"github.com/cwbudde/fft3dfilter/fft3d"
	"github.com/cwbudde/fft3dfilter/internal/cli"
	"github.com/cwbudde/fft3dfilter/internal/logging"
	"github.com/cwbudde/fft3dfilter/media/y4m"
)

const progressEvery = 25

type filterCmd struct {
	paramFlags

	MetricsFile string `name:"metrics-file" type:"path" help:"Write the run's metrics in Prometheus text format."`

	Input  string `arg:"" type:"existingfile" help:"Input YUV4MPEG2 clip."`
	Output string `arg:"" help:"Output YUV4MPEG2 clip, - for stdout."`
}

func (c *filterCmd) Run(ctx context.Context, g *Globals) error {
	in, err := y4m.Open(c.Input)
	if err != nil {
		return err
	}
	defer in.Close()

	opts, err := c.options(in.Header().Interlaced())
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	f, err := fft3d.New(in, append(opts, fft3d.WithMetrics(fft3d.NewMetrics(reg)))...)
	if err != nil {
		return err
	}
	defer f.Close()

	if f.Params().Preview() {
		return printPreview(ctx, os.Stdout, f, f.Params().PFrame)
	}

	out, closeOut, err := createOutput(c.Output)
	if err != nil {
		return err
	}
	defer closeOut()

	w, err := y4m.NewWriter(out, in.Header())
	if err != nil {
		return err
	}

	start := time.Now()
	total := f.Frames()
	err = f.ProcessClip(ctx, func(n int, fr *plane.Frame) error {
		if err := w.WriteFrame(fr); err != nil {
			return err
		}
		if g.Verbose && ((n+1)%progressEvery == 0 || n+1 == total) {
			logging.Logf("fft3dfilter: %d/%d frames", n+1, total)
		}
		return nil
	})
	if err != nil {
		return err
	}
	if err := w.Flush(); err != nil {
		return err
	}
	if err := closeOut(); err != nil {
		return err
	}

	if c.MetricsFile != "" {
		if err := prometheus.WriteToTextfile(c.MetricsFile, reg); err != nil {
			return fmt.Errorf("metrics: %w", err)
		}
	}

	elapsed := time.Since(start)
	cli.PrintSection(os.Stderr, "fft3dfilter",
		cli.KV("frames", w.Frames()),
		cli.KV("mode", fmt.Sprintf("bt=%d", f.Params().BT)),
		cli.KV("planes", f.SelectedPlanes()),
		cli.KV("elapsed", elapsed.Round(time.Millisecond)),
	)
	return nil
}

// createOutput opens path for writing. The returned close function is safe
// to call more than once.
func createOutput(path string) (io.Writer, func() error, error) {
	if path == "-" {
		return os.Stdout, func() error { return nil }, nil
	}
	file, err := os.Create(path)
	if err != nil {
		return nil, nil, err
	}
	closed := false
	return file, func() error {
		if closed {
			return nil
		}
		closed = true
		return file.Close()
	}, nil
}

// printPreview writes the overlay text of frame n for every selected plane.
func printPreview(ctx context.Context, w io.Writer, f *fft3d.Filter, n int) error {
	reports, err := f.Probe(ctx, n)
	if err != nil {
		return err
	}
	for i, r := range reports {
		cli.PrintSection(w, fmt.Sprintf("frame %d plane %d", n, f.SelectedPlanes()[i]), r.Text())
	}
	return nil
}
