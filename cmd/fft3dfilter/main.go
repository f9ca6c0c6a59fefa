// Command fft3dfilter denoises and sharpens YUV4MPEG2 clips in the
// frequency domain.
//
// Usage:
//
//	fft3dfilter filter [flags] <input.y4m> <output.y4m>
//	fft3dfilter probe [flags] <input.y4m>
//
// Examples:
//
//	fft3dfilter filter --sigma 3 --bt 1 in.y4m out.y4m
//	fft3dfilter filter --preset strong.yaml --ncpu 4 in.y4m - > out.y4m
//	fft3dfilter probe --frame 10 --bw 16 --bh 16 in.y4m
package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/alecthomas/kong"

	"github.com/cwbudde/fft3dfilter/dsp/blockfft"
	"github.com/cwbudde/fft3dfilter/internal/cli"
	"github.com/cwbudde/fft3dfilter/internal/logging"
)

var version = "0.1.0"

// Globals are flags shared by every command.
type Globals struct {
	Verbose bool             `short:"v" help:"Log filter progress to stderr."`
	Version kong.VersionFlag `help:"Print version and exit."`
}

// CLI is the command line.
type CLI struct {
	Globals

	Filter filterCmd `cmd:"" help:"Filter a YUV4MPEG2 clip."`
	Probe  probeCmd  `cmd:"" help:"Measure the noise in one block of a YUV4MPEG2 clip."`
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var c CLI
	kctx := kong.Parse(&c,
		kong.Name("fft3dfilter"),
		kong.Description("Block FFT spatio-temporal denoiser"),
		kong.UsageOnError(),
		kong.Vars{"version": version},
		kong.BindTo(ctx, (*context.Context)(nil)),
	)

	if !c.Verbose {
		logging.SetLogger(nil)
	}

	if err := execute(kctx, &c.Globals); err != nil {
		cli.PrintError(err.Error())
		stop()
		os.Exit(1)
	}
}

// execute runs the selected command and releases the pooled transform
// plans before returning.
func execute(kctx *kong.Context, g *Globals) error {
	defer blockfft.Shutdown()
	return kctx.Run(g)
}
