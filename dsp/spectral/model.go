package spectral

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/cwbudde/fft3dfilter/dsp/blockfft"
	"github.com/cwbudde/fft3dfilter/dsp/overlap"
	"github.com/cwbudde/fft3dfilter/dsp/plane"
	_ "github.com/cwbudde/fft3dfilter/internal/arch/generic" // register portable kernels
	"github.com/cwbudde/fft3dfilter/internal/arch/registry"
	_ "github.com/cwbudde/fft3dfilter/internal/arch/vector" // register vecmath kernels
	"github.com/cwbudde/fft3dfilter/internal/cpu"
)

var (
	kernels     *registry.OpEntry
	kernelsOnce sync.Once
)

func kernelSet() *registry.OpEntry {
	kernelsOnce.Do(func() {
		entry := registry.Global.Lookup(cpu.DetectFeatures())
		if entry == nil {
			panic("spectral: no kernel registered (missing generic fallback?)")
		}
		if entry.Wiener == nil || entry.Sharpen == nil || entry.Dehalo == nil || entry.Kalman == nil {
			panic("spectral: selected kernel set " + entry.Name + " is incomplete")
		}
		kernels = entry
	})
	return kernels
}

// KernelName reports the kernel set selected for this process.
func KernelName() string {
	return kernelSet().Name
}

// Model is the parameter-derived state shared by every engine.
type Model struct {
	cfg    Config
	bank   *overlap.Bank
	format plane.Format

	noise  []float64
	floor  float64
	degrid *Degridder
	post   Chain
	kern   *registry.OpEntry
}

// NewModel derives the noise model and corrections for bank.
func NewModel(bank *overlap.Bank, format plane.Format, cfg Config) (*Model, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	g := bank.Grid()
	if cfg.Pattern != nil && len(cfg.Pattern) != g.BlockLen() {
		return nil, fmt.Errorf("%w: %d != %d", ErrPattern, len(cfg.Pattern), g.BlockLen())
	}

	m := &Model{
		cfg:    cfg,
		bank:   bank,
		format: format,
		floor:  (cfg.Beta - 1) / cfg.Beta,
		kern:   kernelSet(),
	}

	if cfg.Pattern != nil {
		m.noise = append([]float64(nil), cfg.Pattern...)
	} else {
		m.noise = noiseFloor(cfg, g.BW, g.BH, m.Normalize)
	}

	if cfg.Degrid != 0 {
		ws, err := blockfft.WindowSpectrum(bank)
		if err != nil {
			return nil, err
		}
		m.degrid = NewDegridder(ws, cfg.Degrid)
	}

	if cfg.Sharpen != 0 {
		m.post = append(m.post, &Sharpener{
			weight: sharpenWeights(cfg, g.BW, g.BH),
			smin:   m.Normalize(cfg.SMin),
			smax:   m.Normalize(cfg.SMax),
			kernel: m.kern.Sharpen,
		})
	}
	if cfg.Dehalo != 0 {
		m.post = append(m.post, &Dehaloer{
			weight: dehaloWeights(cfg, g.BW, g.BH),
			ht:     m.Normalize(cfg.HT),
			kernel: m.kern.Dehalo,
		})
	}

	return m, nil
}

// Normalize converts an 8-bit level into per-coefficient power.
func (m *Model) Normalize(level float64) float64 {
	v := level * m.format.Unit()
	return v * v * m.bank.AnalysisEnergy()
}

// Config returns the parameters the model was built from.
func (m *Model) Config() Config { return m.cfg }

// Bank returns the window bank.
func (m *Model) Bank() *overlap.Bank { return m.bank }

// Noise returns the per-coefficient noise power. The slice is shared.
func (m *Model) Noise() []float64 { return m.noise }

// Corrections returns the post-filter chain.
func (m *Model) Corrections() Chain { return m.post }

// Wiener2D applies degrid, the single-frame Wiener gain and the corrections
// to one block in place.
func (m *Model) Wiener2D(block []complex128) {
	f := m.degrid.Remove(block)
	m.kern.Wiener(block, m.noise, m.floor)
	m.post.Apply(block)
	m.degrid.Restore(block, f)
}

// Sharpen2D applies only degrid and the corrections to one block in place.
func (m *Model) Sharpen2D(block []complex128) {
	f := m.degrid.Remove(block)
	m.post.Apply(block)
	m.degrid.Restore(block, f)
}

func (m *Model) restarted() {
	if m.cfg.OnRestart != nil {
		m.cfg.OnRestart()
	}
}

func (m *Model) workers() int {
	return max(m.cfg.Workers, 1)
}

// forEachBlockRow runs fn for every block row, bounded by the worker count.
func (m *Model) forEachBlockRow(ctx context.Context, fn func(by int) error) error {
	g := m.bank.Grid()
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(m.workers())

	for by := range g.NY {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			return fn(by)
		})
	}
	return eg.Wait()
}

// forEachBlock applies fn to every block of s.
func (m *Model) forEachBlock(ctx context.Context, s *blockfft.Spectra, fn func([]complex128)) error {
	g := s.Grid
	return m.forEachBlockRow(ctx, func(by int) error {
		for bx := range g.NX {
			fn(s.Block(by*g.NX + bx))
		}
		return nil
	})
}
