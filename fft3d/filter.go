package fft3d

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/cwbudde/fft3dfilter/dsp/blockfft"
	"github.com/cwbudde/fft3dfilter/dsp/overlap"
	"github.com/cwbudde/fft3dfilter/dsp/plane"
	"github.com/cwbudde/fft3dfilter/dsp/probe"
	"github.com/cwbudde/fft3dfilter/dsp/spectral"
	"github.com/cwbudde/fft3dfilter/internal/logging"
)

// Filter denoises and sharpens the selected planes of a clip.
type Filter struct {
	id      uuid.UUID
	params  Params
	clip    Clip
	infos   []plane.Info
	planes  []*planeFilter
	metrics *Metrics
	closed  atomic.Bool
}

type planeFilter struct {
	index  int
	fields []*fieldFilter
}

// fieldFilter owns the transform and engine of one plane or field.
type fieldFilter struct {
	f      *Filter
	index  int
	bank   *overlap.Bank
	fwd    *blockfft.Forward
	inv    *blockfft.Inverse
	format plane.Format
	src    *planeSource

	mu     sync.Mutex // guards engine and probe creation
	engine spectral.Engine
	probe  *probe.Probe

	order sync.Mutex // serialises ordered engines
}

// New validates the parameters against clip and prepares the filter.
func New(clip Clip, opts ...Option) (*Filter, error) {
	s := applyOptions(opts...)
	p := s.params
	p.NCPU = max(p.NCPU, 1)

	if err := p.Validate(); err != nil {
		return nil, err
	}
	if clip == nil || clip.Frames() <= 0 {
		return nil, configErr(ErrNoFrames, "empty clip")
	}

	infos := clip.Planes()
	selected, err := p.resolvePlanes(infos)
	if err != nil {
		return nil, err
	}
	if p.PFactor != 0 && (p.PFrame < 0 || p.PFrame >= clip.Frames()) {
		return nil, configErr(ErrPatternFrame, "%d of %d", p.PFrame, clip.Frames())
	}

	f := &Filter{
		id:      uuid.New(),
		params:  p,
		clip:    clip,
		infos:   infos,
		metrics: s.metrics,
	}

	for _, idx := range selected {
		pf, err := f.newPlaneFilter(idx, infos[idx])
		if err != nil {
			return nil, err
		}
		f.planes = append(f.planes, pf)
	}

	logging.Logf("fft3d: filter %s: mode=%s block=%dx%d overlap=%dx%d window=%s planes=%v kernels=%s backend=%s",
		f.id, spectral.ModeName(p.BT), p.BW, p.BH, p.OW, p.OH, p.WinType, selected,
		spectral.KernelName(), blockfft.Backend(p.BW))

	return f, nil
}

func (f *Filter) newPlaneFilter(idx int, info plane.Info) (*planeFilter, error) {
	pf := &planeFilter{index: idx}

	parities := []int{-1}
	if f.params.Interlaced {
		if info.Height < 2 {
			return nil, configErr(ErrUnsupportedFormat, "plane %d: interlaced input needs at least 2 rows", idx)
		}
		parities = []int{0, 1}
	}

	for _, parity := range parities {
		height := info.Height
		if parity >= 0 {
			height = (info.Height - parity + 1) / 2
		}
		ff, err := f.newFieldFilter(idx, parity, info, height)
		if err != nil {
			return nil, err
		}
		pf.fields = append(pf.fields, ff)
	}
	return pf, nil
}

func (f *Filter) newFieldFilter(idx, parity int, info plane.Info, height int) (*fieldFilter, error) {
	p := f.params

	g, err := overlap.NewGrid(info.Width, height, p.BW, p.BH, p.OW, p.OH)
	if err != nil {
		return nil, configErr(ErrBlockSize, "plane %d: %v", idx, err)
	}
	bank, err := overlap.NewBank(g, p.WinType)
	if err != nil {
		return nil, configErr(ErrWindowType, "plane %d: %v", idx, err)
	}
	fwd, err := blockfft.NewForward(bank, p.NCPU)
	if err != nil {
		return nil, fmt.Errorf("%s%w", errPrefix, err)
	}
	inv, err := blockfft.NewInverse(bank, p.NCPU)
	if err != nil {
		return nil, fmt.Errorf("%s%w", errPrefix, err)
	}

	return &fieldFilter{
		f:      f,
		index:  idx,
		bank:   bank,
		fwd:    fwd,
		inv:    inv,
		format: info.Format,
		src: &planeSource{
			clip:   f.clip,
			index:  idx,
			parity: parity,
			info:   info,
			fwd:    fwd,
		},
	}, nil
}

// ID identifies the filter instance in logs.
func (f *Filter) ID() uuid.UUID { return f.id }

// Params returns the validated parameters.
func (f *Filter) Params() Params { return f.params }

// Frames returns the clip length.
func (f *Filter) Frames() int { return f.clip.Frames() }

// Planes returns the output plane layout, which equals the input layout.
func (f *Filter) Planes() []plane.Info { return append([]plane.Info(nil), f.infos...) }

// SelectedPlanes returns the indices of the filtered planes in ascending
// order. Probe reports follow this order.
func (f *Filter) SelectedPlanes() []int {
	out := make([]int, len(f.planes))
	for i, pf := range f.planes {
		out[i] = pf.index
	}
	return out
}

// Ordered reports whether frames must be requested in increasing order for
// temporal state to be reused.
func (f *Filter) Ordered() bool { return f.params.Ordered() }

// Frame makes the filter usable as the input of another filter.
func (f *Filter) Frame(ctx context.Context, n int) (*plane.Frame, error) {
	return f.Process(ctx, n)
}

// Process returns filtered frame n. Planes that are not selected are copied
// unchanged. In preview mode every plane is copied unchanged.
func (f *Filter) Process(ctx context.Context, n int) (*plane.Frame, error) {
	if f.closed.Load() {
		return nil, &FrameError{Frame: n, Plane: -1, Err: ErrClosed}
	}
	if n < 0 || n >= f.clip.Frames() {
		return nil, &FrameError{Frame: n, Plane: -1, Err: fmt.Errorf("%w: %d of %d", ErrFrameRange, n, f.clip.Frames())}
	}

	src, err := f.clip.Frame(ctx, n)
	if err != nil {
		f.metrics.failed()
		return nil, &FrameError{Frame: n, Plane: -1, Err: err}
	}
	if !sameLayout(f.infos, src) {
		f.metrics.failed()
		return nil, &FrameError{Frame: n, Plane: -1, Err: ErrFormatChanged}
	}

	out := src.Clone()
	if f.params.Preview() {
		return out, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, pf := range f.planes {
		g.Go(func() error {
			start := time.Now()
			p, err := pf.process(gctx, n)
			if err != nil {
				return &FrameError{Frame: n, Plane: pf.index, Err: err}
			}
			out.Planes[pf.index] = p
			f.metrics.observePlane(pf.index, f.params.BT, time.Since(start))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		f.metrics.failed()
		return nil, err
	}
	return out, nil
}

// ProcessClip filters every frame and hands the results to sink in frame
// order. Unordered modes filter up to NCPU frames at a time.
func (f *Filter) ProcessClip(ctx context.Context, sink func(n int, fr *plane.Frame) error) error {
	total := f.clip.Frames()

	batch := f.params.NCPU
	if f.Ordered() || f.params.Preview() {
		batch = 1
	}

	results := make([]*plane.Frame, batch)
	for start := 0; start < total; start += batch {
		end := min(start+batch, total)

		g, gctx := errgroup.WithContext(ctx)
		for n := start; n < end; n++ {
			g.Go(func() error {
				fr, err := f.Process(gctx, n)
				if err != nil {
					return err
				}
				results[n-start] = fr
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}

		for n := start; n < end; n++ {
			if err := sink(n, results[n-start]); err != nil {
				return err
			}
			results[n-start] = nil
		}
	}
	return nil
}

// Probe measures the configured block (PX, PY) of frame n in every selected
// plane. For interlaced input the top field is measured. Engine history is
// not touched.
func (f *Filter) Probe(ctx context.Context, n int) ([]*probe.Report, error) {
	if f.closed.Load() {
		return nil, &FrameError{Frame: n, Plane: -1, Err: ErrClosed}
	}

	reports := make([]*probe.Report, 0, len(f.planes))
	for _, pf := range f.planes {
		ff := pf.fields[0]
		r, err := ff.measure(ctx, n)
		if err != nil {
			return nil, &FrameError{Frame: n, Plane: pf.index, Err: err}
		}
		reports = append(reports, r)
	}
	return reports, nil
}

// Close drops all temporal history. Later requests fail with ErrClosed.
func (f *Filter) Close() error {
	if !f.closed.CompareAndSwap(false, true) {
		return nil
	}
	for _, pf := range f.planes {
		for _, ff := range pf.fields {
			ff.release()
		}
	}
	logging.Logf("fft3d: filter %s closed", f.id)
	return nil
}

func (pf *planeFilter) process(ctx context.Context, n int) (*plane.Plane, error) {
	out := make([]*plane.Plane, len(pf.fields))
	for i, ff := range pf.fields {
		p, err := ff.process(ctx, n)
		if err != nil {
			return nil, err
		}
		out[i] = p
	}
	if len(out) == 1 {
		return out[0], nil
	}
	return plane.Weave(out[0], out[1])
}

func (ff *fieldFilter) process(ctx context.Context, n int) (*plane.Plane, error) {
	eng, err := ff.engineFor(ctx)
	if err != nil {
		return nil, err
	}
	if eng.Ordered() {
		ff.order.Lock()
		defer ff.order.Unlock()
	}

	s, err := eng.Filter(ctx, n, ff.src)
	if err != nil {
		return nil, err
	}
	return ff.inv.Reconstruct(ctx, s, ff.format)
}

func (ff *fieldFilter) config() spectral.Config {
	cfg := ff.f.params.spectralConfig()
	m, idx := ff.f.metrics, ff.index
	cfg.OnRestart = func() { m.restart(idx) }
	return cfg
}

func (ff *fieldFilter) engineFor(ctx context.Context) (spectral.Engine, error) {
	ff.mu.Lock()
	defer ff.mu.Unlock()

	if ff.engine != nil {
		return ff.engine, nil
	}

	cfg := ff.config()
	if ff.f.params.PFactor != 0 {
		pattern, err := ff.measurePattern(ctx)
		if err != nil {
			return nil, err
		}
		cfg.Pattern = pattern
	}

	eng, err := spectral.New(ff.bank, ff.format, cfg)
	if err != nil {
		return nil, err
	}
	ff.engine = eng
	return eng, nil
}

// measurePattern estimates the noise pattern from the configured block of
// frame PFrame.
func (ff *fieldFilter) measurePattern(ctx context.Context) ([]float64, error) {
	p := ff.f.params
	pr, err := ff.prober()
	if err != nil {
		return nil, err
	}
	pl, err := ff.src.Plane(ctx, p.PFrame)
	if err != nil {
		return nil, err
	}
	bx, by, err := pr.Locate(ctx, pl, p.PX, p.PY)
	if err != nil {
		return nil, err
	}
	blk, err := pr.Block(pl, bx, by)
	if err != nil {
		return nil, err
	}

	an := pr.Analyzer()
	psd := an.PSD(blk)
	logging.Logf("fft3d: filter %s plane %d: noise pattern from frame %d block (%d,%d), sigma=%.3f",
		ff.f.id, ff.index, p.PFrame, bx, by, an.Sigma(an.NoisePower(psd)))
	return an.Pattern(psd, p.PFactor), nil
}

func (ff *fieldFilter) measure(ctx context.Context, n int) (*probe.Report, error) {
	ff.mu.Lock()
	pr, err := ff.prober()
	ff.mu.Unlock()
	if err != nil {
		return nil, err
	}
	pl, err := ff.src.Plane(ctx, n)
	if err != nil {
		return nil, err
	}
	return pr.Measure(ctx, pl, ff.f.params.PX, ff.f.params.PY)
}

// prober must be called with mu held.
func (ff *fieldFilter) prober() (*probe.Probe, error) {
	if ff.probe != nil {
		return ff.probe, nil
	}
	model, err := spectral.NewModel(ff.bank, ff.format, ff.config())
	if err != nil {
		return nil, err
	}
	pr, err := probe.New(ff.fwd, model, ff.format, ff.f.params.PCutoff)
	if err != nil {
		return nil, err
	}
	ff.probe = pr
	return pr, nil
}

func (ff *fieldFilter) release() {
	ff.mu.Lock()
	defer ff.mu.Unlock()
	if ff.engine != nil {
		ff.engine.Release()
	}
}
