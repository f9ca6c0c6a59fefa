package spectral

import (
	"context"
	"sync"

	"github.com/cwbudde/fft3dfilter/dsp/blockfft"
	"github.com/cwbudde/fft3dfilter/internal/arch/registry"
	"github.com/cwbudde/fft3dfilter/internal/logging"
)

// kalmanState is the running estimate of every coefficient of a plane.
type kalmanState struct {
	registry.KalmanState
	next    int               // index of the next frame to feed
	lastOut *blockfft.Spectra // output of frame next-1
}

// kalmanEngine is causal: the output of frame n is a function of frames
// 0..n only. A request behind the state replays from frame 0; a request
// ahead of it feeds the skipped frames first.
type kalmanEngine struct {
	m      *Model
	ratio2 float64

	mu       sync.Mutex
	state    *kalmanState
	restarts int
}

func newKalmanEngine(m *Model) *kalmanEngine {
	return &kalmanEngine{m: m, ratio2: m.cfg.KRatio * m.cfg.KRatio}
}

func (e *kalmanEngine) Ordered() bool { return true }
func (e *kalmanEngine) Model() *Model { return e.m }

func (e *kalmanEngine) Release() {
	e.mu.Lock()
	e.state = nil
	e.mu.Unlock()
}

func (e *kalmanEngine) Filter(ctx context.Context, n int, src Source) (*blockfft.Spectra, error) {
	if err := checkFrame(n, src); err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if st := e.state; st != nil && st.next == n+1 && st.lastOut != nil {
		return st.lastOut.Clone(), nil
	}
	if e.state != nil && n < e.state.next {
		logging.Logf("spectral: kalman history rewinds from frame %d to 0 for frame %d", e.state.next-1, n)
		e.state = nil
		e.restarts++
		e.m.restarted()
	}

	for e.state == nil || e.state.next <= n {
		next := 0
		if e.state != nil {
			next = e.state.next
		}
		s, err := src.Spectra(ctx, next)
		if err != nil {
			e.state = nil
			return nil, err
		}
		if err := e.feed(ctx, s); err != nil {
			e.state = nil
			return nil, err
		}
	}

	return e.state.lastOut.Clone(), nil
}

// feed advances the state by one frame and stores the filtered output.
func (e *kalmanEngine) feed(ctx context.Context, s *blockfft.Spectra) error {
	g := s.Grid
	n := g.BlockLen()

	if e.state == nil {
		st := &kalmanState{}
		st.Last = make([]complex128, len(s.Data))
		st.Covar = make([]complex128, len(s.Data))
		st.Process = make([]complex128, len(s.Data))
		for b := range g.Blocks() {
			blk := s.Block(b)
			f := e.m.degrid.Remove(blk)
			copy(st.Last[b*n:], blk)
			for k, nk := range e.m.noise {
				st.Covar[b*n+k] = complex(nk, nk)
				st.Process[b*n+k] = complex(nk, nk)
			}
			e.m.post.Apply(blk)
			e.m.degrid.Restore(blk, f)
		}
		st.next = 1
		st.lastOut = s
		e.state = st
		return nil
	}

	st := e.state
	err := e.m.forEachBlockRow(ctx, func(by int) error {
		for bx := range g.NX {
			b := by*g.NX + bx
			blk := s.Block(b)
			f := e.m.degrid.Remove(blk)
			e.m.kern.Kalman(blk, registry.KalmanState{
				Last:    st.Last[b*n : (b+1)*n],
				Covar:   st.Covar[b*n : (b+1)*n],
				Process: st.Process[b*n : (b+1)*n],
			}, e.m.noise, e.ratio2, e.m.floor)
			e.m.post.Apply(blk)
			e.m.degrid.Restore(blk, f)
		}
		return nil
	})
	if err != nil {
		return err
	}

	st.next++
	st.lastOut = s
	return nil
}
