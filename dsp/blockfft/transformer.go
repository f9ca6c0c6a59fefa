package blockfft

import (
	"fmt"
	"sync"

	"github.com/cwbudde/fft3dfilter/internal/logging"
)

// transformer runs separable 2D transforms on bw*bh row-major blocks.
// It owns scratch memory and must not be shared between goroutines.
type transformer struct {
	bw, bh int
	row    fft1
	col    fft1
	colBuf []complex128
}

func newTransformer(bw, bh int) (*transformer, error) {
	row, err := newFFT1(bw)
	if err != nil {
		return nil, err
	}
	col, err := newFFT1(bh)
	if err != nil {
		return nil, err
	}
	return &transformer{bw: bw, bh: bh, row: row, col: col, colBuf: make([]complex128, bh)}, nil
}

func (t *transformer) forward(block []complex128) error {
	return t.apply(block, fft1.Forward)
}

func (t *transformer) inverse(block []complex128) error {
	return t.apply(block, fft1.Inverse)
}

func (t *transformer) apply(block []complex128, op func(fft1, []complex128, []complex128) error) error {
	for j := range t.bh {
		r := block[j*t.bw : (j+1)*t.bw]
		if err := op(t.row, r, r); err != nil {
			return fmt.Errorf("blockfft: row transform: %w", err)
		}
	}

	if t.bh == 1 {
		return nil
	}

	for i := range t.bw {
		for j := range t.bh {
			t.colBuf[j] = block[j*t.bw+i]
		}
		if err := op(t.col, t.colBuf, t.colBuf); err != nil {
			return fmt.Errorf("blockfft: column transform: %w", err)
		}
		for j := range t.bh {
			block[j*t.bw+i] = t.colBuf[j]
		}
	}

	return nil
}

type planKey struct{ bw, bh int }

// planCache pools transformers per block size.
type planCache struct {
	mu    sync.Mutex
	pools map[planKey]*sync.Pool
}

var (
	cache    *planCache
	cacheMu  sync.Mutex
	initOnce sync.Once
	initErr  error
)

// Init prepares the shared plan cache. It runs once per process; later
// calls return the first result. Forward and Inverse constructors call it.
func Init() error {
	cacheMu.Lock()
	defer cacheMu.Unlock()

	initOnce.Do(func() {
		if _, err := newFFT1(8); err != nil {
			initErr = err
			return
		}
		cache = &planCache{pools: make(map[planKey]*sync.Pool)}
		logging.Logf("blockfft: plan cache ready")
	})

	return initErr
}

// Shutdown drops every pooled plan. A later Init starts a fresh cache.
func Shutdown() {
	cacheMu.Lock()
	defer cacheMu.Unlock()

	cache = nil
	initErr = nil
	initOnce = sync.Once{}
}

func currentCache() (*planCache, error) {
	if err := Init(); err != nil {
		return nil, err
	}
	cacheMu.Lock()
	defer cacheMu.Unlock()
	return cache, nil
}

func acquire(bw, bh int) (*transformer, error) {
	c, err := currentCache()
	if err != nil {
		return nil, err
	}

	p := c.pool(planKey{bw, bh})
	if t, ok := p.Get().(*transformer); ok {
		return t, nil
	}
	return newTransformer(bw, bh)
}

func release(t *transformer) {
	if t == nil {
		return
	}
	c, err := currentCache()
	if err != nil {
		return
	}
	c.pool(planKey{t.bw, t.bh}).Put(t)
}

func (c *planCache) pool(k planKey) *sync.Pool {
	c.mu.Lock()
	defer c.mu.Unlock()

	p, ok := c.pools[k]
	if !ok {
		p = &sync.Pool{}
		c.pools[k] = p
	}
	return p
}
