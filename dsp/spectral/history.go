package spectral

import (
	"context"
	"sync"

	"github.com/cwbudde/fft3dfilter/dsp/blockfft"
)

// History is a bounded cache of unfiltered frame spectra keyed by frame
// index. Stored spectra are never modified. When full, the entry farthest
// from the requested frame is evicted.
type History struct {
	mu       sync.Mutex
	capacity int
	frames   map[int]*blockfft.Spectra
	misses   int
}

// NewHistory returns an empty history holding up to capacity frames.
func NewHistory(capacity int) *History {
	return &History{capacity: max(capacity, 1), frames: make(map[int]*blockfft.Spectra)}
}

// Get returns the spectra of frame n, fetching from src on a miss.
func (h *History) Get(ctx context.Context, n int, src Source) (*blockfft.Spectra, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if s, ok := h.frames[n]; ok {
		return s, nil
	}

	s, err := src.Spectra(ctx, n)
	if err != nil {
		return nil, err
	}
	h.misses++

	for len(h.frames) >= h.capacity {
		far, dist := 0, -1
		for k := range h.frames {
			d := k - n
			if d < 0 {
				d = -d
			}
			if d > dist || (d == dist && k < far) {
				far, dist = k, d
			}
		}
		delete(h.frames, far)
	}
	h.frames[n] = s

	return s, nil
}

// Len returns the number of cached frames.
func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.frames)
}

// Misses returns how many frames were fetched from a source.
func (h *History) Misses() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.misses
}

// Release drops every cached frame.
func (h *History) Release() {
	h.mu.Lock()
	defer h.mu.Unlock()
	clear(h.frames)
}
