// Package registry collects the per-coefficient spectral kernels and picks
// the best implementation for the running processor.
package registry

import (
	"sync"

	"github.com/cwbudde/fft3dfilter/internal/cpu"
)

// WienerFn scales every coefficient by max((psd-noise)/psd, floor).
type WienerFn func(data []complex128, noise []float64, floor float64)

// SharpenFn multiplies every coefficient by
// 1 + weight*sqrt(psd*smax/((psd+smin)*(psd+smax))).
type SharpenFn func(data []complex128, weight []float64, smin, smax float64)

// DehaloFn multiplies every coefficient by (psd+ht)/((psd+ht)+weight*psd).
type DehaloFn func(data []complex128, weight []float64, ht float64)

// KalmanState is the per-coefficient recursive estimate. Covar and Process
// carry the real and imaginary component variances in their real and
// imaginary parts.
type KalmanState struct {
	Last    []complex128
	Covar   []complex128
	Process []complex128
}

// KalmanFn advances state with the spectrum cur and overwrites cur with the
// new estimate. A component whose squared innovation exceeds ratio2*noise
// resets the state of that coefficient.
type KalmanFn func(cur []complex128, st KalmanState, noise []float64, ratio2, floor float64)

// OpEntry is one registered kernel set.
type OpEntry struct {
	Name      string
	SIMDLevel cpu.SIMDLevel
	Priority  int

	Wiener  WienerFn
	Sharpen SharpenFn
	Dehalo  DehaloFn
	Kalman  KalmanFn
}

// OpRegistry stores available implementations.
type OpRegistry struct {
	mu      sync.RWMutex
	entries []OpEntry
	sorted  bool
}

// Global is the default kernel registry.
var Global = &OpRegistry{}

// Register adds an implementation entry.
func (r *OpRegistry) Register(entry OpEntry) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.entries = append(r.entries, entry)
	r.sorted = false
}

// Lookup returns the highest-priority implementation supported by features.
func (r *OpRegistry) Lookup(features cpu.Features) *OpEntry {
	r.mu.Lock()
	if !r.sorted {
		r.sortByPriority()
		r.sorted = true
	}
	r.mu.Unlock()

	r.mu.RLock()
	defer r.mu.RUnlock()

	for i := range r.entries {
		entry := &r.entries[i]
		if cpu.Supports(features, entry.SIMDLevel) {
			return entry
		}
	}

	return nil
}

func (r *OpRegistry) sortByPriority() {
	for i := 1; i < len(r.entries); i++ {
		key := r.entries[i]
		j := i - 1
		for j >= 0 && r.entries[j].Priority < key.Priority {
			r.entries[j+1] = r.entries[j]
			j--
		}
		r.entries[j+1] = key
	}
}

// ListEntries returns a copy of entries for tests/debugging.
func (r *OpRegistry) ListEntries() []OpEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entries := make([]OpEntry, len(r.entries))
	copy(entries, r.entries)
	return entries
}
