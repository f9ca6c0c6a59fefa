// Package cpu reports the SIMD capabilities used to pick spectral kernels.
//
// Detection runs once, lazily, and is cached. Tests can pin a feature set
// with SetForcedFeatures to exercise the generic kernels on any machine.
package cpu

import "sync"

// SIMDLevel names an instruction set extension a kernel may require.
type SIMDLevel int

const (
	SIMDNone SIMDLevel = iota
	SIMDSSE2
	SIMDAVX2
	SIMDNEON
)

func (s SIMDLevel) String() string {
	switch s {
	case SIMDNone:
		return "None"
	case SIMDSSE2:
		return "SSE2"
	case SIMDAVX2:
		return "AVX2"
	case SIMDNEON:
		return "NEON"
	default:
		return "Unknown"
	}
}

// Features describes the host processor.
type Features struct {
	HasSSE2 bool
	HasAVX2 bool
	HasNEON bool

	// ForceGeneric restricts kernel selection to SIMDNone.
	ForceGeneric bool

	Architecture string
}

// Best returns the most capable level supported by f.
func (f Features) Best() SIMDLevel {
	switch {
	case f.ForceGeneric:
		return SIMDNone
	case f.HasAVX2:
		return SIMDAVX2
	case f.HasNEON:
		return SIMDNEON
	case f.HasSSE2:
		return SIMDSSE2
	default:
		return SIMDNone
	}
}

var (
	detected    Features
	detectOnce  sync.Once
	detectMutex sync.Mutex

	forced      *Features
	forcedMutex sync.RWMutex
)

// DetectFeatures returns the cached features of the current processor.
func DetectFeatures() Features {
	forcedMutex.RLock()
	f := forced
	forcedMutex.RUnlock()

	if f != nil {
		return *f
	}

	detectMutex.Lock()
	defer detectMutex.Unlock()

	detectOnce.Do(func() {
		detected = detectFeaturesImpl()
	})

	return detected
}

// SetForcedFeatures overrides detection. Intended for tests.
func SetForcedFeatures(f Features) {
	forcedMutex.Lock()
	defer forcedMutex.Unlock()

	pinned := f
	forced = &pinned
}

// ResetDetection drops forced features and the detection cache.
func ResetDetection() {
	forcedMutex.Lock()
	forced = nil
	forcedMutex.Unlock()

	detectMutex.Lock()
	detectOnce = sync.Once{}
	detected = Features{}
	detectMutex.Unlock()
}

// Supports reports whether features allow a kernel that needs level.
func Supports(features Features, level SIMDLevel) bool {
	if features.ForceGeneric {
		return level == SIMDNone
	}

	switch level {
	case SIMDNone:
		return true
	case SIMDSSE2:
		return features.HasSSE2
	case SIMDAVX2:
		return features.HasAVX2
	case SIMDNEON:
		return features.HasNEON
	default:
		return false
	}
}
