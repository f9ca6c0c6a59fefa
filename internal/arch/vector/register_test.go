package vector

import (
	"math/rand"
	"slices"
	"testing"

	"github.com/cwbudde/fft3dfilter/internal/arch/generic"
	"github.com/cwbudde/fft3dfilter/internal/arch/registry"
	"github.com/cwbudde/fft3dfilter/internal/cpu"
	"github.com/cwbudde/fft3dfilter/internal/testutil"
)

func lookup(t *testing.T, f cpu.Features) *registry.OpEntry {
	t.Helper()
	cpu.SetForcedFeatures(f)
	t.Cleanup(cpu.ResetDetection)

	entry := registry.Global.Lookup(cpu.DetectFeatures())
	if entry == nil {
		t.Fatalf("no kernel set for %+v", f)
	}
	return entry
}

func TestForcedFeaturesSwitchKernelSet(t *testing.T) {
	tests := []struct {
		name     string
		features cpu.Features
		want     string
	}{
		{"force generic", cpu.Features{HasSSE2: true, HasAVX2: true, ForceGeneric: true}, "generic"},
		{"no simd", cpu.Features{}, "generic"},
		{"sse2", cpu.Features{HasSSE2: true}, "vecmath-sse2"},
		{"avx2", cpu.Features{HasSSE2: true, HasAVX2: true}, "vecmath-sse2"},
		{"neon", cpu.Features{HasNEON: true}, "vecmath-neon"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			entry := lookup(t, tc.features)
			if tc.want == "generic" {
				if entry.Wiener == nil || entry.SIMDLevel != cpu.SIMDNone {
					t.Fatalf("got %s at %v, want the portable set", entry.Name, entry.SIMDLevel)
				}
				return
			}
			if entry.Name != tc.want {
				t.Fatalf("got %s, want %s", entry.Name, tc.want)
			}
		})
	}
}

func randomBlock(seed int64, n int) ([]complex128, []float64) {
	rng := rand.New(rand.NewSource(seed))
	data := make([]complex128, n)
	aux := make([]float64, n)
	for k := range data {
		data[k] = complex(rng.NormFloat64()*20, rng.NormFloat64()*20)
		aux[k] = rng.Float64() * 100
	}
	data[n/2] = 0
	return data, aux
}

func TestMatchesGeneric(t *testing.T) {
	const n = 8 * 8 * 3

	t.Run("wiener", func(t *testing.T) {
		data, noise := randomBlock(1, n)
		want := slices.Clone(data)
		generic.Wiener(want, noise, 0.1)
		Wiener(data, noise, 0.1)
		testutil.RequireComplexNearlyEqual(t, data, want, 1e-9)
	})

	t.Run("sharpen", func(t *testing.T) {
		data, weight := randomBlock(2, n)
		want := slices.Clone(data)
		generic.Sharpen(want, weight, 4, 20)
		Sharpen(data, weight, 4, 20)
		testutil.RequireComplexNearlyEqual(t, data, want, 1e-9)
	})

	t.Run("dehalo", func(t *testing.T) {
		data, weight := randomBlock(3, n)
		want := slices.Clone(data)
		generic.Dehalo(want, weight, 50)
		Dehalo(data, weight, 50)
		testutil.RequireComplexNearlyEqual(t, data, want, 1e-9)
	})
}

func TestScratchReuseAcrossSizes(t *testing.T) {
	for _, n := range []int{64, 7, 300, 1} {
		data, noise := randomBlock(int64(n), n)
		want := slices.Clone(data)
		generic.Wiener(want, noise, 0)
		Wiener(data, noise, 0)
		testutil.RequireComplexNearlyEqual(t, data, want, 1e-9)
	}
}
