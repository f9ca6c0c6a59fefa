package testutil

import (
	"math"
	"math/rand"
)

// Constant returns a width*height raster filled with value.
func Constant(value float64, width, height int) []float64 {
	out := make([]float64, width*height)
	for i := range out {
		out[i] = value
	}
	return out
}

// Gradient returns a raster ramping from 0 at the top-left corner to
// maxValue at the bottom-right corner.
func Gradient(maxValue float64, width, height int) []float64 {
	out := make([]float64, width*height)
	span := float64(width + height - 2)
	if span <= 0 {
		return out
	}
	for y := range height {
		for x := range width {
			out[y*width+x] = maxValue * float64(x+y) / span
		}
	}
	return out
}

// Checkerboard returns a raster of alternating lo/hi squares of the given cell size.
func Checkerboard(lo, hi float64, cell, width, height int) []float64 {
	out := make([]float64, width*height)
	if cell <= 0 {
		cell = 1
	}
	for y := range height {
		for x := range width {
			if (x/cell+y/cell)%2 == 0 {
				out[y*width+x] = lo
			} else {
				out[y*width+x] = hi
			}
		}
	}
	return out
}

// Noise returns zero-mean gaussian noise with fixed seed and standard deviation sigma.
func Noise(seed int64, sigma float64, length int) []float64 {
	out := make([]float64, length)
	rng := rand.New(rand.NewSource(seed))
	for i := range out {
		out[i] = rng.NormFloat64() * sigma
	}
	return out
}

// Noisy adds seeded gaussian noise to base and clamps to [0, maxValue].
func Noisy(base []float64, seed int64, sigma, maxValue float64) []float64 {
	n := Noise(seed, sigma, len(base))
	for i := range n {
		n[i] = math.Min(math.Max(base[i]+n[i], 0), maxValue)
	}
	return n
}

// Round rounds every sample to the nearest integer.
func Round(data []float64) []float64 {
	out := make([]float64, len(data))
	for i, v := range data {
		out[i] = math.Round(v)
	}
	return out
}

// StdDev returns the population standard deviation of data.
func StdDev(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	mean := 0.0
	for _, v := range data {
		mean += v
	}
	mean /= float64(len(data))
	acc := 0.0
	for _, v := range data {
		d := v - mean
		acc += d * d
	}
	return math.Sqrt(acc / float64(len(data)))
}
