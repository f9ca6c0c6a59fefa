//go:build !fastmath

package generic

import "math"

const variant = ""

// Sqrt is the square root used by the sharpen gain.
func Sqrt(x float64) float64 {
	return math.Sqrt(x)
}
