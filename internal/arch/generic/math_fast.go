//go:build fastmath

package generic

import "github.com/meko-christian/algo-approx"

const variant = "+fastmath"

// Sqrt is the square root used by the sharpen gain; this build uses the
// approximation.
func Sqrt(x float64) float64 {
	return approx.FastSqrt(x)
}
