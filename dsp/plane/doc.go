// Package plane holds single-component sample rasters and the sample
// formats they are stored in.
//
// Samples are kept as float64 in the native units of their format, so an
// 8-bit plane stores values in [0, 255] and a 32-bit float plane stores the
// host's nominal [0, 1] range. Quantize maps a processed value back into the
// format's representable set.
package plane
