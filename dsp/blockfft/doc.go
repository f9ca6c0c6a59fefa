// Package blockfft runs the 2D block transforms of the filter pipeline.
//
// Forward cuts a plane into the blocks of an overlap.Grid, applies the
// analysis window and transforms every block; Inverse transforms filtered
// spectra back, applies the synthesis window, overlap-adds the blocks and
// divides by the window divisor. Power-of-two lengths use algo-fft plans,
// other lengths fall back to gonum's mixed-radix FFT. Plans are pooled per
// block size and shared by all transforms in the process.
package blockfft
