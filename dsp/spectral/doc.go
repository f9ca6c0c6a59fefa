// Package spectral filters block spectra.
//
// A Model holds everything derived once from the parameters and the window
// bank: the per-coefficient noise power, the gain floor, the degrid
// reference spectrum and the post-filter corrections. Engines wrap a Model
// with a temporal strategy:
//
//	bt = -1  sharpen only
//	bt =  0  recursive Kalman estimate per coefficient
//	bt =  1  Wiener gain on the current frame
//	bt >= 2  Wiener gain on the temporal DFT of bt neighbouring frames
//
// Noise parameters are given on the 8-bit sample scale. A level p becomes
// the coefficient power (p*unit)^2 * sum(analysis^2), where unit is the size
// of one 8-bit step in the plane's format.
package spectral
