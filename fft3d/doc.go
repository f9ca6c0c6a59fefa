// Package fft3d assembles the block transform, spectral engine and
// reconstruction stages into a filter over a clip of planar frames.
//
// A Filter validates its Params once, then builds per plane (and per field
// when interlaced) a window bank, forward and inverse transforms and a
// spectral engine. Engines with temporal state are driven in frame order;
// stateless ones may filter frames concurrently.
//
//	f, err := fft3d.New(clip, fft3d.WithSigma(3), fft3d.WithTemporal(1))
//	if err != nil {
//		return err
//	}
//	defer f.Close()
//	out, err := f.Process(ctx, 0)
package fft3d
