// Package y4m reads and writes YUV4MPEG2 streams as planar frames.
//
// A Reader indexes the frame offsets of an io.ReaderAt once and then serves
// frames in any order, concurrently. A Writer emits the stream header on
// the first frame. Samples wider than 8 bits are stored as 16-bit little
// endian words.
package y4m
