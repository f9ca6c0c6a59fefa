// Package buffer provides reusable scratch slices for block transforms.
// Forward and inverse transforms borrow one block-sized slab per worker
// from a Pool so that filtering a frame does not allocate per block.
package buffer
