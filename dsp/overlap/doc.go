// Package overlap lays a grid of overlapping blocks over a plane and builds
// the analysis and synthesis windows used to cut blocks out of it and put
// them back together.
//
// Block origins start at (-ow, -oh) and advance by bw-ow and bh-oh, so
// adjacent blocks share ow columns and oh rows. Samples that fall outside the
// plane are mirrored. The Bank divisor is the per-sample sum of
// analysis*synthesis over every covering block; dividing the overlap-added
// output by it makes a pass-through round trip an identity.
package overlap
