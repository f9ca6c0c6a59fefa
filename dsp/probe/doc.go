// Package probe inspects the spectrum of a single block for tuning.
//
// It also measures the noise of a quiet block and turns it into the
// per-coefficient noise pattern used in place of a flat sigma. Nothing here
// touches the history of a running engine.
package probe
