// Package generator manufactures randomized stream content for a test plan:
// typed data buffers under size-multiple constraints, ascending positional
// labels, and opaque string messages.
//
// All draws come from a caller-supplied *rand.Rand, so a fixed seed yields a
// fixed plan.
//
// # Element counts
//
// Each buffer's element count is drawn from [minBufferSize/w, maxBufferSize/w]
// and rounded up to a multiple of bufferMultiple. When the draw range holds at
// least one such multiple the result is clamped into the legal window
// [ceil(a/m)*m, floor(b/m)*m]; otherwise the draw bounds win and the count is
// clamped into [a, b].
//
// The last buffer is padded so the grand total is a multiple of
// totalMultiple. Padding grows in steps of bufferMultiple whenever that can
// reach the target, keeping both multiples intact.
package generator
