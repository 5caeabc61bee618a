// Package layout places a node's children as mutually-repelling bubbles
// orbiting the center node.
//
// # Algorithm
//
// The engine runs a positional-only relaxation: a fixed number of
// iterations, each applying pairwise separation, a weak central
// attraction, and a center-exclusion push. There is no velocity or
// damping; a one-shot layout does not need a full physical simulation,
// and a fixed budget keeps the cost bounded and the call synchronous.
//
// Children that already carry a cached position are seeded from it, so
// re-running the layout after new children arrive moves only what must
// move. Given identical inputs and seed the output is deterministic.
//
// # Memoization
//
// Use [Engine] when the layout is recomputed on every render pass: it
// skips the relaxation entirely when the child set, center node, and
// options are unchanged.
package layout
