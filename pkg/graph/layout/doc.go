// Package layout positions procedure graph nodes on the canvas.
//
// # Overview
//
// Two independent placement strategies cover the two moments positions are
// needed:
//
//   - [Arrange] recomputes the whole canvas: breadth-first leveling from the
//     graph's entry nodes, then one centered row per level. This is the
//     "tidy up" action after heavy editing.
//   - [ChildPoint] places a single new child relative to its parent without
//     touching any other node, fanning siblings out left and right as the
//     child count grows.
//
// Neither strategy consults the other, and neither matches the initial
// placement a tree expansion produces. Mixing them mid-edit is normal: the
// canvas drifts while nodes are added one by one, and Arrange restores
// order on demand.
//
// # Determinism
//
// Level membership and within-row order follow breadth-first visit order,
// which in turn follows node insertion order and sibling order. The same
// graph always lays out the same way.
package layout
