package pst

// node is a cell of the binary partition of an index range.
//
// Leaf nodes cover exactly one index and may hold a value. Inner nodes hold
// references to their children; children are shared between all versions
// which did not modify them. A node is never mutated after the insert which
// created it has returned, and only the pathCopy builder allocates nodes.
type node[T any] struct {
	left     *node[T] // covers the lower half of the range, may be nil
	right    *node[T] // covers the upper half of the range, may be nil
	value    T
	hasValue bool
	summary  T // aggregate of the subtree; maintained only with a monoid
}

// addUp is called for an inner node after a fresh child has been linked.
// Inner nodes never hold a leaf value. If the tree aggregates values, the
// summary is recomputed from the children.
func (n *node[T]) addUp(m Monoid[T]) {
	var zero T
	n.value, n.hasValue = zero, false
	if m == nil {
		return
	}
	n.summary = m.Add(n.left.sum(m), n.right.sum(m))
}

// sum returns the summary of a (possibly nil) subtree.
func (n *node[T]) sum(m Monoid[T]) T {
	if n == nil {
		return m.Zero()
	}
	return n.summary
}

func (n *node[T]) isEmpty() bool {
	return n.left == nil && n.right == nil && !n.hasValue
}

// --- Path copy -------------------------------------------------------------

// pathCopy allocates the nodes of a single new version.
//
// It is the only place where nodes are created. Nodes are completely set up
// before they are handed out, so no code path ever writes to a node which is
// reachable from a published version.
type pathCopy[T any] struct {
	monoid Monoid[T]
	fresh  int // number of nodes allocated by this builder
}

// empty creates a node without children and without a value.
func (pc *pathCopy[T]) empty() *node[T] {
	pc.fresh++
	n := &node[T]{}
	if pc.monoid != nil {
		n.summary = pc.monoid.Zero()
	}
	return n
}

// leaf creates a leaf node holding value.
func (pc *pathCopy[T]) leaf(value T) *node[T] {
	pc.fresh++
	return &node[T]{value: value, hasValue: true, summary: value}
}

// inner creates an inner node linking two children, at least one of them
// being fresh.
func (pc *pathCopy[T]) inner(left, right *node[T]) *node[T] {
	pc.fresh++
	n := &node[T]{left: left, right: right}
	n.addUp(pc.monoid)
	return n
}

// insert builds the path from the root of range [lo, hi) down to the leaf
// for pos. prev is the corresponding node of the previous version, or nil if
// the previous version has no node for this sub-range. Siblings of the path
// are taken over from prev by reference.
func (pc *pathCopy[T]) insert(prev *node[T], lo, hi, pos int, value T) *node[T] {
	assert(lo <= pos && pos < hi, "path copy: position outside of sub-range")
	if hi-lo <= 1 {
		return pc.leaf(value)
	}
	var prevLeft, prevRight *node[T]
	if prev != nil {
		prevLeft, prevRight = prev.left, prev.right
	}
	mid := midpoint(lo, hi)
	if pos < mid {
		return pc.inner(pc.insert(prevLeft, lo, mid, pos, value), prevRight)
	}
	return pc.inner(prevLeft, pc.insert(prevRight, mid, hi, pos, value))
}

// midpoint splits [lo, hi) into [lo, mid) and [mid, hi). It does not
// overflow for any range accepted by New.
func midpoint(lo, hi int) int {
	return lo + (hi-lo)/2
}
