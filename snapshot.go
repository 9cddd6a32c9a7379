package pst

import "iter"

// Snapshot is a read-only view of a single version of a tree.
//
// Snapshots are cheap: they reference the root of their version and share
// all nodes with the tree. Inserting into the tree does not affect existing
// snapshots.
type Snapshot[T any] struct {
	tree    *Tree[T]
	root    *node[T]
	version int
}

// Snapshot returns a view of version. A version greater than the latest
// version is clamped to the latest one.
func (t *Tree[T]) Snapshot(version int) (Snapshot[T], error) {
	root, version, err := t.root(version)
	if err != nil {
		return Snapshot[T]{}, err
	}
	return Snapshot[T]{tree: t, root: root, version: version}, nil
}

// Version returns the (clamped) version number of the snapshot.
func (s Snapshot[T]) Version() int {
	return s.version
}

// Get returns the value at index pos.
func (s Snapshot[T]) Get(pos int) (value T, ok bool, err error) {
	if s.tree == nil {
		err = ErrIllegalArguments
		return
	}
	if err = s.tree.checkIndex(pos); err != nil {
		return
	}
	value, ok = s.tree.find(s.root, pos)
	return
}

// Each calls f for every index holding a value, in ascending index order.
// Iteration stops as soon as f returns false. Subtrees without any values
// are skipped.
func (s Snapshot[T]) Each(f func(pos int, value T) bool) {
	if s.tree == nil {
		return
	}
	eachNode(s.root, s.tree.left, s.tree.right, f)
}

// All returns an iterator over all (index, value) pairs of the snapshot.
func (s Snapshot[T]) All() iter.Seq2[int, T] {
	return func(yield func(int, T) bool) {
		s.Each(yield)
	}
}

// Len returns the number of indices holding a value.
func (s Snapshot[T]) Len() int {
	cnt := 0
	s.Each(func(int, T) bool {
		cnt++
		return true
	})
	return cnt
}

func eachNode[T any](n *node[T], lo, hi int, f func(int, T) bool) bool {
	if n == nil {
		return true
	}
	if hi-lo <= 1 {
		if n.hasValue {
			return f(lo, n.value)
		}
		return true
	}
	mid := midpoint(lo, hi)
	return eachNode(n.left, lo, mid, f) && eachNode(n.right, mid, hi, f)
}
