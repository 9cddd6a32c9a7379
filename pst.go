package pst

/*
BSD 3-Clause License

Copyright (c) Norbert Pillmayer

Please refer to the License file in the repository root.

*/

import (
	"fmt"
)

// Tree is a persistent segment tree over the index range [left, right).
//
// Every call to Insert appends a new version. Version 0 is the empty tree,
// version k is the result of the k-th insert. Versions remain valid for the
// lifetime of the tree; there is no deletion of history.
//
// The zero value is not a valid tree, clients have to use New or
// NewWithConfig.
//
//	Operation     |   Time        |  Space (new nodes)
//	--------------+---------------+-------------------
//	Insert        |   O(log n)    |   O(log n)
//	Query         |   O(log n)    |   –
//	QueryRange    |   O(log n)    |   –
type Tree[T any] struct {
	cfg       Config[T]
	left      int
	right     int
	versions  []*node[T] // root node per version
	allocated int        // total number of nodes ever allocated
}

// Config configures optional behaviour of a tree.
type Config[T any] struct {
	// Monoid aggregates values up the tree. It may be nil, in which case
	// range queries are unavailable.
	Monoid Monoid[T]
}

// New creates a tree for index range [left, right), holding a single empty
// version 0.
func New[T any](left, right int) (*Tree[T], error) {
	return NewWithConfig[T](left, right, Config[T]{})
}

// NewWithConfig creates a tree for index range [left, right), holding a single
// empty version 0, and aggregating values as configured by cfg.
func NewWithConfig[T any](left, right int, cfg Config[T]) (*Tree[T], error) {
	if left >= right || right-left <= 0 { // second check guards against overflow
		return nil, fmt.Errorf("%w: [%d, %d)", ErrInvalidRange, left, right)
	}
	t := &Tree[T]{
		cfg:   cfg,
		left:  left,
		right: right,
	}
	pc := t.builder()
	t.versions = []*node[T]{pc.empty()}
	t.allocated += pc.fresh
	return t, nil
}

func (t *Tree[T]) builder() *pathCopy[T] {
	return &pathCopy[T]{monoid: t.cfg.Monoid}
}

// Config returns a copy of the effective tree configuration.
func (t *Tree[T]) Config() Config[T] {
	return t.cfg
}

// Range returns the index range [left, right) of the tree.
func (t *Tree[T]) Range() (left, right int) {
	return t.left, t.right
}

// Versions returns the number of versions, including the empty version 0.
func (t *Tree[T]) Versions() int {
	return len(t.versions)
}

// Latest returns the number of the most recent version.
func (t *Tree[T]) Latest() int {
	return len(t.versions) - 1
}

// Allocated returns the total number of nodes allocated by the tree, including
// the root of version 0. Without structural sharing this would grow with the
// size of the index range per insert; with path copying it grows by at most
// Depth() per insert.
func (t *Tree[T]) Allocated() int {
	return t.allocated
}

// Depth returns the maximum number of nodes on a root-to-leaf path, i.e. the
// maximum number of nodes a single insert allocates.
func (t *Tree[T]) Depth() int {
	depth, size := 1, t.right-t.left
	for size > 1 {
		size -= size / 2 // upper half is never smaller than the lower half
		depth++
	}
	return depth
}

// pathLength returns the number of nodes on the path from the root to the
// leaf of pos.
func (t *Tree[T]) pathLength(pos int) int {
	length, lo, hi := 1, t.left, t.right
	for hi-lo > 1 {
		if mid := midpoint(lo, hi); pos < mid {
			hi = mid
		} else {
			lo = mid
		}
		length++
	}
	return length
}

// Insert sets the value at index pos and creates a new version. It returns
// the number of the new version.
//
// Only the nodes along the path to pos are allocated; all other subtrees are
// shared with the previous version. The new version is published after the
// path copy has completed.
func (t *Tree[T]) Insert(pos int, value T) (int, error) {
	if err := t.checkIndex(pos); err != nil {
		return 0, err
	}
	last := t.versions[len(t.versions)-1]
	pc := t.builder()
	root := pc.insert(last, t.left, t.right, pos, value)
	t.versions = append(t.versions, root)
	t.allocated += pc.fresh
	tracer().Debugf("pst: insert @%d created version %d with %d new nodes", pos, t.Latest(), pc.fresh)
	return t.Latest(), nil
}

// Query returns the value at index pos under version. If version is greater
// than the latest version, the latest version is used.
//
// If no value has been set for pos under version, ok will be false; this is
// not an error.
func (t *Tree[T]) Query(pos int, version int) (value T, ok bool, err error) {
	if err = t.checkIndex(pos); err != nil {
		return
	}
	root, _, err := t.root(version)
	if err != nil {
		return
	}
	value, ok = t.find(root, pos)
	return
}

// find descends from root to the leaf of pos. Descent stops early at a missing
// child, meaning pos has never been set under this version.
func (t *Tree[T]) find(root *node[T], pos int) (value T, ok bool) {
	n, lo, hi := root, t.left, t.right
	for hi-lo > 1 && n != nil {
		if mid := midpoint(lo, hi); pos < mid {
			hi = mid
			n = n.left
		} else {
			lo = mid
			n = n.right
		}
	}
	if n == nil || !n.hasValue {
		return
	}
	return n.value, true
}

// Modified returns the index which has been set by version. Version 0 does not
// modify any index, in which case ok is false.
//
// The position is reconstructed by comparing the versions node-wise: the path
// copy of version v differs from version v-1 in exactly one child per level.
func (t *Tree[T]) Modified(version int) (pos int, ok bool, err error) {
	root, version, err := t.root(version)
	if err != nil || version == 0 {
		return
	}
	prev := t.versions[version-1]
	lo, hi := t.left, t.right
	for hi-lo > 1 {
		var prevLeft, prevRight *node[T]
		if prev != nil {
			prevLeft, prevRight = prev.left, prev.right
		}
		mid := midpoint(lo, hi)
		if root.left != prevLeft {
			root, prev, hi = root.left, prevLeft, mid
		} else {
			assert(root.right != prevRight, "path copy did not modify any child")
			root, prev, lo = root.right, prevRight, mid
		}
	}
	return lo, true, nil
}

// root returns the root node for a version, clamping version to the latest
// one. It returns the effective version as well.
func (t *Tree[T]) root(version int) (*node[T], int, error) {
	if version < 0 {
		return nil, 0, fmt.Errorf("%w: %d", ErrInvalidVersion, version)
	}
	if version > t.Latest() {
		tracer().Debugf("pst: clamping version %d to %d", version, t.Latest())
		version = t.Latest()
	}
	return t.versions[version], version, nil
}

func (t *Tree[T]) checkIndex(pos int) error {
	if pos < t.left || pos >= t.right {
		return fmt.Errorf("%w: %d not in [%d, %d)", ErrInvalidIndex, pos, t.left, t.right)
	}
	return nil
}
