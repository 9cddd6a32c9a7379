package pst

import (
	"fmt"
	"reflect"
)

// Check validates structural tree invariants for all versions.
//
// It verifies the shape of every version, consistency of summaries (if the
// tree aggregates values) and that each version k differs from version k-1
// by a single root-to-leaf path. This checker walks every version and is
// meant to be used in tests.
func (t *Tree[T]) Check() error {
	if t == nil {
		return fmt.Errorf("%w: nil tree", ErrIllegalArguments)
	}
	if len(t.versions) == 0 {
		return fmt.Errorf("%w: tree has no version 0", ErrIllegalArguments)
	}
	if root := t.versions[0]; root == nil || !root.isEmpty() {
		return fmt.Errorf("%w: version 0 must be empty", ErrIllegalArguments)
	}
	for v, root := range t.versions {
		if root == nil {
			return fmt.Errorf("%w: version %d has no root", ErrIllegalArguments, v)
		}
		if err := t.checkNode(root, t.left, t.right); err != nil {
			return fmt.Errorf("version %d: %w", v, err)
		}
		if v > 0 {
			if err := t.checkPathCopy(root, t.versions[v-1]); err != nil {
				return fmt.Errorf("version %d: %w", v, err)
			}
		}
	}
	return nil
}

func (t *Tree[T]) checkNode(n *node[T], lo, hi int) error {
	if n == nil {
		return nil
	}
	if hi-lo <= 1 {
		if n.left != nil || n.right != nil {
			return fmt.Errorf("%w: leaf %d has children", ErrIllegalArguments, lo)
		}
		if t.cfg.Monoid != nil && n.hasValue && !reflect.DeepEqual(n.summary, n.value) {
			return fmt.Errorf("%w: leaf %d summary differs from value", ErrIllegalArguments, lo)
		}
		return nil
	}
	if n.hasValue {
		return fmt.Errorf("%w: inner node [%d, %d) holds a value", ErrIllegalArguments, lo, hi)
	}
	mid := midpoint(lo, hi)
	if err := t.checkNode(n.left, lo, mid); err != nil {
		return err
	}
	if err := t.checkNode(n.right, mid, hi); err != nil {
		return err
	}
	if m := t.cfg.Monoid; m != nil {
		if sum := m.Add(n.left.sum(m), n.right.sum(m)); !reflect.DeepEqual(sum, n.summary) {
			return fmt.Errorf("%w: inner node [%d, %d) has stale summary", ErrIllegalArguments, lo, hi)
		}
	}
	return nil
}

// checkPathCopy asserts that n differs from prev in exactly one child on every
// level, and that the other child is shared.
func (t *Tree[T]) checkPathCopy(n, prev *node[T]) error {
	lo, hi := t.left, t.right
	for hi-lo > 1 {
		if n == prev {
			return fmt.Errorf("%w: node of [%d, %d) not copied", ErrIllegalArguments, lo, hi)
		}
		var prevLeft, prevRight *node[T]
		if prev != nil {
			prevLeft, prevRight = prev.left, prev.right
		}
		mid := midpoint(lo, hi)
		switch {
		case n.left != prevLeft && n.right == prevRight:
			n, prev, hi = n.left, prevLeft, mid
		case n.right != prevRight && n.left == prevLeft:
			n, prev, lo = n.right, prevRight, mid
		default:
			return fmt.Errorf("%w: [%d, %d) does not share exactly one child", ErrIllegalArguments, lo, hi)
		}
	}
	if n == nil || n == prev || !n.hasValue {
		return fmt.Errorf("%w: no fresh leaf at %d", ErrIllegalArguments, lo)
	}
	return nil
}
