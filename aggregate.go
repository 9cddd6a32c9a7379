package pst

import (
	"cmp"
	"fmt"
)

// Monoid defines how values are aggregated up the tree.
//
// For values s, t, u, Add has to be associative:
//
//	Add(Add(s, t), u) == Add(s, Add(t, u))
//
// and Zero has to be the neutral element:
//
//	Add(Zero(), s) == s == Add(s, Zero())
//
// Add need not be commutative. The left operand always covers the lower
// indices.
type Monoid[T any] interface {
	Zero() T
	Add(left, right T) T
}

// Group is a Monoid with an inverse operation, i.e.
//
//	Subtract(Add(s, t), t) == s
//
// Groups enable computing the difference between two versions.
type Group[T any] interface {
	Monoid[T]
	Subtract(a, b T) T
}

// Number is a type constraint for the built-in Sum group.
type Number interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uintptr |
		~float32 | ~float64
}

// Sum adds up numeric values.
type Sum[N Number] struct{}

func (Sum[N]) Zero() N             { return 0 }
func (Sum[N]) Add(left, right N) N { return left + right }
func (Sum[N]) Subtract(a, b N) N   { return a - b }

// Min selects the smallest value. Identity has to be greater than or equal to
// every value inserted, e.g. math.MaxInt.
type Min[N cmp.Ordered] struct {
	Identity N
}

func (m Min[N]) Zero() N             { return m.Identity }
func (m Min[N]) Add(left, right N) N { return min(left, right) }

// Max selects the greatest value. Identity has to be less than or equal to
// every value inserted, e.g. math.MinInt.
type Max[N cmp.Ordered] struct {
	Identity N
}

func (m Max[N]) Zero() N             { return m.Identity }
func (m Max[N]) Add(left, right N) N { return max(left, right) }

// QueryRange aggregates all values set in the index range [lo, hi) under
// version. Versions beyond the latest one are clamped. An empty range yields
// the monoid's Zero.
func (t *Tree[T]) QueryRange(lo, hi int, version int) (T, error) {
	var zero T
	if t.cfg.Monoid == nil {
		return zero, ErrNoAggregation
	}
	if err := t.checkRange(lo, hi); err != nil {
		return zero, err
	}
	root, _, err := t.root(version)
	if err != nil {
		return zero, err
	}
	return aggregate(t.cfg.Monoid, root, t.left, t.right, lo, hi), nil
}

// QueryRangeBetween returns the contribution of versions (from, to] to the
// aggregate of index range [lo, hi), i.e. the aggregate under version to
// minus the aggregate under version from. It requires the tree's monoid to
// be a Group.
//
// If every index is set at most once, this counts exactly the values
// inserted by versions from+1 … to (the classic "chairman tree" query).
// Overwriting an index subtracts the overwritten value.
func (t *Tree[T]) QueryRangeBetween(lo, hi int, from, to int) (T, error) {
	var zero T
	g, ok := t.cfg.Monoid.(Group[T])
	if !ok {
		return zero, fmt.Errorf("%w: monoid is not a group", ErrNoAggregation)
	}
	if from > to {
		return zero, fmt.Errorf("%w: version %d after version %d", ErrIllegalArguments, from, to)
	}
	upper, err := t.QueryRange(lo, hi, to)
	if err != nil {
		return zero, err
	}
	lower, err := t.QueryRange(lo, hi, from)
	if err != nil {
		return zero, err
	}
	return g.Subtract(upper, lower), nil
}

// aggregate collects the summaries of node n, covering [nlo, nhi), which
// intersect [lo, hi).
func aggregate[T any](m Monoid[T], n *node[T], nlo, nhi int, lo, hi int) T {
	if n == nil || hi <= nlo || nhi <= lo {
		return m.Zero()
	}
	if lo <= nlo && nhi <= hi {
		return n.summary
	}
	mid := midpoint(nlo, nhi)
	return m.Add(aggregate(m, n.left, nlo, mid, lo, hi), aggregate(m, n.right, mid, nhi, lo, hi))
}

func (t *Tree[T]) checkRange(lo, hi int) error {
	if lo < t.left || hi > t.right || lo > hi {
		return fmt.Errorf("%w: [%d, %d) not within [%d, %d)", ErrInvalidIndex, lo, hi, t.left, t.right)
	}
	return nil
}
