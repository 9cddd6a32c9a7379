/*
Package pst implements a persistent segment tree over a fixed index range.

Persistent Index Trees

A Tree maps the integer indices of a half-open range [left, right) to values.
Every Insert overwrites the value at one index and produces a new version.
Versions are never altered afterwards: any version, including the empty
version 0, may be queried for the lifetime of the tree.

Internally the tree is a binary partition of the index range. An insert
allocates new nodes only along the root-to-leaf path of the modified index
(path copying); all other subtrees are referenced from the previous version.
An insert therefore costs O(log n) time and space, where n = right-left,
instead of a copy of the whole array.

	version 0      version 1 (insert 2)
	    ○                 ●
	                     / \
	                    ○   ●
	                         \ …

From a paper by James R. Driscoll, Neil Sarnak, Daniel D. Sleator and Robert E. Tarjan, 1989:

Making Data Structures Persistent

Ordinary data structures are ephemeral in the sense that a change to the
structure destroys the old version, leaving only the new version available for
use. In contrast, a persistent structure allows access to any version, old or
new, at any time. […]

_________________________________________________________________________

Optionally a tree aggregates values bottom-up with a caller-provided Monoid.
Aggregation enables range queries over any version (QueryRange). If the monoid
is a Group, i.e. has an inverse, the contribution of a span of versions to an
index range may be computed as well (QueryRangeBetween).

Trees are not safe for concurrent writers. Published versions are immutable,
so any number of readers may traverse them, as long as inserts are serialized
by the client.

_________________________________________________________________________

BSD 3-Clause License

Copyright (c) Norbert Pillmayer

All rights reserved.

Please refer to the LICENSE file for details.

*/
package pst

import (
	"github.com/npillmayer/schuko/gtrace"
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces to the global core-tracer.
func tracer() tracing.Trace {
	return gtrace.CoreTracer
}

// PstError is an error type for the pst module
type PstError string

func (e PstError) Error() string {
	return string(e)
}

// ErrInvalidRange is flagged if a tree is to be created for an empty or
// inverted index range.
const ErrInvalidRange = PstError("invalid index range")

// ErrInvalidIndex is flagged whenever a position lies outside of the
// index range of a tree.
const ErrInvalidIndex = PstError("index out of range")

// ErrInvalidVersion is flagged for negative version numbers. Version numbers
// beyond the latest version are not an error, but are clamped.
const ErrInvalidVersion = PstError("invalid version")

// ErrNoAggregation is flagged if a range query is issued for a tree without
// a suitable aggregation monoid.
const ErrNoAggregation = PstError("tree does not aggregate values")

// ErrIllegalArguments is flagged whenever function parameters are invalid.
const ErrIllegalArguments = PstError("illegal arguments")

func assert(condition bool, msg string) {
	if !condition {
		panic(msg)
	}
}
