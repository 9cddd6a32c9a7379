/*
Package feed publishes the versions of a persistent tree to subscribers.

A Feed owns a tree and serializes inserts into it. After an insert has
completed and the new version is visible, an Event describing it is
broadcast to all subscribers. Subscribers never see a version before it has
been published, and they receive events in version order.

Readers may take snapshots of published versions through the feed while
inserts are going on; a snapshot stays valid and unchanged forever.

_________________________________________________________________________

# BSD 3-Clause License

Copyright (c) Norbert Pillmayer

Please refer to the LICENSE file for details.
*/
package feed

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to trace with key 'pst'
func tracer() tracing.Trace {
	return tracing.Select("pst")
}
