/*
Package console prints the version history of a persistent tree to a
terminal.

Every version is printed as a row, every index of the tree's range as a
column. The cell an insert has modified is highlighted, cells inherited from
earlier versions are printed plain and absent cells are printed as a dot.

	      0   1   2   3
	v0    ·   ·   ·   ·
	v1    ·   ·   x   ·
	v2    a   ·   x   ·

Column widths are measured in fixed-width “en”s, respecting East Asian wide
characters (UAX #11), so histories of CJK values line up correctly.

_________________________________________________________________________

# BSD 3-Clause License

Copyright (c) Norbert Pillmayer

Please refer to the LICENSE file for details.
*/
package console

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to trace with key 'pst'
func tracer() tracing.Trace {
	return tracing.Select("pst")
}
