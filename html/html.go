/*
Package html renders the version history of a persistent tree as an HTML
table, and loads edit logs from HTML tables.

BSD 3-Clause License

Copyright (c) Norbert Pillmayer

Please refer to the License file in the repository root.
*/
package html

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/npillmayer/pst"
	"github.com/npillmayer/schuko/tracing"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// tracer writes to trace with key 'pst'
func tracer() tracing.Trace {
	return tracing.Select("pst")
}

// Table creates an HTML table element for versions of tree. If no versions
// are given, all versions are included.
//
// The table has a header row with the indices of the tree's range and one row
// per version. Cells are classed "changed" if the row's version has set the
// cell, and "absent" if the cell does not hold a value:
//
//	<table class="pst">
//	  <thead><tr><th></th><th>0</th>…</tr></thead>
//	  <tbody><tr data-version="1"><th>v1</th><td class="changed">x</td>…</tr>…</tbody>
//	</table>
func Table[T any](tree *pst.Tree[T], versions ...int) (*html.Node, error) {
	if tree == nil {
		return nil, pst.ErrIllegalArguments
	}
	if len(versions) == 0 {
		for v := range tree.Versions() {
			versions = append(versions, v)
		}
	}
	left, right := tree.Range()
	table := element(atom.Table, attr("class", "pst"))
	head := element(atom.Tr)
	head.AppendChild(element(atom.Th))
	for pos := left; pos < right; pos++ {
		th := element(atom.Th)
		th.AppendChild(text(strconv.Itoa(pos)))
		head.AppendChild(th)
	}
	thead := element(atom.Thead)
	thead.AppendChild(head)
	table.AppendChild(thead)
	tbody := element(atom.Tbody)
	for _, v := range versions {
		snap, err := tree.Snapshot(v)
		if err != nil {
			return nil, err
		}
		changed, hasChanged, _ := tree.Modified(snap.Version())
		tr := element(atom.Tr, attr("data-version", strconv.Itoa(snap.Version())))
		th := element(atom.Th)
		th.AppendChild(text("v" + strconv.Itoa(snap.Version())))
		tr.AppendChild(th)
		for pos := left; pos < right; pos++ {
			value, ok, err := snap.Get(pos)
			if err != nil {
				return nil, err
			}
			td := element(atom.Td)
			switch {
			case !ok:
				td.Attr = append(td.Attr, attr("class", "absent"))
			case hasChanged && pos == changed:
				td.Attr = append(td.Attr, attr("class", "changed"))
			}
			if ok {
				td.AppendChild(text(fmt.Sprint(value)))
			}
			tr.AppendChild(td)
		}
		tbody.AppendChild(tr)
	}
	table.AppendChild(tbody)
	return table, nil
}

// Render writes an HTML table for versions of tree to w. If no versions are
// given, all versions are rendered. See Table for the structure of the table.
func Render[T any](tree *pst.Tree[T], w io.Writer, versions ...int) error {
	table, err := Table(tree, versions...)
	if err != nil {
		return err
	}
	return html.Render(w, table)
}

// Load reads an HTML document or fragment and inserts an edit for every table
// row whose first two data cells (<td>) hold an index and a value. Rows are
// applied in document order, each one creating a new version of tree. Header
// rows and rows with less than two data cells are skipped.
//
// Load returns the number of inserts performed. If a row's index is not a
// number or is out of range, loading stops with an error.
func Load(input io.Reader, tree *pst.Tree[string]) (int, error) {
	if tree == nil || input == nil {
		return 0, pst.ErrIllegalArguments
	}
	doc, err := html.Parse(input)
	if err != nil {
		return 0, err
	}
	cnt := 0
	err = eachRow(doc, func(cells []string) error {
		if len(cells) < 2 {
			return nil
		}
		pos, err := strconv.Atoi(strings.TrimSpace(cells[0]))
		if err != nil {
			return fmt.Errorf("%w: row index %q", pst.ErrIllegalArguments, cells[0])
		}
		if _, err = tree.Insert(pos, strings.TrimSpace(cells[1])); err != nil {
			return err
		}
		cnt++
		return nil
	})
	tracer().Debugf("html: loaded %d edits", cnt)
	return cnt, err
}

// eachRow calls f with the inner texts of the data cells of every table row
// below n.
func eachRow(n *html.Node, f func(cells []string) error) error {
	if n.Type == html.ElementNode && n.DataAtom == atom.Tr {
		var cells []string
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode && c.DataAtom == atom.Td {
				var b strings.Builder
				collectText(c, &b)
				cells = append(cells, b.String())
			}
		}
		return f(cells)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if err := eachRow(c, f); err != nil {
			return err
		}
	}
	return nil
}

func collectText(n *html.Node, b *strings.Builder) {
	if n.Type == html.TextNode {
		b.WriteString(n.Data)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, b)
	}
}

func element(a atom.Atom, attrs ...html.Attribute) *html.Node {
	return &html.Node{
		Type:     html.ElementNode,
		Data:     a.String(),
		DataAtom: a,
		Attr:     attrs,
	}
}

func text(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}

func attr(key, value string) html.Attribute {
	return html.Attribute{Key: key, Val: value}
}
