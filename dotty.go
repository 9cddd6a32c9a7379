package pst

import (
	"fmt"
	"io"
	"strings"
)

type nodeids[T any] struct {
	idTable map[*node[T]]int
	drawn   map[*node[T]]bool
	max     int
}

func newtable[T any]() nodeids[T] {
	return nodeids[T]{
		idTable: make(map[*node[T]]int),
		drawn:   make(map[*node[T]]bool),
		max:     1,
	}
}

func (ids nodeids[T]) find(n *node[T]) int {
	return ids.idTable[n]
}

func (ids *nodeids[T]) alloc(n *node[T]) int {
	if id := ids.find(n); id > 0 {
		return id
	}
	ids.idTable[n] = ids.max
	ids.max++
	return ids.max - 1
}

// Pst2Dot outputs the internal structure of a tree in Graphviz DOT format
// (for debugging purposes).
//
// Every version given is drawn as a box pointing to its root node. Nodes
// shared between versions are drawn once, so structural sharing becomes
// visible. Nodes are colored by the version which created them, even if that
// version is not drawn. If no versions are given, all versions are drawn.
func Pst2Dot[T any](tree *Tree[T], w io.Writer, versions ...int) {
	if tree == nil {
		tracer().Errorf("pst DOT: %s", ErrIllegalArguments.Error())
		return
	}
	if len(versions) == 0 {
		for v := range tree.versions {
			versions = append(versions, v)
		}
	}
	var nodelist, edgelist strings.Builder
	ids := newtable[T]()
	created := creators(tree)
	for _, v := range versions {
		root, v, err := tree.root(v)
		if err != nil {
			tracer().Errorf("pst DOT: %s", err.Error())
			continue
		}
		fmt.Fprintf(&nodelist, "\"v%d\" [label=\"v%d\",shape=box,style=rounded];\n", v, v)
		fmt.Fprintf(&edgelist, "\"v%d\" -> \"%d\" [style=dashed];\n", v, ids.alloc(root))
		dotNodes(&ids, created, root, tree.left, tree.right, &nodelist, &edgelist)
	}
	io.WriteString(w, "strict digraph {\n")
	io.WriteString(w, "\tnode [fontname=Arial,fontsize=12];\n")
	io.WriteString(w, nodelist.String())
	io.WriteString(w, edgelist.String())
	io.WriteString(w, "}\n")
}

func dotNodes[T any](ids *nodeids[T], created map[*node[T]]int, n *node[T], lo, hi int,
	nodes, edges *strings.Builder) {
	//
	if ids.drawn[n] {
		return // shared with an earlier version
	}
	ids.drawn[n] = true
	id := ids.alloc(n)
	styles := nodeDotStyles(hi-lo <= 1, created[n])
	if hi-lo <= 1 {
		label := fmt.Sprintf("[%d]", lo)
		if n.hasValue {
			label = fmt.Sprintf("[%d]\\n%v", lo, n.value)
		}
		fmt.Fprintf(nodes, "\"%d\" [label=\"%s\" %s];\n", id, escapeDot(label), styles)
		return
	}
	fmt.Fprintf(nodes, "\"%d\" [label=\"%d…%d\" %s];\n", id, lo, hi-1, styles)
	mid := midpoint(lo, hi)
	for _, child := range []struct {
		n      *node[T]
		lo, hi int
	}{{n.left, lo, mid}, {n.right, mid, hi}} {
		if child.n == nil {
			continue
		}
		fmt.Fprintf(edges, "\"%d\" -> \"%d\";\n", id, ids.alloc(child.n))
		dotNodes(ids, created, child.n, child.lo, child.hi, nodes, edges)
	}
}

// creators maps every node to the version which allocated it. The nodes
// created by version v are the ones on its path which differ from v-1.
func creators[T any](tree *Tree[T]) map[*node[T]]int {
	created := map[*node[T]]int{tree.versions[0]: 0}
	for v := 1; v < len(tree.versions); v++ {
		n, prev := tree.versions[v], tree.versions[v-1]
		for n != nil && n != prev {
			created[n] = v
			var prevLeft, prevRight *node[T]
			if prev != nil {
				prevLeft, prevRight = prev.left, prev.right
			}
			if n.left != prevLeft {
				n, prev = n.left, prevLeft
			} else {
				n, prev = n.right, prevRight
			}
		}
	}
	return created
}

func escapeDot(s string) string {
	return strings.ReplaceAll(s, "\"", "\\\"")
}

func nodeDotStyles(isleaf bool, version int) string {
	s := ",style=filled"
	if isleaf {
		s += ",shape=box"
	} else {
		s += ",color=black,shape=circle"
	}
	s += fmt.Sprintf(",fillcolor=\"%s\"", hexcolors[version%len(hexcolors)])
	return s
}

var hexcolors = [...]string{"white", "#CCDDFF", "#AACCFF", "#88BBFF", "#66AAFF",
	"#4499FF", "#2288FF", "#0077FF", "#0066FF"}
