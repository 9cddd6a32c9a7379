package pst

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/npillmayer/schuko/gtrace"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
)

func TestDotSharesNodes(t *testing.T) {
	gtrace.CoreTracer = gotestingadapter.New(t)
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	gtrace.CoreTracer.SetTraceLevel(tracing.LevelError)
	//
	tree, err := New[string](0, 4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, edit := range []struct {
		pos   int
		value string
	}{{0, "x"}, {3, `"y"`}} {
		if _, err := tree.Insert(edit.pos, edit.value); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	var buf bytes.Buffer
	Pst2Dot(tree, &buf)
	dot := buf.String()
	t.Logf("\n%s", dot)
	if !strings.HasPrefix(dot, "strict digraph {") {
		t.Fatalf("expected DOT digraph, got %q", dot)
	}
	// 1 empty root + 3 nodes per insert, sharing drawn once
	if cnt := strings.Count(dot, "fillcolor"); cnt != 7 {
		t.Fatalf("expected 7 distinct nodes, got %d", cnt)
	}
	for _, root := range []string{`"v0"`, `"v1"`, `"v2"`} {
		if !strings.Contains(dot, root+" ->") {
			t.Fatalf("missing version root %s", root)
		}
	}
	if !strings.Contains(dot, `\"y\"`) {
		t.Fatalf("expected quotes in labels to be escaped")
	}
	buf.Reset()
	Pst2Dot(tree, &buf, 1, -1)
	if strings.Contains(buf.String(), `"v2"`) || !strings.Contains(buf.String(), `"v1"`) {
		t.Fatalf("expected only version 1 to be drawn:\n%s", buf.String())
	}
}

func TestDotColorsNodesByCreatingVersion(t *testing.T) {
	tree, err := New[int](0, 4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err = tree.Insert(0, 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err = tree.Insert(3, 2); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var buf bytes.Buffer
	Pst2Dot(tree, &buf, 2)
	dot := buf.String()
	// version 2 shares the left half, created by version 1
	v1 := fmt.Sprintf("fillcolor=\"%s\"", hexcolors[1])
	v2 := fmt.Sprintf("fillcolor=\"%s\"", hexcolors[2])
	if cnt := strings.Count(dot, v1); cnt != 2 {
		t.Fatalf("expected 2 nodes of version 1, got %d:\n%s", cnt, dot)
	}
	if cnt := strings.Count(dot, v2); cnt != 3 {
		t.Fatalf("expected 3 nodes of version 2, got %d:\n%s", cnt, dot)
	}
}
