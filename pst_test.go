package pst

import (
	"errors"
	"math"
	"testing"

	"github.com/npillmayer/schuko/gtrace"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
)

func TestNewRejectsInvalidRange(t *testing.T) {
	for _, r := range [][2]int{{0, 0}, {4, 2}, {-1, -1}, {math.MinInt, math.MaxInt}} {
		_, err := New[int](r[0], r[1])
		if !errors.Is(err, ErrInvalidRange) {
			t.Fatalf("expected ErrInvalidRange for [%d, %d), got %v", r[0], r[1], err)
		}
	}
}

func TestNewCreatesEmptyVersionZero(t *testing.T) {
	gtrace.CoreTracer = gotestingadapter.New(t)
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	gtrace.CoreTracer.SetTraceLevel(tracing.LevelDebug)
	//
	for _, r := range [][2]int{{0, 1}, {0, 8}, {-5, 7}, {100, 117}} {
		tree, err := New[string](r[0], r[1])
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if tree.Versions() != 1 || tree.Latest() != 0 {
			t.Fatalf("expected single version, have %d", tree.Versions())
		}
		for pos := r[0]; pos < r[1]; pos++ {
			if v, ok, err := tree.Query(pos, 0); err != nil || ok {
				t.Fatalf("expected [%d] to be absent in version 0, got %q/%v/%v", pos, v, ok, err)
			}
		}
		if err := tree.Check(); err != nil {
			t.Fatalf("invariant check failed: %v", err)
		}
	}
}

func TestSequentialInserts(t *testing.T) {
	gtrace.CoreTracer = gotestingadapter.New(t)
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	gtrace.CoreTracer.SetTraceLevel(tracing.LevelInfo)
	//
	n := 8
	tree, err := New[int](0, n)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := 0; i < n; i++ {
		version, err := tree.Insert(i, i+1)
		if err != nil {
			t.Fatalf("insert %d failed: %v", i, err)
		}
		if version != i+1 {
			t.Fatalf("expected version %d, got %d", i+1, version)
		}
	}
	for version := 0; version <= n; version++ {
		for i := 0; i < n; i++ {
			v, ok, err := tree.Query(i, version)
			if err != nil {
				t.Fatalf("query failed: %v", err)
			}
			if version <= i {
				if ok {
					t.Fatalf("version=%d i=%d: expected absent, got %d", version, i, v)
				}
			} else if !ok || v != i+1 {
				t.Fatalf("version=%d i=%d: expected %d, got %d/%v", version, i, i+1, v, ok)
			}
		}
	}
	if err := tree.Check(); err != nil {
		t.Fatalf("invariant check failed: %v", err)
	}
}

func TestConcreteScenario(t *testing.T) {
	tree, err := New[string](0, 4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	version, err := tree.Insert(2, "x")
	if err != nil || version != 1 {
		t.Fatalf("expected version 1, got %d/%v", version, err)
	}
	expect := func(pos, version int, want string, present bool) {
		t.Helper()
		v, ok, err := tree.Query(pos, version)
		if err != nil {
			t.Fatalf("query(%d, %d) failed: %v", pos, version, err)
		}
		if ok != present || v != want {
			t.Fatalf("query(%d, %d) = %q/%v, expected %q/%v", pos, version, v, ok, want, present)
		}
	}
	expect(2, 1, "x", true)
	expect(2, 0, "", false)
	expect(0, 1, "", false)
	expect(2, 99, "x", true)
}

func TestHistoryIsImmutable(t *testing.T) {
	tree, err := New[int](-3, 13)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ops := [][2]int{{5, 1}, {-3, 2}, {5, 3}, {12, 4}, {0, 5}, {5, 6}, {-3, 7}, {7, 8}}
	var history [][]int // history[v][pos+3] snapshot, -1 for absent
	record := func(version int) []int {
		row := make([]int, 16)
		for pos := -3; pos < 13; pos++ {
			v, ok, err := tree.Query(pos, version)
			if err != nil {
				t.Fatalf("query failed: %v", err)
			}
			row[pos+3] = -1
			if ok {
				row[pos+3] = v
			}
		}
		return row
	}
	history = append(history, record(0))
	for _, op := range ops {
		version, err := tree.Insert(op[0], op[1])
		if err != nil {
			t.Fatalf("insert failed: %v", err)
		}
		history = append(history, record(version))
		for v := 0; v < len(history); v++ {
			got := record(v)
			for i := range got {
				if got[i] != history[v][i] {
					t.Fatalf("version %d changed at %d after version %d: %d != %d",
						v, i-3, version, got[i], history[v][i])
				}
			}
		}
	}
	if v, _, _ := tree.Query(5, 3); v != 3 {
		t.Fatalf("expected overwritten value 3 at version 3, got %d", v)
	}
	if v, _, _ := tree.Query(5, tree.Latest()); v != 6 {
		t.Fatalf("expected value 6 at latest version, got %d", v)
	}
	if err := tree.Check(); err != nil {
		t.Fatalf("invariant check failed: %v", err)
	}
}

func TestInsertSharesStructure(t *testing.T) {
	n := 16
	tree, err := New[int](0, n)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tree.Depth() != 5 {
		t.Fatalf("expected depth 5 for range of 16, got %d", tree.Depth())
	}
	for i, pos := range []int{3, 11, 3, 0, 15, 8} {
		before := tree.Allocated()
		version, err := tree.Insert(pos, i)
		if err != nil {
			t.Fatalf("insert failed: %v", err)
		}
		if fresh := tree.Allocated() - before; fresh != tree.Depth() {
			t.Fatalf("insert @%d allocated %d nodes, expected %d", pos, fresh, tree.Depth())
		}
		prev, cur := tree.versions[version-1], tree.versions[version]
		if cur == prev {
			t.Fatalf("new version shares root with previous version")
		}
		// the half not containing pos must be shared by identity
		if pos < n/2 {
			if cur.right != prev.right {
				t.Fatalf("insert @%d: right subtree has been copied", pos)
			}
		} else if cur.left != prev.left {
			t.Fatalf("insert @%d: left subtree has been copied", pos)
		}
	}
	if tree.Allocated() != 1+6*tree.Depth() {
		t.Fatalf("unexpected total allocation %d", tree.Allocated())
	}
	if err := tree.Check(); err != nil {
		t.Fatalf("invariant check failed: %v", err)
	}
}

func TestPathLengthForUnevenRange(t *testing.T) {
	tree, err := New[int](0, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tree.Depth() != 4 {
		t.Fatalf("expected depth 4, got %d", tree.Depth())
	}
	for pos := 0; pos < 5; pos++ {
		before := tree.Allocated()
		if _, err := tree.Insert(pos, pos); err != nil {
			t.Fatalf("insert failed: %v", err)
		}
		if fresh := tree.Allocated() - before; fresh != tree.pathLength(pos) {
			t.Fatalf("insert @%d allocated %d nodes, expected %d", pos, fresh, tree.pathLength(pos))
		}
		if tree.pathLength(pos) > tree.Depth() {
			t.Fatalf("path for %d longer than depth", pos)
		}
	}
	single, err := New[int](7, 8)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if single.Depth() != 1 {
		t.Fatalf("expected depth 1 for single index, got %d", single.Depth())
	}
	mustInsert(t, single, 7, 42)
	if v, ok, _ := single.Query(7, 1); !ok || v != 42 {
		t.Fatalf("expected 42 in single index tree, got %d/%v", v, ok)
	}
	if _, ok, _ := single.Query(7, 0); ok {
		t.Fatalf("expected version 0 of single index tree to be empty")
	}
}

func TestVersionClamping(t *testing.T) {
	tree, err := New[int](0, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := 0; i < 5; i++ {
		mustInsert(t, tree, i*2, i)
	}
	for pos := 0; pos < 10; pos++ {
		want, wok, _ := tree.Query(pos, tree.Versions()-1)
		for _, version := range []int{tree.Versions(), tree.Versions() + 1, 1000, math.MaxInt} {
			got, gok, err := tree.Query(pos, version)
			if err != nil {
				t.Fatalf("over-large version must not be an error, got %v", err)
			}
			if got != want || gok != wok {
				t.Fatalf("query(%d, %d) = %d/%v, expected %d/%v", pos, version, got, gok, want, wok)
			}
		}
	}
	if _, _, err := tree.Query(0, -1); !errors.Is(err, ErrInvalidVersion) {
		t.Fatalf("expected ErrInvalidVersion for negative version, got %v", err)
	}
}

func TestInvalidIndex(t *testing.T) {
	tree, err := New[int](2, 6)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, pos := range []int{-1, 0, 1, 6, 7, math.MaxInt} {
		if _, err := tree.Insert(pos, 1); !errors.Is(err, ErrInvalidIndex) {
			t.Fatalf("expected ErrInvalidIndex for insert @%d, got %v", pos, err)
		}
		if _, _, err := tree.Query(pos, 0); !errors.Is(err, ErrInvalidIndex) {
			t.Fatalf("expected ErrInvalidIndex for query @%d, got %v", pos, err)
		}
	}
	if tree.Versions() != 1 || tree.Allocated() != 1 {
		t.Fatalf("failed inserts must not create versions, have %d", tree.Versions())
	}
}

func TestModified(t *testing.T) {
	tree, err := New[string](0, 9)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	positions := []int{4, 0, 8, 4, 1}
	for _, pos := range positions {
		mustInsert(t, tree, pos, "a")
	}
	if _, ok, err := tree.Modified(0); ok || err != nil {
		t.Fatalf("version 0 should not modify anything, got %v/%v", ok, err)
	}
	for i, pos := range positions {
		got, ok, err := tree.Modified(i + 1)
		if err != nil || !ok || got != pos {
			t.Fatalf("version %d: expected modified position %d, got %d/%v/%v", i+1, pos, got, ok, err)
		}
	}
}

func TestSnapshot(t *testing.T) {
	tree, err := New[string](0, 32)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	mustInsert(t, tree, 17, "b")
	mustInsert(t, tree, 3, "a")
	snap, err := tree.Snapshot(2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	mustInsert(t, tree, 30, "c")
	mustInsert(t, tree, 3, "A")
	if snap.Version() != 2 || snap.Len() != 2 {
		t.Fatalf("unexpected snapshot state version=%d len=%d", snap.Version(), snap.Len())
	}
	var keys []int
	var values []string
	for pos, v := range snap.All() {
		keys = append(keys, pos)
		values = append(values, v)
	}
	if len(keys) != 2 || keys[0] != 3 || keys[1] != 17 || values[0] != "a" || values[1] != "b" {
		t.Fatalf("unexpected snapshot content %v %v", keys, values)
	}
	if v, ok, _ := snap.Get(3); !ok || v != "a" {
		t.Fatalf("snapshot changed by later insert: %q", v)
	}
	latest, _ := tree.Snapshot(100)
	if latest.Version() != 4 || latest.Len() != 3 {
		t.Fatalf("expected clamped snapshot of version 4 with 3 values, got %d/%d",
			latest.Version(), latest.Len())
	}
	cnt := 0
	latest.Each(func(int, string) bool {
		cnt++
		return false
	})
	if cnt != 1 {
		t.Fatalf("expected iteration to stop after first value, got %d calls", cnt)
	}
	if _, _, err := (Snapshot[string]{}).Get(0); !errors.Is(err, ErrIllegalArguments) {
		t.Fatalf("expected zero snapshot to be invalid, got %v", err)
	}
}

func TestCheckDetectsMutatedHistory(t *testing.T) {
	tree, err := New[int](0, 8)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	mustInsert(t, tree, 1, 1)
	mustInsert(t, tree, 6, 2)
	// simulate a broken insert which copies the whole root without path copy
	broken := *tree.versions[2]
	tree.versions = append(tree.versions, &broken)
	if err := tree.Check(); err == nil {
		t.Fatalf("expected check to fail for version without fresh path")
	}
}

// mustInsert inserts value at pos and fails the test on error.
func mustInsert[T any](t testing.TB, tree *Tree[T], pos int, value T) int {
	t.Helper()
	version, err := tree.Insert(pos, value)
	if err != nil {
		t.Fatalf("insert @%d failed: %v", pos, err)
	}
	return version
}
