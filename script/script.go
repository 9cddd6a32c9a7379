/*
Package script runs YAML scripts of operations against a persistent tree.

Scripts describe an index range and a sequence of steps. Every step is
either an insert, a point query or a range query; queries may state an
expected result. Scripts use integer values, range queries sum them up.

	tree: {left: 0, right: 4}
	steps:
	  - insert: {pos: 2, value: 7}
	  - query: {pos: 2, version: 1, expect: 7}
	  - query: {pos: 2, version: 0, absent: true}
	  - range: {lo: 0, hi: 4, version: 99, expect: 7}

Scripts are useful for reproducing edit histories and for exercising trees
from the command line.

BSD 3-Clause License

Copyright (c) Norbert Pillmayer

Please refer to the License file in the repository root.
*/
package script

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/goccy/go-yaml"
	"github.com/npillmayer/pst"
	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to trace with key 'pst'
func tracer() tracing.Trace {
	return tracing.Select("pst")
}

// ErrScript is flagged for malformed scripts.
var ErrScript = errors.New("script: malformed")

// Script is a parsed operation script.
type Script struct {
	Tree  Bounds `yaml:"tree"`
	Steps []Step `yaml:"steps"`
}

// Bounds is the index range [Left, Right) of the tree a script operates on.
type Bounds struct {
	Left  int `yaml:"left"`
	Right int `yaml:"right"`
}

// Step is a single operation. Exactly one of its fields is set.
type Step struct {
	Insert *Insert     `yaml:"insert,omitempty"`
	Query  *Query      `yaml:"query,omitempty"`
	Range  *RangeQuery `yaml:"range,omitempty"`
}

// Insert sets Value at index Pos.
type Insert struct {
	Pos   int `yaml:"pos"`
	Value int `yaml:"value"`
}

// Query reads index Pos under Version. If Expect is set, the value has to
// match; if Absent is true, the index must not hold a value.
type Query struct {
	Pos     int  `yaml:"pos"`
	Version int  `yaml:"version"`
	Expect  *int `yaml:"expect,omitempty"`
	Absent  bool `yaml:"absent,omitempty"`
}

// RangeQuery sums up the values in [Lo, Hi) under Version. If Expect is set,
// the sum has to match.
type RangeQuery struct {
	Lo      int  `yaml:"lo"`
	Hi      int  `yaml:"hi"`
	Version int  `yaml:"version"`
	Expect  *int `yaml:"expect,omitempty"`
}

// Parse reads a script from YAML source.
func Parse(source []byte) (*Script, error) {
	s := &Script{}
	if err := yaml.Unmarshal(source, s); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrScript, err)
	}
	if s.Tree.Left >= s.Tree.Right {
		return nil, fmt.Errorf("%w: empty tree range [%d, %d)", ErrScript, s.Tree.Left, s.Tree.Right)
	}
	for i, step := range s.Steps {
		ops := 0
		for _, set := range []bool{step.Insert != nil, step.Query != nil, step.Range != nil} {
			if set {
				ops++
			}
		}
		if ops != 1 {
			return nil, fmt.Errorf("%w: step %d has %d operations, need exactly one", ErrScript, i+1, ops)
		}
		if q := step.Query; q != nil && q.Absent && q.Expect != nil {
			return nil, fmt.Errorf("%w: step %d expects a value and absence", ErrScript, i+1)
		}
	}
	return s, nil
}

// Mismatch records a query which did not meet its expectation.
type Mismatch struct {
	Step     int    `yaml:"step"`
	Op       string `yaml:"op"`
	Expected string `yaml:"expected"`
	Got      string `yaml:"got"`
}

// Report summarizes a script run.
type Report struct {
	Inserts    int        `yaml:"inserts"`
	Queries    int        `yaml:"queries"`
	Versions   int        `yaml:"versions"`
	Nodes      int        `yaml:"nodes"`
	Mismatches []Mismatch `yaml:"mismatches,omitempty"`
	// Tree is the tree after the run, for further inspection.
	Tree *pst.Tree[int] `yaml:"-"`
}

// OK reports whether all expectations of the script have been met.
func (r *Report) OK() bool {
	return len(r.Mismatches) == 0
}

// YAML serializes the report.
func (r *Report) YAML() ([]byte, error) {
	return yaml.Marshal(r)
}

// Run executes the script against a fresh tree. Unmet expectations are
// collected in the report; an operation failing with an error (e.g., an
// index out of range) stops the run.
func (s *Script) Run() (*Report, error) {
	tree, err := pst.NewWithConfig[int](s.Tree.Left, s.Tree.Right, pst.Config[int]{
		Monoid: pst.Sum[int]{},
	})
	if err != nil {
		return nil, err
	}
	report := &Report{Tree: tree}
	for i, step := range s.Steps {
		if err := s.runStep(tree, i+1, step, report); err != nil {
			return report, fmt.Errorf("step %d: %w", i+1, err)
		}
	}
	report.Versions = tree.Versions()
	report.Nodes = tree.Allocated()
	tracer().Infof("script: %d inserts, %d queries, %d mismatches",
		report.Inserts, report.Queries, len(report.Mismatches))
	return report, nil
}

func (s *Script) runStep(tree *pst.Tree[int], n int, step Step, report *Report) error {
	switch {
	case step.Insert != nil:
		if _, err := tree.Insert(step.Insert.Pos, step.Insert.Value); err != nil {
			return err
		}
		report.Inserts++
	case step.Query != nil:
		q := step.Query
		v, ok, err := tree.Query(q.Pos, q.Version)
		if err != nil {
			return err
		}
		report.Queries++
		op := fmt.Sprintf("query %d @%d", q.Pos, q.Version)
		switch {
		case q.Absent && ok:
			report.mismatch(n, op, "absent", strconv.Itoa(v))
		case q.Expect != nil && !ok:
			report.mismatch(n, op, strconv.Itoa(*q.Expect), "absent")
		case q.Expect != nil && v != *q.Expect:
			report.mismatch(n, op, strconv.Itoa(*q.Expect), strconv.Itoa(v))
		}
	case step.Range != nil:
		r := step.Range
		sum, err := tree.QueryRange(r.Lo, r.Hi, r.Version)
		if err != nil {
			return err
		}
		report.Queries++
		if r.Expect != nil && sum != *r.Expect {
			op := fmt.Sprintf("range [%d, %d) @%d", r.Lo, r.Hi, r.Version)
			report.mismatch(n, op, strconv.Itoa(*r.Expect), strconv.Itoa(sum))
		}
	}
	return nil
}

func (r *Report) mismatch(step int, op, expected, got string) {
	tracer().Debugf("script: step %d: %s expected %s, got %s", step, op, expected, got)
	r.Mismatches = append(r.Mismatches, Mismatch{
		Step:     step,
		Op:       op,
		Expected: expected,
		Got:      got,
	})
}
