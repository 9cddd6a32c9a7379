package main

import (
	"fmt"
	"io"
	"math/rand"
	"runtime"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/npillmayer/pst"
	"github.com/npillmayer/schuko/gtrace"
	"github.com/spf13/cobra"
)

type benchParams struct {
	Size    int
	Inserts int
	Queries int
	Seed    int64
}

type benchResult struct {
	Versions   int
	Nodes      int
	Depth      int
	HeapBytes  uint64
	InsertTime time.Duration
	QueryTime  time.Duration
	QueryHits  int
	FinalSum   int64
}

func benchCommand() *cobra.Command {
	var params benchParams
	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Runs random inserts and queries over random versions.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			res, err := runBench(params)
			if err != nil {
				return err
			}
			printBench(cmd.OutOrStdout(), params, res)
			return nil
		},
	}
	cmd.Flags().IntVar(&params.Size, "size", 1<<20, "Size of the index range.")
	cmd.Flags().IntVar(&params.Inserts, "inserts", 100_000, "Number of inserts, i.e. versions to create.")
	cmd.Flags().IntVar(&params.Queries, "queries", 100_000, "Number of point queries over random versions.")
	cmd.Flags().Int64Var(&params.Seed, "seed", 1, "Seed for the random generator.")
	return cmd
}

func runBench(params benchParams) (benchResult, error) {
	var res benchResult
	if params.Inserts < 0 || params.Queries < 0 {
		return res, fmt.Errorf("%w: negative number of operations", pst.ErrIllegalArguments)
	}
	var before, after runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&before)
	tree, err := pst.NewWithConfig[int64](0, params.Size, pst.Config[int64]{
		Monoid: pst.Sum[int64]{},
	})
	if err != nil {
		return res, err
	}
	rnd := rand.New(rand.NewSource(params.Seed))
	start := time.Now()
	for i := 0; i < params.Inserts; i++ {
		if _, err := tree.Insert(rnd.Intn(params.Size), rnd.Int63n(1000)); err != nil {
			return res, err
		}
		if i > 0 && i%100_000 == 0 {
			gtrace.CoreTracer.Infof("bench: %s inserts", humanize.Comma(int64(i)))
		}
	}
	res.InsertTime = time.Since(start)
	runtime.GC()
	runtime.ReadMemStats(&after)
	if after.HeapAlloc > before.HeapAlloc {
		res.HeapBytes = after.HeapAlloc - before.HeapAlloc
	}
	start = time.Now()
	for i := 0; i < params.Queries; i++ {
		_, ok, err := tree.Query(rnd.Intn(params.Size), rnd.Intn(tree.Versions()))
		if err != nil {
			return res, err
		}
		if ok {
			res.QueryHits++
		}
	}
	res.QueryTime = time.Since(start)
	if res.FinalSum, err = tree.QueryRange(0, params.Size, tree.Latest()); err != nil {
		return res, err
	}
	res.Versions = tree.Versions()
	res.Nodes = tree.Allocated()
	res.Depth = tree.Depth()
	runtime.KeepAlive(tree)
	return res, nil
}

func printBench(w io.Writer, params benchParams, res benchResult) {
	perInsert := 0.0
	if params.Inserts > 0 {
		perInsert = float64(res.Nodes-1) / float64(params.Inserts)
	}
	fmt.Fprintf(w, "range size      %s\n", humanize.Comma(int64(params.Size)))
	fmt.Fprintf(w, "versions        %s\n", humanize.Comma(int64(res.Versions)))
	fmt.Fprintf(w, "nodes           %s (%.1f per insert, depth %d)\n",
		humanize.Comma(int64(res.Nodes)), perInsert, res.Depth)
	fmt.Fprintf(w, "heap            %s\n", humanize.Bytes(res.HeapBytes))
	fmt.Fprintf(w, "insert time     %s (%s/op)\n", res.InsertTime, perOp(res.InsertTime, params.Inserts))
	fmt.Fprintf(w, "query time      %s (%s/op, %s hits)\n", res.QueryTime,
		perOp(res.QueryTime, params.Queries), humanize.Comma(int64(res.QueryHits)))
	fmt.Fprintf(w, "sum of latest   %s\n", humanize.Comma(res.FinalSum))
}

func perOp(d time.Duration, n int) time.Duration {
	if n == 0 {
		return 0
	}
	return d / time.Duration(n)
}
