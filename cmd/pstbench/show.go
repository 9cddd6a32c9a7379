package main

import (
	"math/rand"

	"github.com/npillmayer/pst"
	"github.com/npillmayer/pst/console"
	"github.com/spf13/cobra"
)

func showCommand() *cobra.Command {
	var (
		size, inserts int
		seed          int64
		dot           bool
	)
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Prints the version history of a small random tree.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			tree, err := pst.New[int](0, size)
			if err != nil {
				return err
			}
			rnd := rand.New(rand.NewSource(seed))
			for i := 0; i < inserts; i++ {
				if _, err := tree.Insert(rnd.Intn(size), rnd.Intn(100)); err != nil {
					return err
				}
			}
			if dot {
				pst.Pst2Dot(tree, cmd.OutOrStdout())
				return nil
			}
			config := console.ConfigFromTerminal()
			return console.Table(tree, cmd.OutOrStdout(), config)
		},
	}
	cmd.Flags().IntVar(&size, "size", 10, "Size of the index range.")
	cmd.Flags().IntVar(&inserts, "inserts", 8, "Number of inserts.")
	cmd.Flags().Int64Var(&seed, "seed", 1, "Seed for the random generator.")
	cmd.Flags().BoolVar(&dot, "dot", false, "Output Graphviz DOT instead of a table.")
	return cmd
}
