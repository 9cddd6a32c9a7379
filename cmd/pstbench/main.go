// Command pstbench exercises persistent segment trees from the command line.
//
//	pstbench bench --size 1000000 --inserts 100000
//	pstbench run history.yaml
//	pstbench show --size 12 --inserts 8
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/npillmayer/schuko/gtrace"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gologadapter"
	"github.com/spf13/cobra"
)

func main() {
	if err := rootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCommand() *cobra.Command {
	var level string
	cmd := &cobra.Command{
		Use:           "pstbench",
		Short:         "Benchmarks and inspects persistent segment trees.",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return setupTracing(level)
		},
	}
	cmd.PersistentFlags().StringVar(&level, "trace", "error", "Trace level: debug, info or error.")
	cmd.AddCommand(benchCommand(), runCommand(), showCommand())
	return cmd
}

func setupTracing(level string) error {
	var l tracing.TraceLevel
	switch strings.ToLower(level) {
	case "debug":
		l = tracing.LevelDebug
	case "info":
		l = tracing.LevelInfo
	case "error":
		l = tracing.LevelError
	default:
		return fmt.Errorf("unknown trace level %q", level)
	}
	gtrace.CoreTracer = gologadapter.New()
	gtrace.CoreTracer.SetTraceLevel(l)
	return nil
}
