package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/tomoemon/demystify"
)

func newTraceCommand() *cobra.Command {
	var (
		runtimeFrames   bool
		fullPackagePath bool
		maxFrames       int
	)

	c := &cobra.Command{
		Use:   "trace [file]",
		Short: "Demystify a panic traceback or debug.Stack output",
		Long: `Reads a Go stack trace from file, or from stdin when no file is given,
and prints it with compiler-generated function names rewritten.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := cmd.InOrStdin()
			if len(args) == 1 {
				f, err := os.Open(args[0])
				if err != nil {
					return fmt.Errorf("failed to open trace: %w", err)
				}
				defer func() { _ = f.Close() }()
				in = f
			}
			data, err := io.ReadAll(in)
			if err != nil {
				return fmt.Errorf("failed to read trace: %w", err)
			}

			var opts []demystify.Option
			if runtimeFrames {
				opts = append(opts, demystify.WithRuntimeFrames())
			}
			if fullPackagePath {
				opts = append(opts, demystify.WithFullPackagePath())
			}
			if maxFrames > 0 {
				opts = append(opts, demystify.WithMaxFrames(maxFrames))
			}

			_, err = io.WriteString(cmd.OutOrStdout(), demystify.NewDemystifier(opts...).DemystifyTrace(string(data)))
			return err
		},
	}

	flags := c.Flags()
	flags.BoolVar(&runtimeFrames, "runtime-frames", false, "keep frames of package runtime")
	flags.BoolVar(&fullPackagePath, "full-package-path", false, "qualify functions with their import path")
	flags.IntVar(&maxFrames, "max-frames", 0, "maximum number of frames per goroutine, 0 for all")
	return c
}
