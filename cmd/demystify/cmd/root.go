package cmd

import (
	"github.com/spf13/cobra"
)

// NewRootCommand returns the demystify command tree.
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "demystify",
		Short:         "Make Go stack traces readable",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.AddCommand(newTraceCommand(), newExampleCommand())
	return root
}

// Execute runs the root command.
func Execute() error {
	return NewRootCommand().Execute()
}
