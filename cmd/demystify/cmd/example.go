package cmd

import (
	"errors"
	"fmt"
	"iter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tomoemon/demystify"
	"github.com/tomoemon/demystify/logging"
)

var errNotImplemented = errors.New("not implemented")

func newExampleCommand() *cobra.Command {
	var (
		configFile  string
		encoding    string
		noDemystify bool
	)

	c := &cobra.Command{
		Use:   "example",
		Short: "Log an error raised inside a goroutine and an iterator",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := logging.Default()
			if configFile != "" {
				var err error
				if cfg, err = logging.Load(configFile); err != nil {
					return err
				}
			}
			if cmd.Flags().Changed("encoding") {
				cfg.Encoding = encoding
			}
			if noDemystify {
				cfg.Demystify.Enabled = false
			}

			logger, err := cfg.BuildWriter(cmd.OutOrStdout())
			if err != nil {
				return fmt.Errorf("failed to build logger: %w", err)
			}
			defer func() { _ = logger.Sync() }()

			res := <-failingMethodAsync()
			if res.err != nil {
				logger.Error("Unhandled exception", zap.Error(res.err))
				return nil
			}
			logger.Info("Completed", zap.Int("sum", res.sum))
			return nil
		},
	}

	flags := c.Flags()
	flags.StringVar(&configFile, "config", "", "path to a logging config file")
	flags.StringVar(&encoding, "encoding", "", "log encoding (json or console), overrides the config file")
	flags.BoolVar(&noDemystify, "no-demystify", false, "log the raw stack trace")
	return c
}

type result struct {
	sum int
	err error
}

// failingMethodAsync sums failingSequence on a new goroutine.
//
//go:noinline
func failingMethodAsync() <-chan result {
	ch := make(chan result, 1)
	go func() {
		n, err := sum(failingSequence())
		ch <- result{sum: n, err: err}
	}()
	return ch
}

//go:noinline
func sum(seq iter.Seq2[int, error]) (int, error) {
	total := 0
	for v, err := range seq {
		if err != nil {
			return 0, err
		}
		total += v
	}
	return total, nil
}

// failingSequence yields one value and then fails.
//
//go:noinline
func failingSequence() iter.Seq2[int, error] {
	return func(yield func(int, error) bool) {
		if !yield(1, nil) {
			return
		}
		yield(0, demystify.With(errNotImplemented))
	}
}
