// Package cmd implements the vfdt command line tool.
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/YuminosukeSato/vfdt/pkg/errors"
	"github.com/YuminosukeSato/vfdt/pkg/log"
)

type rootOptions struct {
	logLevel  string
	logFormat string
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:           "vfdt",
		Short:         "Incremental Hoeffding tree training from the command line",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return opts.setupLogging(cmd)
		},
	}
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&opts.logFormat, "log-format", "console", "log format (console, json)")

	root.AddCommand(newTrainCmd())
	root.AddCommand(newVersionCmd())
	return root
}

func (o *rootOptions) setupLogging(cmd *cobra.Command) error {
	level, err := log.ParseLevel(o.logLevel)
	if err != nil {
		return err
	}
	var provider *log.ZerologProvider
	switch o.logFormat {
	case "json":
		provider = log.NewZerologProvider(cmd.ErrOrStderr())
	case "console":
		provider = log.NewZerologProvider(zerolog.ConsoleWriter{Out: cmd.ErrOrStderr(), TimeFormat: "15:04:05"})
	default:
		return errors.NewValidationError("log-format", "must be console or json", o.logFormat)
	}
	provider.SetLevel(level)
	log.SetLoggerProvider(provider)
	return nil
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := NewRootCmd().ExecuteContext(ctx); err != nil {
		bailf("error: %v", err)
	}
}

func bailf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
