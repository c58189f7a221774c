package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/fatih/color"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"reindent/internal/logging"
	"reindent/internal/trace"
	"reindent/internal/version"
)

// newRootCmd builds the command tree. Commands are constructed per call so
// that flag state never leaks between executions.
func newRootCmd() *cobra.Command {
	var cleanup func(failed bool)

	root := &cobra.Command{
		Use:   "reindent",
		Short: "Re-indent source code",
		Long: `reindent fixes the indentation of markup, stylesheets, scripts, Python, Java
and any bracket-structured text. It prefers a structured formatter, falls
back to pattern rules, and finally to a bracket counter that always succeeds.`,
		Version:       version.Get().Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := applyColorMode(cmd); err != nil {
				return err
			}
			verbosity, err := cmd.Flags().GetCount("verbose")
			if err != nil {
				return err
			}
			logging.SetupLogger(logging.Options{
				Verbosity: verbosity,
				NoColor:   color.NoColor,
				Console:   cmd.ErrOrStderr(),
			})
			stopProfiling, err := setupProfiling(cmd)
			if err != nil {
				return err
			}
			stopTracing, err := setupTracing(cmd)
			if err != nil {
				stopProfiling()
				return err
			}
			cleanup = func(failed bool) {
				stopTracing(failed)
				stopProfiling()
			}
			return nil
		},
	}

	root.PersistentFlags().String("config", "", "path to .reindent.toml (default: search upward from the working directory)")
	root.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	root.PersistentFlags().Bool("quiet", false, "suppress non-essential output")
	root.PersistentFlags().Bool("timings", false, "show timing information")
	root.PersistentFlags().CountP("verbose", "v", "increase log verbosity (-v info, -vv debug, -vvv trace)")
	root.PersistentFlags().String("trace", "", "write trace events to file (\"-\" for stderr)")
	root.PersistentFlags().String("trace-level", "off", "trace level (off|error|run|file|tier)")
	root.PersistentFlags().String("trace-mode", "stream", "trace storage (stream|ring|both)")
	root.PersistentFlags().Int("trace-ring-size", trace.DefaultRingSize, "events kept in ring mode")
	root.PersistentFlags().String("cpu-profile", "", "write a CPU profile to file")
	root.PersistentFlags().String("mem-profile", "", "write a heap profile to file on exit")
	root.PersistentFlags().String("runtime-trace", "", "write a Go runtime trace to file")

	root.AddCommand(newFmtCmd())
	root.AddCommand(newLanguagesCmd())
	root.AddCommand(newVersionCmd())

	root.PersistentPostRun = func(*cobra.Command, []string) {
		if cleanup != nil {
			cleanup(false)
			cleanup = nil
		}
	}
	root.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return fmt.Errorf("%w\nrun '%s --help' for usage", err, cmd.CommandPath())
	})

	return wrapFailureCleanup(root, &cleanup)
}

// wrapFailureCleanup makes sure the tracer is flushed (and the ring dumped)
// when a command fails, since cobra skips post-run hooks on error.
func wrapFailureCleanup(root *cobra.Command, cleanup *func(failed bool)) *cobra.Command {
	for _, sub := range root.Commands() {
		runE := sub.RunE
		if runE == nil {
			continue
		}
		sub.RunE = func(cmd *cobra.Command, args []string) error {
			err := runE(cmd, args)
			if err != nil && *cleanup != nil {
				(*cleanup)(true)
				*cleanup = nil
			}
			return err
		}
	}
	return root
}

// main executes the root command with a signal-aware context. If command
// execution returns an error, the process exits with status code 1.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := newRootCmd()
	if err := root.ExecuteContext(ctx); err != nil {
		msg := strings.TrimSpace(err.Error())
		fmt.Fprintf(os.Stderr, "%s %s\n", color.New(color.FgRed, color.Bold).Sprint("error:"), msg)
		log.Debug().Err(err).Msg("Command failed")
		stop()
		os.Exit(1)
	}
}

func applyColorMode(cmd *cobra.Command) error {
	mode, err := cmd.Flags().GetString("color")
	if err != nil {
		return err
	}
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "", "auto":
		color.NoColor = os.Getenv("NO_COLOR") != "" || !isTerminal(os.Stdout)
	case "on", "always":
		color.NoColor = false
	case "off", "never":
		color.NoColor = true
	default:
		return fmt.Errorf("invalid --color value %q (expected auto|on|off)", mode)
	}
	return nil
}

// isTerminal reports whether f is attached to a terminal.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
