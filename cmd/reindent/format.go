package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/alecthomas/chroma/v2/quick"
	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"reindent/internal/config"
	"reindent/internal/dispatch"
	"reindent/internal/driver"
	"reindent/internal/indent"
	"reindent/internal/lang"
	"reindent/internal/logging"
	"reindent/internal/observ"
)

type fmtFlags struct {
	lang       string
	indent     string
	width      int
	check      bool
	stdout     bool
	diff       bool
	highlight  bool
	format     string
	jobs       int
	noCache    bool
	clearCache bool
	ui         string
}

var noteColor = color.New(color.FgYellow)

func newFmtCmd() *cobra.Command {
	var f fmtFlags
	cmd := &cobra.Command{
		Use:   "fmt [flags] <path|-> [path...]",
		Short: "Re-indent source files",
		Long: `Re-indent files in place. Directories are searched recursively for files
with a known extension. Use "-" to read from stdin and write to stdout.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFmt(cmd, args, &f)
		},
	}
	cmd.Flags().StringVar(&f.lang, "lang", "", "force a language instead of detecting it from the extension")
	cmd.Flags().StringVar(&f.indent, "indent", "", "indentation style (spaces|tab)")
	cmd.Flags().IntVar(&f.width, "width", 0, "spaces per indentation level")
	cmd.Flags().BoolVar(&f.check, "check", false, "check if files are properly indented")
	cmd.Flags().BoolVar(&f.stdout, "stdout", false, "print reindented code to stdout instead of rewriting files")
	cmd.Flags().BoolVar(&f.diff, "diff", false, "show a diff of the changes")
	cmd.Flags().BoolVar(&f.highlight, "highlight", false, "syntax-highlight code printed to stdout")
	cmd.Flags().StringVar(&f.format, "format", "text", "output format (text|json)")
	cmd.Flags().IntVar(&f.jobs, "jobs", 0, "max parallel files (0=auto)")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable the result cache")
	cmd.Flags().BoolVar(&f.clearCache, "clear-cache", false, "drop cached results before formatting")
	cmd.Flags().StringVar(&f.ui, "ui", "auto", "progress UI (auto|on|off)")
	return cmd
}

func runFmt(cmd *cobra.Command, args []string, f *fmtFlags) error {
	fromStdin := len(args) == 1 && args[0] == "-"
	if err := validateFmtFlags(f, fromStdin); err != nil {
		return err
	}
	mode, err := parseProgressMode(f.ui)
	if err != nil {
		return err
	}
	quiet, err := cmd.Root().PersistentFlags().GetBool("quiet")
	if err != nil {
		return err
	}
	timings, err := cmd.Root().PersistentFlags().GetBool("timings")
	if err != nil {
		return err
	}
	configPath, err := cmd.Root().PersistentFlags().GetString("config")
	if err != nil {
		return err
	}

	logger := logging.GetLogger("fmt")
	done := logging.LogOperationStart(logger, "fmt")
	defer done()

	cfg, err := config.Discover(".", configPath)
	if err != nil {
		return err
	}
	if cfg.Path != "" {
		logger.Info().Str("path", cfg.Path).Msg("Loaded config")
	}
	unit, err := resolveUnit(cfg.Unit, cmd.Flags(), f)
	if err != nil {
		return err
	}

	dispatchLogger := logging.GetLogger("dispatch")
	opts := driver.FormatOptions{
		Unit:       unit,
		Extensions: cfg.Extensions,
		Dispatcher: dispatch.New(
			dispatch.WithAdapters(cfg.Adapters),
			dispatch.WithRules(cfg.Rules),
			dispatch.WithLogger(dispatchLogger),
		),
		Check:     f.check,
		Stdout:    f.stdout || (fromStdin && !f.check),
		Jobs:      f.jobs,
		CacheSalt: cfg.Digest,
		Logger:    &logger,
	}
	if f.lang != "" {
		opts.Language = lang.Parse(f.lang)
	}
	if timings {
		opts.Timer = observ.NewTimer()
	}

	var results []driver.FormatResult
	if fromStdin {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("fmt: failed to read stdin: %w", err)
		}
		results = []driver.FormatResult{driver.FormatSource(cmd.Context(), "-", data, opts)}
	} else {
		if !f.noCache || f.clearCache {
			cache, err := openCache(logger, f.clearCache)
			if err != nil {
				return err
			}
			if !f.noCache {
				opts.Cache = cache
			}
		}
		if progressView(mode, len(args), !opts.Stdout && f.format == "text" && !quiet) {
			results, err = runFormatWithUI(cmd.Context(), "reindent fmt", args, opts)
		} else {
			results, err = driver.FormatPaths(cmd.Context(), args, opts)
		}
		if err != nil {
			return err
		}
	}

	var hasErrors, hasChanges bool
	out, errOut := cmd.OutOrStdout(), cmd.ErrOrStderr()
	switch f.format {
	case "text":
		switch {
		case opts.Stdout:
			renderFmtStdout(out, errOut, results, f, quiet, &hasErrors)
		default:
			renderFmtText(out, errOut, results, f, quiet, &hasErrors, &hasChanges)
		}
		printTimings(errOut, opts.Timer, len(results))
	case "json":
		if err := renderFmtJSON(out, results, f.check, opts.Timer, &hasErrors, &hasChanges); err != nil {
			return err
		}
	}

	if hasErrors {
		return fmt.Errorf("fmt: failed to format some files")
	}
	if f.check && hasChanges {
		return fmt.Errorf("fmt: indentation changes required")
	}
	return nil
}

// openCache opens the result cache, emptying it first when drop is set. A
// cache that cannot be opened only disables caching unless dropping was asked
// for.
func openCache(logger zerolog.Logger, drop bool) (*driver.Cache, error) {
	cache, err := driver.OpenCache("reindent")
	if err != nil {
		if drop {
			return nil, fmt.Errorf("fmt: failed to open cache: %w", err)
		}
		logger.Warn().Err(err).Msg("Result cache unavailable")
		return nil, nil
	}
	if drop {
		if err := cache.DropAll(); err != nil {
			return nil, fmt.Errorf("fmt: failed to clear cache: %w", err)
		}
		logger.Info().Str("dir", cache.Dir()).Msg("Cleared result cache")
	}
	return cache, nil
}

func validateFmtFlags(f *fmtFlags, fromStdin bool) error {
	switch f.format {
	case "text", "json":
	default:
		return fmt.Errorf("fmt: unsupported output format %q", f.format)
	}
	if f.stdout && f.check {
		return fmt.Errorf("fmt: --stdout cannot be used with --check")
	}
	if (f.stdout || fromStdin) && f.format != "text" && !f.check {
		return fmt.Errorf("fmt: --stdout is only supported with text output")
	}
	if f.diff && f.format != "text" {
		return fmt.Errorf("fmt: --diff is only supported with text output")
	}
	if f.highlight && !(f.stdout || fromStdin) {
		return fmt.Errorf("fmt: --highlight requires --stdout")
	}
	if f.width < 0 {
		return fmt.Errorf("fmt: --width must not be negative")
	}
	return nil
}

// resolveUnit applies --indent and --width on top of the configured unit.
func resolveUnit(base indent.Unit, flags *pflag.FlagSet, f *fmtFlags) (indent.Unit, error) {
	unit := base
	if flags.Changed("indent") {
		kind, err := indent.ParseKind(f.indent)
		if err != nil {
			return indent.Unit{}, fmt.Errorf("fmt: --indent: %w", err)
		}
		unit.Kind = kind
		if kind == indent.Spaces && base.Kind != indent.Spaces {
			unit.Width = indent.DefaultWidth
		}
	}
	if flags.Changed("width") && unit.Kind == indent.Spaces {
		unit.Width = f.width
	}
	unit = unit.WithDefaults()
	if err := unit.Validate(); err != nil {
		return indent.Unit{}, fmt.Errorf("fmt: %w", err)
	}
	return unit, nil
}

func printNotice(w io.Writer, res driver.FormatResult, quiet bool) {
	if res.Degraded && !quiet {
		noteColor.Fprintf(w, "note: %s: %s\n", res.Path, res.Notice)
	}
}

func renderFmtStdout(out, errOut io.Writer, results []driver.FormatResult, f *fmtFlags, quiet bool, hasErrors *bool) {
	for _, res := range results {
		if res.Err != nil {
			*hasErrors = true
			fmt.Fprintf(errOut, "fmt: %s: %v\n", res.Path, res.Err)
			continue
		}
		printNotice(errOut, res, quiet)
		writeCode(out, res, f.highlight)
	}
}

// writeCode prints formatted code, highlighted when asked and colors are on.
func writeCode(out io.Writer, res driver.FormatResult, highlight bool) {
	if highlight && !color.NoColor {
		err := quick.Highlight(out, string(res.Formatted), res.Language.LexerName(), "terminal256", "monokai")
		if err == nil {
			return
		}
	}
	_, _ = out.Write(res.Formatted)
}

func renderFmtText(out, errOut io.Writer, results []driver.FormatResult, f *fmtFlags, quiet bool, hasErrors, hasChanges *bool) {
	for _, res := range results {
		if res.Err != nil {
			*hasErrors = true
			fmt.Fprintf(errOut, "fmt: %s: %v\n", res.Path, res.Err)
			continue
		}
		printNotice(errOut, res, quiet)
		if !res.Changed {
			continue
		}
		*hasChanges = true
		if f.diff {
			renderDiff(out, res.Path, res.Original, res.Formatted)
			continue
		}
		if quiet {
			continue
		}
		if f.check {
			fmt.Fprintln(out, res.Path)
		} else {
			fmt.Fprintf(out, "reindented %s\n", res.Path)
		}
	}
}

type jsonResult struct {
	Path     string `json:"path"`
	Language string `json:"language"`
	Changed  bool   `json:"changed"`
	Strategy string `json:"strategy,omitempty"`
	Cached   bool   `json:"cached,omitempty"`
	Degraded bool   `json:"degraded,omitempty"`
	Notice   string `json:"notice,omitempty"`
	Error    string `json:"error,omitempty"`
	CheckRun bool   `json:"check"`
}

type jsonPayload struct {
	Files   []jsonResult   `json:"files"`
	Timings *observ.Report `json:"timings,omitempty"`
}

func renderFmtJSON(out io.Writer, results []driver.FormatResult, check bool, timer *observ.Timer, hasErrors, hasChanges *bool) error {
	payload := jsonPayload{Files: make([]jsonResult, 0, len(results))}
	for _, res := range results {
		jr := jsonResult{
			Path:     res.Path,
			Language: res.Language.String(),
			Changed:  res.Changed,
			Strategy: res.Strategy,
			Cached:   res.Cached,
			Degraded: res.Degraded,
			Notice:   res.Notice,
			CheckRun: check,
		}
		if res.Err != nil {
			jr.Error = res.Err.Error()
			*hasErrors = true
		}
		if res.Changed {
			*hasChanges = true
		}
		payload.Files = append(payload.Files, jr)
	}
	if timer != nil {
		report := timer.Report()
		payload.Timings = &report
	}

	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(payload)
}
