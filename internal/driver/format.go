package driver

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"reindent/internal/dispatch"
	"reindent/internal/indent"
	"reindent/internal/lang"
	"reindent/internal/observ"
	"reindent/internal/trace"
)

// ErrNoSourceFiles is returned when the given paths contain nothing to format.
var ErrNoSourceFiles = errors.New("format: no source files found")

// FormatOptions configures code formatting.
type FormatOptions struct {
	// Language forces a language for every file. Empty means detect by
	// extension.
	Language   lang.Language
	Unit       indent.Unit
	Extensions lang.ExtensionMap
	Dispatcher *dispatch.Dispatcher

	Check  bool
	Stdout bool
	Jobs   int

	Cache     *Cache
	CacheSalt string

	Progress ProgressSink
	Timer    *observ.Timer
	Logger   *zerolog.Logger
}

// FormatResult captures the result of formatting a single file.
type FormatResult struct {
	Path      string
	Language  lang.Language
	Changed   bool
	Cached    bool
	Degraded  bool
	Notice    string // fallback advisory, empty unless Degraded
	Strategy  string
	Err       error
	Formatted []byte
	Original  []byte
}

func (o *FormatOptions) withDefaults() FormatOptions {
	out := *o
	if out.Extensions == nil {
		out.Extensions = lang.DefaultExtensions()
	}
	if out.Dispatcher == nil {
		out.Dispatcher = dispatch.New()
	}
	if out.Jobs <= 0 {
		out.Jobs = runtime.GOMAXPROCS(0)
	}
	if out.Logger == nil {
		nop := zerolog.Nop()
		out.Logger = &nop
	}
	out.Unit = out.Unit.WithDefaults()
	return out
}

// FormatPaths formats provided files or directories. Directories are walked
// recursively and only files with a known extension are kept, unless
// opts.Language forces a language. Explicitly named files are always kept.
// When opts.Check is true, files are not modified; Changed indicates whether
// formatting would update the file contents. When opts.Stdout is true,
// formatted content is returned in the results without touching files on
// disk. Per-file failures are reported in FormatResult.Err.
func FormatPaths(ctx context.Context, paths []string, opts FormatOptions) ([]FormatResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	opts = opts.withDefaults()

	tracer := trace.FromContext(ctx)
	runSpan := trace.Begin(tracer, trace.ScopeRun, "fmt", trace.CurrentSpan(ctx))
	defer runSpan.End("")
	ctx = trace.WithSpan(ctx, runSpan)

	collectIdx := opts.Timer.Begin("collect")
	files, err := collectSourceFiles(ctx, paths, opts)
	opts.Timer.End(collectIdx, fmt.Sprintf("%d files", len(files)))
	if err != nil {
		runSpan.Fail(err)
		return nil, err
	}
	if len(files) == 0 {
		return nil, ErrNoSourceFiles
	}
	opts.Logger.Debug().Int("files", len(files)).Int("jobs", opts.Jobs).Msg("Formatting files")

	for _, path := range files {
		emit(opts.Progress, Event{File: path, Status: StatusQueued})
	}

	formatIdx := opts.Timer.Begin("format")
	results := make([]FormatResult, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(opts.Jobs, len(files)))
	for i, path := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = formatFile(gctx, path, &opts)
			return nil
		})
	}
	err = g.Wait()
	opts.Timer.End(formatIdx, "")
	if err != nil {
		// Cancelled: keep what finished.
		done := results[:0]
		for _, r := range results {
			if r.Path != "" {
				done = append(done, r)
			}
		}
		return done, err
	}
	return results, nil
}

// FormatSource formats data as if it were read from name. It never writes;
// the formatted bytes are always returned.
func FormatSource(ctx context.Context, name string, data []byte, opts FormatOptions) FormatResult {
	opts = opts.withDefaults()
	res := FormatResult{Path: name, Original: data}
	l, ok := resolveLanguage(name, &opts)
	if !ok {
		l = lang.Other
	}
	res.Language = l
	if err := formatBytes(ctx, data, &res, &opts); err != nil {
		res.Err = err
		return res
	}
	return res
}

func formatFile(ctx context.Context, path string, opts *FormatOptions) FormatResult {
	start := time.Now()
	span := trace.Begin(trace.FromContext(ctx), trace.ScopeFile, path, trace.CurrentSpan(ctx))
	ctx = trace.WithSpan(ctx, span)
	emit(opts.Progress, Event{File: path, Status: StatusWorking})

	res := FormatResult{Path: path}
	res.Err = formatFileInto(ctx, path, &res, opts)

	status := StatusDone
	switch {
	case res.Err != nil:
		status = StatusError
		span.Fail(res.Err)
		opts.Logger.Warn().Err(res.Err).Str("file", path).Msg("Format failed")
	case res.Cached:
		status = StatusCached
	case res.Degraded:
		status = StatusFallback
	}
	span.WithExtra("strategy", res.Strategy)
	elapsed := span.End(string(status))
	if elapsed == 0 {
		elapsed = time.Since(start)
	}
	emit(opts.Progress, Event{File: path, Status: status, Err: res.Err, Elapsed: elapsed})
	return res
}

func formatFileInto(ctx context.Context, path string, res *FormatResult, opts *FormatOptions) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	res.Original = data
	l, ok := resolveLanguage(path, opts)
	if !ok {
		l = lang.Other
	}
	res.Language = l
	if err := formatBytes(ctx, data, res, opts); err != nil {
		return err
	}
	if opts.Check || opts.Stdout {
		return nil
	}

	if res.Changed {
		mode := os.FileMode(0o644)
		if info, statErr := os.Stat(path); statErr == nil {
			mode = info.Mode()
		}
		if err := os.WriteFile(path, res.Formatted, mode.Perm()); err != nil {
			return err
		}
	}
	return nil
}

// formatBytes fills in the formatting outcome of res for data.
func formatBytes(ctx context.Context, data []byte, res *FormatResult, opts *FormatOptions) error {
	text, form, err := decodeSource(data)
	if err != nil {
		return err
	}

	key := CacheKey(text, res.Language, opts.Unit, opts.CacheSalt)
	payload, hit, err := opts.Cache.Get(key)
	if err != nil {
		opts.Logger.Debug().Err(err).Str("file", res.Path).Msg("Cache read failed")
	}
	if hit {
		res.Cached = true
	} else {
		out := opts.Dispatcher.Dispatch(ctx, dispatch.Request{Text: text, Language: res.Language, Unit: opts.Unit})
		payload = &CachePayload{
			Formatted: keepFinalNewline(text, out.Text),
			Strategy:  out.Strategy,
			Degraded:  out.Degraded,
			Reason:    out.Reason,
		}
		if err := opts.Cache.Put(key, payload); err != nil {
			opts.Logger.Debug().Err(err).Str("file", res.Path).Msg("Cache write failed")
		}
	}

	res.Strategy = payload.Strategy
	res.Degraded = payload.Degraded
	if payload.Degraded {
		res.Notice = Notice(payload.Reason)
	}
	res.Formatted, err = encodeSource(payload.Formatted, form)
	if err != nil {
		return err
	}
	res.Changed = string(res.Formatted) != string(data)
	return nil
}

// Notice renders the advisory shown when a fallback formatter was used.
func Notice(reason string) string {
	if reason == "" {
		return "using fallback formatter"
	}
	return fmt.Sprintf("using fallback formatter (%s)", reason)
}

// keepFinalNewline restores a trailing newline that a reflowing formatter
// dropped.
func keepFinalNewline(in, out string) string {
	if strings.HasSuffix(in, "\n") && !strings.HasSuffix(out, "\n") {
		return out + "\n"
	}
	return out
}

func resolveLanguage(path string, opts *FormatOptions) (lang.Language, bool) {
	if opts.Language != "" {
		return opts.Language, true
	}
	return opts.Extensions.Detect(path)
}

func collectSourceFiles(ctx context.Context, paths []string, opts FormatOptions) ([]string, error) {
	var files []string
	seen := make(map[string]struct{})
	addFile := func(path string) {
		if _, ok := seen[path]; ok {
			return
		}
		seen[path] = struct{}{}
		files = append(files, path)
	}
	known := func(path string) bool {
		_, ok := resolveLanguage(path, &opts)
		return ok
	}

	for _, p := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		info, err := os.Stat(p)
		if err != nil {
			return nil, err
		}
		if info.IsDir() {
			err = filepath.WalkDir(p, func(path string, d fs.DirEntry, err error) error {
				if err != nil {
					return err
				}
				if err := ctx.Err(); err != nil {
					return err
				}
				if d.IsDir() {
					if path != p && strings.HasPrefix(d.Name(), ".") {
						return filepath.SkipDir
					}
					return nil
				}
				if known(path) {
					addFile(path)
				}
				return nil
			})
			if err != nil {
				return nil, err
			}
			continue
		}
		addFile(p)
	}

	sort.Strings(files)
	return files, nil
}
