package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/pagemark/internal/config"
	"github.com/Aman-CERP/pagemark/internal/document"
	pmerrors "github.com/Aman-CERP/pagemark/internal/errors"
	"github.com/Aman-CERP/pagemark/internal/logging"
	"github.com/Aman-CERP/pagemark/internal/output"
	"github.com/Aman-CERP/pagemark/internal/pipeline"
	"github.com/Aman-CERP/pagemark/internal/render"
	"github.com/Aman-CERP/pagemark/internal/ui"
	"github.com/Aman-CERP/pagemark/internal/watcher"
)

// highlightFlags holds the flag values of the highlight command. Only flags
// the user actually set override the loaded configuration.
type highlightFlags struct {
	keyword     string
	ignoreCase  bool
	format      string
	output      string
	ranges      string
	mergeRanges bool
	workers     int
	scale       float64
	watch       bool
	inputFormat string
	noColor     bool
	className   string
}

func newHighlightCmd() *cobra.Command {
	f := &highlightFlags{}

	cmd := &cobra.Command{
		Use:   "highlight <file>",
		Short: "Highlight a keyword in every page of a document",
		Long: `Rebuild the text layer of every page and mark each occurrence of the
keyword. Annotation ranges (document-absolute start_index/end_index pairs)
can be marked at the same time with --ranges.

Pages that fail to load are reported and skipped; the remaining pages are
still highlighted.`,
		Example: `  # Highlight "invoice" and write an HTML text layer
  pagemark highlight report.json -k invoice -o report.html

  # Case-insensitive, printed to the terminal
  pagemark highlight notes.txt -k TODO --ignore-case --format text

  # Keyword plus annotation ranges, re-run on change
  pagemark highlight report.json -k total --ranges notes.json --watch -o out.html`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runHighlight(ctx, cmd, args[0], f)
		},
	}

	cmd.Flags().StringVarP(&f.keyword, "keyword", "k", "", "Keyword to highlight")
	cmd.Flags().BoolVar(&f.ignoreCase, "ignore-case", false, "Match the keyword case-insensitively")
	cmd.Flags().StringVar(&f.format, "format", "", "Output format: html, text, json")
	cmd.Flags().StringVarP(&f.output, "output", "o", "", "Output file (default: stdout)")
	cmd.Flags().StringVar(&f.ranges, "ranges", "", "JSON file of annotation ranges to mark")
	cmd.Flags().BoolVar(&f.mergeRanges, "merge-ranges", false, "Mark all ranges on a fragment in a single rewrite")
	cmd.Flags().IntVar(&f.workers, "workers", 0, "Pages processed concurrently (default: number of CPUs)")
	cmd.Flags().Float64Var(&f.scale, "scale", 0, "Viewport scale (default: 1.4)")
	cmd.Flags().BoolVar(&f.watch, "watch", false, "Re-run when the document, ranges or config change")
	cmd.Flags().StringVar(&f.inputFormat, "input-format", document.FormatAuto, "Input format: auto, textcontent, text")
	cmd.Flags().BoolVar(&f.noColor, "no-color", false, "Disable colored output")
	cmd.Flags().StringVar(&f.className, "class", "", "CSS class of highlight elements")

	return cmd
}

// loadHighlightConfig loads configuration for the working directory and
// applies the flags that were set.
func loadHighlightConfig(cmd *cobra.Command, f *highlightFlags) (*config.Config, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get current directory: %w", err)
	}
	cfg, err := config.Load(cwd)
	if err != nil {
		return nil, pmerrors.ConfigError(err.Error(), err)
	}

	flags := cmd.Flags()
	if flags.Changed("keyword") {
		cfg.Highlight.Keyword = f.keyword
	}
	if flags.Changed("ignore-case") {
		cfg.Highlight.CaseSensitive = !f.ignoreCase
	}
	if flags.Changed("class") {
		cfg.Highlight.ClassName = f.className
	}
	if flags.Changed("merge-ranges") {
		cfg.Highlight.MergeFragmentRanges = f.mergeRanges
	}
	if flags.Changed("format") {
		cfg.Render.Format = f.format
	}
	if flags.Changed("scale") {
		cfg.Render.Scale = f.scale
	}
	if flags.Changed("no-color") {
		cfg.Render.NoColor = f.noColor
	}
	if flags.Changed("workers") {
		cfg.Performance.PageWorkers = f.workers
	}

	if err := cfg.Validate(); err != nil {
		return nil, pmerrors.New(pmerrors.ErrCodeInvalidInput, err.Error(), err)
	}
	return cfg, nil
}

func runHighlight(ctx context.Context, cmd *cobra.Command, path string, f *highlightFlags) error {
	cfg, err := loadHighlightConfig(cmd, f)
	if err != nil {
		return err
	}

	if !debugMode {
		slog.SetDefault(logging.NewStderrLogger(cfg.Logging.Level, cmd.ErrOrStderr()))
	}
	status := output.New(cmd.ErrOrStderr(), cfg.Render.NoColor)

	if !f.watch {
		_, err := highlightOnce(ctx, cmd, path, f, cfg, nil, status)
		return err
	}

	cache := pipeline.NewCache(cfg.Performance.CacheSize)
	if _, err := highlightOnce(ctx, cmd, path, f, cfg, cache, status); err != nil {
		// Keep watching so the user can fix the input.
		status.Error(firstLine(err))
	}
	return watchAndRerun(ctx, cmd, path, f, cfg, cache, status)
}

// highlightOnce loads the document and ranges, runs the pipeline and writes
// the rendered report.
func highlightOnce(ctx context.Context, cmd *cobra.Command, path string, f *highlightFlags,
	cfg *config.Config, cache *pipeline.Cache, status *output.Writer) (*pipeline.Report, error) {
	doc, err := document.Open(path, f.inputFormat)
	if err != nil {
		return nil, err
	}
	defer doc.Close()

	var ranges []pipeline.Range
	if f.ranges != "" {
		ranges, err = pipeline.LoadRangesFile(f.ranges)
		if err != nil {
			return nil, err
		}
	}

	report, err := pipeline.Run(ctx, doc, pipeline.Options{
		Keyword:       cfg.Highlight.Keyword,
		CaseSensitive: cfg.Highlight.CaseSensitive,
		ClassName:     cfg.Highlight.ClassName,
		MergeRanges:   cfg.Highlight.MergeFragmentRanges,
		Scale:         cfg.Render.Scale,
		Workers:       cfg.Performance.PageWorkers,
		Ranges:        ranges,
		Cache:         cache,
		Logger:        slog.Default(),
		Progress: func(done, total int) {
			status.Progress(done, total, "pages")
		},
	})
	if err != nil {
		return nil, err
	}

	renderer, err := newRenderer(cmd.OutOrStdout(), f.output, cfg)
	if err != nil {
		return nil, err
	}
	if err := render.Write(cmd.OutOrStdout(), f.output, renderer, report); err != nil {
		return nil, err
	}

	reportSummary(status, report, f.output)
	return report, nil
}

// newRenderer colors text output only when it goes to a terminal.
func newRenderer(stdout io.Writer, outPath string, cfg *config.Config) (render.Renderer, error) {
	styles := ui.NoColorStyles()
	if outPath == "" || outPath == "-" {
		styles = ui.StylesFor(stdout, cfg.Render.NoColor)
	}
	return render.New(cfg.Render.Format, render.Options{
		ClassName: cfg.Highlight.ClassName,
		Styles:    &styles,
	})
}

func reportSummary(status *output.Writer, report *pipeline.Report, outPath string) {
	for _, p := range report.Failed() {
		status.Warningf("page %d skipped: %s", p.Page, firstLine(p.Err))
	}

	if report.RangeMismatches > 0 {
		status.Warningf("%d annotation ranges do not cover their text", report.RangeMismatches)
	}

	msg := fmt.Sprintf("%d matches on %d pages", report.TotalMatches, len(report.Pages))
	if report.TotalAnnotations > 0 {
		msg += fmt.Sprintf(", %d annotations", report.TotalAnnotations)
	}
	if report.CacheHits > 0 {
		msg += fmt.Sprintf(", %d cached", report.CacheHits)
	}
	if outPath != "" && outPath != "-" {
		msg += " → " + outPath
	}
	if report.FailedPages > 0 {
		status.Warning(msg)
		return
	}
	status.Success(msg)
}

// watchAndRerun re-runs the highlight whenever the document, ranges file or
// project config changes. Config changes reload configuration first.
func watchAndRerun(ctx context.Context, cmd *cobra.Command, path string, f *highlightFlags,
	cfg *config.Config, cache *pipeline.Cache, status *output.Writer) error {
	debounce, err := cfg.WatchDebounce()
	if err != nil {
		return pmerrors.ConfigError("invalid watch debounce", err)
	}

	opts := watcher.DefaultOptions()
	if debounce > 0 {
		opts.DebounceWindow = debounce
	}
	w, err := watcher.NewFileWatcher(opts)
	if err != nil {
		return pmerrors.Wrap(pmerrors.ErrCodeInternal, err)
	}
	defer func() { _ = w.Stop() }()

	targets := watchTargets(path, f.ranges)
	go func() {
		if err := w.Start(ctx, targets...); err != nil && ctx.Err() == nil {
			slog.Error("watcher stopped", slog.String("error", err.Error()))
		}
	}()

	status.Statusf("👀", "Watching %d files (%s), Ctrl-C to stop", len(targets), w.WatcherType())

	for {
		select {
		case <-ctx.Done():
			status.Newline()
			return nil
		case err, ok := <-w.Errors():
			if !ok {
				return nil
			}
			slog.Warn("watch error", slog.String("error", err.Error()))
		case batch, ok := <-w.Events():
			if !ok {
				return nil
			}
			slog.Debug("change detected", slog.Int("events", len(batch)))

			if watcher.HasConfigChange(batch) {
				reloaded, err := loadHighlightConfig(cmd, f)
				if err != nil {
					status.Error(firstLine(err))
					continue
				}
				cfg = reloaded
				status.Status("🔄", "Configuration reloaded")
			}

			if _, err := highlightOnce(ctx, cmd, path, f, cfg, cache, status); err != nil {
				status.Error(firstLine(err))
			}
		}
	}
}

// watchTargets returns the document, the ranges file and the project config
// location. The config may not exist yet; creating it triggers a reload.
func watchTargets(path, rangesPath string) []string {
	targets := []string{path}
	if rangesPath != "" {
		targets = append(targets, rangesPath)
	}
	cwd, err := os.Getwd()
	if err != nil {
		return targets
	}
	if p := config.ProjectConfigPath(cwd); p != "" {
		return append(targets, p)
	}
	return append(targets, filepath.Join(cwd, ".pagemark.yaml"))
}

// firstLine returns the CLI message of err without hint and code lines.
func firstLine(err error) string {
	if pe, ok := pmerrors.As(err); ok {
		return fmt.Sprintf("%s (%s)", pe.Message, pe.Code)
	}
	return err.Error()
}
