// Package pipeline runs keyword highlighting over every page of a document.
//
// Each page is rendered, its text extracted into a text layer and the layer
// highlighted. Pages are extracted concurrently and a failing page is recorded
// in its own result without affecting the others.
package pipeline

import (
	"context"
	"log/slog"
	"runtime"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"

	"github.com/Aman-CERP/pagemark/internal/document"
	pmerrors "github.com/Aman-CERP/pagemark/internal/errors"
	"github.com/Aman-CERP/pagemark/pkg/highlight"
	"github.com/Aman-CERP/pagemark/pkg/textlayer"
)

// DefaultScale is the viewport scale used when none is given.
const DefaultScale = 1.4

// Options configures a Run.
type Options struct {
	// Keyword to highlight. May be empty only when Ranges is set.
	Keyword string

	// CaseSensitive selects exact matching.
	CaseSensitive bool

	// ClassName is the class of the highlight element.
	ClassName string

	// MergeRanges gives each fragment one rewrite marking every range on it.
	MergeRanges bool

	// Scale is the viewport scale passed to rendering.
	Scale float64

	// Workers bounds the number of pages processed concurrently.
	Workers int

	// Ranges are document-absolute annotation ranges marked alongside the
	// keyword matches.
	Ranges []Range

	// Cache reuses markup of unchanged pages. Nil disables caching.
	Cache *Cache

	// Logger receives page events. Nil uses slog.Default().
	Logger *slog.Logger

	// Progress, when set, is called after each page is extracted with the
	// number of pages done so far. Calls are serialized.
	Progress func(done, total int)
}

// PageResult is the outcome of processing one page.
type PageResult struct {
	Page     int
	Viewport document.Viewport
	Canvas   document.Canvas
	Layer    *textlayer.Layer

	// Offset is the character position of the page's text in the document
	// text. Annotation ranges are expressed in the same units.
	Offset int

	// Length is the byte length of the page's logical text.
	Length int

	// Chars is the number of characters in the page's logical text.
	Chars int

	// Matches are the keyword matches, page-local.
	Matches []highlight.Match

	// Annotations are the annotation ranges that fell on this page, page-local.
	Annotations []highlight.Match

	// Touched is the number of fragments rewritten.
	Touched int

	// Cached reports whether the markup came from the cache.
	Cached bool

	// Err is set when the page failed. The other fields except Page are then
	// zero.
	Err error
}

// OK reports whether the page was processed.
func (r *PageResult) OK() bool {
	return r.Err == nil
}

// Report is the outcome of a Run.
type Report struct {
	Keyword          string
	Pages            []*PageResult
	TotalMatches     int
	TotalAnnotations int
	FailedPages      int
	RangeMismatches  int
	CacheHits        int
	Duration         time.Duration
}

// Failed returns the pages that failed, in page order.
func (r *Report) Failed() []*PageResult {
	var out []*PageResult
	for _, p := range r.Pages {
		if !p.OK() {
			out = append(out, p)
		}
	}
	return out
}

// Run processes every page of doc. Page failures are recorded in the report;
// an error is returned only for invalid options or a cancelled context.
func Run(ctx context.Context, doc document.Document, opts Options) (*Report, error) {
	start := time.Now()
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	h, err := newHighlighter(opts)
	if err != nil {
		return nil, err
	}
	if err := ValidateRanges(opts.Ranges); err != nil {
		return nil, err
	}

	scale := opts.Scale
	if scale <= 0 {
		scale = DefaultScale
	}

	pages, err := extractPages(ctx, doc, scale, opts.Workers, logger, opts.Progress)
	if err != nil {
		return nil, err
	}

	report := &Report{Keyword: opts.Keyword, Pages: pages}
	offset := 0
	checkText := hasRangeText(opts.Ranges)
	var docText strings.Builder
	for _, res := range pages {
		if !res.OK() {
			report.FailedPages++
			continue
		}
		text := strings.Join(res.Layer.RawTexts(), "")
		res.Offset = offset
		res.Chars = utf8.RuneCountInString(text)
		offset += res.Chars
		if checkText {
			docText.WriteString(text)
		}

		highlightPage(h, res, localRanges(opts.Ranges, text, res.Offset), opts.Cache)

		report.TotalMatches += len(res.Matches)
		report.TotalAnnotations += len(res.Annotations)
		if res.Cached {
			report.CacheHits++
		}
		if len(res.Matches) == 0 && len(res.Annotations) == 0 {
			logger.Info("no matches", slog.Int("page", res.Page))
			continue
		}
		logger.Info("page_highlighted",
			slog.Int("page", res.Page),
			slog.Int("matches", len(res.Matches)),
			slog.Int("annotations", len(res.Annotations)),
			slog.Int("fragments_touched", res.Touched),
			slog.Bool("cached", res.Cached))
	}

	for _, m := range mismatchedRanges(opts.Ranges, docText.String()) {
		r := opts.Ranges[m.index]
		report.RangeMismatches++
		logger.Warn("range_text_mismatch",
			slog.Int("range", m.index),
			slog.Int("start_index", r.Start),
			slog.Int("end_index", r.End),
			slog.String("expected", r.Text),
			slog.String("actual", m.actual))
	}

	report.Duration = time.Since(start)
	logger.Info("highlight_complete",
		slog.Int("pages", len(pages)),
		slog.Int("failed_pages", report.FailedPages),
		slog.Int("matches", report.TotalMatches),
		slog.Int("cache_hits", report.CacheHits),
		slog.Duration("duration", report.Duration))

	return report, nil
}

func newHighlighter(opts Options) (*highlight.Highlighter, error) {
	hopts := []highlight.Option{
		highlight.WithCaseSensitive(opts.CaseSensitive),
		highlight.WithClassName(opts.ClassName),
		highlight.WithMergeRanges(opts.MergeRanges),
	}
	if opts.Keyword == "" {
		if len(opts.Ranges) == 0 {
			return nil, pmerrors.New(pmerrors.ErrCodeKeywordEmpty, "a keyword or annotation ranges are required", highlight.ErrEmptyKeyword).
				WithSuggestion("Pass --keyword or set highlight.keyword in .pagemark.yaml")
		}
		return highlight.NewMarker(hopts...), nil
	}
	return highlight.New(opts.Keyword, hopts...)
}

// extractPages renders every page and builds its text layer, at most workers
// pages at a time. The returned slice is in page order.
func extractPages(ctx context.Context, doc document.Document, scale float64, workers int, logger *slog.Logger, progress func(done, total int)) ([]*PageResult, error) {
	n := doc.NumPages()
	results := make([]*PageResult, n)
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	g, gctx := errgroup.WithContext(ctx)
	sem := make(chan struct{}, workers)

	var mu sync.Mutex
	failed, done := 0, 0

	for i := range n {
		pageNum := i + 1
		g.Go(func() error {
			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-gctx.Done():
				return gctx.Err()
			}

			res := extractPage(gctx, doc, pageNum, scale)
			results[pageNum-1] = res
			if res.Err != nil && gctx.Err() != nil {
				return gctx.Err()
			}

			mu.Lock()
			done++
			if res.Err != nil {
				failed++
			}
			if progress != nil {
				progress(done, n)
			}
			mu.Unlock()

			if res.Err != nil {
				logger.Warn("page_failed", pmerrors.FormatForLog(res.Err)...)
			}
			// A failed page never fails the group.
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if failed > 0 {
		logger.Warn("some pages failed, continuing with partial results",
			slog.Int("failed", failed),
			slog.Int("pages", n))
	}
	return results, nil
}

func extractPage(ctx context.Context, doc document.Document, n int, scale float64) *PageResult {
	res := &PageResult{Page: n}

	page, err := doc.Page(ctx, n)
	if err != nil {
		res.Err = pmerrors.PageError(pmerrors.ErrCodePageRender, n, err)
		return res
	}

	vp := page.Viewport(scale)
	var canvas document.Canvas
	if err := page.Render(ctx, vp, &canvas); err != nil {
		res.Err = pmerrors.PageError(pmerrors.ErrCodePageRender, n, err)
		return res
	}

	tc, err := page.TextContent(ctx)
	if err != nil {
		res.Err = pmerrors.PageError(pmerrors.ErrCodeTextExtract, n, err)
		return res
	}

	layer := textlayer.NewLayer(n)
	length := 0
	for _, item := range tc.Items {
		layer.Append(item.Str, item.HasEOL)
		length += len(item.Str)
	}

	res.Viewport = vp
	res.Canvas = canvas
	res.Layer = layer
	res.Length = length
	return res
}

// highlightPage marks keyword matches and annotation ranges on the page's
// layer, reusing cached markup when the page is unchanged.
func highlightPage(h *highlight.Highlighter, res *PageResult, local []highlight.Match, cache *Cache) {
	key := ""
	if cache != nil {
		key = cacheKey(h, res.Layer.RawTexts(), local)
		if cp, ok := cache.get(key); ok && res.Layer.SetHTML(cp.html) {
			res.Matches = cp.matches
			res.Annotations = cp.annotations
			res.Touched = cp.touched
			res.Cached = true
			return
		}
	}

	logical, index := textlayer.BuildIndex(res.Layer.Fragments())
	matches := highlight.FindMatches(logical, h.Keyword(), h.CaseSensitive())

	all := make([]highlight.Match, 0, len(matches)+len(local))
	all = append(all, matches...)
	all = append(all, local...)
	applied := h.ApplyRanges(index, all)

	res.Matches = matches
	res.Annotations = local
	res.Touched = applied.Touched

	if cache != nil {
		cache.add(key, cachedPage{
			html:        res.Layer.HTML(),
			matches:     matches,
			annotations: local,
			touched:     applied.Touched,
		})
	}
}
