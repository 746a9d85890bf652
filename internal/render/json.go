package render

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/Aman-CERP/pagemark/internal/document"
	pmerrors "github.com/Aman-CERP/pagemark/internal/errors"
	"github.com/Aman-CERP/pagemark/internal/pipeline"
	"github.com/Aman-CERP/pagemark/pkg/highlight"
)

// JSONReport is the JSON form of a pipeline report.
type JSONReport struct {
	Keyword          string     `json:"keyword,omitempty"`
	TotalMatches     int        `json:"total_matches"`
	TotalAnnotations int        `json:"total_annotations"`
	FailedPages      int        `json:"failed_pages"`
	RangeMismatches  int        `json:"range_mismatches,omitempty"`
	CacheHits        int        `json:"cache_hits"`
	DurationMS       int64      `json:"duration_ms"`
	Pages            []JSONPage `json:"pages"`
}

// JSONPage is the JSON form of one page result.
type JSONPage struct {
	Page             int                `json:"page"`
	Offset           int                `json:"offset"`
	Length           int                `json:"length"`
	Chars            int                `json:"chars"`
	Viewport         *document.Viewport `json:"viewport,omitempty"`
	Matches          []highlight.Match  `json:"matches"`
	Annotations      []highlight.Match  `json:"annotations,omitempty"`
	FragmentsTouched int                `json:"fragments_touched"`
	Cached           bool               `json:"cached,omitempty"`
	Fragments        []string           `json:"fragments,omitempty"`
	Error            json.RawMessage    `json:"error,omitempty"`
}

// JSONRenderer writes the report as indented JSON. Fragment markup is
// included for every processed page.
type JSONRenderer struct{}

// Render implements Renderer.
func (r *JSONRenderer) Render(w io.Writer, report *pipeline.Report) error {
	out, err := NewJSONReport(report)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	return nil
}

// NewJSONReport converts a pipeline report to its JSON form.
func NewJSONReport(report *pipeline.Report) (*JSONReport, error) {
	out := &JSONReport{
		Keyword:          report.Keyword,
		TotalMatches:     report.TotalMatches,
		TotalAnnotations: report.TotalAnnotations,
		FailedPages:      report.FailedPages,
		RangeMismatches:  report.RangeMismatches,
		CacheHits:        report.CacheHits,
		DurationMS:       report.Duration.Milliseconds(),
		Pages:            make([]JSONPage, 0, len(report.Pages)),
	}

	for _, p := range report.Pages {
		jp := JSONPage{Page: p.Page, Matches: []highlight.Match{}}
		if !p.OK() {
			raw, err := pmerrors.FormatJSON(p.Err)
			if err != nil {
				return nil, fmt.Errorf("encode page %d error: %w", p.Page, err)
			}
			jp.Error = raw
			out.Pages = append(out.Pages, jp)
			continue
		}

		vp := p.Viewport
		jp.Offset = p.Offset
		jp.Length = p.Length
		jp.Chars = p.Chars
		jp.Viewport = &vp
		if len(p.Matches) > 0 {
			jp.Matches = p.Matches
		}
		jp.Annotations = p.Annotations
		jp.FragmentsTouched = p.Touched
		jp.Cached = p.Cached
		jp.Fragments = p.Layer.HTML()
		out.Pages = append(out.Pages, jp)
	}
	return out, nil
}
