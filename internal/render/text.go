package render

import (
	"bufio"
	"fmt"
	"io"

	"github.com/Aman-CERP/pagemark/internal/pipeline"
	"github.com/Aman-CERP/pagemark/internal/ui"
	"github.com/Aman-CERP/pagemark/pkg/highlight"
)

// mark kinds, in increasing precedence.
const (
	markNone byte = iota
	markAnnotation
	markMatch
)

// TextRenderer writes page text to a terminal with highlighted ranges styled.
type TextRenderer struct {
	title  string
	styles ui.Styles
}

// Render implements Renderer.
func (r *TextRenderer) Render(w io.Writer, report *pipeline.Report) error {
	bw := bufio.NewWriter(w)
	st := r.styles

	fmt.Fprintln(bw, st.Header.Render(title(r.title, report)))
	for _, p := range report.Pages {
		fmt.Fprintln(bw)
		if !p.OK() {
			fmt.Fprintln(bw, st.Error.Render(fmt.Sprintf("Page %d failed: %v", p.Page, p.Err)))
			continue
		}
		fmt.Fprintf(bw, "%s %s\n",
			st.Header.Render(fmt.Sprintf("Page %d", p.Page)),
			st.Label.Render(fmt.Sprintf("(%d matches)", len(p.Matches))))
		r.writePage(bw, p)
	}
	fmt.Fprintln(bw)
	fmt.Fprintln(bw, st.Label.Render(summary(report)))

	return bw.Flush()
}

// writePage writes the page's raw text, styling the bytes covered by matches
// and annotations. Line breaks follow the extractor's end-of-line flags.
func (r *TextRenderer) writePage(w io.Writer, p *pipeline.PageResult) {
	marks := make([]byte, p.Length)
	paint(marks, p.Annotations, markAnnotation)
	paint(marks, p.Matches, markMatch)

	offset := 0
	lineOpen := false
	for _, s := range p.Layer.Spans() {
		text := s.RawText()
		start := 0
		for start < len(text) {
			kind := marks[offset+start]
			end := start + 1
			for end < len(text) && marks[offset+end] == kind {
				end++
			}
			io.WriteString(w, r.style(kind, text[start:end]))
			start = end
		}
		offset += len(text)
		lineOpen = lineOpen || len(text) > 0
		if s.HasEOL() {
			io.WriteString(w, "\n")
			lineOpen = false
		}
	}
	if lineOpen {
		io.WriteString(w, "\n")
	}
}

func (r *TextRenderer) style(kind byte, s string) string {
	switch kind {
	case markMatch:
		return r.styles.Highlight.Render(s)
	case markAnnotation:
		return r.styles.Annotation.Render(s)
	default:
		return s
	}
}

func paint(marks []byte, ranges []highlight.Match, kind byte) {
	for _, m := range ranges {
		for i := max(0, m.Start); i < min(len(marks), m.End); i++ {
			marks[i] = max(marks[i], kind)
		}
	}
}
