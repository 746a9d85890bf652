package textlayer

import "strings"

// Fragment is a handle to one text-bearing node of a text layer.
//
// RawText returns the text as originally extracted and must not change over
// the fragment's lifetime. SetHTML replaces the node's displayed content
// wholesale.
type Fragment interface {
	RawText() string
	SetHTML(html string)
}

// Span is the text layer node used by the renderers. It keeps the extracted
// text and the display markup in separate fields.
type Span struct {
	raw    string
	html   string
	hasEOL bool
}

// NewSpan creates a span whose display markup is the escaped raw text.
func NewSpan(raw string, hasEOL bool) *Span {
	return &Span{
		raw:    raw,
		html:   escape(raw),
		hasEOL: hasEOL,
	}
}

// RawText implements Fragment.
func (s *Span) RawText() string {
	return s.raw
}

// SetHTML implements Fragment.
func (s *Span) SetHTML(html string) {
	s.html = html
}

// HTML returns the markup currently displayed for the span.
func (s *Span) HTML() string {
	return s.html
}

// HasEOL reports whether the extractor marked the end of a line after this span.
func (s *Span) HasEOL() bool {
	return s.hasEOL
}

// Modified reports whether the display markup differs from the escaped raw text.
func (s *Span) Modified() bool {
	return s.html != escape(s.raw)
}

// Reset restores the display markup to the escaped raw text.
func (s *Span) Reset() {
	s.html = escape(s.raw)
}

var htmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
)

// escape mirrors highlight.EscapeHTML. It is duplicated here so that the
// text layer does not depend on the highlighter.
func escape(s string) string {
	return htmlEscaper.Replace(s)
}
