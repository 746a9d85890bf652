package textlayer

// Layer is the ordered set of spans built for one page.
type Layer struct {
	page  int
	spans []*Span
}

// NewLayer creates an empty layer for the given 1-based page number.
func NewLayer(page int) *Layer {
	return &Layer{page: page}
}

// Page returns the page number the layer belongs to.
func (l *Layer) Page() int {
	return l.page
}

// Append adds a span at the end of the layer and returns it.
func (l *Layer) Append(raw string, hasEOL bool) *Span {
	s := NewSpan(raw, hasEOL)
	l.spans = append(l.spans, s)
	return s
}

// Spans returns the layer's spans in order.
func (l *Layer) Spans() []*Span {
	return l.spans
}

// Len returns the number of spans.
func (l *Layer) Len() int {
	return len(l.spans)
}

// Fragments returns the spans as Fragment handles, in order.
func (l *Layer) Fragments() []Fragment {
	frags := make([]Fragment, len(l.spans))
	for i, s := range l.spans {
		frags[i] = s
	}
	return frags
}

// RawTexts returns the raw text of every span, in order.
func (l *Layer) RawTexts() []string {
	texts := make([]string, len(l.spans))
	for i, s := range l.spans {
		texts[i] = s.raw
	}
	return texts
}

// HTML returns the display markup of every span, in order.
func (l *Layer) HTML() []string {
	out := make([]string, len(l.spans))
	for i, s := range l.spans {
		out[i] = s.html
	}
	return out
}

// SetHTML overwrites the display markup of every span. It is used to restore
// previously computed markup; len(html) must equal Len().
func (l *Layer) SetHTML(html []string) bool {
	if len(html) != len(l.spans) {
		return false
	}
	for i, s := range l.spans {
		s.html = html[i]
	}
	return true
}

// Reset restores every span's display markup to its escaped raw text.
func (l *Layer) Reset() {
	for _, s := range l.spans {
		s.Reset()
	}
}
