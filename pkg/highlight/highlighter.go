package highlight

import (
	"errors"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/Aman-CERP/pagemark/pkg/textlayer"
)

// ErrEmptyKeyword is returned when creating a Highlighter without a keyword.
var ErrEmptyKeyword = errors.New("keyword is required")

// binarySearchThreshold is the index size above which the first fragment
// intersecting a match is located with binary search instead of a scan.
const binarySearchThreshold = 64

// Result summarizes one highlight pass over a page.
type Result struct {
	// Matches are the ranges that were applied, in increasing order.
	Matches []Match

	// Touched is the number of distinct fragments whose markup was replaced.
	Touched int
}

// Highlighter marks keyword occurrences in text-layer fragments.
type Highlighter struct {
	keyword       string
	caseSensitive bool
	className     string
	mergeRanges   bool
}

// Option configures a Highlighter.
type Option func(*Highlighter)

// WithCaseSensitive selects exact (true, the default) or case-folded matching.
func WithCaseSensitive(sensitive bool) Option {
	return func(h *Highlighter) {
		h.caseSensitive = sensitive
	}
}

// WithClassName sets the class of the highlight element.
func WithClassName(name string) Option {
	return func(h *Highlighter) {
		if name != "" {
			h.className = name
		}
	}
}

// WithMergeRanges makes each touched fragment receive a single rewrite that
// marks every range intersecting it, instead of one rewrite per match.
func WithMergeRanges(merge bool) Option {
	return func(h *Highlighter) {
		h.mergeRanges = merge
	}
}

// New creates a Highlighter for keyword.
//
// Returns ErrEmptyKeyword if keyword is empty.
func New(keyword string, opts ...Option) (*Highlighter, error) {
	if keyword == "" {
		return nil, ErrEmptyKeyword
	}

	h := &Highlighter{
		keyword:       keyword,
		caseSensitive: true,
		className:     DefaultClassName,
	}
	for _, opt := range opts {
		opt(h)
	}

	return h, nil
}

// NewMarker creates a Highlighter without a keyword. Highlight finds nothing;
// ranges are marked only through ApplyRanges.
func NewMarker(opts ...Option) *Highlighter {
	h := &Highlighter{
		caseSensitive: true,
		className:     DefaultClassName,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Keyword returns the keyword being highlighted.
func (h *Highlighter) Keyword() string {
	return h.keyword
}

// CaseSensitive reports whether matching is exact.
func (h *Highlighter) CaseSensitive() bool {
	return h.caseSensitive
}

// ClassName returns the class of the highlight element.
func (h *Highlighter) ClassName() string {
	return h.className
}

// MergeRanges reports whether same-fragment ranges are merged into one rewrite.
func (h *Highlighter) MergeRanges() bool {
	return h.mergeRanges
}

// Highlight indexes frags, searches the logical text for the keyword and
// rewrites every fragment a match intersects. Fragments are left untouched
// when there is no match.
func (h *Highlighter) Highlight(frags []textlayer.Fragment) Result {
	logical, index := textlayer.BuildIndex(frags)
	matches := FindMatches(logical, h.keyword, h.caseSensitive)
	if len(matches) == 0 {
		return Result{}
	}
	return Result{
		Matches: matches,
		Touched: h.Apply(index, matches),
	}
}

// ApplyRanges rewrites fragments for caller-supplied ranges of the logical
// text. Ranges are clamped to the indexed text, empty ranges are dropped and
// the remainder is sorted by start. Overlapping ranges are kept as given.
func (h *Highlighter) ApplyRanges(index []textlayer.FragmentInfo, ranges []Match) Result {
	total := 0
	if n := len(index); n > 0 {
		total = index[n-1].End
	}

	clean := make([]Match, 0, len(ranges))
	for _, r := range ranges {
		r.Start = clamp(r.Start, 0, total)
		r.End = clamp(r.End, 0, total)
		if r.End <= r.Start {
			continue
		}
		clean = append(clean, r)
	}
	if len(clean) == 0 {
		return Result{}
	}
	sort.SliceStable(clean, func(i, j int) bool {
		return clean[i].Start < clean[j].Start
	})

	return Result{
		Matches: clean,
		Touched: h.Apply(index, clean),
	}
}

// Apply rewrites the fragments of index intersected by matches and returns
// the number of distinct fragments rewritten. matches must be sorted by start.
func (h *Highlighter) Apply(index []textlayer.FragmentInfo, matches []Match) int {
	touched := make(map[int]struct{})

	if h.mergeRanges {
		perFragment := make(map[int][]Match)
		var order []int
		for _, m := range matches {
			h.forEachIntersecting(index, m, func(i int, local Match) {
				if _, seen := perFragment[i]; !seen {
					order = append(order, i)
				}
				perFragment[i] = append(perFragment[i], local)
			})
		}
		for _, i := range order {
			info := index[i]
			info.Fragment.SetHTML(h.rewrite(info.Text, perFragment[i]))
			touched[i] = struct{}{}
		}
		return len(touched)
	}

	for _, m := range matches {
		h.forEachIntersecting(index, m, func(i int, local Match) {
			info := index[i]
			info.Fragment.SetHTML(h.rewrite(info.Text, []Match{local}))
			touched[i] = struct{}{}
		})
	}
	return len(touched)
}

// forEachIntersecting calls fn with the position and fragment-local range of
// every fragment intersecting m. Zero-length and nil fragments are skipped.
func (h *Highlighter) forEachIntersecting(index []textlayer.FragmentInfo, m Match, fn func(i int, local Match)) {
	first := 0
	if len(index) > binarySearchThreshold {
		first = sort.Search(len(index), func(i int) bool {
			return index[i].End > m.Start
		})
	}

	for i := first; i < len(index); i++ {
		info := index[i]
		if info.Start >= m.End {
			break
		}
		if info.Fragment == nil || info.Start == info.End || !m.Overlaps(info.Start, info.End) {
			continue
		}
		fn(i, Match{
			Start: max(0, m.Start-info.Start),
			End:   min(len(info.Text), m.End-info.Start),
		})
	}
}

// rewrite renders text with the given sorted local ranges marked. Text
// between and around the ranges is escaped and left unwrapped. Range edges
// inside a multi-byte character widen to cover the whole character, and a
// range left empty by an earlier one emits no markup.
func (h *Highlighter) rewrite(text string, ranges []Match) string {
	var sb strings.Builder
	cursor := 0
	for _, r := range ranges {
		start := clamp(runeStart(text, r.Start), cursor, len(text))
		end := clamp(runeEnd(text, r.End), start, len(text))
		if start == end {
			continue
		}
		sb.WriteString(EscapeHTML(text[cursor:start]))
		sb.WriteString(Markup(EscapeHTML(text[start:end]), h.className))
		cursor = end
	}
	sb.WriteString(EscapeHTML(text[cursor:]))
	return sb.String()
}

// runeStart moves i back to the start of the character containing it.
func runeStart(text string, i int) int {
	i = clamp(i, 0, len(text))
	for i > 0 && i < len(text) && !utf8.RuneStart(text[i]) {
		i--
	}
	return i
}

// runeEnd moves i forward to the end of the character containing it.
func runeEnd(text string, i int) int {
	i = clamp(i, 0, len(text))
	for i < len(text) && !utf8.RuneStart(text[i]) {
		i++
	}
	return i
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
