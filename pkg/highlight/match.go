package highlight

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Match is a half-open range [Start, End) of the logical text.
type Match struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Len returns the number of bytes covered by the match.
func (m Match) Len() int {
	return m.End - m.Start
}

// Overlaps reports whether m intersects the half-open range [start, end).
func (m Match) Overlaps(start, end int) bool {
	return m.End > start && m.Start < end
}

// FindMatches returns every occurrence of keyword in text, left to right.
//
// Matches never overlap: after a hit the search resumes at its end, so
// "aaaa" contains two matches of "aa", not three. An empty keyword yields no
// matches. When caseSensitive is false both strings are case-folded before the
// search; offsets still refer to text.
func FindMatches(text, keyword string, caseSensitive bool) []Match {
	if keyword == "" || len(keyword) > len(text) {
		return nil
	}

	if !caseSensitive {
		text = foldCase(text)
		keyword = foldCase(keyword)
	}

	var matches []Match
	pos := 0
	for pos <= len(text)-len(keyword) {
		i := strings.Index(text[pos:], keyword)
		if i < 0 {
			break
		}
		start := pos + i
		end := start + len(keyword)
		matches = append(matches, Match{Start: start, End: end})
		pos = end
	}

	return matches
}

// foldCase lower-cases s without changing the byte offset of any rune.
// Runes whose lower-case form has a different encoded length are kept as is.
func foldCase(s string) string {
	if !utf8.ValidString(s) {
		return asciiLower(s)
	}
	return strings.Map(func(r rune) rune {
		l := unicode.ToLower(r)
		if utf8.RuneLen(l) != utf8.RuneLen(r) {
			return r
		}
		return l
	}, s)
}

func asciiLower(s string) string {
	b := []byte(s)
	for i, c := range b {
		if 'A' <= c && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}
