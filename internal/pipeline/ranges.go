package pipeline

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"unicode/utf8"

	pmerrors "github.com/Aman-CERP/pagemark/internal/errors"
	"github.com/Aman-CERP/pagemark/pkg/highlight"
)

// Range is a half-open annotation range over the whole document text, the
// concatenation of every page's logical text in page order. Offsets count
// characters, not bytes. When Text is set it is compared with the covered
// text and a mismatch is reported.
type Range struct {
	Start int    `json:"start_index"`
	End   int    `json:"end_index"`
	Text  string `json:"text,omitempty"`
}

// LoadRanges reads a JSON array of ranges and validates it.
func LoadRanges(r io.Reader) ([]Range, error) {
	var ranges []Range
	if err := json.NewDecoder(r).Decode(&ranges); err != nil {
		return nil, pmerrors.New(pmerrors.ErrCodeInvalidRange, "failed to decode ranges", err)
	}
	if err := ValidateRanges(ranges); err != nil {
		return nil, err
	}
	return ranges, nil
}

// LoadRangesFile reads ranges from a JSON file.
func LoadRangesFile(path string) ([]Range, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, pmerrors.Wrap(pmerrors.ErrCodeInvalidRange, err).WithDetail("path", path)
	}
	defer f.Close()

	ranges, err := LoadRanges(f)
	if pe, ok := pmerrors.As(err); ok {
		return nil, pe.WithDetail("path", path)
	}
	return ranges, err
}

// ValidateRanges rejects negative offsets and reversed ranges.
func ValidateRanges(ranges []Range) error {
	for i, r := range ranges {
		if r.Start < 0 || r.End < r.Start {
			return pmerrors.New(pmerrors.ErrCodeInvalidRange,
				fmt.Sprintf("range %d is invalid: [%d, %d)", i, r.Start, r.End), nil).
				WithDetail("index", fmt.Sprint(i)).
				WithSuggestion("start_index must be non-negative and not greater than end_index")
		}
	}
	return nil
}

// localRanges converts document ranges to byte ranges of text, the logical
// text of a page starting at character pageStart. Ranges are clamped to the
// page; empty ranges and ranges that miss the page are dropped.
func localRanges(ranges []Range, text string, pageStart int) []highlight.Match {
	if len(ranges) == 0 || text == "" {
		return nil
	}

	offsets := runeOffsets(text)
	chars := len(offsets) - 1
	pageEnd := pageStart + chars

	var local []highlight.Match
	for _, r := range ranges {
		if r.End <= r.Start || r.Start >= pageEnd || r.End <= pageStart {
			continue
		}
		local = append(local, highlight.Match{
			Start: offsets[max(0, r.Start-pageStart)],
			End:   offsets[min(chars, r.End-pageStart)],
		})
	}
	return local
}

// runeOffsets returns the byte offset of every character of text, plus
// len(text) as the final entry. An invalid byte counts as one character.
func runeOffsets(text string) []int {
	offsets := make([]int, 0, utf8.RuneCountInString(text)+1)
	for i := 0; i < len(text); {
		offsets = append(offsets, i)
		_, size := utf8.DecodeRuneInString(text[i:])
		i += size
	}
	return append(offsets, len(text))
}

// sliceChars returns characters [start, end) of text, clamped. offsets come
// from runeOffsets(text).
func sliceChars(text string, offsets []int, start, end int) string {
	chars := len(offsets) - 1
	start = min(max(start, 0), chars)
	end = min(max(end, start), chars)
	return text[offsets[start]:offsets[end]]
}

func hasRangeText(ranges []Range) bool {
	for _, r := range ranges {
		if r.Text != "" {
			return true
		}
	}
	return false
}

// rangeMismatch is a range whose Text differs from the text it covers.
type rangeMismatch struct {
	index  int
	actual string
}

// mismatchedRanges checks every range carrying Text against doc. Ranges
// without Text are not checked.
func mismatchedRanges(ranges []Range, doc string) []rangeMismatch {
	if !hasRangeText(ranges) {
		return nil
	}
	offsets := runeOffsets(doc)
	var out []rangeMismatch
	for i, r := range ranges {
		if r.Text == "" {
			continue
		}
		if actual := sliceChars(doc, offsets, r.Start, r.End); actual != r.Text {
			out = append(out, rangeMismatch{index: i, actual: actual})
		}
	}
	return out
}
