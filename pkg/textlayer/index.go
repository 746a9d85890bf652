package textlayer

import "strings"

// FragmentInfo maps a fragment to its range in the page's logical text.
//
// End-Start always equals len(Text), and Text is the fragment's raw text,
// never its rewritten markup.
type FragmentInfo struct {
	Fragment Fragment
	Start    int
	End      int
	Text     string
}

// Len returns the length of the fragment's range.
func (fi FragmentInfo) Len() int {
	return fi.End - fi.Start
}

// BuildIndex concatenates the raw text of frags in order and records the
// offsets of each fragment in the result.
//
// No normalization is applied. Empty fragments get a zero-length range, and a
// nil fragment is indexed as empty text.
func BuildIndex(frags []Fragment) (string, []FragmentInfo) {
	var sb strings.Builder
	index := make([]FragmentInfo, 0, len(frags))

	for _, f := range frags {
		text := ""
		if f != nil {
			text = f.RawText()
		}
		start := sb.Len()
		sb.WriteString(text)
		index = append(index, FragmentInfo{
			Fragment: f,
			Start:    start,
			End:      sb.Len(),
			Text:     text,
		})
	}

	return sb.String(), index
}
