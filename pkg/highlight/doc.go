// Package highlight finds keyword occurrences in a page's logical text and
// rewrites the text-layer fragments they touch.
//
// A page is processed in two steps. The fragments are first concatenated with
// [textlayer.BuildIndex]; the resulting logical text is searched and every
// fragment whose range intersects a match is rewritten into
// before/highlight/after segments:
//
//	h, err := highlight.New("core tensor")
//	if err != nil {
//	    return err
//	}
//	res := h.Highlight(layer.Fragments())
//	fmt.Println(len(res.Matches), "matches,", res.Touched, "fragments rewritten")
//
// # Overlapping rewrites
//
// Each match rewrites a fragment from its pristine raw text. When two matches
// touch the same fragment, the later rewrite replaces the earlier one, so only
// the last match is visible in that fragment. [WithMergeRanges] opts into a
// single rewrite per fragment that marks every range.
//
// # Thread Safety
//
// A Highlighter holds no per-page state and is safe for concurrent use. The
// fragments passed to it must not be shared between goroutines.
package highlight
