// Package textlayer models the text layer laid over a rendered page.
//
// A text layer is an ordered list of fragments, one per visually distinct run
// of characters produced by the text-extraction step. Each fragment keeps the
// text it was extracted with and, separately, the markup currently displayed
// for it:
//
//	layer := textlayer.NewLayer(1)
//	layer.Append("The ", false)
//	layer.Append("core ten", false)
//	layer.Append("sor is here", true)
//
//	logical, index := textlayer.BuildIndex(layer.Fragments())
//	// logical == "The core tensor is here"
//	// index[1].Start == 4, index[1].End == 12
//
// Offsets in a [FragmentInfo] always refer to the raw text. Rewriting the
// displayed markup of a fragment never moves them, so several highlight passes
// over the same page resolve against the same positions.
package textlayer
