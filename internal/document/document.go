// Package document defines the collaborators the highlighting pipeline
// consumes: a paged document, its per-page viewport and render surface, and
// the extracted text content. Two loaders are provided, one for pdf.js style
// text-content dumps and one for plain text.
package document

import (
	"context"
	"math"
)

// Document is a paged source of text content.
type Document interface {
	// NumPages returns the number of pages.
	NumPages() int

	// Page returns page n, numbered from 1.
	Page(ctx context.Context, n int) (Page, error)

	// Close releases resources held by the document.
	Close() error
}

// Page is a single page of a Document.
type Page interface {
	// Number returns the 1-based page number.
	Number() int

	// Viewport returns the page geometry at the given scale.
	Viewport(scale float64) Viewport

	// Render draws the page onto s sized to vp.
	Render(ctx context.Context, vp Viewport, s Surface) error

	// TextContent extracts the ordered text items of the page.
	TextContent(ctx context.Context) (TextContent, error)
}

// Viewport is the scaled geometry of a page.
type Viewport struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Scale  float64 `json:"scale"`
}

// PixelSize returns the viewport size rounded up to whole pixels.
func (v Viewport) PixelSize() (int, int) {
	return int(math.Ceil(v.Width)), int(math.Ceil(v.Height))
}

// Surface is the opaque target a page is rendered onto.
type Surface interface {
	Resize(width, height int)
}

// Canvas is an in-memory Surface that records the rendered size.
type Canvas struct {
	Width    int  `json:"width"`
	Height   int  `json:"height"`
	Rendered bool `json:"-"`
}

// Resize implements Surface.
func (c *Canvas) Resize(width, height int) {
	c.Width = width
	c.Height = height
	c.Rendered = true
}

// TextItem is one run of extracted text.
type TextItem struct {
	Str    string `json:"str"`
	HasEOL bool   `json:"hasEOL"`
}

// TextContent is the ordered text of a page.
type TextContent struct {
	Items []TextItem `json:"items"`
}

// Strings returns the raw text of every item in order.
func (tc TextContent) Strings() []string {
	out := make([]string, len(tc.Items))
	for i, it := range tc.Items {
		out[i] = it.Str
	}
	return out
}
