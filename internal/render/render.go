// Package render writes a highlight report as an HTML text-layer document,
// as styled terminal text or as JSON.
package render

import (
	"fmt"
	"io"
	"strings"

	pmerrors "github.com/Aman-CERP/pagemark/internal/errors"
	"github.com/Aman-CERP/pagemark/internal/pipeline"
	"github.com/Aman-CERP/pagemark/internal/ui"
	"github.com/Aman-CERP/pagemark/pkg/highlight"
)

// Supported formats.
const (
	FormatHTML = "html"
	FormatText = "text"
	FormatJSON = "json"
)

// Renderer writes a report to w.
type Renderer interface {
	Render(w io.Writer, report *pipeline.Report) error
}

// Options configures the renderers.
type Options struct {
	// Title is shown in the HTML document title and text header.
	Title string

	// ClassName is the highlight class, used for the HTML stylesheet.
	ClassName string

	// Styles colors terminal output. Nil renders plain text.
	Styles *ui.Styles
}

// New returns the renderer for format.
func New(format string, opts Options) (Renderer, error) {
	if opts.ClassName == "" {
		opts.ClassName = highlight.DefaultClassName
	}

	switch strings.ToLower(format) {
	case FormatHTML, "":
		return &HTMLRenderer{opts: opts}, nil
	case FormatText:
		st := ui.NoColorStyles()
		if opts.Styles != nil {
			st = *opts.Styles
		}
		return &TextRenderer{title: opts.Title, styles: st}, nil
	case FormatJSON:
		return &JSONRenderer{}, nil
	default:
		return nil, pmerrors.New(pmerrors.ErrCodeUnknownFormat,
			fmt.Sprintf("unknown output format %q", format), nil).
			WithSuggestion("Use --format html, text or json")
	}
}
