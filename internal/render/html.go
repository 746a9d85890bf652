package render

import (
	"fmt"
	"html/template"
	"io"

	"github.com/Aman-CERP/pagemark/internal/pipeline"
)

const pageCSS = `
body { background: #525659; margin: 0; font-family: sans-serif; }
header { color: #fff; padding: 0.5em 1em; }
.page { position: relative; margin: 1em auto; background: #fff; box-shadow: 0 0 4px rgba(0,0,0,.5); overflow: hidden; }
.page canvas { position: absolute; inset: 0; }
.page .textLayer { position: absolute; inset: 0; padding: 2em; line-height: 1.4; white-space: pre-wrap; }
.page-error { padding: 1em; color: #b00020; }
.%s { background-color: rgba(255, 255, 0, 0.6); border-radius: 2px; }
`

var pageTemplate = template.Must(template.New("document").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>{{.CSS}}</style>
</head>
<body>
<header><h1>{{.Title}}</h1><p class="summary">{{.Summary}}</p></header>
{{range .Pages}}{{if .Error}}<section class="page page-error" id="page-{{.Number}}" data-page-number="{{.Number}}">
<p class="error">{{.Error}}</p>
</section>
{{else}}<section class="page" id="page-{{.Number}}" data-page-number="{{.Number}}" data-matches="{{.Matches}}" style="width: {{.Width}}px; height: {{.Height}}px">
<canvas width="{{.Width}}" height="{{.Height}}"></canvas>
<div class="textLayer">{{range .Spans}}<span role="presentation" dir="ltr">{{.HTML}}</span>{{if .EOL}}<br role="presentation">{{end}}{{end}}</div>
</section>
{{end}}{{end}}</body>
</html>
`))

type htmlDocument struct {
	Title   string
	CSS     template.CSS
	Summary string
	Pages   []htmlPage
}

type htmlPage struct {
	Number  int
	Width   int
	Height  int
	Matches int
	Error   string
	Spans   []htmlSpan
}

type htmlSpan struct {
	HTML template.HTML
	EOL  bool
}

// HTMLRenderer writes a standalone HTML document with one section per page.
// Each page holds the rendered canvas and a text layer whose spans carry the
// rewritten fragment markup.
type HTMLRenderer struct {
	opts Options
}

// Render implements Renderer.
func (r *HTMLRenderer) Render(w io.Writer, report *pipeline.Report) error {
	doc := htmlDocument{
		Title:   title(r.opts.Title, report),
		CSS:     template.CSS(fmt.Sprintf(pageCSS, r.opts.ClassName)),
		Summary: summary(report),
		Pages:   make([]htmlPage, 0, len(report.Pages)),
	}

	for _, p := range report.Pages {
		hp := htmlPage{Number: p.Page}
		if !p.OK() {
			hp.Error = p.Err.Error()
			doc.Pages = append(doc.Pages, hp)
			continue
		}
		hp.Width, hp.Height = p.Canvas.Width, p.Canvas.Height
		hp.Matches = len(p.Matches)
		for _, s := range p.Layer.Spans() {
			// Span markup is escaped text plus highlight elements only.
			hp.Spans = append(hp.Spans, htmlSpan{HTML: template.HTML(s.HTML()), EOL: s.HasEOL()})
		}
		doc.Pages = append(doc.Pages, hp)
	}

	if err := pageTemplate.Execute(w, doc); err != nil {
		return fmt.Errorf("render html: %w", err)
	}
	return nil
}

func title(t string, report *pipeline.Report) string {
	if t != "" {
		return t
	}
	if report.Keyword != "" {
		return fmt.Sprintf("pagemark: %s", report.Keyword)
	}
	return "pagemark"
}

func summary(report *pipeline.Report) string {
	s := fmt.Sprintf("%d matches on %d pages", report.TotalMatches, len(report.Pages))
	if report.TotalAnnotations > 0 {
		s += fmt.Sprintf(", %d annotations", report.TotalAnnotations)
	}
	if report.FailedPages > 0 {
		s += fmt.Sprintf(", %d pages failed", report.FailedPages)
	}
	return s
}
