package render

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/pagemark/internal/document"
	pmerrors "github.com/Aman-CERP/pagemark/internal/errors"
	"github.com/Aman-CERP/pagemark/internal/pipeline"
	"github.com/Aman-CERP/pagemark/internal/ui"
	"github.com/Aman-CERP/pagemark/pkg/highlight"
)

func sampleReport(t *testing.T) *pipeline.Report {
	t.Helper()
	doc := document.NewMemory([]document.PageData{
		{Width: 100, Height: 50, Items: []document.TextItem{
			{Str: "The "}, {Str: "core ten"}, {Str: "sor <is> here", HasEOL: true}, {Str: "next line"},
		}},
		{ExtractErr: "no text layer"},
	})
	report, err := pipeline.Run(context.Background(), doc, pipeline.Options{
		Keyword:       "core tensor",
		CaseSensitive: true,
		Scale:         1,
		Logger:        slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	require.NoError(t, err)
	return report
}

func TestNew_UnknownFormat(t *testing.T) {
	_, err := New("pdf", Options{})

	assert.Equal(t, pmerrors.ErrCodeUnknownFormat, pmerrors.GetCode(err))
}

func TestNew_Formats(t *testing.T) {
	tests := []struct {
		format string
		want   Renderer
	}{
		{"", &HTMLRenderer{}},
		{"HTML", &HTMLRenderer{}},
		{"text", &TextRenderer{}},
		{"json", &JSONRenderer{}},
	}

	for _, tt := range tests {
		r, err := New(tt.format, Options{})
		require.NoError(t, err)
		assert.IsType(t, tt.want, r, tt.format)
	}
}

func TestHTMLRenderer_WritesTextLayer(t *testing.T) {
	// Given: a report with one highlighted page and one failed page
	report := sampleReport(t)
	r, err := New(FormatHTML, Options{})
	require.NoError(t, err)

	// When: rendering
	var buf bytes.Buffer
	require.NoError(t, r.Render(&buf, report))
	out := buf.String()

	// Then: spans carry the rewritten markup verbatim
	assert.Contains(t, out, `<span role="presentation" dir="ltr"><span class="highlighted-text">core ten</span></span>`)
	assert.Contains(t, out, `<span role="presentation" dir="ltr"><span class="highlighted-text">sor</span> &lt;is&gt; here</span><br role="presentation">`)
	assert.NotContains(t, out, "<is>")

	// And: the page geometry and the stylesheet are present
	assert.Contains(t, out, `<canvas width="100" height="50">`)
	assert.Contains(t, out, `.highlighted-text {`)
	assert.Contains(t, out, `data-matches="1"`)

	// And: the failed page is reported in place
	assert.Contains(t, out, `class="page page-error" id="page-2"`)
	assert.Contains(t, out, "no text layer")
	assert.Contains(t, out, "<title>pagemark: core tensor</title>")
}

func TestHTMLRenderer_CustomClassAndTitle(t *testing.T) {
	r, err := New(FormatHTML, Options{ClassName: "hit", Title: "Report <1>"})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, r.Render(&buf, sampleReport(t)))

	assert.Contains(t, buf.String(), ".hit {")
	assert.Contains(t, buf.String(), "<title>Report &lt;1&gt;</title>")
}

func TestTextRenderer_PlainOutput(t *testing.T) {
	// Given: a text renderer without colors
	r, err := New(FormatText, Options{})
	require.NoError(t, err)

	// When: rendering
	var buf bytes.Buffer
	require.NoError(t, r.Render(&buf, sampleReport(t)))
	out := buf.String()

	// Then: raw text is shown with extractor line breaks
	assert.Contains(t, out, "Page 1 (1 matches)\nThe core tensor <is> here\nnext line\n")
	assert.Contains(t, out, "Page 2 failed:")
	assert.Contains(t, out, "1 matches on 2 pages, 1 pages failed")
}

func TestTextRenderer_WritePageKeepsRawText(t *testing.T) {
	report := sampleReport(t)
	tr := &TextRenderer{styles: ui.NoColorStyles()}

	var buf bytes.Buffer
	tr.writePage(&buf, report.Pages[0])

	assert.Equal(t, "The core tensor <is> here\nnext line\n", buf.String())
}

func TestPaint_MatchWinsOverAnnotation(t *testing.T) {
	marks := make([]byte, 6)

	paint(marks, nil, markAnnotation)
	paint(marks, []highlight.Match{{Start: 0, End: 4}}, markAnnotation)
	paint(marks, []highlight.Match{{Start: 2, End: 10}}, markMatch)

	assert.Equal(t, []byte{markAnnotation, markAnnotation, markMatch, markMatch, markMatch, markMatch}, marks)
}

func TestJSONRenderer(t *testing.T) {
	// Given: a report
	r, err := New(FormatJSON, Options{})
	require.NoError(t, err)

	// When: rendering to JSON
	var buf bytes.Buffer
	require.NoError(t, r.Render(&buf, sampleReport(t)))

	// Then: it decodes with page results and a structured page error
	var got JSONReport
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "core tensor", got.Keyword)
	assert.Equal(t, 1, got.TotalMatches)
	assert.Equal(t, 1, got.FailedPages)
	require.Len(t, got.Pages, 2)

	p1 := got.Pages[0]
	assert.Equal(t, 4, p1.Matches[0].Start)
	assert.Equal(t, 15, p1.Matches[0].End)
	assert.Equal(t, 2, p1.FragmentsTouched)
	assert.Len(t, p1.Fragments, 4)
	require.NotNil(t, p1.Viewport)
	assert.Equal(t, 100.0, p1.Viewport.Width)

	var pageErr map[string]any
	require.NoError(t, json.Unmarshal(got.Pages[1].Error, &pageErr))
	assert.Equal(t, pmerrors.ErrCodeTextExtract, pageErr["code"])
	assert.Empty(t, got.Pages[1].Fragments)
}

func TestWriteFile_WritesAtomically(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.html")
	r, err := New(FormatHTML, Options{})
	require.NoError(t, err)

	require.NoError(t, WriteFile(path, r, sampleReport(t)))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "<!DOCTYPE html>"))

	// No temporary files are left behind
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, e := range entries {
		assert.False(t, strings.HasSuffix(e.Name(), ".tmp"), e.Name())
	}
}

func TestWriteFile_LockedByAnotherWriter(t *testing.T) {
	// Given: the output lock held elsewhere
	path := filepath.Join(t.TempDir(), "out.json")
	held := NewOutputLock(path)
	ok, err := held.TryLock()
	require.NoError(t, err)
	require.True(t, ok)
	defer func() { _ = held.Unlock() }()

	r, err := New(FormatJSON, Options{})
	require.NoError(t, err)

	// When: writing
	err = WriteFile(path, r, sampleReport(t))

	// Then: the write is refused and the target untouched
	assert.Equal(t, pmerrors.ErrCodeOutputLocked, pmerrors.GetCode(err))
	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}

func TestOutputLock_UnlockIsIdempotent(t *testing.T) {
	l := NewOutputLock(filepath.Join(t.TempDir(), "x"))

	assert.NoError(t, l.Unlock())
	ok, err := l.TryLock()
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, l.IsLocked())
	assert.NoError(t, l.Unlock())
	assert.NoError(t, l.Unlock())
	assert.False(t, l.IsLocked())
}

func TestWrite_DashMeansWriter(t *testing.T) {
	r, err := New(FormatText, Options{})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, "-", r, sampleReport(t)))

	assert.Contains(t, buf.String(), "Page 1")
}
