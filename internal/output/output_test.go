package output

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWriter_Status_PrintsIconAndMessage(t *testing.T) {
	// Given: a writer with a buffer
	buf := &bytes.Buffer{}
	w := New(buf, false)

	// When: printing a status message
	w.Status(">", "Loading document...")

	// Then: output contains icon and message
	assert.Equal(t, "> Loading document...\n", buf.String())
}

func TestWriter_Status_NoIconIndents(t *testing.T) {
	buf := &bytes.Buffer{}
	w := New(buf, false)

	w.Status("", "detail")

	assert.Equal(t, "   detail\n", buf.String())
}

func TestWriter_LevelsUsePlainIconsWithoutTTY(t *testing.T) {
	tests := []struct {
		name  string
		write func(w *Writer)
		want  string
	}{
		{"success", func(w *Writer) { w.Successf("%d matches", 3) }, "✓ 3 matches\n"},
		{"warning", func(w *Writer) { w.Warningf("page %d failed", 2) }, "! page 2 failed\n"},
		{"error", func(w *Writer) { w.Errorf("cannot open %s", "doc.json") }, "✗ cannot open doc.json\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			tt.write(New(buf, false))

			assert.Equal(t, tt.want, buf.String())
		})
	}
}

func TestWriter_Progress_NonTTYPrintsOnlyFinalLine(t *testing.T) {
	// Given: a non-terminal writer
	buf := &bytes.Buffer{}
	w := New(buf, true)

	// When: reporting progress for three pages
	for i := 1; i <= 3; i++ {
		w.Progress(i, 3, "pages")
	}

	// Then: a single completed bar is printed
	out := buf.String()
	assert.Equal(t, 1, strings.Count(out, "\n"))
	assert.Contains(t, out, "100% pages")
	assert.NotContains(t, out, "\r")
}

func TestWriter_Progress_ZeroTotal(t *testing.T) {
	buf := &bytes.Buffer{}

	New(buf, true).Progress(0, 0, "pages")

	assert.Empty(t, buf.String())
}

func TestRenderProgressBar(t *testing.T) {
	assert.Equal(t, strings.Repeat("░", 10), renderProgressBar(0, 4, 10))
	assert.Equal(t, strings.Repeat("█", 5)+strings.Repeat("░", 5), renderProgressBar(2, 4, 10))
	assert.Equal(t, strings.Repeat("█", 10), renderProgressBar(9, 4, 10))
}
