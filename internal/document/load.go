package document

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	pmerrors "github.com/Aman-CERP/pagemark/internal/errors"
)

// Input formats accepted by Open.
const (
	FormatAuto        = "auto"
	FormatTextContent = "textcontent"
	FormatPlain       = "text"
)

// DetectFormat picks the loader for path by extension.
func DetectFormat(path string) string {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return FormatTextContent
	}
	return FormatPlain
}

// Open loads the document at path. An empty or "auto" format is detected
// from the file extension.
func Open(path, format string) (Document, error) {
	if format == "" || format == FormatAuto {
		format = DetectFormat(path)
	}

	var load func(io.Reader) (*Memory, error)
	switch format {
	case FormatTextContent:
		load = LoadTextContent
	case FormatPlain:
		load = LoadPlainText
	default:
		return nil, pmerrors.New(pmerrors.ErrCodeUnknownFormat,
			fmt.Sprintf("unknown input format %q", format), nil).
			WithSuggestion("Use --input-format auto, textcontent or text")
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, pmerrors.Wrap(pmerrors.ErrCodeDocumentLoad, err).
			WithDetail("path", path)
	}
	defer f.Close()

	doc, err := load(f)
	if err != nil {
		return nil, pmerrors.New(pmerrors.ErrCodeDocumentLoad,
			fmt.Sprintf("failed to load %s", path), err).
			WithDetail("path", path).
			WithDetail("format", format)
	}
	return doc, nil
}

// textContentFile mirrors a dump of pdf.js getTextContent() results.
type textContentFile struct {
	Pages []struct {
		Width       float64 `json:"width"`
		Height      float64 `json:"height"`
		Error       string  `json:"error"`
		RenderError string  `json:"renderError"`
		Items       []struct {
			Str    *string `json:"str"`
			HasEOL bool    `json:"hasEOL"`
		} `json:"items"`
	} `json:"pages"`
}

// LoadTextContent reads a text-content JSON dump. A null "str" is read as
// empty text.
func LoadTextContent(r io.Reader) (*Memory, error) {
	var file textContentFile
	dec := json.NewDecoder(r)
	if err := dec.Decode(&file); err != nil {
		return nil, fmt.Errorf("decode text content: %w", err)
	}

	pages := make([]PageData, 0, len(file.Pages))
	for _, p := range file.Pages {
		items := make([]TextItem, 0, len(p.Items))
		for _, it := range p.Items {
			var str string
			if it.Str != nil {
				str = *it.Str
			}
			items = append(items, TextItem{Str: str, HasEOL: it.HasEOL})
		}
		pages = append(pages, PageData{
			Width:      p.Width,
			Height:     p.Height,
			Items:      items,
			ExtractErr: p.Error,
			RenderErr:  p.RenderError,
		})
	}
	return NewMemory(pages), nil
}

// LoadPlainText reads plain text. Pages are separated by form feeds and every
// line becomes one text item with its line terminator removed.
func LoadPlainText(r io.Reader) (*Memory, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read text: %w", err)
	}

	raw := strings.Split(string(data), "\f")
	pages := make([]PageData, 0, len(raw))
	for _, text := range raw {
		pages = append(pages, PageData{Items: splitLines(text)})
	}
	return NewMemory(pages), nil
}

func splitLines(text string) []TextItem {
	var items []TextItem
	for _, line := range strings.SplitAfter(text, "\n") {
		if line == "" {
			continue
		}
		eol := strings.HasSuffix(line, "\n")
		line = strings.TrimSuffix(line, "\n")
		line = strings.TrimSuffix(line, "\r")
		items = append(items, TextItem{Str: line, HasEOL: eol})
	}
	return items
}
