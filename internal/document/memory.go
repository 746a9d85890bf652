package document

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// Default page size in points (US Letter), used when a source has no geometry.
const (
	DefaultPageWidth  = 612.0
	DefaultPageHeight = 792.0
)

// ErrClosed is returned by a Document after Close.
var ErrClosed = errors.New("document closed")

// PageData is the loaded content of one page.
type PageData struct {
	Width  float64
	Height float64
	Items  []TextItem

	// ExtractErr, when non-empty, makes TextContent fail with this message.
	ExtractErr string

	// RenderErr, when non-empty, makes Render fail with this message.
	RenderErr string
}

// Memory is a Document held entirely in memory.
type Memory struct {
	mu     sync.RWMutex
	pages  []PageData
	closed bool
}

// NewMemory creates a Document from already loaded pages.
func NewMemory(pages []PageData) *Memory {
	return &Memory{pages: pages}
}

// NumPages implements Document.
func (m *Memory) NumPages() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.pages)
}

// Page implements Document.
func (m *Memory) Page(ctx context.Context, n int) (Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, ErrClosed
	}
	if n < 1 || n > len(m.pages) {
		return nil, fmt.Errorf("page %d out of range [1, %d]", n, len(m.pages))
	}
	return &memoryPage{number: n, data: m.pages[n-1]}, nil
}

// Close implements Document.
func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

type memoryPage struct {
	number int
	data   PageData
}

func (p *memoryPage) Number() int { return p.number }

func (p *memoryPage) Viewport(scale float64) Viewport {
	w, h := p.data.Width, p.data.Height
	if w <= 0 || h <= 0 {
		w, h = DefaultPageWidth, DefaultPageHeight
	}
	return Viewport{Width: w * scale, Height: h * scale, Scale: scale}
}

func (p *memoryPage) Render(ctx context.Context, vp Viewport, s Surface) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if p.data.RenderErr != "" {
		return errors.New(p.data.RenderErr)
	}
	if s != nil {
		s.Resize(vp.PixelSize())
	}
	return nil
}

func (p *memoryPage) TextContent(ctx context.Context) (TextContent, error) {
	if err := ctx.Err(); err != nil {
		return TextContent{}, err
	}
	if p.data.ExtractErr != "" {
		return TextContent{}, errors.New(p.data.ExtractErr)
	}
	items := make([]TextItem, len(p.data.Items))
	copy(items, p.data.Items)
	return TextContent{Items: items}, nil
}
