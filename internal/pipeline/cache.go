package pipeline

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/Aman-CERP/pagemark/pkg/highlight"
)

// DefaultCacheSize is the number of page results kept when no size is given.
const DefaultCacheSize = 256

// cachedPage is the outcome of highlighting one page.
type cachedPage struct {
	html        []string
	matches     []highlight.Match
	annotations []highlight.Match
	touched     int
}

// Cache keeps highlighted page markup across runs so an unchanged page is not
// highlighted again. A nil *Cache is valid and caches nothing.
type Cache struct {
	lru    *lru.Cache[string, cachedPage]
	hits   atomic.Int64
	misses atomic.Int64
}

// NewCache creates a cache holding up to size pages. A size of zero disables
// caching and returns nil.
func NewCache(size int) *Cache {
	if size == 0 {
		return nil
	}
	if size < 0 {
		size = DefaultCacheSize
	}
	c, _ := lru.New[string, cachedPage](size)
	return &Cache{lru: c}
}

// Stats returns the hit and miss counts.
func (c *Cache) Stats() (hits, misses int64) {
	if c == nil {
		return 0, 0
	}
	return c.hits.Load(), c.misses.Load()
}

// Len returns the number of cached pages.
func (c *Cache) Len() int {
	if c == nil {
		return 0
	}
	return c.lru.Len()
}

// Purge drops every cached page.
func (c *Cache) Purge() {
	if c == nil {
		return
	}
	c.lru.Purge()
}

func (c *Cache) get(key string) (cachedPage, bool) {
	if c == nil {
		return cachedPage{}, false
	}
	p, ok := c.lru.Get(key)
	if ok {
		c.hits.Add(1)
	} else {
		c.misses.Add(1)
	}
	return p, ok
}

func (c *Cache) add(key string, p cachedPage) {
	if c == nil {
		return
	}
	c.lru.Add(key, p)
}

// cacheKey hashes everything that determines a page's markup: the raw
// fragment texts, the keyword, the highlighter options and the page-local
// annotation ranges.
func cacheKey(h *highlight.Highlighter, texts []string, local []highlight.Match) string {
	sum := sha256.New()
	fmt.Fprintf(sum, "%q|%t|%q|%t|", h.Keyword(), h.CaseSensitive(), h.ClassName(), h.MergeRanges())
	for _, t := range texts {
		fmt.Fprintf(sum, "%d:%s", len(t), t)
	}
	sum.Write([]byte{0})
	for _, r := range local {
		fmt.Fprintf(sum, "%d-%d,", r.Start, r.End)
	}
	return hex.EncodeToString(sum.Sum(nil))
}
