// Package linecache caches derived per-line render data (text and
// display width) outside the authoritative buffer.
//
// The cache subscribes to edit events and applies the invalidation rule
// for line-keyed caches: an edit that changes the line count invalidates
// every cached line at or after the affected line; an edit that keeps
// the line count invalidates only the affected line.
package linecache

import (
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/mattn/go-runewidth"

	"github.com/dshills/bufcore/internal/event"
)

// LineSource provides authoritative line text, typically the buffer.
type LineSource interface {
	LineCount() uint32
	LineText(line uint32) (string, error)
}

// CachedLine is one derived line entry.
type CachedLine struct {
	Line       uint32
	Text       string
	Width      int // display columns, tab-aware
	LastAccess time.Time
}

// Config configures the cache.
type Config struct {
	// MaxCachedLines is the maximum number of entries to retain.
	MaxCachedLines int

	// EvictionBatchSize is the number of entries evicted at once when
	// the cache overflows.
	EvictionBatchSize int

	// TabWidth is the tab stop distance used for display width.
	TabWidth int
}

// DefaultConfig returns the default cache configuration.
func DefaultConfig() Config {
	return Config{
		MaxCachedLines:    2000,
		EvictionBatchSize: 50,
		TabWidth:          4,
	}
}

// Cache holds derived line data and keeps it consistent with the buffer
// through edit notifications.
type Cache struct {
	mu      sync.Mutex
	config  Config
	src     LineSource
	entries map[uint32]*CachedLine

	hits      atomic.Uint64
	misses    atomic.Uint64
	evictions atomic.Uint64
}

// New creates an empty cache reading lines from src.
func New(src LineSource, config Config) *Cache {
	if config.MaxCachedLines <= 0 {
		config.MaxCachedLines = 2000
	}
	if config.EvictionBatchSize <= 0 {
		config.EvictionBatchSize = 50
	}
	if config.TabWidth <= 0 {
		config.TabWidth = 4
	}

	return &Cache{
		config:  config,
		src:     src,
		entries: make(map[uint32]*CachedLine),
	}
}

// GetLine returns the cached entry for a line, computing it on a miss.
func (c *Cache) GetLine(line uint32) (*CachedLine, error) {
	c.mu.Lock()
	if entry, ok := c.entries[line]; ok {
		entry.LastAccess = time.Now()
		c.mu.Unlock()
		c.hits.Add(1)
		return entry, nil
	}
	c.mu.Unlock()

	text, err := c.src.LineText(line)
	if err != nil {
		return nil, err
	}
	c.misses.Add(1)

	entry := &CachedLine{
		Line:       line,
		Text:       text,
		Width:      displayWidth(text, c.config.TabWidth),
		LastAccess: time.Now(),
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[line] = entry
	c.evictIfNeededLocked()
	return entry, nil
}

// OnEdit is the event handler wired to the session bus.
func (c *Cache) OnEdit(e event.Edit) {
	if e.LineCountChanged {
		c.invalidateFrom(e.Line)
		return
	}
	c.invalidate(e.Line)
}

func (c *Cache) invalidate(line uint32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, line)
}

func (c *Cache) invalidateFrom(line uint32) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for l := range c.entries {
		if l >= line {
			delete(c.entries, l)
		}
	}
}

// InvalidateAll clears the cache.
func (c *Cache) InvalidateAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[uint32]*CachedLine)
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// evictIfNeededLocked drops the oldest-accessed entries when the cache
// grows past its limit.
func (c *Cache) evictIfNeededLocked() {
	if len(c.entries) <= c.config.MaxCachedLines {
		return
	}

	type entryInfo struct {
		line   uint32
		access time.Time
	}
	infos := make([]entryInfo, 0, len(c.entries))
	for line, entry := range c.entries {
		infos = append(infos, entryInfo{line, entry.LastAccess})
	}
	sort.Slice(infos, func(i, j int) bool {
		return infos[i].access.Before(infos[j].access)
	})

	toEvict := len(c.entries) - c.config.MaxCachedLines + c.config.EvictionBatchSize
	if toEvict > len(infos) {
		toEvict = len(infos)
	}
	for i := 0; i < toEvict; i++ {
		delete(c.entries, infos[i].line)
	}
	c.evictions.Add(uint64(toEvict))
}

// Stats returns cache statistics.
func (c *Cache) Stats() CacheStats {
	hits := c.hits.Load()
	misses := c.misses.Load()

	var hitRate float64
	if total := hits + misses; total > 0 {
		hitRate = float64(hits) / float64(total)
	}

	c.mu.Lock()
	size := len(c.entries)
	c.mu.Unlock()

	return CacheStats{
		Size:      size,
		MaxSize:   c.config.MaxCachedLines,
		Hits:      hits,
		Misses:    misses,
		Evictions: c.evictions.Load(),
		HitRate:   hitRate,
	}
}

// CacheStats holds cache statistics.
type CacheStats struct {
	Size      int
	MaxSize   int
	Hits      uint64
	Misses    uint64
	Evictions uint64
	HitRate   float64
}

// displayWidth returns the display column count of a line, expanding
// tabs to the next tab stop and using East Asian width for everything
// else.
func displayWidth(text string, tabWidth int) int {
	w := 0
	for _, r := range text {
		if r == '\t' {
			w += tabWidth - w%tabWidth
			continue
		}
		w += runewidth.RuneWidth(r)
	}
	return w
}
