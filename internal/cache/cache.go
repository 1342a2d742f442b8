package cache

import (
	"fmt"
	"io/fs"
	"sync"
	"sync/atomic"

	"localization-editor/internal/parser"
	"localization-editor/internal/textutil"

	"github.com/rs/zerolog/log"
)

// ParseCache keeps parsed localisation files in memory so that several mods built
// on the same game only parse the shared base files once. Entries are keyed by path,
// size and modification time; a file changed on disk simply misses.
type ParseCache struct {
	mu     sync.RWMutex
	memory map[string]*parser.Data // hash → parsed file
	hits   atomic.Int64
	misses atomic.Int64
}

// NewParseCache creates an empty cache.
func NewParseCache() *ParseCache {
	return &ParseCache{
		memory: make(map[string]*parser.Data),
	}
}

func key(path string, info fs.FileInfo, enc parser.Encoding) string {
	return textutil.Hash(fmt.Sprintf("%s|%d|%d|%s", path, info.Size(), info.ModTime().UnixNano(), enc))
}

// Get returns a private copy of the cached parse of path.
func (c *ParseCache) Get(path string, info fs.FileInfo, enc parser.Encoding) (*parser.Data, bool) {
	c.mu.RLock()
	data, ok := c.memory[key(path, info, enc)]
	c.mu.RUnlock()

	if !ok {
		c.misses.Add(1)
		return nil, false
	}
	c.hits.Add(1)
	log.Debug().Str("file", path).Msg("Parse cache hit")
	return data.Clone(), true
}

// Set stores a copy of data as the parse of path.
func (c *ParseCache) Set(path string, info fs.FileInfo, enc parser.Encoding, data *parser.Data) {
	cp := data.Clone()

	c.mu.Lock()
	c.memory[key(path, info, enc)] = cp
	c.mu.Unlock()
}

// Len returns the number of cached files.
func (c *ParseCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.memory)
}

// Stats returns the hit and miss counters.
func (c *ParseCache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}
