package cache

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"localization-editor/internal/locale"
	"localization-editor/internal/parser"
)

func parseFile(t *testing.T, path string) (*parser.Data, os.FileInfo) {
	t.Helper()
	data, err := parser.NewCSVParser(parser.UTF8).Parse(path)
	require.NoError(t, err)
	info, err := os.Stat(path)
	require.NoError(t, err)
	return data, info
}

func TestParseCache(t *testing.T) {
	path := filepath.Join(t.TempDir(), "menu.csv")
	require.NoError(t, os.WriteFile(path, []byte("A;a;x\n"), 0o644))
	data, info := parseFile(t, path)

	c := NewParseCache()
	_, ok := c.Get(path, info, parser.UTF8)
	assert.False(t, ok)

	c.Set(path, info, parser.UTF8, data)
	assert.Equal(t, 1, c.Len())

	got, ok := c.Get(path, info, parser.UTF8)
	require.True(t, ok)
	assert.True(t, data.Equal(got))

	_, ok = c.Get(path, info, parser.Windows1252)
	assert.False(t, ok, "encoding is part of the key")

	hits, misses := c.Stats()
	assert.Equal(t, int64(1), hits)
	assert.Equal(t, int64(2), misses)
}

func TestParseCacheMissesChangedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "menu.csv")
	require.NoError(t, os.WriteFile(path, []byte("A;a;x\n"), 0o644))
	data, info := parseFile(t, path)

	c := NewParseCache()
	c.Set(path, info, parser.UTF8, data)

	require.NoError(t, os.WriteFile(path, []byte("A;a;x\nB;b;x\n"), 0o644))
	later := time.Now().Add(time.Minute)
	require.NoError(t, os.Chtimes(path, later, later))
	_, info = parseFile(t, path)

	_, ok := c.Get(path, info, parser.UTF8)
	assert.False(t, ok)
}

func TestParseCacheReturnsCopies(t *testing.T) {
	path := filepath.Join(t.TempDir(), "menu.csv")
	row := "A"
	for i := 0; i < locale.LanguageCount; i++ {
		row += ";a"
	}
	require.NoError(t, os.WriteFile(path, []byte(row+";x\n"), 0o644))
	data, info := parseFile(t, path)

	c := NewParseCache()
	c.Set(path, info, parser.UTF8, data)

	first, _ := c.Get(path, info, parser.UTF8)
	require.NoError(t, first.MarkUsed("A"))

	second, _ := c.Get(path, info, parser.UTF8)
	rec, _ := second.Record("A")
	assert.Equal(t, locale.Unused, rec.State)
}
