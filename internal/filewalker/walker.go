package filewalker

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"localization-editor/internal/parser"

	"github.com/rs/zerolog/log"
)

// LocalisationDirNames are the spellings the game and mods use for the text folder.
var LocalisationDirNames = []string{"localisation", "localization"}

// Walker lists localisation files in a directory and dispatches them to a parser.
type Walker struct {
	parsers []parser.Parser
}

// NewWalker creates a Walker with the CSV parser for the given encoding.
func NewWalker(enc parser.Encoding) *Walker {
	return &Walker{
		parsers: []parser.Parser{
			parser.NewCSVParser(enc),
		},
	}
}

// FileEntry represents a discovered file ready for processing.
type FileEntry struct {
	Path   string
	Name   string // file name without extension
	Ext    string
	Parser parser.Parser
}

// List returns the supported files directly inside dir, sorted by name. A directory
// that does not exist yields no entries; one that exists but cannot be read is an error.
// Subdirectories and files no parser handles are skipped.
func (w *Walker) List(dir string) ([]FileEntry, error) {
	if dir == "" {
		return nil, nil
	}

	dirEntries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			log.Debug().Str("dir", dir).Msg("Localisation directory absent")
			return nil, nil
		}
		return nil, fmt.Errorf("read directory %s: %w", dir, err)
	}

	var entries []FileEntry
	for _, de := range dirEntries {
		if !isFile(dir, de) {
			continue
		}
		ext := filepath.Ext(de.Name())
		for _, p := range w.parsers {
			if p.CanParse(ext) {
				entries = append(entries, FileEntry{
					Path:   filepath.Join(dir, de.Name()),
					Name:   strings.TrimSuffix(de.Name(), ext),
					Ext:    ext,
					Parser: p,
				})
				break
			}
		}
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })

	log.Debug().Int("count", len(entries)).Str("dir", dir).Msg("Discovered files")
	return entries, nil
}

// isFile follows symlinks so linked files from a shared checkout still count.
func isFile(dir string, de fs.DirEntry) bool {
	if de.Type()&fs.ModeSymlink == 0 {
		return de.Type().IsRegular()
	}
	info, err := os.Stat(filepath.Join(dir, de.Name()))
	return err == nil && info.Mode().IsRegular()
}

// isDir follows symlinks like isFile does.
func isDir(dir string, de fs.DirEntry) bool {
	if de.Type()&fs.ModeSymlink == 0 {
		return de.IsDir()
	}
	info, err := os.Stat(filepath.Join(dir, de.Name()))
	return err == nil && info.IsDir()
}

// ParseFile parses a single file using the appropriate parser.
func (w *Walker) ParseFile(entry FileEntry) (*parser.Data, error) {
	return entry.Parser.Parse(entry.Path)
}

// FindLocalisationDir returns the localisation subdirectory of root, matching any of
// LocalisationDirNames case-insensitively. When none exists the conventional path is
// returned so callers see an empty directory rather than an error.
func FindLocalisationDir(root string) (string, error) {
	fallback := filepath.Join(root, LocalisationDirNames[0])
	if root == "" {
		return "", nil
	}

	dirEntries, err := os.ReadDir(root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fallback, nil
		}
		return "", fmt.Errorf("read directory %s: %w", root, err)
	}

	// Exact spellings win over case variants.
	for _, want := range LocalisationDirNames {
		for _, de := range dirEntries {
			if de.Name() == want && isDir(root, de) {
				return filepath.Join(root, de.Name()), nil
			}
		}
	}
	for _, want := range LocalisationDirNames {
		for _, de := range dirEntries {
			if strings.EqualFold(de.Name(), want) && isDir(root, de) {
				return filepath.Join(root, de.Name()), nil
			}
		}
	}
	return fallback, nil
}
