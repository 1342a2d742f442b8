// Package resolver decides which version of every localisation file a mod ends up
// with. A mod file replaces the base game file of the same name wholesale; files the
// game does not ship are added as they are.
package resolver

import (
	"errors"
	"fmt"
	"os"

	"localization-editor/internal/cache"
	"localization-editor/internal/filewalker"
	"localization-editor/internal/parser"

	"github.com/rs/zerolog/log"
)

// ErrIO wraps every directory or file access failure during resolution.
var ErrIO = errors.New("localisation i/o failure")

// Option tunes a Resolve call.
type Option func(*options)

type options struct {
	encoding parser.Encoding
	cache    *cache.ParseCache
}

// WithEncoding selects how localisation files are decoded.
func WithEncoding(enc parser.Encoding) Option {
	return func(o *options) { o.encoding = enc }
}

// WithCache reuses parses of unchanged files across Resolve calls.
func WithCache(c *cache.ParseCache) Option {
	return func(o *options) { o.cache = c }
}

// Resolve builds the localisation view of a mod from the base game's localisation
// directory and the mod's. Either directory may be missing. Any unreadable directory
// or file fails the whole call and no partial result is returned.
func Resolve(gameDir, modDir string, opts ...Option) (*Localization, error) {
	o := options{encoding: parser.UTF8}
	for _, opt := range opts {
		opt(&o)
	}
	w := filewalker.NewWalker(o.encoding)

	gameEntries, err := w.List(gameDir)
	if err != nil {
		return nil, fmt.Errorf("list game files: %w: %w", ErrIO, err)
	}
	modEntries, err := w.List(modDir)
	if err != nil {
		return nil, fmt.Errorf("list mod files: %w: %w", ErrIO, err)
	}

	modByName := make(map[string]filewalker.FileEntry, len(modEntries))
	for _, e := range modEntries {
		modByName[e.Name] = e
	}

	loc := newLocalization()
	gameNames := make(map[string]struct{}, len(gameEntries))

	for _, ge := range gameEntries {
		gameNames[ge.Name] = struct{}{}

		if me, ok := modByName[ge.Name]; ok {
			data, err := o.parse(w, me)
			if err != nil {
				return nil, err
			}
			loc.ModFiles[ge.Name] = data
			log.Debug().Str("file", ge.Name).Msg("Mod overrides game file")
			continue
		}

		data, err := o.parse(w, ge)
		if err != nil {
			return nil, err
		}
		loc.GameFiles[ge.Name] = data
	}

	// Mod-only files. Names are compared without extension, the same rule the
	// override check above uses.
	for _, me := range modEntries {
		if _, seen := gameNames[me.Name]; seen {
			continue
		}
		data, err := o.parse(w, me)
		if err != nil {
			return nil, err
		}
		loc.ModFiles[me.Name] = data
	}

	log.Info().
		Int("game_files", len(loc.GameFiles)).
		Int("mod_files", len(loc.ModFiles)).
		Str("game_dir", gameDir).
		Str("mod_dir", modDir).
		Msg("Resolved localisation")

	return loc, nil
}

func (o *options) parse(w *filewalker.Walker, entry filewalker.FileEntry) (*parser.Data, error) {
	if o.cache == nil {
		return parseEntry(w, entry)
	}

	info, err := os.Stat(entry.Path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w: %w", entry.Path, ErrIO, err)
	}
	if data, ok := o.cache.Get(entry.Path, info, o.encoding); ok {
		return data, nil
	}
	data, err := parseEntry(w, entry)
	if err != nil {
		return nil, err
	}
	o.cache.Set(entry.Path, info, o.encoding, data)
	return data, nil
}

func parseEntry(w *filewalker.Walker, entry filewalker.FileEntry) (*parser.Data, error) {
	data, err := w.ParseFile(entry)
	if err != nil {
		if errors.Is(err, parser.ErrFormat) {
			return nil, err
		}
		return nil, fmt.Errorf("parse %s: %w: %w", entry.Path, ErrIO, err)
	}
	log.Debug().Str("file", entry.Path).Int("records", data.Len()).Msg("Parsed file")
	return data, nil
}
