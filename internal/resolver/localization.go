package resolver

import (
	"fmt"
	"sort"

	"localization-editor/internal/locale"
	"localization-editor/internal/parser"
)

// Origin tells which side of the resolution a file came from.
type Origin string

const (
	OriginGame Origin = "game"
	OriginMod  Origin = "mod"
)

// Files maps a file name without extension to its parsed records.
type Files map[string]*parser.Data

// Names returns the file names in sorted order.
func (f Files) Names() []string {
	names := make([]string, 0, len(f))
	for n := range f {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Localization is the resolved localisation of one mod. A file name is in exactly
// one of GameFiles and ModFiles.
type Localization struct {
	// GameFiles are base game files the mod does not override.
	GameFiles Files
	// ModFiles are files the mod overrides or adds.
	ModFiles Files
}

func newLocalization() *Localization {
	return &Localization{
		GameFiles: make(Files),
		ModFiles:  make(Files),
	}
}

// FilesByOrigin returns both mappings for listing.
func (l *Localization) FilesByOrigin() (gameFiles, modFiles Files) {
	return l.GameFiles, l.ModFiles
}

// Lookup finds a file by name and reports which side holds it.
func (l *Localization) Lookup(name string) (*parser.Data, Origin, bool) {
	if d, ok := l.ModFiles[name]; ok {
		return d, OriginMod, true
	}
	if d, ok := l.GameFiles[name]; ok {
		return d, OriginGame, true
	}
	return nil, "", false
}

type side struct {
	origin Origin
	files  Files
}

// sides returns the two mappings in lookup order: mod before game.
func (l *Localization) sides() []side {
	return []side{{OriginMod, l.ModFiles}, {OriginGame, l.GameFiles}}
}

// Each calls fn for every file, mod files first, each side in name order.
func (l *Localization) Each(fn func(origin Origin, name string, data *parser.Data)) {
	for _, group := range l.sides() {
		for _, name := range group.files.Names() {
			fn(group.origin, name, group.files[name])
		}
	}
}

// Occurrence is one file defining a key.
type Occurrence struct {
	Origin Origin
	Name   string
	Data   *parser.Data
}

// Record returns the record the occurrence refers to.
func (o Occurrence) Record(key string) *parser.Record {
	rec, _ := o.Data.Record(key)
	return rec
}

// Occurrences returns every file that defines key: mod files first, then game files,
// each group sorted by file name. More than one result means the key is duplicated
// across files.
func (l *Localization) Occurrences(key string) []Occurrence {
	var out []Occurrence
	l.Each(func(origin Origin, name string, data *parser.Data) {
		if data.Has(key) {
			out = append(out, Occurrence{Origin: origin, Name: name, Data: data})
		}
	})
	return out
}

// SharedKeys returns every key defined in more than one file, sorted.
func (l *Localization) SharedKeys() []string {
	count := make(map[string]int)
	for _, group := range l.sides() {
		for _, data := range group.files {
			for _, k := range data.Keys() {
				count[k]++
			}
		}
	}

	var out []string
	for k, n := range count {
		if n > 1 {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}

// MarkUsed promotes the record key of file name to OK. It is the only mutation of a
// resolved localisation and must not race with readers of the same record.
func (l *Localization) MarkUsed(name, key string) error {
	data, _, ok := l.Lookup(name)
	if !ok {
		return fmt.Errorf("mark used: unknown file %q", name)
	}
	return data.MarkUsed(key)
}

// Stats summarises a resolved localisation.
type Stats struct {
	GameFiles int
	ModFiles  int
	Records   int
	States    map[locale.State]int
}

// Stats counts files and records per state across both sides.
func (l *Localization) Stats() Stats {
	s := Stats{
		GameFiles: len(l.GameFiles),
		ModFiles:  len(l.ModFiles),
		States:    make(map[locale.State]int),
	}
	for _, group := range l.sides() {
		for _, data := range group.files {
			s.Records += data.Len()
			for st, n := range data.CountByState() {
				s.States[st] += n
			}
		}
	}
	return s
}

// Problem is a record that will misbehave in game.
type Problem struct {
	Origin Origin
	File   string
	Record *parser.Record
}

// Problems lists TooShort and BadEnd records, mod files first, in file order.
func (l *Localization) Problems() []Problem {
	var out []Problem
	l.Each(func(origin Origin, name string, data *parser.Data) {
		for _, rec := range data.Records() {
			if rec.State.Broken() {
				out = append(out, Problem{Origin: origin, File: name, Record: rec})
			}
		}
	})
	return out
}
