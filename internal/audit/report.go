package audit

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"localization-editor/internal/interpolation"
	"localization-editor/internal/locale"
	"localization-editor/internal/mod"
	"localization-editor/internal/parser"
	"localization-editor/internal/resolver"
	"localization-editor/internal/textutil"
)

// Report is a flat summary of one mod's localisation health.
type Report struct {
	GamePath    string
	ModPath     string
	Fingerprint string
	CreatedAt   time.Time
	GameFiles   int
	ModFiles    int
	Records     int
	States      map[locale.State]int
	Findings    []Finding
}

// Finding is one record worth an operator's attention.
type Finding struct {
	Origin resolver.Origin
	File   string
	Key    string
	Line   int
	State  locale.State
	// Detail is a short human readable description.
	Detail string
}

// Details of findings that are not about row structure.
const (
	DetailDuplicateInFile = "defined more than once in this file"
	DetailSharedKey       = "defined in more than one file"
	// DetailVariables prefixes findings about interpolation variables that differ
	// from the English text.
	DetailVariables = "variables differ from English in "
)

// Build summarises m. Broken rows, keys repeated within a file, keys defined by
// several files and translations whose variables do not match English all become
// findings.
func Build(m *mod.Mod) *Report {
	loc := m.Localization
	stats := loc.Stats()

	r := &Report{
		GamePath:  m.Location.GameRoot,
		ModPath:   m.Location.ModRoot,
		CreatedAt: time.Now().UTC(),
		GameFiles: stats.GameFiles,
		ModFiles:  stats.ModFiles,
		Records:   stats.Records,
		States:    stats.States,
	}

	for _, p := range loc.Problems() {
		r.Findings = append(r.Findings, Finding{
			Origin: p.Origin,
			File:   p.File,
			Key:    p.Record.Key,
			Line:   p.Record.Line,
			State:  p.Record.State,
			Detail: describe(p.Record.State, len(p.Record.Entries)),
		})
	}

	loc.Each(func(origin resolver.Origin, name string, data *parser.Data) {
		dupes := data.Duplicates()
		keys := make([]string, 0, len(dupes))
		for k := range dupes {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			rec, _ := data.Record(k)
			r.Findings = append(r.Findings, Finding{
				Origin: origin,
				File:   name,
				Key:    k,
				Line:   rec.Line,
				State:  rec.State,
				Detail: DetailDuplicateInFile,
			})
		}
	})

	loc.Each(func(origin resolver.Origin, name string, data *parser.Data) {
		for _, rec := range data.Records() {
			langs := variableMismatches(rec)
			if len(langs) == 0 {
				continue
			}
			r.Findings = append(r.Findings, Finding{
				Origin: origin,
				File:   name,
				Key:    rec.Key,
				Line:   rec.Line,
				State:  rec.State,
				Detail: DetailVariables + strings.Join(langs, ", "),
			})
		}
	})

	for _, key := range loc.SharedKeys() {
		occ := loc.Occurrences(key)
		first := occ[0]
		rec := first.Record(key)
		r.Findings = append(r.Findings, Finding{
			Origin: first.Origin,
			File:   first.Name,
			Key:    key,
			Line:   rec.Line,
			State:  rec.State,
			Detail: DetailSharedKey,
		})
	}

	r.Fingerprint = fingerprint(loc)
	return r
}

func describe(s locale.State, entries int) string {
	missing := locale.LanguageCount - entries
	switch s {
	case locale.BadEnd:
		return "row ends without the x marker"
	case locale.TooShort:
		if missing > 0 {
			return "row stops early, " + strings.Join(missingNames(entries), ", ") + " missing"
		}
		return "row stops early"
	}
	return s.String()
}

// variableMismatches names the languages whose text does not carry the variables of
// the English text. Empty cells are untranslated, not mismatched.
func variableMismatches(rec *parser.Record) []string {
	reference, ok := rec.Get(locale.English)
	if !ok || reference == "" {
		return nil
	}
	var out []string
	for _, lang := range locale.Languages()[1:] {
		text, ok := rec.Get(lang)
		if !ok || text == "" {
			continue
		}
		if missing, extra := interpolation.Diff(reference, text); len(missing) > 0 || len(extra) > 0 {
			out = append(out, lang.String())
		}
	}
	return out
}

func missingNames(entries int) []string {
	var out []string
	for _, lang := range locale.Languages()[min(entries, locale.LanguageCount):] {
		out = append(out, lang.String())
	}
	return out
}

// fingerprint identifies the resolved content so unchanged mods can be recognised.
func fingerprint(loc *resolver.Localization) string {
	var b strings.Builder
	loc.Each(func(origin resolver.Origin, name string, data *parser.Data) {
		fmt.Fprintf(&b, "%s/%s\n", origin, name)
		for _, rec := range data.Records() {
			fmt.Fprintf(&b, "%s;%s;%s\n", rec.Key, strings.Join(rec.Entries, ";"), rec.State)
		}
	})
	return textutil.Hash(b.String())
}

// Broken returns the number of rows that will misbehave in game.
func (r *Report) Broken() int {
	return r.States[locale.TooShort] + r.States[locale.BadEnd]
}
