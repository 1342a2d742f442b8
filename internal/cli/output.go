package cli

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"localization-editor/internal/audit"
	"localization-editor/internal/graph"
	"localization-editor/internal/locale"
	"localization-editor/internal/parser"
	"localization-editor/internal/resolver"
	"localization-editor/internal/textutil"
)

// cellWidth bounds translated text in tables.
const cellWidth = 60

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
}

func printFiles(w io.Writer, loc *resolver.Localization) {
	gameFiles, modFiles := loc.FilesByOrigin()
	printFileGroup(w, "MOD FILES", modFiles)
	fmt.Fprintln(w)
	printFileGroup(w, "GAME FILES", gameFiles)
}

func printFileGroup(w io.Writer, title string, files resolver.Files) {
	fmt.Fprintf(w, "%s (%d)\n", title, len(files))
	if len(files) == 0 {
		return
	}
	tw := newTable(w)
	fmt.Fprintln(tw, "NAME\tRECORDS\tOK\tUNUSED\tTOO_SHORT\tBAD_END")
	for _, name := range files.Names() {
		data := files[name]
		counts := data.CountByState()
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%d\t%d\n", name, data.Len(),
			counts[locale.OK], counts[locale.Unused], counts[locale.TooShort], counts[locale.BadEnd])
	}
	tw.Flush()
}

func printReport(w io.Writer, r *audit.Report) {
	printAuditSummary(w, r)
	if len(r.Findings) == 0 {
		return
	}
	fmt.Fprintln(w)
	tw := newTable(w)
	fmt.Fprintln(tw, "ORIGIN\tFILE\tLINE\tKEY\tSTATE\tDETAIL")
	for _, f := range r.Findings {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\t%s\n", f.Origin, f.File, f.Line, f.Key, f.State, f.Detail)
	}
	tw.Flush()
}

func printAuditSummary(w io.Writer, r *audit.Report) {
	fmt.Fprintf(w, "%s: %d game files, %d mod files, %d records, %d broken, %d findings\n",
		r.ModPath, r.GameFiles, r.ModFiles, r.Records, r.Broken(), len(r.Findings))
}

func printOccurrences(w io.Writer, key string, occ []resolver.Occurrence, langs []locale.Language) {
	for i, o := range occ {
		rec := o.Record(key)
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "%s/%s line %d: %s\n", o.Origin, o.Name, rec.Line, rec.State)

		tw := newTable(w)
		for _, lang := range langs {
			text, ok := rec.Get(lang)
			if !ok {
				text = "(missing)"
			}
			fmt.Fprintf(tw, "  %s\t%s\n", lang, textutil.Truncate(text, cellWidth))
		}
		tw.Flush()
	}
}

func printDuplicates(w io.Writer, loc *resolver.Localization) {
	tw := newTable(w)
	fmt.Fprintln(tw, "KEY\tFILE\tLINES")
	found := false
	loc.Each(func(origin resolver.Origin, name string, data *parser.Data) {
		dupes := data.Duplicates()
		keys := make([]string, 0, len(dupes))
		for k := range dupes {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, key := range keys {
			found = true
			fmt.Fprintf(tw, "%s\t%s/%s\t%v\n", key, origin, name, dupes[key])
		}
	})
	for _, key := range loc.SharedKeys() {
		for _, o := range loc.Occurrences(key) {
			found = true
			fmt.Fprintf(tw, "%s\t%s/%s\t[%d]\n", key, o.Origin, o.Name, o.Record(key).Line)
		}
	}
	if !found {
		fmt.Fprintln(w, "No duplicated keys")
		return
	}
	tw.Flush()
}

func printSharedKeys(w io.Writer, shared []graph.SharedKey) {
	if len(shared) == 0 {
		fmt.Fprintln(w, "No keys are defined in more than one file")
		return
	}
	tw := newTable(w)
	fmt.Fprintln(tw, "KEY\tFILES")
	for _, sk := range shared {
		files := make([]string, len(sk.Files))
		for i, f := range sk.Files {
			files[i] = f.Origin + "/" + f.Name
		}
		fmt.Fprintf(tw, "%s\t%s\n", sk.Key, strings.Join(files, ", "))
	}
	tw.Flush()
}

func printKeyStates(w io.Writer, key string, states map[string]string) {
	files := make([]string, 0, len(states))
	for f := range states {
		files = append(files, f)
	}
	sort.Strings(files)

	fmt.Fprintln(w, key)
	tw := newTable(w)
	for _, f := range files {
		fmt.Fprintf(tw, "  %s\t%s\n", f, states[f])
	}
	tw.Flush()
}
