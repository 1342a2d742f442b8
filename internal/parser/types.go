package parser

import (
	"fmt"

	"localization-editor/internal/locale"
)

// Record is one keyed row of a localisation file.
type Record struct {
	// Key identifies the row inside its file.
	Key string
	// Index is the 1-based position of the record among the records of its file.
	Index int
	// Line is the 1-based physical line the record was read from.
	Line int
	// Entries holds the language columns in locale.Language order, plus the
	// conventional trailing slot when the row is complete.
	Entries []string
	// State is the structural classification assigned at parse time.
	State locale.State
}

// Get returns the cell for lang, or false when the row does not reach that column.
func (r *Record) Get(lang locale.Language) (string, bool) {
	if !lang.Valid() || lang.Column() >= len(r.Entries) {
		return "", false
	}
	return r.Entries[lang.Column()], true
}

// Missing lists the languages the row has no column for.
func (r *Record) Missing() []locale.Language {
	var out []locale.Language
	for _, lang := range locale.Languages() {
		if _, ok := r.Get(lang); !ok {
			out = append(out, lang)
		}
	}
	return out
}

// Data is one parsed localisation file: records keyed by key, in file order.
type Data struct {
	keys    []string
	records map[string]*Record
	// dupes maps a key to every line it was defined on, for keys defined more than once.
	dupes map[string][]int
}

func newData() *Data {
	return &Data{
		records: make(map[string]*Record),
		dupes:   make(map[string][]int),
	}
}

// put inserts rec. A repeated key replaces the earlier record but keeps its slot.
func (d *Data) put(rec *Record) bool {
	if prev, ok := d.records[rec.Key]; ok {
		if _, seen := d.dupes[rec.Key]; !seen {
			d.dupes[rec.Key] = []int{prev.Line}
		}
		d.dupes[rec.Key] = append(d.dupes[rec.Key], rec.Line)
		rec.Index = prev.Index
		d.records[rec.Key] = rec
		return false
	}
	d.keys = append(d.keys, rec.Key)
	rec.Index = len(d.keys)
	d.records[rec.Key] = rec
	return true
}

// Len returns the number of distinct keys.
func (d *Data) Len() int { return len(d.keys) }

// Keys returns the keys in file order.
func (d *Data) Keys() []string {
	out := make([]string, len(d.keys))
	copy(out, d.keys)
	return out
}

// Records returns the records in file order.
func (d *Data) Records() []*Record {
	out := make([]*Record, 0, len(d.keys))
	for _, k := range d.keys {
		out = append(out, d.records[k])
	}
	return out
}

// Record looks up one record by key.
func (d *Data) Record(key string) (*Record, bool) {
	rec, ok := d.records[key]
	return rec, ok
}

// Has reports whether key is defined in the file.
func (d *Data) Has(key string) bool {
	_, ok := d.records[key]
	return ok
}

// Get returns the cell of key for lang.
func (d *Data) Get(key string, lang locale.Language) (string, bool) {
	rec, ok := d.records[key]
	if !ok {
		return "", false
	}
	return rec.Get(lang)
}

// Duplicates returns every key defined more than once, mapped to the lines it
// appeared on. Only the last definition is kept in the records.
func (d *Data) Duplicates() map[string][]int {
	out := make(map[string][]int, len(d.dupes))
	for k, lines := range d.dupes {
		out[k] = append([]int(nil), lines...)
	}
	return out
}

// CountByState tallies records per state.
func (d *Data) CountByState() map[locale.State]int {
	out := make(map[locale.State]int)
	for _, rec := range d.records {
		out[rec.State]++
	}
	return out
}

// MarkUsed promotes an Unused record to OK. Callers must not run it concurrently
// with readers of the same record.
func (d *Data) MarkUsed(key string) error {
	rec, ok := d.records[key]
	if !ok {
		return fmt.Errorf("mark %q used: %w", key, ErrUnknownKey)
	}
	if rec.State == locale.OK {
		return nil
	}
	if !rec.State.CanPromote() {
		return fmt.Errorf("mark %q used: record is %s: %w", key, rec.State, ErrNotPromotable)
	}
	rec.State = locale.OK
	return nil
}

// Clone returns a deep copy of d.
func (d *Data) Clone() *Data {
	out := newData()
	out.keys = append([]string(nil), d.keys...)
	for k, rec := range d.records {
		cp := *rec
		cp.Entries = append([]string(nil), rec.Entries...)
		out.records[k] = &cp
	}
	for k, lines := range d.dupes {
		out.dupes[k] = append([]int(nil), lines...)
	}
	return out
}

// Equal reports whether two files hold the same records in the same order.
func (d *Data) Equal(other *Data) bool {
	if d.Len() != other.Len() {
		return false
	}
	for i, k := range d.keys {
		if other.keys[i] != k {
			return false
		}
		a, b := d.records[k], other.records[k]
		if a.State != b.State || a.Index != b.Index || len(a.Entries) != len(b.Entries) {
			return false
		}
		for j := range a.Entries {
			if a.Entries[j] != b.Entries[j] {
				return false
			}
		}
	}
	return true
}

// Parser is implemented by every localisation file format.
type Parser interface {
	// CanParse returns true if this parser handles the given file extension.
	CanParse(ext string) bool
	// Parse reads one file into keyed records.
	Parse(filePath string) (*Data, error)
}
