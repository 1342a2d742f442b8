package parser

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"golang.org/x/text/encoding/charmap"

	"localization-editor/internal/locale"
)

var (
	// ErrFormat is returned when a file without the .csv extension is handed to the parser.
	ErrFormat = errors.New("file must be a .csv file")
	// ErrUnknownKey is returned when a key is not defined in a file.
	ErrUnknownKey = errors.New("unknown key")
	// ErrNotPromotable is returned when a structurally broken record is marked used.
	ErrNotPromotable = errors.New("record cannot be promoted")
)

const (
	// Extension is the only file extension the game reads localisation from.
	Extension = ".csv"
	// Delimiter separates fields. There is no quoting.
	Delimiter = ";"
	// maxFields is the key plus 13 languages plus the trailing slot.
	maxFields = 15
)

// Encoding selects how file bytes are decoded.
type Encoding string

const (
	UTF8        Encoding = "utf-8"
	Windows1252 Encoding = "windows-1252"
)

// ParseEncoding maps a configuration value to an Encoding.
func ParseEncoding(s string) (Encoding, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "utf-8", "utf8":
		return UTF8, nil
	case "windows-1252", "cp1252", "latin1", "iso-8859-1":
		return Windows1252, nil
	}
	return "", fmt.Errorf("unsupported encoding %q", s)
}

func (e Encoding) reader(r io.Reader) io.Reader {
	if e == Windows1252 {
		return charmap.Windows1252.NewDecoder().Reader(r)
	}
	return r
}

// CSVParser reads the game's semicolon-separated localisation tables.
type CSVParser struct {
	encoding Encoding
}

func NewCSVParser(enc Encoding) *CSVParser {
	if enc == "" {
		enc = UTF8
	}
	return &CSVParser{encoding: enc}
}

func (p *CSVParser) CanParse(ext string) bool {
	return ext == Extension
}

// Parse loads one localisation file. Malformed rows are classified, never rejected.
func (p *CSVParser) Parse(filePath string) (*Data, error) {
	if filepath.Ext(filePath) != Extension {
		return nil, fmt.Errorf("%s: %w", filePath, ErrFormat)
	}

	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open csv file: %w", err)
	}
	defer file.Close()

	raw := bufio.NewReader(file)
	// The byte order mark is stripped before decoding so a legacy decoder never sees it.
	if head, err := raw.Peek(len(utf8BOM)); err == nil && bytes.Equal(head, utf8BOM) {
		raw.Discard(len(utf8BOM))
	}

	data, err := p.read(bufio.NewReader(p.encoding.reader(raw)))
	if err != nil {
		return nil, fmt.Errorf("read csv file %s: %w", filePath, err)
	}
	return data, nil
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

func (p *CSVParser) read(r *bufio.Reader) (*Data, error) {
	data := newData()

	lineNum := 0
	for {
		line, ok, err := readLine(r)
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		lineNum++

		fields := strings.Split(line, Delimiter)
		if IsComment(fields[0]) {
			continue
		}

		rec := ParseRecord(fields)
		rec.Line = lineNum
		data.put(&rec)
	}
	return data, nil
}

// readLine returns the next line without its terminator. "\n", "\r\n" and a lone "\r"
// all end a line, and lines have no length limit. ok is false once the input is exhausted.
func readLine(r *bufio.Reader) (line string, ok bool, err error) {
	var b []byte
	for {
		c, err := r.ReadByte()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return string(b), len(b) > 0, nil
			}
			return "", false, err
		}
		switch c {
		case '\n':
			return string(b), true, nil
		case '\r':
			if next, err := r.Peek(1); err == nil && next[0] == '\n' {
				r.Discard(1)
			}
			return string(b), true, nil
		}
		b = append(b, c)
	}
}

// IsComment reports whether a row with the given first field carries no record:
// the field is blank or starts with '#' once leading whitespace is dropped.
func IsComment(first string) bool {
	first = strings.TrimLeftFunc(first, unicode.IsSpace)
	return first == "" || first[0] == '#'
}

// IsStop reports whether a field is the single-character "x" end-of-row marker.
func IsStop(field string) bool {
	return len(field) == 1 && (field[0] == 'x' || field[0] == 'X')
}

// ParseRecord turns the fields of one non-comment row into a record. fields[0] is the key.
//
// Fields are counted from the key onwards. Scanning stops at the first stop marker or
// once maxFields fields have been taken; the field that stops the scan is counted but
// not stored.
func ParseRecord(fields []string) Record {
	if len(fields) == 0 {
		return Record{State: locale.BadEnd}
	}
	rec := Record{Key: fields[0]}

	count := 1
	sawStop := false
	for _, f := range fields[1:] {
		count++
		if IsStop(f) {
			sawStop = true
			break
		}
		if count > maxFields {
			break
		}
		rec.Entries = append(rec.Entries, f)
	}

	switch {
	case count >= maxFields:
		rec.State = locale.Unused
	case sawStop:
		rec.State = locale.TooShort
	default:
		rec.State = locale.BadEnd
	}
	return rec
}
