package locale

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
)

// Language is one column of a localisation row. Its ordinal is the column index
// after the key, so the declaration order below must never change.
type Language int

const (
	English Language = iota
	French
	German
	Polish
	Spanish
	Italian
	Swedish
	Czech
	Hungarian
	Dutch
	Portuguese
	Russian
	Finnish
)

// LanguageCount is the number of language columns in the schema.
const LanguageCount = 13

var languageNames = [LanguageCount]string{
	"English", "French", "German", "Polish", "Spanish", "Italian", "Swedish",
	"Czech", "Hungarian", "Dutch", "Portuguese", "Russian", "Finnish",
}

var languageTags = [LanguageCount]language.Tag{
	language.English,
	language.French,
	language.German,
	language.Polish,
	language.Spanish,
	language.Italian,
	language.Swedish,
	language.Czech,
	language.Hungarian,
	language.Dutch,
	language.Portuguese,
	language.Russian,
	language.Finnish,
}

// Languages returns all languages in column order.
func Languages() []Language {
	out := make([]Language, LanguageCount)
	for i := range out {
		out[i] = Language(i)
	}
	return out
}

// Valid reports whether l is inside the schema.
func (l Language) Valid() bool {
	return l >= 0 && int(l) < LanguageCount
}

// Column returns the zero-based entry index for l.
func (l Language) Column() int { return int(l) }

func (l Language) String() string {
	if !l.Valid() {
		return fmt.Sprintf("Language(%d)", int(l))
	}
	return languageNames[l]
}

// Tag returns the BCP-47 tag of the language.
func (l Language) Tag() language.Tag {
	if !l.Valid() {
		return language.Und
	}
	return languageTags[l]
}

// ParseLanguage accepts an English language name ("german") or a BCP-47 tag
// ("de", "de-AT"). Regional tags map to their base language.
func ParseLanguage(s string) (Language, error) {
	s = strings.TrimSpace(s)
	for i, name := range languageNames {
		if strings.EqualFold(name, s) {
			return Language(i), nil
		}
	}

	tag, err := language.Parse(s)
	if err != nil {
		return 0, fmt.Errorf("unknown language %q", s)
	}
	base, _ := tag.Base()
	for i, t := range languageTags {
		if b, _ := t.Base(); b == base {
			return Language(i), nil
		}
	}
	return 0, fmt.Errorf("language %q is not part of the localisation schema", s)
}
