// Package interpolation finds the variables embedded in localised text so that
// translations can be checked against the reference language.
package interpolation

import (
	"regexp"
	"sort"
)

// varMatch stores a detected interpolation variable position.
type varMatch struct {
	start, end int
	value      string
}

// patterns to detect interpolation variables in game strings.
var patterns = []*regexp.Regexp{
	regexp.MustCompile(`\$[A-Za-z_][A-Za-z0-9_|]*\$`),         // $COUNTRY$, $VAL|Y$
	regexp.MustCompile(`\$\{[a-zA-Z_][a-zA-Z0-9_]*\}`),         // ${value}
	regexp.MustCompile(`\{[0-9]+\}`),                           // {0}, {1}
	regexp.MustCompile(`%[-+0-9]*\.?[0-9]*[dsfieEgGxXoubcpq]`), // %d, %s, %f, %2d, etc.
	regexp.MustCompile(`%%`),                                   // escaped percent literal
}

// Variables returns the interpolation variables of text in order of appearance.
// Overlapping matches keep the earliest, longest one.
func Variables(text string) []string {
	var all []varMatch
	for _, p := range patterns {
		for _, loc := range p.FindAllStringIndex(text, -1) {
			all = append(all, varMatch{start: loc[0], end: loc[1], value: text[loc[0]:loc[1]]})
		}
	}
	if len(all) == 0 {
		return nil
	}

	sort.SliceStable(all, func(i, j int) bool {
		if all[i].start != all[j].start {
			return all[i].start < all[j].start
		}
		return all[i].end-all[i].start > all[j].end-all[j].start
	})

	var out []string
	lastEnd := -1
	for _, m := range all {
		if m.start >= lastEnd {
			out = append(out, m.value)
			lastEnd = m.end
		}
	}
	return out
}

// Diff compares the variables of text against those of reference, ignoring order.
// missing holds variables of reference absent from text, extra the reverse. Each
// variable counts as many times as it appears.
func Diff(reference, text string) (missing, extra []string) {
	counts := make(map[string]int)
	for _, v := range Variables(reference) {
		counts[v]++
	}
	for _, v := range Variables(text) {
		if counts[v] > 0 {
			counts[v]--
			continue
		}
		extra = append(extra, v)
	}
	for _, v := range Variables(reference) {
		if counts[v] > 0 {
			counts[v]--
			missing = append(missing, v)
		}
	}
	return missing, extra
}
