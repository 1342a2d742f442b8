package parser

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"localization-editor/internal/locale"
)

func dataOf(rows ...string) *Data {
	d := newData()
	for i, row := range rows {
		rec := ParseRecord(strings.Split(row, Delimiter))
		rec.Line = i + 1
		d.put(&rec)
	}
	return d
}

func TestMarkUsed(t *testing.T) {
	d := dataOf(fullRow("FULL"), "SHORT;a;x", "BAD;a")

	require.NoError(t, d.MarkUsed("FULL"))
	rec, _ := d.Record("FULL")
	assert.Equal(t, locale.OK, rec.State)

	// Already OK stays OK.
	require.NoError(t, d.MarkUsed("FULL"))

	err := d.MarkUsed("SHORT")
	assert.ErrorIs(t, err, ErrNotPromotable)
	rec, _ = d.Record("SHORT")
	assert.Equal(t, locale.TooShort, rec.State)

	assert.ErrorIs(t, d.MarkUsed("BAD"), ErrNotPromotable)
	assert.ErrorIs(t, d.MarkUsed("NOPE"), ErrUnknownKey)
}

func TestCountByState(t *testing.T) {
	d := dataOf(fullRow("A"), fullRow("B"), "C;c;x", "D;d")
	assert.Equal(t, map[locale.State]int{
		locale.Unused:   2,
		locale.TooShort: 1,
		locale.BadEnd:   1,
	}, d.CountByState())
}

func TestRecordMissing(t *testing.T) {
	d := dataOf("K;en;fr;de;x")
	rec, _ := d.Record("K")
	missing := rec.Missing()
	assert.Len(t, missing, locale.LanguageCount-3)
	assert.Equal(t, locale.Polish, missing[0])
	assert.Equal(t, locale.Finnish, missing[len(missing)-1])
}

func TestDataEqual(t *testing.T) {
	a := dataOf(fullRow("A"), "B;b;x")
	b := dataOf(fullRow("A"), "B;b;x")
	c := dataOf(fullRow("A"), "B;changed;x")
	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
	assert.False(t, a.Equal(dataOf(fullRow("A"))))
}

func TestDataClone(t *testing.T) {
	d := dataOf(fullRow("A"), "B;b", "B;b;x")
	cp := d.Clone()
	require.True(t, d.Equal(cp))
	assert.Equal(t, d.Duplicates(), cp.Duplicates())

	require.NoError(t, cp.MarkUsed("A"))
	rec, _ := d.Record("A")
	assert.Equal(t, locale.Unused, rec.State, "clone must not share records")
}
