package audit

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"localization-editor/internal/locale"
	"localization-editor/internal/mod"
	"localization-editor/internal/resolver"
)

func row(key string) string {
	return key + strings.Repeat(";"+key, locale.LanguageCount) + ";x"
}

func writeCSV(t *testing.T, path string, rows ...string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(rows, "\n")), 0o644))
}

func loadFixture(t *testing.T) *mod.Mod {
	t.Helper()
	root := t.TempDir()
	game := filepath.Join(root, "game")
	modRoot := filepath.Join(root, "mod")
	writeCSV(t, filepath.Join(game, "localisation", "base.csv"), row("SHARED"), "BAD;text")
	writeCSV(t, filepath.Join(modRoot, "localisation", "extra.csv"), row("SHARED"), "SHORT;en;fr;x", row("DUP"), row("DUP"))

	m, err := mod.Load(mod.Location{GameRoot: game, ModRoot: modRoot})
	require.NoError(t, err)
	return m
}

func TestBuild(t *testing.T) {
	r := Build(loadFixture(t))

	assert.Equal(t, 1, r.GameFiles)
	assert.Equal(t, 1, r.ModFiles)
	assert.Equal(t, 5, r.Records)
	assert.Equal(t, 2, r.Broken())
	assert.Len(t, r.Fingerprint, 64)

	require.Len(t, r.Findings, 4)

	short := r.Findings[0]
	assert.Equal(t, resolver.OriginMod, short.Origin)
	assert.Equal(t, "SHORT", short.Key)
	assert.Equal(t, locale.TooShort, short.State)
	assert.Contains(t, short.Detail, "German")
	assert.NotContains(t, short.Detail, "French")

	bad := r.Findings[1]
	assert.Equal(t, "BAD", bad.Key)
	assert.Equal(t, resolver.OriginGame, bad.Origin)
	assert.Equal(t, 2, bad.Line)

	dup := r.Findings[2]
	assert.Equal(t, "DUP", dup.Key)
	assert.Equal(t, DetailDuplicateInFile, dup.Detail)
	assert.Equal(t, 4, dup.Line)

	shared := r.Findings[3]
	assert.Equal(t, "SHARED", shared.Key)
	assert.Equal(t, "extra", shared.File)
	assert.Equal(t, DetailSharedKey, shared.Detail)
}

func TestFingerprintStable(t *testing.T) {
	m := loadFixture(t)
	assert.Equal(t, Build(m).Fingerprint, Build(m).Fingerprint)

	require.NoError(t, m.Localization.MarkUsed("extra", "SHARED"))
	assert.NotEqual(t, Build(loadFixture(t)).Fingerprint, Build(m).Fingerprint)
}

func TestBuildVariableMismatch(t *testing.T) {
	root := t.TempDir()
	cells := []string{"EVT", "$WHO$ gains %d gold", "$WHO$ gagne %d or", "%d Gold für $WER$", "", "%d oro para $WHO$"}
	for len(cells) <= locale.LanguageCount {
		cells = append(cells, "")
	}
	writeCSV(t, filepath.Join(root, "mod", "localisation", "events.csv"), strings.Join(append(cells, "x"), ";"))

	m, err := mod.Load(mod.Location{GameRoot: filepath.Join(root, "game"), ModRoot: filepath.Join(root, "mod")})
	require.NoError(t, err)

	r := Build(m)
	require.Len(t, r.Findings, 1)
	assert.Equal(t, "EVT", r.Findings[0].Key)
	assert.Equal(t, DetailVariables+"German", r.Findings[0].Detail)
}
