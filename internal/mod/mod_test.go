package mod

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"localization-editor/internal/resolver"
)

func write(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestLoadProbesEachSideSeparately(t *testing.T) {
	root := t.TempDir()
	gameRoot := filepath.Join(root, "game")
	modRoot := filepath.Join(root, "mod")
	write(t, filepath.Join(gameRoot, "localisation", "text.csv"), "BASE;base;x\n")
	write(t, filepath.Join(gameRoot, "localisation", "other.csv"), "OTHER;other;x\n")
	write(t, filepath.Join(modRoot, "Localization", "text.csv"), "MODDED;modded;x\n")

	m, err := Load(Location{GameRoot: gameRoot, ModRoot: modRoot})
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(modRoot, "Localization"), m.ModDir)
	assert.Equal(t, []string{"other"}, m.Localization.GameFiles.Names())
	assert.Equal(t, []string{"text"}, m.Localization.ModFiles.Names())
	assert.True(t, m.Localization.ModFiles["text"].Has("MODDED"))
}

func TestLoadWithoutModLocalisation(t *testing.T) {
	root := t.TempDir()
	gameRoot := filepath.Join(root, "game")
	modRoot := filepath.Join(root, "mod")
	write(t, filepath.Join(gameRoot, "localisation", "text.csv"), "BASE;base;x\n")
	require.NoError(t, os.MkdirAll(modRoot, 0o755))

	m, err := Load(Location{GameRoot: gameRoot, ModRoot: modRoot})
	require.NoError(t, err)
	assert.Equal(t, []string{"text"}, m.Localization.GameFiles.Names())
	assert.Empty(t, m.Localization.ModFiles)
}

func TestLoadFailures(t *testing.T) {
	_, err := Load(Location{ModRoot: "mod"})
	assert.ErrorIs(t, err, ErrOpenMod)

	_, err = Load(Location{GameRoot: "game"})
	assert.ErrorIs(t, err, ErrOpenMod)

	root := t.TempDir()
	gameRoot := filepath.Join(root, "game")
	// A file where the localisation folder should be.
	write(t, filepath.Join(gameRoot, "localisation"), "oops")

	_, err = Load(Location{GameRoot: gameRoot, ModRoot: root})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrOpenMod)
	assert.ErrorIs(t, err, resolver.ErrIO)
}

func TestLoadFollowsSymlinkedModLocalisation(t *testing.T) {
	root := t.TempDir()
	gameRoot := filepath.Join(root, "game")
	modRoot := filepath.Join(root, "mod")
	write(t, filepath.Join(gameRoot, "localisation", "text.csv"), "BASE;base;x\n")
	write(t, filepath.Join(root, "shared", "text.csv"), "MODDED;modded;x\n")
	require.NoError(t, os.MkdirAll(modRoot, 0o755))
	require.NoError(t, os.Symlink(filepath.Join("..", "shared"), filepath.Join(modRoot, "Localisation")))

	m, err := Load(Location{GameRoot: gameRoot, ModRoot: modRoot})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(modRoot, "Localisation"), m.ModDir)
	require.Contains(t, m.Localization.ModFiles, "text")
	assert.True(t, m.Localization.ModFiles["text"].Has("MODDED"))
	assert.Empty(t, m.Localization.GameFiles)
}
