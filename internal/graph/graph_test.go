package graph

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"localization-editor/internal/resolver"
)

// testDriver connects to TEST_NEO4J_URI; the tests are skipped without it.
func testDriver(t *testing.T) neo4j.DriverWithContext {
	t.Helper()
	uri := os.Getenv("TEST_NEO4J_URI")
	if uri == "" {
		t.Skip("TEST_NEO4J_URI not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(os.Getenv("TEST_NEO4J_USER"), os.Getenv("TEST_NEO4J_PASSWORD"), ""))
	require.NoError(t, err)
	require.NoError(t, driver.VerifyConnectivity(ctx))
	t.Cleanup(func() { driver.Close(context.Background()) })
	return driver
}

func TestPublishAndQuery(t *testing.T) {
	driver := testDriver(t)
	ctx := context.Background()

	root := t.TempDir()
	game := filepath.Join(root, "game")
	mod := filepath.Join(root, "mod")
	require.NoError(t, os.MkdirAll(game, 0o755))
	require.NoError(t, os.MkdirAll(mod, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(game, "base.csv"), []byte("SHARED;a;x\nONLY;b;x\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(mod, "extra.csv"), []byte("SHARED;c\n"), 0o644))

	loc, err := resolver.Resolve(game, mod)
	require.NoError(t, err)

	gb := NewGraphBuilder(driver)
	require.NoError(t, gb.EnsureSchema(ctx))
	require.NoError(t, gb.Publish(ctx, mod, loc))
	// Publishing twice replaces rather than duplicates.
	require.NoError(t, gb.Publish(ctx, mod, loc))

	gq := NewGraphQuerier(driver)
	shared, err := gq.SharedKeys(ctx, mod)
	require.NoError(t, err)
	require.Len(t, shared, 1)
	assert.Equal(t, "SHARED", shared[0].Key)
	assert.Equal(t, []FileRef{{Name: "extra", Origin: "mod"}, {Name: "base", Origin: "game"}}, shared[0].Files)

	states, err := gq.KeyStates(ctx, mod, "SHARED")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"extra": "BAD_END", "base": "TOO_SHORT"}, states)
}
