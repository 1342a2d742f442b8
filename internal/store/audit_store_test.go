package store

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"localization-editor/internal/audit"
	"localization-editor/internal/locale"
	"localization-editor/internal/resolver"
)

// testPool connects to TEST_DATABASE_URL; the tests are skipped without it.
func testPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, url)
	require.NoError(t, err)
	require.NoError(t, pool.Ping(ctx))
	t.Cleanup(pool.Close)
	return pool
}

func TestAuditStoreRoundTrip(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()
	s := NewAuditStore(pool)
	require.NoError(t, s.EnsureSchema(ctx))

	modPath := "/mods/test-" + time.Now().Format("150405.000000000")
	report := &audit.Report{
		GamePath:    "/games/base",
		ModPath:     modPath,
		Fingerprint: "abc",
		CreatedAt:   time.Now().UTC().Truncate(time.Microsecond),
		GameFiles:   2,
		ModFiles:    1,
		Records:     10,
		States:      map[locale.State]int{locale.Unused: 8, locale.TooShort: 1, locale.BadEnd: 1},
		Findings: []audit.Finding{
			{Origin: resolver.OriginMod, File: "text", Key: "A", Line: 3, State: locale.TooShort, Detail: "row stops early"},
			{Origin: resolver.OriginGame, File: "base", Key: "B", Line: 9, State: locale.BadEnd, Detail: "row ends without the x marker"},
		},
	}

	unchanged, err := s.Unchanged(ctx, report)
	require.NoError(t, err)
	assert.False(t, unchanged)

	id, err := s.Save(ctx, report)
	require.NoError(t, err)
	assert.Positive(t, id)

	got, gotID, err := s.Latest(ctx, modPath)
	require.NoError(t, err)
	assert.Equal(t, id, gotID)
	assert.Equal(t, report.Fingerprint, got.Fingerprint)
	assert.Equal(t, 8, got.States[locale.Unused])
	assert.Equal(t, 0, got.States[locale.OK])
	assert.Equal(t, report.Findings, got.Findings)
	assert.True(t, report.CreatedAt.Equal(got.CreatedAt))

	unchanged, err = s.Unchanged(ctx, report)
	require.NoError(t, err)
	assert.True(t, unchanged)
}

func TestAuditStoreLatestMissing(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()
	s := NewAuditStore(pool)
	require.NoError(t, s.EnsureSchema(ctx))

	_, _, err := s.Latest(ctx, "/mods/never-audited")
	assert.ErrorIs(t, err, ErrNoRuns)
}
