package sink

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSQLite(t *testing.T) *SQLite {
	t.Helper()
	s, err := NewSQLite(filepath.Join(t.TempDir(), "fgo.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close(context.Background()) })
	return s
}

func TestSQLiteUpsertMerges(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()
	filter := map[string]any{"name": "Mana Burst A"}

	require.NoError(t, s.Upsert(ctx, CollectionSkills, filter, map[string]any{"name": "Mana Burst A", "rank": "A", "cooldown": 7}))
	require.NoError(t, s.Upsert(ctx, CollectionSkills, filter, map[string]any{"name": "Mana Burst A", "cooldown": 6}))

	var count int
	require.NoError(t, s.db.QueryRowContext(ctx, `SELECT count(*) FROM "skills"`).Scan(&count))
	assert.Equal(t, 1, count)

	var rank string
	var cooldown int
	require.NoError(t, s.db.QueryRowContext(ctx,
		`SELECT json_extract(doc, '$.rank'), json_extract(doc, '$.cooldown') FROM "skills" WHERE key = ?`,
		"Mana Burst A").Scan(&rank, &cooldown))
	assert.Equal(t, "A", rank)
	assert.Equal(t, 6, cooldown)
}

func TestSQLiteSeparateCollections(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	require.NoError(t, s.Upsert(ctx, CollectionServants, map[string]any{"servantId": 2}, map[string]any{"servantId": 2}))
	require.NoError(t, s.Upsert(ctx, CollectionSkills, map[string]any{"name": "x"}, map[string]any{"name": "x"}))

	var key string
	require.NoError(t, s.db.QueryRowContext(ctx, `SELECT key FROM "servants"`).Scan(&key))
	assert.Equal(t, "2", key)
}

func TestSQLiteRejectsBadInput(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	assert.Error(t, s.Upsert(ctx, "bad name", map[string]any{"name": "x"}, map[string]any{}))
	assert.Error(t, s.Upsert(ctx, CollectionSkills, nil, map[string]any{}))
	assert.Error(t, s.Upsert(ctx, CollectionSkills, map[string]any{"name": "x"}, make(chan int)))
}
