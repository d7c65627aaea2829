package sink

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sells-group/fgo-harvest/internal/config"
	"github.com/sells-group/fgo-harvest/internal/model"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

func TestFilterKey(t *testing.T) {
	k, err := filterKey(map[string]any{"servantId": 2})
	require.NoError(t, err)
	assert.Equal(t, "2", k)

	k, err = filterKey(map[string]any{"name": "Mana Burst A"})
	require.NoError(t, err)
	assert.Equal(t, "Mana Burst A", k)

	k, err = filterKey(map[string]any{"b": 2, "a": "x"})
	require.NoError(t, err)
	assert.Equal(t, "a=x&b=2", k)

	_, err = filterKey(nil)
	assert.Error(t, err)
}

func TestCheckCollection(t *testing.T) {
	assert.NoError(t, checkCollection("servants"))
	assert.NoError(t, checkCollection("skill_v2"))
	assert.Error(t, checkCollection(""))
	assert.Error(t, checkCollection(`skills"; DROP TABLE x; --`))
	assert.Error(t, checkCollection("Skills"))
}

func TestOpenUnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), config.SinkConfig{Driver: "redis"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown driver")
}

func TestOpenSQLite(t *testing.T) {
	s, err := Open(context.Background(), config.SinkConfig{
		Driver:     "sqlite",
		SQLitePath: filepath.Join(t.TempDir(), "fgo.db"),
	})
	require.NoError(t, err)
	assert.IsType(t, &SQLite{}, s)
	assert.NoError(t, s.Close(context.Background()))
}

func TestOpenMongoRequiresURI(t *testing.T) {
	_, err := Open(context.Background(), config.SinkConfig{Driver: "mongo"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mongo uri is required")
}

// recordingSink remembers upserts and fails for names in failOn.
type recordingSink struct {
	failOn  map[string]bool
	filters []map[string]any
}

func (r *recordingSink) Upsert(_ context.Context, _ string, filter map[string]any, doc any) error {
	if s, ok := doc.(model.CleanSkill); ok && r.failOn[s.Name] {
		return errors.New("write conflict")
	}
	r.filters = append(r.filters, filter)
	return nil
}

func (r *recordingSink) Close(context.Context) error { return nil }

func TestImportSkillsContinuesPastFailures(t *testing.T) {
	s := &recordingSink{failOn: map[string]bool{"Broken": true}}
	docs := []model.CleanSkill{{Name: "Mana Burst A"}, {Name: "Broken"}, {Name: "Charisma B"}}

	res := ImportSkills(context.Background(), s, docs)
	assert.Equal(t, ImportResult{Succeeded: 2, Failed: 1}, res)
	assert.Equal(t, []map[string]any{{"name": "Mana Burst A"}, {"name": "Charisma B"}}, s.filters)
}

func TestImportServantsKeyedByID(t *testing.T) {
	s := &recordingSink{}
	res := ImportServants(context.Background(), s, []model.CleanServant{{ServantID: 2, Name: "Altria Pendragon"}})
	assert.Equal(t, ImportResult{Succeeded: 1}, res)
	assert.Equal(t, []map[string]any{{"servantId": 2}}, s.filters)
}
