package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"
	"go.uber.org/zap"

	"github.com/sells-group/fgo-harvest/internal/config"
	"github.com/sells-group/fgo-harvest/internal/harvest"
	"github.com/sells-group/fgo-harvest/internal/model"
	"github.com/sells-group/fgo-harvest/internal/snapshot"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	c := &config.Config{DataDir: t.TempDir()}
	c.Skills.Version = "v20"
	c.Site.BaseURL = "https://grandorder.gamepress.gg"
	c.Site.DirectoryURL = "https://gamepress.gg/json-list"
	c.Servants.ListURL = "https://grandorder.gamepress.gg/servants.json"
	c.Skills.ListURL = "https://grandorder.gamepress.gg/servant-skills.json"
	c.HTTP.TimeoutSecs = 5
	c.Pacing.Every = 10
	c.Pacing.PauseMS = 1000
	c.Comb.MaxIterations = 25
	return c
}

func withConfig(t *testing.T, c *config.Config) {
	t.Helper()
	prev := cfg
	cfg = c
	t.Cleanup(func() { cfg = prev })
}

func TestNewPipeline(t *testing.T) {
	p, err := newPipeline(testConfig(t))
	require.NoError(t, err)
	assert.NotNil(t, p)
}

func TestNewPipeline_BadExclusions(t *testing.T) {
	c := testConfig(t)
	c.Normalize.ExclusionsFile = filepath.Join(t.TempDir(), "missing.yaml")
	_, err := newPipeline(c)
	assert.Error(t, err)
}

func TestStatusCommand(t *testing.T) {
	c := testConfig(t)
	withConfig(t, c)

	var buf bytes.Buffer
	statusCmd.SetOut(&buf)
	t.Cleanup(func() { statusCmd.SetOut(nil) })

	require.NoError(t, statusCmd.RunE(statusCmd, nil))
	assert.Contains(t, buf.String(), "no snapshots")

	store := snapshot.NewStore(c.DataDir)
	require.NoError(t, store.Save(harvest.EntitySkills, "v20", snapshot.TagComb, []model.Skill{}))

	buf.Reset()
	require.NoError(t, statusCmd.RunE(statusCmd, nil))
	assert.Contains(t, buf.String(), "ENTITY")
	assert.Contains(t, buf.String(), "skills")
	assert.Contains(t, buf.String(), "v20")
	assert.Contains(t, buf.String(), "comb")
}

func TestExportCommand(t *testing.T) {
	c := testConfig(t)
	withConfig(t, c)

	store := snapshot.NewStore(c.DataDir)
	require.NoError(t, store.Save(harvest.EntitySkills, "v20", snapshot.TagClean, []model.CleanSkill{
		{Name: "Mana Burst A", Effects: []string{}, Leveling: model.Leveling{Enhancement: "Buster Up"}},
	}))

	out := filepath.Join(t.TempDir(), "fgo.xlsx")
	prev := exportOut
	exportOut = out
	t.Cleanup(func() { exportOut = prev })

	require.NoError(t, exportCmd.RunE(exportCmd, nil))

	f, err := xlsx.OpenFile(out)
	require.NoError(t, err)
	// Missing servant snapshot leaves only the header row.
	assert.Len(t, f.Sheet["Servants"].Rows, 1)
	assert.Len(t, f.Sheet["Skills"].Rows, 2)
}

func TestCleanRecords_RequiresSnapshot(t *testing.T) {
	c := testConfig(t)
	_, _, err := cleanRecords(snapshot.NewStore(c.DataDir), c, harvest.EntityServants, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "run harvest first")
}

func TestCleanRecords_LoadsRequestedEntity(t *testing.T) {
	c := testConfig(t)
	store := snapshot.NewStore(c.DataDir)
	require.NoError(t, store.Save(harvest.EntityServants, "", snapshot.TagClean, []model.CleanServant{{ServantID: 2, Name: "Altria Pendragon"}}))

	servants, skills, err := cleanRecords(store, c, harvest.EntityServants, false)
	require.NoError(t, err)
	require.Len(t, servants, 1)
	assert.Nil(t, skills)
}

func TestImportCommand_RejectsUnknownDriver(t *testing.T) {
	c := testConfig(t)
	c.Sink.Driver = "redis"
	withConfig(t, c)

	err := importCmd.RunE(importCmd, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sink.driver")
}

func TestImportCommand_SQLite(t *testing.T) {
	c := testConfig(t)
	c.Sink.Driver = "sqlite"
	c.Sink.SQLitePath = filepath.Join(t.TempDir(), "fgo.db")
	withConfig(t, c)

	store := snapshot.NewStore(c.DataDir)
	require.NoError(t, store.Save(harvest.EntityServants, "", snapshot.TagClean, []model.CleanServant{{ServantID: 2, Name: "Altria Pendragon"}}))
	require.NoError(t, store.Save(harvest.EntitySkills, "v20", snapshot.TagClean, []model.CleanSkill{{Name: "Mana Burst A"}}))

	importCmd.SetContext(context.Background())
	require.NoError(t, importCmd.RunE(importCmd, nil))
	_, err := os.Stat(c.Sink.SQLitePath)
	assert.NoError(t, err)
}
