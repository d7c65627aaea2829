package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })
	return dir
}

func TestLoadDefaults(t *testing.T) {
	// Change to temp dir so no config.yaml is found
	chdirTemp(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "data", cfg.DataDir)
	assert.Equal(t, "", cfg.Servants.Version)
	assert.Contains(t, cfg.Servants.ListURL, "servants.json")
	assert.Contains(t, cfg.Skills.ListURL, "servant-skills.json")
	assert.Equal(t, "https://grandorder.gamepress.gg", cfg.Site.BaseURL)
	assert.Equal(t, "https://gamepress.gg/json-list?_format=json&game_tid=26", cfg.Site.DirectoryURL)
	assert.Equal(t, 30, cfg.HTTP.TimeoutSecs)
	assert.Equal(t, 1, cfg.HTTP.MaxRetries)
	assert.InDelta(t, 20.0, cfg.HTTP.RequestsPerSecond, 0.001)
	assert.Equal(t, 10, cfg.Pacing.Every)
	assert.Equal(t, 1000, cfg.Pacing.PauseMS)
	assert.Equal(t, 0, cfg.Pacing.Concurrency)
	assert.Equal(t, 25, cfg.Comb.MaxIterations)
	assert.Equal(t, "mongo", cfg.Sink.Driver)
	assert.Equal(t, "fatego-db", cfg.Sink.Database)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoadFromYAML(t *testing.T) {
	dir := chdirTemp(t)

	yaml := `
data_dir: /var/fgo
skills:
  version: v20
sink:
  driver: sqlite
log:
  level: debug
  format: console
pacing:
  every: 5
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "/var/fgo", cfg.DataDir)
	assert.Equal(t, "v20", cfg.Skills.Version)
	assert.Equal(t, "sqlite", cfg.Sink.Driver)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, 5, cfg.Pacing.Every)
	// Defaults still apply for unset values
	assert.Equal(t, 1000, cfg.Pacing.PauseMS)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := chdirTemp(t)

	yaml := `
sink:
  driver: sqlite
log:
  level: debug
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	t.Setenv("FGO_SINK_DRIVER", "postgres")
	t.Setenv("FGO_LOG_LEVEL", "warn")

	cfg, err := Load()
	require.NoError(t, err)

	// Env overrides file
	assert.Equal(t, "postgres", cfg.Sink.Driver)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadEnvOverridesDefaults(t *testing.T) {
	chdirTemp(t)

	t.Setenv("FGO_SERVER_PORT", "3000")
	t.Setenv("FGO_COMB_MAX_ITERATIONS", "3")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 3000, cfg.Server.Port)
	assert.Equal(t, 3, cfg.Comb.MaxIterations)
}

func TestLoadInvalidYAML(t *testing.T) {
	dir := chdirTemp(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("log: [unclosed"), 0644))

	_, err := Load()
	assert.Error(t, err)
}

func TestInitLoggerConsole(t *testing.T) {
	err := InitLogger(LogConfig{Level: "debug", Format: "console"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerJSON(t *testing.T) {
	err := InitLogger(LogConfig{Level: "info", Format: "json"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerInvalidLevel(t *testing.T) {
	err := InitLogger(LogConfig{Level: "invalid", Format: "json"})
	assert.Error(t, err)
}

// validDefaults returns a Config with all defaults populated for validation tests.
func validDefaults() *Config {
	cfg := &Config{DataDir: "data"}
	cfg.Site.BaseURL = "https://grandorder.gamepress.gg"
	cfg.Servants.ListURL = "https://example.com/servants.json"
	cfg.Skills.ListKeyword = "Servant Skills"
	cfg.Pacing.Every = 10
	cfg.Pacing.PauseMS = 1000
	cfg.Comb.MaxIterations = 25
	cfg.Sink.Driver = "mongo"
	cfg.Sink.MongoURI = "mongodb://localhost:27017"
	cfg.Sink.Database = "fatego-db"
	cfg.Server.Port = 8080
	return cfg
}

func TestValidateHarvest(t *testing.T) {
	cfg := validDefaults()
	assert.NoError(t, cfg.Validate("harvest"))

	cfg.Skills.ListKeyword = ""
	cfg.Pacing.Every = 0
	cfg.Comb.MaxIterations = 0
	err := cfg.Validate("harvest")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "skills.list_url or skills.list_keyword is required")
	assert.Contains(t, err.Error(), "pacing.every must be >= 1")
	assert.Contains(t, err.Error(), "comb.max_iterations must be >= 1")
}

func TestValidateVersionTokens(t *testing.T) {
	cfg := validDefaults()
	cfg.Servants.Version = "v20"
	cfg.Skills.Version = "2024-07_na"
	assert.NoError(t, cfg.Validate("harvest"))

	cfg.Servants.Version = "../outside"
	cfg.Skills.Version = "v2.1"
	for _, mode := range []string{"harvest", "import", "export", "serve"} {
		err := cfg.Validate(mode)
		require.Error(t, err, mode)
		assert.Contains(t, err.Error(), "servants.version may only contain", mode)
		assert.Contains(t, err.Error(), "skills.version may only contain", mode)
	}
}

func TestValidateImport(t *testing.T) {
	cfg := validDefaults()
	assert.NoError(t, cfg.Validate("import"))

	cfg.Sink.Driver = "postgres"
	err := cfg.Validate("import")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sink.database_url is required")

	cfg.Sink.DatabaseURL = "postgres://localhost/fgo"
	assert.NoError(t, cfg.Validate("import"))

	cfg.Sink.Driver = "redis"
	err = cfg.Validate("import")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sink.driver must be one of")
}

func TestValidateServe_InvalidPort(t *testing.T) {
	cfg := validDefaults()
	cfg.Server.Port = 0

	err := cfg.Validate("serve")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "server.port must be > 0")
}

func TestValidateUnknownMode(t *testing.T) {
	cfg := validDefaults()
	err := cfg.Validate("unknown")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unknown mode")
}
