package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/sells-group/fgo-harvest/internal/snapshot"
)

// Config holds the full application configuration.
type Config struct {
	DataDir   string          `yaml:"data_dir" mapstructure:"data_dir"`
	Servants  EntityConfig    `yaml:"servants" mapstructure:"servants"`
	Skills    EntityConfig    `yaml:"skills" mapstructure:"skills"`
	Site      SiteConfig      `yaml:"site" mapstructure:"site"`
	HTTP      HTTPConfig      `yaml:"http" mapstructure:"http"`
	Pacing    PacingConfig    `yaml:"pacing" mapstructure:"pacing"`
	Comb      CombConfig      `yaml:"comb" mapstructure:"comb"`
	Normalize NormalizeConfig `yaml:"normalize" mapstructure:"normalize"`
	Sink      SinkConfig      `yaml:"sink" mapstructure:"sink"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// EntityConfig configures the list source for one entity kind.
type EntityConfig struct {
	// Version is appended to the list URL as a cache-busting token and
	// becomes part of every snapshot file name.
	Version     string `yaml:"version" mapstructure:"version"`
	ListURL     string `yaml:"list_url" mapstructure:"list_url"`
	ListKeyword string `yaml:"list_keyword" mapstructure:"list_keyword"`
}

// SiteConfig holds the content site locations.
type SiteConfig struct {
	BaseURL      string `yaml:"base_url" mapstructure:"base_url"`
	DirectoryURL string `yaml:"directory_url" mapstructure:"directory_url"`
}

// HTTPConfig configures the fetcher.
type HTTPConfig struct {
	UserAgent         string  `yaml:"user_agent" mapstructure:"user_agent"`
	TimeoutSecs       int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	MaxRetries        int     `yaml:"max_retries" mapstructure:"max_retries"`
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
}

// PacingConfig configures detail fan-out. Every dispatched record count
// that is a multiple of Every is followed by a PauseMS pause.
type PacingConfig struct {
	Every       int `yaml:"every" mapstructure:"every"`
	PauseMS     int `yaml:"pause_ms" mapstructure:"pause_ms"`
	Concurrency int `yaml:"concurrency" mapstructure:"concurrency"`
}

// CombConfig bounds the retry loop.
type CombConfig struct {
	MaxIterations int `yaml:"max_iterations" mapstructure:"max_iterations"`
}

// NormalizeConfig configures clean-stage output.
type NormalizeConfig struct {
	ExclusionsFile string `yaml:"exclusions_file" mapstructure:"exclusions_file"`
}

// SinkConfig selects and configures the persistence backend.
type SinkConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	MongoURI    string `yaml:"mongo_uri" mapstructure:"mongo_uri"`
	Database    string `yaml:"database" mapstructure:"database"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	SQLitePath  string `yaml:"sqlite_path" mapstructure:"sqlite_path"`
}

// ServerConfig configures the snapshot server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("FGO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("data_dir", "data")
	v.SetDefault("servants.version", "")
	v.SetDefault("servants.list_url", "https://grandorder.gamepress.gg/sites/grandorder/files/fgo-jsons/servants.json")
	v.SetDefault("servants.list_keyword", "")
	v.SetDefault("skills.version", "")
	v.SetDefault("skills.list_url", "https://grandorder.gamepress.gg/sites/grandorder/files/fgo-jsons/servant-skills.json")
	v.SetDefault("skills.list_keyword", "")
	v.SetDefault("site.base_url", "https://grandorder.gamepress.gg")
	v.SetDefault("site.directory_url", "https://gamepress.gg/json-list?_format=json&game_tid=26")
	v.SetDefault("http.user_agent", "fgo-harvest/1.0")
	v.SetDefault("http.timeout_secs", 30)
	v.SetDefault("http.max_retries", 1)
	v.SetDefault("http.requests_per_second", 20)
	v.SetDefault("pacing.every", 10)
	v.SetDefault("pacing.pause_ms", 1000)
	v.SetDefault("pacing.concurrency", 0)
	v.SetDefault("comb.max_iterations", 25)
	v.SetDefault("normalize.exclusions_file", "")
	v.SetDefault("sink.driver", "mongo")
	v.SetDefault("sink.mongo_uri", "mongodb://localhost:27017")
	v.SetDefault("sink.database", "fatego-db")
	v.SetDefault("sink.database_url", "")
	v.SetDefault("sink.sqlite_path", "data/fatego.db")
	v.SetDefault("server.port", 8080)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks the settings a command mode depends on and reports every
// problem at once.
func (c *Config) Validate(mode string) error {
	var problems []string
	require := func(ok bool, msg string) {
		if !ok {
			problems = append(problems, msg)
		}
	}

	switch mode {
	case "harvest":
		require(c.DataDir != "", "data_dir is required")
		require(c.Site.BaseURL != "", "site.base_url is required")
		require(c.Servants.ListURL != "" || c.Servants.ListKeyword != "", "servants.list_url or servants.list_keyword is required")
		require(c.Skills.ListURL != "" || c.Skills.ListKeyword != "", "skills.list_url or skills.list_keyword is required")
		require(c.Pacing.Every >= 1, "pacing.every must be >= 1")
		require(c.Pacing.PauseMS >= 0, "pacing.pause_ms must be >= 0")
		require(c.Pacing.Concurrency >= 0, "pacing.concurrency must be >= 0")
		require(c.Comb.MaxIterations >= 1, "comb.max_iterations must be >= 1")
	case "import":
		require(c.DataDir != "", "data_dir is required")
		switch c.Sink.Driver {
		case "mongo":
			require(c.Sink.MongoURI != "", "sink.mongo_uri is required")
			require(c.Sink.Database != "", "sink.database is required")
		case "postgres":
			require(c.Sink.DatabaseURL != "", "sink.database_url is required")
		case "sqlite":
			require(c.Sink.SQLitePath != "", "sink.sqlite_path is required")
		default:
			problems = append(problems, "sink.driver must be one of mongo, postgres, sqlite")
		}
	case "export":
		require(c.DataDir != "", "data_dir is required")
	case "serve":
		require(c.DataDir != "", "data_dir is required")
		require(c.Server.Port > 0, "server.port must be > 0")
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}
	require(snapshot.ValidVersion(c.Servants.Version), "servants.version may only contain letters, digits, '_' and '-'")
	require(snapshot.ValidVersion(c.Skills.Version), "skills.version may only contain letters, digits, '_' and '-'")

	if len(problems) > 0 {
		return eris.Errorf("config: %s", strings.Join(problems, "; "))
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
