// Package config loads application configuration from file and environment
// and initializes the global logger.
package config

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store     StoreConfig     `yaml:"store" mapstructure:"store"`
	Scoring   ScoringConfig   `yaml:"scoring" mapstructure:"scoring"`
	Training  TrainingConfig  `yaml:"training" mapstructure:"training"`
	Sentiment SentimentConfig `yaml:"sentiment" mapstructure:"sentiment"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the database backends. DatabaseURL points at the
// PostGIS instance holding businesses and reviews. ModelDriver selects where
// trained artifacts live: "postgres" (same database) or "sqlite" for local
// runs, in which case ModelPath is the sqlite file.
type StoreConfig struct {
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	ModelDriver string `yaml:"model_driver" mapstructure:"model_driver"`
	ModelPath   string `yaml:"model_path" mapstructure:"model_path"`
}

// ScoringConfig configures score inference.
type ScoringConfig struct {
	DefaultRadiusM int `yaml:"default_radius_m" mapstructure:"default_radius_m"`
}

// TrainingConfig bounds background training jobs.
type TrainingConfig struct {
	Timeout     time.Duration `yaml:"timeout" mapstructure:"timeout"`
	Concurrency int           `yaml:"concurrency" mapstructure:"concurrency"`
	QueryRate   float64       `yaml:"query_rate" mapstructure:"query_rate"`
}

// SentimentConfig configures review sentiment analysis. TopicsFile optionally
// overrides the built-in topic keyword lexicon with a YAML file.
type SentimentConfig struct {
	TopicsFile string `yaml:"topics_file" mapstructure:"topics_file"`
}

// ServerConfig configures the JSON API server.
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
	v.SetEnvPrefix("SITEIQ")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults. Keys without a natural default still get an empty one so
	// AutomaticEnv can bind them through Unmarshal.
	v.SetDefault("store.database_url", "")
	v.SetDefault("store.model_driver", "postgres")
	v.SetDefault("sentiment.topics_file", "")
	v.SetDefault("store.model_path", "siteiq-models.db")
	v.SetDefault("scoring.default_radius_m", 500)
	v.SetDefault("training.timeout", "10m")
	v.SetDefault("training.concurrency", 4)
	v.SetDefault("training.query_rate", 50.0)
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
