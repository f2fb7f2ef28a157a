package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

var ErrInvalidConfig = errors.New("invalid configuration")

const EnvPrefix = "DOCQA"

type Config struct {
	MongoURL      string           `mapstructure:"mongo_url" validate:"omitempty,uri"`
	MongoDatabase string           `mapstructure:"mongo_database"`
	RulesPath     string           `mapstructure:"rules_path" validate:"required"`
	LogLevel      string           `mapstructure:"log_level" validate:"required,uppercase,oneof=DEBUG INFO WARN ERROR"`
	LogFormat     string           `mapstructure:"log_format" validate:"required,oneof=text json"`
	Validation    ValidationConfig `mapstructure:"validation" validate:"required"`
	Report        ReportConfig     `mapstructure:"report"`
	Store         StoreConfig      `mapstructure:"store"`
}

type ValidationConfig struct {
	SampleLimit           int64 `mapstructure:"sample_limit" validate:"min=1,max=1000"`
	Workers               int   `mapstructure:"workers" validate:"min=1"`
	ChunkSize             int   `mapstructure:"chunk_size" validate:"min=1"`
	CollectionTimeoutSecs int   `mapstructure:"collection_timeout_secs" validate:"min=0"`
}

type ReportConfig struct {
	JSONPath    string `mapstructure:"json_path"`
	MetricsPath string `mapstructure:"metrics_path"`
}

type StoreConfig struct {
	Driver string `mapstructure:"driver" validate:"omitempty,oneof=postgres sqlite"`
	DSN    string `mapstructure:"dsn" validate:"required_with=Driver"`
}

func (c ValidationConfig) CollectionTimeout() time.Duration {
	return time.Duration(c.CollectionTimeoutSecs) * time.Second
}

// Load reads the configuration from path, or from DOCQA_CONFIG_PATH, or from
// docqa.yaml in the default search paths, then applies DOCQA_* environment
// overrides. A missing config file is not an error.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("mongo_url", "")
	v.SetDefault("mongo_database", "")
	v.SetDefault("rules_path", "config.yaml")
	v.SetDefault("log_level", "INFO")
	v.SetDefault("log_format", "text")
	v.SetDefault("validation.sample_limit", 1000)
	v.SetDefault("validation.workers", 4)
	v.SetDefault("validation.chunk_size", 100)
	v.SetDefault("validation.collection_timeout_secs", 300)
	v.SetDefault("report.json_path", "")
	v.SetDefault("report.metrics_path", "")
	v.SetDefault("store.driver", "")
	v.SetDefault("store.dsn", "")

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if path == "" {
		path = os.Getenv(EnvPrefix + "_CONFIG_PATH")
	}
	if path != "" {
		v.SetConfigFile(path)
		slog.Debug("Loading configuration from specified file", "path", path)
	} else {
		v.SetConfigName("docqa")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/docqa/")
		slog.Debug("Config path not set, using default paths",
			"paths", []string{".", "./config", "/etc/docqa/"},
			"filename", "docqa.yaml")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("%w: failed to read config file: %w", ErrInvalidConfig, err)
		}
		slog.Debug("Config file not found, using defaults and environment variables")
	} else {
		slog.Debug("Configuration loaded", "file", v.ConfigFileUsed())
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("%w: failed to parse configuration: %w", ErrInvalidConfig, err)
	}

	if err := validateConfig(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func validateConfig(cfg *Config) error {
	validate := validator.New()

	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

// NewLogger builds the slog logger for the configured level and format.
func NewLogger(w io.Writer, cfg *Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(cfg.LogLevel)}
	if cfg.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func ParseLevel(level string) slog.Level {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func LogConfig(cfg *Config) {
	slog.Debug("Final Configuration",
		"mongo_database", cfg.MongoDatabase,
		"rules_path", cfg.RulesPath,
		"log_level", cfg.LogLevel,
		"log_format", cfg.LogFormat,
		"validation", cfg.Validation,
		"report", cfg.Report,
		"store_driver", cfg.Store.Driver)
}
