package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store  StoreConfig  `yaml:"store" mapstructure:"store"`
	Engine EngineConfig `yaml:"engine" mapstructure:"engine"`
	Batch  BatchConfig  `yaml:"batch" mapstructure:"batch"`
	Audit  AuditConfig  `yaml:"audit" mapstructure:"audit"`
	Server ServerConfig `yaml:"server" mapstructure:"server"`
	Log    LogConfig    `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the assessment store backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	SQLitePath  string `yaml:"sqlite_path" mapstructure:"sqlite_path"`
}

// EngineConfig configures the risk engine.
type EngineConfig struct {
	Vertical          string  `yaml:"vertical" mapstructure:"vertical"`
	BaselinePremium   float64 `yaml:"baseline_premium" mapstructure:"baseline_premium"`
	FlagThreshold     float64 `yaml:"flag_threshold" mapstructure:"flag_threshold"`
	LossRatioEstimate float64 `yaml:"loss_ratio_estimate" mapstructure:"loss_ratio_estimate"`
	WeightsFile       string  `yaml:"weights_file" mapstructure:"weights_file"`
}

// BatchConfig configures batch processing.
type BatchConfig struct {
	MaxConcurrent int `yaml:"max_concurrent" mapstructure:"max_concurrent"`
}

// AuditConfig configures the external security audit probes.
type AuditConfig struct {
	TimeoutSecs    int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	ProbesPerSec   float64 `yaml:"probes_per_sec" mapstructure:"probes_per_sec"`
	TLSWarningDays int     `yaml:"tls_warning_days" mapstructure:"tls_warning_days"`
}

// ServerConfig configures the HTTP API server.
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
	v.SetEnvPrefix("RISK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.sqlite_path", "risk.db")
	v.SetDefault("engine.vertical", "insurance")
	v.SetDefault("engine.baseline_premium", 1000.0)
	v.SetDefault("engine.flag_threshold", 0.6)
	v.SetDefault("engine.loss_ratio_estimate", 0.65)
	v.SetDefault("batch.max_concurrent", 8)
	v.SetDefault("audit.timeout_secs", 10)
	v.SetDefault("audit.probes_per_sec", 4.0)
	v.SetDefault("audit.tls_warning_days", 30)
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

// Validate checks the fields the given command mode depends on.
func (c *Config) Validate(mode string) error {
	var errs []string

	common := func() {
		switch strings.ToLower(c.Engine.Vertical) {
		case "", "insurance", "insurer", "campus", "university":
		default:
			errs = append(errs, "engine.vertical must be insurance or campus")
		}
		if c.Engine.BaselinePremium <= 0 {
			errs = append(errs, "engine.baseline_premium must be > 0")
		}
		if c.Engine.FlagThreshold < 0 || c.Engine.FlagThreshold > 1 {
			errs = append(errs, "engine.flag_threshold must be in [0,1]")
		}
	}

	store := func() {
		switch c.Store.Driver {
		case "postgres":
			if c.Store.DatabaseURL == "" {
				errs = append(errs, "store.database_url is required for the postgres driver")
			}
		case "sqlite":
			if c.Store.SQLitePath == "" {
				errs = append(errs, "store.sqlite_path is required for the sqlite driver")
			}
		default:
			errs = append(errs, "store.driver must be postgres or sqlite")
		}
	}

	switch mode {
	case "analyze", "cohort", "portfolio", "weights":
		common()
	case "batch":
		common()
		if c.Batch.MaxConcurrent < 1 || c.Batch.MaxConcurrent > 64 {
			errs = append(errs, "batch.max_concurrent must be between 1 and 64")
		}
	case "audit":
		if c.Audit.TimeoutSecs <= 0 {
			errs = append(errs, "audit.timeout_secs must be > 0")
		}
		if c.Audit.ProbesPerSec <= 0 {
			errs = append(errs, "audit.probes_per_sec must be > 0")
		}
	case "serve":
		common()
		store()
		if c.Server.Port <= 0 || c.Server.Port > 65535 {
			errs = append(errs, "server.port must be between 1 and 65535")
		}
	case "assessments":
		store()
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if len(errs) > 0 {
		return eris.Errorf("config: validation failed: %s", strings.Join(errs, "; "))
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
