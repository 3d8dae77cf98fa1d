package config

import (
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
	Input      InputConfig      `yaml:"input" mapstructure:"input"`
	Tenure     TenureConfig     `yaml:"tenure" mapstructure:"tenure"`
	Allocation AllocationConfig `yaml:"allocation" mapstructure:"allocation"`
	Output     OutputConfig     `yaml:"output" mapstructure:"output"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// InputConfig locates the input tables.
type InputConfig struct {
	Parcels    string `yaml:"parcels" mapstructure:"parcels"`
	Mask       string `yaml:"mask" mapstructure:"mask"`
	Households string `yaml:"households" mapstructure:"households"`
}

// TenureConfig points at an optional owned/rented code table.
type TenureConfig struct {
	TablePath string `yaml:"table_path" mapstructure:"table_path"`
}

// AllocationConfig selects and tunes the allocation method.
type AllocationConfig struct {
	Method    string `yaml:"method" mapstructure:"method"`
	Seed      uint64 `yaml:"seed" mapstructure:"seed"`
	QuotaMode string `yaml:"quota_mode" mapstructure:"quota_mode"`
}

// OutputConfig locates the output files. Empty optional paths are skipped.
type OutputConfig struct {
	Path      string `yaml:"path" mapstructure:"path"`
	Shapefile string `yaml:"shapefile" mapstructure:"shapefile"`
	Report    string `yaml:"report" mapstructure:"report"`
}

// Load reads configuration from config.yaml in the working directory (if
// present), RESIDENTS_* environment variables and defaults.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("RESIDENTS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("input.parcels", "")
	v.SetDefault("input.mask", "")
	v.SetDefault("input.households", "")
	v.SetDefault("tenure.table_path", "")
	v.SetDefault("allocation.method", "pool")
	v.SetDefault("allocation.seed", 42)
	v.SetDefault("allocation.quota_mode", "faithful")
	v.SetDefault("output.path", "parcel_residents_mask.csv")
	v.SetDefault("output.shapefile", "")
	v.SetDefault("output.report", "")

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

// Validate checks the settings a command needs. mode is the command name:
// "allocate", "classify" or "aggregate".
func (c *Config) Validate(mode string) error {
	var errs []string

	switch mode {
	case "allocate":
		if c.Input.Parcels == "" {
			errs = append(errs, "input.parcels is required")
		}
		if c.Output.Path == "" {
			errs = append(errs, "output.path is required")
		}
		switch c.Allocation.Method {
		case "pool":
			if c.Input.Households == "" {
				errs = append(errs, "input.households is required for method pool")
			}
		case "quota":
		default:
			errs = append(errs, fmt.Sprintf("allocation.method must be pool or quota, got %q", c.Allocation.Method))
		}
		if m := c.Allocation.QuotaMode; m != "faithful" && m != "strict" {
			errs = append(errs, fmt.Sprintf("allocation.quota_mode must be faithful or strict, got %q", m))
		}
	case "classify", "aggregate":
		if c.Input.Parcels == "" {
			errs = append(errs, "input.parcels is required")
		}
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if len(errs) > 0 {
		return eris.Errorf("config: %s", strings.Join(errs, "; "))
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
