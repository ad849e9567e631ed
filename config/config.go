// Package config loads godock settings from a YAML file with
// environment-variable overrides.
package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"godock/dockerr"
	"godock/obabel"
)

// envPrefix namespaces the override variables: GODOCK_VINA_CPU
// overrides vina.cpu.
const envPrefix = "GODOCK"

// Config is the full godock configuration.
type Config struct {
	Obabel struct {
		Bin string `mapstructure:"bin"`
	} `mapstructure:"obabel"`
	Vina struct {
		Bin            string `mapstructure:"bin"`
		CPU            int    `mapstructure:"cpu"`
		Exhaustiveness int    `mapstructure:"exhaustiveness"`
	} `mapstructure:"vina"`
	TargetsDir  string        `mapstructure:"targets_dir"`
	WorkDir     string        `mapstructure:"work_dir"`
	ToolTimeout time.Duration `mapstructure:"tool_timeout"`
	Log         struct {
		Level  string `mapstructure:"level"`
		Format string `mapstructure:"format"`
	} `mapstructure:"log"`
}

// ApplyDefaults registers the default value of every key on v.
func ApplyDefaults(v *viper.Viper) {
	v.SetDefault("obabel.bin", obabel.DefaultBinary)
	v.SetDefault("vina.bin", "")
	v.SetDefault("vina.cpu", 1)
	v.SetDefault("vina.exhaustiveness", 8)
	v.SetDefault("targets_dir", "targets")
	v.SetDefault("work_dir", "work")
	v.SetDefault("tool_timeout", "10m")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
}

// Load reads configuration from path (optional) merged with GODOCK_
// environment overrides, then validates it. An empty path loads
// defaults and environment only.
func Load(path string) (*Config, error) {
	v := viper.New()
	ApplyDefaults(v)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, dockerr.Wrap(dockerr.KindParse, err, "cannot read config file %s", path)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, dockerr.Wrap(dockerr.KindParse, err, "cannot decode configuration")
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// LoadFromEnv loads defaults plus environment overrides only.
func LoadFromEnv() (*Config, error) {
	return Load("")
}

// Validate rejects configurations that cannot drive a docking run.
func (c *Config) Validate() error {
	if c.Vina.CPU <= 0 {
		return dockerr.Parse("vina.cpu must be positive, got %d", c.Vina.CPU)
	}
	if c.Vina.Exhaustiveness <= 0 {
		return dockerr.Parse("vina.exhaustiveness must be positive, got %d", c.Vina.Exhaustiveness)
	}
	if c.TargetsDir == "" {
		return dockerr.Parse("targets_dir must not be empty")
	}
	if c.WorkDir == "" {
		return dockerr.Parse("work_dir must not be empty")
	}
	if c.ToolTimeout < 0 {
		return dockerr.Parse("tool_timeout must not be negative, got %s", c.ToolTimeout)
	}
	return nil
}

// BuildLogger constructs the zap logger described by the log section.
func (c *Config) BuildLogger() (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(c.Log.Level)
	if err != nil {
		return nil, dockerr.Wrap(dockerr.KindParse, err, "bad log level %q", c.Log.Level)
	}
	zc := zap.NewProductionConfig()
	zc.Level = zap.NewAtomicLevelAt(level)
	zc.Encoding = c.Log.Format
	if c.Log.Format == "console" {
		zc.EncoderConfig = zap.NewDevelopmentEncoderConfig()
	}
	logger, err := zc.Build()
	if err != nil {
		return nil, dockerr.Wrap(dockerr.KindParse, err, "cannot build logger")
	}
	return logger, nil
}
