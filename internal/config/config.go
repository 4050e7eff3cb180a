// Package config loads the tempo command's settings from defaults, an
// optional YAML file, TEMPO_* environment variables and flags.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is prepended to every environment variable key
const EnvPrefix = "TEMPO"

// ScanPerMoment is the number of candidates examined per printed moment
// when ScanLimit is left at 0
const ScanPerMoment = 1000

// Config is the effective command configuration
type Config struct {
	Mode      string    `mapstructure:"mode" yaml:"mode" validate:"oneof=auto timetype iterator"`
	Output    string    `mapstructure:"output" yaml:"output" validate:"oneof=text json yaml"`
	Limit     int       `mapstructure:"limit" yaml:"limit" validate:"gt=0"`
	ScanLimit int       `mapstructure:"scan_limit" yaml:"scan_limit" validate:"gte=0"`
	Now       string    `mapstructure:"now" yaml:"now,omitempty" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
	Log       LogConfig `mapstructure:"log" yaml:"log"`
}

// LogConfig configures internal/logger
type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level" validate:"oneof=trace debug info warn error off"`
	Format string `mapstructure:"format" yaml:"format" validate:"oneof=console json"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// SetDefaults registers the default for every key on v
func SetDefaults(v *viper.Viper) {
	v.SetDefault("mode", "auto")
	v.SetDefault("output", "text")
	v.SetDefault("limit", 100)
	v.SetDefault("scan_limit", 0)
	v.SetDefault("now", "")
	v.SetDefault("log.level", "warn")
	v.SetDefault("log.format", "console")
}

// Load reads configuration into v and decodes it. An explicit file must
// exist; without one $HOME/.tempo.yaml is read when present.
func Load(v *viper.Viper, file string) (*Config, error) {
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "read config %s", file)
		}
	} else if home, err := os.UserHomeDir(); err == nil {
		v.SetConfigFile(filepath.Join(home, ".tempo.yaml"))
		if err := v.ReadInConfig(); err != nil && !isNotExist(err) {
			return nil, errors.Wrap(err, "read config")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "decode config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func isNotExist(err error) bool {
	var notFound viper.ConfigFileNotFoundError
	return errors.As(err, &notFound) || errors.Is(err, os.ErrNotExist)
}

// Validate checks every field against its validate tag
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s: failed %q (value %v)", fe.Namespace(), fe.Tag(), fe.Value()))
			}
			return errors.Errorf("invalid config: %s", strings.Join(msgs, "; "))
		}
		return errors.Wrap(err, "invalid config")
	}
	return nil
}

// EffectiveScanLimit returns ScanLimit, or ScanPerMoment candidates per
// allowed moment when it is 0
func (c *Config) EffectiveScanLimit() int {
	if c.ScanLimit > 0 {
		return c.ScanLimit
	}
	return c.Limit * ScanPerMoment
}

// NowTime returns the pinned clock time, or false when Now is unset
func (c *Config) NowTime() (time.Time, bool, error) {
	if c.Now == "" {
		return time.Time{}, false, nil
	}
	t, err := time.Parse(time.RFC3339, c.Now)
	if err != nil {
		return time.Time{}, false, errors.Wrapf(err, "parse now %q", c.Now)
	}
	return t, true, nil
}

// YAML renders the effective configuration
func (c *Config) YAML() (string, error) {
	out, err := yaml.Marshal(c)
	if err != nil {
		return "", errors.Wrap(err, "marshal config")
	}
	return string(out), nil
}
